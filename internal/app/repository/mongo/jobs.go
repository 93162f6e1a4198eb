package mongo

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	mgo "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	apperrors "lexscribe/internal/app/errors"
	"lexscribe/internal/app/model"
)

// jobDoc stores provider payloads as strings so they stay readable in the collection
type jobDoc struct {
	model.TranscriptionJob `bson:",inline"`
	RawContent             []string `bson:"content,omitempty"`
}

func toJobDoc(job *model.TranscriptionJob) jobDoc {
	return jobDoc{TranscriptionJob: *job, RawContent: contentStrings(job.Content)}
}

func (d jobDoc) job() model.TranscriptionJob {
	job := d.TranscriptionJob
	job.Content = nil
	for _, c := range d.RawContent {
		job.Content = append(job.Content, json.RawMessage(c))
	}
	return job
}

func contentStrings(content []json.RawMessage) []string {
	if len(content) == 0 {
		return nil
	}
	out := make([]string, len(content))
	for i, c := range content {
		out[i] = string(c)
	}
	return out
}

func terminalStatuses() bson.A {
	return bson.A{string(model.JobStatusCompleted), string(model.JobStatusFailed)}
}

func pollableFilter(maxErrors int) bson.M {
	return bson.M{
		"transcriptionUrl": bson.M{"$exists": true, "$ne": ""},
		"$or": bson.A{
			bson.M{"status": bson.M{"$in": bson.A{
				string(model.JobStatusPending),
				string(model.JobStatusSubmitted),
				string(model.JobStatusProcessing),
			}}},
			bson.M{"status": string(model.JobStatusError), "errorCount": bson.M{"$lt": maxErrors}},
		},
	}
}

func jobUpdateDoc(update model.JobUpdate) bson.M {
	set := bson.M{
		"status":          string(update.Status),
		"content":         contentStrings(update.Content),
		"errorDetails":    update.ErrorDetails,
		"failureReason":   update.FailureReason,
		"errorCount":      update.ErrorCount,
		"durationSeconds": update.DurationSeconds,
		"completedAt":     update.CompletedAt,
		"updatedAt":       update.UpdatedAt,
	}
	return bson.M{"$set": set}
}

func decodeJobs(ctx context.Context, cursor *mgo.Cursor) ([]model.TranscriptionJob, error) {
	var docs []jobDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, apperrors.Mark(err, apperrors.ErrQueryFailed)
	}
	jobs := make([]model.TranscriptionJob, 0, len(docs))
	for _, d := range docs {
		jobs = append(jobs, d.job())
	}
	return jobs, nil
}

// CreateJob inserts a new transcription job
func (s *Store) CreateJob(ctx context.Context, job *model.TranscriptionJob) error {
	c, ctx, cancel := s.coll(ctx, jobsTable)
	defer cancel()

	if _, err := c.InsertOne(ctx, toJobDoc(job)); err != nil {
		return apperrors.Mark(err, apperrors.ErrInsertFailed)
	}
	return nil
}

// GetJob returns a job by id or ErrJobNotFound
func (s *Store) GetJob(ctx context.Context, id string) (*model.TranscriptionJob, error) {
	c, ctx, cancel := s.coll(ctx, jobsTable)
	defer cancel()

	var d jobDoc
	err := c.FindOne(ctx, bson.M{"_id": id}).Decode(&d)
	if errors.Is(err, mgo.ErrNoDocuments) {
		return nil, apperrors.ErrJobNotFound
	}
	if err != nil {
		return nil, apperrors.Mark(err, apperrors.ErrQueryFailed)
	}
	job := d.job()
	return &job, nil
}

// ListJobsByUser returns one page of a user's jobs, newest first, and the total count
func (s *Store) ListJobsByUser(ctx context.Context, userID string, limit, offset int) ([]model.TranscriptionJob, int, error) {
	c, ctx, cancel := s.coll(ctx, jobsTable)
	defer cancel()

	filter := bson.M{"userId": userID}
	total, err := c.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, apperrors.Mark(err, apperrors.ErrQueryFailed)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))
	cursor, err := c.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, apperrors.Mark(err, apperrors.ErrQueryFailed)
	}
	jobs, err := decodeJobs(ctx, cursor)
	if err != nil {
		return nil, 0, err
	}
	return jobs, int(total), nil
}

// ListPollableJobs returns in-flight jobs that have a provider handle
func (s *Store) ListPollableJobs(ctx context.Context, maxErrors, limit int) ([]model.TranscriptionJob, error) {
	c, ctx, cancel := s.coll(ctx, jobsTable)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "updatedAt", Value: 1}}).SetLimit(int64(limit))
	cursor, err := c.Find(ctx, pollableFilter(maxErrors), opts)
	if err != nil {
		return nil, apperrors.Mark(err, apperrors.ErrQueryFailed)
	}
	return decodeJobs(ctx, cursor)
}

// ListExpiredJobs returns jobs whose retention ended before now
func (s *Store) ListExpiredJobs(ctx context.Context, now time.Time, limit int) ([]model.TranscriptionJob, error) {
	c, ctx, cancel := s.coll(ctx, jobsTable)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "expiresAt", Value: 1}}).SetLimit(int64(limit))
	cursor, err := c.Find(ctx, bson.M{"expiresAt": bson.M{"$lt": now}}, opts)
	if err != nil {
		return nil, apperrors.Mark(err, apperrors.ErrQueryFailed)
	}
	return decodeJobs(ctx, cursor)
}

// UpdateJobStatus applies a transition unless the job is already terminal
func (s *Store) UpdateJobStatus(ctx context.Context, id string, update model.JobUpdate) (bool, error) {
	c, ctx, cancel := s.coll(ctx, jobsTable)
	defer cancel()

	filter := bson.M{"_id": id, "status": bson.M{"$nin": terminalStatuses()}}
	res, err := c.UpdateOne(ctx, filter, jobUpdateDoc(update))
	if err != nil {
		return false, apperrors.Mark(err, apperrors.ErrUpdateFailed)
	}
	return res.MatchedCount > 0, nil
}

// SaveSummary stores the generated summary of a job
func (s *Store) SaveSummary(ctx context.Context, id, summary string, at time.Time) error {
	c, ctx, cancel := s.coll(ctx, jobsTable)
	defer cancel()

	res, err := c.UpdateOne(ctx, bson.M{"_id": id},
		bson.M{"$set": bson.M{"summary": summary, "summarizedAt": at, "updatedAt": at}})
	if err != nil {
		return apperrors.Mark(err, apperrors.ErrUpdateFailed)
	}
	if res.MatchedCount == 0 {
		return apperrors.ErrJobNotFound
	}
	return nil
}

// DeleteJob removes a job document
func (s *Store) DeleteJob(ctx context.Context, id string) error {
	c, ctx, cancel := s.coll(ctx, jobsTable)
	defer cancel()

	if _, err := c.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return apperrors.Mark(err, apperrors.ErrUpdateFailed)
	}
	return nil
}
