package orchestrator

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"lexscribe/internal/app/api/speech"
	apperrors "lexscribe/internal/app/errors"
	"lexscribe/internal/app/model"
	"lexscribe/internal/app/storage/blob"
)

const anonymousOwner = "anonymous"

// Submit uploads the recordings, starts a provider transcription and persists
// the job. When any step fails no job is stored and every uploaded blob is removed.
func (o *Orchestrator) Submit(ctx context.Context, in SubmitInput) (*model.TranscriptionJob, error) {
	if in.UserID == "" {
		return nil, apperrors.RequiredField("user id")
	}
	if err := validate(in.MeetingType, in.Files); err != nil {
		return nil, err
	}

	start := time.Now()
	jobID := uuid.New().String()
	log := o.logger.With(zap.String("job_id", jobID), zap.String("user_id", in.UserID))

	keys, urls, err := o.stage(ctx, in.UserID, in.Files)
	if err != nil {
		return nil, err
	}

	handle, err := o.provider.Submit(ctx, urls, o.speechOptions(jobID))
	if err != nil {
		o.cleanup(keys)
		log.Error("provider submission failed", zap.Error(err))
		return nil, apperrors.Mark(err, apperrors.ErrSubmissionFailed)
	}

	now := o.now()
	expires := now.AddDate(0, 0, in.RetentionDays)
	job := &model.TranscriptionJob{
		ID:             jobID,
		UserID:         in.UserID,
		MeetingType:    in.MeetingType,
		AudioFileURLs:  urls,
		BlobKeys:       keys,
		ProviderHandle: handle,
		Status:         model.JobStatusSubmitted,
		CreatedAt:      now,
		UpdatedAt:      now,
		ExpiresAt:      &expires,
	}
	if err := o.jobs.CreateJob(ctx, job); err != nil {
		o.cleanup(keys)
		log.Error("failed to persist job", zap.Error(err))
		return nil, err
	}

	o.metrics.RecordSubmit(time.Since(start).Seconds())
	o.metrics.RecordTransition(string(model.JobStatusSubmitted))
	log.Info("transcription job submitted",
		zap.Int("files", len(urls)),
		zap.String("handle", handle),
		zap.Time("expires_at", expires),
	)

	if o.tracker != nil {
		if err := o.tracker.Track(ctx, job.ID); err != nil {
			log.Warn("failed to start job tracking, poller will cover it", zap.Error(err))
		}
	}
	return job, nil
}

// SubmitDirect uploads and submits without persisting a job. The blobs stay for the provider.
func (o *Orchestrator) SubmitDirect(ctx context.Context, meetingType model.MeetingType, files []AudioFile) (string, error) {
	if err := validate(meetingType, files); err != nil {
		return "", err
	}

	start := time.Now()
	keys, urls, err := o.stage(ctx, anonymousOwner, files)
	if err != nil {
		return "", err
	}

	handle, err := o.provider.Submit(ctx, urls, o.speechOptions(uuid.New().String()))
	if err != nil {
		o.cleanup(keys)
		o.logger.Error("direct submission failed", zap.Error(err))
		return "", apperrors.Mark(err, apperrors.ErrSubmissionFailed)
	}

	o.metrics.RecordSubmit(time.Since(start).Seconds())
	o.logger.Info("direct transcription submitted", zap.String("handle", handle), zap.Int("files", len(urls)))
	return handle, nil
}

// ProviderStatus returns the provider's status for a handle, served from cache when fresh
func (o *Orchestrator) ProviderStatus(ctx context.Context, handle string) (speech.Status, error) {
	if handle == "" {
		return "", apperrors.ErrMissingHandle
	}
	if status, ok := o.cache.Get(ctx, handle); ok {
		return speech.Status(status), nil
	}

	t, err := o.provider.Status(ctx, handle)
	if err != nil {
		return "", err
	}
	o.cache.Set(ctx, handle, string(t.Status))
	return t.Status, nil
}

func validate(meetingType model.MeetingType, files []AudioFile) error {
	if len(files) == 0 {
		return apperrors.ErrNoFiles
	}
	if !meetingType.Valid() {
		return apperrors.Wrapf(apperrors.ErrInvalidMeetingType, "%q", meetingType)
	}
	for _, f := range files {
		if f.Body == nil {
			return apperrors.InvalidField("file", f.Name+" has no content")
		}
	}
	return nil
}

func (o *Orchestrator) speechOptions(displayName string) speech.Options {
	return speech.Options{
		Locale:              o.opts.Locale,
		DisplayName:         displayName,
		Diarization:         true,
		WordTimestamps:      true,
		ProfanityFilterMode: "Masked",
	}
}

// stage uploads every file and signs a read URL for it, in input order.
// On failure the blobs uploaded so far are deleted.
func (o *Orchestrator) stage(ctx context.Context, owner string, files []AudioFile) ([]string, []string, error) {
	keys := make([]string, 0, len(files))
	urls := make([]string, 0, len(files))

	for i, f := range files {
		key := blob.ObjectKey(owner, o.clock().Add(time.Duration(i)*time.Millisecond), f.Name)
		if err := o.blobs.Put(ctx, key, f.Body, f.Size, f.ContentType); err != nil {
			o.cleanup(keys)
			return nil, nil, apperrors.Mark(err, apperrors.ErrUploadFailed)
		}
		keys = append(keys, key)

		url, err := o.blobs.SignedURL(ctx, key, o.opts.SignedURLTTL)
		if err != nil {
			o.cleanup(keys)
			return nil, nil, apperrors.Mark(err, apperrors.ErrUploadFailed)
		}
		urls = append(urls, url)
	}
	return keys, urls, nil
}

// cleanup removes staged blobs. It runs detached from the request context,
// which may already be cancelled.
func (o *Orchestrator) cleanup(keys []string) {
	if len(keys) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, key := range keys {
		if err := o.blobs.Delete(ctx, key); err != nil {
			o.logger.Warn("failed to delete staged blob", zap.String("key", key), zap.Error(err))
		}
	}
	o.logger.Info("staged blobs removed", zap.Int("count", len(keys)))
}
