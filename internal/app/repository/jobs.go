package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	apperrors "lexscribe/internal/app/errors"
	"lexscribe/internal/app/model"
)

const jobColumns = `id, user_id, meeting_type, audio_file_urls, blob_keys, provider_handle, status,
	content, error_details, failure_reason, error_count, duration_seconds, summary, summarized_at,
	created_at, updated_at, completed_at, expires_at`

func scanJob(row rowScanner) (*model.TranscriptionJob, error) {
	var (
		job                       model.TranscriptionJob
		urls, keys, content       sql.NullString
		handle, details, reason   sql.NullString
		summary                   sql.NullString
		summarizedAt, completedAt sql.NullTime
		expiresAt                 sql.NullTime
		meetingType, status       string
	)

	err := row.Scan(
		&job.ID, &job.UserID, &meetingType, &urls, &keys, &handle, &status,
		&content, &details, &reason, &job.ErrorCount, &job.DurationSeconds, &summary, &summarizedAt,
		&job.CreatedAt, &job.UpdatedAt, &completedAt, &expiresAt,
	)
	if err != nil {
		return nil, err
	}

	job.MeetingType = model.MeetingType(meetingType)
	job.Status = model.JobStatus(status)
	job.ProviderHandle = handle.String
	job.ErrorDetails = details.String
	job.FailureReason = reason.String
	job.Summary = summary.String
	job.SummarizedAt = timePtr(summarizedAt)
	job.CompletedAt = timePtr(completedAt)
	job.ExpiresAt = timePtr(expiresAt)
	job.CreatedAt = job.CreatedAt.UTC()
	job.UpdatedAt = job.UpdatedAt.UTC()

	if err := decodeJSON(urls, &job.AudioFileURLs); err != nil {
		return nil, err
	}
	if err := decodeJSON(keys, &job.BlobKeys); err != nil {
		return nil, err
	}
	if err := decodeJSON(content, &job.Content); err != nil {
		return nil, err
	}
	return &job, nil
}

func scanJobs(rows *sql.Rows) ([]model.TranscriptionJob, error) {
	defer rows.Close()

	var jobs []model.TranscriptionJob
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		jobs = append(jobs, *job)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return jobs, nil
}

func encodeContent(content []json.RawMessage) (sql.NullString, error) {
	if len(content) == 0 {
		return sql.NullString{}, nil
	}
	s, err := encodeJSON(content)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: s, Valid: true}, nil
}

// CreateJob inserts a new transcription job
func (c *CommonDB) CreateJob(ctx context.Context, job *model.TranscriptionJob) error {
	urls, err := encodeJSON(job.AudioFileURLs)
	if err != nil {
		return err
	}
	keys, err := encodeJSON(job.BlobKeys)
	if err != nil {
		return err
	}
	content, err := encodeContent(job.Content)
	if err != nil {
		return err
	}

	_, err = c.exec(ctx,
		`INSERT INTO transcription_jobs (`+jobColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		job.ID, job.UserID, string(job.MeetingType), urls, keys, job.ProviderHandle, string(job.Status),
		content, job.ErrorDetails, job.FailureReason, job.ErrorCount, job.DurationSeconds, job.Summary,
		nullTime(job.SummarizedAt), dbTime(job.CreatedAt), dbTime(job.UpdatedAt),
		nullTime(job.CompletedAt), nullTime(job.ExpiresAt),
	)
	if err != nil {
		return apperrors.Mark(err, apperrors.ErrInsertFailed)
	}
	return nil
}

// GetJob returns a job by id or ErrJobNotFound
func (c *CommonDB) GetJob(ctx context.Context, id string) (*model.TranscriptionJob, error) {
	row := c.queryRow(ctx, `SELECT `+jobColumns+` FROM transcription_jobs WHERE id = ?`, id)
	job, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.ErrJobNotFound
	}
	if err != nil {
		return nil, apperrors.Mark(err, apperrors.ErrQueryFailed)
	}
	return job, nil
}

// ListJobsByUser returns one page of a user's jobs, newest first, and the total count
func (c *CommonDB) ListJobsByUser(ctx context.Context, userID string, limit, offset int) ([]model.TranscriptionJob, int, error) {
	var total int
	if err := c.queryRow(ctx, `SELECT COUNT(*) FROM transcription_jobs WHERE user_id = ?`, userID).Scan(&total); err != nil {
		return nil, 0, apperrors.Mark(err, apperrors.ErrQueryFailed)
	}

	rows, err := c.query(ctx,
		`SELECT `+jobColumns+` FROM transcription_jobs
		 WHERE user_id = ?
		 ORDER BY created_at DESC
		 LIMIT ? OFFSET ?`,
		userID, limit, offset,
	)
	if err != nil {
		return nil, 0, apperrors.Mark(err, apperrors.ErrQueryFailed)
	}
	jobs, err := scanJobs(rows)
	if err != nil {
		return nil, 0, err
	}
	return jobs, total, nil
}

// ListPollableJobs returns in-flight jobs that have a provider handle. Jobs in
// the error state are included while their error count is below maxErrors.
func (c *CommonDB) ListPollableJobs(ctx context.Context, maxErrors, limit int) ([]model.TranscriptionJob, error) {
	rows, err := c.query(ctx,
		`SELECT `+jobColumns+` FROM transcription_jobs
		 WHERE provider_handle <> ''
		   AND (status IN ('pending', 'submitted', 'processing')
		        OR (status = 'error' AND error_count < ?))
		 ORDER BY updated_at ASC
		 LIMIT ?`,
		maxErrors, limit,
	)
	if err != nil {
		return nil, apperrors.Mark(err, apperrors.ErrQueryFailed)
	}
	return scanJobs(rows)
}

// ListExpiredJobs returns jobs whose retention ended before now
func (c *CommonDB) ListExpiredJobs(ctx context.Context, now time.Time, limit int) ([]model.TranscriptionJob, error) {
	rows, err := c.query(ctx,
		`SELECT `+jobColumns+` FROM transcription_jobs
		 WHERE expires_at IS NOT NULL AND expires_at < ?
		 ORDER BY expires_at ASC
		 LIMIT ?`,
		dbTime(now), limit,
	)
	if err != nil {
		return nil, apperrors.Mark(err, apperrors.ErrQueryFailed)
	}
	return scanJobs(rows)
}

// UpdateJobStatus applies a transition unless the job is already terminal.
// It reports false when the guard rejected the write.
func (c *CommonDB) UpdateJobStatus(ctx context.Context, id string, update model.JobUpdate) (bool, error) {
	content, err := encodeContent(update.Content)
	if err != nil {
		return false, err
	}

	n, err := c.exec(ctx,
		`UPDATE transcription_jobs
		 SET status = ?, content = ?, error_details = ?, failure_reason = ?, error_count = ?,
		     duration_seconds = ?,
		     completed_at = ?, updated_at = ?
		 WHERE id = ? AND status NOT IN ('completed', 'failed')`,
		string(update.Status), content, update.ErrorDetails, update.FailureReason, update.ErrorCount,
		update.DurationSeconds,
		nullTime(update.CompletedAt), dbTime(update.UpdatedAt),
		id,
	)
	if err != nil {
		return false, apperrors.Mark(err, apperrors.ErrUpdateFailed)
	}
	return n > 0, nil
}

// SaveSummary stores the generated summary of a job
func (c *CommonDB) SaveSummary(ctx context.Context, id, summary string, at time.Time) error {
	n, err := c.exec(ctx,
		`UPDATE transcription_jobs SET summary = ?, summarized_at = ?, updated_at = ? WHERE id = ?`,
		summary, dbTime(at), dbTime(at), id,
	)
	if err != nil {
		return apperrors.Mark(err, apperrors.ErrUpdateFailed)
	}
	if n == 0 {
		return apperrors.ErrJobNotFound
	}
	return nil
}

// DeleteJob removes a job record
func (c *CommonDB) DeleteJob(ctx context.Context, id string) error {
	if _, err := c.exec(ctx, `DELETE FROM transcription_jobs WHERE id = ?`, id); err != nil {
		return apperrors.Mark(err, apperrors.ErrUpdateFailed)
	}
	return nil
}
