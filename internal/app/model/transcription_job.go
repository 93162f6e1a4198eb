package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// MeetingType selects the summary template for a job. It has no effect on job mechanics.
type MeetingType string

const (
	MeetingTypeLegal   MeetingType = "legal"
	MeetingTypeMeeting MeetingType = "meeting"
)

// Valid reports whether the meeting type is one of the known values
func (m MeetingType) Valid() bool {
	switch m {
	case MeetingTypeLegal, MeetingTypeMeeting:
		return true
	}
	return false
}

// ParseMeetingType parses a form value, defaulting to legal when empty
func ParseMeetingType(s string) (MeetingType, error) {
	if s == "" {
		return MeetingTypeLegal, nil
	}
	m := MeetingType(s)
	if !m.Valid() {
		return "", fmt.Errorf("unknown meeting type %q", s)
	}
	return m, nil
}

// JobStatus is the lifecycle state of a transcription job.
//
//	pending -> submitted -> processing -> {completed | failed}
//	any non-terminal -> error -> (processing | completed | failed)
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusSubmitted  JobStatus = "submitted"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
	JobStatusError      JobStatus = "error"
)

// AllJobStatuses lists every job status in lifecycle order
var AllJobStatuses = []JobStatus{
	JobStatusPending,
	JobStatusSubmitted,
	JobStatusProcessing,
	JobStatusCompleted,
	JobStatusFailed,
	JobStatusError,
}

// Valid reports whether s is a known status
func (s JobStatus) Valid() bool {
	switch s {
	case JobStatusPending, JobStatusSubmitted, JobStatusProcessing,
		JobStatusCompleted, JobStatusFailed, JobStatusError:
		return true
	}
	return false
}

// Terminal reports whether no further status checks should change the job.
// error is not terminal: it is retried until the status error budget is spent.
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// InFlight reports whether the job is still waiting on the provider
func (s JobStatus) InFlight() bool {
	switch s {
	case JobStatusPending, JobStatusSubmitted, JobStatusProcessing, JobStatusError:
		return true
	}
	return false
}

// Failure reasons stored alongside failed jobs
const (
	FailureReasonProvider        = "provider_failed"
	FailureReasonStatusExhausted = "status_check_exhausted"
)

// TranscriptionJob represents one batch audio-to-text request and its lifecycle
type TranscriptionJob struct {
	ID              string            `json:"id" bson:"_id"`
	UserID          string            `json:"user_id" bson:"userId"`
	MeetingType     MeetingType       `json:"meeting_type" bson:"meetingType"`
	AudioFileURLs   []string          `json:"audio_file_urls" bson:"audioFileUrls"`
	BlobKeys        []string          `json:"-" bson:"blobKeys"`
	ProviderHandle  string            `json:"transcription_url,omitempty" bson:"transcriptionUrl,omitempty"`
	Status          JobStatus         `json:"status" bson:"status"`
	Content         []json.RawMessage `json:"content,omitempty" bson:"-"`
	ErrorDetails    string            `json:"error_details,omitempty" bson:"errorDetails,omitempty"`
	FailureReason   string            `json:"failure_reason,omitempty" bson:"failureReason,omitempty"`
	ErrorCount      int               `json:"error_count" bson:"errorCount"`
	DurationSeconds float64           `json:"duration_seconds,omitempty" bson:"durationSeconds"`
	Summary         string            `json:"summary,omitempty" bson:"summary,omitempty"`
	SummarizedAt    *time.Time        `json:"summarized_at,omitempty" bson:"summarizedAt,omitempty"`
	CreatedAt       time.Time         `json:"created_at" bson:"createdAt"`
	UpdatedAt       time.Time         `json:"updated_at" bson:"updatedAt"`
	CompletedAt     *time.Time        `json:"completed_at,omitempty" bson:"completedAt,omitempty"`
	ExpiresAt       *time.Time        `json:"expires_at,omitempty" bson:"expiresAt,omitempty"`
}

// TableName returns the table name for TranscriptionJob
func (TranscriptionJob) TableName() string {
	return "transcription_jobs"
}

// JobUpdate describes a status transition. Stores apply it only while the
// job is not terminal, so a completed or failed job is never rewritten.
type JobUpdate struct {
	Status          JobStatus
	Content         []json.RawMessage
	ErrorDetails    string
	FailureReason   string
	ErrorCount      int
	DurationSeconds float64
	CompletedAt     *time.Time
	UpdatedAt       time.Time
}

// Apply copies the transition onto the in-memory job
func (u JobUpdate) Apply(job *TranscriptionJob) {
	job.Status = u.Status
	job.Content = u.Content
	job.ErrorDetails = u.ErrorDetails
	job.FailureReason = u.FailureReason
	job.ErrorCount = u.ErrorCount
	job.DurationSeconds = u.DurationSeconds
	job.CompletedAt = u.CompletedAt
	job.UpdatedAt = u.UpdatedAt
}
