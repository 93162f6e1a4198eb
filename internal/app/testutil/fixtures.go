package testutil

import (
	"encoding/json"
	"fmt"
	"time"

	"lexscribe/internal/app/api/speech"
	"lexscribe/internal/app/model"
)

// FixedTime is the reference instant used by fixtures
var FixedTime = time.Date(2026, 4, 14, 8, 0, 0, 0, time.UTC)

// ResultPayload returns a provider result document with the given text and duration
func ResultPayload(text string, durationMs int) json.RawMessage {
	return json.RawMessage(fmt.Sprintf(
		`{"durationMilliseconds":%d,"combinedRecognizedPhrases":[{"channel":0,"display":%q}]}`,
		durationMs, text,
	))
}

// Results wraps payloads as provider results
func Results(payloads ...json.RawMessage) []speech.Result {
	out := make([]speech.Result, len(payloads))
	for i, p := range payloads {
		out[i] = speech.Result{Raw: p}
	}
	return out
}

// Transcription builds a provider status document
func Transcription(status speech.Status, errMessage string) *speech.Transcription {
	t := &speech.Transcription{Self: "https://speech.test/speechtotext/v3.1/transcriptions/t1", Status: status}
	t.Links.Files = t.Self + "/files"
	if errMessage != "" {
		t.Properties.Error = &speech.ProviderError{Code: "InvalidData", Message: errMessage}
	}
	return t
}

// NewJob returns an unsaved job for userID in the given status
func NewJob(id, userID string, status model.JobStatus) *model.TranscriptionJob {
	expires := FixedTime.AddDate(0, 0, 30)
	return &model.TranscriptionJob{
		ID:             id,
		UserID:         userID,
		MeetingType:    model.MeetingTypeLegal,
		AudioFileURLs:  []string{"https://blob.test/" + userID + "/a.wav?sig=1"},
		BlobKeys:       []string{userID + "/1-a.wav"},
		ProviderHandle: "https://speech.test/speechtotext/v3.1/transcriptions/" + id,
		Status:         status,
		CreatedAt:      FixedTime,
		UpdatedAt:      FixedTime,
		ExpiresAt:      &expires,
	}
}
