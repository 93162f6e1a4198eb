package speech

import (
	"encoding/json"
	"fmt"
)

// Status is the provider-side state of a batch transcription
type Status string

const (
	StatusNotStarted Status = "NotStarted"
	StatusRunning    Status = "Running"
	StatusSucceeded  Status = "Succeeded"
	StatusFailed     Status = "Failed"
)

// FileKindTranscription marks result files holding recognized text
const FileKindTranscription = "Transcription"

// Options are the recognition settings sent with every submission
type Options struct {
	Locale              string
	DisplayName         string
	Diarization         bool
	WordTimestamps      bool
	ProfanityFilterMode string
}

type transcriptionProperties struct {
	DiarizationEnabled         bool   `json:"diarizationEnabled"`
	WordLevelTimestampsEnabled bool   `json:"wordLevelTimestampsEnabled"`
	PunctuationMode            string `json:"punctuationMode,omitempty"`
	ProfanityFilterMode        string `json:"profanityFilterMode,omitempty"`
}

type createRequest struct {
	ContentURLs []string                `json:"contentUrls"`
	Locale      string                  `json:"locale"`
	DisplayName string                  `json:"displayName"`
	Properties  transcriptionProperties `json:"properties"`
}

// ProviderError is the error object of a failed transcription
type ProviderError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Transcription is the status document returned for a batch job
type Transcription struct {
	Self   string `json:"self"`
	Status Status `json:"status"`
	Links  struct {
		Files string `json:"files"`
	} `json:"links"`
	Properties struct {
		Error *ProviderError `json:"error,omitempty"`
	} `json:"properties"`
}

// ErrorMessage returns the provider's failure description
func (t *Transcription) ErrorMessage() string {
	if t.Properties.Error == nil {
		return "transcription failed"
	}
	if t.Properties.Error.Code == "" {
		return t.Properties.Error.Message
	}
	return fmt.Sprintf("%s: %s", t.Properties.Error.Code, t.Properties.Error.Message)
}

// File is one entry of the result file manifest
type File struct {
	Kind  string `json:"kind"`
	Name  string `json:"name"`
	Links struct {
		ContentURL string `json:"contentUrl"`
	} `json:"links"`
}

type fileList struct {
	Values   []File `json:"values"`
	NextLink string `json:"@nextLink"`
}

// Result is one transcription payload. Raw is kept verbatim for storage.
type Result struct {
	Raw json.RawMessage
}
