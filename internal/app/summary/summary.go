package summary

import (
	"context"
	"encoding/json"
	"strings"

	"lexscribe/internal/config"
	apperrors "lexscribe/internal/app/errors"
	"lexscribe/internal/app/model"
)

// maxTranscriptRunes bounds the prompt size sent to the model
const maxTranscriptRunes = 120000

// Summarizer produces a written summary of a transcript
type Summarizer interface {
	Summarize(ctx context.Context, meetingType model.MeetingType, transcript string) (string, error)
}

// New returns the summarizer selected by cfg.Provider
func New(ctx context.Context, cfg config.SummaryConfig) (Summarizer, error) {
	switch cfg.Provider {
	case "openai":
		if cfg.OpenAIKey == "" {
			return nil, apperrors.Wrap(apperrors.ErrMissingConfig, "OPENAI_API_KEY")
		}
		return NewOpenAISummarizer(cfg.OpenAIKey, cfg.OpenAIModel), nil
	case "gemini":
		if cfg.GeminiKey == "" {
			return nil, apperrors.Wrap(apperrors.ErrMissingConfig, "GEMINI_API_KEY")
		}
		return NewGeminiSummarizer(ctx, cfg.GeminiKey, cfg.GeminiModel, "")
	}
	return nil, apperrors.Wrapf(apperrors.ErrInvalidConfig, "unknown summary provider %q", cfg.Provider)
}

type recognizedPhrase struct {
	Display string `json:"display"`
}

type transcriptDoc struct {
	CombinedRecognizedPhrases []recognizedPhrase `json:"combinedRecognizedPhrases"`
}

// ExtractText joins the display text of every stored result payload, in order
func ExtractText(content []json.RawMessage) string {
	var parts []string
	for _, raw := range content {
		var doc transcriptDoc
		if err := json.Unmarshal(raw, &doc); err != nil {
			continue
		}
		for _, p := range doc.CombinedRecognizedPhrases {
			if text := strings.TrimSpace(p.Display); text != "" {
				parts = append(parts, text)
			}
		}
	}
	return strings.Join(parts, "\n\n")
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func checkTranscript(transcript string) (string, error) {
	transcript = strings.TrimSpace(transcript)
	if transcript == "" {
		return "", apperrors.InvalidField("transcript", "no recognized text to summarize")
	}
	return truncateRunes(transcript, maxTranscriptRunes), nil
}
