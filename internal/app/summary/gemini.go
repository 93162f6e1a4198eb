package summary

import (
	"context"
	"strings"

	"google.golang.org/genai"

	apperrors "lexscribe/internal/app/errors"
	"lexscribe/internal/app/model"
)

// GeminiSummarizer summarizes with the Gemini API
type GeminiSummarizer struct {
	client *genai.Client
	model  string
}

// NewGeminiSummarizer creates a Gemini-backed summarizer. baseURL overrides the API host when set.
func NewGeminiSummarizer(ctx context.Context, apiKey, modelName, baseURL string) (*GeminiSummarizer, error) {
	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if baseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, apperrors.Wrap(err, "genai.NewClient")
	}
	return &GeminiSummarizer{client: client, model: modelName}, nil
}

func (s *GeminiSummarizer) Summarize(ctx context.Context, meetingType model.MeetingType, transcript string) (string, error) {
	transcript, err := checkTranscript(transcript)
	if err != nil {
		return "", err
	}

	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
		Temperature:       genai.Ptr[float32](0.2),
	}
	resp, err := s.client.Models.GenerateContent(ctx, s.model, genai.Text(Prompt(meetingType, transcript)), cfg)
	if err != nil {
		return "", apperrors.Wrap(err, "gemini generate content failed")
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", apperrors.Wrap(apperrors.ErrResponseInvalid, "gemini returned no text")
	}
	return text, nil
}
