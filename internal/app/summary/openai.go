package summary

import (
	"context"
	"strings"

	"github.com/sashabaranov/go-openai"

	apperrors "lexscribe/internal/app/errors"
	"lexscribe/internal/app/model"
)

// OpenAISummarizer summarizes with the chat completions API
type OpenAISummarizer struct {
	client *openai.Client
	model  string
}

// NewOpenAISummarizer creates a summarizer for the given key and model
func NewOpenAISummarizer(apiKey, modelName string) *OpenAISummarizer {
	return &OpenAISummarizer{client: openai.NewClient(apiKey), model: modelName}
}

// NewOpenAISummarizerWithConfig allows a custom base URL
func NewOpenAISummarizerWithConfig(cfg openai.ClientConfig, modelName string) *OpenAISummarizer {
	return &OpenAISummarizer{client: openai.NewClientWithConfig(cfg), model: modelName}
}

func (s *OpenAISummarizer) Summarize(ctx context.Context, meetingType model.MeetingType, transcript string) (string, error) {
	transcript, err := checkTranscript(transcript)
	if err != nil {
		return "", err
	}

	request := openai.ChatCompletionRequest{
		Model:       s.model,
		Temperature: 0.2,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: Prompt(meetingType, transcript)},
		},
	}
	resp, err := s.client.CreateChatCompletion(ctx, request)
	if err != nil {
		return "", apperrors.Wrap(err, "openai chat completion failed")
	}
	if len(resp.Choices) == 0 {
		return "", apperrors.Wrap(apperrors.ErrResponseInvalid, "openai returned no choices")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
