package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/samber/lo"
	"go.uber.org/zap"

	apperrors "lexscribe/internal/app/errors"
)

const (
	transcriptionsPath = "/speechtotext/v3.1/transcriptions"
	keyHeader          = "Ocp-Apim-Subscription-Key"
	maxResponseBytes   = 64 << 20
)

// Config configures the batch transcription client
type Config struct {
	Endpoint   string
	Key        string
	Timeout    time.Duration
	MaxRetries int
}

// Client talks to an Azure-style batch speech-to-text API
type Client struct {
	config     Config
	client     *http.Client
	logger     *zap.Logger
	newBackOff func() backoff.BackOff
}

// NewClient creates a new batch transcription client
func NewClient(config Config, logger *zap.Logger) *Client {
	config.Endpoint = strings.TrimRight(config.Endpoint, "/")
	if config.Timeout == 0 {
		config.Timeout = 60 * time.Second
	}

	return &Client{
		config: config,
		client: &http.Client{Timeout: config.Timeout},
		logger: logger,
		newBackOff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = 500 * time.Millisecond
			b.MaxElapsedTime = 30 * time.Second
			return b
		},
	}
}

// OwnsHandle reports whether handle points at the configured provider.
// Handles from elsewhere are never fetched, the subscription key would leak.
func (c *Client) OwnsHandle(handle string) bool {
	return c.config.Endpoint != "" && strings.HasPrefix(handle, c.config.Endpoint+"/")
}

// Submit creates a batch transcription for the given audio URLs and returns its handle
func (c *Client) Submit(ctx context.Context, urls []string, opts Options) (string, error) {
	if len(urls) == 0 {
		return "", apperrors.ErrNoFiles
	}

	req := createRequest{
		ContentURLs: urls,
		Locale:      opts.Locale,
		DisplayName: opts.DisplayName,
		Properties: transcriptionProperties{
			DiarizationEnabled:         opts.Diarization,
			WordLevelTimestampsEnabled: opts.WordTimestamps,
			PunctuationMode:            "DictatedAndAutomatic",
			ProfanityFilterMode:        opts.ProfanityFilterMode,
		},
	}
	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	var t Transcription
	if err := c.doJSON(ctx, http.MethodPost, c.config.Endpoint+transcriptionsPath, body, &t); err != nil {
		return "", err
	}
	if t.Self == "" {
		return "", apperrors.Wrap(apperrors.ErrResponseInvalid, "submission response has no self link")
	}

	c.logger.Info("transcription submitted",
		zap.String("handle", t.Self),
		zap.Int("files", len(urls)),
	)
	return t.Self, nil
}

// Status returns the current state of the transcription behind handle
func (c *Client) Status(ctx context.Context, handle string) (*Transcription, error) {
	if handle == "" {
		return nil, apperrors.ErrMissingHandle
	}
	if !c.OwnsHandle(handle) {
		return nil, apperrors.InvalidField("transcription handle", "not issued by the configured provider")
	}

	var t Transcription
	if err := c.doJSON(ctx, http.MethodGet, handle, nil, &t); err != nil {
		return nil, err
	}
	if t.Status == "" {
		return nil, apperrors.Wrap(apperrors.ErrResponseInvalid, "transcription response has no status")
	}
	return &t, nil
}

// Files lists every result file, following @nextLink pages
func (c *Client) Files(ctx context.Context, filesURL string) ([]File, error) {
	if filesURL == "" {
		return nil, apperrors.Wrap(apperrors.ErrResponseInvalid, "transcription has no files link")
	}

	var files []File
	next := filesURL
	for next != "" {
		if !c.OwnsHandle(next) {
			return nil, apperrors.Wrap(apperrors.ErrResponseInvalid, "files link points outside the provider")
		}
		var page fileList
		if err := c.doJSON(ctx, http.MethodGet, next, nil, &page); err != nil {
			return nil, err
		}
		files = append(files, page.Values...)
		next = page.NextLink
	}
	return files, nil
}

// Results downloads every transcription-kind file of a succeeded job, in manifest order
func (c *Client) Results(ctx context.Context, t *Transcription) ([]Result, error) {
	files, err := c.Files(ctx, t.Links.Files)
	if err != nil {
		return nil, err
	}

	transcripts := lo.Filter(files, func(f File, _ int) bool { return f.Kind == FileKindTranscription })

	var results []Result
	for _, f := range transcripts {
		raw, err := c.download(ctx, f.Links.ContentURL)
		if err != nil {
			return nil, apperrors.Wrapf(err, "failed to fetch result %s", f.Name)
		}
		results = append(results, Result{Raw: raw})
	}
	if len(results) == 0 {
		return nil, apperrors.Wrap(apperrors.ErrResponseInvalid, "no transcription files in manifest")
	}
	return results, nil
}

// download fetches a result document. Content URLs are pre-signed by the
// provider, so the subscription key is not sent.
func (c *Client) download(ctx context.Context, contentURL string) (json.RawMessage, error) {
	if contentURL == "" {
		return nil, apperrors.Wrap(apperrors.ErrResponseInvalid, "result file has no content url")
	}

	var raw json.RawMessage
	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, contentURL, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		data, err := c.send(req)
		if err != nil {
			return err
		}
		if !json.Valid(data) {
			return backoff.Permanent(apperrors.Wrap(apperrors.ErrResponseInvalid, "result file is not JSON"))
		}
		raw = json.RawMessage(data)
		return nil
	}
	if err := backoff.Retry(op, c.retryPolicy(ctx)); err != nil {
		return nil, err
	}
	return raw, nil
}

func (c *Client) retryPolicy(ctx context.Context) backoff.BackOff {
	return backoff.WithContext(backoff.WithMaxRetries(c.newBackOff(), uint64(c.config.MaxRetries)), ctx)
}

// doJSON performs an authenticated request with retries and decodes the JSON response into out
func (c *Client) doJSON(ctx context.Context, method, url string, body []byte, out interface{}) error {
	op := func() error {
		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, url, reader)
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set(keyHeader, c.config.Key)
		req.Header.Set("Accept", "application/json")
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		data, err := c.send(req)
		if err != nil {
			return err
		}
		if err := json.Unmarshal(data, out); err != nil {
			return backoff.Permanent(apperrors.Wrapf(apperrors.ErrResponseInvalid, "decode %s %s: %v", method, url, err))
		}
		return nil
	}

	return backoff.Retry(op, c.retryPolicy(ctx))
}

// send executes req and classifies failures: transport errors, 429 and 5xx
// are retried, other non-2xx responses are permanent.
func (c *Client) send(req *http.Request) ([]byte, error) {
	resp, err := c.client.Do(req)
	if err != nil {
		if req.Context().Err() != nil {
			return nil, backoff.Permanent(err)
		}
		c.logger.Warn("provider request failed", zap.String("url", req.URL.Path), zap.Error(err))
		return nil, apperrors.Wrap(err, "provider request failed")
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to read provider response")
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return data, nil
	}

	err = apperrors.Wrapf(apperrors.ErrProviderRejected, "%s %s returned %d: %s",
		req.Method, req.URL.Path, resp.StatusCode, truncate(string(data), 512))
	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		c.logger.Warn("provider returned retryable status",
			zap.Int("status", resp.StatusCode),
			zap.String("url", req.URL.Path),
		)
		return nil, err
	}
	return nil, backoff.Permanent(err)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
