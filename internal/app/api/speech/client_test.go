package speech

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/cenkalti/backoff"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	apperrors "lexscribe/internal/app/errors"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	c := NewClient(Config{Endpoint: server.URL, Key: "secret", MaxRetries: 2}, zap.NewNop())
	c.newBackOff = func() backoff.BackOff { return &backoff.ZeroBackOff{} }
	return c, server
}

func TestSubmit(t *testing.T) {
	var got createRequest
	mux := http.NewServeMux()
	var base string
	mux.HandleFunc(transcriptionsPath, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "secret", r.Header.Get(keyHeader))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
		fmt.Fprintf(w, `{"self":"%s/speechtotext/v3.1/transcriptions/abc","status":"NotStarted"}`, base)
	})
	c, server := newTestClient(t, mux)
	base = server.URL

	handle, err := c.Submit(context.Background(), []string{"https://blob/a.wav", "https://blob/b.wav"}, Options{
		Locale:      "en-US",
		DisplayName: "job-1",
		Diarization: true,
	})
	require.NoError(t, err)
	assert.Equal(t, server.URL+"/speechtotext/v3.1/transcriptions/abc", handle)
	assert.Equal(t, []string{"https://blob/a.wav", "https://blob/b.wav"}, got.ContentURLs)
	assert.Equal(t, "en-US", got.Locale)
	assert.True(t, got.Properties.DiarizationEnabled)
}

func TestSubmitRequiresFiles(t *testing.T) {
	c, _ := newTestClient(t, http.NotFoundHandler())
	_, err := c.Submit(context.Background(), nil, Options{})
	assert.ErrorIs(t, err, apperrors.ErrNoFiles)
}

func TestSubmitRetriesServerErrors(t *testing.T) {
	var calls int32
	var base string
	c, server := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		fmt.Fprintf(w, `{"self":"%s/speechtotext/v3.1/transcriptions/x"}`, base)
	}))
	base = server.URL

	handle, err := c.Submit(context.Background(), []string{"https://blob/a.wav"}, Options{})
	require.NoError(t, err)
	assert.NotEmpty(t, handle)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestSubmitDoesNotRetryClientErrors(t *testing.T) {
	var calls int32
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"code":"InvalidUri"}`))
	}))

	_, err := c.Submit(context.Background(), []string{"https://blob/a.wav"}, Options{})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrProviderRejected)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestStatus(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    Status
		wantMsg string
		wantErr error
	}{
		{name: "running", body: `{"status":"Running"}`, want: StatusRunning},
		{name: "succeeded", body: `{"status":"Succeeded","links":{"files":"f"}}`, want: StatusSucceeded},
		{
			name:    "failed",
			body:    `{"status":"Failed","properties":{"error":{"code":"InvalidData","message":"bad audio"}}}`,
			want:    StatusFailed,
			wantMsg: "InvalidData: bad audio",
		},
		{name: "unlisted status passes through", body: `{"status":"Paused"}`, want: Status("Paused")},
		{name: "missing status", body: `{"self":"x"}`, wantErr: apperrors.ErrResponseInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, server := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			}))

			got, err := c.Status(context.Background(), server.URL+"/speechtotext/v3.1/transcriptions/abc")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Status)
			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, got.ErrorMessage())
			}
		})
	}
}

func TestStatusRejectsForeignHandle(t *testing.T) {
	var calls int32
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))

	_, err := c.Status(context.Background(), "https://attacker.example/steal")
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	_, err = c.Status(context.Background(), "")
	assert.ErrorIs(t, err, apperrors.ErrMissingHandle)
	assert.Zero(t, atomic.LoadInt32(&calls))
}

func TestResultsFollowsPagesAndFiltersKinds(t *testing.T) {
	var base string
	mux := http.NewServeMux()
	mux.HandleFunc("/files", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"values":[
			{"kind":"TranscriptionReport","links":{"contentUrl":"%[1]s/report"}},
			{"kind":"Transcription","name":"a","links":{"contentUrl":"%[1]s/content/a"}}
		],"@nextLink":"%[1]s/files2"}`, base)
	})
	mux.HandleFunc("/files2", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"values":[{"kind":"Transcription","name":"b","links":{"contentUrl":"%s/content/b"}}]}`, base)
	})
	mux.HandleFunc("/content/a", func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get(keyHeader))
		_, _ = w.Write([]byte(`{"durationMilliseconds":1000}`))
	})
	mux.HandleFunc("/content/b", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"durationMilliseconds":2500}`))
	})
	c, server := newTestClient(t, mux)
	base = server.URL

	tr := &Transcription{Status: StatusSucceeded}
	tr.Links.Files = server.URL + "/files"

	results, err := c.Results(context.Background(), tr)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.JSONEq(t, `{"durationMilliseconds":1000}`, string(results[0].Raw))
	assert.JSONEq(t, `{"durationMilliseconds":2500}`, string(results[1].Raw))
	assert.InDelta(t, 3.5, TotalDurationSeconds(results), 0.0001)
}

func TestResultsWithoutTranscriptionFiles(t *testing.T) {
	c, server := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"values":[]}`))
	}))

	tr := &Transcription{}
	tr.Links.Files = server.URL + "/files"
	_, err := c.Results(context.Background(), tr)
	assert.ErrorIs(t, err, apperrors.ErrResponseInvalid)
}
