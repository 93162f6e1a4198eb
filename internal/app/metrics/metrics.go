package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics contains all Prometheus metrics for the transcription service
type Metrics struct {
	registry *prometheus.Registry

	// Job metrics
	JobsSubmitted   prometheus.Counter
	JobTransitions  *prometheus.CounterVec
	StatusChecks    *prometheus.CounterVec
	AudioSeconds    prometheus.Counter
	SubmitDuration  prometheus.Histogram
	ResultsFetched  prometheus.Counter
	SummariesMade   *prometheus.CounterVec
	JobsSwept       prometheus.Counter
	PollCycles      *prometheus.CounterVec
	PollCycleLength prometheus.Histogram

	// Billing metrics
	GateDecisions *prometheus.CounterVec
	Payments      *prometheus.CounterVec

	// HTTP API metrics
	HTTPRequests        *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

// New creates all metrics on a dedicated registry, together with Go and process collectors
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,

		JobsSubmitted: f.NewCounter(prometheus.CounterOpts{
			Name: "lexscribe_jobs_submitted_total",
			Help: "Total number of transcription jobs submitted to the provider",
		}),
		JobTransitions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "lexscribe_job_transitions_total",
			Help: "Job status transitions by target status",
		}, []string{"status"}),
		StatusChecks: f.NewCounterVec(prometheus.CounterOpts{
			Name: "lexscribe_status_checks_total",
			Help: "Provider status checks by outcome",
		}, []string{"outcome"}),
		AudioSeconds: f.NewCounter(prometheus.CounterOpts{
			Name: "lexscribe_audio_seconds_total",
			Help: "Seconds of audio transcribed",
		}),
		SubmitDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "lexscribe_submit_duration_seconds",
			Help:    "Time spent uploading and submitting a job",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
		}),
		ResultsFetched: f.NewCounter(prometheus.CounterOpts{
			Name: "lexscribe_result_files_fetched_total",
			Help: "Result files downloaded from the provider",
		}),
		SummariesMade: f.NewCounterVec(prometheus.CounterOpts{
			Name: "lexscribe_summaries_total",
			Help: "Summaries generated by outcome",
		}, []string{"outcome"}),
		JobsSwept: f.NewCounter(prometheus.CounterOpts{
			Name: "lexscribe_jobs_swept_total",
			Help: "Jobs deleted after their retention ended",
		}),
		PollCycles: f.NewCounterVec(prometheus.CounterOpts{
			Name: "lexscribe_poll_cycles_total",
			Help: "Poller cycles by outcome",
		}, []string{"outcome"}),
		PollCycleLength: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "lexscribe_poll_cycle_duration_seconds",
			Help:    "Duration of a poller cycle",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
		}),

		GateDecisions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "lexscribe_gate_decisions_total",
			Help: "Usage gate decisions by kind and outcome",
		}, []string{"kind", "outcome"}),
		Payments: f.NewCounterVec(prometheus.CounterOpts{
			Name: "lexscribe_payment_notifications_total",
			Help: "Payment notifications by status",
		}, []string{"status"}),

		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "lexscribe_http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "endpoint", "status_code"}),
		HTTPRequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "lexscribe_http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "endpoint"}),
	}
}

// Registry returns the registry the metrics live in
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordSubmit records a provider submission
func (m *Metrics) RecordSubmit(durationSeconds float64) {
	m.JobsSubmitted.Inc()
	m.SubmitDuration.Observe(durationSeconds)
}

// RecordTransition records a job moving to status
func (m *Metrics) RecordTransition(status string) {
	m.JobTransitions.WithLabelValues(status).Inc()
}

// RecordStatusCheck records the outcome of one status check
func (m *Metrics) RecordStatusCheck(outcome string) {
	m.StatusChecks.WithLabelValues(outcome).Inc()
}

// RecordCompletion records transcribed audio and downloaded files
func (m *Metrics) RecordCompletion(audioSeconds float64, files int) {
	m.AudioSeconds.Add(audioSeconds)
	m.ResultsFetched.Add(float64(files))
}

// RecordSummary records a summary attempt
func (m *Metrics) RecordSummary(outcome string) {
	m.SummariesMade.WithLabelValues(outcome).Inc()
}

// RecordSweep records jobs removed by retention
func (m *Metrics) RecordSweep(n int) {
	m.JobsSwept.Add(float64(n))
}

// RecordPollCycle records one poller run
func (m *Metrics) RecordPollCycle(outcome string, durationSeconds float64) {
	m.PollCycles.WithLabelValues(outcome).Inc()
	m.PollCycleLength.Observe(durationSeconds)
}

// RecordGateDecision records a usage gate outcome
func (m *Metrics) RecordGateDecision(kind, outcome string) {
	m.GateDecisions.WithLabelValues(kind, outcome).Inc()
}

// RecordPayment records a processed payment notification
func (m *Metrics) RecordPayment(status string) {
	m.Payments.WithLabelValues(status).Inc()
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, endpoint, statusCode string, durationSeconds float64) {
	m.HTTPRequests.WithLabelValues(method, endpoint, statusCode).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, endpoint).Observe(durationSeconds)
}
