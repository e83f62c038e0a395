package telemetry

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds Sunny's Prometheus metrics. It observes XP awards,
// graded answers and LLM calls, and instruments HTTP handlers.
type Collector struct {
	registry *prometheus.Registry

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec

	xpAwarded *prometheus.CounterVec
	answers   *prometheus.CounterVec

	llmCalls   *prometheus.CounterVec
	llmLatency *prometheus.HistogramVec
	llmTokens  *prometheus.CounterVec
}

// NewCollector registers the metrics on a fresh registry.
func NewCollector() *Collector {
	const ns = ServiceName
	c := &Collector{
		registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns, Name: "http_requests_total",
			Help: "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: ns, Name: "http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		xpAwarded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns, Name: "xp_awarded_total",
			Help: "Experience points awarded by reason.",
		}, []string{"reason"}),
		answers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns, Name: "quiz_answers_total",
			Help: "Graded quiz answers.",
		}, []string{"topic", "difficulty", "correct"}),
		llmCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns, Name: "llm_calls_total",
			Help: "LLM calls by purpose and outcome.",
		}, []string{"purpose", "outcome"}),
		llmLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: ns, Name: "llm_call_duration_seconds",
			Help:    "LLM call latency.",
			Buckets: []float64{.1, .25, .5, 1, 2, 5, 10, 30},
		}, []string{"purpose"}),
		llmTokens: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns, Name: "llm_tokens_total",
			Help: "LLM tokens by purpose and direction.",
		}, []string{"purpose", "direction"}),
	}
	c.registry.MustRegister(
		c.httpRequests, c.httpDuration,
		c.xpAwarded, c.answers,
		c.llmCalls, c.llmLatency, c.llmTokens,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return c
}

// Registry exposes the underlying registry, mainly for tests.
func (c *Collector) Registry() *prometheus.Registry { return c.registry }

// Handler serves the metrics in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

func (c *Collector) ObserveXP(reason string, amount int) {
	if amount <= 0 {
		return
	}
	c.xpAwarded.WithLabelValues(reason).Add(float64(amount))
}

func (c *Collector) ObserveAnswer(topic, difficulty string, correct bool) {
	c.answers.WithLabelValues(topic, difficulty, strconv.FormatBool(correct)).Inc()
}

func (c *Collector) ObserveLLMCall(purpose, outcome string, latency time.Duration, inputTokens, outputTokens int) {
	c.llmCalls.WithLabelValues(purpose, outcome).Inc()
	c.llmLatency.WithLabelValues(purpose).Observe(latency.Seconds())
	c.llmTokens.WithLabelValues(purpose, "input").Add(float64(inputTokens))
	c.llmTokens.WithLabelValues(purpose, "output").Add(float64(outputTokens))
}

// Middleware records request counts and latency labelled by chi route
// pattern, so path parameters do not explode cardinality.
func (c *Collector) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		c.httpRequests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		c.httpDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}
