package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "loginprobe"

var (
	attempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "attempts_total",
			Help:      "Login attempts by outcome (success, api_error, transport_error, dropped)",
		}, []string{"outcome"})

	failures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transport_failures_total",
			Help:      "Transport failures by kind",
		}, []string{"kind"})

	duration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "attempt_duration_seconds",
			Help:      "Time from submission to terminal state",
			Buckets:   prometheus.DefBuckets,
		})

	inFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "attempts_in_flight",
			Help:      "Attempts waiting for the remote endpoint",
		})

	// TokenWrites is labelled result="ok" or result="error".
	TokenWrites = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "token_writes_total",
			Help:      "Token store writes by result",
		}, []string{"result"})

	liveClients = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "live_clients",
			Help:      "Console websocket connections following attempt state",
		})
)

func init() {
	prometheus.MustRegister(attempts)
	prometheus.MustRegister(failures)
	prometheus.MustRegister(duration)
	prometheus.MustRegister(inFlight)
	prometheus.MustRegister(TokenWrites)
	prometheus.MustRegister(liveClients)
}

const (
	OutcomeSuccess        = "success"
	OutcomeAPIError       = "api_error"
	OutcomeTransportError = "transport_error"
	OutcomeDropped        = "dropped"
)

func AttemptStarted() {
	inFlight.Inc()
}

func AttemptFinished(outcome string, took time.Duration) {
	inFlight.Dec()
	attempts.WithLabelValues(outcome).Inc()
	duration.Observe(took.Seconds())
}

func AttemptDropped() {
	attempts.WithLabelValues(OutcomeDropped).Inc()
}

func TransportFailure(kind string) {
	failures.WithLabelValues(kind).Inc()
}

func TokenWrite(err error) {
	if err != nil {
		TokenWrites.WithLabelValues("error").Inc()
		return
	}
	TokenWrites.WithLabelValues("ok").Inc()
}

func LiveClientConnected() {
	liveClients.Inc()
}

func LiveClientDisconnected() {
	liveClients.Dec()
}
