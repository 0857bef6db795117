package metrics

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"mcptest/internal/domain"
)

const (
	MetricsNamespace = "mcptest"
)

var (
	nonAlphanumericRegex = regexp.MustCompile(`[^a-zA-Z ]+`)

	testsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "tests_total",
		Help:      "Count of configuration tests by outcome",
	}, []string{
		"outcome",
		"configuration_type",
	})

	testDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: MetricsNamespace,
		Name:      "test_duration_seconds",
		Help:      "Time the launched server was observed",
		Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 30, 60},
	}, []string{
		"outcome",
	})

	timeoutsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "timeouts_total",
		Help:      "Count of runs ended by the observation timeout",
	})

	provisionalTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "provisional_success_total",
		Help:      "Count of successful runs that never reported a connection",
	})

	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "errors_total",
		Help:      "Count of errors",
	}, []string{
		"error",
	})

	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "http_requests_total",
		Help:      "Count of HTTP requests by route and status code",
	}, []string{
		"route",
		"code",
	})
)

// errToLabel tries to make the error string a more valid Prometheus label
func errToLabel(err error) string {
	if err == nil {
		return "nil"
	}
	errClean := nonAlphanumericRegex.ReplaceAllString(err.Error(), "")
	errClean = strings.TrimSpace(errClean)
	errClean = strings.Join(strings.Fields(errClean), "_")
	if errClean == "" {
		return "unknown"
	}
	return errClean
}

// RecordError counts an error under label
func RecordError(label string, err error) {
	if err == nil {
		return
	}
	errorsTotal.WithLabelValues(label + "." + errToLabel(err)).Inc()
}

// RecordTest counts one finished report
func RecordTest(report domain.TestReport) {
	configType := string(report.ConfigurationType)
	if configType == "" {
		configType = "unknown"
	}
	testsTotal.WithLabelValues(string(report.Outcome), configType).Inc()

	if report.Outcome == domain.OutcomePassed || report.Outcome == domain.OutcomeFailed {
		testDuration.WithLabelValues(string(report.Outcome)).Observe(float64(report.DurationMs) / 1000)
	}
	if report.TimedOut {
		timeoutsTotal.Inc()
	}
	if report.Provisional() {
		provisionalTotal.Inc()
	}
}

// RecordHTTPRequest counts one served request
func RecordHTTPRequest(route string, code int) {
	httpRequestsTotal.WithLabelValues(route, strconv.Itoa(code)).Inc()
}

// Observer feeds every report a tester produces into the collectors
type Observer struct{}

// NewObserver creates a new Observer
func NewObserver() *Observer {
	return &Observer{}
}

// Observe records report
func (o *Observer) Observe(report domain.TestReport) {
	RecordTest(report)
}
