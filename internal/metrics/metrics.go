package metrics

import (
	"time"

	"github.com/SAP-F-2025/quiz-generator/internal/models"
	"github.com/SAP-F-2025/quiz-generator/internal/utils"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

const (
	DefaultJob     = "quiz_generator_batch"
	DefaultGateway = "localhost:9091"
)

// Recorder collects per-run metrics in a private registry and pushes them to
// a Prometheus Pushgateway. A nil gateway URL disables pushing.
type Recorder struct {
	registry  *prometheus.Registry
	runs      *prometheus.CounterVec
	duration  prometheus.Gauge
	questions prometheus.Gauge

	gatewayURL string
	job        string
	logger     utils.Logger
}

func NewRecorder(gatewayURL string, logger utils.Logger) *Recorder {
	if logger == nil {
		logger = utils.NewNopLogger()
	}
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "quiz_generator_runs_total",
			Help: "Total number of quiz generator runs",
		}, []string{"status"}),
		duration: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "quiz_generator_last_run_duration_seconds",
			Help: "Duration of the last quiz generator run in seconds",
		}),
		questions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "quiz_generator_questions_generated_total",
			Help: "Number of questions generated in the last run",
		}),
		gatewayURL: gatewayURL,
		job:        DefaultJob,
		logger:     logger,
	}
	r.registry.MustRegister(r.runs, r.duration, r.questions)
	return r
}

func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// ObserveRun records the outcome of a run. Failed runs report zero questions.
func (r *Recorder) ObserveRun(status models.RunStatus, elapsed time.Duration, questionCount int) {
	r.runs.WithLabelValues(string(status)).Inc()
	r.duration.Set(elapsed.Seconds())
	r.questions.Set(float64(questionCount))
}

// Push sends the registry to the gateway. Failures are logged and returned but
// callers are not expected to abort on them.
func (r *Recorder) Push() error {
	if r.gatewayURL == "" {
		return nil
	}
	err := push.New(r.gatewayURL, r.job).Gatherer(r.registry).Push()
	if err != nil {
		r.logger.Error("Failed to push metrics to Pushgateway", "gateway", r.gatewayURL, "error", err)
		return err
	}
	r.logger.Info("Metrics pushed to Pushgateway", "gateway", r.gatewayURL, "job", r.job)
	return nil
}
