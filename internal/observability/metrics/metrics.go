package metrics

import "github.com/prometheus/client_golang/prometheus"

// Submission outcomes recorded by ObserveSubmission.
const (
	OutcomeCreated       = "created"
	OutcomeInvalid       = "invalid"
	OutcomeCaptchaFailed = "captcha_failed"
	OutcomeTopicNotFound = "topic_not_found"
	OutcomeError         = "error"
)

// SubmissionMetrics exposes counters/histograms for the message submission pipeline.
type SubmissionMetrics struct {
	submissionsTotal   *prometheus.CounterVec
	verificationsTotal *prometheus.CounterVec
	submissionLatency  *prometheus.HistogramVec
}

func NewSubmissionMetrics(reg prometheus.Registerer) *SubmissionMetrics {
	m := &SubmissionMetrics{
		submissionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "feedback",
			Subsystem: "messages",
			Name:      "submissions_total",
			Help:      "Total message submissions by outcome",
		}, []string{"outcome"}),
		verificationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "feedback",
			Subsystem: "messages",
			Name:      "verification_total",
			Help:      "Total challenge token verifications by result",
		}, []string{"result"}),
		submissionLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "feedback",
			Subsystem: "messages",
			Name:      "submission_duration_seconds",
			Help:      "Latency of message submissions",
			Buckets:   prometheus.DefBuckets,
		}, []string{"outcome"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.submissionsTotal, m.verificationsTotal, m.submissionLatency)
	return m
}

// ObserveSubmission records one finished submission.
func (m *SubmissionMetrics) ObserveSubmission(outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.submissionsTotal.WithLabelValues(outcome).Inc()
	m.submissionLatency.WithLabelValues(outcome).Observe(seconds)
}

func (m *SubmissionMetrics) ObserveVerification(passed bool) {
	if m == nil {
		return
	}
	result := "failed"
	if passed {
		result = "passed"
	}
	m.verificationsTotal.WithLabelValues(result).Inc()
}
