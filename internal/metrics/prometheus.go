package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	AnnouncementsPromoted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "brgy_announcements_promoted_total",
		Help: "Scheduled announcements promoted to published by the sweeper",
	})

	PublishSweepDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "brgy_publish_sweep_duration_seconds",
		Help:    "Duration of a publication sweep tick",
		Buckets: prometheus.DefBuckets,
	})

	PublishSweepErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "brgy_publish_sweep_errors_total",
		Help: "Publication sweep ticks that failed and were skipped",
	})

	SubmissionsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "brgy_submissions_created_total",
		Help: "Submissions accepted, by submission type",
	}, []string{"type"})

	NotificationsSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "brgy_notifications_sent_total",
		Help: "Outbound notifications, by channel and outcome",
	}, []string{"channel", "outcome"})
)

func ObservePublishSweep(promoted int64, duration time.Duration, err error) {
	PublishSweepDuration.Observe(duration.Seconds())
	if err != nil {
		PublishSweepErrors.Inc()
		return
	}
	if promoted > 0 {
		AnnouncementsPromoted.Add(float64(promoted))
	}
}

func CountSubmission(submissionType string) {
	if submissionType == "" {
		submissionType = "unknown"
	}
	SubmissionsCreated.WithLabelValues(submissionType).Inc()
}

func CountNotification(channel string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	NotificationsSent.WithLabelValues(channel, outcome).Inc()
}
