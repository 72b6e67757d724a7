package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"

	"barangay-hub/internal/metrics"
	"barangay-hub/internal/service"
)

// PublishJob drives the announcement publication sweep. A tick that fails
// logs and bows out; nothing is retried inside the tick because the next
// one redoes the same conditional update.
type PublishJob struct {
	announcements *service.AnnouncementService
	logger        *zap.Logger
}

func NewPublishJob(announcements *service.AnnouncementService, logger *zap.Logger) *PublishJob {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &PublishJob{
		announcements: announcements,
		logger:        logger,
	}
}

func (j *PublishJob) SweepDue() {
	if j == nil || j.announcements == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	start := time.Now()
	promoted, err := j.announcements.PublishDue(ctx, time.Now().UTC())
	metrics.ObservePublishSweep(promoted, time.Since(start), err)
	if err != nil {
		j.logger.Warn("publication sweep failed", zap.Error(err))
	}
}
