package scheduler

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const specVerificationClean = "0 0 3 * * *"

type PublishTask interface {
	SweepDue()
}

type VerificationTask interface {
	PruneExpired()
}

type Deps struct {
	PublishJob      PublishTask
	VerificationJob VerificationTask
}

// NewScheduler wires the background jobs onto a cron runner. The publish
// sweep runs at a fixed cadence taken from config; token cleanup runs once
// a night. The caller owns Start and Stop.
func NewScheduler(deps Deps, publishInterval time.Duration, logger *zap.Logger) *cron.Cron {
	if logger == nil {
		logger = zap.NewNop()
	}
	if publishInterval <= 0 {
		publishInterval = time.Minute
	}

	c := cron.New(cron.WithSeconds(), cron.WithLocation(time.UTC))

	if deps.PublishJob != nil {
		spec := fmt.Sprintf("@every %s", publishInterval)
		addFunc(c, spec, "announcement.publish_due", logger, deps.PublishJob.SweepDue)
	}
	if deps.VerificationJob != nil {
		addFunc(c, specVerificationClean, "resident.prune_verifications", logger, deps.VerificationJob.PruneExpired)
	}

	return c
}

func addFunc(c *cron.Cron, spec string, name string, logger *zap.Logger, fn func()) {
	if c == nil || fn == nil {
		return
	}

	if _, err := c.AddFunc(spec, func() {
		defer recoverJobPanic(name, logger)
		start := time.Now()
		fn()
		logger.Debug("scheduler job finished", zap.String("job", name), zap.Duration("cost", time.Since(start)))
	}); err != nil {
		logger.Error("register scheduler job failed",
			zap.String("job", name),
			zap.String("spec", spec),
			zap.Error(err),
		)
	}
}

func recoverJobPanic(jobName string, logger *zap.Logger) {
	if logger == nil {
		return
	}

	if recovered := recover(); recovered != nil {
		logger.Error("scheduler job panic recovered",
			zap.String("job", jobName),
			zap.Any("panic", recovered),
		)
	}
}
