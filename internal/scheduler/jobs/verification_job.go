package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"

	"barangay-hub/internal/service"
)

type VerificationJob struct {
	residents *service.ResidentService
	logger    *zap.Logger
}

func NewVerificationJob(residents *service.ResidentService, logger *zap.Logger) *VerificationJob {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &VerificationJob{
		residents: residents,
		logger:    logger,
	}
}

func (j *VerificationJob) PruneExpired() {
	if j == nil || j.residents == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	cleared, err := j.residents.PruneExpiredVerifications(ctx, time.Now().UTC())
	if err != nil {
		j.logger.Warn("verification token cleanup failed", zap.Error(err))
		return
	}
	if cleared > 0 {
		j.logger.Info("expired verification tokens cleared", zap.Int64("count", cleared))
	}
}
