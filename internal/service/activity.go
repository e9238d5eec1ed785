package service

import (
	"context"

	"kikoba-backend/internal/domain"
	"kikoba-backend/internal/logger"
	"kikoba-backend/internal/repository"
)

type activityService struct {
	activityRepo repository.ActivityLogRepository
}

func NewActivityService(activityRepo repository.ActivityLogRepository) ActivityService {
	return &activityService{activityRepo: activityRepo}
}

func (s *activityService) ListActivity(ctx context.Context, filter domain.ActivityFilter) ([]domain.ActivityLogEntry, error) {
	return s.activityRepo.List(ctx, filter)
}

// auditor writes audit entries for the mutating services. The audit log is
// a write-only side channel: a failed audit write is logged but never fails
// the operation it describes.
type auditor struct {
	activityRepo repository.ActivityLogRepository
}

func (a auditor) record(ctx context.Context, entry *domain.ActivityLogEntry) {
	if _, err := a.activityRepo.Record(ctx, entry); err != nil {
		logger.Error("Failed to write audit entry",
			"action", entry.Action, "target_id", entry.TargetID, "error", err)
	}
}
