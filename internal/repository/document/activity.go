package document

import (
	"context"
	"fmt"
	"time"

	"kikoba-backend/internal/docstore"
	"kikoba-backend/internal/domain"
	"kikoba-backend/internal/repository"
)

type activityLogRepository struct {
	db docstore.Store
}

func NewActivityLogRepository(db docstore.Store) repository.ActivityLogRepository {
	return &activityLogRepository{db: db}
}

func (r *activityLogRepository) Record(ctx context.Context, entry *domain.ActivityLogEntry) (string, error) {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}
	fields := docstore.Fields{
		"actor_id":    entry.ActorID,
		"actor_name":  entry.ActorName,
		"actor_role":  string(entry.ActorRole),
		"action":      string(entry.Action),
		"target_type": entry.TargetType,
		"target_id":   entry.TargetID,
		"description": entry.Description,
		"status":      string(entry.Status),
		"fail_reason": entry.FailReason,
		"group_id":    entry.GroupID,
		"timestamp":   entry.Timestamp.UTC(),
	}
	if entry.Before != nil {
		fields["before"] = entry.Before
	}
	if entry.After != nil {
		fields["after"] = entry.After
	}
	id, err := r.db.Put(ctx, collActivityLogs, entry.ID, fields)
	if err != nil {
		return "", fmt.Errorf("record activity: %w", err)
	}
	entry.ID = id
	return id, nil
}

func (r *activityLogRepository) List(ctx context.Context, filter domain.ActivityFilter) ([]domain.ActivityLogEntry, error) {
	match := docstore.Filter{}
	if filter.ActorID != "" {
		match["actor_id"] = filter.ActorID
	}
	if filter.Action != "" {
		match["action"] = string(filter.Action)
	}
	if filter.TargetType != "" {
		match["target_type"] = filter.TargetType
	}
	if filter.TargetID != "" {
		match["target_id"] = filter.TargetID
	}
	if filter.Status != "" {
		match["status"] = string(filter.Status)
	}
	docs, err := r.db.Query(ctx, collActivityLogs, match)
	if err != nil {
		return nil, err
	}
	entries := make([]domain.ActivityLogEntry, 0, len(docs))
	for _, f := range docs {
		entries = append(entries, domain.ActivityLogEntry{
			ID:          getString(f, "id"),
			ActorID:     getString(f, "actor_id"),
			ActorName:   getString(f, "actor_name"),
			ActorRole:   domain.Role(getString(f, "actor_role")),
			Action:      domain.ActionType(getString(f, "action")),
			TargetType:  getString(f, "target_type"),
			TargetID:    getString(f, "target_id"),
			Description: getString(f, "description"),
			Before:      getAnyMap(f, "before"),
			After:       getAnyMap(f, "after"),
			Status:      domain.ActionStatus(getString(f, "status")),
			FailReason:  getString(f, "fail_reason"),
			GroupID:     getString(f, "group_id"),
			Timestamp:   getTime(f, "timestamp"),
		})
	}
	return entries, nil
}
