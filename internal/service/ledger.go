package service

import (
	"context"
	"fmt"
	"time"

	"kikoba-backend/internal/domain"
	"kikoba-backend/internal/metrics"
	"kikoba-backend/internal/repository"
)

type ledgerService struct {
	ledgerRepo repository.LedgerRepository
	memberRepo repository.MemberRepository
	cache      BalanceCache
	audit      auditor
}

func NewLedgerService(
	ledgerRepo repository.LedgerRepository,
	memberRepo repository.MemberRepository,
	activityRepo repository.ActivityLogRepository,
	cache BalanceCache,
) LedgerService {
	return &ledgerService{
		ledgerRepo: ledgerRepo,
		memberRepo: memberRepo,
		cache:      cache,
		audit:      auditor{activityRepo: activityRepo},
	}
}

func (s *ledgerService) RecordEntry(ctx context.Context, actor domain.Actor, tx *domain.Transaction) (*domain.Transaction, error) {
	if err := tx.Validate(); err != nil {
		return nil, err
	}
	member, err := s.memberRepo.GetByID(ctx, tx.MemberID)
	if err != nil {
		return nil, err
	}
	tx.MemberName = member.Name
	tx.RecordedBy = actor.ID
	if tx.OccurredAt.IsZero() {
		tx.OccurredAt = time.Now().UTC()
	}

	id, err := s.ledgerRepo.Append(ctx, tx)
	if err != nil {
		s.audit.record(ctx, &domain.ActivityLogEntry{
			ActorID:     actor.ID,
			ActorName:   actor.Name,
			ActorRole:   actor.Role,
			Action:      domain.ActionTransactionEntry,
			TargetType:  "transaction",
			TargetID:    tx.MemberID,
			Description: fmt.Sprintf("failed to record %s/%s of %s for %s", tx.Kind, tx.Category, tx.Amount, member.Name),
			Status:      domain.ActionStatusFailed,
			FailReason:  err.Error(),
		})
		return nil, err
	}
	s.cache.Invalidate(ctx, tx.MemberID)
	metrics.TransactionsAppended.WithLabelValues(string(tx.Kind), string(tx.Category)).Inc()

	s.audit.record(ctx, &domain.ActivityLogEntry{
		ActorID:     actor.ID,
		ActorName:   actor.Name,
		ActorRole:   actor.Role,
		Action:      domain.ActionTransactionEntry,
		TargetType:  "transaction",
		TargetID:    id,
		Description: fmt.Sprintf("recorded %s/%s of %s for %s", tx.Kind, tx.Category, tx.Amount, member.Name),
		After:       map[string]any{"amount": tx.Amount.String(), "kind": string(tx.Kind), "category": string(tx.Category)},
		Status:      domain.ActionStatusSuccess,
	})
	return tx, nil
}

func (s *ledgerService) ListMemberTransactions(ctx context.Context, memberID string) ([]domain.Transaction, error) {
	if _, err := s.memberRepo.GetByID(ctx, memberID); err != nil {
		return nil, err
	}
	return s.ledgerRepo.ListByMember(ctx, memberID)
}
