package service

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"kikoba-backend/internal/domain"
	"kikoba-backend/internal/logger"
	"kikoba-backend/internal/metrics"
	"kikoba-backend/internal/repository"
)

type penaltyService struct {
	ledgerRepo  repository.LedgerRepository
	cache       BalanceCache
	audit       auditor
	overdueDays int
	fee         decimal.Decimal
	now         func() time.Time
}

func NewPenaltyService(
	ledgerRepo repository.LedgerRepository,
	activityRepo repository.ActivityLogRepository,
	cache BalanceCache,
	overdueDays int,
	fee decimal.Decimal,
) PenaltyService {
	return &penaltyService{
		ledgerRepo:  ledgerRepo,
		cache:       cache,
		audit:       auditor{activityRepo: activityRepo},
		overdueDays: overdueDays,
		fee:         fee,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// CheckAndApplyPenalties surcharges the member's overdue Dharura loans.
// Each candidate is updated with a read-verify-write on its own record, so
// concurrent invocations for the same member charge every loan exactly
// once; the loser of the race sees a no-op. A failure on one candidate is
// logged and the rest are still processed; unpenalized candidates are
// picked up again on the next invocation.
func (s *penaltyService) CheckAndApplyPenalties(ctx context.Context, memberID string) ([]domain.AppliedPenalty, error) {
	candidates, err := s.ledgerRepo.ListPenaltyCandidates(ctx, memberID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	cutoff := now.AddDate(0, 0, -s.overdueDays)
	applied := make([]domain.AppliedPenalty, 0)
	for _, tx := range candidates {
		if !tx.OccurredAt.Before(cutoff) {
			continue
		}
		newAmount := tx.Amount.Add(s.fee)
		ok, err := s.ledgerRepo.MarkPenalized(ctx, tx.ID, newAmount, tx.Amount, now)
		if err != nil {
			logger.Error("Failed to apply penalty",
				"transaction_id", tx.ID, "member_id", memberID, "error", err)
			s.audit.record(ctx, &domain.ActivityLogEntry{
				ActorID:     "system",
				ActorName:   "penalty engine",
				Action:      domain.ActionPenaltyApplied,
				TargetType:  "transaction",
				TargetID:    tx.ID,
				Description: fmt.Sprintf("failed to penalize overdue Dharura loan of %s", tx.MemberName),
				Status:      domain.ActionStatusFailed,
				FailReason:  err.Error(),
			})
			continue
		}
		if !ok {
			// Lost the race to a concurrent sweep; the charge already
			// happened exactly once.
			continue
		}

		applied = append(applied, domain.AppliedPenalty{
			TransactionID: tx.ID,
			MemberID:      memberID,
			PreAmount:     tx.Amount,
			NewAmount:     newAmount,
			Fee:           s.fee,
		})
		metrics.PenaltiesApplied.Inc()
		s.audit.record(ctx, &domain.ActivityLogEntry{
			ActorID:     "system",
			ActorName:   "penalty engine",
			Action:      domain.ActionPenaltyApplied,
			TargetType:  "transaction",
			TargetID:    tx.ID,
			Description: fmt.Sprintf("applied overdue penalty of %s to %s's Dharura loan", s.fee, tx.MemberName),
			Before:      map[string]any{"amount": tx.Amount.String()},
			After:       map[string]any{"amount": newAmount.String()},
			Status:      domain.ActionStatusSuccess,
		})
	}
	if len(applied) > 0 {
		s.cache.Invalidate(ctx, memberID)
	}
	return applied, nil
}
