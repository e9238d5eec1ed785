package jobs

import (
	"context"

	"kikoba-backend/internal/domain"
	"kikoba-backend/internal/logger"
	"kikoba-backend/internal/metrics"
)

// PenaltySweep runs the overdue-loan check across every active member. The
// engine is idempotent, so overlapping with member-triggered checks is
// harmless.
func (jr *JobRunner) PenaltySweep() {
	jr.runWithRecovery("PenaltySweep", func() {
		ctx := context.Background()

		members, err := jr.services.Members.ListActive(ctx)
		if err != nil {
			logger.Error("Failed to list members for penalty sweep", "error", err)
			return
		}

		applied := 0
		for _, member := range members {
			penalties, err := jr.services.Penalty.CheckAndApplyPenalties(ctx, member.ID)
			if err != nil {
				logger.Error("Penalty check failed for member",
					"member_id", member.ID, "error", err)
				continue
			}
			applied += len(penalties)
		}
		logger.Info("Penalty sweep finished", "members", len(members), "penalties_applied", applied)
	})
}

// OutstandingLoanSummary records the pollable reminder summary: who still
// owes, per loan category. The core never sends reminders itself; an
// external system reads this off the API or the logs.
func (jr *JobRunner) OutstandingLoanSummary() {
	jr.runWithRecovery("OutstandingLoanSummary", func() {
		ctx := context.Background()

		for _, category := range []domain.TransactionCategory{domain.CategoryStandard, domain.CategoryDharura} {
			summaries, err := jr.services.Balance.MembersWithOutstanding(ctx, category)
			if err != nil {
				logger.Error("Failed to compute outstanding summary",
					"category", category, "error", err)
				continue
			}
			metrics.OutstandingLoans.WithLabelValues(string(category)).Set(float64(len(summaries)))
			for _, s := range summaries {
				logger.Info("Member has outstanding loan",
					"member_id", s.MemberID,
					"member_name", s.MemberName,
					"category", s.Category,
					"outstanding", s.Outstanding.String())
			}
		}
	})
}
