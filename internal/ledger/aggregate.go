// Package ledger holds the pure balance arithmetic. Every function here is
// a fold over a snapshot of transaction records: no state, no I/O, and the
// result does not depend on the order of the input (addition commutes),
// which is what makes replay from any snapshot safe.
package ledger

import (
	"github.com/shopspring/decimal"

	"kikoba-backend/internal/domain"
)

// Aggregate replays a member's transactions into category balances. The
// input may contain other members' records; they are skipped. Loan amounts
// are stored with interest already baked in at approval time, so the fold
// only sums what was stored and never re-applies interest. Outstanding is
// clamped at zero when reported, not during summation, so a late large
// repayment lands on exactly zero.
func Aggregate(txs []domain.Transaction, memberID string) *domain.MemberBalance {
	balance := &domain.MemberBalance{
		MemberID:           memberID,
		Contributed:        domain.CategoryAmounts{},
		LoanedGross:        domain.CategoryAmounts{},
		LoanedWithInterest: domain.CategoryAmounts{},
		Repaid:             domain.CategoryAmounts{},
		Outstanding:        domain.CategoryAmounts{},
	}
	for _, tx := range txs {
		if tx.MemberID != memberID {
			continue
		}
		switch tx.Kind {
		case domain.TransactionKindContribution:
			balance.Contributed.Add(tx.Category, tx.Amount)
		case domain.TransactionKindLoan:
			balance.LoanedGross.Add(tx.Category, tx.Amount)
			balance.LoanedWithInterest.Add(tx.Category, tx.Amount)
		case domain.TransactionKindRepayment:
			balance.Repaid.Add(tx.Category, tx.Amount)
		}
	}
	for _, category := range []domain.TransactionCategory{domain.CategoryStandard, domain.CategoryDharura} {
		outstanding := balance.LoanedWithInterest.Get(category).Sub(balance.Repaid.Get(category))
		if outstanding.IsNegative() {
			outstanding = decimal.Zero
		}
		balance.Outstanding[category] = outstanding
	}
	return balance
}

// Outstanding computes a single member/category outstanding figure without
// building the full balance.
func Outstanding(txs []domain.Transaction, memberID string, category domain.TransactionCategory) decimal.Decimal {
	return Aggregate(txs, memberID).Outstanding.Get(category)
}

// GroupTotals folds the whole transaction set into the group position:
// vault balance is everything contributed minus everything still out on
// loan, the loan pool is the sum of outstanding amounts, and the active
// loan count is the number of distinct (member, category) pairs that still
// owe.
func GroupTotals(txs []domain.Transaction) *domain.GroupTotals {
	members := make(map[string]bool)
	for _, tx := range txs {
		members[tx.MemberID] = true
	}

	contributions := decimal.Zero
	outstanding := decimal.Zero
	activeLoans := 0
	for memberID := range members {
		balance := Aggregate(txs, memberID)
		contributions = contributions.Add(balance.TotalContributed())
		for _, category := range []domain.TransactionCategory{domain.CategoryStandard, domain.CategoryDharura} {
			out := balance.Outstanding.Get(category)
			outstanding = outstanding.Add(out)
			if out.IsPositive() {
				activeLoans++
			}
		}
	}
	return &domain.GroupTotals{
		VaultBalance:    contributions.Sub(outstanding),
		LoanPool:        outstanding,
		ActiveLoanCount: activeLoans,
	}
}

// CategoryBreakdown sums a member's transactions of one kind per category.
func CategoryBreakdown(txs []domain.Transaction, memberID string, kind domain.TransactionKind) domain.CategoryAmounts {
	breakdown := domain.CategoryAmounts{}
	for _, tx := range txs {
		if tx.MemberID != memberID || tx.Kind != kind {
			continue
		}
		breakdown.Add(tx.Category, tx.Amount)
	}
	return breakdown
}
