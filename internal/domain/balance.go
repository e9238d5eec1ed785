package domain

import "github.com/shopspring/decimal"

// CategoryAmounts holds per-category decimal totals.
type CategoryAmounts map[TransactionCategory]decimal.Decimal

// Get returns the amount for a category, zero if absent.
func (c CategoryAmounts) Get(category TransactionCategory) decimal.Decimal {
	if v, ok := c[category]; ok {
		return v
	}
	return decimal.Zero
}

// Add accumulates amount into a category bucket.
func (c CategoryAmounts) Add(category TransactionCategory, amount decimal.Decimal) {
	c[category] = c.Get(category).Add(amount)
}

// MemberBalance is derived state: it is recomputed from the member's
// transaction history on every query and never persisted. Loan amounts are
// stored with interest already baked in, so LoanedGross and
// LoanedWithInterest report the same stored sums.
type MemberBalance struct {
	MemberID           string          `json:"member_id"`
	Contributed        CategoryAmounts `json:"contributed"`
	LoanedGross        CategoryAmounts `json:"loaned_gross"`
	LoanedWithInterest CategoryAmounts `json:"loaned_with_interest"`
	Repaid             CategoryAmounts `json:"repaid"`
	Outstanding        CategoryAmounts `json:"outstanding"`
}

// TotalContributed sums contributions across categories.
func (b *MemberBalance) TotalContributed() decimal.Decimal {
	total := decimal.Zero
	for _, v := range b.Contributed {
		total = total.Add(v)
	}
	return total
}

// TotalOutstanding sums outstanding loans across categories.
func (b *MemberBalance) TotalOutstanding() decimal.Decimal {
	total := decimal.Zero
	for _, v := range b.Outstanding {
		total = total.Add(v)
	}
	return total
}

// GroupTotals is the group-wide derived position.
type GroupTotals struct {
	VaultBalance    decimal.Decimal `json:"vault_balance"` // contributions minus outstanding loans
	LoanPool        decimal.Decimal `json:"loan_pool"`     // sum of outstanding loans
	ActiveLoanCount int             `json:"active_loan_count"`
}

// OutstandingLoanSummary is a pollable reminder row: a member that still
// owes on a loan category. The core exposes these for an external reminder
// system; it never sends messages itself.
type OutstandingLoanSummary struct {
	MemberID    string              `json:"member_id"`
	MemberName  string              `json:"member_name"`
	Category    TransactionCategory `json:"category"`
	Outstanding decimal.Decimal     `json:"outstanding"`
}
