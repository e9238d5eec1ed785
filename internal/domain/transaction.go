package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type TransactionKind string

const (
	TransactionKindContribution TransactionKind = "CONTRIBUTION"
	TransactionKindLoan         TransactionKind = "LOAN"
	TransactionKindRepayment    TransactionKind = "REPAYMENT"
)

type TransactionCategory string

const (
	CategoryHisa     TransactionCategory = "HISA"
	CategoryJamii    TransactionCategory = "JAMII"
	CategoryStandard TransactionCategory = "STANDARD"
	CategoryDharura  TransactionCategory = "DHARURA"
)

type TransactionStatus string

const (
	TransactionStatusCompleted TransactionStatus = "COMPLETED"
	TransactionStatusPending   TransactionStatus = "PENDING"
)

// Transaction is a single financial event on the group ledger. Once
// committed it is immutable, with one exception: the penalty engine may
// apply a flat surcharge to an overdue Dharura loan exactly once.
type Transaction struct {
	ID             string              `json:"id"`
	Kind           TransactionKind     `json:"kind"`
	Category       TransactionCategory `json:"category"`
	Amount         decimal.Decimal     `json:"amount"`
	MemberID       string              `json:"member_id"`
	MemberName     string              `json:"member_name"` // snapshot at write time
	OccurredAt     time.Time           `json:"occurred_at"` // event date, not write time
	RecordedBy     string              `json:"recorded_by"`
	Status         TransactionStatus   `json:"status"`
	Reference      string              `json:"reference,omitempty"`
	Description    string              `json:"description,omitempty"`
	PenaltyApplied bool                `json:"penalty_applied,omitempty"`
	PenaltyAt      *time.Time          `json:"penalty_applied_at,omitempty"`
	PreAmount      *decimal.Decimal    `json:"pre_amount,omitempty"`
	CreatedOn      time.Time           `json:"created_on"`
}

// validPairs restricts which kind/category combinations may reach the ledger.
var validPairs = map[TransactionKind][]TransactionCategory{
	TransactionKindContribution: {CategoryHisa, CategoryJamii},
	TransactionKindLoan:         {CategoryStandard, CategoryDharura},
	TransactionKindRepayment:    {CategoryStandard, CategoryDharura},
}

// ValidKindCategory reports whether the kind/category pair is allowed.
func ValidKindCategory(kind TransactionKind, category TransactionCategory) bool {
	for _, c := range validPairs[kind] {
		if c == category {
			return true
		}
	}
	return false
}

// Validate checks the invariants every transaction must satisfy before it
// is appended: a strictly positive amount, an allowed kind/category pair
// and a member to book it against.
func (t *Transaction) Validate() error {
	if !t.Amount.IsPositive() {
		return NewValidationError("amount", "must be greater than zero")
	}
	if !ValidKindCategory(t.Kind, t.Category) {
		return NewValidationError("category", "invalid kind/category pair")
	}
	if t.MemberID == "" {
		return NewValidationError("member_id", "cannot be empty")
	}
	return nil
}
