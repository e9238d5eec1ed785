package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type LoanType string

const (
	LoanTypeStandard LoanType = "STANDARD"
	LoanTypeDharura  LoanType = "DHARURA"
)

// Category returns the ledger category a loan of this type is booked under.
func (t LoanType) Category() TransactionCategory {
	if t == LoanTypeDharura {
		return CategoryDharura
	}
	return CategoryStandard
}

type RequestStatus string

const (
	RequestStatusPending  RequestStatus = "PENDING"
	RequestStatusApproved RequestStatus = "APPROVED"
	RequestStatusRejected RequestStatus = "REJECTED"
)

type VoteDecision string

const (
	VotePending  VoteDecision = "PENDING"
	VoteApproved VoteDecision = "APPROVED"
	VoteRejected VoteDecision = "REJECTED"
)

// StandardInterestRate is baked into the stored amount when a Standard loan
// request is approved. Dharura loans are interest-free.
var StandardInterestRate = decimal.NewFromFloat(0.10)

// LoanRequest is a consensus request: it needs a vote from every admin that
// was active when the request was submitted. The admin set is snapshotted
// into Approvals at creation and never changes afterwards.
type LoanRequest struct {
	ID              string                  `json:"id"`
	MemberID        string                  `json:"member_id"`
	MemberName      string                  `json:"member_name"`
	Amount          decimal.Decimal         `json:"amount"` // principal, pre-interest
	Type            LoanType                `json:"type"`
	Description     string                  `json:"description,omitempty"`
	Status          RequestStatus           `json:"status"`
	Approvals       map[string]VoteDecision `json:"approvals"`
	RejectionReason string                  `json:"rejection_reason,omitempty"`
	TransactionID   string                  `json:"transaction_id,omitempty"` // set once the approval booking lands
	RequestedAt     time.Time               `json:"requested_at"`
	Version         int64                   `json:"version"`
}

// Terminal reports whether the request can still accept votes.
func (r *LoanRequest) Terminal() bool {
	return r.Status != RequestStatusPending
}

// Unanimous reports whether every snapshotted admin has approved.
func (r *LoanRequest) Unanimous() bool {
	if len(r.Approvals) == 0 {
		return false
	}
	for _, d := range r.Approvals {
		if d != VoteApproved {
			return false
		}
	}
	return true
}

// DisbursedAmount is the amount booked on the ledger when the request is
// approved: Standard loans carry 10% interest rounded to a whole unit,
// Dharura loans are disbursed at principal.
func (r *LoanRequest) DisbursedAmount() decimal.Decimal {
	if r.Type == LoanTypeDharura {
		return r.Amount
	}
	return r.Amount.Mul(decimal.NewFromInt(1).Add(StandardInterestRate)).Round(0)
}
