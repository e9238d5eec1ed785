package service

import (
	"context"

	"github.com/shopspring/decimal"

	"kikoba-backend/internal/domain"
)

type BalanceService interface {
	GetMemberBalance(ctx context.Context, memberID string) (*domain.MemberBalance, error)
	GetGroupTotals(ctx context.Context) (*domain.GroupTotals, error)
	GetCategoryBreakdown(ctx context.Context, memberID string, kind domain.TransactionKind) (domain.CategoryAmounts, error)
	// MembersWithOutstanding is the pollable reminder summary: members
	// that still owe on the given loan category.
	MembersWithOutstanding(ctx context.Context, category domain.TransactionCategory) ([]domain.OutstandingLoanSummary, error)
}

type LedgerService interface {
	// RecordEntry books one transaction straight onto the ledger (admin
	// direct entry).
	RecordEntry(ctx context.Context, actor domain.Actor, tx *domain.Transaction) (*domain.Transaction, error)
	ListMemberTransactions(ctx context.Context, memberID string) ([]domain.Transaction, error)
}

type LoanService interface {
	SubmitRequest(ctx context.Context, actor domain.Actor, memberID string, amount decimal.Decimal, loanType domain.LoanType, description string) (*domain.LoanRequest, error)
	Vote(ctx context.Context, actor domain.Actor, requestID string, decision domain.VoteDecision, reason string) (*domain.LoanRequest, error)
	GetRequest(ctx context.Context, requestID string) (*domain.LoanRequest, error)
	ListPending(ctx context.Context) ([]domain.LoanRequest, error)
}

type PenaltyService interface {
	// CheckAndApplyPenalties is safe to call arbitrarily often and
	// concurrently for the same member; each eligible loan is charged
	// exactly once.
	CheckAndApplyPenalties(ctx context.Context, memberID string) ([]domain.AppliedPenalty, error)
}

type ImportService interface {
	ValidateBatch(ctx context.Context, rows []domain.BulkRow) (*domain.ValidationReport, error)
	CommitBatch(ctx context.Context, actor domain.Actor, rows []domain.BulkRow) (*domain.CommitReport, error)
}

type ActivityService interface {
	ListActivity(ctx context.Context, filter domain.ActivityFilter) ([]domain.ActivityLogEntry, error)
}

// BalanceCache is an optional read-through cache of derived member
// balances. It is invalidated, never incrementally mutated, on every new
// transaction, so the transaction history stays the single source of truth.
type BalanceCache interface {
	GetMemberBalance(ctx context.Context, memberID string) (*domain.MemberBalance, bool)
	SetMemberBalance(ctx context.Context, balance *domain.MemberBalance)
	Invalidate(ctx context.Context, memberID string)
}
