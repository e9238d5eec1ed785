package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"kikoba-backend/internal/domain"
)

type LedgerRepository interface {
	// Append validates and writes one transaction, returning its id. The
	// record is write-once; only MarkPenalized may touch it afterwards.
	Append(ctx context.Context, tx *domain.Transaction) (string, error)
	GetByID(ctx context.Context, id string) (*domain.Transaction, error)
	ListByMember(ctx context.Context, memberID string) ([]domain.Transaction, error)
	ListAll(ctx context.Context) ([]domain.Transaction, error)
	// ListPenaltyCandidates returns the member's completed Dharura loans
	// that have not been penalized yet.
	ListPenaltyCandidates(ctx context.Context, memberID string) ([]domain.Transaction, error)
	// MarkPenalized applies the one permitted mutation of a committed
	// transaction. It reports applied=false without error when the record
	// was already penalized, which makes repeated sweeps idempotent.
	MarkPenalized(ctx context.Context, txID string, newAmount, preAmount decimal.Decimal, at time.Time) (applied bool, err error)
}

type LoanRequestRepository interface {
	Create(ctx context.Context, req *domain.LoanRequest) (string, error)
	GetByID(ctx context.Context, id string) (*domain.LoanRequest, error)
	ListByStatus(ctx context.Context, status domain.RequestStatus) ([]domain.LoanRequest, error)
	// UpdateIfVersion writes the request's mutable fields provided the
	// stored version still equals expected. domain.ErrPreconditionFailed
	// signals a lost race; the caller re-reads and replays its vote.
	UpdateIfVersion(ctx context.Context, req *domain.LoanRequest, expected int64) error
}

type MemberRepository interface {
	Create(ctx context.Context, member *domain.Member) (string, error)
	GetByID(ctx context.Context, id string) (*domain.Member, error)
	GetByMemberNo(ctx context.Context, memberNo string) (*domain.Member, error)
	ListActive(ctx context.Context) ([]domain.Member, error)
	ListActiveAdmins(ctx context.Context) ([]domain.Member, error)
}

type ActivityLogRepository interface {
	// Record appends one audit entry. Entries are never updated or
	// deleted by the core.
	Record(ctx context.Context, entry *domain.ActivityLogEntry) (string, error)
	List(ctx context.Context, filter domain.ActivityFilter) ([]domain.ActivityLogEntry, error)
}
