package document

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"kikoba-backend/internal/docstore"
	"kikoba-backend/internal/domain"
	"kikoba-backend/internal/repository"
)

type ledgerRepository struct {
	db docstore.Store
}

func NewLedgerRepository(db docstore.Store) repository.LedgerRepository {
	return &ledgerRepository{db: db}
}

func (r *ledgerRepository) Append(ctx context.Context, tx *domain.Transaction) (string, error) {
	if err := tx.Validate(); err != nil {
		return "", err
	}
	if tx.Status == "" {
		tx.Status = domain.TransactionStatusCompleted
	}
	if tx.CreatedOn.IsZero() {
		tx.CreatedOn = time.Now().UTC()
	}
	fields := docstore.Fields{
		"kind":            string(tx.Kind),
		"category":        string(tx.Category),
		"amount":          tx.Amount.String(),
		"member_id":       tx.MemberID,
		"member_name":     tx.MemberName,
		"occurred_at":     tx.OccurredAt.UTC(),
		"recorded_by":     tx.RecordedBy,
		"status":          string(tx.Status),
		"reference":       tx.Reference,
		"description":     tx.Description,
		"penalty_applied": tx.PenaltyApplied,
		"created_on":      tx.CreatedOn,
	}
	id, err := r.db.Put(ctx, collTransactions, tx.ID, fields)
	if err != nil {
		return "", fmt.Errorf("append transaction: %w", err)
	}
	tx.ID = id
	return id, nil
}

func (r *ledgerRepository) GetByID(ctx context.Context, id string) (*domain.Transaction, error) {
	fields, err := r.db.Get(ctx, collTransactions, id)
	if errors.Is(err, docstore.ErrNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	tx := transactionFromFields(fields)
	return &tx, nil
}

func (r *ledgerRepository) ListByMember(ctx context.Context, memberID string) ([]domain.Transaction, error) {
	return r.query(ctx, docstore.Filter{"member_id": memberID})
}

func (r *ledgerRepository) ListAll(ctx context.Context) ([]domain.Transaction, error) {
	return r.query(ctx, docstore.Filter{})
}

func (r *ledgerRepository) ListPenaltyCandidates(ctx context.Context, memberID string) ([]domain.Transaction, error) {
	return r.query(ctx, docstore.Filter{
		"member_id":       memberID,
		"kind":            string(domain.TransactionKindLoan),
		"category":        string(domain.CategoryDharura),
		"status":          string(domain.TransactionStatusCompleted),
		"penalty_applied": false,
	})
}

func (r *ledgerRepository) MarkPenalized(ctx context.Context, txID string, newAmount, preAmount decimal.Decimal, at time.Time) (bool, error) {
	err := r.db.UpdateIf(ctx, collTransactions, txID,
		docstore.Filter{"penalty_applied": false},
		docstore.Fields{
			"amount":             newAmount.String(),
			"pre_amount":         preAmount.String(),
			"penalty_applied":    true,
			"penalty_applied_at": at.UTC(),
		})
	switch {
	case errors.Is(err, docstore.ErrNotFound):
		return false, domain.ErrNotFound
	case errors.Is(err, docstore.ErrPreconditionFailed):
		// Already penalized, by us or by a concurrent sweep. Not an error.
		return false, nil
	case err != nil:
		return false, err
	}
	return true, nil
}

func (r *ledgerRepository) query(ctx context.Context, filter docstore.Filter) ([]domain.Transaction, error) {
	docs, err := r.db.Query(ctx, collTransactions, filter)
	if err != nil {
		return nil, err
	}
	txs := make([]domain.Transaction, 0, len(docs))
	for _, fields := range docs {
		txs = append(txs, transactionFromFields(fields))
	}
	return txs, nil
}

func transactionFromFields(f docstore.Fields) domain.Transaction {
	tx := domain.Transaction{
		ID:             getString(f, "id"),
		Kind:           domain.TransactionKind(getString(f, "kind")),
		Category:       domain.TransactionCategory(getString(f, "category")),
		Amount:         getDecimal(f, "amount"),
		MemberID:       getString(f, "member_id"),
		MemberName:     getString(f, "member_name"),
		OccurredAt:     getTime(f, "occurred_at"),
		RecordedBy:     getString(f, "recorded_by"),
		Status:         domain.TransactionStatus(getString(f, "status")),
		Reference:      getString(f, "reference"),
		Description:    getString(f, "description"),
		PenaltyApplied: getBool(f, "penalty_applied"),
		CreatedOn:      getTime(f, "created_on"),
	}
	if tx.PenaltyApplied {
		at := getTime(f, "penalty_applied_at")
		tx.PenaltyAt = &at
		pre := getDecimal(f, "pre_amount")
		tx.PreAmount = &pre
	}
	return tx
}
