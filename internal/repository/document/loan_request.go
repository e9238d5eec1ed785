package document

import (
	"context"
	"errors"
	"fmt"
	"time"

	"kikoba-backend/internal/docstore"
	"kikoba-backend/internal/domain"
	"kikoba-backend/internal/repository"
)

type loanRequestRepository struct {
	db docstore.Store
}

func NewLoanRequestRepository(db docstore.Store) repository.LoanRequestRepository {
	return &loanRequestRepository{db: db}
}

func (r *loanRequestRepository) Create(ctx context.Context, req *domain.LoanRequest) (string, error) {
	if req.RequestedAt.IsZero() {
		req.RequestedAt = time.Now().UTC()
	}
	req.Version = 1
	id, err := r.db.Put(ctx, collLoanRequests, req.ID, loanRequestFields(req))
	if err != nil {
		return "", fmt.Errorf("create loan request: %w", err)
	}
	req.ID = id
	return id, nil
}

func (r *loanRequestRepository) GetByID(ctx context.Context, id string) (*domain.LoanRequest, error) {
	fields, err := r.db.Get(ctx, collLoanRequests, id)
	if errors.Is(err, docstore.ErrNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	req := loanRequestFromFields(fields)
	return &req, nil
}

func (r *loanRequestRepository) ListByStatus(ctx context.Context, status domain.RequestStatus) ([]domain.LoanRequest, error) {
	docs, err := r.db.Query(ctx, collLoanRequests, docstore.Filter{"status": string(status)})
	if err != nil {
		return nil, err
	}
	reqs := make([]domain.LoanRequest, 0, len(docs))
	for _, fields := range docs {
		reqs = append(reqs, loanRequestFromFields(fields))
	}
	return reqs, nil
}

func (r *loanRequestRepository) UpdateIfVersion(ctx context.Context, req *domain.LoanRequest, expected int64) error {
	req.Version = expected + 1
	err := r.db.UpdateIf(ctx, collLoanRequests, req.ID,
		docstore.Filter{"version": expected},
		docstore.Fields{
			"approvals":        approvalsToStrings(req.Approvals),
			"status":           string(req.Status),
			"rejection_reason": req.RejectionReason,
			"transaction_id":   req.TransactionID,
			"version":          req.Version,
		})
	switch {
	case errors.Is(err, docstore.ErrNotFound):
		req.Version = expected
		return domain.ErrNotFound
	case errors.Is(err, docstore.ErrPreconditionFailed):
		req.Version = expected
		return domain.ErrPreconditionFailed
	}
	return err
}

func loanRequestFields(req *domain.LoanRequest) docstore.Fields {
	return docstore.Fields{
		"member_id":        req.MemberID,
		"member_name":      req.MemberName,
		"amount":           req.Amount.String(),
		"type":             string(req.Type),
		"description":      req.Description,
		"status":           string(req.Status),
		"approvals":        approvalsToStrings(req.Approvals),
		"rejection_reason": req.RejectionReason,
		"transaction_id":   req.TransactionID,
		"requested_at":     req.RequestedAt.UTC(),
		"version":          req.Version,
	}
}

func loanRequestFromFields(f docstore.Fields) domain.LoanRequest {
	approvals := make(map[string]domain.VoteDecision)
	for adminID, decision := range getStringMap(f, "approvals") {
		approvals[adminID] = domain.VoteDecision(decision)
	}
	return domain.LoanRequest{
		ID:              getString(f, "id"),
		MemberID:        getString(f, "member_id"),
		MemberName:      getString(f, "member_name"),
		Amount:          getDecimal(f, "amount"),
		Type:            domain.LoanType(getString(f, "type")),
		Description:     getString(f, "description"),
		Status:          domain.RequestStatus(getString(f, "status")),
		Approvals:       approvals,
		RejectionReason: getString(f, "rejection_reason"),
		TransactionID:   getString(f, "transaction_id"),
		RequestedAt:     getTime(f, "requested_at"),
		Version:         getInt64(f, "version"),
	}
}

func approvalsToStrings(approvals map[string]domain.VoteDecision) map[string]string {
	out := make(map[string]string, len(approvals))
	for adminID, decision := range approvals {
		out[adminID] = string(decision)
	}
	return out
}
