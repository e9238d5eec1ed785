package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"kikoba-backend/internal/domain"
	"kikoba-backend/internal/logger"
	"kikoba-backend/internal/metrics"
	"kikoba-backend/internal/repository"
)

const (
	// voteAttempts bounds the optimistic-concurrency retries when two
	// admins vote on the same request at the same time.
	voteAttempts = 3
	// appendAttempts bounds the retries of the loan-disbursement append.
	// The append and the status flip are two records with no shared
	// transaction; retrying the append (at-least-once) is the accepted
	// trade-off here.
	appendAttempts = 3
)

type loanService struct {
	loanRepo   repository.LoanRequestRepository
	ledgerRepo repository.LedgerRepository
	memberRepo repository.MemberRepository
	cache      BalanceCache
	audit      auditor
}

func NewLoanService(
	loanRepo repository.LoanRequestRepository,
	ledgerRepo repository.LedgerRepository,
	memberRepo repository.MemberRepository,
	activityRepo repository.ActivityLogRepository,
	cache BalanceCache,
) LoanService {
	return &loanService{
		loanRepo:   loanRepo,
		ledgerRepo: ledgerRepo,
		memberRepo: memberRepo,
		cache:      cache,
		audit:      auditor{activityRepo: activityRepo},
	}
}

func (s *loanService) SubmitRequest(ctx context.Context, actor domain.Actor, memberID string, amount decimal.Decimal, loanType domain.LoanType, description string) (*domain.LoanRequest, error) {
	if !amount.IsPositive() {
		return nil, domain.NewValidationError("amount", "must be greater than zero")
	}
	if loanType != domain.LoanTypeStandard && loanType != domain.LoanTypeDharura {
		return nil, domain.NewValidationError("type", "must be STANDARD or DHARURA")
	}
	member, err := s.memberRepo.GetByID(ctx, memberID)
	if err != nil {
		return nil, err
	}

	// Snapshot the admins active right now. Admins added later never get
	// a vote on this request; admins removed later keep theirs.
	admins, err := s.memberRepo.ListActiveAdmins(ctx)
	if err != nil {
		return nil, err
	}
	if len(admins) == 0 {
		return nil, domain.ErrNoApprovers
	}
	approvals := make(map[string]domain.VoteDecision, len(admins))
	for _, admin := range admins {
		approvals[admin.ID] = domain.VotePending
	}

	req := &domain.LoanRequest{
		MemberID:    member.ID,
		MemberName:  member.Name,
		Amount:      amount,
		Type:        loanType,
		Description: description,
		Status:      domain.RequestStatusPending,
		Approvals:   approvals,
		RequestedAt: time.Now().UTC(),
	}
	if _, err := s.loanRepo.Create(ctx, req); err != nil {
		return nil, err
	}
	metrics.LoanRequests.WithLabelValues("submitted").Inc()

	s.audit.record(ctx, &domain.ActivityLogEntry{
		ActorID:     actor.ID,
		ActorName:   actor.Name,
		ActorRole:   actor.Role,
		Action:      domain.ActionLoanRequested,
		TargetType:  "loan_request",
		TargetID:    req.ID,
		Description: fmt.Sprintf("%s requested a %s loan of %s (%d approvers)", member.Name, loanType, amount, len(admins)),
		Status:      domain.ActionStatusSuccess,
	})
	return req, nil
}

func (s *loanService) Vote(ctx context.Context, actor domain.Actor, requestID string, decision domain.VoteDecision, reason string) (*domain.LoanRequest, error) {
	if decision != domain.VoteApproved && decision != domain.VoteRejected {
		return nil, domain.NewValidationError("decision", "must be APPROVED or REJECTED")
	}

	// disbursedTx survives retries of the status write so a lost version
	// race never books the loan twice.
	var disbursedTx string

	var lastErr error
	for attempt := 0; attempt < voteAttempts; attempt++ {
		req, err := s.loanRepo.GetByID(ctx, requestID)
		if err != nil {
			return nil, err
		}
		if req.Terminal() {
			return nil, domain.ErrRequestTerminal
		}
		if _, known := req.Approvals[actor.ID]; !known {
			return nil, domain.ErrUnknownVoter
		}

		version := req.Version
		req.Approvals[actor.ID] = decision
		switch {
		case decision == domain.VoteRejected:
			// A single rejection is a veto; remaining votes no longer
			// matter.
			req.Status = domain.RequestStatusRejected
			req.RejectionReason = reason
		case req.Unanimous():
			if disbursedTx == "" {
				disbursedTx, err = s.disburse(ctx, actor, req)
				if err != nil {
					s.auditVote(ctx, actor, req, decision, domain.ActionStatusFailed, err.Error())
					return nil, err
				}
			}
			req.Status = domain.RequestStatusApproved
			req.TransactionID = disbursedTx
		}

		err = s.loanRepo.UpdateIfVersion(ctx, req, version)
		if errors.Is(err, domain.ErrPreconditionFailed) {
			// Another vote landed first; re-read and replay ours.
			lastErr = err
			continue
		}
		if err != nil {
			s.auditVote(ctx, actor, req, decision, domain.ActionStatusFailed, err.Error())
			return nil, err
		}

		s.auditVote(ctx, actor, req, decision, domain.ActionStatusSuccess, "")
		s.auditTerminal(ctx, actor, req)
		return req, nil
	}
	return nil, fmt.Errorf("vote on request %s: %w", requestID, lastErr)
}

// disburse appends the loan transaction that an approved request produces:
// Standard loans are booked at principal plus 10% interest, Dharura at
// principal. The append is retried before failure is surfaced so the
// request is never left Approved without a ledger entry.
func (s *loanService) disburse(ctx context.Context, actor domain.Actor, req *domain.LoanRequest) (string, error) {
	tx := &domain.Transaction{
		Kind:        domain.TransactionKindLoan,
		Category:    req.Type.Category(),
		Amount:      req.DisbursedAmount(),
		MemberID:    req.MemberID,
		MemberName:  req.MemberName,
		OccurredAt:  time.Now().UTC(),
		RecordedBy:  actor.ID,
		Status:      domain.TransactionStatusCompleted,
		Reference:   req.ID,
		Description: req.Description,
	}
	var err error
	for attempt := 1; attempt <= appendAttempts; attempt++ {
		var id string
		id, err = s.ledgerRepo.Append(ctx, tx)
		if err == nil {
			s.cache.Invalidate(ctx, req.MemberID)
			metrics.TransactionsAppended.WithLabelValues(string(tx.Kind), string(tx.Category)).Inc()
			return id, nil
		}
		logger.Warn("Loan disbursement append failed, retrying",
			"request_id", req.ID, "attempt", attempt, "error", err)
	}
	return "", fmt.Errorf("disburse loan for request %s: %w", req.ID, err)
}

func (s *loanService) auditVote(ctx context.Context, actor domain.Actor, req *domain.LoanRequest, decision domain.VoteDecision, status domain.ActionStatus, failReason string) {
	s.audit.record(ctx, &domain.ActivityLogEntry{
		ActorID:     actor.ID,
		ActorName:   actor.Name,
		ActorRole:   actor.Role,
		Action:      domain.ActionLoanVote,
		TargetType:  "loan_request",
		TargetID:    req.ID,
		Description: fmt.Sprintf("voted %s on %s's %s loan request", decision, req.MemberName, req.Type),
		Status:      status,
		FailReason:  failReason,
	})
}

func (s *loanService) auditTerminal(ctx context.Context, actor domain.Actor, req *domain.LoanRequest) {
	switch req.Status {
	case domain.RequestStatusApproved:
		metrics.LoanRequests.WithLabelValues("approved").Inc()
		s.audit.record(ctx, &domain.ActivityLogEntry{
			ActorID:     actor.ID,
			ActorName:   actor.Name,
			ActorRole:   actor.Role,
			Action:      domain.ActionLoanApproved,
			TargetType:  "loan_request",
			TargetID:    req.ID,
			Description: fmt.Sprintf("approved %s loan of %s for %s", req.Type, req.DisbursedAmount(), req.MemberName),
			After:       map[string]any{"transaction_id": req.TransactionID, "amount": req.DisbursedAmount().String()},
			Status:      domain.ActionStatusSuccess,
		})
	case domain.RequestStatusRejected:
		metrics.LoanRequests.WithLabelValues("rejected").Inc()
		s.audit.record(ctx, &domain.ActivityLogEntry{
			ActorID:     actor.ID,
			ActorName:   actor.Name,
			ActorRole:   actor.Role,
			Action:      domain.ActionLoanRejected,
			TargetType:  "loan_request",
			TargetID:    req.ID,
			Description: fmt.Sprintf("rejected %s's %s loan request: %s", req.MemberName, req.Type, req.RejectionReason),
			Status:      domain.ActionStatusSuccess,
		})
	}
}

func (s *loanService) GetRequest(ctx context.Context, requestID string) (*domain.LoanRequest, error) {
	return s.loanRepo.GetByID(ctx, requestID)
}

func (s *loanService) ListPending(ctx context.Context) ([]domain.LoanRequest, error) {
	return s.loanRepo.ListByStatus(ctx, domain.RequestStatusPending)
}
