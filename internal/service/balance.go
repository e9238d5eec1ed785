package service

import (
	"context"

	"kikoba-backend/internal/domain"
	"kikoba-backend/internal/ledger"
	"kikoba-backend/internal/repository"
)

type balanceService struct {
	ledgerRepo repository.LedgerRepository
	memberRepo repository.MemberRepository
	cache      BalanceCache
}

func NewBalanceService(ledgerRepo repository.LedgerRepository, memberRepo repository.MemberRepository, cache BalanceCache) BalanceService {
	return &balanceService{ledgerRepo: ledgerRepo, memberRepo: memberRepo, cache: cache}
}

func (s *balanceService) GetMemberBalance(ctx context.Context, memberID string) (*domain.MemberBalance, error) {
	if balance, ok := s.cache.GetMemberBalance(ctx, memberID); ok {
		return balance, nil
	}
	if _, err := s.memberRepo.GetByID(ctx, memberID); err != nil {
		return nil, err
	}
	txs, err := s.ledgerRepo.ListByMember(ctx, memberID)
	if err != nil {
		return nil, err
	}
	balance := ledger.Aggregate(txs, memberID)
	s.cache.SetMemberBalance(ctx, balance)
	return balance, nil
}

func (s *balanceService) GetGroupTotals(ctx context.Context) (*domain.GroupTotals, error) {
	txs, err := s.ledgerRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return ledger.GroupTotals(txs), nil
}

func (s *balanceService) GetCategoryBreakdown(ctx context.Context, memberID string, kind domain.TransactionKind) (domain.CategoryAmounts, error) {
	txs, err := s.ledgerRepo.ListByMember(ctx, memberID)
	if err != nil {
		return nil, err
	}
	return ledger.CategoryBreakdown(txs, memberID, kind), nil
}

func (s *balanceService) MembersWithOutstanding(ctx context.Context, category domain.TransactionCategory) ([]domain.OutstandingLoanSummary, error) {
	members, err := s.memberRepo.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	txs, err := s.ledgerRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	var summaries []domain.OutstandingLoanSummary
	for _, member := range members {
		outstanding := ledger.Outstanding(txs, member.ID, category)
		if !outstanding.IsPositive() {
			continue
		}
		summaries = append(summaries, domain.OutstandingLoanSummary{
			MemberID:    member.ID,
			MemberName:  member.Name,
			Category:    category,
			Outstanding: outstanding,
		})
	}
	return summaries, nil
}
