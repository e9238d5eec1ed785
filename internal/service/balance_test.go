package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kikoba-backend/internal/domain"
)

var seedDate = time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)

func newBalanceFixture(t *testing.T) (*fixture, BalanceService) {
	f := newFixture(t)
	svc := NewBalanceService(f.store.LedgerRepository, f.store.MemberRepository, f.cache)
	return f, svc
}

func TestBalanceService_GetMemberBalance(t *testing.T) {
	f, svc := newBalanceFixture(t)
	ctx := context.Background()

	f.append(t, f.member.ID, domain.TransactionKindContribution, domain.CategoryHisa, 100000, seedDate)
	f.append(t, f.member.ID, domain.TransactionKindLoan, domain.CategoryStandard, 55000, seedDate)
	f.append(t, f.member.ID, domain.TransactionKindRepayment, domain.CategoryStandard, 30000, seedDate)

	balance, err := svc.GetMemberBalance(ctx, f.member.ID)
	require.NoError(t, err)
	assert.True(t, balance.Contributed.Get(domain.CategoryHisa).Equal(decimal.NewFromInt(100000)))
	assert.True(t, balance.Outstanding.Get(domain.CategoryStandard).Equal(decimal.NewFromInt(25000)))

	t.Run("UnknownMember", func(t *testing.T) {
		_, err := svc.GetMemberBalance(ctx, "nope")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestBalanceService_ReadThroughCache(t *testing.T) {
	f, svc := newBalanceFixture(t)
	ctx := context.Background()

	f.append(t, f.member.ID, domain.TransactionKindContribution, domain.CategoryHisa, 100000, seedDate)

	_, err := svc.GetMemberBalance(ctx, f.member.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, f.cache.hits)
	assert.Equal(t, 1, f.cache.misses)

	_, err = svc.GetMemberBalance(ctx, f.member.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, f.cache.hits, "second read must be served from the cache")
}

func TestBalanceService_GetGroupTotals(t *testing.T) {
	f, svc := newBalanceFixture(t)
	ctx := context.Background()

	f.append(t, f.member.ID, domain.TransactionKindContribution, domain.CategoryHisa, 100000, seedDate)
	f.append(t, f.other.ID, domain.TransactionKindContribution, domain.CategoryHisa, 50000, seedDate)
	f.append(t, f.member.ID, domain.TransactionKindLoan, domain.CategoryDharura, 20000, seedDate)

	totals, err := svc.GetGroupTotals(ctx)
	require.NoError(t, err)
	assert.True(t, totals.VaultBalance.Equal(decimal.NewFromInt(130000)))
	assert.True(t, totals.LoanPool.Equal(decimal.NewFromInt(20000)))
	assert.Equal(t, 1, totals.ActiveLoanCount)
}

func TestBalanceService_GetCategoryBreakdown(t *testing.T) {
	f, svc := newBalanceFixture(t)
	ctx := context.Background()

	f.append(t, f.member.ID, domain.TransactionKindContribution, domain.CategoryHisa, 100000, seedDate)
	f.append(t, f.member.ID, domain.TransactionKindContribution, domain.CategoryJamii, 20000, seedDate)
	f.append(t, f.member.ID, domain.TransactionKindLoan, domain.CategoryStandard, 55000, seedDate)

	breakdown, err := svc.GetCategoryBreakdown(ctx, f.member.ID, domain.TransactionKindContribution)
	require.NoError(t, err)
	assert.True(t, breakdown.Get(domain.CategoryHisa).Equal(decimal.NewFromInt(100000)))
	assert.True(t, breakdown.Get(domain.CategoryJamii).Equal(decimal.NewFromInt(20000)))
	assert.True(t, breakdown.Get(domain.CategoryStandard).IsZero())
}

func TestBalanceService_MembersWithOutstanding(t *testing.T) {
	f, svc := newBalanceFixture(t)
	ctx := context.Background()

	f.append(t, f.member.ID, domain.TransactionKindLoan, domain.CategoryDharura, 20000, seedDate)
	// Settled loan must not appear in the reminder summary.
	f.append(t, f.other.ID, domain.TransactionKindLoan, domain.CategoryDharura, 10000, seedDate)
	f.append(t, f.other.ID, domain.TransactionKindRepayment, domain.CategoryDharura, 10000, seedDate)

	summaries, err := svc.MembersWithOutstanding(ctx, domain.CategoryDharura)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, f.member.ID, summaries[0].MemberID)
	assert.True(t, summaries[0].Outstanding.Equal(decimal.NewFromInt(20000)))

	summaries, err = svc.MembersWithOutstanding(ctx, domain.CategoryStandard)
	require.NoError(t, err)
	assert.Empty(t, summaries)
}
