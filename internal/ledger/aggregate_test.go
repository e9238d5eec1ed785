package ledger

import (
	"math/rand"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"kikoba-backend/internal/domain"
)

func tx(memberID string, kind domain.TransactionKind, category domain.TransactionCategory, amount int64) domain.Transaction {
	return domain.Transaction{
		ID:         memberID + "-" + string(kind) + "-" + string(category),
		Kind:       kind,
		Category:   category,
		Amount:     decimal.NewFromInt(amount),
		MemberID:   memberID,
		OccurredAt: time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC),
		Status:     domain.TransactionStatusCompleted,
	}
}

func TestAggregate(t *testing.T) {
	txs := []domain.Transaction{
		tx("m1", domain.TransactionKindContribution, domain.CategoryHisa, 100000),
		tx("m1", domain.TransactionKindContribution, domain.CategoryJamii, 20000),
		tx("m1", domain.TransactionKindLoan, domain.CategoryStandard, 55000),
		tx("m1", domain.TransactionKindRepayment, domain.CategoryStandard, 30000),
		tx("m2", domain.TransactionKindContribution, domain.CategoryHisa, 999999),
	}

	balance := Aggregate(txs, "m1")

	assert.True(t, balance.Contributed.Get(domain.CategoryHisa).Equal(decimal.NewFromInt(100000)))
	assert.True(t, balance.Contributed.Get(domain.CategoryJamii).Equal(decimal.NewFromInt(20000)))
	assert.True(t, balance.LoanedWithInterest.Get(domain.CategoryStandard).Equal(decimal.NewFromInt(55000)))
	assert.True(t, balance.Repaid.Get(domain.CategoryStandard).Equal(decimal.NewFromInt(30000)))
	assert.True(t, balance.Outstanding.Get(domain.CategoryStandard).Equal(decimal.NewFromInt(25000)))
	assert.True(t, balance.Outstanding.Get(domain.CategoryDharura).IsZero())
}

func TestAggregate_OrderIndependent(t *testing.T) {
	txs := []domain.Transaction{
		tx("m1", domain.TransactionKindContribution, domain.CategoryHisa, 100000),
		tx("m1", domain.TransactionKindLoan, domain.CategoryDharura, 40000),
		tx("m1", domain.TransactionKindRepayment, domain.CategoryDharura, 15000),
		tx("m1", domain.TransactionKindContribution, domain.CategoryJamii, 5000),
		tx("m1", domain.TransactionKindLoan, domain.CategoryStandard, 22000),
	}
	want := Aggregate(txs, "m1")

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 10; i++ {
		shuffled := make([]domain.Transaction, len(txs))
		copy(shuffled, txs)
		rng.Shuffle(len(shuffled), func(a, b int) {
			shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
		})

		got := Aggregate(shuffled, "m1")
		assert.True(t, got.Outstanding.Get(domain.CategoryStandard).Equal(want.Outstanding.Get(domain.CategoryStandard)))
		assert.True(t, got.Outstanding.Get(domain.CategoryDharura).Equal(want.Outstanding.Get(domain.CategoryDharura)))
		assert.True(t, got.TotalContributed().Equal(want.TotalContributed()))
	}
}

func TestAggregate_OverRepaymentClampsAtZero(t *testing.T) {
	txs := []domain.Transaction{
		tx("m1", domain.TransactionKindLoan, domain.CategoryStandard, 55000),
		tx("m1", domain.TransactionKindRepayment, domain.CategoryStandard, 60000),
	}

	balance := Aggregate(txs, "m1")

	assert.True(t, balance.Outstanding.Get(domain.CategoryStandard).IsZero())
	// The raw sums are preserved; only the reported figure clamps.
	assert.True(t, balance.Repaid.Get(domain.CategoryStandard).Equal(decimal.NewFromInt(60000)))
}

func TestAggregate_EmptyHistory(t *testing.T) {
	balance := Aggregate(nil, "m1")

	assert.True(t, balance.TotalContributed().IsZero())
	assert.True(t, balance.TotalOutstanding().IsZero())
}

func TestOutstanding(t *testing.T) {
	txs := []domain.Transaction{
		tx("m1", domain.TransactionKindLoan, domain.CategoryDharura, 20000),
		tx("m1", domain.TransactionKindRepayment, domain.CategoryDharura, 5000),
	}

	out := Outstanding(txs, "m1", domain.CategoryDharura)
	assert.True(t, out.Equal(decimal.NewFromInt(15000)))

	assert.True(t, Outstanding(txs, "m1", domain.CategoryStandard).IsZero())
	assert.True(t, Outstanding(txs, "m2", domain.CategoryDharura).IsZero())
}

func TestGroupTotals(t *testing.T) {
	txs := []domain.Transaction{
		tx("m1", domain.TransactionKindContribution, domain.CategoryHisa, 100000),
		tx("m1", domain.TransactionKindLoan, domain.CategoryStandard, 55000),
		tx("m1", domain.TransactionKindRepayment, domain.CategoryStandard, 5000),
		tx("m2", domain.TransactionKindContribution, domain.CategoryHisa, 200000),
		tx("m2", domain.TransactionKindContribution, domain.CategoryJamii, 10000),
		tx("m2", domain.TransactionKindLoan, domain.CategoryDharura, 20000),
	}

	totals := GroupTotals(txs)

	// 310000 contributed, 50000 + 20000 still out.
	assert.True(t, totals.LoanPool.Equal(decimal.NewFromInt(70000)))
	assert.True(t, totals.VaultBalance.Equal(decimal.NewFromInt(240000)))
	assert.Equal(t, 2, totals.ActiveLoanCount)
}

func TestGroupTotals_SettledLoanNotCounted(t *testing.T) {
	txs := []domain.Transaction{
		tx("m1", domain.TransactionKindContribution, domain.CategoryHisa, 50000),
		tx("m1", domain.TransactionKindLoan, domain.CategoryStandard, 11000),
		tx("m1", domain.TransactionKindRepayment, domain.CategoryStandard, 11000),
	}

	totals := GroupTotals(txs)

	assert.Equal(t, 0, totals.ActiveLoanCount)
	assert.True(t, totals.LoanPool.IsZero())
	assert.True(t, totals.VaultBalance.Equal(decimal.NewFromInt(50000)))
}

func TestCategoryBreakdown(t *testing.T) {
	txs := []domain.Transaction{
		tx("m1", domain.TransactionKindContribution, domain.CategoryHisa, 100000),
		tx("m1", domain.TransactionKindContribution, domain.CategoryJamii, 20000),
		tx("m1", domain.TransactionKindLoan, domain.CategoryStandard, 55000),
		tx("m2", domain.TransactionKindContribution, domain.CategoryHisa, 7000),
	}

	breakdown := CategoryBreakdown(txs, "m1", domain.TransactionKindContribution)

	assert.True(t, breakdown.Get(domain.CategoryHisa).Equal(decimal.NewFromInt(100000)))
	assert.True(t, breakdown.Get(domain.CategoryJamii).Equal(decimal.NewFromInt(20000)))
	assert.True(t, breakdown.Get(domain.CategoryStandard).IsZero())
}
