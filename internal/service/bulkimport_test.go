package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kikoba-backend/internal/domain"
)

func newImportFixture(t *testing.T) (*fixture, ImportService) {
	f := newFixture(t)
	svc := NewImportService(
		f.store.LedgerRepository,
		f.store.MemberRepository,
		f.store.ActivityLogRepository,
		f.cache,
	)
	return f, svc
}

func row(line int, memberNo, date, hisa, jamii, standard, dharura string) domain.BulkRow {
	return domain.BulkRow{
		Line:           line,
		MemberNo:       memberNo,
		Date:           date,
		HisaAmount:     hisa,
		JamiiAmount:    jamii,
		StandardRepaid: standard,
		DharuraRepaid:  dharura,
	}
}

func outcomeByLine(results []domain.RowResult) map[int]domain.RowResult {
	byLine := make(map[int]domain.RowResult, len(results))
	for _, r := range results {
		byLine[r.Line] = r
	}
	return byLine
}

func TestImportService_ValidateBatch(t *testing.T) {
	f, svc := newImportFixture(t)
	ctx := context.Background()

	// Outstanding Standard loan so one repayment row can pass the guard.
	f.append(t, f.member.ID, domain.TransactionKindLoan, domain.CategoryStandard, 55000, seedDate)

	rows := []domain.BulkRow{
		row(2, f.member.MemberNo, "2026-02-01", "10000", "", "", ""),
		row(3, "K-999", "2026-02-01", "10000", "", "", ""),
		row(4, f.member.MemberNo, "01/02/2026", "10000", "", "", ""),
		row(5, f.member.MemberNo, "2026-02-01", "ten", "", "", ""),
		row(6, f.member.MemberNo, "2026-02-01", "", "", "", ""),
		row(7, f.member.MemberNo, "2026-02-01", "10000", "", "", ""), // same as line 2
		row(8, f.member.MemberNo, "2026-02-01", "", "", "30000", ""),
		row(9, f.other.MemberNo, "2026-02-01", "", "", "5000", ""), // nothing outstanding
	}

	report, err := svc.ValidateBatch(ctx, rows)
	require.NoError(t, err)

	byLine := outcomeByLine(report.Rows)
	assert.Equal(t, domain.RowAccepted, byLine[2].Outcome)
	assert.Equal(t, domain.RowUnknownMember, byLine[3].Outcome)
	assert.Equal(t, domain.RowBadDate, byLine[4].Outcome)
	assert.Equal(t, domain.RowBadFormat, byLine[5].Outcome)
	assert.Equal(t, domain.RowEmpty, byLine[6].Outcome)
	assert.Equal(t, domain.RowDuplicate, byLine[7].Outcome)
	assert.Equal(t, domain.RowAccepted, byLine[8].Outcome)
	assert.Equal(t, domain.RowNoBalance, byLine[9].Outcome)

	assert.Equal(t, 2, report.Accepted)
	assert.Equal(t, 1, report.Duplicate)
	assert.Equal(t, 5, report.Invalid)

	// Validation must not touch the ledger.
	txs, err := f.store.LedgerRepository.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, txs, 1)
}

func TestImportService_ValidateBatch_RepaymentGuardCountsEarlierRows(t *testing.T) {
	f, svc := newImportFixture(t)
	ctx := context.Background()

	f.append(t, f.member.ID, domain.TransactionKindLoan, domain.CategoryStandard, 55000, seedDate)

	// Two rows repaying 30000 each against 55000 outstanding: the first
	// consumes the balance down to 25000, the second is technically an
	// over-repayment but the balance is still positive; a third against a
	// drained balance must fail.
	rows := []domain.BulkRow{
		row(2, f.member.MemberNo, "2026-02-01", "", "", "30000", ""),
		row(3, f.member.MemberNo, "2026-02-02", "", "", "30000", ""),
		row(4, f.member.MemberNo, "2026-02-03", "", "", "1000", ""),
	}

	report, err := svc.ValidateBatch(ctx, rows)
	require.NoError(t, err)

	byLine := outcomeByLine(report.Rows)
	assert.Equal(t, domain.RowAccepted, byLine[2].Outcome)
	assert.Equal(t, domain.RowAccepted, byLine[3].Outcome)
	assert.Equal(t, domain.RowNoBalance, byLine[4].Outcome)
}

func TestImportService_ValidateBatch_DuplicateBeforeBalanceGuard(t *testing.T) {
	f, svc := newImportFixture(t)
	ctx := context.Background()

	f.append(t, f.member.ID, domain.TransactionKindLoan, domain.CategoryDharura, 20000, seedDate)

	// The second copy of a repayment row reads as a duplicate even though
	// the first already drained the balance.
	rows := []domain.BulkRow{
		row(2, f.member.MemberNo, "2026-02-01", "", "", "", "20000"),
		row(3, f.member.MemberNo, "2026-02-01", "", "", "", "20000"),
	}

	report, err := svc.ValidateBatch(ctx, rows)
	require.NoError(t, err)

	byLine := outcomeByLine(report.Rows)
	assert.Equal(t, domain.RowAccepted, byLine[2].Outcome)
	assert.Equal(t, domain.RowDuplicate, byLine[3].Outcome)
}

func TestImportService_ValidateBatch_NegativeAmountNextToPositive(t *testing.T) {
	f, svc := newImportFixture(t)

	report, err := svc.ValidateBatch(context.Background(), []domain.BulkRow{
		row(2, f.member.MemberNo, "2026-02-01", "10000", "-500", "", ""),
	})
	require.NoError(t, err)
	require.Len(t, report.Rows, 1)
	assert.Equal(t, domain.RowBadFormat, report.Rows[0].Outcome)
}

func TestImportService_CommitBatch(t *testing.T) {
	f, svc := newImportFixture(t)
	ctx := context.Background()

	f.append(t, f.member.ID, domain.TransactionKindLoan, domain.CategoryStandard, 55000, seedDate)

	rows := []domain.BulkRow{
		row(2, f.member.MemberNo, "2026-02-01", "10000", "2000", "30000", ""),
		row(3, "K-999", "2026-02-01", "10000", "", "", ""),
		row(4, f.other.MemberNo, "2026-02-01", "5000", "", "", ""),
	}

	report, err := svc.CommitBatch(ctx, f.actor(f.admin1), rows)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Accepted)
	assert.Equal(t, 2, report.Committed)
	assert.Equal(t, 0, report.Failed)
	assert.Equal(t, 1, report.Invalid)

	byLine := outcomeByLine(report.Rows)
	assert.Equal(t, domain.RowCommitted, byLine[2].Outcome)
	assert.Len(t, byLine[2].TransactionIDs, 3, "one transaction per non-zero amount")
	assert.Equal(t, domain.RowUnknownMember, byLine[3].Outcome)
	assert.Equal(t, domain.RowCommitted, byLine[4].Outcome)

	// Each committed transaction back-references its source row.
	wantRef := fmt.Sprintf("IMP-2026-02-01-%s", f.member.ID)
	txs, err := f.store.LedgerRepository.ListByMember(ctx, f.member.ID)
	require.NoError(t, err)
	imported := 0
	for _, tx := range txs {
		if tx.Reference == wantRef {
			imported++
		}
	}
	assert.Equal(t, 3, imported)

	assert.Contains(t, f.cache.invalidated, f.member.ID)
	assert.Contains(t, f.cache.invalidated, f.other.ID)
}

func TestImportService_CommitBatch_PartialFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// Fail the very first append; the first accepted row degrades to
	// COMMIT_FAILED and later rows still land.
	flaky := &flakyLedger{
		LedgerRepository: f.store.LedgerRepository,
		failures:         1,
		err:              errors.New("write timeout"),
	}
	svc := NewImportService(flaky, f.store.MemberRepository, f.store.ActivityLogRepository, f.cache)

	rows := []domain.BulkRow{
		row(2, f.member.MemberNo, "2026-02-01", "10000", "", "", ""),
		row(3, f.other.MemberNo, "2026-02-01", "5000", "", "", ""),
	}

	report, err := svc.CommitBatch(ctx, f.actor(f.admin1), rows)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Accepted)
	assert.Equal(t, 1, report.Committed)
	assert.Equal(t, 1, report.Failed)

	byLine := outcomeByLine(report.Rows)
	assert.Equal(t, domain.RowCommitFailed, byLine[2].Outcome)
	assert.NotEmpty(t, byLine[2].Reason)
	assert.Equal(t, domain.RowCommitted, byLine[3].Outcome)

	txs, err := f.store.LedgerRepository.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, f.other.ID, txs[0].MemberID)
}
