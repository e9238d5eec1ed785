package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"kikoba-backend/internal/domain"
	"kikoba-backend/internal/ledger"
	"kikoba-backend/internal/metrics"
	"kikoba-backend/internal/repository"
)

const bulkDateLayout = "2006-01-02"

type importService struct {
	ledgerRepo repository.LedgerRepository
	memberRepo repository.MemberRepository
	cache      BalanceCache
	audit      auditor
}

func NewImportService(
	ledgerRepo repository.LedgerRepository,
	memberRepo repository.MemberRepository,
	activityRepo repository.ActivityLogRepository,
	cache BalanceCache,
) ImportService {
	return &importService{
		ledgerRepo: ledgerRepo,
		memberRepo: memberRepo,
		cache:      cache,
		audit:      auditor{activityRepo: activityRepo},
	}
}

// rowPlan is a fully validated row, ready to commit.
type rowPlan struct {
	row    domain.BulkRow
	member *domain.Member
	date   time.Time
	// parsed amounts, in field order: Hisa, Jamii, Standard, Dharura
	amounts [4]decimal.Decimal
}

var bulkFields = [4]struct {
	kind     domain.TransactionKind
	category domain.TransactionCategory
}{
	{domain.TransactionKindContribution, domain.CategoryHisa},
	{domain.TransactionKindContribution, domain.CategoryJamii},
	{domain.TransactionKindRepayment, domain.CategoryStandard},
	{domain.TransactionKindRepayment, domain.CategoryDharura},
}

func (s *importService) ValidateBatch(ctx context.Context, rows []domain.BulkRow) (*domain.ValidationReport, error) {
	_, results, err := s.plan(ctx, rows)
	if err != nil {
		return nil, err
	}
	report := &domain.ValidationReport{Rows: results}
	for _, res := range results {
		switch res.Outcome {
		case domain.RowAccepted:
			report.Accepted++
		case domain.RowDuplicate:
			report.Duplicate++
		default:
			report.Invalid++
		}
	}
	return report, nil
}

func (s *importService) CommitBatch(ctx context.Context, actor domain.Actor, rows []domain.BulkRow) (*domain.CommitReport, error) {
	plans, results, err := s.plan(ctx, rows)
	if err != nil {
		return nil, err
	}
	report := &domain.CommitReport{}
	for _, res := range results {
		switch res.Outcome {
		case domain.RowAccepted:
			report.Accepted++
		case domain.RowDuplicate:
			report.Duplicate++
		default:
			report.Invalid++
		}
	}

	// Commit row by row; one failing row is reported and skipped, the
	// rest of the batch still lands.
	planByLine := make(map[int]rowPlan, len(plans))
	for _, p := range plans {
		planByLine[p.row.Line] = p
	}
	for i, res := range results {
		if res.Outcome != domain.RowAccepted {
			metrics.BulkRows.WithLabelValues(strings.ToLower(string(res.Outcome))).Inc()
			continue
		}
		p := planByLine[res.Line]
		ids, err := s.commitRow(ctx, actor, p)
		results[i].TransactionIDs = ids
		if err != nil {
			results[i].Outcome = domain.RowCommitFailed
			results[i].Reason = err.Error()
			report.Failed++
			metrics.BulkRows.WithLabelValues("commit_failed").Inc()
			continue
		}
		results[i].Outcome = domain.RowCommitted
		report.Committed++
		metrics.BulkRows.WithLabelValues("committed").Inc()

		s.audit.record(ctx, &domain.ActivityLogEntry{
			ActorID:     actor.ID,
			ActorName:   actor.Name,
			ActorRole:   actor.Role,
			Action:      domain.ActionBulkRowCommitted,
			TargetType:  "member",
			TargetID:    p.member.ID,
			Description: fmt.Sprintf("bulk row %d committed %d transaction(s) for %s", p.row.Line, len(ids), p.member.Name),
			After:       map[string]any{"transaction_ids": ids},
			Status:      domain.ActionStatusSuccess,
		})
	}
	report.Rows = results
	return report, nil
}

// plan runs the whole validation pipeline before anything is committed:
// member resolution, amount and date parsing, intra-batch duplicate
// detection, then the repayment balance guard. The guard counts repayments
// accepted earlier in the same batch, so a batch can never repay more than
// exists even across its own rows.
func (s *importService) plan(ctx context.Context, rows []domain.BulkRow) ([]rowPlan, []domain.RowResult, error) {
	var plans []rowPlan
	results := make([]domain.RowResult, 0, len(rows))

	seen := make(map[string]bool)
	liveTxs := make(map[string][]domain.Transaction)
	pendingRepaid := make(map[string]decimal.Decimal)

	for _, row := range rows {
		res := domain.RowResult{Line: row.Line, MemberNo: row.MemberNo}

		member, err := s.memberRepo.GetByMemberNo(ctx, row.MemberNo)
		if err != nil {
			res.Outcome = domain.RowUnknownMember
			res.Reason = fmt.Sprintf("member %q is not registered", row.MemberNo)
			results = append(results, res)
			continue
		}

		amounts, parseErr := parseRowAmounts(row)
		if parseErr != "" {
			res.Outcome = domain.RowBadFormat
			res.Reason = parseErr
			results = append(results, res)
			continue
		}
		if allNonPositive(amounts) {
			res.Outcome = domain.RowEmpty
			res.Reason = "all amounts are zero or negative"
			results = append(results, res)
			continue
		}

		date, err := time.Parse(bulkDateLayout, row.Date)
		if err != nil {
			res.Outcome = domain.RowBadDate
			res.Reason = fmt.Sprintf("date %q does not parse as yyyy-mm-dd", row.Date)
			results = append(results, res)
			continue
		}

		// Duplicates are detected before the balance guard so the second
		// copy of a repayment row reads as a duplicate, not as an
		// impossible repayment.
		key := duplicateKey(member.ID, row.Date, amounts)
		if seen[key] {
			res.Outcome = domain.RowDuplicate
			res.Reason = "identical to an earlier row in this batch"
			results = append(results, res)
			continue
		}

		if reason := s.checkRepayments(ctx, member, amounts, liveTxs, pendingRepaid); reason != "" {
			res.Outcome = domain.RowNoBalance
			res.Reason = reason
			results = append(results, res)
			continue
		}

		seen[key] = true
		for i, field := range bulkFields {
			if field.kind == domain.TransactionKindRepayment && amounts[i].IsPositive() {
				k := member.ID + "/" + string(field.category)
				pendingRepaid[k] = pendingRepaid[k].Add(amounts[i])
			}
		}
		plans = append(plans, rowPlan{row: row, member: member, date: date, amounts: amounts})
		res.Outcome = domain.RowAccepted
		results = append(results, res)
	}
	return plans, results, nil
}

// checkRepayments verifies each requested repayment against the member's
// live outstanding balance minus repayments already accepted earlier in
// this batch.
func (s *importService) checkRepayments(ctx context.Context, member *domain.Member, amounts [4]decimal.Decimal, liveTxs map[string][]domain.Transaction, pendingRepaid map[string]decimal.Decimal) string {
	for i, field := range bulkFields {
		if field.kind != domain.TransactionKindRepayment || !amounts[i].IsPositive() {
			continue
		}
		txs, ok := liveTxs[member.ID]
		if !ok {
			var err error
			txs, err = s.ledgerRepo.ListByMember(ctx, member.ID)
			if err != nil {
				return fmt.Sprintf("balance check failed: %v", err)
			}
			liveTxs[member.ID] = txs
		}
		outstanding := ledger.Outstanding(txs, member.ID, field.category)
		outstanding = outstanding.Sub(pendingRepaid[member.ID+"/"+string(field.category)])
		if !outstanding.IsPositive() {
			return fmt.Sprintf("no outstanding %s balance to repay for %s", field.category, member.Name)
		}
	}
	return ""
}

// commitRow books one transaction per non-zero amount. The reference ties
// every transaction of the row to its source sheet entry so a re-import of
// the same sheet can be spotted later.
func (s *importService) commitRow(ctx context.Context, actor domain.Actor, p rowPlan) ([]string, error) {
	reference := fmt.Sprintf("IMP-%s-%s", p.row.Date, p.member.ID)
	var ids []string
	for i, field := range bulkFields {
		if !p.amounts[i].IsPositive() {
			continue
		}
		tx := &domain.Transaction{
			Kind:       field.kind,
			Category:   field.category,
			Amount:     p.amounts[i],
			MemberID:   p.member.ID,
			MemberName: p.member.Name,
			OccurredAt: p.date,
			RecordedBy: actor.ID,
			Status:     domain.TransactionStatusCompleted,
			Reference:  reference,
		}
		id, err := s.ledgerRepo.Append(ctx, tx)
		if err != nil {
			return ids, fmt.Errorf("append %s/%s: %w", field.kind, field.category, err)
		}
		ids = append(ids, id)
		metrics.TransactionsAppended.WithLabelValues(string(field.kind), string(field.category)).Inc()
	}
	s.cache.Invalidate(ctx, p.member.ID)
	return ids, nil
}

func parseRowAmounts(row domain.BulkRow) ([4]decimal.Decimal, string) {
	var amounts [4]decimal.Decimal
	raw := [4]string{row.HisaAmount, row.JamiiAmount, row.StandardRepaid, row.DharuraRepaid}
	names := [4]string{"hisa", "jamii", "standard_repaid", "dharura_repaid"}
	anyPositive := false
	for i, v := range raw {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		d, err := decimal.NewFromString(v)
		if err != nil {
			return amounts, fmt.Sprintf("%s amount %q is not numeric", names[i], v)
		}
		amounts[i] = d
		if d.IsPositive() {
			anyPositive = true
		}
	}
	// A negative field next to positive ones is a keying mistake, not an
	// empty row.
	for i, d := range amounts {
		if d.IsNegative() && anyPositive {
			return amounts, fmt.Sprintf("%s amount must not be negative", names[i])
		}
	}
	return amounts, ""
}

func allNonPositive(amounts [4]decimal.Decimal) bool {
	for _, d := range amounts {
		if d.IsPositive() {
			return false
		}
	}
	return true
}

func duplicateKey(memberID, date string, amounts [4]decimal.Decimal) string {
	parts := []string{memberID, date}
	for _, d := range amounts {
		parts = append(parts, d.String())
	}
	return strings.Join(parts, "|")
}
