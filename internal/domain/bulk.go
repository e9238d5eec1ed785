package domain

import "github.com/shopspring/decimal"

// BulkRow is one externally supplied reconciliation row, as parsed from an
// uploaded sheet. Amount fields arrive as raw strings so the importer can
// report format problems per field instead of failing the whole upload.
type BulkRow struct {
	Line           int    `json:"line"` // 1-based position in the source sheet
	MemberNo       string `json:"member_no"`
	Date           string `json:"date"` // yyyy-mm-dd
	HisaAmount     string `json:"hisa_amount"`
	JamiiAmount    string `json:"jamii_amount"`
	StandardRepaid string `json:"standard_repaid"`
	DharuraRepaid  string `json:"dharura_repaid"`
}

type RowOutcome string

const (
	RowAccepted      RowOutcome = "ACCEPTED"
	RowDuplicate     RowOutcome = "DUPLICATE"
	RowUnknownMember RowOutcome = "UNKNOWN_MEMBER"
	RowEmpty         RowOutcome = "EMPTY_ROW"
	RowBadFormat     RowOutcome = "BAD_FORMAT"
	RowBadDate       RowOutcome = "BAD_DATE"
	RowNoBalance     RowOutcome = "NO_BALANCE"
	RowCommitted     RowOutcome = "COMMITTED"
	RowCommitFailed  RowOutcome = "COMMIT_FAILED"
)

// RowResult is the per-row verdict of validation or commit.
type RowResult struct {
	Line           int        `json:"line"`
	MemberNo       string     `json:"member_no"`
	Outcome        RowOutcome `json:"outcome"`
	Reason         string     `json:"reason,omitempty"`
	TransactionIDs []string   `json:"transaction_ids,omitempty"`
}

// ValidationReport summarises a dry-run over a batch. No ledger writes
// have happened when one of these is returned.
type ValidationReport struct {
	Rows      []RowResult `json:"rows"`
	Accepted  int         `json:"accepted"`
	Duplicate int         `json:"duplicate"`
	Invalid   int         `json:"invalid"`
}

// CommitReport extends the validation verdicts with per-row commit
// outcomes. Committed never exceeds Accepted: a row that fails to commit is
// counted under Failed and left for a later re-import.
type CommitReport struct {
	Rows      []RowResult `json:"rows"`
	Accepted  int         `json:"accepted"`
	Duplicate int         `json:"duplicate"`
	Invalid   int         `json:"invalid"`
	Committed int         `json:"committed"`
	Failed    int         `json:"failed"`
}

// AppliedPenalty reports one surcharge applied by the penalty engine.
type AppliedPenalty struct {
	TransactionID string          `json:"transaction_id"`
	MemberID      string          `json:"member_id"`
	PreAmount     decimal.Decimal `json:"pre_amount"`
	NewAmount     decimal.Decimal `json:"new_amount"`
	Fee           decimal.Decimal `json:"fee"`
}
