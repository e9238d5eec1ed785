package domain

import "time"

type ActionStatus string

const (
	ActionStatusSuccess ActionStatus = "SUCCESS"
	ActionStatusFailed  ActionStatus = "FAILED"
	ActionStatusPending ActionStatus = "PENDING"
)

type ActionType string

const (
	ActionTransactionEntry ActionType = "TRANSACTION_ENTRY"
	ActionLoanRequested    ActionType = "LOAN_REQUESTED"
	ActionLoanVote         ActionType = "LOAN_VOTE"
	ActionLoanApproved     ActionType = "LOAN_APPROVED"
	ActionLoanRejected     ActionType = "LOAN_REJECTED"
	ActionPenaltyApplied   ActionType = "PENALTY_APPLIED"
	ActionBulkRowCommitted ActionType = "BULK_ROW_COMMITTED"
)

// ActivityLogEntry is one append-only audit record. Entries are write-once
// and inert to the core's own logic; they exist for external audit views.
type ActivityLogEntry struct {
	ID          string         `json:"id"`
	ActorID     string         `json:"actor_id"`
	ActorName   string         `json:"actor_name"`
	ActorRole   Role           `json:"actor_role"`
	Action      ActionType     `json:"action"`
	TargetType  string         `json:"target_type"`
	TargetID    string         `json:"target_id"`
	Description string         `json:"description"`
	Before      map[string]any `json:"before,omitempty"`
	After       map[string]any `json:"after,omitempty"`
	Status      ActionStatus   `json:"status"`
	FailReason  string         `json:"fail_reason,omitempty"`
	GroupID     string         `json:"group_id,omitempty"`
	Timestamp   time.Time      `json:"timestamp"`
}

// ActivityFilter narrows an audit query. Zero values mean "any".
type ActivityFilter struct {
	ActorID    string
	Action     ActionType
	TargetType string
	TargetID   string
	Status     ActionStatus
}
