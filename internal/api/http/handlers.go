package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"kikoba-backend/internal/bulkimport"
	"kikoba-backend/internal/domain"
	"kikoba-backend/internal/service"
)

// Server holds the HTTP handlers over the core services. All invariants
// live in the services; handlers only decode, dispatch and encode.
type Server struct {
	balanceSvc  service.BalanceService
	ledgerSvc   service.LedgerService
	loanSvc     service.LoanService
	penaltySvc  service.PenaltyService
	importSvc   service.ImportService
	activitySvc service.ActivityService
}

func NewServer(
	balanceSvc service.BalanceService,
	ledgerSvc service.LedgerService,
	loanSvc service.LoanService,
	penaltySvc service.PenaltyService,
	importSvc service.ImportService,
	activitySvc service.ActivityService,
) *Server {
	return &Server{
		balanceSvc:  balanceSvc,
		ledgerSvc:   ledgerSvc,
		loanSvc:     loanSvc,
		penaltySvc:  penaltySvc,
		importSvc:   importSvc,
		activitySvc: activitySvc,
	}
}

func (s *Server) GetMemberBalance(w http.ResponseWriter, r *http.Request) {
	memberID := mux.Vars(r)["id"]
	balance, err := s.balanceSvc.GetMemberBalance(r.Context(), memberID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, balance)
}

func (s *Server) GetGroupTotals(w http.ResponseWriter, r *http.Request) {
	totals, err := s.balanceSvc.GetGroupTotals(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, totals)
}

func (s *Server) GetCategoryBreakdown(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	kind := domain.TransactionKind(vars["kind"])
	switch kind {
	case domain.TransactionKindContribution, domain.TransactionKindLoan, domain.TransactionKindRepayment:
	default:
		writeError(w, http.StatusBadRequest, "unknown transaction kind")
		return
	}
	breakdown, err := s.balanceSvc.GetCategoryBreakdown(r.Context(), vars["id"], kind)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, breakdown)
}

func (s *Server) ListMemberTransactions(w http.ResponseWriter, r *http.Request) {
	txs, err := s.ledgerSvc.ListMemberTransactions(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, txs)
}

type recordEntryRequest struct {
	MemberID    string          `json:"member_id"`
	Kind        string          `json:"kind"`
	Category    string          `json:"category"`
	Amount      decimal.Decimal `json:"amount"`
	OccurredAt  string          `json:"occurred_at,omitempty"` // yyyy-mm-dd
	Description string          `json:"description,omitempty"`
}

func (s *Server) RecordEntry(w http.ResponseWriter, r *http.Request) {
	actor, _ := ActorFromContext(r.Context())
	var req recordEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	tx := &domain.Transaction{
		Kind:        domain.TransactionKind(req.Kind),
		Category:    domain.TransactionCategory(req.Category),
		Amount:      req.Amount,
		MemberID:    req.MemberID,
		Description: req.Description,
	}
	if req.OccurredAt != "" {
		occurred, err := time.Parse("2006-01-02", req.OccurredAt)
		if err != nil {
			writeError(w, http.StatusBadRequest, "occurred_at does not parse as yyyy-mm-dd")
			return
		}
		tx.OccurredAt = occurred
	}
	created, err := s.ledgerSvc.RecordEntry(r.Context(), actor, tx)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

type submitLoanRequest struct {
	MemberID    string          `json:"member_id,omitempty"`
	Amount      decimal.Decimal `json:"amount"`
	Type        string          `json:"type"`
	Description string          `json:"description,omitempty"`
}

func (s *Server) SubmitLoanRequest(w http.ResponseWriter, r *http.Request) {
	actor, _ := ActorFromContext(r.Context())
	var req submitLoanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	// Members request for themselves; admins may submit on behalf of a
	// member.
	memberID := actor.ID
	if req.MemberID != "" && actor.IsAdmin() {
		memberID = req.MemberID
	}
	created, err := s.loanSvc.SubmitRequest(r.Context(), actor, memberID, req.Amount, domain.LoanType(req.Type), req.Description)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

type voteRequest struct {
	Decision string `json:"decision"`
	Reason   string `json:"reason,omitempty"`
}

func (s *Server) Vote(w http.ResponseWriter, r *http.Request) {
	actor, _ := ActorFromContext(r.Context())
	var req voteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	updated, err := s.loanSvc.Vote(r.Context(), actor, mux.Vars(r)["id"], domain.VoteDecision(req.Decision), req.Reason)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) GetLoanRequest(w http.ResponseWriter, r *http.Request) {
	req, err := s.loanSvc.GetRequest(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, req)
}

func (s *Server) ListPendingLoanRequests(w http.ResponseWriter, r *http.Request) {
	reqs, err := s.loanSvc.ListPending(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reqs)
}

func (s *Server) CheckPenalties(w http.ResponseWriter, r *http.Request) {
	applied, err := s.penaltySvc.CheckAndApplyPenalties(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"applied": applied})
}

func (s *Server) ValidateImport(w http.ResponseWriter, r *http.Request) {
	rows, ok := readImportRows(w, r)
	if !ok {
		return
	}
	report, err := s.importSvc.ValidateBatch(r.Context(), rows)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) CommitImport(w http.ResponseWriter, r *http.Request) {
	actor, _ := ActorFromContext(r.Context())
	rows, ok := readImportRows(w, r)
	if !ok {
		return
	}
	report, err := s.importSvc.CommitBatch(r.Context(), actor, rows)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// readImportRows accepts either a multipart upload under "file" or a raw
// XLSX body.
func readImportRows(w http.ResponseWriter, r *http.Request) ([]domain.BulkRow, bool) {
	reader := r.Body
	if file, _, err := r.FormFile("file"); err == nil {
		defer file.Close()
		reader = file
	}
	rows, err := bulkimport.ReadWorkbook(reader)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return nil, false
	}
	return rows, true
}

func (s *Server) ListActivity(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := domain.ActivityFilter{
		ActorID:    q.Get("actor_id"),
		Action:     domain.ActionType(q.Get("action")),
		TargetType: q.Get("target_type"),
		TargetID:   q.Get("target_id"),
		Status:     domain.ActionStatus(q.Get("status")),
	}
	entries, err := s.activitySvc.ListActivity(r.Context(), filter)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) OutstandingReminders(w http.ResponseWriter, r *http.Request) {
	category := domain.TransactionCategory(mux.Vars(r)["category"])
	if category != domain.CategoryStandard && category != domain.CategoryDharura {
		writeError(w, http.StatusBadRequest, "category must be STANDARD or DHARURA")
		return
	}
	summaries, err := s.balanceSvc.MembersWithOutstanding(r.Context(), category)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summaries)
}

func (s *Server) Healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
