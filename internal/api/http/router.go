package http

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"kikoba-backend/internal/security"
)

// NewRouter wires all routes. Everything under the API is authenticated;
// health and metrics are open for probes and scrapers.
func NewRouter(server *Server, tm security.TokenManager) *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/healthz", server.Healthz).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(AuthMiddleware(tm))

	// Balances
	api.HandleFunc("/members/{id}/balance", server.GetMemberBalance).Methods(http.MethodGet)
	api.HandleFunc("/members/{id}/breakdown/{kind}", server.GetCategoryBreakdown).Methods(http.MethodGet)
	api.HandleFunc("/members/{id}/transactions", server.ListMemberTransactions).Methods(http.MethodGet)
	api.HandleFunc("/group/totals", server.GetGroupTotals).Methods(http.MethodGet)

	// Ledger direct entry
	api.HandleFunc("/transactions", RequireAdmin(server.RecordEntry)).Methods(http.MethodPost)

	// Loan workflow
	api.HandleFunc("/loans", server.SubmitLoanRequest).Methods(http.MethodPost)
	api.HandleFunc("/loans/pending", RequireAdmin(server.ListPendingLoanRequests)).Methods(http.MethodGet)
	api.HandleFunc("/loans/{id}", server.GetLoanRequest).Methods(http.MethodGet)
	api.HandleFunc("/loans/{id}/votes", RequireAdmin(server.Vote)).Methods(http.MethodPost)

	// Penalty trigger (opportunistic, e.g. dashboard load)
	api.HandleFunc("/members/{id}/penalties/check", server.CheckPenalties).Methods(http.MethodPost)

	// Bulk reconciliation import
	api.HandleFunc("/imports/validate", RequireAdmin(server.ValidateImport)).Methods(http.MethodPost)
	api.HandleFunc("/imports/commit", RequireAdmin(server.CommitImport)).Methods(http.MethodPost)

	// Audit + reminder summaries
	api.HandleFunc("/activity", RequireAdmin(server.ListActivity)).Methods(http.MethodGet)
	api.HandleFunc("/reminders/outstanding/{category}", server.OutstandingReminders).Methods(http.MethodGet)

	return r
}
