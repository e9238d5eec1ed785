// Package document implements the repository interfaces on top of the
// docstore contract. It owns the field-level mapping between domain
// entities and stored documents; monetary amounts are persisted as decimal
// strings so no precision is lost in transit.
package document

import (
	"reflect"
	"time"

	"github.com/shopspring/decimal"

	"kikoba-backend/internal/docstore"
	"kikoba-backend/internal/repository"
)

// Collection names used by the core.
const (
	collTransactions = "transactions"
	collLoanRequests = "loan_requests"
	collMembers      = "members"
	collActivityLogs = "activity_logs"
)

// Store bundles every repository over one docstore backend.
type Store struct {
	repository.LedgerRepository
	repository.LoanRequestRepository
	repository.MemberRepository
	repository.ActivityLogRepository
}

func NewStore(db docstore.Store) *Store {
	return &Store{
		LedgerRepository:      NewLedgerRepository(db),
		LoanRequestRepository: NewLoanRequestRepository(db),
		MemberRepository:      NewMemberRepository(db),
		ActivityLogRepository: NewActivityLogRepository(db),
	}
}

func getString(f docstore.Fields, key string) string {
	if v, ok := f[key].(string); ok {
		return v
	}
	return ""
}

func getBool(f docstore.Fields, key string) bool {
	if v, ok := f[key].(bool); ok {
		return v
	}
	return false
}

func getInt64(f docstore.Fields, key string) int64 {
	switch v := f[key].(type) {
	case int64:
		return v
	case int32:
		return int64(v)
	case int:
		return int64(v)
	}
	return 0
}

func getTime(f docstore.Fields, key string) time.Time {
	if v, ok := f[key].(time.Time); ok {
		return v
	}
	return time.Time{}
}

func getDecimal(f docstore.Fields, key string) decimal.Decimal {
	s := getString(f, key)
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// getStringMap reads a nested map regardless of the concrete map type the
// backend decoded it into (plain map, bson.M, ...).
func getStringMap(f docstore.Fields, key string) map[string]string {
	out := make(map[string]string)
	rv := reflect.ValueOf(f[key])
	if rv.Kind() != reflect.Map {
		return out
	}
	for _, mk := range rv.MapKeys() {
		k, ok := mk.Interface().(string)
		if !ok {
			continue
		}
		if s, ok := rv.MapIndex(mk).Interface().(string); ok {
			out[k] = s
		}
	}
	return out
}

func getAnyMap(f docstore.Fields, key string) map[string]any {
	rv := reflect.ValueOf(f[key])
	if rv.Kind() != reflect.Map {
		return nil
	}
	out := make(map[string]any, rv.Len())
	for _, mk := range rv.MapKeys() {
		if k, ok := mk.Interface().(string); ok {
			out[k] = rv.MapIndex(mk).Interface()
		}
	}
	return out
}
