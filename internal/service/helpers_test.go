package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"kikoba-backend/internal/docstore"
	"kikoba-backend/internal/domain"
	"kikoba-backend/internal/repository"
	"kikoba-backend/internal/repository/document"
)

// fixture wires the full service stack over an in-memory document store,
// pre-seeded with one admin pair and two regular members.
type fixture struct {
	store  *document.Store
	cache  *spyCache
	admin1 domain.Member
	admin2 domain.Member
	member domain.Member
	other  domain.Member
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	store := document.NewStore(docstore.NewMemoryStore())

	f := &fixture{
		store: store,
		cache: newSpyCache(),
		admin1: domain.Member{
			Name: "Amina", MemberNo: "K-001", Role: domain.RoleAdmin, Active: true,
		},
		admin2: domain.Member{
			Name: "Baraka", MemberNo: "K-002", Role: domain.RoleAdmin, Active: true,
		},
		member: domain.Member{
			Name: "Chausiku", MemberNo: "K-010", Role: domain.RoleMember, Active: true,
		},
		other: domain.Member{
			Name: "Daudi", MemberNo: "K-011", Role: domain.RoleMember, Active: true,
		},
	}
	for _, m := range []*domain.Member{&f.admin1, &f.admin2, &f.member, &f.other} {
		id, err := store.MemberRepository.Create(ctx, m)
		require.NoError(t, err)
		m.ID = id
	}
	return f
}

func (f *fixture) actor(m domain.Member) domain.Actor {
	return domain.Actor{ID: m.ID, Name: m.Name, Role: m.Role}
}

// append books a completed transaction directly, bypassing the services.
func (f *fixture) append(t *testing.T, memberID string, kind domain.TransactionKind, category domain.TransactionCategory, amount int64, occurredAt time.Time) string {
	t.Helper()
	member := f.memberByID(t, memberID)
	id, err := f.store.LedgerRepository.Append(context.Background(), &domain.Transaction{
		Kind:       kind,
		Category:   category,
		Amount:     decimal.NewFromInt(amount),
		MemberID:   memberID,
		MemberName: member.Name,
		OccurredAt: occurredAt,
		RecordedBy: "seed",
		Status:     domain.TransactionStatusCompleted,
	})
	require.NoError(t, err)
	return id
}

func (f *fixture) memberByID(t *testing.T, id string) *domain.Member {
	t.Helper()
	m, err := f.store.MemberRepository.GetByID(context.Background(), id)
	require.NoError(t, err)
	return m
}

// spyCache records cache traffic so tests can assert on read-through and
// invalidation behavior.
type spyCache struct {
	mu          sync.Mutex
	entries     map[string]*domain.MemberBalance
	invalidated []string
	hits        int
	misses      int
}

func newSpyCache() *spyCache {
	return &spyCache{entries: make(map[string]*domain.MemberBalance)}
}

func (c *spyCache) GetMemberBalance(_ context.Context, memberID string) (*domain.MemberBalance, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if b, ok := c.entries[memberID]; ok {
		c.hits++
		return b, true
	}
	c.misses++
	return nil, false
}

func (c *spyCache) SetMemberBalance(_ context.Context, balance *domain.MemberBalance) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[balance.MemberID] = balance
}

func (c *spyCache) Invalidate(_ context.Context, memberID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, memberID)
	c.invalidated = append(c.invalidated, memberID)
}

// flakyLedger wraps a real repository and fails Append a configured number
// of times before letting writes through.
type flakyLedger struct {
	repository.LedgerRepository
	mu       sync.Mutex
	failures int
	attempts int
	err      error
}

func (l *flakyLedger) Append(ctx context.Context, tx *domain.Transaction) (string, error) {
	l.mu.Lock()
	l.attempts++
	fail := l.attempts <= l.failures
	l.mu.Unlock()
	if fail {
		return "", l.err
	}
	return l.LedgerRepository.Append(ctx, tx)
}
