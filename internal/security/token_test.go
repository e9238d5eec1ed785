package security

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kikoba-backend/internal/domain"
)

const testSecret = "test-secret-that-is-long-enough-0123456789"

func TestTokenManager_RoundTrip(t *testing.T) {
	tm := NewTokenManager(testSecret)
	actor := domain.Actor{ID: "m1", Name: "Amina", Role: domain.RoleAdmin}

	token, err := tm.GenerateToken(actor)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := tm.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, actor, claims.Actor())
}

func TestTokenManager_RejectsWrongSecret(t *testing.T) {
	token, err := NewTokenManager(testSecret).GenerateToken(domain.Actor{ID: "m1", Role: domain.RoleMember})
	require.NoError(t, err)

	_, err = NewTokenManager("a-different-secret-also-long-enough-xyz").ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenManager_RejectsGarbage(t *testing.T) {
	tm := NewTokenManager(testSecret)

	_, err := tm.ValidateToken("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenManager_RejectsUnknownRole(t *testing.T) {
	tm := NewTokenManager(testSecret)

	token, err := tm.GenerateToken(domain.Actor{ID: "m1", Role: domain.Role("TREASURER")})
	require.NoError(t, err)

	_, err = tm.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenManager_RejectsMissingSubject(t *testing.T) {
	tm := NewTokenManager(testSecret)

	token, err := tm.GenerateToken(domain.Actor{Role: domain.RoleMember})
	require.NoError(t, err)

	_, err = tm.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
