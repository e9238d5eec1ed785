package security

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"kikoba-backend/internal/domain"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

// ActorClaims carries the already-authenticated identity the core receives
// with every call. Tokens are issued by the external identity provider; the
// core only verifies the signature and extracts the actor.
type ActorClaims struct {
	Name string      `json:"name"`
	Role domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// Actor converts the claims into the domain identity.
func (c *ActorClaims) Actor() domain.Actor {
	return domain.Actor{
		ID:   c.Subject,
		Name: c.Name,
		Role: c.Role,
	}
}

type TokenManager interface {
	GenerateToken(actor domain.Actor) (string, error)
	ValidateToken(tokenString string) (*ActorClaims, error)
}

type tokenManager struct {
	secret []byte
}

func NewTokenManager(secret string) TokenManager {
	return &tokenManager{
		secret: []byte(secret),
	}
}

// GenerateToken issues a signed actor token. The server itself only needs
// this for tooling and tests; production tokens come from the identity
// provider sharing the same secret.
func (m *tokenManager) GenerateToken(actor domain.Actor) (string, error) {
	claims := ActorClaims{
		Name: actor.Name,
		Role: actor.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   actor.ID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(1 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "kikoba-identity",
			Audience:  jwt.ClaimStrings{"api-access"},
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

func (m *tokenManager) ValidateToken(tokenString string) (*ActorClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &ActorClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.secret, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*ActorClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	if claims.Role != domain.RoleMember && claims.Role != domain.RoleAdmin {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
