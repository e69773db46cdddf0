package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"helphands-go/internal/domain/access"
)

func TestBcryptHasher(t *testing.T) {
	hasher := NewBcryptHasher(bcrypt.MinCost)

	hash, err := hasher.Hash("secret123")
	require.NoError(t, err)
	assert.NotEqual(t, "secret123", hash)

	assert.NoError(t, hasher.Compare(hash, "secret123"))
	assert.ErrorIs(t, hasher.Compare(hash, "wrong"), ErrPasswordMismatch)
}

func TestBcryptHasherClampsCost(t *testing.T) {
	assert.Equal(t, bcrypt.DefaultCost, NewBcryptHasher(1).cost)
	assert.Equal(t, bcrypt.DefaultCost, NewBcryptHasher(99).cost)
}

func TestTokensRoundTrip(t *testing.T) {
	now := time.Now().Truncate(time.Second)
	tokens := NewTokens("a-very-long-test-secret", time.Hour)
	tokens.now = func() time.Time { return now }

	raw, expiresAt, err := tokens.Issue("user-1", access.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, now.Add(time.Hour), expiresAt)

	claims, err := tokens.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, access.RoleAdmin, claims.Role)
}

func TestTokensRejectExpired(t *testing.T) {
	now := time.Now()
	tokens := NewTokens("a-very-long-test-secret", time.Minute)
	tokens.now = func() time.Time { return now }

	raw, _, err := tokens.Issue("user-1", access.RoleVolunteer)
	require.NoError(t, err)

	tokens.now = func() time.Time { return now.Add(2 * time.Minute) }
	_, err = tokens.Parse(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokensRejectForeignSignature(t *testing.T) {
	issuer := NewTokens("first-secret-value-xx", time.Hour)
	verifier := NewTokens("second-secret-value-x", time.Hour)

	raw, _, err := issuer.Issue("user-1", access.RoleVolunteer)
	require.NoError(t, err)

	_, err = verifier.Parse(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = verifier.Parse("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokensRejectOtherAlgorithms(t *testing.T) {
	tokens := NewTokens("a-very-long-test-secret", time.Hour)
	token := jwt.NewWithClaims(jwt.SigningMethodHS512, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	raw, err := token.SignedString([]byte("a-very-long-test-secret"))
	require.NoError(t, err)

	_, err = tokens.Parse(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
