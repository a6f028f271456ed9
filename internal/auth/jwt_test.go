package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/monocle-dev/timetrack/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) *models.User {
	t.Helper()
	require.NoError(t, Init(Options{Secret: "test-secret", Issuer: "timetrack-test"}))
	SetRevoker(NewMemoryRevoker())

	user := &models.User{Username: "ada", IsStaff: true}
	user.ID = 42
	return user
}

func TestIssuePairRoundTrip(t *testing.T) {
	user := setup(t)

	pair, err := IssuePair(user)
	require.NoError(t, err)

	access, err := VerifyAccess(pair.Access)
	require.NoError(t, err)
	assert.Equal(t, uint(42), access.UserID)
	assert.Equal(t, "ada", access.Username)
	assert.True(t, access.IsStaff)

	refresh, err := VerifyRefresh(context.Background(), pair.Refresh)
	require.NoError(t, err)
	assert.NotEqual(t, access.ID, refresh.ID)
}

func TestVerifyRejectsWrongType(t *testing.T) {
	user := setup(t)

	pair, err := IssuePair(user)
	require.NoError(t, err)

	_, err = VerifyAccess(pair.Refresh)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = VerifyRefresh(context.Background(), pair.Access)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsTampering(t *testing.T) {
	user := setup(t)

	pair, err := IssuePair(user)
	require.NoError(t, err)

	_, err = VerifyAccess(pair.Access + "x")
	assert.ErrorIs(t, err, ErrInvalidToken)

	require.NoError(t, Init(Options{Secret: "other-secret", Issuer: "timetrack-test"}))
	_, err = VerifyAccess(pair.Access)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsExpired(t *testing.T) {
	setup(t)

	claims := Claims{
		UserID:    1,
		TokenType: TokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "timetrack-test",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = VerifyAccess(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRevokeRefresh(t *testing.T) {
	user := setup(t)
	ctx := context.Background()

	pair, err := IssuePair(user)
	require.NoError(t, err)

	claims, err := VerifyRefresh(ctx, pair.Refresh)
	require.NoError(t, err)
	require.NoError(t, Revoke(ctx, claims))

	_, err = VerifyRefresh(ctx, pair.Refresh)
	assert.True(t, errors.Is(err, ErrTokenRevoked))
}

func TestInitRequiresSecret(t *testing.T) {
	assert.Error(t, Init(Options{}))
}

func TestMemoryRevokerExpires(t *testing.T) {
	r := NewMemoryRevoker()
	ctx := context.Background()

	require.NoError(t, r.Revoke(ctx, "a", 20*time.Millisecond))
	revoked, err := r.IsRevoked(ctx, "a")
	require.NoError(t, err)
	assert.True(t, revoked)

	time.Sleep(40 * time.Millisecond)
	revoked, err = r.IsRevoked(ctx, "a")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestRefreshIssuesAccessForSameUser(t *testing.T) {
	user := setup(t)
	ctx := context.Background()

	pair, err := IssuePair(user)
	require.NoError(t, err)

	access, err := Refresh(ctx, pair.Refresh)
	require.NoError(t, err)

	claims, err := VerifyAccess(access)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)

	_, err = Refresh(ctx, pair.Access)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
