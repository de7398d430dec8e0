package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenService_RoundTrip(t *testing.T) {
	svc := NewTokenService("secret", time.Hour)

	token, err := svc.Issue("admin-7", RoleAdmin)
	require.NoError(t, err)

	claims, err := svc.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "admin-7", claims.Subject)
	assert.Equal(t, RoleAdmin, claims.Role)
}

func TestTokenService_Rejects(t *testing.T) {
	svc := NewTokenService("secret", time.Hour)
	token, err := svc.Issue("admin-7", RoleAdmin)
	require.NoError(t, err)

	other := NewTokenService("another-secret", time.Hour)
	_, err = other.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.Parse("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)

	svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = svc.Parse(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}
