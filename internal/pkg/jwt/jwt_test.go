package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shandysiswandi/gotp/internal/pkg/clock"
	"github.com/shandysiswandi/gotp/internal/pkg/uid"
)

func TestSymmetric(t *testing.T) {
	clk := clock.NewManual(time.Now().Truncate(time.Second))
	s, err := NewHS256(Config{
		Secret:   []byte("salesforce-signing-secret"),
		ClientID: "client-123",
		Audience: "https://login.example.com",
		Clock:    clk,
		UUID:     uid.NewUUID(),
	})
	require.NoError(t, err)

	token, err := s.Sign()
	require.NoError(t, err)

	claims, err := s.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "client-123", claims.Issuer)
	assert.Equal(t, "client-123", claims.Subject)
	assert.Equal(t, []string{"https://login.example.com"}, []string(claims.Audience))
	assert.True(t, clk.Now().Add(5*time.Minute).Equal(claims.ExpiresAt.Time))
	assert.NotEmpty(t, claims.ID)

	clk.Advance(6 * time.Minute)
	_, err = s.Verify(token)
	assert.ErrorIs(t, err, ErrTokenExpired)

	other, err := NewHS256(Config{Secret: []byte("other"), ClientID: "client-123", Audience: "https://login.example.com", Clock: clk})
	require.NoError(t, err)
	fresh, err := other.Sign()
	require.NoError(t, err)
	_, err = s.Verify(fresh)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestNewHS256_EmptySecret(t *testing.T) {
	_, err := NewHS256(Config{})
	assert.ErrorIs(t, err, ErrSigningKeyEmpty)
}
