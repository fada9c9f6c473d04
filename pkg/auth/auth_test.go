package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestPasswordService(t *testing.T) {
	t.Parallel()
	s := NewPasswordService(bcrypt.MinCost)

	hash, err := s.Hash("secret")
	require.NoError(t, err)
	require.NotEqual(t, "secret", hash)
	require.True(t, s.Verify(hash, "secret"))
	require.False(t, s.Verify(hash, "Secret"))
	require.False(t, s.Verify("not-a-hash", "secret"))

	_, err = s.Hash(strings.Repeat("a", MaxPasswordLen+1))
	require.ErrorIs(t, err, ErrPasswordTooLong)
}

func TestNewPasswordService_cost(t *testing.T) {
	t.Parallel()
	require.Equal(t, bcrypt.DefaultCost, NewPasswordService(0).cost)
	require.Equal(t, bcrypt.MinCost, NewPasswordService(bcrypt.MinCost).cost)
}

func TestTokenService(t *testing.T) {
	t.Parallel()
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	s := NewTokenService("key", time.Hour)
	s.now = func() time.Time { return now }

	token, err := s.Generate("leo")
	require.NoError(t, err)

	sub, err := s.Parse(token)
	require.NoError(t, err)
	require.Equal(t, "leo", sub)

	t.Run("expired", func(t *testing.T) {
		expired := NewTokenService("key", time.Hour)
		expired.now = func() time.Time { return now.Add(2 * time.Hour) }
		_, err := expired.Parse(token)
		require.ErrorIs(t, err, ErrInvalidToken)
	})
	t.Run("other secret", func(t *testing.T) {
		other := NewTokenService("other", time.Hour)
		other.now = s.now
		_, err := other.Parse(token)
		require.ErrorIs(t, err, ErrInvalidToken)
	})
	t.Run("none alg", func(t *testing.T) {
		unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
			Subject:   "leo",
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		}).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = s.Parse(unsigned)
		require.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestUsernameContext(t *testing.T) {
	t.Parallel()
	_, ok := GetUsername(context.Background())
	require.False(t, ok)

	username, ok := GetUsername(SetUsername(context.Background(), "leo"))
	require.True(t, ok)
	require.Equal(t, "leo", username)
}
