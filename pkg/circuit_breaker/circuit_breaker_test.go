package circuit_breaker

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func Test_circuitBreaker_Call(t *testing.T) {
	t.Parallel()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	cb := New(10, 2*time.Second, 0.3, 3).(*circuitBreaker)
	cb.now = func() time.Time { return now }

	ok := func() error { return nil }
	errService := errors.New("service error")
	fail := func() error { return errService }

	for i := 0; i < 20; i++ {
		require.NoError(t, cb.Call(ok))
	}
	require.Equal(t, Closed, cb.State())

	// 3 of the last 10 calls fail
	for i := 0; i < 3; i++ {
		require.ErrorIs(t, cb.Call(fail), errService)
	}
	require.Equal(t, Open, cb.State())

	called := false
	err := cb.Call(func() error { called = true; return nil })
	require.ErrorIs(t, err, ErrOpen)
	require.False(t, called)

	now = now.Add(3 * time.Second)
	require.ErrorIs(t, cb.Call(fail), errService)
	require.Equal(t, Open, cb.State(), "failure while half-open reopens")

	now = now.Add(3 * time.Second)
	for i := 0; i < 2; i++ {
		require.NoError(t, cb.Call(ok))
		require.Equal(t, HalfOpen, cb.State())
	}
	require.NoError(t, cb.Call(ok))
	require.Equal(t, Closed, cb.State())
}

func Test_circuitBreaker_Reset(t *testing.T) {
	t.Parallel()
	cb := New(2, time.Hour, 0.5, 1)
	_ = cb.Call(func() error { return errors.New("boom") })
	require.Equal(t, Open, cb.State())

	cb.Reset()
	require.Equal(t, Closed, cb.State())
	require.NoError(t, cb.Call(func() error { return nil }))
}
