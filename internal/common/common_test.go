package common

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastRetry() RetryOptions {
	return RetryOptions{
		MaxAttempts:  3,
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
		Multiplier:   2,
	}
}

func TestWithRetry_RetriesRateLimit(t *testing.T) {
	calls := 0
	err := WithRetry(context.Background(), func() error {
		calls++
		if calls < 3 {
			return ErrRateLimit
		}
		return nil
	}, fastRetry())

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestWithRetry_StopsOnPermanentError(t *testing.T) {
	permanent := errors.New("bad request")
	calls := 0
	err := WithRetry(context.Background(), func() error {
		calls++
		return permanent
	}, fastRetry())

	assert.ErrorIs(t, err, permanent)
	assert.Equal(t, 1, calls)
}

func TestWithRetry_ExhaustsAttempts(t *testing.T) {
	calls := 0
	err := WithRetry(context.Background(), func() error {
		calls++
		return &RetryableError{Err: errors.New("busy"), Retryable: true}
	}, fastRetry())

	assert.ErrorIs(t, err, ErrMaxRetries)
	assert.Equal(t, 3, calls)
}

func TestWithRetry_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := WithRetry(ctx, func() error { return ErrRateLimit }, RetryOptions{
		MaxAttempts:  5,
		InitialDelay: time.Second,
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestUserError(t *testing.T) {
	inner := errors.New("connection refused")
	err := NewUserError("Could not reach the assistant", inner)

	assert.Equal(t, "Could not reach the assistant: connection refused", err.Error())
	assert.ErrorIs(t, err, inner)

	var userErr *UserError
	require.ErrorAs(t, err, &userErr)
	assert.Equal(t, "Could not reach the assistant", userErr.UserMessage)
}

func TestParseLevel(t *testing.T) {
	lvl, err := ParseLevel("debug")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, lvl)

	_, err = ParseLevel("verbose")
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestStripCurrency(t *testing.T) {
	tests := map[string]string{
		"₹1,200.50": "1200.50",
		"Rs. 40":    "40",
		"rs80":      "80",
		" $12 ":     "12",
		"abc":       "abc",
	}
	for in, want := range tests {
		assert.Equal(t, want, StripCurrency(in), in)
	}
}

type hintedErr struct{ after time.Duration }

func (e hintedErr) Error() string { return "slow down" }
func (e hintedErr) RetryDelay() time.Duration { return e.after }

func TestNextDelay(t *testing.T) {
	plain := errors.New("busy")

	assert.Equal(t, 100*time.Millisecond, nextDelay(plain, 100*time.Millisecond, time.Second))
	assert.Equal(t, 500*time.Millisecond, nextDelay(hintedErr{500 * time.Millisecond}, 100*time.Millisecond, time.Second))
	assert.Equal(t, time.Second, nextDelay(hintedErr{time.Minute}, 100*time.Millisecond, time.Second))
	assert.Equal(t, 100*time.Millisecond, nextDelay(hintedErr{time.Millisecond}, 100*time.Millisecond, time.Second))
}
