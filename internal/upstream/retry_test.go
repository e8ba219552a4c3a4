package upstream

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPolicy(slept *[]time.Duration) RetryPolicy {
	return RetryPolicy{
		MaxRetries: 2,
		BaseDelay:  time.Second,
		sleep: func(ctx context.Context, d time.Duration) error {
			*slept = append(*slept, d)
			return nil
		},
	}
}

func TestRetrySucceedsFirstTry(t *testing.T) {
	var slept []time.Duration
	calls := 0

	v, err := Retry(context.Background(), testPolicy(&slept), func() (int, error) {
		calls++
		return 42, nil
	})

	require.NoError(t, err)
	assert.Equal(t, 42, v)
	assert.Equal(t, 1, calls)
	assert.Empty(t, slept)
}

func TestRetryRecoversAfterTransientFailure(t *testing.T) {
	var slept []time.Duration
	calls := 0
	transient := &Error{Kind: KindNetwork, Provider: "test", Err: errors.New("connection reset")}

	v, err := Retry(context.Background(), testPolicy(&slept), func() (string, error) {
		calls++
		if calls < 3 {
			return "", transient
		}
		return "ok", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "ok", v)
	assert.Equal(t, 3, calls)
	assert.Len(t, slept, 2)
}

func TestRetryExhaustsBudget(t *testing.T) {
	var slept []time.Duration
	calls := 0
	failure := &Error{Kind: KindServer, Provider: "test", Err: errors.New("boom")}

	_, err := Retry(context.Background(), testPolicy(&slept), func() (int, error) {
		calls++
		return 0, failure
	})

	require.ErrorIs(t, err, failure.Err)
	// MaxRetries 2 means 3 attempts total.
	assert.Equal(t, 3, calls)
	assert.Len(t, slept, 2)
}

func TestRetryNonRetryableFailsFast(t *testing.T) {
	nonRetryable := []Kind{KindBadRequest, KindNotFound, KindUnauthorized, KindForbidden, KindQuota, KindDataFormat}

	for _, kind := range nonRetryable {
		t.Run(string(kind), func(t *testing.T) {
			var slept []time.Duration
			calls := 0

			_, err := Retry(context.Background(), testPolicy(&slept), func() (int, error) {
				calls++
				return 0, &Error{Kind: kind, Provider: "test"}
			})

			require.Error(t, err)
			assert.Equal(t, 1, calls)
			assert.Empty(t, slept)
		})
	}
}

func TestRetryBackoffScalesByErrorClass(t *testing.T) {
	cases := []struct {
		kind  Kind
		first time.Duration
	}{
		{KindRateLimit, 3 * time.Second},
		{KindServer, 2 * time.Second},
		{KindMaintenance, 2 * time.Second},
		{KindNetwork, time.Second},
	}
	for _, tc := range cases {
		t.Run(string(tc.kind), func(t *testing.T) {
			var slept []time.Duration

			_, err := Retry(context.Background(), testPolicy(&slept), func() (int, error) {
				return 0, &Error{Kind: tc.kind, Provider: "test"}
			})

			require.Error(t, err)
			require.Len(t, slept, 2)
			assert.Equal(t, tc.first, slept[0])
			// The base grows 1.5x per attempt on top of the class multiplier.
			assert.Equal(t, tc.first*3/2, slept[1])
		})
	}
}

func TestRetryBreakerOpenTwiceShortCircuits(t *testing.T) {
	var slept []time.Duration
	calls := 0
	open := fmt.Errorf("test: %w", ErrBreakerOpen)

	_, err := Retry(context.Background(), testPolicy(&slept), func() (int, error) {
		calls++
		return 0, open
	})

	require.ErrorIs(t, err, ErrBreakerOpen)
	// First rejection consumes a retry, the second stops the loop even
	// though the budget allows a third attempt.
	assert.Equal(t, 2, calls)
	assert.Len(t, slept, 1)
}

func TestRetryBreakerOpenOnceThenRecovers(t *testing.T) {
	var slept []time.Duration
	calls := 0

	v, err := Retry(context.Background(), testPolicy(&slept), func() (int, error) {
		calls++
		if calls == 1 {
			return 0, fmt.Errorf("test: %w", ErrBreakerOpen)
		}
		return 7, nil
	})

	require.NoError(t, err)
	assert.Equal(t, 7, v)
	assert.Equal(t, 2, calls)
}

func TestRetryCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	_, err := Retry(ctx, DefaultRetryPolicy(), func() (int, error) {
		calls++
		return 0, nil
	})

	require.Error(t, err)
	assert.Equal(t, 0, calls)
}
