package evmclient

import (
	"context"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"

	"github.com/auditforge/paygate/common/errs"
	"github.com/auditforge/paygate/pkg/metrics"
)

func newRetryTestClient(conf Config) *Client {
	return &Client{
		config:  conf.withDefaults(),
		metrics: metrics.NoopRecorder{},
	}
}

func TestWithRetrySucceedsFirstAttempt(t *testing.T) {
	client := newRetryTestClient(Config{})

	calls := 0
	result, err := withRetry(context.Background(), client, 1, "test", func(_ context.Context) (int, error) {
		calls++
		return 42, nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 42, result)
	assert.Equal(t, 1, calls)
}

func TestWithRetryRecoversFromTransportFailure(t *testing.T) {
	client := newRetryTestClient(Config{RetryBackoff: time.Millisecond})

	calls := 0
	result, err := withRetry(context.Background(), client, 1, "test", func(_ context.Context) (int, error) {
		calls++
		if calls < 3 {
			return 0, errors.New("connection refused")
		}
		return 42, nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 42, result)
	assert.Equal(t, 3, calls)
}

func TestWithRetryGivesUpAfterMaxAttempts(t *testing.T) {
	client := newRetryTestClient(Config{RetryBackoff: time.Millisecond, MaxAttempts: 3})

	calls := 0
	_, err := withRetry(context.Background(), client, 1, "test", func(_ context.Context) (int, error) {
		calls++
		return 0, errors.New("connection refused")
	})
	assert.Error(t, err)
	assert.Equal(t, 3, calls)
}

func TestWithRetryDoesNotRetryNotFound(t *testing.T) {
	client := newRetryTestClient(Config{RetryBackoff: time.Millisecond})

	calls := 0
	_, err := withRetry(context.Background(), client, 1, "test", func(_ context.Context) (int, error) {
		calls++
		return 0, errors.Wrap(errs.NotFound, "no receipt")
	})
	assert.ErrorIs(t, err, errs.NotFound)
	assert.Equal(t, 1, calls, "a definitive node answer must not be retried")
}

func TestWithRetryStopsOnCanceledContext(t *testing.T) {
	client := newRetryTestClient(Config{RetryBackoff: time.Minute})

	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	done := make(chan struct{})
	go func() {
		defer close(done)
		_, err := withRetry(ctx, client, 1, "test", func(_ context.Context) (int, error) {
			calls++
			return 0, errors.New("connection refused")
		})
		assert.ErrorIs(t, err, context.Canceled)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("withRetry did not honor context cancellation")
	}
	assert.Equal(t, 1, calls)
}

func TestConfigDefaults(t *testing.T) {
	conf := Config{}.withDefaults()
	assert.Equal(t, DefaultRequestTimeout, conf.RequestTimeout)
	assert.Equal(t, DefaultMaxAttempts, conf.MaxAttempts)
	assert.Equal(t, DefaultRetryBackoff, conf.RetryBackoff)

	conf = Config{RequestTimeout: time.Second, MaxAttempts: 5, RetryBackoff: time.Millisecond}.withDefaults()
	assert.Equal(t, time.Second, conf.RequestTimeout)
	assert.Equal(t, 5, conf.MaxAttempts)
	assert.Equal(t, time.Millisecond, conf.RetryBackoff)
}
