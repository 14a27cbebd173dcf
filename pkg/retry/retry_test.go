package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	errs "hfharvest/pkg/errors"
	"hfharvest/pkg/logger"
)

func TestExponentialBackoffDoubling(t *testing.T) {
	backoff := DefaultExponentialBackoff()

	tests := []struct {
		attempt  int
		expected time.Duration
	}{
		{1, 1 * time.Second},
		{2, 2 * time.Second},
		{3, 4 * time.Second},
		{4, 8 * time.Second},
		{5, 16 * time.Second},
		{6, 30 * time.Second}, // capped
		{7, 30 * time.Second}, // still capped
	}

	for _, test := range tests {
		if delay := backoff.NextDelay(test.attempt); delay != test.expected {
			t.Errorf("attempt %d: expected %v, got %v", test.attempt, test.expected, delay)
		}
	}
}

func TestExponentialBackoffNoJitterByDefault(t *testing.T) {
	backoff := DefaultExponentialBackoff()

	first := backoff.NextDelay(3)
	for i := 0; i < 5; i++ {
		if delay := backoff.NextDelay(3); delay != first {
			t.Fatalf("expected deterministic delays without jitter, got %v then %v", first, delay)
		}
	}
}

func TestRetryWithSuccess(t *testing.T) {
	attempts := 0
	op := func() error {
		attempts++
		if attempts < 3 {
			return &errs.Error{Type: errs.ErrorTypeServerError, Code: 503, Message: "unavailable"}
		}
		return nil
	}

	cfg := &Config{
		MaxAttempts: 5,
		Backoff:     &ConstantBackoff{Delay: time.Millisecond},
		RetryIf:     DefaultRetryIf,
		Context:     context.Background(),
		Logger:      logger.NewTestLogger(),
	}

	if err := Do(op, cfg); err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if attempts != 3 {
		t.Errorf("expected 3 attempts, got %d", attempts)
	}
}

func TestRetryExhaustsAttemptCap(t *testing.T) {
	attempts := 0
	op := func() error {
		attempts++
		return &errs.Error{Type: errs.ErrorTypeServerError, Code: 503, Message: "unavailable"}
	}

	cfg := &Config{
		MaxAttempts: 5,
		Backoff:     &ConstantBackoff{Delay: time.Millisecond},
		RetryIf:     DefaultRetryIf,
		Context:     context.Background(),
		Logger:      logger.NewTestLogger(),
	}

	err := Do(op, cfg)
	if err == nil {
		t.Fatal("expected error after exhausting attempts")
	}
	if attempts != 5 {
		t.Errorf("expected exactly 5 attempts, got %d", attempts)
	}
}

func TestRetryStopsOnPermanentError(t *testing.T) {
	attempts := 0
	permanent := &errs.Error{Type: errs.ErrorTypeNotFound, Code: 404, Message: "gone"}
	op := func() error {
		attempts++
		return permanent
	}

	cfg := &Config{
		MaxAttempts: 5,
		Backoff:     &ConstantBackoff{Delay: time.Millisecond},
		RetryIf:     DefaultRetryIf,
		Context:     context.Background(),
		Logger:      logger.NewTestLogger(),
	}

	err := Do(op, cfg)
	if !errors.Is(err, permanent) {
		t.Fatalf("expected the permanent error back, got %v", err)
	}
	if attempts != 1 {
		t.Errorf("expected a single attempt, got %d", attempts)
	}
}

func TestRetryCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	attempts := 0
	op := func() error {
		attempts++
		return &errs.Error{Type: errs.ErrorTypeNetwork, Message: "connection refused"}
	}

	cfg := &Config{
		MaxAttempts: 5,
		Backoff:     &ConstantBackoff{Delay: time.Hour},
		RetryIf:     DefaultRetryIf,
		Context:     ctx,
		Logger:      logger.NewTestLogger(),
	}

	err := Do(op, cfg)
	if err == nil || !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation error, got %v", err)
	}
	if attempts != 1 {
		t.Errorf("expected one attempt before cancellation, got %d", attempts)
	}
}

func TestDoWithResult(t *testing.T) {
	attempts := 0
	op := func() (int, error) {
		attempts++
		if attempts < 2 {
			return 0, &errs.Error{Type: errs.ErrorTypeRateLimit, Code: 429, Message: "slow down"}
		}
		return 42, nil
	}

	cfg := &Config{
		MaxAttempts: 3,
		Backoff:     &ConstantBackoff{Delay: time.Millisecond},
		RetryIf:     DefaultRetryIf,
		Context:     context.Background(),
		Logger:      logger.NewTestLogger(),
	}

	result, err := DoWithResult(op, cfg)
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if result != 42 {
		t.Errorf("expected 42, got %d", result)
	}
}

func TestDefaultRetryIf(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		retryable bool
	}{
		{"nil", nil, false},
		{"network", &errs.Error{Type: errs.ErrorTypeNetwork}, true},
		{"rate limit", &errs.Error{Type: errs.ErrorTypeRateLimit}, true},
		{"server error", &errs.Error{Type: errs.ErrorTypeServerError}, true},
		{"not found", &errs.Error{Type: errs.ErrorTypeNotFound}, false},
		{"parsing", &errs.Error{Type: errs.ErrorTypeParsing}, false},
		{"context canceled", context.Canceled, false},
		{"unknown plain error", errors.New("mystery"), true},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := DefaultRetryIf(test.err); got != test.retryable {
				t.Errorf("expected %v, got %v", test.retryable, got)
			}
		})
	}
}
