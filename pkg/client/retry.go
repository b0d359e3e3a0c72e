package client

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// RetryPolicy holds the configuration for the retry decorator.
type RetryPolicy struct {
	// MaxAttempts is the maximum number of attempts (including the initial request).
	MaxAttempts int

	// Delay is the fixed wait between attempts.
	Delay time.Duration
}

// DefaultRetryPolicy returns the default policy: 3 attempts, 2 seconds apart.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		Delay:       2 * time.Second,
	}
}

// RetryTransport is an http.RoundTripper that retries transient failures
// (network errors, 5xx and 408) with a fixed delay between attempts.
type RetryTransport struct {
	next   http.RoundTripper
	policy RetryPolicy
	logger zerolog.Logger
}

// NewRetryTransport wraps next with the given retry policy.
// A nil next uses http.DefaultTransport.
func NewRetryTransport(next http.RoundTripper, policy RetryPolicy) *RetryTransport {
	if next == nil {
		next = http.DefaultTransport
	}
	if policy.MaxAttempts <= 0 {
		policy.MaxAttempts = 1
	}
	if policy.Delay < 0 {
		policy.Delay = 0
	}
	return &RetryTransport{
		next:   next,
		policy: policy,
		logger: log.With().Str("component", "users-api-retry").Logger(),
	}
}

// RoundTrip implements http.RoundTripper.
//
// When every attempt fails with a retryable status, the last response is
// returned so callers can inspect its status. When every attempt fails at the
// network level, the last error is wrapped in ErrRetryExhausted.
func (t *RetryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()

	var lastErr error
	var errClass ErrorClass

	for attempt := 1; attempt <= t.policy.MaxAttempts; attempt++ {
		resp, err := t.next.RoundTrip(req.Clone(ctx))

		if err != nil {
			if ctx.Err() != nil {
				// The caller gave up; there is nobody left to retry for.
				return nil, err
			}
			errClass = classifyError(err)
			lastErr = err
		} else {
			errClass = classifyStatus(resp.StatusCode)
			if !shouldRetry(errClass) {
				if attempt > 1 {
					t.logger.Info().
						Str("url", req.URL.String()).
						Int("attempt", attempt).
						Msg("Request succeeded after retry")
				}
				return resp, nil
			}
			if attempt >= t.policy.MaxAttempts {
				usersAPIRetryExhaustedTotal.WithLabelValues(string(errClass)).Inc()
				t.logger.Warn().
					Str("url", req.URL.String()).
					Int("status", resp.StatusCode).
					Int("max_attempts", t.policy.MaxAttempts).
					Msg("Retry attempts exhausted")
				return resp, nil
			}
			drainAndClose(resp.Body)
			lastErr = &APIError{
				StatusCode: resp.StatusCode,
				ErrorClass: errClass,
				Message:    resp.Status,
			}
		}

		if attempt >= t.policy.MaxAttempts {
			break
		}

		usersAPIRetriesTotal.WithLabelValues(string(errClass)).Inc()
		t.logger.Debug().
			Str("url", req.URL.String()).
			Str("error_class", string(errClass)).
			Int("attempt", attempt).
			Dur("delay", t.policy.Delay).
			Err(lastErr).
			Msg("Retrying request after delay")

		timer := time.NewTimer(t.policy.Delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			t.logger.Warn().
				Str("url", req.URL.String()).
				Int("attempt", attempt).
				Msg("Context cancelled during retry delay")
			return nil, fmt.Errorf("%w: %w", ErrContextCancelled, ctx.Err())
		case <-timer.C:
		}
	}

	usersAPIRetryExhaustedTotal.WithLabelValues(string(errClass)).Inc()
	t.logger.Warn().
		Str("url", req.URL.String()).
		Str("error_class", string(errClass)).
		Int("max_attempts", t.policy.MaxAttempts).
		Msg("Retry attempts exhausted")

	return nil, fmt.Errorf("%w after %d attempts: %w", ErrRetryExhausted, t.policy.MaxAttempts, lastErr)
}

func drainAndClose(body io.ReadCloser) {
	if body == nil {
		return
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(body, 4096))
	body.Close()
}
