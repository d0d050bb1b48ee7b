package httpclient

import (
	"bytes"
	"context"
	crand "crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/jsamuelsen11/go-dispatch-service/internal/platform/logging"
)

// jitterFraction is the maximum jitter as a fraction of the delay (±25%).
const jitterFraction = 0.25

// IdempotencyKeyHeader marks a non-idempotent request as safe to replay.
const IdempotencyKeyHeader = "Idempotency-Key"

// StatusError reports that the downstream kept answering with a retryable
// status until the attempts ran out.
type StatusError struct {
	Service    string
	StatusCode int
	Attempts   int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: HTTP %d after %d attempt(s)", e.Service, e.StatusCode, e.Attempts)
}

// doWithRetry sends req until it gets a non-retryable outcome or runs out of
// attempts. Only replayable requests get more than one attempt. The final
// response is written to resp rather than returned so the bodyclose linter
// can follow ownership; the caller closes resp.Body.
//
// When the last attempt still has a retryable status, both *resp and the
// returned *StatusError are set.
func (c *Client) doWithRetry(ctx context.Context, req *http.Request, resp **http.Response) error {
	if c.retryCfg.maxAttempts <= 0 {
		return fmt.Errorf("httpclient: maxAttempts must be >= 1, got %d", c.retryCfg.maxAttempts)
	}

	attempts := 1
	if isReplayable(req) {
		attempts = c.retryCfg.maxAttempts
	}

	rewind, err := bodyRewinder(req)
	if err != nil {
		return err
	}

	var (
		lastErr   error
		lastResp  *http.Response
		attempted int
	)
	for attempt := range attempts {
		if attempt > 0 {
			delay := c.retryDelay(attempt, lastResp)
			if lastResp != nil {
				drainResponseBody(lastResp)
				lastResp = nil
			}
			if err := c.waitForRetry(ctx, req, attempt, delay, lastErr); err != nil {
				return err
			}
			if err := rewind(); err != nil {
				return err
			}
		}
		attempted++

		r, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			if !isRetryable(err) {
				return err
			}
			continue
		}
		if !isRetryableStatus(r.StatusCode) {
			*resp = r
			return nil
		}

		lastResp = r
		lastErr = &StatusError{Service: c.serviceName, StatusCode: r.StatusCode, Attempts: attempted}
	}

	if lastResp != nil {
		*resp = lastResp
	}
	return lastErr
}

// bodyRewinder returns a func that resets req.Body for another attempt.
// Requests built by http.NewRequest over an in-memory reader carry GetBody
// and are rewound from it; anything else is buffered once up front.
func bodyRewinder(req *http.Request) (func() error, error) {
	if req.Body == nil || req.Body == http.NoBody {
		return func() error { return nil }, nil
	}

	if req.GetBody != nil {
		return func() error {
			body, err := req.GetBody()
			if err != nil {
				return fmt.Errorf("httpclient: rewinding request body: %w", err)
			}
			req.Body = body
			return nil
		}, nil
	}

	buf, err := io.ReadAll(req.Body)
	if err != nil {
		return nil, fmt.Errorf("httpclient: reading request body: %w", err)
	}
	_ = req.Body.Close()

	reset := func() error {
		req.Body = io.NopCloser(bytes.NewReader(buf))
		req.ContentLength = int64(len(buf))
		return nil
	}
	return reset, reset()
}

// drainResponseBody discards a response that is about to be retried so the
// connection can be reused.
func drainResponseBody(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}

// retryDelay is the backoff for attempt, stretched to the downstream's
// Retry-After when that asks for longer. The result never exceeds the
// configured maximum interval.
func (c *Client) retryDelay(attempt int, last *http.Response) time.Duration {
	delay := backoff(attempt, c.retryCfg)
	if last == nil {
		return delay
	}
	if after, ok := retryAfter(last.Header.Get("Retry-After"), time.Now()); ok && after > delay {
		delay = min(after, c.retryCfg.maxInterval)
	}
	return delay
}

func (c *Client) waitForRetry(ctx context.Context, req *http.Request, attempt int, delay time.Duration, lastErr error) error {
	logging.FromContext(ctx).WarnContext(ctx, "retrying downstream request",
		slog.String("operation", "httpclient.Do"),
		slog.String("method", req.Method),
		slog.String("path", req.URL.Path),
		slog.String("peer_service", c.serviceName),
		slog.Int("attempt", attempt+1),
		slog.Int("max_attempts", c.retryCfg.maxAttempts),
		slog.Duration("backoff", delay),
		slog.Any("error", lastErr),
	)

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// backoff calculates the delay for a given retry attempt using exponential
// backoff with ±25% jitter. The attempt parameter is 1-indexed (attempt 1 is
// the first retry).
func backoff(attempt int, cfg retryConfig) time.Duration {
	delay := float64(cfg.initialInterval) * math.Pow(cfg.multiplier, float64(attempt-1))
	delay = min(delay, float64(cfg.maxInterval))

	jitter := delay * jitterFraction
	delay += jitter * (2*secureRandFloat64() - 1)

	return time.Duration(max(delay, 0))
}

// retryAfter parses a Retry-After header value in either of its two forms,
// delay-seconds or an HTTP date.
func retryAfter(value string, now time.Time) (time.Duration, bool) {
	if value == "" {
		return 0, false
	}
	if secs, err := strconv.Atoi(value); err == nil {
		if secs < 0 {
			return 0, false
		}
		return time.Duration(secs) * time.Second, true
	}
	at, err := http.ParseTime(value)
	if err != nil {
		return 0, false
	}
	return max(at.Sub(now), 0), true
}

// IEEE 754 double-precision constants for random float generation.
const (
	significandBits = 53
	uint64Bits      = 64
)

// secureRandFloat64 returns a random float64 in [0, 1) using crypto/rand.
func secureRandFloat64() float64 {
	var b [8]byte
	_, _ = crand.Read(b[:])
	return float64(binary.LittleEndian.Uint64(b[:])>>(uint64Bits-significandBits)) / (1 << significandBits)
}

// isRetryable reports whether a transport error is worth another attempt.
// The caller giving up (cancellation or deadline) never is, and neither is a
// host that does not resolve.
func isRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) && dnsErr.IsNotFound {
		return false
	}
	return true
}

// isReplayable reports whether the request may be sent more than once. A
// dispatched action can have side effects, so POSTs are sent exactly once
// unless the caller supplied an idempotency key.
func isReplayable(req *http.Request) bool {
	switch req.Method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodPut, http.MethodDelete:
		return true
	}
	return req.Header.Get(IdempotencyKeyHeader) != ""
}

// isRetryableStatus reports whether a status is transient: 429 or any 5xx.
func isRetryableStatus(statusCode int) bool {
	return statusCode == http.StatusTooManyRequests || statusCode >= http.StatusInternalServerError
}
