// Package transport builds the HTTP client shared by the imagery adapters.
package transport

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const (
	DefaultTimeout         = 30 * time.Second
	DefaultInitialInterval = 500 * time.Millisecond
)

var errBodyNotReplayable = errors.New("request body cannot be replayed for retry")

// Options configures NewHTTPClient.
type Options struct {
	// Timeout bounds each request, retries included. Zero means DefaultTimeout.
	Timeout time.Duration
	// MaxRetries is how many times a transport error is retried. Zero disables retry.
	MaxRetries uint64
	// InitialInterval is the first backoff delay. Zero means DefaultInitialInterval.
	InitialInterval time.Duration
	// Base is the underlying transport. Nil means http.DefaultTransport.
	Base http.RoundTripper
}

// NewHTTPClient returns a client with a request timeout and, when MaxRetries > 0,
// exponential-backoff retry of transport errors. HTTP statuses are never retried.
func NewHTTPClient(opts Options) *http.Client {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.InitialInterval <= 0 {
		opts.InitialInterval = DefaultInitialInterval
	}
	rt := opts.Base
	if rt == nil {
		rt = http.DefaultTransport
	}
	if opts.MaxRetries > 0 {
		rt = &retryTransport{base: rt, maxRetries: opts.MaxRetries, initialInterval: opts.InitialInterval}
	}

	return &http.Client{
		Timeout:   opts.Timeout,
		Transport: rt,
	}
}

// IsTimeout reports whether err is a deadline expiry rather than another transport failure.
func IsTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

type retryTransport struct {
	base            http.RoundTripper
	maxRetries      uint64
	initialInterval time.Duration
}

func (t *retryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = t.initialInterval
	policy := backoff.WithContext(backoff.WithMaxRetries(b, t.maxRetries), ctx)

	var (
		resp    *http.Response
		attempt int
	)
	operation := func() error {
		r, err := t.attemptRequest(req, attempt)
		if err != nil {
			return backoff.Permanent(err)
		}
		attempt++

		res, err := t.base.RoundTrip(r)
		if err != nil {
			if ctx.Err() != nil || IsTimeout(err) {
				return backoff.Permanent(err)
			}
			return err
		}
		resp = res
		return nil
	}
	notify := func(err error, next time.Duration) {
		slog.WarnContext(ctx, "transport error, retrying", "url", req.URL.Redacted(), "attempt", attempt, "backoff", next, "error", err)
	}

	if err := backoff.RetryNotify(operation, policy, notify); err != nil {
		return nil, err
	}
	return resp, nil
}

// attemptRequest returns the request for the given attempt, rewinding the body on retries.
func (t *retryTransport) attemptRequest(req *http.Request, attempt int) (*http.Request, error) {
	if attempt == 0 || req.Body == nil || req.Body == http.NoBody {
		return req, nil
	}
	if req.GetBody == nil {
		return nil, errBodyNotReplayable
	}
	body, err := req.GetBody()
	if err != nil {
		return nil, err
	}
	r := req.Clone(req.Context())
	r.Body = body
	return r, nil
}
