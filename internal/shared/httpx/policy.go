package httpx

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Policy controls how a single logical external call is executed: a per-attempt
// timeout, a number of extra attempts after the first, and a linear backoff
// (Backoff × attempt number) between attempts.
type Policy struct {
	Timeout time.Duration
	Retries int
	Backoff time.Duration
}

// ErrTimeout marks attempts that hit the per-attempt deadline.
var ErrTimeout = errors.New("request timed out")

// Client executes requests against external services under a Policy.
type Client struct {
	HTTP *http.Client
}

// New returns a Client backed by the given http.Client, or http.DefaultClient
// when nil. Per-call deadlines come from the Policy, not the transport.
func New(httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{HTTP: httpClient}
}

// Do executes build() under the policy. The request is rebuilt for every
// attempt so body readers are fresh. Transport-level failures are retried;
// any HTTP response, success or not, is returned to the caller as-is.
func (c *Client) Do(ctx context.Context, p Policy, build func(ctx context.Context) (*http.Request, error)) (*http.Response, error) {
	var lastErr error

	for attempt := 0; attempt <= p.Retries; attempt++ {
		if attempt > 0 {
			delay := p.Backoff * time.Duration(attempt)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		resp, err := c.doOnce(ctx, p.Timeout, build)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			return nil, lastErr
		}
	}

	return nil, lastErr
}

func (c *Client) doOnce(ctx context.Context, timeout time.Duration, build func(ctx context.Context) (*http.Request, error)) (*http.Response, error) {
	attemptCtx := ctx
	var cancel context.CancelFunc
	if timeout > 0 {
		attemptCtx, cancel = context.WithTimeout(ctx, timeout)
	}

	req, err := build(attemptCtx)
	if err != nil {
		if cancel != nil {
			cancel()
		}
		return nil, err
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		if cancel != nil {
			cancel()
		}
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			return nil, fmt.Errorf("%w after %s", ErrTimeout, timeout)
		}
		return nil, err
	}

	if cancel != nil {
		// The body is read after Do returns; tie the cancel to body close so
		// the deadline still covers the read.
		resp.Body = &cancelOnClose{ReadCloser: resp.Body, cancel: cancel}
	}
	return resp, nil
}

type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (c *cancelOnClose) Close() error {
	err := c.ReadCloser.Close()
	c.cancel()
	return err
}

// IsTimeout reports whether err came from a per-attempt deadline.
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout) || errors.Is(err, context.DeadlineExceeded)
}
