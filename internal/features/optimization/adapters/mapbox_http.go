package adapter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"fleet-route-api/internal/core/httpclient"

	"github.com/tidwall/gjson"
)

const maxRetryAttempts = 4

// httpStatusError is a provider answer with a 4xx/5xx status.
type httpStatusError struct {
	Code int
	Body string
}

func (e *httpStatusError) Error() string {
	if msg := gjson.Get(e.Body, "message").String(); msg != "" {
		return fmt.Sprintf("code %d: %s", e.Code, msg)
	}
	return fmt.Sprintf("code %d: %s", e.Code, e.Body)
}

func (e *httpStatusError) transient() bool {
	switch e.Code {
	case http.StatusTooManyRequests, http.StatusInternalServerError, http.StatusBadGateway,
		http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}

func (m *MapboxAdapter) newRequest(ctx context.Context, method, target string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

// do returns the status and body of a response below 400, or an *httpStatusError.
// Transport errors carry the request URL with the access token masked.
func (m *MapboxAdapter) do(req *http.Request) (int, []byte, error) {
	resp, err := m.client.Do(req)
	if err != nil {
		var ue *url.Error
		if errors.As(err, &ue) {
			return 0, nil, &url.Error{Op: ue.Op, URL: httpclient.RedactURL(req.URL), Err: ue.Err}
		}
		return 0, nil, err
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return resp.StatusCode, nil, &httpStatusError{
			Code: resp.StatusCode,
			Body: strings.TrimSpace(string(b)),
		}
	}
	return resp.StatusCode, b, nil
}

// doWithRetry retries rate limiting, 5xx responses and network errors
// with exponential backoff while respecting context cancellation.
func (m *MapboxAdapter) doWithRetry(ctx context.Context, makeReq func() (*http.Request, error)) (int, []byte, error) {
	backoff := m.backoff
	var lastErr error

	for attempt := 1; attempt <= maxRetryAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return 0, nil, err
		}

		req, err := makeReq()
		if err != nil {
			return 0, nil, fmt.Errorf("make request: %w", err)
		}

		status, body, err := m.do(req)
		if err == nil {
			return status, body, nil
		}
		lastErr = err

		retry := false
		var he *httpStatusError
		if errors.As(err, &he) {
			retry = he.transient()
		}

		var netErr net.Error
		if !retry && errors.As(err, &netErr) && ctx.Err() == nil {
			retry = true
		}

		if !retry || attempt == maxRetryAttempts {
			return status, nil, lastErr
		}

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return 0, nil, ctx.Err()
		case <-timer.C:
		}

		backoff *= 2
	}

	return 0, nil, lastErr
}
