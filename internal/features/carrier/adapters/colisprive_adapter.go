package adapter

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"fleet-route-api/internal/core/config"
	"fleet-route-api/internal/core/httpclient"
	"fleet-route-api/internal/core/logger"

	"go.uber.org/zap"
)

const (
	carrierOrigin  = "https://gestiontournee.colisprive.com"
	carrierReferer = "https://gestiontournee.colisprive.com/"
	userAgent      = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/140.0.0.0 Safari/537.36"

	// maxBodySize caps how much of a carrier response is read into memory.
	maxBodySize = 8 << 20
)

// ColisPriveAdapter talks to the Colis Privé web APIs.
// It implements ports.Authenticator, ports.ManifestProvider and ports.DetailFetcher.
type ColisPriveAdapter struct {
	// client is the HTTP client used for API requests.
	client *http.Client
	// config holds the endpoints, token lifetime and batching limits.
	config config.ColisPriveConfig
	log    *zap.Logger

	now  func() time.Time
	wait func(ctx context.Context, d time.Duration) error
}

// NewColisPriveAdapter creates a new instance of ColisPriveAdapter.
// A nil client gets a dedicated one bounded by cfg.RequestTimeout.
func NewColisPriveAdapter(cfg config.ColisPriveConfig, client *http.Client) *ColisPriveAdapter {
	if client == nil {
		client = httpclient.NewClient(cfg.RequestTimeout, nil)
	}

	cfg.AuthURL = strings.TrimRight(cfg.AuthURL, "/")
	cfg.TourneeURL = strings.TrimRight(cfg.TourneeURL, "/")
	cfg.DetailURL = strings.TrimRight(cfg.DetailURL, "/")

	return &ColisPriveAdapter{
		client: client,
		config: cfg,
		log:    logger.Named("carrier.colisprive"),
		now:    time.Now,
		wait:   sleep,
	}
}

// sleep blocks for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// setCarrierHeaders applies the header set the carrier web front end sends.
func setCarrierHeaders(req *http.Request, sessionToken string) {
	h := req.Header
	h.Set("Accept", "application/json, text/plain, */*")
	h.Set("Accept-Language", "fr-FR,fr;q=0.6")
	h.Set("Content-Type", "application/json")
	h.Set("Cache-Control", "no-cache")
	h.Set("Pragma", "no-cache")
	h.Set("Origin", carrierOrigin)
	h.Set("Referer", carrierReferer)
	h.Set("Sec-Fetch-Dest", "empty")
	h.Set("Sec-Fetch-Mode", "cors")
	h.Set("Sec-Fetch-Site", "same-site")
	h.Set("Sec-GPC", "1")
	h.Set("User-Agent", userAgent)
	h.Set("sec-ch-ua", `"Chromium";v="140", "Not=A?Brand";v="24", "Brave";v="140"`)
	h.Set("sec-ch-ua-mobile", "?0")
	h.Set("sec-ch-ua-platform", `"macOS"`)
	if sessionToken != "" {
		h.Set("SsoHopps", sessionToken)
	}
}

// post sends body to url with the carrier headers and returns the status and the response body.
// A non-nil error means no response was received.
func (a *ColisPriveAdapter) post(ctx context.Context, url string, body []byte, sessionToken string) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}
	setCarrierHeaders(req, sessionToken)

	resp, err := a.client.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("failed to read response: %w", err)
	}

	return resp.StatusCode, data, nil
}
