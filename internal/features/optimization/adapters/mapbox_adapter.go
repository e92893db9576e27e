package adapter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"fleet-route-api/internal/core/config"
	"fleet-route-api/internal/core/httpclient"
	"fleet-route-api/internal/core/logger"
	"fleet-route-api/internal/features/optimization/domain"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

const (
	optimizePath = "/optimized-trips/v2"
	maxBodySize  = 16 << 20
)

// MapboxAdapter implements ports.Provider with the Mapbox Optimization API v2.
type MapboxAdapter struct {
	client  *http.Client
	baseURL string
	token   string
	backoff time.Duration
	log     *zap.Logger
}

// NewMapboxAdapter creates a new MapboxAdapter.
// A nil client gets a dedicated one bounded by cfg.RequestTimeout.
func NewMapboxAdapter(cfg config.OptimizerConfig, client *http.Client) *MapboxAdapter {
	if client == nil {
		client = httpclient.NewClient(cfg.RequestTimeout, nil)
	}
	return &MapboxAdapter{
		client:  client,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		token:   cfg.Token,
		backoff: 200 * time.Millisecond,
		log:     logger.Named("optimization.mapbox"),
	}
}

func (m *MapboxAdapter) endpoint(id string) string {
	path := optimizePath
	if id != "" {
		path += "/" + url.PathEscape(id)
	}
	return m.baseURL + path + "?access_token=" + url.QueryEscape(m.token)
}

// Submit posts the problem. A body with routes is an immediate solution, a body with an id is a pending job.
func (m *MapboxAdapter) Submit(ctx context.Context, req *domain.Request) (domain.Submission, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, &domain.OptimizeError{Op: "submit", Kind: domain.ErrProviderRejected, Err: err}
	}

	status, body, err := m.doWithRetry(ctx, func() (*http.Request, error) {
		return m.newRequest(ctx, http.MethodPost, m.endpoint(""), bytes.NewReader(payload))
	})
	if err != nil {
		return nil, classify("submit", status, err)
	}

	doc := gjson.ParseBytes(body)
	switch {
	case !gjson.ValidBytes(body):
		return nil, &domain.OptimizeError{Op: "submit", Kind: domain.ErrProviderRejected, StatusCode: status, Err: errors.New("response is not valid JSON")}
	case doc.Get("routes").Exists():
		solution, err := decodeSolution(body)
		if err != nil {
			return nil, &domain.OptimizeError{Op: "submit", Kind: domain.ErrProviderRejected, StatusCode: status, Err: err}
		}
		m.log.Info("Optimization solved synchronously", zap.Int("routes", len(solution.Routes)))
		return domain.Immediate{Solution: solution}, nil
	case isFailed(doc):
		return nil, &domain.OptimizeError{Op: "submit", Kind: domain.ErrProviderRejected, StatusCode: status, Err: failureReason(doc)}
	case doc.Get("id").String() != "":
		id := doc.Get("id").String()
		m.log.Info("Optimization job submitted", zap.String("job_id", id), zap.String("status", doc.Get("status").String()))
		return domain.Pending{ID: id}, nil
	default:
		return nil, &domain.OptimizeError{Op: "submit", Kind: domain.ErrProviderRejected, StatusCode: status, Err: errors.New("response has neither routes nor job id")}
	}
}

// Poll fetches a job. 202 or a processing status means the job is still running.
func (m *MapboxAdapter) Poll(ctx context.Context, id string) (*domain.Solution, bool, error) {
	status, body, err := m.doWithRetry(ctx, func() (*http.Request, error) {
		return m.newRequest(ctx, http.MethodGet, m.endpoint(id), nil)
	})
	if err != nil {
		return nil, false, classify("poll", status, err)
	}

	if status == http.StatusAccepted {
		return nil, false, nil
	}

	doc := gjson.ParseBytes(body)
	if !gjson.ValidBytes(body) {
		return nil, false, &domain.OptimizeError{Op: "poll", Kind: domain.ErrProviderRejected, StatusCode: status, Err: errors.New("response is not valid JSON")}
	}
	if isFailed(doc) {
		return nil, false, &domain.OptimizeError{Op: "poll", Kind: domain.ErrProviderRejected, StatusCode: status, Err: failureReason(doc)}
	}
	if !doc.Get("routes").Exists() {
		// "processing", "pending" or any status reported before completion.
		return nil, false, nil
	}

	solution, err := decodeSolution(body)
	if err != nil {
		return nil, false, &domain.OptimizeError{Op: "poll", Kind: domain.ErrProviderRejected, StatusCode: status, Err: err}
	}
	return solution, true, nil
}

func decodeSolution(body []byte) (*domain.Solution, error) {
	var s domain.Solution
	if err := json.Unmarshal(body, &s); err != nil {
		return nil, fmt.Errorf("decode solution: %w", err)
	}
	return &s, nil
}

func isFailed(doc gjson.Result) bool {
	switch strings.ToLower(doc.Get("status").String()) {
	case "failed", "error":
		return true
	}
	return false
}

func failureReason(doc gjson.Result) error {
	for _, path := range []string{"message", "status_description", "error"} {
		if msg := doc.Get(path).String(); msg != "" {
			return errors.New(msg)
		}
	}
	return errors.New("job failed")
}

// classify maps a transport or status failure to an optimizer error kind.
func classify(op string, status int, err error) error {
	var he *httpStatusError
	switch {
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled):
		return &domain.OptimizeError{Op: op, Kind: domain.ErrOptimizeTimeout, Err: err}
	case errors.As(err, &he) && he.transient():
		return &domain.OptimizeError{Op: op, Kind: domain.ErrOptimizeNetwork, StatusCode: he.Code, Err: err}
	case errors.As(err, &he):
		return &domain.OptimizeError{Op: op, Kind: domain.ErrProviderRejected, StatusCode: he.Code, Err: err}
	default:
		return &domain.OptimizeError{Op: op, Kind: domain.ErrOptimizeNetwork, StatusCode: status, Err: err}
	}
}
