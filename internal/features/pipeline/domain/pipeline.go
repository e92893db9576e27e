package domain

import (
	"errors"
	"time"

	carrier "fleet-route-api/internal/features/carrier/domain"
	optimization "fleet-route-api/internal/features/optimization/domain"
)

// Stage is a step of a pipeline run.
type Stage string

const (
	StageIdle             Stage = "idle"
	StageAuthenticating   Stage = "authenticating"
	StageFetchingManifest Stage = "fetching_manifest"
	StageEnrichingDetails Stage = "enriching_details"
	StageOptimizing       Stage = "optimizing"
	StageDone             Stage = "done"
	StageFailed           Stage = "failed"
)

// ErrPipelineTimeout is returned when the overall deadline cuts a terminal stage.
var ErrPipelineTimeout = errors.New("pipeline deadline exceeded")

// Request describes one pipeline run.
type Request struct {
	Credentials carrier.Credentials
	// DriverID defaults to the username.
	DriverID string
	// Date is YYYY-MM-DD; empty means today.
	Date  string
	Depot *optimization.Point
	// EnrichDetails overrides the configured default when set.
	EnrichDetails *bool
}

// StageRecord is one entry of the run log.
type StageRecord struct {
	Stage     Stage         `json:"stage"`
	StartedAt time.Time     `json:"started_at"`
	Elapsed   time.Duration `json:"elapsed_ns"`
	Error     string        `json:"error,omitempty"`
}

// AnnotatedPackage is a manifest entry with what the later stages learned about it.
type AnnotatedPackage struct {
	carrier.ManifestEntry
	Detail      *carrier.PackageDetail `json:"detail,omitempty"`
	DetailError string                 `json:"detail_error,omitempty"`
	// Position is the 1-based visiting order; nil when not routed.
	Position  *int   `json:"position,omitempty"`
	ETA       string `json:"eta,omitempty"`
	Optimized bool   `json:"optimized"`
}

// Result is the outcome of a run. On failure it holds whatever was gathered before.
type Result struct {
	RunID    string             `json:"run_id"`
	Driver   string             `json:"driver"`
	Date     string             `json:"date,omitempty"`
	Packages []AnnotatedPackage `json:"packages"`
	Unrouted []string           `json:"unrouted"`
	Stages   []StageRecord      `json:"stages"`
}

// Routed returns the number of packages with a position.
func (r *Result) Routed() int {
	n := 0
	for _, p := range r.Packages {
		if p.Optimized {
			n++
		}
	}
	return n
}

// Enriched returns the number of packages carrying a detail.
func (r *Result) Enriched() int {
	n := 0
	for _, p := range r.Packages {
		if p.Detail != nil {
			n++
		}
	}
	return n
}
