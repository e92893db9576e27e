package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"fleet-route-api/internal/core/logger"
	carrier "fleet-route-api/internal/features/carrier/domain"
	carrierports "fleet-route-api/internal/features/carrier/ports"
	optimization "fleet-route-api/internal/features/optimization/domain"
	"fleet-route-api/internal/features/pipeline/domain"
	"fleet-route-api/internal/features/pipeline/ports"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Settings tune a pipeline run.
type Settings struct {
	// Timeout is the overall deadline of a run; zero disables it.
	Timeout time.Duration
	// EnrichDetails is the default when a request does not choose.
	EnrichDetails bool
}

// PipelineService chains authentication, manifest retrieval, detail enrichment and optimization.
type PipelineService struct {
	sessions  ports.Sessions
	manifests ports.Manifests
	details   ports.Details
	optimizer ports.RouteOptimizer
	settings  Settings

	now func() time.Time
	log *zap.Logger
}

// NewPipelineService creates a new PipelineService.
func NewPipelineService(sessions ports.Sessions, manifests ports.Manifests, details ports.Details, optimizer ports.RouteOptimizer, settings Settings) *PipelineService {
	return &PipelineService{
		sessions:  sessions,
		manifests: manifests,
		details:   details,
		optimizer: optimizer,
		settings:  settings,
		now:       time.Now,
		log:       logger.Named("pipeline"),
	}
}

// run tracks the stages of one invocation.
type run struct {
	result *domain.Result
	now    func() time.Time
	log    *zap.Logger
}

func (r *run) enter(stage domain.Stage) {
	r.result.Stages = append(r.result.Stages, domain.StageRecord{Stage: stage, StartedAt: r.now()})
	r.log.Info("Pipeline stage entered", zap.String("stage", string(stage)))
}

func (r *run) leave(err error) {
	rec := &r.result.Stages[len(r.result.Stages)-1]
	rec.Elapsed = r.now().Sub(rec.StartedAt)
	if err != nil {
		rec.Error = err.Error()
	}
}

// fail closes the current stage and returns the partial result with a StageError.
// A cause cut by the run deadline also matches domain.ErrPipelineTimeout.
func (r *run) fail(ctx context.Context, err error) (*domain.Result, error) {
	r.leave(err)
	stage := r.result.Stages[len(r.result.Stages)-1].Stage

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		err = fmt.Errorf("%w: %w", domain.ErrPipelineTimeout, err)
	}

	r.result.Stages = append(r.result.Stages, domain.StageRecord{Stage: domain.StageFailed, StartedAt: r.now(), Error: err.Error()})
	r.log.Warn("Pipeline failed", zap.String("stage", string(stage)), zap.Error(err))
	return r.result, &domain.StageError{Stage: stage, Err: err}
}

func (r *run) done() *domain.Result {
	r.result.Stages = append(r.result.Stages, domain.StageRecord{Stage: domain.StageDone, StartedAt: r.now()})
	r.log.Info("Pipeline completed",
		zap.Int("packages", len(r.result.Packages)),
		zap.Int("routed", r.result.Routed()),
		zap.Int("enriched", r.result.Enriched()),
	)
	return r.result
}

// Run executes the pipeline for one driver and day.
// On failure the returned result holds what earlier stages produced.
func (s *PipelineService) Run(ctx context.Context, req domain.Request) (*domain.Result, error) {
	creds := req.Credentials
	if err := creds.Validate(); err != nil {
		return nil, &domain.StageError{Stage: domain.StageIdle, Err: err}
	}

	driver := strings.TrimSpace(req.DriverID)
	if driver == "" {
		driver = creds.Username
	}

	if s.settings.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.settings.Timeout)
		defer cancel()
	}

	result := &domain.Result{
		RunID:    uuid.NewString(),
		Driver:   carrier.CompositeID(creds.CompanyCode, driver),
		Date:     req.Date,
		Packages: []domain.AnnotatedPackage{},
		Unrouted: []string{},
		Stages:   []domain.StageRecord{{Stage: domain.StageIdle, StartedAt: s.now()}},
	}
	r := &run{
		result: result,
		now:    s.now,
		log:    s.log.With(zap.String("run_id", result.RunID), zap.String("driver", result.Driver)),
	}

	r.enter(domain.StageAuthenticating)
	token, err := s.sessions.Token(ctx, creds)
	if err != nil {
		return r.fail(ctx, err)
	}
	r.leave(nil)

	query := carrierports.ManifestQuery{DriverID: driver, CompanyCode: creds.CompanyCode, Date: req.Date}

	r.enter(domain.StageFetchingManifest)
	entries, err := s.manifests.GetManifest(ctx, query, token)
	if errors.Is(err, carrier.ErrUnauthorized) {
		r.leave(err)
		r.log.Warn("Carrier session rejected, re-authenticating once")

		r.enter(domain.StageAuthenticating)
		token, err = s.sessions.Refresh(ctx, creds)
		if err != nil {
			return r.fail(ctx, err)
		}
		r.leave(nil)

		r.enter(domain.StageFetchingManifest)
		entries, err = s.manifests.GetManifest(ctx, query, token)
	}
	if err != nil {
		return r.fail(ctx, err)
	}
	r.leave(nil)

	if len(entries) == 0 {
		r.log.Info("Empty manifest, nothing to optimize")
		return r.done(), nil
	}

	enrich := s.settings.EnrichDetails
	if req.EnrichDetails != nil {
		enrich = *req.EnrichDetails
	}

	var details map[carrier.PackageReference]carrier.DetailResult
	if enrich {
		r.enter(domain.StageEnrichingDetails)
		details = s.details.FetchDetails(ctx, carrier.References(entries), token)
		r.leave(nil)
	}

	// Until optimization succeeds every package is reported unrouted.
	result.Packages, result.Unrouted = assemble(entries, details, nil)

	r.enter(domain.StageOptimizing)
	if err := ctx.Err(); err != nil {
		return r.fail(ctx, err)
	}
	optimized, err := s.optimizer.Optimize(ctx, parcels(entries), req.Depot)
	if err != nil {
		return r.fail(ctx, err)
	}
	r.leave(nil)

	result.Packages, result.Unrouted = assemble(entries, details, optimized)
	return r.done(), nil
}

// parcels converts manifest entries to optimizer input. Unusable coordinates are left out.
func parcels(entries []carrier.ManifestEntry) []optimization.Parcel {
	out := make([]optimization.Parcel, 0, len(entries))
	for _, e := range entries {
		p := optimization.Parcel{Reference: string(e.Reference)}
		if e.Coordinates != nil && e.Coordinates.Valid() {
			p.Location = &optimization.Point{Latitude: e.Coordinates.Latitude, Longitude: e.Coordinates.Longitude}
		}
		out = append(out, p)
	}
	return out
}

// assemble annotates every entry once: routed ones in visiting order, then the rest in manifest order.
func assemble(entries []carrier.ManifestEntry, details map[carrier.PackageReference]carrier.DetailResult, optimized *optimization.Result) ([]domain.AnnotatedPackage, []string) {
	byRef := make(map[carrier.PackageReference]int, len(entries))
	for i, e := range entries {
		byRef[e.Reference] = i
	}

	annotate := func(e carrier.ManifestEntry) domain.AnnotatedPackage {
		p := domain.AnnotatedPackage{ManifestEntry: e}
		if res, ok := details[e.Reference]; ok {
			if res.OK() {
				p.Detail = res.Detail
			} else {
				p.DetailError = res.Failure
			}
		}
		return p
	}

	packages := make([]domain.AnnotatedPackage, 0, len(entries))
	routed := make(map[carrier.PackageReference]struct{})

	if optimized != nil {
		for _, stop := range optimized.Stops {
			ref := carrier.PackageReference(stop.Reference)
			i, ok := byRef[ref]
			if !ok {
				continue
			}
			if _, dup := routed[ref]; dup {
				continue
			}
			routed[ref] = struct{}{}

			p := annotate(entries[i])
			position := len(packages) + 1
			p.Position = &position
			p.ETA = stop.ETA
			p.Optimized = true
			packages = append(packages, p)
		}
	}

	unrouted := []string{}
	for _, e := range entries {
		if _, ok := routed[e.Reference]; ok {
			continue
		}
		packages = append(packages, annotate(e))
		unrouted = append(unrouted, string(e.Reference))
	}
	return packages, unrouted
}
