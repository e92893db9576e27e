package service

import (
	"context"
	"fmt"
	"time"

	"fleet-route-api/internal/core/logger"
	"fleet-route-api/internal/features/optimization/domain"
	"fleet-route-api/internal/features/optimization/ports"

	"go.uber.org/zap"
)

const (
	depotLocation  = "depot"
	vehicleName    = "vehicle-1"
	locationPrefix = "package-"
	servicePrefix  = "delivery-"
	objective      = "min-schedule-completion-time"
)

// Settings tune request building and solution polling.
type Settings struct {
	ServiceDuration time.Duration
	PollInterval    time.Duration
	MaxWait         time.Duration
}

// OptimizationService turns parcels into a visiting order.
type OptimizationService struct {
	provider ports.Provider
	settings Settings
	log      *zap.Logger
	// wait is swapped in tests to observe polling without sleeping.
	wait func(ctx context.Context, d time.Duration) error
}

// NewOptimizationService creates a new OptimizationService.
func NewOptimizationService(provider ports.Provider, settings Settings) *OptimizationService {
	return &OptimizationService{
		provider: provider,
		settings: settings,
		log:      logger.Named("optimization.service"),
		wait:     sleep,
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Optimize orders the parcels for a single vehicle starting and ending at depot.
// Without a depot the first locatable parcel is used as start and end.
// Parcels without coordinates, and parcels the provider drops, are reported as unrouted.
func (s *OptimizationService) Optimize(ctx context.Context, parcels []domain.Parcel, depot *domain.Point) (*domain.Result, error) {
	req, submitted, unrouted := s.BuildRequest(parcels, depot)
	if len(submitted) == 0 {
		s.log.Info("No locatable parcel to optimize", zap.Int("unrouted", len(unrouted)))
		return &domain.Result{Stops: []domain.OptimizedStop{}, Unrouted: unrouted}, nil
	}

	started := time.Now()
	solution, err := s.solve(ctx, req)
	if err != nil {
		return nil, err
	}

	result := MapSolution(solution, submitted)
	result.Unrouted = unroutedInInputOrder(parcels, result.Stops)
	if len(result.Stops) == 0 {
		return result, &domain.OptimizeError{Op: "optimize", Kind: domain.ErrAllDropped}
	}

	s.log.Info("Optimization completed",
		zap.Int("routed", len(result.Stops)),
		zap.Int("unrouted", len(result.Unrouted)),
		zap.Duration("elapsed", time.Since(started)),
	)
	return result, nil
}

// BuildRequest returns the provider request, the references it covers in input order,
// and the references that could not be submitted. Duplicate references are kept once.
func (s *OptimizationService) BuildRequest(parcels []domain.Parcel, depot *domain.Point) (*domain.Request, []string, []string) {
	var (
		submitted []string
		unrouted  = []string{}
		seen      = make(map[string]struct{}, len(parcels))
	)

	req := &domain.Request{
		Version: 1,
		Options: &domain.Options{Objectives: []string{objective}},
	}

	for _, p := range parcels {
		if _, dup := seen[p.Reference]; dup {
			continue
		}
		seen[p.Reference] = struct{}{}

		if p.Reference == "" || p.Location == nil {
			unrouted = append(unrouted, p.Reference)
			continue
		}

		location := locationPrefix + p.Reference
		req.Locations = append(req.Locations, domain.Location{Name: location, Coordinates: p.Location.LonLat()})
		req.Services = append(req.Services, domain.Service{
			Name:     servicePrefix + p.Reference,
			Location: location,
			Duration: int(s.settings.ServiceDuration / time.Second),
		})
		submitted = append(submitted, p.Reference)
	}

	if len(submitted) == 0 {
		return req, nil, unrouted
	}

	start := locationPrefix + submitted[0]
	if depot != nil {
		req.Locations = append(req.Locations, domain.Location{Name: depotLocation, Coordinates: depot.LonLat()})
		start = depotLocation
	}
	req.Vehicles = []domain.Vehicle{{Name: vehicleName, StartLocation: start, EndLocation: start}}

	return req, submitted, unrouted
}

// solve submits the request and polls a pending job until it completes or MaxWait elapses.
func (s *OptimizationService) solve(ctx context.Context, req *domain.Request) (*domain.Solution, error) {
	sub, err := s.provider.Submit(ctx, req)
	if err != nil {
		return nil, err
	}

	var id string
	switch v := sub.(type) {
	case domain.Immediate:
		return v.Solution, nil
	case domain.Pending:
		id = v.ID
	default:
		return nil, fmt.Errorf("optimize: unexpected submission %T", sub)
	}

	pollCtx, cancel := context.WithTimeout(ctx, s.settings.MaxWait)
	defer cancel()

	for attempt := 1; ; attempt++ {
		if err := s.wait(pollCtx, s.settings.PollInterval); err != nil {
			return nil, s.pollTimeout(ctx, id, attempt-1, err)
		}

		solution, done, err := s.provider.Poll(pollCtx, id)
		if err != nil {
			if pollCtx.Err() != nil {
				return nil, s.pollTimeout(ctx, id, attempt, err)
			}
			return nil, err
		}
		if done {
			s.log.Debug("Optimization job completed", zap.String("job_id", id), zap.Int("polls", attempt))
			return solution, nil
		}
	}
}

// pollTimeout reports a job abandoned because MaxWait elapsed or ctx ended.
func (s *OptimizationService) pollTimeout(ctx context.Context, id string, polls int, cause error) error {
	if ctx.Err() != nil {
		return &domain.OptimizeError{Op: "poll", Kind: domain.ErrOptimizeTimeout, Err: ctx.Err()}
	}
	s.log.Warn("Optimization job did not complete in time", zap.String("job_id", id), zap.Int("polls", polls))
	return &domain.OptimizeError{
		Op:   "poll",
		Kind: domain.ErrOptimizeTimeout,
		Err:  fmt.Errorf("job %s still running after %s: %w", id, s.settings.MaxWait, cause),
	}
}

// unroutedInInputOrder lists each parcel reference missing from stops once, in input order.
func unroutedInInputOrder(parcels []domain.Parcel, stops []domain.OptimizedStop) []string {
	seen := make(map[string]struct{}, len(parcels))
	for _, stop := range stops {
		seen[stop.Reference] = struct{}{}
	}

	unrouted := []string{}
	for _, p := range parcels {
		if _, ok := seen[p.Reference]; ok {
			continue
		}
		seen[p.Reference] = struct{}{}
		unrouted = append(unrouted, p.Reference)
	}
	return unrouted
}

// MapSolution reads the service stops of every route in order and maps them back to references.
// Dropped services and submitted references absent from every route end up in Unrouted.
func MapSolution(solution *domain.Solution, submitted []string) *domain.Result {
	result := &domain.Result{Stops: []domain.OptimizedStop{}, Unrouted: []string{}}
	if solution == nil {
		result.Unrouted = append(result.Unrouted, submitted...)
		return result
	}

	byService := make(map[string]string, len(submitted))
	for _, ref := range submitted {
		byService[servicePrefix+ref] = ref
	}

	routed := make(map[string]struct{}, len(submitted))
	for _, route := range solution.Routes {
		for _, stop := range route.Stops {
			if stop.Type != domain.StopTypeService {
				continue
			}
			for _, name := range stop.Services {
				ref, ok := byService[name]
				if !ok {
					continue
				}
				if _, dup := routed[ref]; dup {
					continue
				}
				routed[ref] = struct{}{}
				result.Stops = append(result.Stops, domain.OptimizedStop{
					Reference:   ref,
					ServiceName: name,
					ETA:         stop.ETA,
					Order:       len(result.Stops) + 1,
				})
			}
		}
	}

	for _, ref := range submitted {
		if _, ok := routed[ref]; !ok {
			result.Unrouted = append(result.Unrouted, ref)
		}
	}
	return result
}
