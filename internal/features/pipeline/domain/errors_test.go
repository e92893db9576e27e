package domain

import (
	"context"
	"errors"
	"fmt"
	"testing"

	carrier "fleet-route-api/internal/features/carrier/domain"
	optimization "fleet-route-api/internal/features/optimization/domain"

	"github.com/stretchr/testify/assert"
)

func TestStageError(t *testing.T) {
	cause := &optimization.OptimizeError{Op: "optimize", Kind: optimization.ErrAllDropped}
	err := error(&StageError{Stage: StageOptimizing, Err: cause})

	assert.Equal(t, "optimizing: optimize: optimizer dropped every parcel", err.Error())
	assert.ErrorIs(t, err, optimization.ErrAllDropped)

	var se *StageError
	assert.True(t, errors.As(fmt.Errorf("run: %w", err), &se))
	assert.Equal(t, StageOptimizing, se.Stage)
}

func TestStageError_Timeout(t *testing.T) {
	err := &StageError{Stage: StageFetchingManifest, Err: errors.Join(ErrPipelineTimeout, context.DeadlineExceeded)}

	assert.ErrorIs(t, err, ErrPipelineTimeout)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestResult_Counters(t *testing.T) {
	pos := 1
	r := &Result{Packages: []AnnotatedPackage{
		{ManifestEntry: carrier.ManifestEntry{Reference: "A"}, Position: &pos, Optimized: true, Detail: &carrier.PackageDetail{}},
		{ManifestEntry: carrier.ManifestEntry{Reference: "B"}, Detail: &carrier.PackageDetail{}},
		{ManifestEntry: carrier.ManifestEntry{Reference: "C"}, DetailError: "HTTP 404"},
	}}

	assert.Equal(t, 1, r.Routed())
	assert.Equal(t, 2, r.Enriched())
}
