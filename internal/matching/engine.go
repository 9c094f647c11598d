// Package matching finds registry persons an application may duplicate:
// exact phone and national ID hits, prior issuances, and ranked fuzzy
// name candidates.
package matching

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/JaimeStill/worldmap/internal/applications"
)

// ErrInvalidOptions is returned when Options fail validation.
var ErrInvalidOptions = errors.New("invalid matching options")

// Options configures the engine.
type Options struct {
	// Threshold is the minimum similarity score (0-100) a fuzzy candidate needs.
	Threshold int
	// FallbackPool caps the same-country pool used when no person shares the
	// applicant's country and last name.
	FallbackPool int
	// MaxCandidates caps the fuzzy candidates kept per application.
	MaxCandidates int
	// Workers bounds concurrent row matching. Zero uses the CPU count.
	Workers int
}

// DefaultOptions returns the operating defaults.
func DefaultOptions() Options {
	return Options{
		Threshold:     88,
		FallbackPool:  800,
		MaxCandidates: 3,
	}
}

// Validate checks option ranges.
func (o Options) Validate() error {
	if o.Threshold < 0 || o.Threshold > 100 {
		return fmt.Errorf("%w: threshold %d outside 0-100", ErrInvalidOptions, o.Threshold)
	}
	if o.FallbackPool < 0 {
		return fmt.Errorf("%w: fallback pool %d", ErrInvalidOptions, o.FallbackPool)
	}
	if o.MaxCandidates < 1 {
		return fmt.Errorf("%w: max candidates %d", ErrInvalidOptions, o.MaxCandidates)
	}
	if o.Workers < 0 {
		return fmt.Errorf("%w: workers %d", ErrInvalidOptions, o.Workers)
	}
	return nil
}

// Engine matches batches of applications against a registry snapshot.
type Engine struct {
	opts Options
}

// New returns an Engine after validating opts.
func New(opts Options) (*Engine, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &Engine{opts: opts}, nil
}

// Options returns the engine's configuration.
func (e *Engine) Options() Options {
	return e.opts
}

// Match returns one Result per application, in input order. Rows are
// independent so they are matched concurrently against a shared Index.
func (e *Engine) Match(ctx context.Context, apps []applications.Application, snap Snapshot) ([]Result, error) {
	ix := NewIndex(snap, e.opts.FallbackPool)
	results := make([]Result, len(apps))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers(len(apps)))

	for i := range apps {
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			results[i] = ix.Match(apps[i], e.opts.Threshold, e.opts.MaxCandidates)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("match applications: %w", err)
	}
	return results, nil
}

func (e *Engine) workers(rows int) int {
	n := e.opts.Workers
	if n == 0 {
		n = runtime.NumCPU()
	}
	return max(min(n, rows), 1)
}
