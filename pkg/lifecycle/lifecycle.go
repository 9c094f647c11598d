// Package lifecycle coordinates subsystem startup, readiness, and shutdown.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"
)

// Check reports whether one subsystem can serve traffic right now.
type Check func(ctx context.Context) error

// Status is the outcome of running every readiness check.
type Status struct {
	Ready  bool              `json:"ready"`
	Checks map[string]string `json:"checks"`
}

// Coordinator manages startup hooks, readiness checks, and shutdown hooks.
type Coordinator struct {
	ctx        context.Context
	cancel     context.CancelFunc
	startupWg  sync.WaitGroup
	shutdownWg sync.WaitGroup

	mu       sync.RWMutex
	started  bool
	failures map[string]error
	checks   map[string]Check
}

// New creates a Coordinator with a cancellable context.
func New() *Coordinator {
	ctx, cancel := context.WithCancel(context.Background())
	return &Coordinator{
		ctx:      ctx,
		cancel:   cancel,
		failures: make(map[string]error),
		checks:   make(map[string]Check),
	}
}

// Context returns the coordinator's context, cancelled on shutdown.
func (c *Coordinator) Context() context.Context {
	return c.ctx
}

// OnStartup runs fn concurrently for the named subsystem. A returned error
// keeps the coordinator from reporting ready.
func (c *Coordinator) OnStartup(name string, fn func() error) {
	c.startupWg.Go(func() {
		if err := fn(); err != nil {
			c.mu.Lock()
			c.failures[name] = err
			c.mu.Unlock()
		}
	})
}

// OnShutdown registers a function to run concurrently during shutdown.
// Shutdown hooks should block on <-c.Context().Done() before executing cleanup.
func (c *Coordinator) OnShutdown(fn func()) {
	c.shutdownWg.Go(fn)
}

// AddCheck registers a readiness check run by Status.
func (c *Coordinator) AddCheck(name string, check Check) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checks[name] = check
}

// Ready reports whether startup finished without a failed hook.
func (c *Coordinator) Ready() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.started && len(c.failures) == 0
}

// Status runs every readiness check and reports each by name. It is not
// ready before startup completes or when any startup hook or check failed.
func (c *Coordinator) Status(ctx context.Context) Status {
	c.mu.RLock()
	started := c.started
	failures := maps.Clone(c.failures)
	checks := maps.Clone(c.checks)
	c.mu.RUnlock()

	status := Status{Ready: started && len(failures) == 0, Checks: make(map[string]string)}
	if !started {
		status.Checks["startup"] = "pending"
	}
	for _, name := range slices.Sorted(maps.Keys(failures)) {
		status.Checks[name] = failures[name].Error()
	}

	for _, name := range slices.Sorted(maps.Keys(checks)) {
		if _, failed := failures[name]; failed {
			continue
		}
		if err := checks[name](ctx); err != nil {
			status.Ready = false
			status.Checks[name] = err.Error()
			continue
		}
		status.Checks[name] = "ok"
	}
	return status
}

// WaitForStartup blocks until all startup hooks have completed and marks
// startup done. It returns the joined startup failures, if any.
func (c *Coordinator) WaitForStartup() error {
	c.startupWg.Wait()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.started = true

	errs := make([]error, 0, len(c.failures))
	for _, name := range slices.Sorted(maps.Keys(c.failures)) {
		errs = append(errs, fmt.Errorf("%s: %w", name, c.failures[name]))
	}
	return errors.Join(errs...)
}

// Shutdown cancels the context and waits for shutdown hooks to complete
// within the given timeout.
func (c *Coordinator) Shutdown(timeout time.Duration) error {
	c.cancel()

	done := make(chan struct{})
	go func() {
		c.shutdownWg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("shutdown timeout after %v", timeout)
	}
}
