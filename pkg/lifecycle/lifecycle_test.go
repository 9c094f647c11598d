package lifecycle_test

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/JaimeStill/worldmap/pkg/lifecycle"
)

func TestStartupGatesReadiness(t *testing.T) {
	lc := lifecycle.New()

	var count atomic.Int32
	for _, name := range []string{"database", "storage"} {
		lc.OnStartup(name, func() error {
			count.Add(1)
			return nil
		})
	}

	if lc.Ready() {
		t.Error("should not be ready before WaitForStartup")
	}
	status := lc.Status(context.Background())
	if status.Ready || status.Checks["startup"] != "pending" {
		t.Errorf("status before startup: %+v", status)
	}

	if err := lc.WaitForStartup(); err != nil {
		t.Fatalf("startup failed: %v", err)
	}
	if got := count.Load(); got != 2 {
		t.Errorf("startup hooks: got %d, want 2", got)
	}
	if !lc.Ready() {
		t.Error("should be ready after WaitForStartup")
	}
}

func TestStartupFailure(t *testing.T) {
	lc := lifecycle.New()
	lc.OnStartup("database", func() error { return nil })
	lc.OnStartup("storage", func() error { return errors.New("container unreachable") })

	err := lc.WaitForStartup()
	if err == nil || !strings.Contains(err.Error(), "storage: container unreachable") {
		t.Fatalf("startup error: got %v", err)
	}
	if lc.Ready() {
		t.Error("a failed startup hook should keep the coordinator unready")
	}

	status := lc.Status(context.Background())
	if status.Ready {
		t.Error("status should not be ready")
	}
	if got := status.Checks["storage"]; got != "container unreachable" {
		t.Errorf("storage check: got %q", got)
	}
}

func TestStatusChecks(t *testing.T) {
	tests := []struct {
		name      string
		database  error
		storage   error
		wantReady bool
		want      map[string]string
	}{
		{
			name:      "all healthy",
			wantReady: true,
			want:      map[string]string{"database": "ok", "storage": "ok"},
		},
		{
			name:     "database down",
			database: errors.New("database not ready: connection refused"),
			want: map[string]string{
				"database": "database not ready: connection refused",
				"storage":  "ok",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lc := lifecycle.New()
			lc.AddCheck("database", func(context.Context) error { return tt.database })
			lc.AddCheck("storage", func(context.Context) error { return tt.storage })
			if err := lc.WaitForStartup(); err != nil {
				t.Fatalf("startup failed: %v", err)
			}

			status := lc.Status(context.Background())
			if status.Ready != tt.wantReady {
				t.Errorf("ready: got %v, want %v", status.Ready, tt.wantReady)
			}
			for name, want := range tt.want {
				if got := status.Checks[name]; got != want {
					t.Errorf("%s: got %q, want %q", name, got, want)
				}
			}
		})
	}
}

func TestShutdownHooksExecute(t *testing.T) {
	lc := lifecycle.New()

	var closed atomic.Bool
	lc.OnShutdown(func() {
		<-lc.Context().Done()
		closed.Store(true)
	})

	if err := lc.Shutdown(5 * time.Second); err != nil {
		t.Fatalf("shutdown failed: %v", err)
	}
	if !closed.Load() {
		t.Error("shutdown hook did not execute")
	}
	select {
	case <-lc.Context().Done():
	default:
		t.Error("context should be cancelled after shutdown")
	}
}

func TestShutdownTimeout(t *testing.T) {
	lc := lifecycle.New()

	lc.OnShutdown(func() {
		<-lc.Context().Done()
		time.Sleep(500 * time.Millisecond)
	})

	if err := lc.Shutdown(50 * time.Millisecond); err == nil {
		t.Error("expected timeout error, got nil")
	}
}
