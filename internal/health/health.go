// Package health runs the checks behind the /healthz endpoint and folds
// their results into a single status.
package health

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"net/http"
	"path"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/systemlogs/folio/internal/logging"
)

// Status represents the health status of a component
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusUnhealthy Status = "unhealthy"
	StatusDegraded  Status = "degraded"
)

// Check is the result of a single health check.
type Check struct {
	Name     string                 `json:"name"`
	Status   Status                 `json:"status"`
	Message  string                 `json:"message,omitempty"`
	Duration time.Duration          `json:"duration"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
	Critical bool                   `json:"critical"`
}

// Checker defines the interface for health check functions
type Checker interface {
	Check(ctx context.Context) Check
	Name() string
	IsCritical() bool
}

// CheckFunc adapts a function to Checker.
type CheckFunc struct {
	name     string
	critical bool
	checkFn  func(ctx context.Context) Check
}

// NewCheckFunc creates a Checker from fn.
func NewCheckFunc(name string, critical bool, fn func(ctx context.Context) Check) *CheckFunc {
	return &CheckFunc{name: name, critical: critical, checkFn: fn}
}

func (c *CheckFunc) Check(ctx context.Context) Check { return c.checkFn(ctx) }
func (c *CheckFunc) Name() string                    { return c.name }
func (c *CheckFunc) IsCritical() bool                { return c.critical }

// Summary counts check results by status.
type Summary struct {
	Total     int `json:"total"`
	Healthy   int `json:"healthy"`
	Unhealthy int `json:"unhealthy"`
	Degraded  int `json:"degraded"`
	Critical  int `json:"critical"`
}

// Response is the body served by the health endpoint.
type Response struct {
	Status    Status           `json:"status"`
	Timestamp time.Time        `json:"timestamp"`
	Version   string           `json:"version,omitempty"`
	Uptime    string           `json:"uptime"`
	Languages []string         `json:"languages,omitempty"`
	Checks    map[string]Check `json:"checks"`
	Summary   Summary          `json:"summary"`
}

// Monitor runs registered checks on demand.
type Monitor struct {
	mu      sync.RWMutex
	checks  map[string]Checker
	timeout time.Duration
	started time.Time
	logger  logging.Logger
	now     func() time.Time

	// Version and Languages are copied into every response.
	Version   string
	Languages []string
}

// NewMonitor creates a monitor whose checks each get timeout to finish.
func NewMonitor(logger logging.Logger, timeout time.Duration) *Monitor {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Monitor{
		checks:  make(map[string]Checker),
		timeout: timeout,
		started: time.Now(),
		logger:  logger.WithComponent("health"),
		now:     time.Now,
	}
}

// Register adds checker, replacing any check with the same name.
func (m *Monitor) Register(checker Checker) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.checks[checker.Name()] = checker
}

// Names returns the registered check names in sorted order.
func (m *Monitor) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.checks))
	for name := range m.checks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Run executes every registered check concurrently and aggregates the
// results.
func (m *Monitor) Run(ctx context.Context) Response {
	m.mu.RLock()
	checkers := make([]Checker, 0, len(m.checks))
	for _, c := range m.checks {
		checkers = append(checkers, c)
	}
	m.mu.RUnlock()

	cctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	results := make(chan Check, len(checkers))
	for _, checker := range checkers {
		go func(checker Checker) {
			start := time.Now()
			result := checker.Check(cctx)
			result.Name = checker.Name()
			result.Critical = checker.IsCritical()
			result.Duration = time.Since(start)
			results <- result
		}(checker)
	}

	// A check that ignores its context is reported as timed out; its
	// goroutine finishes into the buffered channel on its own.
	checks := make(map[string]Check, len(checkers))
	for len(checks) < len(checkers) {
		select {
		case result := <-results:
			checks[result.Name] = result
		case <-cctx.Done():
			for _, checker := range checkers {
				if _, ok := checks[checker.Name()]; ok {
					continue
				}
				checks[checker.Name()] = Check{
					Name:     checker.Name(),
					Status:   StatusUnhealthy,
					Message:  "timed out",
					Duration: m.timeout,
					Critical: checker.IsCritical(),
				}
			}
		}
	}

	for _, result := range checks {
		if result.Status != StatusHealthy {
			m.logger.Warn(ctx, nil, "Health check failed",
				"name", result.Name,
				"status", string(result.Status),
				"message", result.Message)
		}
	}

	return Response{
		Status:    overallStatus(checks),
		Timestamp: m.now().UTC(),
		Version:   m.Version,
		Uptime:    time.Since(m.started).Round(time.Second).String(),
		Languages: m.Languages,
		Checks:    checks,
		Summary:   summarize(checks),
	}
}

func summarize(checks map[string]Check) Summary {
	summary := Summary{Total: len(checks)}
	for _, check := range checks {
		switch check.Status {
		case StatusHealthy:
			summary.Healthy++
		case StatusUnhealthy:
			summary.Unhealthy++
		case StatusDegraded:
			summary.Degraded++
		}
		if check.Critical {
			summary.Critical++
		}
	}
	return summary
}

// overallStatus is unhealthy when a critical check fails and degraded when
// any other check is not healthy.
func overallStatus(checks map[string]Check) Status {
	status := StatusHealthy
	for _, check := range checks {
		switch {
		case check.Critical && check.Status == StatusUnhealthy:
			return StatusUnhealthy
		case check.Status != StatusHealthy:
			status = StatusDegraded
		}
	}
	return status
}

// HTTPStatus maps a health status to the response code. Degraded still
// answers 200 so load balancers keep routing to the instance.
func HTTPStatus(status Status) int {
	if status == StatusUnhealthy {
		return http.StatusServiceUnavailable
	}
	return http.StatusOK
}

// Handler serves the result of Run as JSON.
func (m *Monitor) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := m.Run(r.Context())

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-store")
		w.WriteHeader(HTTPStatus(resp.Status))

		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(resp); err != nil {
			m.logger.Error(r.Context(), err, "Failed to encode health response")
		}
	}
}

// DirectoryCheck verifies that dir can be listed in fsys. label names the
// directory in the failure message.
func DirectoryCheck(name, label string, fsys fs.FS, dir string) Checker {
	return NewCheckFunc(name, true, func(ctx context.Context) Check {
		entries, err := fs.ReadDir(fsys, path.Clean(dir))
		if err != nil {
			return Check{
				Status:  StatusUnhealthy,
				Message: fmt.Sprintf("%s directory not readable", label),
			}
		}
		return Check{
			Status:   StatusHealthy,
			Metadata: map[string]interface{}{"entries": len(entries)},
		}
	})
}

// GoroutineCheck degrades when the goroutine count passes limit.
func GoroutineCheck(limit int) Checker {
	return NewCheckFunc("goroutines", false, func(ctx context.Context) Check {
		n := runtime.NumGoroutine()
		check := Check{
			Status:   StatusHealthy,
			Metadata: map[string]interface{}{"count": n},
		}
		if n > limit {
			check.Status = StatusDegraded
			check.Message = fmt.Sprintf("High goroutine count: %d", n)
		}
		return check
	})
}
