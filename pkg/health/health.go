package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/duskhold/boris/pkg/log"
	"github.com/duskhold/boris/pkg/metrics"
	"github.com/rs/zerolog"
)

// ComponentHealth is the last-reported health of a single named
// component.
type ComponentHealth struct {
	Healthy bool
	Message string
	Updated time.Time
}

// Checker aggregates health across named components — one per domain
// (rooms, chars, users). RegisterComponent/UpdateComponent record state
// from whichever goroutine owns that component; GetHealth/GetReadiness
// aggregate it for the HTTP handlers, so the HTTP goroutine never
// reaches into an entity registry directly.
type Checker struct {
	mu         sync.RWMutex
	components map[string]ComponentHealth
	critical   []string
	startTime  time.Time
}

// NewChecker creates a Checker. critical names the components that must
// all report healthy for GetReadiness to report ready; components
// outside that list are tracked but don't gate readiness.
func NewChecker(critical ...string) *Checker {
	return &Checker{
		components: make(map[string]ComponentHealth),
		critical:   critical,
		startTime:  time.Now(),
	}
}

// RegisterComponent records a component's health.
func (c *Checker) RegisterComponent(name string, healthy bool, message string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.components[name] = ComponentHealth{Healthy: healthy, Message: message, Updated: time.Now()}
}

// UpdateComponent updates a component's health; identical to
// RegisterComponent, kept distinct so call sites read as reporting a
// transition rather than a first registration.
func (c *Checker) UpdateComponent(name string, healthy bool, message string) {
	c.RegisterComponent(name, healthy, message)
}

// Status is the JSON shape returned by /readyz.
type Status struct {
	Status     string            `json:"status"`
	Components map[string]string `json:"components,omitempty"`
	Message    string            `json:"message,omitempty"`
	Uptime     string            `json:"uptime"`
}

// GetHealth reports "unhealthy" if any registered component is
// unhealthy, "healthy" otherwise (including when nothing has
// registered yet).
func (c *Checker) GetHealth() Status {
	c.mu.RLock()
	defer c.mu.RUnlock()

	status := "healthy"
	components := make(map[string]string, len(c.components))
	for name, comp := range c.components {
		if comp.Healthy {
			components[name] = "healthy"
		} else {
			status = "unhealthy"
			components[name] = "unhealthy: " + comp.Message
		}
	}
	return Status{Status: status, Components: components, Uptime: time.Since(c.startTime).String()}
}

// GetReadiness reports "ready" only once every critical component has
// registered healthy; a critical component that has never registered
// counts as not ready.
func (c *Checker) GetReadiness() Status {
	c.mu.RLock()
	defer c.mu.RUnlock()

	status := "ready"
	message := ""
	components := make(map[string]string, len(c.critical))
	for _, name := range c.critical {
		comp, ok := c.components[name]
		switch {
		case !ok:
			status = "not_ready"
			message = "waiting for " + name + " initialization"
			components[name] = "not registered"
		case !comp.Healthy:
			status = "not_ready"
			message = "waiting for " + name
			components[name] = "not ready: " + comp.Message
		default:
			components[name] = "ready"
		}
	}
	return Status{Status: status, Components: components, Message: message, Uptime: time.Since(c.startTime).String()}
}

// Server is the admin HTTP server exposing /healthz, /readyz, and
// /metrics on a single mux.
type Server struct {
	httpServer *http.Server
	logger     zerolog.Logger
}

// NewServer builds a Server listening on addr. /readyz reports
// checker.GetReadiness() on every request; /healthz always reports ok,
// since it answers only "is the process up".
func NewServer(addr string, checker *Checker) *Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ready := checker.GetReadiness()
		w.Header().Set("Content-Type", "application/json")
		if ready.Status != "ready" {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		_ = json.NewEncoder(w).Encode(ready)
	})
	mux.Handle("/metrics", metrics.Handler())

	return &Server{
		httpServer: &http.Server{Addr: addr, Handler: mux},
		logger:     log.WithComponent("health"),
	}
}

// ListenAndServe blocks serving the admin endpoints until the server is
// closed. Unlike the stdlib http.Server, a clean Close surfaces as a nil
// error rather than http.ErrServerClosed.
func (s *Server) ListenAndServe() error {
	s.logger.Info().Str("addr", s.httpServer.Addr).Msg("admin server listening")
	err := s.httpServer.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Close shuts the server down, giving in-flight requests up to 5 seconds
// to complete.
func (s *Server) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.httpServer.Shutdown(ctx)
}
