package tool

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// HealthState indicates the current health of a registered tool.
type HealthState string

const (
	HealthUnknown   HealthState = "unknown"
	HealthHealthy   HealthState = "healthy"
	HealthUnhealthy HealthState = "unhealthy"
)

const (
	defaultHealthTimeout       = 5 * time.Second
	defaultUnhealthyThreshold  = 3
	defaultSchedulerResolution = time.Second
)

// HealthReport is a normalized health snapshot for a single tool.
type HealthReport struct {
	ToolName     string      `json:"tool_name"`
	State        HealthState `json:"state"`
	CheckedAt    time.Time   `json:"checked_at"`
	LatencyMS    int64       `json:"latency_ms,omitempty"`
	FailureCount int         `json:"failure_count,omitempty"`
	ErrorMessage string      `json:"error_message,omitempty"`
}

// Prober checks the health status of a registration.
type Prober interface {
	Probe(ctx context.Context, reg ToolRegistration) (HealthReport, error)
}

// HTTPProber probes HTTP-backed tools with a GET against the configured
// health endpoint (falling back to the transport endpoint).
type HTTPProber struct {
	Client *http.Client
}

// Probe issues one health check.
func (p HTTPProber) Probe(ctx context.Context, reg ToolRegistration) (HealthReport, error) {
	endpoint := reg.Manifest.Transport.Endpoint
	timeout := defaultHealthTimeout
	if reg.Manifest.Health != nil {
		if strings.TrimSpace(reg.Manifest.Health.Endpoint) != "" {
			endpoint = reg.Manifest.Health.Endpoint
		}
		if reg.Manifest.Health.TimeoutMS > 0 {
			timeout = time.Duration(reg.Manifest.Health.TimeoutMS) * time.Millisecond
		}
	}
	if strings.TrimSpace(endpoint) == "" {
		return HealthReport{}, errors.New("tool: health probe endpoint is empty")
	}

	client := p.Client
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}

	probeCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	report := HealthReport{
		ToolName:  reg.Name,
		CheckedAt: time.Now().UTC(),
	}

	req, err := http.NewRequestWithContext(probeCtx, http.MethodGet, endpoint, nil)
	if err != nil {
		report.State = HealthUnhealthy
		report.ErrorMessage = err.Error()
		return report, nil
	}

	start := time.Now()
	resp, err := client.Do(req)
	report.LatencyMS = elapsedMS(start)
	if err != nil {
		report.State = HealthUnhealthy
		report.ErrorMessage = err.Error()
		return report, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		report.State = HealthUnhealthy
		report.ErrorMessage = fmt.Sprintf("received HTTP %d", resp.StatusCode)
		return report, nil
	}

	report.State = HealthHealthy
	return report, nil
}

// Health schedules use standard five-field cron expressions, UTC only.
var healthCronParser = cron.NewParser(
	cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow,
)

// ParseHealthSchedule validates and parses a health-check cron expression.
func ParseHealthSchedule(expr string) (cron.Schedule, error) {
	clean := strings.TrimSpace(expr)
	if clean == "" {
		return nil, errors.New("tool: health schedule is required")
	}
	upper := strings.ToUpper(clean)
	if strings.Contains(upper, "CRON_TZ=") || strings.Contains(upper, "TZ=") {
		return nil, errors.New("tool: health schedule must be UTC-only (timezone prefixes are not allowed)")
	}
	schedule, err := healthCronParser.Parse(clean)
	if err != nil {
		return nil, fmt.Errorf("tool: invalid health schedule: %w", err)
	}
	return schedule, nil
}

// HealthSchedulerConfig controls background health scheduling behavior.
type HealthSchedulerConfig struct {
	Store      Store
	Prober     Prober
	Resolution time.Duration
	Now        func() time.Time
}

// HealthScheduler re-probes HTTP registrations on their cron schedules and
// flips registry status after the unhealthy threshold is crossed.
type HealthScheduler struct {
	store      Store
	prober     Prober
	resolution time.Duration
	now        func() time.Time

	mu      sync.Mutex
	nextRun map[string]time.Time
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewHealthScheduler creates a health scheduler.
func NewHealthScheduler(cfg HealthSchedulerConfig) (*HealthScheduler, error) {
	if cfg.Store == nil {
		return nil, errors.New("tool: health scheduler store is nil")
	}
	if cfg.Prober == nil {
		cfg.Prober = HTTPProber{}
	}
	if cfg.Resolution <= 0 {
		cfg.Resolution = defaultSchedulerResolution
	}
	if cfg.Now == nil {
		cfg.Now = func() time.Time { return time.Now().UTC() }
	}
	return &HealthScheduler{
		store:      cfg.Store,
		prober:     cfg.Prober,
		resolution: cfg.Resolution,
		now:        cfg.Now,
		nextRun:    make(map[string]time.Time),
	}, nil
}

// Start begins scheduler execution. Calling Start on a running scheduler is
// a no-op.
func (s *HealthScheduler) Start(ctx context.Context) error {
	if s == nil {
		return errors.New("tool: health scheduler is nil")
	}

	s.mu.Lock()
	if s.cancel != nil {
		s.mu.Unlock()
		return nil
	}
	loopCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	s.cancel = cancel
	s.done = done
	s.mu.Unlock()

	go func() {
		defer close(done)
		ticker := time.NewTicker(s.resolution)
		defer ticker.Stop()
		for {
			select {
			case <-loopCtx.Done():
				return
			case <-ticker.C:
				s.Tick(loopCtx)
			}
		}
	}()
	return nil
}

// Stop halts scheduler execution and waits for the loop to exit.
func (s *HealthScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	cancel := s.cancel
	done := s.done
	s.cancel = nil
	s.done = nil
	s.mu.Unlock()

	if cancel == nil {
		return nil
	}
	cancel()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Tick evaluates all due registrations once. Exposed for deterministic tests.
func (s *HealthScheduler) Tick(ctx context.Context) {
	regs, err := s.store.List(ctx)
	if err != nil {
		return
	}

	now := s.now()
	for _, reg := range regs {
		if !s.due(reg, now) {
			continue
		}
		s.check(ctx, reg)
	}
}

func (s *HealthScheduler) due(reg ToolRegistration, now time.Time) bool {
	if reg.Origin != OriginHTTP || !reg.Enabled {
		return false
	}
	if reg.Manifest.Health == nil || strings.TrimSpace(reg.Manifest.Health.Schedule) == "" {
		return false
	}
	schedule, err := ParseHealthSchedule(reg.Manifest.Health.Schedule)
	if err != nil {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	next, ok := s.nextRun[reg.Name]
	if !ok {
		s.nextRun[reg.Name] = schedule.Next(now)
		return false
	}
	if now.Before(next) {
		return false
	}
	s.nextRun[reg.Name] = schedule.Next(now)
	return true
}

func (s *HealthScheduler) check(ctx context.Context, reg ToolRegistration) {
	previous := reg.Status
	report, err := s.prober.Probe(ctx, reg)
	if err != nil {
		report = HealthReport{
			ToolName:     reg.Name,
			State:        HealthUnhealthy,
			CheckedAt:    s.now(),
			ErrorMessage: err.Error(),
		}
	}

	threshold := defaultUnhealthyThreshold
	if reg.Manifest.Health != nil && reg.Manifest.Health.UnhealthyThreshold > 0 {
		threshold = reg.Manifest.Health.UnhealthyThreshold
	}

	switch report.State {
	case HealthHealthy:
		reg.HealthFailures = 0
		reg.Status = StatusReady
	default:
		reg.HealthFailures++
		if reg.HealthFailures >= threshold {
			reg.Status = StatusUnhealthy
		}
	}
	reg.LastHealthCheck = report.CheckedAt
	report.FailureCount = reg.HealthFailures

	_ = s.store.Upsert(ctx, reg)

	emitHealthObservation(ToolHealthObservation{
		ToolName:       reg.Name,
		State:          report.State,
		Status:         reg.Status,
		FailureCount:   reg.HealthFailures,
		DurationMS:     report.LatencyMS,
		PreviousStatus: previous,
	})
}
