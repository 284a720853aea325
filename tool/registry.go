package tool

import (
	"context"
	"slices"
	"time"
)

// Status indicates registry-level availability of a tool.
type Status string

const (
	StatusReady      Status = "ready"
	StatusUnhealthy  Status = "unhealthy"
	StatusDisabled   Status = "disabled"
	StatusUnverified Status = "unverified"
)

// ToolOrigin indicates how a tool is integrated.
type ToolOrigin string

const (
	OriginNative ToolOrigin = "native"
	OriginHTTP   ToolOrigin = "http"
)

// ToolRegistration is the persisted record for a tool instance in the registry.
type ToolRegistration struct {
	Name            string            `json:"name"`
	Manifest        Manifest          `json:"manifest"`
	Origin          ToolOrigin        `json:"origin,omitempty"`
	Config          map[string]string `json:"config,omitempty"`
	Status          Status            `json:"status"`
	RegisteredAt    time.Time         `json:"registered_at,omitempty"`
	LastHealthCheck time.Time         `json:"last_health_check,omitempty"`
	HealthFailures  int               `json:"health_failures,omitempty"`
	Enabled         bool              `json:"enabled,omitempty"`
}

// ActionNames returns registered action names in deterministic order.
func (r ToolRegistration) ActionNames() []string {
	names := make([]string, 0, len(r.Manifest.Actions))
	for name := range r.Manifest.Actions {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Store abstracts persistence for the registry (JSON file or SQLite).
type Store interface {
	List(ctx context.Context) ([]ToolRegistration, error)
	Get(ctx context.Context, name string) (ToolRegistration, bool, error)
	Upsert(ctx context.Context, reg ToolRegistration) error
	Delete(ctx context.Context, name string) error
}
