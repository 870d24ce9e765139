package domain

import (
	"context"

	"github.com/google/uuid"
)

// ForecastRepository defines the repository interface for forecast
// persistence. Forecasts are versioned; a version is immutable once written.
type ForecastRepository interface {
	// SaveForecast persists a forecast version with its templates and
	// returns the version ID
	SaveForecast(ctx context.Context, forecast ForecastInput, label string) (uuid.UUID, error)

	// GetForecast retrieves a forecast version
	GetForecast(ctx context.Context, id uuid.UUID) (ForecastInput, error)

	// ListForecasts returns all forecast version IDs, newest first
	ListForecasts(ctx context.Context) ([]uuid.UUID, error)
}

// PlanRepository defines the interface for plan persistence. A plan version
// stores the rosters, the assignment rows and the three hashes; once a plan
// is locked its assignments feed the freeze overlay of subsequent solves.
type PlanRepository interface {
	// SavePlan persists a plan version for a forecast and returns the
	// version ID
	SavePlan(ctx context.Context, forecastID uuid.UUID, result PlanResult) (uuid.UUID, error)

	// GetPlan retrieves a plan version
	GetPlan(ctx context.Context, id uuid.UUID) (PlanResult, error)

	// GetLockedAssignments returns the locked plan's assignments for a
	// forecast, keyed by instance ID, or nil when no plan is locked
	GetLockedAssignments(ctx context.Context, forecastID uuid.UUID) (map[string]PriorAssignment, error)

	// LockPlan marks a plan version as the accepted plan of its forecast
	LockPlan(ctx context.Context, id uuid.UUID) error
}

// AuditLogRepository defines the interface for audit persistence. Every
// solve writes its full audit report; freeze overrides append override
// events.
type AuditLogRepository interface {
	// SaveAuditReport persists the audit report of a plan version
	SaveAuditReport(ctx context.Context, planID uuid.UUID, report map[string]any) error

	// SaveOverrideEvent appends a freeze override event
	SaveOverrideEvent(ctx context.Context, event FreezeOverrideEvent) error

	// ListOverrideEvents returns all override events, oldest first
	ListOverrideEvents(ctx context.Context) ([]FreezeOverrideEvent, error)
}
