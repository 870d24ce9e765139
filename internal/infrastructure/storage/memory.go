package storage

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/solvereign/solvereign/internal/domain"
)

// MemoryStore is an in-memory implementation of the persistence contract,
// suitable for testing and development.
type MemoryStore struct {
	mu sync.RWMutex

	forecasts     map[uuid.UUID]forecastRecord
	plans         map[uuid.UUID]planRecord
	auditReports  map[uuid.UUID]map[string]any
	overrides     []domain.FreezeOverrideEvent
	forecastOrder []uuid.UUID
}

type forecastRecord struct {
	forecast domain.ForecastInput
	label    string
}

type planRecord struct {
	forecastID uuid.UUID
	result     domain.PlanResult
	locked     bool
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		forecasts:    make(map[uuid.UUID]forecastRecord),
		plans:        make(map[uuid.UUID]planRecord),
		auditReports: make(map[uuid.UUID]map[string]any),
	}
}

// SaveForecast persists a forecast version.
func (s *MemoryStore) SaveForecast(_ context.Context, forecast domain.ForecastInput, label string) (uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.New()
	s.forecasts[id] = forecastRecord{forecast: forecast, label: label}
	s.forecastOrder = append(s.forecastOrder, id)
	return id, nil
}

// GetForecast retrieves a forecast version.
func (s *MemoryStore) GetForecast(_ context.Context, id uuid.UUID) (domain.ForecastInput, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.forecasts[id]
	if !ok {
		return domain.ForecastInput{}, domain.NewDomainError(domain.ErrCodeNotFound, "forecast "+id.String(), nil)
	}
	return rec.forecast, nil
}

// ListForecasts returns all forecast version IDs, newest first.
func (s *MemoryStore) ListForecasts(_ context.Context) ([]uuid.UUID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]uuid.UUID, 0, len(s.forecastOrder))
	for i := len(s.forecastOrder) - 1; i >= 0; i-- {
		out = append(out, s.forecastOrder[i])
	}
	return out, nil
}

// SavePlan persists a plan version.
func (s *MemoryStore) SavePlan(_ context.Context, forecastID uuid.UUID, result domain.PlanResult) (uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.New()
	s.plans[id] = planRecord{forecastID: forecastID, result: result}
	return id, nil
}

// GetPlan retrieves a plan version.
func (s *MemoryStore) GetPlan(_ context.Context, id uuid.UUID) (domain.PlanResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.plans[id]
	if !ok {
		return domain.PlanResult{}, domain.NewDomainError(domain.ErrCodeNotFound, "plan "+id.String(), nil)
	}
	return rec.result, nil
}

// GetLockedAssignments returns the locked plan's assignments for a
// forecast, keyed by instance ID.
func (s *MemoryStore) GetLockedAssignments(_ context.Context, forecastID uuid.UUID) (map[string]domain.PriorAssignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, rec := range s.plans {
		if rec.forecastID != forecastID || !rec.locked {
			continue
		}
		out := make(map[string]domain.PriorAssignment, len(rec.result.Assignments))
		for _, a := range rec.result.Assignments {
			out[a.InstanceID] = domain.PriorAssignment{DriverIndex: a.DriverIndex, BlockID: a.BlockID}
		}
		return out, nil
	}
	return nil, nil
}

// LockPlan marks a plan version as the accepted plan of its forecast.
func (s *MemoryStore) LockPlan(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.plans[id]
	if !ok {
		return domain.NewDomainError(domain.ErrCodeNotFound, "plan "+id.String(), nil)
	}
	rec.locked = true
	s.plans[id] = rec
	return nil
}

// SaveAuditReport persists the audit report of a plan version.
func (s *MemoryStore) SaveAuditReport(_ context.Context, planID uuid.UUID, report map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.auditReports[planID] = report
	return nil
}

// SaveOverrideEvent appends a freeze override event.
func (s *MemoryStore) SaveOverrideEvent(_ context.Context, event domain.FreezeOverrideEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.overrides = append(s.overrides, event)
	return nil
}

// ListOverrideEvents returns all override events, oldest first.
func (s *MemoryStore) ListOverrideEvents(_ context.Context) ([]domain.FreezeOverrideEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.FreezeOverrideEvent(nil), s.overrides...), nil
}

var (
	_ domain.ForecastRepository = (*MemoryStore)(nil)
	_ domain.PlanRepository     = (*MemoryStore)(nil)
	_ domain.AuditLogRepository = (*MemoryStore)(nil)
)
