package storage

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solvereign/solvereign/internal/domain"
)

func testForecast() domain.ForecastInput {
	return domain.ForecastInput{
		WeekAnchorDate: time.Date(2025, 11, 17, 0, 0, 0, 0, time.UTC),
		Templates: []domain.TourTemplate{
			{Day: domain.Monday, StartMin: 480, EndMin: 960, Count: 2},
		},
	}
}

func TestMemoryStore_ForecastRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	id, err := store.SaveForecast(ctx, testForecast(), "kw47")
	require.NoError(t, err)

	got, err := store.GetForecast(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, testForecast(), got)

	_, err = store.GetForecast(ctx, uuid.New())
	assert.Error(t, err)
}

func TestMemoryStore_ListForecastsNewestFirst(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	first, err := store.SaveForecast(ctx, testForecast(), "a")
	require.NoError(t, err)
	second, err := store.SaveForecast(ctx, testForecast(), "b")
	require.NoError(t, err)

	ids, err := store.ListForecasts(ctx)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{second, first}, ids)
}

func TestMemoryStore_PlanLockingFeedsFreeze(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	forecastID, err := store.SaveForecast(ctx, testForecast(), "kw47")
	require.NoError(t, err)

	result := domain.PlanResult{
		Status: domain.StatusOK,
		Assignments: []domain.Assignment{
			{InstanceID: "i1", DriverIndex: 0, BlockID: "B1-aaa"},
			{InstanceID: "i2", DriverIndex: 1, BlockID: "B1-bbb"},
		},
		OutputHash: "abc",
	}
	planID, err := store.SavePlan(ctx, forecastID, result)
	require.NoError(t, err)

	// Nothing locked yet.
	locked, err := store.GetLockedAssignments(ctx, forecastID)
	require.NoError(t, err)
	assert.Nil(t, locked)

	require.NoError(t, store.LockPlan(ctx, planID))
	locked, err = store.GetLockedAssignments(ctx, forecastID)
	require.NoError(t, err)
	require.Len(t, locked, 2)
	assert.Equal(t, domain.PriorAssignment{DriverIndex: 0, BlockID: "B1-aaa"}, locked["i1"])
}

func TestMemoryStore_OverrideEvents(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	event := domain.FreezeOverrideEvent{
		EventID:     uuid.NewString(),
		Actor:       "dispatcher",
		Reason:      "storm",
		InstanceIDs: []string{"i1"},
		At:          time.Now(),
	}
	require.NoError(t, store.SaveOverrideEvent(ctx, event))

	events, err := store.ListOverrideEvents(ctx)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "dispatcher", events[0].Actor)
}

func TestMemoryStore_AuditReport(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	planID := uuid.New()
	err := store.SaveAuditReport(ctx, planID, map[string]any{"COVERAGE": "PASS"})
	require.NoError(t, err)
}
