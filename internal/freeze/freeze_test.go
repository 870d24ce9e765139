package freeze

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solvereign/solvereign/internal/domain"
	"github.com/solvereign/solvereign/internal/expand"
)

// anchor is a Monday.
var anchor = time.Date(2025, 11, 17, 0, 0, 0, 0, time.UTC)

func forecastWith(templates ...domain.TourTemplate) (domain.ForecastInput, []domain.TourInstance) {
	forecast := domain.ForecastInput{WeekAnchorDate: anchor, Templates: templates}
	instances, err := expand.Expand(templates)
	if err != nil {
		panic(err)
	}
	return forecast, instances
}

func TestClassify_WindowBoundary(t *testing.T) {
	forecast, instances := forecastWith(
		domain.TourTemplate{Day: domain.Monday, StartMin: 480, EndMin: 960, Count: 1},  // starts Mon 08:00
		domain.TourTemplate{Day: domain.Friday, StartMin: 480, EndMin: 960, Count: 1}, // starts Fri 08:00
	)
	prior := &domain.FreezeContext{Assignments: map[string]domain.PriorAssignment{
		instances[0].ID: {DriverIndex: 0, BlockID: "B1-0000000000000000"},
		instances[1].ID: {DriverIndex: 1, BlockID: "B1-1111111111111111"},
	}}

	// Sunday 22:00 before the week: Monday 08:00 is 10h away (< 12h
	// cutoff), Friday far outside.
	now := anchor.Add(-2 * time.Hour)
	cls := Overlay{Now: now, FreezeMinutes: 720, Prior: prior}.Classify(forecast, instances)

	require.Len(t, cls.Frozen, 1)
	assert.Equal(t, domain.Monday, cls.Frozen[0].Day)
	require.Len(t, cls.Unfrozen, 1)
	assert.Equal(t, domain.Friday, cls.Unfrozen[0].Day)
	assert.Empty(t, cls.MissingPrior)
}

func TestClassify_ExactCutoffIsUnfrozen(t *testing.T) {
	forecast, instances := forecastWith(
		domain.TourTemplate{Day: domain.Monday, StartMin: 720, EndMin: 960, Count: 1}) // starts Mon 12:00
	prior := &domain.FreezeContext{Assignments: map[string]domain.PriorAssignment{
		instances[0].ID: {DriverIndex: 0, BlockID: "B1-0"},
	}}

	cls := Overlay{Now: anchor, FreezeMinutes: 720, Prior: prior}.Classify(forecast, instances)
	assert.Len(t, cls.Unfrozen, 1, "start exactly at the cutoff is not frozen")
}

func TestClassify_MissingPriorIsAdvisory(t *testing.T) {
	forecast, instances := forecastWith(
		domain.TourTemplate{Day: domain.Monday, StartMin: 480, EndMin: 960, Count: 1})

	cls := Overlay{Now: anchor, FreezeMinutes: 720, Prior: nil}.Classify(forecast, instances)
	assert.Empty(t, cls.Frozen)
	require.Len(t, cls.Unfrozen, 1)
	assert.Equal(t, []string{instances[0].ID}, cls.MissingPrior)
}

func TestMergeFrozen_PreservesPriorGrouping(t *testing.T) {
	forecast, instances := forecastWith(
		domain.TourTemplate{Day: domain.Monday, StartMin: 360, EndMin: 600, Count: 1},
		domain.TourTemplate{Day: domain.Monday, StartMin: 645, EndMin: 885, Count: 1},
		domain.TourTemplate{Day: domain.Friday, StartMin: 480, EndMin: 960, Count: 1})

	// The locked plan worked the two Monday tours as one 2er-reg block.
	lockedBlock := domain.NewBlock(domain.BlockDoubleRegular, domain.Monday, instances[0], instances[1])
	prior := &domain.FreezeContext{Assignments: map[string]domain.PriorAssignment{
		instances[0].ID: {DriverIndex: 4, BlockID: lockedBlock.ID},
		instances[1].ID: {DriverIndex: 4, BlockID: lockedBlock.ID},
	}}

	overlay := Overlay{Now: anchor, FreezeMinutes: 720, Prior: prior}
	cls := overlay.Classify(forecast, instances)
	require.Len(t, cls.Frozen, 2)
	require.Len(t, cls.Unfrozen, 1)

	solved := []domain.Roster{
		domain.NewRoster(domain.NewBlock(domain.BlockSingle, domain.Friday, cls.Unfrozen[0])),
	}
	merged := overlay.MergeFrozen(solved, cls)
	require.Len(t, merged, 2)

	frozenRoster := merged[1]
	require.Len(t, frozenRoster.Blocks, 1)
	assert.Equal(t, domain.BlockDoubleRegular, frozenRoster.Blocks[0].Type)
	assert.Equal(t, lockedBlock.ID, frozenRoster.Blocks[0].ID, "rebuilt block keeps the locked identity")
}

func TestNewOverrideEvent(t *testing.T) {
	event := NewOverrideEvent("dispatcher", "storm re-plan", []string{"z", "a"}, anchor)
	assert.NotEmpty(t, event.EventID)
	assert.Equal(t, "dispatcher", event.Actor)
	assert.Equal(t, []string{"a", "z"}, event.InstanceIDs, "IDs are sorted for stable audit rows")
	assert.Equal(t, anchor, event.At)
}

func TestBlockTypeFromID(t *testing.T) {
	assert.Equal(t, domain.BlockTriple, blockTypeFromID("B3-abc"))
	assert.Equal(t, domain.BlockDoubleRegular, blockTypeFromID("B2R-abc"))
	assert.Equal(t, domain.BlockDoubleSplit, blockTypeFromID("B2S-abc"))
	assert.Equal(t, domain.BlockSingle, blockTypeFromID("B1-abc"))
}
