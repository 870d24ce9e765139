package hash

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/solvereign/solvereign/internal/domain"
)

func TestInput_OrderIndependent(t *testing.T) {
	a := domain.TourTemplate{Day: domain.Monday, StartMin: 480, EndMin: 960, Count: 2}
	b := domain.TourTemplate{Day: domain.Friday, StartMin: 360, EndMin: 600, Count: 1}

	assert.Equal(t,
		Input([]domain.TourTemplate{a, b}),
		Input([]domain.TourTemplate{b, a}))
	assert.Len(t, Input([]domain.TourTemplate{a}), 64)
}

func TestInput_CountChangesHash(t *testing.T) {
	a := domain.TourTemplate{Day: domain.Monday, StartMin: 480, EndMin: 960, Count: 2}
	more := a
	more.Count = 3
	assert.NotEqual(t,
		Input([]domain.TourTemplate{a}),
		Input([]domain.TourTemplate{more}))
}

func TestOutput_StableAcrossRecomputation(t *testing.T) {
	a := domain.TourInstance{ID: "a", Day: domain.Monday, StartMin: 360, EndMin: 960, DurationMin: 600}
	b := domain.TourInstance{ID: "b", Day: domain.Tuesday, StartMin: 360, EndMin: 960, DurationMin: 600}
	plan := domain.NewPlan([]domain.Roster{
		domain.NewRoster(domain.NewBlock(domain.BlockSingle, domain.Monday, a)),
		domain.NewRoster(domain.NewBlock(domain.BlockSingle, domain.Tuesday, b)),
	})

	assert.Equal(t, Output(plan), Output(plan))
}

func TestOutput_AssignmentChangesHash(t *testing.T) {
	a := domain.TourInstance{ID: "a", Day: domain.Monday, StartMin: 360, EndMin: 960, DurationMin: 600}
	b := domain.TourInstance{ID: "b", Day: domain.Tuesday, StartMin: 360, EndMin: 960, DurationMin: 600}

	split := domain.NewPlan([]domain.Roster{
		domain.NewRoster(domain.NewBlock(domain.BlockSingle, domain.Monday, a)),
		domain.NewRoster(domain.NewBlock(domain.BlockSingle, domain.Tuesday, b)),
	})
	merged := domain.NewPlan([]domain.Roster{
		domain.NewRoster(
			domain.NewBlock(domain.BlockSingle, domain.Monday, a),
			domain.NewBlock(domain.BlockSingle, domain.Tuesday, b)),
	})

	assert.NotEqual(t, Output(split), Output(merged))
}

func TestConfig_SensitiveToEveryKnob(t *testing.T) {
	base := domain.DefaultConfig()

	changed := base
	changed.MaxWeeklyHours = 48
	assert.NotEqual(t, Config(base), Config(changed))

	changed = base
	changed.Engine = domain.EngineColumnGeneration
	assert.NotEqual(t, Config(base), Config(changed))

	assert.Equal(t, Config(base), Config(domain.DefaultConfig()))
}
