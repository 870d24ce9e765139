package blockheur

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solvereign/solvereign/internal/domain"
	"github.com/solvereign/solvereign/internal/expand"
	"github.com/solvereign/solvereign/internal/partition"
	"github.com/solvereign/solvereign/internal/validator"
)

func solveTemplates(t *testing.T, templates ...domain.TourTemplate) []domain.Roster {
	t.Helper()
	rules := validator.Default()
	instances, err := expand.Expand(templates)
	require.NoError(t, err)
	blocks, err := partition.Partition(instances, rules, zerolog.Nop())
	require.NoError(t, err)
	rosters, err := New(rules, zerolog.Nop()).Solve(blocks)
	require.NoError(t, err)

	// Every solve result must already hold the roster invariants.
	for _, r := range rosters {
		ok, reason := rules.ValidateRoster(r)
		require.True(t, ok, reason)
	}
	return rosters
}

func TestSolve_ParallelToursNeedParallelDrivers(t *testing.T) {
	rosters := solveTemplates(t,
		domain.TourTemplate{Day: domain.Monday, StartMin: 480, EndMin: 960, Count: 3})

	require.Len(t, rosters, 3, "three simultaneous tours cannot share a driver")
	for _, r := range rosters {
		assert.Equal(t, 480, r.TotalWorkMin())
		assert.Equal(t, 1, r.DaysWorked())
	}
}

func TestSolve_WeekChainsOntoOneDriver(t *testing.T) {
	rosters := solveTemplates(t,
		domain.TourTemplate{Day: domain.Monday, StartMin: 360, EndMin: 960, Count: 1},
		domain.TourTemplate{Day: domain.Tuesday, StartMin: 360, EndMin: 960, Count: 1},
		domain.TourTemplate{Day: domain.Wednesday, StartMin: 360, EndMin: 960, Count: 1},
		domain.TourTemplate{Day: domain.Thursday, StartMin: 360, EndMin: 960, Count: 1})

	require.Len(t, rosters, 1, "one compatible tour per day fits one driver")
	assert.Equal(t, 4*600, rosters[0].TotalWorkMin())
	assert.True(t, rosters[0].IsFTE())
}

func TestSolve_FatigueSplitsConsecutiveTriples(t *testing.T) {
	triple := func(day domain.Weekday) []domain.TourTemplate {
		return []domain.TourTemplate{
			{Day: day, StartMin: 360, EndMin: 540, Count: 1},
			{Day: day, StartMin: 585, EndMin: 765, Count: 1},
			{Day: day, StartMin: 810, EndMin: 1020, Count: 1},
		}
	}
	templates := append(triple(domain.Monday), triple(domain.Tuesday)...)

	rosters := solveTemplates(t, templates...)
	require.Len(t, rosters, 2, "consecutive 3er blocks must go to different drivers")
	for _, r := range rosters {
		assert.Equal(t, 1, r.DaysWorked())
		assert.Equal(t, domain.BlockTriple, r.Blocks[0].Type)
	}
}

func TestSolve_RestRuleForcesSecondDriver(t *testing.T) {
	rosters := solveTemplates(t,
		// Mon 22:00-06:00 crossing, then Tue 16:00-22:00: only 10h rest.
		domain.TourTemplate{Day: domain.Monday, StartMin: 1320, EndMin: 360, CrossesMidnight: true, Count: 1},
		domain.TourTemplate{Day: domain.Tuesday, StartMin: 960, EndMin: 1320, Count: 1})

	assert.Len(t, rosters, 2)
}

func TestSolve_RestRuleAllowsChaining(t *testing.T) {
	rosters := solveTemplates(t,
		// Mon 22:00-06:00 crossing, then Tue 18:00-22:00: 12h rest.
		domain.TourTemplate{Day: domain.Monday, StartMin: 1320, EndMin: 360, CrossesMidnight: true, Count: 1},
		domain.TourTemplate{Day: domain.Tuesday, StartMin: 1080, EndMin: 1320, Count: 1})

	assert.Len(t, rosters, 1)
}

func TestSolve_PartTimeElimination(t *testing.T) {
	// Two parallel tours per day force exactly two drivers; chaining the
	// four days onto each of them makes both full-time.
	rosters := solveTemplates(t,
		domain.TourTemplate{Day: domain.Monday, StartMin: 360, EndMin: 960, Count: 2},
		domain.TourTemplate{Day: domain.Tuesday, StartMin: 360, EndMin: 960, Count: 2},
		domain.TourTemplate{Day: domain.Wednesday, StartMin: 360, EndMin: 960, Count: 2},
		domain.TourTemplate{Day: domain.Thursday, StartMin: 360, EndMin: 960, Count: 2})

	require.Len(t, rosters, 2)
	for _, r := range rosters {
		assert.True(t, r.IsFTE(), "no part-time roster should survive phase B")
	}
}

func TestSolve_Deterministic(t *testing.T) {
	templates := []domain.TourTemplate{
		{Day: domain.Monday, StartMin: 360, EndMin: 600, Count: 3},
		{Day: domain.Monday, StartMin: 645, EndMin: 885, Count: 3},
		{Day: domain.Tuesday, StartMin: 360, EndMin: 960, Count: 2},
		{Day: domain.Wednesday, StartMin: 900, EndMin: 1140, Count: 4},
	}
	first := solveTemplates(t, templates...)
	second := solveTemplates(t, templates...)

	require.Equal(t, len(first), len(second))
	domain.SortRosters(first)
	domain.SortRosters(second)
	for i := range first {
		assert.Equal(t, first[i].Signature(), second[i].Signature())
	}
}

func TestSolve_EmptyInput(t *testing.T) {
	rosters, err := New(validator.Default(), zerolog.Nop()).Solve(nil)
	require.NoError(t, err)
	assert.Empty(t, rosters)
}
