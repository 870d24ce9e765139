package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/solvereign/solvereign/internal/domain"
)

func TestDiffPlans(t *testing.T) {
	prev := []domain.Assignment{
		{InstanceID: "a", DriverIndex: 0, BlockID: "B1-aaa"},
		{InstanceID: "b", DriverIndex: 0, BlockID: "B1-bbb"},
		{InstanceID: "c", DriverIndex: 1, BlockID: "B1-ccc"},
		{InstanceID: "gone", DriverIndex: 2, BlockID: "B1-ddd"},
	}
	next := []domain.Assignment{
		{InstanceID: "a", DriverIndex: 0, BlockID: "B1-aaa"},     // unchanged
		{InstanceID: "b", DriverIndex: 3, BlockID: "B1-bbb"},     // driver renumbering only
		{InstanceID: "c", DriverIndex: 1, BlockID: "B2R-moved"},  // regrouped
		{InstanceID: "new", DriverIndex: 4, BlockID: "B1-eee"},   // added
	}

	stats := DiffPlans(prev, next)
	assert.Equal(t, 1, stats.Unchanged)
	assert.Equal(t, 1, stats.MovedDriver)
	assert.Equal(t, 1, stats.MovedBlock)
	assert.Equal(t, 1, stats.Added)
	assert.Equal(t, 1, stats.Removed)
	assert.InDelta(t, 0.5, stats.ChurnRatio, 1e-9)
}

func TestDiffPlans_EmptySides(t *testing.T) {
	stats := DiffPlans(nil, nil)
	assert.Zero(t, stats.ChurnRatio)

	stats = DiffPlans(nil, []domain.Assignment{{InstanceID: "a", BlockID: "B1-a"}})
	assert.Equal(t, 1, stats.Added)
	assert.InDelta(t, 1.0, stats.ChurnRatio, 1e-9)
}
