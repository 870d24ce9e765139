package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTourTemplate_Validate(t *testing.T) {
	valid := TourTemplate{Day: Monday, StartMin: 480, EndMin: 960, Count: 1}
	assert.NoError(t, valid.Validate())

	bad := valid
	bad.Count = 0
	assert.Error(t, bad.Validate())

	bad = valid
	bad.Day = 8
	assert.Error(t, bad.Validate())

	bad = valid
	bad.EndMin = 480
	assert.Error(t, bad.Validate())

	crossing := TourTemplate{Day: Monday, StartMin: 1320, EndMin: 360, CrossesMidnight: true, Count: 1}
	assert.NoError(t, crossing.Validate())
	assert.Equal(t, 480, crossing.DurationMin())
}

func TestTourTemplate_SignatureStable(t *testing.T) {
	a := TourTemplate{Day: Tuesday, StartMin: 360, EndMin: 600, Count: 2, Depot: "North", Skills: []string{"adr", "crane"}}
	b := TourTemplate{Day: Tuesday, StartMin: 360, EndMin: 600, Count: 5, Depot: "North", Skills: []string{"crane", "adr"}}

	// Count and skill order are not part of the identity.
	assert.Equal(t, a.Signature(), b.Signature())
	assert.Len(t, a.Signature(), 16)

	c := b
	c.Depot = "South"
	assert.NotEqual(t, a.Signature(), c.Signature())
}

func TestTourInstance_AbsoluteTimes(t *testing.T) {
	crossing := TourInstance{ID: "x", Day: Monday, StartMin: 1320, EndMin: 360, CrossesMidnight: true, DurationMin: 480}
	assert.Equal(t, 1320, crossing.AbsStartMin())
	// Ends 06:00 on Tuesday.
	assert.Equal(t, 1800, crossing.AbsEndMin())

	tue := TourInstance{ID: "y", Day: Tuesday, StartMin: 1080, EndMin: 1320, DurationMin: 240}
	assert.Equal(t, 2520, tue.AbsStartMin())
	assert.Equal(t, 720, tue.AbsStartMin()-crossing.AbsEndMin())
}

func TestTourInstance_Overlaps(t *testing.T) {
	a := TourInstance{ID: "a", Day: Monday, StartMin: 360, EndMin: 600}
	b := TourInstance{ID: "b", Day: Monday, StartMin: 600, EndMin: 900}
	c := TourInstance{ID: "c", Day: Monday, StartMin: 590, EndMin: 700}
	d := TourInstance{ID: "d", Day: Tuesday, StartMin: 360, EndMin: 600}

	assert.False(t, a.Overlaps(b), "touching tours do not overlap")
	assert.True(t, a.Overlaps(c))
	assert.False(t, a.Overlaps(d), "different days never overlap")
}

func TestBlock_DerivedFields(t *testing.T) {
	t1 := TourInstance{ID: "a", Day: Monday, StartMin: 360, EndMin: 540, DurationMin: 180}
	t2 := TourInstance{ID: "b", Day: Monday, StartMin: 585, EndMin: 765, DurationMin: 180}
	t3 := TourInstance{ID: "c", Day: Monday, StartMin: 810, EndMin: 1020, DurationMin: 210}

	b := NewBlock(BlockTriple, Monday, t3, t1, t2)
	require.Len(t, b.Tours, 3)
	assert.Equal(t, "a", b.Tours[0].ID, "tours are re-sorted by stable key")
	assert.Equal(t, 360, b.StartMin)
	assert.Equal(t, 1020, b.EndMin)
	assert.Equal(t, 660, b.SpanMin)
	assert.Equal(t, 570, b.WorkMin)
	assert.Equal(t, 45, b.MaxGapMin)
	assert.Contains(t, b.ID, "B3-")

	// Identity does not depend on construction order.
	again := NewBlock(BlockTriple, Monday, t1, t2, t3)
	assert.Equal(t, b.ID, again.ID)
}

func TestRoster_DerivedFields(t *testing.T) {
	mon := NewBlock(BlockSingle, Monday, TourInstance{ID: "a", Day: Monday, StartMin: 360, EndMin: 960, DurationMin: 600})
	wed := NewBlock(BlockSingle, Wednesday, TourInstance{ID: "b", Day: Wednesday, StartMin: 360, EndMin: 960, DurationMin: 600})

	r := NewRoster(wed, mon)
	assert.Equal(t, Monday, r.Blocks[0].Day, "blocks sorted by day")
	assert.Equal(t, 1200, r.TotalWorkMin())
	assert.Equal(t, 2, r.DaysWorked())
	assert.False(t, r.IsFTE())

	_, ok := r.BlockOn(Wednesday)
	assert.True(t, ok)
	_, ok = r.BlockOn(Friday)
	assert.False(t, ok)
}

func TestPlan_CanonicalOrderAndAssignments(t *testing.T) {
	early := NewRoster(NewBlock(BlockSingle, Monday, TourInstance{ID: "a", Day: Monday, StartMin: 300, EndMin: 900, DurationMin: 600}))
	late := NewRoster(NewBlock(BlockSingle, Tuesday, TourInstance{ID: "b", Day: Tuesday, StartMin: 300, EndMin: 900, DurationMin: 600}))

	p := NewPlan([]Roster{late, early})
	require.Len(t, p.Rosters, 2)
	assert.Equal(t, Monday, p.Rosters[0].Blocks[0].Day, "earliest roster gets driver index 0")

	assignments := p.Assignments()
	require.Len(t, assignments, 2)
	assert.Equal(t, "a", assignments[0].InstanceID)
	assert.Equal(t, 0, assignments[0].DriverIndex)
	assert.Equal(t, 1, assignments[1].DriverIndex)
}

func TestComputeKPIs(t *testing.T) {
	fullDay := func(day Weekday, id string) Block {
		return NewBlock(BlockSingle, day, TourInstance{ID: id, Day: day, StartMin: 360, EndMin: 960, DurationMin: 600})
	}
	fte := NewRoster(fullDay(Monday, "a"), fullDay(Tuesday, "b"), fullDay(Wednesday, "c"), fullDay(Thursday, "d"))
	pt := NewRoster(fullDay(Friday, "e"))

	k := ComputeKPIs(NewPlan([]Roster{fte, pt}))
	assert.Equal(t, 2, k.DriverCount)
	assert.Equal(t, 1, k.FTECount)
	assert.Equal(t, 1, k.PTCount)
	assert.InDelta(t, 50.0, k.TotalHours, 1e-9)
	assert.InDelta(t, 10.0, k.MinHours, 1e-9)
	assert.InDelta(t, 40.0, k.MaxHours, 1e-9)
	assert.Equal(t, WeekCompressed, k.WeekCategory)
}

func TestClassifyWeek(t *testing.T) {
	assert.Equal(t, WeekShort, ClassifyWeek(2))
	assert.Equal(t, WeekCompressed, ClassifyWeek(5))
	assert.Equal(t, WeekNormal, ClassifyWeek(6))
}
