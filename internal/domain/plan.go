package domain

import (
	"github.com/samber/lo"
)

// PlanStatus reports how a solve ended.
type PlanStatus string

const (
	StatusOK                  PlanStatus = "ok"
	StatusTimeBudgetExhausted PlanStatus = "time_budget_exhausted"
	StatusInfeasible          PlanStatus = "infeasible"
)

// Assignment maps one tour instance to a synthetic driver and the block it
// is worked in.
type Assignment struct {
	InstanceID  string `json:"instance_id"`
	DriverIndex int    `json:"driver_index"`
	BlockID     string `json:"block_id"`
}

// Plan is a set of rosters covering every tour instance exactly once.
// Rosters are kept in canonical order (SortRosters); the position of a
// roster is its synthetic driver index.
type Plan struct {
	Rosters []Roster `json:"rosters"`
}

// NewPlan canonicalizes the roster order so synthetic driver indices are
// reproducible.
func NewPlan(rosters []Roster) Plan {
	sorted := append([]Roster(nil), rosters...)
	SortRosters(sorted)
	return Plan{Rosters: sorted}
}

// Assignments derives the instance→(driver, block) mapping from the
// canonical roster order.
func (p Plan) Assignments() []Assignment {
	var out []Assignment
	for idx, r := range p.Rosters {
		for _, b := range r.Blocks {
			for _, t := range b.Tours {
				out = append(out, Assignment{
					InstanceID:  t.ID,
					DriverIndex: idx,
					BlockID:     b.ID,
				})
			}
		}
	}
	return out
}

// Instances returns every instance covered by the plan.
func (p Plan) Instances() []TourInstance {
	var out []TourInstance
	for _, r := range p.Rosters {
		for _, b := range r.Blocks {
			out = append(out, b.Tours...)
		}
	}
	return out
}

// KPIs are the derived headline figures of a plan.
type KPIs struct {
	DriverCount  int          `json:"driver_count"`
	FTECount     int          `json:"fte_count"`
	PTCount      int          `json:"pt_count"`
	TotalHours   float64      `json:"total_hours"`
	MinHours     float64      `json:"min_hours"`
	AvgHours     float64      `json:"avg_hours"`
	MaxHours     float64      `json:"max_hours"`
	WeekCategory WeekCategory `json:"week_category"`
}

// ComputeKPIs derives headcount and hour statistics from the plan.
func ComputeKPIs(p Plan) KPIs {
	hours := lo.Map(p.Rosters, func(r Roster, _ int) float64 {
		return float64(r.TotalWorkMin()) / 60.0
	})
	activeDays := make(map[Weekday]struct{})
	for _, r := range p.Rosters {
		for _, b := range r.Blocks {
			activeDays[b.Day] = struct{}{}
		}
	}
	k := KPIs{
		DriverCount:  len(p.Rosters),
		FTECount:     lo.CountBy(p.Rosters, Roster.IsFTE),
		PTCount:      lo.CountBy(p.Rosters, func(r Roster) bool { return !r.IsFTE() }),
		TotalHours:   lo.Sum(hours),
		WeekCategory: ClassifyWeek(len(activeDays)),
	}
	if len(hours) > 0 {
		k.MinHours = lo.Min(hours)
		k.MaxHours = lo.Max(hours)
		k.AvgHours = k.TotalHours / float64(len(hours))
	}
	return k
}

// PlanResult is the full solver output: the plan, its derived figures, the
// end status and the three reproducibility hashes.
type PlanResult struct {
	Status      PlanStatus   `json:"status"`
	Plan        Plan         `json:"plan"`
	Assignments []Assignment `json:"assignments"`
	KPIs        KPIs         `json:"kpis"`
	InputHash   string       `json:"input_hash"`
	ConfigHash  string       `json:"solver_config_hash"`
	OutputHash  string       `json:"output_hash"`
	Warnings    []string     `json:"warnings,omitempty"`
}
