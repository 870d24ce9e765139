package engine

import (
	"github.com/solvereign/solvereign/internal/domain"
)

// ChurnStats quantifies assignment movement between two plans of the same
// forecast. Driver indices are synthetic, so churn is measured on the
// instance→block mapping; a pure driver renumbering is reported separately.
type ChurnStats struct {
	Added       int     `json:"added"`
	Removed     int     `json:"removed"`
	MovedBlock  int     `json:"moved_block"`
	MovedDriver int     `json:"moved_driver"`
	Unchanged   int     `json:"unchanged"`
	ChurnRatio  float64 `json:"churn_ratio"`
}

// DiffPlans compares two assignment sets instance by instance.
func DiffPlans(prev, next []domain.Assignment) ChurnStats {
	prevByID := make(map[string]domain.Assignment, len(prev))
	for _, a := range prev {
		prevByID[a.InstanceID] = a
	}

	var stats ChurnStats
	seen := make(map[string]bool, len(next))
	for _, a := range next {
		seen[a.InstanceID] = true
		p, ok := prevByID[a.InstanceID]
		switch {
		case !ok:
			stats.Added++
		case p.BlockID != a.BlockID:
			stats.MovedBlock++
		case p.DriverIndex != a.DriverIndex:
			stats.MovedDriver++
		default:
			stats.Unchanged++
		}
	}
	for id := range prevByID {
		if !seen[id] {
			stats.Removed++
		}
	}

	total := len(next)
	if total > 0 {
		stats.ChurnRatio = float64(stats.Added+stats.MovedBlock) / float64(total)
	}
	return stats
}
