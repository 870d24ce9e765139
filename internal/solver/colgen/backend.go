package colgen

import (
	"math"
	"sort"
	"time"
)

// Backend statuses, mirrored from the usual LP/MIP solver vocabulary.
const (
	StatusOptimal    = "OPTIMAL"
	StatusFeasible   = "FEASIBLE"
	StatusInfeasible = "INFEASIBLE"
	StatusTimeLimit  = "TIME_LIMIT"
	StatusUnknown    = "UNKNOWN"
)

// LPSolution is the relaxation result: fractional column values and one
// dual per coverage row.
type LPSolution struct {
	Status    string
	Objective float64
	Values    map[string]float64 // column signature → value
	Duals     map[string]float64 // instance ID → dual
}

// MIPSolution is the integer master result: the selected column signatures.
type MIPSolution struct {
	Status    string
	Objective float64
	Selected  []string
}

// MasterBackend abstracts the LP/MIP engine behind the restricted master
// problem. Any back-end that can price columns against "cover each row
// exactly once" satisfies it; no concrete solver identity leaks into the
// core.
type MasterBackend interface {
	// SolveLP solves the linear relaxation of the set-partition master
	// over the given columns and coverage rows.
	SolveLP(columns []Column, rows []string, timeLimit time.Duration) (LPSolution, error)

	// SolveMIP solves the integer set-partition master.
	SolveMIP(columns []Column, rows []string, timeLimit time.Duration) (MIPSolution, error)
}

// GreedyBackend is the built-in deterministic master implementation: dual
// ascent for the relaxation and exhaustive-order greedy partitioning with
// penalty-column fallback for the integer master. It exists so the engine
// has no external solver dependency; an external MasterBackend can replace
// it wholesale.
type GreedyBackend struct{}

// SolveLP approximates the relaxation with one deterministic dual-ascent
// sweep: rows in sorted order each absorb the largest dual that keeps every
// covering column's reduced cost non-negative. The resulting duals are
// feasible for the LP dual, which is all the pricing step needs.
func (GreedyBackend) SolveLP(columns []Column, rows []string, timeLimit time.Duration) (LPSolution, error) {
	deadline := time.Now().Add(timeLimit)

	coverers := make(map[string][]int)
	for ci, c := range columns {
		for _, id := range c.Instances {
			coverers[id] = append(coverers[id], ci)
		}
	}

	sortedRows := append([]string(nil), rows...)
	sort.Strings(sortedRows)

	duals := make(map[string]float64, len(rows))
	slack := make([]float64, len(columns))
	for ci, c := range columns {
		slack[ci] = c.Cost
	}
	status := StatusOptimal
	for _, row := range sortedRows {
		if time.Now().After(deadline) {
			status = StatusTimeLimit
			break
		}
		covering := coverers[row]
		if len(covering) == 0 {
			// Uncovered row: its dual is unbounded; report infeasibility
			// of the restricted master so the caller repairs coverage.
			return LPSolution{Status: StatusInfeasible, Duals: duals}, nil
		}
		raise := math.Inf(1)
		for _, ci := range covering {
			if slack[ci] < raise {
				raise = slack[ci]
			}
		}
		if raise < 0 {
			raise = 0
		}
		duals[row] = raise
		for _, ci := range covering {
			slack[ci] -= raise
		}
	}

	// Primal value from the greedy integer solution; an upper bound on
	// the relaxation, good enough for progress accounting.
	mip, err := GreedyBackend{}.SolveMIP(columns, rows, time.Until(deadline))
	if err != nil {
		return LPSolution{}, err
	}
	values := make(map[string]float64, len(mip.Selected))
	for _, sig := range mip.Selected {
		values[sig] = 1.0
	}
	return LPSolution{Status: status, Objective: mip.Objective, Values: values, Duals: duals}, nil
}

// SolveMIP builds an exact partition greedily: among columns disjoint from
// everything chosen so far, repeatedly take the first in a fixed order:
// real columns before penalty columns, then the most still-open rows
// covered, then cheapest, then smallest signature. Penalty
// singletons guarantee the loop always terminates with full coverage when
// the pool is seeded correctly.
func (GreedyBackend) SolveMIP(columns []Column, rows []string, timeLimit time.Duration) (MIPSolution, error) {
	deadline := time.Now().Add(timeLimit)

	open := make(map[string]bool, len(rows))
	for _, r := range rows {
		open[r] = true
	}

	// Candidate order: real columns before penalty columns, more coverage
	// first, cheaper first, signature last. The sort is the whole search
	// strategy, so it must be total.
	cand := append([]Column(nil), columns...)
	sort.Slice(cand, func(i, j int) bool {
		a, b := cand[i], cand[j]
		if a.Penalty != b.Penalty {
			return !a.Penalty
		}
		if len(a.Instances) != len(b.Instances) {
			return len(a.Instances) > len(b.Instances)
		}
		if a.Cost != b.Cost {
			return a.Cost < b.Cost
		}
		return a.Sig < b.Sig
	})

	var selected []string
	objective := 0.0
	status := StatusFeasible
	for len(open) > 0 {
		if time.Now().After(deadline) {
			status = StatusTimeLimit
			break
		}
		best := -1
		for ci, c := range cand {
			if gain, disjoint := coverageGain(c, open); disjoint && gain > 0 {
				best = ci
				break
			}
		}
		if best < 0 {
			status = StatusInfeasible
			break
		}
		c := cand[best]
		selected = append(selected, c.Sig)
		objective += c.Cost
		for _, id := range c.Instances {
			delete(open, id)
		}
	}
	if len(open) == 0 && status == StatusFeasible {
		status = StatusOptimal
	}
	return MIPSolution{Status: status, Objective: objective, Selected: selected}, nil
}

func coverageGain(c Column, open map[string]bool) (int, bool) {
	gain := 0
	for _, id := range c.Instances {
		if open[id] {
			gain++
		} else {
			return 0, false // overlaps something already covered
		}
	}
	return gain, true
}
