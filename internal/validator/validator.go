// Package validator concentrates every hard legal and operational rule as
// stateless predicates over tours, blocks and rosters. Both solver families
// and the audit framework consume these predicates; no numeric threshold
// lives anywhere else.
package validator

import (
	"fmt"

	"github.com/solvereign/solvereign/internal/domain"
)

// Rules is the threshold set of one solve, derived from the solver config.
type Rules struct {
	MaxWeeklyMin      int
	MinRestMin        int
	SpanRegularMaxMin int
	SpanSplitMaxMin   int
	Span3erMaxMin     int
	SplitGapMin       int
	SplitGapMax       int
	ChainGapMin       int
	ChainGapMax       int
	MaxBlocksPerWeek  int
	Fatigue           domain.FatigueRule
}

// FromConfig derives the rule set from a solver config.
func FromConfig(cfg domain.SolverConfig) Rules {
	return Rules{
		MaxWeeklyMin:      cfg.MaxWeeklyHours * 60,
		MinRestMin:        cfg.MinRestMin,
		SpanRegularMaxMin: cfg.SpanRegularMaxMin,
		SpanSplitMaxMin:   cfg.SpanSplitMaxMin,
		Span3erMaxMin:     cfg.Span3erMaxMin,
		SplitGapMin:       cfg.SplitGapMin,
		SplitGapMax:       cfg.SplitGapMax,
		ChainGapMin:       cfg.ChainGapMin,
		ChainGapMax:       cfg.ChainGapMax,
		MaxBlocksPerWeek:  cfg.MaxBlocksPerWeek,
		Fatigue:           cfg.FatigueRule,
	}
}

// Default returns the rule set of the default config.
func Default() Rules {
	return FromConfig(domain.DefaultConfig())
}

// IsRegularGap reports whether a gap qualifies for chaining inside a
// regular 2er or 3er block.
func (r Rules) IsRegularGap(gapMin int) bool {
	return gapMin >= r.ChainGapMin && gapMin <= r.ChainGapMax
}

// IsSplitGap reports whether a gap qualifies for a split 2er block.
func (r Rules) IsSplitGap(gapMin int) bool {
	return gapMin >= r.SplitGapMin && gapMin <= r.SplitGapMax
}

// Gap returns the idle minutes between two same-day tours in stable order.
func Gap(t1, t2 domain.TourInstance) int {
	return t2.StartMin - t1.EffectiveEndMin()
}

// CanChainIntraday reports whether t2 can follow t1 on the same day:
// same day and t1 ends no later than t2 starts.
func (r Rules) CanChainIntraday(t1, t2 domain.TourInstance) bool {
	if t1.Day != t2.Day {
		return false
	}
	return t1.EffectiveEndMin() <= t2.StartMin
}

// CanChainDays reports whether next may follow prev on a later day: the
// absolute end-to-start delta, honoring cross-midnight ends, must reach the
// minimum rest.
func (r Rules) CanChainDays(prev, next domain.Block) bool {
	if next.Day <= prev.Day {
		return false
	}
	return next.AbsStartMin()-prev.AbsEndMin() >= r.MinRestMin
}

// ValidateBlock checks tour count, pairwise time disjointness, the gap
// pattern and the span bound of the block's type.
func (r Rules) ValidateBlock(b domain.Block) (bool, string) {
	n := len(b.Tours)
	if n < 1 || n > 3 {
		return false, fmt.Sprintf("block %s has %d tours, want 1-3", b.ID, n)
	}
	for _, t := range b.Tours {
		if t.Day != b.Day {
			return false, fmt.Sprintf("block %s mixes days: tour %s on %s, block on %s", b.ID, t.ID, t.Day, b.Day)
		}
	}
	for i := 1; i < n; i++ {
		if b.Tours[i-1].EffectiveEndMin() > b.Tours[i].StartMin {
			return false, fmt.Sprintf("block %s tours overlap: %s and %s", b.ID, b.Tours[i-1].ID, b.Tours[i].ID)
		}
	}

	switch b.Type {
	case domain.BlockSingle:
		if n != 1 {
			return false, fmt.Sprintf("1er block %s has %d tours", b.ID, n)
		}
		if b.SpanMin > r.SpanRegularMaxMin {
			return false, fmt.Sprintf("1er block %s span %d min exceeds %d", b.ID, b.SpanMin, r.SpanRegularMaxMin)
		}
	case domain.BlockDoubleRegular:
		if n != 2 {
			return false, fmt.Sprintf("2er-reg block %s has %d tours", b.ID, n)
		}
		if gap := Gap(b.Tours[0], b.Tours[1]); !r.IsRegularGap(gap) {
			return false, fmt.Sprintf("2er-reg block %s gap %d min outside [%d, %d]", b.ID, gap, r.ChainGapMin, r.ChainGapMax)
		}
		if b.SpanMin > r.SpanRegularMaxMin {
			return false, fmt.Sprintf("2er-reg block %s span %d min exceeds %d", b.ID, b.SpanMin, r.SpanRegularMaxMin)
		}
	case domain.BlockDoubleSplit:
		if n != 2 {
			return false, fmt.Sprintf("2er-split block %s has %d tours", b.ID, n)
		}
		if gap := Gap(b.Tours[0], b.Tours[1]); !r.IsSplitGap(gap) {
			return false, fmt.Sprintf("2er-split block %s gap %d min outside [%d, %d]", b.ID, gap, r.SplitGapMin, r.SplitGapMax)
		}
		if b.SpanMin > r.SpanSplitMaxMin {
			return false, fmt.Sprintf("2er-split block %s span %d min exceeds %d", b.ID, b.SpanMin, r.SpanSplitMaxMin)
		}
	case domain.BlockTriple:
		if n != 3 {
			return false, fmt.Sprintf("3er block %s has %d tours", b.ID, n)
		}
		for i := 1; i < 3; i++ {
			if gap := Gap(b.Tours[i-1], b.Tours[i]); !r.IsRegularGap(gap) {
				return false, fmt.Sprintf("3er block %s gap %d min outside [%d, %d]", b.ID, gap, r.ChainGapMin, r.ChainGapMax)
			}
		}
		if b.SpanMin > r.Span3erMaxMin {
			return false, fmt.Sprintf("3er block %s span %d min exceeds %d", b.ID, b.SpanMin, r.Span3erMaxMin)
		}
	default:
		return false, fmt.Sprintf("block %s has unknown type %q", b.ID, b.Type)
	}
	return true, ""
}

// ValidateRoster checks the week-level invariants: rest between
// consecutive blocks (I1), the fatigue rule (I2), the weekly hours cap
// (I3) and the block count cap (I4).
func (r Rules) ValidateRoster(ro domain.Roster) (bool, string) {
	if len(ro.Blocks) > r.MaxBlocksPerWeek {
		return false, fmt.Sprintf("roster has %d blocks, cap is %d", len(ro.Blocks), r.MaxBlocksPerWeek)
	}
	seen := map[domain.Weekday]bool{}
	for _, b := range ro.Blocks {
		if seen[b.Day] {
			return false, fmt.Sprintf("two blocks on %s", b.Day)
		}
		seen[b.Day] = true
	}
	for i := 1; i < len(ro.Blocks); i++ {
		prev, next := ro.Blocks[i-1], ro.Blocks[i]
		if rest := next.AbsStartMin() - prev.AbsEndMin(); rest < r.MinRestMin {
			return false, fmt.Sprintf("rest %d min between %s and %s below %d", rest, prev.Day, next.Day, r.MinRestMin)
		}
		if r.Fatigue == domain.FatigueNoConsecutiveTriples &&
			next.Day == prev.Day+1 &&
			prev.Type == domain.BlockTriple && next.Type == domain.BlockTriple {
			return false, fmt.Sprintf("3er blocks on consecutive days %s and %s", prev.Day, next.Day)
		}
	}
	if total := ro.TotalWorkMin(); total > r.MaxWeeklyMin {
		return false, fmt.Sprintf("weekly work %d min exceeds %d", total, r.MaxWeeklyMin)
	}
	return true, ""
}

// CanAppend reports whether block b fits into roster ro without breaking
// any roster invariant. The solvers use it as the feasibility predicate for
// candidate moves.
func (r Rules) CanAppend(ro domain.Roster, b domain.Block) bool {
	if _, taken := ro.BlockOn(b.Day); taken {
		return false
	}
	if len(ro.Blocks)+1 > r.MaxBlocksPerWeek {
		return false
	}
	ok, _ := r.ValidateRoster(ro.With(b))
	return ok
}

// ValidatePlan checks that every instance is covered exactly once (P1) and
// that every roster holds its invariants (P2). The reproducibility hash
// (P3) is the hashing component's concern.
func (r Rules) ValidatePlan(p domain.Plan, instances []domain.TourInstance) (bool, string) {
	covered := make(map[string]int, len(instances))
	for _, a := range p.Assignments() {
		covered[a.InstanceID]++
	}
	for _, inst := range instances {
		switch covered[inst.ID] {
		case 0:
			return false, fmt.Sprintf("instance %s is uncovered", inst.ID)
		case 1:
		default:
			return false, fmt.Sprintf("instance %s covered %d times", inst.ID, covered[inst.ID])
		}
	}
	if len(covered) != len(instances) {
		return false, fmt.Sprintf("plan assigns %d instances, forecast has %d", len(covered), len(instances))
	}
	for i, ro := range p.Rosters {
		if ok, reason := r.ValidateRoster(ro); !ok {
			return false, fmt.Sprintf("roster %d: %s", i, reason)
		}
	}
	return true, ""
}
