// Package partition deterministically groups a week's tour instances into
// valid 1/2/3-tour blocks. The partition is a pure function of the instance
// set: no randomness, no seed, every candidate choice is resolved
// first-by-stable-key.
package partition

import (
	"github.com/rs/zerolog"

	"github.com/solvereign/solvereign/internal/domain"
	derrors "github.com/solvereign/solvereign/internal/domain/errors"
	"github.com/solvereign/solvereign/internal/validator"
)

// Partition splits the instances into a disjoint covering set of blocks.
// Per day, blocks are formed greedily in priority order 3er → 2er-reg →
// 2er-split → 1er; each 3er saves two singletons, which is what minimizes
// headcount in practice.
func Partition(instances []domain.TourInstance, rules validator.Rules, log zerolog.Logger) ([]domain.Block, error) {
	byDay := make(map[domain.Weekday][]domain.TourInstance)
	for _, inst := range instances {
		byDay[inst.Day] = append(byDay[inst.Day], inst)
	}

	var blocks []domain.Block
	for day := domain.Monday; day <= domain.Sunday; day++ {
		dayTours := byDay[day]
		if len(dayTours) == 0 {
			continue
		}
		domain.SortInstances(dayTours)

		dayBlocks, err := partitionDay(day, dayTours, rules)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, dayBlocks...)
	}

	log.Debug().
		Int("instances", len(instances)).
		Int("blocks", len(blocks)).
		Msg("partition complete")
	return blocks, nil
}

// partitionDay runs the four phases over one day's tours, which arrive in
// stable-key order and stay in that order throughout.
func partitionDay(day domain.Weekday, tours []domain.TourInstance, rules validator.Rules) ([]domain.Block, error) {
	active := make(map[string]bool, len(tours))
	for _, t := range tours {
		active[t.ID] = true
	}
	remaining := func() []domain.TourInstance {
		out := make([]domain.TourInstance, 0, len(tours))
		for _, t := range tours {
			if active[t.ID] {
				out = append(out, t)
			}
		}
		return out
	}

	var blocks []domain.Block
	emit := func(typ domain.BlockType, members ...domain.TourInstance) error {
		b := domain.NewBlock(typ, day, members...)
		if ok, reason := rules.ValidateBlock(b); !ok {
			return derrors.NewPartitionError(int(day), reason, nil)
		}
		blocks = append(blocks, b)
		for _, t := range members {
			active[t.ID] = false
		}
		return nil
	}

	// Phase 1: 3er. For each starter in stable order, the first chainable
	// successor pair within the chain-gap window and the 3er span bound.
	for changed := true; changed; {
		changed = false
		curr := remaining()
	starters:
		for i, t1 := range curr {
			for j := i + 1; j < len(curr); j++ {
				t2 := curr[j]
				if !rules.CanChainIntraday(t1, t2) || !rules.IsRegularGap(validator.Gap(t1, t2)) {
					continue
				}
				for k := j + 1; k < len(curr); k++ {
					t3 := curr[k]
					if !rules.CanChainIntraday(t2, t3) || !rules.IsRegularGap(validator.Gap(t2, t3)) {
						continue
					}
					if t3.EffectiveEndMin()-t1.StartMin > rules.Span3erMaxMin {
						continue
					}
					if err := emit(domain.BlockTriple, t1, t2, t3); err != nil {
						return nil, err
					}
					changed = true
					break starters
				}
			}
		}
	}

	// Phase 2: 2er regular.
	if err := pairPhase(remaining, emit, domain.BlockDoubleRegular, rules, func(gap, span int) bool {
		return rules.IsRegularGap(gap) && span <= rules.SpanRegularMaxMin
	}); err != nil {
		return nil, err
	}

	// Phase 3: 2er split.
	if err := pairPhase(remaining, emit, domain.BlockDoubleSplit, rules, func(gap, span int) bool {
		return rules.IsSplitGap(gap) && span <= rules.SpanSplitMaxMin
	}); err != nil {
		return nil, err
	}

	// Phase 4: singletons for everything still active. A singleton can
	// only fail on its span, which no assignment could repair either —
	// that is the forecast contradicting the law, not a partitioner bug.
	for _, t := range remaining() {
		single := domain.NewBlock(domain.BlockSingle, day, t)
		if ok, _ := rules.ValidateBlock(single); !ok {
			return nil, derrors.NewInputContradictionError(
				"tour does not fit the regular daily span bound", t.ID)
		}
		if err := emit(domain.BlockSingle, t); err != nil {
			return nil, err
		}
	}
	return blocks, nil
}

func pairPhase(
	remaining func() []domain.TourInstance,
	emit func(domain.BlockType, ...domain.TourInstance) error,
	typ domain.BlockType,
	rules validator.Rules,
	fits func(gap, span int) bool,
) error {
	for changed := true; changed; {
		changed = false
		curr := remaining()
	starters:
		for i, t1 := range curr {
			for j := i + 1; j < len(curr); j++ {
				t2 := curr[j]
				if !rules.CanChainIntraday(t1, t2) {
					continue
				}
				gap := validator.Gap(t1, t2)
				span := t2.EffectiveEndMin() - t1.StartMin
				if !fits(gap, span) {
					continue
				}
				if err := emit(typ, t1, t2); err != nil {
					return err
				}
				changed = true
				break starters
			}
		}
	}
	return nil
}
