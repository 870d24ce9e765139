// Package lns is the endgame consolidator of the experimental engine: a
// destroy-and-repair pass that removes low-hour rosters by redistributing
// their blocks into rosters with slack. Every accepted repair is strictly
// improving, so the search is monotone and trivially cancellable.
package lns

import (
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/solvereign/solvereign/internal/domain"
	"github.com/solvereign/solvereign/internal/validator"
)

// LowHourThresholdMin marks a roster as a low-hour pattern worth
// consolidating away.
const LowHourThresholdMin = 30 * 60

// Consolidator holds the rule set and logger of one pass; the wall-clock
// budget is passed to Consolidate as a deadline.
type Consolidator struct {
	rules validator.Rules
	log   zerolog.Logger
}

// New creates a consolidator.
func New(rules validator.Rules, log zerolog.Logger) *Consolidator {
	return &Consolidator{rules: rules, log: log}
}

// Consolidate attempts, within the budget, to destroy each low-hour roster
// and repair coverage inside the remaining rosters. A repair is accepted
// only when every displaced block finds a legal receiver: the driver count
// then drops by one and the low-hour count strictly decreases, because
// receivers only ever gain work. Non-improving repairs are discarded
// wholesale.
func (c *Consolidator) Consolidate(rosters []domain.Roster, deadline time.Time) []domain.Roster {
	out := append([]domain.Roster(nil), rosters...)
	eliminated := 0

	for {
		if time.Now().After(deadline) {
			break
		}
		donors := lowHourIndices(out)
		if len(donors) == 0 {
			break
		}

		repaired := false
		for _, di := range donors {
			if time.Now().After(deadline) {
				break
			}
			if trial, ok := c.repair(out, di); ok {
				out = trial
				eliminated++
				repaired = true
				break // donor set changed, re-rank
			}
		}
		if !repaired {
			break
		}
	}

	c.log.Info().
		Int("low_hour_eliminated", eliminated).
		Int("drivers", len(out)).
		Msg("lns consolidation finished")
	return out
}

// repair tries to empty roster di into the others. Blocks move in ID order;
// each picks the receiver with the largest remaining capacity, smallest
// signature on ties.
func (c *Consolidator) repair(rosters []domain.Roster, di int) ([]domain.Roster, bool) {
	trial := append([]domain.Roster(nil), rosters...)
	blocks := append([]domain.Block(nil), trial[di].Blocks...)
	sort.Slice(blocks, func(i, j int) bool { return blocks[i].ID < blocks[j].ID })
	trial[di] = domain.Roster{}

	for _, blk := range blocks {
		best, bestSlack, bestSig := -1, -1, ""
		for ri, r := range trial {
			if ri == di || len(r.Blocks) == 0 {
				continue
			}
			if !c.rules.CanAppend(r, blk) {
				continue
			}
			slack := c.rules.MaxWeeklyMin - r.TotalWorkMin()
			sig := r.Signature()
			if slack > bestSlack || (slack == bestSlack && sig < bestSig) {
				best, bestSlack, bestSig = ri, slack, sig
			}
		}
		if best < 0 {
			return nil, false
		}
		trial[best] = trial[best].With(blk)
	}

	kept := trial[:0]
	for _, r := range trial {
		if len(r.Blocks) > 0 {
			kept = append(kept, r)
		}
	}
	return kept, true
}

func lowHourIndices(rosters []domain.Roster) []int {
	var idx []int
	for i, r := range rosters {
		if len(r.Blocks) > 0 && r.TotalWorkMin() < LowHourThresholdMin {
			idx = append(idx, i)
		}
	}
	sort.Slice(idx, func(a, b int) bool {
		ra, rb := rosters[idx[a]], rosters[idx[b]]
		if wa, wb := ra.TotalWorkMin(), rb.TotalWorkMin(); wa != wb {
			return wa < wb
		}
		return ra.Signature() < rb.Signature()
	})
	return idx
}
