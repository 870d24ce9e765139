// Package blockheur is the canonical roster engine: a two-phase heuristic
// that assigns partitioned blocks to a pool of synthetic drivers with a
// min-cost flow pass per day, then redistributes part-time rosters onto
// drivers with slack.
//
// The engine is deliberately single-threaded; every candidate order is the
// documented stable key, which is what makes rerunning a solve byte-stable.
package blockheur

import (
	"sort"

	"github.com/rs/zerolog"

	"github.com/solvereign/solvereign/internal/domain"
	derrors "github.com/solvereign/solvereign/internal/domain/errors"
	"github.com/solvereign/solvereign/internal/solver/flow"
	"github.com/solvereign/solvereign/internal/validator"
)

const (
	// poolStep is the fixed expansion step of the driver pool when a day
	// cannot be covered with the current pool size.
	poolStep = 5
	// activationCost dominates every tie-break cost so the flow prefers
	// filling existing drivers over opening new ones.
	activationCost = 1 << 20
)

// Solver holds the rule set and logger of one solve invocation.
type Solver struct {
	rules validator.Rules
	log   zerolog.Logger
}

// New creates a block-heuristic solver.
func New(rules validator.Rules, log zerolog.Logger) *Solver {
	return &Solver{rules: rules, log: log}
}

// Solve assigns every block to a roster. The returned rosters all hold the
// roster invariants; an InfeasibleError names the first uncoverable block.
func (s *Solver) Solve(blocks []domain.Block) ([]domain.Roster, error) {
	sorted := append([]domain.Block(nil), blocks...)
	domain.SortBlocks(sorted)

	byDay := make(map[domain.Weekday][]domain.Block)
	maxDay := 0
	for _, b := range sorted {
		byDay[b.Day] = append(byDay[b.Day], b)
		if len(byDay[b.Day]) > maxDay {
			maxDay = len(byDay[b.Day])
		}
	}

	// The pool never needs to exceed one driver per block; that is the
	// documented cap past which an uncovered block is structural.
	poolCap := len(sorted)
	if poolCap == 0 {
		return nil, nil
	}
	rosters := make([]domain.Roster, maxDay)

	for day := domain.Monday; day <= domain.Sunday; day++ {
		dayBlocks := byDay[day]
		if len(dayBlocks) == 0 {
			continue
		}
		for {
			assigned, uncovered, err := s.assignDay(rosters, dayBlocks)
			if err != nil {
				return nil, err
			}
			if uncovered == "" {
				rosters = assigned
				break
			}
			if len(rosters) >= poolCap {
				return nil, derrors.NewInfeasibleError(uncovered,
					"driver pool cap reached with blocks uncovered")
			}
			grow := poolStep
			if len(rosters)+grow > poolCap {
				grow = poolCap - len(rosters)
			}
			rosters = append(rosters, make([]domain.Roster, grow)...)
			s.log.Debug().
				Stringer("day", day).
				Int("pool", len(rosters)).
				Msg("expanding driver pool")
		}
	}

	rosters = dropEmpty(rosters)
	s.log.Info().
		Int("blocks", len(sorted)).
		Int("drivers_after_flow", len(rosters)).
		Msg("phase A complete")

	rosters = s.eliminatePartTime(rosters)
	s.log.Info().
		Int("drivers", len(rosters)).
		Msg("phase B complete")
	return rosters, nil
}

// assignDay runs one min-cost flow pass matching the day's blocks onto the
// driver pool. It returns the updated rosters, or the ID of the first
// uncoverable block (stable order) when the flow saturates short.
func (s *Solver) assignDay(rosters []domain.Roster, dayBlocks []domain.Block) ([]domain.Roster, string, error) {
	d, nb := len(rosters), len(dayBlocks)
	// Vertices: 0 source, 1..d drivers, d+1..d+nb blocks, d+nb+1 sink.
	source, sink := 0, d+nb+1
	g := flow.NewGraph(d + nb + 2)

	sigRank := signatureRanks(dayBlocks)
	for di := 0; di < d; di++ {
		cost := di // prefer lower driver indices, keeps ties unique
		if len(rosters[di].Blocks) == 0 {
			cost += activationCost
		}
		if _, err := g.AddArc(source, 1+di, 1, cost); err != nil {
			return nil, "", derrors.NewInternalSolverError("assignDay", "bad arc", err)
		}
	}
	type edgeKey struct{ driver, block int }
	refs := make(map[edgeKey]flow.ArcRef)
	for di := 0; di < d; di++ {
		for bi, b := range dayBlocks {
			if !s.rules.CanAppend(rosters[di], b) {
				continue
			}
			ref, err := g.AddArc(1+di, 1+d+bi, 1, sigRank[b.ID])
			if err != nil {
				return nil, "", derrors.NewInternalSolverError("assignDay", "bad arc", err)
			}
			refs[edgeKey{di, bi}] = ref
		}
	}
	covered := make([]flow.ArcRef, nb)
	for bi := range dayBlocks {
		ref, err := g.AddArc(1+d+bi, sink, 1, 0)
		if err != nil {
			return nil, "", derrors.NewInternalSolverError("assignDay", "bad arc", err)
		}
		covered[bi] = ref
	}

	pushed, _, err := g.MinCostMaxFlow(source, sink)
	if err != nil {
		return nil, "", derrors.NewInternalSolverError("assignDay", "flow failed", err)
	}
	if pushed < nb {
		for bi, ref := range covered {
			if g.Flow(ref) == 0 {
				return nil, dayBlocks[bi].ID, nil
			}
		}
	}

	next := append([]domain.Roster(nil), rosters...)
	for key, ref := range refs {
		if g.Flow(ref) == 1 {
			next[key.driver] = next[key.driver].With(dayBlocks[key.block])
		}
	}
	return next, "", nil
}

// eliminatePartTime runs deterministic redistribution passes: the smallest
// part-time roster tries to donate its entire block set to drivers with
// slack. A donation commits only when every block finds a legal receiver,
// so each accepted pass removes one driver and the loop terminates when a
// pass makes no change.
func (s *Solver) eliminatePartTime(rosters []domain.Roster) []domain.Roster {
	for {
		changed := false

		donorIdx := make([]int, 0, len(rosters))
		for i, r := range rosters {
			if len(r.Blocks) > 0 && !r.IsFTE() {
				donorIdx = append(donorIdx, i)
			}
		}
		// Donors by smallest total first, signature as tie-break.
		sort.Slice(donorIdx, func(a, b int) bool {
			ra, rb := rosters[donorIdx[a]], rosters[donorIdx[b]]
			if wa, wb := ra.TotalWorkMin(), rb.TotalWorkMin(); wa != wb {
				return wa < wb
			}
			return ra.Signature() < rb.Signature()
		})

		for _, di := range donorIdx {
			donorBlocks := append([]domain.Block(nil), rosters[di].Blocks...)
			sort.Slice(donorBlocks, func(a, b int) bool { return donorBlocks[a].ID < donorBlocks[b].ID })

			trial := append([]domain.Roster(nil), rosters...)
			trial[di] = domain.Roster{}
			placedAll := true
			for _, blk := range donorBlocks {
				ri, ok := s.pickReceiver(trial, di, blk)
				if !ok {
					placedAll = false
					break
				}
				trial[ri] = trial[ri].With(blk)
			}
			if placedAll {
				copy(rosters, trial)
				changed = true
				break // re-rank donors against the new totals
			}
		}

		if !changed {
			return dropEmpty(rosters)
		}
	}
}

// pickReceiver chooses the receiver with the largest remaining hour
// capacity, smallest signature on ties, that can legally absorb the block.
func (s *Solver) pickReceiver(rosters []domain.Roster, donor int, blk domain.Block) (int, bool) {
	best, bestSlack, bestSig := -1, -1, ""
	for i, r := range rosters {
		if i == donor || len(r.Blocks) == 0 {
			continue
		}
		if !s.rules.CanAppend(r, blk) {
			continue
		}
		slack := s.rules.MaxWeeklyMin - r.TotalWorkMin()
		sig := r.Signature()
		if slack > bestSlack || (slack == bestSlack && sig < bestSig) {
			best, bestSlack, bestSig = i, slack, sig
		}
	}
	return best, best >= 0
}

func signatureRanks(blocks []domain.Block) map[string]int {
	ids := make([]string, len(blocks))
	for i, b := range blocks {
		ids[i] = b.ID
	}
	sort.Strings(ids)
	rank := make(map[string]int, len(ids))
	for i, id := range ids {
		rank[id] = i
	}
	return rank
}

func dropEmpty(rosters []domain.Roster) []domain.Roster {
	kept := rosters[:0]
	for _, r := range rosters {
		if len(r.Blocks) > 0 {
			kept = append(kept, r)
		}
	}
	return kept
}
