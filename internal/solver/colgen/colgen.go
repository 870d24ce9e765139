// Package colgen is the experimental set-partitioning engine: lazy roster
// generation against LP duals, a restricted master over the pooled columns,
// and a final integer set-partition. It must match the canonical engine on
// every invariant; it differs only in how hard it works for headcount.
package colgen

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/solvereign/solvereign/internal/domain"
	derrors "github.com/solvereign/solvereign/internal/domain/errors"
	"github.com/solvereign/solvereign/internal/solver/blockheur"
	"github.com/solvereign/solvereign/internal/validator"
)

// stallRounds ends the generation loop after this many rounds whose
// relaxation comes back INFEASIBLE or UNKNOWN. A round that adds no new
// column ends the loop at once.
const stallRounds = 3

// Solver drives the column-generation pipeline.
type Solver struct {
	cfg     domain.SolverConfig
	rules   validator.Rules
	backend MasterBackend
	log     zerolog.Logger
}

// New creates a column-generation solver. A nil backend selects the
// built-in deterministic GreedyBackend.
func New(cfg domain.SolverConfig, backend MasterBackend, log zerolog.Logger) *Solver {
	if backend == nil {
		backend = GreedyBackend{}
	}
	return &Solver{
		cfg:     cfg,
		rules:   validator.FromConfig(cfg),
		backend: backend,
		log:     log,
	}
}

// Solve covers every instance with rosters drawn from a generated column
// pool. The deadline cuts the loop between rounds; a partial incumbent is
// completed with singleton rosters and returned as time_budget_exhausted.
func (s *Solver) Solve(
	instances []domain.TourInstance,
	blocks []domain.Block,
	deadline time.Time,
) ([]domain.Roster, domain.PlanStatus, error) {
	rows := make([]string, len(instances))
	for i, inst := range instances {
		rows[i] = inst.ID
	}

	pool, err := s.seedPool(instances, blocks)
	if err != nil {
		return nil, domain.StatusInfeasible, err
	}

	pricer := newPricer(instances, s.rules, s.log)

	stalls := 0
	for round := 1; round <= s.cfg.MaxCGRounds; round++ {
		if time.Now().After(deadline) {
			s.log.Warn().Int("round", round).Msg("column generation deadline reached")
			break
		}
		lp, err := s.backend.SolveLP(pool.Columns(), rows, secondsOrRemaining(s.cfg.LPTimeLimitS, deadline))
		if err != nil {
			return nil, domain.StatusInfeasible, derrors.NewInternalSolverError("rmp", StatusUnknown, err)
		}
		if lp.Status == StatusInfeasible || lp.Status == StatusUnknown {
			stalls++
			s.log.Warn().
				Str("status", lp.Status).
				Int("stalls", stalls).
				Msg("restricted master stalled")
			if stalls >= stallRounds {
				break
			}
			continue
		}

		added := 0
		for _, col := range pricer.priceRosters(lp.Duals) {
			if pool.Add(col) {
				added++
			}
		}
		s.log.Info().
			Int("round", round).
			Float64("objective", lp.Objective).
			Int("columns_added", added).
			Int("pool", pool.Len()).
			Msg("column generation round")
		if added == 0 {
			break // no negative reduced cost left
		}
	}

	mip, err := s.backend.SolveMIP(pool.Columns(), rows, secondsOrRemaining(s.cfg.MIPTimeLimitS, deadline))
	if err != nil {
		return nil, domain.StatusInfeasible, derrors.NewInternalSolverError("master mip", StatusUnknown, err)
	}
	if mip.Status == StatusInfeasible || mip.Status == StatusUnknown {
		// Fall back to the canonical engine's output as the column set.
		s.log.Warn().Str("status", mip.Status).Msg("master infeasible over generated pool, reseeding from greedy")
		fallback, err := s.seedPool(instances, blocks)
		if err != nil {
			return nil, domain.StatusInfeasible, err
		}
		mip, err = s.backend.SolveMIP(fallback.Columns(), rows, secondsOrRemaining(s.cfg.MIPTimeLimitS, deadline))
		if err != nil {
			return nil, domain.StatusInfeasible, derrors.NewInternalSolverError("master mip fallback", StatusUnknown, err)
		}
		if mip.Status == StatusInfeasible || mip.Status == StatusUnknown {
			return nil, domain.StatusInfeasible, derrors.NewInternalSolverError("master mip fallback", mip.Status, nil)
		}
		pool = fallback
	}

	rosters := make([]domain.Roster, 0, len(mip.Selected))
	penalties := 0
	for _, sig := range mip.Selected {
		col, ok := pool.Get(sig)
		if !ok {
			return nil, domain.StatusInfeasible, derrors.NewInternalSolverError("master mip", "unknown column "+sig, nil)
		}
		if col.Penalty {
			penalties++
		}
		rosters = append(rosters, col.Roster)
	}

	status := domain.StatusOK
	if mip.Status == StatusTimeLimit {
		status = domain.StatusTimeBudgetExhausted
		rosters = completeCoverage(rosters, blocks)
	}
	s.log.Info().
		Int("drivers", len(rosters)).
		Int("penalty_columns", penalties).
		Str("master_status", mip.Status).
		Msg("set-partition master solved")
	return rosters, status, nil
}

// seedPool builds the initial pool: the canonical engine's rosters as
// FTE-leaning columns plus one penalized singleton column per block, which
// keeps the master feasible by construction. After seeding, every instance
// must appear in at least one column.
func (s *Solver) seedPool(instances []domain.TourInstance, blocks []domain.Block) (*Pool, error) {
	pool := NewPool()

	greedy := blockheur.New(s.rules, s.log)
	rosters, err := greedy.Solve(blocks)
	if err == nil {
		for _, r := range rosters {
			pool.Add(NewColumn(r, false))
		}
	} else {
		// Singletons below still guarantee feasibility; the master then
		// decides how expensive that is.
		s.log.Warn().Err(err).Msg("greedy seed failed, seeding singletons only")
	}

	for _, b := range blocks {
		pool.Add(NewColumn(domain.NewRoster(b), true))
	}

	covered := pool.CoveredInstances()
	var missing []string
	for _, inst := range instances {
		if !covered[inst.ID] {
			missing = append(missing, inst.ID)
		}
	}
	if len(missing) > 0 {
		// Instances absent from every block: the partition upstream is
		// broken, targeted repair has nothing to price against.
		return nil, derrors.NewInputContradictionError("instances unreachable by any column", missing...)
	}
	s.log.Debug().Int("pool", pool.Len()).Msg("initial column pool seeded")
	return pool, nil
}

// completeCoverage tops up a partial incumbent with singleton rosters so
// the returned plan still covers every instance exactly once. Generated
// rosters may regroup instances into blocks of their own, so coverage is
// tracked per instance, not per block.
func completeCoverage(rosters []domain.Roster, blocks []domain.Block) []domain.Roster {
	covered := make(map[string]bool)
	for _, r := range rosters {
		for _, b := range r.Blocks {
			for _, id := range b.TourIDs() {
				covered[id] = true
			}
		}
	}
	sorted := append([]domain.Block(nil), blocks...)
	domain.SortBlocks(sorted)
	for _, b := range sorted {
		open := false
		for _, t := range b.Tours {
			if !covered[t.ID] {
				open = true
			}
		}
		if !open {
			continue
		}
		// Split partially covered blocks into per-tour singletons.
		for _, t := range b.Tours {
			if !covered[t.ID] {
				rosters = append(rosters, domain.NewRoster(domain.NewBlock(domain.BlockSingle, t.Day, t)))
				covered[t.ID] = true
			}
		}
	}
	return rosters
}

func secondsOrRemaining(limitS float64, deadline time.Time) time.Duration {
	limit := time.Duration(limitS * float64(time.Second))
	if remaining := time.Until(deadline); remaining < limit {
		return remaining
	}
	return limit
}
