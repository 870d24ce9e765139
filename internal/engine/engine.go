// Package engine orchestrates a solve: expansion, freeze overlay,
// partitioning, the selected roster engine, the post-merge and the audit.
// One solve is strictly sequential; phase order is the determinism anchor.
package engine

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/solvereign/solvereign/internal/audit"
	"github.com/solvereign/solvereign/internal/domain"
	derrors "github.com/solvereign/solvereign/internal/domain/errors"
	"github.com/solvereign/solvereign/internal/expand"
	"github.com/solvereign/solvereign/internal/freeze"
	"github.com/solvereign/solvereign/internal/hash"
	"github.com/solvereign/solvereign/internal/partition"
	"github.com/solvereign/solvereign/internal/solver/blockheur"
	"github.com/solvereign/solvereign/internal/solver/colgen"
	"github.com/solvereign/solvereign/internal/solver/lns"
	"github.com/solvereign/solvereign/internal/validator"
)

// OverrideRequest asks the solve to re-plan frozen instances as well.
// Overrides are always recorded as audit events.
type OverrideRequest struct {
	Actor  string
	Reason string
}

// SolveRequest bundles one solve invocation's inputs.
type SolveRequest struct {
	Forecast domain.ForecastInput
	Freeze   *domain.FreezeContext
	Override *OverrideRequest
}

// SolveOutcome is everything a solve produces: the plan result, the full
// audit and, when an override ran, its event record.
type SolveOutcome struct {
	Result        domain.PlanResult
	Audit         audit.Result
	OverrideEvent *domain.FreezeOverrideEvent
}

// Option configures a Solver.
type Option func(*Solver)

// WithBackend replaces the built-in master backend of the
// column-generation engine.
func WithBackend(b colgen.MasterBackend) Option {
	return func(s *Solver) { s.backend = b }
}

// WithClock injects the wall clock used for freeze classification and
// deadlines. Tests pin it.
func WithClock(now func() time.Time) Option {
	return func(s *Solver) { s.now = now }
}

// WithSensitivityAudit enables the advisory sensitivity estimate.
func WithSensitivityAudit() Option {
	return func(s *Solver) { s.sensitivity = true }
}

// Solver runs solves for one configuration.
type Solver struct {
	cfg         domain.SolverConfig
	rules       validator.Rules
	backend     colgen.MasterBackend
	log         zerolog.Logger
	now         func() time.Time
	sensitivity bool
}

// New validates the configuration and builds a solver.
func New(cfg domain.SolverConfig, log zerolog.Logger, opts ...Option) (*Solver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := &Solver{
		cfg:   cfg,
		rules: validator.FromConfig(cfg),
		log:   log,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Solve produces a plan for the forecast and audits it. The returned error
// carries the failure kind; partial progress stays in the outcome.
func (s *Solver) Solve(ctx context.Context, req SolveRequest) (SolveOutcome, error) {
	started := s.now()
	outcome := SolveOutcome{}

	if err := req.Forecast.Validate(); err != nil {
		return outcome, err
	}

	inputHash := hash.Input(req.Forecast.Templates)
	configHash := hash.Config(s.cfg)
	outcome.Result.InputHash = inputHash
	outcome.Result.ConfigHash = configHash
	log := s.log.With().
		Str("input_hash", inputHash[:12]).
		Str("engine", string(s.cfg.Engine)).
		Logger()

	instances, err := expand.Expand(req.Forecast.Templates)
	if err != nil {
		return outcome, err
	}
	log.Info().Int("templates", len(req.Forecast.Templates)).Int("instances", len(instances)).Msg("expanded forecast")

	overlay := freeze.Overlay{Now: started, FreezeMinutes: s.cfg.FreezeMinutes, Prior: req.Freeze}
	cls := overlay.Classify(req.Forecast, instances)
	if req.Override != nil {
		if !s.cfg.FreezeOverrideAllowed {
			return outcome, domain.NewDomainError(domain.ErrCodeInvalidState,
				"freeze override requested but not allowed by config", nil)
		}
		frozenIDs := make([]string, len(cls.Frozen))
		for i, inst := range cls.Frozen {
			frozenIDs[i] = inst.ID
		}
		event := freeze.NewOverrideEvent(req.Override.Actor, req.Override.Reason, frozenIDs, started)
		outcome.OverrideEvent = &event
		cls = freeze.Classification{Unfrozen: instances}
		log.Warn().Str("actor", req.Override.Actor).Int("instances", len(frozenIDs)).Msg("freeze override active")
	}
	for _, id := range cls.MissingPrior {
		outcome.Result.Warnings = append(outcome.Result.Warnings,
			"frozen instance without prior assignment, solving normally: "+id)
	}

	blocks, err := partition.Partition(cls.Unfrozen, s.rules, log)
	if err != nil {
		return outcome, err
	}

	rosters, status, err := s.runEngine(ctx, cls.Unfrozen, blocks, log)
	if err != nil {
		outcome.Result.Status = domain.StatusInfeasible
		return outcome, err
	}

	rosters = overlay.MergeFrozen(rosters, cls)
	plan := domain.NewPlan(rosters)

	outcome.Result.Status = status
	outcome.Result.Plan = plan
	outcome.Result.Assignments = plan.Assignments()
	outcome.Result.KPIs = domain.ComputeKPIs(plan)
	outcome.Result.OutputHash = hash.Output(plan)

	framework := audit.NewFramework(log, s.sensitivity)
	outcome.Audit = framework.RunAll(&audit.Context{
		Plan:             plan,
		Instances:        instances,
		Rules:            s.rules,
		StoredOutputHash: outcome.Result.OutputHash,
	})
	log.Info().
		Str("status", string(status)).
		Int("drivers", outcome.Result.KPIs.DriverCount).
		Str("output_hash", outcome.Result.OutputHash[:12]).
		Dur("elapsed", time.Since(started)).
		Msg("solve finished")

	if failed := outcome.Audit.Failed(); len(failed) > 0 {
		return outcome, derrors.NewAuditFailureError(failed)
	}
	return outcome, nil
}

// runEngine dispatches to the configured engine family.
func (s *Solver) runEngine(
	ctx context.Context,
	instances []domain.TourInstance,
	blocks []domain.Block,
	log zerolog.Logger,
) ([]domain.Roster, domain.PlanStatus, error) {
	switch s.cfg.Engine {
	case domain.EngineColumnGeneration:
		deadline := s.now().Add(s.budget())
		if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
			deadline = d
		}
		cg := colgen.New(s.cfg, s.backend, log)
		rosters, status, err := cg.Solve(instances, blocks, deadline)
		if err != nil {
			return nil, status, err
		}
		if s.cfg.EnableLNS && status == domain.StatusOK {
			lnsDeadline := s.now().Add(time.Duration(s.cfg.LNSBudgetS * float64(time.Second)))
			rosters = lns.New(s.rules, log).Consolidate(rosters, lnsDeadline)
		}
		return rosters, status, nil
	default:
		rosters, err := blockheur.New(s.rules, log).Solve(blocks)
		if err != nil {
			return nil, domain.StatusInfeasible, err
		}
		return rosters, domain.StatusOK, nil
	}
}

// budget is the global monotonic deadline of a column-generation solve:
// every round's LP capped plus the final master call.
func (s *Solver) budget() time.Duration {
	seconds := s.cfg.LPTimeLimitS*float64(s.cfg.MaxCGRounds) + s.cfg.MIPTimeLimitS
	return time.Duration(seconds * float64(time.Second))
}
