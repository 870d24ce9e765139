// Command solvereign is the thin CLI boundary of the roster core: it
// assembles the solver configuration from defaults, environment and flags,
// reads a forecast file, runs one solve and emits the plan with its audit
// report as JSON.
//
// Exit codes: 0 on ok, 1 on time_budget_exhausted with an incumbent, 2 on
// infeasible input or unrecoverable error.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/solvereign/solvereign"
	"github.com/solvereign/solvereign/internal/audit"
	"github.com/solvereign/solvereign/internal/domain"
	"github.com/solvereign/solvereign/internal/engine"
	"github.com/solvereign/solvereign/internal/expand"
	"github.com/solvereign/solvereign/internal/gate"
	"github.com/solvereign/solvereign/internal/infrastructure/config"
	"github.com/solvereign/solvereign/internal/infrastructure/logger"
	"github.com/solvereign/solvereign/internal/infrastructure/memlimit"
	"github.com/solvereign/solvereign/internal/validator"
)

type output struct {
	Result        solvereign.PlanResult           `json:"result"`
	Audit         solvereign.AuditResult          `json:"audit"`
	Gate          []solvereign.GateResult         `json:"gate,omitempty"`
	OverrideEvent *solvereign.FreezeOverrideEvent `json:"override_event,omitempty"`
}

func main() {
	os.Exit(run())
}

func run() int {
	var (
		configPath     = flag.String("config", "solvereign.yml", "path to the YAML configuration file")
		forecastPath   = flag.String("forecast", "", "path to the forecast YAML file (required)")
		auditPath      = flag.String("audit", "", "re-audit a previously emitted plan JSON instead of solving")
		engineName     = flag.String("engine", "", "engine override: block_heuristic or column_generation")
		pretty         = flag.Bool("pretty", false, "human-readable console logging")
		overrideActor  = flag.String("override-actor", "", "actor authorizing a freeze override")
		overrideReason = flag.String("override-reason", "", "reason for a freeze override")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		return 2
	}
	if *engineName != "" {
		cfg.Solver.Engine = domain.Engine(*engineName)
	}
	log := logger.Setup(cfg.LogLevel, *pretty)

	if err := memlimit.Apply(cfg.MaxMemMB); err != nil {
		log.Warn().Err(err).Int("max_mem_mb", cfg.MaxMemMB).Msg("memory ceiling not applied")
	}

	if *forecastPath == "" {
		fmt.Fprintln(os.Stderr, "usage: solvereign -forecast forecast.yml [flags]")
		return 2
	}
	forecast, err := loadForecast(*forecastPath)
	if err != nil {
		log.Error().Err(err).Str("path", *forecastPath).Msg("forecast does not load")
		return 2
	}

	if *auditPath != "" {
		return reaudit(*auditPath, forecast, cfg, log)
	}

	var opts []engine.Option
	if cfg.AuditSensitivity {
		opts = append(opts, engine.WithSensitivityAudit())
	}
	solver, err := solvereign.NewSolver(cfg.Solver, log, opts...)
	if err != nil {
		log.Error().Err(err).Msg("invalid solver config")
		return 2
	}

	req := solvereign.SolveRequest{Forecast: forecast}
	if *overrideActor != "" || *overrideReason != "" {
		req.Override = &solvereign.OverrideRequest{Actor: *overrideActor, Reason: *overrideReason}
	}

	outcome, solveErr := solver.Solve(context.Background(), req)
	if solveErr != nil {
		log.Error().Err(solveErr).Msg("solve failed")
	}

	out := output{
		Result:        outcome.Result,
		Audit:         outcome.Audit,
		OverrideEvent: outcome.OverrideEvent,
	}
	if g, gateErr := gate.New(cfg.Gate); gateErr != nil {
		log.Warn().Err(gateErr).Msg("gate rules do not compile, skipping gate")
	} else if outcome.Result.Status == domain.StatusOK {
		out.Gate = g.Evaluate(outcome.Result.KPIs)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		log.Error().Err(err).Msg("result does not encode")
		return 2
	}

	switch {
	case solveErr == nil && outcome.Result.Status == domain.StatusOK:
		return 0
	case outcome.Result.Status == domain.StatusTimeBudgetExhausted:
		return 1
	default:
		return 2
	}
}

// reaudit re-runs every audit check over a previously emitted plan,
// independent of the solver that produced it.
func reaudit(path string, forecast solvereign.ForecastInput, cfg config.AppConfig, log zerolog.Logger) int {
	buffer, err := os.ReadFile(path)
	if err != nil {
		log.Error().Err(err).Str("path", path).Msg("plan does not load")
		return 2
	}
	var prior output
	if err := json.Unmarshal(buffer, &prior); err != nil {
		log.Error().Err(err).Str("path", path).Msg("plan does not parse")
		return 2
	}

	instances, err := expand.Expand(forecast.Templates)
	if err != nil {
		log.Error().Err(err).Msg("forecast does not expand")
		return 2
	}

	framework := audit.NewFramework(log, cfg.AuditSensitivity)
	result := framework.RunAll(&audit.Context{
		Plan:             prior.Result.Plan,
		Instances:        instances,
		Rules:            validator.FromConfig(cfg.Solver),
		StoredOutputHash: prior.Result.OutputHash,
	})

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		log.Error().Err(err).Msg("report does not encode")
		return 2
	}
	if !result.Passed() {
		return 2
	}
	return 0
}

func loadForecast(path string) (solvereign.ForecastInput, error) {
	buffer, err := os.ReadFile(path)
	if err != nil {
		return solvereign.ForecastInput{}, err
	}
	var forecast solvereign.ForecastInput
	if err := yaml.Unmarshal(buffer, &forecast); err != nil {
		return solvereign.ForecastInput{}, err
	}
	return forecast, nil
}
