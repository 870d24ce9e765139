package domain

import (
	"github.com/go-playground/validator/v10"
)

// Engine selects the solver family.
type Engine string

const (
	EngineBlockHeuristic   Engine = "block_heuristic"
	EngineColumnGeneration Engine = "column_generation"
)

// FatigueRule selects the consecutive-day fatigue constraint.
type FatigueRule string

const (
	FatigueNoConsecutiveTriples FatigueRule = "no_consecutive_3er"
	FatigueNone                 FatigueRule = "none"
)

// SolverConfig carries every numeric threshold and engine knob of a solve.
// The solver receives it as an explicit value; it never reads the
// environment or files itself.
type SolverConfig struct {
	// Seed is accepted for interface stability; the canonical engine
	// ignores it and the determinism harness rejects configs that would
	// reintroduce randomness.
	Seed int64 `json:"seed" yaml:"seed" validate:"gte=0"`

	MaxWeeklyHours    int `json:"max_weekly_hours" yaml:"max_weekly_hours" validate:"gt=0,lte=168"`
	MinRestMin        int `json:"min_rest_min" yaml:"min_rest_min" validate:"gt=0"`
	SpanRegularMaxMin int `json:"span_regular_max_min" yaml:"span_regular_max_min" validate:"gt=0"`
	SpanSplitMaxMin   int `json:"span_split_max_min" yaml:"span_split_max_min" validate:"gt=0"`
	Span3erMaxMin     int `json:"span_3er_max_min" yaml:"span_3er_max_min" validate:"gt=0"`
	SplitGapMin       int `json:"split_gap_min" yaml:"split_gap_min" validate:"gte=0"`
	SplitGapMax       int `json:"split_gap_max" yaml:"split_gap_max" validate:"gtefield=SplitGapMin"`
	ChainGapMin       int `json:"chain_gap_min" yaml:"chain_gap_min" validate:"gte=0"`
	ChainGapMax       int `json:"chain_gap_max" yaml:"chain_gap_max" validate:"gtefield=ChainGapMin"`
	MaxBlocksPerWeek  int `json:"max_blocks_per_week" yaml:"max_blocks_per_week" validate:"gt=0,lte=7"`

	FatigueRule FatigueRule `json:"fatigue_rule" yaml:"fatigue_rule" validate:"oneof=no_consecutive_3er none"`
	Engine      Engine      `json:"engine" yaml:"engine" validate:"oneof=block_heuristic column_generation"`

	LPTimeLimitS  float64 `json:"lp_time_limit_s" yaml:"lp_time_limit_s" validate:"gt=0"`
	MIPTimeLimitS float64 `json:"mip_time_limit_s" yaml:"mip_time_limit_s" validate:"gt=0"`
	MaxCGRounds   int     `json:"max_cg_rounds" yaml:"max_cg_rounds" validate:"gt=0"`

	EnableLNS  bool    `json:"enable_lns" yaml:"enable_lns"`
	LNSBudgetS float64 `json:"lns_budget_s" yaml:"lns_budget_s" validate:"gte=0"`

	FreezeMinutes         int  `json:"freeze_minutes" yaml:"freeze_minutes" validate:"gte=0"`
	FreezeOverrideAllowed bool `json:"freeze_override_allowed" yaml:"freeze_override_allowed"`

	// Workers must stay 1: intra-solve parallelism would reorder
	// tie-broken candidate selection.
	Workers int `json:"workers" yaml:"workers" validate:"eq=1"`
}

// DefaultConfig returns the operational defaults.
func DefaultConfig() SolverConfig {
	return SolverConfig{
		Seed:                  0,
		MaxWeeklyHours:        55,
		MinRestMin:            660,
		SpanRegularMaxMin:     840,
		SpanSplitMaxMin:       960,
		Span3erMaxMin:         930,
		SplitGapMin:           240,
		SplitGapMax:           360,
		ChainGapMin:           30,
		ChainGapMax:           60,
		MaxBlocksPerWeek:      6,
		FatigueRule:           FatigueNoConsecutiveTriples,
		Engine:                EngineBlockHeuristic,
		LPTimeLimitS:          15,
		MIPTimeLimitS:         60,
		MaxCGRounds:           100,
		EnableLNS:             false,
		LNSBudgetS:            30,
		FreezeMinutes:         720,
		FreezeOverrideAllowed: false,
		Workers:               1,
	}
}

var configValidator = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field ranges and the cross-field ordering of the gap
// windows.
func (c SolverConfig) Validate() error {
	if err := configValidator.Struct(c); err != nil {
		return NewDomainError(ErrCodeValidationFailed, "invalid solver config", err)
	}
	return nil
}
