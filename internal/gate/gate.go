// Package gate evaluates configurable acceptance rules over a finished
// plan's KPIs. The gate is advisory: it tells the composer whether a plan
// is fit to publish, it never mutates the plan.
package gate

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/solvereign/solvereign/internal/domain"
)

// Rule is one named acceptance predicate, written as a boolean expression
// over the KPI fields (driver_count, fte_count, pt_count, total_hours,
// min_hours, avg_hours, max_hours, week_category).
type Rule struct {
	Name string `json:"name" yaml:"name"`
	Expr string `json:"expr" yaml:"expr"`
}

// RuleResult is the outcome of one rule against one plan.
type RuleResult struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail,omitempty"`
}

// DefaultRules gate on the figures the operator actually publishes on:
// no part-time overflow and hours inside the legal band.
func DefaultRules() []Rule {
	return []Rule{
		{Name: "no_part_time_overflow", Expr: "pt_count == 0"},
		{Name: "weekly_hours_band", Expr: "max_hours <= 55.0"},
	}
}

type compiledRule struct {
	rule    Rule
	program *vm.Program
}

// Gate holds compiled acceptance rules.
type Gate struct {
	rules []compiledRule
}

// New compiles the rules. A rule that does not compile is a configuration
// error, reported immediately.
func New(rules []Rule) (*Gate, error) {
	g := &Gate{}
	for _, r := range rules {
		program, err := expr.Compile(r.Expr, expr.Env(kpiEnv(domain.KPIs{})), expr.AsBool())
		if err != nil {
			return nil, domain.NewDomainError(domain.ErrCodeInvalidInput,
				fmt.Sprintf("gate rule %q does not compile", r.Name), err)
		}
		g.rules = append(g.rules, compiledRule{rule: r, program: program})
	}
	return g, nil
}

// Evaluate runs every rule against the KPIs.
func (g *Gate) Evaluate(k domain.KPIs) []RuleResult {
	env := kpiEnv(k)
	results := make([]RuleResult, 0, len(g.rules))
	for _, cr := range g.rules {
		out, err := expr.Run(cr.program, env)
		res := RuleResult{Name: cr.rule.Name}
		if err != nil {
			res.Detail = err.Error()
		} else if passed, ok := out.(bool); ok {
			res.Passed = passed
			if !passed {
				res.Detail = cr.rule.Expr
			}
		}
		results = append(results, res)
	}
	return results
}

// Accepted reports whether every rule passed.
func Accepted(results []RuleResult) bool {
	for _, r := range results {
		if !r.Passed {
			return false
		}
	}
	return true
}

func kpiEnv(k domain.KPIs) map[string]any {
	return map[string]any{
		"driver_count":  k.DriverCount,
		"fte_count":     k.FTECount,
		"pt_count":      k.PTCount,
		"total_hours":   k.TotalHours,
		"min_hours":     k.MinHours,
		"avg_hours":     k.AvgHours,
		"max_hours":     k.MaxHours,
		"week_category": string(k.WeekCategory),
	}
}
