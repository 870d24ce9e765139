// Package audit mechanically re-verifies every produced plan. Each check is
// an independent predicate over the finished plan, reporting a structured
// result even on success — the audit layer is the contract enforced against
// both solver engines, and a plan that cannot be audited is wrong by
// definition.
package audit

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/solvereign/solvereign/internal/domain"
	"github.com/solvereign/solvereign/internal/hash"
	"github.com/solvereign/solvereign/internal/validator"
)

// Status classifies a check outcome.
type Status string

const (
	StatusPass Status = "PASS"
	StatusFail Status = "FAIL"
	StatusWarn Status = "WARN"
)

// Canonical check names.
const (
	CheckCoverage        = "COVERAGE"
	CheckOverlap         = "OVERLAP"
	CheckRest            = "REST"
	CheckSpanRegular     = "SPAN_REGULAR"
	CheckSpanSplit       = "SPAN_SPLIT"
	CheckFatigue         = "FATIGUE"
	CheckWeeklyHours     = "WEEKLY_HOURS"
	CheckReproducibility = "REPRODUCIBILITY"
	CheckSensitivity     = "SENSITIVITY"
)

// Report is the structured result of one check.
type Report struct {
	Name           string   `json:"name"`
	Status         Status   `json:"status"`
	ViolationCount int      `json:"violation_count"`
	Details        []string `json:"details,omitempty"`
}

// Context carries everything a check may inspect. Checks never mutate it.
type Context struct {
	Plan             domain.Plan
	Instances        []domain.TourInstance
	Rules            validator.Rules
	StoredOutputHash string
}

// Check is one named, reentrant audit predicate.
type Check interface {
	Name() string
	Run(ctx *Context) Report
}

// Result is the ordered collection of reports from one audit run.
type Result struct {
	Reports []Report `json:"reports"`
}

// Passed reports whether no check failed.
func (r Result) Passed() bool {
	return len(r.Failed()) == 0
}

// Failed returns the names of all failing checks.
func (r Result) Failed() []string {
	var names []string
	for _, rep := range r.Reports {
		if rep.Status == StatusFail {
			names = append(names, rep.Name)
		}
	}
	return names
}

// ByName looks a report up.
func (r Result) ByName(name string) (Report, bool) {
	for _, rep := range r.Reports {
		if rep.Name == name {
			return rep, true
		}
	}
	return Report{}, false
}

// Framework runs an ordered list of checks. Checks are order-independent;
// the order only fixes the report layout.
type Framework struct {
	checks []Check
	log    zerolog.Logger
}

// NewFramework builds the default framework. The sensitivity estimate is
// advisory and opt-in.
func NewFramework(log zerolog.Logger, withSensitivity bool) *Framework {
	checks := []Check{
		coverageCheck{},
		overlapCheck{},
		restCheck{},
		spanRegularCheck{},
		spanSplitCheck{},
		fatigueCheck{},
		weeklyHoursCheck{},
		reproducibilityCheck{},
	}
	if withSensitivity {
		checks = append(checks, sensitivityCheck{})
	}
	return &Framework{checks: checks, log: log}
}

// RunAll executes every check and returns the full result set; it never
// short-circuits on failure.
func (f *Framework) RunAll(ctx *Context) Result {
	var res Result
	for _, c := range f.checks {
		rep := c.Run(ctx)
		res.Reports = append(res.Reports, rep)
		evt := f.log.Info()
		if rep.Status == StatusFail {
			evt = f.log.Error()
		}
		evt.Str("check", rep.Name).
			Str("status", string(rep.Status)).
			Int("violations", rep.ViolationCount).
			Msg("audit check")
	}
	return res
}

func report(name string, details []string) Report {
	status := StatusPass
	if len(details) > 0 {
		status = StatusFail
	}
	return Report{Name: name, Status: status, ViolationCount: len(details), Details: details}
}

// coverageCheck: every instance has exactly one assignment, no extras.
type coverageCheck struct{}

func (coverageCheck) Name() string { return CheckCoverage }

func (coverageCheck) Run(ctx *Context) Report {
	var details []string
	counts := make(map[string]int)
	for _, a := range ctx.Plan.Assignments() {
		counts[a.InstanceID]++
	}
	known := make(map[string]bool, len(ctx.Instances))
	for _, inst := range ctx.Instances {
		known[inst.ID] = true
		switch counts[inst.ID] {
		case 1:
		case 0:
			details = append(details, fmt.Sprintf("instance %s uncovered", inst.ID))
		default:
			details = append(details, fmt.Sprintf("instance %s covered %d times", inst.ID, counts[inst.ID]))
		}
	}
	for id := range counts {
		if !known[id] {
			details = append(details, fmt.Sprintf("assignment for unknown instance %s", id))
		}
	}
	return report(CheckCoverage, details)
}

// overlapCheck: no two same-day blocks of one roster overlap. Redundant
// with the one-block-per-day rule; kept as defense in depth.
type overlapCheck struct{}

func (overlapCheck) Name() string { return CheckOverlap }

func (overlapCheck) Run(ctx *Context) Report {
	var details []string
	for di, r := range ctx.Plan.Rosters {
		for i := 0; i < len(r.Blocks); i++ {
			for j := i + 1; j < len(r.Blocks); j++ {
				a, b := r.Blocks[i], r.Blocks[j]
				if a.Day != b.Day {
					continue
				}
				if a.StartMin < b.EndMin && b.StartMin < a.EndMin {
					details = append(details, fmt.Sprintf("driver %d: blocks %s and %s overlap on %s", di, a.ID, b.ID, a.Day))
				}
			}
		}
	}
	return report(CheckOverlap, details)
}

// restCheck: consecutive blocks of a roster rest at least the minimum,
// measured on the absolute week axis so cross-midnight ends count.
type restCheck struct{}

func (restCheck) Name() string { return CheckRest }

func (restCheck) Run(ctx *Context) Report {
	var details []string
	for di, r := range ctx.Plan.Rosters {
		for i := 1; i < len(r.Blocks); i++ {
			prev, next := r.Blocks[i-1], r.Blocks[i]
			if prev.Day == next.Day {
				continue // same-day conflicts are the overlap check's finding
			}
			if rest := next.AbsStartMin() - prev.AbsEndMin(); rest < ctx.Rules.MinRestMin {
				details = append(details, fmt.Sprintf(
					"driver %d: rest %d min between %s and %s below %d",
					di, rest, prev.Day, next.Day, ctx.Rules.MinRestMin))
			}
		}
	}
	return report(CheckRest, details)
}

// spanRegularCheck: 1er and 2er-reg blocks within the regular span bound,
// 3er blocks within the 3er bound.
type spanRegularCheck struct{}

func (spanRegularCheck) Name() string { return CheckSpanRegular }

func (spanRegularCheck) Run(ctx *Context) Report {
	var details []string
	for di, r := range ctx.Plan.Rosters {
		for _, b := range r.Blocks {
			var limit int
			switch b.Type {
			case domain.BlockSingle, domain.BlockDoubleRegular:
				limit = ctx.Rules.SpanRegularMaxMin
			case domain.BlockTriple:
				limit = ctx.Rules.Span3erMaxMin
			default:
				continue
			}
			if b.SpanMin > limit {
				details = append(details, fmt.Sprintf("driver %d: block %s span %d min exceeds %d", di, b.ID, b.SpanMin, limit))
			}
		}
	}
	return report(CheckSpanRegular, details)
}

// spanSplitCheck: split blocks within the split span bound and gap window.
type spanSplitCheck struct{}

func (spanSplitCheck) Name() string { return CheckSpanSplit }

func (spanSplitCheck) Run(ctx *Context) Report {
	var details []string
	for di, r := range ctx.Plan.Rosters {
		for _, b := range r.Blocks {
			if b.Type != domain.BlockDoubleSplit {
				continue
			}
			if b.SpanMin > ctx.Rules.SpanSplitMaxMin {
				details = append(details, fmt.Sprintf("driver %d: block %s span %d min exceeds %d", di, b.ID, b.SpanMin, ctx.Rules.SpanSplitMaxMin))
			}
			if !ctx.Rules.IsSplitGap(b.MaxGapMin) {
				details = append(details, fmt.Sprintf(
					"driver %d: block %s gap %d min outside [%d, %d]",
					di, b.ID, b.MaxGapMin, ctx.Rules.SplitGapMin, ctx.Rules.SplitGapMax))
			}
		}
	}
	return report(CheckSpanSplit, details)
}

// fatigueCheck: no roster works 3er blocks on consecutive days.
type fatigueCheck struct{}

func (fatigueCheck) Name() string { return CheckFatigue }

func (fatigueCheck) Run(ctx *Context) Report {
	if ctx.Rules.Fatigue == domain.FatigueNone {
		return Report{Name: CheckFatigue, Status: StatusPass, Details: []string{"fatigue rule disabled"}}
	}
	var details []string
	for di, r := range ctx.Plan.Rosters {
		for i := 1; i < len(r.Blocks); i++ {
			prev, next := r.Blocks[i-1], r.Blocks[i]
			if next.Day == prev.Day+1 && prev.Type == domain.BlockTriple && next.Type == domain.BlockTriple {
				details = append(details, fmt.Sprintf("driver %d: 3er blocks on %s and %s", di, prev.Day, next.Day))
			}
		}
	}
	return report(CheckFatigue, details)
}

// weeklyHoursCheck: weekly work within the cap for every roster.
type weeklyHoursCheck struct{}

func (weeklyHoursCheck) Name() string { return CheckWeeklyHours }

func (weeklyHoursCheck) Run(ctx *Context) Report {
	var details []string
	for di, r := range ctx.Plan.Rosters {
		if total := r.TotalWorkMin(); total > ctx.Rules.MaxWeeklyMin {
			details = append(details, fmt.Sprintf("driver %d: weekly work %d min exceeds %d", di, total, ctx.Rules.MaxWeeklyMin))
		}
	}
	return report(CheckWeeklyHours, details)
}

// reproducibilityCheck: the stored output hash matches a recomputation
// from the plan itself.
type reproducibilityCheck struct{}

func (reproducibilityCheck) Name() string { return CheckReproducibility }

func (reproducibilityCheck) Run(ctx *Context) Report {
	recomputed := hash.Output(ctx.Plan)
	if recomputed != ctx.StoredOutputHash {
		return report(CheckReproducibility, []string{
			fmt.Sprintf("stored output hash %s != recomputed %s", ctx.StoredOutputHash, recomputed),
		})
	}
	return report(CheckReproducibility, nil)
}

// sensitivityCheck estimates plan churn under small threshold
// perturbations without re-solving: blocks whose gap or span sits within
// the perturbation margin of a bound would change type or validity, and
// their share of all blocks approximates the reassignment churn. Advisory:
// it warns, never fails.
type sensitivityCheck struct{}

const (
	sensitivityMarginMin = 5
	sensitivityChurnMax  = 0.10
)

func (sensitivityCheck) Name() string { return CheckSensitivity }

func (sensitivityCheck) Run(ctx *Context) Report {
	total, fragile := 0, 0
	for _, r := range ctx.Plan.Rosters {
		for _, b := range r.Blocks {
			total++
			if nearBound(b, ctx.Rules) {
				fragile++
			}
		}
	}
	if total == 0 {
		return Report{Name: CheckSensitivity, Status: StatusPass}
	}
	churn := float64(fragile) / float64(total)
	rep := Report{
		Name:           CheckSensitivity,
		Status:         StatusPass,
		ViolationCount: fragile,
		Details: []string{
			fmt.Sprintf("estimated churn %.1f%% (%d of %d blocks near a threshold)", churn*100, fragile, total),
		},
	}
	if churn >= sensitivityChurnMax {
		rep.Status = StatusWarn
	}
	return rep
}

func nearBound(b domain.Block, rules validator.Rules) bool {
	within := func(v, bound int) bool {
		d := v - bound
		if d < 0 {
			d = -d
		}
		return d <= sensitivityMarginMin
	}
	switch b.Type {
	case domain.BlockSingle:
		return within(b.SpanMin, rules.SpanRegularMaxMin)
	case domain.BlockDoubleRegular:
		return within(b.SpanMin, rules.SpanRegularMaxMin) ||
			within(b.MaxGapMin, rules.ChainGapMin) || within(b.MaxGapMin, rules.ChainGapMax)
	case domain.BlockDoubleSplit:
		return within(b.SpanMin, rules.SpanSplitMaxMin) ||
			within(b.MaxGapMin, rules.SplitGapMin) || within(b.MaxGapMin, rules.SplitGapMax)
	case domain.BlockTriple:
		return within(b.SpanMin, rules.Span3erMaxMin) ||
			within(b.MaxGapMin, rules.ChainGapMin) || within(b.MaxGapMin, rules.ChainGapMax)
	}
	return false
}
