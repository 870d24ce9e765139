package domain

import (
	"fmt"
	"time"
)

// ForecastInput is the solver-facing input: an anchored week plus the tour
// templates to cover. The anchor date pins day index 1 to a Monday, which is
// what freeze-window math and exports hang absolute times on.
type ForecastInput struct {
	WeekAnchorDate time.Time      `json:"week_anchor_date" yaml:"week_anchor_date"`
	Templates      []TourTemplate `json:"templates" yaml:"templates"`
}

// Validate checks the anchor and every template.
func (f ForecastInput) Validate() error {
	if f.WeekAnchorDate.IsZero() {
		return NewDomainError(ErrCodeInvalidInput, "week_anchor_date is required", nil)
	}
	if f.WeekAnchorDate.Weekday() != time.Monday {
		return NewDomainError(ErrCodeInvalidInput,
			fmt.Sprintf("week_anchor_date %s is not a Monday", f.WeekAnchorDate.Format("2006-01-02")), nil)
	}
	for i, t := range f.Templates {
		if err := t.Validate(); err != nil {
			return NewDomainError(ErrCodeInvalidInput, fmt.Sprintf("template %d invalid", i), err)
		}
	}
	return nil
}

// InstanceStart returns the absolute wall-clock start of an instance,
// anchored on the forecast week.
func (f ForecastInput) InstanceStart(inst TourInstance) time.Time {
	return f.WeekAnchorDate.AddDate(0, 0, int(inst.Day-1)).
		Add(time.Duration(inst.StartMin) * time.Minute)
}

// PriorAssignment is the locked (driver, block) pair a frozen instance keeps
// from the previous accepted plan.
type PriorAssignment struct {
	DriverIndex int    `json:"driver_index"`
	BlockID     string `json:"block_id"`
}

// FreezeContext carries the last locked plan's assignments, keyed by
// instance ID, for the freeze-window overlay.
type FreezeContext struct {
	Assignments map[string]PriorAssignment `json:"assignments"`
}

// FreezeOverrideEvent records a deliberate re-solve of frozen instances.
// Overrides are always auditable: actor, reason and affected IDs.
type FreezeOverrideEvent struct {
	EventID     string    `json:"event_id"`
	Actor       string    `json:"actor"`
	Reason      string    `json:"reason"`
	InstanceIDs []string  `json:"instance_ids"`
	At          time.Time `json:"at"`
}
