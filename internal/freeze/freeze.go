// Package freeze masks tour instances inside the freeze window as
// immutable. It is a filter applied before solving and a merge applied
// after; the solvers never see an is-frozen flag.
package freeze

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/solvereign/solvereign/internal/domain"
)

// Classification splits the instance set for one solve.
type Classification struct {
	// Frozen instances keep their prior assignment.
	Frozen []domain.TourInstance
	// Unfrozen instances are fair game for resolving.
	Unfrozen []domain.TourInstance
	// MissingPrior lists frozen instances without a locked assignment
	// (first-ever solve inside the window); they are solved normally and
	// an advisory warning is emitted.
	MissingPrior []string
}

// Overlay is the freeze context of one solve invocation.
type Overlay struct {
	Now           time.Time
	FreezeMinutes int
	Prior         *domain.FreezeContext
}

// Classify partitions the instances. An instance is frozen when its
// absolute start, anchored on the forecast week, lies less than the cutoff
// ahead of now.
func (o Overlay) Classify(forecast domain.ForecastInput, instances []domain.TourInstance) Classification {
	var cls Classification
	cutoff := time.Duration(o.FreezeMinutes) * time.Minute
	for _, inst := range instances {
		start := forecast.InstanceStart(inst)
		if start.Sub(o.Now) >= cutoff {
			cls.Unfrozen = append(cls.Unfrozen, inst)
			continue
		}
		if o.Prior == nil {
			cls.Unfrozen = append(cls.Unfrozen, inst)
			cls.MissingPrior = append(cls.MissingPrior, inst.ID)
			continue
		}
		if _, ok := o.Prior.Assignments[inst.ID]; !ok {
			cls.Unfrozen = append(cls.Unfrozen, inst)
			cls.MissingPrior = append(cls.MissingPrior, inst.ID)
			continue
		}
		cls.Frozen = append(cls.Frozen, inst)
	}
	sort.Strings(cls.MissingPrior)
	return cls
}

// MergeFrozen rebuilds the frozen instances' locked rosters and appends
// them to the solved rosters. Frozen instances are grouped by their prior
// (driver, block) pair, so the logical assignment survives re-solving.
func (o Overlay) MergeFrozen(solved []domain.Roster, cls Classification) []domain.Roster {
	if len(cls.Frozen) == 0 || o.Prior == nil {
		return solved
	}

	type key struct {
		driver  int
		blockID string
	}
	grouped := make(map[key][]domain.TourInstance)
	var order []key
	for _, inst := range cls.Frozen {
		pa := o.Prior.Assignments[inst.ID]
		k := key{driver: pa.DriverIndex, blockID: pa.BlockID}
		if _, seen := grouped[k]; !seen {
			order = append(order, k)
		}
		grouped[k] = append(grouped[k], inst)
	}
	sort.Slice(order, func(i, j int) bool {
		if order[i].driver != order[j].driver {
			return order[i].driver < order[j].driver
		}
		return order[i].blockID < order[j].blockID
	})

	byDriver := make(map[int][]domain.Block)
	var drivers []int
	for _, k := range order {
		blk := domain.NewBlock(blockTypeFromID(k.blockID), grouped[k][0].Day, grouped[k]...)
		if _, seen := byDriver[k.driver]; !seen {
			drivers = append(drivers, k.driver)
		}
		byDriver[k.driver] = append(byDriver[k.driver], blk)
	}
	sort.Ints(drivers)

	out := append([]domain.Roster(nil), solved...)
	for _, d := range drivers {
		out = append(out, domain.NewRoster(byDriver[d]...))
	}
	return out
}

// NewOverrideEvent records a deliberate re-solve of frozen instances.
func NewOverrideEvent(actor, reason string, instanceIDs []string, now time.Time) domain.FreezeOverrideEvent {
	ids := append([]string(nil), instanceIDs...)
	sort.Strings(ids)
	return domain.FreezeOverrideEvent{
		EventID:     uuid.NewString(),
		Actor:       actor,
		Reason:      reason,
		InstanceIDs: ids,
		At:          now,
	}
}

// blockTypeFromID recovers the block type from the canonical ID prefix.
func blockTypeFromID(id string) domain.BlockType {
	switch {
	case strings.HasPrefix(id, "B3-"):
		return domain.BlockTriple
	case strings.HasPrefix(id, "B2R-"):
		return domain.BlockDoubleRegular
	case strings.HasPrefix(id, "B2S-"):
		return domain.BlockDoubleSplit
	default:
		return domain.BlockSingle
	}
}
