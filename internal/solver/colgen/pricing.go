package colgen

import (
	"sort"

	"github.com/rs/zerolog"

	"github.com/solvereign/solvereign/internal/domain"
	"github.com/solvereign/solvereign/internal/validator"
)

// Enumeration caps. They bound the duty set on adversarial inputs; the
// kept subset is chosen by the priority order documented on keepDuties.
const (
	maxDutiesPerDay  = 3000
	topKStarters     = 50
	columnsPerRound  = 200
	maxLabelsPerDuty = 4
	maxExtensions    = 8
)

// pricer lazily generates duties and multi-day rosters against the current
// dual values.
type pricer struct {
	rules validator.Rules
	byDay map[domain.Weekday][]domain.TourInstance
	log   zerolog.Logger

	// telemetry, reset per round
	generated int
	kept      int
	capped    int
}

func newPricer(instances []domain.TourInstance, rules validator.Rules, log zerolog.Logger) *pricer {
	byDay := make(map[domain.Weekday][]domain.TourInstance)
	for _, inst := range instances {
		byDay[inst.Day] = append(byDay[inst.Day], inst)
	}
	for day := range byDay {
		domain.SortInstances(byDay[day])
	}
	return &pricer{rules: rules, byDay: byDay, log: log}
}

type scoredDuty struct {
	block domain.Block
	gain  float64
	conn  int
}

// dayDuties enumerates 1er/2er/3er candidate blocks for one day, ordered by
// total dual gain. Starters are limited to the top-K instances by dual.
func (p *pricer) dayDuties(day domain.Weekday, duals map[string]float64) []scoredDuty {
	tours := p.byDay[day]
	if len(tours) == 0 {
		return nil
	}

	starters := starterSet(tours, duals, topKStarters)
	var duties []scoredDuty
	emit := func(typ domain.BlockType, members ...domain.TourInstance) {
		b := domain.NewBlock(typ, day, members...)
		if ok, _ := p.rules.ValidateBlock(b); !ok {
			return
		}
		gain := 0.0
		for _, t := range members {
			gain += duals[t.ID]
		}
		duties = append(duties, scoredDuty{block: b, gain: gain})
	}

	for i, t1 := range tours {
		emit(domain.BlockSingle, t1)
		if !starters[t1.ID] {
			continue
		}
		for j := i + 1; j < len(tours); j++ {
			t2 := tours[j]
			if !p.rules.CanChainIntraday(t1, t2) {
				continue
			}
			gap := validator.Gap(t1, t2)
			switch {
			case p.rules.IsRegularGap(gap):
				emit(domain.BlockDoubleRegular, t1, t2)
				for k := j + 1; k < len(tours); k++ {
					t3 := tours[k]
					if p.rules.CanChainIntraday(t2, t3) && p.rules.IsRegularGap(validator.Gap(t2, t3)) {
						emit(domain.BlockTriple, t1, t2, t3)
					}
				}
			case p.rules.IsSplitGap(gap):
				emit(domain.BlockDoubleSplit, t1, t2)
			}
		}
	}
	p.generated += len(duties)
	return duties
}

// keepDuties caps a day's duty set. Kept in priority order: (a) for every
// instance, its best duty, so high-dual bottleneck instances stay covered;
// (b) remaining capacity by (gain, connectivity to the previous day's kept
// duties, block ID).
func (p *pricer) keepDuties(duties []scoredDuty, prevKept []scoredDuty) []scoredDuty {
	sort.Slice(duties, func(i, j int) bool {
		a, b := duties[i], duties[j]
		if a.gain != b.gain {
			return a.gain > b.gain
		}
		return a.block.ID < b.block.ID
	})
	if len(duties) <= maxDutiesPerDay {
		p.kept += len(duties)
		return duties
	}
	p.capped++

	for i := range duties {
		duties[i].conn = connectivity(duties[i].block, prevKept, p.rules)
	}

	kept := make([]scoredDuty, 0, maxDutiesPerDay)
	taken := make(map[string]bool)
	// (a) best duty per instance, instances visited in duty-gain order.
	for _, d := range duties {
		needed := false
		for _, id := range d.block.TourIDs() {
			if !taken["inst:"+id] {
				needed = true
			}
		}
		if !needed || taken[d.block.ID] {
			continue
		}
		for _, id := range d.block.TourIDs() {
			taken["inst:"+id] = true
		}
		taken[d.block.ID] = true
		kept = append(kept, d)
		if len(kept) == maxDutiesPerDay {
			p.kept += len(kept)
			return kept
		}
	}
	// (b) fill by gain, connectivity, block ID.
	fill := make([]scoredDuty, 0, len(duties))
	for _, d := range duties {
		if !taken[d.block.ID] {
			fill = append(fill, d)
		}
	}
	sort.Slice(fill, func(i, j int) bool {
		a, b := fill[i], fill[j]
		if a.gain != b.gain {
			return a.gain > b.gain
		}
		if a.conn != b.conn {
			return a.conn > b.conn
		}
		return a.block.ID < b.block.ID
	})
	kept = append(kept, fill[:maxDutiesPerDay-len(kept)]...)
	p.kept += len(kept)
	return kept
}

// connectivity counts the previous day's kept duties that could legally
// precede the block — a cheap density score for how combinable it is.
func connectivity(b domain.Block, prevKept []scoredDuty, rules validator.Rules) int {
	n := 0
	for _, prev := range prevKept {
		if rules.CanChainDays(prev.block, b) {
			n++
		}
	}
	return n
}

// label is one partial roster in the label-setting walk: a linked chain of
// duties with accumulated work and gain.
type label struct {
	prev  *label
	block domain.Block
	work  int
	days  int
	gain  float64
}

func (l *label) blocks() []domain.Block {
	var out []domain.Block
	for cur := l; cur != nil; cur = cur.prev {
		out = append(out, cur.block)
	}
	// reverse into day order
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// priceRosters runs duty generation per day and a label-setting DAG walk
// across days, returning the columns with negative reduced cost, best
// first, capped per round.
func (p *pricer) priceRosters(duals map[string]float64) []Column {
	p.generated, p.kept, p.capped = 0, 0, 0

	keptByDay := make(map[domain.Weekday][]scoredDuty)
	var prev []scoredDuty
	for day := domain.Monday; day <= domain.Sunday; day++ {
		kept := p.keepDuties(p.dayDuties(day, duals), prev)
		keptByDay[day] = kept
		if len(kept) > 0 {
			prev = kept
		}
	}

	// Labels per duty, best few by gain. Days in order form the DAG
	// layers; edges respect rest, fatigue, hour and day-count caps.
	labelsByDay := make(map[domain.Weekday][]*label)
	var finished []*label
	for day := domain.Monday; day <= domain.Sunday; day++ {
		for _, d := range keptByDay[day] {
			candidates := []*label{{block: d.block, work: d.block.WorkMin, days: 1, gain: d.gain}}
			for earlier := domain.Monday; earlier < day; earlier++ {
				extended := 0
				for _, l := range labelsByDay[earlier] {
					if extended >= maxExtensions {
						break
					}
					if !p.canExtend(l, d.block) {
						continue
					}
					candidates = append(candidates, &label{
						prev:  l,
						block: d.block,
						work:  l.work + d.block.WorkMin,
						days:  l.days + 1,
						gain:  l.gain + d.gain,
					})
					extended++
				}
			}
			sort.Slice(candidates, func(i, j int) bool {
				if candidates[i].gain != candidates[j].gain {
					return candidates[i].gain > candidates[j].gain
				}
				return candidates[i].days > candidates[j].days
			})
			if len(candidates) > maxLabelsPerDuty {
				candidates = candidates[:maxLabelsPerDuty]
			}
			labelsByDay[day] = append(labelsByDay[day], candidates...)
			finished = append(finished, candidates...)
		}
	}

	// Negative reduced cost columns: cost 1 minus accumulated dual gain.
	type priced struct {
		col Column
		rc  float64
	}
	var out []priced
	seen := make(map[string]bool)
	for _, l := range finished {
		rc := regularColumnCost - l.gain
		if rc >= -1e-9 {
			continue
		}
		col := NewColumn(domain.NewRoster(l.blocks()...), false)
		if ok, _ := p.rules.ValidateRoster(col.Roster); !ok {
			continue
		}
		if seen[col.Sig] {
			continue
		}
		seen[col.Sig] = true
		out = append(out, priced{col: col, rc: rc})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].rc != out[j].rc {
			return out[i].rc < out[j].rc
		}
		return out[i].col.Sig < out[j].col.Sig
	})
	if len(out) > columnsPerRound {
		out = out[:columnsPerRound]
	}

	cols := make([]Column, len(out))
	for i, pr := range out {
		cols[i] = pr.col
	}
	p.log.Debug().
		Int("generated", p.generated).
		Int("kept", p.kept).
		Int("days_capped", p.capped).
		Int("negative_rc", len(cols)).
		Msg("pricing round")
	return cols
}

// canExtend checks the cross-day feasibility of appending block b to the
// partial roster of label l.
func (p *pricer) canExtend(l *label, b domain.Block) bool {
	if l.days+1 > p.rules.MaxBlocksPerWeek {
		return false
	}
	if l.work+b.WorkMin > p.rules.MaxWeeklyMin {
		return false
	}
	if !p.rules.CanChainDays(l.block, b) {
		return false
	}
	if p.rules.Fatigue == domain.FatigueNoConsecutiveTriples &&
		b.Day == l.block.Day+1 &&
		l.block.Type == domain.BlockTriple && b.Type == domain.BlockTriple {
		return false
	}
	return true
}

func starterSet(tours []domain.TourInstance, duals map[string]float64, k int) map[string]bool {
	type scored struct {
		id   string
		dual float64
	}
	s := make([]scored, len(tours))
	for i, t := range tours {
		s[i] = scored{id: t.ID, dual: duals[t.ID]}
	}
	sort.Slice(s, func(i, j int) bool {
		if s[i].dual != s[j].dual {
			return s[i].dual > s[j].dual
		}
		return s[i].id < s[j].id
	})
	if len(s) > k {
		s = s[:k]
	}
	set := make(map[string]bool, len(s))
	for _, e := range s {
		set[e.id] = true
	}
	return set
}
