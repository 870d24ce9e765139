package colgen

import (
	"sort"

	"github.com/solvereign/solvereign/internal/domain"
)

// Column is one candidate roster of the set-partition master, indexed by
// its canonical signature. Its coverage vector is the sorted list of
// instance IDs worked by the roster.
type Column struct {
	Sig       string
	Roster    domain.Roster
	Cost      float64
	Penalty   bool // singleton feasibility column with penalized cost
	Instances []string
}

const (
	// regularColumnCost makes the master objective the driver count.
	regularColumnCost = 1.0
	// penaltyColumnCost keeps singleton fallback columns out of any
	// solution that has a real alternative.
	penaltyColumnCost = 1000.0
)

// NewColumn derives a column from a roster.
func NewColumn(r domain.Roster, penalty bool) Column {
	var ids []string
	for _, b := range r.Blocks {
		ids = append(ids, b.TourIDs()...)
	}
	sort.Strings(ids)
	cost := regularColumnCost
	if penalty {
		cost = penaltyColumnCost
	}
	return Column{
		Sig:       r.Signature(),
		Roster:    r,
		Cost:      cost,
		Penalty:   penalty,
		Instances: ids,
	}
}

// Pool deduplicates columns by signature and remembers insertion order,
// which is the iteration order of every master call.
type Pool struct {
	bySig map[string]Column
	order []string
}

// NewPool creates an empty pool.
func NewPool() *Pool {
	return &Pool{bySig: make(map[string]Column)}
}

// Add inserts the column unless its signature is already pooled.
func (p *Pool) Add(c Column) bool {
	if _, ok := p.bySig[c.Sig]; ok {
		return false
	}
	p.bySig[c.Sig] = c
	p.order = append(p.order, c.Sig)
	return true
}

// Len returns the pool size.
func (p *Pool) Len() int {
	return len(p.order)
}

// Columns returns the pooled columns in insertion order.
func (p *Pool) Columns() []Column {
	out := make([]Column, len(p.order))
	for i, sig := range p.order {
		out[i] = p.bySig[sig]
	}
	return out
}

// Get looks a column up by signature.
func (p *Pool) Get(sig string) (Column, bool) {
	c, ok := p.bySig[sig]
	return c, ok
}

// CoveredInstances returns the set of instance IDs covered by at least one
// pooled column.
func (p *Pool) CoveredInstances() map[string]bool {
	covered := make(map[string]bool)
	for _, sig := range p.order {
		for _, id := range p.bySig[sig].Instances {
			covered[id] = true
		}
	}
	return covered
}
