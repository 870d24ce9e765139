// Package expand turns tour templates into individual tour instances with
// stable IDs. Expansion is idempotent: re-expanding the same template list
// produces byte-identical instance IDs regardless of input order.
package expand

import (
	"github.com/solvereign/solvereign/internal/domain"
)

// Expand emits Count instances per template, ordered by the stable key
// (day, start, end, signature, expansion index).
//
// Templates sharing a canonical signature are merged: their counts add up
// and expansion indices continue across them, so the instance set depends
// only on the canonical content of the forecast.
func Expand(templates []domain.TourTemplate) ([]domain.TourInstance, error) {
	for _, t := range templates {
		if err := t.Validate(); err != nil {
			return nil, err
		}
	}

	// Merge counts by signature first; duplicate templates in a forecast
	// are the same coverage demand stated twice.
	counts := make(map[string]int)
	bySig := make(map[string]domain.TourTemplate)
	for _, t := range templates {
		sig := t.Signature()
		counts[sig] += t.Count
		if _, ok := bySig[sig]; !ok {
			bySig[sig] = t
		}
	}

	var instances []domain.TourInstance
	for sig, t := range bySig {
		for idx := 1; idx <= counts[sig]; idx++ {
			instances = append(instances, domain.TourInstance{
				ID:                domain.InstanceID(sig, idx),
				TemplateSignature: sig,
				ExpansionIndex:    idx,
				Day:               t.Day,
				StartMin:          t.StartMin,
				EndMin:            t.EndMin,
				DurationMin:       t.DurationMin(),
				CrossesMidnight:   t.CrossesMidnight,
				Depot:             t.Depot,
				Skills:            append([]string(nil), t.Skills...),
			})
		}
	}
	domain.SortInstances(instances)
	return instances, nil
}
