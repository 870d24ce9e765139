// Package hash produces the canonical SHA-256 fingerprints of solver inputs
// and outputs. Identical (input_hash, solver_config_hash) pairs must yield
// identical output_hash; the reproducibility audit verifies this post-hoc.
package hash

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/solvereign/solvereign/internal/domain"
)

// Input fingerprints the canonicalized template list: one line per template
// in signature order, count included.
func Input(templates []domain.TourTemplate) string {
	lines := make([]string, len(templates))
	for i, t := range templates {
		lines[i] = fmt.Sprintf("%s|%d", t.Signature(), t.Count)
	}
	sort.Strings(lines)
	return sum(lines)
}

// Output fingerprints a plan: the sorted (instance_id, synthetic driver
// index, block_id) tuples, with driver indices taken from the plan's
// canonical roster order.
func Output(p domain.Plan) string {
	assignments := p.Assignments()
	lines := make([]string, len(assignments))
	for i, a := range assignments {
		lines[i] = fmt.Sprintf("%s|%d|%s", a.InstanceID, a.DriverIndex, a.BlockID)
	}
	sort.Strings(lines)
	return sum(lines)
}

// Config fingerprints the solver configuration structure.
func Config(cfg domain.SolverConfig) string {
	// json.Marshal emits struct fields in declaration order, which is a
	// canonical serialization for a flat struct.
	data, err := json.Marshal(cfg)
	if err != nil {
		// A flat struct of scalars cannot fail to marshal.
		panic(err)
	}
	s := sha256.Sum256(data)
	return hex.EncodeToString(s[:])
}

func sum(lines []string) string {
	s := sha256.Sum256([]byte(strings.Join(lines, "\n")))
	return hex.EncodeToString(s[:])
}
