//go:build unix

// Package memlimit applies the hard address-space ceiling of a solver
// process. Bounded duty caps keep normal solves far below it; the ceiling
// is the backstop against duty-set explosion on adversarial inputs.
package memlimit

import (
	"golang.org/x/sys/unix"
)

// Apply sets the address-space limit in megabytes. A limit of 0 disables
// the ceiling and relies on the container runtime instead.
func Apply(maxMemMB int) error {
	if maxMemMB <= 0 {
		return nil
	}
	limit := uint64(maxMemMB) * 1024 * 1024
	return unix.Setrlimit(unix.RLIMIT_AS, &unix.Rlimit{Cur: limit, Max: limit})
}
