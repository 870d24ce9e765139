package errors

import (
	"fmt"
)

// InputContradictionError means the forecast cannot be satisfied under the
// hard invariants, no matter how tours are assigned. It carries the first
// offending instance IDs and is never retried.
type InputContradictionError struct {
	// InstanceIDs are the first instances proving the contradiction
	InstanceIDs []string
	// Message is the error message
	Message string
}

// Error implements the error interface.
func (e *InputContradictionError) Error() string {
	if len(e.InstanceIDs) > 0 {
		return fmt.Sprintf("input contradiction: %s (first offending instances: %v)", e.Message, e.InstanceIDs)
	}
	return fmt.Sprintf("input contradiction: %s", e.Message)
}

// PartitionError means the partitioner could not form a valid partition.
// This indicates a validator bug or a template with impossible intra-day
// gaps; it is fatal.
type PartitionError struct {
	Day     int
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *PartitionError) Error() string {
	return fmt.Sprintf("partition failure on day %d: %s", e.Day, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *PartitionError) Unwrap() error {
	return e.Cause
}

// BudgetExhaustedError means the wall-clock budget expired. The incumbent,
// if any, is preserved in the returned plan; the caller decides whether to
// retry.
type BudgetExhaustedError struct {
	// Phase is the solver phase that hit the deadline
	Phase string
	// HasIncumbent indicates whether a partial plan is available
	HasIncumbent bool
}

// Error implements the error interface.
func (e *BudgetExhaustedError) Error() string {
	if e.HasIncumbent {
		return fmt.Sprintf("time budget exhausted in %s (incumbent available)", e.Phase)
	}
	return fmt.Sprintf("time budget exhausted in %s (no incumbent)", e.Phase)
}

// InfeasibleError means a solver proved it cannot cover every block within
// its structural limits. It names the first uncoverable block: a structural
// error where the data contradicts the law, not a tuning issue.
type InfeasibleError struct {
	BlockID string
	Message string
}

// Error implements the error interface.
func (e *InfeasibleError) Error() string {
	return fmt.Sprintf("infeasible: %s (first uncoverable block %s)", e.Message, e.BlockID)
}

// AuditFailureError means a solver returned a plan that fails one or more
// audits. Always a defect signal, never a retry condition.
type AuditFailureError struct {
	// FailedChecks are the audit names that reported FAIL
	FailedChecks []string
}

// Error implements the error interface.
func (e *AuditFailureError) Error() string {
	return fmt.Sprintf("plan failed audits: %v", e.FailedChecks)
}

// InternalSolverError means the master back-end returned an unexpected
// status. Fatal for the current solve.
type InternalSolverError struct {
	// BackendStatus is the back-end's own status string
	BackendStatus string
	// Context names the call site
	Context string
	Cause   error
}

// Error implements the error interface.
func (e *InternalSolverError) Error() string {
	return fmt.Sprintf("internal solver error in %s: backend status %q", e.Context, e.BackendStatus)
}

// Unwrap returns the underlying cause of the error.
func (e *InternalSolverError) Unwrap() error {
	return e.Cause
}

// NewInputContradictionError creates a new InputContradictionError.
func NewInputContradictionError(message string, instanceIDs ...string) *InputContradictionError {
	return &InputContradictionError{InstanceIDs: instanceIDs, Message: message}
}

// NewPartitionError creates a new PartitionError.
func NewPartitionError(day int, message string, cause error) *PartitionError {
	return &PartitionError{Day: day, Message: message, Cause: cause}
}

// NewBudgetExhaustedError creates a new BudgetExhaustedError.
func NewBudgetExhaustedError(phase string, hasIncumbent bool) *BudgetExhaustedError {
	return &BudgetExhaustedError{Phase: phase, HasIncumbent: hasIncumbent}
}

// NewInfeasibleError creates a new InfeasibleError.
func NewInfeasibleError(blockID, message string) *InfeasibleError {
	return &InfeasibleError{BlockID: blockID, Message: message}
}

// NewAuditFailureError creates a new AuditFailureError.
func NewAuditFailureError(failedChecks []string) *AuditFailureError {
	return &AuditFailureError{FailedChecks: failedChecks}
}

// NewInternalSolverError creates a new InternalSolverError.
func NewInternalSolverError(context, backendStatus string, cause error) *InternalSolverError {
	return &InternalSolverError{BackendStatus: backendStatus, Context: context, Cause: cause}
}
