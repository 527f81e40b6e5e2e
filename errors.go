package unwind

// ExecutionError indicates that a deferred action failed while the stack was
// being drained. Any actions registered before (deeper than) the failed one
// were abandoned without running.
//
// An ExecutionError cannot be suppressed via Recover, and is returned in
// preference to the body's failure, even if that failure had already been
// recovered by an earlier action in the same drain.
type ExecutionError struct {
	// Cause is the error returned by the deferred action.
	Cause error
}

// Error implements the error interface.
func (e *ExecutionError) Error() string {
	if e.Cause == nil {
		return `unwind: deferred action failed`
	}
	return `unwind: deferred action failed: ` + e.Cause.Error()
}

// Unwrap returns the failed action's error, for use with [errors.Is] and
// [errors.As].
func (e *ExecutionError) Unwrap() error {
	return e.Cause
}

// NestedInvocationError indicates that a callable produced by [Wrap] or
// [WrapContext] was called while another invocation on the same scope was
// still in flight. The attempted invocation never starts, and the in-flight
// invocation is unaffected.
type NestedInvocationError struct{}

// Error implements the error interface.
func (e *NestedInvocationError) Error() string {
	return `unwind: nested invocation on an active scope`
}
