package unwind

import (
	"github.com/joeycumines/logiface"
)

// Scope is the synchronous variant of the deferred-execution handle. It owns
// an ordered stack of cleanup actions, registered via [Scope.Defer], and the
// failure captured from the body of an in-flight invocation, accessible via
// [Scope.Recover]. Callables produced by [Wrap] drain the stack on the way
// out, see the package documentation for the full protocol.
//
// The zero value is ready for use. Use [NewScope] if configuration (e.g.
// [WithLogger]) is required.
//
// A Scope is owned by a single logical call chain, and is not safe for
// concurrent use. The active flag detects re-entrant invocations, it does not
// serialize them - a second call chain entering mid-flight is rejected with
// [*NestedInvocationError], not queued.
type Scope struct {
	logger  *logiface.Logger[logiface.Event]
	actions []func() error
	failure error
	active  bool
}

// NewScope initializes a new Scope, using the provided options. Nil options
// are skipped.
func NewScope(opts ...Option) (*Scope, error) {
	cfg, err := resolveOptions(opts)
	if err != nil {
		return nil, err
	}
	return &Scope{logger: cfg.logger}, nil
}

// Defer registers a cleanup action, to run when the in-flight (or next)
// wrapped invocation finishes. Actions run in reverse registration order.
// A nil action will cause a panic.
func (x *Scope) Defer(action func() error) {
	if action == nil {
		panic(`unwind: nil action`)
	}
	x.actions = append(x.actions, action)
}

// Recover returns the failure captured from the wrapped body, clearing it so
// the wrapped call resolves without error, or nil if there is none. The first
// caller wins - later calls within the same drain observe nil.
//
// Recover is only meaningful from within a deferred action, during the drain
// of a failed invocation.
func (x *Scope) Recover() error {
	err := x.failure
	x.failure = nil
	if err != nil {
		x.logger.Debug().
			Err(err).
			Log(`failure recovered`)
	}
	return err
}

// Len returns the number of pending deferred actions.
func (x *Scope) Len() int {
	return len(x.actions)
}

// Wrap produces a callable that runs body under the scope's protocol: the
// body's failure (if any) is captured, the deferred stack is drained in
// reverse registration order, and the call returns the body's result
// unchanged, the captured failure if no action recovered it, or the zero
// value if one did. See the package documentation for the full protocol,
// including the [*ExecutionError] and [*NestedInvocationError] failure modes.
//
// A nil scope or body will cause a panic.
func Wrap[V any](s *Scope, body func() (V, error)) func() (V, error) {
	if s == nil {
		panic(`unwind: nil scope`)
	}
	if body == nil {
		panic(`unwind: nil body`)
	}
	return func() (V, error) {
		var zero V

		if s.active {
			return zero, &NestedInvocationError{}
		}
		s.active = true
		s.failure = nil
		defer func() {
			// the stack never persists across invocations - this also drops
			// actions abandoned by a failed drain
			clear(s.actions)
			s.actions = s.actions[:0]
			s.active = false
		}()

		v, err := body()
		if err != nil {
			s.failure = err
			s.logger.Debug().
				Err(err).
				Int(`pending`, len(s.actions)).
				Log(`failure captured`)
			if err := s.drain(); err != nil {
				return zero, err
			}
			if s.failure != nil {
				return zero, s.failure
			}
			return zero, nil
		}

		if err := s.drain(); err != nil {
			return zero, err
		}
		return v, nil
	}
}

// WrapErr is a convenience variant of [Wrap], for bodies without a result
// value.
func WrapErr(s *Scope, body func() error) func() error {
	if body == nil {
		panic(`unwind: nil body`)
	}
	wrapped := Wrap(s, func() (struct{}, error) {
		return struct{}{}, body()
	})
	return func() error {
		_, err := wrapped()
		return err
	}
}

// drain pops and runs every pending action, most recent first. On the first
// action failure it stops, leaving deeper actions on the stack (the caller
// discards them), and returns an *ExecutionError.
func (x *Scope) drain() error {
	for len(x.actions) != 0 {
		i := len(x.actions) - 1
		action := x.actions[i]
		x.actions[i] = nil
		x.actions = x.actions[:i]
		if err := action(); err != nil {
			x.logger.Err().
				Err(err).
				Int(`abandoned`, i).
				Log(`deferred action failed`)
			return &ExecutionError{Cause: err}
		}
	}
	return nil
}
