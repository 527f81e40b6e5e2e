package unwind

import (
	"context"
	"sync/atomic"

	"github.com/joeycumines/logiface"
)

// ContextScope is the context-aware variant of the deferred-execution handle,
// for call chains whose body and cleanup actions may block, e.g. on I/O or
// timers. The drain remains strictly sequential: each action runs to
// completion, including any blocking, before the next is popped.
//
// State is per instance, so independent instances may have invocations in
// flight concurrently without interference - create one ContextScope per
// independent logical call chain. Within an instance the active flag enforces
// single occupancy (checked atomically, so misuse across goroutines is still
// detected), but [ContextScope.Defer] and [ContextScope.Recover] are only
// safe to call from the chain that owns the in-flight invocation.
//
// The zero value is ready for use. Use [NewContextScope] if configuration
// (e.g. [WithLogger]) is required.
//
// The context provided to the callable produced by [WrapContext] is passed
// through to the body and every action. The core imposes no cancellation or
// timeout semantics of its own - cleanup still runs if the context cancels
// mid-flight, and actions choose for themselves whether to respect it.
type ContextScope struct {
	logger  *logiface.Logger[logiface.Event]
	actions []func(context.Context) error
	failure error
	active  atomic.Bool
}

// NewContextScope initializes a new ContextScope, using the provided options.
// Nil options are skipped.
func NewContextScope(opts ...Option) (*ContextScope, error) {
	cfg, err := resolveOptions(opts)
	if err != nil {
		return nil, err
	}
	return &ContextScope{logger: cfg.logger}, nil
}

// Defer registers a cleanup action, to run when the in-flight (or next)
// wrapped invocation finishes. Actions run in reverse registration order,
// and may block. A nil action will cause a panic.
func (x *ContextScope) Defer(action func(ctx context.Context) error) {
	if action == nil {
		panic(`unwind: nil action`)
	}
	x.actions = append(x.actions, action)
}

// Recover returns the failure captured from the wrapped body, clearing it so
// the wrapped call resolves without error, or nil if there is none. The first
// caller wins - later calls within the same drain observe nil.
func (x *ContextScope) Recover() error {
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
func (x *ContextScope) Len() int {
	return len(x.actions)
}

// WrapContext produces a callable that runs body under the scope's protocol,
// propagating ctx to the body and to every deferred action. Semantics are
// otherwise identical to [Wrap], see the package documentation.
//
// A nil scope or body will cause a panic.
func WrapContext[V any](s *ContextScope, body func(ctx context.Context) (V, error)) func(context.Context) (V, error) {
	if s == nil {
		panic(`unwind: nil scope`)
	}
	if body == nil {
		panic(`unwind: nil body`)
	}
	return func(ctx context.Context) (V, error) {
		var zero V

		if !s.active.CompareAndSwap(false, true) {
			return zero, &NestedInvocationError{}
		}
		s.failure = nil
		defer func() {
			// the stack never persists across invocations - this also drops
			// actions abandoned by a failed drain
			clear(s.actions)
			s.actions = s.actions[:0]
			s.active.Store(false)
		}()

		v, err := body(ctx)
		if err != nil {
			s.failure = err
			s.logger.Debug().
				Err(err).
				Int(`pending`, len(s.actions)).
				Log(`failure captured`)
			if err := s.drain(ctx); err != nil {
				return zero, err
			}
			if s.failure != nil {
				return zero, s.failure
			}
			return zero, nil
		}

		if err := s.drain(ctx); err != nil {
			return zero, err
		}
		return v, nil
	}
}

// WrapContextErr is a convenience variant of [WrapContext], for bodies
// without a result value.
func WrapContextErr(s *ContextScope, body func(ctx context.Context) error) func(context.Context) error {
	if body == nil {
		panic(`unwind: nil body`)
	}
	wrapped := WrapContext(s, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, body(ctx)
	})
	return func(ctx context.Context) error {
		_, err := wrapped(ctx)
		return err
	}
}

// drain pops and runs every pending action, most recent first, awaiting each
// to completion before the next. On the first action failure it stops,
// leaving deeper actions on the stack (the caller discards them), and returns
// an *ExecutionError.
func (x *ContextScope) drain(ctx context.Context) error {
	for len(x.actions) != 0 {
		i := len(x.actions) - 1
		action := x.actions[i]
		x.actions[i] = nil
		x.actions = x.actions[:i]
		if err := action(ctx); err != nil {
			x.logger.Err().
				Err(err).
				Int(`abandoned`, i).
				Log(`deferred action failed`)
			return &ExecutionError{Cause: err}
		}
	}
	return nil
}
