// Package unwind provides deferred cleanup actions with LIFO execution and
// error recovery, scoped to an explicit handle rather than the enclosing
// function.
//
// Go's defer statement is bound to the lexical function. This package binds
// cleanup to a [Scope] (or [ContextScope]) instead, so actions registered
// anywhere within a logical call chain run when the wrapped entry point
// finishes, whether it succeeds or fails, and so one of those actions may
// inspect and suppress the failure via [Scope.Recover].
//
// The protocol, for a callable produced by [Wrap] or [WrapContext]:
//
//  1. A second call on a scope whose invocation is still in flight fails
//     immediately with [*NestedInvocationError], without running the body.
//  2. The body runs. Any failure it returns is captured by the scope.
//  3. The deferred stack is drained, strictly most-recent-first, each action
//     completing before the next starts. During the drain, actions may call
//     [Scope.Recover] to claim (and thereby suppress) the captured failure.
//  4. If an action itself fails, the drain stops, deeper actions are
//     abandoned, and the call fails with [*ExecutionError] - this takes
//     precedence even over a failure an earlier action already recovered.
//  5. Otherwise the call returns the body's result, the captured failure if
//     still unclaimed, or the zero value on successful recovery.
//
// A scope supports exactly one logical call chain at a time. Create one
// [ContextScope] per independent chain to run chains concurrently; instances
// do not share state. Neither variant provides cancellation or timeouts -
// race the wrapped call externally if you need them.
package unwind
