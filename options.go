package unwind

import (
	"github.com/joeycumines/logiface"
)

// scopeOptions holds configuration shared by Scope and ContextScope creation.
type scopeOptions struct {
	logger *logiface.Logger[logiface.Event]
}

// Option configures a [Scope] or [ContextScope] instance.
type Option interface {
	applyScope(*scopeOptions) error
}

// optionImpl implements Option.
type optionImpl struct {
	applyScopeFunc func(*scopeOptions) error
}

func (o *optionImpl) applyScope(opts *scopeOptions) error {
	return o.applyScopeFunc(opts)
}

// WithLogger attaches a [logiface] logger, used to surface drain and recover
// diagnostics at debug level, and drain failures at error level. A nil logger
// is valid, and disables logging (the default).
func WithLogger(logger *logiface.Logger[logiface.Event]) Option {
	return &optionImpl{func(opts *scopeOptions) error {
		opts.logger = logger
		return nil
	}}
}

// resolveOptions applies Option instances to scopeOptions.
func resolveOptions(opts []Option) (*scopeOptions, error) {
	cfg := &scopeOptions{}
	for _, opt := range opts {
		if opt == nil {
			continue // Skip nil options gracefully
		}
		if err := opt.applyScope(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}
