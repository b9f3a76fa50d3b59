package strata

import "log/slog"

// options holds the internal configuration for a session.
type options struct {
	logger *slog.Logger
	idFunc func() string
}

// Option defines a functional option for configuring a session.
type Option func(*options)

// defaultOptions returns the default configuration.
func defaultOptions() *options {
	return &options{
		logger: nil,
		idFunc: nil, // newEntityID
	}
}

// WithLogger sets the logger for the session.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithIDFunc overrides local entity-id generation. Useful for
// deterministic ids in tests.
func WithIDFunc(fn func() string) Option {
	return func(o *options) {
		o.idFunc = fn
	}
}
