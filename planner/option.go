package planner

import "go.uber.org/zap"

// Option configures Plan.
type Option func(*options)

type options struct {
	widen  int
	logger *zap.Logger
}

// WithWiden retries an exhausted class up to n times, doubling the neighbor
// count on each retry. The default is no retry.
func WithWiden(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.widen = n
		}
	}
}

// WithLogger sets the logger used to report unresolved classes.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}
