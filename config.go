// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package async

// DefaultMaxCoroutineDepth bounds how many StackCoroutine frames may be
// nested on the process-wide depth counter before Resume refuses to start
// a new one.
const DefaultMaxCoroutineDepth = 16

// Config holds the tunables every Task, Promise, and Coroutine in this
// package reads, following the functional-options pattern the rest of the
// retrieved pack uses for event-loop construction.
type Config struct {
	// MaxCoroutineDepth bounds StackCoroutine nesting. Zero means use
	// DefaultMaxCoroutineDepth.
	MaxCoroutineDepth int

	// StrictMode turns ContractViolation returns into panics, a debug-build
	// style assertion mode for catching call-site misuse early.
	StrictMode bool

	// DebugMode captures a creation stack trace on every Task and assigns
	// it a uuid, at a measurable cost; intended for development, not
	// steady-state production use.
	DebugMode bool

	// Logger receives structured diagnostics from the Async Frame runtime
	// and the combinators. A nil Logger disables logging entirely.
	Logger Logger
}

// Option configures a Config in place.
type Option func(*Config)

// WithMaxCoroutineDepth overrides DefaultMaxCoroutineDepth.
func WithMaxCoroutineDepth(n int) Option {
	return func(c *Config) { c.MaxCoroutineDepth = n }
}

// WithStrictMode enables contract-violation panics.
func WithStrictMode(strict bool) Option {
	return func(c *Config) { c.StrictMode = strict }
}

// WithDebugMode enables creation-stack capture and uuid assignment.
func WithDebugMode(debug bool) Option {
	return func(c *Config) { c.DebugMode = debug }
}

// WithLogger sets the logger used for runtime diagnostics.
func WithLogger(l Logger) Option {
	return func(c *Config) { c.Logger = l }
}

// NewConfig builds a Config from options, applying defaults first.
func NewConfig(options ...Option) *Config {
	c := &Config{MaxCoroutineDepth: DefaultMaxCoroutineDepth}
	for _, opt := range options {
		opt(c)
	}
	if c.MaxCoroutineDepth <= 0 {
		c.MaxCoroutineDepth = DefaultMaxCoroutineDepth
	}
	return c
}
