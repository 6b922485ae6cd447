/*
   Copyright 2025 The DIRPX Authors.

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

package config

import (
	"dirpx.dev/opx/apis"
)

const (
	// DefaultMaxDepth represents the default for MaxDepth.
	// Entity trees are a handful of levels deep; 64 only trips on cycles.
	DefaultMaxDepth = 64
	// DefaultMaxUnwrap represents the default for MaxUnwrap.
	// A value of 8 should be sufficient for all practical purposes.
	DefaultMaxUnwrap = 8
	// DefaultStrict represents the default for Strict.
	// Node-local failures are recorded, not fatal.
	DefaultStrict = false
	// DefaultKeyPolicy represents the default for KeyPolicy.
	DefaultKeyPolicy = apis.KeyFallback
)

// NewConfig constructs an apis.Config from the given options.
func NewConfig(opts ...Option) apis.Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return normalize(cfg)
}

// DefaultConfig is the default configuration used when none is provided.
func DefaultConfig() apis.Config {
	return apis.Config{
		MaxDepth:  DefaultMaxDepth,
		MaxUnwrap: DefaultMaxUnwrap,
		Strict:    DefaultStrict,
		KeyPolicy: DefaultKeyPolicy,
	}
}

// normalize resets out-of-range values to their defaults.
func normalize(cfg apis.Config) apis.Config {
	if cfg.MaxDepth <= 0 {
		cfg.MaxDepth = DefaultMaxDepth
	}
	if cfg.MaxUnwrap <= 0 {
		cfg.MaxUnwrap = DefaultMaxUnwrap
	}
	return cfg
}

// Option is a functional option that mutates an apis.Config during construction.
type Option func(*apis.Config)

// WithMaxDepth sets the MaxDepth option.
// A non-positive value resets to the default.
func WithMaxDepth(depth int) Option {
	return func(c *apis.Config) {
		c.MaxDepth = depth
	}
}

// WithMaxUnwrap sets the MaxUnwrap option.
// A non-positive value resets to the default.
func WithMaxUnwrap(max int) Option {
	return func(c *apis.Config) {
		c.MaxUnwrap = max
	}
}

// WithStrict sets the Strict option.
func WithStrict(strict bool) Option {
	return func(c *apis.Config) {
		c.Strict = strict
	}
}

// WithKeyPolicy sets the KeyPolicy option.
func WithKeyPolicy(p apis.KeyPolicy) Option {
	return func(c *apis.Config) {
		c.KeyPolicy = p
	}
}
