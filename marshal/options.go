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

package marshal

import (
	"github.com/rs/zerolog"

	"dirpx.dev/opx/adapter"
	"dirpx.dev/opx/apis"
	"dirpx.dev/opx/config"
)

// Option configures a Marshaller.
type Option func(*Marshaller)

// WithConfig sets the walk configuration. Out-of-range values fall back
// to the defaults.
func WithConfig(cfg apis.Config) Option {
	return func(m *Marshaller) {
		if cfg.MaxDepth <= 0 {
			cfg.MaxDepth = config.DefaultMaxDepth
		}
		if cfg.MaxUnwrap <= 0 {
			cfg.MaxUnwrap = config.DefaultMaxUnwrap
		}
		m.cfg = cfg
	}
}

// WithBinder sets the attribute binder used by adapters the Marshaller
// creates. It has no effect together with WithAdapters.
func WithBinder(b apis.Binder) Option {
	return func(m *Marshaller) {
		m.binder = b
	}
}

// WithLogger sets the logger for node-local failures.
func WithLogger(l zerolog.Logger) Option {
	return func(m *Marshaller) {
		m.log = l
	}
}

// WithAdapters shares an adapter cache between marshallers.
func WithAdapters(c *adapter.Cache) Option {
	return func(m *Marshaller) {
		m.adapters = c
	}
}
