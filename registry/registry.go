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

package registry

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"dirpx.dev/opx/address"
	"dirpx.dev/opx/apis"
	"dirpx.dev/opx/config"
	uref "dirpx.dev/opx/utils/reflect"
)

var (
	// ErrNilType is returned when a nil reflect.Type is provided.
	ErrNilType = errors.New("opx(registry): nil reflect.Type provided")
	// ErrEmptyAddress is returned when a descriptor has no address declaration.
	ErrEmptyAddress = errors.New("opx(registry): empty address declaration")
	// ErrConflictingRegistration indicates an attempt to register a type twice.
	ErrConflictingRegistration = errors.New("opx(registry): conflicting type registration")
)

// New constructs a Registry that normalizes types according to cfg.
// Only MaxUnwrap is used here.
func New(cfg apis.Config) apis.Registry {
	if cfg.MaxUnwrap <= 0 {
		cfg.MaxUnwrap = config.DefaultMaxUnwrap
	}
	return &registry{cfg: cfg}
}

// registry is a simple Registry implementation backed by sync.Map.
type registry struct {
	// cfg is the configuration used for type normalization.
	cfg apis.Config
	// mu guards write-side consistency and counter
	mu sync.Mutex
	// m maps reflect.Type to registered descriptor.
	m sync.Map // map[reflect.Type]apis.Descriptor
	// count tracks the number of registered entries.
	count int
}

// Register associates the named type behind t with d. The address is parsed
// up front so a malformed declaration fails here rather than mid-walk.
func (r *registry) Register(t reflect.Type, d apis.Descriptor) error {
	// Validate inputs early.
	if t == nil {
		return ErrNilType
	}
	if d.Address == "" {
		return ErrEmptyAddress
	}
	if _, err := address.ParseTemplate(d.Address); err != nil {
		return fmt.Errorf("opx(registry): %v: %w", t, err)
	}

	// Normalize to the named entity type.
	b, err := uref.Normalize(t, r.cfg.MaxUnwrap)
	if err != nil {
		return err
	}

	// Fast read path without locking.
	if _, ok := r.m.Load(b); ok {
		return fmt.Errorf("%w: %v", ErrConflictingRegistration, b)
	}

	// Write path: guard with a mutex to keep counter consistent.
	r.mu.Lock()
	defer r.mu.Unlock()

	// Re-check under lock in case another goroutine stored meanwhile.
	if _, ok := r.m.Load(b); ok {
		return fmt.Errorf("%w: %v", ErrConflictingRegistration, b)
	}

	r.m.Store(b, d)
	r.count++
	return nil
}

// Lookup returns the descriptor for a type if present.
func (r *registry) Lookup(t reflect.Type) (apis.Descriptor, bool) {
	if t == nil {
		return apis.Descriptor{}, false
	}
	nt, err := uref.Normalize(t, r.cfg.MaxUnwrap)
	if err != nil {
		return apis.Descriptor{}, false
	}
	if v, ok := r.m.Load(nt); ok {
		return v.(apis.Descriptor), true
	}
	return apis.Descriptor{}, false
}

// Entries returns a snapshot for diagnostics/docs (order is unspecified).
func (r *registry) Entries() []apis.Entry {
	entries := make([]apis.Entry, 0, r.Count())
	r.m.Range(func(key, value any) bool {
		entries = append(entries, apis.Entry{
			Type:       key.(reflect.Type),
			Descriptor: value.(apis.Descriptor),
		})
		return true
	})
	return entries
}

// Count returns the number of registered entries.
func (r *registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}

// Reset clears all registered entries.
func (r *registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.m.Range(func(key, _ any) bool {
		r.m.Delete(key)
		return true
	})
	r.count = 0
}
