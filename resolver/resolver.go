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

package resolver

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"sync"

	"golang.org/x/sync/singleflight"

	"dirpx.dev/opx/address"
	"dirpx.dev/opx/apis"
	"dirpx.dev/opx/config"
	uref "dirpx.dev/opx/utils/reflect"
)

var (
	// ErrNilType is returned when a nil reflect.Type is provided.
	ErrNilType = errors.New("opx(resolver): nil reflect.Type provided")
	// ErrMissingAddressDeclaration is returned when no strategy knows a type.
	// There is no sensible default address, so this is fatal for a marshal.
	ErrMissingAddressDeclaration = errors.New("opx(resolver): missing address declaration")
	// ErrMalformedTemplate is returned when a declared address cannot be parsed.
	ErrMalformedTemplate = address.ErrMalformedTemplate
	// ErrInvalidDescriptor is returned for descriptors with unusable accessors.
	ErrInvalidDescriptor = errors.New("opx(resolver): invalid descriptor")
)

// New constructs an apis.Resolver that tries the given strategies in order.
// Nil strategies are ignored. Each distinct type is described at most once,
// even under concurrent first access; results (including failures) are kept
// for the lifetime of the resolver since declarations are static.
func New(cfg apis.Config, strategies ...apis.Strategy) apis.Resolver {
	if cfg.MaxUnwrap <= 0 {
		cfg.MaxUnwrap = config.DefaultMaxUnwrap
	}
	// Filter out nils to avoid nil-interface panics on call sites.
	out := make([]apis.Strategy, 0, len(strategies))
	for _, s := range strategies {
		if s != nil {
			out = append(out, s)
		}
	}
	return &chain{cfg: cfg, strats: out}
}

// chain is an order-preserving, memoizing resolver over a set of strategies.
type chain struct {
	cfg    apis.Config
	strats []apis.Strategy
	// cache maps normalized reflect.Type to resolution.
	cache sync.Map // map[reflect.Type]resolution
	// group collapses concurrent first resolutions of the same type.
	group singleflight.Group
}

// resolution is a memoized outcome.
type resolution struct {
	md  *apis.Metadata
	err error
}

// Resolve returns the metadata for t's named entity type.
func (r *chain) Resolve(t reflect.Type) (*apis.Metadata, error) {
	if t == nil {
		return nil, ErrNilType
	}
	nt, err := uref.Normalize(t, r.cfg.MaxUnwrap)
	if err != nil {
		return nil, fmt.Errorf("%w: %v: %v", ErrMissingAddressDeclaration, t, err)
	}

	for {
		// Fast path: lock-free read.
		if v, ok := r.cache.Load(nt); ok {
			res := v.(resolution)
			return res.md, res.err
		}

		v, _, _ := r.group.Do(typeKey(nt), func() (any, error) {
			// Re-check: another flight may have finished meanwhile.
			if v, ok := r.cache.Load(nt); ok {
				return flight{typ: nt, res: v.(resolution)}, nil
			}
			md, err := r.describe(nt)
			res := resolution{md: md, err: err}
			r.cache.Store(nt, res)
			return flight{typ: nt, res: res}, nil
		})
		// Distinct types may share a key (function-local types, generic
		// instantiations). A joined flight for another type is discarded.
		if f := v.(flight); f.typ == nt {
			return f.res.md, f.res.err
		}
	}
}

// flight is the shared result of one single-flight call.
type flight struct {
	typ reflect.Type
	res resolution
}

// typeKey groups concurrent first resolutions. It is not unique per type;
// callers compare flight.typ.
func typeKey(t reflect.Type) string {
	return t.PkgPath() + "\x00" + t.String()
}

// describe runs the strategy chain and builds the metadata.
func (r *chain) describe(t reflect.Type) (*apis.Metadata, error) {
	for _, s := range r.strats {
		d, ok, err := s.TryDescribe(t)
		if err != nil {
			return nil, fmt.Errorf("opx(resolver): describe %v: %w", t, err)
		}
		if ok {
			return Build(t, d)
		}
	}
	return nil, fmt.Errorf("%w: %v", ErrMissingAddressDeclaration, t)
}

// Build validates d and turns it into immutable metadata for t: the address
// is parsed, and singletons and lists are sorted stably by Order.
func Build(t reflect.Type, d apis.Descriptor) (*apis.Metadata, error) {
	if d.Address == "" {
		return nil, fmt.Errorf("%w: %v", ErrMissingAddressDeclaration, t)
	}
	tpl, err := address.ParseTemplate(d.Address)
	if err != nil {
		return nil, fmt.Errorf("opx(resolver): %v: %w", t, err)
	}

	md := &apis.Metadata{
		Type:     t,
		Template: tpl,
		Key:      d.Key,
	}

	md.Singletons = make([]apis.Accessor, len(d.Singletons))
	copy(md.Singletons, d.Singletons)
	for _, a := range md.Singletons {
		if a.Get == nil {
			return nil, fmt.Errorf("%w: %v: singleton %q has no accessor", ErrInvalidDescriptor, t, a.Name)
		}
	}
	sort.SliceStable(md.Singletons, func(i, j int) bool {
		return md.Singletons[i].Order < md.Singletons[j].Order
	})

	if d.Subresources != nil {
		if d.Subresources.Get == nil {
			return nil, fmt.Errorf("%w: %v: subresources %q has no accessor", ErrInvalidDescriptor, t, d.Subresources.Name)
		}
		sub := &apis.Subresources{
			Name:  d.Subresources.Name,
			Get:   d.Subresources.Get,
			Lists: make([]apis.ListAccessor, len(d.Subresources.Lists)),
		}
		copy(sub.Lists, d.Subresources.Lists)
		for _, l := range sub.Lists {
			if l.Get == nil {
				return nil, fmt.Errorf("%w: %v: list %q has no accessor", ErrInvalidDescriptor, t, l.Name)
			}
		}
		sort.SliceStable(sub.Lists, func(i, j int) bool {
			return sub.Lists[i].Order < sub.Lists[j].Order
		})
		md.Subresources = sub
	}

	return md, nil
}
