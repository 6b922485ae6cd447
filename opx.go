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

package opx

import (
	"errors"
	"reflect"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"dirpx.dev/opx/adapter"
	"dirpx.dev/opx/address"
	"dirpx.dev/opx/apis"
	"dirpx.dev/opx/builder"
	"dirpx.dev/opx/config"
	"dirpx.dev/opx/marshal"
)

// init publishes the default snapshot.
func init() {
	s := &state{
		cfg: config.DefaultConfig(),
		bld: builder.New(),
		bnd: adapter.NewTagBinder(),
		log: zerolog.Nop(),
	}
	s.reg = s.bld.BuildRegistry(s.cfg, nil, nil)
	s.res = s.bld.BuildResolver(s.cfg, s.reg, nil, nil)
	s.ads = adapter.NewCache(s.bnd)
	publish(s)
}

var (
	// ErrNilRegistry is returned when a builder returns a nil registry.
	ErrNilRegistry = errors.New("opx: builder returned nil registry")
	// ErrNilResolver is returned when a builder returns a nil resolver.
	ErrNilResolver = errors.New("opx: builder returned nil resolver")
)

// Marshal walks root with the process-wide marshaller.
func Marshal(root any) (*marshal.Result, error) {
	return st.Load().mar.Marshal(root)
}

// ResolvePath resolves entity's address below parent with the
// process-wide marshaller.
func ResolvePath(entity any, parent address.Path) (address.Path, error) {
	return st.Load().mar.ResolvePath(entity, parent)
}

// Describe returns the resolved metadata of t.
func Describe(t reflect.Type) (*apis.Metadata, error) {
	return st.Load().res.Resolve(t)
}

// Marshaller returns the process-wide marshaller.
func Marshaller() *marshal.Marshaller {
	return st.Load().mar
}

// Register adds a descriptor for t to the global registry. Unless the
// resolver is pinned it is rebuilt, so types resolved before the call see
// the new declaration.
func Register(t reflect.Type, d apis.Descriptor) error {
	buildMu.Lock()
	defer buildMu.Unlock()

	old := st.Load()
	if err := old.reg.Register(t, d); err != nil {
		return err
	}
	if old.pres {
		return nil
	}
	next := *old
	next.res = old.bld.BuildResolver(old.cfg, old.reg, old.res, old.ext)
	publish(&next)
	return nil
}

// RegisterType is Register for T.
func RegisterType[T any](d apis.Descriptor) error {
	return Register(reflect.TypeOf((*T)(nil)).Elem(), d)
}

// SetAll replaces every component in one step.
//
// Nil arguments leave the corresponding component unchanged, except for
// ext which is always replaced. A nil reg or res is rebuilt and unpinned;
// a non-nil one is pinned.
func SetAll(cfg *apis.Config, ext any, reg apis.Registry, res apis.Resolver, bld apis.Builder) {
	buildMu.Lock()
	defer buildMu.Unlock()

	old := st.Load()
	next := *old
	if cfg != nil {
		next.cfg = *cfg
	}
	next.ext = ext
	if bld != nil {
		next.bld = bld
	}

	next.reg, next.preg = reg, reg != nil
	if reg == nil {
		next.reg = next.bld.BuildRegistry(next.cfg, old.reg, next.ext)
	}
	next.res, next.pres = res, res != nil
	if res == nil {
		next.res = next.bld.BuildResolver(next.cfg, next.reg, old.res, next.ext)
	}
	publish(&next)
}

// Config returns the global configuration.
func Config() apis.Config {
	return st.Load().cfg
}

// SetConfig replaces the configuration and rebuilds non-pinned layers.
func SetConfig(cfg apis.Config) {
	buildMu.Lock()
	defer buildMu.Unlock()

	next := *st.Load()
	next.cfg = cfg
	rebuild(&next)
	publish(&next)
}

// Registry returns the global registry.
func Registry() apis.Registry {
	return st.Load().reg
}

// SetRegistry pins reg as the global registry and rebuilds the resolver
// unless it is pinned. A nil reg is ignored.
func SetRegistry(reg apis.Registry) {
	if reg == nil {
		return
	}

	buildMu.Lock()
	defer buildMu.Unlock()

	next := *st.Load()
	next.reg, next.preg = reg, true
	rebuild(&next)
	publish(&next)
}

// Resolver returns the global resolver.
func Resolver() apis.Resolver {
	return st.Load().res
}

// SetResolver pins res as the global resolver. A nil res is ignored.
func SetResolver(res apis.Resolver) {
	if res == nil {
		return
	}

	buildMu.Lock()
	defer buildMu.Unlock()

	next := *st.Load()
	next.res, next.pres = res, true
	publish(&next)
}

// Builder returns the global builder.
func Builder() apis.Builder {
	return st.Load().bld
}

// SetBuilder replaces the builder and rebuilds non-pinned layers with it.
// A nil b is ignored.
func SetBuilder(b apis.Builder) {
	if b == nil {
		return
	}

	buildMu.Lock()
	defer buildMu.Unlock()

	next := *st.Load()
	next.bld = b
	rebuild(&next)
	publish(&next)
}

// SetExt replaces the extension value and rebuilds non-pinned layers.
func SetExt[T any](ext T) {
	buildMu.Lock()
	defer buildMu.Unlock()

	next := *st.Load()
	next.ext = ext
	rebuild(&next)
	publish(&next)
}

// ExtAs returns the extension value as T.
func ExtAs[T any]() (T, bool) {
	ext, ok := st.Load().ext.(T)
	return ext, ok
}

// Binder returns the global attribute binder.
func Binder() apis.Binder {
	return st.Load().bnd
}

// SetBinder replaces the attribute binder. A nil b disables attribute
// binding.
func SetBinder(b apis.Binder) {
	buildMu.Lock()
	defer buildMu.Unlock()

	next := *st.Load()
	next.bnd = b
	next.ads = adapter.NewCache(b)
	publish(&next)
}

// SetLogger replaces the logger used for node-local failures.
func SetLogger(l zerolog.Logger) {
	buildMu.Lock()
	defer buildMu.Unlock()

	next := *st.Load()
	next.log = l
	publish(&next)
}

// IsRegistryPinned reports whether the registry is pinned.
func IsRegistryPinned() bool {
	return st.Load().preg
}

// PinRegistry stops automatic registry rebuilds.
func PinRegistry() { setPins(ptr(true), nil) }

// UnpinRegistry resumes automatic registry rebuilds.
func UnpinRegistry() { setPins(ptr(false), nil) }

// IsResolverPinned reports whether the resolver is pinned.
func IsResolverPinned() bool {
	return st.Load().pres
}

// PinResolver stops automatic resolver rebuilds.
func PinResolver() { setPins(nil, ptr(true)) }

// UnpinResolver resumes automatic resolver rebuilds.
func UnpinResolver() { setPins(nil, ptr(false)) }

func setPins(preg, pres *bool) {
	buildMu.Lock()
	defer buildMu.Unlock()

	next := *st.Load()
	if preg != nil {
		next.preg = *preg
	}
	if pres != nil {
		next.pres = *pres
	}
	publish(&next)
}

func ptr(b bool) *bool { return &b }

// rebuild refreshes the non-pinned layers of s from its builder.
func rebuild(s *state) {
	old := st.Load()
	if !s.preg {
		s.reg = s.bld.BuildRegistry(s.cfg, old.reg, s.ext)
	}
	if !s.pres {
		s.res = s.bld.BuildResolver(s.cfg, s.reg, old.res, s.ext)
	}
}

// publish checks s, attaches a marshaller and stores it. Callers hold
// buildMu, except init.
func publish(s *state) {
	if s.reg == nil {
		panic(ErrNilRegistry)
	}
	if s.res == nil {
		panic(ErrNilResolver)
	}
	s.mar = marshal.New(s.res,
		marshal.WithConfig(s.cfg),
		marshal.WithAdapters(s.ads),
		marshal.WithLogger(s.log),
	)
	st.Store(s)
}

// buildMu serializes writers so a partially built snapshot is never
// published.
var buildMu sync.Mutex

// st is the current snapshot.
var st atomic.Pointer[state]

// state is an immutable snapshot. Writers copy it, change the copy and
// publish the copy.
type state struct {
	cfg apis.Config
	ext any
	reg apis.Registry
	res apis.Resolver
	bld apis.Builder
	// bnd is the attribute binder; ads caches adapters bound to it.
	bnd apis.Binder
	ads *adapter.Cache
	log zerolog.Logger
	mar *marshal.Marshaller
	// preg and pres pin the registry and resolver against rebuilds.
	preg bool
	pres bool
}
