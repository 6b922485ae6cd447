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

// Package marshal walks an entity tree and emits one "add" operation per
// entity, parents before children.
//
// For every entity the walk resolves its address, emits its operation,
// walks its singletons in declared order and then the members of every
// collection on its subresources holder, in holder order and then
// sequence order. Collection members attach to the container's path; the
// holder itself is never addressed.
//
// Failures split in two classes. Resolution failures (no address, bad
// template, runaway depth) are fatal and Marshal returns no operations.
// Accessor, key and binder failures are node-local: the failing node keeps
// its own operation, loses the children gathered so far, and the failure
// is recorded on the Result. Config.Strict turns the first node-local
// failure into a fatal one.
package marshal

import (
	"fmt"
	"reflect"

	"github.com/rs/zerolog"

	"dirpx.dev/opx/adapter"
	"dirpx.dev/opx/address"
	"dirpx.dev/opx/apis"
	"dirpx.dev/opx/config"
	"dirpx.dev/opx/operation"
	uref "dirpx.dev/opx/utils/reflect"
)

// Marshaller turns entity trees into operation lists. It holds no per-call
// state and is safe for concurrent use.
type Marshaller struct {
	res      apis.Resolver
	cfg      apis.Config
	binder   apis.Binder
	adapters *adapter.Cache
	log      zerolog.Logger
}

// New returns a Marshaller resolving types through res.
func New(res apis.Resolver, opts ...Option) *Marshaller {
	m := &Marshaller{
		res: res,
		cfg: config.DefaultConfig(),
		log: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.adapters == nil {
		m.adapters = adapter.NewCache(m.binder)
	}
	return m
}

// Config returns the walk configuration.
func (m *Marshaller) Config() apis.Config {
	return m.cfg
}

// ResolvePath returns the address of entity below parent.
//
// A wildcard name is replaced by the entity's key when it has one; an
// empty key or a missing key accessor leaves the literal wildcard. When
// the key accessor fails the error wraps ErrKeyResolution and the returned
// path depends on Config.KeyPolicy: the wildcard path for KeyFallback,
// address.Empty for KeyFail. Metadata failures are returned as is.
//
// Only the declaring segment is appended. Parent segments of a
// declaration are never copied, so a root is addressed from parent alone.
func (m *Marshaller) ResolvePath(entity any, parent address.Path) (address.Path, error) {
	md, err := m.res.Resolve(reflect.TypeOf(entity))
	if err != nil {
		return address.Empty, err
	}
	path, kerr := resolvePath(entity, md, parent)
	if kerr != nil {
		err := fmt.Errorf("%w: %v at %s: %w", ErrKeyResolution, md.Type, path, kerr)
		if m.cfg.KeyPolicy == apis.KeyFail {
			return address.Empty, err
		}
		return path, err
	}
	return path, nil
}

// Marshal walks root and returns its operations. A non-nil error is fatal
// and comes with a nil Result; otherwise the Result may still carry
// node-local failures (see Result.Complete).
func (m *Marshaller) Marshal(root any) (*Result, error) {
	if uref.IsNil(root) {
		return nil, ErrNilRoot
	}
	w := &walk{m: m, res: &Result{}}
	ops, err := w.visit(root, address.Empty, 0)
	if err != nil {
		return nil, err
	}
	w.res.Operations = ops
	return w.res, nil
}

// walk is the state of one Marshal call.
type walk struct {
	m   *Marshaller
	res *Result
}

// visit returns the operations of entity's subtree. Only fatal errors are
// returned; node-local ones are recorded via fail.
func (w *walk) visit(entity any, parent address.Path, depth int) ([]operation.Operation, error) {
	if depth > w.m.cfg.MaxDepth {
		return nil, fmt.Errorf("%w: %d levels below %s at %T", ErrDepthExceeded, w.m.cfg.MaxDepth, parent, entity)
	}
	md, err := w.m.res.Resolve(reflect.TypeOf(entity))
	if err != nil {
		return nil, err
	}

	path, kerr := resolvePath(entity, md, parent)
	if kerr != nil {
		if err := w.fail(KindKeyResolution, path, md.Type, "", kerr); err != nil {
			return nil, err
		}
		if w.m.cfg.KeyPolicy == apis.KeyFail {
			return nil, nil
		}
	}

	op, err := w.adapt(entity, md, path)
	if err != nil {
		if err := w.fail(KindAttributeBinding, path, md.Type, "", err); err != nil {
			return nil, err
		}
	}

	children, err := w.children(entity, md, path, depth)
	if err != nil {
		return nil, err
	}
	ops := make([]operation.Operation, 0, 1+len(children))
	ops = append(ops, op)
	return append(ops, children...), nil
}

// children walks singletons, then collections. A node-local failure drops
// everything gathered for this node and yields (nil, nil).
func (w *walk) children(entity any, md *apis.Metadata, path address.Path, depth int) ([]operation.Operation, error) {
	var out []operation.Operation

	for _, acc := range md.Singletons {
		child, err := guard(func() (any, error) { return acc.Get(entity) })
		if err != nil {
			return nil, w.fail(KindSubresourceEnumeration, path, md.Type, acc.Name, err)
		}
		if uref.IsNil(child) {
			continue
		}
		ops, err := w.visit(child, path, depth+1)
		if err != nil {
			return nil, err
		}
		out = append(out, ops...)
	}

	if !md.HasSubresources() {
		return out, nil
	}
	sub := md.Subresources
	holder, err := guard(func() (any, error) { return sub.Get(entity) })
	if err != nil {
		return nil, w.fail(KindSubresourceEnumeration, path, md.Type, sub.Name, err)
	}
	if uref.IsNil(holder) {
		return out, nil
	}

	for _, list := range sub.Lists {
		members, err := guard(func() ([]any, error) { return list.Get(holder) })
		if err != nil {
			return nil, w.fail(KindSubresourceEnumeration, path, md.Type, sub.Name+"."+list.Name, err)
		}
		for i, member := range members {
			if uref.IsNil(member) {
				w.m.log.Debug().
					Str("path", path.String()).
					Str("list", list.Name).
					Int("index", i).
					Msg("skipping nil collection member")
				continue
			}
			ops, err := w.visit(member, path, depth+1)
			if err != nil {
				return nil, err
			}
			out = append(out, ops...)
		}
	}
	return out, nil
}

func (w *walk) adapt(entity any, md *apis.Metadata, path address.Path) (op operation.Operation, err error) {
	a := w.m.adapters.For(md.Type)
	defer func() {
		if r := recover(); r != nil {
			op = operation.New(operation.Add, path)
			err = fmt.Errorf("%w: %w: %v", ErrAttributeBinding, ErrAccessorPanic, r)
		}
	}()
	return a.Adapt(entity, path)
}

// fail records a node-local failure and logs it. In strict mode the
// failure is returned instead, to be propagated as fatal.
func (w *walk) fail(kind Kind, path address.Path, t reflect.Type, accessor string, cause error) error {
	ne := &NodeError{Kind: kind, Path: path, Type: t, Accessor: accessor, Err: cause}
	if w.m.cfg.Strict {
		return ne
	}
	w.res.Errors = append(w.res.Errors, ne)
	w.m.log.Warn().
		Err(cause).
		Str("kind", kind.String()).
		Str("path", path.String()).
		Stringer("type", t).
		Str("accessor", accessor).
		Msg("node-local marshal failure")
	return nil
}

// resolvePath computes the entity's path. On key failure it returns the
// wildcard path together with the cause.
func resolvePath(entity any, md *apis.Metadata, parent address.Path) (address.Path, error) {
	tpl := md.Template
	if !tpl.IsWildcard() || !md.HasKey() {
		return parent.Append(tpl.ResourceType(), tpl.ResourceName()), nil
	}
	key, err := guard(func() (string, error) { return md.Key(entity) })
	if err != nil {
		return parent.Append(tpl.ResourceType(), address.Wildcard), err
	}
	if key == "" {
		key = address.Wildcard
	}
	return parent.Append(tpl.ResourceType(), key), nil
}

// guard calls fn, turning a panic into an ErrAccessorPanic error.
func guard[T any](fn func() (T, error)) (v T, err error) {
	defer func() {
		if r := recover(); r != nil {
			var zero T
			v, err = zero, fmt.Errorf("%w: %v", ErrAccessorPanic, r)
		}
	}()
	return fn()
}
