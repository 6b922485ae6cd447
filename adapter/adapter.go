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

// Package adapter turns one entity plus its resolved path into one "add"
// operation. Attribute population is delegated to an apis.Binder; the
// adapter guarantees the operation exists and is addressed before the
// binder runs.
package adapter

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"dirpx.dev/opx/address"
	"dirpx.dev/opx/apis"
	"dirpx.dev/opx/operation"
)

// ErrAttributeBinding wraps binder failures.
var ErrAttributeBinding = errors.New("opx(adapter): attribute binding failed")

// Adapter produces operations for entities of one type.
type Adapter struct {
	typ    reflect.Type
	binder apis.Binder
}

// New returns an adapter for t. binder may be nil.
func New(t reflect.Type, binder apis.Binder) *Adapter {
	return &Adapter{typ: t, binder: binder}
}

// Type returns the entity type this adapter serves.
func (a *Adapter) Type() reflect.Type {
	return a.typ
}

// Adapt returns an add operation for path. On binder failure the addressed
// operation is still returned alongside an ErrAttributeBinding error.
func (a *Adapter) Adapt(entity any, path address.Path) (operation.Operation, error) {
	op := operation.New(operation.Add, path)
	if a.binder == nil || entity == nil {
		return op, nil
	}
	if err := a.binder.Bind(entity, &op); err != nil {
		return op, fmt.Errorf("%w: %v at %s: %w", ErrAttributeBinding, a.typ, path, err)
	}
	return op, nil
}

// Cache holds one Adapter per type for the lifetime of the process. The key
// space is the set of entity types, which is fixed at build time.
type Cache struct {
	binder apis.Binder
	m      sync.Map // map[reflect.Type]*Adapter
}

// NewCache returns an empty cache whose adapters use binder.
func NewCache(binder apis.Binder) *Cache {
	return &Cache{binder: binder}
}

// For returns the adapter for t, creating it on first use.
func (c *Cache) For(t reflect.Type) *Adapter {
	if v, ok := c.m.Load(t); ok {
		return v.(*Adapter)
	}
	v, _ := c.m.LoadOrStore(t, New(t, c.binder))
	return v.(*Adapter)
}

// Len returns the number of cached adapters.
func (c *Cache) Len() int {
	n := 0
	c.m.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

// Chain runs binders in order and stops at the first error. Nil binders
// are skipped.
func Chain(binders ...apis.Binder) apis.Binder {
	out := make([]apis.Binder, 0, len(binders))
	for _, b := range binders {
		if b != nil {
			out = append(out, b)
		}
	}
	return apis.BinderFunc(func(entity any, op *operation.Operation) error {
		for _, b := range out {
			if err := b.Bind(entity, op); err != nil {
				return err
			}
		}
		return nil
	})
}
