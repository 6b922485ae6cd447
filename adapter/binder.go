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

package adapter

import (
	"fmt"
	"reflect"
	"sync"

	"dirpx.dev/opx/apis"
	"dirpx.dev/opx/operation"
	"dirpx.dev/opx/strategy"
	uref "dirpx.dev/opx/utils/reflect"
)

// NewTagBinder returns a Binder that copies `opx:"attr=NAME"` struct fields
// into the operation in field order. Zero values are left out, so an unset
// attribute keeps the server default.
func NewTagBinder() apis.Binder {
	return &tagBinder{}
}

type tagBinder struct {
	plans sync.Map // map[reflect.Type]plan
}

type attrField struct {
	name  string
	index []int
}

type plan struct {
	fields []attrField
	err    error
}

// Bind implements apis.Binder. Non-struct entities have no attributes.
func (b *tagBinder) Bind(entity any, op *operation.Operation) error {
	v := uref.Indirect(reflect.ValueOf(entity))
	if !v.IsValid() || v.Kind() != reflect.Struct {
		return nil
	}
	p := b.planFor(v.Type())
	if p.err != nil {
		return p.err
	}
	for _, f := range p.fields {
		fv, err := v.FieldByIndexErr(f.index)
		if err != nil || fv.IsZero() {
			continue
		}
		if fv.Kind() == reflect.Ptr {
			fv = fv.Elem()
		}
		if err := op.Set(f.name, fv.Interface()); err != nil {
			return err
		}
	}
	return nil
}

func (b *tagBinder) planFor(t reflect.Type) plan {
	if v, ok := b.plans.Load(t); ok {
		return v.(plan)
	}
	p := buildPlan(t)
	v, _ := b.plans.LoadOrStore(t, p)
	return v.(plan)
}

func buildPlan(t reflect.Type) plan {
	var p plan
	for _, f := range reflect.VisibleFields(t) {
		raw, ok := f.Tag.Lookup(strategy.TagKey)
		if !ok {
			continue
		}
		tag, err := strategy.ParseTag(raw)
		if err != nil {
			return plan{err: fmt.Errorf("%v.%s: %w", t, f.Name, err)}
		}
		if tag.Attr == "" {
			continue
		}
		if !f.IsExported() {
			return plan{err: fmt.Errorf("%w: attribute %v.%s must be exported", strategy.ErrInvalidTag, t, f.Name)}
		}
		p.fields = append(p.fields, attrField{name: tag.Attr, index: f.Index})
	}
	return p
}
