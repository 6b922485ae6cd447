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

package strategy

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"dirpx.dev/opx/apis"
	uref "dirpx.dev/opx/utils/reflect"
)

// TagKey is the struct tag key read by the tag strategy and the attribute binder.
const TagKey = "opx"

// ErrInvalidTag is returned for struct tags that cannot be understood.
var ErrInvalidTag = errors.New("opx(strategy): invalid struct tag")

// Tag is a parsed `opx:"..."` struct tag.
//
//	_        struct{}  `opx:"address=/subsystem=datasources"`
//	Name     string    `opx:"key"`
//	Pool     *Pool     `opx:"singleton,order=1"`
//	Subs     Holder    `opx:"subresources"`
//	Props    []*Prop   `opx:"list,order=2"`
//	JNDIName string    `opx:"attr=jndi-name"`
type Tag struct {
	Address      string
	Key          bool
	Singleton    bool
	Subresources bool
	List         bool
	Order        int
	Attr         string
}

// ParseTag parses the value of an opx struct tag. The address option must
// stand alone because declarations contain '=' and '/'.
func ParseTag(s string) (Tag, error) {
	var tag Tag
	s = strings.TrimSpace(s)
	if s == "" {
		return tag, nil
	}
	if rest, ok := strings.CutPrefix(s, "address="); ok {
		if rest == "" {
			return tag, fmt.Errorf("%w: empty address in %q", ErrInvalidTag, s)
		}
		tag.Address = rest
		return tag, nil
	}

	for _, opt := range strings.Split(s, ",") {
		name, val, hasVal := strings.Cut(strings.TrimSpace(opt), "=")
		switch name {
		case "key":
			tag.Key = true
		case "singleton":
			tag.Singleton = true
		case "subresources":
			tag.Subresources = true
		case "list":
			tag.List = true
		case "order":
			n, err := strconv.Atoi(val)
			if !hasVal || err != nil {
				return tag, fmt.Errorf("%w: bad order in %q", ErrInvalidTag, s)
			}
			tag.Order = n
		case "attr":
			if val == "" {
				return tag, fmt.Errorf("%w: empty attr name in %q", ErrInvalidTag, s)
			}
			tag.Attr = val
		default:
			return tag, fmt.Errorf("%w: unknown option %q in %q", ErrInvalidTag, name, s)
		}
	}

	roles := 0
	for _, b := range []bool{tag.Key, tag.Singleton, tag.Subresources, tag.List} {
		if b {
			roles++
		}
	}
	if roles > 1 {
		return tag, fmt.Errorf("%w: conflicting roles in %q", ErrInvalidTag, s)
	}
	return tag, nil
}

// NewTagStrategy creates an apis.Strategy that reads declarations from
// opx struct tags.
func NewTagStrategy() apis.Strategy {
	return &tagStrategy{}
}

// tagStrategy builds descriptors from struct tags via reflection. It runs
// once per type; the resolver memoizes the result.
type tagStrategy struct{}

// Ensure tagStrategy implements apis.Strategy.
var _ apis.Strategy = (*tagStrategy)(nil)

// TryDescribe falls through for non-structs and structs without an
// address tag; broken tags are errors.
func (*tagStrategy) TryDescribe(t reflect.Type) (apis.Descriptor, bool, error) {
	if t == nil || t.Kind() != reflect.Struct {
		return apis.Descriptor{}, false, nil
	}

	var d apis.Descriptor
	for _, f := range reflect.VisibleFields(t) {
		raw, ok := f.Tag.Lookup(TagKey)
		if !ok {
			continue
		}
		tag, err := ParseTag(raw)
		if err != nil {
			return apis.Descriptor{}, false, fmt.Errorf("%v.%s: %w", t, f.Name, err)
		}
		if tag.Address != "" {
			if d.Address != "" {
				return apis.Descriptor{}, false, fmt.Errorf("%w: %v declares more than one address", ErrInvalidTag, t)
			}
			d.Address = tag.Address
			continue
		}
		if (tag.Key || tag.Singleton || tag.Subresources) && !f.IsExported() {
			return apis.Descriptor{}, false, fmt.Errorf("%w: %v.%s must be exported", ErrInvalidTag, t, f.Name)
		}

		switch {
		case tag.Key:
			if f.Type.Kind() != reflect.String {
				return apis.Descriptor{}, false, fmt.Errorf("%w: key %v.%s is not a string", ErrInvalidTag, t, f.Name)
			}
			d.Key = keyField(t, f.Index)
		case tag.Singleton:
			if k := f.Type.Kind(); k != reflect.Ptr && k != reflect.Interface {
				return apis.Descriptor{}, false, fmt.Errorf("%w: singleton %v.%s must be a pointer or interface", ErrInvalidTag, t, f.Name)
			}
			d.Singletons = append(d.Singletons, apis.Accessor{
				Name:  f.Name,
				Order: tag.Order,
				Get:   singletonField(t, f.Index),
			})
		case tag.Subresources:
			if d.Subresources != nil {
				return apis.Descriptor{}, false, fmt.Errorf("%w: %v declares more than one subresources holder", ErrInvalidTag, t)
			}
			sub, err := holderField(t, f)
			if err != nil {
				return apis.Descriptor{}, false, err
			}
			d.Subresources = sub
		}
	}

	if d.Address == "" {
		return apis.Descriptor{}, false, nil
	}
	if d.Key == nil {
		d.Key = keyedKeyFunc(t)
	}
	return d, true, nil
}

// structValue dereferences entity and checks that it is a t.
func structValue(t reflect.Type, entity any) (reflect.Value, error) {
	v := uref.Indirect(reflect.ValueOf(entity))
	if !v.IsValid() {
		return v, fmt.Errorf("opx(strategy): nil %v", t)
	}
	if v.Type() != t {
		return v, fmt.Errorf("opx(strategy): got %v, want %v", v.Type(), t)
	}
	return v, nil
}

func keyField(t reflect.Type, idx []int) apis.KeyFunc {
	return func(entity any) (string, error) {
		v, err := structValue(t, entity)
		if err != nil {
			return "", err
		}
		f, err := v.FieldByIndexErr(idx)
		if err != nil {
			return "", err
		}
		return f.String(), nil
	}
}

func singletonField(t reflect.Type, idx []int) func(any) (any, error) {
	return func(entity any) (any, error) {
		v, err := structValue(t, entity)
		if err != nil {
			return nil, err
		}
		f, err := v.FieldByIndexErr(idx)
		if err != nil {
			return nil, err
		}
		if f.IsNil() {
			return nil, nil
		}
		return f.Interface(), nil
	}
}

// holderField describes a subresources holder field and its list fields.
func holderField(t reflect.Type, f reflect.StructField) (*apis.Subresources, error) {
	ht := f.Type
	if ht.Kind() == reflect.Ptr {
		ht = ht.Elem()
	}
	if ht.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w: subresources %v.%s must be a struct or pointer to struct", ErrInvalidTag, t, f.Name)
	}

	sub := &apis.Subresources{Name: f.Name}
	idx := f.Index
	sub.Get = func(entity any) (any, error) {
		v, err := structValue(t, entity)
		if err != nil {
			return nil, err
		}
		hv, err := v.FieldByIndexErr(idx)
		if err != nil {
			return nil, err
		}
		if hv.Kind() == reflect.Ptr && hv.IsNil() {
			return nil, nil
		}
		return hv.Interface(), nil
	}

	for _, lf := range reflect.VisibleFields(ht) {
		raw, ok := lf.Tag.Lookup(TagKey)
		if !ok {
			continue
		}
		tag, err := ParseTag(raw)
		if err != nil {
			return nil, fmt.Errorf("%v.%s: %w", ht, lf.Name, err)
		}
		if !tag.List {
			continue
		}
		if !lf.IsExported() {
			return nil, fmt.Errorf("%w: list %v.%s must be exported", ErrInvalidTag, ht, lf.Name)
		}
		if k := lf.Type.Kind(); k != reflect.Slice && k != reflect.Array {
			return nil, fmt.Errorf("%w: list %v.%s must be a slice or array", ErrInvalidTag, ht, lf.Name)
		}
		sub.Lists = append(sub.Lists, apis.ListAccessor{
			Name:  lf.Name,
			Order: tag.Order,
			Get:   listField(ht, lf.Index),
		})
	}
	return sub, nil
}

func listField(ht reflect.Type, idx []int) func(any) ([]any, error) {
	return func(holder any) ([]any, error) {
		v, err := structValue(ht, holder)
		if err != nil {
			return nil, err
		}
		lv, err := v.FieldByIndexErr(idx)
		if err != nil {
			return nil, err
		}
		out := make([]any, lv.Len())
		for i := range out {
			out[i] = lv.Index(i).Interface()
		}
		return out, nil
	}
}
