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
	"fmt"
	"reflect"

	"dirpx.dev/opx/apis"
)

var (
	declarerType = reflect.TypeOf((*apis.Declarer)(nil)).Elem()
	keyedType    = reflect.TypeOf((*apis.Keyed)(nil)).Elem()
)

// NewDeclarerStrategy creates an apis.Strategy for types implementing
// apis.Declarer (on the value or the pointer receiver).
func NewDeclarerStrategy() apis.Strategy {
	return &declarerStrategy{}
}

// declarerStrategy asks a zero instance of the type for its descriptor.
type declarerStrategy struct{}

// Ensure declarerStrategy implements apis.Strategy.
var _ apis.Strategy = (*declarerStrategy)(nil)

// TryDescribe calls OpxDescriptor on a zero instance of t. If the
// descriptor has no key and the type is apis.Keyed, the key is wired here.
func (*declarerStrategy) TryDescribe(t reflect.Type) (apis.Descriptor, bool, error) {
	if t == nil {
		return apis.Descriptor{}, false, nil
	}
	inst := zeroImplementing(t, declarerType)
	if inst == nil {
		return apis.Descriptor{}, false, nil
	}
	d := inst.(apis.Declarer).OpxDescriptor()
	if d.Key == nil {
		d.Key = keyedKeyFunc(t)
	}
	return d, true, nil
}

// zeroImplementing returns a zero T or a new *T, whichever implements iface.
func zeroImplementing(t reflect.Type, iface reflect.Type) any {
	if t.Implements(iface) {
		if t.Kind() == reflect.Ptr {
			return reflect.New(t.Elem()).Interface()
		}
		return reflect.Zero(t).Interface()
	}
	if t.Kind() != reflect.Ptr && reflect.PointerTo(t).Implements(iface) {
		return reflect.New(t).Interface()
	}
	return nil
}

// keyedKeyFunc returns a KeyFunc backed by apis.Keyed, or nil when neither
// t nor *t implements it.
func keyedKeyFunc(t reflect.Type) apis.KeyFunc {
	if !t.Implements(keyedType) && !reflect.PointerTo(t).Implements(keyedType) {
		return nil
	}
	return func(entity any) (string, error) {
		if k, ok := entity.(apis.Keyed); ok {
			return k.OpxKey(), nil
		}
		// A value whose OpxKey has a pointer receiver: call it on a copy.
		v := reflect.ValueOf(entity)
		if !v.IsValid() {
			return "", fmt.Errorf("opx(strategy): nil entity has no key")
		}
		p := reflect.New(v.Type())
		p.Elem().Set(v)
		if k, ok := p.Interface().(apis.Keyed); ok {
			return k.OpxKey(), nil
		}
		return "", fmt.Errorf("opx(strategy): %T does not implement Keyed", entity)
	}
}
