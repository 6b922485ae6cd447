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

package reflect_test

import (
	"errors"
	"reflect"
	"testing"

	uref "dirpx.dev/opx/utils/reflect"
)

type Entity struct{}
type Named int

func TestNormalize(t *testing.T) {
	var e Entity
	pe := &e
	ppe := &pe

	tests := []struct {
		name    string
		in      reflect.Type
		max     int
		want    reflect.Type
		wantErr error
	}{
		{"value", reflect.TypeOf(e), 0, reflect.TypeOf(e), nil},
		{"pointer", reflect.TypeOf(pe), 0, reflect.TypeOf(e), nil},
		{"pointer to pointer", reflect.TypeOf(ppe), 0, reflect.TypeOf(e), nil},
		{"named scalar", reflect.TypeOf(Named(1)), 0, reflect.TypeOf(Named(1)), nil},
		{"unwrap limit", reflect.TypeOf(ppe), 1, nil, uref.ErrReflectTypeNotNamed},
		{"anonymous struct", reflect.TypeOf(struct{ A int }{}), 0, nil, uref.ErrReflectTypeNotNamed},
		{"map", reflect.TypeOf(map[string]Entity{}), 0, nil, uref.ErrReflectTypeNotNamed},
		{"slice", reflect.TypeOf([]Entity{}), 0, nil, uref.ErrReflectTypeNotNamed},
		{"nil", nil, 0, nil, uref.ErrReflectNilType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := uref.Normalize(tt.in, tt.max)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected err: %v", err)
			}
			if got != tt.want {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIndirect(t *testing.T) {
	e := &Entity{}
	if v := uref.Indirect(reflect.ValueOf(e)); v.Type() != reflect.TypeOf(Entity{}) {
		t.Fatalf("Indirect(*Entity) = %v", v.Type())
	}
	var nilp *Entity
	if v := uref.Indirect(reflect.ValueOf(nilp)); v.IsValid() {
		t.Fatalf("Indirect(nil ptr) should be invalid")
	}
	var iface any = e
	if v := uref.Indirect(reflect.ValueOf(&iface)); v.Type() != reflect.TypeOf(Entity{}) {
		t.Fatalf("Indirect(*any) = %v", v.Type())
	}
}

func TestIsNil(t *testing.T) {
	var nilp *Entity
	var nilm map[string]int
	var nils []int
	cases := []struct {
		in   any
		want bool
	}{
		{nil, true},
		{nilp, true},
		{nilm, true},
		{nils, true},
		{&Entity{}, false},
		{Entity{}, false},
		{0, false},
		{"", false},
	}
	for i, c := range cases {
		if got := uref.IsNil(c.in); got != c.want {
			t.Fatalf("case %d: IsNil(%#v) = %v, want %v", i, c.in, got, c.want)
		}
	}
}
