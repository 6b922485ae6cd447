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

package marshal_test

import (
	"errors"
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"

	"dirpx.dev/opx/apis"
	"dirpx.dev/opx/config"
	"dirpx.dev/opx/marshal"
	"dirpx.dev/opx/registry"
	"dirpx.dev/opx/resolver"
	"dirpx.dev/opx/strategy"
)

// Tag-declared datasources model.

type dataSources struct {
	_       struct{}      `opx:"address=/subsystem=datasources"`
	Version string        `opx:"attr=version"`
	Pool    *pool         `opx:"singleton,order=2"`
	Default *xaDataSource `opx:"singleton,order=1"`
	Spare   *pool         `opx:"singleton,order=3"`
	Subs    *dsHolder     `opx:"subresources"`
}

type dsHolder struct {
	XA []*xaDataSource `opx:"list"`
}

type pool struct {
	_    struct{} `opx:"address=pool=*"`
	Name string   `opx:"key"`
}

type xaDataSource struct {
	_        struct{}    `opx:"address=/subsystem=datasources/xa-data-source=*"`
	Name     string      `opx:"key"`
	JNDIName string      `opx:"attr=jndi-name"`
	Enabled  *bool       `opx:"attr=enabled"`
	Props    *propHolder `opx:"subresources"`
}

type propHolder struct {
	Items []*xaProp `opx:"list"`
}

type xaProp struct {
	_     struct{} `opx:"address=xa-datasource-properties=*"`
	Value string   `opx:"attr=value"`
}

func boolPtr(b bool) *bool { return &b }

func sampleTree() *dataSources {
	return &dataSources{
		Version: "1",
		Pool:    &pool{Name: "main"},
		Default: &xaDataSource{
			Name:     "defaultDS",
			JNDIName: "java:/Default",
			Enabled:  boolPtr(true),
			Props:    &propHolder{Items: []*xaProp{{Value: "a"}}},
		},
		Subs: &dsHolder{XA: []*xaDataSource{
			{Name: "one"},
			nil,
			{Name: "two", Props: &propHolder{Items: []*xaProp{{Value: "x"}, {Value: "y"}}}},
		}},
	}
}

var sampleTreePaths = []string{
	"add /subsystem=datasources",
	"add /subsystem=datasources/xa-data-source=defaultDS",
	"add /subsystem=datasources/xa-data-source=defaultDS/xa-datasource-properties=*",
	"add /subsystem=datasources/pool=main",
	"add /subsystem=datasources/xa-data-source=one",
	"add /subsystem=datasources/xa-data-source=two",
	"add /subsystem=datasources/xa-data-source=two/xa-datasource-properties=*",
	"add /subsystem=datasources/xa-data-source=two/xa-datasource-properties=*",
}

// Registry-declared model with injectable failures.

type node struct {
	Name         string
	KeyErr       error
	SingletonErr error
	HolderErr    error
	ListErr      error
	Panic        bool
	Child        *node
	Kids         []any
}

func nodeDescriptor() apis.Descriptor {
	return apis.Descriptor{
		Address: "node=*",
		Key: func(e any) (string, error) {
			n := e.(*node)
			if n.KeyErr != nil {
				return "", n.KeyErr
			}
			return n.Name, nil
		},
		Singletons: []apis.Accessor{{
			Name: "Child",
			Get: func(e any) (any, error) {
				n := e.(*node)
				if n.SingletonErr != nil {
					return nil, n.SingletonErr
				}
				return n.Child, nil
			},
		}},
		Subresources: &apis.Subresources{
			Name: "Holder",
			Get: func(e any) (any, error) {
				n := e.(*node)
				if n.Panic {
					panic("holder exploded")
				}
				if n.HolderErr != nil {
					return nil, n.HolderErr
				}
				return n, nil
			},
			Lists: []apis.ListAccessor{{
				Name: "Kids",
				Get: func(h any) ([]any, error) {
					n := h.(*node)
					if n.ListErr != nil {
						return nil, n.ListErr
					}
					return n.Kids, nil
				},
			}},
		},
	}
}

var (
	errBoom = errors.New("boom")
	errKey  = errors.New("no key")
)

func newMarshaller(t *testing.T, opts ...marshal.Option) *marshal.Marshaller {
	t.Helper()
	cfg := config.DefaultConfig()
	reg := registry.New(cfg)
	require.NoError(t, reg.Register(reflect.TypeOf(node{}), nodeDescriptor()))
	res := resolver.New(cfg,
		strategy.NewRegistryStrategy(reg),
		strategy.NewDeclarerStrategy(),
		strategy.NewTagStrategy(),
	)
	return marshal.New(res, opts...)
}

func paths(r *marshal.Result) []string {
	out := make([]string, 0, r.Len())
	for _, op := range r.Operations {
		out = append(out, op.String())
	}
	return out
}
