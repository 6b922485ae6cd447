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

package adapter_test

import (
	"errors"
	"reflect"
	"runtime"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dirpx.dev/opx/adapter"
	"dirpx.dev/opx/address"
	"dirpx.dev/opx/apis"
	"dirpx.dev/opx/operation"
	"dirpx.dev/opx/strategy"
)

type xaDataSource struct {
	_        struct{} `opx:"address=xa-data-source=*"`
	Name     string   `opx:"key"`
	JNDIName string   `opx:"attr=jndi-name"`
	Enabled  *bool    `opx:"attr=enabled"`
	MinPool  int      `opx:"attr=min-pool-size"`
	Note     string
}

type hidden struct {
	secret string `opx:"attr=secret"`
}

type badTag struct {
	Value string `opx:"attr="`
}

var dsPath = address.Empty.Append("subsystem", "datasources").Append("xa-data-source", "myDS")

func TestAdapt_NoBinder(t *testing.T) {
	a := adapter.New(reflect.TypeOf(xaDataSource{}), nil)
	op, err := a.Adapt(&xaDataSource{JNDIName: "ignored"}, dsPath)
	require.NoError(t, err)
	assert.Equal(t, operation.Add, op.Verb)
	assert.True(t, op.Address.Equal(dsPath))
	assert.Equal(t, 0, op.Len())
	assert.Equal(t, reflect.TypeOf(xaDataSource{}), a.Type())
}

func TestAdapt_BinderErrorKeepsOperation(t *testing.T) {
	boom := errors.New("boom")
	a := adapter.New(reflect.TypeOf(xaDataSource{}), apis.BinderFunc(func(any, *operation.Operation) error {
		return boom
	}))
	op, err := a.Adapt(&xaDataSource{}, dsPath)
	require.ErrorIs(t, err, adapter.ErrAttributeBinding)
	require.ErrorIs(t, err, boom)
	assert.Equal(t, "add /subsystem=datasources/xa-data-source=myDS", op.String())
}

func TestTagBinder(t *testing.T) {
	enabled := false
	a := adapter.New(reflect.TypeOf(xaDataSource{}), adapter.NewTagBinder())
	op, err := a.Adapt(&xaDataSource{Name: "myDS", JNDIName: "java:/myDS", Enabled: &enabled, Note: "n"}, dsPath)
	require.NoError(t, err)

	// Non-nil pointer to a zero value is set; zero MinPool is not.
	assert.Equal(t, []operation.Attribute{
		{Name: "jndi-name", Value: "java:/myDS"},
		{Name: "enabled", Value: false},
	}, op.Attributes())

	// Values work as well as pointers.
	op, err = a.Adapt(xaDataSource{MinPool: 5}, dsPath)
	require.NoError(t, err)
	v, ok := op.Get("min-pool-size")
	require.True(t, ok)
	assert.Equal(t, 5, v)
}

func TestTagBinder_Errors(t *testing.T) {
	b := adapter.NewTagBinder()

	op := operation.New(operation.Add, address.Empty)
	err := b.Bind(&hidden{secret: "x"}, &op)
	require.ErrorIs(t, err, strategy.ErrInvalidTag)

	err = b.Bind(badTag{Value: "x"}, &op)
	require.ErrorIs(t, err, strategy.ErrInvalidTag)

	// Non-structs carry no attributes.
	require.NoError(t, b.Bind("plain", &op))
	require.NoError(t, b.Bind((*xaDataSource)(nil), &op))
	assert.Equal(t, 0, op.Len())
}

func TestChain(t *testing.T) {
	calls := 0
	first := apis.BinderFunc(func(_ any, op *operation.Operation) error {
		calls++
		return op.Set("first", 1)
	})
	failing := apis.BinderFunc(func(any, *operation.Operation) error {
		calls++
		return errors.New("stop")
	})
	never := apis.BinderFunc(func(any, *operation.Operation) error {
		calls++
		return nil
	})

	op := operation.New(operation.Add, address.Empty)
	err := adapter.Chain(first, nil, failing, never).Bind(struct{}{}, &op)
	require.Error(t, err)
	assert.Equal(t, 2, calls)
	assert.Equal(t, 1, op.Len())
}

func TestCache_OnePerType(t *testing.T) {
	c := adapter.NewCache(nil)
	typ := reflect.TypeOf(xaDataSource{})

	workers := runtime.GOMAXPROCS(0) * 4
	got := make([]*adapter.Adapter, workers)
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func(i int) {
			defer wg.Done()
			got[i] = c.For(typ)
		}(i)
	}
	wg.Wait()

	for i := 1; i < workers; i++ {
		assert.Same(t, got[0], got[i])
	}
	assert.Equal(t, 1, c.Len())

	c.For(reflect.TypeOf(hidden{}))
	assert.Equal(t, 2, c.Len())
}
