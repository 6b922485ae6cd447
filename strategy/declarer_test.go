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

package strategy_test

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dirpx.dev/opx/apis"
	"dirpx.dev/opx/config"
	"dirpx.dev/opx/registry"
	"dirpx.dev/opx/strategy"
)

// valueDeclarer declares itself on the value receiver.
type valueDeclarer struct{ name string }

func (valueDeclarer) OpxDescriptor() apis.Descriptor {
	return apis.Descriptor{Address: "subsystem=value"}
}

// ptrDeclarer declares itself on the pointer receiver and is Keyed.
type ptrDeclarer struct{ name string }

func (*ptrDeclarer) OpxDescriptor() apis.Descriptor {
	return apis.Descriptor{Address: "thing=*"}
}

func (p *ptrDeclarer) OpxKey() string { return p.name }

// explicitKey declares its own key; Keyed must not override it.
type explicitKey struct{}

func (explicitKey) OpxDescriptor() apis.Descriptor {
	return apis.Descriptor{
		Address: "thing=*",
		Key:     func(any) (string, error) { return "explicit", nil },
	}
}

func (explicitKey) OpxKey() string { return "keyed" }

func TestDeclarerStrategy(t *testing.T) {
	s := strategy.NewDeclarerStrategy()

	d, ok, err := s.TryDescribe(reflect.TypeOf(valueDeclarer{}))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "subsystem=value", d.Address)
	assert.Nil(t, d.Key)

	d, ok, err = s.TryDescribe(reflect.TypeOf(ptrDeclarer{}))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "thing=*", d.Address)
	require.NotNil(t, d.Key, "Keyed capability is wired once")

	key, err := d.Key(&ptrDeclarer{name: "p"})
	require.NoError(t, err)
	assert.Equal(t, "p", key)

	// A value whose OpxKey has a pointer receiver still resolves.
	key, err = d.Key(ptrDeclarer{name: "v"})
	require.NoError(t, err)
	assert.Equal(t, "v", key)

	d, ok, err = s.TryDescribe(reflect.TypeOf(explicitKey{}))
	require.NoError(t, err)
	require.True(t, ok)
	key, err = d.Key(explicitKey{})
	require.NoError(t, err)
	assert.Equal(t, "explicit", key)

	_, ok, err = s.TryDescribe(reflect.TypeOf(untagged{}))
	assert.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = s.TryDescribe(nil)
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestRegistryStrategy(t *testing.T) {
	reg := registry.New(config.DefaultConfig())
	require.NoError(t, reg.Register(reflect.TypeOf(untagged{}), apis.Descriptor{Address: "u=1"}))

	s := strategy.NewRegistryStrategy(reg)
	d, ok, err := s.TryDescribe(reflect.TypeOf(&untagged{}))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "u=1", d.Address)

	_, ok, _ = s.TryDescribe(reflect.TypeOf(tagPool{}))
	assert.False(t, ok)

	_, ok, _ = strategy.NewRegistryStrategy(nil).TryDescribe(reflect.TypeOf(untagged{}))
	assert.False(t, ok)
}
