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

package operation_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"dirpx.dev/opx/address"
	"dirpx.dev/opx/operation"
)

func newOp(t *testing.T) operation.Operation {
	t.Helper()
	op := operation.New(operation.Add, address.Empty.Append("subsystem", "datasources").Append("xa-data-source", "myDS"))
	require.NoError(t, op.Set("jndi-name", "java:/myDS"))
	require.NoError(t, op.Set("enabled", true))
	return op
}

func TestSetGet(t *testing.T) {
	op := newOp(t)
	require.NoError(t, op.Set("jndi-name", "java:/other"))

	v, ok := op.Get("jndi-name")
	require.True(t, ok)
	assert.Equal(t, "java:/other", v)

	_, ok = op.Get("missing")
	assert.False(t, ok)

	attrs := op.Attributes()
	require.Len(t, attrs, 2)
	assert.Equal(t, "jndi-name", attrs[0].Name, "re-set keeps position")
	assert.Equal(t, "enabled", attrs[1].Name)
	assert.Equal(t, 2, op.Len())
}

func TestSet_ReservedNames(t *testing.T) {
	op := operation.New(operation.Add, address.Empty)
	assert.Error(t, op.Set(operation.KeyOperation, "remove"))
	assert.Error(t, op.Set(operation.KeyAddress, "x"))
	assert.Equal(t, 0, op.Len())
}

func TestString(t *testing.T) {
	assert.Equal(t, "add /subsystem=datasources/xa-data-source=myDS", newOp(t).String())
}

func TestMarshalJSON_Order(t *testing.T) {
	b, err := newOp(t).MarshalJSON()
	require.NoError(t, err)
	s := string(b)
	assert.Equal(t,
		`{"operation":"add","address":[{"subsystem":"datasources"},{"xa-data-source":"myDS"}],"jndi-name":"java:/myDS","enabled":true}`,
		s)
}

func TestMarshalJSON_UnsupportedValue(t *testing.T) {
	op := operation.New(operation.Add, address.Empty)
	require.NoError(t, op.Set("bad", make(chan int)))
	_, err := op.MarshalJSON()
	assert.Error(t, err)
}

func TestMarshalYAML_Order(t *testing.T) {
	b, err := yaml.Marshal(newOp(t))
	require.NoError(t, err)
	s := string(b)

	iOp := strings.Index(s, "operation: add")
	iAddr := strings.Index(s, "address:")
	iJndi := strings.Index(s, "jndi-name:")
	iEnabled := strings.Index(s, "enabled:")
	require.True(t, iOp >= 0 && iAddr >= 0 && iJndi >= 0 && iEnabled >= 0, s)
	assert.True(t, iOp < iAddr && iAddr < iJndi && iJndi < iEnabled, s)
}

func TestMarshalCBOR_Decodes(t *testing.T) {
	b, err := newOp(t).MarshalCBOR()
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, cbor.Unmarshal(b, &got))
	assert.Equal(t, "add", got["operation"])
	assert.Equal(t, "java:/myDS", got["jndi-name"])
	assert.Equal(t, true, got["enabled"])
	assert.Len(t, got["address"], 2)
}

func TestMarshalCBOR_ManyAttributes(t *testing.T) {
	op := operation.New(operation.Add, address.Empty.Append("a", "b"))
	for i := 0; i < 40; i++ {
		require.NoError(t, op.Set(fmt.Sprintf("attr-%02d", i), i))
	}
	b, err := op.MarshalCBOR()
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, cbor.Unmarshal(b, &got))
	assert.Len(t, got, 42)
	assert.EqualValues(t, 39, got["attr-39"])
}
