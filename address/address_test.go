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

package address_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"dirpx.dev/opx/address"
)

func TestParseTemplate(t *testing.T) {
	tests := []struct {
		decl     string
		wantType string
		wantName string
		wantLen  int
	}{
		{"subsystem=datasources", "subsystem", "datasources", 1},
		{"/subsystem=datasources", "subsystem", "datasources", 1},
		{"/subsystem=datasources/xa-data-source=*", "xa-data-source", "*", 2},
		{" /subsystem=datasources/xa-data-source=*/xa-datasource-properties=* ", "xa-datasource-properties", "*", 3},
	}
	for _, tt := range tests {
		t.Run(tt.decl, func(t *testing.T) {
			tpl, err := address.ParseTemplate(tt.decl)
			require.NoError(t, err)
			assert.Equal(t, tt.wantType, tpl.ResourceType())
			assert.Equal(t, tt.wantName, tpl.ResourceName())
			assert.Equal(t, tt.wantLen, tpl.Len())
			assert.Equal(t, tt.wantName == address.Wildcard, tpl.IsWildcard())
		})
	}
}

func TestParseTemplate_Malformed(t *testing.T) {
	for _, decl := range []string{"", "   ", "/", "subsystem", "/subsystem=datasources/", "=x", "x=", "/a=b//c=d"} {
		t.Run(decl, func(t *testing.T) {
			_, err := address.ParseTemplate(decl)
			require.ErrorIs(t, err, address.ErrMalformedTemplate)
		})
	}
}

func TestMustParseTemplate_Panics(t *testing.T) {
	assert.Panics(t, func() { address.MustParseTemplate("nope") })
	assert.NotPanics(t, func() { address.MustParseTemplate("a=b") })
}

func TestTemplate_SegmentsIsACopy(t *testing.T) {
	tpl := address.MustParseTemplate("/a=b/c=*")
	segs := tpl.Segments()
	segs[0].Name = "mutated"
	assert.Equal(t, "b", tpl.Segments()[0].Name)
}

func TestTemplate_Matches(t *testing.T) {
	tpl := address.MustParseTemplate("/subsystem=datasources/xa-data-source=*")

	p := address.Empty.Append("subsystem", "datasources").Append("xa-data-source", "myDS")
	assert.True(t, tpl.Matches(p))
	assert.False(t, tpl.Matches(p.Parent()))
	assert.False(t, tpl.Matches(address.Empty.Append("subsystem", "logging").Append("xa-data-source", "myDS")))
	assert.False(t, tpl.Matches(address.Empty.Append("subsystem", "datasources").Append("data-source", "myDS")))
}

func TestPath_AppendDoesNotAlias(t *testing.T) {
	parent := address.Empty.Append("subsystem", "datasources")
	a := parent.Append("xa-data-source", "a")
	b := parent.Append("xa-data-source", "b")

	assert.Equal(t, "/subsystem=datasources", parent.String())
	assert.Equal(t, "/subsystem=datasources/xa-data-source=a", a.String())
	assert.Equal(t, "/subsystem=datasources/xa-data-source=b", b.String())

	// Extending a parent obtained via Parent must not overwrite the child.
	c := a.Parent().Append("xa-data-source", "c")
	assert.Equal(t, "/subsystem=datasources/xa-data-source=a", a.String())
	assert.Equal(t, "/subsystem=datasources/xa-data-source=c", c.String())
}

func TestPath_Basics(t *testing.T) {
	assert.Equal(t, "/", address.Empty.String())
	assert.Equal(t, 0, address.Empty.Len())
	_, ok := address.Empty.Last()
	assert.False(t, ok)
	assert.True(t, address.Empty.Parent().Equal(address.Empty))

	p := address.Empty.Append("a", "b").Append("c", "d")
	last, ok := p.Last()
	require.True(t, ok)
	assert.Equal(t, address.Segment{Type: "c", Name: "d"}, last)
	assert.Equal(t, "c=d", last.String())
	assert.True(t, p.Equal(address.Empty.Append("a", "b").Append("c", "d")))
	assert.False(t, p.Equal(address.Empty.Append("a", "b")))
}

func TestParsePath(t *testing.T) {
	p, err := address.ParsePath("/subsystem=datasources/xa-data-source=*")
	require.NoError(t, err)
	assert.Equal(t, 2, p.Len())
	assert.Equal(t, "/subsystem=datasources/xa-data-source=*", p.String())

	empty, err := address.ParsePath("/")
	require.NoError(t, err)
	assert.True(t, empty.Equal(address.Empty))

	_, err = address.ParsePath("/a")
	require.ErrorIs(t, err, address.ErrMalformedTemplate)
}

func TestPath_MarshalJSON(t *testing.T) {
	p := address.Empty.Append("subsystem", "datasources").Append("xa-data-source", "my\"DS")
	b, err := p.MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `[{"subsystem":"datasources"},{"xa-data-source":"my\"DS"}]`, string(b))

	b, err = address.Empty.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, "[]", string(b))
}

func TestPath_MarshalYAML(t *testing.T) {
	p := address.Empty.Append("subsystem", "datasources")
	b, err := yaml.Marshal(p)
	require.NoError(t, err)
	assert.Equal(t, "- subsystem: datasources\n", string(b))
}
