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

package schema

import "gopkg.in/yaml.v3"

// Property is one named entry of a description section, e.g. an attribute.
type Property struct {
	Name  string
	Value *yaml.Node
}

// Description returns the property's "description" text.
func (p Property) Description() string {
	return Description{node: unwrap(p.Value)}.Text()
}

// Type returns the declared model type, e.g. "STRING". Both the plain
// scalar form and the {"TYPE_MODEL_VALUE": ...} form are understood.
func (p Property) Type() string {
	t := Description{node: unwrap(p.Value)}.lookup(KeyType)
	if t == nil {
		return ""
	}
	switch t.Kind {
	case yaml.ScalarNode:
		return t.Value
	case yaml.MappingNode:
		return Description{node: t}.scalar("TYPE_MODEL_VALUE")
	default:
		return ""
	}
}

// Decode decodes the property value into v.
func (p Property) Decode(v any) error {
	if p.Value == nil {
		return nil
	}
	return p.Value.Decode(v)
}

func properties(m *yaml.Node) []Property {
	if m == nil || m.Kind != yaml.MappingNode {
		return nil
	}
	out := make([]Property, 0, len(m.Content)/2)
	for i := 0; i+1 < len(m.Content); i += 2 {
		out = append(out, Property{Name: m.Content[i].Value, Value: unwrap(m.Content[i+1])})
	}
	return out
}
