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

// Package schema reads resource description documents, the JSON or YAML
// answer of a read-resource-description management operation.
//
// A Description is read-only and keeps the document's key order. Queries
// returning sets return sorted slices.
package schema

import (
	"errors"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

// Well-known description keys.
const (
	KeyAttributes         = "attributes"
	KeyChildren           = "children"
	KeyOperations         = "operations"
	KeyNotifications      = "notifications"
	KeyAccessControl      = "access-control"
	KeyModelDescription   = "model-description"
	KeyDescription        = "description"
	KeyType               = "type"
	KeyOutcome            = "outcome"
	KeyResult             = "result"
	KeyFailureDescription = "failure-description"

	// OutcomeSuccess is the outcome of a successful response.
	OutcomeSuccess = "success"
)

var (
	// ErrNotAnObject is returned for documents whose top level is not a mapping.
	ErrNotAnObject = errors.New("opx(schema): description is not an object")
	// ErrFailedOutcome is returned by FromResponse for unsuccessful responses.
	ErrFailedOutcome = errors.New("opx(schema): operation failed")
	// ErrNoResult is returned by FromResponse when there is nothing to describe.
	ErrNoResult = errors.New("opx(schema): response has no result")
)

// Description is one resource description. The zero value is Empty.
type Description struct {
	node          *yaml.Node
	singleton     bool
	singletonName string
}

// Empty describes nothing; every predicate on it is false.
var Empty = Description{}

// Parse reads a description document.
func Parse(data []byte) (Description, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Empty, fmt.Errorf("opx(schema): parse: %w", err)
	}
	n := unwrap(&doc)
	if n == nil || n.Kind != yaml.MappingNode {
		return Empty, ErrNotAnObject
	}
	return Description{node: n}, nil
}

// FromResponse reads a management response and returns the description in
// its result. A list result comes from wildcard addressing; the first
// entry's result is used.
func FromResponse(data []byte) (Description, error) {
	resp, err := Parse(data)
	if err != nil {
		return Empty, err
	}
	if outcome := resp.scalar(KeyOutcome); outcome != OutcomeSuccess {
		return Empty, fmt.Errorf("%w: %s", ErrFailedOutcome, resp.scalar(KeyFailureDescription))
	}

	result := resp.lookup(KeyResult)
	if result != nil && result.Kind == yaml.SequenceNode {
		if len(result.Content) == 0 {
			return Empty, ErrNoResult
		}
		result = Description{node: unwrap(result.Content[0])}.lookup(KeyResult)
	}
	if result == nil || isNull(result) {
		return Empty, ErrNoResult
	}
	if result.Kind != yaml.MappingNode {
		return Empty, ErrNotAnObject
	}
	return Description{node: result}, nil
}

// Load reads either a management response or a bare description,
// depending on whether the document carries an outcome.
func Load(data []byte) (Description, error) {
	d, err := Parse(data)
	if err != nil {
		return Empty, err
	}
	if d.lookup(KeyOutcome) != nil {
		return FromResponse(data)
	}
	return d, nil
}

// IsEmpty reports whether d describes nothing.
func (d Description) IsEmpty() bool {
	return d.node == nil || len(d.node.Content) == 0
}

// Node returns the underlying mapping node, or nil for Empty. Callers must
// not modify it.
func (d Description) Node() *yaml.Node {
	return d.node
}

// HasAttributes reports whether attributes are defined.
func (d Description) HasAttributes() bool {
	return d.hasDefined(KeyAttributes)
}

// Attributes returns the attribute descriptions in document order.
func (d Description) Attributes() []Property {
	if !d.HasAttributes() {
		return nil
	}
	return properties(d.lookup(KeyAttributes))
}

// Attribute returns the named attribute description.
func (d Description) Attribute(name string) (Property, bool) {
	for _, p := range d.Attributes() {
		if p.Name == name {
			return p, true
		}
	}
	return Property{}, false
}

// HasAccessControl reports whether access-control is defined.
func (d Description) HasAccessControl() bool {
	return d.hasDefined(KeyAccessControl)
}

// HasChildrenDefined reports whether at least one child type is declared.
func (d Description) HasChildrenDefined() bool {
	if !d.hasDefined(KeyChildren) {
		return false
	}
	c := d.lookup(KeyChildren)
	return c.Kind == yaml.MappingNode && len(c.Content) > 0
}

// HasOperations reports whether operations are defined.
func (d Description) HasOperations() bool {
	return d.hasDefined(KeyOperations)
}

// HasNotifications reports whether notifications are defined.
func (d Description) HasNotifications() bool {
	return d.hasDefined(KeyNotifications)
}

// ChildrenTypes returns the child types addressed by a wildcard name, i.e.
// regular (non-singleton) resources.
func (d Description) ChildrenTypes() []string {
	var out []string
	for _, c := range d.children() {
		if hasKey(c.models, "*") {
			out = append(out, c.typ)
		}
	}
	sort.Strings(out)
	return out
}

// SingletonChildrenTypes returns "type=name" for every child that is only
// declared under fixed names.
func (d Description) SingletonChildrenTypes() []string {
	var out []string
	for _, c := range d.children() {
		if c.models == nil || hasKey(c.models, "*") {
			continue
		}
		for _, name := range keys(c.models) {
			out = append(out, c.typ+"="+name)
		}
	}
	sort.Strings(out)
	return out
}

// ChildDescription returns the description of regular children of type
// typ, or Empty.
func (d Description) ChildDescription(typ string) Description {
	return d.ChildDescriptionNamed(typ, "*")
}

// ChildDescriptionNamed returns the description of the child typ=name, or
// Empty.
func (d Description) ChildDescriptionNamed(typ, name string) Description {
	for _, c := range d.children() {
		if c.typ != typ || c.models == nil {
			continue
		}
		if n := (Description{node: c.models}).lookup(name); n != nil && n.Kind == yaml.MappingNode {
			return Description{node: n}
		}
	}
	return Empty
}

// Text returns the human readable description, or "".
func (d Description) Text() string {
	return d.scalar(KeyDescription)
}

// IsSingleton reports whether d was obtained for a singleton child.
func (d Description) IsSingleton() bool {
	return d.singleton
}

// SingletonName returns the singleton instance name, if any.
func (d Description) SingletonName() string {
	return d.singletonName
}

// WithSingletonName returns a copy of d marked as the singleton name.
func (d Description) WithSingletonName(name string) Description {
	d.singleton = true
	d.singletonName = name
	return d
}

type child struct {
	typ    string
	models *yaml.Node
}

func (d Description) children() []child {
	if !d.HasChildrenDefined() {
		return nil
	}
	c := d.lookup(KeyChildren)
	out := make([]child, 0, len(c.Content)/2)
	for i := 0; i+1 < len(c.Content); i += 2 {
		v := unwrap(c.Content[i+1])
		var models *yaml.Node
		if v != nil && v.Kind == yaml.MappingNode {
			if m := (Description{node: v}).lookup(KeyModelDescription); m != nil && m.Kind == yaml.MappingNode {
				models = m
			}
		}
		out = append(out, child{typ: c.Content[i].Value, models: models})
	}
	return out
}

func (d Description) lookup(key string) *yaml.Node {
	if d.node == nil || d.node.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(d.node.Content); i += 2 {
		if d.node.Content[i].Value == key {
			return unwrap(d.node.Content[i+1])
		}
	}
	return nil
}

func (d Description) hasDefined(key string) bool {
	n := d.lookup(key)
	return n != nil && !isNull(n)
}

func (d Description) scalar(key string) string {
	n := d.lookup(key)
	if n == nil || n.Kind != yaml.ScalarNode || isNull(n) {
		return ""
	}
	return n.Value
}

func unwrap(n *yaml.Node) *yaml.Node {
	for n != nil && (n.Kind == yaml.DocumentNode || n.Kind == yaml.AliasNode) {
		if n.Kind == yaml.AliasNode {
			n = n.Alias
			continue
		}
		if len(n.Content) == 0 {
			return nil
		}
		n = n.Content[0]
	}
	return n
}

func isNull(n *yaml.Node) bool {
	return n.Kind == yaml.ScalarNode && n.ShortTag() == "!!null"
}

func hasKey(m *yaml.Node, key string) bool {
	return Description{node: m}.lookup(key) != nil
}

func keys(m *yaml.Node) []string {
	out := make([]string, 0, len(m.Content)/2)
	for i := 0; i+1 < len(m.Content); i += 2 {
		out = append(out, m.Content[i].Value)
	}
	return out
}
