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

// Package operation defines the management operation record produced by
// the marshaller: an address, a verb, and an ordered set of attributes.
//
// Encoded forms follow the detyped management model layout:
//
//	{"operation":"add","address":[{"subsystem":"datasources"}],"jndi-name":"java:/ds"}
//
// Attribute order is insertion order and is preserved by every encoding.
package operation

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/fxamacker/cbor/v2"
	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"dirpx.dev/opx/address"
)

// Verb is the operation name.
type Verb string

// Add is the only verb the marshaller emits.
const Add Verb = "add"

const (
	// KeyOperation is the reserved field carrying the verb.
	KeyOperation = "operation"
	// KeyAddress is the reserved field carrying the address.
	KeyAddress = "address"
)

// Attribute is a single named value.
type Attribute struct {
	Name  string
	Value any
}

// Operation is one management operation. The zero value has an empty
// address and no verb; use New.
type Operation struct {
	Address address.Path
	Verb    Verb
	attrs   []Attribute
}

// New returns an operation for verb at addr with no attributes.
func New(verb Verb, addr address.Path) Operation {
	return Operation{Address: addr, Verb: verb}
}

// Set stores value under name. Re-setting a name keeps its original position.
// The reserved names "operation" and "address" are rejected.
func (o *Operation) Set(name string, value any) error {
	if name == KeyOperation || name == KeyAddress {
		return fmt.Errorf("opx(operation): %q is a reserved field", name)
	}
	for i := range o.attrs {
		if o.attrs[i].Name == name {
			o.attrs[i].Value = value
			return nil
		}
	}
	o.attrs = append(o.attrs, Attribute{Name: name, Value: value})
	return nil
}

// Get returns the value stored under name.
func (o Operation) Get(name string) (any, bool) {
	for _, a := range o.attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return nil, false
}

// Attributes returns a copy of the attributes in insertion order.
func (o Operation) Attributes() []Attribute {
	out := make([]Attribute, len(o.attrs))
	copy(out, o.attrs)
	return out
}

// Len returns the number of attributes.
func (o Operation) Len() int {
	return len(o.attrs)
}

// String is a compact diagnostic form: "add /a=b".
func (o Operation) String() string {
	return string(o.Verb) + " " + o.Address.String()
}

// MarshalJSON encodes the operation with reserved fields first and
// attributes in insertion order.
func (o Operation) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	if err := writeJSONField(&buf, KeyOperation, string(o.Verb), true); err != nil {
		return nil, err
	}
	if err := writeJSONField(&buf, KeyAddress, o.Address, false); err != nil {
		return nil, err
	}
	for _, a := range o.attrs {
		if err := writeJSONField(&buf, a.Name, a.Value, false); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func writeJSONField(buf *bytes.Buffer, name string, value any, first bool) error {
	k, err := json.Marshal(name)
	if err != nil {
		return err
	}
	v, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("opx(operation): encode %q: %w", name, err)
	}
	if !first {
		buf.WriteByte(',')
	}
	buf.Write(k)
	buf.WriteByte(':')
	buf.Write(v)
	return nil
}

// MarshalYAML encodes the operation as an ordered mapping node.
func (o Operation) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	add := func(name string, value any) error {
		var v yaml.Node
		if err := v.Encode(value); err != nil {
			return fmt.Errorf("opx(operation): encode %q: %w", name, err)
		}
		node.Content = append(node.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: name}, &v)
		return nil
	}
	if err := add(KeyOperation, string(o.Verb)); err != nil {
		return nil, err
	}
	if err := add(KeyAddress, o.Address); err != nil {
		return nil, err
	}
	for _, a := range o.attrs {
		if err := add(a.Name, a.Value); err != nil {
			return nil, err
		}
	}
	return node, nil
}

// MarshalCBOR encodes the operation as a definite-length CBOR map whose
// entries appear in the same order as the JSON form.
func (o Operation) MarshalCBOR() ([]byte, error) {
	var buf bytes.Buffer
	writeCBORMapHeader(&buf, uint64(2+len(o.attrs)))
	add := func(name string, value any) error {
		k, err := cbor.Marshal(name)
		if err != nil {
			return err
		}
		v, err := cbor.Marshal(value)
		if err != nil {
			return fmt.Errorf("opx(operation): encode %q: %w", name, err)
		}
		buf.Write(k)
		buf.Write(v)
		return nil
	}
	if err := add(KeyOperation, string(o.Verb)); err != nil {
		return nil, err
	}
	if err := add(KeyAddress, o.Address); err != nil {
		return nil, err
	}
	for _, a := range o.attrs {
		if err := add(a.Name, a.Value); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

// writeCBORMapHeader writes the head of a major type 5 (map) item.
func writeCBORMapHeader(buf *bytes.Buffer, n uint64) {
	const major = 5 << 5
	switch {
	case n < 24:
		buf.WriteByte(byte(major | n))
	case n <= 0xff:
		buf.WriteByte(major | 24)
		buf.WriteByte(byte(n))
	case n <= 0xffff:
		buf.WriteByte(major | 25)
		_ = binary.Write(buf, binary.BigEndian, uint16(n))
	case n <= 0xffffffff:
		buf.WriteByte(major | 26)
		_ = binary.Write(buf, binary.BigEndian, uint32(n))
	default:
		buf.WriteByte(major | 27)
		_ = binary.Write(buf, binary.BigEndian, n)
	}
}
