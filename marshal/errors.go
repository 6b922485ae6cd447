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

package marshal

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"dirpx.dev/opx/adapter"
	"dirpx.dev/opx/address"
	"dirpx.dev/opx/resolver"
)

// Fatal errors abort Marshal and yield no operations.
var (
	// ErrMissingAddressDeclaration is returned when a reachable entity's type
	// declares no address.
	ErrMissingAddressDeclaration = resolver.ErrMissingAddressDeclaration
	// ErrMalformedTemplate is returned when a declared address cannot be parsed.
	ErrMalformedTemplate = address.ErrMalformedTemplate
	// ErrDepthExceeded is returned when the walk descends below Config.MaxDepth,
	// which in practice means the entity graph has a cycle.
	ErrDepthExceeded = errors.New("opx(marshal): maximum depth exceeded")
	// ErrNilRoot is returned by Marshal for a nil or typed-nil root.
	ErrNilRoot = errors.New("opx(marshal): nil root entity")
)

// Node-local errors are recorded on the Result unless Config.Strict is set.
var (
	// ErrKeyResolution is recorded when a key accessor fails.
	ErrKeyResolution = errors.New("opx(marshal): key resolution failed")
	// ErrSubresourceEnumeration is recorded when a singleton, holder or list
	// accessor fails. The node's children are dropped.
	ErrSubresourceEnumeration = errors.New("opx(marshal): subresource enumeration failed")
	// ErrAttributeBinding is recorded when the binder fails. The operation is kept.
	ErrAttributeBinding = adapter.ErrAttributeBinding
	// ErrAccessorPanic wraps a panic raised inside an accessor or binder.
	ErrAccessorPanic = errors.New("opx(marshal): accessor panicked")
)

// Kind classifies a node-local failure.
type Kind int

const (
	// KindKeyResolution marks a failed key accessor.
	KindKeyResolution Kind = iota + 1
	// KindSubresourceEnumeration marks a failed singleton or collection accessor.
	KindSubresourceEnumeration
	// KindAttributeBinding marks a failed binder.
	KindAttributeBinding
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindKeyResolution:
		return "key-resolution"
	case KindSubresourceEnumeration:
		return "subresource-enumeration"
	case KindAttributeBinding:
		return "attribute-binding"
	default:
		return fmt.Sprintf("Unknown(%d)", int(k))
	}
}

func (k Kind) sentinel() error {
	switch k {
	case KindKeyResolution:
		return ErrKeyResolution
	case KindSubresourceEnumeration:
		return ErrSubresourceEnumeration
	case KindAttributeBinding:
		return ErrAttributeBinding
	default:
		return nil
	}
}

// NodeError is one node-local failure.
type NodeError struct {
	// Kind is the failure class.
	Kind Kind
	// Path is the address of the entity whose processing failed.
	Path address.Path
	// Type is the entity's declaring type.
	Type reflect.Type
	// Accessor names the failing accessor, if any.
	Accessor string
	// Err is the underlying cause.
	Err error
}

// Error implements error.
func (e *NodeError) Error() string {
	var sb strings.Builder
	sb.WriteString("opx(marshal): ")
	sb.WriteString(e.Kind.String())
	sb.WriteString(" at ")
	sb.WriteString(e.Path.String())
	if e.Type != nil {
		sb.WriteString(" (")
		sb.WriteString(e.Type.String())
		if e.Accessor != "" {
			sb.WriteByte('.')
			sb.WriteString(e.Accessor)
		}
		sb.WriteByte(')')
	}
	if e.Err != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Err.Error())
	}
	return sb.String()
}

// Unwrap exposes both the kind sentinel and the cause to errors.Is/As.
func (e *NodeError) Unwrap() []error {
	out := make([]error, 0, 2)
	if s := e.Kind.sentinel(); s != nil {
		out = append(out, s)
	}
	if e.Err != nil {
		out = append(out, e.Err)
	}
	return out
}
