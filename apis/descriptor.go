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

package apis

import (
	"reflect"

	"dirpx.dev/opx/address"
)

// KeyFunc resolves a wildcard name segment for entity. An empty result
// means no key is currently available.
type KeyFunc func(entity any) (string, error)

// Accessor reaches a singleton sub-entity. Get returns nil when absent.
type Accessor struct {
	// Name identifies the accessor in errors and logs.
	Name string
	// Order sorts accessors; ties keep declaration order.
	Order int
	// Get returns the sub-entity or nil.
	Get func(entity any) (any, error)
}

// ListAccessor reaches one ordered collection on a subresources holder.
type ListAccessor struct {
	// Name identifies the accessor in errors and logs.
	Name string
	// Order sorts accessors; ties keep declaration order.
	Order int
	// Get returns the members in the order they must be emitted.
	Get func(holder any) ([]any, error)
}

// Subresources reaches the grouping holder of an entity's collections.
// The holder is never addressed or emitted itself.
type Subresources struct {
	// Name identifies the accessor in errors and logs.
	Name string
	// Get returns the holder, or nil when the entity has no collections.
	Get func(entity any) (any, error)
	// Lists are the holder's collections.
	Lists []ListAccessor
}

// Descriptor is what a type declares about itself. Only Address is required.
type Descriptor struct {
	// Address is the address template declaration, e.g.
	// "/subsystem=datasources/xa-data-source=*".
	Address string
	// Key resolves wildcard names. Optional.
	Key KeyFunc
	// Singletons are the singleton sub-entity accessors.
	Singletons []Accessor
	// Subresources is the collection holder accessor. Optional.
	Subresources *Subresources
}

// Metadata is a resolved, immutable Descriptor for one runtime type.
// Singletons and Subresources.Lists are in walk order.
type Metadata struct {
	Type         reflect.Type
	Template     address.Template
	Key          KeyFunc
	Singletons   []Accessor
	Subresources *Subresources
}

// HasKey reports whether the type has a key accessor.
func (m *Metadata) HasKey() bool {
	return m != nil && m.Key != nil
}

// HasSubresources reports whether the type declares a collection holder.
func (m *Metadata) HasSubresources() bool {
	return m != nil && m.Subresources != nil && m.Subresources.Get != nil
}

// Declarer is implemented by entity types that describe themselves.
// It is called on a zero value, so it must not depend on instance state.
type Declarer interface {
	OpxDescriptor() Descriptor
}

// Keyed is the explicit key capability: types implementing it get a key
// accessor without declaring one.
type Keyed interface {
	OpxKey() string
}
