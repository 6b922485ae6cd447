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

// Package opx turns trees of configuration entities into the ordered list
// of "add" management operations that creates them.
//
// An entity type declares an address template such as
// "/subsystem=datasources/xa-data-source=*", optionally a key that fills the
// wildcard name, singleton children, and a subresources holder whose
// lists carry collection children. Marshal walks a root entity depth first
// and emits one operation per entity, parents before children, singletons
// before collections:
//
//	type XADataSource struct {
//		_        struct{} `opx:"address=/subsystem=datasources/xa-data-source=*"`
//		Name     string   `opx:"key"`
//		JNDIName string   `opx:"attr=jndi-name"`
//	}
//
//	res, err := opx.Marshal(root)
//	if err != nil {
//		// no address, bad template or a cycle: nothing was produced
//	}
//	if !res.Complete() {
//		// partial list; res.Err() says which nodes were cut short
//	}
//
// # Declarations
//
// Declarations come from, in priority order:
//
//  1. The Registry (Register, RegisterType), for types that cannot carry
//     tags or methods.
//  2. Types implementing apis.Declarer. A type implementing apis.Keyed
//     gets its key from OpxKey.
//  3. opx struct tags.
//
// Each type is described once per resolver; the result, failures included,
// is kept for the lifetime of the resolver.
//
// # Design
//
// The package holds a read-mostly snapshot of Config, Registry, Resolver,
// Builder, the attribute Binder, a logger and the Marshaller built from
// them. Readers load the snapshot atomically and never lock. Writers
// (SetConfig, SetBuilder, SetExt, SetRegistry, SetResolver, SetBinder,
// SetLogger, SetAll) take a short build mutex, derive a new snapshot and
// publish it.
//
// SetRegistry and SetResolver pin the given layer: it is no longer rebuilt
// on SetConfig, SetBuilder or SetExt until UnpinRegistry or UnpinResolver.
// Ext is an opaque value handed to the Builder on every rebuild.
//
// # Failures
//
// A missing address declaration, a malformed template or a walk deeper
// than Config.MaxDepth is fatal and Marshal returns no operations. A
// failing key, accessor or binder is node-local: the node keeps its
// operation, its children are dropped, and the failure is recorded on the
// Result and logged. Config.Strict makes node-local failures fatal and
// Config.KeyPolicy decides whether a failed key falls back to the wildcard
// or drops the entity.
package opx
