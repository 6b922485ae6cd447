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

import "dirpx.dev/opx/operation"

// Binder populates an already addressed operation with entity attributes.
type Binder interface {
	Bind(entity any, op *operation.Operation) error
}

// BinderFunc adapts a function to Binder.
type BinderFunc func(entity any, op *operation.Operation) error

// Bind calls f.
func (f BinderFunc) Bind(entity any, op *operation.Operation) error {
	return f(entity, op)
}
