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

import "reflect"

// Strategy is one source of type declarations. A Resolver consults
// strategies in order (e.g., Registry -> Declarer -> Tags).
type Strategy interface {
	// TryDescribe returns (d, true, nil) if it knows t, (Descriptor{}, false, nil)
	// to fall through, or a non-nil error if t carries a broken declaration.
	TryDescribe(t reflect.Type) (d Descriptor, handled bool, err error)
}
