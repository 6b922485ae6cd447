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

	"dirpx.dev/opx/operation"
)

// Result is the outcome of a walk: the operations in emission order and
// the node-local failures met on the way. A Result with errors is partial.
type Result struct {
	Operations []operation.Operation
	Errors     []*NodeError
}

// Complete reports whether no node-local failure was recorded.
func (r *Result) Complete() bool {
	return r == nil || len(r.Errors) == 0
}

// Err joins the recorded failures, or returns nil for a complete result.
func (r *Result) Err() error {
	if r.Complete() {
		return nil
	}
	errs := make([]error, len(r.Errors))
	for i, e := range r.Errors {
		errs[i] = e
	}
	return errors.Join(errs...)
}

// Len returns the number of operations.
func (r *Result) Len() int {
	if r == nil {
		return 0
	}
	return len(r.Operations)
}
