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

package address

import (
	"strings"

	"github.com/fxamacker/cbor/v2"
	json "github.com/goccy/go-json"
)

// Path is a concrete hierarchical address. Paths are values: Append never
// mutates its receiver and never shares the receiver's backing array, so a
// parent path can be extended by any number of children independently.
type Path struct {
	segs []Segment
}

// Empty is the root path (no segments).
var Empty = Path{}

// ParsePath parses "/type=name/type=name" into a Path. The empty string and
// "/" yield Empty. Names are taken literally; a "*" name is kept as is.
func ParsePath(s string) (Path, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" || trimmed == "/" {
		return Empty, nil
	}
	segs, err := parseSegments(trimmed)
	if err != nil {
		return Empty, err
	}
	return Path{segs: segs}, nil
}

// Append returns a new path extended by type=name.
func (p Path) Append(typ, name string) Path {
	segs := make([]Segment, len(p.segs), len(p.segs)+1)
	copy(segs, p.segs)
	return Path{segs: append(segs, Segment{Type: typ, Name: name})}
}

// Segments returns a copy of the path's segments, outermost first.
func (p Path) Segments() []Segment {
	out := make([]Segment, len(p.segs))
	copy(out, p.segs)
	return out
}

// Len returns the number of segments.
func (p Path) Len() int {
	return len(p.segs)
}

// Last returns the innermost segment, or false for Empty.
func (p Path) Last() (Segment, bool) {
	if len(p.segs) == 0 {
		return Segment{}, false
	}
	return p.segs[len(p.segs)-1], true
}

// Parent returns the path without its last segment. Parent of Empty is Empty.
func (p Path) Parent() Path {
	if len(p.segs) <= 1 {
		return Empty
	}
	return Path{segs: p.segs[:len(p.segs)-1:len(p.segs)-1]}
}

// Equal reports whether both paths have the same segments.
func (p Path) Equal(o Path) bool {
	if len(p.segs) != len(o.segs) {
		return false
	}
	for i := range p.segs {
		if p.segs[i] != o.segs[i] {
			return false
		}
	}
	return true
}

// String renders the path as "/a=b/c=d", or "/" when empty.
func (p Path) String() string {
	if len(p.segs) == 0 {
		return "/"
	}
	var sb strings.Builder
	for _, s := range p.segs {
		sb.WriteByte('/')
		sb.WriteString(s.String())
	}
	return sb.String()
}

// pairs returns the DMR address shape: one single-entry map per segment.
func (p Path) pairs() []map[string]string {
	out := make([]map[string]string, len(p.segs))
	for i, s := range p.segs {
		out[i] = map[string]string{s.Type: s.Name}
	}
	return out
}

// MarshalJSON encodes the path as [{"type":"name"},...].
func (p Path) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.pairs())
}

// MarshalYAML encodes the path as a sequence of single-entry mappings.
func (p Path) MarshalYAML() (any, error) {
	return p.pairs(), nil
}

// MarshalCBOR encodes the path as an array of single-entry maps.
func (p Path) MarshalCBOR() ([]byte, error) {
	return cbor.Marshal(p.pairs())
}
