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

// Package address models management-resource addresses.
//
// A Template is what an entity type declares: an ordered list of
// type=name pairs where a name may be the Wildcard, to be resolved when
// the entity is marshalled. A Path is the concrete result: every name is
// known (or is the literal Wildcard when no key could be found).
//
// Declarations may carry the full parent chain
// ("/subsystem=datasources/xa-data-source=*"); only the last segment
// describes the declaring type itself. Composing full paths is done by
// appending one segment per walked entity, never by the template.
package address

import (
	"errors"
	"fmt"
	"strings"
)

// Wildcard is the name placeholder meaning "resolved at marshal time".
const Wildcard = "*"

var (
	// ErrMalformedTemplate is returned when a declaration cannot be split
	// into type=name segment pairs.
	ErrMalformedTemplate = errors.New("opx(address): malformed address template")
)

// Segment is a single type=name pair.
type Segment struct {
	// Type is the resource type, e.g. "subsystem".
	Type string
	// Name is the resource name, e.g. "datasources", or Wildcard.
	Name string
}

// IsWildcard reports whether the segment name is the Wildcard.
func (s Segment) IsWildcard() bool {
	return s.Name == Wildcard
}

// String returns "type=name".
func (s Segment) String() string {
	return s.Type + "=" + s.Name
}

// Template is an immutable parsed address declaration.
// The zero Template is not valid; obtain one from ParseTemplate.
type Template struct {
	segs []Segment
	decl string
}

// ParseTemplate parses a declaration of the form "type=name" or
// "/type=name/type=name". It fails with ErrMalformedTemplate when any
// segment is empty, lacks '=', or has an empty type or name.
func ParseTemplate(decl string) (Template, error) {
	segs, err := parseSegments(decl)
	if err != nil {
		return Template{}, err
	}
	return Template{segs: segs, decl: decl}, nil
}

// MustParseTemplate is like ParseTemplate but panics on error.
func MustParseTemplate(decl string) Template {
	t, err := ParseTemplate(decl)
	if err != nil {
		panic(err)
	}
	return t
}

// ResourceType returns the type of the declaring (last) segment.
func (t Template) ResourceType() string {
	if len(t.segs) == 0 {
		return ""
	}
	return t.segs[len(t.segs)-1].Type
}

// ResourceName returns the name of the declaring (last) segment.
// It may be Wildcard.
func (t Template) ResourceName() string {
	if len(t.segs) == 0 {
		return ""
	}
	return t.segs[len(t.segs)-1].Name
}

// IsWildcard reports whether the declaring segment's name is the Wildcard.
func (t Template) IsWildcard() bool {
	return t.ResourceName() == Wildcard
}

// Segments returns a copy of all declared segments, outermost first.
func (t Template) Segments() []Segment {
	out := make([]Segment, len(t.segs))
	copy(out, t.segs)
	return out
}

// Len returns the number of declared segments.
func (t Template) Len() int {
	return len(t.segs)
}

// String returns the declaration the template was parsed from.
func (t Template) String() string {
	return t.decl
}

// Matches reports whether p has the template's shape: same length, same
// types, and equal names wherever the template name is not a Wildcard.
func (t Template) Matches(p Path) bool {
	if len(t.segs) != len(p.segs) {
		return false
	}
	for i, s := range t.segs {
		if s.Type != p.segs[i].Type {
			return false
		}
		if !s.IsWildcard() && s.Name != p.segs[i].Name {
			return false
		}
	}
	return true
}

// parseSegments splits "/a=b/c=d" (leading slash optional) into segments.
func parseSegments(s string) ([]Segment, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return nil, fmt.Errorf("%w: empty declaration", ErrMalformedTemplate)
	}
	trimmed = strings.TrimPrefix(trimmed, "/")

	parts := strings.Split(trimmed, "/")
	segs := make([]Segment, 0, len(parts))
	for _, part := range parts {
		typ, name, ok := strings.Cut(part, "=")
		if !ok {
			return nil, fmt.Errorf("%w: segment %q in %q has no '='", ErrMalformedTemplate, part, s)
		}
		typ, name = strings.TrimSpace(typ), strings.TrimSpace(name)
		if typ == "" || name == "" {
			return nil, fmt.Errorf("%w: segment %q in %q has an empty type or name", ErrMalformedTemplate, part, s)
		}
		segs = append(segs, Segment{Type: typ, Name: name})
	}
	return segs, nil
}
