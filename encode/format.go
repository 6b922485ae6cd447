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

package encode

import (
	"fmt"
	"strings"
)

// Format selects the serialization of an operation list.
//
// # Values
//
//   - JSON: one JSON array of DMR-shaped operation objects.
//   - YAML: one YAML sequence of ordered mappings.
//   - CBOR: one definite-length CBOR array of maps.
//
// Every format preserves list order and, inside each operation, the
// reserved fields first followed by attributes in insertion order. A
// transport issuing the operations must keep that order.
type Format int

const (
	// JSON renders operations as {"operation":"add","address":[...],...}.
	JSON Format = iota
	// YAML renders operations as a sequence of mappings.
	YAML
	// CBOR renders operations as an array of maps (RFC 8949).
	CBOR
)

// String returns "json", "yaml" or "cbor", and "Unknown(<n>)" otherwise.
func (f Format) String() string {
	switch f {
	case JSON:
		return "json"
	case YAML:
		return "yaml"
	case CBOR:
		return "cbor"
	default:
		return fmt.Sprintf("Unknown(%d)", int(f))
	}
}

// ParseFormat parses a case-insensitive format name. "yml" is accepted
// for YAML. On failure JSON is returned together with the error.
func ParseFormat(s string) (Format, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return JSON, fmt.Errorf("opx(encode): empty format")
	}
	switch strings.ToLower(trimmed) {
	case "json":
		return JSON, nil
	case "yaml", "yml":
		return YAML, nil
	case "cbor":
		return CBOR, nil
	default:
		return JSON, fmt.Errorf("opx(encode): unknown format %q", s)
	}
}

// MustParseFormat is like ParseFormat but panics on invalid input.
func MustParseFormat(s string) Format {
	f, err := ParseFormat(s)
	if err != nil {
		panic(err)
	}
	return f
}

// MarshalText implements encoding.TextMarshaler. Unknown values are an
// error rather than an "Unknown(...)" token.
func (f Format) MarshalText() ([]byte, error) {
	switch f {
	case JSON, YAML, CBOR:
		return []byte(f.String()), nil
	default:
		return nil, fmt.Errorf("opx(encode): cannot marshal unknown format %d", int(f))
	}
}

// UnmarshalText implements encoding.TextUnmarshaler. On failure f is
// left unchanged.
func (f *Format) UnmarshalText(text []byte) error {
	v, err := ParseFormat(string(text))
	if err != nil {
		return err
	}
	*f = v
	return nil
}
