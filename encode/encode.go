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

// Package encode serializes operation lists for a transport or a file.
package encode

import (
	"bytes"
	"fmt"
	"io"

	"github.com/fxamacker/cbor/v2"
	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"dirpx.dev/opx/operation"
)

// Encode writes ops to w in format f, in list order.
func Encode(w io.Writer, ops []operation.Operation, f Format) error {
	if ops == nil {
		ops = []operation.Operation{}
	}
	switch f {
	case JSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(ops); err != nil {
			return fmt.Errorf("opx(encode): json: %w", err)
		}
		return nil
	case YAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(ops); err != nil {
			return fmt.Errorf("opx(encode): yaml: %w", err)
		}
		return enc.Close()
	case CBOR:
		if err := cbor.NewEncoder(w).Encode(ops); err != nil {
			return fmt.Errorf("opx(encode): cbor: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("opx(encode): unknown format %d", int(f))
	}
}

// Marshal is Encode into a byte slice.
func Marshal(ops []operation.Operation, f Format) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, ops, f); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
