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
	"fmt"
	"strings"
)

// Config carries read-only marshalling knobs.
// It is passed by value and should be treated as immutable by implementations.
type Config struct {
	// MaxDepth limits how deep the walker descends below the root.
	// Acts as a safety guard against cyclic entity graphs.
	MaxDepth int

	// MaxUnwrap limits pointer/interface unwrapping when normalizing an
	// entity's runtime type to its declaring named type.
	MaxUnwrap int

	// Strict makes every node-local failure fatal (fail closed). When false,
	// node-local failures are recorded on the result and the walk continues.
	Strict bool

	// KeyPolicy selects what happens when a key accessor fails.
	KeyPolicy KeyPolicy
}

// KeyPolicy decides how a failing key accessor is handled.
type KeyPolicy int

const (
	// KeyFallback resolves the name to the wildcard literal and keeps going.
	KeyFallback KeyPolicy = iota
	// KeyFail drops the entity and its subtree.
	KeyFail
)

// String returns "fallback" or "fail".
func (p KeyPolicy) String() string {
	switch p {
	case KeyFallback:
		return "fallback"
	case KeyFail:
		return "fail"
	default:
		return fmt.Sprintf("Unknown(%d)", int(p))
	}
}

// ParseKeyPolicy parses a case-insensitive policy name.
func ParseKeyPolicy(s string) (KeyPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "fallback":
		return KeyFallback, nil
	case "fail":
		return KeyFail, nil
	default:
		return KeyFallback, fmt.Errorf("opx(apis): unknown key policy %q", s)
	}
}

// MarshalText encodes the policy name.
func (p KeyPolicy) MarshalText() ([]byte, error) {
	switch p {
	case KeyFallback, KeyFail:
		return []byte(p.String()), nil
	default:
		return nil, fmt.Errorf("opx(apis): cannot marshal unknown key policy %d", int(p))
	}
}

// UnmarshalText decodes a policy name. On failure p is left unchanged.
func (p *KeyPolicy) UnmarshalText(text []byte) error {
	v, err := ParseKeyPolicy(string(text))
	if err != nil {
		return err
	}
	*p = v
	return nil
}
