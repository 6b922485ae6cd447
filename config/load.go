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

package config

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"

	"dirpx.dev/opx/apis"
)

// EnvPrefix prefixes environment overrides, e.g. OPX_STRICT=true.
const EnvPrefix = "OPX"

// file mirrors apis.Config in its on-disk form.
type file struct {
	MaxDepth  int    `mapstructure:"max_depth"`
	MaxUnwrap int    `mapstructure:"max_unwrap"`
	Strict    bool   `mapstructure:"strict"`
	KeyPolicy string `mapstructure:"key_policy"`
}

// Load reads configuration from path (any format viper understands) with
// OPX_* environment overrides. An empty path reads only defaults and the
// environment. A missing file is an error when path is set explicitly.
func Load(path string) (apis.Config, error) {
	v := viper.New()

	def := DefaultConfig()
	v.SetDefault("max_depth", def.MaxDepth)
	v.SetDefault("max_unwrap", def.MaxUnwrap)
	v.SetDefault("strict", def.Strict)
	v.SetDefault("key_policy", def.KeyPolicy.String())

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if errors.As(err, &notFound) {
				return def, fmt.Errorf("config file not found: %w", err)
			}
			return def, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var f file
	if err := v.Unmarshal(&f); err != nil {
		return def, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	policy, err := apis.ParseKeyPolicy(f.KeyPolicy)
	if err != nil {
		return def, err
	}

	return NewConfig(
		WithMaxDepth(f.MaxDepth),
		WithMaxUnwrap(f.MaxUnwrap),
		WithStrict(f.Strict),
		WithKeyPolicy(policy),
	), nil
}
