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

package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"dirpx.dev/opx"
	"dirpx.dev/opx/apis"
	"dirpx.dev/opx/config"
	"dirpx.dev/opx/encode"
	"dirpx.dev/opx/example/datasources"
	"dirpx.dev/opx/logger"
	"dirpx.dev/opx/operation"
	"dirpx.dev/opx/registry"
)

type marshalOptions struct {
	configPath string
	format     string
	output     string
	strict     bool
	keyPolicy  string
	maxDepth   int
	logLevel   string
	logFile    string
}

// NewMarshalCommand creates the marshal command.
func NewMarshalCommand() *cobra.Command {
	opts := &marshalOptions{}
	cmd := &cobra.Command{
		Use:   "marshal",
		Short: "Print the operations that create the sample datasources subsystem",
		Long: `Marshal walks the built-in datasources model (one XA data-source with two
properties and one JDBC driver) and prints the resulting operations.

Configuration is read from --config and OPX_* environment variables;
flags given on the command line win.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMarshal(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.configPath, "config", "c", "", "configuration file (yaml, json or toml)")
	f.StringVarP(&opts.format, "format", "f", "json", "output format: json, yaml or cbor")
	f.StringVarP(&opts.output, "output", "o", "", "write operations to this file instead of stdout")
	f.BoolVar(&opts.strict, "strict", false, "fail on the first node-local error")
	f.StringVar(&opts.keyPolicy, "key-policy", "", "key failure policy: fallback or fail")
	f.IntVar(&opts.maxDepth, "max-depth", 0, "maximum walk depth")
	f.StringVar(&opts.logLevel, "log-level", "warn", "log level")
	f.StringVar(&opts.logFile, "log-file", "", "append logs to this file")

	return cmd
}

func runMarshal(cmd *cobra.Command, opts *marshalOptions) error {
	format, err := encode.ParseFormat(opts.format)
	if err != nil {
		return err
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("strict") {
		cfg.Strict = opts.strict
	}
	if flags.Changed("key-policy") {
		if cfg.KeyPolicy, err = apis.ParseKeyPolicy(opts.keyPolicy); err != nil {
			return err
		}
	}
	if flags.Changed("max-depth") {
		cfg.MaxDepth = opts.maxDepth
	}

	level, err := zerolog.ParseLevel(opts.logLevel)
	if err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	build := logger.New().Level(level)
	if opts.logFile != "" {
		build = build.FromPath(opts.logFile)
	} else {
		build = build.FromBuffer(cmd.ErrOrStderr()).Console(true)
	}
	logData, err := build.Make()
	if err != nil {
		return fmt.Errorf("failed to open log: %w", err)
	}
	defer logData.Close()

	opx.SetConfig(cfg)
	opx.SetLogger(logData.Logger)
	err = opx.RegisterType[datasources.JDBCDriver](datasources.JDBCDriverDescriptor())
	if err != nil && !errors.Is(err, registry.ErrConflictingRegistration) {
		return err
	}

	res, err := opx.Marshal(datasources.Sample())
	if err != nil {
		return err
	}

	if opts.output == "" {
		if err := encode.Encode(cmd.OutOrStdout(), res.Operations, format); err != nil {
			return err
		}
	} else {
		file, err := os.Create(opts.output)
		if err != nil {
			return fmt.Errorf("failed to create output: %w", err)
		}
		if err := encodeAndClose(file, res.Operations, format); err != nil {
			return err
		}
	}
	if !res.Complete() {
		return fmt.Errorf("operation list is incomplete: %w", res.Err())
	}
	return nil
}

// encodeAndClose writes ops to wc and closes it. A close failure is
// returned.
func encodeAndClose(wc io.WriteCloser, ops []operation.Operation, format encode.Format) error {
	if err := encode.Encode(wc, ops, format); err != nil {
		_ = wc.Close()
		return err
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("failed to close output: %w", err)
	}
	return nil
}
