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
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"dirpx.dev/opx/address"
	"dirpx.dev/opx/schema"
)

// NewDescribeCommand creates the describe command.
func NewDescribeCommand() *cobra.Command {
	var child string
	cmd := &cobra.Command{
		Use:   "describe FILE",
		Short: "Summarize a resource description document",
		Long: `Describe reads the JSON or YAML result of read-resource-description, or the
full management response, and lists its attributes and children.

Use --child TYPE or --child TYPE=NAME to descend into a child description.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			d, err := schema.Load(data)
			if err != nil {
				return err
			}
			if child != "" {
				if d, err = childOf(d, child); err != nil {
					return err
				}
			}
			printDescription(cmd.OutOrStdout(), d)
			return nil
		},
	}
	cmd.Flags().StringVar(&child, "child", "", "child type, or type=name for a singleton")
	return cmd
}

func childOf(d schema.Description, arg string) (schema.Description, error) {
	typ, name, ok := strings.Cut(arg, "=")
	var c schema.Description
	if ok && name != address.Wildcard {
		c = d.ChildDescriptionNamed(typ, name).WithSingletonName(name)
	} else {
		c = d.ChildDescription(typ)
	}
	if c.IsEmpty() {
		return schema.Empty, fmt.Errorf("no child description for %q", arg)
	}
	return c, nil
}

func printDescription(w io.Writer, d schema.Description) {
	heading := color.New(color.FgCyan, color.Bold)

	if text := d.Text(); text != "" {
		fmt.Fprintln(w, text)
	}
	if d.IsSingleton() {
		fmt.Fprintf(w, "singleton: %s\n", d.SingletonName())
	}
	if attrs := d.Attributes(); len(attrs) > 0 {
		heading.Fprintln(w, "Attributes:")
		for _, p := range attrs {
			fmt.Fprintf(w, "  %-32s %s\n", p.Name, p.Type())
		}
	}
	if types := d.ChildrenTypes(); len(types) > 0 {
		heading.Fprintln(w, "Children:")
		for _, t := range types {
			fmt.Fprintf(w, "  %s\n", t)
		}
	}
	if types := d.SingletonChildrenTypes(); len(types) > 0 {
		heading.Fprintln(w, "Singletons:")
		for _, t := range types {
			fmt.Fprintf(w, "  %s\n", t)
		}
	}
	fmt.Fprintf(w, "operations: %t  notifications: %t  access-control: %t\n",
		d.HasOperations(), d.HasNotifications(), d.HasAccessControl())
}
