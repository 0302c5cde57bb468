// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"io"

	"github.com/jedib0t/go-pretty/v6/list"
	"github.com/spf13/cobra"

	"github.com/depfetch/depfetch/pkg/artifact"
	"github.com/depfetch/depfetch/pkg/resolver"
)

func newTreeCommand(app *App) *cobra.Command {
	var flags resolveFlags

	cmd := &cobra.Command{
		Use:   "tree <group:artifact[:version[:classifier]]>...",
		Short: "Resolve dependencies and print their dependency tree",
		Long: `Resolve dependencies and print the graph they form.

A dependency reached through several paths is expanded under the first
one and listed by name under the others.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := parseCoordinates(args)
			if err != nil {
				return app.fail(cmd, err)
			}

			res, err := app.newResolution(&flags, nil, nil)
			if err != nil {
				return app.fail(cmd, err)
			}

			result, err := res.resolver.ResolveMany(cmd.Context(), nil, res.repos, deps)
			if err != nil {
				return app.fail(cmd, err)
			}

			renderTree(app.stdout, result)
			return nil
		},
	}
	flags.register(cmd, false)

	return cmd
}

// renderTree writes result as an indented tree starting from its roots.
func renderTree(w io.Writer, result *resolver.Result) {
	lw := list.NewWriter()
	lw.SetStyle(list.StyleConnectedRounded)
	lw.SetOutputMirror(w)

	expanded := make(map[artifact.Coordinate]bool)
	var walk func(c artifact.Coordinate)
	walk = func(c artifact.Coordinate) {
		lw.AppendItem(treeLabel(result, c, expanded[c]))
		if expanded[c] {
			return
		}
		expanded[c] = true

		children := result.Children(c)
		if len(children) == 0 {
			return
		}
		lw.Indent()
		for _, child := range children {
			walk(child)
		}
		lw.UnIndent()
	}
	for _, root := range result.Roots() {
		walk(root)
	}

	lw.Render()
}

func treeLabel(result *resolver.Result, c artifact.Coordinate, repeated bool) string {
	d, ok := result.Get(c)
	if !ok {
		return c.String()
	}
	label := d.Dependency.String() + " (" + d.EffectiveScope().String() + ")"
	if repeated {
		label += " (*)"
	}
	return label
}
