// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"github.com/spf13/cobra"

	"github.com/depfetch/depfetch/internal/issue"
	"github.com/depfetch/depfetch/pkg/artifact"
	"github.com/depfetch/depfetch/pkg/pom"
)

func newPomCommand(app *App) *cobra.Command {
	var flags resolveFlags

	cmd := &cobra.Command{
		Use:   "pom <pom.xml>",
		Short: "Resolve the dependencies declared by a local POM",
		Long: `Resolve the dependencies a local POM declares.

Only dependencies in the selected scopes are followed, at every depth.
Repositories declared by the POM are tried after the configured ones.`,
		Example: `  depfetch pom ./pom.xml
  depfetch pom --scope compile --scope runtime -o classpath ./pom.xml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			project, err := pom.ParseFile(args[0])
			if err != nil {
				return app.fail(cmd, issue.NewErrorContext().
					WithOperation("read descriptor").
					WithResource(args[0]).
					WithIssue(issue.DescriptorParseFailedId).
					Wrap(err).
					BuildError())
			}

			res, err := app.newResolution(&flags, nil, nil)
			if err != nil {
				return app.fail(cmd, err)
			}

			// The resolver's scopes already reflect --scope and configuration.
			result, err := res.resolver.ResolveFromDescriptor(cmd.Context(), nil, project, artifact.ScopeSet{})
			if err != nil {
				return app.fail(cmd, err)
			}

			return writeOrFail(app, cmd, res, result)
		},
	}
	flags.register(cmd, true)

	return cmd
}
