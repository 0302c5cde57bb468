// SPDX-License-Identifier: MPL-2.0

// Package cmd contains the depfetch command-line interface.
//
// The root command loads configuration through a ConfigProvider, installs a
// charmbracelet/log handler as the slog default and hands every subcommand an
// App. Subcommands build a resolver from configuration and flags, run it and
// encode the result:
//
//	depfetch resolve com.google.code.gson:gson:2.10.1
//	depfetch pom ./pom.xml --scope runtime
//	depfetch sync
//	depfetch tree org.slf4j:slf4j-simple:2.0.9
//	depfetch cache verify
//	depfetch config show
package cmd
