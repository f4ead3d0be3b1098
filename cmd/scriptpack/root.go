// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/term"

	"github.com/walteh/scriptpack/cmd/scriptpack/commands"
	"github.com/walteh/scriptpack/cmd/scriptpack/opts"
	"github.com/walteh/scriptpack/pkg/config"
	"github.com/walteh/scriptpack/pkg/log"
)

// skipConfig marks commands that run without loading a config file
const skipConfig = "scriptpack/skip-config"

// newRootCmd builds the command tree. Console output goes to stderr so a
// document written to stdout stays clean.
func newRootCmd(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	ro := &opts.RootOpts{Stdin: stdin}
	v := opts.NewViper()

	cmd := &cobra.Command{
		Use:   "scriptpack",
		Short: "Pack text files into one document and back",
		Long: `scriptpack merges many text files into a single combined document and splits
such a document back into files, bundles or directories.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.BindFlags(v, "", cmd.Root().PersistentFlags()); err != nil {
				return err
			}

			setupColor(stderr)
			ctx := setupLogging(cmd.Context(), v.GetBool("debug"), stderr)
			cmd.SetContext(ctx)

			if cmd.Annotations[skipConfig] == "true" {
				return nil
			}
			return initRootOpts(ctx, ro, v, stderr)
		},
	}

	addRootFlags(cmd)

	cmd.AddCommand(
		commands.NewMergeCmd(ro),
		commands.NewSplitCmd(ro),
		commands.NewInspectCmd(ro),
		newVersionCmd(),
	)

	cmd.SetIn(stdin)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	return cmd
}

// addRootFlags adds shared flags to the root command
func addRootFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringP("config", "c", config.DefaultFile, "config file path")
	cmd.PersistentFlags().BoolP("debug", "d", false, "enable debug logging")
	cmd.PersistentFlags().Bool("async", false, "run operations asynchronously")
}

// initRootOpts loads the config and creates the loggers shared by all commands
func initRootOpts(ctx context.Context, ro *opts.RootOpts, v *viper.Viper, stderr io.Writer) error {
	path := v.GetString("config")
	cfg, err := config.LoadOrDefault(ctx, path, v.IsSet("config"))
	if err != nil {
		return errors.Errorf("loading config: %w", err)
	}

	ro.Config = cfg
	ro.Async = v.GetBool("async")
	ro.UserLogger = log.NewUserLogger(ctx, stderr)
	return nil
}

// setupLogging returns ctx carrying a zerolog logger and a console logger.
// Without --debug only warnings reach the log stream.
func setupLogging(ctx context.Context, debug bool, out io.Writer) context.Context {
	level := zerolog.WarnLevel
	if debug {
		level = zerolog.DebugLevel
	}

	zlog := zerolog.New(zerolog.ConsoleWriter{Out: out, NoColor: color.NoColor}).
		Level(level).
		With().
		Timestamp().
		Logger()

	ctx = zlog.WithContext(ctx)
	return log.NewContext(ctx, log.New(out, zlog))
}

// setupColor turns colour off unless out is a terminal
func setupColor(out io.Writer) {
	if f, ok := out.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return
	}
	color.NoColor = true
	pterm.DisableColor()
}
