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

package commands

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/scriptpack/cmd/scriptpack/opts"
	"github.com/walteh/scriptpack/pkg/archive"
	"github.com/walteh/scriptpack/pkg/config"
	"github.com/walteh/scriptpack/pkg/log"
	"github.com/walteh/scriptpack/pkg/operation"
)

// NewSplitCmd creates a new split command
func NewSplitCmd(ro *opts.RootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "split <document|->",
		Short: "Split a combined document into separate files",
		Long: `Split decodes a combined document and writes every record as its own file,
either packed into a bundle (zip, tar, tar.zst, tar.s2, tar.lz4) or into a directory.
Malformed records are skipped; run inspect to see why.
Existing files are only replaced with --force.
A record named manifest.json is accepted only with --no-manifest.`,
		Example: `  scriptpack split combined_scripts.txt
  scriptpack split combined_scripts.txt --format dir -o ./scripts
  cat combined_scripts.txt | scriptpack split - -o scripts.tar.zst`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := zerolog.Ctx(cmd.Context()).With().Str("command", "split").Logger().WithContext(cmd.Context())

			cfg, err := resolveSplit(cmd, ro.Config)
			if err != nil {
				return err
			}

			format := archive.Format(cfg.Split.Format)
			sink, err := archive.NewSink(cfg.Split.Output, archive.Options{
				Format:   format,
				Manifest: cfg.ManifestEnabled(),
				Force:    cfg.Split.Force,
			})
			if err != nil {
				return errors.Errorf("creating output: %w", err)
			}

			op := &operation.SplitOperation{
				Input:       operation.FileDocument{Paths: args, Stdin: ro.Stdin},
				Sink:        sink,
				Destination: cfg.Split.Output,
				Format:      format,
			}
			if err := run(ctx, ro, op); err != nil {
				if errors.Is(err, archive.ErrFileExists) {
					ro.UserLogger.LogFileChange(log.FileChange{
						Type:        log.FileSkipped,
						Name:        cfg.Split.Output,
						Description: "already exists, use --force to replace",
					})
				}
				return errors.Errorf("splitting document: %w", err)
			}

			ro.UserLogger.LogStateChange(fmt.Sprintf("Split %d files into %s", len(op.Blobs), cfg.Split.Output))
			return nil
		},
	}

	cmd.Flags().StringP("output", "o", config.Default().Split.Output, "bundle file or directory, - for stdout")
	cmd.Flags().String("format", string(archive.FormatZip), fmt.Sprintf("output format %v", archive.Formats()))
	cmd.Flags().Bool("force", false, "replace existing files")
	cmd.Flags().Bool("no-manifest", false, "leave out manifest.json")

	return cmd
}

// resolveSplit layers flags and SCRIPTPACK_SPLIT_* variables over the loaded config.
// A format without an output picks the matching default name, an output
// without a format picks the format from its suffix.
func resolveSplit(cmd *cobra.Command, base *config.Config) (*config.Config, error) {
	v := opts.NewViper()
	if err := opts.BindFlags(v, "split", cmd.LocalNonPersistentFlags()); err != nil {
		return nil, err
	}

	cfg := *base
	s := &cfg.Split
	outputSet := opts.String(v, "split.output", &s.Output)
	formatSet := opts.String(v, "split.format", &s.Format)
	opts.Bool(v, "split.force", &s.Force)

	var noManifest bool
	if opts.Bool(v, "split.no-manifest", &noManifest) && noManifest {
		disabled := false
		s.Manifest = &disabled
	}

	switch {
	case formatSet && !outputSet:
		if base.Split.Output == config.DefaultSplitOutput(archive.Format(base.Split.Format)) {
			s.Output = ""
		}
	case outputSet && !formatSet && s.Output != archive.Stdio:
		if f, err := archive.DetectFormat(s.Output); err == nil {
			s.Format = string(f)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
