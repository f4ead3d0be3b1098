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
	"context"
	"fmt"
	"slices"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/scriptpack/cmd/scriptpack/opts"
	"github.com/walteh/scriptpack/pkg/blob"
	"github.com/walteh/scriptpack/pkg/codec"
	"github.com/walteh/scriptpack/pkg/config"
	"github.com/walteh/scriptpack/pkg/operation"
	"github.com/walteh/scriptpack/pkg/source"
)

// NewMergeCmd creates a new merge command
func NewMergeCmd(ro *opts.RootOpts) *cobra.Command {
	var fromArchive string

	cmd := &cobra.Command{
		Use:   "merge [paths...]",
		Short: "Combine text files into one document",
		Long: `Merge reads files, directories and glob patterns and writes one combined document
in which every file is wrapped in START and END markers.
Directories are walked recursively and filtered by extension.
Globs and explicitly named files are always included.`,
		Example: `  scriptpack merge ./scripts -o combined_scripts.txt
  scriptpack merge 'src/**/*.sh' --sort name -o -
  scriptpack merge --from-archive scripts.zip -o restored.txt`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := zerolog.Ctx(cmd.Context()).With().Str("command", "merge").Logger().WithContext(cmd.Context())

			cfg, err := resolveMerge(cmd, ro.Config)
			if err != nil {
				return err
			}

			var src operation.Source
			switch {
			case fromArchive != "" && len(args) > 0:
				return errors.Errorf("%w: --from-archive cannot be combined with paths", codec.ErrInvalidInputShape)
			case fromArchive != "":
				src = operation.ArchiveSource{Path: fromArchive}
			default:
				src = operation.FileSource{Options: source.Options{
					Paths:       args,
					Extensions:  cfg.Merge.Extensions,
					Ignore:      cfg.Merge.Ignore,
					KeepPaths:   cfg.Merge.KeepPaths,
					SkipBinary:  cfg.Merge.SkipBinary,
					Workers:     cfg.Merge.Workers,
					MaxFileSize: cfg.Merge.MaxFileSize,
				}}
			}

			op := &operation.MergeOperation{
				Source:      src,
				Sort:        blob.SortMode(cfg.Merge.Sort),
				Output:      operation.DocumentFile{Path: cfg.Merge.Output},
				Destination: cfg.Merge.Output,
			}
			if err := run(ctx, ro, op); err != nil {
				return errors.Errorf("merging files: %w", err)
			}

			ro.UserLogger.LogStateChange(fmt.Sprintf("Merged %d files into %s", len(op.Merged), cfg.Merge.Output))
			return nil
		},
	}

	cmd.Flags().StringP("output", "o", config.Default().Merge.Output, "combined document path, - for stdout")
	cmd.Flags().String("sort", string(blob.SortNone), "sort files by none, name or order")
	cmd.Flags().Bool("keep-paths", false, "name files by relative path instead of base name")
	cmd.Flags().Bool("skip-binary", false, "skip binary files instead of failing")
	cmd.Flags().StringSlice("ext", nil, `extensions accepted in directories (default .txt, "" for every extension)`)
	cmd.Flags().StringSlice("ignore", nil, "doublestar patterns to leave out")
	cmd.Flags().Int("workers", config.DefaultWorkers, "files read concurrently")
	cmd.Flags().Int64("max-file-size", config.DefaultMaxFileSize, "largest accepted file in bytes")
	cmd.Flags().StringVar(&fromArchive, "from-archive", "", "merge the files of an existing bundle or output directory")

	return cmd
}

// resolveMerge layers flags and SCRIPTPACK_MERGE_* variables over the loaded config
func resolveMerge(cmd *cobra.Command, base *config.Config) (*config.Config, error) {
	v := opts.NewViper()
	if err := opts.BindFlags(v, "merge", cmd.LocalNonPersistentFlags()); err != nil {
		return nil, err
	}

	cfg := *base
	m := &cfg.Merge
	m.Extensions = slices.Clone(base.Merge.Extensions)
	opts.String(v, "merge.output", &m.Output)
	opts.String(v, "merge.sort", &m.Sort)
	opts.Bool(v, "merge.keep-paths", &m.KeepPaths)
	opts.Bool(v, "merge.skip-binary", &m.SkipBinary)
	opts.StringSlice(v, "merge.ext", &m.Extensions)
	opts.StringSlice(v, "merge.ignore", &m.Ignore)
	opts.Int(v, "merge.workers", &m.Workers)
	opts.Int64(v, "merge.max-file-size", &m.MaxFileSize)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func run(ctx context.Context, ro *opts.RootOpts, op operation.Operation) error {
	return operation.NewRunner(zerolog.Ctx(ctx), ro.Async).Run(ctx, op)
}
