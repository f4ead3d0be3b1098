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
	"github.com/walteh/scriptpack/pkg/operation"
)

// NewInspectCmd creates a new inspect command
func NewInspectCmd(ro *opts.RootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect <document|->",
		Short: "Report the records and skipped markers of a combined document",
		Long: `Inspect scans a combined document without writing anything.
It lists every well-formed record and explains each marker that split would skip,
including END markers that look like a typo of an unmatched START.`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := zerolog.Ctx(cmd.Context()).With().Str("command", "inspect").Logger().WithContext(cmd.Context())

			op := &operation.InspectOperation{
				Input: operation.FileDocument{Paths: args, Stdin: ro.Stdin},
			}
			err := run(ctx, ro, op)

			if op.Report != nil {
				summary := fmt.Sprintf("%d records, %d skipped markers", len(op.Report.Records), len(op.Report.Diagnostics))
				ro.UserLogger.LogValidation(len(op.Report.Diagnostics) == 0 && len(op.Report.Records) > 0, summary, nil)
			}
			if err != nil {
				return errors.Errorf("inspecting document: %w", err)
			}
			return nil
		},
	}

	return cmd
}
