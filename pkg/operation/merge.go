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

package operation

import (
	"context"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/scriptpack/pkg/blob"
	"github.com/walteh/scriptpack/pkg/codec"
	"github.com/walteh/scriptpack/pkg/log"
)

// ErrNothingToMerge is returned when the source yields no blobs
var ErrNothingToMerge = errors.Base("no input files to merge")

// 🔗 MergeOperation combines blobs into one document
type MergeOperation struct {
	Source      Source
	Sort        blob.SortMode
	Output      DocumentWriter
	Destination string // shown in the console summary

	// Merged holds the blobs written by the last Execute, in document order
	Merged []blob.NamedBlob
}

func (o *MergeOperation) Name() string { return "merge" }

// 🏃 Execute collects, sorts, encodes and writes the document
func (o *MergeOperation) Execute(ctx context.Context) error {
	logger := log.FromContext(ctx)

	blobs, err := o.Source.Collect(ctx)
	if err != nil {
		return errors.Errorf("collecting input: %w", err)
	}
	if len(blobs) == 0 {
		return errors.WithStack(ErrNothingToMerge)
	}

	sorted := blob.Collection(blobs).SortBy(o.Sort)

	doc, err := codec.Encode(sorted)
	if err != nil {
		return errors.Errorf("encoding document: %w", err)
	}

	zerolog.Ctx(ctx).Debug().Int("files", len(sorted)).Int("bytes", len(doc)).Str("sort", string(o.Sort)).Msg("encoded document")

	if err := o.Output.WriteDocument(ctx, doc); err != nil {
		return errors.Errorf("writing document: %w", err)
	}

	logger.StartBatch(ctx, log.BatchOperation{
		Action:      "merge",
		Source:      "files",
		Destination: o.Destination,
		Format:      "text",
	})
	for _, b := range sorted {
		logger.LogFileOperation(ctx, log.FileOperation{
			Name:   b.Name,
			Kind:   "source",
			Status: "merged",
			Size:   b.Size(),
			IsNew:  true,
		})
	}
	logger.EndBatch(ctx)

	o.Merged = sorted
	return nil
}
