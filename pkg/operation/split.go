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

	"github.com/walteh/scriptpack/pkg/archive"
	"github.com/walteh/scriptpack/pkg/blob"
	"github.com/walteh/scriptpack/pkg/codec"
	"github.com/walteh/scriptpack/pkg/log"
	"github.com/walteh/scriptpack/pkg/status"
)

// ✂️ SplitOperation decodes a combined document into separate files
type SplitOperation struct {
	Input       DocumentReader
	Sink        archive.Sink
	Destination string
	Format      archive.Format

	// Blobs holds the decoded blobs of the last Execute
	Blobs []blob.NamedBlob
}

func (o *SplitOperation) Name() string { return "split" }

// 🏃 Execute reads, decodes and stores the document
func (o *SplitOperation) Execute(ctx context.Context) error {
	zlog := zerolog.Ctx(ctx)

	doc, err := o.Input.ReadDocument(ctx)
	if err != nil {
		return errors.Errorf("reading document: %w", err)
	}

	// skipped markers are only worth a debug line here, inspect reports them in full
	if rep, err := codec.Scan(doc); err == nil {
		for _, d := range rep.Diagnostics {
			zlog.Debug().Str("kind", d.Kind.String()).Int("line", d.Line).Str("name", d.Name).Msg("skipped marker")
		}
	}

	blobs, err := codec.Decode(doc)
	if err != nil {
		return errors.Errorf("decoding document: %w", err)
	}

	if err := o.Sink.Write(ctx, blobs); err != nil {
		return errors.Errorf("writing output: %w", err)
	}

	o.Blobs = blobs
	o.report(ctx)
	return nil
}

func (o *SplitOperation) report(ctx context.Context) {
	logger := log.FromContext(ctx)

	logger.StartBatch(ctx, log.BatchOperation{
		Action:      "split",
		Source:      "document",
		Destination: o.Destination,
		Format:      string(o.Format),
	})
	defer logger.EndBatch(ctx)

	// a directory sink knows what happened to every file
	if ds, ok := o.Sink.(*archive.DirSink); ok {
		for _, f := range ds.Files {
			logger.LogFileOperation(ctx, log.FileOperation{
				Name:       f.Path,
				Kind:       "blob",
				Status:     f.Status.String(),
				Size:       f.Size,
				IsNew:      f.Status == status.StatusNew,
				IsModified: f.Status == status.StatusModified,
				IsSkipped:  f.Status == status.StatusUnchanged,
				IsFailed:   f.Status == status.StatusFailed,
			})
		}
		return
	}

	for _, b := range o.Blobs {
		logger.LogFileOperation(ctx, log.FileOperation{
			Name:   b.Name,
			Kind:   "blob",
			Status: "packed",
			Size:   b.Size(),
			IsNew:  true,
		})
	}
}
