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

	"gitlab.com/tozd/go/errors"

	"github.com/walteh/scriptpack/pkg/codec"
	"github.com/walteh/scriptpack/pkg/log"
)

// 🔎 InspectOperation scans a document and reports its records and skipped markers
type InspectOperation struct {
	Input DocumentReader

	// Report holds the scan result of the last Execute, also when no record was found
	Report *codec.Report
}

func (o *InspectOperation) Name() string { return "inspect" }

// 🏃 Execute scans the document without writing anything
func (o *InspectOperation) Execute(ctx context.Context) error {
	doc, err := o.Input.ReadDocument(ctx)
	if err != nil {
		return errors.Errorf("reading document: %w", err)
	}

	rep, err := codec.Scan(doc)
	if err != nil {
		return err
	}
	o.Report = rep

	logger := log.FromContext(ctx)
	logger.StartBatch(ctx, log.BatchOperation{Action: "inspect", Source: "document"})
	for _, r := range rep.Records {
		logger.LogFileOperation(ctx, log.FileOperation{
			Name:   r.Name,
			Kind:   "record",
			Status: "ok",
			Size:   len(r.Content),
		})
	}
	for _, d := range rep.Diagnostics {
		logger.LogFileOperation(ctx, log.FileOperation{
			Name:      d.Name,
			Kind:      "marker",
			Status:    d.Kind.String(),
			IsSkipped: true,
		})
		logger.Warning(d.String())
	}
	logger.EndBatch(ctx)

	if len(rep.Records) == 0 {
		return errors.WithStack(codec.ErrNoScriptsFound)
	}
	return nil
}
