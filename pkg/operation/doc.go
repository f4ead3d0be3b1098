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

/*
Package operation runs the merge, split and inspect workflows.

🎯 Purpose:
- Wires sources, the codec and sinks into runnable operations
- Keeps file I/O behind small interfaces so every workflow is testable
- Reports each file through pkg/log

🔄 Flow:

	merge:   Source -> sort -> codec.Encode -> DocumentWriter
	split:   DocumentReader -> codec.Decode -> archive.Sink
	inspect: DocumentReader -> codec.Scan -> Report

🤝 Interfaces:
- Source: yields blobs to merge (files on disk or an existing bundle)
- DocumentReader: yields the single combined document
- DocumentWriter: stores a combined document
- archive.Sink: stores split files

🔍 Example:

	op := &operation.MergeOperation{
		Source: operation.FileSource{Options: source.Options{Paths: args}},
		Sort:   blob.SortName,
		Output: operation.DocumentFile{Path: "combined_scripts.txt"},
	}
	err := operation.NewRunner(zerolog.Ctx(ctx), false).Run(ctx, op)
*/
package operation
