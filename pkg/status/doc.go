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
Package status writes output files to disk and keeps track of what happened to each one.

🎯 Purpose:
- Writes files atomically under a base directory
- Refuses to overwrite existing files unless forced
- Records a status (new, modified, unchanged, failed) and an xxhash checksum per file
- Reports progress through the zerolog logger on the context

🔄 Flow:
 1. A sink asks the Manager to Sync a file
 2. The Manager compares the current content by checksum
 3. New or changed content is written to a temp file and renamed into place
 4. The resulting FileInfo is tracked and logged

🔍 Example:

	mgr := status.New("out", zerolog.Ctx(ctx))
	mgr.StartOperation(ctx, len(files))
	for i, f := range files {
		info, err := mgr.Sync(ctx, f.Name, []byte(f.Content), force)
		if err != nil {
			return err
		}
		mgr.UpdateProgress(ctx, i+1)
	}
	mgr.FinishOperation(ctx)
*/
package status
