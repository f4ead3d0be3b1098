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
Package archive packages split blobs into files: a zip or tar bundle, or a plain directory.

🎯 Purpose:
- Writes deterministic bundles (blob order, fixed mod time, mode 0644)
- Adds a manifest.json describing every file with its checksum and markers
- Reads bundles back into blobs, verifying checksums when a manifest is present
- Writes combined documents atomically or to stdout

📦 Formats:

	zip       default, deflate
	tar       uncompressed
	tar.zst   zstd (klauspost/compress)
	tar.s2    s2 (klauspost/compress)
	tar.lz4   lz4 (pierrec/lz4)
	dir       one file per blob

🔍 Example:

	sink, err := archive.NewSink("scripts.zip", archive.Options{Format: archive.FormatZip, Manifest: true})
	if err != nil {
		return err
	}
	if err := sink.Write(ctx, blobs); err != nil {
		return err
	}
*/
package archive
