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
Package codec implements the combined document format used by scriptpack.

	+-----------------+   Encode   +--------------------+
	| []NamedBlob     | ---------> | combined document  |
	| (name, content) | <--------- | (START/END records)|
	+-----------------+   Decode   +--------------------+

🎯 Purpose:
- Encode an ordered list of text blobs into one human readable document
- Decode such a document back into the ordered list
- Report malformed markers without failing the whole document

📄 Format:

	--- START <name> ---
	<content>
	--- END <name> ---

	--- START <name2> ---
	...

Records are separated by one blank line. The decoder does not need the blank line.

🔄 Decoding is a two-phase scan:
 1. Every line is classified as START marker, END marker or text.
 2. A single forward cursor pairs each START with the nearest following END that
    carries the byte-identical name. Unpaired markers are skipped and reported by Scan.

⚡ Guarantees:
- Decode(Encode(S)) equals S with trimmed content and Order renumbered from 0
- Encode never re-sorts its input
- Both directions are pure and safe for concurrent use

🚫 Rejected input:
- Names that are empty, span lines or contain "---"
- Records nested inside the content of another record
*/
package codec
