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
Package config loads the scriptpack configuration file.

🎯 Purpose:
- Parses YAML, HCL or JSON config files into one schema
- Applies defaults and rejects unknown sorts, formats and fields
- Treats a missing default file as "use defaults"

🔄 Flow:
 1. Picks a parser from the registry by file extension
 2. Falls back to YAML then HCL for dotfiles without a suffix
 3. Validates and normalises the result

📄 Schema (YAML):

	merge:
	  output: combined_scripts.txt
	  sort: none            # none | name | order
	  keep_paths: false
	  skip_binary: false
	  extensions: [".txt"]
	  ignore: ["vendor/**", ".git/**"]
	  workers: 4
	  max_file_size: 1048576
	split:
	  output: scripts.zip
	  format: zip           # zip | tar | tar.zst | tar.s2 | tar.lz4 | dir
	  manifest: true
	  force: false

The same schema in HCL uses merge and split blocks.

🔍 Example:

	cfg, err := config.LoadOrDefault(ctx, flagPath, flagPath != "")
	if err != nil {
		if errors.Is(err, config.ErrInvalidConfig) {
			// show the offending value
		}
		return err
	}
*/
package config
