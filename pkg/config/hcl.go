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

package config

import (
	"context"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"gitlab.com/tozd/go/errors"
)

func init() {
	Register(&HCLParser{})
}

// 🔧 HCLParser implements the Parser interface for HCL files
type HCLParser struct{}

// 🔍 CanParse checks if this parser can handle the given file
func (p *HCLParser) CanParse(filename string) bool {
	return strings.HasSuffix(strings.ToLower(filename), ".hcl")
}

// 📝 Parse parses the config from HCL
func (p *HCLParser) Parse(ctx context.Context, data []byte) (*Config, error) {
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCL(data, "config.hcl")
	if diags.HasErrors() {
		return nil, errors.Errorf("parsing HCL: %s", diags.Error())
	}

	// Create evaluation context
	evalCtx := &hcl.EvalContext{
		Variables: map[string]cty.Value{},
	}

	// Define HCL schema
	type hclConfig struct {
		Merge *struct {
			Output      string   `hcl:"output,optional"`
			Sort        string   `hcl:"sort,optional"`
			KeepPaths   bool     `hcl:"keep_paths,optional"`
			SkipBinary  bool     `hcl:"skip_binary,optional"`
			Extensions  []string `hcl:"extensions,optional"`
			Ignore      []string `hcl:"ignore,optional"`
			Workers     int      `hcl:"workers,optional"`
			MaxFileSize int64    `hcl:"max_file_size,optional"`
		} `hcl:"merge,block"`
		Split *struct {
			Output   string `hcl:"output,optional"`
			Format   string `hcl:"format,optional"`
			Manifest *bool  `hcl:"manifest,optional"`
			Force    bool   `hcl:"force,optional"`
		} `hcl:"split,block"`
	}

	// Decode HCL
	var hclCfg hclConfig
	diags = gohcl.DecodeBody(hclFile.Body, evalCtx, &hclCfg)
	if diags.HasErrors() {
		return nil, errors.Errorf("decoding HCL: %s", diags.Error())
	}

	// Convert to model
	cfg := &Config{}
	if m := hclCfg.Merge; m != nil {
		cfg.Merge = MergeArgs{
			Output:      m.Output,
			Sort:        m.Sort,
			KeepPaths:   m.KeepPaths,
			SkipBinary:  m.SkipBinary,
			Extensions:  m.Extensions,
			Ignore:      m.Ignore,
			Workers:     m.Workers,
			MaxFileSize: m.MaxFileSize,
		}
	}
	if s := hclCfg.Split; s != nil {
		cfg.Split = SplitArgs{
			Output:   s.Output,
			Format:   s.Format,
			Manifest: s.Manifest,
			Force:    s.Force,
		}
	}

	return cfg, nil
}
