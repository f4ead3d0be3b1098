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
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/walteh/scriptpack/pkg/archive"
	"github.com/walteh/scriptpack/pkg/blob"
	"github.com/walteh/scriptpack/pkg/source"
	"gitlab.com/tozd/go/errors"
)

const (
	// DefaultFile is looked up in the working directory when no --config is given
	DefaultFile = ".scriptpack.yaml"

	DefaultWorkers     = source.DefaultWorkers
	DefaultMaxFileSize = source.DefaultMaxFileSize
)

// DefaultExtensions are accepted by directory walks when none are configured
var DefaultExtensions = source.DefaultExtensions

// ErrInvalidConfig is returned when a config file fails validation.
var ErrInvalidConfig = errors.Base("invalid config")

// 🔌 Parser is the interface for config parsers
type Parser interface {
	// 📝 Parse parses the config from bytes
	Parse(ctx context.Context, data []byte) (*Config, error)

	// 🔍 CanParse checks if this parser can handle the given file
	CanParse(filename string) bool
}

var (
	// 🗺️ parsers is a list of available parsers
	parsers []Parser
)

// 📝 Register registers a parser
func Register(p Parser) {
	parsers = append(parsers, p)
}

// 🎯 GetParser returns a parser that can handle the given file
func GetParser(filename string) Parser {
	for _, p := range parsers {
		if p.CanParse(filename) {
			return p
		}
	}
	return nil
}

// 🔗 MergeArgs configures the merge command
type MergeArgs struct {
	Output      string   `json:"output,omitempty" yaml:"output,omitempty"`
	Sort        string   `json:"sort,omitempty" yaml:"sort,omitempty"` // none | name | order
	KeepPaths   bool     `json:"keep_paths,omitempty" yaml:"keep_paths,omitempty"`
	SkipBinary  bool     `json:"skip_binary,omitempty" yaml:"skip_binary,omitempty"`
	Extensions  []string `json:"extensions,omitempty" yaml:"extensions,omitempty"` // nil = DefaultExtensions, empty = everything
	Ignore      []string `json:"ignore,omitempty" yaml:"ignore,omitempty"`         // doublestar patterns
	Workers     int      `json:"workers,omitempty" yaml:"workers,omitempty"`
	MaxFileSize int64    `json:"max_file_size,omitempty" yaml:"max_file_size,omitempty"`
}

// ✂️ SplitArgs configures the split command
type SplitArgs struct {
	Output   string `json:"output,omitempty" yaml:"output,omitempty"`
	Format   string `json:"format,omitempty" yaml:"format,omitempty"`
	Manifest *bool  `json:"manifest,omitempty" yaml:"manifest,omitempty"` // nil = true
	Force    bool   `json:"force,omitempty" yaml:"force,omitempty"`
}

// 📚 Config represents the complete configuration
type Config struct {
	Merge MergeArgs `json:"merge" yaml:"merge"`
	Split SplitArgs `json:"split" yaml:"split"`

	location string
}

// 🏭 Default returns a validated config with every default applied
func Default() *Config {
	cfg := &Config{}
	// defaults always validate
	_ = cfg.Validate()
	return cfg
}

// Location returns the file the config was loaded from, empty for defaults
func (cfg *Config) Location() string {
	return cfg.location
}

// 🎯 Load loads the configuration from a file
func Load(ctx context.Context, path string) (*Config, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("path", path).Msg("loading configuration")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading config file: %w", err)
	}

	var cfg *Config
	if p := GetParser(path); p != nil {
		if cfg, err = p.Parse(ctx, data); err != nil {
			return nil, errors.Errorf("parsing config: %w", err)
		}
	} else if ext := filepath.Ext(path); ext == "" || ext == filepath.Base(path) {
		// dotfiles without a format suffix may hold YAML or HCL
		if cfg, err = (&YAMLParser{}).Parse(ctx, data); err != nil {
			hclCfg, hclErr := (&HCLParser{}).Parse(ctx, data)
			if hclErr != nil {
				return nil, errors.Errorf("parsing %s as YAML or HCL: %w", path, err)
			}
			cfg = hclCfg
		}
	} else {
		return nil, errors.Errorf("no parser found for file: %s", path)
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("validating config: %w", err)
	}

	cfg.location = path
	logger.Debug().Str("path", path).Str("config", cfg.String()).Msg("configuration loaded")
	return cfg, nil
}

// 🎯 LoadOrDefault loads path, falling back to Default when path is the
// implicit default file and it does not exist.
func LoadOrDefault(ctx context.Context, path string, explicit bool) (*Config, error) {
	if path == "" {
		path = DefaultFile
	}
	if !explicit {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			zerolog.Ctx(ctx).Debug().Str("path", path).Msg("no config file, using defaults")
			return Default(), nil
		}
	}
	return Load(ctx, path)
}

// 🔍 Validate applies defaults and checks every value
func (cfg *Config) Validate() error {
	if cfg.Merge.Output == "" {
		cfg.Merge.Output = archive.DefaultDocumentName
	}
	sort, err := blob.ParseSortMode(cfg.Merge.Sort)
	if err != nil {
		return errors.Errorf("%w: merge.sort %q must be one of none, name, order", ErrInvalidConfig, cfg.Merge.Sort)
	}
	cfg.Merge.Sort = string(sort)

	if cfg.Merge.Extensions == nil {
		cfg.Merge.Extensions = append([]string(nil), DefaultExtensions...)
	}
	for i, ext := range cfg.Merge.Extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			return errors.Errorf("%w: merge.extensions[%d] is empty", ErrInvalidConfig, i)
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		cfg.Merge.Extensions[i] = ext
	}

	switch {
	case cfg.Merge.Workers < 0:
		return errors.Errorf("%w: merge.workers must not be negative", ErrInvalidConfig)
	case cfg.Merge.Workers == 0:
		cfg.Merge.Workers = DefaultWorkers
	}
	switch {
	case cfg.Merge.MaxFileSize < 0:
		return errors.Errorf("%w: merge.max_file_size must not be negative", ErrInvalidConfig)
	case cfg.Merge.MaxFileSize == 0:
		cfg.Merge.MaxFileSize = DefaultMaxFileSize
	}

	format, err := archive.ParseFormat(cfg.Split.Format)
	if err != nil {
		return errors.Errorf("%w: split.format %q is not supported", ErrInvalidConfig, cfg.Split.Format)
	}
	cfg.Split.Format = string(format)

	if cfg.Split.Output == "" {
		cfg.Split.Output = DefaultSplitOutput(format)
	}
	if cfg.Split.Manifest == nil {
		enabled := true
		cfg.Split.Manifest = &enabled
	}

	return nil
}

// ManifestEnabled reports whether split writes manifest.json
func (cfg *Config) ManifestEnabled() bool {
	return cfg.Split.Manifest == nil || *cfg.Split.Manifest
}

// 📝 String returns a string representation of the config
func (cfg *Config) String() string {
	return fmt.Sprintf("merge(sort=%s, ext=%v, workers=%d) -> %s; split(format=%s) -> %s",
		cfg.Merge.Sort, cfg.Merge.Extensions, cfg.Merge.Workers, cfg.Merge.Output,
		cfg.Split.Format, cfg.Split.Output)
}

// DefaultSplitOutput is the split output used when none is configured for format
func DefaultSplitOutput(format archive.Format) string {
	switch format {
	case archive.FormatZip:
		return archive.DefaultBundleName
	case archive.FormatDir:
		return "scripts"
	default:
		return "scripts" + format.Ext()
	}
}
