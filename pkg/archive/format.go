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

package archive

import (
	"strings"

	"github.com/walteh/scriptpack/pkg/archive/compress"
	"gitlab.com/tozd/go/errors"
)

// ErrUnsupportedFormat is returned for an unknown output format.
var ErrUnsupportedFormat = errors.Base("unsupported archive format")

// 📦 Format is an output packaging
type Format string

const (
	FormatZip     Format = "zip"
	FormatTar     Format = "tar"
	FormatTarZstd Format = "tar.zst"
	FormatTarS2   Format = "tar.s2"
	FormatTarLZ4  Format = "tar.lz4"
	FormatDir     Format = "dir"
)

// Formats lists every supported format, default first
func Formats() []Format {
	return []Format{FormatZip, FormatTar, FormatTarZstd, FormatTarS2, FormatTarLZ4, FormatDir}
}

// ParseFormat parses a format name. The empty string means FormatZip.
func ParseFormat(s string) (Format, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return FormatZip, nil
	}
	if s == "tar.zstd" {
		s = string(FormatTarZstd)
	}
	for _, f := range Formats() {
		if string(f) == s {
			return f, nil
		}
	}
	return "", errors.WithDetails(ErrUnsupportedFormat, "format", s)
}

// DetectFormat guesses the format of path from its suffix
func DetectFormat(path string) (Format, error) {
	lower := strings.ToLower(path)
	for _, f := range []Format{FormatTarZstd, FormatTarS2, FormatTarLZ4, FormatTar, FormatZip} {
		if strings.HasSuffix(lower, f.Ext()) {
			return f, nil
		}
	}
	return "", errors.WithDetails(ErrUnsupportedFormat, "path", path)
}

// Ext returns the file suffix for the format, empty for FormatDir
func (f Format) Ext() string {
	if f == FormatDir {
		return ""
	}
	return "." + string(f)
}

// IsTar reports whether the format is a tar stream
func (f Format) IsTar() bool {
	return f == FormatTar || strings.HasPrefix(string(f), "tar.")
}

// codec returns the compressor applied around a tar stream
func (f Format) codec() (compress.Codec, error) {
	switch f {
	case FormatTar:
		return compress.GetCodec(compress.None)
	case FormatTarZstd:
		return compress.GetCodec(compress.Zstd)
	case FormatTarS2:
		return compress.GetCodec(compress.S2)
	case FormatTarLZ4:
		return compress.GetCodec(compress.LZ4)
	default:
		return nil, errors.WithDetails(ErrUnsupportedFormat, "format", string(f))
	}
}
