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

// Package source turns files on disk into blobs ready to merge.
package source

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"github.com/walteh/scriptpack/pkg/blob"
	"github.com/walteh/scriptpack/pkg/codec"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultWorkers     = 4
	DefaultMaxFileSize = 1 << 20

	// sniffLen is how much of a file is searched for NUL bytes
	sniffLen = 8000
)

var (
	// DefaultExtensions are accepted by directory walks when Options.Extensions is nil
	DefaultExtensions = []string{".txt"}

	ErrBinaryFile   = errors.Base("binary file")
	ErrFileTooLarge = errors.Base("file too large")
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ⚙️ Options select and read source files
type Options struct {
	Paths       []string // files, directories or doublestar globs; "-" is not accepted
	Extensions  []string // nil = DefaultExtensions, empty = everything
	Ignore      []string // doublestar patterns matched against names and paths
	KeepPaths   bool     // name blobs by relative path instead of base name
	SkipBinary  bool     // skip binary files instead of failing
	Workers     int
	MaxFileSize int64
}

// 📄 File is one expanded input
type File struct {
	Path string // on disk
	Name string // blob name
}

// 🔍 Expand resolves opts.Paths into files, in argument order.
// Files inside a directory or glob follow in lexical order.
func Expand(ctx context.Context, opts Options) ([]File, error) {
	logger := zerolog.Ctx(ctx)

	exts := opts.Extensions
	if exts == nil {
		exts = DefaultExtensions
	}

	var files []File
	seen := map[string]bool{}
	add := func(f File) {
		key := filepath.Clean(f.Path)
		if seen[key] {
			return
		}
		if ignored(opts.Ignore, f) {
			logger.Debug().Str("path", f.Path).Msg("ignoring file")
			return
		}
		seen[key] = true
		files = append(files, f)
	}

	for _, p := range opts.Paths {
		if hasMeta(p) {
			base, pattern := doublestar.SplitPattern(filepath.ToSlash(p))
			matches, err := doublestar.Glob(os.DirFS(base), pattern, doublestar.WithFilesOnly())
			if err != nil {
				return nil, errors.Errorf("expanding %s: %w", p, err)
			}
			if len(matches) == 0 {
				logger.Warn().Str("pattern", p).Msg("pattern matched no files")
			}
			sort.Strings(matches)
			for _, m := range matches {
				add(File{Path: filepath.Join(base, filepath.FromSlash(m)), Name: name(m, opts.KeepPaths)})
			}
			continue
		}

		fi, err := os.Stat(p)
		if err != nil {
			return nil, errors.Errorf("reading %s: %w", p, err)
		}

		if !fi.IsDir() {
			rel := filepath.ToSlash(filepath.Clean(p))
			if filepath.IsAbs(p) || strings.HasPrefix(rel, "../") {
				rel = filepath.Base(p)
			}
			add(File{Path: p, Name: name(rel, opts.KeepPaths)})
			continue
		}

		matches, err := doublestar.Glob(os.DirFS(p), "**", doublestar.WithFilesOnly())
		if err != nil {
			return nil, errors.Errorf("walking %s: %w", p, err)
		}
		sort.Strings(matches)
		for _, m := range matches {
			if !hasExtension(m, exts) {
				continue
			}
			add(File{Path: filepath.Join(p, filepath.FromSlash(m)), Name: name(m, opts.KeepPaths)})
		}
	}

	return files, nil
}

// 📥 Collect expands opts.Paths and reads every file concurrently.
// The result keeps Expand order and is numbered from zero.
func Collect(ctx context.Context, opts Options) ([]blob.NamedBlob, error) {
	logger := zerolog.Ctx(ctx)

	files, err := Expand(ctx, opts)
	if err != nil {
		return nil, err
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}
	maxSize := opts.MaxFileSize
	if maxSize <= 0 {
		maxSize = DefaultMaxFileSize
	}

	contents := make([]*string, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, f := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			content, err := readFile(f.Path, maxSize)
			if errors.Is(err, ErrBinaryFile) && opts.SkipBinary {
				logger.Warn().Str("path", f.Path).Msg("skipping binary file")
				return nil
			}
			if err != nil {
				return err
			}

			contents[i] = &content
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out blob.Collection
	for i, f := range files {
		if contents[i] == nil {
			continue
		}
		out = out.Append(blob.New(f.Name, *contents[i], 0))
	}

	logger.Debug().Int("files", len(out)).Msg("collected sources")
	return out, nil
}

// 📄 ReadDocument reads the single combined document named by paths.
// "-" reads stdin. Anything but exactly one path fails with codec.ErrInvalidInputShape.
func ReadDocument(ctx context.Context, paths []string, stdin io.Reader) (string, error) {
	if len(paths) != 1 {
		return "", errors.Errorf("%w: expected exactly one document, got %d", codec.ErrInvalidInputShape, len(paths))
	}

	var data []byte
	var err error
	if paths[0] == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(paths[0])
	}
	if err != nil {
		return "", errors.Errorf("reading document: %w", err)
	}

	if IsBinary(data) {
		return "", errors.WithDetails(ErrBinaryFile, "path", paths[0])
	}

	zerolog.Ctx(ctx).Debug().Str("path", paths[0]).Int("size", len(data)).Msg("read document")
	return string(bytes.TrimPrefix(data, utf8BOM)), nil
}

// IsBinary reports whether data has a NUL byte near the start or is not valid UTF-8
func IsBinary(data []byte) bool {
	head := data
	if len(head) > sniffLen {
		head = head[:sniffLen]
	}
	return bytes.IndexByte(head, 0) >= 0 || !utf8.Valid(data)
}

func readFile(path string, maxSize int64) (string, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return "", errors.Errorf("reading %s: %w", path, err)
	}
	if fi.Size() > maxSize {
		return "", errors.WithDetails(ErrFileTooLarge, "path", path, "size", fi.Size(), "max", maxSize)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", errors.Errorf("reading %s: %w", path, err)
	}
	if IsBinary(data) {
		return "", errors.WithDetails(ErrBinaryFile, "path", path)
	}
	return string(bytes.TrimPrefix(data, utf8BOM)), nil
}

func name(rel string, keepPaths bool) string {
	if keepPaths {
		return rel
	}
	return filepath.Base(filepath.FromSlash(rel))
}

func hasMeta(p string) bool {
	return strings.ContainsAny(p, "*?[{")
}

func hasExtension(name string, exts []string) bool {
	if len(exts) == 0 {
		return true
	}
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range exts {
		if strings.EqualFold(e, ext) {
			return true
		}
	}
	return false
}

func ignored(patterns []string, f File) bool {
	for _, pattern := range patterns {
		for _, candidate := range []string{f.Name, filepath.ToSlash(f.Path)} {
			if ok, _ := doublestar.Match(pattern, candidate); ok {
				return true
			}
		}
	}
	return false
}
