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
	"archive/tar"
	"archive/zip"
	"bytes"
	"context"
	"io"
	"io/fs"
	"os"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"github.com/walteh/scriptpack/pkg/blob"
	"gitlab.com/tozd/go/errors"
)

type entry struct {
	name    string
	content []byte
}

// 📖 Read loads the blobs of a zip or tar bundle in entry order.
// manifest.json is not returned as a blob; when present it drives ordering and checksum verification.
func Read(ctx context.Context, r io.Reader, format Format) ([]blob.NamedBlob, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Errorf("reading %s bundle: %w", format, err)
	}

	var entries []entry
	switch {
	case format == FormatZip:
		entries, err = readZip(data)
	case format.IsTar():
		entries, err = readTar(data, format)
	default:
		err = errors.WithDetails(ErrUnsupportedFormat, "format", string(format))
	}
	if err != nil {
		return nil, err
	}

	return fromEntries(ctx, entries)
}

// ReadPath loads a bundle file or an output directory.
// An empty format is detected from the path.
func ReadPath(ctx context.Context, path string, format Format) ([]blob.NamedBlob, error) {
	if format == "" {
		fi, err := os.Stat(path)
		if err != nil {
			return nil, errors.Errorf("inspecting %s: %w", path, err)
		}
		if fi.IsDir() {
			format = FormatDir
		} else if format, err = DetectFormat(path); err != nil {
			return nil, err
		}
	}

	if format == FormatDir {
		return readDir(ctx, path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Errorf("opening bundle: %w", err)
	}
	defer f.Close()

	return Read(ctx, f, format)
}

func readZip(data []byte) ([]entry, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, errors.Errorf("opening zip: %w", err)
	}

	var entries []entry
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, errors.Errorf("opening zip entry %s: %w", f.Name, err)
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, errors.Errorf("reading zip entry %s: %w", f.Name, err)
		}
		entries = append(entries, entry{name: f.Name, content: content})
	}
	return entries, nil
}

func readTar(data []byte, format Format) ([]entry, error) {
	c, err := format.codec()
	if err != nil {
		return nil, err
	}
	raw, err := c.Decompress(data)
	if err != nil {
		return nil, errors.Errorf("decompressing %s: %w", format, err)
	}

	tr := tar.NewReader(bytes.NewReader(raw))
	var entries []entry
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return entries, nil
		}
		if err != nil {
			return nil, errors.Errorf("reading tar: %w", err)
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}
		content, err := io.ReadAll(tr)
		if err != nil {
			return nil, errors.Errorf("reading tar entry %s: %w", hdr.Name, err)
		}
		entries = append(entries, entry{name: hdr.Name, content: content})
	}
}

func readDir(ctx context.Context, dir string) ([]blob.NamedBlob, error) {
	fsys := os.DirFS(dir)

	names, err := doublestar.Glob(fsys, "**", doublestar.WithFilesOnly())
	if err != nil {
		return nil, errors.Errorf("listing %s: %w", dir, err)
	}
	sort.Strings(names)

	entries := make([]entry, 0, len(names))
	for _, name := range names {
		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, errors.Errorf("reading %s: %w", name, err)
		}
		entries = append(entries, entry{name: name, content: content})
	}
	return fromEntries(ctx, entries)
}

// fromEntries turns entries into blobs, honouring the manifest when there is one
func fromEntries(ctx context.Context, entries []entry) ([]blob.NamedBlob, error) {
	logger := zerolog.Ctx(ctx)

	var manifest *Manifest
	var blobs blob.Collection
	for _, e := range entries {
		if e.name == ManifestName {
			m, err := ParseManifest(e.content)
			if err != nil {
				return nil, err
			}
			manifest = m
			continue
		}
		name, err := SafeName(e.name)
		if err != nil {
			return nil, err
		}
		blobs = blobs.Append(blob.New(name, string(e.content), 0))
	}

	if manifest == nil {
		return blobs, nil
	}

	if err := manifest.Verify(blobs); err != nil {
		return nil, err
	}

	// manifest order wins; files it does not list keep their position after it
	for i := range blobs {
		if e, ok := manifest.Entry(blobs[i].Name); ok {
			blobs[i].Order = e.Order
		} else {
			blobs[i].Order = len(manifest.Files) + i
			logger.Debug().Str("name", blobs[i].Name).Msg("file not listed in manifest")
		}
	}
	return blobs.SortByOrder().Renumber(), nil
}
