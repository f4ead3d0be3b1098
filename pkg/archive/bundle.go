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
	"io"
	"path"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/walteh/scriptpack/pkg/blob"
	"gitlab.com/tozd/go/errors"
)

// ErrUnsafeName is returned for names that would land outside the output.
var ErrUnsafeName = errors.Base("unsafe file name")

// epoch0 is the mod time of every tar entry
var epoch0 = time.Unix(0, 0).UTC()

// 🔒 SafeName cleans name into a slash separated relative path.
// Absolute paths and ".." segments are rejected.
func SafeName(name string) (string, error) {
	clean := strings.ReplaceAll(strings.TrimSpace(name), "\\", "/")
	clean = strings.TrimPrefix(clean, "./")

	switch {
	case clean == "":
		return "", errors.WithDetails(ErrUnsafeName, "name", name, "reason", "empty")
	case strings.HasPrefix(clean, "/") || (len(clean) > 1 && clean[1] == ':'):
		return "", errors.WithDetails(ErrUnsafeName, "name", name, "reason", "absolute")
	}

	for _, part := range strings.Split(clean, "/") {
		if part == ".." {
			return "", errors.WithDetails(ErrUnsafeName, "name", name, "reason", "parent reference")
		}
	}

	clean = path.Clean(clean)
	if clean == "." {
		return "", errors.WithDetails(ErrUnsafeName, "name", name, "reason", "empty")
	}
	return clean, nil
}

// prepare validates names and folds duplicates.
// A repeated name keeps the first position and the last content.
// ManifestName is reserved only when a manifest is written.
func prepare(logger *zerolog.Logger, blobs []blob.NamedBlob, withManifest bool) ([]blob.NamedBlob, error) {
	out := make([]blob.NamedBlob, 0, len(blobs))
	index := map[string]int{}
	for _, b := range blobs {
		name, err := SafeName(b.Name)
		if err != nil {
			return nil, err
		}
		if withManifest && name == ManifestName {
			return nil, errors.WithDetails(ErrUnsafeName, "name", b.Name, "reason", "reserved for the manifest")
		}
		b.Name = name
		if i, ok := index[name]; ok {
			logger.Warn().Str("name", name).Msg("duplicate file name, keeping the last content")
			out[i].Content = b.Content
			continue
		}
		index[name] = len(out)
		out = append(out, b)
	}
	return out, nil
}

// writeBundle writes blobs, and the manifest when given, as format into w
func writeBundle(w io.Writer, format Format, blobs []blob.NamedBlob, manifest *Manifest) error {
	var manifestData []byte
	if manifest != nil {
		data, err := manifest.Marshal()
		if err != nil {
			return err
		}
		manifestData = data
	}

	if format == FormatZip {
		return writeZip(w, blobs, manifestData)
	}

	c, err := format.codec()
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := writeTar(&buf, blobs, manifestData); err != nil {
		return err
	}
	compressed, err := c.Compress(buf.Bytes())
	if err != nil {
		return errors.Errorf("compressing %s: %w", format, err)
	}
	if _, err := w.Write(compressed); err != nil {
		return errors.Errorf("writing %s: %w", format, err)
	}
	return nil
}

func writeZip(w io.Writer, blobs []blob.NamedBlob, manifest []byte) error {
	zw := zip.NewWriter(w)

	add := func(name string, content []byte) error {
		// Modified stays zero so every entry carries the MS-DOS epoch
		hdr := &zip.FileHeader{
			Name:   name,
			Method: zip.Deflate,
		}
		hdr.SetMode(0o644)
		fw, err := zw.CreateHeader(hdr)
		if err != nil {
			return errors.Errorf("creating zip entry %s: %w", name, err)
		}
		if _, err := fw.Write(content); err != nil {
			return errors.Errorf("writing zip entry %s: %w", name, err)
		}
		return nil
	}

	for _, b := range blobs {
		if err := add(b.Name, []byte(b.Content)); err != nil {
			_ = zw.Close()
			return err
		}
	}
	if manifest != nil {
		if err := add(ManifestName, manifest); err != nil {
			_ = zw.Close()
			return err
		}
	}

	if err := zw.Close(); err != nil {
		return errors.Errorf("closing zip: %w", err)
	}
	return nil
}

func writeTar(w io.Writer, blobs []blob.NamedBlob, manifest []byte) error {
	tw := tar.NewWriter(w)

	add := func(name string, content []byte) error {
		hdr := &tar.Header{
			Name:     name,
			Mode:     0o644,
			Size:     int64(len(content)),
			ModTime:  epoch0,
			Typeflag: tar.TypeReg,
		}
		if err := tw.WriteHeader(hdr); err != nil {
			return errors.Errorf("writing tar header %s: %w", name, err)
		}
		if _, err := tw.Write(content); err != nil {
			return errors.Errorf("writing tar entry %s: %w", name, err)
		}
		return nil
	}

	for _, b := range blobs {
		if err := add(b.Name, []byte(b.Content)); err != nil {
			_ = tw.Close()
			return err
		}
	}
	if manifest != nil {
		if err := add(ManifestName, manifest); err != nil {
			_ = tw.Close()
			return err
		}
	}

	if err := tw.Close(); err != nil {
		return errors.Errorf("closing tar: %w", err)
	}
	return nil
}
