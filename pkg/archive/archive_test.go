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
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/scriptpack/pkg/blob"
	"gitlab.com/tozd/go/errors"
)

var fixedNow = func() time.Time { return time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC) }

func sampleBlobs() []blob.NamedBlob {
	var c blob.Collection
	c = c.Append(
		blob.New("hello.sh", "echo hello", 0),
		blob.New("lib/util.sh", "util() { :; }", 0),
		blob.New("empty.txt", "", 0),
	)
	return c
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Format
		wantErr bool
	}{
		{name: "empty_is_zip", input: "", want: FormatZip},
		{name: "zip", input: "zip", want: FormatZip},
		{name: "tar_zst", input: "TAR.ZST", want: FormatTarZstd},
		{name: "tar_zstd_alias", input: "tar.zstd", want: FormatTarZstd},
		{name: "dir", input: "dir", want: FormatDir},
		{name: "unknown", input: "rar", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseFormat(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrUnsupportedFormat))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		path string
		want Format
	}{
		{path: "scripts.zip", want: FormatZip},
		{path: "out/scripts.tar", want: FormatTar},
		{path: "scripts.tar.zst", want: FormatTarZstd},
		{path: "scripts.tar.s2", want: FormatTarS2},
		{path: "SCRIPTS.TAR.LZ4", want: FormatTarLZ4},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := DetectFormat(tt.path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := DetectFormat("scripts.rar")
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))
}

func TestSafeName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "plain", input: "a.sh", want: "a.sh"},
		{name: "nested", input: "lib/util.sh", want: "lib/util.sh"},
		{name: "dot_prefix", input: "./a.sh", want: "a.sh"},
		{name: "backslashes", input: `lib\util.sh`, want: "lib/util.sh"},
		{name: "redundant_slashes", input: "lib//util.sh", want: "lib/util.sh"},
		{name: "parent", input: "../etc/passwd", wantErr: true},
		{name: "hidden_parent", input: "lib/../../x", wantErr: true},
		{name: "absolute", input: "/etc/passwd", wantErr: true},
		{name: "drive", input: `C:\x.txt`, wantErr: true},
		{name: "empty", input: "  ", wantErr: true},
		{name: "dot_only", input: "./.", wantErr: true},
		{name: "manifest_name_is_plain", input: "manifest.json", want: "manifest.json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SafeName(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrUnsafeName))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBundleRoundTrip(t *testing.T) {
	for _, format := range []Format{FormatZip, FormatTar, FormatTarZstd, FormatTarS2, FormatTarLZ4} {
		for _, withManifest := range []bool{true, false} {
			name := string(format)
			if !withManifest {
				name += "_no_manifest"
			}
			t.Run(name, func(t *testing.T) {
				ctx := context.Background()
				var buf bytes.Buffer
				sink := &WriterSink{W: &buf, Options: Options{Format: format, Manifest: withManifest, Now: fixedNow}}

				require.NoError(t, sink.Write(ctx, sampleBlobs()))

				got, err := Read(ctx, &buf, format)
				require.NoError(t, err)
				require.Len(t, got, 3)
				assert.Equal(t, []string{"hello.sh", "lib/util.sh", "empty.txt"}, blob.Collection(got).Names())
				assert.Equal(t, "util() { :; }", got[1].Content)
				for i, b := range got {
					assert.Equal(t, i, b.Order)
					assert.NotEmpty(t, b.ID)
				}
			})
		}
	}
}

func TestBundleIsDeterministic(t *testing.T) {
	for _, format := range []Format{FormatZip, FormatTar, FormatTarZstd} {
		t.Run(string(format), func(t *testing.T) {
			// blob IDs differ between runs, so the manifest is left out
			write := func() []byte {
				var buf bytes.Buffer
				sink := &WriterSink{W: &buf, Options: Options{Format: format}}
				require.NoError(t, sink.Write(context.Background(), sampleBlobs()))
				return buf.Bytes()
			}
			assert.Equal(t, write(), write())
		})
	}
}

func TestRead_ManifestOrderAndChecksum(t *testing.T) {
	ctx := context.Background()
	blobs := sampleBlobs()

	var buf bytes.Buffer
	require.NoError(t, writeTar(&buf, []blob.NamedBlob{blobs[2], blobs[0], blobs[1]}, mustManifest(t, blobs)))

	got, err := Read(ctx, bytes.NewReader(buf.Bytes()), FormatTar)
	require.NoError(t, err)
	assert.Equal(t, []string{"hello.sh", "lib/util.sh", "empty.txt"}, blob.Collection(got).Names(), "manifest order should win")

	tampered := blobs[0]
	tampered.Content = "rm -rf /"
	buf.Reset()
	require.NoError(t, writeTar(&buf, []blob.NamedBlob{tampered}, mustManifest(t, blobs)))

	_, err = Read(ctx, &buf, FormatTar)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrChecksumMismatch))
}

func TestRead_Errors(t *testing.T) {
	ctx := context.Background()

	_, err := Read(ctx, bytes.NewReader([]byte("nope")), FormatDir)
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))

	_, err = Read(ctx, bytes.NewReader([]byte("not a zip")), FormatZip)
	assert.Error(t, err)

	var buf bytes.Buffer
	require.NoError(t, writeTar(&buf, []blob.NamedBlob{{Name: "../escape.sh", Content: "x"}}, nil))
	_, err = Read(ctx, &buf, FormatTar)
	assert.True(t, errors.Is(err, ErrUnsafeName))
}

func TestManifest(t *testing.T) {
	blobs := sampleBlobs()
	m := NewManifest(blobs, fixedNow())

	assert.Equal(t, ManifestVersion, m.Version)
	require.Len(t, m.Files, 3)

	e := m.Files[0]
	assert.Equal(t, blobs[0].ID, e.ID)
	assert.Equal(t, "hello.sh", e.OriginalName)
	assert.Equal(t, 0, e.Order)
	assert.Equal(t, "text", e.Format)
	assert.Equal(t, len("echo hello"), e.Size)
	assert.Len(t, e.Checksum, 16)
	assert.Equal(t, Markers{Start: "--- START hello.sh ---", End: "--- END hello.sh ---"}, e.Markers)

	data, err := m.Marshal()
	require.NoError(t, err)
	assert.Contains(t, string(data), `"generatedAt": "2025-01-02T03:04:05Z"`)
	assert.Contains(t, string(data), `"originalName": "lib/util.sh"`)

	parsed, err := ParseManifest(data)
	require.NoError(t, err)
	assert.Equal(t, m.Files, parsed.Files)
	assert.NoError(t, parsed.Verify(blobs))
}

func TestFileSink(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	path := filepath.Join(dir, "scripts.tar.lz4")

	sink, err := NewSink(path, Options{Format: FormatTarLZ4, Manifest: true, Now: fixedNow})
	require.NoError(t, err)
	require.NoError(t, sink.Write(ctx, sampleBlobs()))

	got, err := ReadPath(ctx, path, "")
	require.NoError(t, err)
	assert.Len(t, got, 3)

	changed := sampleBlobs()[:1]
	err = sink.Write(ctx, changed)
	require.Error(t, err, "existing bundle should not be replaced without force")
	assert.True(t, errors.Is(err, ErrFileExists))

	forced, err := NewSink(path, Options{Format: FormatTarLZ4, Force: true})
	require.NoError(t, err)
	require.NoError(t, forced.Write(ctx, changed))

	got, err = ReadPath(ctx, path, FormatTarLZ4)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestDirSink(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	sink, err := NewSink(dir, Options{Format: FormatDir, Manifest: true, Now: fixedNow})
	require.NoError(t, err)
	require.NoError(t, sink.Write(ctx, sampleBlobs()))

	data, err := os.ReadFile(filepath.Join(dir, "lib", "util.sh"))
	require.NoError(t, err)
	assert.Equal(t, "util() { :; }", string(data))
	assert.FileExists(t, filepath.Join(dir, ManifestName))

	ds := sink.(*DirSink)
	assert.Len(t, ds.Files, 4, "three files plus the manifest")

	got, err := ReadPath(ctx, dir, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"hello.sh", "lib/util.sh", "empty.txt"}, blob.Collection(got).Names())

	// rewriting identical content is fine
	require.NoError(t, sink.Write(ctx, sampleBlobs()))
}

func TestDirSink_RefusesOverwrite(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "empty.txt"), []byte("keep me"), 0o644))

	sink := &DirSink{Dir: dir, Options: Options{Format: FormatDir}}
	err := sink.Write(ctx, sampleBlobs())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrFileExists))
	assert.NoFileExists(t, filepath.Join(dir, "hello.sh"), "nothing should be written after a conflict")

	sink.Options.Force = true
	require.NoError(t, sink.Write(ctx, sampleBlobs()))
	data, err := os.ReadFile(filepath.Join(dir, "empty.txt"))
	require.NoError(t, err)
	assert.Equal(t, "", string(data))
}

func TestDirSink_UnsafeName(t *testing.T) {
	dir := t.TempDir()
	sink := &DirSink{Dir: filepath.Join(dir, "out"), Options: Options{Format: FormatDir}}

	err := sink.Write(context.Background(), []blob.NamedBlob{{Name: "../escape.sh", Content: "x"}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnsafeName))
	assert.NoFileExists(t, filepath.Join(dir, "escape.sh"))
}

func TestDirSink_ManifestName(t *testing.T) {
	tests := []struct {
		name     string
		manifest bool
		wantErr  bool
	}{
		{name: "reserved_with_manifest", manifest: true, wantErr: true},
		{name: "plain_file_without_manifest", manifest: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := filepath.Join(t.TempDir(), "out")
			sink := &DirSink{Dir: dir, Options: Options{Format: FormatDir, Manifest: tt.manifest}}

			err := sink.Write(context.Background(), []blob.NamedBlob{{Name: "manifest.json", Content: `{"user": true}`}})
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrUnsafeName))
				assert.NoFileExists(t, filepath.Join(dir, ManifestName))
				return
			}

			require.NoError(t, err)
			data, err := os.ReadFile(filepath.Join(dir, ManifestName))
			require.NoError(t, err)
			assert.Equal(t, `{"user": true}`, string(data))
		})
	}
}

func TestSink_DuplicateNames(t *testing.T) {
	ctx := context.Background()
	var buf bytes.Buffer
	sink := &WriterSink{W: &buf, Options: Options{Format: FormatTar}}

	require.NoError(t, sink.Write(ctx, []blob.NamedBlob{
		{Name: "a.sh", Content: "first"},
		{Name: "b.sh", Content: "b"},
		{Name: "a.sh", Content: "second"},
	}))

	got, err := Read(ctx, &buf, FormatTar)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "a.sh", got[0].Name)
	assert.Equal(t, "second", got[0].Content)
}

func TestNewSink(t *testing.T) {
	_, err := NewSink(Stdio, Options{Format: FormatDir})
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))

	_, err = NewSink("x", Options{Format: "rar"})
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))

	s, err := NewSink(Stdio, Options{})
	require.NoError(t, err)
	assert.IsType(t, &WriterSink{}, s)
}

func TestWriteDocument(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	path := filepath.Join(dir, DefaultDocumentName)

	require.NoError(t, WriteDocument(ctx, path, "first"))
	require.NoError(t, WriteDocument(ctx, path, "second"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))

	var stdout bytes.Buffer
	require.NoError(t, writeDocument(ctx, Stdio, "to stdout", &stdout))
	assert.Equal(t, "to stdout", stdout.String())
}

func mustManifest(t *testing.T, blobs []blob.NamedBlob) []byte {
	t.Helper()
	data, err := NewManifest(blobs, fixedNow()).Marshal()
	require.NoError(t, err)
	return data
}
