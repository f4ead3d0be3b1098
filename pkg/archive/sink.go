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
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/walteh/scriptpack/pkg/blob"
	"github.com/walteh/scriptpack/pkg/status"
	"gitlab.com/tozd/go/errors"
)

const (
	// DefaultBundleName is the default split output
	DefaultBundleName = "scripts.zip"

	// DefaultDocumentName is the default merge output
	DefaultDocumentName = "combined_scripts.txt"

	// Stdio names standard input or output instead of a file
	Stdio = "-"
)

// ErrFileExists is returned when an output file is present and Force is off.
var ErrFileExists = status.ErrFileExists

// 📤 Sink receives the blobs of a split document
type Sink interface {
	Write(ctx context.Context, blobs []blob.NamedBlob) error
}

// ⚙️ Options configure a sink
type Options struct {
	Format   Format
	Manifest bool             // add manifest.json
	Force    bool             // overwrite existing files
	Now      func() time.Time // manifest clock, time.Now when nil
}

func (o Options) now() time.Time {
	if o.Now == nil {
		return time.Now()
	}
	return o.Now()
}

func (o Options) manifest(blobs []blob.NamedBlob) *Manifest {
	if !o.Manifest {
		return nil
	}
	return NewManifest(blobs, o.now())
}

// 🏭 NewSink returns the sink for path. "-" streams a bundle to stdout.
func NewSink(path string, opts Options) (Sink, error) {
	if opts.Format == "" {
		opts.Format = FormatZip
	}
	if _, err := ParseFormat(string(opts.Format)); err != nil {
		return nil, err
	}

	switch {
	case opts.Format == FormatDir && path == Stdio:
		return nil, errors.WithDetails(ErrUnsupportedFormat, "format", string(opts.Format), "reason", "cannot stream a directory")
	case opts.Format == FormatDir:
		return &DirSink{Dir: path, Options: opts}, nil
	case path == Stdio:
		return &WriterSink{W: os.Stdout, Options: opts}, nil
	default:
		return &FileSink{Path: path, Options: opts}, nil
	}
}

// WriterSink streams a bundle into W
type WriterSink struct {
	W       io.Writer
	Options Options
}

func (s *WriterSink) Write(ctx context.Context, blobs []blob.NamedBlob) error {
	prepared, err := prepare(zerolog.Ctx(ctx), blobs, s.Options.Manifest)
	if err != nil {
		return err
	}
	return writeBundle(s.W, s.Options.Format, prepared, s.Options.manifest(prepared))
}

// FileSink writes a bundle file atomically
type FileSink struct {
	Path    string
	Options Options
}

func (s *FileSink) Write(ctx context.Context, blobs []blob.NamedBlob) error {
	logger := zerolog.Ctx(ctx)

	prepared, err := prepare(logger, blobs, s.Options.Manifest)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := writeBundle(&buf, s.Options.Format, prepared, s.Options.manifest(prepared)); err != nil {
		return err
	}

	mgr := status.New(filepath.Dir(s.Path), logger)
	if _, err := mgr.Sync(ctx, filepath.Base(s.Path), buf.Bytes(), s.Options.Force); err != nil {
		return errors.Errorf("writing %s: %w", s.Path, err)
	}
	return nil
}

// 📁 DirSink writes one file per blob under Dir
type DirSink struct {
	Dir     string
	Options Options

	// Files holds the outcome of the last Write
	Files []status.FileInfo
}

func (s *DirSink) Write(ctx context.Context, blobs []blob.NamedBlob) error {
	logger := zerolog.Ctx(ctx)

	prepared, err := prepare(logger, blobs, s.Options.Manifest)
	if err != nil {
		return err
	}

	mgr := status.New(s.Dir, logger)

	// refuse up front so a conflict leaves the directory untouched
	if !s.Options.Force {
		for _, b := range prepared {
			if err := s.checkFree(ctx, mgr, b.Name, []byte(b.Content)); err != nil {
				return err
			}
		}
	}

	mgr.StartOperation(ctx, len(prepared))
	for i, b := range prepared {
		if _, err := mgr.Sync(ctx, b.Name, []byte(b.Content), s.Options.Force); err != nil {
			return errors.Errorf("writing %s: %w", b.Name, err)
		}
		mgr.UpdateProgress(ctx, i+1)
	}

	if m := s.Options.manifest(prepared); m != nil {
		data, err := m.Marshal()
		if err != nil {
			return err
		}
		// the manifest always reflects the latest split
		if _, err := mgr.Sync(ctx, ManifestName, data, true); err != nil {
			return errors.Errorf("writing manifest: %w", err)
		}
	}
	mgr.FinishOperation(ctx)

	s.Files = mgr.ListFiles(ctx)
	return nil
}

func (s *DirSink) checkFree(ctx context.Context, mgr *status.Manager, name string, content []byte) error {
	current, err := os.ReadFile(mgr.AbsPath(name))
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return errors.Errorf("reading existing file: %w", err)
	}
	if bytes.Equal(current, content) {
		return nil
	}
	return errors.WithDetails(ErrFileExists, "path", mgr.AbsPath(name))
}

// 📝 WriteDocument writes a combined document to path atomically, or to stdout for "-"
func WriteDocument(ctx context.Context, path string, doc string) error {
	return writeDocument(ctx, path, doc, os.Stdout)
}

func writeDocument(ctx context.Context, path string, doc string, stdout io.Writer) error {
	if path == Stdio {
		if _, err := io.WriteString(stdout, doc); err != nil {
			return errors.Errorf("writing document to stdout: %w", err)
		}
		return nil
	}

	mgr := status.New(filepath.Dir(path), zerolog.Ctx(ctx))
	if err := mgr.WriteFileAtomic(ctx, filepath.Base(path), []byte(doc)); err != nil {
		return errors.Errorf("writing document: %w", err)
	}
	return nil
}
