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

package operation

import (
	"context"
	"io"

	"github.com/walteh/scriptpack/pkg/archive"
	"github.com/walteh/scriptpack/pkg/blob"
	"github.com/walteh/scriptpack/pkg/source"
)

// 🏃 Operation is one runnable workflow
type Operation interface {
	Name() string
	Execute(ctx context.Context) error
}

// 📥 Source yields the blobs to merge
type Source interface {
	Collect(ctx context.Context) ([]blob.NamedBlob, error)
}

// 📄 DocumentReader yields the combined document to split or inspect
type DocumentReader interface {
	ReadDocument(ctx context.Context) (string, error)
}

// 📝 DocumentWriter stores a combined document
type DocumentWriter interface {
	WriteDocument(ctx context.Context, doc string) error
}

// FileSource collects blobs from files, directories and globs
type FileSource struct {
	Options source.Options
}

func (s FileSource) Collect(ctx context.Context) ([]blob.NamedBlob, error) {
	return source.Collect(ctx, s.Options)
}

// ArchiveSource collects blobs from an existing bundle or output directory
type ArchiveSource struct {
	Path   string
	Format archive.Format // detected from Path when empty
}

func (s ArchiveSource) Collect(ctx context.Context) ([]blob.NamedBlob, error) {
	return archive.ReadPath(ctx, s.Path, s.Format)
}

// FileDocument reads the one document named by Paths, "-" meaning Stdin
type FileDocument struct {
	Paths []string
	Stdin io.Reader
}

func (d FileDocument) ReadDocument(ctx context.Context) (string, error) {
	return source.ReadDocument(ctx, d.Paths, d.Stdin)
}

// DocumentFile writes a document atomically to Path, "-" meaning stdout
type DocumentFile struct {
	Path string
}

func (d DocumentFile) WriteDocument(ctx context.Context, doc string) error {
	return archive.WriteDocument(ctx, d.Path, doc)
}
