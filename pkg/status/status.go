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

package status

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// ErrFileExists is returned by Sync when a file is present and force is off.
var ErrFileExists = errors.Base("file already exists")

// 📊 Status is what happened to a file
type Status int

const (
	StatusNew Status = iota
	StatusModified
	StatusUnchanged
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusNew:
		return "new"
	case StatusModified:
		return "modified"
	case StatusUnchanged:
		return "unchanged"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// 📄 FileInfo describes one tracked file
type FileInfo struct {
	Path     string // Relative to the manager's base directory
	Size     int
	Checksum string // xxhash64, lower-case hex
	Status   Status
	Error    error
}

// 🔧 Manager writes and tracks files under a base directory
type Manager struct {
	baseDir   string
	logger    *zerolog.Logger
	formatter FileFormatter

	mu    sync.RWMutex
	files map[string]FileInfo
	order []string

	total     int
	processed int
}

// 🏭 New creates a manager rooted at baseDir. A nil logger discards output.
func New(baseDir string, logger *zerolog.Logger) *Manager {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Manager{
		baseDir:   filepath.Clean(baseDir),
		logger:    logger,
		formatter: NewDefaultFileFormatter(),
		files:     make(map[string]FileInfo),
	}
}

// Checksum returns the xxhash64 of content as 16 hex digits
func Checksum(content []byte) string {
	return fmt.Sprintf("%016x", xxhash.Sum64(content))
}

// BaseDir returns the directory every path is relative to
func (m *Manager) BaseDir() string {
	return m.baseDir
}

// 🔒 AbsPath returns the on-disk path for a relative path
func (m *Manager) AbsPath(path string) string {
	return filepath.Join(m.baseDir, filepath.FromSlash(path))
}

// FileExists reports whether path is present
func (m *Manager) FileExists(ctx context.Context, path string) (bool, error) {
	_, err := os.Stat(m.AbsPath(path))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, errors.Errorf("checking file existence: %w", err)
}

// 📝 WriteFileAtomic writes content through a temp file in the same directory
func (m *Manager) WriteFileAtomic(ctx context.Context, path string, content []byte) error {
	absPath := m.AbsPath(path)
	dir := filepath.Dir(absPath)

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Errorf("creating parent directories: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(absPath)+".*.tmp")
	if err != nil {
		return errors.Errorf("creating temp file: %w", err)
	}
	tempPath := tmp.Name()

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		os.Remove(tempPath)
		return errors.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tempPath)
		return errors.Errorf("closing temp file: %w", err)
	}
	if err := os.Chmod(tempPath, 0o644); err != nil {
		os.Remove(tempPath)
		return errors.Errorf("setting file mode: %w", err)
	}

	if err := os.Rename(tempPath, absPath); err != nil {
		os.Remove(tempPath)
		return errors.Errorf("renaming temp file: %w", err)
	}

	return nil
}

// 🔄 Sync writes content to path unless it is already there.
// An existing file with different content fails with ErrFileExists unless force is set.
func (m *Manager) Sync(ctx context.Context, path string, content []byte, force bool) (FileInfo, error) {
	info := FileInfo{
		Path:     path,
		Size:     len(content),
		Checksum: Checksum(content),
		Status:   StatusNew,
	}

	current, err := os.ReadFile(m.AbsPath(path))
	switch {
	case err == nil && bytes.Equal(current, content):
		info.Status = StatusUnchanged
		m.TrackFile(ctx, info)
		return info, nil
	case err == nil && !force:
		err = errors.WithDetails(ErrFileExists, "path", m.AbsPath(path))
		info.Status = StatusFailed
		info.Error = err
		m.TrackFile(ctx, info)
		return info, err
	case err == nil:
		info.Status = StatusModified
	case !os.IsNotExist(err):
		return info, errors.Errorf("reading existing file: %w", err)
	}

	if err := m.WriteFileAtomic(ctx, path, content); err != nil {
		info.Status = StatusFailed
		info.Error = err
		m.TrackFile(ctx, info)
		return info, err
	}

	m.TrackFile(ctx, info)
	return info, nil
}

// TrackFile records info and logs it
func (m *Manager) TrackFile(ctx context.Context, info FileInfo) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.files[info.Path]; !ok {
		m.order = append(m.order, info.Path)
	}
	m.files[info.Path] = info

	msg := m.formatter.FormatFileOperation(info)
	if info.Error != nil {
		m.logger.Warn().Str("path", info.Path).Err(info.Error).Msg(msg)
		return
	}
	m.logger.Debug().
		Str("path", info.Path).
		Int("size", info.Size).
		Str("checksum", info.Checksum).
		Stringer("status", info.Status).
		Msg(msg)
}

// GetFileInfo returns the tracked info for path
func (m *Manager) GetFileInfo(ctx context.Context, path string) (FileInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	info, ok := m.files[path]
	if !ok {
		return FileInfo{}, errors.Errorf("file not tracked: %s", path)
	}
	return info, nil
}

// ListFiles returns every tracked file in the order it was first seen
func (m *Manager) ListFiles(ctx context.Context) []FileInfo {
	m.mu.RLock()
	defer m.mu.RUnlock()

	files := make([]FileInfo, 0, len(m.order))
	for _, p := range m.order {
		files = append(files, m.files[p])
	}
	return files
}

// ⏳ StartOperation resets progress for total files
func (m *Manager) StartOperation(ctx context.Context, total int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.total = total
	m.processed = 0
	m.logger.Debug().Int("total", total).Msg(m.formatter.FormatProgress(0, total))
}

// UpdateProgress records processed files
func (m *Manager) UpdateProgress(ctx context.Context, processed int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.processed = processed
	m.logger.Debug().
		Int("processed", processed).
		Int("total", m.total).
		Msg(m.formatter.FormatProgress(processed, m.total))
}

// FinishOperation logs the final progress line
func (m *Manager) FinishOperation(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.processed = m.total
	m.logger.Info().
		Int("processed", m.total).
		Int("total", m.total).
		Msg(m.formatter.FormatProgress(m.total, m.total))
}
