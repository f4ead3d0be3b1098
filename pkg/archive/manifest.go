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
	"encoding/json"
	"time"

	"github.com/walteh/scriptpack/pkg/blob"
	"github.com/walteh/scriptpack/pkg/codec"
	"github.com/walteh/scriptpack/pkg/status"
	"gitlab.com/tozd/go/errors"
)

const (
	// ManifestName is the reserved entry describing a bundle
	ManifestName = "manifest.json"

	// ManifestVersion is written into every manifest
	ManifestVersion = "1.0.0"
)

// ErrChecksumMismatch is returned by Read when an entry does not match its manifest checksum.
var ErrChecksumMismatch = errors.Base("checksum mismatch")

// 📋 Manifest lists the files of a bundle
type Manifest struct {
	Version     string          `json:"version"`
	GeneratedAt time.Time       `json:"generatedAt"`
	Files       []ManifestEntry `json:"files"`
}

// ManifestEntry describes one file
type ManifestEntry struct {
	ID           string  `json:"id"`
	OriginalName string  `json:"originalName"`
	Order        int     `json:"order"`
	Format       string  `json:"format"`
	Size         int     `json:"size"`
	Checksum     string  `json:"checksum"`
	Markers      Markers `json:"markers"`
}

// Markers are the marker lines the file had in the combined document
type Markers struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// NewManifest describes blobs in the given order
func NewManifest(blobs []blob.NamedBlob, now time.Time) *Manifest {
	m := &Manifest{
		Version:     ManifestVersion,
		GeneratedAt: now.UTC(),
		Files:       make([]ManifestEntry, 0, len(blobs)),
	}
	for _, b := range blobs {
		m.Files = append(m.Files, ManifestEntry{
			ID:           b.ID,
			OriginalName: b.Name,
			Order:        b.Order,
			Format:       "text",
			Size:         b.Size(),
			Checksum:     status.Checksum([]byte(b.Content)),
			Markers: Markers{
				Start: codec.StartMarker(b.Name),
				End:   codec.EndMarker(b.Name),
			},
		})
	}
	return m
}

// Marshal returns indented JSON with a trailing newline
func (m *Manifest) Marshal() ([]byte, error) {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, errors.Errorf("marshalling manifest: %w", err)
	}
	return append(data, '\n'), nil
}

// ParseManifest decodes a manifest.json payload
func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, errors.Errorf("parsing manifest: %w", err)
	}
	return &m, nil
}

// Entry returns the entry for name
func (m *Manifest) Entry(name string) (ManifestEntry, bool) {
	for _, e := range m.Files {
		if e.OriginalName == name {
			return e, true
		}
	}
	return ManifestEntry{}, false
}

// Verify checks every blob against its entry, if it has one
func (m *Manifest) Verify(blobs []blob.NamedBlob) error {
	for _, b := range blobs {
		e, ok := m.Entry(b.Name)
		if !ok {
			continue
		}
		if got := status.Checksum([]byte(b.Content)); got != e.Checksum {
			return errors.WithDetails(ErrChecksumMismatch, "name", b.Name, "want", e.Checksum, "got", got)
		}
	}
	return nil
}
