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

package codec

import (
	"bufio"
	"io"
	"strings"

	"github.com/walteh/scriptpack/pkg/blob"
	"gitlab.com/tozd/go/errors"
)

// 📦 Encode combines blobs into one document, in the order given.
// An empty input produces an empty document.
func Encode(blobs []blob.NamedBlob) (string, error) {
	var sb strings.Builder
	if err := EncodeTo(&sb, blobs); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// EncodeTo writes the combined document to w. Nothing is written when validation fails.
func EncodeTo(w io.Writer, blobs []blob.NamedBlob) error {
	for i, b := range blobs {
		if err := validateBlob(b); err != nil {
			return errors.Errorf("blob %d: %w", i, err)
		}
	}

	bw := bufio.NewWriter(w)
	for i, b := range blobs {
		if i > 0 {
			// blank separator line
			if err := bw.WriteByte('\n'); err != nil {
				return errors.Errorf("writing separator: %w", err)
			}
		}
		if err := writeRecord(bw, b); err != nil {
			return errors.Errorf("writing record %q: %w", b.Name, err)
		}
	}

	if err := bw.Flush(); err != nil {
		return errors.Errorf("flushing document: %w", err)
	}
	return nil
}

func writeRecord(w *bufio.Writer, b blob.NamedBlob) error {
	for _, part := range []string{StartMarker(b.Name), b.Content, EndMarker(b.Name)} {
		if _, err := w.WriteString(part); err != nil {
			return err
		}
		if err := w.WriteByte('\n'); err != nil {
			return err
		}
	}
	return nil
}

// validateBlob rejects blobs that would not survive a round trip
func validateBlob(b blob.NamedBlob) error {
	if err := ValidateName(b.Name); err != nil {
		return err
	}

	if b.Content == "" {
		return nil
	}

	for i, line := range strings.Split(b.Content, "\n") {
		if kind, name := parseMarker(line); kind == kindEnd && name == b.Name {
			return errors.Errorf("%w: content of %q contains its own end marker on line %d", ErrInvalidInputShape, b.Name, i+1)
		}
	}

	rep := scanLines(strings.Split(b.Content, "\n"))
	if rep.nested != nil {
		return rep.nested
	}
	if len(rep.records) > 0 {
		return &NestedRecordError{Outer: b.Name, Inner: rep.records[0].Name}
	}

	return nil
}
