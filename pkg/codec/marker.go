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
	"strings"

	"gitlab.com/tozd/go/errors"
)

// Delimiter is the token that frames every marker line.
const Delimiter = "---"

const (
	startPrefix  = Delimiter + " START "
	endPrefix    = Delimiter + " END "
	markerSuffix = " " + Delimiter
)

type markerKind int

const (
	kindText markerKind = iota
	kindStart
	kindEnd
)

// StartMarker returns the START line for name, without a newline
func StartMarker(name string) string {
	return startPrefix + name + markerSuffix
}

// EndMarker returns the END line for name, without a newline
func EndMarker(name string) string {
	return endPrefix + name + markerSuffix
}

// parseMarker classifies one line. A trailing carriage return is ignored.
func parseMarker(line string) (markerKind, string) {
	line = strings.TrimSuffix(line, "\r")
	if !strings.HasSuffix(line, markerSuffix) {
		return kindText, ""
	}

	var kind markerKind
	var rest string
	switch {
	case strings.HasPrefix(line, startPrefix):
		kind, rest = kindStart, line[len(startPrefix):]
	case strings.HasPrefix(line, endPrefix):
		kind, rest = kindEnd, line[len(endPrefix):]
	default:
		return kindText, ""
	}

	// prefix and suffix may share the separating space, e.g. "--- START ---"
	if len(rest) < len(markerSuffix) {
		return kindText, ""
	}
	name := rest[:len(rest)-len(markerSuffix)]
	if name == "" {
		return kindText, ""
	}
	return kind, name
}

// 🔍 ValidateName checks that name can be written into a single marker line
func ValidateName(name string) error {
	switch {
	case name == "":
		return errors.Errorf("%w: name is empty", ErrInvalidInputShape)
	case strings.ContainsAny(name, "\r\n"):
		return errors.Errorf("%w: name %q contains a line break", ErrInvalidInputShape, name)
	case strings.Contains(name, Delimiter):
		return errors.Errorf("%w: name %q contains the delimiter %q", ErrInvalidInputShape, name, Delimiter)
	}
	return nil
}
