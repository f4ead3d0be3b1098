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
	"fmt"

	"gitlab.com/tozd/go/errors"
)

var (
	// ErrNoScriptsFound is returned by Decode when the document holds no well-formed record.
	ErrNoScriptsFound = errors.Base("no valid scripts found in the combined document")

	// ErrInvalidInputShape is returned when the caller breaks an input precondition.
	ErrInvalidInputShape = errors.Base("invalid input shape")

	// ErrNestedRecord is returned when a record appears inside the content of another record.
	ErrNestedRecord = errors.Base("nested record")
)

// 🪆 NestedRecordError describes a record found inside another record's content.
// It matches both ErrNestedRecord and ErrInvalidInputShape.
type NestedRecordError struct {
	Outer     string
	Inner     string
	OuterLine int // 1-based line of the outer START marker
	InnerLine int // 1-based line of the inner START marker, 0 when unknown
}

func (e *NestedRecordError) Error() string {
	if e.InnerLine == 0 {
		return fmt.Sprintf("nested record: content of %q contains record %q", e.Outer, e.Inner)
	}
	return fmt.Sprintf("nested record: %q (line %d) contains record %q (line %d)", e.Outer, e.OuterLine, e.Inner, e.InnerLine)
}

func (e *NestedRecordError) Is(target error) bool {
	return target == ErrNestedRecord || target == ErrInvalidInputShape
}
