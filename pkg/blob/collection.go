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

package blob

import (
	"sort"
	"strings"

	"gitlab.com/tozd/go/errors"
)

// ErrIndexOutOfRange is returned by Move when an index does not address a blob.
var ErrIndexOutOfRange = errors.Base("index out of range")

// 📚 Collection is an ordered list of blobs owned by the caller.
// Every method returns a new collection and leaves the receiver untouched.
type Collection []NamedBlob

// Len returns the number of blobs
func (c Collection) Len() int {
	return len(c)
}

// Names returns the blob names in collection order
func (c Collection) Names() []string {
	names := make([]string, 0, len(c))
	for _, b := range c {
		names = append(names, b.Name)
	}
	return names
}

// 🔢 Renumber assigns Order = index
func (c Collection) Renumber() Collection {
	out := c.clone()
	for i := range out {
		out[i].Order = i
	}
	return out
}

// ➕ Append adds blobs after the current ones, numbering them from Len()
func (c Collection) Append(more ...NamedBlob) Collection {
	out := make(Collection, 0, len(c)+len(more))
	out = append(out, c...)
	for i, b := range more {
		b.Order = len(c) + i
		out = append(out, b)
	}
	return out
}

// 🔀 Move relocates the blob at from to position to and renumbers
func (c Collection) Move(from, to int) (Collection, error) {
	if from < 0 || from >= len(c) {
		return nil, errors.WithDetails(ErrIndexOutOfRange, "index", from, "len", len(c))
	}
	if to < 0 || to >= len(c) {
		return nil, errors.WithDetails(ErrIndexOutOfRange, "index", to, "len", len(c))
	}

	out := c.clone()
	moved := out[from]
	out = append(out[:from], out[from+1:]...)
	out = append(out[:to], append(Collection{moved}, out[to:]...)...)

	return out.Renumber(), nil
}

// 🗑️ Remove drops the blob with the given ID
func (c Collection) Remove(id string) Collection {
	out := make(Collection, 0, len(c))
	for _, b := range c {
		if b.ID == id {
			continue
		}
		out = append(out, b)
	}
	return out
}

// 🔤 SortByName sorts alphabetically, case-insensitive, and renumbers
func (c Collection) SortByName() Collection {
	out := c.clone()
	sort.SliceStable(out, func(i, j int) bool {
		li, lj := strings.ToLower(out[i].Name), strings.ToLower(out[j].Name)
		if li != lj {
			return li < lj
		}
		return out[i].Name < out[j].Name
	})
	return out.Renumber()
}

// SortByOrder sorts by the Order field without renumbering
func (c Collection) SortByOrder() Collection {
	out := c.clone()
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Order < out[j].Order
	})
	return out
}

func (c Collection) clone() Collection {
	out := make(Collection, len(c))
	copy(out, c)
	return out
}

// SortMode selects how a collection is ordered before encoding
type SortMode string

const (
	SortNone  SortMode = "none"  // keep the given order
	SortName  SortMode = "name"  // SortByName
	SortOrder SortMode = "order" // SortByOrder
)

// ErrUnknownSortMode is returned by ParseSortMode for an unrecognised mode.
var ErrUnknownSortMode = errors.Base("unknown sort mode")

// ParseSortMode parses a mode name. The empty string means SortNone.
func ParseSortMode(s string) (SortMode, error) {
	switch m := SortMode(strings.ToLower(strings.TrimSpace(s))); m {
	case "", SortNone:
		return SortNone, nil
	case SortName, SortOrder:
		return m, nil
	default:
		return "", errors.WithDetails(ErrUnknownSortMode, "mode", s)
	}
}

// SortBy applies mode to the collection
func (c Collection) SortBy(mode SortMode) Collection {
	switch mode {
	case SortName:
		return c.SortByName()
	case SortOrder:
		return c.SortByOrder().Renumber()
	default:
		return c.clone()
	}
}
