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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/tozd/go/errors"
)

func newCollection(names ...string) Collection {
	var c Collection
	for _, n := range names {
		c = c.Append(New(n, "content of "+n, 0))
	}
	return c
}

func TestNew(t *testing.T) {
	a := New("a.txt", "hello", 3)
	b := New("a.txt", "hello", 3)

	assert.NotEmpty(t, a.ID, "id should be assigned")
	assert.NotEqual(t, a.ID, b.ID, "ids should be unique")
	assert.False(t, a.Timestamp.IsZero(), "timestamp should be set")
	assert.True(t, a.Equal(b), "equality should ignore id and timestamp")
	assert.Equal(t, 5, a.Size())
}

func TestCollection_Append(t *testing.T) {
	c := newCollection("a", "b")
	c2 := c.Append(New("c", "", 99))

	assert.Equal(t, []string{"a", "b"}, c.Names(), "receiver should be untouched")
	assert.Equal(t, []string{"a", "b", "c"}, c2.Names())
	for i, b := range c2 {
		assert.Equal(t, i, b.Order, "order should follow position")
	}
}

func TestCollection_Move(t *testing.T) {
	tests := []struct {
		name      string
		from, to  int
		want      []string
		wantError error
	}{
		{name: "move_down", from: 0, to: 2, want: []string{"b", "c", "a"}},
		{name: "move_up", from: 2, to: 0, want: []string{"c", "a", "b"}},
		{name: "same_position", from: 1, to: 1, want: []string{"a", "b", "c"}},
		{name: "from_out_of_range", from: 3, to: 0, wantError: ErrIndexOutOfRange},
		{name: "to_negative", from: 0, to: -1, wantError: ErrIndexOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newCollection("a", "b", "c")
			got, err := c.Move(tt.from, tt.to)

			if tt.wantError != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantError), "error should wrap %v", tt.wantError)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Names())
			assert.Equal(t, []string{"a", "b", "c"}, c.Names(), "receiver should be untouched")
			for i, b := range got {
				assert.Equal(t, i, b.Order, "order should be renumbered")
			}
		})
	}
}

func TestCollection_Remove(t *testing.T) {
	c := newCollection("a", "b", "c")

	got := c.Remove(c[1].ID)
	assert.Equal(t, []string{"a", "c"}, got.Names())
	assert.Equal(t, 3, c.Len(), "receiver should be untouched")

	same := c.Remove("missing")
	assert.Equal(t, c.Names(), same.Names(), "unknown id should be a no-op")
}

func TestCollection_SortByName(t *testing.T) {
	c := newCollection("beta.txt", "Alpha.txt", "alpha.txt", "gamma.txt")

	got := c.SortByName()
	assert.Equal(t, []string{"Alpha.txt", "alpha.txt", "beta.txt", "gamma.txt"}, got.Names())
	for i, b := range got {
		assert.Equal(t, i, b.Order)
	}
	assert.Equal(t, "beta.txt", c[0].Name, "receiver should be untouched")
}

func TestCollection_SortByOrder(t *testing.T) {
	c := Collection{
		{Name: "c", Order: 7},
		{Name: "a", Order: 1},
		{Name: "b", Order: 1},
	}

	got := c.SortByOrder()
	assert.Equal(t, []string{"a", "b", "c"}, got.Names(), "sort should be stable")
	assert.Equal(t, 7, got[2].Order, "order should not be renumbered")
}

func TestParseSortMode(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    SortMode
		wantErr bool
	}{
		{name: "empty_is_none", input: "", want: SortNone},
		{name: "none", input: "none", want: SortNone},
		{name: "name_mixed_case", input: " Name ", want: SortName},
		{name: "order", input: "order", want: SortOrder},
		{name: "unknown", input: "size", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSortMode(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrUnknownSortMode))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCollection_SortBy(t *testing.T) {
	c := Collection{
		{Name: "b", Order: 0},
		{Name: "c", Order: 5},
		{Name: "a", Order: 2},
	}

	assert.Equal(t, []string{"b", "c", "a"}, c.SortBy(SortNone).Names())
	assert.Equal(t, []string{"a", "b", "c"}, c.SortBy(SortName).Names())

	byOrder := c.SortBy(SortOrder)
	assert.Equal(t, []string{"b", "a", "c"}, byOrder.Names())
	assert.Equal(t, 2, byOrder[2].Order, "sorted collection should be renumbered")
}
