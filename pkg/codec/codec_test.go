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
	"bytes"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/scriptpack/pkg/blob"
	"gitlab.com/tozd/go/errors"
)

func blobs(pairs ...string) []blob.NamedBlob {
	var out []blob.NamedBlob
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, blob.NamedBlob{Name: pairs[i], Content: pairs[i+1], Order: i / 2})
	}
	return out
}

// stripped keeps only the fields that take part in equality
func stripped(in []blob.NamedBlob) []blob.NamedBlob {
	out := make([]blob.NamedBlob, 0, len(in))
	for _, b := range in {
		out = append(out, blob.NamedBlob{Name: b.Name, Content: b.Content, Order: b.Order})
	}
	return out
}

func TestEncode(t *testing.T) {
	tests := []struct {
		name      string
		blobs     []blob.NamedBlob
		want      string
		wantError error
	}{
		{
			name:  "empty_input",
			blobs: nil,
			want:  "",
		},
		{
			name:  "single_record",
			blobs: blobs("a.txt", "hello"),
			want:  "--- START a.txt ---\nhello\n--- END a.txt ---\n",
		},
		{
			name:  "records_separated_by_blank_line",
			blobs: blobs("a.txt", "one", "b.txt", "two\nlines"),
			want: "--- START a.txt ---\none\n--- END a.txt ---\n" +
				"\n" +
				"--- START b.txt ---\ntwo\nlines\n--- END b.txt ---\n",
		},
		{
			name:  "empty_content",
			blobs: blobs("empty.txt", ""),
			want:  "--- START empty.txt ---\n\n--- END empty.txt ---\n",
		},
		{
			name: "input_order_kept_regardless_of_order_field",
			blobs: []blob.NamedBlob{
				{Name: "second", Content: "2", Order: 5},
				{Name: "first", Content: "1", Order: 0},
			},
			want: "--- START second ---\n2\n--- END second ---\n\n--- START first ---\n1\n--- END first ---\n",
		},
		{
			name:      "empty_name",
			blobs:     blobs("", "x"),
			wantError: ErrInvalidInputShape,
		},
		{
			name:      "name_with_newline",
			blobs:     blobs("a\nb", "x"),
			wantError: ErrInvalidInputShape,
		},
		{
			name:      "name_with_delimiter",
			blobs:     blobs("a --- b", "x"),
			wantError: ErrInvalidInputShape,
		},
		{
			name:      "content_with_own_end_marker",
			blobs:     blobs("a.txt", "x\n--- END a.txt ---\ny"),
			wantError: ErrInvalidInputShape,
		},
		{
			name:      "content_with_nested_record",
			blobs:     blobs("outer.txt", "--- START inner.txt ---\nx\n--- END inner.txt ---"),
			wantError: ErrNestedRecord,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Encode(tt.blobs)

			if tt.wantError != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantError), "error %v should wrap %v", err, tt.wantError)
				assert.Empty(t, got)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEncodeTo_WritesNothingOnError(t *testing.T) {
	var buf bytes.Buffer
	err := EncodeTo(&buf, blobs("ok.txt", "fine", "bad\nname", "x"))

	require.Error(t, err)
	assert.Equal(t, 0, buf.Len(), "no bytes should be written for invalid input")
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name      string
		document  string
		want      []blob.NamedBlob
		wantError error
	}{
		{
			name:      "empty_document",
			document:  "",
			wantError: ErrNoScriptsFound,
		},
		{
			name:     "name_fidelity",
			document: "--- START a.txt ---\nhello\n--- END a.txt ---\n",
			want:     blobs("a.txt", "hello"),
		},
		{
			name:      "mismatched_markers_skipped",
			document:  "--- START a.txt ---\nx\n--- END b.txt ---\n",
			wantError: ErrNoScriptsFound,
		},
		{
			name: "three_records_trimmed",
			document: "--- START a ---\n  one  \n--- END a ---\n" +
				"--- START b ---\n\n\ttwo\n\n--- END b ---\n" +
				"--- START c ---\nthree\n--- END c ---",
			want: blobs("a", "one", "b", "two", "c", "three"),
		},
		{
			name:     "end_name_must_match_start_name",
			document: "--- START a ---\nx\n--- END b ---\ny\n--- END a ---\n",
			want:     blobs("a", "x\n--- END b ---\ny"),
		},
		{
			name:     "nearest_matching_end_wins",
			document: "--- START a ---\nfirst\n--- END a ---\nnoise\n--- END a ---\n",
			want:     blobs("a", "first"),
		},
		{
			name:     "orphan_start_skipped",
			document: "--- START broken ---\nlost\n--- START ok ---\nkept\n--- END ok ---\n",
			want:     blobs("ok", "kept"),
		},
		{
			name:     "crlf_line_endings",
			document: "--- START a.txt ---\r\nline1\r\nline2\r\n--- END a.txt ---\r\n",
			want:     blobs("a.txt", "line1\r\nline2"),
		},
		{
			name:     "text_around_records_ignored",
			document: "preamble\n--- START a ---\nx\n--- END a ---\ntrailer\n",
			want:     blobs("a", "x"),
		},
		{
			name:     "empty_content",
			document: "--- START a ---\n--- END a ---\n",
			want:     blobs("a", ""),
		},
		{
			name:      "marker_must_be_whole_line",
			document:  "say --- START a --- here\nx\n--- END a ---\n",
			wantError: ErrNoScriptsFound,
		},
		{
			name:     "name_with_spaces",
			document: "--- START my file.txt ---\nx\n--- END my file.txt ---\n",
			want:     blobs("my file.txt", "x"),
		},
		{
			name:      "nested_record_rejected",
			document:  "--- START outer ---\n--- START inner ---\nx\n--- END inner ---\n--- END outer ---\n",
			wantError: ErrNestedRecord,
		},
		{
			name:     "stray_start_inside_content_is_text",
			document: "--- START a ---\n--- START b ---\nx\n--- END a ---\n",
			want:     blobs("a", "--- START b ---\nx"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode(tt.document)

			if tt.wantError != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantError), "error %v should wrap %v", err, tt.wantError)
				assert.Nil(t, got)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, stripped(got))
		})
	}
}

func TestDecode_AssignsIDsAndTimestamps(t *testing.T) {
	fixed := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	n := 0
	got, err := Decode(
		"--- START a ---\nx\n--- END a ---\n--- START b ---\ny\n--- END b ---\n",
		WithClock(func() time.Time { return fixed }),
		WithIDGenerator(func() string { n++; return fmt.Sprintf("id-%d", n) }),
	)

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "id-1", got[0].ID)
	assert.Equal(t, "id-2", got[1].ID)
	assert.Equal(t, fixed, got[0].Timestamp)
	assert.Equal(t, 0, got[0].Order)
	assert.Equal(t, 1, got[1].Order)
}

func TestDecode_DefaultIDsAreUnique(t *testing.T) {
	got, err := Decode("--- START a ---\nx\n--- END a ---\n--- START a ---\nx\n--- END a ---\n")

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.NotEmpty(t, got[0].ID)
	assert.NotEqual(t, got[0].ID, got[1].ID)
}

func TestNestedRecordError(t *testing.T) {
	_, err := Decode("--- START outer ---\n--- START inner ---\nx\n--- END inner ---\n--- END outer ---\n")
	require.Error(t, err)

	var nested *NestedRecordError
	require.True(t, errors.As(err, &nested))
	assert.Equal(t, "outer", nested.Outer)
	assert.Equal(t, "inner", nested.Inner)
	assert.Equal(t, 1, nested.OuterLine)
	assert.Equal(t, 2, nested.InnerLine)
	assert.True(t, errors.Is(err, ErrInvalidInputShape), "nested records are an input shape error")
	assert.Contains(t, err.Error(), `"outer" (line 1) contains record "inner" (line 2)`)
}

func TestRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		blobs []blob.NamedBlob
	}{
		{name: "single", blobs: blobs("a.txt", "hello")},
		{name: "multiline", blobs: blobs("a.sh", "#!/bin/sh\necho hi\n\nexit 0", "b.py", "print('x')")},
		{name: "unicode", blobs: blobs("ünï.txt", "日本語\nテキスト", "emoji 🍌.txt", "🍌")},
		{name: "markdown_dashes", blobs: blobs("notes.md", "title\n---\n\n- item\n-- not a marker --")},
		{name: "empty_content", blobs: blobs("a", "", "b", "x")},
		{name: "duplicate_names", blobs: blobs("same.txt", "one", "same.txt", "two")},
		{name: "foreign_end_marker_in_content", blobs: blobs("a", "--- END b ---", "b", "x")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Encode(tt.blobs)
			require.NoError(t, err)

			got, err := Decode(doc)
			require.NoError(t, err)
			assert.Equal(t, stripped(tt.blobs), stripped(got), "decode should invert encode")

			again, err := Encode(got)
			require.NoError(t, err)
			assert.Equal(t, doc, again, "re-encoding should be byte-identical")
		})
	}
}

func TestRoundTrip_TrimsAndRenumbers(t *testing.T) {
	in := []blob.NamedBlob{
		{Name: "a", Content: "\n  padded  \n", Order: 10},
		{Name: "b", Content: "x", Order: 3},
	}

	doc, err := Encode(in)
	require.NoError(t, err)

	got, err := Decode(doc)
	require.NoError(t, err)
	assert.Equal(t, blobs("a", "padded", "b", "x"), stripped(got))
}

func TestConcurrentUse(t *testing.T) {
	in := blobs("a", "1", "b", "2", "c", "3")
	want, err := Encode(in)
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			doc, err := Encode(in)
			if err != nil {
				errs <- err
				return
			}
			if doc != want {
				errs <- errors.New("encode output differs")
				return
			}
			if _, err := Decode(doc); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
}

func TestMarkers(t *testing.T) {
	assert.Equal(t, "--- START a.txt ---", StartMarker("a.txt"))
	assert.Equal(t, "--- END a.txt ---", EndMarker("a.txt"))

	tests := []struct {
		line     string
		wantKind markerKind
		wantName string
	}{
		{line: "--- START a ---", wantKind: kindStart, wantName: "a"},
		{line: "--- END a ---\r", wantKind: kindEnd, wantName: "a"},
		{line: "--- START  ---", wantKind: kindText},
		{line: "--- START ---", wantKind: kindText},
		{line: "--- MIDDLE a ---", wantKind: kindText},
		{line: " --- START a ---", wantKind: kindText},
		{line: "--- START a --- ", wantKind: kindText},
	}
	for _, tt := range tests {
		t.Run(strings.ReplaceAll(tt.line, " ", "_"), func(t *testing.T) {
			kind, name := parseMarker(tt.line)
			assert.Equal(t, tt.wantKind, kind)
			assert.Equal(t, tt.wantName, name)
		})
	}
}
