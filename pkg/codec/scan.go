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
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
)

// maxNearMissDistance is the largest edit distance reported as a likely typo
const maxNearMissDistance = 2

// 📄 Record is one well-formed START/END pair found in a document
type Record struct {
	Name      string
	Content   string // trimmed
	StartLine int    // 1-based
	EndLine   int    // 1-based
}

// DiagnosticKind classifies a skipped marker
type DiagnosticKind int

const (
	OrphanStart DiagnosticKind = iota // START without a matching END
	OrphanEnd                         // END without a matching START
	NearMiss                          // START and END whose names differ slightly
)

// String returns a string representation of DiagnosticKind
func (k DiagnosticKind) String() string {
	switch k {
	case OrphanStart:
		return "orphan start"
	case OrphanEnd:
		return "orphan end"
	case NearMiss:
		return "near miss"
	default:
		return "unknown"
	}
}

// 🩺 Diagnostic describes a marker the decoder skipped
type Diagnostic struct {
	Kind     DiagnosticKind
	Name     string
	Line     int
	Other    string // NearMiss: the END name
	OtherRef int    // NearMiss: line of the END marker
}

func (d Diagnostic) String() string {
	switch d.Kind {
	case OrphanStart:
		return fmt.Sprintf("line %d: START %q has no matching END", d.Line, d.Name)
	case OrphanEnd:
		return fmt.Sprintf("line %d: END %q has no matching START", d.Line, d.Name)
	case NearMiss:
		return fmt.Sprintf("line %d: START %q looks like END %q on line %d", d.Line, d.Name, d.Other, d.OtherRef)
	default:
		return fmt.Sprintf("line %d: %q", d.Line, d.Name)
	}
}

// 📋 Report is the result of scanning a document
type Report struct {
	Records     []Record
	Diagnostics []Diagnostic
}

// 🔎 Scan pairs the markers of document without building blobs.
// It fails only when a record is nested inside another record.
func Scan(document string) (*Report, error) {
	res := scanLines(splitLines(document))
	if res.nested != nil {
		return nil, res.nested
	}
	return &Report{Records: res.records, Diagnostics: res.diagnostics}, nil
}

type marker struct {
	kind markerKind
	name string
	line int // 0-based
}

type scanResult struct {
	records     []Record
	diagnostics []Diagnostic
	nested      *NestedRecordError
}

func splitLines(document string) []string {
	if document == "" {
		return nil
	}
	return strings.Split(document, "\n")
}

// scanLines runs both phases over pre-split lines
func scanLines(lines []string) scanResult {
	// phase 1: classify every line
	var starts []marker
	ends := map[string][]int{}
	var allEnds []marker
	for i, line := range lines {
		switch kind, name := parseMarker(line); kind {
		case kindStart:
			starts = append(starts, marker{kind: kindStart, name: name, line: i})
		case kindEnd:
			ends[name] = append(ends[name], i)
			allEnds = append(allEnds, marker{kind: kindEnd, name: name, line: i})
		}
	}

	// phase 2: pair with a single forward cursor
	var res scanResult
	consumed := map[int]bool{}
	var orphanStarts []marker
	cursor := 0
	for _, start := range starts {
		if start.line < cursor {
			continue
		}

		end, ok := nextEnd(ends[start.name], start.line)
		if !ok {
			orphanStarts = append(orphanStarts, start)
			continue
		}

		if inner := findNested(starts, ends, start.line, end); inner != nil {
			res.nested = &NestedRecordError{
				Outer:     start.name,
				Inner:     inner.name,
				OuterLine: start.line + 1,
				InnerLine: inner.line + 1,
			}
			return res
		}

		res.records = append(res.records, Record{
			Name:      start.name,
			Content:   strings.TrimSpace(strings.Join(lines[start.line+1:end], "\n")),
			StartLine: start.line + 1,
			EndLine:   end + 1,
		})
		consumed[end] = true
		cursor = end + 1
	}

	var orphanEnds []marker
	for _, end := range allEnds {
		if consumed[end.line] || insideRecord(res.records, end.line) {
			continue
		}
		orphanEnds = append(orphanEnds, end)
	}

	res.diagnostics = diagnose(orphanStarts, orphanEnds)
	return res
}

// nextEnd returns the first line in sorted lines that is greater than after
func nextEnd(lines []int, after int) (int, bool) {
	i := sort.SearchInts(lines, after+1)
	if i == len(lines) {
		return 0, false
	}
	return lines[i], true
}

// findNested returns a START strictly between from and to whose END is also in range
func findNested(starts []marker, ends map[string][]int, from, to int) *marker {
	for i := range starts {
		s := starts[i]
		if s.line <= from {
			continue
		}
		if s.line >= to {
			break
		}
		if end, ok := nextEnd(ends[s.name], s.line); ok && end < to {
			return &s
		}
	}
	return nil
}

func insideRecord(records []Record, line int) bool {
	for _, r := range records {
		// Record lines are 1-based
		if line+1 > r.StartLine && line+1 < r.EndLine {
			return true
		}
	}
	return false
}

func diagnose(orphanStarts, orphanEnds []marker) []Diagnostic {
	var out []Diagnostic
	paired := map[int]bool{}

	for _, s := range orphanStarts {
		best := -1
		for j, e := range orphanEnds {
			if e.line <= s.line || paired[j] {
				continue
			}
			if d := levenshtein.ComputeDistance(s.name, e.name); d > 0 && d <= maxNearMissDistance {
				best = j
				break
			}
		}
		if best >= 0 {
			paired[best] = true
			out = append(out, Diagnostic{
				Kind:     NearMiss,
				Name:     s.name,
				Line:     s.line + 1,
				Other:    orphanEnds[best].name,
				OtherRef: orphanEnds[best].line + 1,
			})
			continue
		}
		out = append(out, Diagnostic{Kind: OrphanStart, Name: s.name, Line: s.line + 1})
	}

	for j, e := range orphanEnds {
		if paired[j] {
			continue
		}
		out = append(out, Diagnostic{Kind: OrphanEnd, Name: e.name, Line: e.line + 1})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Line < out[j].Line })
	return out
}
