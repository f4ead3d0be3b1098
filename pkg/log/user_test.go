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

package log

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestUserLogger(t *testing.T) {
	pterm.DisableStyling()
	defer pterm.EnableStyling()

	tests := []struct {
		name     string
		op       func(u *UserLogger)
		wantOut  []string
		wantZlog string
	}{
		{
			name: "file_added",
			op: func(u *UserLogger) {
				u.LogFileChange(FileChange{Type: FileAdded, Name: "a.sh", Description: "12 B"})
			},
			wantOut: []string{"Added a.sh (12 B)"},
		},
		{
			name: "file_skipped",
			op: func(u *UserLogger) {
				u.LogFileChange(FileChange{Type: FileSkipped, Name: "logo.png"})
			},
			wantOut: []string{"Skipped logo.png"},
		},
		{
			name: "file_error",
			op: func(u *UserLogger) {
				u.LogFileChange(FileChange{Type: FileError, Name: "b.sh", Error: errors.New("disk full")})
			},
			wantOut:  []string{"Error b.sh", "disk full"},
			wantZlog: "disk full",
		},
		{
			name: "validation_passed",
			op: func(u *UserLogger) {
				u.LogValidation(true, "3 records found", nil)
			},
			wantOut: []string{"3 records found"},
		},
		{
			name: "validation_warning",
			op: func(u *UserLogger) {
				u.LogValidation(false, "2 markers skipped", nil)
			},
			wantOut:  []string{"2 markers skipped"},
			wantZlog: "2 markers skipped",
		},
		{
			name: "validation_failed",
			op: func(u *UserLogger) {
				u.LogValidation(false, "Command failed", errors.New("boom"))
			},
			wantOut:  []string{"Command failed", "boom"},
			wantZlog: "boom",
		},
		{
			name: "state_change",
			op: func(u *UserLogger) {
				u.LogStateChange("Wrote scripts.zip")
			},
			wantOut: []string{"Wrote scripts.zip"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out, zbuf bytes.Buffer
			ctx := zerolog.New(&zbuf).WithContext(context.Background())
			u := NewUserLogger(ctx, &out)

			tt.op(u)

			for _, want := range tt.wantOut {
				assert.Contains(t, out.String(), want)
			}
			if tt.wantZlog != "" {
				assert.Contains(t, zbuf.String(), tt.wantZlog)
			}
		})
	}
}
