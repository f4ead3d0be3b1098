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

package operation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/tozd/go/errors"
)

type funcOperation struct {
	name string
	fn   func(ctx context.Context) error
}

func (f *funcOperation) Name() string                      { return f.name }
func (f *funcOperation) Execute(ctx context.Context) error { return f.fn(ctx) }

func TestOperationRunner(t *testing.T) {
	errFailed := errors.Base("failed")

	tests := []struct {
		name    string
		async   bool
		fn      func(ctx context.Context) error
		wantErr error
	}{
		{
			name: "sync_success",
			fn:   func(ctx context.Context) error { return nil },
		},
		{
			name:    "sync_error",
			fn:      func(ctx context.Context) error { return errFailed },
			wantErr: errFailed,
		},
		{
			name:  "async_success",
			async: true,
			fn:    func(ctx context.Context) error { return nil },
		},
		{
			name:    "async_error",
			async:   true,
			fn:      func(ctx context.Context) error { return errFailed },
			wantErr: errFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := NewRunner(nil, tt.async)
			err := runner.Run(context.Background(), &funcOperation{name: "test", fn: tt.fn})

			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErr))
				assert.Contains(t, err.Error(), "executing test")
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestOperationRunner_AsyncCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	release := make(chan struct{})
	defer close(release)

	op := &funcOperation{name: "blocked", fn: func(ctx context.Context) error {
		<-release
		return nil
	}}

	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	err := NewRunner(nil, true).Run(ctx, op)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}
