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

	"github.com/stretchr/testify/mock"

	"github.com/walteh/scriptpack/pkg/blob"
)

type MockSource struct {
	mock.Mock
}

func (m *MockSource) Collect(ctx context.Context) ([]blob.NamedBlob, error) {
	args := m.Called(ctx)
	blobs, _ := args.Get(0).([]blob.NamedBlob)
	return blobs, args.Error(1)
}

type MockDocumentReader struct {
	mock.Mock
}

func (m *MockDocumentReader) ReadDocument(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

type MockDocumentWriter struct {
	mock.Mock
}

func (m *MockDocumentWriter) WriteDocument(ctx context.Context, doc string) error {
	args := m.Called(ctx, doc)
	return args.Error(0)
}

type MockSink struct {
	mock.Mock
}

func (m *MockSink) Write(ctx context.Context, blobs []blob.NamedBlob) error {
	args := m.Called(ctx, blobs)
	return args.Error(0)
}

func names(blobs []blob.NamedBlob) []string {
	out := make([]string, 0, len(blobs))
	for _, b := range blobs {
		out = append(out, b.Name)
	}
	return out
}
