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

package compress

import (
	"bytes"

	"github.com/klauspost/compress/s2"
	"gitlab.com/tozd/go/errors"
)

// S2Codec writes the s2 stream format
type S2Codec struct{}

var _ Codec = S2Codec{}

func NewS2Codec() S2Codec {
	return S2Codec{}
}

func (S2Codec) Name() string { return S2 }

func (S2Codec) Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := s2.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		return nil, errors.Errorf("s2 compression: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, errors.Errorf("closing s2 writer: %w", err)
	}
	return buf.Bytes(), nil
}

func (S2Codec) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(s2.NewReader(bytes.NewReader(data))); err != nil {
		return nil, errors.Errorf("s2 decompression: %w", err)
	}
	return buf.Bytes(), nil
}
