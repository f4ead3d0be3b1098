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
	"time"

	"github.com/walteh/scriptpack/pkg/blob"
	"gitlab.com/tozd/go/errors"
)

type decodeOptions struct {
	now   func() time.Time
	newID func() string
}

// 🔧 Option configures Decode
type Option func(*decodeOptions)

// WithClock sets the clock used for blob timestamps
func WithClock(now func() time.Time) Option {
	return func(o *decodeOptions) {
		o.now = now
	}
}

// WithIDGenerator sets the function used for blob IDs
func WithIDGenerator(newID func() string) Option {
	return func(o *decodeOptions) {
		o.newID = newID
	}
}

// ✂️ Decode splits a combined document into its blobs, in document order.
// Malformed records are skipped. A document without any record fails with ErrNoScriptsFound.
func Decode(document string, opts ...Option) ([]blob.NamedBlob, error) {
	o := decodeOptions{
		now:   time.Now,
		newID: blob.NewID,
	}
	for _, opt := range opts {
		opt(&o)
	}

	res := scanLines(splitLines(document))
	if res.nested != nil {
		return nil, res.nested
	}
	if len(res.records) == 0 {
		return nil, errors.WithStack(ErrNoScriptsFound)
	}

	blobs := make([]blob.NamedBlob, 0, len(res.records))
	for i, r := range res.records {
		blobs = append(blobs, blob.NamedBlob{
			ID:        o.newID(),
			Name:      r.Name,
			Content:   r.Content,
			Order:     i,
			Timestamp: o.now(),
		})
	}
	return blobs, nil
}
