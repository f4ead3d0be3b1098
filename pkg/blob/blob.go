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
	"time"

	"github.com/google/uuid"
)

// 📄 NamedBlob is one logical text file before encoding or after decoding
type NamedBlob struct {
	ID        string    // Process-unique list key, never serialized
	Name      string    // File name written into the markers
	Content   string    // File text
	Order     int       // Relative position among siblings
	Timestamp time.Time // Creation or decode time
}

// 🏭 New creates a blob with a fresh ID and the current time
func New(name, content string, order int) NamedBlob {
	return NamedBlob{
		ID:        NewID(),
		Name:      name,
		Content:   content,
		Order:     order,
		Timestamp: time.Now(),
	}
}

// 🔑 NewID returns a random identifier for list management
func NewID() string {
	return uuid.NewString()
}

// Equal reports whether two blobs carry the same name, content and order.
// ID and Timestamp are ignored.
func (b NamedBlob) Equal(other NamedBlob) bool {
	return b.Name == other.Name && b.Content == other.Content && b.Order == other.Order
}

// Size returns the content length in bytes
func (b NamedBlob) Size() int {
	return len(b.Content)
}
