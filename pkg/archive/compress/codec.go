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

// Package compress wraps the stream compressors used for tar bundles.
//
// Every codec produces the standard framed format of its algorithm, so the
// output can be read back with the usual command line tools (zstd, s2c, lz4).
package compress

import (
	"gitlab.com/tozd/go/errors"
)

// ErrUnknownCodec is returned when no codec is registered under a name.
var ErrUnknownCodec = errors.Base("unknown compression codec")

// 🗜️ Codec compresses and decompresses whole payloads
type Codec interface {
	// Name returns the registry name, also used as the file suffix
	Name() string

	// Compress returns a newly allocated compressed copy of data
	Compress(data []byte) ([]byte, error)

	// Decompress reverses Compress
	Decompress(data []byte) ([]byte, error)
}

const (
	None = "none"
	Zstd = "zst"
	S2   = "s2"
	LZ4  = "lz4"
)

var builtinCodecs = map[string]Codec{
	None: NewNoOpCodec(),
	Zstd: NewZstdCodec(),
	S2:   NewS2Codec(),
	LZ4:  NewLZ4Codec(),
}

// 🎯 GetCodec returns the codec registered under name.
// "zstd" is accepted as an alias of "zst" and the empty name means None.
func GetCodec(name string) (Codec, error) {
	switch name {
	case "":
		name = None
	case "zstd":
		name = Zstd
	}
	if c, ok := builtinCodecs[name]; ok {
		return c, nil
	}
	return nil, errors.WithDetails(ErrUnknownCodec, "name", name)
}
