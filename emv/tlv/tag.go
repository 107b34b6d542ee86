// Copyright 2024 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package tlv

import (
	"bytes"
	"errors"
	"fmt"
)

var (
	ErrShortTag    = errors.New("tlv: not enough bytes for tag")
	ErrInvalidTag  = errors.New("tlv: invalid tag")
	ErrShortLength = errors.New("tlv: not enough bytes for length")
	ErrLength      = errors.New("tlv: unsupported length encoding")
	ErrShortValue  = errors.New("tlv: value extends past end of data")
	ErrPrimitive   = errors.New("tlv: primitive object has no children")
)

// Tag is a BER-TLV tag as it appears on the wire, class and constructed
// bits included.
type Tag []byte

// Tags longer than this are not used by EMV.
const maxTagSize = 4

func (t Tag) Class() TagClass {
	if len(t) == 0 {
		return UniversalClass
	}
	return DecodeTagClass(t[0])
}

func (t Tag) Constructed() bool {
	return len(t) > 0 && DecodeContentType(t[0]) == ConstructedType
}

func (t Tag) Equal(o Tag) bool {
	return bytes.Equal(t, o)
}

func (t Tag) String() string {
	return fmt.Sprintf("%X", []byte(t))
}

// TagClass values are stored in the high order 2 bits of the leading octet.
type TagClass uint8

const (
	UniversalClass       TagClass = 0x00      // 0 stored in 2 high order bits of octet.
	ApplicationClass     TagClass = 0x01 << 6 // 1 stored in 2 high order bits of octet.
	ContextSpecificClass TagClass = 0x02 << 6 // 2 stored in 2 high order bits of octet.
	PrivateClass         TagClass = 0x03 << 6 // 3 stored in 2 high order bits of octet.
)

func (c TagClass) String() string {
	switch c {
	case UniversalClass:
		return "Universal"
	case ApplicationClass:
		return "Application"
	case ContextSpecificClass:
		return "ContextSpecific"
	case PrivateClass:
		return "Private"
	default:
		return fmt.Sprintf("UnknownClass(%d)", uint8(c))
	}
}

func DecodeTagClass(octet uint8) TagClass {
	return TagClass(octet & (0x03 << 6)) // mask all but 2 high order bits
}

type ContentType uint8

const (
	PrimitiveType   ContentType = 0x00      // 0 stored in bit position 6
	ConstructedType ContentType = 0x01 << 5 // 1 stored in bit position 6
)

func DecodeContentType(octet uint8) ContentType {
	return ContentType(octet & (0x01 << 5))
}

// DecodeTag reads one tag from the front of data.
//
// If bits B5-B1 of the leading byte are not all set the tag is that single
// byte. Otherwise the tag continues on subsequent bytes, each with B8 set
// except the last.
func DecodeTag(data []byte) (Tag, []byte, error) {
	if len(data) == 0 {
		return nil, nil, ErrShortTag
	}
	const multiByte = 0x1F
	if data[0]&multiByte != multiByte {
		return Tag(data[:1]), data[1:], nil
	}

	if len(data) < 2 {
		return nil, nil, ErrShortTag
	}
	if data[1]&0x7F == 0x00 {
		return nil, nil, fmt.Errorf("%w: first subsequent byte %02X has no tag bits", ErrInvalidTag, data[1])
	}
	for i := 1; i < len(data); i++ {
		if i >= maxTagSize {
			return nil, nil, fmt.Errorf("%w: longer than %d bytes", ErrInvalidTag, maxTagSize)
		}
		if data[i]&0x80 == 0 { // final byte has B8 cleared
			return Tag(data[:i+1]), data[i+1:], nil
		}
	}
	return nil, nil, ErrShortTag
}

// decodeLength reads a definite form length. Indefinite lengths are not
// used by EMV.
func decodeLength(data []byte) (int, []byte, error) {
	if len(data) == 0 {
		return 0, nil, ErrShortLength
	}
	first := data[0]
	if first < 0x80 {
		return int(first), data[1:], nil
	}
	n := int(first & 0x7F)
	if n == 0 || n > 3 {
		return 0, nil, fmt.Errorf("%w: %02X", ErrLength, first)
	}
	if len(data) < 1+n {
		return 0, nil, ErrShortLength
	}
	length := 0
	for _, b := range data[1 : 1+n] {
		length = length<<8 | int(b)
	}
	return length, data[1+n:], nil
}

func encodeLength(n int) []byte {
	switch {
	case n < 0x80:
		return []byte{byte(n)}
	case n <= 0xFF:
		return []byte{0x81, byte(n)}
	case n <= 0xFFFF:
		return []byte{0x82, byte(n >> 8), byte(n)}
	default:
		return []byte{0x83, byte(n >> 16), byte(n >> 8), byte(n)}
	}
}
