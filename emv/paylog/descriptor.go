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

package paylog

// A leading byte with the low five bits set is followed by a second tag
// byte (0x9F.., 0x5F..). Every other byte is a complete tag.
const twoByteTagMask = 0x1F

func isTwoByteLeading(b byte) bool {
	return b&twoByteTagMask == twoByteTagMask
}

// FieldSpec is one (tag, length) pair of a log format descriptor.
type FieldSpec struct {
	Tag   TagCode
	Len   int
	Info  TagInfo
	Known bool
}

// Descriptor is a parsed log format (EMV tag 9F4F).
type Descriptor []FieldSpec

// ParseDescriptor splits a packed log format into its fields. Tags missing
// from the registry are kept as KindUnknown fields, the renderer decides how
// to treat them. Only a tag without its length byte is an error here.
func ParseDescriptor(raw []byte) (Descriptor, error) {
	var d Descriptor
	for i := 0; i < len(raw); {
		start := i
		tag := TagCode(raw[i])
		if isTwoByteLeading(raw[i]) {
			if i+1 >= len(raw) {
				return nil, &DecodingError{Entry: -1, Offset: start, Need: 2, Have: len(raw) - i, Err: ErrTruncatedDescriptor}
			}
			tag = TagCode(raw[i])<<8 | TagCode(raw[i+1])
		}
		i += tag.Len()
		if i >= len(raw) {
			return nil, &DecodingError{Entry: -1, Tag: tag, Offset: start, Need: 1, Have: 0, Err: ErrTruncatedDescriptor}
		}
		length := int(raw[i])
		i++

		info, known := Lookup(tag)
		d = append(d, FieldSpec{Tag: tag, Len: length, Info: info, Known: known})
	}
	return d, nil
}

// Size is the number of entry bytes the descriptor accounts for.
func (d Descriptor) Size() int {
	n := 0
	for _, f := range d {
		n += f.Len
	}
	return n
}
