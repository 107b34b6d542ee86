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

// Package tlv decodes the BER-TLV data objects of ISO/IEC 7816-4 as used by
// EMV card responses (FCI templates, record templates).
package tlv

// Object is a decoded data object. Tag and Value alias the decoded buffer.
type Object struct {
	Tag   Tag
	Value []byte
}

func NewObject(tag Tag, value []byte) Object {
	return Object{Tag: tag, Value: value}
}

// Encode returns the BER-TLV encoding of o.
func (o Object) Encode() []byte {
	l := encodeLength(len(o.Value))
	out := make([]byte, 0, len(o.Tag)+len(l)+len(o.Value))
	out = append(out, o.Tag...)
	out = append(out, l...)
	return append(out, o.Value...)
}

// Children decodes the value of a constructed object.
func (o Object) Children() ([]Object, error) {
	if !o.Tag.Constructed() {
		return nil, ErrPrimitive
	}
	return DecodeMany(o.Value)
}

// Decode reads one data object from the front of data and returns the
// bytes that follow it.
func Decode(data []byte) (Object, []byte, error) {
	tag, rest, err := DecodeTag(data)
	if err != nil {
		return Object{}, nil, err
	}
	length, rest, err := decodeLength(rest)
	if err != nil {
		return Object{}, nil, err
	}
	if len(rest) < length {
		return Object{}, nil, ErrShortValue
	}
	return Object{Tag: tag, Value: rest[:length]}, rest[length:], nil
}

// DecodeMany decodes a sequence of data objects. 00 and FF bytes between
// objects are padding (ISO/IEC 7816-4 5.2.2.1).
func DecodeMany(data []byte) ([]Object, error) {
	var objs []Object
	for len(data) > 0 {
		if data[0] == 0x00 || data[0] == 0xFF {
			data = data[1:]
			continue
		}
		obj, rest, err := Decode(data)
		if err != nil {
			return nil, err
		}
		objs = append(objs, obj)
		data = rest
	}
	return objs, nil
}

// Find returns the first object tagged tag, searching depth first through
// constructed objects.
func Find(data []byte, tag Tag) (Object, bool, error) {
	all, err := findAll(data, tag, true)
	if err != nil || len(all) == 0 {
		return Object{}, false, err
	}
	return all[0], true, nil
}

// FindAll returns every object tagged tag in depth first order.
func FindAll(data []byte, tag Tag) ([]Object, error) {
	return findAll(data, tag, false)
}

func findAll(data []byte, tag Tag, first bool) ([]Object, error) {
	objs, err := DecodeMany(data)
	if err != nil {
		return nil, err
	}
	var found []Object
	for _, obj := range objs {
		if obj.Tag.Equal(tag) {
			found = append(found, obj)
			if first {
				return found, nil
			}
		}
		if !obj.Tag.Constructed() {
			continue
		}
		sub, err := findAll(obj.Value, tag, first)
		if err != nil {
			return nil, err
		}
		found = append(found, sub...)
		if first && len(found) > 0 {
			return found, nil
		}
	}
	return found, nil
}
