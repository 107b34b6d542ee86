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

import (
	"encoding/binary"
	"fmt"
	"strings"
)

// Amount (9F02) is n12: four bytes of whole units followed by the minor
// unit byte. The last byte is not displayed.
const amountWholeBytes = 4

// decodeValue renders value according to kind. The caller has already
// sliced exactly the declared field length out of the entry.
func decodeValue(kind Kind, value []byte) (string, error) {
	switch kind {
	case KindDate:
		return formatDate(value), nil
	case KindType:
		if len(value) == 0 {
			return "", ErrInvalidLength
		}
		if value[0] == 0 {
			return "Payment", nil
		}
		return "Withdrawal", nil
	case KindTime:
		return joinHex(value, ":"), nil
	case KindCurrency:
		return formatCode(value, Currency), nil
	case KindCountry:
		return formatCode(value, Country), nil
	case KindAmount:
		return formatAmount(value), nil
	case KindText:
		return formatText(value), nil
	case KindCounter, KindHex:
		return fmt.Sprintf("%X", value), nil
	case KindUnknown:
		return "", ErrUnknownTag
	default:
		return "", fmt.Errorf("%w: unhandled kind %v", ErrUnknownTag, kind)
	}
}

func hexParts(b []byte) []string {
	parts := make([]string, len(b))
	for i, octet := range b {
		parts[i] = fmt.Sprintf("%02X", octet)
	}
	return parts
}

func joinHex(b []byte, sep string) string {
	return strings.Join(hexParts(b), sep)
}

// formatDate prints the date bytes in card order separated by "/", the last
// component being the two digit year.
func formatDate(b []byte) string {
	parts := hexParts(b)
	if n := len(parts); n > 0 {
		parts[n-1] = "20" + parts[n-1]
	}
	return strings.Join(parts, "/")
}

func formatCode(b []byte, lookup func(uint16) (string, bool)) string {
	if len(b) >= 2 {
		if s, ok := lookup(binary.BigEndian.Uint16(b)); ok {
			return s
		}
	}
	return fmt.Sprintf("%X", b)
}

func formatAmount(b []byte) string {
	whole := b[:min(len(b), amountWholeBytes)]
	i := 0
	for i < len(whole) && whole[i] == 0x00 {
		i++
	}

	var sb strings.Builder
	if i == len(whole) {
		sb.WriteString("0")
	} else {
		fmt.Fprintf(&sb, "%X", whole[i:])
	}
	if len(b) > amountWholeBytes {
		fmt.Fprintf(&sb, ".%02X", b[amountWholeBytes])
	}
	return sb.String()
}

// formatText maps printable ASCII through and everything else to '.'.
func formatText(b []byte) string {
	var sb strings.Builder
	sb.Grow(len(b))
	for _, c := range b {
		if c < 0x20 || c > 0x7E {
			c = '.'
		}
		sb.WriteByte(c)
	}
	return sb.String()
}
