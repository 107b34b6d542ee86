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

import "fmt"

// TagCode identifies a log format field. One byte tags occupy the low
// octet, two byte tags are stored big-endian.
type TagCode uint16

const (
	TagDate            TagCode = 0x9A
	TagType            TagCode = 0x9C
	TagTime            TagCode = 0x9F21
	TagCurrency        TagCode = 0x5F2A
	TagAmount          TagCode = 0x9F02
	TagMerchant        TagCode = 0x9F4E
	TagCounter         TagCode = 0x9F36
	TagTerminalCountry TagCode = 0x9F1A
	TagCryptoInfo      TagCode = 0x9F27
)

func (t TagCode) String() string {
	if t > 0xFF {
		return fmt.Sprintf("%04X", uint16(t))
	}
	return fmt.Sprintf("%02X", uint8(t))
}

// Len returns the number of descriptor bytes used to encode the tag.
func (t TagCode) Len() int {
	if t > 0xFF {
		return 2
	}
	return 1
}

// Kind selects the decoding rule applied to a field.
type Kind int

const (
	KindUnknown Kind = iota
	KindDate
	KindType
	KindTime
	KindCurrency
	KindAmount
	KindText
	KindCounter
	KindCountry
	KindHex
)

func (k Kind) String() string {
	switch k {
	case KindUnknown:
		return "Unknown"
	case KindDate:
		return "Date"
	case KindType:
		return "Type"
	case KindTime:
		return "Time"
	case KindCurrency:
		return "Currency"
	case KindAmount:
		return "Amount"
	case KindText:
		return "Text"
	case KindCounter:
		return "Counter"
	case KindCountry:
		return "Country"
	case KindHex:
		return "Hex"
	default:
		return fmt.Sprintf("UnknownKind(%d)", k)
	}
}

// TagInfo is the registry entry for a tag.
type TagInfo struct {
	Label string
	Kind  Kind
}

var tags = map[TagCode]TagInfo{
	TagDate:            {Label: "Date", Kind: KindDate},
	TagType:            {Label: "Type", Kind: KindType},
	TagTime:            {Label: "Time", Kind: KindTime},
	TagCurrency:        {Label: "Currency", Kind: KindCurrency},
	TagAmount:          {Label: "Amount", Kind: KindAmount},
	TagMerchant:        {Label: "Merchant", Kind: KindText},
	TagCounter:         {Label: "Counter", Kind: KindCounter},
	TagTerminalCountry: {Label: "Terminal country", Kind: KindCountry},
	TagCryptoInfo:      {Label: "Crypto info", Kind: KindHex},
}

// ISO 3166-1 numeric, BCD encoded as read from the card.
var countryCodes = map[uint16]string{
	0x756: "CHE",
	0x250: "FRA",
	0x826: "GBR",
	0x124: "CAN",
	0x840: "USA",
}

// ISO 4217 numeric, BCD encoded as read from the card.
var currencyCodes = map[uint16]string{
	0x756: "CHF",
	0x978: "EUR",
	0x826: "GBP",
	0x124: "CAD",
	0x840: "USD",
}

// Lookup returns the registry entry for tag. Unregistered tags report false
// along with a KindUnknown entry labelled with the tag code.
func Lookup(tag TagCode) (TagInfo, bool) {
	info, ok := tags[tag]
	if !ok {
		return TagInfo{Label: tag.String(), Kind: KindUnknown}, false
	}
	return info, true
}

// Country returns the ISO 3166-1 alpha-3 mnemonic for a numeric code.
func Country(code uint16) (string, bool) {
	s, ok := countryCodes[code]
	return s, ok
}

// Currency returns the ISO 4217 alpha mnemonic for a numeric code.
func Currency(code uint16) (string, bool) {
	s, ok := currencyCodes[code]
	return s, ok
}
