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

import "testing"

func TestLookup(t *testing.T) {
	tests := []struct {
		tag   TagCode
		label string
		kind  Kind
		known bool
	}{
		{TagDate, "Date", KindDate, true},
		{TagType, "Type", KindType, true},
		{TagTime, "Time", KindTime, true},
		{TagCurrency, "Currency", KindCurrency, true},
		{TagAmount, "Amount", KindAmount, true},
		{TagMerchant, "Merchant", KindText, true},
		{TagCounter, "Counter", KindCounter, true},
		{TagTerminalCountry, "Terminal country", KindCountry, true},
		{TagCryptoInfo, "Crypto info", KindHex, true},
		{0x9F03, "9F03", KindUnknown, false},
		{0x95, "95", KindUnknown, false},
	}
	for _, tt := range tests {
		t.Run(tt.tag.String(), func(t *testing.T) {
			info, ok := Lookup(tt.tag)
			if ok != tt.known {
				t.Errorf("Lookup(%v) ok = %v, want %v", tt.tag, ok, tt.known)
			}
			if info.Label != tt.label || info.Kind != tt.kind {
				t.Errorf("Lookup(%v) = %+v, want {%s %v}", tt.tag, info, tt.label, tt.kind)
			}
		})
	}
}

func TestTagCodeLen(t *testing.T) {
	if TagDate.Len() != 1 || TagType.Len() != 1 {
		t.Errorf("one byte tags report length %d, %d", TagDate.Len(), TagType.Len())
	}
	if TagAmount.Len() != 2 || TagCurrency.Len() != 2 {
		t.Errorf("two byte tags report length %d, %d", TagAmount.Len(), TagCurrency.Len())
	}
}

func TestCountryAndCurrency(t *testing.T) {
	countries := map[uint16]string{0x756: "CHE", 0x250: "FRA", 0x826: "GBR", 0x124: "CAN", 0x840: "USA"}
	for code, want := range countries {
		if got, ok := Country(code); !ok || got != want {
			t.Errorf("Country(%#x) = %q, %v, want %q", code, got, ok, want)
		}
	}
	currencies := map[uint16]string{0x756: "CHF", 0x978: "EUR", 0x826: "GBP", 0x124: "CAD", 0x840: "USD"}
	for code, want := range currencies {
		if got, ok := Currency(code); !ok || got != want {
			t.Errorf("Currency(%#x) = %q, %v, want %q", code, got, ok, want)
		}
	}
	if _, ok := Currency(0x9999); ok {
		t.Error("Currency(0x9999) found")
	}
	if _, ok := Country(0x978); ok {
		t.Error("Country(0x978) found")
	}
}

func TestParseDescriptor(t *testing.T) {
	d, err := ParseDescriptor(fullFormat)
	if err != nil {
		t.Fatalf("ParseDescriptor() error: %v", err)
	}
	want := []struct {
		tag TagCode
		len int
	}{
		{TagDate, 3}, {TagType, 1}, {TagTime, 3}, {TagCurrency, 2}, {TagAmount, 6},
		{TagMerchant, 5}, {TagCounter, 2}, {TagTerminalCountry, 2}, {TagCryptoInfo, 1},
	}
	if len(d) != len(want) {
		t.Fatalf("ParseDescriptor() returned %d fields, want %d", len(d), len(want))
	}
	for i, w := range want {
		if d[i].Tag != w.tag || d[i].Len != w.len || !d[i].Known {
			t.Errorf("field %d = %+v, want tag %v len %d", i, d[i], w.tag, w.len)
		}
	}
	if d.Size() != 25 {
		t.Errorf("Size() = %d, want 25", d.Size())
	}

	empty, err := ParseDescriptor(nil)
	if err != nil || len(empty) != 0 {
		t.Errorf("ParseDescriptor(nil) = %v, %v", empty, err)
	}
}
