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
	"bytes"
	"errors"
	"reflect"
	"strings"
	"testing"
)

// Every registered tag, 25 entry bytes.
var fullFormat = []byte{
	0x9A, 0x03,
	0x9C, 0x01,
	0x9F, 0x21, 0x03,
	0x5F, 0x2A, 0x02,
	0x9F, 0x02, 0x06,
	0x9F, 0x4E, 0x05,
	0x9F, 0x36, 0x02,
	0x9F, 0x1A, 0x02,
	0x9F, 0x27, 0x01,
}

var fullEntry = []byte{
	0x23, 0x05, 0x01,
	0x01,
	0x12, 0x30, 0x45,
	0x09, 0x78,
	0x00, 0x00, 0x00, 0x12, 0x34, 0x56,
	'S', 'H', 'O', 'P', '1',
	0x00, 0x1A,
	0x02, 0x50,
	0x40,
}

func TestRenderEndToEnd(t *testing.T) {
	lines, err := Render([]byte{0x9A, 0x03, 0x9C, 0x01}, [][]byte{{0x23, 0x05, 0x01, 0x00}})
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if len(lines) != 1 {
		t.Fatalf("Render() returned %d lines, want 1", len(lines))
	}
	want := "0: Date: 23/05/2001; Type: Payment; "
	if got := lines[0].String(); got != want {
		t.Errorf("Render() = %q, want %q", got, want)
	}
}

func TestRenderAllTags(t *testing.T) {
	lines, err := Render(fullFormat, [][]byte{fullEntry})
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	want := "0: Date: 23/05/2001; Type: Withdrawal; Time: 12:30:45; Currency: EUR; Amount: 12.34; " +
		"Merchant: SHOP1; Counter: 001A; Terminal country: FRA; Crypto info: 40; "
	if got := lines[0].String(); got != want {
		t.Errorf("Render() =\n%q\nwant\n%q", got, want)
	}
}

func TestRenderDateAndTypeOnly(t *testing.T) {
	format := []byte{0x9A, 0x03, 0x9C, 0x01}
	entries := [][]byte{
		{0x23, 0x05, 0x01, 0x00},
		{0x24, 0x12, 0x31, 0x01},
	}
	lines, err := Render(format, entries)
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	for i, l := range lines {
		var labels []string
		for _, f := range l.Fields {
			labels = append(labels, f.Label)
		}
		if want := []string{"Date", "Type"}; !reflect.DeepEqual(labels, want) {
			t.Errorf("line %d labels = %v, want %v", i, labels, want)
		}
	}
	if got, want := lines[1].String(), "1: Date: 24/12/2031; Type: Withdrawal; "; got != want {
		t.Errorf("line 1 = %q, want %q", got, want)
	}
}

func TestRenderStopsAtEmptyEntry(t *testing.T) {
	format := []byte{0x9C, 0x01}
	tests := map[string]struct {
		entries [][]byte
		want    int
	}{
		"empty at 0":        {entries: [][]byte{{}, {0x00}}, want: 0},
		"empty at 3":        {entries: [][]byte{{0x00}, {0x01}, {0x00}, nil, {0x01}}, want: 3},
		"no empty entry":    {entries: [][]byte{{0x00}, {0x01}}, want: 2},
		"no entries at all": {entries: nil, want: 0},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			lines, err := Render(format, tt.entries)
			if err != nil {
				t.Fatalf("Render() error: %v", err)
			}
			if len(lines) != tt.want {
				t.Fatalf("Render() returned %d lines, want %d", len(lines), tt.want)
			}
			for i, l := range lines {
				if l.Index != i {
					t.Errorf("line %d has index %d", i, l.Index)
				}
			}
		})
	}
}

func TestRenderConsumesWholeEntry(t *testing.T) {
	d, err := ParseDescriptor(fullFormat)
	if err != nil {
		t.Fatalf("ParseDescriptor() error: %v", err)
	}
	if d.Size() != len(fullEntry) {
		t.Fatalf("descriptor size %d, entry size %d", d.Size(), len(fullEntry))
	}
	l := Renderer{}.RenderEntry(d, 0, fullEntry)
	if l.Err != nil {
		t.Fatalf("RenderEntry() error: %v", l.Err)
	}
	if l.Consumed != len(fullEntry) {
		t.Errorf("Consumed = %d, want %d", l.Consumed, len(fullEntry))
	}
	raw := 0
	for _, f := range l.Fields {
		raw += len(f.Raw)
	}
	if raw != len(fullEntry) {
		t.Errorf("fields hold %d raw bytes, want %d", raw, len(fullEntry))
	}
}

func TestRenderOutOfBounds(t *testing.T) {
	format := []byte{0x9A, 0x03, 0x9F, 0x02, 0x06}
	entries := [][]byte{
		{0x23, 0x05, 0x01, 0x00, 0x00},
		{0x23, 0x05, 0x01, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00},
	}
	lines, err := Render(format, entries)
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if len(lines) != 2 {
		t.Fatalf("Render() returned %d lines, want 2", len(lines))
	}

	if !errors.Is(lines[0].Err, ErrOutOfBounds) {
		t.Fatalf("line 0 error = %v, want ErrOutOfBounds", lines[0].Err)
	}
	var de *DecodingError
	if !errors.As(lines[0].Err, &de) {
		t.Fatalf("line 0 error is %T, want *DecodingError", lines[0].Err)
	}
	if de.Entry != 0 || de.Tag != TagAmount || de.Offset != 3 || de.Need != 6 || de.Have != 2 {
		t.Errorf("DecodingError = %+v", de)
	}
	if !strings.HasPrefix(lines[0].String(), "0: error: ") {
		t.Errorf("line 0 = %q, want diagnostic", lines[0].String())
	}

	if lines[1].Err != nil {
		t.Fatalf("line 1 error: %v", lines[1].Err)
	}
	if got, want := lines[1].String(), "1: Date: 23/05/2001; Amount: 01.00; "; got != want {
		t.Errorf("line 1 = %q, want %q", got, want)
	}
}

func TestRenderUnknownTag(t *testing.T) {
	format := []byte{0x9F, 0x03, 0x06, 0x9A, 0x03}
	entry := []byte{0x00, 0x00, 0x00, 0x00, 0x01, 0x00, 0x23, 0x05, 0x01}

	lines, err := Render(format, [][]byte{entry})
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	var de *DecodingError
	if !errors.As(lines[0].Err, &de) || !errors.Is(de, ErrUnknownTag) {
		t.Fatalf("line 0 error = %v, want unknown tag", lines[0].Err)
	}
	if de.Tag != 0x9F03 {
		t.Errorf("DecodingError.Tag = %v, want 9F03", de.Tag)
	}

	lines, err = Renderer{SkipUnknown: true}.Render(format, [][]byte{entry})
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	want := "0: Unknown 9F03: 000000000100; Date: 23/05/2001; "
	if got := lines[0].String(); got != want {
		t.Errorf("Render() = %q, want %q", got, want)
	}
}

func TestRenderUnknownSingleByteTag(t *testing.T) {
	// 95 (TVR) is a one byte tag that the registry does not know.
	lines, err := Render([]byte{0x95, 0x05, 0x9C, 0x01}, [][]byte{{0x00, 0x00, 0x00, 0x80, 0x00, 0x01}})
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if !errors.Is(lines[0].Err, ErrUnknownTag) {
		t.Errorf("line 0 error = %v, want ErrUnknownTag", lines[0].Err)
	}
}

func TestRenderTruncatedDescriptor(t *testing.T) {
	tests := map[string][]byte{
		"missing length":          {0x9A},
		"missing second tag byte": {0x9A, 0x03, 0x9F},
		"two byte missing length": {0x9F, 0x02},
	}
	for name, format := range tests {
		t.Run(name, func(t *testing.T) {
			lines, err := Render(format, [][]byte{{0x23, 0x05, 0x01}})
			if !errors.Is(err, ErrTruncatedDescriptor) {
				t.Fatalf("Render() error = %v, want ErrTruncatedDescriptor", err)
			}
			if lines != nil {
				t.Errorf("Render() returned lines on error: %v", lines)
			}
		})
	}
}

func TestRenderInvalidTypeLength(t *testing.T) {
	lines, err := Render([]byte{0x9C, 0x00}, [][]byte{{0x01}})
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if !errors.Is(lines[0].Err, ErrInvalidLength) {
		t.Errorf("line 0 error = %v, want ErrInvalidLength", lines[0].Err)
	}
}

func TestWrite(t *testing.T) {
	lines, err := Render([]byte{0x9C, 0x01}, [][]byte{{0x00}, {0x01}})
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	var buf bytes.Buffer
	if err := Write(&buf, lines); err != nil {
		t.Fatalf("Write() error: %v", err)
	}
	want := "0: Type: Payment; \n1: Type: Withdrawal; \n"
	if buf.String() != want {
		t.Errorf("Write() = %q, want %q", buf.String(), want)
	}
}
