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

package dump

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/go-piv/emv-go/v2/emv/protocol"
	"github.com/go-piv/emv-go/v2/emv/reader"
)

func testCapture() Capture {
	return Capture{
		ID:          uuid.MustParse("6f1c2b9e-8a55-4c1e-9d0a-3a7e5b2f1c44"),
		CapturedAt:  time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC),
		Reader:      "ACS ACR122U PICC Interface",
		Label:       "VISA DEBIT",
		AID:         []byte{0xA0, 0x00, 0x00, 0x00, 0x03, 0x10, 0x10},
		Fingerprint: Fingerprint("4970123456789012"),
		Format:      []byte{0x9A, 0x03, 0x9C, 0x01, 0x9F, 0x02, 0x06},
		Entries: [][]byte{
			{0x23, 0x05, 0x01, 0x00, 0x00, 0x00, 0x00, 0x12, 0x34, 0x56},
			{0x23, 0x05, 0x02, 0x01, 0x00, 0x00, 0x00, 0x00, 0x20, 0x00},
		},
	}
}

func checkCapture(t *testing.T, got, want Capture) {
	t.Helper()
	if got.ID != want.ID {
		t.Errorf("ID = %v, want %v", got.ID, want.ID)
	}
	if !got.CapturedAt.Equal(want.CapturedAt) {
		t.Errorf("CapturedAt = %v, want %v", got.CapturedAt, want.CapturedAt)
	}
	if got.Reader != want.Reader || got.Label != want.Label || got.Fingerprint != want.Fingerprint {
		t.Errorf("got reader %q label %q fingerprint %q, want %q %q %q",
			got.Reader, got.Label, got.Fingerprint, want.Reader, want.Label, want.Fingerprint)
	}
	if !bytes.Equal(got.AID, want.AID) {
		t.Errorf("AID = %X, want %X", got.AID, want.AID)
	}
	if !bytes.Equal(got.Format, want.Format) {
		t.Errorf("Format = %X, want %X", got.Format, want.Format)
	}
	if len(got.Entries) != len(want.Entries) {
		t.Fatalf("got %d entries, want %d", len(got.Entries), len(want.Entries))
	}
	for i := range want.Entries {
		if !bytes.Equal(got.Entries[i], want.Entries[i]) {
			t.Errorf("entry %d = %X, want %X", i, got.Entries[i], want.Entries[i])
		}
	}
}

func TestReadWrite(t *testing.T) {
	tests := map[string]bool{
		"plain": false,
		"zstd":  true,
	}
	for name, compress := range tests {
		t.Run(name, func(t *testing.T) {
			want := testCapture()
			var buf bytes.Buffer
			if err := Write(&buf, want, compress); err != nil {
				t.Fatalf("Write() error = %v", err)
			}
			if got := bytes.HasPrefix(buf.Bytes(), zstdMagic); got != compress {
				t.Errorf("zstd frame = %v, want %v", got, compress)
			}
			got, err := Read(&buf)
			if err != nil {
				t.Fatalf("Read() error = %v", err)
			}
			checkCapture(t, got, want)
		})
	}
}

func TestFileRoundTrip(t *testing.T) {
	for _, name := range []string{"log.json", "log.json.zst"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			want := testCapture()
			if err := WriteFile(path, want); err != nil {
				t.Fatalf("WriteFile() error = %v", err)
			}
			got, err := ReadFile(path)
			if err != nil {
				t.Fatalf("ReadFile() error = %v", err)
			}
			checkCapture(t, got, want)
		})
	}
}

func TestMarshalHidesPAN(t *testing.T) {
	data := string(testCapture().Marshal())
	if strings.Contains(data, "4970123456789012") {
		t.Errorf("capture contains the PAN: %s", data)
	}
	if !strings.Contains(data, `"log_format":"9A039C019F0206"`) {
		t.Errorf("capture missing log format: %s", data)
	}
}

func TestFingerprint(t *testing.T) {
	a := Fingerprint("4970123456789012")
	if len(a) != 32 {
		t.Errorf("len(Fingerprint()) = %d, want 32", len(a))
	}
	if b := Fingerprint("4970123456789012"); a != b {
		t.Errorf("Fingerprint() not stable: %s != %s", a, b)
	}
	if b := Fingerprint("4970123456789013"); a == b {
		t.Errorf("Fingerprint() collides for different PANs: %s", a)
	}
}

func TestNew(t *testing.T) {
	pl := reader.Paylog{
		Application: protocol.Application{Scheme: protocol.Visa, Label: "VISA", AID: []byte{0xA0, 0x00, 0x00, 0x00, 0x03, 0x10, 0x10}},
		Format:      []byte{0x9A, 0x03},
		Entries:     [][]byte{{0x23, 0x05, 0x01}},
	}
	c := New("reader0", pl, "")
	if c.ID == uuid.Nil {
		t.Error("New() left ID unset")
	}
	if c.Fingerprint != "" {
		t.Errorf("Fingerprint = %q without a PAN", c.Fingerprint)
	}
	if c.Label != "VISA" || c.Reader != "reader0" {
		t.Errorf("got label %q reader %q", c.Label, c.Reader)
	}
	if c := New("reader0", pl, "4970123456789012"); c.Fingerprint != Fingerprint("4970123456789012") {
		t.Errorf("Fingerprint = %q", c.Fingerprint)
	}
}

func TestUnmarshalErrors(t *testing.T) {
	tests := map[string]string{
		"not json":      `{"version":`,
		"wrong version": `{"version":2}`,
		"bad id":        `{"version":1,"id":"nope","captured_at":"2024-05-01T12:30:00Z"}`,
		"bad time":      `{"version":1,"id":"6f1c2b9e-8a55-4c1e-9d0a-3a7e5b2f1c44","captured_at":"yesterday"}`,
		"bad entry hex": `{"version":1,"id":"6f1c2b9e-8a55-4c1e-9d0a-3a7e5b2f1c44","captured_at":"2024-05-01T12:30:00Z","entries":["ZZ"]}`,
		"entry not str": `{"version":1,"id":"6f1c2b9e-8a55-4c1e-9d0a-3a7e5b2f1c44","captured_at":"2024-05-01T12:30:00Z","entries":[12]}`,
	}
	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := Unmarshal([]byte(data)); !errors.Is(err, ErrInvalidCapture) {
				t.Errorf("Unmarshal() error = %v, want %v", err, ErrInvalidCapture)
			}
		})
	}
}
