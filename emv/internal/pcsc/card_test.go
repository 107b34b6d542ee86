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

package pcsc

import (
	"bytes"
	"encoding/hex"
	"errors"
	"strings"
	"testing"

	"github.com/go-piv/emv-go/v2/emv/protocol"
)

// scriptedTx answers requests from responses, keyed by the request in
// uppercase hex. Unscripted requests get 6D00.
type scriptedTx struct {
	responses map[string][]byte
	sent      []string
}

func (tx *scriptedTx) transmit(req []byte) ([]byte, error) {
	key := strings.ToUpper(hex.EncodeToString(req))
	tx.sent = append(tx.sent, key)
	if key[:2] == "10" {
		// Chained messages share a prefix, look them up by header only.
		key = key[:8]
	}
	resp, ok := tx.responses[key]
	if !ok {
		return []byte{0x6D, 0x00}, nil
	}
	return resp, nil
}

func TestExchange(t *testing.T) {
	readRecord := protocol.ReadRecord(1, 1)
	chained := protocol.NewCommand(protocol.StandardCommand, protocol.InsSelect, protocol.ParamSelectByName, protocol.ParamFirstOccurrence, make([]byte, 300))

	tests := map[string]struct {
		cmd       protocol.Command
		responses map[string][]byte
		want      []byte
		wantSW    uint16
		wantSent  []string
		wantCount int
	}{
		"success": {
			cmd:       readRecord,
			responses: map[string][]byte{"00B2010C00": {0x70, 0x01, 0xAA, 0x90, 0x00}},
			want:      []byte{0x70, 0x01, 0xAA},
			wantSent:  []string{"00B2010C00"},
		},
		"wrong length resent": {
			cmd: readRecord,
			responses: map[string][]byte{
				"00B2010C00": {0x6C, 0x03},
				"00B2010C03": {0x01, 0x02, 0x03, 0x90, 0x00},
			},
			want:     []byte{0x01, 0x02, 0x03},
			wantSent: []string{"00B2010C00", "00B2010C03"},
		},
		"wrong length then more data": {
			cmd: readRecord,
			responses: map[string][]byte{
				"00B2010C00": {0x6C, 0x02},
				"00B2010C02": {0xAA, 0xBB, 0x61, 0x02},
				"00C0000002": {0xCC, 0xDD, 0x90, 0x00},
			},
			want:     []byte{0xAA, 0xBB, 0xCC, 0xDD},
			wantSent: []string{"00B2010C00", "00B2010C02", "00C0000002"},
		},
		"record not found": {
			cmd:       readRecord,
			responses: map[string][]byte{"00B2010C00": {0x6A, 0x83}},
			wantSW:    protocol.SWRecordNotFound,
			wantSent:  []string{"00B2010C00"},
		},
		"error after get response": {
			cmd: readRecord,
			responses: map[string][]byte{
				"00B2010C00": {0x61, 0x04},
				"00C0000004": {0x69, 0x85},
			},
			wantSW:   protocol.SWConditionsNotSatisfied,
			wantSent: []string{"00B2010C00", "00C0000004"},
		},
		"chained message rejected": {
			cmd:       chained,
			responses: map[string][]byte{"10A40400": {0x6A, 0x80}},
			wantSW:    0x6A80,
			wantCount: 1,
		},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			tx := &scriptedTx{responses: tt.responses}
			got, err := (&SmartCard{}).exchange(tx, tt.cmd)
			if tt.wantSW != 0 {
				var se *protocol.StatusError
				if !errors.As(err, &se) || se.Status() != tt.wantSW {
					t.Fatalf("exchange() error = %v, want status %04X", err, tt.wantSW)
				}
			} else {
				if err != nil {
					t.Fatalf("exchange() error = %v", err)
				}
				if !bytes.Equal(got, tt.want) {
					t.Errorf("exchange() = % X, want % X", got, tt.want)
				}
			}
			if tt.wantSent != nil && strings.Join(tx.sent, " ") != strings.Join(tt.wantSent, " ") {
				t.Errorf("sent %v, want %v", tx.sent, tt.wantSent)
			}
			if tt.wantCount != 0 && len(tx.sent) != tt.wantCount {
				t.Errorf("sent %d messages, want %d", len(tx.sent), tt.wantCount)
			}
		})
	}
}

func TestExchangeGetResponseLimit(t *testing.T) {
	tx := &scriptedTx{responses: map[string][]byte{
		"00B2010C00": {0x61, 0x01},
		"00C0000001": {0x00, 0x61, 0x01},
	}}
	_, err := (&SmartCard{}).exchange(tx, protocol.ReadRecord(1, 1))
	if err == nil {
		t.Fatal("exchange() succeeded on an endless response")
	}
	if got, want := len(tx.sent), 1+maxGetResponse; got != want {
		t.Errorf("sent %d messages, want %d", got, want)
	}
}

func TestSendShortResponse(t *testing.T) {
	tx := &scriptedTx{responses: map[string][]byte{"00B2010C00": {0x90}}}
	if _, err := (&SmartCard{}).exchange(tx, protocol.ReadRecord(1, 1)); err == nil {
		t.Error("exchange() accepted a response without a status word")
	}
}
