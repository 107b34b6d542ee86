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

package reader

import (
	"fmt"

	"github.com/go-piv/emv-go/v2/emv/protocol"
)

// fakeCard answers encoded APDUs from a script. Unscripted READ RECORDs
// report 6A83, everything else 6A82.
type fakeCard struct {
	script map[string][]byte
	status map[string]uint16
	sent   []string
}

func newFakeCard() *fakeCard {
	return &fakeCard{script: make(map[string][]byte), status: make(map[string]uint16)}
}

func apduKey(cmd protocol.Command) string {
	b, err := cmd.EncodeSingle()
	if err != nil {
		panic(err)
	}
	return fmt.Sprintf("%X", b)
}

func (c *fakeCard) respond(cmd protocol.Command, data []byte) {
	c.script[apduKey(cmd)] = data
}

func (c *fakeCard) fail(cmd protocol.Command, sw uint16) {
	c.status[apduKey(cmd)] = sw
}

func (c *fakeCard) Transmit(cmds ...protocol.Command) ([]protocol.CommandResponse, error) {
	var out []protocol.CommandResponse
	for _, cmd := range cmds {
		key := apduKey(cmd)
		c.sent = append(c.sent, key)
		if sw, ok := c.status[key]; ok {
			return out, &protocol.StatusError{SW1: byte(sw >> 8), SW2: byte(sw)}
		}
		data, ok := c.script[key]
		if !ok {
			if cmd.Instruction() == protocol.InsReadRecord {
				return out, &protocol.StatusError{SW1: 0x6A, SW2: 0x83}
			}
			return out, &protocol.StatusError{SW1: 0x6A, SW2: 0x82}
		}
		out = append(out, protocol.CommandResponse{Command: cmd, Data: data})
	}
	return out, nil
}

func (c *fakeCard) Close() error { return nil }
