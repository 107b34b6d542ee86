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

package protocol

import "fmt"

type CommandClass byte

const (
	StandardCommand CommandClass = 0x00
	ChainedCommand  CommandClass = 0x10
)

// noLe marks a command without an expected response length.
const noLe = -1

type Command struct {
	cla  CommandClass
	ins  Instruction
	p1   Parameter
	p2   Parameter
	data []byte
	le   int
}

func NewCommand(class CommandClass, ins Instruction, param1, param2 Parameter, data []byte) Command {
	return Command{cla: class, ins: ins, p1: param1, p2: param2, data: data, le: noLe}
}

// WithLe returns a copy of c that expects up to le response bytes. An le of
// 0x00 asks the card for as many bytes as it has (up to 256).
func (c Command) WithLe(le byte) Command {
	c.le = int(le)
	return c
}

func (c Command) Instruction() Instruction { return c.ins }
func (c Command) P1() Parameter            { return c.p1 }
func (c Command) P2() Parameter            { return c.p2 }
func (c Command) Data() []byte             { return c.data }

// Le reports the expected response length, if any.
func (c Command) Le() (byte, bool) {
	if c.le == noLe {
		return 0, false
	}
	return byte(c.le), true
}

// Encode encodes the command as one or more APDU messages, chaining
// messages (ISO/IEC 7816-4 5.1.1) when the payload exceeds the maximum
// short APDU data size. Le is only sent with the final message.
func (c Command) Encode() [][]byte {
	const maxAPDUDataSize = 0xff

	data := c.data
	var cmds [][]byte

	for len(data) > maxAPDUDataSize {
		req := make([]byte, 5+maxAPDUDataSize)
		req[0] = byte(c.cla | ChainedCommand)
		req[1] = byte(c.ins)
		req[2] = byte(c.p1)
		req[3] = byte(c.p2)
		req[4] = maxAPDUDataSize
		copy(req[5:], data[:maxAPDUDataSize])
		data = data[maxAPDUDataSize:]
		cmds = append(cmds, req)
	}

	req := []byte{byte(c.cla), byte(c.ins), byte(c.p1), byte(c.p2)}
	if len(data) > 0 {
		req = append(req, byte(len(data)))
		req = append(req, data...)
	}
	if c.le != noLe {
		req = append(req, byte(c.le))
	}
	cmds = append(cmds, req)

	return cmds
}

func (c Command) EncodeSingle() ([]byte, error) {
	cmds := c.Encode()
	if len(cmds) != 1 {
		return nil, fmt.Errorf("encoded command does not fit in single message, %d messages required", len(cmds))
	}
	return cmds[0], nil
}

func (c Command) String() string {
	cmds := c.Encode()
	return fmt.Sprintf("%v % X", c.ins, cmds[len(cmds)-1])
}

type CommandResponse struct {
	Command Command
	Data    []byte
}

// Select selects an application or directory by its DF name.
func Select(name []byte) Command {
	return NewCommand(StandardCommand, InsSelect, ParamSelectByName, ParamFirstOccurrence, name).WithLe(0x00)
}

// ReadRecord reads a record from the elementary file sfi.
func ReadRecord(sfi, record byte) Command {
	return NewCommand(StandardCommand, InsReadRecord, Parameter(record), ReadRecordP2(sfi), nil).WithLe(0x00)
}

// GetResponse fetches le bytes left pending after a 61xx status.
func GetResponse(le byte) Command {
	return NewCommand(StandardCommand, InsGetResponse, EmptyParam, EmptyParam, nil).WithLe(le)
}
