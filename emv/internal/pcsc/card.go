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
	"errors"
	"fmt"
	"log"

	"github.com/go-piv/emv-go/v2/emv/protocol"
)

// ErrUnsupported is returned on builds without a PC/SC implementation.
var ErrUnsupported = errors.New("pcsc: not supported on this build")

const (
	// Response chaining is bounded so a misbehaving card cannot loop forever.
	maxGetResponse = 32

	// ISO/IEC 7816-3 caps the answer to reset at 33 bytes.
	maxATRSize = 33

	protocolT0 = "T=0"
	protocolT1 = "T=1"
)

func ListReaders() ([]string, error) {
	ctx, err := newSmartCardContext()
	if err != nil {
		return nil, err
	}
	defer ctx.Close()
	return ctx.ListReaders()
}

// transmitter sends one raw APDU and returns the response with its status
// word. *smartCardTransaction implements it on every platform.
type transmitter interface {
	transmit(req []byte) ([]byte, error)
}

// SmartCard is a card connected through a PC/SC reader.
type SmartCard struct {
	ctx    *smartCardContext
	handle *smartCardHandle
	atr    []byte

	// Logger traces every APDU exchange when set.
	Logger *log.Logger
}

func NewSmartCard(reader string) (*SmartCard, error) {
	ctx, err := newSmartCardContext()
	if err != nil {
		return nil, err
	}

	handle, err := ctx.Connect(reader)
	if err != nil {
		defer ctx.Close()
		return nil, err
	}

	// A card without a readable ATR can still be used.
	atr, _ := handle.ATR()
	return &SmartCard{ctx: ctx, handle: handle, atr: atr}, nil
}

// ATR is the answer to reset read when the card was connected.
func (sc *SmartCard) ATR() []byte {
	return sc.atr
}

// Protocol is the transmission protocol negotiated with the card.
func (sc *SmartCard) Protocol() string {
	if sc.handle == nil {
		return ""
	}
	return sc.handle.Protocol()
}

// Transmit sends every command inside a single PC/SC transaction.
func (sc *SmartCard) Transmit(cmds ...protocol.Command) ([]protocol.CommandResponse, error) {
	if sc.handle == nil {
		return nil, fmt.Errorf("pcsc: card closed")
	}
	if len(cmds) == 0 {
		return nil, protocol.ErrNoCommands
	}

	tx, err := sc.handle.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Close()

	var responses []protocol.CommandResponse
	for _, cmd := range cmds {
		resp, err := sc.exchange(tx, cmd)
		if err != nil {
			return responses, err
		}
		responses = append(responses, protocol.CommandResponse{
			Command: cmd,
			Data:    resp,
		})
	}

	return responses, nil
}

// exchange sends cmd and follows the ISO/IEC 7816-4 response procedure:
// 61xx fetches pending bytes with GET RESPONSE, 6Cxx resends with the
// length the card asked for.
func (sc *SmartCard) exchange(tx transmitter, cmd protocol.Command) ([]byte, error) {
	msgs := cmd.Encode()
	for _, req := range msgs[:len(msgs)-1] {
		if _, sw1, sw2, err := sc.send(tx, req); err != nil {
			return nil, err
		} else if sw1 != 0x90 || sw2 != 0x00 {
			return nil, &protocol.StatusError{SW1: sw1, SW2: sw2}
		}
	}

	resp, sw1, sw2, err := sc.send(tx, msgs[len(msgs)-1])
	if err != nil {
		return nil, err
	}
	if sw1 == 0x6C {
		final, err := cmd.WithLe(sw2).EncodeSingle()
		if err != nil {
			return nil, err
		}
		if resp, sw1, sw2, err = sc.send(tx, final); err != nil {
			return nil, err
		}
	}

	out := append([]byte(nil), resp...)
	for i := 0; sw1 == 0x61; i++ {
		if i == maxGetResponse {
			return nil, fmt.Errorf("pcsc: response longer than %d GET RESPONSE rounds", maxGetResponse)
		}
		req, err := protocol.GetResponse(sw2).EncodeSingle()
		if err != nil {
			return nil, err
		}
		if resp, sw1, sw2, err = sc.send(tx, req); err != nil {
			return nil, err
		}
		out = append(out, resp...)
	}

	if sw1 != 0x90 || sw2 != 0x00 {
		return nil, &protocol.StatusError{SW1: sw1, SW2: sw2}
	}
	return out, nil
}

func (sc *SmartCard) send(tx transmitter, req []byte) ([]byte, byte, byte, error) {
	if sc.Logger != nil {
		sc.Logger.Printf(">> % X", req)
	}
	resp, err := tx.transmit(req)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("transmitting request: %w", err)
	}
	if len(resp) < 2 {
		return nil, 0, 0, fmt.Errorf("scard response too short: %d", len(resp))
	}
	if sc.Logger != nil {
		sc.Logger.Printf("<< % X", resp)
	}
	n := len(resp)
	return resp[:n-2], resp[n-2], resp[n-1], nil
}

func (sc *SmartCard) Close() error {
	if sc.handle == nil {
		return nil
	}
	hErr := sc.handle.Close()
	cErr := sc.ctx.Close()

	sc.ctx = nil
	sc.handle = nil

	if hErr == nil {
		return cErr
	}
	return hErr
}

// scErr is a PC/SC return code other than SCARD_S_SUCCESS.
type scErr struct {
	rc int64
}

var scErrText = map[int64]string{
	0x80100002: "command cancelled",
	0x80100003: "invalid handle",
	0x80100008: "insufficient buffer",
	0x80100009: "unknown reader",
	0x8010000A: "timeout",
	0x8010000B: "sharing violation",
	0x8010000C: "no smart card",
	0x8010000F: "protocol mismatch",
	0x80100016: "not transacted",
	0x8010001D: "service not available",
	0x8010002E: "no readers available",
	0x80100069: "card removed",
}

func (e *scErr) Error() string {
	rc := uint32(e.rc)
	if s, ok := scErrText[int64(rc)]; ok {
		return fmt.Sprintf("pcsc: %s (0x%08X)", s, rc)
	}
	return fmt.Sprintf("pcsc: return code 0x%08X", rc)
}
