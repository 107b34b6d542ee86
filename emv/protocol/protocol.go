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

// Package protocol holds the APDU level building blocks shared by the card
// transports and the log reader.
package protocol

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidDataTag = errors.New("invalid data tag")
	ErrUnknownScheme  = errors.New("unknown payment scheme")
	ErrNoCommands     = errors.New("no commands to transmit")
)

// SmartCard is a connection to a contact or contactless card.
type SmartCard interface {
	// Transmit sends cmds in a single card transaction. Response status
	// words other than 9000 are returned as *StatusError.
	Transmit(cmds ...Command) ([]CommandResponse, error)
	Close() error
}

// Status words used by the reader.
const (
	SWSuccess                 uint16 = 0x9000
	SWFileNotFound            uint16 = 0x6A82
	SWRecordNotFound          uint16 = 0x6A83
	SWReferencedDataNotFound  uint16 = 0x6A88
	SWConditionsNotSatisfied  uint16 = 0x6985
	SWSecurityNotSatisfied    uint16 = 0x6982
	SWFunctionNotSupported    uint16 = 0x6A81
	SWWrongParameters         uint16 = 0x6B00
	SWInstructionNotSupported uint16 = 0x6D00
	SWClassNotSupported       uint16 = 0x6E00
)

var statusText = map[uint16]string{
	SWFileNotFound:            "file not found",
	SWRecordNotFound:          "record not found",
	SWReferencedDataNotFound:  "referenced data not found",
	SWConditionsNotSatisfied:  "conditions of use not satisfied",
	SWSecurityNotSatisfied:    "security status not satisfied",
	SWFunctionNotSupported:    "function not supported",
	SWWrongParameters:         "wrong parameters P1-P2",
	SWInstructionNotSupported: "instruction not supported",
	SWClassNotSupported:       "class not supported",
}

// StatusError is a card response with a non success status word.
type StatusError struct {
	SW1, SW2 byte
}

func (e *StatusError) Status() uint16 {
	return uint16(e.SW1)<<8 | uint16(e.SW2)
}

func (e *StatusError) Error() string {
	if s, ok := statusText[e.Status()]; ok {
		return fmt.Sprintf("card status %04X: %s", e.Status(), s)
	}
	return fmt.Sprintf("card status %04X", e.Status())
}

// IsStatus reports whether err is a StatusError carrying one of sws.
func IsStatus(err error, sws ...uint16) bool {
	var se *StatusError
	if !errors.As(err, &se) {
		return false
	}
	for _, sw := range sws {
		if se.Status() == sw {
			return true
		}
	}
	return false
}

// RecordNotFound reports whether the card rejected a READ RECORD past the
// end of a file.
func RecordNotFound(err error) bool {
	return IsStatus(err, SWRecordNotFound)
}

// NotFound reports whether the selected file or the requested data object
// does not exist.
func NotFound(err error) bool {
	return IsStatus(err, SWFileNotFound, SWReferencedDataNotFound)
}
