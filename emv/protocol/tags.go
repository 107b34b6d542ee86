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

import (
	"fmt"

	"github.com/go-piv/emv-go/v2/emv/tlv"
)

// EMV 4.3 Book 1 Annex B and Book 3 Annex A.
var (
	TagFCITemplate            = tlv.Tag{0x6F}
	TagDFName                 = tlv.Tag{0x84}
	TagFCIProprietary         = tlv.Tag{0xA5}
	TagFCIIssuerDiscretionary = tlv.Tag{0xBF, 0x0C}
	TagDirectoryEntry         = tlv.Tag{0x61}
	TagAID                    = tlv.Tag{0x4F}
	TagApplicationLabel       = tlv.Tag{0x50}
	TagPreferredName          = tlv.Tag{0x9F, 0x12}
	TagPriority               = tlv.Tag{0x87}
	TagLogEntry               = tlv.Tag{0x9F, 0x4D}
	TagLogFormat              = tlv.Tag{0x9F, 0x4F}
	TagRecordTemplate         = tlv.Tag{0x70}
	TagTrack2                 = tlv.Tag{0x57}
	TagPAN                    = tlv.Tag{0x5A}
	TagCardholderName         = tlv.Tag{0x5F, 0x20}
	TagExpiry                 = tlv.Tag{0x5F, 0x24}
	TagATC                    = tlv.Tag{0x9F, 0x36}
	TagPINTryCounter          = tlv.Tag{0x9F, 0x17}
)

// Proximity payment system environment, selected to list the contactless
// applications on a card.
var PPSE = []byte("2PAY.SYS.DDF01")

// Data objects readable with GET DATA.
var (
	DataLogFormat     = NewDataTag(0x9F, 0x4F)
	DataATC           = NewDataTag(0x9F, 0x36)
	DataLastOnlineATC = NewDataTag(0x9F, 0x13)
	DataPINTryCounter = NewDataTag(0x9F, 0x17)
)

func NewDataTag(id ...byte) DataTag {
	return DataTag{id: id}
}

// DataTag is a primitive data object addressed by GET DATA P1-P2.
type DataTag struct {
	id []byte
}

func (t DataTag) String() string {
	return fmt.Sprintf("DataTag{id: 0x%X}", t.id)
}

func (t DataTag) Tag() tlv.Tag {
	return tlv.Tag(t.id)
}

// Command builds the GET DATA command for t. One byte tags are sent with a
// zero P1.
func (t DataTag) Command() (Command, error) {
	var p1, p2 Parameter
	switch len(t.id) {
	case 1:
		p2 = Parameter(t.id[0])
	case 2:
		p1, p2 = Parameter(t.id[0]), Parameter(t.id[1])
	default:
		return Command{}, ErrInvalidDataTag
	}
	return NewCommand(StandardCommand, InsGetData, p1, p2, nil).WithLe(0x00), nil
}
