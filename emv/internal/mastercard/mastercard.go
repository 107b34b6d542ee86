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

// Package mastercard registers the Mastercard credit/debit application.
package mastercard

import "github.com/go-piv/emv-go/v2/emv/protocol"

func init() {
	protocol.RegisterApplication(Application)
}

var aidMastercard = [...]byte{0xa0, 0x00, 0x00, 0x00, 0x04, 0x10, 0x10}

// Mastercard keeps its transaction log in SFI 11 (READ RECORD P2 0x5C).
var Application = protocol.Application{
	Scheme:     protocol.Mastercard,
	Label:      "MASTERCARD",
	AID:        aidMastercard[:],
	LogSFI:     0x0B,
	LogRecords: 10,
}
