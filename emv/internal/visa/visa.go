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

// Package visa registers the Visa credit/debit application.
package visa

import "github.com/go-piv/emv-go/v2/emv/protocol"

func init() {
	protocol.RegisterApplication(Application)
}

var aidVisa = [...]byte{0xa0, 0x00, 0x00, 0x00, 0x03, 0x10, 0x10}

// Visa keeps its transaction log in SFI 17 (READ RECORD P2 0x8C).
var Application = protocol.Application{
	Scheme:     protocol.Visa,
	Label:      "VISA",
	AID:        aidVisa[:],
	LogSFI:     0x11,
	LogRecords: 10,
}
