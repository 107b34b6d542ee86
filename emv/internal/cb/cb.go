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

// Package cb registers the Cartes Bancaires application. The CB log file
// is only known through the FCI log entry.
package cb

import "github.com/go-piv/emv-go/v2/emv/protocol"

func init() {
	protocol.RegisterApplication(Application)
}

var aidCB = [...]byte{0xa0, 0x00, 0x00, 0x00, 0x42, 0x10, 0x10}

var Application = protocol.Application{
	Scheme: protocol.CB,
	Label:  "CB",
	AID:    aidCB[:],
}
