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

type Instruction byte

// EMV 4.3 Book 1 11.3 and Book 3 6.5.
const (
	InsSelect      Instruction = 0xA4
	InsReadRecord  Instruction = 0xB2
	InsGetData     Instruction = 0xCA
	InsGetResponse Instruction = 0xC0
)

func (i Instruction) String() string {
	switch i {
	case InsSelect:
		return "SELECT"
	case InsReadRecord:
		return "READ RECORD"
	case InsGetData:
		return "GET DATA"
	case InsGetResponse:
		return "GET RESPONSE"
	default:
		return fmt.Sprintf("INS(%02X)", byte(i))
	}
}
