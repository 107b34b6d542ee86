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

type Parameter byte

const (
	EmptyParam Parameter = 0x00

	// SELECT P1 and P2.
	ParamSelectByName    Parameter = 0x04
	ParamFirstOccurrence Parameter = 0x00

	// READ RECORD P2 low bits: P1 is a record number.
	paramRecordNumber Parameter = 0x04
)

// MaxSFI is the largest short file identifier, SFIs are 5 bits.
const MaxSFI = 0x1F

// ReadRecordP2 encodes sfi in the high five bits of READ RECORD P2.
func ReadRecordP2(sfi byte) Parameter {
	return Parameter(sfi&MaxSFI)<<3 | paramRecordNumber
}
