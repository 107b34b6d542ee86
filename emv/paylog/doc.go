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

// Package paylog decodes EMV transaction log entries (tag 9F4D records)
// against the card's log format (tag 9F4F).
//
// A log format is a packed list of tag and length pairs. Entries carry no
// structure of their own, their layout is entirely given by the format:
//
//	lines, err := paylog.Render(format, entries)
//	if err != nil {
//		// descriptor cannot be walked
//	}
//	paylog.Write(os.Stdout, lines)
package paylog
