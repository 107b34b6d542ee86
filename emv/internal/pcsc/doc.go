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

// Package pcsc talks to card readers through the platform PC/SC service
// (pcsc-lite on unix, winscard.dll on Windows).
package pcsc

// https://www.iso.org/obp/ui/#iso:std:iso-iec:7816:-4:ed-4:v1:en
// https://pcsclite.apdu.fr/api/group__API.html
