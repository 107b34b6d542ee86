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

package reader

import (
	"errors"
	"fmt"
	"log"

	"github.com/go-piv/emv-go/v2/emv/protocol"
)

// DefaultMaxLogEntries bounds the number of log records read per
// application. Cards keep 10 to 30 entries, most of them 10.
const DefaultMaxLogEntries = 20

var ErrInvalidConfig = errors.New("invalid reader configuration")

// ScanRange is the SFI and record window walked by Scan.
type ScanRange struct {
	FromSFI, ToSFI       byte
	FromRecord, ToRecord byte
}

var (
	// FastScan covers every SFI with the first 16 records, enough for
	// the files payment applications actually use.
	FastScan = ScanRange{FromSFI: 1, ToSFI: protocol.MaxSFI, FromRecord: 1, ToRecord: 16}
	// FullScan covers every addressable record.
	FullScan = ScanRange{FromSFI: 1, ToSFI: protocol.MaxSFI, FromRecord: 1, ToRecord: 255}
)

func (r ScanRange) Validate() error {
	if r.FromSFI == 0 || r.ToSFI > protocol.MaxSFI || r.FromSFI > r.ToSFI {
		return fmt.Errorf("%w: SFI range %d-%d, want within 1-%d", ErrInvalidConfig, r.FromSFI, r.ToSFI, protocol.MaxSFI)
	}
	if r.FromRecord == 0 || r.FromRecord > r.ToRecord {
		return fmt.Errorf("%w: record range %d-%d", ErrInvalidConfig, r.FromRecord, r.ToRecord)
	}
	return nil
}

func (r ScanRange) String() string {
	return fmt.Sprintf("SFI %d-%d, records %d-%d", r.FromSFI, r.ToSFI, r.FromRecord, r.ToRecord)
}

// Config is fixed for the lifetime of a Reader.
type Config struct {
	Range         ScanRange
	MaxLogEntries int
	// Logger traces commands sent to the card, nil disables tracing.
	Logger *log.Logger
}

func DefaultConfig() Config {
	return Config{Range: FastScan, MaxLogEntries: DefaultMaxLogEntries}
}

func (c Config) Validate() error {
	if err := c.Range.Validate(); err != nil {
		return err
	}
	if c.MaxLogEntries <= 0 || c.MaxLogEntries > 255 {
		return fmt.Errorf("%w: max log entries %d, want 1-255", ErrInvalidConfig, c.MaxLogEntries)
	}
	return nil
}
