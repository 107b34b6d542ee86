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
	"fmt"

	"github.com/go-piv/emv-go/v2/emv/protocol"
	"github.com/go-piv/emv-go/v2/emv/tlv"
)

// Paylog is the raw transaction log of one application.
type Paylog struct {
	Application protocol.Application
	Format      []byte
	// Entries in record order. A trailing empty entry marks a record the
	// card reported missing before MaxLogEntries was reached.
	Entries [][]byte
}

// ReadRecord reads record number rec of the file sfi.
func (r *Reader) ReadRecord(sfi, rec byte) ([]byte, error) {
	data, err := r.transmit(protocol.ReadRecord(sfi, rec))
	if err != nil {
		return nil, fmt.Errorf("reading SFI %d record %d: %w", sfi, rec, err)
	}
	return data, nil
}

// GetData reads a primitive data object, stripping its tag and length
// when the card sends them.
func (r *Reader) GetData(tag protocol.DataTag) ([]byte, error) {
	cmd, err := tag.Command()
	if err != nil {
		return nil, err
	}
	resp, err := r.transmit(cmd)
	if err != nil {
		return nil, fmt.Errorf("getting %v: %w", tag, err)
	}
	obj, rest, err := tlv.Decode(resp)
	if err == nil && len(rest) == 0 && obj.Tag.Equal(tag.Tag()) {
		return obj.Value, nil
	}
	return resp, nil
}

// ReadLogFormat returns the log format (9F4F) of the selected application.
func (r *Reader) ReadLogFormat() ([]byte, error) {
	return r.GetData(protocol.DataLogFormat)
}

// ReadLog selects app and reads its log format and log records. The log
// location comes from the FCI log entry, falling back to the application
// defaults.
func (r *Reader) ReadLog(app protocol.Application) (Paylog, error) {
	fci, err := r.Select(app.AID)
	if err != nil {
		return Paylog{}, err
	}
	if fci.Label != "" {
		app.Label = fci.Label
	}

	sfi, count := app.LogSFI, app.LogRecords
	if fci.HasLogEntry {
		sfi, count = fci.LogSFI, fci.LogRecords
	}
	if sfi == 0 || sfi > protocol.MaxSFI {
		return Paylog{}, fmt.Errorf("%v: %w", app, ErrNoLog)
	}

	format, err := r.ReadLogFormat()
	if err != nil {
		return Paylog{}, err
	}

	limit := r.cfg.MaxLogEntries
	if count > 0 && int(count) < limit {
		limit = int(count)
	}

	pl := Paylog{Application: app, Format: format}
	for rec := 1; rec <= limit; rec++ {
		entry, err := r.ReadRecord(sfi, byte(rec))
		if protocol.RecordNotFound(err) {
			pl.Entries = append(pl.Entries, []byte{})
			break
		}
		if err != nil {
			return pl, err
		}
		pl.Entries = append(pl.Entries, entry)
		if len(entry) == 0 {
			break
		}
	}
	return pl, nil
}
