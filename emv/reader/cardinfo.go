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
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-piv/emv-go/v2/emv/protocol"
	"github.com/go-piv/emv-go/v2/emv/tlv"
)

// Record is a raw record read during a scan.
type Record struct {
	SFI    byte
	Number byte
	Data   []byte
}

// CardInfo is the cardholder data found in an application's records.
type CardInfo struct {
	Application    protocol.Application
	PAN            string
	Expiry         string // MM/20YY
	CardholderName string
	ATC            []byte // Application transaction counter, nil if unreadable.
	LastOnlineATC  []byte // ATC of the last online authorisation, nil if unreadable.
	PINTries       int    // -1 if unreadable.
	Records        []Record
}

// MaskedPAN returns the PAN with all but the first and last four digits
// masked, grouped by four.
func (c CardInfo) MaskedPAN() string {
	return MaskPAN(c.PAN)
}

// Scan reads every record inside the configured range of the selected
// application. A file ends at its first missing record; files the card
// refuses are skipped.
func (r *Reader) Scan(ctx context.Context) ([]Record, error) {
	rng := r.cfg.Range
	var records []Record
	for sfi := int(rng.FromSFI); sfi <= int(rng.ToSFI); sfi++ {
	file:
		for rec := int(rng.FromRecord); rec <= int(rng.ToRecord); rec++ {
			if err := ctx.Err(); err != nil {
				return records, err
			}
			data, err := r.ReadRecord(byte(sfi), byte(rec))
			var se *protocol.StatusError
			switch {
			case errors.As(err, &se):
				break file
			case err != nil:
				return records, err
			}
			records = append(records, Record{SFI: byte(sfi), Number: byte(rec), Data: data})
		}
	}
	return records, nil
}

// ReadCardInfo selects app, scans its records and reads the transaction
// counters.
func (r *Reader) ReadCardInfo(ctx context.Context, app protocol.Application) (CardInfo, error) {
	fci, err := r.Select(app.AID)
	if err != nil {
		return CardInfo{}, err
	}
	if fci.Label != "" {
		app.Label = fci.Label
	}
	records, err := r.Scan(ctx)
	if err != nil {
		return CardInfo{}, err
	}

	info := ParseCardInfo(records)
	info.Application = app
	if atc, err := r.GetData(protocol.DataATC); err == nil {
		info.ATC = atc
	}
	if atc, err := r.GetData(protocol.DataLastOnlineATC); err == nil {
		info.LastOnlineATC = atc
	}
	if tries, err := r.GetData(protocol.DataPINTryCounter); err == nil && len(tries) == 1 {
		info.PINTries = int(tries[0])
	}
	return info, nil
}

// ParseCardInfo extracts the PAN, expiry and cardholder name from record
// templates. Explicit PAN (5A) and expiry (5F24) objects take precedence
// over track 2 equivalent data (57).
func ParseCardInfo(records []Record) CardInfo {
	info := CardInfo{PINTries: -1, Records: records}
	for _, rec := range records {
		objs, err := tlv.FindAll(rec.Data, protocol.TagRecordTemplate)
		if err != nil || len(objs) == 0 {
			continue
		}
		data := objs[0].Value

		if o, ok, _ := tlv.Find(data, protocol.TagTrack2); ok {
			pan, expiry := parseTrack2(o.Value)
			if info.PAN == "" {
				info.PAN = pan
			}
			if info.Expiry == "" {
				info.Expiry = expiry
			}
		}
		if o, ok, _ := tlv.Find(data, protocol.TagPAN); ok {
			info.PAN = strings.TrimRight(fmt.Sprintf("%X", o.Value), "F")
		}
		if o, ok, _ := tlv.Find(data, protocol.TagExpiry); ok && len(o.Value) >= 2 {
			info.Expiry = fmt.Sprintf("%02X/20%02X", o.Value[1], o.Value[0])
		}
		if o, ok, _ := tlv.Find(data, protocol.TagCardholderName); ok && info.CardholderName == "" {
			info.CardholderName = strings.TrimSpace(string(o.Value))
		}
	}
	return info
}

// parseTrack2 splits track 2 equivalent data at the field separator: PAN,
// then expiry as YYMM.
func parseTrack2(b []byte) (pan, expiry string) {
	digits := fmt.Sprintf("%X", b)
	i := strings.IndexByte(digits, 'D')
	if i < 0 {
		return strings.TrimRight(digits, "F"), ""
	}
	pan = digits[:i]
	if rest := digits[i+1:]; len(rest) >= 4 {
		expiry = rest[2:4] + "/20" + rest[0:2]
	}
	return pan, expiry
}

// MaskPAN keeps the first and last four digits of pan.
func MaskPAN(pan string) string {
	if len(pan) <= 8 {
		return pan
	}
	var sb strings.Builder
	for i, c := range pan {
		if i > 0 && i%4 == 0 {
			sb.WriteByte(' ')
		}
		if i >= 4 && i < len(pan)-4 {
			c = '*'
		}
		sb.WriteRune(c)
	}
	return sb.String()
}
