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

// Package reader drives a card through application selection and record
// reads, producing the raw log format and log entries decoded by paylog.
package reader

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-piv/emv-go/v2/emv/protocol"
	"github.com/go-piv/emv-go/v2/emv/tlv"

	// Register the known payment applications.
	_ "github.com/go-piv/emv-go/v2/emv/internal/cb"
	_ "github.com/go-piv/emv-go/v2/emv/internal/mastercard"
	_ "github.com/go-piv/emv-go/v2/emv/internal/visa"
)

var (
	ErrNoApplication = errors.New("no payment application found")
	ErrNoLog         = errors.New("application has no transaction log")
)

// Reader issues commands to a single card. It is not safe for concurrent
// use, a card handles one command at a time.
type Reader struct {
	card protocol.SmartCard
	cfg  Config
}

func New(card protocol.SmartCard, cfg Config) (*Reader, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Reader{card: card, cfg: cfg}, nil
}

func (r *Reader) Config() Config {
	return r.cfg
}

func (r *Reader) transmit(cmd protocol.Command) ([]byte, error) {
	if r.cfg.Logger != nil {
		r.cfg.Logger.Printf("%v", cmd)
	}
	resp, err := r.card.Transmit(cmd)
	if err != nil {
		if r.cfg.Logger != nil {
			r.cfg.Logger.Printf("%v: %v", cmd.Instruction(), err)
		}
		return nil, err
	}
	if len(resp) != 1 {
		return nil, fmt.Errorf("expected 1 response, got: %d", len(resp))
	}
	return resp[0].Data, nil
}

// FCI is the file control information returned by SELECT.
type FCI struct {
	DFName        []byte
	Label         string
	PreferredName string
	// Log entry (9F4D): SFI of the log file and its maximum record count.
	HasLogEntry bool
	LogSFI      byte
	LogRecords  byte
}

func ParseFCI(data []byte) (FCI, error) {
	var fci FCI
	objs, err := tlv.FindAll(data, protocol.TagFCITemplate)
	if err != nil {
		return fci, fmt.Errorf("parsing FCI: %w", err)
	}
	if len(objs) == 0 {
		return fci, fmt.Errorf("parsing FCI: no %v template", protocol.TagFCITemplate)
	}
	fciData := objs[0].Value

	if o, ok, err := tlv.Find(fciData, protocol.TagDFName); err != nil {
		return fci, fmt.Errorf("parsing FCI: %w", err)
	} else if ok {
		fci.DFName = o.Value
	}
	if o, ok, _ := tlv.Find(fciData, protocol.TagApplicationLabel); ok {
		fci.Label = strings.TrimSpace(string(o.Value))
	}
	if o, ok, _ := tlv.Find(fciData, protocol.TagPreferredName); ok {
		fci.PreferredName = strings.TrimSpace(string(o.Value))
	}
	if o, ok, _ := tlv.Find(fciData, protocol.TagLogEntry); ok {
		if len(o.Value) != 2 {
			return fci, fmt.Errorf("parsing FCI: log entry has %d bytes, want 2", len(o.Value))
		}
		fci.HasLogEntry = true
		fci.LogSFI = o.Value[0]
		fci.LogRecords = o.Value[1]
	}
	return fci, nil
}

// Select selects the application (or directory) named aid.
func (r *Reader) Select(aid []byte) (FCI, error) {
	resp, err := r.transmit(protocol.Select(aid))
	if err != nil {
		return FCI{}, fmt.Errorf("selecting %X: %w", aid, err)
	}
	return ParseFCI(resp)
}

// Discover lists the payment applications on the card. The PPSE directory
// is tried first, its entries ordered by application priority; cards
// without one are probed with every registered AID.
func (r *Reader) Discover() ([]protocol.Application, error) {
	apps, err := r.discoverPPSE()
	if err == nil && len(apps) > 0 {
		return apps, nil
	}
	var se *protocol.StatusError
	if err != nil && !errors.As(err, &se) {
		return nil, err
	}

	for _, app := range protocol.Applications() {
		fci, err := r.Select(app.AID)
		if errors.As(err, &se) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if fci.Label != "" {
			app.Label = fci.Label
		}
		apps = append(apps, app)
	}
	if len(apps) == 0 {
		return nil, ErrNoApplication
	}
	return apps, nil
}

func (r *Reader) discoverPPSE() ([]protocol.Application, error) {
	resp, err := r.transmit(protocol.Select(protocol.PPSE))
	if err != nil {
		return nil, err
	}
	entries, err := tlv.FindAll(resp, protocol.TagDirectoryEntry)
	if err != nil {
		return nil, fmt.Errorf("parsing PPSE: %w", err)
	}

	var (
		apps       []protocol.Application
		priorities []int
	)
	for _, entry := range entries {
		aid, ok, err := tlv.Find(entry.Value, protocol.TagAID)
		if err != nil {
			return nil, fmt.Errorf("parsing PPSE: %w", err)
		}
		if !ok {
			continue
		}
		app, known := protocol.MatchAID(aid.Value)
		if !known {
			app = protocol.Application{Scheme: protocol.UnknownScheme}
		}
		app.AID = aid.Value
		if label, ok, _ := tlv.Find(entry.Value, protocol.TagApplicationLabel); ok {
			app.Label = strings.TrimSpace(string(label.Value))
		}
		apps = append(apps, app)
		priorities = append(priorities, entryPriority(entry.Value))
	}

	sort.Stable(byPriority{apps, priorities})
	return apps, nil
}

// lowestPriority ranks entries without an application priority indicator
// after every prioritised one.
const lowestPriority = 0x10

// entryPriority returns the low nibble of the application priority
// indicator (87), 1 being the highest priority. Zero means none.
func entryPriority(entry []byte) int {
	o, ok, _ := tlv.Find(entry, protocol.TagPriority)
	if !ok || len(o.Value) != 1 || o.Value[0]&0x0F == 0 {
		return lowestPriority
	}
	return int(o.Value[0] & 0x0F)
}

type byPriority struct {
	apps       []protocol.Application
	priorities []int
}

func (p byPriority) Len() int           { return len(p.apps) }
func (p byPriority) Less(i, j int) bool { return p.priorities[i] < p.priorities[j] }
func (p byPriority) Swap(i, j int) {
	p.apps[i], p.apps[j] = p.apps[j], p.apps[i]
	p.priorities[i], p.priorities[j] = p.priorities[j], p.priorities[i]
}
