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

// Package emv reads the transaction log of EMV payment cards through PC/SC
// readers.
//
//	readers, err := emv.Cards()
//	...
//	card, err := emv.Open(readers[0].Name, nil)
//	...
//	defer card.Close()
//	r, err := reader.New(card, reader.DefaultConfig())
//	...
//	apps, err := r.Discover()
//	...
//	pl, err := r.ReadLog(apps[0])
//	...
//	lines, err := paylog.Render(pl.Format, pl.Entries)
package emv

import (
	"log"
	"strings"

	"github.com/go-piv/emv-go/v2/emv/internal/pcsc"
	"github.com/go-piv/emv-go/v2/emv/protocol"
)

// ErrUnsupported is returned when the binary was built without PC/SC
// support.
var ErrUnsupported = pcsc.ErrUnsupported

// Reader is a PC/SC reader slot.
type Reader struct {
	Name        string
	Contactless bool
}

func Cards() ([]Reader, error) {
	names, err := pcsc.ListReaders()
	if err != nil {
		return nil, err
	}
	var readers []Reader
	for _, name := range names {
		readers = append(readers, Reader{
			Name:        name,
			Contactless: isContactless(name),
		})
	}
	return readers, nil
}

// isContactless guesses from the reader name; drivers usually expose the
// NFC slot of a dual interface reader as "PICC" or "Contactless".
func isContactless(name string) bool {
	name = strings.ToLower(name)
	return strings.Contains(name, "picc") || strings.Contains(name, "contactless")
}

// Card is a card connected through a PC/SC reader.
type Card interface {
	protocol.SmartCard
	// ATR is the answer to reset, nil when the reader did not report it.
	ATR() []byte
	// Protocol is the negotiated transmission protocol, "T=0" or "T=1".
	Protocol() string
}

// Open connects to the card in the named reader. A non-nil logger traces
// every APDU.
func Open(name string, logger *log.Logger) (Card, error) {
	sc, err := pcsc.NewSmartCard(name)
	if err != nil {
		return nil, err
	}
	sc.Logger = logger
	return sc, nil
}
