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

// Package dump stores raw payment logs read from a card so they can be
// rendered again without the card. Captures are JSON, optionally zstd
// compressed; the PAN is only kept as a fingerprint.
package dump

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"
	"github.com/valyala/fastjson"
	"golang.org/x/crypto/blake2b"

	"github.com/go-piv/emv-go/v2/emv/reader"
)

const formatVersion = 1

var ErrInvalidCapture = errors.New("invalid capture")

var zstdMagic = []byte{0x28, 0xB5, 0x2F, 0xFD}

var parsers fastjson.ParserPool

// Capture is one application log as read from a card.
type Capture struct {
	ID          uuid.UUID
	CapturedAt  time.Time
	Reader      string
	Label       string
	AID         []byte
	Fingerprint string
	Format      []byte
	Entries     [][]byte
}

// New captures pl. pan may be empty when the card did not reveal it.
func New(readerName string, pl reader.Paylog, pan string) Capture {
	c := Capture{
		ID:         uuid.New(),
		CapturedAt: time.Now().UTC(),
		Reader:     readerName,
		Label:      pl.Application.Label,
		AID:        pl.Application.AID,
		Format:     pl.Format,
		Entries:    pl.Entries,
	}
	if pan != "" {
		c.Fingerprint = Fingerprint(pan)
	}
	return c
}

// Fingerprint identifies a card across captures without storing its PAN:
// the first 16 bytes of BLAKE2b-256 over the PAN digits.
func Fingerprint(pan string) string {
	sum := blake2b.Sum256([]byte(pan))
	return hex.EncodeToString(sum[:16])
}

func (c Capture) Marshal() []byte {
	var a fastjson.Arena
	o := a.NewObject()
	o.Set("version", a.NewNumberInt(formatVersion))
	o.Set("id", a.NewString(c.ID.String()))
	o.Set("captured_at", a.NewString(c.CapturedAt.UTC().Format(time.RFC3339)))
	o.Set("reader", a.NewString(c.Reader))
	o.Set("label", a.NewString(c.Label))
	o.Set("aid", a.NewString(strings.ToUpper(hex.EncodeToString(c.AID))))
	if c.Fingerprint != "" {
		o.Set("fingerprint", a.NewString(c.Fingerprint))
	}
	o.Set("log_format", a.NewString(strings.ToUpper(hex.EncodeToString(c.Format))))
	entries := a.NewArray()
	for i, e := range c.Entries {
		entries.SetArrayItem(i, a.NewString(strings.ToUpper(hex.EncodeToString(e))))
	}
	o.Set("entries", entries)
	return o.MarshalTo(nil)
}

func Unmarshal(data []byte) (Capture, error) {
	p := parsers.Get()
	defer parsers.Put(p)
	v, err := p.ParseBytes(data)
	if err != nil {
		return Capture{}, fmt.Errorf("%w: %v", ErrInvalidCapture, err)
	}
	if version := v.GetInt("version"); version != formatVersion {
		return Capture{}, fmt.Errorf("%w: version %d, want %d", ErrInvalidCapture, version, formatVersion)
	}

	var c Capture
	if c.ID, err = uuid.ParseBytes(v.GetStringBytes("id")); err != nil {
		return Capture{}, fmt.Errorf("%w: id: %v", ErrInvalidCapture, err)
	}
	if c.CapturedAt, err = time.Parse(time.RFC3339, string(v.GetStringBytes("captured_at"))); err != nil {
		return Capture{}, fmt.Errorf("%w: captured_at: %v", ErrInvalidCapture, err)
	}
	c.Reader = string(v.GetStringBytes("reader"))
	c.Label = string(v.GetStringBytes("label"))
	c.Fingerprint = string(v.GetStringBytes("fingerprint"))
	if c.AID, err = hex.DecodeString(string(v.GetStringBytes("aid"))); err != nil {
		return Capture{}, fmt.Errorf("%w: aid: %v", ErrInvalidCapture, err)
	}
	if c.Format, err = hex.DecodeString(string(v.GetStringBytes("log_format"))); err != nil {
		return Capture{}, fmt.Errorf("%w: log_format: %v", ErrInvalidCapture, err)
	}
	for i, item := range v.GetArray("entries") {
		s, err := item.StringBytes()
		if err != nil {
			return Capture{}, fmt.Errorf("%w: entry %d: %v", ErrInvalidCapture, i, err)
		}
		entry, err := hex.DecodeString(string(s))
		if err != nil {
			return Capture{}, fmt.Errorf("%w: entry %d: %v", ErrInvalidCapture, i, err)
		}
		c.Entries = append(c.Entries, entry)
	}
	return c, nil
}

// Write writes c to w, zstd compressed if compress is set.
func Write(w io.Writer, c Capture, compress bool) error {
	data := c.Marshal()
	if !compress {
		_, err := w.Write(data)
		return err
	}
	enc, err := zstd.NewWriter(w)
	if err != nil {
		return err
	}
	if _, err := enc.Write(data); err != nil {
		enc.Close()
		return err
	}
	return enc.Close()
}

// Read reads a capture, decompressing it if it starts with the zstd frame
// magic.
func Read(r io.Reader) (Capture, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Capture{}, err
	}
	if bytes.HasPrefix(data, zstdMagic) {
		dec, err := zstd.NewReader(nil)
		if err != nil {
			return Capture{}, err
		}
		defer dec.Close()
		if data, err = dec.DecodeAll(data, nil); err != nil {
			return Capture{}, fmt.Errorf("%w: %v", ErrInvalidCapture, err)
		}
	}
	return Unmarshal(data)
}

// WriteFile writes c to path, compressing when path ends in ".zst".
func WriteFile(path string, c Capture) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Write(f, c, strings.HasSuffix(path, ".zst")); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func ReadFile(path string) (Capture, error) {
	f, err := os.Open(path)
	if err != nil {
		return Capture{}, err
	}
	defer f.Close()
	return Read(f)
}
