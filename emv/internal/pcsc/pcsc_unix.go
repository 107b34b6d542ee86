// Copyright 2020 Google LLC
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

//go:build cgo && (darwin || linux || freebsd || openbsd)

package pcsc

// https://ludovicrousseau.blogspot.com/2010/04/pcsc-sample-in-c.html

// #cgo darwin LDFLAGS: -framework PCSC
// #cgo linux pkg-config: libpcsclite
// #cgo freebsd CFLAGS: -I/usr/local/include/
// #cgo freebsd CFLAGS: -I/usr/local/include/PCSC
// #cgo freebsd LDFLAGS: -L/usr/local/lib/
// #cgo freebsd LDFLAGS: -lpcsclite
// #cgo openbsd CFLAGS: -I/usr/local/include/
// #cgo openbsd CFLAGS: -I/usr/local/include/PCSC
// #cgo openbsd LDFLAGS: -L/usr/local/lib/
// #cgo openbsd LDFLAGS: -lpcsclite
// #include <stdlib.h>
// #include <PCSC/winscard.h>
// #include <PCSC/wintypes.h>
import "C"

import (
	"bytes"
	"unsafe"
)

const rcSuccess = C.SCARD_S_SUCCESS

func scCheck(rc C.LONG) error {
	if rc == rcSuccess {
		return nil
	}
	return &scErr{int64(uint32(rc))}
}

func isRCNoReaders(rc C.LONG) bool {
	return rc == C.SCARD_E_NO_READERS_AVAILABLE
}

type smartCardContext struct {
	ctx C.SCARDCONTEXT
}

func newSmartCardContext() (*smartCardContext, error) {
	var ctx C.SCARDCONTEXT
	rc := C.SCardEstablishContext(C.SCARD_SCOPE_SYSTEM, nil, nil, &ctx)
	if err := scCheck(rc); err != nil {
		return nil, err
	}
	return &smartCardContext{ctx: ctx}, nil
}

func (c *smartCardContext) Close() error {
	return scCheck(C.SCardReleaseContext(c.ctx))
}

func (c *smartCardContext) ListReaders() ([]string, error) {
	var n C.DWORD
	rc := C.SCardListReaders(c.ctx, nil, nil, &n)
	// On Linux, the PC/SC daemon will return an error when no smart cards are
	// available. Detect this and return nil with no smart cards instead.
	if isRCNoReaders(rc) {
		return nil, nil
	}

	if err := scCheck(rc); err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}

	d := make([]byte, n)
	rc = C.SCardListReaders(c.ctx, nil, (*C.char)(unsafe.Pointer(&d[0])), &n)
	if err := scCheck(rc); err != nil {
		return nil, err
	}

	var readers []string
	for _, d := range bytes.Split(d, []byte{0}) {
		if len(d) > 0 {
			readers = append(readers, string(d))
		}
	}
	return readers, nil
}

type smartCardHandle struct {
	h     C.SCARDHANDLE
	proto C.DWORD
}

// Connect negotiates T=0 or T=1. Contact EMV cards mostly run T=0, the
// contactless interface always reports T=1. The shared mode leaves the card
// available to other PC/SC clients between transactions.
func (c *smartCardContext) Connect(reader string) (*smartCardHandle, error) {
	var (
		handle         C.SCARDHANDLE
		activeProtocol C.DWORD
	)
	name := C.CString(reader)
	defer C.free(unsafe.Pointer(name))
	rc := C.SCardConnect(c.ctx, name,
		C.SCARD_SHARE_SHARED, C.SCARD_PROTOCOL_T0|C.SCARD_PROTOCOL_T1,
		&handle, &activeProtocol)
	if err := scCheck(rc); err != nil {
		return nil, err
	}
	return &smartCardHandle{h: handle, proto: activeProtocol}, nil
}

func (h *smartCardHandle) Protocol() string {
	if h.proto == C.SCARD_PROTOCOL_T0 {
		return protocolT0
	}
	return protocolT1
}

// ATR returns the answer to reset of the connected card.
func (h *smartCardHandle) ATR() ([]byte, error) {
	var (
		atr            [maxATRSize]byte
		atrN           = C.DWORD(len(atr))
		readerN        C.DWORD
		state, activeP C.DWORD
	)
	rc := C.SCardStatus(h.h, nil, &readerN, &state, &activeP, (*C.BYTE)(&atr[0]), &atrN)
	if err := scCheck(rc); err != nil {
		return nil, err
	}
	return append([]byte(nil), atr[:atrN]...), nil
}

func (h *smartCardHandle) Close() error {
	return scCheck(C.SCardDisconnect(h.h, C.SCARD_LEAVE_CARD))
}

type smartCardTransaction struct {
	h  C.SCARDHANDLE
	t0 bool
}

func (h *smartCardHandle) Begin() (*smartCardTransaction, error) {
	if err := scCheck(C.SCardBeginTransaction(h.h)); err != nil {
		return nil, err
	}
	return &smartCardTransaction{h: h.h, t0: h.proto == C.SCARD_PROTOCOL_T0}, nil
}

func (t *smartCardTransaction) Close() error {
	return scCheck(C.SCardEndTransaction(t.h, C.SCARD_LEAVE_CARD))
}

func (t *smartCardTransaction) transmit(req []byte) ([]byte, error) {
	var resp [C.MAX_BUFFER_SIZE_EXTENDED]byte
	respN := C.DWORD(len(resp))
	var rc C.LONG
	if t.t0 {
		rc = C.SCardTransmit(t.h, C.SCARD_PCI_T0,
			(*C.BYTE)(&req[0]), C.DWORD(len(req)), nil,
			(*C.BYTE)(&resp[0]), &respN)
	} else {
		rc = C.SCardTransmit(t.h, C.SCARD_PCI_T1,
			(*C.BYTE)(&req[0]), C.DWORD(len(req)), nil,
			(*C.BYTE)(&resp[0]), &respN)
	}
	if err := scCheck(rc); err != nil {
		return nil, err
	}
	return append([]byte(nil), resp[:respN]...), nil
}
