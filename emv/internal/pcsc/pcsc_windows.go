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

package pcsc

import (
	"fmt"
	"syscall"
	"unsafe"
)

var (
	winscard                  = syscall.NewLazyDLL("Winscard.dll")
	procSCardEstablishContext = winscard.NewProc("SCardEstablishContext")
	procSCardListReadersW     = winscard.NewProc("SCardListReadersW")
	procSCardReleaseContext   = winscard.NewProc("SCardReleaseContext")
	procSCardConnectW         = winscard.NewProc("SCardConnectW")
	procSCardDisconnect       = winscard.NewProc("SCardDisconnect")
	procSCardBeginTransaction = winscard.NewProc("SCardBeginTransaction")
	procSCardEndTransaction   = winscard.NewProc("SCardEndTransaction")
	procSCardStatusW          = winscard.NewProc("SCardStatusW")
	procSCardTransmit         = winscard.NewProc("SCardTransmit")
	procSCardT0Pci            = winscard.NewProc("g_rgSCardT0Pci")
	procSCardT1Pci            = winscard.NewProc("g_rgSCardT1Pci")
)

const (
	scardScopeSystem      = 2
	scardShareShared      = 2
	scardLeaveCard        = 0
	scardProtocolT0       = 1
	scardProtocolT1       = 2
	maxBufferSizeExtended = (4 + 3 + (1 << 16) + 3 + 2)
	rcSuccess             = 0
	rcNoReadersAvailable  = 0x8010002E
)

func scCheck(rc uintptr) error {
	if rc == rcSuccess {
		return nil
	}
	return &scErr{int64(uint32(rc))}
}

func isRCNoReaders(rc uintptr) bool {
	return uint32(rc) == rcNoReadersAvailable
}

type smartCardContext struct {
	ctx syscall.Handle
}

func newSmartCardContext() (*smartCardContext, error) {
	var ctx syscall.Handle

	r0, _, _ := procSCardEstablishContext.Call(
		uintptr(scardScopeSystem),
		uintptr(0),
		uintptr(0),
		uintptr(unsafe.Pointer(&ctx)),
	)
	if err := scCheck(r0); err != nil {
		return nil, err
	}
	return &smartCardContext{ctx: ctx}, nil
}

func (c *smartCardContext) Close() error {
	r0, _, _ := procSCardReleaseContext.Call(uintptr(c.ctx))
	return scCheck(r0)
}

func (c *smartCardContext) ListReaders() ([]string, error) {
	var n uint32
	r0, _, _ := procSCardListReadersW.Call(
		uintptr(c.ctx),
		uintptr(unsafe.Pointer(nil)),
		uintptr(unsafe.Pointer(nil)),
		uintptr(unsafe.Pointer(&n)),
	)

	if isRCNoReaders(r0) {
		return nil, nil
	}

	if err := scCheck(r0); err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}

	d := make([]uint16, n)
	r0, _, _ = procSCardListReadersW.Call(
		uintptr(c.ctx),
		uintptr(unsafe.Pointer(nil)),
		uintptr(unsafe.Pointer(&d[0])),
		uintptr(unsafe.Pointer(&n)),
	)
	if err := scCheck(r0); err != nil {
		return nil, err
	}

	// The list is a sequence of NUL terminated names ended by an empty one.
	var readers []string
	for start := 0; start < len(d); {
		end := start
		for end < len(d) && d[end] != 0 {
			end++
		}
		if end == start {
			break
		}
		readers = append(readers, syscall.UTF16ToString(d[start:end]))
		start = end + 1
	}
	return readers, nil
}

// Connect negotiates T=0 or T=1 in shared mode.
func (c *smartCardContext) Connect(reader string) (*smartCardHandle, error) {
	var (
		handle         syscall.Handle
		activeProtocol uint32
	)
	readerPtr, err := syscall.UTF16PtrFromString(reader)
	if err != nil {
		return nil, fmt.Errorf("invalid reader string: %v", err)
	}
	r0, _, _ := procSCardConnectW.Call(
		uintptr(c.ctx),
		uintptr(unsafe.Pointer(readerPtr)),
		scardShareShared,
		scardProtocolT0|scardProtocolT1,
		uintptr(unsafe.Pointer(&handle)),
		uintptr(unsafe.Pointer(&activeProtocol)),
	)
	if err := scCheck(r0); err != nil {
		return nil, err
	}
	return &smartCardHandle{handle: handle, proto: activeProtocol}, nil
}

type smartCardHandle struct {
	handle syscall.Handle
	proto  uint32
}

func (h *smartCardHandle) Protocol() string {
	if h.proto == scardProtocolT0 {
		return protocolT0
	}
	return protocolT1
}

func (h *smartCardHandle) ATR() ([]byte, error) {
	var (
		atr            [maxATRSize]byte
		atrN           = uint32(len(atr))
		readerN        uint32
		state, activeP uint32
	)
	r0, _, _ := procSCardStatusW.Call(
		uintptr(h.handle),
		uintptr(0),
		uintptr(unsafe.Pointer(&readerN)),
		uintptr(unsafe.Pointer(&state)),
		uintptr(unsafe.Pointer(&activeP)),
		uintptr(unsafe.Pointer(&atr[0])),
		uintptr(unsafe.Pointer(&atrN)),
	)
	if err := scCheck(r0); err != nil {
		return nil, err
	}
	return append([]byte(nil), atr[:atrN]...), nil
}

func (h *smartCardHandle) Close() error {
	r0, _, _ := procSCardDisconnect.Call(uintptr(h.handle), scardLeaveCard)
	return scCheck(r0)
}

func (h *smartCardHandle) Begin() (*smartCardTransaction, error) {
	r0, _, _ := procSCardBeginTransaction.Call(uintptr(h.handle))
	if err := scCheck(r0); err != nil {
		return nil, err
	}
	pci := procSCardT1Pci.Addr()
	if h.proto == scardProtocolT0 {
		pci = procSCardT0Pci.Addr()
	}
	return &smartCardTransaction{handle: h.handle, pci: pci}, nil
}

type smartCardTransaction struct {
	handle syscall.Handle
	pci    uintptr
}

func (t *smartCardTransaction) Close() error {
	r0, _, _ := procSCardEndTransaction.Call(uintptr(t.handle), scardLeaveCard)
	return scCheck(r0)
}

func (t *smartCardTransaction) transmit(req []byte) ([]byte, error) {
	var resp [maxBufferSizeExtended]byte
	respN := uint32(len(resp))
	r0, _, _ := procSCardTransmit.Call(
		uintptr(t.handle),
		t.pci,
		uintptr(unsafe.Pointer(&req[0])),
		uintptr(len(req)),
		uintptr(0),
		uintptr(unsafe.Pointer(&resp[0])),
		uintptr(unsafe.Pointer(&respN)),
	)
	if err := scCheck(r0); err != nil {
		return nil, err
	}
	return append([]byte(nil), resp[:respN]...), nil
}
