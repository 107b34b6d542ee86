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

//go:build !windows && !(cgo && (darwin || linux || freebsd || openbsd))

package pcsc

type smartCardContext struct{}

func newSmartCardContext() (*smartCardContext, error) {
	return nil, ErrUnsupported
}

func (c *smartCardContext) Close() error {
	return ErrUnsupported
}

func (c *smartCardContext) ListReaders() ([]string, error) {
	return nil, ErrUnsupported
}

func (c *smartCardContext) Connect(reader string) (*smartCardHandle, error) {
	return nil, ErrUnsupported
}

type smartCardHandle struct{}

func (h *smartCardHandle) Protocol() string {
	return ""
}

func (h *smartCardHandle) ATR() ([]byte, error) {
	return nil, ErrUnsupported
}

func (h *smartCardHandle) Close() error {
	return ErrUnsupported
}

func (h *smartCardHandle) Begin() (*smartCardTransaction, error) {
	return nil, ErrUnsupported
}

type smartCardTransaction struct{}

func (t *smartCardTransaction) Close() error {
	return ErrUnsupported
}

func (t *smartCardTransaction) transmit(req []byte) ([]byte, error) {
	return nil, ErrUnsupported
}
