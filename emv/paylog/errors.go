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

package paylog

import (
	"errors"
	"fmt"
)

var (
	ErrOutOfBounds         = errors.New("field extends past end of entry")
	ErrUnknownTag          = errors.New("unknown log format tag")
	ErrTruncatedDescriptor = errors.New("log format descriptor truncated")
	ErrInvalidLength       = errors.New("invalid field length")
)

// DecodingError describes a failure to decode one field of a log entry, or
// a descriptor that cannot be walked at all (Entry is -1).
type DecodingError struct {
	Entry  int     // Entry index, -1 for descriptor errors.
	Tag    TagCode // Zero when the tag itself could not be read.
	Offset int     // Entry offset for field errors, descriptor offset otherwise.
	Need   int
	Have   int
	Err    error
}

func (e *DecodingError) Error() string {
	switch {
	case e.Entry < 0:
		return fmt.Sprintf("paylog: descriptor offset %d: %v", e.Offset, e.Err)
	case errors.Is(e.Err, ErrOutOfBounds):
		return fmt.Sprintf("paylog: entry %d: tag %v: %v, need %d bytes at offset %d, have %d",
			e.Entry, e.Tag, e.Err, e.Need, e.Offset, e.Have)
	default:
		return fmt.Sprintf("paylog: entry %d: tag %v at offset %d: %v", e.Entry, e.Tag, e.Offset, e.Err)
	}
}

func (e *DecodingError) Unwrap() error {
	return e.Err
}
