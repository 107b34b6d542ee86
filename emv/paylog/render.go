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
	"fmt"
	"io"
	"strings"
)

// Field is one decoded value of a log entry.
type Field struct {
	Tag   TagCode
	Label string
	Value string
	Raw   []byte
}

func (f Field) String() string {
	return f.Label + ": " + f.Value
}

// Line is the rendering of a single log entry. When Err is set Fields holds
// only the fields decoded before the failure.
type Line struct {
	Index    int
	Fields   []Field
	Consumed int // Entry bytes consumed by the descriptor.
	Err      error
}

func (l Line) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d: ", l.Index)
	if l.Err != nil {
		fmt.Fprintf(&sb, "error: %v", l.Err)
		return sb.String()
	}
	for _, f := range l.Fields {
		sb.WriteString(f.String())
		sb.WriteString("; ")
	}
	return sb.String()
}

// Renderer decodes log entries against a log format. The zero value rejects
// entries whose format contains unregistered tags.
type Renderer struct {
	// SkipUnknown renders unregistered tags as raw hex labelled with the tag
	// code instead of failing the entry.
	SkipUnknown bool
}

// Render decodes entries with the default Renderer.
func Render(descriptor []byte, entries [][]byte) ([]Line, error) {
	return Renderer{}.Render(descriptor, entries)
}

// Render parses descriptor and decodes every entry up to the first empty
// one. Per entry failures are reported on the Line, the returned error is
// only set when the descriptor itself cannot be parsed.
func (r Renderer) Render(descriptor []byte, entries [][]byte) ([]Line, error) {
	d, err := ParseDescriptor(descriptor)
	if err != nil {
		return nil, err
	}
	return r.RenderDescriptor(d, entries), nil
}

// RenderDescriptor decodes entries against a parsed descriptor, stopping at
// the first empty entry.
func (r Renderer) RenderDescriptor(d Descriptor, entries [][]byte) []Line {
	var lines []Line
	for i, entry := range entries {
		if len(entry) == 0 {
			break
		}
		lines = append(lines, r.RenderEntry(d, i, entry))
	}
	return lines
}

// RenderEntry decodes the entry at index, recording the first failing field
// in Line.Err.
func (r Renderer) RenderEntry(d Descriptor, index int, entry []byte) Line {
	line := Line{Index: index}
	e := 0
	for _, spec := range d {
		if spec.Len > len(entry)-e {
			line.Err = &DecodingError{Entry: index, Tag: spec.Tag, Offset: e, Need: spec.Len, Have: len(entry) - e, Err: ErrOutOfBounds}
			return line
		}
		raw := entry[e : e+spec.Len]

		f := Field{Tag: spec.Tag, Label: spec.Info.Label, Raw: raw}
		switch {
		case !spec.Known && r.SkipUnknown:
			f.Label = "Unknown " + spec.Tag.String()
			f.Value = fmt.Sprintf("%X", raw)
		default:
			v, err := decodeValue(spec.Info.Kind, raw)
			if err != nil {
				line.Err = &DecodingError{Entry: index, Tag: spec.Tag, Offset: e, Need: spec.Len, Have: len(entry) - e, Err: err}
				return line
			}
			f.Value = v
		}

		line.Fields = append(line.Fields, f)
		e += spec.Len
	}
	line.Consumed = e
	return line
}

// Write prints one line per entry to w.
func Write(w io.Writer, lines []Line) error {
	for _, l := range lines {
		if _, err := fmt.Fprintln(w, l.String()); err != nil {
			return err
		}
	}
	return nil
}
