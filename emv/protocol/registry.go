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

package protocol

import (
	"bytes"
	"fmt"
	"log"
	"sort"
)

// Scheme is a payment scheme whose card application the reader knows.
type Scheme int

func (s Scheme) String() string {
	switch s {
	case Visa:
		return "Visa"
	case Mastercard:
		return "Mastercard"
	case CB:
		return "CB"
	default:
		return fmt.Sprintf("UnknownScheme(%d)", s)
	}
}

const (
	UnknownScheme Scheme = iota
	Visa
	Mastercard
	CB
)

// Application describes a payment application and where it keeps its
// transaction log when the FCI does not say.
type Application struct {
	Scheme Scheme
	Label  string
	AID    []byte
	// LogSFI and LogRecords are used when the application FCI carries no
	// log entry (9F4D). Zero means unknown.
	LogSFI     byte
	LogRecords byte
}

func (a Application) String() string {
	return fmt.Sprintf("%s (%X)", a.Label, a.AID)
}

var applications = make(map[Scheme]Application)

func RegisterApplication(app Application) {
	if _, ok := applications[app.Scheme]; ok {
		log.Fatalf("RegisterApplication(%v) duplicate Scheme registration", app.Scheme)
	}
	applications[app.Scheme] = app
}

func GetApplication(s Scheme) (Application, error) {
	app, ok := applications[s]
	if !ok {
		return Application{}, fmt.Errorf("%w: %v", ErrUnknownScheme, s)
	}
	return app, nil
}

// Applications returns every registered application ordered by scheme.
func Applications() []Application {
	apps := make([]Application, 0, len(applications))
	for _, app := range applications {
		apps = append(apps, app)
	}
	sort.Slice(apps, func(i, j int) bool { return apps[i].Scheme < apps[j].Scheme })
	return apps
}

// MatchAID finds the registered application whose AID prefixes aid. Cards
// may append a proprietary extension to the registered AID.
func MatchAID(aid []byte) (Application, bool) {
	for _, app := range Applications() {
		if len(app.AID) > 0 && bytes.HasPrefix(aid, app.AID) {
			return app, true
		}
	}
	return Application{}, false
}
