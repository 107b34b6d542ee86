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

// Package config loads emvlog settings from the environment.
package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/go-piv/emv-go/v2/emv/reader"
)

const (
	EnvReader      = "EMVLOG_READER"
	EnvFullScan    = "EMVLOG_FULL_SCAN"
	EnvMaxEntries  = "EMVLOG_MAX_ENTRIES"
	EnvSkipUnknown = "EMVLOG_SKIP_UNKNOWN"
	EnvVerbose     = "EMVLOG_VERBOSE"
	EnvCaptureDir  = "EMVLOG_CAPTURE_DIR"

	MinMaxEntries = 1
	MaxMaxEntries = 255
)

// Config holds emvlog runtime configuration. Flags override the values
// loaded from the environment.
type Config struct {
	// Reader is the PC/SC reader name, empty selects the first reader.
	Reader      string
	FullScan    bool
	MaxEntries  int
	SkipUnknown bool
	Verbose     bool
	// CaptureDir, when set, receives one capture file per application read.
	CaptureDir string
}

// LoadFromEnv loads and validates configuration from environment variables.
// Unset variables take their defaults; malformed values are errors.
func LoadFromEnv() (Config, error) {
	var env envParser
	cfg := Config{
		Reader:      strings.TrimSpace(os.Getenv(EnvReader)),
		FullScan:    env.boolOrDefault(EnvFullScan, false),
		MaxEntries:  env.intOrDefault(EnvMaxEntries, reader.DefaultMaxLogEntries),
		SkipUnknown: env.boolOrDefault(EnvSkipUnknown, false),
		Verbose:     env.boolOrDefault(EnvVerbose, false),
		CaptureDir:  strings.TrimSpace(os.Getenv(EnvCaptureDir)),
	}
	if env.err != nil {
		return Config{}, env.err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks that the configuration is coherent.
func (c Config) Validate() error {
	if c.MaxEntries < MinMaxEntries || c.MaxEntries > MaxMaxEntries {
		return fmt.Errorf("invalid %s: must be in range %d..%d", EnvMaxEntries, MinMaxEntries, MaxMaxEntries)
	}
	if c.CaptureDir != "" {
		fi, err := os.Stat(c.CaptureDir)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvCaptureDir, err)
		}
		if !fi.IsDir() {
			return fmt.Errorf("invalid %s: %q is not a directory", EnvCaptureDir, c.CaptureDir)
		}
	}
	return nil
}

// ReaderConfig returns the card reader settings. logger traces APDUs and
// may be nil.
func (c Config) ReaderConfig(logger *log.Logger) reader.Config {
	rc := reader.DefaultConfig()
	if c.FullScan {
		rc.Range = reader.FullScan
	}
	rc.MaxLogEntries = c.MaxEntries
	rc.Logger = logger
	return rc
}

// envParser keeps the first malformed variable it meets.
type envParser struct {
	err error
}

func (p *envParser) intOrDefault(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		p.fail(fmt.Errorf("invalid %s: %q is not an integer", key, v))
		return fallback
	}
	return n
}

func (p *envParser) boolOrDefault(key string, fallback bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		p.fail(fmt.Errorf("invalid %s: %q is not a boolean", key, v))
		return fallback
	}
	return b
}

func (p *envParser) fail(err error) {
	if p.err == nil {
		p.err = err
	}
}
