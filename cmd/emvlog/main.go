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

// Command emvlog prints the transaction log stored on an EMV payment card.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/go-piv/emv-go/v2/emv"
	"github.com/go-piv/emv-go/v2/emv/dump"
	"github.com/go-piv/emv-go/v2/emv/paylog"
	"github.com/go-piv/emv-go/v2/emv/reader"
	"github.com/go-piv/emv-go/v2/internal/config"
)

func main() {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		log.Fatalf("Invalid environment: %v", err)
	}

	// Command-line flags override the environment.
	list := flag.Bool("list", false, "List PC/SC readers and exit")
	flag.StringVar(&cfg.Reader, "reader", cfg.Reader, "PC/SC reader name (default: first reader)")
	flag.BoolVar(&cfg.FullScan, "full", cfg.FullScan, "Scan every record of every SFI for card data")
	flag.IntVar(&cfg.MaxEntries, "max", cfg.MaxEntries, "Maximum log records read per application")
	capture := flag.String("capture", "", "Save the raw log to `FILE` (.zst suffix compresses)")
	replay := flag.String("replay", "", "Render a capture `FILE` instead of reading a card")
	flag.BoolVar(&cfg.SkipUnknown, "skip-unknown", cfg.SkipUnknown, "Print unknown log fields as hex instead of failing the entry")
	flag.BoolVar(&cfg.Verbose, "v", cfg.Verbose, "Trace card commands and responses")
	flag.Parse()

	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	renderer := paylog.Renderer{SkipUnknown: cfg.SkipUnknown}

	switch {
	case *list:
		err = listReaders()
	case *replay != "":
		err = replayCapture(*replay, renderer)
	default:
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		err = readCard(ctx, cfg, *capture, renderer)
		stop()
	}
	if err != nil {
		log.Fatal(err)
	}
}

func listReaders() error {
	readers, err := emv.Cards()
	if err != nil {
		return fmt.Errorf("listing readers: %w", err)
	}
	for _, r := range readers {
		kind := "contact"
		if r.Contactless {
			kind = "contactless"
		}
		fmt.Printf("%s (%s)\n", r.Name, kind)
	}
	return nil
}

func readCard(ctx context.Context, cfg config.Config, capture string, renderer paylog.Renderer) error {
	name := cfg.Reader
	if name == "" {
		readers, err := emv.Cards()
		if err != nil {
			return fmt.Errorf("listing readers: %w", err)
		}
		if len(readers) == 0 {
			return errors.New("no PC/SC reader connected")
		}
		name = readers[0].Name
	}

	var logger *log.Logger
	if cfg.Verbose {
		logger = log.New(os.Stderr, "apdu: ", log.Lmicroseconds)
	}
	card, err := emv.Open(name, logger)
	if err != nil {
		return fmt.Errorf("connecting to %q: %w", name, err)
	}
	defer card.Close()
	log.Printf("Connected to %s, %s, ATR % X", name, card.Protocol(), card.ATR())

	r, err := reader.New(card, cfg.ReaderConfig(logger))
	if err != nil {
		return err
	}
	apps, err := r.Discover()
	if err != nil {
		return err
	}

	for i, app := range apps {
		log.Printf("Reading %v", app)
		info, err := r.ReadCardInfo(ctx, app)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Printf("Reading card data: %v", err)
		} else if info.PAN != "" {
			fmt.Printf("Card %s, expires %s\n", info.MaskedPAN(), info.Expiry)
			if info.ATC != nil {
				fmt.Printf("Transaction counter %X, last online %X\n", info.ATC, info.LastOnlineATC)
			}
		}

		pl, err := r.ReadLog(app)
		if errors.Is(err, reader.ErrNoLog) {
			log.Printf("No transaction log: %v", err)
			continue
		}
		if err != nil {
			return err
		}

		printLog(pl.Application.Label, pl.Application.AID, pl.Format, pl.Entries, renderer)

		c := dump.New(name, pl, info.PAN)
		if path := capturePath(capture, cfg.CaptureDir, i, c); path != "" {
			if err := dump.WriteFile(path, c); err != nil {
				return fmt.Errorf("saving capture: %w", err)
			}
			log.Printf("Saved capture %s to %s", c.ID, path)
		}
	}
	return nil
}

func replayCapture(path string, renderer paylog.Renderer) error {
	c, err := dump.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading capture: %w", err)
	}
	log.Printf("Capture %s taken %s on %q", c.ID, c.CapturedAt.Format("2006-01-02 15:04:05"), c.Reader)
	printLog(c.Label, c.AID, c.Format, c.Entries, renderer)
	return nil
}

func printLog(label string, aid, format []byte, entries [][]byte, renderer paylog.Renderer) {
	fmt.Printf("%s (%X)\n", label, aid)
	lines, err := renderer.Render(format, entries)
	if err != nil {
		log.Printf("Log format % X: %v", format, err)
		return
	}
	if len(lines) == 0 {
		fmt.Println("No transactions")
		return
	}
	if err := paylog.Write(os.Stdout, lines); err != nil {
		log.Printf("Writing log: %v", err)
	}
}

// capturePath names the capture of the i-th application. An explicit file
// gets an index inserted before its extension for every application after
// the first.
func capturePath(file, dir string, i int, c dump.Capture) string {
	switch {
	case file != "" && i == 0:
		return file
	case file != "":
		ext := filepath.Ext(file)
		return fmt.Sprintf("%s.%d%s", file[:len(file)-len(ext)], i, ext)
	case dir != "":
		return filepath.Join(dir, c.ID.String()+".json.zst")
	default:
		return ""
	}
}
