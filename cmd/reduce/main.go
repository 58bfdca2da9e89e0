// Command reduce copies downloaded NCEI day files into the data folder with
// only the seven mapped columns kept, and prints per-field coverage so test
// assertions can be updated after a new download.
//
// Usage:
//
//	go run ./cmd/reduce -in downloads -out data
package main

import (
	"bytes"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/couchcryptid/marine-obs-maps/internal/domain"
	"github.com/couchcryptid/marine-obs-maps/internal/table"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	inDir := flag.String("in", "", "directory containing downloaded <date>.csv files")
	outDir := flag.String("out", "", "data directory to write reduced files into")
	flag.Parse()

	if *inDir == "" || *outDir == "" {
		flag.Usage()
		return fmt.Errorf("missing required flags: -in, -out")
	}
	if filepath.Clean(*inDir) == filepath.Clean(*outDir) {
		return fmt.Errorf("-in and -out must differ")
	}

	entries, err := os.ReadDir(*inDir)
	if err != nil {
		return fmt.Errorf("list %s: %w", *inDir, err)
	}
	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		return err
	}

	var all []domain.Observation //nolint:prealloc // size depends on file contents
	for _, e := range entries {
		if !e.Type().IsRegular() || !strings.HasSuffix(e.Name(), ".csv") {
			continue
		}
		obs, err := reduceFile(filepath.Join(*inDir, e.Name()), filepath.Join(*outDir, e.Name()))
		if err != nil {
			return fmt.Errorf("reducing %s: %w", e.Name(), err)
		}
		all = append(all, obs...)
		log.Printf("%s: %d rows", e.Name(), len(obs))
	}

	log.Printf("total: %d rows", len(all))
	printStats(all)
	return nil
}

func reduceFile(src, dst string) ([]domain.Observation, error) {
	f, err := os.Open(src)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	obs, err := table.Load(f)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := table.Save(&buf, obs); err != nil {
		return nil, err
	}
	return obs, os.WriteFile(dst, buf.Bytes(), 0o600)
}

func printStats(obs []domain.Observation) {
	fmt.Println("\n=== Stats for updating test assertions ===")
	fmt.Printf("Rows: %d\n", len(obs))

	for _, f := range domain.Fields() {
		cells, err := domain.Aggregate(obs, f)
		if err != nil {
			fmt.Printf("%s: %v\n", f, err)
			continue
		}
		present := 0
		for _, c := range cells {
			present += c.Count
		}
		fmt.Printf("%-14s present=%d cells=%d", f, present, len(cells))
		if len(cells) > 0 {
			means := make([]float64, len(cells))
			for i, c := range cells {
				means[i] = c.Mean
			}
			fmt.Printf(" min=%.1f max=%.1f", slices.Min(means), slices.Max(means))
		}
		fmt.Println()
	}

	wind, err := domain.AggregateWind(obs, domain.Radians)
	if err != nil {
		fmt.Printf("%-14s %v\n", "WIND", err)
		return
	}
	fmt.Printf("%-14s cells=%d\n", "WIND", len(wind))
}
