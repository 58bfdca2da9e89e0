// Command validate performs integrity checks on a data folder before maps
// are drawn from it: every file reduces, coordinates stay on the globe,
// reduced files reload unchanged, and file names carry a usable period label.
//
// Usage:
//
//	go run ./cmd/validate -data-dir data
package main

import (
	"bytes"
	"flag"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/couchcryptid/marine-obs-maps/internal/domain"
	"github.com/couchcryptid/marine-obs-maps/internal/table"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

// dataFile is one reduced file of the folder.
type dataFile struct {
	name string
	obs  []domain.Observation
}

func main() {
	dataDir := flag.String("data-dir", "data", "directory scanned by period selection")
	flag.Parse()

	if code := run(*dataDir); code != 0 {
		os.Exit(code)
	}
}

func run(dataDir string) int {
	fmt.Println("=== Marine Data Integrity Validation ===")
	fmt.Println()

	files, loadPhase, err := loadAll(dataDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
		return 1
	}

	phases := []*phase{
		loadPhase,
		validateCoordinates(files),
		validateIdempotency(files),
		validatePeriods(files),
	}

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	rows := 0
	for _, f := range files {
		rows += len(f.obs)
	}
	fmt.Println()
	fmt.Printf("Files: %d, rows: %d\n", len(files), rows)

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

// ── Phase 1: Reduction ──
// Every regular file must load with the seven mapped columns.

func loadAll(dir string) ([]dataFile, *phase, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("list %s: %w", dir, err)
	}

	p := &phase{name: "Phase 1: Reduction (all files load)"}
	var files []dataFile
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		obs, err := loadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			p.errorf("%s: %v", e.Name(), err)
			continue
		}
		files = append(files, dataFile{name: e.Name(), obs: obs})
	}
	if len(files) == 0 && p.passed() {
		p.errorf("no files in %s", dir)
	}
	return files, p, nil
}

func loadFile(path string) ([]domain.Observation, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return table.Load(f)
}

// ── Phase 2: Coordinates ──

func validateCoordinates(files []dataFile) *phase {
	p := &phase{name: "Phase 2: Coordinates (on the globe)"}
	for _, f := range files {
		for i, o := range f.obs {
			if o.Lat < -90 || o.Lat > 90 {
				p.errorf("%s row %d: latitude %d out of range", f.name, i+1, o.Lat)
			}
			if o.Lon < -180 || o.Lon > 180 {
				p.errorf("%s row %d: longitude %d out of range", f.name, i+1, o.Lon)
			}
		}
	}
	return p
}

// ── Phase 3: Idempotency ──
// Saving a reduced file and loading it again must not change any value.

func validateIdempotency(files []dataFile) *phase {
	p := &phase{name: "Phase 3: Idempotency (save then reload)"}
	for _, f := range files {
		var buf bytes.Buffer
		if err := table.Save(&buf, f.obs); err != nil {
			p.errorf("%s: save: %v", f.name, err)
			continue
		}
		again, err := table.Load(&buf)
		if err != nil {
			p.errorf("%s: reload: %v", f.name, err)
			continue
		}
		if len(again) != len(f.obs) {
			p.errorf("%s: %d rows reloaded, want %d", f.name, len(again), len(f.obs))
			continue
		}
		for i := range again {
			if !sameObservation(f.obs[i], again[i]) {
				p.errorf("%s row %d: %+v reloaded as %+v", f.name, i+1, f.obs[i], again[i])
			}
		}
	}
	return p
}

func sameObservation(a, b domain.Observation) bool {
	return a.Lat == b.Lat && a.Lon == b.Lon &&
		floatEq(a.AirTemp, b.AirTemp) &&
		floatEq(a.WindDir, b.WindDir) &&
		floatEq(a.WindSpeed, b.WindSpeed) &&
		floatEq(a.SeaSurfTemp, b.SeaSurfTemp) &&
		floatEq(a.SeaLvlPres, b.SeaLvlPres)
}

func floatEq(a, b float64) bool {
	if math.IsNaN(a) || math.IsNaN(b) {
		return math.IsNaN(a) && math.IsNaN(b)
	}
	return a == b
}

// ── Phase 4: Periods ──
// File names must start with a YYYY-MM label so period selection finds them.

func validatePeriods(files []dataFile) *phase {
	p := &phase{name: "Phase 4: Periods (file name labels)"}
	counts := map[string]int{}
	for _, f := range files {
		if len(f.name) < domain.PeriodLen {
			p.errorf("%s: name shorter than a period label", f.name)
			continue
		}
		label := f.name[:domain.PeriodLen]
		if _, err := time.Parse("2006-01", label); err != nil {
			p.errorf("%s: %q is not a YYYY-MM label", f.name, label)
			continue
		}
		counts[label]++
	}

	labels := make([]string, 0, len(counts))
	for l := range counts {
		labels = append(labels, l)
	}
	sort.Strings(labels)
	for _, l := range labels {
		fmt.Printf("  period %s: %d files\n", l, counts[l])
	}
	return p
}
