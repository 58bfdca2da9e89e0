package render

import (
	"path/filepath"
	"strings"

	"github.com/couchcryptid/marine-obs-maps/internal/domain"
)

// WindFolder holds wind maps under the output root.
const WindFolder = "Wind"

var unsafeName = strings.NewReplacer("/", "-", `\`, "-", ":", "-")

// ScalarPath is <out>/<FIELD>/<Title>_<date>.png.
func ScalarPath(out string, field domain.Field, title, date string) string {
	return filepath.Join(out, field.String(), unsafeName.Replace(title+"_"+date)+".png")
}

// DiffPath is <out>/<FIELD>/<Title>_diff_<before>_<after>.png.
func DiffPath(out string, field domain.Field, title, before, after string) string {
	return filepath.Join(out, field.String(), unsafeName.Replace(title+"_diff_"+before+"_"+after)+".png")
}

// WindPath is <out>/Wind/<period>_<unit>.png.
func WindPath(out, period string, unit domain.AngleUnit) string {
	return filepath.Join(out, WindFolder, unsafeName.Replace(period+"_"+string(unit))+".png")
}
