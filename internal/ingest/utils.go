package ingest

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/joseph-ayodele/pricelist-tracker/constants"
)

// AllowedExt checks if a file extension is an accepted page source.
func AllowedExt(ext string) bool {
	_, ok := constants.MapExtToFormat(ext)
	return ok
}

// IsHidden checks if a file or directory is hidden (starts with '.').
func IsHidden(path string) bool {
	base := filepath.Base(path)
	return strings.HasPrefix(base, ".") && base != "." && base != ".."
}

var reLastNumber = regexp.MustCompile(`(\d+)\D*$`)

// pageLess orders scanned page files so that "page2" comes before "page10".
func pageLess(a, b string) bool {
	da, db := filepath.Dir(a), filepath.Dir(b)
	if da != db {
		return da < db
	}
	na, oka := pageNumber(filepath.Base(a))
	nb, okb := pageNumber(filepath.Base(b))
	if oka && okb && na != nb {
		return na < nb
	}
	return a < b
}

func pageNumber(name string) (int, bool) {
	m := reLastNumber.FindStringSubmatch(strings.TrimSuffix(name, filepath.Ext(name)))
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	return n, err == nil
}
