package source

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/takeshy/zimcatalog/internal/taxonomy"
)

// rowPattern matches one English row of the content table: category, size,
// document name and download link.
var rowPattern = regexp.MustCompile("<td>(.+?)</td>\n<td>en</td>\n<td>(.+?)</td>\n<td>.+?</td>\n<td>(.*?)</td>\n<td><a rel=\"nofollow\".+?href=\"(.+?)\">. Download</a>")

const categorySuffix = " (English)"

const (
	kib = 1024
	mib = 1024 * kib
	gib = 1024 * mib
)

// ParsePage extracts catalog records from the content page markup. Rows whose
// size cannot be parsed are skipped and reported.
func ParsePage(page string) ([]taxonomy.Record, []*RowError) {
	var (
		records []taxonomy.Record
		skipped []*RowError
	)

	for i, m := range rowPattern.FindAllStringSubmatch(page, -1) {
		category := html.UnescapeString(strings.TrimSuffix(m[1], categorySuffix))
		name := html.UnescapeString(m[3])

		size, err := ParseSize(m[2])
		if err != nil {
			skipped = append(skipped, &RowError{Row: i, Category: category, Name: name, Err: err})
			continue
		}

		records = append(records, taxonomy.Record{
			Category: category,
			Size:     size,
			Name:     name,
			URL:      html.UnescapeString(m[4]),
		})
	}
	return records, skipped
}

// ParseSize converts a "<decimal> <unit>" cell into bytes. KB, MB and GB are
// binary multiples and matched case-insensitively; a bare number or any other
// unit is taken as bytes. The result is truncated toward zero.
func ParseSize(s string) (uint64, error) {
	magnitude, unit, _ := strings.Cut(strings.TrimSpace(s), " ")

	value, err := strconv.ParseFloat(magnitude, 64)
	if err != nil {
		return 0, fmt.Errorf("%w %q: %v", ErrInvalidSize, s, err)
	}
	if value < 0 || math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, fmt.Errorf("%w %q: out of range", ErrInvalidSize, s)
	}

	switch strings.ToLower(strings.TrimSpace(unit)) {
	case "kb":
		value *= kib
	case "mb":
		value *= mib
	case "gb":
		value *= gib
	}

	if value >= math.MaxUint64 {
		return 0, fmt.Errorf("%w %q: out of range", ErrInvalidSize, s)
	}
	return uint64(value), nil
}
