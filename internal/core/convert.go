package core

// convert.go holds the cell-level parsing shared by the tabular normalizer
// and the import validators. Shop spreadsheets are hand-maintained, so the
// parsers are deliberately permissive: certification flags accept several
// truthy spellings, absent numerics normalize to zero, and cells may carry
// Excel formula prefixes or stray quoting.

import (
	"bytes"
	"encoding/csv"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// truthy is the closed set of spellings accepted as a certified flag,
// matched case-insensitively. Anything else normalizes to the empty
// (not certified) representation.
var truthy = map[string]bool{
	"Y": true, "YES": true, "1": true, "TRUE": true, "X": true,
}

// dateLayouts are the accepted date formats, ISO first.
var dateLayouts = []string{
	"2006-01-02", "2006/01/02", "1/2/2006", "01/02/2006", "1-2-2006",
}

// CleanCell strips common spreadsheet artifacts from a cell value:
// surrounding whitespace, Excel formula prefixes (="value"), and stray
// quoting left by CSV round-trips.
func CleanCell(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "=\"") && strings.HasSuffix(s, "\"") {
		s = s[2 : len(s)-1]
	} else if strings.HasPrefix(s, "=") {
		s = s[1:]
	}
	return strings.Trim(s, `"'`)
}

// ParseFlag normalizes a certification/flag cell. Truthy spellings return
// "Y"; everything else, including empty, returns "".
func ParseFlag(s string) string {
	if truthy[strings.ToUpper(CleanCell(s))] {
		return "Y"
	}
	return ""
}

// FlagSet reports whether a normalized or raw flag cell is truthy.
func FlagSet(s string) bool { return ParseFlag(s) == "Y" }

// ParseIntCell parses a non-negative-ish integer cell. Empty cells are 0:
// the shop's sheets routinely omit zeros. Spreadsheet exports often render
// integers as "123.0", so a float that is a whole number is accepted.
func ParseIntCell(s string) (int, bool) {
	s = CleanCell(s)
	if s == "" {
		return 0, true
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != float64(int64(f)) {
		return 0, false
	}
	return int(f), true
}

// ParseNumericCell parses a decimal cell, tolerating thousands separators
// and a leading currency symbol. Empty cells are 0.
func ParseNumericCell(s string) (float64, bool) {
	s = CleanCell(s)
	if s == "" {
		return 0, true
	}
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// ParseDateCell parses a date cell into a time.Time (date precision).
func ParseDateCell(s string) (time.Time, bool) {
	s = CleanCell(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ParseClockCell normalizes a time-of-day cell to HH:MM. Values carrying
// seconds ("13:05:30", "9:30:15") drop the seconds; empty input stays empty.
func ParseClockCell(s string) (string, bool) {
	s = CleanCell(s)
	if s == "" {
		return "", true
	}
	if parts := strings.SplitN(s, ":", 3); len(parts) >= 2 {
		s = parts[0] + ":" + parts[1]
	}
	t, err := time.Parse("15:04", s)
	if err != nil {
		return "", false
	}
	// Zero-pad so HH:MM strings order lexicographically.
	return t.Format("15:04"), true
}

// SplitWorkType splits a "Category - Subtype" composite label on the first
// " - " separator. The coarse category is returned alongside the full label
// preserved verbatim.
func SplitWorkType(label string) (category, full string) {
	full = CleanCell(label)
	if full == "" {
		return "", ""
	}
	if i := strings.Index(full, " - "); i >= 0 {
		return strings.TrimSpace(full[:i]), full
	}
	return full, full
}

// MakeHeaderIndex builds a case-insensitive column lookup from a header row.
func MakeHeaderIndex(header []string) HeaderIndex {
	idx := make(HeaderIndex, len(header))
	for i, h := range header {
		idx[strings.ToLower(CleanCell(h))] = i
	}
	return idx
}

// Cell returns the cleaned value of a named column, or "" if the column is
// absent from the row.
func Cell(row []string, idx HeaderIndex, name string) string {
	pos, ok := idx[strings.ToLower(name)]
	if !ok || pos >= len(row) {
		return ""
	}
	return CleanCell(row[pos])
}

// ParseCSV parses raw CSV bytes into records, tolerating ragged rows and
// lazy quoting.
func ParseCSV(data []byte) ([][]string, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	return r.ReadAll()
}

// SanitizeUTF8 replaces invalid byte sequences with the replacement rune so
// a bad export cannot poison downstream parsing.
func SanitizeUTF8(data []byte) []byte {
	if utf8.Valid(data) {
		return data
	}
	var buf bytes.Buffer
	buf.Grow(len(data))
	for len(data) > 0 {
		r, size := utf8.DecodeRune(data)
		if r == utf8.RuneError && size == 1 {
			buf.WriteRune('�')
			data = data[1:]
		} else {
			buf.WriteRune(r)
			data = data[size:]
		}
	}
	return buf.Bytes()
}

// IsEmptyRow reports whether every cell in the row is blank.
func IsEmptyRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
