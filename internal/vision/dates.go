package vision

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Accepted date spellings, rewritten to the canonical DD/MM/YYYY.
var (
	reDateISO    = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})`)
	reDateDMY    = regexp.MustCompile(`^(\d{1,2})[/\-.](\d{1,2})[/\-.](\d{4})`)
	reDateNamed  = regexp.MustCompile(`(?i)^(\d{1,2})(?:er|st|nd|rd|th)?\s+([\p{L}éûî]+),?\s+(\d{4})`)
	monthNumbers = map[string]int{
		"janvier": 1, "février": 2, "fevrier": 2, "mars": 3, "avril": 4,
		"mai": 5, "juin": 6, "juillet": 7, "août": 8, "aout": 8,
		"septembre": 9, "octobre": 10, "novembre": 11, "décembre": 12, "decembre": 12,
		"january": 1, "february": 2, "march": 3, "april": 4, "may": 5, "june": 6,
		"july": 7, "august": 8, "september": 9, "october": 10, "november": 11, "december": 12,
	}
)

// NormalizeDate rewrites any accepted date form to DD/MM/YYYY. The second
// return is false when the input matches no known form; the input is then
// returned unchanged so already-extracted data is never destroyed.
func NormalizeDate(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return s, false
	}

	if m := reDateISO.FindStringSubmatch(s); m != nil {
		return fmt.Sprintf("%s/%s/%s", m[3], m[2], m[1]), true
	}
	if m := reDateDMY.FindStringSubmatch(s); m != nil {
		d, _ := strconv.Atoi(m[1])
		mo, _ := strconv.Atoi(m[2])
		return fmt.Sprintf("%02d/%02d/%s", d, mo, m[3]), true
	}
	if m := reDateNamed.FindStringSubmatch(s); m != nil {
		if mo, ok := monthNumbers[strings.ToLower(m[2])]; ok {
			d, _ := strconv.Atoi(m[1])
			return fmt.Sprintf("%02d/%02d/%s", d, mo, m[3]), true
		}
	}
	return s, false
}

// ParseCanonical parses a canonical DD/MM/YYYY string into a time.Time.
func ParseCanonical(s string) (time.Time, error) {
	return time.Parse("02/01/2006", s)
}
