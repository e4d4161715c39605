package titles

import (
	"regexp"
	"strconv"
)

const (
	minYear = 1880
	maxYear = 2100
)

var yearPatterns = []*regexp.Regexp{
	regexp.MustCompile(`[(\[]\s*((?:18|19|20)\d{2})\s*[)\]]`),
	regexp.MustCompile(`^\s*\(?((?:18|19|20)\d{2})\)?\s*[-–—]\s`),
}

// ExtractYear returns a release year embedded in a raw title, checking
// parenthesized or bracketed years first, then "1934 - Title" prefixes. A bare
// trailing number is not a year: "Death Race 2000" names the film.
func ExtractYear(raw string) (int, bool) {
	for _, pattern := range yearPatterns {
		m := pattern.FindStringSubmatch(raw)
		if m == nil {
			continue
		}
		if year, ok := ParseYear(m[1]); ok {
			return year, true
		}
	}
	return 0, false
}

// ParseYear reads the first four characters of value as a plausible release
// year. OMDB reports series spans like "1999–2004"; the start year is used.
func ParseYear(value string) (int, bool) {
	if len(value) < 4 {
		return 0, false
	}
	year, err := strconv.Atoi(value[:4])
	if err != nil || year < minYear || year > maxYear {
		return 0, false
	}
	return year, true
}
