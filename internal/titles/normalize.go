package titles

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	whitespacePattern  = regexp.MustCompile(`\s+`)
	dashPrefixPattern  = regexp.MustCompile(`^\s*[-–—:]+\s+`)
	parentheticalSplit = regexp.MustCompile(`^(.+?)\s*\(([^()]+)\)\s*(.*)$`)
	annotationPattern  = regexp.MustCompile(`(?i)^(?:aka\b|a\.k\.a|dir\b|dir\.|directed|german|french|italian|spanish|russian|english|japanese|swedish|danish|polish|czech|original|orig\.|with\b|subtitled|subs?\b|remastered|restored|colou?ri[sz]ed|silent|uncut|hd\b|full\b|complete|version|edition|b&w|black\s+and\s+white|in\s+colou?r)`)
	actorPrefixPattern = regexp.MustCompile(`^((?:\p{Lu}[\p{L}'.\-]*\s+){1,3}\p{Lu}[\p{L}'.\-]*)\s+(?:is|in)\s+(\p{Lu}.*)$`)
	bracketYearPattern = regexp.MustCompile(`\s*[(\[]\s*(?:18|19|20)\d{2}\s*[)\]]`)
	trailingPunct      = regexp.MustCompile(`[\s,;:|\-–—.]+$`)
	leadingPunct       = regexp.MustCompile(`^[\s,;:|]+`)
)

var dashSeparators = []string{" - ", " – ", " — "}

var subtitleArticles = map[string]struct{}{
	"a":        {},
	"an":       {},
	"the":      {},
	"full":     {},
	"classic":  {},
	"starring": {},
}

var billingStopwords = map[string]struct{}{
	"The": {}, "A": {}, "An": {}, "Of": {}, "And": {},
}

type rule func(string) string

// Normalize cleans raw using only the generic envelope rules.
func Normalize(raw string) string {
	return NormalizeForChannel(raw, "")
}

// NormalizeForChannel cleans raw, applying envelope rules registered for the
// channel or collection it was scraped from in addition to the generic ones.
func NormalizeForChannel(raw, channel string) string {
	return run(raw,
		stripEnvelopes(channel),
		stripDashPrefix,
		collapseTranslation,
		stripActorPrefix,
		stripDescriptiveSubtitle,
		stripYearsAndPunctuation,
	)
}

// Light performs the minimal cleanup: promotional envelopes plus years and
// punctuation. It is the fallback query when the full normalization is too
// aggressive to find a match.
func Light(raw, channel string) string {
	return run(raw, stripEnvelopes(channel), stripDashPrefix, stripYearsAndPunctuation)
}

func run(raw string, rules ...rule) string {
	current := collapse(raw)
	if current == "" {
		return raw
	}
	for _, r := range rules {
		current = guarded(current, r)
	}
	return current
}

// guarded applies r but keeps the input when r would empty the title.
func guarded(value string, r rule) string {
	out := collapse(r(value))
	if out == "" {
		return value
	}
	return out
}

func collapse(value string) string {
	return strings.TrimSpace(whitespacePattern.ReplaceAllString(value, " "))
}

func stripEnvelopes(channel string) rule {
	patterns := envelopesFor(channel)
	return func(value string) string {
		for _, pattern := range patterns {
			value = pattern.ReplaceAllString(value, " ")
		}
		return yearPrefixPattern.ReplaceAllString(value, "$1 ")
	}
}

func stripDashPrefix(value string) string {
	return dashPrefixPattern.ReplaceAllString(value, "")
}

func collapseTranslation(value string) string {
	m := parentheticalSplit.FindStringSubmatch(value)
	if m == nil {
		return value
	}
	before, inner, rest := strings.TrimSpace(m[1]), strings.TrimSpace(m[2]), strings.TrimSpace(m[3])
	if before == "" || inner == "" {
		return value
	}
	first, _ := utf8.DecodeRuneInString(inner)
	if !unicode.IsUpper(first) {
		return value
	}
	if strings.Contains(inner, ":") || annotationPattern.MatchString(inner) {
		return value
	}
	if rest != "" {
		return inner + " " + rest
	}
	return inner
}

func stripActorPrefix(value string) string {
	m := actorPrefixPattern.FindStringSubmatch(value)
	if m == nil {
		return value
	}
	for _, word := range strings.Fields(m[1]) {
		if _, stop := billingStopwords[word]; stop {
			return value
		}
	}
	return m[2]
}

func stripDescriptiveSubtitle(value string) string {
	idx, sepLen := -1, 0
	for _, sep := range dashSeparators {
		if i := strings.Index(value, sep); i >= 0 && (idx < 0 || i < idx) {
			idx, sepLen = i, len(sep)
		}
	}
	if idx < 0 {
		return value
	}
	before := strings.TrimSpace(value[:idx])
	after := strings.TrimSpace(value[idx+sepLen:])
	if len(strings.Fields(before)) < 2 || after == "" {
		return value
	}
	if utf8.RuneCountInString(after) > 25 {
		return before
	}
	firstWord := strings.ToLower(strings.Fields(after)[0])
	if _, ok := subtitleArticles[firstWord]; ok {
		return before
	}
	return value
}

func stripYearsAndPunctuation(value string) string {
	value = bracketYearPattern.ReplaceAllString(value, " ")
	value = collapse(value)
	value = trailingPunct.ReplaceAllString(value, "")
	return leadingPunct.ReplaceAllString(value, "")
}
