package titles

import (
	"regexp"
	"strings"
)

// genericEnvelopes apply to every title regardless of where it was scraped.
var genericEnvelopes = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^\s*director\s+unknown\s*[:\-–]?\s*`),
	regexp.MustCompile(`(?i)\s*[|｜]\s*(?:full\s+(?:length\s+)?(?:movie|film)|free\s+(?:movie|film)|classic\s+(?:movie|film)|hd|english)\b.*$`),
	regexp.MustCompile(`(?i)\s*[-–—]?\s*\(?\s*full\s+(?:length\s+)?(?:movie|film)\s*\)?\s*$`),
	regexp.MustCompile(`\[\s*[^\]0-9\s][^\]]*\]`),
}

// yearPrefixPattern matches "1934 - Title" style prefixes. The separator is
// kept so the dash-prefix rule can remove it afterwards. A colon is not a
// separator: "2001: A Space Odyssey" is a title.
var yearPrefixPattern = regexp.MustCompile(`^\s*\(?(?:18|19|20)\d{2}\)?\s*([-–—])\s`)

// channelEnvelopes holds promotion patterns for specific YouTube channels and
// Archive.org collections, keyed by lower-cased channel or collection name.
var channelEnvelopes = map[string][]*regexp.Regexp{
	"timeless classic movies": {
		regexp.MustCompile(`\s*[|｜].*$`),
	},
	"filmrise movies": {
		regexp.MustCompile(`(?i)\s*[|｜\-–]\s*filmrise\b.*$`),
	},
	"popcornflix": {
		regexp.MustCompile(`(?i)\s*[|｜\-–]\s*popcornflix\b.*$`),
		regexp.MustCompile(`(?i)^\s*popcornflix\s*(?:presents)?\s*[:\-–]\s*`),
	},
	"movie central": {
		regexp.MustCompile(`(?i)\s*[|｜]\s*(?:movie\s+central|action|drama|thriller|horror|comedy|western)\b.*$`),
	},
	"mosfilm": {
		regexp.MustCompile(`\s*[|｜].*$`),
		regexp.MustCompile(`(?i)\s*\(\s*(?:with\s+)?english\s+subtitles\s*\)`),
		regexp.MustCompile(`(?i)\s*\|\s*drama\s*$`),
	},
	"silent_films": {
		regexp.MustCompile(`(?i)\s*[-–(]?\s*silent\s+(?:film|movie)\s*\)?\s*$`),
	},
	"feature_films": {
		regexp.MustCompile(`(?i)^\s*feature\s+film\s*[:\-–]\s*`),
	},
}

func envelopesFor(channel string) []*regexp.Regexp {
	key := strings.ToLower(strings.TrimSpace(channel))
	specific := channelEnvelopes[key]
	if len(specific) == 0 {
		return genericEnvelopes
	}
	out := make([]*regexp.Regexp, 0, len(specific)+len(genericEnvelopes))
	out = append(out, specific...)
	out = append(out, genericEnvelopes...)
	return out
}

// KnownChannel reports whether channel has dedicated envelope rules.
func KnownChannel(channel string) bool {
	_, ok := channelEnvelopes[strings.ToLower(strings.TrimSpace(channel))]
	return ok
}
