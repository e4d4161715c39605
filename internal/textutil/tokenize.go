package textutil

import (
	"strings"
	"unicode"
)

// Words splits text into folded word tokens. Any rune that is not a letter or
// digit separates tokens. Unlike search tokenizers no short words are dropped,
// since titles such as "It" or "Up" are all short words.
func Words(text string) []string {
	return strings.FieldsFunc(Fold(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// TokenOverlap returns the number of distinct shared tokens divided by the
// distinct token count of the smaller set. Returns 0 when either side has no
// tokens.
func TokenOverlap(a, b string) float64 {
	setA := tokenSet(Words(a))
	setB := tokenSet(Words(b))
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}
	small, large := setA, setB
	if len(small) > len(large) {
		small, large = large, small
	}
	shared := 0
	for token := range small {
		if _, ok := large[token]; ok {
			shared++
		}
	}
	return float64(shared) / float64(len(small))
}

func tokenSet(tokens []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tokens))
	for _, token := range tokens {
		set[token] = struct{}{}
	}
	return set
}
