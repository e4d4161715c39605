package matching

import (
	"strings"

	"cinedex/internal/omdb"
	"cinedex/internal/textutil"
)

// OverlapThreshold is the shared-token ratio that counts as a near match.
const OverlapThreshold = 0.6

// Rule names the title relation that decided a tier.
type Rule string

const (
	RuleEqual     Rule = "title_equal"
	RuleSubstring Rule = "title_substring"
	RuleOverlap   Rule = "token_overlap"
	RuleWeak      Rule = "weak"
	RuleNoResults Rule = "no_candidates"
)

// Result is the best candidate for a query and how it scored.
type Result struct {
	Tier      Tier            `json:"tier"`
	Rule      Rule            `json:"rule"`
	IMDBID    string          `json:"imdbId,omitempty"`
	Title     string          `json:"title,omitempty"`
	Year      int             `json:"year,omitempty"`
	Candidate *omdb.Candidate `json:"-"`
}

// Matched reports whether the result reaches minimum.
func (r Result) Matched(minimum Tier) bool {
	return r.Candidate != nil && r.Tier.AtLeast(minimum)
}

type yearRelation int

const (
	yearAbsent yearRelation = iota
	yearMatch
	yearMismatch
)

// Score grades one candidate. queryYear <= 0 means the query has no year.
func Score(queryTitle string, queryYear int, candidate omdb.Candidate) Tier {
	tier, _ := score(textutil.Fold(queryTitle), queryYear, candidate)
	return tier
}

func score(query string, queryYear int, candidate omdb.Candidate) (Tier, Rule) {
	title := textutil.Fold(candidate.Title)
	year := compareYears(queryYear, candidate)

	switch {
	case query != "" && query == title:
		switch year {
		case yearMatch:
			return Exact, RuleEqual
		case yearMismatch:
			return Medium, RuleEqual
		default:
			return High, RuleEqual
		}
	case query != "" && title != "" && (strings.Contains(title, query) || strings.Contains(query, title)):
		switch year {
		case yearMatch:
			return High, RuleSubstring
		case yearMismatch:
			return Low, RuleSubstring
		default:
			return Medium, RuleSubstring
		}
	case textutil.TokenOverlap(query, title) >= OverlapThreshold:
		if year == yearMismatch {
			return Low, RuleOverlap
		}
		return Medium, RuleOverlap
	default:
		return Low, RuleWeak
	}
}

// compareYears treats an unknown candidate year as no year check applicable.
func compareYears(queryYear int, candidate omdb.Candidate) yearRelation {
	if queryYear <= 0 {
		return yearAbsent
	}
	candidateYear, ok := candidate.ReleaseYear()
	if !ok {
		return yearAbsent
	}
	if candidateYear == queryYear {
		return yearMatch
	}
	return yearMismatch
}

// Best scores every candidate and returns the highest tier. Ties keep the
// earlier candidate, preserving OMDB's ranking. An empty list yields None.
func Best(queryTitle string, queryYear int, candidates []omdb.Candidate) Result {
	if len(candidates) == 0 {
		return Result{Tier: None, Rule: RuleNoResults}
	}
	query := textutil.Fold(queryTitle)
	best := Result{Tier: None}
	for i := range candidates {
		tier, rule := score(query, queryYear, candidates[i])
		if best.Candidate != nil && tier <= best.Tier {
			continue
		}
		best = Result{Tier: tier, Rule: rule, Candidate: &candidates[i]}
	}
	best.IMDBID = best.Candidate.IMDBID
	best.Title = best.Candidate.Title
	if year, ok := best.Candidate.ReleaseYear(); ok {
		best.Year = year
	}
	return best
}
