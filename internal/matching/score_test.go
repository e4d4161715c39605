package matching_test

import (
	"testing"

	"cinedex/internal/matching"
	"cinedex/internal/omdb"
)

func TestScoreRules(t *testing.T) {
	tests := []struct {
		name  string
		query string
		year  int
		cand  omdb.Candidate
		want  matching.Tier
	}{
		{"equal and year match", "The Matrix", 1999, omdb.Candidate{Title: "The Matrix", Year: "1999"}, matching.Exact},
		{"equal ignores case and accents", "amelie", 2001, omdb.Candidate{Title: "Amélie", Year: "2001"}, matching.Exact},
		{"equal without query year", "The Matrix", 0, omdb.Candidate{Title: "The Matrix", Year: "1999"}, matching.High},
		{"equal with unknown candidate year", "The Matrix", 1999, omdb.Candidate{Title: "The Matrix", Year: "N/A"}, matching.High},
		{"equal with year mismatch", "Scarface", 1983, omdb.Candidate{Title: "Scarface", Year: "1932"}, matching.Medium},
		{"substring and year match", "Matrix", 1999, omdb.Candidate{Title: "The Matrix", Year: "1999"}, matching.High},
		{"substring reversed", "The Matrix Special Edition", 1999, omdb.Candidate{Title: "The Matrix", Year: "1999"}, matching.High},
		{"substring year mismatch", "Matrix", 2003, omdb.Candidate{Title: "The Matrix", Year: "1999"}, matching.Low},
		{"substring no year", "Matrix", 0, omdb.Candidate{Title: "The Matrix", Year: "1999"}, matching.Medium},
		{"overlap", "Night of Living Dead", 1968, omdb.Candidate{Title: "Night of the Living Dead", Year: "1968"}, matching.Medium},
		{"overlap year mismatch", "Night of Living Dead", 1990, omdb.Candidate{Title: "Night of the Living Dead", Year: "1968"}, matching.Low},
		{"unrelated", "Nosferatu", 1922, omdb.Candidate{Title: "Metropolis", Year: "1927"}, matching.Low},
		{"series year range", "Twin Peaks", 1990, omdb.Candidate{Title: "Twin Peaks", Year: "1990–1991"}, matching.Exact},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := matching.Score(tt.query, tt.year, tt.cand); got != tt.want {
				t.Fatalf("Score(%q, %d, %q/%q) = %s, want %s", tt.query, tt.year, tt.cand.Title, tt.cand.Year, got, tt.want)
			}
		})
	}
}

func TestScoreMonotonicAcrossRules(t *testing.T) {
	equal := omdb.Candidate{Title: "Night of the Living Dead", Year: "1968"}
	substring := omdb.Candidate{Title: "Night of the Living Dead Remastered", Year: "1968"}
	overlap := omdb.Candidate{Title: "Night of Living Dead Returns", Year: "1968"}
	query := "Night of the Living Dead"

	for _, year := range []int{0, 1968, 1990} {
		e := matching.Score(query, year, equal)
		s := matching.Score(query, year, substring)
		o := matching.Score(query, year, overlap)
		if e < s || s < o {
			t.Fatalf("year %d: equal=%s substring=%s overlap=%s not monotonic", year, e, s, o)
		}
	}
}

func TestBestPicksHighestTier(t *testing.T) {
	candidates := []omdb.Candidate{
		{Title: "The Matrix Reloaded", Year: "2003", IMDBID: "tt0234215"},
		{Title: "The Matrix", Year: "1999", IMDBID: "tt0133093"},
		{Title: "The Matrix Revisited", Year: "2001", IMDBID: "tt0295432"},
	}
	got := matching.Best("Matrix", 1999, candidates)
	if got.Tier != matching.High {
		t.Fatalf("tier = %s, want high", got.Tier)
	}
	if got.IMDBID != "tt0133093" || got.Title != "The Matrix" || got.Year != 1999 {
		t.Fatalf("unexpected winner: %+v", got)
	}
	if got.Rule != matching.RuleSubstring {
		t.Fatalf("rule = %s, want %s", got.Rule, matching.RuleSubstring)
	}
}

func TestBestTieKeepsFirst(t *testing.T) {
	candidates := []omdb.Candidate{
		{Title: "Detour", Year: "1945", IMDBID: "tt0037638"},
		{Title: "Detour", Year: "1945", IMDBID: "tt9999999"},
	}
	got := matching.Best("Detour", 1945, candidates)
	if got.IMDBID != "tt0037638" {
		t.Fatalf("expected first candidate on tie, got %s", got.IMDBID)
	}
}

func TestBestEmptyIsNone(t *testing.T) {
	got := matching.Best("Anything", 1950, nil)
	if got.Tier != matching.None || got.Candidate != nil {
		t.Fatalf("expected none, got %+v", got)
	}
	if got.Matched(matching.Low) {
		t.Fatal("empty result must not match")
	}
}

func TestBestNonEmptyNeverNone(t *testing.T) {
	got := matching.Best("zzz", 0, []omdb.Candidate{{Title: "Metropolis", Year: "1927"}})
	if got.Tier == matching.None {
		t.Fatal("non-empty candidate list scored none")
	}
	if got.Year != 1927 {
		t.Fatalf("year = %d, want 1927", got.Year)
	}
}

func TestParseTier(t *testing.T) {
	for _, name := range []string{"exact", "HIGH", " medium ", "low", "none"} {
		tier, err := matching.ParseTier(name)
		if err != nil {
			t.Fatalf("ParseTier(%q): %v", name, err)
		}
		var round matching.Tier
		text, _ := tier.MarshalText()
		if err := round.UnmarshalText(text); err != nil || round != tier {
			t.Fatalf("text round trip for %q gave %s (%v)", name, round, err)
		}
	}
	if _, err := matching.ParseTier("certain"); err == nil {
		t.Fatal("expected error for unknown tier")
	}
	if !matching.High.AtLeast(matching.Medium) || matching.Low.AtLeast(matching.Medium) {
		t.Fatal("AtLeast ordering broken")
	}
}
