package titles

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"director unknown prefix", "Director Unknown Pipin Der Kurze", "Pipin Der Kurze"},
		{"leading dash artifact", "- Damals zu Hause", "Damals zu Hause"},
		{"full movie suffix", "Horror Express | FULL MOVIE", "Horror Express"},
		{"year prefix", "1934 - Damals zu Hause", "Damals zu Hause"},
		{"year-titled film", "2001: A Space Odyssey", "2001: A Space Odyssey"},
		{"year-titled sequel", "2010: The Year We Make Contact", "2010: The Year We Make Contact"},
		{"trailing number kept", "Death Race 2000", "Death Race 2000"},
		{"genre tag", "[Horror] Carnival of Souls", "Carnival of Souls"},
		{"translation pair", "Der Golem (The Golem)", "The Golem"},
		{"annotation kept", "Nosferatu (Remastered)", "Nosferatu (Remastered)"},
		{"language annotation kept", "Metropolis (German: Metropolis)", "Metropolis (German: Metropolis)"},
		{"actor billing", "Bela Lugosi in White Zombie", "White Zombie"},
		{"actor billing with year", "Bela Lugosi in White Zombie (1932) | FULL MOVIE", "White Zombie"},
		{"article guards billing", "The Man in The Iron Mask", "The Man in The Iron Mask"},
		{"descriptive subtitle", "Night Train - A thrilling journey through the Alps", "Night Train"},
		{"short subtitle kept", "Dr. Jekyll - Mr Hyde", "Dr. Jekyll - Mr Hyde"},
		{"single word before dash", "Detour - The Classic Noir", "Detour - The Classic Noir"},
		{"parenthesized year", "Scarlet Street (1945)", "Scarlet Street"},
		{"bracketed year", "Scarlet Street [1945]", "Scarlet Street"},
		{"trailing period", "Detour.", "Detour"},
		{"exclamation kept", "Help!", "Help!"},
		{"question kept", "Who Done It?", "Who Done It?"},
		{"whitespace collapsed", "  The   Little   Shop  ", "The Little Shop"},
		{"untouched", "His Girl Friday", "His Girl Friday"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.raw); got != tt.want {
				t.Fatalf("Normalize(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestNormalizeNeverEmpty(t *testing.T) {
	inputs := []string{
		"Full Movie",
		"(1934)",
		"[Drama]",
		"Director Unknown",
		"-",
		"...",
		"   ",
		"x",
	}
	for _, raw := range inputs {
		if got := Normalize(raw); got == "" {
			t.Fatalf("Normalize(%q) returned empty string", raw)
		}
		if got := Light(raw, ""); got == "" {
			t.Fatalf("Light(%q) returned empty string", raw)
		}
	}
}

func TestNormalizeForChannel(t *testing.T) {
	raw := "Carnival of Souls | Timeless Classic Movies"
	if got := NormalizeForChannel(raw, "Timeless Classic Movies"); got != "Carnival of Souls" {
		t.Fatalf("channel rules: got %q", got)
	}
	if got := Normalize(raw); got != raw {
		t.Fatalf("generic rules should leave channel branding alone, got %q", got)
	}
	if got := NormalizeForChannel("The Kid - Popcornflix", "popcornflix"); got != "The Kid" {
		t.Fatalf("popcornflix: got %q", got)
	}
}

func TestLight(t *testing.T) {
	raw := "Bela Lugosi in White Zombie (1932) | FULL MOVIE"
	if got := Light(raw, ""); got != "Bela Lugosi in White Zombie" {
		t.Fatalf("Light(%q) = %q", raw, got)
	}
	if got := Light("2001: A Space Odyssey", ""); got != "2001: A Space Odyssey" {
		t.Fatalf("Light should keep year titles, got %q", got)
	}
	if got := Light("Night Train - A thrilling journey through the Alps", ""); got != "Night Train - A thrilling journey through the Alps" {
		t.Fatalf("Light should keep subtitles, got %q", got)
	}
}

func TestKnownChannel(t *testing.T) {
	if !KnownChannel("  Mosfilm ") {
		t.Fatal("expected mosfilm to be known")
	}
	if KnownChannel("some random uploader") {
		t.Fatal("unexpected known channel")
	}
}
