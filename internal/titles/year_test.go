package titles

import "testing"

func TestExtractYear(t *testing.T) {
	tests := []struct {
		raw  string
		want int
		ok   bool
	}{
		{"Scarlet Street (1945)", 1945, true},
		{"Scarlet Street [1945]", 1945, true},
		{"1934 - Damals zu Hause", 1934, true},
		{"(1934) - Damals zu Hause", 1934, true},
		{"Metropolis 1927", 0, false},
		{"Death Race 2000", 0, false},
		{"Blade Runner 2049", 0, false},
		{"2001: A Space Odyssey", 0, false},
		{"2010: The Year We Make Contact", 0, false},
		{"Blade Runner", 0, false},
		{"Film (1850)", 0, false},
		{"1927", 0, false},
	}
	for _, tt := range tests {
		got, ok := ExtractYear(tt.raw)
		if got != tt.want || ok != tt.ok {
			t.Fatalf("ExtractYear(%q) = %d,%v want %d,%v", tt.raw, got, ok, tt.want, tt.ok)
		}
	}
}

func TestParseYear(t *testing.T) {
	if y, ok := ParseYear("1999–2004"); !ok || y != 1999 {
		t.Fatalf("series span: got %d,%v", y, ok)
	}
	if _, ok := ParseYear("N/A"); ok {
		t.Fatal("N/A should not parse")
	}
	if _, ok := ParseYear("2150"); ok {
		t.Fatal("out of range year should not parse")
	}
}
