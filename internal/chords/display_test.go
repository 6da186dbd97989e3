package chords

import "testing"

func TestDisplayCategory(t *testing.T) {
	tests := []struct {
		chord string
		want  Category
	}{
		{"Cdim", CategoryDiminished},
		{"Cdim7", CategoryDiminished},
		{"Caug", CategoryAugmented},
		{"Dsus4", CategorySuspended},
		{"Esus9", CategorySuspended},
		{"E9", CategoryNinth},
		{"Cadd9", CategoryNinth},
		{"G7", CategorySeventh},
		{"Cmaj7", CategorySeventh},
		{"Am", "Am"},
		{"A", "A"},
		{"F#", "F#"},
		{"F#m", "F#m"},
		{"H", "H"},
		{"Hm", "Hm"},
		{"Am/G", "Am"},
		{"Bbm", "Bm"},
		{"Db", "D"},
		{"Cmaj", "C"},
		{"Cmin", "Cm"},
		{"G/B", "G"},
		{"not a chord", CategoryDefault},
		{"", CategoryDefault},
	}
	for _, tt := range tests {
		if got := DisplayCategory(tt.chord); got != tt.want {
			t.Errorf("DisplayCategory(%q) = %q, want %q", tt.chord, got, tt.want)
		}
	}
}

func TestDisplayCategoryDistinguishesMinor(t *testing.T) {
	if DisplayCategory("Am") == DisplayCategory("A") {
		t.Error("Am and A should land in different categories")
	}
}

func TestCategoriesCoverResults(t *testing.T) {
	known := make(map[Category]bool)
	for _, c := range Categories() {
		known[c] = true
	}
	for _, chord := range []string{"C", "Dm", "Edim", "F#m", "Gsus2", "A7", "B9", "Hm", "Xq"} {
		if c := DisplayCategory(chord); !known[c] {
			t.Errorf("DisplayCategory(%q) = %q, not listed in Categories()", chord, c)
		}
	}
}
