package chords

import "strings"

// Category groups chords for display. Named categories use the chord name
// itself ("C", "Am", "F#m"); the rest are the quality keys below.
type Category string

const (
	CategoryDiminished Category = "dim"
	CategoryAugmented  Category = "aug"
	CategorySuspended  Category = "sus"
	CategoryNinth      Category = "9"
	CategorySeventh    Category = "7"
	CategoryDefault    Category = "default"
)

var namedOrder = []Category{
	"C", "D", "E", "F", "F#", "G", "A", "B", "H",
	"Cm", "Dm", "Em", "Fm", "F#m", "Gm", "Am", "Bm", "Hm",
}

var namedCategories = func() map[string]Category {
	m := make(map[string]Category, len(namedOrder))
	for _, c := range namedOrder {
		m[string(c)] = c
	}
	return m
}()

// Categories lists every category DisplayCategory can return.
func Categories() []Category {
	out := []Category{
		CategoryDiminished, CategoryAugmented, CategorySuspended,
		CategoryNinth, CategorySeventh, CategoryDefault,
	}
	return append(out, namedOrder...)
}

// DisplayCategory picks the colour group for a chord token. First match wins:
// dim, aug, sus, ninth, seventh, exact name, minor of the root, root, default.
func DisplayCategory(chord string) Category {
	switch {
	case strings.Contains(chord, "dim"):
		return CategoryDiminished
	case strings.Contains(chord, "aug"):
		return CategoryAugmented
	case strings.Contains(chord, "sus"):
		return CategorySuspended
	case strings.Contains(chord, "9"):
		return CategoryNinth
	case strings.Contains(chord, "7"):
		return CategorySeventh
	}

	if c, ok := namedCategories[chord]; ok {
		return c
	}

	parsed, ok := Parse(chord)
	if !ok {
		return CategoryDefault
	}
	keys := []string{parsed.Root + parsed.Accidental, parsed.Root}
	if parsed.IsMinor() {
		keys = append([]string{keys[0] + "m", parsed.Root + "m"}, keys...)
	}
	for _, k := range keys {
		if c, ok := namedCategories[k]; ok {
			return c
		}
	}
	return CategoryDefault
}
