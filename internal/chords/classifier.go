package chords

import (
	"strings"
	"unicode/utf8"
)

// SectionType labels a run of lines.
type SectionType string

const (
	SectionChords SectionType = "chords"
	SectionLyrics SectionType = "lyrics"
)

// Section is a maximal run of non-blank lines sharing one type. It always
// holds at least one line.
type Section struct {
	Type  SectionType `json:"type"`
	Lines []string    `json:"lines"`
}

const (
	DefaultDensityThreshold     = 0.3
	DefaultMinProgressionChords = 2
)

// Classifier decides whether lines are chord lines. The zero value uses the
// defaults.
type Classifier struct {
	// DensityThreshold is the share of a trimmed line that chord tokens must
	// exceed for the line to count as chords.
	DensityThreshold float64
	// MinProgressionChords is how many whitespace-separated chords make a
	// line a progression regardless of density.
	MinProgressionChords int
}

// DefaultClassifier uses a 0.3 density threshold and two-chord progressions.
var DefaultClassifier = Classifier{
	DensityThreshold:     DefaultDensityThreshold,
	MinProgressionChords: DefaultMinProgressionChords,
}

func (c Classifier) threshold() float64 {
	if c.DensityThreshold <= 0 {
		return DefaultDensityThreshold
	}
	return c.DensityThreshold
}

func (c Classifier) minProgression() int {
	if c.MinProgressionChords < 2 {
		return DefaultMinProgressionChords
	}
	return c.MinProgressionChords
}

// ChordDensity is the share of the trimmed line, in runes, covered by chord
// tokens. Blank lines have zero density.
func ChordDensity(line string) float64 {
	return density(line, FindMatches(line))
}

func density(line string, matches []Match) float64 {
	total := utf8.RuneCountInString(strings.TrimSpace(line))
	if total == 0 || len(matches) == 0 {
		return 0
	}
	covered := 0
	for _, m := range matches {
		covered += utf8.RuneCountInString(m.Text)
	}
	return float64(covered) / float64(total)
}

// IsProgression reports whether every word of line is a chord and there are
// at least min of them.
func IsProgression(line string, min int) bool {
	words := strings.Fields(line)
	if len(words) < min {
		return false
	}
	for _, w := range words {
		if !IsChord(w) {
			return false
		}
	}
	return true
}

// IsChordLine applies the per-line rule. Lines without any chord token, and
// lines where chords only appear incidentally, are lyrics.
func (c Classifier) IsChordLine(line string) bool {
	matches := FindMatches(line)
	if len(matches) == 0 {
		return false
	}
	if density(line, matches) > c.threshold() {
		return true
	}
	return IsProgression(line, c.minProgression())
}

// LineType returns SectionChords or SectionLyrics for a non-blank line.
func (c Classifier) LineType(line string) SectionType {
	if c.IsChordLine(line) {
		return SectionChords
	}
	return SectionLyrics
}

// Classify splits content into sections. Blank lines close the current
// section and are not kept; a change of line type starts a new section.
// A trailing "\r" is dropped from each line.
func (c Classifier) Classify(content string) []Section {
	var (
		sections []Section
		current  *Section
	)
	closeCurrent := func() {
		if current != nil {
			sections = append(sections, *current)
			current = nil
		}
	}

	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if strings.TrimSpace(line) == "" {
			closeCurrent()
			continue
		}
		kind := c.LineType(line)
		if current != nil && current.Type != kind {
			closeCurrent()
		}
		if current == nil {
			current = &Section{Type: kind}
		}
		current.Lines = append(current.Lines, line)
	}
	closeCurrent()
	return sections
}

// ClassifyLines classifies content with DefaultClassifier.
func ClassifyLines(content string) []Section {
	return DefaultClassifier.Classify(content)
}
