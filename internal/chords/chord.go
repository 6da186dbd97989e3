// Package chords recovers the structure of a plain-text song sheet: which
// lines carry chords, which carry lyrics, and where each chord token sits
// inside a line.
//
// Chord names follow a small grammar:
//
//	chord      := root accidental? quality? degree? bass?
//	root       := A | B | C | D | E | F | G | H
//	accidental := # | b
//	quality    := m | maj | min | dim | aug | sus | add
//	degree     := 0-9
//	bass       := / root accidental?
//
// H is the German name for B. A token only counts as a chord when it is a
// whole whitespace-delimited word, so the G in "Game" is never matched.
//
// Everything in this package is pure and safe for concurrent use.
package chords

import (
	"unicode"
	"unicode/utf8"
)

var (
	accidentals = []string{"#", "b"}
	// Longest first so "maj" and "min" are tried before "m".
	qualities = []string{"maj", "min", "dim", "aug", "sus", "add", "m"}
	degrees   = []string{"0", "1", "2", "3", "4", "5", "6", "7", "8", "9"}
)

// Chord is a chord name split into its grammar parts. Empty fields were
// absent in the source text.
type Chord struct {
	Root       string `json:"root"`
	Accidental string `json:"accidental,omitempty"`
	Quality    string `json:"quality,omitempty"`
	Degree     string `json:"degree,omitempty"`
	Bass       string `json:"bass,omitempty"`
}

// String reassembles the chord name.
func (c Chord) String() string {
	s := c.Root + c.Accidental + c.Quality + c.Degree
	if c.Bass != "" {
		s += "/" + c.Bass
	}
	return s
}

// IsMinor reports whether the quality is minor ("m" or "min").
func (c Chord) IsMinor() bool {
	return c.Quality == "m" || c.Quality == "min"
}

// Match is a chord token found inside a line. Start and End are byte offsets,
// End exclusive, so line[m.Start:m.End] == m.Text.
type Match struct {
	Text  string `json:"text"`
	Start int    `json:"start"`
	End   int    `json:"end"`
}

func isRoot(b byte) bool {
	return (b >= 'A' && b <= 'H')
}

// candidates returns the options that prefix s, longest first, followed by
// the empty option.
func candidates(s string, options []string) []string {
	out := make([]string, 0, 2)
	for _, opt := range options {
		if len(s) >= len(opt) && s[:len(opt)] == opt {
			out = append(out, opt)
		}
	}
	return append(out, "")
}

// parseBass accepts "" or "/" root accidental? and nothing else.
func parseBass(s string) (string, bool) {
	if s == "" {
		return "", true
	}
	if len(s) < 2 || s[0] != '/' || !isRoot(s[1]) {
		return "", false
	}
	switch rest := s[2:]; rest {
	case "", "#", "b":
		return s[1:], true
	}
	return "", false
}

// Parse checks that token, as a whole, is a chord name and splits it into
// parts. Ambiguous prefixes ("m" versus "maj") are resolved by trying the
// longer alternative first and backing off.
func Parse(token string) (Chord, bool) {
	if token == "" || !isRoot(token[0]) {
		return Chord{}, false
	}
	root, rest := token[:1], token[1:]

	for _, acc := range candidates(rest, accidentals) {
		afterAcc := rest[len(acc):]
		for _, quality := range candidates(afterAcc, qualities) {
			afterQuality := afterAcc[len(quality):]
			for _, degree := range candidates(afterQuality, degrees) {
				bass, ok := parseBass(afterQuality[len(degree):])
				if !ok {
					continue
				}
				return Chord{
					Root:       root,
					Accidental: acc,
					Quality:    quality,
					Degree:     degree,
					Bass:       bass,
				}, true
			}
		}
	}
	return Chord{}, false
}

// IsChord reports whether token is exactly one chord name.
func IsChord(token string) bool {
	_, ok := Parse(token)
	return ok
}

// FindMatches scans line left to right and returns every chord token that
// starts at the beginning of the line or after whitespace and ends at
// whitespace or the end of the line. Matches never overlap and are ordered
// by Start.
func FindMatches(line string) []Match {
	var matches []Match
	i := 0
	for i < len(line) {
		r, size := utf8.DecodeRuneInString(line[i:])
		if unicode.IsSpace(r) {
			i += size
			continue
		}
		end := wordEnd(line, i)
		if word := line[i:end]; IsChord(word) {
			matches = append(matches, Match{Text: word, Start: i, End: end})
		}
		i = end
	}
	return matches
}

// wordEnd returns the offset of the first whitespace rune at or after start,
// or len(line).
func wordEnd(line string, start int) int {
	for j := start; j < len(line); {
		r, size := utf8.DecodeRuneInString(line[j:])
		if unicode.IsSpace(r) {
			return j
		}
		j += size
	}
	return len(line)
}
