// Package render turns a song body into a display-ready sheet and prints it
// for terminals and Telegram.
package render

import (
	"github.com/sukalov/jamsheet/internal/chords"
	"github.com/sukalov/jamsheet/internal/songbook"
)

// Token is one segment of a line. Category is set for chord tokens only.
type Token struct {
	Kind     chords.SegmentKind `json:"kind"`
	Text     string             `json:"text"`
	Offset   int                `json:"offset"`
	Category chords.Category    `json:"category,omitempty"`
}

type Line struct {
	Text   string  `json:"text"`
	Tokens []Token `json:"tokens"`
}

type Section struct {
	Type  chords.SectionType `json:"type"`
	Lines []Line             `json:"lines"`
}

// Sheet is a classified and tokenized song.
type Sheet struct {
	Slug     string    `json:"slug"`
	Title    string    `json:"title"`
	Artist   string    `json:"artist,omitempty"`
	Sections []Section `json:"sections"`
}

// RenderSong classifies content and tokenizes every line of every section,
// chord and lyric alike.
func RenderSong(content string, c chords.Classifier) []Section {
	classified := c.Classify(content)
	sections := make([]Section, 0, len(classified))
	for _, sec := range classified {
		out := Section{Type: sec.Type, Lines: make([]Line, 0, len(sec.Lines))}
		for _, raw := range sec.Lines {
			out.Lines = append(out.Lines, tokenize(raw))
		}
		sections = append(sections, out)
	}
	return sections
}

func tokenize(raw string) Line {
	segments := chords.TokenizeLine(raw)
	tokens := make([]Token, 0, len(segments))
	for _, seg := range segments {
		tok := Token{Kind: seg.Kind, Text: seg.Text, Offset: seg.Offset}
		if seg.IsChord() {
			tok.Category = chords.DisplayCategory(seg.Text)
		}
		tokens = append(tokens, tok)
	}
	return Line{Text: raw, Tokens: tokens}
}

func BuildSheet(song songbook.Song, c chords.Classifier) Sheet {
	return Sheet{
		Slug:     song.Slug,
		Title:    song.Title,
		Artist:   song.Artist,
		Sections: RenderSong(song.Content, c),
	}
}

// Chords lists the distinct chord tokens of the sheet in order of first
// appearance.
func (s Sheet) Chords() []string {
	seen := make(map[string]bool)
	var out []string
	for _, sec := range s.Sections {
		for _, line := range sec.Lines {
			for _, tok := range line.Tokens {
				if tok.Kind != chords.SegmentChord || seen[tok.Text] {
					continue
				}
				seen[tok.Text] = true
				out = append(out, tok.Text)
			}
		}
	}
	return out
}
