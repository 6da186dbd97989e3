package render

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/sukalov/jamsheet/internal/chords"
	"github.com/sukalov/jamsheet/internal/songbook"
)

// palette maps display categories to terminal colours. Majors are the lighter
// shade of a hue, minors the deeper one.
var palette = map[chords.Category]lipgloss.Color{
	"C": "39", "D": "41", "E": "220", "F": "141", "F#": "135",
	"G": "203", "A": "105", "B": "212", "H": "212",
	"Cm": "33", "Dm": "35", "Em": "178", "Fm": "135", "F#m": "99",
	"Gm": "160", "Am": "62", "Bm": "169", "Hm": "169",

	chords.CategoryDiminished: "245",
	chords.CategoryAugmented:  "208",
	chords.CategorySuspended:  "37",
	chords.CategorySeventh:    "214",
	chords.CategoryNinth:      "204",
	chords.CategoryDefault:    "250",
}

// Terminal prints sheets with coloured chord tokens.
type Terminal struct {
	title    lipgloss.Style
	artist   lipgloss.Style
	lyric    lipgloss.Style
	chordRow lipgloss.Style
	chords   map[chords.Category]lipgloss.Style
}

func NewTerminal() *Terminal {
	t := &Terminal{
		title:    lipgloss.NewStyle().Bold(true).Underline(true),
		artist:   lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("245")),
		lyric:    lipgloss.NewStyle(),
		chordRow: lipgloss.NewStyle().Bold(true),
		chords:   make(map[chords.Category]lipgloss.Style, len(palette)),
	}
	for cat, color := range palette {
		t.chords[cat] = lipgloss.NewStyle().Bold(true).Foreground(color)
	}
	return t
}

func (t *Terminal) chordStyle(cat chords.Category) lipgloss.Style {
	if s, ok := t.chords[cat]; ok {
		return s
	}
	return t.chords[chords.CategoryDefault]
}

// Render prints the whole sheet. Sections are separated by a blank line.
func (t *Terminal) Render(sheet Sheet) string {
	var b strings.Builder
	b.WriteString(t.title.Render(sheet.Title))
	if sheet.Artist != "" {
		b.WriteString(" ")
		b.WriteString(t.artist.Render(sheet.Artist))
	}
	b.WriteString("\n\n")

	for i, sec := range sheet.Sections {
		if i > 0 {
			b.WriteString("\n")
		}
		plain := t.lyric
		if sec.Type == chords.SectionChords {
			plain = t.chordRow
		}
		for _, line := range sec.Lines {
			for _, tok := range line.Tokens {
				if tok.Kind == chords.SegmentChord {
					b.WriteString(t.chordStyle(tok.Category).Render(tok.Text))
				} else {
					b.WriteString(plain.Render(tok.Text))
				}
			}
			b.WriteString("\n")
		}
	}
	return b.String()
}

// RenderList prints one line per song with difficulty and tags.
func (t *Terminal) RenderList(songs []songbook.Song) string {
	dim := lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	var b strings.Builder
	for _, song := range songs {
		b.WriteString(t.title.UnsetUnderline().Render(song.Slug))
		b.WriteString("  ")
		b.WriteString(songbook.FormatSongName(song))
		if song.Difficulty != "" {
			b.WriteString(dim.Render(" [" + string(song.Difficulty) + "]"))
		}
		if len(song.Tags) > 0 {
			b.WriteString(dim.Render(" #" + strings.Join(song.Tags, " #")))
		}
		b.WriteString("\n")
	}
	return b.String()
}
