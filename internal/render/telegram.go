package render

import (
	"html"
	"strings"
	"unicode/utf16"

	"github.com/sukalov/jamsheet/internal/chords"
	"github.com/sukalov/jamsheet/internal/songbook"
)

// TelegramMessageLimit is the longest text Telegram accepts in one message,
// in UTF-16 code units.
const TelegramMessageLimit = 4096

const (
	preOpen  = "<pre>"
	preClose = "</pre>"
)

// TelegramHTML renders a sheet as Telegram HTML messages. Chord sections are
// preformatted so their columns line up; lyric lines keep inline chords in
// bold, since Telegram drops bold inside pre. Messages break on section
// boundaries where possible, then between lines, then between words, and no
// message is longer than limit UTF-16 code units. Every message is well
// formed on its own. The first message is always the title header.
func TelegramHTML(sheet Sheet, limit int) []string {
	if limit <= 0 {
		limit = TelegramMessageLimit
	}

	header := "<b>" + html.EscapeString(sheet.Title) + "</b>"
	if sheet.Artist != "" {
		header += "\n<i>" + html.EscapeString(sheet.Artist) + "</i>"
	}

	var (
		messages []string
		current  strings.Builder
		size     int
	)
	flush := func() {
		if size == 0 {
			return
		}
		messages = append(messages, current.String())
		current.Reset()
		size = 0
	}
	add := func(fragment, sep string) {
		n := utf16Len(fragment)
		if size > 0 && size+utf16Len(sep)+n > limit {
			flush()
		}
		if size > 0 {
			current.WriteString(sep)
			size += utf16Len(sep)
		}
		current.WriteString(fragment)
		size += n
	}

	for i, sec := range sheet.Sections {
		for j, fragment := range sectionFragments(sec, limit) {
			sep := "\n"
			if i > 0 && j == 0 {
				sep = "\n\n"
			}
			add(fragment, sep)
		}
	}
	flush()

	return append([]string{header}, messages...)
}

// sectionFragments renders sec as well-formed HTML fragments, each at most
// limit code units long.
func sectionFragments(sec Section, limit int) []string {
	pre := sec.Type == chords.SectionChords
	budget := limit
	if pre {
		budget -= utf16Len(preOpen) + utf16Len(preClose)
	}

	var lines []string
	for _, line := range sec.Lines {
		lines = append(lines, packUnits(lineUnits(line, pre, budget), "", budget)...)
	}

	fragments := packUnits(lines, "\n", budget)
	if pre {
		for i, f := range fragments {
			fragments[i] = preOpen + f + preClose
		}
	}
	return fragments
}

// lineUnits cuts a line into the smallest pieces a message may break
// between: chord tokens and words. Each unit is escaped on its own, so no
// break lands inside an entity or a tag.
func lineUnits(line Line, pre bool, budget int) []string {
	if pre || len(line.Tokens) == 0 {
		return textUnits(line.Text, budget)
	}
	var units []string
	for _, tok := range line.Tokens {
		if tok.Kind == chords.SegmentChord {
			unit := "<b>" + html.EscapeString(tok.Text) + "</b>"
			if utf16Len(unit) <= budget {
				units = append(units, unit)
				continue
			}
		}
		units = append(units, textUnits(tok.Text, budget)...)
	}
	return units
}

func textUnits(text string, budget int) []string {
	var units []string
	for _, word := range strings.SplitAfter(text, " ") {
		if word == "" {
			continue
		}
		unit := html.EscapeString(word)
		if utf16Len(unit) <= budget {
			units = append(units, unit)
			continue
		}
		units = append(units, splitRunes(word, budget)...)
	}
	return units
}

// splitRunes escapes a word too long for one message in pieces of at most
// budget code units. Every piece holds at least one rune.
func splitRunes(word string, budget int) []string {
	var (
		pieces []string
		piece  strings.Builder
		size   int
	)
	for _, r := range word {
		unit := html.EscapeString(string(r))
		n := utf16Len(unit)
		if size > 0 && size+n > budget {
			pieces = append(pieces, piece.String())
			piece.Reset()
			size = 0
		}
		piece.WriteString(unit)
		size += n
	}
	if size > 0 {
		pieces = append(pieces, piece.String())
	}
	return pieces
}

// packUnits greedily joins units with sep into chunks of at most budget code
// units. A unit over budget on its own becomes its own chunk.
func packUnits(units []string, sep string, budget int) []string {
	var (
		chunks []string
		chunk  strings.Builder
		size   int
	)
	for _, u := range units {
		n := utf16Len(u)
		if size > 0 && size+utf16Len(sep)+n > budget {
			chunks = append(chunks, chunk.String())
			chunk.Reset()
			size = 0
		}
		if size > 0 {
			chunk.WriteString(sep)
			size += utf16Len(sep)
		}
		chunk.WriteString(u)
		size += n
	}
	if chunk.Len() > 0 {
		chunks = append(chunks, chunk.String())
	}
	return chunks
}

// utf16Len counts s the way Telegram measures message length.
func utf16Len(s string) int {
	n := 0
	for _, r := range s {
		n += utf16.RuneLen(r)
	}
	return n
}

// SongCaption is the one-line HTML label used in lists and queues.
func SongCaption(song songbook.Song) string {
	caption := html.EscapeString(songbook.FormatSongName(song))
	if song.Difficulty != "" {
		caption += " <i>(" + string(song.Difficulty) + ")</i>"
	}
	return caption
}
