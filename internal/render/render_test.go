package render

import (
	"html"
	"reflect"
	"regexp"
	"strings"
	"testing"
	"unicode/utf16"

	"github.com/sukalov/jamsheet/internal/chords"
	"github.com/sukalov/jamsheet/internal/songbook"
)

var wonderwall = songbook.Song{
	Slug:       "wonderwall",
	Title:      "Wonderwall",
	Artist:     "Oasis",
	Difficulty: songbook.DifficultyEasy,
	Content:    "Em7 G Dsus4 Asus2\nToday is gonna be the day\n\nC D Em\nAnd all the roads <we> walk",
}

func TestBuildSheet(t *testing.T) {
	sheet := BuildSheet(wonderwall, chords.DefaultClassifier)
	if sheet.Slug != "wonderwall" || sheet.Artist != "Oasis" {
		t.Fatalf("sheet header = %+v", sheet)
	}

	var types []chords.SectionType
	for _, sec := range sheet.Sections {
		types = append(types, sec.Type)
	}
	want := []chords.SectionType{chords.SectionChords, chords.SectionLyrics, chords.SectionChords, chords.SectionLyrics}
	if !reflect.DeepEqual(types, want) {
		t.Fatalf("section types = %v, want %v", types, want)
	}

	first := sheet.Sections[0].Lines[0]
	if first.Text != "Em7 G Dsus4 Asus2" {
		t.Errorf("line text = %q", first.Text)
	}
	var cats []chords.Category
	for _, tok := range first.Tokens {
		if tok.Kind == chords.SegmentChord {
			cats = append(cats, tok.Category)
		} else if tok.Category != "" {
			t.Errorf("text token %q has category %q", tok.Text, tok.Category)
		}
	}
	wantCats := []chords.Category{chords.CategorySeventh, "G", chords.CategorySuspended, chords.CategorySuspended}
	if !reflect.DeepEqual(cats, wantCats) {
		t.Errorf("categories = %v, want %v", cats, wantCats)
	}
}

func TestRenderSongTokenizesLyricLines(t *testing.T) {
	sections := RenderSong("Sing it in Am tonight", chords.DefaultClassifier)
	if len(sections) != 1 || sections[0].Type != chords.SectionLyrics {
		t.Fatalf("sections = %+v", sections)
	}
	var found bool
	for _, tok := range sections[0].Lines[0].Tokens {
		if tok.Kind == chords.SegmentChord && tok.Text == "Am" && tok.Category == "Am" {
			found = true
		}
	}
	if !found {
		t.Error("chord inside a lyric line was not highlighted")
	}
}

func TestRenderSongEmpty(t *testing.T) {
	if got := RenderSong("\n\n", chords.DefaultClassifier); len(got) != 0 {
		t.Errorf("RenderSong(blank) = %+v", got)
	}
}

func TestSheetChords(t *testing.T) {
	sheet := BuildSheet(wonderwall, chords.DefaultClassifier)
	want := []string{"Em7", "G", "Dsus4", "Asus2", "C", "D", "Em"}
	if got := sheet.Chords(); !reflect.DeepEqual(got, want) {
		t.Errorf("Chords() = %v, want %v", got, want)
	}
}

func TestTerminalRender(t *testing.T) {
	out := NewTerminal().Render(BuildSheet(wonderwall, chords.DefaultClassifier))
	for _, want := range []string{"Wonderwall", "Oasis", "Dsus4", "Today is gonna be the day"} {
		if !strings.Contains(out, want) {
			t.Errorf("terminal output is missing %q:\n%s", want, out)
		}
	}
}

func TestTerminalRenderList(t *testing.T) {
	out := NewTerminal().RenderList([]songbook.Song{{Slug: "wonderwall", Title: "Wonderwall", Artist: "Oasis", Difficulty: songbook.DifficultyEasy, Tags: []string{"britpop"}}})
	for _, want := range []string{"wonderwall", "Oasis - Wonderwall", "easy", "#britpop"} {
		if !strings.Contains(out, want) {
			t.Errorf("list output is missing %q: %s", want, out)
		}
	}
}

func TestTelegramHTML(t *testing.T) {
	msgs := TelegramHTML(BuildSheet(wonderwall, chords.DefaultClassifier), 0)
	if len(msgs) != 2 {
		t.Fatalf("got %d messages, want header and body", len(msgs))
	}
	if msgs[0] != "<b>Wonderwall</b>\n<i>Oasis</i>" {
		t.Errorf("header = %q", msgs[0])
	}
	body := msgs[1]
	if !strings.HasPrefix(body, "<pre>Em7 G Dsus4 Asus2</pre>\n\nToday is gonna be the day") {
		t.Errorf("body = %q", body)
	}
	if !strings.Contains(body, "&lt;we&gt;") {
		t.Errorf("body was not escaped: %q", body)
	}
}

func TestTelegramHTMLBoldsInlineChordsOutsidePre(t *testing.T) {
	song := songbook.Song{Title: "Inline", Content: "Am F C G\nSing Am along with me now"}
	msgs := TelegramHTML(BuildSheet(song, chords.DefaultClassifier), 0)
	if len(msgs) != 2 {
		t.Fatalf("messages = %q", msgs)
	}
	body := msgs[1]
	if !strings.Contains(body, "<pre>Am F C G</pre>") {
		t.Errorf("chord section not preformatted: %q", body)
	}
	if !strings.Contains(body, "Sing <b>Am</b> along") {
		t.Errorf("inline chord not bold: %q", body)
	}
	checkTelegramMessages(t, msgs[1:], TelegramMessageLimit)
}

func TestTelegramHTMLSplitsOnSections(t *testing.T) {
	var content strings.Builder
	for i := 0; i < 40; i++ {
		content.WriteString("Am F C G\n")
		content.WriteString(strings.Repeat("la ", 20) + "\n\n")
	}
	sheet := BuildSheet(songbook.Song{Title: "Long"}, chords.DefaultClassifier)
	sheet.Sections = RenderSong(content.String(), chords.DefaultClassifier)

	const limit = 500
	msgs := TelegramHTML(sheet, limit)
	if len(msgs) < 3 {
		t.Fatalf("expected the sheet to be split, got %d messages", len(msgs))
	}
	checkTelegramMessages(t, msgs[1:], limit)
	for i, m := range msgs[1:] {
		if strings.HasPrefix(m, "\n") || strings.HasSuffix(m, "\n") {
			t.Errorf("message %d has a dangling separator: %q", i, m)
		}
	}
}

func TestTelegramHTMLSplitsOverlongLine(t *testing.T) {
	tests := []struct {
		name    string
		content string
		limit   int
	}{
		{"plain words", strings.Repeat("la ", 2000), 0},
		{"chords and entities", strings.Repeat("Am <la> & na ", 600), 300},
		{"single long word", strings.Repeat("&", 5000), 0},
		{"chord progression", strings.Repeat("Am F C G ", 700), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sheet := BuildSheet(songbook.Song{Title: "One line", Content: tt.content}, chords.DefaultClassifier)
			msgs := TelegramHTML(sheet, tt.limit)
			if len(msgs) < 3 {
				t.Fatalf("expected the line to be split, got %d messages", len(msgs))
			}
			limit := tt.limit
			if limit == 0 {
				limit = TelegramMessageLimit
			}
			checkTelegramMessages(t, msgs[1:], limit)

			var text strings.Builder
			for _, m := range msgs[1:] {
				text.WriteString(html.UnescapeString(tagPattern.ReplaceAllString(m, "")))
			}
			got := strings.ReplaceAll(strings.ReplaceAll(text.String(), "\n", ""), " ", "")
			want := strings.ReplaceAll(tt.content, " ", "")
			if got != want {
				t.Errorf("split text lost content: got %d chars, want %d", len(got), len(want))
			}
		})
	}
}

func TestTelegramHTMLCountsUTF16(t *testing.T) {
	sheet := BuildSheet(songbook.Song{Title: "Emoji", Content: strings.Repeat("🎸 ", 3000)}, chords.DefaultClassifier)
	msgs := TelegramHTML(sheet, 0)
	if len(msgs) < 3 {
		t.Fatalf("expected the line to be split, got %d messages", len(msgs))
	}
	checkTelegramMessages(t, msgs[1:], TelegramMessageLimit)
}

var (
	tagPattern    = regexp.MustCompile(`</?(b|pre)>`)
	entityPattern = regexp.MustCompile(`&(amp|lt|gt|#34|#39);`)
)

// checkTelegramMessages asserts that every message fits limit and is well
// formed HTML on its own.
func checkTelegramMessages(t *testing.T, msgs []string, limit int) {
	t.Helper()
	for i, m := range msgs {
		if n := len(utf16.Encode([]rune(m))); n > limit {
			t.Errorf("message %d has %d code units, limit %d", i, n, limit)
		}
		if strings.Count(m, "<b>") != strings.Count(m, "</b>") {
			t.Errorf("message %d has unbalanced bold tags", i)
		}
		if strings.Count(m, "<pre>") != strings.Count(m, "</pre>") {
			t.Errorf("message %d has unbalanced pre tags", i)
		}
		for _, block := range strings.Split(m, "<pre>")[1:] {
			end := strings.Index(block, "</pre>")
			if end < 0 {
				continue
			}
			if inner := block[:end]; strings.Contains(inner, "<b>") {
				t.Errorf("message %d nests bold inside pre: %q", i, inner)
			}
		}
		if stray := strings.Count(entityPattern.ReplaceAllString(m, ""), "&"); stray != 0 {
			t.Errorf("message %d has %d broken entities", i, stray)
		}
	}
}

func TestSongCaption(t *testing.T) {
	got := SongCaption(songbook.Song{Title: "Rock & Roll", Artist: "Led Zeppelin", Difficulty: songbook.DifficultyHard})
	if got != "Led Zeppelin - Rock &amp; Roll <i>(hard)</i>" {
		t.Errorf("SongCaption() = %q", got)
	}
}
