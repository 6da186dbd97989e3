package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sukalov/jamsheet/internal/chords"
	"github.com/sukalov/jamsheet/internal/songbook"
)

type staticStore []songbook.Song

func (s staticStore) AllSongs(ctx context.Context) ([]songbook.Song, error) { return s, nil }
func (s staticStore) SongBySlug(ctx context.Context, slug string) (songbook.Song, error) {
	return songbook.Song{}, songbook.ErrSongNotFound
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	sb := songbook.New(staticStore{
		{Slug: "wonderwall", Title: "Wonderwall", Artist: "Oasis", Difficulty: songbook.DifficultyMedium, Tags: []string{"britpop", "campfire"}, Content: "Em7 G Dsus4 Asus2\nToday is gonna be the day"},
		{Slug: "zombie", Title: "Zombie", Artist: "The Cranberries", Difficulty: songbook.DifficultyEasy, Tags: []string{"campfire"}, Playlist: []string{"friday"}, Content: "Em C G D"},
	})
	if err := sb.Reload(context.Background()); err != nil {
		t.Fatal(err)
	}
	ts := httptest.NewServer(New(sb, chords.DefaultClassifier).Handler())
	t.Cleanup(ts.Close)
	return ts
}

func getJSON(t *testing.T, url string, wantStatus int, v interface{}) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != wantStatus {
		t.Fatalf("GET %s: status %d, want %d", url, resp.StatusCode, wantStatus)
	}
	if v != nil {
		if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
			t.Fatalf("GET %s: %v", url, err)
		}
	}
}

func slugs(list []songSummary) string {
	var out []string
	for _, s := range list {
		out = append(out, s.Slug)
	}
	return strings.Join(out, ",")
}

func TestListSongs(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		query string
		want  string
	}{
		{"", "wonderwall,zombie"},
		{"?query=oasis", "wonderwall"},
		{"?tag=campfire", "wonderwall,zombie"},
		{"?tag=campfire&tag=britpop", "wonderwall"},
		{"?difficulty=easy", "zombie"},
		{"?playlist=friday", "zombie"},
		{"?query=nothing", ""},
	}
	for _, tt := range tests {
		var got []songSummary
		getJSON(t, ts.URL+"/api/songs"+tt.query, http.StatusOK, &got)
		if s := slugs(got); s != tt.want {
			t.Errorf("/api/songs%s = %q, want %q", tt.query, s, tt.want)
		}
	}

	getJSON(t, ts.URL+"/api/songs?difficulty=brutal", http.StatusBadRequest, nil)
}

func TestSong(t *testing.T) {
	ts := newTestServer(t)

	var got songResponse
	getJSON(t, ts.URL+"/api/songs/wonderwall", http.StatusOK, &got)
	if got.Title != "Wonderwall" || strings.Join(got.Chords, " ") != "Em7 G Dsus4 Asus2" {
		t.Errorf("song = %+v", got)
	}
	if len(got.Sheet.Sections) != 2 || got.Sheet.Sections[0].Type != chords.SectionChords {
		t.Errorf("sheet sections = %+v", got.Sheet.Sections)
	}
	first := got.Sheet.Sections[0].Lines[0].Tokens[0]
	if first.Text != "Em7" || first.Category != chords.CategorySeventh {
		t.Errorf("first token = %+v", first)
	}

	var e errorResponse
	getJSON(t, ts.URL+"/api/songs/missing", http.StatusNotFound, &e)
	if e.Error == "" {
		t.Error("404 without error message")
	}
}

func TestTagsAndHealth(t *testing.T) {
	ts := newTestServer(t)

	var tags []string
	getJSON(t, ts.URL+"/api/tags", http.StatusOK, &tags)
	if strings.Join(tags, ",") != "britpop,campfire" {
		t.Errorf("tags = %v", tags)
	}

	var health map[string]interface{}
	getJSON(t, ts.URL+"/healthz", http.StatusOK, &health)
	if health["status"] != "ok" || health["songs"] != float64(2) {
		t.Errorf("health = %v", health)
	}
}

func TestChord(t *testing.T) {
	ts := newTestServer(t)

	var got chordResponse
	getJSON(t, ts.URL+"/api/chords/F%23m7/E", http.StatusOK, &got)
	want := chords.Chord{Root: "F", Accidental: "#", Quality: "m", Degree: "7", Bass: "E"}
	if got.Chord != want || got.Category != chords.CategorySeventh {
		t.Errorf("chord = %+v", got)
	}

	getJSON(t, ts.URL+"/api/chords/Hello", http.StatusNotFound, nil)
}

func TestClassify(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Post(ts.URL+"/api/classify", "application/json",
		strings.NewReader(`{"content":"Am F C G\nhello there\n\nbye"}`))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var sections []struct {
		Type  chords.SectionType `json:"type"`
		Lines []struct {
			Text string `json:"text"`
		} `json:"lines"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&sections); err != nil {
		t.Fatal(err)
	}
	if len(sections) != 3 || sections[0].Type != chords.SectionChords || sections[2].Lines[0].Text != "bye" {
		t.Errorf("sections = %+v", sections)
	}

	bad, err := http.Post(ts.URL+"/api/classify", "application/json", strings.NewReader("{"))
	if err != nil {
		t.Fatal(err)
	}
	bad.Body.Close()
	if bad.StatusCode != http.StatusBadRequest {
		t.Errorf("bad body status = %d", bad.StatusCode)
	}
}

func TestCORSPreflight(t *testing.T) {
	ts := newTestServer(t)
	req, _ := http.NewRequest(http.MethodOptions, ts.URL+"/api/songs", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.Header.Get("Access-Control-Allow-Origin") != "*" {
		t.Errorf("missing CORS header: %v", resp.Header)
	}
}
