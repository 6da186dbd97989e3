package server

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sukalov/jamsheet/internal/chords"
	"github.com/sukalov/jamsheet/internal/logger"
	"github.com/sukalov/jamsheet/internal/render"
	"github.com/sukalov/jamsheet/internal/songbook"
	"go.uber.org/zap"
)

const maxClassifyBody = 1 << 20

type songSummary struct {
	Slug       string              `json:"slug"`
	Title      string              `json:"title"`
	Artist     string              `json:"artist,omitempty"`
	Difficulty songbook.Difficulty `json:"difficulty,omitempty"`
	Tags       []string            `json:"tags"`
	Playlist   []string            `json:"playlist"`
}

func summarize(song songbook.Song) songSummary {
	return songSummary{
		Slug:       song.Slug,
		Title:      song.Title,
		Artist:     song.Artist,
		Difficulty: song.Difficulty,
		Tags:       nonNil(song.Tags),
		Playlist:   nonNil(song.Playlist),
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

type songResponse struct {
	songbook.Song
	Chords []string     `json:"chords"`
	Sheet  render.Sheet `json:"sheet"`
}

type chordResponse struct {
	Chord    chords.Chord    `json:"chord"`
	Category chords.Category `json:"category"`
}

type classifyRequest struct {
	Content string `json:"content"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("failed to write response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"songs":  s.songs.Len(),
	})
}

// listSongsHandler filters by ?query=, ?difficulty=, ?playlist= and any
// number of ?tag= parameters. A song must carry every tag given.
func (s *Server) listSongsHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := songbook.Filter{
		Query:    q.Get("query"),
		Tags:     q["tag"],
		Playlist: q.Get("playlist"),
	}
	if raw := q.Get("difficulty"); raw != "" {
		d, err := songbook.ParseDifficulty(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		filter.Difficulty = d
	}

	songs := s.songs.Search(filter)
	out := make([]songSummary, 0, len(songs))
	for _, song := range songs {
		out = append(out, summarize(song))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) songHandler(w http.ResponseWriter, r *http.Request) {
	slug := mux.Vars(r)["slug"]
	song, found := s.songs.FindSongBySlug(slug)
	if !found {
		writeError(w, http.StatusNotFound, songbook.ErrSongNotFound.Error())
		return
	}

	sheet := render.BuildSheet(song, s.classifier)
	writeJSON(w, http.StatusOK, songResponse{
		Song:   song,
		Chords: nonNil(sheet.Chords()),
		Sheet:  sheet,
	})
}

func (s *Server) tagsHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, nonNil(s.songs.Tags()))
}

func (s *Server) chordHandler(w http.ResponseWriter, r *http.Request) {
	token := mux.Vars(r)["chord"]
	chord, ok := chords.Parse(token)
	if !ok {
		writeError(w, http.StatusNotFound, "not a chord: "+token)
		return
	}
	writeJSON(w, http.StatusOK, chordResponse{Chord: chord, Category: chords.DisplayCategory(token)})
}

// classifyHandler classifies and tokenizes a posted song body without
// storing it.
func (s *Server) classifyHandler(w http.ResponseWriter, r *http.Request) {
	var req classifyRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxClassifyBody)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	writeJSON(w, http.StatusOK, render.RenderSong(req.Content, s.classifier))
}
