package songbook

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
)

var ErrSongNotFound = errors.New("song not found")

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// ParseDifficulty accepts easy, medium or hard in any case. Empty input and
// "any" return an empty Difficulty.
func ParseDifficulty(s string) (Difficulty, error) {
	switch d := Difficulty(strings.ToLower(strings.TrimSpace(s))); d {
	case "", "any":
		return "", nil
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return d, nil
	default:
		return "", fmt.Errorf("unknown difficulty %q", s)
	}
}

type Song struct {
	Slug       string     `json:"slug"`
	Title      string     `json:"title"`
	Artist     string     `json:"artist,omitempty"`
	Difficulty Difficulty `json:"difficulty,omitempty"`
	Tags       []string   `json:"tags"`
	Playlist   []string   `json:"playlist"`
	Content    string     `json:"content"`
}

func (s Song) HasTag(tag string) bool {
	for _, t := range s.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

func (s Song) InPlaylist(name string) bool {
	for _, p := range s.Playlist {
		if p == name {
			return true
		}
	}
	return false
}

// Store is where songs live. SongBySlug returns ErrSongNotFound for an
// unknown slug.
type Store interface {
	AllSongs(ctx context.Context) ([]Song, error)
	SongBySlug(ctx context.Context, slug string) (Song, error)
}

func FormatSongName(song Song) string {
	if song.Artist == "" {
		return song.Title
	}
	return strings.TrimSpace(song.Artist + " - " + song.Title)
}

// AllTags returns the sorted set of tags used across songs.
func AllTags(songs []Song) []string {
	seen := make(map[string]struct{})
	for _, song := range songs {
		for _, tag := range song.Tags {
			seen[tag] = struct{}{}
		}
	}
	tags := make([]string, 0, len(seen))
	for tag := range seen {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}
