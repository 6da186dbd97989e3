package songbook

import "strings"

// Filter narrows the library. Zero fields match everything.
type Filter struct {
	Query      string     `json:"query,omitempty"`
	Difficulty Difficulty `json:"difficulty,omitempty"`
	// Tags must all be present on a song.
	Tags     []string `json:"tags,omitempty"`
	Playlist string   `json:"playlist,omitempty"`
}

func (f Filter) IsZero() bool {
	return strings.TrimSpace(f.Query) == "" && f.Difficulty == "" && len(f.Tags) == 0 && f.Playlist == ""
}

func (f Filter) Match(song Song) bool {
	if needle := strings.ToLower(strings.TrimSpace(f.Query)); needle != "" {
		if !strings.Contains(strings.ToLower(song.Title), needle) &&
			!strings.Contains(strings.ToLower(song.Artist), needle) {
			return false
		}
	}
	if f.Difficulty != "" && f.Difficulty != "any" && song.Difficulty != f.Difficulty {
		return false
	}
	for _, tag := range f.Tags {
		if !song.HasTag(tag) {
			return false
		}
	}
	if f.Playlist != "" && !song.InPlaylist(f.Playlist) {
		return false
	}
	return true
}

// FilterSongs keeps the songs matching f, preserving order.
func FilterSongs(songs []Song, f Filter) []Song {
	result := make([]Song, 0, len(songs))
	for _, song := range songs {
		if f.Match(song) {
			result = append(result, song)
		}
	}
	return result
}
