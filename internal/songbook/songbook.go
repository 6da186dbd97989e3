package songbook

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sukalov/jamsheet/internal/logger"
)

// Songbook is an in-memory snapshot of a Store, refreshed with Reload.
type Songbook struct {
	store  Store
	songs  []Song
	bySlug map[string]int
	mu     sync.RWMutex
}

func New(store Store) *Songbook {
	return &Songbook{
		store:  store,
		bySlug: make(map[string]int),
	}
}

// Reload replaces the snapshot with the store's current songs. On error the
// previous snapshot is kept.
func (s *Songbook) Reload(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	songs, err := s.store.AllSongs(ctx)
	if err != nil {
		return fmt.Errorf("failed to load songs: %w", err)
	}

	bySlug := make(map[string]int, len(songs))
	for i, song := range songs {
		bySlug[song.Slug] = i
	}

	s.mu.Lock()
	s.songs = songs
	s.bySlug = bySlug
	s.mu.Unlock()

	logger.Info(fmt.Sprintf("songbook loaded: %d songs", len(songs)))
	return nil
}

// All returns a copy of the snapshot.
func (s *Songbook) All() []Song {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Song(nil), s.songs...)
}

func (s *Songbook) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.songs)
}

func (s *Songbook) FindSongBySlug(slug string) (Song, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.bySlug[slug]
	if !ok {
		return Song{}, false
	}
	return s.songs[i], true
}

// AllSongs and SongBySlug let a Songbook stand in for its Store.
func (s *Songbook) AllSongs(ctx context.Context) ([]Song, error) {
	return s.All(), nil
}

func (s *Songbook) SongBySlug(ctx context.Context, slug string) (Song, error) {
	song, ok := s.FindSongBySlug(slug)
	if !ok {
		return Song{}, ErrSongNotFound
	}
	return song, nil
}

func (s *Songbook) Search(f Filter) []Song {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return FilterSongs(s.songs, f)
}

func (s *Songbook) Tags() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return AllTags(s.songs)
}
