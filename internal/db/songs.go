package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sukalov/jamsheet/internal/logger"
	"github.com/sukalov/jamsheet/internal/songbook"
)

// SongStore keeps songs in the songs table. It satisfies songbook.Store.
type SongStore struct {
	db *sql.DB
}

func NewSongStore(database *sql.DB) *SongStore {
	return &SongStore{db: database}
}

const songColumns = `slug, title, artist, difficulty, tags, playlist, content`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSong(row rowScanner) (songbook.Song, error) {
	var (
		song                 songbook.Song
		artist, difficulty   sql.NullString
		tagsJSON, playlistJS string
	)
	if err := row.Scan(&song.Slug, &song.Title, &artist, &difficulty, &tagsJSON, &playlistJS, &song.Content); err != nil {
		return songbook.Song{}, err
	}
	song.Artist = artist.String
	song.Difficulty = songbook.Difficulty(difficulty.String)
	if err := json.Unmarshal([]byte(tagsJSON), &song.Tags); err != nil {
		return songbook.Song{}, fmt.Errorf("bad tags for %s: %w", song.Slug, err)
	}
	if err := json.Unmarshal([]byte(playlistJS), &song.Playlist); err != nil {
		return songbook.Song{}, fmt.Errorf("bad playlist for %s: %w", song.Slug, err)
	}
	if song.Tags == nil {
		song.Tags = []string{}
	}
	if song.Playlist == nil {
		song.Playlist = []string{}
	}
	return song, nil
}

func (s *SongStore) AllSongs(ctx context.Context) ([]songbook.Song, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+songColumns+" FROM songs ORDER BY slug")
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	defer rows.Close()

	var songs []songbook.Song
	for rows.Next() {
		song, err := scanSong(rows)
		if err != nil {
			logger.LogWithErr("error scanning song row", err)
			continue
		}
		songs = append(songs, song)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during rows iteration: %w", err)
	}
	return songs, nil
}

func (s *SongStore) SongBySlug(ctx context.Context, slug string) (songbook.Song, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+songColumns+" FROM songs WHERE slug = ?", slug)
	song, err := scanSong(row)
	if errors.Is(err, sql.ErrNoRows) {
		return songbook.Song{}, songbook.ErrSongNotFound
	}
	if err != nil {
		return songbook.Song{}, fmt.Errorf("failed to load song %s: %w", slug, err)
	}
	return song, nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func upsertSong(ctx context.Context, ex execer, song songbook.Song) error {
	tags, err := json.Marshal(nonNil(song.Tags))
	if err != nil {
		return err
	}
	playlist, err := json.Marshal(nonNil(song.Playlist))
	if err != nil {
		return err
	}

	query := `
		INSERT INTO songs (` + songColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(slug) DO UPDATE SET
			title = excluded.title,
			artist = excluded.artist,
			difficulty = excluded.difficulty,
			tags = excluded.tags,
			playlist = excluded.playlist,
			content = excluded.content
	`
	_, err = ex.ExecContext(ctx, query,
		song.Slug,
		song.Title,
		sql.NullString{String: song.Artist, Valid: song.Artist != ""},
		sql.NullString{String: string(song.Difficulty), Valid: song.Difficulty != ""},
		string(tags),
		string(playlist),
		song.Content,
	)
	if err != nil {
		return fmt.Errorf("failed to save song %s: %w", song.Slug, err)
	}
	return nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func (s *SongStore) SaveSong(ctx context.Context, song songbook.Song) error {
	return upsertSong(ctx, s.db, song)
}

// Sync makes the table hold exactly songs: rows are upserted and slugs that
// are no longer present are deleted. Play counters survive.
func (s *SongStore) Sync(ctx context.Context, songs []songbook.Song) (removed int64, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin sync: %w", err)
	}
	defer tx.Rollback()

	slugs := make([]any, 0, len(songs))
	for _, song := range songs {
		if err := upsertSong(ctx, tx, song); err != nil {
			return 0, err
		}
		slugs = append(slugs, song.Slug)
	}

	query := "DELETE FROM songs"
	if len(slugs) > 0 {
		query += " WHERE slug NOT IN (?" + strings.Repeat(", ?", len(slugs)-1) + ")"
	}
	result, err := tx.ExecContext(ctx, query, slugs...)
	if err != nil {
		return 0, fmt.Errorf("failed to prune songs: %w", err)
	}
	if removed, err = result.RowsAffected(); err != nil {
		return 0, fmt.Errorf("failed to check rows affected: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit sync: %w", err)
	}
	return removed, nil
}

func (s *SongStore) IncrementSongCounter(ctx context.Context, slug string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	result, err := s.db.ExecContext(ctx, `UPDATE songs SET counter = counter + 1 WHERE slug = ?`, slug)
	if err != nil {
		return fmt.Errorf("failed to increment song counter: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return songbook.ErrSongNotFound
	}
	return nil
}

func (s *SongStore) SongCounter(ctx context.Context, slug string) (int, error) {
	var counter int
	err := s.db.QueryRowContext(ctx, `SELECT counter FROM songs WHERE slug = ?`, slug).Scan(&counter)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, songbook.ErrSongNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read song counter: %w", err)
	}
	return counter, nil
}
