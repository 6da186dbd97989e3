package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sukalov/jamsheet/internal/logger"
	"go.uber.org/zap"
)

var ErrPlayerNotFound = errors.New("player not found")

type Player struct {
	ChatID      int64
	Username    sql.NullString
	TgName      sql.NullString
	AddedAt     time.Time
	SongsOpened int
}

type PlayerStore struct {
	db *sql.DB
}

func NewPlayerStore(database *sql.DB) *PlayerStore {
	return &PlayerStore{db: database}
}

// RegisterPlayer inserts the chat the first time it talks to the bot and
// reports whether it was new.
func (s *PlayerStore) RegisterPlayer(ctx context.Context, chatID int64, username, tgName string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var exists bool
	checkQuery := `SELECT EXISTS(SELECT 1 FROM players WHERE chat_id = ?)`
	if err := s.db.QueryRowContext(ctx, checkQuery, chatID).Scan(&exists); err != nil {
		return false, fmt.Errorf("error checking player existence: %w", err)
	}
	if exists {
		return false, nil
	}

	insertQuery := `
		INSERT INTO players (
			chat_id,
			username,
			tg_name,
			added_at,
			songs_opened
		) VALUES (?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, insertQuery,
		chatID,
		sql.NullString{String: username, Valid: username != ""},
		sql.NullString{String: tgName, Valid: tgName != ""},
		time.Now().Unix(),
		0,
	)
	if err != nil {
		return false, fmt.Errorf("failed to insert new player: %w", err)
	}

	logger.Info("new player registered", zap.Int64("chat_id", chatID), zap.String("username", username))
	return true, nil
}

func (s *PlayerStore) GetPlayerByChatID(ctx context.Context, chatID int64) (Player, error) {
	var (
		p       Player
		addedAt int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT chat_id, username, tg_name, added_at, songs_opened FROM players WHERE chat_id = ?`, chatID,
	).Scan(&p.ChatID, &p.Username, &p.TgName, &addedAt, &p.SongsOpened)
	if errors.Is(err, sql.ErrNoRows) {
		return Player{}, ErrPlayerNotFound
	}
	if err != nil {
		return Player{}, fmt.Errorf("failed to load player: %w", err)
	}
	p.AddedAt = time.Unix(addedAt, 0)
	return p, nil
}

func (s *PlayerStore) IncrementSongsOpened(ctx context.Context, chatID int64) error {
	_, err := s.db.ExecContext(ctx, `UPDATE players SET songs_opened = songs_opened + 1 WHERE chat_id = ?`, chatID)
	if err != nil {
		return fmt.Errorf("failed to update player: %w", err)
	}
	return nil
}
