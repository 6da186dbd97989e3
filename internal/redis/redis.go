package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	redisClient "github.com/go-redis/redis/v8"
	"github.com/sukalov/jamsheet/internal/session"
)

// Sessions idle for longer than this are dropped by redis.
const sessionTTL = 14 * 24 * time.Hour

type DBManager struct {
	client *redisClient.Client
}

// Options turns the configured address into client options. A bare host:port
// gets the hosted TLS form the bot is deployed with; full redis:// or
// rediss:// URLs are used as is.
func Options(url, password string) (*redisClient.Options, error) {
	if url == "" {
		return nil, errors.New("redis url is empty")
	}
	if !strings.Contains(url, "://") {
		url = fmt.Sprintf("rediss://default:%s@%s", password, url)
	}
	opt, err := redisClient.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}
	if opt.Password == "" {
		opt.Password = password
	}
	return opt, nil
}

func NewDBManager(url, password string) (*DBManager, error) {
	opt, err := Options(url, password)
	if err != nil {
		return nil, err
	}
	return &DBManager{client: redisClient.NewClient(opt)}, nil
}

func (redis *DBManager) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := redis.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}
	return nil
}

func (redis *DBManager) Close() error {
	return redis.client.Close()
}

// SaveSession stores s as JSON under its chat key and refreshes the TTL.
func (redis *DBManager) SaveSession(ctx context.Context, s session.Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return redis.client.Set(ctx, sessionKey(s.ChatID), data, sessionTTL).Err()
}

// LoadSessions returns every stored session. Entries that vanish or fail to
// decode between the scan and the read are skipped.
func (redis *DBManager) LoadSessions(ctx context.Context) ([]session.Session, error) {
	keys, err := redis.sessionKeys(ctx)
	if err != nil {
		return nil, err
	}
	sessions := make([]session.Session, 0, len(keys))
	for _, key := range keys {
		data, err := redis.client.Get(ctx, key).Bytes()
		if err != nil {
			if err == redisClient.Nil {
				continue
			}
			return nil, err
		}
		var s session.Session
		if err := json.Unmarshal(data, &s); err != nil {
			continue
		}
		sessions = append(sessions, s)
	}
	return sessions, nil
}

func (redis *DBManager) DeleteSession(ctx context.Context, chatID int64) error {
	return redis.client.Del(ctx, sessionKey(chatID)).Err()
}

// ClearSessions deletes every session and reports how many were removed.
func (redis *DBManager) ClearSessions(ctx context.Context) (int64, error) {
	keys, err := redis.sessionKeys(ctx)
	if err != nil {
		return 0, err
	}
	if len(keys) == 0 {
		return 0, nil
	}
	return redis.client.Del(ctx, keys...).Result()
}

func (redis *DBManager) sessionKeys(ctx context.Context) ([]string, error) {
	var keys []string
	iter := redis.client.Scan(ctx, 0, sessionKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan sessions: %w", err)
	}
	return keys, nil
}
