package redis

import (
	"context"
	"fmt"
	"strconv"

	redisClient "github.com/go-redis/redis/v8"
)

const (
	sessionKeyPrefix = "session:"
	playCountsKey    = "play_counts"
)

func sessionKey(chatID int64) string {
	return fmt.Sprintf("%s%d", sessionKeyPrefix, chatID)
}

func (redis *DBManager) IncrementPlayCount(ctx context.Context, slug string) error {
	err := redis.client.HIncrBy(ctx, playCountsKey, slug, 1).Err()
	if err != nil {
		return fmt.Errorf("failed to increment play count for %s: %v", slug, err)
	}
	return nil
}

// PlayCounts retrieves how many times each song was opened.
func (redis *DBManager) PlayCounts(ctx context.Context) (map[string]int, error) {
	result := make(map[string]int)
	raw, err := redis.client.HGetAll(ctx, playCountsKey).Result()
	if err != nil {
		if err == redisClient.Nil {
			return result, nil
		}
		return nil, err
	}
	for slug, count := range raw {
		countInt, err := strconv.Atoi(count)
		if err != nil {
			continue // skip invalid counts
		}
		result[slug] = countInt
	}
	return result, nil
}
