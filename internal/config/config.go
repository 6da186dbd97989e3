package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sukalov/jamsheet/internal/chords"
	"github.com/sukalov/jamsheet/internal/logger"
)

type Config struct {
	SongsDir string

	// Database. A "file:" URL opens a local SQLite file instead of Turso.
	DatabaseURL       string
	DatabaseAuthToken string

	RedisURL      string
	RedisPassword string

	BotToken      string
	AdminBotToken string
	Admins        []string
	LogChannelID  int64

	LogLevel string
	LogFile  string

	HTTPAddr string

	ChordDensityThreshold float64
	MinProgressionChords  int
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return fallback
}

// getEnvList splits a comma-separated variable, dropping blanks.
func getEnvList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Load reads configuration from the environment, after loading .env if one
// exists. Existing variables win over .env entries.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, relying on environment variables and defaults")
	}

	return &Config{
		SongsDir:              getEnv("SONGS_DIR", "content/songs"),
		DatabaseURL:           getEnv("TURSO_DATABASE_URL", "file:jamsheet.db"),
		DatabaseAuthToken:     os.Getenv("TURSO_AUTH_TOKEN"),
		RedisURL:              os.Getenv("REDIS_URL"),
		RedisPassword:         os.Getenv("REDIS_PASSWORD"),
		BotToken:              os.Getenv("BOT_TOKEN"),
		AdminBotToken:         os.Getenv("ADMIN_BOT_TOKEN"),
		Admins:                getEnvList("ADMINS"),
		LogChannelID:          getEnvInt64("LOG_CHANNEL_ID", 0),
		LogLevel:              getEnv("LOG_LEVEL", "info"),
		LogFile:               os.Getenv("LOG_FILE"),
		HTTPAddr:              getEnv("HTTP_ADDR", ":8080"),
		ChordDensityThreshold: getEnvFloat("CHORD_DENSITY_THRESHOLD", chords.DefaultDensityThreshold),
		MinProgressionChords:  getEnvInt("MIN_PROGRESSION_CHORDS", chords.DefaultMinProgressionChords),
	}
}

// Classifier is the line classifier tuned by this configuration.
func (c *Config) Classifier() chords.Classifier {
	return chords.Classifier{
		DensityThreshold:     c.ChordDensityThreshold,
		MinProgressionChords: c.MinProgressionChords,
	}
}

func (c *Config) Logger() logger.Config {
	return logger.Config{
		Level:      c.LogLevel,
		OutputPath: c.LogFile,
		MaxSize:    20,
		MaxBackups: 5,
		MaxAge:     30,
		Compress:   true,
	}
}
