package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	mu        sync.RWMutex
	base      *zap.Logger
	channelID int64
	botClient BotClient
)

// BotClient is anything that can post a message to a chat, usually the
// admin Telegram bot.
type BotClient interface {
	SendMessage(chatID int64, text string) error
}

type Config struct {
	Level      string
	OutputPath string
	MaxSize    int
	MaxBackups int
	MaxAge     int
	Compress   bool
}

func parseLevel(level string) zapcore.Level {
	var l zapcore.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return zapcore.InfoLevel
	}
	return l
}

// Init builds the process logger: JSON to stdout and, when OutputPath is set,
// a rotated JSON file.
func Init(cfg Config) error {
	level := parseLevel(cfg.Level)
	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "timestamp",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.RFC3339TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), zapcore.AddSync(os.Stdout), level)
	if cfg.OutputPath != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.OutputPath), 0o755); err != nil {
			return fmt.Errorf("failed to create log directory: %w", err)
		}
		fileWriter := zapcore.AddSync(&lumberjack.Logger{
			Filename:   cfg.OutputPath,
			MaxSize:    cfg.MaxSize,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAge,
			Compress:   cfg.Compress,
		})
		core = zapcore.NewTee(core, zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), fileWriter, level))
	}

	Use(zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1), zap.AddStacktrace(zapcore.ErrorLevel)))
	return nil
}

// Use swaps the underlying zap logger.
func Use(l *zap.Logger) {
	mu.Lock()
	defer mu.Unlock()
	base = l
}

// AttachChannel mirrors Error and Success entries to a Telegram chat.
func AttachChannel(client BotClient, chatID int64) {
	mu.Lock()
	defer mu.Unlock()
	botClient = client
	channelID = chatID
}

func Sync() {
	mu.RLock()
	l := base
	mu.RUnlock()
	if l != nil {
		_ = l.Sync()
	}
}

func Debug(message string, fields ...zap.Field) {
	write(zapcore.DebugLevel, message, fields)
}

func Info(message string, fields ...zap.Field) {
	write(zapcore.InfoLevel, message, fields)
}

func Warn(message string, fields ...zap.Field) {
	write(zapcore.WarnLevel, message, fields)
}

func Error(message string, fields ...zap.Field) {
	write(zapcore.ErrorLevel, message, fields)
	sendToChannel("❌ ERROR", message)
}

func Success(message string, fields ...zap.Field) {
	write(zapcore.InfoLevel, message, append(fields, zap.Bool("success", true)))
	sendToChannel("✅ SUCCESS", message)
}

// LogWithErr logs message at info level when err is nil and as an error
// otherwise.
func LogWithErr(message string, err error) {
	if err == nil {
		Info(message)
		return
	}
	Error(message, zap.Error(err))
}

func write(level zapcore.Level, message string, fields []zap.Field) {
	mu.RLock()
	l := base
	mu.RUnlock()
	if l == nil {
		return
	}
	if ce := l.Check(level, message); ce != nil {
		ce.Write(fields...)
	}
}

func sendToChannel(prefix, message string) {
	mu.RLock()
	client, chatID := botClient, channelID
	mu.RUnlock()
	if client == nil {
		return
	}

	timestamp := time.Now().Format("2006-01-02 15:04:05")
	logMessage := fmt.Sprintf("[%s] %s\n%s", timestamp, prefix, message)

	go func() {
		if err := client.SendMessage(chatID, logMessage); err != nil {
			fmt.Fprintf(os.Stderr, "failed to send log to channel: %v\nlog was: %s\n", err, logMessage)
		}
	}()
}
