package admin

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sukalov/jamsheet/internal/bot"
	"github.com/sukalov/jamsheet/internal/bot/common"
	"github.com/sukalov/jamsheet/internal/chords"
	"github.com/sukalov/jamsheet/internal/logger"
	"github.com/sukalov/jamsheet/internal/lyrics"
	"github.com/sukalov/jamsheet/internal/songbook"
	"github.com/sukalov/jamsheet/internal/state"
	"go.uber.org/zap"
)

const (
	callbackConfirmClear = "confirm_clear_queues"
	callbackAbortClear   = "abort_clear_queues"
)

// Importer turns a chord site URL into a song.
type Importer interface {
	Import(ctx context.Context, rawURL string) (*lyrics.ImportResult, error)
}

// SongSaver persists an imported song where the songbook reads from.
type SongSaver interface {
	SaveSong(ctx context.Context, song songbook.Song) error
}

// SongStats reads the per-song open counter.
type SongStats interface {
	SongCounter(ctx context.Context, slug string) (int, error)
}

// Deps are the collaborators of the admin bot. Importer, Saver, Stats and
// PlayCounter may be nil, which disables what needs them.
type Deps struct {
	Songs       *songbook.Songbook
	Sessions    *state.StateManager
	Admins      []string
	Importer    Importer
	Saver       SongSaver
	Stats       SongStats
	PlayCounter state.PlayCounter
	Classifier  chords.Classifier
}

type AdminHandlers struct {
	Deps

	admins map[string]bool

	mu              sync.Mutex
	clearInProgress bool
	awaitingSearch  map[int64]bool
}

func NewAdminHandlers(deps Deps) *AdminHandlers {
	admins := make(map[string]bool)
	for _, username := range deps.Admins {
		admins[strings.TrimPrefix(username, "@")] = true
	}

	return &AdminHandlers{
		Deps:           deps,
		admins:         admins,
		awaitingSearch: make(map[int64]bool),
	}
}

func (h *AdminHandlers) isAdmin(user *tgbotapi.User) bool {
	return user != nil && h.admins[user.UserName]
}

// adminOnly wraps a handler so that only configured admins reach it.
func (h *AdminHandlers) adminOnly(next bot.Handler) bot.Handler {
	return func(b *bot.Bot, update tgbotapi.Update) error {
		var (
			user   *tgbotapi.User
			chatID int64
		)
		switch {
		case update.Message != nil:
			user, chatID = update.Message.From, update.Message.Chat.ID
		case update.CallbackQuery != nil:
			user, chatID = update.CallbackQuery.From, update.CallbackQuery.Message.Chat.ID
		default:
			return nil
		}
		if !h.isAdmin(user) {
			return b.SendMessage(chatID, "вы не админ")
		}
		return next(b, update)
	}
}

func (h *AdminHandlers) reloadHandler(b *bot.Bot, update tgbotapi.Update) error {
	chatID := update.Message.Chat.ID
	if err := h.Songs.Reload(context.Background()); err != nil {
		logger.Error("songbook reload failed", zap.Error(err))
		return b.SendMessage(chatID, "не получилось перечитать песни: "+err.Error())
	}
	return b.SendMessage(chatID, fmt.Sprintf("песни перечитаны: %d", h.Songs.Len()))
}

// importHandler pulls a sheet from a chord site, saves it and reloads the
// songbook.
func (h *AdminHandlers) importHandler(b *bot.Bot, update tgbotapi.Update) error {
	chatID := update.Message.Chat.ID
	if h.Importer == nil || h.Saver == nil {
		return b.SendMessage(chatID, "импорт не настроен")
	}
	rawURL := strings.TrimSpace(update.Message.CommandArguments())
	if rawURL == "" {
		return b.SendMessage(chatID, "пример: /import https://amdm.ru/akkordi/...")
	}

	ctx := context.Background()
	result, err := h.Importer.Import(ctx, rawURL)
	if err != nil {
		logger.Warn("import failed", zap.String("url", rawURL), zap.Error(err))
		return b.SendMessage(chatID, "не получилось импортировать: "+err.Error())
	}
	if err := h.Saver.SaveSong(ctx, result.Song); err != nil {
		return fmt.Errorf("failed to save imported song %s: %w", result.Song.Slug, err)
	}
	if err := h.Songs.Reload(ctx); err != nil {
		logger.Error("songbook reload after import failed", zap.Error(err))
	}

	logger.Success("song imported",
		zap.String("slug", result.Song.Slug),
		zap.String("source", result.Source),
		zap.String("by", update.Message.From.UserName),
	)
	return b.SendMessage(chatID, fmt.Sprintf("добавлена песня %s (%s)", songbook.FormatSongName(result.Song), result.Song.Slug))
}

type sessionView struct {
	ChatID    int64           `json:"chat_id"`
	Username  string          `json:"username"`
	Position  string          `json:"position"`
	Current   string          `json:"current"`
	Filter    songbook.Filter `json:"filter"`
	UpdatedAt string          `json:"updated_at"`
}

// sessionsHandler dumps the open jam sessions as JSON, oldest first.
func (h *AdminHandlers) sessionsHandler(b *bot.Bot, update tgbotapi.Update) error {
	chatID := update.Message.Chat.ID
	sessions := h.Sessions.GetAll()
	if len(sessions) == 0 {
		return b.SendMessage(chatID, "открытых сессий нет")
	}

	moscow := time.FixedZone("Europe/Moscow", 3*60*60)
	views := make([]sessionView, 0, len(sessions))
	for _, s := range sessions {
		current, _ := s.Current()
		views = append(views, sessionView{
			ChatID:    s.ChatID,
			Username:  s.Username,
			Position:  fmt.Sprintf("%d/%d", s.Position+1, s.Len()),
			Current:   current,
			Filter:    s.Filter,
			UpdatedAt: s.UpdatedAt.In(moscow).Format("02.01.2006 15:04"),
		})
	}

	data, err := json.MarshalIndent(views, "", "  ")
	if err != nil {
		return b.SendMessage(chatID, "произошла ошибка при обработке")
	}
	return b.SendMessageWithMarkdown(chatID, fmt.Sprintf("```json\n%s\n```", data), true)
}

func (h *AdminHandlers) clearQueuesHandler(b *bot.Bot, update tgbotapi.Update) error {
	h.mu.Lock()
	h.clearInProgress = true
	h.mu.Unlock()

	return b.SendMessageWithButtons(update.Message.Chat.ID,
		fmt.Sprintf("все очереди (%d) будут безвозвратно удалены! уверены?", h.Sessions.Len()),
		tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("удаляем", callbackConfirmClear),
				tgbotapi.NewInlineKeyboardButtonData("отмена", callbackAbortClear),
			),
		),
	)
}

// takeClear reports whether a clear was pending and resets it.
func (h *AdminHandlers) takeClear() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	pending := h.clearInProgress
	h.clearInProgress = false
	return pending
}

func (h *AdminHandlers) confirmHandler(b *bot.Bot, update tgbotapi.Update) error {
	chatID := update.CallbackQuery.Message.Chat.ID
	if !h.takeClear() {
		return b.SendMessage(chatID, "кнопка уже не работает")
	}

	removed, err := h.Sessions.Clear(context.Background())
	if err != nil {
		logger.Error("failed to clear stored sessions", zap.Error(err))
		return b.SendMessage(chatID, "очереди очищены, но хранилище ответило ошибкой")
	}
	logger.Success(fmt.Sprintf("jam queues cleared by %s", update.CallbackQuery.From.UserName), zap.Int64("removed", removed))
	return b.SendMessage(chatID, "очереди очищены")
}

func (h *AdminHandlers) abortHandler(b *bot.Bot, update tgbotapi.Update) error {
	chatID := update.CallbackQuery.Message.Chat.ID
	if !h.takeClear() {
		return b.SendMessage(chatID, "кнопка уже не работает")
	}
	return b.SendMessage(chatID, "ок. отменили")
}

// Handlers wires the admin bot routes. Everything except the shared
// commands is limited to admins.
func (h *AdminHandlers) Handlers() bot.Handlers {
	commandHandlers := common.GetCommandHandlers(h.Songs, h.PlayCounter)
	commandHandlers["reload"] = h.adminOnly(h.reloadHandler)
	commandHandlers["import"] = h.adminOnly(h.importHandler)
	commandHandlers["sessions"] = h.adminOnly(h.sessionsHandler)
	commandHandlers["clear_queues"] = h.adminOnly(h.clearQueuesHandler)
	commandHandlers["findsong"] = h.adminOnly(h.findSongHandler)

	callbackHandlers := common.GetCallbackHandlers()
	callbackHandlers[callbackConfirmClear] = h.adminOnly(h.confirmHandler)
	callbackHandlers[callbackAbortClear] = h.adminOnly(h.abortHandler)
	callbackHandlers[infoCallbackPrefix] = h.adminOnly(h.infoCallback)

	return bot.Handlers{
		Commands:  commandHandlers,
		Messages:  []bot.Handler{h.adminOnly(h.messageHandler)},
		Callbacks: callbackHandlers,
	}
}
