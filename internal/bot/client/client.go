package client

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sukalov/jamsheet/internal/bot"
	"github.com/sukalov/jamsheet/internal/bot/common"
	"github.com/sukalov/jamsheet/internal/chords"
	"github.com/sukalov/jamsheet/internal/logger"
	"github.com/sukalov/jamsheet/internal/render"
	"github.com/sukalov/jamsheet/internal/session"
	"github.com/sukalov/jamsheet/internal/songbook"
	"github.com/sukalov/jamsheet/internal/state"
	"go.uber.org/zap"
)

const (
	callbackPrev  = "jam_prev"
	callbackNext  = "jam_next"
	callbackQueue = "jam_queue"
)

// PlayerRegistry keeps track of who uses the bot.
type PlayerRegistry interface {
	RegisterPlayer(ctx context.Context, chatID int64, username, tgName string) (bool, error)
	IncrementSongsOpened(ctx context.Context, chatID int64) error
}

// SongCounter counts opens per song in the song table.
type SongCounter interface {
	IncrementSongCounter(ctx context.Context, slug string) error
}

// Deps are the collaborators of the jam bot. Players, SongCounter and
// PlayCounter may be nil.
type Deps struct {
	Songs       *songbook.Songbook
	Sessions    *state.StateManager
	Players     PlayerRegistry
	SongCounter SongCounter
	PlayCounter state.PlayCounter
	Classifier  chords.Classifier
}

type ClientHandlers struct {
	Deps

	mu             sync.Mutex
	awaitingSearch map[int64]bool
}

func NewClientHandlers(deps Deps) *ClientHandlers {
	return &ClientHandlers{
		Deps:           deps,
		awaitingSearch: make(map[int64]bool),
	}
}

func (h *ClientHandlers) startHandler(b *bot.Bot, update tgbotapi.Update) error {
	message := update.Message
	ctx := context.Background()

	if h.Players != nil {
		tgName := strings.TrimSpace(fmt.Sprintf("%s %s", message.From.FirstName, message.From.LastName))
		if _, err := h.Players.RegisterPlayer(ctx, message.Chat.ID, message.From.UserName, tgName); err != nil {
			logger.Error("error registering player", zap.Int64("chat_id", message.Chat.ID), zap.Error(err))
		}
	}

	// deep link: /start <slug>
	if slug := strings.TrimSpace(message.CommandArguments()); slug != "" {
		song, found := h.Songs.FindSongBySlug(slug)
		if !found {
			return b.SendMessage(message.Chat.ID, "извините, такой песни нет")
		}
		return h.openSong(ctx, b, message.Chat.ID, song)
	}

	return b.SendMessage(message.Chat.ID, fmt.Sprintf(
		"привет! в библиотеке %d песен\n\n"+
			"/jam [easy|medium|hard] [#тег] собрать очередь\n"+
			"/next и /prev листать очередь\n"+
			"/queue что дальше\n"+
			"/find найти песню\n"+
			"/tags все теги",
		h.Songs.Len(),
	))
}

func (h *ClientHandlers) findHandler(b *bot.Bot, update tgbotapi.Update) error {
	chatID := update.Message.Chat.ID
	query := strings.TrimSpace(update.Message.CommandArguments())
	if query == "" {
		h.setAwaitingSearch(chatID, true)
		return b.SendMessage(chatID, "напишите название песни или артиста")
	}
	return h.search(b, chatID, query)
}

func (h *ClientHandlers) search(b *bot.Bot, chatID int64, query string) error {
	results := h.Songs.Search(songbook.Filter{Query: query})
	if len(results) == 0 {
		return b.SendMessage(chatID, "ничего не найдено")
	}

	text := "найденные песни:"
	if len(results) > common.MaxButtons {
		text += fmt.Sprintf("\n(показаны первые %d из %d)", common.MaxButtons, len(results))
	}
	return b.SendMessageWithButtons(chatID, text, common.SongKeyboard(results, common.SongCallbackPrefix))
}

func (h *ClientHandlers) jamHandler(b *bot.Bot, update tgbotapi.Update) error {
	message := update.Message
	ctx := context.Background()

	filter, err := common.ParseJamArgs(message.CommandArguments())
	if err != nil {
		return b.SendMessage(message.Chat.ID, "не понял: "+err.Error()+"\n\nпример: /jam easy #костёр")
	}

	songs := h.Songs.Search(filter)
	if len(songs) == 0 {
		return b.SendMessage(message.Chat.ID, "под такой фильтр ничего не подходит")
	}

	s := session.New(message.Chat.ID, message.From.UserName, songs, filter)
	if err := h.Sessions.Put(ctx, s); err != nil {
		logger.Warn("jam session kept in memory only", zap.Int64("chat_id", message.Chat.ID), zap.Error(err))
	}

	first, _ := s.Current()
	song, _ := h.Songs.FindSongBySlug(first)
	if err := b.SendMessage(message.Chat.ID, fmt.Sprintf("в очереди %d песен. поехали!", s.Len())); err != nil {
		return err
	}
	return h.openSong(ctx, b, message.Chat.ID, song)
}

func (h *ClientHandlers) nextHandler(b *bot.Bot, update tgbotapi.Update) error {
	return h.step(b, update.Message.Chat.ID, (*session.Session).Next)
}

func (h *ClientHandlers) prevHandler(b *bot.Bot, update tgbotapi.Update) error {
	return h.step(b, update.Message.Chat.ID, (*session.Session).Prev)
}

func (h *ClientHandlers) nextCallback(b *bot.Bot, update tgbotapi.Update) error {
	return h.step(b, update.CallbackQuery.Message.Chat.ID, (*session.Session).Next)
}

func (h *ClientHandlers) prevCallback(b *bot.Bot, update tgbotapi.Update) error {
	return h.step(b, update.CallbackQuery.Message.Chat.ID, (*session.Session).Prev)
}

// step moves the chat's queue cursor and opens the song under it. Songs that
// left the library since the queue was built are skipped.
func (h *ClientHandlers) step(b *bot.Bot, chatID int64, move func(*session.Session) (string, bool)) error {
	ctx := context.Background()
	s, ok := h.Sessions.Get(chatID)
	if !ok || s.Len() == 0 {
		return b.SendMessage(chatID, "очереди нет. начните с /jam")
	}

	for i := 0; i < s.Len(); i++ {
		var slug string
		if _, _, err := h.Sessions.Update(ctx, chatID, func(s *session.Session) { slug, _ = move(s) }); err != nil {
			logger.Warn("jam session not persisted", zap.Int64("chat_id", chatID), zap.Error(err))
		}
		if song, found := h.Songs.FindSongBySlug(slug); found {
			return h.openSong(ctx, b, chatID, song)
		}
	}
	return b.SendMessage(chatID, "песен из этой очереди больше нет в библиотеке. соберите новую: /jam")
}

func (h *ClientHandlers) queueHandler(b *bot.Bot, update tgbotapi.Update) error {
	return h.showQueue(b, update.Message.Chat.ID)
}

func (h *ClientHandlers) queueCallback(b *bot.Bot, update tgbotapi.Update) error {
	return h.showQueue(b, update.CallbackQuery.Message.Chat.ID)
}

func (h *ClientHandlers) showQueue(b *bot.Bot, chatID int64) error {
	s, ok := h.Sessions.Get(chatID)
	if !ok || s.Len() == 0 {
		return b.SendMessage(chatID, "очереди нет. начните с /jam")
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "очередь (%d/%d):\n\n", s.Position+1, s.Len())
	var upcoming []songbook.Song
	for idx, slug := range s.Window(common.MaxButtons) {
		name := slug
		if song, found := h.Songs.FindSongBySlug(slug); found {
			name = songbook.FormatSongName(song)
			upcoming = append(upcoming, song)
		}
		marker := "  "
		if idx == 0 {
			marker = "▶ "
		}
		sb.WriteString(marker + name + "\n")
	}
	return b.SendMessageWithButtons(chatID, sb.String(), common.SongKeyboard(upcoming, common.SongCallbackPrefix))
}

// songCallback opens the song on a "song:<slug>" button. If the song is in
// the chat's queue the cursor jumps to it.
func (h *ClientHandlers) songCallback(b *bot.Bot, update tgbotapi.Update) error {
	query := update.CallbackQuery
	chatID := query.Message.Chat.ID
	ctx := context.Background()

	slug, ok := common.CallbackPayload(query.Data, common.SongCallbackPrefix)
	if !ok {
		return nil
	}
	song, found := h.Songs.FindSongBySlug(slug)
	if !found {
		return b.SendMessage(chatID, "песня не найдена")
	}

	if _, _, err := h.Sessions.Update(ctx, chatID, func(s *session.Session) { s.Jump(slug) }); err != nil {
		logger.Warn("jam session not persisted", zap.Int64("chat_id", chatID), zap.Error(err))
	}
	return h.openSong(ctx, b, chatID, song)
}

// openSong sends the rendered sheet. The last message carries the queue
// navigation when the chat has a session.
func (h *ClientHandlers) openSong(ctx context.Context, b *bot.Bot, chatID int64, song songbook.Song) error {
	sheet := render.BuildSheet(song, h.Classifier)
	messages := render.TelegramHTML(sheet, render.TelegramMessageLimit)

	s, hasSession := h.Sessions.Get(chatID)
	for i, text := range messages {
		var err error
		if i == len(messages)-1 && hasSession && s.Len() > 0 {
			err = b.SendHTMLWithButtons(chatID, text, navKeyboard(s))
		} else {
			err = b.SendHTML(chatID, text)
		}
		if err != nil {
			return fmt.Errorf("failed to send song %s: %w", song.Slug, err)
		}
	}

	h.countOpen(ctx, chatID, song.Slug)
	return nil
}

func navKeyboard(s session.Session) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("◀", callbackPrev),
			tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("%d/%d", s.Position+1, s.Len()), callbackQueue),
			tgbotapi.NewInlineKeyboardButtonData("▶", callbackNext),
		),
	)
}

func (h *ClientHandlers) countOpen(ctx context.Context, chatID int64, slug string) {
	if h.PlayCounter != nil {
		if err := h.PlayCounter.IncrementPlayCount(ctx, slug); err != nil {
			logger.Warn("failed to count play", zap.String("slug", slug), zap.Error(err))
		}
	}
	if h.SongCounter != nil {
		if err := h.SongCounter.IncrementSongCounter(ctx, slug); err != nil && !errors.Is(err, songbook.ErrSongNotFound) {
			logger.Warn("failed to update song counter", zap.String("slug", slug), zap.Error(err))
		}
	}
	if h.Players != nil {
		if err := h.Players.IncrementSongsOpened(ctx, chatID); err != nil {
			logger.Warn("failed to update player", zap.Int64("chat_id", chatID), zap.Error(err))
		}
	}
}

func (h *ClientHandlers) setAwaitingSearch(chatID int64, v bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if v {
		h.awaitingSearch[chatID] = true
	} else {
		delete(h.awaitingSearch, chatID)
	}
}

func (h *ClientHandlers) takeAwaitingSearch(chatID int64) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	waiting := h.awaitingSearch[chatID]
	delete(h.awaitingSearch, chatID)
	return waiting
}

// messageHandler treats plain text as a search after /find, and answers
// anything else with a hint.
func (h *ClientHandlers) messageHandler(b *bot.Bot, update tgbotapi.Update) error {
	if update.Message == nil || update.Message.IsCommand() {
		if update.Message != nil {
			return b.SendMessage(update.Message.Chat.ID, "такой команды нет. список: /start")
		}
		return nil
	}
	chatID := update.Message.Chat.ID
	if h.takeAwaitingSearch(chatID) {
		return h.search(b, chatID, update.Message.Text)
	}
	return b.SendMessage(chatID, "этого я не понимаю...\n\nпопробуйте /find или /jam")
}

// Handlers wires the jam bot routes.
func (h *ClientHandlers) Handlers() bot.Handlers {
	commandHandlers := common.GetCommandHandlers(h.Songs, h.PlayCounter)
	commandHandlers["start"] = h.startHandler
	commandHandlers["find"] = h.findHandler
	commandHandlers["jam"] = h.jamHandler
	commandHandlers["next"] = h.nextHandler
	commandHandlers["prev"] = h.prevHandler
	commandHandlers["queue"] = h.queueHandler

	callbackHandlers := common.GetCallbackHandlers()
	callbackHandlers[common.SongCallbackPrefix] = h.songCallback
	callbackHandlers[callbackNext] = h.nextCallback
	callbackHandlers[callbackPrev] = h.prevCallback
	callbackHandlers[callbackQueue] = h.queueCallback

	return bot.Handlers{
		Commands:  commandHandlers,
		Messages:  []bot.Handler{h.messageHandler},
		Callbacks: callbackHandlers,
	}
}
