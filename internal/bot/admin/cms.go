package admin

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sukalov/jamsheet/internal/bot"
	"github.com/sukalov/jamsheet/internal/bot/common"
	"github.com/sukalov/jamsheet/internal/logger"
	"github.com/sukalov/jamsheet/internal/render"
	"github.com/sukalov/jamsheet/internal/songbook"
	"go.uber.org/zap"
)

const infoCallbackPrefix = "info"

func (h *AdminHandlers) findSongHandler(b *bot.Bot, update tgbotapi.Update) error {
	chatID := update.Message.Chat.ID
	if query := strings.TrimSpace(update.Message.CommandArguments()); query != "" {
		return h.searchSongs(b, chatID, query)
	}

	h.mu.Lock()
	h.awaitingSearch[chatID] = true
	h.mu.Unlock()
	return b.SendMessage(chatID, "здесь можно найти песню и посмотреть, что с ней. напишите название песни или артиста")
}

func (h *AdminHandlers) messageHandler(b *bot.Bot, update tgbotapi.Update) error {
	if update.Message == nil {
		return nil
	}
	chatID := update.Message.Chat.ID
	if update.Message.IsCommand() {
		return b.SendMessage(chatID, "такой команды нет")
	}

	h.mu.Lock()
	waiting := h.awaitingSearch[chatID]
	delete(h.awaitingSearch, chatID)
	h.mu.Unlock()

	if !waiting {
		return b.SendMessage(chatID, "ничего не понятно. если вы пытаетесь найти песню, сначала нажмите /findsong")
	}
	return h.searchSongs(b, chatID, update.Message.Text)
}

func (h *AdminHandlers) searchSongs(b *bot.Bot, chatID int64, query string) error {
	results := h.Songs.Search(songbook.Filter{Query: query})
	if len(results) == 0 {
		return b.SendMessage(chatID, "ничего не найдено")
	}

	message := "найденные песни:"
	if len(results) > common.MaxButtons {
		message += fmt.Sprintf("\n(показаны первые %d из %d)", common.MaxButtons, len(results))
	}
	return b.SendMessageWithButtons(chatID, message, common.SongKeyboard(results, infoCallbackPrefix))
}

// infoCallback shows what the library knows about a song: its metadata, how
// often it was opened and the chords it uses.
func (h *AdminHandlers) infoCallback(b *bot.Bot, update tgbotapi.Update) error {
	chatID := update.CallbackQuery.Message.Chat.ID
	slug, ok := common.CallbackPayload(update.CallbackQuery.Data, infoCallbackPrefix)
	if !ok {
		return nil
	}
	song, found := h.Songs.FindSongBySlug(slug)
	if !found {
		return b.SendMessage(chatID, "песня не найдена")
	}
	return b.SendMessage(chatID, h.describe(context.Background(), song))
}

func (h *AdminHandlers) describe(ctx context.Context, song songbook.Song) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s\n\n", songbook.FormatSongName(song))
	fmt.Fprintf(&sb, "slug: %s\n", song.Slug)
	if song.Difficulty != "" {
		fmt.Fprintf(&sb, "сложность: %s\n", song.Difficulty)
	}
	if len(song.Tags) > 0 {
		fmt.Fprintf(&sb, "теги: #%s\n", strings.Join(song.Tags, " #"))
	}
	if len(song.Playlist) > 0 {
		fmt.Fprintf(&sb, "плейлисты: %s\n", strings.Join(song.Playlist, ", "))
	}
	if h.Stats != nil {
		if count, err := h.Stats.SongCounter(ctx, song.Slug); err != nil {
			logger.Warn("failed to read song counter", zap.String("slug", song.Slug), zap.Error(err))
		} else {
			fmt.Fprintf(&sb, "открывали: %d\n", count)
		}
	}

	sheet := render.BuildSheet(song, h.Classifier)
	if used := sheet.Chords(); len(used) > 0 {
		fmt.Fprintf(&sb, "аккорды: %s\n", strings.Join(used, " "))
	}
	return sb.String()
}
