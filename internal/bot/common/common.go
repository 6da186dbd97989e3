package common

import (
	"context"
	"fmt"
	"sort"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sukalov/jamsheet/internal/bot"
	"github.com/sukalov/jamsheet/internal/songbook"
	"github.com/sukalov/jamsheet/internal/state"
)

// SongCallbackPrefix marks buttons that open a song.
const SongCallbackPrefix = "song"

// MaxButtons caps song keyboards.
const MaxButtons = 10

type CommonHandlers struct {
	songs   *songbook.Songbook
	counter state.PlayCounter
}

// GetCommandHandlers returns the commands both bots answer.
func GetCommandHandlers(songs *songbook.Songbook, counter state.PlayCounter) map[string]bot.Handler {
	handlers := newCommonHandlers(songs, counter)
	return map[string]bot.Handler{
		"tags": handlers.tagsHandler,
		"top":  handlers.topHandler,
	}
}

// GetCallbackHandlers returns common callback handlers
func GetCallbackHandlers() map[string]bot.Handler {
	return map[string]bot.Handler{}
}

func newCommonHandlers(songs *songbook.Songbook, counter state.PlayCounter) *CommonHandlers {
	return &CommonHandlers{
		songs:   songs,
		counter: counter,
	}
}

func (h *CommonHandlers) tagsHandler(b *bot.Bot, update tgbotapi.Update) error {
	tags := h.songs.Tags()
	if len(tags) == 0 {
		return b.SendMessage(update.Message.Chat.ID, "тегов пока нет")
	}
	return b.SendMessage(update.Message.Chat.ID, "теги:\n\n#"+strings.Join(tags, " #")+"\n\nпример: /jam easy #"+tags[0])
}

// topHandler lists the most opened songs.
func (h *CommonHandlers) topHandler(b *bot.Bot, update tgbotapi.Update) error {
	chatID := update.Message.Chat.ID
	if h.counter == nil {
		return b.SendMessage(chatID, "статистика недоступна")
	}

	counts, err := h.counter.PlayCounts(context.Background())
	if err != nil {
		return fmt.Errorf("failed to read play counts: %w", err)
	}
	if len(counts) == 0 {
		return b.SendMessage(chatID, "ещё ничего не играли")
	}

	slugs := make([]string, 0, len(counts))
	for slug := range counts {
		slugs = append(slugs, slug)
	}
	sort.Slice(slugs, func(i, j int) bool {
		if counts[slugs[i]] != counts[slugs[j]] {
			return counts[slugs[i]] > counts[slugs[j]]
		}
		return slugs[i] < slugs[j]
	})
	if len(slugs) > MaxButtons {
		slugs = slugs[:MaxButtons]
	}

	var sb strings.Builder
	sb.WriteString("чаще всего играли:\n\n")
	for idx, slug := range slugs {
		name := slug
		if song, ok := h.songs.FindSongBySlug(slug); ok {
			name = songbook.FormatSongName(song)
		}
		fmt.Fprintf(&sb, "%d. %s: %d\n", idx+1, name, counts[slug])
	}
	return b.SendMessage(chatID, sb.String())
}

// SongKeyboard lays out one button per song, up to MaxButtons.
func SongKeyboard(songs []songbook.Song, callbackPrefix string) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, song := range songs {
		if len(rows) >= MaxButtons {
			break
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(songbook.FormatSongName(song), callbackPrefix+":"+song.Slug),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// CallbackPayload returns what follows "prefix:" in callback data.
func CallbackPayload(data, prefix string) (string, bool) {
	return strings.CutPrefix(data, prefix+":")
}

// ParseJamArgs reads "/jam" arguments: an optional difficulty and any number
// of "#tag" words, in any order.
func ParseJamArgs(args string) (songbook.Filter, error) {
	var filter songbook.Filter
	for _, word := range strings.Fields(args) {
		if tag, ok := strings.CutPrefix(word, "#"); ok {
			if tag != "" {
				filter.Tags = append(filter.Tags, tag)
			}
			continue
		}
		if filter.Difficulty != "" {
			return songbook.Filter{}, fmt.Errorf("difficulty given twice: %q", word)
		}
		d, err := songbook.ParseDifficulty(word)
		if err != nil {
			return songbook.Filter{}, err
		}
		filter.Difficulty = d
	}
	return filter, nil
}
