// Package bottest provides a recording Telegram API and update builders for
// handler tests.
package bottest

import (
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Recorder implements bot.API and keeps every outgoing message.
type Recorder struct {
	mu        sync.Mutex
	Messages  []tgbotapi.MessageConfig
	Callbacks []tgbotapi.CallbackConfig
}

func (r *Recorder) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if msg, ok := c.(tgbotapi.MessageConfig); ok {
		r.Messages = append(r.Messages, msg)
	}
	return tgbotapi.Message{MessageID: len(r.Messages)}, nil
}

func (r *Recorder) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cb, ok := c.(tgbotapi.CallbackConfig); ok {
		r.Callbacks = append(r.Callbacks, cb)
	}
	return &tgbotapi.APIResponse{Ok: true}, nil
}

// Texts returns the text of every recorded message.
func (r *Recorder) Texts() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.Messages))
	for _, m := range r.Messages {
		out = append(out, m.Text)
	}
	return out
}

// Last returns the most recent message.
func (r *Recorder) Last() tgbotapi.MessageConfig {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.Messages) == 0 {
		return tgbotapi.MessageConfig{}
	}
	return r.Messages[len(r.Messages)-1]
}

func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Messages = nil
	r.Callbacks = nil
}

// Message builds a text update. Text starting with "/" is marked as a
// command the way Telegram does it.
func Message(chatID int64, username, text string) tgbotapi.Update {
	msg := &tgbotapi.Message{
		Text: text,
		Chat: &tgbotapi.Chat{ID: chatID},
		From: &tgbotapi.User{ID: chatID, UserName: username, FirstName: username},
	}
	if strings.HasPrefix(text, "/") {
		end := strings.IndexByte(text, ' ')
		if end < 0 {
			end = len(text)
		}
		msg.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: end}}
	}
	return tgbotapi.Update{Message: msg}
}

// Callback builds a button press carrying data.
func Callback(chatID int64, username, data string) tgbotapi.Update {
	return tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:      "cb-" + data,
		From:    &tgbotapi.User{ID: chatID, UserName: username},
		Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: chatID}},
		Data:    data,
	}}
}
