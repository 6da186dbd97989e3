package bot

import (
	"context"
	"fmt"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sukalov/jamsheet/internal/logger"
	"go.uber.org/zap"
)

// API is the part of tgbotapi.BotAPI the bot sends through.
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

type Handler func(b *Bot, update tgbotapi.Update) error

// Handlers routes updates. Commands are keyed by name without the slash.
// Callbacks are keyed by their full data or by the part before the first
// ":", so "song" receives "song:wonderwall".
type Handlers struct {
	Commands  map[string]Handler
	Messages  []Handler
	Callbacks map[string]Handler
}

// Bot represents a configurable Telegram bot
type Bot struct {
	Client     *tgbotapi.BotAPI
	api        API
	updateChan tgbotapi.UpdatesChannel
	stopChan   chan struct{}
	stopOnce   sync.Once
	name       string
}

// New creates a new bot instance
func New(name, token string) (*Bot, error) {
	botClient, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s bot: %w", name, err)
	}

	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updateChan := botClient.GetUpdatesChan(updateConfig)

	return &Bot{
		Client:     botClient,
		api:        botClient,
		updateChan: updateChan,
		stopChan:   make(chan struct{}),
		name:       name,
	}, nil
}

// NewWithAPI builds a bot that only sends, through api.
func NewWithAPI(name string, api API) *Bot {
	return &Bot{
		api:      api,
		stopChan: make(chan struct{}),
		name:     name,
	}
}

func (b *Bot) Name() string {
	return b.name
}

// Start processes updates with handlers until ctx is done or Stop is called.
func (b *Bot) Start(ctx context.Context, handlers Handlers) {
	if b.updateChan == nil {
		return
	}
	if b.Client != nil {
		logger.Info(fmt.Sprintf("[%s] authorized on account %s", b.name, b.Client.Self.UserName))
	}

	for {
		select {
		case update, ok := <-b.updateChan:
			if !ok {
				return
			}
			go b.Dispatch(update, handlers)
		case <-ctx.Done():
			b.Stop()
			return
		case <-b.stopChan:
			return
		}
	}
}

// Dispatch runs the handler matching update.
func (b *Bot) Dispatch(update tgbotapi.Update, handlers Handlers) {
	if update.Message != nil && update.Message.IsCommand() {
		if handler, exists := handlers.Commands[update.Message.Command()]; exists {
			b.run("command "+update.Message.Command(), handler, update)
			return
		}
	}

	if update.CallbackQuery != nil {
		if handler, exists := callbackHandler(handlers.Callbacks, update.CallbackQuery.Data); exists {
			b.run("callback "+update.CallbackQuery.Data, handler, update)
			b.answerCallback(update.CallbackQuery.ID)
			return
		}
	}

	for _, handler := range handlers.Messages {
		b.run("message", handler, update)
	}
}

func callbackHandler(callbacks map[string]Handler, data string) (Handler, bool) {
	if handler, exists := callbacks[data]; exists {
		return handler, true
	}
	prefix, _, found := strings.Cut(data, ":")
	if !found {
		return nil, false
	}
	handler, exists := callbacks[prefix]
	return handler, exists
}

func (b *Bot) run(what string, handler Handler, update tgbotapi.Update) {
	if err := handler(b, update); err != nil {
		logger.Error(fmt.Sprintf("[%s] %s handler error", b.name, what), zap.Error(err))
	}
}

// Stop halts the bot. It is safe to call more than once.
func (b *Bot) Stop() {
	b.stopOnce.Do(func() {
		if b.Client != nil {
			b.Client.StopReceivingUpdates()
		}
		close(b.stopChan)
	})
}

func (b *Bot) SendMessage(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) SendMessageWithMarkdown(chatID int64, text string, disableLinks bool) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.DisableWebPagePreview = disableLinks
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) SendHTML(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) SendMessageWithButtons(chatID int64, text string, keyboard tgbotapi.InlineKeyboardMarkup) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = keyboard
	_, err := b.api.Send(msg)
	return err
}

// SendHTMLWithButtons sends an HTML message with an inline keyboard.
func (b *Bot) SendHTMLWithButtons(chatID int64, text string, keyboard tgbotapi.InlineKeyboardMarkup) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true
	msg.ReplyMarkup = keyboard
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) answerCallback(id string) {
	if id == "" {
		return
	}
	if _, err := b.api.Request(tgbotapi.NewCallback(id, "")); err != nil {
		logger.Warn(fmt.Sprintf("[%s] failed to answer callback", b.name), zap.Error(err))
	}
}
