package client

import (
	"context"
	"strings"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sukalov/jamsheet/internal/bot"
	"github.com/sukalov/jamsheet/internal/bot/bottest"
	"github.com/sukalov/jamsheet/internal/chords"
	"github.com/sukalov/jamsheet/internal/session"
	"github.com/sukalov/jamsheet/internal/songbook"
	"github.com/sukalov/jamsheet/internal/state"
)

type staticStore []songbook.Song

func (s staticStore) AllSongs(ctx context.Context) ([]songbook.Song, error) { return s, nil }
func (s staticStore) SongBySlug(ctx context.Context, slug string) (songbook.Song, error) {
	return songbook.Song{}, songbook.ErrSongNotFound
}

type nopSessions struct{}

func (nopSessions) SaveSession(ctx context.Context, s session.Session) error { return nil }
func (nopSessions) LoadSessions(ctx context.Context) ([]session.Session, error) { return nil, nil }
func (nopSessions) DeleteSession(ctx context.Context, chatID int64) error { return nil }
func (nopSessions) ClearSessions(ctx context.Context) (int64, error) { return 0, nil }

type fakePlayers struct {
	registered map[int64]string
	opened     map[int64]int
}

func (f *fakePlayers) RegisterPlayer(ctx context.Context, chatID int64, username, tgName string) (bool, error) {
	if _, ok := f.registered[chatID]; ok {
		return false, nil
	}
	f.registered[chatID] = username
	return true, nil
}

func (f *fakePlayers) IncrementSongsOpened(ctx context.Context, chatID int64) error {
	f.opened[chatID]++
	return nil
}

type fakeCounter map[string]int

func (f fakeCounter) IncrementPlayCount(ctx context.Context, slug string) error {
	f[slug]++
	return nil
}

func (f fakeCounter) PlayCounts(ctx context.Context) (map[string]int, error) { return f, nil }

type fixture struct {
	rec      *bottest.Recorder
	bot      *bot.Bot
	handlers bot.Handlers
	players  *fakePlayers
	plays    fakeCounter
	sessions *state.StateManager
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	sb := songbook.New(staticStore{
		{Slug: "blackbird", Title: "Blackbird", Artist: "The Beatles", Difficulty: songbook.DifficultyHard, Tags: []string{"acoustic"}, Content: "G Am7 G/B G\nBlackbird singing in the dead of night"},
		{Slug: "knockin", Title: "Knockin' on Heaven's Door", Artist: "Bob Dylan", Difficulty: songbook.DifficultyEasy, Tags: []string{"acoustic", "campfire"}, Content: "G D Am\nMama take this badge off of me"},
		{Slug: "zombie", Title: "Zombie", Artist: "The Cranberries", Difficulty: songbook.DifficultyEasy, Tags: []string{"campfire"}, Content: "Em C G D"},
	})
	if err := sb.Reload(context.Background()); err != nil {
		t.Fatal(err)
	}

	f := &fixture{
		rec:      &bottest.Recorder{},
		players:  &fakePlayers{registered: map[int64]string{}, opened: map[int64]int{}},
		plays:    fakeCounter{},
		sessions: state.NewStateManager(nopSessions{}),
	}
	f.bot = bot.NewWithAPI("jam", f.rec)
	f.handlers = NewClientHandlers(Deps{
		Songs:       sb,
		Sessions:    f.sessions,
		Players:     f.players,
		PlayCounter: f.plays,
		Classifier:  chords.DefaultClassifier,
	}).Handlers()
	return f
}

func (f *fixture) send(u tgbotapi.Update) {
	f.bot.Dispatch(u, f.handlers)
}

func TestStartRegistersPlayer(t *testing.T) {
	f := newFixture(t)
	f.send(bottest.Message(10, "picker", "/start"))
	f.send(bottest.Message(10, "picker", "/start"))

	if f.players.registered[10] != "picker" {
		t.Errorf("player not registered: %v", f.players.registered)
	}
	if got := f.rec.Last().Text; !strings.Contains(got, "3 песен") {
		t.Errorf("greeting = %q", got)
	}
}

func TestStartDeepLinkOpensSong(t *testing.T) {
	f := newFixture(t)
	f.send(bottest.Message(10, "picker", "/start zombie"))

	texts := f.rec.Texts()
	if len(texts) != 2 || texts[0] != "<b>Zombie</b>\n<i>The Cranberries</i>" {
		t.Fatalf("messages = %q", texts)
	}
	if !strings.Contains(texts[1], "<pre>Em C G D</pre>") {
		t.Errorf("sheet = %q", texts[1])
	}
	if f.plays["zombie"] != 1 || f.players.opened[10] != 1 {
		t.Errorf("open not counted: plays=%v opened=%v", f.plays, f.players.opened)
	}
}

func TestJamAndNavigation(t *testing.T) {
	f := newFixture(t)
	f.send(bottest.Message(5, "picker", "/jam easy #campfire"))

	s, ok := f.sessions.Get(5)
	if !ok || len(s.Queue) != 2 || s.Queue[0] != "knockin" || s.Queue[1] != "zombie" {
		t.Fatalf("session = %+v", s)
	}
	last := f.rec.Last()
	if _, ok := last.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup); !ok {
		t.Errorf("song message has no navigation: %+v", last)
	}

	f.rec.Reset()
	f.send(bottest.Message(5, "picker", "/next"))
	if got := f.rec.Texts()[0]; !strings.Contains(got, "Zombie") {
		t.Errorf("/next opened %q", got)
	}

	f.rec.Reset()
	f.send(bottest.Callback(5, "picker", callbackNext))
	if got := f.rec.Texts()[0]; !strings.Contains(got, "Knockin") {
		t.Errorf("next after last opened %q, want wraparound", got)
	}
	if len(f.rec.Callbacks) != 1 {
		t.Errorf("callback was not answered")
	}

	f.rec.Reset()
	f.send(bottest.Message(5, "picker", "/prev"))
	if got := f.rec.Texts()[0]; !strings.Contains(got, "Zombie") {
		t.Errorf("prev before first opened %q, want wraparound", got)
	}
}

func TestJamWithoutMatches(t *testing.T) {
	f := newFixture(t)
	f.send(bottest.Message(5, "picker", "/jam hard #campfire"))
	if got := f.rec.Last().Text; got != "под такой фильтр ничего не подходит" {
		t.Errorf("reply = %q", got)
	}
	f.send(bottest.Message(5, "picker", "/jam brutal"))
	if got := f.rec.Last().Text; !strings.HasPrefix(got, "не понял") {
		t.Errorf("reply = %q", got)
	}
}

func TestNextWithoutSession(t *testing.T) {
	f := newFixture(t)
	f.send(bottest.Message(5, "picker", "/next"))
	if got := f.rec.Last().Text; !strings.Contains(got, "/jam") {
		t.Errorf("reply = %q", got)
	}
}

func TestQueueAndSongCallback(t *testing.T) {
	f := newFixture(t)
	f.send(bottest.Message(5, "picker", "/jam"))
	f.rec.Reset()

	f.send(bottest.Message(5, "picker", "/queue"))
	if got := f.rec.Last().Text; !strings.HasPrefix(got, "очередь (1/3)") || !strings.Contains(got, "▶ The Beatles - Blackbird") {
		t.Errorf("/queue = %q", got)
	}

	f.send(bottest.Callback(5, "picker", "song:zombie"))
	if s, _ := f.sessions.Get(5); s.Position != 2 {
		t.Errorf("song button did not move the cursor: %+v", s)
	}
}

func TestFindFlow(t *testing.T) {
	f := newFixture(t)
	f.send(bottest.Message(3, "u", "/find"))
	f.send(bottest.Message(3, "u", "dylan"))

	last := f.rec.Last()
	kb, ok := last.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
	if !ok || len(kb.InlineKeyboard) != 1 || *kb.InlineKeyboard[0][0].CallbackData != "song:knockin" {
		t.Fatalf("search reply = %+v", last)
	}

	f.send(bottest.Message(3, "u", "dylan"))
	if got := f.rec.Last().Text; !strings.Contains(got, "не понимаю") {
		t.Errorf("plain text after a finished search = %q", got)
	}

	f.send(bottest.Message(3, "u", "/find zzz"))
	if got := f.rec.Last().Text; got != "ничего не найдено" {
		t.Errorf("/find zzz = %q", got)
	}
}
