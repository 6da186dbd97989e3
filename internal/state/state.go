package state

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/sukalov/jamsheet/internal/logger"
	"github.com/sukalov/jamsheet/internal/session"
	"go.uber.org/zap"
)

// SessionStore persists jam sessions between restarts. The redis DBManager
// is the production implementation.
type SessionStore interface {
	SaveSession(ctx context.Context, s session.Session) error
	LoadSessions(ctx context.Context) ([]session.Session, error)
	DeleteSession(ctx context.Context, chatID int64) error
	ClearSessions(ctx context.Context) (int64, error)
}

// PlayCounter records which songs get opened.
type PlayCounter interface {
	IncrementPlayCount(ctx context.Context, slug string) error
	PlayCounts(ctx context.Context) (map[string]int, error)
}

type StateManager struct {
	mu       sync.RWMutex
	sessions map[int64]session.Session
	store    SessionStore

	// chatLocks orders a chat's writes so the store sees them in the same
	// order as memory.
	locksMu   sync.Mutex
	chatLocks map[int64]*sync.Mutex
}

type ByUpdatedAt []session.Session

func (a ByUpdatedAt) Len() int           { return len(a) }
func (a ByUpdatedAt) Less(i, j int) bool { return a[i].UpdatedAt.Before(a[j].UpdatedAt) }
func (a ByUpdatedAt) Swap(i, j int)      { a[i], a[j] = a[j], a[i] }

func NewStateManager(store SessionStore) *StateManager {
	return &StateManager{
		sessions:  make(map[int64]session.Session),
		store:     store,
		chatLocks: make(map[int64]*sync.Mutex),
	}
}

func (sm *StateManager) lockChat(chatID int64) func() {
	sm.locksMu.Lock()
	l, ok := sm.chatLocks[chatID]
	if !ok {
		l = &sync.Mutex{}
		sm.chatLocks[chatID] = l
	}
	sm.locksMu.Unlock()

	l.Lock()
	return l.Unlock
}

// Init loads the persisted sessions, replacing whatever is in memory.
func (sm *StateManager) Init(ctx context.Context) error {
	list, err := sm.store.LoadSessions(ctx)
	if err != nil {
		return fmt.Errorf("failed to load sessions: %w", err)
	}

	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.sessions = make(map[int64]session.Session, len(list))
	for _, s := range list {
		sm.sessions[s.ChatID] = s
	}
	logger.Info("sessions restored", zap.Int("count", len(list)))
	return nil
}

func (sm *StateManager) Get(chatID int64) (session.Session, bool) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	s, ok := sm.sessions[chatID]
	return s, ok
}

// Put stores s in memory and in the backing store. The in-memory copy is kept
// even when persisting fails.
func (sm *StateManager) Put(ctx context.Context, s session.Session) error {
	defer sm.lockChat(s.ChatID)()

	sm.mu.Lock()
	sm.sessions[s.ChatID] = s
	sm.mu.Unlock()

	if err := sm.store.SaveSession(ctx, s); err != nil {
		logger.Error("error happened while saving session", zap.Int64("chat_id", s.ChatID), zap.Error(err))
		return err
	}
	return nil
}

// Update applies fn to the chat's session and persists the result. It
// returns false when the chat has no session.
func (sm *StateManager) Update(ctx context.Context, chatID int64, fn func(s *session.Session)) (session.Session, bool, error) {
	defer sm.lockChat(chatID)()

	sm.mu.Lock()
	s, ok := sm.sessions[chatID]
	if !ok {
		sm.mu.Unlock()
		return session.Session{}, false, nil
	}
	s.Queue = append([]string(nil), s.Queue...)
	fn(&s)
	sm.sessions[chatID] = s
	sm.mu.Unlock()

	if err := sm.store.SaveSession(ctx, s); err != nil {
		logger.Error("error happened while saving session", zap.Int64("chat_id", chatID), zap.Error(err))
		return s, true, err
	}
	return s, true, nil
}

func (sm *StateManager) Remove(ctx context.Context, chatID int64) error {
	defer sm.lockChat(chatID)()

	sm.mu.Lock()
	delete(sm.sessions, chatID)
	sm.mu.Unlock()

	if err := sm.store.DeleteSession(ctx, chatID); err != nil {
		logger.Error("error happened while deleting session", zap.Int64("chat_id", chatID), zap.Error(err))
		return err
	}
	return nil
}

// GetAll returns the sessions ordered from least to most recently used.
func (sm *StateManager) GetAll() []session.Session {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	list := make([]session.Session, 0, len(sm.sessions))
	for _, s := range sm.sessions {
		list = append(list, s)
	}
	sort.Sort(ByUpdatedAt(list))
	return list
}

func (sm *StateManager) Len() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.sessions)
}

// Clear drops every session and reports how many the store removed.
func (sm *StateManager) Clear(ctx context.Context) (int64, error) {
	sm.mu.Lock()
	sm.sessions = make(map[int64]session.Session)
	sm.mu.Unlock()

	removed, err := sm.store.ClearSessions(ctx)
	if err != nil {
		logger.Error("error happened while clearing sessions", zap.Error(err))
		return 0, err
	}
	return removed, nil
}
