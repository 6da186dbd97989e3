package state

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/sukalov/jamsheet/internal/session"
)

type memoryStore struct {
	mu       sync.Mutex
	sessions map[int64]session.Session
	failSave bool
}

func newMemoryStore(list ...session.Session) *memoryStore {
	m := &memoryStore{sessions: make(map[int64]session.Session)}
	for _, s := range list {
		m.sessions[s.ChatID] = s
	}
	return m
}

func (m *memoryStore) SaveSession(ctx context.Context, s session.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failSave {
		return errors.New("store unavailable")
	}
	m.sessions[s.ChatID] = s
	return nil
}

func (m *memoryStore) LoadSessions(ctx context.Context) ([]session.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var list []session.Session
	for _, s := range m.sessions {
		list = append(list, s)
	}
	return list, nil
}

func (m *memoryStore) DeleteSession(ctx context.Context, chatID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, chatID)
	return nil
}

func (m *memoryStore) ClearSessions(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := int64(len(m.sessions))
	m.sessions = make(map[int64]session.Session)
	return n, nil
}

func TestInitRestoresSessions(t *testing.T) {
	now := time.Now()
	store := newMemoryStore(
		session.Session{ChatID: 1, Queue: []string{"a"}, UpdatedAt: now},
		session.Session{ChatID: 2, Queue: []string{"b"}, UpdatedAt: now.Add(-time.Hour)},
	)
	sm := NewStateManager(store)
	if err := sm.Init(context.Background()); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	if sm.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", sm.Len())
	}
	all := sm.GetAll()
	if all[0].ChatID != 2 || all[1].ChatID != 1 {
		t.Errorf("GetAll() not ordered by last use: %+v", all)
	}
}

func TestPutUpdateRemove(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	sm := NewStateManager(store)

	if err := sm.Put(ctx, session.Session{ChatID: 7, Queue: []string{"a", "b", "c"}}); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	s, ok, err := sm.Update(ctx, 7, func(s *session.Session) { s.Next() })
	if err != nil || !ok {
		t.Fatalf("Update() = %v, %v", ok, err)
	}
	if cur, _ := s.Current(); cur != "b" {
		t.Errorf("Current() after Next = %q", cur)
	}
	if store.sessions[7].Position != 1 {
		t.Errorf("store position = %d, want 1", store.sessions[7].Position)
	}

	if _, ok, _ := sm.Update(ctx, 99, func(s *session.Session) {}); ok {
		t.Error("Update() on unknown chat should report false")
	}

	if err := sm.Remove(ctx, 7); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if _, ok := sm.Get(7); ok {
		t.Error("session survived Remove()")
	}
	if _, ok := store.sessions[7]; ok {
		t.Error("store still has the removed session")
	}
}

func TestPutKeepsMemoryOnStoreFailure(t *testing.T) {
	store := newMemoryStore()
	store.failSave = true
	sm := NewStateManager(store)

	if err := sm.Put(context.Background(), session.Session{ChatID: 3}); err == nil {
		t.Fatal("Put() should report the store error")
	}
	if _, ok := sm.Get(3); !ok {
		t.Error("in-memory session was dropped")
	}
}

func TestClear(t *testing.T) {
	store := newMemoryStore(session.Session{ChatID: 1}, session.Session{ChatID: 2})
	sm := NewStateManager(store)
	if err := sm.Init(context.Background()); err != nil {
		t.Fatal(err)
	}
	removed, err := sm.Clear(context.Background())
	if err != nil || removed != 2 {
		t.Fatalf("Clear() = %d, %v; want 2, nil", removed, err)
	}
	if sm.Len() != 0 {
		t.Errorf("Len() after Clear = %d", sm.Len())
	}
}

// gatedStore holds the first save until release is closed and records the
// order saves complete in.
type gatedStore struct {
	*memoryStore
	entered chan struct{}
	release chan struct{}

	orderMu sync.Mutex
	gated   bool
	saved   []int
}

func (g *gatedStore) SaveSession(ctx context.Context, s session.Session) error {
	g.orderMu.Lock()
	first := !g.gated
	g.gated = true
	g.orderMu.Unlock()

	if first {
		close(g.entered)
		<-g.release
	}
	if err := g.memoryStore.SaveSession(ctx, s); err != nil {
		return err
	}
	g.orderMu.Lock()
	g.saved = append(g.saved, s.Position)
	g.orderMu.Unlock()
	return nil
}

func TestUpdatesPersistInOrder(t *testing.T) {
	ctx := context.Background()
	store := &gatedStore{
		memoryStore: newMemoryStore(),
		entered:     make(chan struct{}),
		release:     make(chan struct{}),
	}
	sm := NewStateManager(store)
	sm.sessions[5] = session.Session{ChatID: 5, Queue: []string{"a", "b", "c"}}

	var wg sync.WaitGroup
	update := func(pos int) {
		defer wg.Done()
		if _, _, err := sm.Update(ctx, 5, func(s *session.Session) { s.Position = pos }); err != nil {
			t.Errorf("Update(%d) error = %v", pos, err)
		}
	}

	wg.Add(1)
	go update(1)
	<-store.entered

	wg.Add(1)
	go update(2)
	time.Sleep(20 * time.Millisecond)
	close(store.release)
	wg.Wait()

	if want := []int{1, 2}; !reflect.DeepEqual(store.saved, want) {
		t.Errorf("saves completed as %v, want %v", store.saved, want)
	}
	s, _ := sm.Get(5)
	if s.Position != 2 || store.sessions[5].Position != s.Position {
		t.Errorf("memory position %d, stored %d", s.Position, store.sessions[5].Position)
	}
}
