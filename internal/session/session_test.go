package session

import (
	"reflect"
	"testing"

	"github.com/sukalov/jamsheet/internal/songbook"
)

func newTestSession(slugs ...string) Session {
	songs := make([]songbook.Song, 0, len(slugs))
	for _, slug := range slugs {
		songs = append(songs, songbook.Song{Slug: slug})
	}
	return New(42, "picker", songs, songbook.Filter{Difficulty: songbook.DifficultyEasy})
}

func TestNextWrapsAround(t *testing.T) {
	s := newTestSession("a", "b", "c")
	var got []string
	for i := 0; i < 4; i++ {
		slug, ok := s.Next()
		if !ok {
			t.Fatal("Next() on a full queue returned false")
		}
		got = append(got, slug)
	}
	if want := []string{"b", "c", "a", "b"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Next() sequence = %v, want %v", got, want)
	}
}

func TestPrevWrapsAround(t *testing.T) {
	s := newTestSession("a", "b", "c")
	var got []string
	for i := 0; i < 4; i++ {
		slug, _ := s.Prev()
		got = append(got, slug)
	}
	if want := []string{"c", "b", "a", "c"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Prev() sequence = %v, want %v", got, want)
	}
}

func TestNavigationOffQueue(t *testing.T) {
	s := newTestSession("a", "b", "c")
	s.Position = -1
	if slug, _ := s.Next(); slug != "a" {
		t.Errorf("Next() from off-queue = %q, want first", slug)
	}
	s.Position = 10
	if slug, _ := s.Prev(); slug != "c" {
		t.Errorf("Prev() from off-queue = %q, want last", slug)
	}
}

func TestEmptyQueue(t *testing.T) {
	s := newTestSession()
	if _, ok := s.Current(); ok {
		t.Error("Current() on empty queue should be false")
	}
	if _, ok := s.Next(); ok {
		t.Error("Next() on empty queue should be false")
	}
	if _, ok := s.Prev(); ok {
		t.Error("Prev() on empty queue should be false")
	}
	if w := s.Window(3); w != nil {
		t.Errorf("Window() = %v, want nil", w)
	}
}

func TestSingleSongQueue(t *testing.T) {
	s := newTestSession("only")
	if slug, _ := s.Next(); slug != "only" {
		t.Errorf("Next() = %q", slug)
	}
	if slug, _ := s.Prev(); slug != "only" {
		t.Errorf("Prev() = %q", slug)
	}
}

func TestJumpAndIndexOf(t *testing.T) {
	s := newTestSession("a", "b", "c")
	if s.IndexOf("c") != 2 || s.IndexOf("z") != -1 {
		t.Errorf("IndexOf() wrong: c=%d z=%d", s.IndexOf("c"), s.IndexOf("z"))
	}
	if !s.Jump("c") {
		t.Fatal("Jump(c) = false")
	}
	if cur, _ := s.Current(); cur != "c" {
		t.Errorf("Current() after Jump = %q", cur)
	}
	if s.Jump("z") {
		t.Error("Jump(z) should fail")
	}
	if cur, _ := s.Current(); cur != "c" {
		t.Errorf("failed Jump moved the cursor to %q", cur)
	}
}

func TestWindow(t *testing.T) {
	s := newTestSession("a", "b", "c", "d")
	s.Jump("c")
	if got, want := s.Window(3), []string{"c", "d", "a"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Window(3) = %v, want %v", got, want)
	}
	if got := s.Window(10); len(got) != 4 {
		t.Errorf("Window(10) = %v, want the whole queue", got)
	}
}
