package session

import (
	"time"

	"github.com/sukalov/jamsheet/internal/songbook"
)

// Session is one chat's jam: the filtered queue of song slugs and where the
// player currently is in it.
type Session struct {
	ChatID    int64           `json:"chat_id"`
	Username  string          `json:"username"`
	Queue     []string        `json:"queue"`
	Position  int             `json:"position"`
	Filter    songbook.Filter `json:"filter"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// New starts a session at the top of the queue built from songs.
func New(chatID int64, username string, songs []songbook.Song, filter songbook.Filter) Session {
	queue := make([]string, 0, len(songs))
	for _, song := range songs {
		queue = append(queue, song.Slug)
	}
	return Session{
		ChatID:    chatID,
		Username:  username,
		Queue:     queue,
		Position:  0,
		Filter:    filter,
		UpdatedAt: time.Now(),
	}
}

func (s *Session) Len() int {
	return len(s.Queue)
}

func (s *Session) inRange() bool {
	return s.Position >= 0 && s.Position < len(s.Queue)
}

// Current returns the slug under the cursor. An empty queue has none.
func (s *Session) Current() (string, bool) {
	if !s.inRange() {
		return "", false
	}
	return s.Queue[s.Position], true
}

// Next moves forward, wrapping from the last song to the first. A cursor that
// is off the queue lands on the first song.
func (s *Session) Next() (string, bool) {
	if len(s.Queue) == 0 {
		return "", false
	}
	if !s.inRange() || s.Position == len(s.Queue)-1 {
		s.Position = 0
	} else {
		s.Position++
	}
	s.UpdatedAt = time.Now()
	return s.Queue[s.Position], true
}

// Prev moves back, wrapping from the first song to the last. A cursor that is
// off the queue lands on the last song.
func (s *Session) Prev() (string, bool) {
	if len(s.Queue) == 0 {
		return "", false
	}
	if !s.inRange() || s.Position == 0 {
		s.Position = len(s.Queue) - 1
	} else {
		s.Position--
	}
	s.UpdatedAt = time.Now()
	return s.Queue[s.Position], true
}

// IndexOf returns the queue position of slug, or -1.
func (s *Session) IndexOf(slug string) int {
	for i, q := range s.Queue {
		if q == slug {
			return i
		}
	}
	return -1
}

// Jump moves the cursor to slug if it is queued.
func (s *Session) Jump(slug string) bool {
	i := s.IndexOf(slug)
	if i < 0 {
		return false
	}
	s.Position = i
	s.UpdatedAt = time.Now()
	return true
}

// Window returns up to size slugs starting at the cursor, wrapping around,
// for showing what is coming up.
func (s *Session) Window(size int) []string {
	n := len(s.Queue)
	if n == 0 || size <= 0 {
		return nil
	}
	if size > n {
		size = n
	}
	start := s.Position
	if !s.inRange() {
		start = 0
	}
	out := make([]string, 0, size)
	for i := 0; i < size; i++ {
		out = append(out, s.Queue[(start+i)%n])
	}
	return out
}
