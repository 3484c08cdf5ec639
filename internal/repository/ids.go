package repository

import (
	"sync"
	"time"

	"github.com/debemdeboas/folio/internal/model"
)

type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now()
}

// IDSource hands out millisecond timestamps as post ids, bumping past the last
// id whenever the clock has not advanced.
type IDSource struct {
	mu   sync.Mutex
	last model.PostID
}

func (s *IDSource) Next(now time.Time) model.PostID {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := model.PostID(now.UnixMilli())
	if id <= s.last {
		id = s.last + 1
	}
	s.last = id
	return id
}

// Observe makes sure future ids are greater than id.
func (s *IDSource) Observe(id model.PostID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id > s.last {
		s.last = id
	}
}
