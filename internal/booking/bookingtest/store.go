// Package bookingtest provides an in-memory booking.Store for tests.
package bookingtest

import (
	"context"
	"sort"
	"sync"
	"time"

	"riding-school-api/internal/events"
	"riding-school-api/internal/model"
	"riding-school-api/internal/store"
)

// Store mimics the Postgres store: serial ids, a unique slot and
// slot-ordered listings. Err, when set, is returned by every call.
type Store struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]model.Appointment
	Now    func() time.Time
	Err    error
}

func NewStore() *Store {
	return &Store{rows: make(map[int64]model.Appointment), Now: time.Now}
}

func (s *Store) CreateAppointment(_ context.Context, a *model.Appointment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	for _, r := range s.rows {
		if r.Date == a.Date && r.Time == a.Time {
			return store.ErrSlotTaken
		}
	}
	s.nextID++
	a.ID = s.nextID
	a.CreatedAt = s.Now()
	s.rows[a.ID] = *a
	return nil
}

func (s *Store) ListAppointmentsOn(_ context.Context, date string) ([]model.Appointment, error) {
	return s.filter(func(a model.Appointment) bool { return a.Date == date })
}

func (s *Store) ListAppointmentsSince(_ context.Context, since string) ([]model.Appointment, error) {
	return s.filter(func(a model.Appointment) bool { return a.Date >= since })
}

func (s *Store) filter(keep func(model.Appointment) bool) ([]model.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	var out []model.Appointment
	for _, r := range s.rows {
		if keep(r) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].Time < out[j].Time
	})
	return out, nil
}

func (s *Store) GetAppointment(_ context.Context, id int64) (*model.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	r, ok := s.rows[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &r, nil
}

func (s *Store) DeleteAppointment(_ context.Context, id int64) (*model.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	r, ok := s.rows[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	delete(s.rows, id)
	return &r, nil
}

// Put stores a directly, bypassing the slot check. Useful for seeding.
func (s *Store) Put(a model.Appointment) model.Appointment {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	a.ID = s.nextID
	if a.CreatedAt.IsZero() {
		a.CreatedAt = s.Now()
	}
	s.rows[a.ID] = a
	return a
}

// Count reports how many appointments occupy the slot.
func (s *Store) Count(date, tm string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, r := range s.rows {
		if r.Date == date && r.Time == tm {
			n++
		}
	}
	return n
}

// Publisher records published events.
type Publisher struct {
	mu  sync.Mutex
	got []events.Event
	Err error
}

func (p *Publisher) Publish(_ context.Context, ev events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Err != nil {
		return p.Err
	}
	p.got = append(p.got, ev)
	return nil
}

func (p *Publisher) Events() []events.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]events.Event(nil), p.got...)
}
