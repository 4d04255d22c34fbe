// Package booking holds the riding school's appointment rules: input
// validation, the one-booking-per-slot invariant and the listing window.
//
// Service keeps no state between calls; every operation goes to the
// store, so one instance is shared by all request handlers.
package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"riding-school-api/internal/events"
	"riding-school-api/internal/model"
	"riding-school-api/internal/store"
)

// ListWindowDays is how far back an unfiltered listing reaches.
const ListWindowDays = 30

const (
	MsgCreated = "created"
	MsgDeleted = "deleted"
)

// Store is the persistence the service needs. CreateAppointment must
// return store.ErrSlotTaken when the slot is occupied; lookups return
// store.ErrNotFound for unknown ids.
type Store interface {
	CreateAppointment(ctx context.Context, a *model.Appointment) error
	ListAppointmentsOn(ctx context.Context, date string) ([]model.Appointment, error)
	ListAppointmentsSince(ctx context.Context, since string) ([]model.Appointment, error)
	GetAppointment(ctx context.Context, id int64) (*model.Appointment, error)
	DeleteAppointment(ctx context.Context, id int64) (*model.Appointment, error)
}

// View is an appointment as listed under its date.
type View struct {
	ID        int64     `json:"id"`
	Date      string    `json:"date,omitempty"`
	Time      string    `json:"time"`
	Student   string    `json:"student"`
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"createdAt"`
}

// ToView renders a for clients. withDate includes the date field, which
// grouped listings leave out.
func ToView(a *model.Appointment, withDate bool) View {
	v := View{
		ID:        a.ID,
		Time:      a.Clock(),
		Student:   a.Student,
		Notes:     a.Notes,
		CreatedAt: a.CreatedAt,
	}
	if withDate {
		v.Date = a.Date
	}
	return v
}

type Service struct {
	store Store
	pub   events.Publisher
	log   *zap.Logger
	now   func() time.Time
}

type Option func(*Service)

func WithPublisher(p events.Publisher) Option {
	return func(s *Service) { s.pub = p }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func New(st Store, log *zap.Logger, opts ...Option) *Service {
	s := &Service{store: st, pub: events.Nop{}, log: log, now: time.Now}
	for _, o := range opts {
		o(s)
	}
	return s
}

// ListAppointments groups appointments by date. With a date filter only
// that day is returned; otherwise everything from ListWindowDays ago onward.
func (s *Service) ListAppointments(ctx context.Context, date string) (map[string][]View, error) {
	date = strings.TrimSpace(date)

	var (
		apts []model.Appointment
		err  error
	)
	if date != "" {
		if !ValidDate(date) {
			return nil, errInvalidDate
		}
		apts, err = s.store.ListAppointmentsOn(ctx, date)
	} else {
		since := s.now().AddDate(0, 0, -ListWindowDays).Format(time.DateOnly)
		apts, err = s.store.ListAppointmentsSince(ctx, since)
	}
	if err != nil {
		return nil, err
	}

	out := make(map[string][]View)
	for i := range apts {
		a := &apts[i]
		out[a.Date] = append(out[a.Date], ToView(a, false))
	}
	return out, nil
}

func (s *Service) GetAppointment(ctx context.Context, id int64) (*model.Appointment, error) {
	if id <= 0 {
		return nil, errIDRequired
	}
	a, err := s.store.GetAppointment(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, errNotFound
	}
	return a, err
}

// CreateAppointment books a slot. The store's uniqueness constraint is the
// only conflict check, so two racing requests cannot both succeed.
func (s *Service) CreateAppointment(ctx context.Context, in NewAppointment) (*model.Appointment, error) {
	in.normalize()
	if err := in.check(); err != nil {
		return nil, err
	}

	apt := &model.Appointment{
		Date:    in.Date,
		Time:    in.Time + ":00",
		Student: in.Student,
		Notes:   in.Notes,
	}
	if err := s.store.CreateAppointment(ctx, apt); err != nil {
		if errors.Is(err, store.ErrSlotTaken) {
			return nil, errSlotBooked
		}
		return nil, fmt.Errorf("create appointment: %w", err)
	}

	s.log.Info("appointment created",
		zap.Int64("id", apt.ID),
		zap.String("date", apt.Date),
		zap.String("time", apt.Clock()),
	)
	s.publish(ctx, events.AppointmentCreated, apt)
	return apt, nil
}

// DeleteAppointment removes the appointment and returns what was deleted.
func (s *Service) DeleteAppointment(ctx context.Context, id int64) (*model.Appointment, error) {
	if id <= 0 {
		return nil, errIDRequired
	}
	apt, err := s.store.DeleteAppointment(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, errNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("delete appointment: %w", err)
	}

	s.log.Info("appointment deleted", zap.Int64("id", apt.ID))
	s.publish(ctx, events.AppointmentDeleted, apt)
	return apt, nil
}

// publish is best-effort; the booking already happened.
func (s *Service) publish(ctx context.Context, t events.Type, a *model.Appointment) {
	if err := s.pub.Publish(ctx, events.New(t, a, s.now())); err != nil {
		s.log.Warn("publish event failed", zap.String("type", string(t)), zap.Int64("id", a.ID), zap.Error(err))
	}
}
