// Package events publishes appointment lifecycle notifications so other
// school systems (reminders, calendars) can follow bookings.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"

	"riding-school-api/internal/model"
)

type Type string

const (
	AppointmentCreated Type = "appointment.created"
	AppointmentDeleted Type = "appointment.deleted"
)

type Appointment struct {
	ID        int64     `json:"id"`
	Date      string    `json:"date"`
	Time      string    `json:"time"`
	Student   string    `json:"student"`
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"createdAt"`
}

type Event struct {
	ID          string      `json:"id"`
	Type        Type        `json:"type"`
	OccurredAt  time.Time   `json:"occurredAt"`
	Appointment Appointment `json:"appointment"`
}

func New(t Type, a *model.Appointment, at time.Time) Event {
	return Event{
		ID:         uuid.New().String(),
		Type:       t,
		OccurredAt: at,
		Appointment: Appointment{
			ID:        a.ID,
			Date:      a.Date,
			Time:      a.Clock(),
			Student:   a.Student,
			Notes:     a.Notes,
			CreatedAt: a.CreatedAt,
		},
	}
}

type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

// Nop drops every event.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
