package model

import "time"

type Admin struct {
	ID           int64
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

// Appointment is one booked lesson. Date is YYYY-MM-DD and Time is
// HH:MM:SS as the store keeps it.
type Appointment struct {
	ID        int64
	Date      string
	Time      string
	Student   string
	Notes     string
	CreatedAt time.Time
}

// Clock returns the time of day without seconds.
func (a *Appointment) Clock() string {
	if len(a.Time) >= 5 {
		return a.Time[:5]
	}
	return a.Time
}
