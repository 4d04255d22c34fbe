package booking

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var (
	dateShape = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	timeShape = regexp.MustCompile(`^\d{2}:\d{2}$`)
)

var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterValidation("slotdate", func(fl validator.FieldLevel) bool {
		return ValidDate(fl.Field().String())
	})
	validate.RegisterValidation("slottime", func(fl validator.FieldLevel) bool {
		return ValidTime(fl.Field().String())
	})
}

// ValidDate accepts YYYY-MM-DD naming a real calendar day.
func ValidDate(s string) bool {
	if !dateShape.MatchString(s) {
		return false
	}
	_, err := time.Parse(time.DateOnly, s)
	return err == nil
}

// ValidTime accepts HH:MM on a 24h clock.
func ValidTime(s string) bool {
	if !timeShape.MatchString(s) {
		return false
	}
	_, err := time.Parse("15:04", s)
	return err == nil
}

// NewAppointment is the input to CreateAppointment. Notes is optional.
type NewAppointment struct {
	Date    string `json:"date" validate:"required,slotdate"`
	Time    string `json:"time" validate:"required,slottime"`
	Student string `json:"student" validate:"required"`
	Notes   string `json:"notes"`
}

func (n *NewAppointment) normalize() {
	n.Date = strings.TrimSpace(n.Date)
	n.Time = strings.TrimSpace(n.Time)
	n.Student = strings.TrimSpace(n.Student)
	n.Notes = strings.TrimSpace(n.Notes)
}

// check maps validator failures onto the service's messages. Missing
// fields win over format problems.
func (n *NewAppointment) check() error {
	err := validate.Struct(n)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	var bad error
	for _, fe := range verrs {
		if fe.Tag() == "required" {
			return errMissingFields
		}
		if bad != nil {
			continue
		}
		switch fe.Field() {
		case "Date":
			bad = errInvalidDate
		case "Time":
			bad = errInvalidTime
		}
	}
	if bad == nil {
		return err
	}
	return bad
}
