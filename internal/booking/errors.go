package booking

// ValidationError reports malformed or missing input.
type ValidationError struct{ Msg string }

func (e *ValidationError) Error() string { return e.Msg }

// ConflictError reports an attempt to book an occupied slot.
type ConflictError struct{ Msg string }

func (e *ConflictError) Error() string { return e.Msg }

type NotFoundError struct{ Msg string }

func (e *NotFoundError) Error() string { return e.Msg }

const (
	MsgMissingFields = "missing required fields"
	MsgInvalidDate   = "invalid date format"
	MsgInvalidTime   = "invalid time format"
	MsgIDRequired    = "id required"
	MsgSlotBooked    = "slot already booked"
	MsgNotFound      = "appointment not found"
)

var (
	errMissingFields = &ValidationError{MsgMissingFields}
	errInvalidDate   = &ValidationError{MsgInvalidDate}
	errInvalidTime   = &ValidationError{MsgInvalidTime}
	errIDRequired    = &ValidationError{MsgIDRequired}
	errSlotBooked    = &ConflictError{MsgSlotBooked}
	errNotFound      = &NotFoundError{MsgNotFound}
)
