package httpapi_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"riding-school-api/internal/booking"
	"riding-school-api/internal/booking/bookingtest"
	"riding-school-api/internal/httpapi"
	"riding-school-api/internal/model"
)

type pinger struct{ err error }

func (p pinger) Ping(context.Context) error { return p.err }

func setup(t *testing.T) (http.Handler, *bookingtest.Store) {
	t.Helper()
	st := bookingtest.NewStore()
	svc := booking.New(st, zap.NewNop())
	return httpapi.New(svc, pinger{}, zap.NewNop()).Handler(1000), st
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

type errBody struct {
	Error string `json:"error"`
}

type created struct {
	Success bool   `json:"success"`
	ID      int64  `json:"id"`
	Message string `json:"message"`
}

type deleted struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	Deleted booking.View `json:"deleted"`
}

func TestBookingScenario(t *testing.T) {
	h, _ := setup(t)
	body := `{"date":"2025-03-10","time":"09:30","student":"Ayşe"}`

	rec := do(t, h, http.MethodPost, "/appointments", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, created{Success: true, ID: 1, Message: "created"}, decode[created](t, rec))

	rec = do(t, h, http.MethodGet, "/appointments?date=2025-03-10", "")
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[map[string][]booking.View](t, rec)
	require.Len(t, list["2025-03-10"], 1)
	v := list["2025-03-10"][0]
	assert.Equal(t, int64(1), v.ID)
	assert.Equal(t, "09:30", v.Time)
	assert.Equal(t, "Ayşe", v.Student)
	assert.Equal(t, "", v.Notes)
	assert.False(t, v.CreatedAt.IsZero())
	assert.NotContains(t, rec.Body.String(), `"date"`)

	rec = do(t, h, http.MethodPost, "/appointments", body)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "slot already booked", decode[errBody](t, rec).Error)

	rec = do(t, h, http.MethodDelete, "/appointments", `{"id":1}`)
	require.Equal(t, http.StatusOK, rec.Code)
	d := decode[deleted](t, rec)
	assert.True(t, d.Success)
	assert.Equal(t, "deleted", d.Message)
	assert.Equal(t, int64(1), d.Deleted.ID)
	assert.Equal(t, "2025-03-10", d.Deleted.Date)
	assert.Equal(t, "09:30", d.Deleted.Time)
	assert.Equal(t, "Ayşe", d.Deleted.Student)

	rec = do(t, h, http.MethodGet, "/appointments?date=2025-03-10", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{}`, rec.Body.String())
}

func TestCreateValidation(t *testing.T) {
	h, st := setup(t)

	tests := []struct {
		name string
		body string
		code int
		msg  string
	}{
		{"empty body", ``, http.StatusBadRequest, "missing required fields"},
		{"no student", `{"date":"2025-03-10","time":"09:30"}`, http.StatusBadRequest, "missing required fields"},
		{"blank student", `{"date":"2025-03-10","time":"09:30","student":"  "}`, http.StatusBadRequest, "missing required fields"},
		{"bad date", `{"date":"10.03.2025","time":"09:30","student":"A"}`, http.StatusBadRequest, "invalid date format"},
		{"impossible date", `{"date":"2024-13-40","time":"09:30","student":"A"}`, http.StatusBadRequest, "invalid date format"},
		{"bad time", `{"date":"2025-03-10","time":"9.30","student":"A"}`, http.StatusBadRequest, "invalid time format"},
		{"malformed json", `{"date":`, http.StatusBadRequest, "invalid request body"},
		{"wrong type", `{"date":20250310,"time":"09:30","student":"A"}`, http.StatusBadRequest, "invalid request body"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, "/appointments", tt.body)
			assert.Equal(t, tt.code, rec.Code)
			assert.Equal(t, tt.msg, decode[errBody](t, rec).Error)
		})
	}

	all, err := st.ListAppointmentsSince(context.Background(), "0000-00-00")
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestCreateKeepsNotes(t *testing.T) {
	h, st := setup(t)

	rec := do(t, h, http.MethodPost, "/appointments",
		`{"date":"2025-03-10","time":"09:30","student":" Ayşe ","notes":"  bring helmet "}`)
	require.Equal(t, http.StatusOK, rec.Code)

	a, err := st.GetAppointment(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Ayşe", a.Student)
	assert.Equal(t, "bring helmet", a.Notes)
	assert.Equal(t, "09:30:00", a.Time)
}

func TestDeleteErrors(t *testing.T) {
	h, st := setup(t)
	st.Put(model.Appointment{Date: "2025-03-10", Time: "09:30:00", Student: "Ayşe"})

	tests := []struct {
		name string
		body string
		code int
		msg  string
	}{
		{"no id", `{}`, http.StatusBadRequest, "id required"},
		{"empty body", ``, http.StatusBadRequest, "id required"},
		{"zero id", `{"id":0}`, http.StatusBadRequest, "id required"},
		{"empty string id", `{"id":""}`, http.StatusBadRequest, "id required"},
		{"non numeric id", `{"id":"abc"}`, http.StatusBadRequest, "invalid request body"},
		{"unknown id", `{"id":99}`, http.StatusNotFound, "appointment not found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodDelete, "/appointments", tt.body)
			assert.Equal(t, tt.code, rec.Code)
			assert.Equal(t, tt.msg, decode[errBody](t, rec).Error)
		})
	}

	// a numeric string id is accepted
	rec := do(t, h, http.MethodDelete, "/appointments", `{"id":"1"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestListWithoutFilter(t *testing.T) {
	h, st := setup(t)
	today := time.Now()
	recent := today.AddDate(0, 0, -3).Format(time.DateOnly)
	old := today.AddDate(0, 0, -45).Format(time.DateOnly)
	st.Put(model.Appointment{Date: recent, Time: "16:00:00", Student: "late"})
	st.Put(model.Appointment{Date: recent, Time: "08:15:00", Student: "early"})
	st.Put(model.Appointment{Date: old, Time: "10:00:00", Student: "old"})

	rec := do(t, h, http.MethodGet, "/appointments", "")
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[map[string][]booking.View](t, rec)

	assert.NotContains(t, list, old)
	require.Len(t, list[recent], 2)
	assert.Equal(t, "08:15", list[recent][0].Time)
	assert.Equal(t, "16:00", list[recent][1].Time)
}

func TestListBadFilter(t *testing.T) {
	h, _ := setup(t)

	rec := do(t, h, http.MethodGet, "/appointments?date=tomorrow", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid date format", decode[errBody](t, rec).Error)
}

func TestGetAppointment(t *testing.T) {
	h, st := setup(t)
	st.Put(model.Appointment{Date: "2025-03-10", Time: "09:30:00", Student: "Ayşe", Notes: "pony"})

	rec := do(t, h, http.MethodGet, "/appointments/1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	v := decode[booking.View](t, rec)
	assert.Equal(t, "2025-03-10", v.Date)
	assert.Equal(t, "pony", v.Notes)

	rec = do(t, h, http.MethodGet, "/appointments/2", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, http.MethodGet, "/appointments/x", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStoreFailureIs500(t *testing.T) {
	h, st := setup(t)
	st.Err = errors.New("connection refused")

	rec := do(t, h, http.MethodGet, "/appointments", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, decode[errBody](t, rec).Error, "connection refused")

	rec = do(t, h, http.MethodPost, "/appointments", `{"date":"2025-03-10","time":"09:30","student":"A"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestOptionsAndMethodNotAllowed(t *testing.T) {
	h, _ := setup(t)

	rec := do(t, h, http.MethodOptions, "/appointments", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Body.String())

	for _, m := range []string{http.MethodPut, http.MethodPatch} {
		rec = do(t, h, m, "/appointments", "{}")
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code, m)
		assert.Equal(t, "method not allowed", decode[errBody](t, rec).Error)
	}
}

func TestCORS(t *testing.T) {
	h, _ := setup(t)

	req := httptest.NewRequest(http.MethodOptions, "/appointments", nil)
	req.Header.Set("Origin", "https://karatay.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodDelete)
	req.Header.Set("Access-Control-Request-Headers", "Content-Type")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), http.MethodDelete)

	req = httptest.NewRequest(http.MethodGet, "/appointments", nil)
	req.Header.Set("Origin", "https://karatay.example")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.NotEmpty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestHealth(t *testing.T) {
	svc := booking.New(bookingtest.NewStore(), zap.NewNop())

	ok := httpapi.New(svc, pinger{}, zap.NewNop()).Handler(100)
	assert.Equal(t, http.StatusOK, do(t, ok, http.MethodGet, "/healthz", "").Code)

	down := httpapi.New(svc, pinger{err: errors.New("no db")}, zap.NewNop()).Handler(100)
	assert.Equal(t, http.StatusServiceUnavailable, do(t, down, http.MethodGet, "/healthz", "").Code)
}

func TestRateLimit(t *testing.T) {
	svc := booking.New(bookingtest.NewStore(), zap.NewNop())
	h := httpapi.New(svc, pinger{}, zap.NewNop()).Handler(2)

	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/appointments", "").Code)
	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/appointments", "").Code)
	rec := do(t, h, http.MethodGet, "/appointments", "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "too many requests", decode[errBody](t, rec).Error)
}
