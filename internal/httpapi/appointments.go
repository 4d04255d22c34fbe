package httpapi

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"riding-school-api/internal/booking"
)

type createResponse struct {
	Success bool   `json:"success"`
	ID      int64  `json:"id"`
	Message string `json:"message"`
}

type deleteResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	Deleted booking.View `json:"deleted"`
}

func (a *API) listAppointments(w http.ResponseWriter, r *http.Request) {
	grouped, err := a.svc.ListAppointments(r.Context(), r.URL.Query().Get("date"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, grouped)
}

func (a *API) getAppointment(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	apt, err := a.svc.GetAppointment(r.Context(), id)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, booking.ToView(apt, true))
}

func (a *API) createAppointment(w http.ResponseWriter, r *http.Request) {
	var req booking.NewAppointment
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, msgBadBody)
		return
	}
	apt, err := a.svc.CreateAppointment(r.Context(), req)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, createResponse{Success: true, ID: apt.ID, Message: booking.MsgCreated})
}

func (a *API) deleteAppointment(w http.ResponseWriter, r *http.Request) {
	var req deleteRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, msgBadBody)
		return
	}
	apt, err := a.svc.DeleteAppointment(r.Context(), int64(req.ID))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, deleteResponse{
		Success: true,
		Message: booking.MsgDeleted,
		Deleted: booking.ToView(apt, true),
	})
}
