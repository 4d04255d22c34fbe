package handler

import (
	"context"
	"errors"
	"strconv"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"riding-school-api/internal/booking"
	"riding-school-api/internal/middleware"
)

func (h *Handler) ListAppointments(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	grouped, err := h.svc.ListAppointments(ctx, str(req, "date"))
	if err != nil {
		return nil, h.toStatus(err)
	}

	days := make(map[string]any, len(grouped))
	for date, views := range grouped {
		list := make([]any, len(views))
		for i, v := range views {
			list[i] = viewMap(v)
		}
		days[date] = list
	}
	return reply(map[string]any{"appointments": days})
}

func (h *Handler) GetAppointment(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	a, err := h.svc.GetAppointment(ctx, id(req))
	if err != nil {
		return nil, h.toStatus(err)
	}
	return reply(map[string]any{"appointment": viewMap(booking.ToView(a, true))})
}

func (h *Handler) CreateAppointment(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	a, err := h.svc.CreateAppointment(ctx, booking.NewAppointment{
		Date:    str(req, "date"),
		Time:    str(req, "time"),
		Student: str(req, "student"),
		Notes:   str(req, "notes"),
	})
	if err != nil {
		return nil, h.toStatus(err)
	}
	return reply(map[string]any{"id": a.ID, "message": booking.MsgCreated})
}

func (h *Handler) DeleteAppointment(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	a, err := h.svc.DeleteAppointment(ctx, id(req))
	if err != nil {
		return nil, h.toStatus(err)
	}
	if c, ok := middleware.AdminFrom(ctx); ok {
		h.log.Info("appointment removed by admin", zap.Int64("id", a.ID), zap.String("admin", c.Username))
	}
	return reply(map[string]any{
		"message": booking.MsgDeleted,
		"deleted": viewMap(booking.ToView(a, true)),
	})
}

func (h *Handler) toStatus(err error) error {
	var (
		verr *booking.ValidationError
		cerr *booking.ConflictError
		nerr *booking.NotFoundError
	)
	switch {
	case errors.As(err, &verr):
		return status.Error(codes.InvalidArgument, verr.Msg)
	case errors.As(err, &cerr):
		return status.Error(codes.AlreadyExists, cerr.Msg)
	case errors.As(err, &nerr):
		return status.Error(codes.NotFound, nerr.Msg)
	}
	h.log.Error("grpc internal error", zap.Error(err))
	return status.Error(codes.Internal, "internal error")
}

func str(s *structpb.Struct, key string) string {
	return s.GetFields()[key].GetStringValue()
}

// id accepts a number or a numeric string.
func id(s *structpb.Struct) int64 {
	switch k := s.GetFields()["id"].GetKind().(type) {
	case *structpb.Value_NumberValue:
		return int64(k.NumberValue)
	case *structpb.Value_StringValue:
		n, _ := strconv.ParseInt(k.StringValue, 10, 64)
		return n
	}
	return 0
}

func viewMap(v booking.View) map[string]any {
	m := map[string]any{
		"id":        v.ID,
		"time":      v.Time,
		"student":   v.Student,
		"notes":     v.Notes,
		"createdAt": v.CreatedAt.Format(time.RFC3339),
	}
	if v.Date != "" {
		m["date"] = v.Date
	}
	return m
}

func reply(m map[string]any) (*structpb.Struct, error) {
	s, err := structpb.NewStruct(m)
	if err != nil {
		return nil, status.Error(codes.Internal, "internal error")
	}
	return s, nil
}
