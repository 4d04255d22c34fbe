// Package handler implements the admin gRPC surface over the booking
// service. Messages are google.protobuf.Struct values so no generated
// code is needed.
package handler

import (
	"context"

	"go.uber.org/zap"

	"riding-school-api/internal/booking"
	"riding-school-api/internal/model"
)

type AdminStore interface {
	AdminByUsername(ctx context.Context, username string) (*model.Admin, error)
}

type Handler struct {
	svc    *booking.Service
	admins AdminStore
	secret string
	log    *zap.Logger
}

func New(svc *booking.Service, admins AdminStore, secret string, log *zap.Logger) *Handler {
	return &Handler{svc: svc, admins: admins, secret: secret, log: log}
}
