package handler

import (
	"context"
	"strings"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"riding-school-api/internal/auth"
)

func (h *Handler) Login(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	username := strings.TrimSpace(str(req, "username"))
	password := str(req, "password")
	if username == "" || password == "" {
		return nil, status.Error(codes.InvalidArgument, "username and password required")
	}

	a, err := h.admins.AdminByUsername(ctx, username)
	if err != nil {
		return nil, status.Error(codes.Unauthenticated, "invalid credentials")
	}
	if !auth.CheckPassword(a.PasswordHash, password) {
		return nil, status.Error(codes.Unauthenticated, "invalid credentials")
	}

	tok, err := auth.MakeToken(a.ID, a.Username, h.secret)
	if err != nil {
		return nil, status.Error(codes.Internal, "internal error")
	}
	return reply(map[string]any{"token": tok, "adminId": a.ID})
}
