package middleware

import (
	"context"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"riding-school-api/internal/auth"
)

type ctxKey string

const adminKey ctxKey = "admin"

// skip auth for these
var open = map[string]bool{
	"/riding.v1.BookingService/Login": true,
}

// AdminFrom returns the claims of the admin making the call.
func AdminFrom(ctx context.Context) (*auth.Claims, bool) {
	c, ok := ctx.Value(adminKey).(*auth.Claims)
	return c, ok
}

func WithAdmin(ctx context.Context, c *auth.Claims) context.Context {
	return context.WithValue(ctx, adminKey, c)
}

func Auth(secret string) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, next grpc.UnaryHandler) (any, error) {
		if open[info.FullMethod] {
			return next(ctx, req)
		}

		md, ok := metadata.FromIncomingContext(ctx)
		if !ok {
			return nil, status.Error(codes.Unauthenticated, "missing metadata")
		}

		// token from Authorization: Bearer <jwt>
		raw := ""
		if vals := md.Get("authorization"); len(vals) > 0 {
			raw = strings.TrimPrefix(vals[0], "Bearer ")
		}
		if raw == "" {
			return nil, status.Error(codes.Unauthenticated, "no token")
		}

		claims, err := auth.ParseToken(raw, secret)
		if err != nil {
			return nil, status.Error(codes.Unauthenticated, "bad token")
		}
		return next(WithAdmin(ctx, claims), req)
	}
}
