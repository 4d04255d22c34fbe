package main

import (
	"context"
	"errors"
	stdlog "log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
	"google.golang.org/grpc"

	"riding-school-api/internal/auth"
	"riding-school-api/internal/booking"
	"riding-school-api/internal/config"
	"riding-school-api/internal/events"
	"riding-school-api/internal/handler"
	"riding-school-api/internal/httpapi"
	"riding-school-api/internal/logger"
	"riding-school-api/internal/middleware"
	"riding-school-api/internal/model"
	"riding-school-api/internal/store"
)

func main() {
	cfg := config.Load()

	log, err := logger.New(cfg)
	if err != nil {
		stdlog.Fatalf("logger: %v", err)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// database
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal("db", zap.Error(err))
	}
	defer pool.Close()
	if err := pool.Ping(ctx); err != nil {
		log.Fatal("db ping", zap.Error(err))
	}
	log.Info("connected to postgres")

	// run migrations
	if migration, err := os.ReadFile(cfg.Migrations); err != nil {
		log.Warn("migration file not found, skipping", zap.String("path", cfg.Migrations), zap.Error(err))
	} else if _, err := pool.Exec(ctx, string(migration)); err != nil {
		log.Warn("migration failed", zap.Error(err))
	} else {
		log.Info("migration applied")
	}

	st := store.New(pool)

	var pub events.Publisher = events.Nop{}
	if cfg.AMQPURL != "" {
		p, err := events.DialAMQP(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			log.Warn("event publishing disabled", zap.Error(err))
		} else {
			defer p.Close()
			pub = p
			log.Info("publishing events", zap.String("exchange", cfg.AMQPExchange))
		}
	}

	svc := booking.New(st, log, booking.WithPublisher(pub))

	// public json api
	httpSrv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           httpapi.New(svc, st, log).Handler(cfg.RateLimitPerMin),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Info("http listening", zap.String("port", cfg.HTTPPort))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http", zap.Error(err))
			stop()
		}
	}()

	// admin grpc
	var grpcSrv *grpc.Server
	if cfg.JWTSecret == "" {
		log.Info("JWT_SECRET not set, admin grpc disabled")
	} else {
		seedAdmin(ctx, st, cfg, log)

		rl := middleware.NewRateLimiter(5, 10)
		go rl.Run(ctx)
		grpcSrv = grpc.NewServer(
			grpc.ChainUnaryInterceptor(
				middleware.Logging(log),
				middleware.RateLimit(rl),
				middleware.Auth(cfg.JWTSecret),
			),
		)
		handler.Register(grpcSrv, handler.New(svc, st, cfg.JWTSecret, log))

		lis, err := net.Listen("tcp", ":"+cfg.GRPCPort)
		if err != nil {
			log.Fatal("listen", zap.Error(err))
		}
		go func() {
			log.Info("grpc listening", zap.String("port", cfg.GRPCPort))
			if err := grpcSrv.Serve(lis); err != nil {
				log.Error("grpc", zap.Error(err))
			}
		}()
	}

	// graceful shutdown
	<-ctx.Done()
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if grpcSrv != nil {
		grpcSrv.GracefulStop()
	}
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Warn("http shutdown", zap.Error(err))
	}
}

// seedAdmin makes sure the configured admin can log in with the
// configured password.
func seedAdmin(ctx context.Context, st *store.Store, cfg config.Config, log *zap.Logger) {
	if cfg.AdminUsername == "" || cfg.AdminPassword == "" {
		log.Warn("ADMIN_USERNAME or ADMIN_PASSWORD not set, no admin seeded")
		return
	}
	hash, err := auth.HashPassword(cfg.AdminPassword)
	if err != nil {
		log.Fatal("hash admin password", zap.Error(err))
	}
	a := &model.Admin{Username: cfg.AdminUsername, PasswordHash: hash}
	if err := st.UpsertAdmin(ctx, a); err != nil {
		log.Fatal("seed admin", zap.Error(err))
	}
	log.Info("admin ready", zap.String("username", a.Username), zap.Int64("id", a.ID))
}
