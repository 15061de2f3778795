package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/reazulislam1487/event-hub-server/internal/auth"
	"github.com/reazulislam1487/event-hub-server/internal/events"
	"github.com/reazulislam1487/event-hub-server/internal/middleware"
	"github.com/reazulislam1487/event-hub-server/internal/server"
	"github.com/reazulislam1487/event-hub-server/internal/store"
	"github.com/reazulislam1487/event-hub-server/internal/uploads"
)

const authBurst = 5

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		b, err := openBackends(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer b.close()
		if err := b.schema(ctx, logger); err != nil {
			return err
		}

		// ── Redis ────────────────────────────────────────────────
		rdb, err := store.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			return err
		}
		defer rdb.Close()
		sessions := auth.NewSessionStore(rdb)

		// ── MinIO ────────────────────────────────────────────────
		photos, err := store.NewPhotoStore(ctx, store.PhotoConfig{
			Endpoint:  cfg.MinioEndpoint,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
			Bucket:    cfg.MinioBucket,
			UseSSL:    cfg.MinioUseSSL,
		})
		if err != nil {
			return err
		}

		// ── Services ─────────────────────────────────────────────
		authSvc := auth.NewService(b.users(), sessions, auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL))
		eventSvc := events.NewService(b.mongo)

		// ── Router ───────────────────────────────────────────────
		router := server.NewRouter(server.Deps{
			Logger:      logger,
			CORSOrigins: cfg.CORSOrigins,
			Auth:        auth.NewHandler(authSvc),
			Verifier:    authSvc,
			Events:      events.NewHandler(eventSvc),
			Uploads:     uploads.NewHandler(photos),
			Health:      b.mongo,
			AuthLimiter: middleware.NewIPRateLimiter(cfg.AuthRatePerMinute, authBurst),
		})

		// ── Server ───────────────────────────────────────────────
		srv := &http.Server{
			Addr:              ":" + cfg.Port,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       time.Minute,
			WriteTimeout:      time.Minute,
		}

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			logger.Info().Str("port", cfg.Port).Str("user_store", cfg.UserStore).Msg("server listening")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			logger.Info().Msg("shutting down")
			shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutCtx)
		})
		return g.Wait()
	},
}
