// Package main はAPIサーバーのエントリポイント。
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"event-rsvp-service/config"
	"event-rsvp-service/internal/handler"
	"event-rsvp-service/internal/infra"
	"event-rsvp-service/internal/ownership"
	"event-rsvp-service/internal/repository"
	"event-rsvp-service/internal/secret"
	"event-rsvp-service/internal/session"
	"event-rsvp-service/internal/usecase"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	// .envファイルを読み込む（存在しない場合は無視）
	// 既存の環境変数は上書きしない
	_ = godotenv.Load()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return err
	}

	// トレーサー初期化（ロガー設定の前に実行）
	tp, err := infra.InitTracer(ctx, cfg)
	if err != nil {
		return err
	}
	if tp != nil {
		defer func() {
			if err := tp.Shutdown(ctx); err != nil {
				slog.Error("failed to shutdown tracer", "error", err)
			}
		}()
	}

	// トレース情報付きロガーを設定
	infra.SetupLogger(os.Stdout, cfg)

	// サーバー鍵の解決。平文が無い場合のみKMSで復号する
	var dec infra.Decrypter
	if cfg.SecretKey == "" {
		kmsClient, err := infra.NewKMSClient(ctx, cfg.KMSKeyName)
		if err != nil {
			return err
		}
		defer func() {
			if closeErr := kmsClient.Close(); closeErr != nil {
				slog.Error("failed to close KMS client", "error", closeErr)
			}
		}()
		dec = kmsClient
	}
	serverKey, err := infra.ResolveServerKey(ctx, cfg, dec)
	if err != nil {
		return err
	}
	authority, err := secret.NewAuthority(serverKey)
	if err != nil {
		return err
	}

	// DB初期化
	db, err := infra.NewDB(cfg.DatabaseURL, cfg.OtelEnabled)
	if err != nil {
		return err
	}
	if cfg.DBAutoMigrate {
		if err := repository.AutoMigrate(db); err != nil {
			return err
		}
	}

	// セッションストア
	var store session.Store
	switch cfg.SessionBackend {
	case config.SessionBackendRedis:
		rdb, err := infra.NewRedisClient(ctx, cfg)
		if err != nil {
			return err
		}
		defer rdb.Close()
		store = session.NewRedisStore(rdb, "session", cfg.SessionTTL)
	default:
		store = session.NewMemoryStore(cfg.SessionTTL)
	}

	// DI
	events := repository.NewEventRepository(db)
	rsvps := repository.NewRSVPRepository(db)
	service := usecase.NewEventService(events, rsvps)
	owners := ownership.NewService(authority, cfg.BaseURL)
	h := handler.NewEventHandler(service, owners)
	router := handler.NewRouter(h, store, session.CookieOptions{
		Name:   cfg.SessionCookieName,
		MaxAge: cfg.SessionTTL,
		Secure: cfg.SessionCookieSecure,
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
		<-sigCh

		slog.Info("shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
	}()

	slog.Info("starting server", "port", cfg.Port, "session_backend", cfg.SessionBackend)
	if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	slog.Info("server stopped")
	return nil
}
