// Package middleware はHTTPミドルウェアと操作ログを提供する。
package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

const (
	ResultSuccess = "SUCCESS"
	ResultFailed  = "FAILED"
	ResultDenied  = "DENIED"
)

// WriteOperationLog はイベント・RSVPの操作ログを出力する。シークレットは含めない。
func WriteOperationLog(ctx context.Context, operation string, resourceID string, result string) {
	slog.InfoContext(ctx, "operation completed",
		"operation", operation,
		"resource_id", resourceID,
		"result", result,
		"timestamp", time.Now().UTC().Format(time.RFC3339),
	)
}

// RequestLogger はリクエストごとにアクセスログを出力する。
// クエリ文字列はシークレットを含み得るため出力しない。
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		level := slog.LevelInfo
		if status >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		slog.Log(r.Context(), level, "http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"bytes", ww.BytesWritten(),
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", chimiddleware.GetReqID(r.Context()),
		)
	})
}
