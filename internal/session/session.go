package session

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

type contextKey struct{}

// Session はリクエスト中のクライアントに紐づくセッションへのハンドル。
type Session struct {
	id    string
	store Store
}

// New はストアとセッションIDからハンドルを生成する。
func New(store Store, id string) *Session {
	return &Session{id: id, store: store}
}

// ID はセッションIDを返す。
func (s *Session) ID() string {
	return s.id
}

// Get はキーの値を取得する。
func (s *Session) Get(ctx context.Context, key string) (string, bool, error) {
	return s.store.Get(ctx, s.id, key)
}

// Contains はキーが存在するか判定する。
func (s *Session) Contains(ctx context.Context, key string) (bool, error) {
	_, ok, err := s.store.Get(ctx, s.id, key)
	return ok, err
}

// Set はキーに値を書き込む。
func (s *Session) Set(ctx context.Context, key, value string) error {
	return s.store.Set(ctx, s.id, key, value)
}

// WithSession はセッションを格納したcontextを返す。
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// FromContext はcontextからセッションを取り出す。
func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(contextKey{}).(*Session)
	return s, ok
}

// CookieOptions はセッションCookieの設定。
type CookieOptions struct {
	Name   string
	MaxAge time.Duration
	Secure bool
}

// Middleware はCookieからセッションIDを読み取り、無ければ発行してcontextに格納する。
func Middleware(store Store, opts CookieOptions) func(http.Handler) http.Handler {
	if opts.Name == "" {
		opts.Name = "sessionid"
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var sid string
			if c, err := r.Cookie(opts.Name); err == nil && ValidID(c.Value) {
				sid = c.Value
			} else {
				id, err := NewID()
				if err != nil {
					slog.ErrorContext(r.Context(), "failed to issue session id", "error", err)
					http.Error(w, "internal server error", http.StatusInternalServerError)
					return
				}
				sid = id
				http.SetCookie(w, &http.Cookie{
					Name:     opts.Name,
					Value:    sid,
					Path:     "/",
					MaxAge:   int(opts.MaxAge.Seconds()),
					HttpOnly: true,
					Secure:   opts.Secure,
					SameSite: http.SameSiteLaxMode,
				})
			}

			ctx := WithSession(r.Context(), New(store, sid))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
