package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"event-rsvp-service/internal/middleware"
	"event-rsvp-service/internal/session"
	"event-rsvp-service/internal/shortid"
)

// URLパラメータの形式に合わないIDはハンドラに到達する前に404となる。
const (
	eventIDParam = "{event_id:" + shortid.Pattern + "}"
	rsvpIDParam  = "{rsvp_id:" + shortid.Pattern + "}"
)

// NewRouter はルーターを生成する。
func NewRouter(h *EventHandler, store session.Store, cookie session.CookieOptions) http.Handler {
	r := chi.NewRouter()

	// ミドルウェア
	r.Use(chimiddleware.RequestID)
	r.Use(middleware.RequestLogger)
	r.Use(chimiddleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	// ルート定義
	r.Route("/v1", func(r chi.Router) {
		r.Use(session.Middleware(store, cookie))

		r.Post("/events", h.CreateEvent)
		r.Route("/events/"+eventIDParam, func(r chi.Router) {
			r.Get("/", h.GetEvent)
			r.Put("/", h.UpdateEvent)
			r.Delete("/", h.DeleteEvent)
			r.Get("/rsvps", h.ListRSVPs)
			r.Post("/rsvps", h.CreateRSVP)
		})
		r.Route("/rsvps/"+rsvpIDParam, func(r chi.Router) {
			r.Get("/", h.GetRSVP)
			r.Put("/", h.UpdateRSVP)
			r.Delete("/", h.DeleteRSVP)
		})
	})

	return otelhttp.NewHandler(r, "event-rsvp-service",
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + r.URL.Path
		}),
	)
}
