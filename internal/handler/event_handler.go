// Package handler はHTTPハンドラを提供する。
package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"event-rsvp-service/internal/domain"
	"event-rsvp-service/internal/middleware"
	"event-rsvp-service/internal/ownership"
	"event-rsvp-service/internal/session"
	"event-rsvp-service/internal/shortid"
	"event-rsvp-service/internal/usecase"
	"event-rsvp-service/pkg/httputil"
)

// EventHandler はイベントとRSVPのHTTPハンドラを提供する。
type EventHandler struct {
	service *usecase.EventService
	owners  *ownership.Service
}

// NewEventHandler は新しいEventHandlerを生成する。
func NewEventHandler(service *usecase.EventService, owners *ownership.Service) *EventHandler {
	return &EventHandler{
		service: service,
		owners:  owners,
	}
}

// EventRequest はイベント作成・更新のリクエスト形式。
type EventRequest struct {
	Title       string    `json:"title"`
	Tagline     string    `json:"tagline"`
	Description string    `json:"description"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	Location    string    `json:"location"`
}

func (req EventRequest) input() domain.EventInput {
	return domain.EventInput{
		Title:       req.Title,
		Tagline:     req.Tagline,
		Description: req.Description,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Location:    req.Location,
	}
}

// EventResponse はイベントのレスポンス形式。
type EventResponse struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Tagline     string `json:"tagline"`
	Description string `json:"description"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	Location    string `json:"location"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

// EventLinks はイベントの地図・カレンダーへのリンク。
type EventLinks struct {
	GoogleMapsIframe string `json:"google_maps_iframe"`
	AddToGoogleCal   string `json:"add_to_google_calendar"`
	GoogleMaps       string `json:"google_maps"`
	AppleMaps        string `json:"apple_maps"`
}

// EventDetailResponse はイベント詳細のレスポンス形式。
type EventDetailResponse struct {
	EventResponse
	Links    EventLinks `json:"links"`
	IsOwner  bool       `json:"is_owner"`
	MyRSVPID string     `json:"my_rsvp_id,omitempty"`
}

// GrantResponse は作成直後に一度だけ返す所有権情報。
type GrantResponse struct {
	Secret  string `json:"secret"`
	EditURL string `json:"edit_url"`
}

// EventCreatedResponse はイベント作成のレスポンス形式。
type EventCreatedResponse struct {
	EventResponse
	GrantResponse
}

func newEventResponse(e *domain.Event) EventResponse {
	return EventResponse{
		ID:          shortid.Encode(e.ID),
		Title:       e.Title,
		Tagline:     e.Tagline,
		Description: e.Description,
		StartTime:   e.StartTime.UTC().Format(time.RFC3339),
		EndTime:     e.EndTime.UTC().Format(time.RFC3339),
		Location:    e.Location,
		CreatedAt:   e.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:   e.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

// rsvpSessionKey はイベントに対して自分が作成したRSVPのIDを保存するセッションキー。
func rsvpSessionKey(eventID uuid.UUID) string {
	return eventID.String() + "_rsvp_id"
}

// sessionFrom はリクエストのセッションを返す。セッションが無い場合はnilインターフェースを返す。
func sessionFrom(r *http.Request) ownership.Session {
	if s, ok := session.FromContext(r.Context()); ok && s != nil {
		return s
	}
	return nil
}

// pathID はURLパラメータの短縮IDをデコードする。
func pathID(r *http.Request, name string) (uuid.UUID, error) {
	return shortid.Decode(chi.URLParam(r, name))
}

func suppliedSecret(r *http.Request) string {
	return r.URL.Query().Get(ownership.SecretParam)
}

// writeError はエラーをHTTPステータスに変換して返す。
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidIdentifier):
		httputil.Error(w, http.StatusNotFound, "NOT_FOUND", "resource not found")
	case errors.Is(err, domain.ErrEventNotFound):
		httputil.Error(w, http.StatusNotFound, "NOT_FOUND", "event not found")
	case errors.Is(err, domain.ErrRSVPNotFound):
		httputil.Error(w, http.StatusNotFound, "NOT_FOUND", "rsvp not found")
	case errors.Is(err, domain.ErrUnauthorized):
		httputil.Error(w, http.StatusForbidden, "FORBIDDEN", "a valid secret is required")
	case errors.Is(err, domain.ErrInvalidEvent):
		httputil.Error(w, http.StatusBadRequest, "INVALID_EVENT", err.Error())
	case errors.Is(err, domain.ErrInvalidRSVP):
		httputil.Error(w, http.StatusBadRequest, "INVALID_RSVP", err.Error())
	case errors.Is(err, httputil.ErrInvalidBody):
		httputil.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "invalid request body")
	default:
		httputil.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}

// operationResult は操作ログの結果欄を返す。
func operationResult(err error) string {
	switch {
	case err == nil:
		return middleware.ResultSuccess
	case errors.Is(err, domain.ErrUnauthorized):
		return middleware.ResultDenied
	default:
		return middleware.ResultFailed
	}
}

// CreateEvent はイベントを作成し、作成者のセッションに所有権を記録する。
func (h *EventHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req EventRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	event, err := h.service.CreateEvent(r.Context(), req.input())
	if err != nil {
		middleware.WriteOperationLog(r.Context(), "CREATE_EVENT", "", operationResult(err))
		writeError(w, err)
		return
	}

	grant, err := h.owners.Grant(r.Context(), sessionFrom(r), domain.ResourceKindEvent, event.ID)
	if err != nil {
		middleware.WriteOperationLog(r.Context(), "CREATE_EVENT", shortid.Encode(event.ID), middleware.ResultFailed)
		writeError(w, err)
		return
	}

	middleware.WriteOperationLog(r.Context(), "CREATE_EVENT", grant.EncodedID, middleware.ResultSuccess)
	httputil.JSON(w, http.StatusCreated, EventCreatedResponse{
		EventResponse: newEventResponse(event),
		GrantResponse: GrantResponse{Secret: grant.Secret, EditURL: grant.EditURL},
	})
}

// GetEvent はイベント詳細を返す。閲覧者が所有者かどうかと、閲覧者のRSVPも含める。
func (h *EventHandler) GetEvent(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "event_id")
	if err != nil {
		writeError(w, err)
		return
	}

	event, err := h.service.GetEvent(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	sess := sessionFrom(r)
	isOwner, err := h.owners.Authorize(r.Context(), sess, id, suppliedSecret(r))
	if err != nil {
		writeError(w, err)
		return
	}

	resp := EventDetailResponse{
		EventResponse: newEventResponse(event),
		Links: EventLinks{
			GoogleMapsIframe: event.GoogleMapsIframeURL(),
			AddToGoogleCal:   event.AddToGoogleCalendarURL(),
			GoogleMaps:       event.GoogleMapsURL(),
			AppleMaps:        event.AppleMapsURL(),
		},
		IsOwner: isOwner,
	}
	if sess != nil {
		myRSVP, err := h.myRSVP(r, sess, id)
		if err != nil {
			writeError(w, err)
			return
		}
		resp.MyRSVPID = myRSVP
	}

	httputil.JSON(w, http.StatusOK, resp)
}

// myRSVP はセッションに記録された閲覧者のRSVPの短縮IDを返す。削除済みなら空文字を返す。
func (h *EventHandler) myRSVP(r *http.Request, sess ownership.Session, eventID uuid.UUID) (string, error) {
	raw, ok, err := sess.Get(r.Context(), rsvpSessionKey(eventID))
	if err != nil || !ok {
		return "", err
	}
	rsvpID, err := uuid.Parse(raw)
	if err != nil {
		return "", nil
	}
	rsvp, err := h.service.GetRSVP(r.Context(), rsvpID)
	if errors.Is(err, domain.ErrRSVPNotFound) || (err == nil && rsvp.EventID != eventID) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return shortid.Encode(rsvp.ID), nil
}

// UpdateEvent はイベントの内容を置き換える。所有確認が必要。
func (h *EventHandler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := h.authorizeEvent(w, r, "UPDATE_EVENT")
	if !ok {
		return
	}

	var req EventRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	event, err := h.service.UpdateEvent(r.Context(), id, req.input())
	middleware.WriteOperationLog(r.Context(), "UPDATE_EVENT", shortid.Encode(id), operationResult(err))
	if err != nil {
		writeError(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, newEventResponse(event))
}

// authorizeEvent はイベントの存在と所有を確認する。失敗時はレスポンスを書き込みfalseを返す。
func (h *EventHandler) authorizeEvent(w http.ResponseWriter, r *http.Request, operation string) (uuid.UUID, bool) {
	id, err := pathID(r, "event_id")
	if err != nil {
		writeError(w, err)
		return uuid.Nil, false
	}
	if _, err := h.service.GetEvent(r.Context(), id); err != nil {
		writeError(w, err)
		return uuid.Nil, false
	}
	if err := h.owners.Require(r.Context(), sessionFrom(r), id, suppliedSecret(r)); err != nil {
		middleware.WriteOperationLog(r.Context(), operation, shortid.Encode(id), operationResult(err))
		writeError(w, err)
		return uuid.Nil, false
	}
	return id, true
}

// DeleteEvent はイベントとRSVPを削除する。所有確認が必要。
func (h *EventHandler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := h.authorizeEvent(w, r, "DELETE_EVENT")
	if !ok {
		return
	}

	err := h.service.DeleteEvent(r.Context(), id)
	middleware.WriteOperationLog(r.Context(), "DELETE_EVENT", shortid.Encode(id), operationResult(err))
	if err != nil {
		writeError(w, err)
		return
	}

	httputil.NoContent(w)
}
