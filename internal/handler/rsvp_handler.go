package handler

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"event-rsvp-service/internal/domain"
	"event-rsvp-service/internal/middleware"
	"event-rsvp-service/internal/shortid"
	"event-rsvp-service/pkg/httputil"
)

// RSVPRequest はRSVP作成・更新のリクエスト形式。
type RSVPRequest struct {
	Name string `json:"name"`
}

// RSVPResponse はRSVPのレスポンス形式。
type RSVPResponse struct {
	ID        string `json:"id"`
	EventID   string `json:"event_id"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// RSVPCreatedResponse はRSVP作成のレスポンス形式。
type RSVPCreatedResponse struct {
	RSVPResponse
	GrantResponse
}

// RSVPListResponse はRSVP一覧のレスポンス形式。
type RSVPListResponse struct {
	RSVPs []RSVPResponse `json:"rsvps"`
}

func newRSVPResponse(r *domain.RSVP) RSVPResponse {
	return RSVPResponse{
		ID:        shortid.Encode(r.ID),
		EventID:   shortid.Encode(r.EventID),
		Name:      r.Name,
		CreatedAt: r.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt: r.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

// CreateRSVP はイベントにRSVPを追加し、作成者のセッションに所有権とRSVPのIDを記録する。
func (h *EventHandler) CreateRSVP(w http.ResponseWriter, r *http.Request) {
	eventID, err := pathID(r, "event_id")
	if err != nil {
		writeError(w, err)
		return
	}

	var req RSVPRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	rsvp, err := h.service.CreateRSVP(r.Context(), eventID, req.Name)
	if err != nil {
		middleware.WriteOperationLog(r.Context(), "CREATE_RSVP", "", operationResult(err))
		writeError(w, err)
		return
	}
	encoded := shortid.Encode(rsvp.ID)

	sess := sessionFrom(r)
	grant, err := h.owners.Grant(r.Context(), sess, domain.ResourceKindRSVP, rsvp.ID)
	if err == nil && sess != nil {
		err = sess.Set(r.Context(), rsvpSessionKey(eventID), rsvp.ID.String())
	}
	if err != nil {
		middleware.WriteOperationLog(r.Context(), "CREATE_RSVP", encoded, middleware.ResultFailed)
		writeError(w, err)
		return
	}

	middleware.WriteOperationLog(r.Context(), "CREATE_RSVP", encoded, middleware.ResultSuccess)
	httputil.JSON(w, http.StatusCreated, RSVPCreatedResponse{
		RSVPResponse:  newRSVPResponse(rsvp),
		GrantResponse: GrantResponse{Secret: grant.Secret, EditURL: grant.EditURL},
	})
}

// ListRSVPs はイベントのRSVP一覧を返す。
func (h *EventHandler) ListRSVPs(w http.ResponseWriter, r *http.Request) {
	eventID, err := pathID(r, "event_id")
	if err != nil {
		writeError(w, err)
		return
	}

	rsvps, err := h.service.ListRSVPs(r.Context(), eventID)
	if err != nil {
		writeError(w, err)
		return
	}

	response := RSVPListResponse{
		RSVPs: make([]RSVPResponse, len(rsvps)),
	}
	for i, rsvp := range rsvps {
		response.RSVPs[i] = newRSVPResponse(rsvp)
	}
	httputil.JSON(w, http.StatusOK, response)
}

// GetRSVP はRSVPを返す。
func (h *EventHandler) GetRSVP(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "rsvp_id")
	if err != nil {
		writeError(w, err)
		return
	}

	rsvp, err := h.service.GetRSVP(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	httputil.JSON(w, http.StatusOK, newRSVPResponse(rsvp))
}

// UpdateRSVP はRSVPの名前を変更する。所有確認が必要。
func (h *EventHandler) UpdateRSVP(w http.ResponseWriter, r *http.Request) {
	id, ok := h.authorizeRSVP(w, r, "UPDATE_RSVP")
	if !ok {
		return
	}

	var req RSVPRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	rsvp, err := h.service.UpdateRSVP(r.Context(), id, req.Name)
	middleware.WriteOperationLog(r.Context(), "UPDATE_RSVP", shortid.Encode(id), operationResult(err))
	if err != nil {
		writeError(w, err)
		return
	}
	httputil.JSON(w, http.StatusOK, newRSVPResponse(rsvp))
}

// DeleteRSVP はRSVPを削除する。所有確認が必要。
func (h *EventHandler) DeleteRSVP(w http.ResponseWriter, r *http.Request) {
	id, ok := h.authorizeRSVP(w, r, "DELETE_RSVP")
	if !ok {
		return
	}

	err := h.service.DeleteRSVP(r.Context(), id)
	middleware.WriteOperationLog(r.Context(), "DELETE_RSVP", shortid.Encode(id), operationResult(err))
	if err != nil {
		writeError(w, err)
		return
	}
	httputil.NoContent(w)
}

// authorizeRSVP はRSVPの存在と所有を確認する。失敗時はレスポンスを書き込みfalseを返す。
func (h *EventHandler) authorizeRSVP(w http.ResponseWriter, r *http.Request, operation string) (uuid.UUID, bool) {
	id, err := pathID(r, "rsvp_id")
	if err != nil {
		writeError(w, err)
		return uuid.Nil, false
	}
	if _, err := h.service.GetRSVP(r.Context(), id); err != nil {
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
