package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/example/zenscholar/internal/application"
)

type timerService interface {
	Start(ctx context.Context, activity application.ActivityRef) (application.StartResult, error)
	Skip(ctx context.Context) (application.TimerStatus, error)
	Cancel(ctx context.Context) error
	Status(ctx context.Context) application.TimerStatus
	Encouragement(ctx context.Context) string
}

type SessionHandler struct {
	service   timerService
	responder responder
}

func NewSessionHandler(service timerService, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{service: service, responder: newResponder(logger)}
}

func (h *SessionHandler) Start(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req startSessionRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
			return
		}
	}

	result, err := h.service.Start(r.Context(), req.toActivity())
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	status := http.StatusCreated
	if result.Resumed || result.CaughtUp {
		status = http.StatusOK
	}
	if result.CaughtUp {
		logger := handlerLogger(r.Context(), h.responder.logger, "session", "start")
		logger.InfoContext(r.Context(), "stale session caught up", "phase", result.Session.Phase)
	}

	h.responder.writeJSON(r.Context(), w, status, startSessionResponse{
		Session:  toSessionDTO(result.Session, result.Remaining),
		Resumed:  result.Resumed,
		CaughtUp: result.CaughtUp,
	})
}

func (h *SessionHandler) Status(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	status := h.service.Status(r.Context())
	if status.Idle {
		h.responder.handleServiceError(r.Context(), w, application.ErrNoSession)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, sessionResponse{
		Session: toSessionDTO(status.Session, status.Remaining),
	})
}

func (h *SessionHandler) Skip(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	status, err := h.service.Skip(r.Context())
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, sessionResponse{
		Session: toSessionDTO(status.Session, status.Remaining),
	})
}

func (h *SessionHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	if err := h.service.Cancel(r.Context()); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func (h *SessionHandler) Encouragement(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	text := h.service.Encouragement(r.Context())
	h.responder.writeJSON(r.Context(), w, http.StatusOK, encouragementResponse{Text: text})
}

type startSessionRequest struct {
	ActivityID    string `json:"activity_id"`
	ActivityTitle string `json:"activity_title"`
	CategoryID    string `json:"category_id"`
}

func (r startSessionRequest) toActivity() application.ActivityRef {
	return application.ActivityRef{
		ID:         strings.TrimSpace(r.ActivityID),
		Title:      strings.TrimSpace(r.ActivityTitle),
		CategoryID: strings.TrimSpace(r.CategoryID),
	}
}

type startSessionResponse struct {
	Session  sessionDTO `json:"session"`
	Resumed  bool       `json:"resumed"`
	CaughtUp bool       `json:"caught_up"`
}

type sessionResponse struct {
	Session sessionDTO `json:"session"`
}

type encouragementResponse struct {
	Text string `json:"text"`
}

type sessionDTO struct {
	ID               string `json:"id"`
	ActivityID       string `json:"activity_id,omitempty"`
	ActivityTitle    string `json:"activity_title,omitempty"`
	CategoryID       string `json:"category_id,omitempty"`
	Phase            string `json:"phase"`
	Start            string `json:"start"`
	End              string `json:"end"`
	RemainingSeconds int    `json:"remaining_seconds"`
	WorkMinutes      int    `json:"work_minutes"`
	CreatedAt        string `json:"created_at"`
	UpdatedAt        string `json:"updated_at"`
}

func toSessionDTO(session application.Session, remaining time.Duration) sessionDTO {
	return sessionDTO{
		ID:               session.ID,
		ActivityID:       session.Activity.ID,
		ActivityTitle:    session.Activity.Title,
		CategoryID:       session.Activity.CategoryID,
		Phase:            string(session.Phase),
		Start:            session.Start.UTC().Format(time.RFC3339Nano),
		End:              session.End.UTC().Format(time.RFC3339Nano),
		RemainingSeconds: int(remaining / time.Second),
		WorkMinutes:      session.WorkMinutes,
		CreatedAt:        session.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt:        session.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}
