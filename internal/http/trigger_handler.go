package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/example/zenscholar/internal/application"
)

type triggerService interface {
	Status(ctx context.Context) application.TriggerStatus
	SetEnabled(ctx context.Context, enabled bool) error
}

type TriggerHandler struct {
	service   triggerService
	responder responder
}

func NewTriggerHandler(service triggerService, logger *slog.Logger) *TriggerHandler {
	return &TriggerHandler{service: service, responder: newResponder(logger)}
}

func (h *TriggerHandler) Status(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, toTriggerDTO(h.service.Status(r.Context())))
}

func (h *TriggerHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req updateTriggerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	if err := h.service.SetEnabled(r.Context(), req.Enabled); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, toTriggerDTO(h.service.Status(r.Context())))
}

type updateTriggerRequest struct {
	Enabled bool `json:"enabled"`
}

type triggerDTO struct {
	Enabled       bool   `json:"enabled"`
	ThresholdHour int    `json:"threshold_hour"`
	LastFiredDate string `json:"last_fired_date,omitempty"`
}

func toTriggerDTO(status application.TriggerStatus) triggerDTO {
	return triggerDTO{
		Enabled:       status.Enabled,
		ThresholdHour: status.ThresholdHour,
		LastFiredDate: status.LastFiredDate,
	}
}
