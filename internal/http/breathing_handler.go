package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/example/zenscholar/internal/application"
)

type breathingService interface {
	Start()
	Stop()
	Snapshot() application.BreathingSnapshot
}

type BreathingHandler struct {
	service   breathingService
	responder responder
}

func NewBreathingHandler(service breathingService, logger *slog.Logger) *BreathingHandler {
	return &BreathingHandler{service: service, responder: newResponder(logger)}
}

func (h *BreathingHandler) Start(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	h.service.Start()
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toBreathingDTO(h.service.Snapshot()))
}

func (h *BreathingHandler) Stop(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	h.service.Stop()
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func (h *BreathingHandler) Snapshot(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, toBreathingDTO(h.service.Snapshot()))
}

type breathingDTO struct {
	Running          bool               `json:"running"`
	Phase            string             `json:"phase,omitempty"`
	RemainingSeconds int                `json:"remaining_seconds"`
	Timetable        []breathingStepDTO `json:"timetable"`
}

type breathingStepDTO struct {
	Phase   string `json:"phase"`
	Seconds int    `json:"seconds"`
	Prompt  string `json:"prompt"`
}

func toBreathingDTO(snapshot application.BreathingSnapshot) breathingDTO {
	return breathingDTO{
		Running:          snapshot.Running,
		Phase:            string(snapshot.Phase),
		RemainingSeconds: int(snapshot.Remaining / time.Second),
		Timetable: []breathingStepDTO{
			{Phase: string(application.BreathingInhale), Seconds: 4, Prompt: "Inhale"},
			{Phase: string(application.BreathingHold), Seconds: 7, Prompt: "Hold"},
			{Phase: string(application.BreathingRelease), Seconds: 8, Prompt: "Let go"},
		},
	}
}
