package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/example/zenscholar/internal/application"
)

type profileService interface {
	GetProfile(ctx context.Context) (application.StudentProfile, error)
}

type ProfileHandler struct {
	service   profileService
	responder responder
}

func NewProfileHandler(service profileService, logger *slog.Logger) *ProfileHandler {
	return &ProfileHandler{service: service, responder: newResponder(logger)}
}

func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	profile, err := h.service.GetProfile(r.Context())
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, profileDTO{
		Name:         profile.Name,
		Bio:          profile.Bio,
		Avatar:       profile.Avatar,
		FocusMinutes: profile.FocusMinutes,
		Streak:       profile.Streak,
		Chapters:     profile.Chapters,
	})
}

type profileDTO struct {
	Name         string `json:"name"`
	Bio          string `json:"bio,omitempty"`
	Avatar       string `json:"avatar,omitempty"`
	FocusMinutes int    `json:"focus_minutes"`
	Streak       int    `json:"streak"`
	Chapters     int    `json:"chapters"`
}
