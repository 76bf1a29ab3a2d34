package http

import (
	"net/http"
	"strings"
)

type RouterConfig struct {
	Sessions   *SessionHandler
	Breathing  *BreathingHandler
	Trigger    *TriggerHandler
	Profile    *ProfileHandler
	Middleware []func(http.Handler) http.Handler
}

func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()

	if cfg.Sessions != nil {
		mux.HandleFunc("/session", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodPost:
				cfg.Sessions.Start(w, r)
			case http.MethodGet:
				cfg.Sessions.Status(w, r)
			case http.MethodDelete:
				cfg.Sessions.Cancel(w, r)
			default:
				methodNotAllowed(w, http.MethodPost, http.MethodGet, http.MethodDelete)
			}
		})
		mux.HandleFunc("/session/skip", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			cfg.Sessions.Skip(w, r)
		})
		mux.HandleFunc("/session/encouragement", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			cfg.Sessions.Encouragement(w, r)
		})
	}

	if cfg.Breathing != nil {
		mux.HandleFunc("/breathing", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodPost:
				cfg.Breathing.Start(w, r)
			case http.MethodGet:
				cfg.Breathing.Snapshot(w, r)
			case http.MethodDelete:
				cfg.Breathing.Stop(w, r)
			default:
				methodNotAllowed(w, http.MethodPost, http.MethodGet, http.MethodDelete)
			}
		})
	}

	if cfg.Trigger != nil {
		mux.HandleFunc("/trigger", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				cfg.Trigger.Status(w, r)
			case http.MethodPut:
				cfg.Trigger.Update(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPut)
			}
		})
	}

	if cfg.Profile != nil {
		mux.HandleFunc("/profile", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			cfg.Profile.Get(w, r)
		})
	}

	var handler http.Handler = mux
	if len(cfg.Middleware) > 0 {
		for i := len(cfg.Middleware) - 1; i >= 0; i-- {
			if cfg.Middleware[i] != nil {
				handler = cfg.Middleware[i](handler)
			}
		}
	}

	return handler
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	if len(allowed) > 0 {
		w.Header().Set("Allow", strings.Join(allowed, ", "))
	}
	http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
}
