package main

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/julienb/mentor-go/internal/agent"
	"github.com/julienb/mentor-go/internal/history"
	"github.com/julienb/mentor-go/internal/llm"
	"github.com/julienb/mentor-go/internal/logger"
	"github.com/julienb/mentor-go/internal/registry"
	"github.com/julienb/mentor-go/internal/session"
)

const sessionCookie = "mentor_session"

// newMux wires the display-layer endpoints over the conversation controller.
func newMux(ctrl *agent.Controller, sessions *session.Manager, store *history.Store, index *registry.Registry) *http.ServeMux {
	// currentSession returns the live session for the request's cookie, if any.
	currentSession := func(r *http.Request) (*session.Session, bool) {
		c, err := r.Cookie(sessionCookie)
		if err != nil {
			return nil, false
		}
		return sessions.Get(c.Value)
	}

	// ensureSession returns the request's session, minting one (with its
	// transcript loaded from disk) when the cookie is absent or unknown.
	ensureSession := func(w http.ResponseWriter, r *http.Request) *session.Session {
		if s, ok := currentSession(r); ok {
			return s
		}
		s := sessions.Create(ctrl.InitialState())
		s.Transcript = store.Load(s.ID)
		http.SetCookie(w, &http.Cookie{
			Name:     sessionCookie,
			Value:    s.ID,
			Path:     "/",
			HttpOnly: true,
		})
		return s
	}

	writeJSON := func(w http.ResponseWriter, status int, v any) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if err := json.NewEncoder(w).Encode(v); err != nil {
			logger.L.Warn("response encode error", "error", err)
		}
	}

	mux := http.NewServeMux()

	mux.HandleFunc("POST /login", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
			return
		}

		s, ok := currentSession(r)
		if !ok {
			// A failed attempt must not mint a session id; gate first.
			probe := session.Session{State: ctrl.InitialState()}
			if err := ctrl.Authenticate(&probe, req.Password); err != nil {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "mot de passe invalide"})
				return
			}
			s = ensureSession(w, r)
			s.State = probe.State
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
			return
		}

		if err := ctrl.Authenticate(s, req.Password); err != nil {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "mot de passe invalide"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	mux.HandleFunc("POST /chat", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Message string `json:"message"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
			return
		}

		s := ensureSession(w, r)
		reply, err := ctrl.Send(r.Context(), s, req.Message)
		if err != nil {
			var fault *llm.Fault
			switch {
			case errors.Is(err, agent.ErrNotAuthenticated):
				writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "authentification requise"})
			case errors.As(err, &fault):
				writeJSON(w, http.StatusBadGateway, map[string]string{"error": fault.Message()})
			default:
				logger.L.Error("chat turn failed", "error", err)
				writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "erreur interne"})
			}
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"reply": reply})
	})

	mux.HandleFunc("POST /reset", func(w http.ResponseWriter, r *http.Request) {
		s := ensureSession(w, r)
		if err := ctrl.Reset(s); err != nil {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "authentification requise"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	mux.HandleFunc("GET /history", func(w http.ResponseWriter, r *http.Request) {
		s := ensureSession(w, r)
		writeJSON(w, http.StatusOK, map[string]any{
			"session_id": s.ID,
			"messages":   s.Transcript,
		})
	})

	mux.HandleFunc("GET /sessions", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, index.List())
	})

	return mux
}
