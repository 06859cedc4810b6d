package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"matchplay/internal/auth"
	"matchplay/internal/logger"
	"matchplay/internal/session"
	"matchplay/internal/viewmodel"
	"matchplay/views/components"
	"matchplay/views/pages"
)

var titles = map[session.Variant]string{
	session.VariantPairs:    "Pair or No Pair",
	session.VariantMemorize: "Watch and Memorize",
}

type SessionHandler struct {
	store   *session.Store
	tickets *auth.Tickets
	baseURL string
	timeout time.Duration
}

// NewSessionHandler serves session pages and intents. baseURL, when set,
// prefixes the share link shown on the page.
func NewSessionHandler(store *session.Store, tickets *auth.Tickets, baseURL string) *SessionHandler {
	return &SessionHandler{
		store:   store,
		tickets: tickets,
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: 15 * time.Second,
	}
}

// RegisterRoutes mounts the session routes. The stream and ws endpoints
// are long-lived and skip the request timeout.
func (h *SessionHandler) RegisterRoutes(r chi.Router) {
	r.Route("/session/{id}", func(r chi.Router) {
		r.Get("/stream", h.stream)
		r.Get("/ws", h.socket)
		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(h.timeout))
			r.Get("/", h.sessionPage)
			r.Get("/state", h.state)
			r.Get("/board", h.boardFragment)
			r.Post("/{intent}", h.intent)
		})
	})
}

func (h *SessionHandler) lookup(w http.ResponseWriter, r *http.Request) (session.Controller, bool) {
	c, ok := h.store.Get(chi.URLParam(r, "id"))
	if !ok {
		http.NotFound(w, r)
		return nil, false
	}
	return c, true
}

func (h *SessionHandler) sessionPage(w http.ResponseWriter, r *http.Request) {
	c, ok := h.lookup(w, r)
	if !ok {
		return
	}
	play := canPlay(r, h.tickets, c.ID())
	view := c.View(time.Now().UTC())
	render(w, r, pages.SessionPage(viewmodel.SessionPage{
		Title:     titles[c.Variant()],
		SessionID: c.ID(),
		Variant:   string(c.Variant()),
		ShareURL:  h.shareURL(r, c.ID()),
		CanPlay:   play,
		Board:     toBoard(view, play),
	}))
}

func (h *SessionHandler) state(w http.ResponseWriter, r *http.Request) {
	c, ok := h.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, c.View(time.Now().UTC()))
}

func (h *SessionHandler) boardFragment(w http.ResponseWriter, r *http.Request) {
	c, ok := h.lookup(w, r)
	if !ok {
		return
	}
	play := canPlay(r, h.tickets, c.ID())
	render(w, r, components.Board(toBoard(c.View(time.Now().UTC()), play)))
}

type intentRequest struct {
	Claims string `json:"claims"`
	ID     string `json:"id"`
}

func (h *SessionHandler) intent(w http.ResponseWriter, r *http.Request) {
	c, ok := h.lookup(w, r)
	if !ok {
		return
	}
	if !canPlay(r, h.tickets, c.ID()) {
		http.Error(w, "not your session", http.StatusForbidden)
		return
	}

	var req intentRequest
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
	} else {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "invalid form", http.StatusBadRequest)
			return
		}
		req.Claims = r.FormValue("claims")
		req.ID = r.FormValue("id")
	}

	in := session.Intent{Type: chi.URLParam(r, "intent"), Claims: req.Claims, ID: req.ID}
	now := time.Now().UTC()
	changed, err := h.apply(c, in, now)
	switch {
	case errors.Is(err, session.ErrUnknownIntent):
		http.NotFound(w, r)
		return
	case err != nil:
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	switch {
	case isHTMX(r):
		w.WriteHeader(http.StatusNoContent)
	case wantsJSON(r):
		writeJSON(w, http.StatusOK, map[string]any{"changed": changed, "view": c.View(now)})
	default:
		http.Redirect(w, r, sessionPath(c.ID()), http.StatusSeeOther)
	}
}

// apply runs an intent and, when it changed anything, lets the timing
// loop and subscribers know.
func (h *SessionHandler) apply(c session.Controller, in session.Intent, now time.Time) (bool, error) {
	changed, err := session.Apply(c, in, now)
	if err != nil {
		return false, err
	}
	logger.Debug("intent", "session_id", c.ID(), "intent", in.Type, "changed", changed)
	if changed {
		h.store.Touch(c.ID())
	}
	return changed, nil
}

func (h *SessionHandler) shareURL(r *http.Request, id string) string {
	if h.baseURL != "" {
		return h.baseURL + sessionPath(id)
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host + sessionPath(id)
}
