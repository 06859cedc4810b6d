package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"matchplay/internal/auth"
	"matchplay/internal/content"
	"matchplay/internal/logger"
	"matchplay/internal/session"
	"matchplay/internal/viewmodel"
	"matchplay/views/pages"
)

var games = []viewmodel.GameOption{
	{
		Variant:     string(session.VariantPairs),
		Title:       "Pair or No Pair",
		Description: "Two stacks, one card each. Decide fast whether they belong together.",
	},
	{
		Variant:     string(session.VariantMemorize),
		Title:       "Watch and Memorize",
		Description: "Study a few images, then pick them out from the crowd before time runs out.",
	},
}

type HomeHandler struct {
	store   *session.Store
	tickets *auth.Tickets
}

func NewHomeHandler(store *session.Store, tickets *auth.Tickets) *HomeHandler {
	return &HomeHandler{store: store, tickets: tickets}
}

func (h *HomeHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.home)
	r.Post("/sessions", h.createSession)
}

func (h *HomeHandler) home(w http.ResponseWriter, r *http.Request) {
	render(w, r, pages.HomePage(viewmodel.HomePage{
		Title:  "Matchplay",
		Games:  games,
		GameID: strings.TrimSpace(r.URL.Query().Get("game_id")),
	}))
}

type createRequest struct {
	Variant string `json:"variant"`
	GameID  string `json:"game_id"`
}

func (h *HomeHandler) createSession(w http.ResponseWriter, r *http.Request) {
	var req createRequest
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
		req.Variant = r.FormValue("variant")
		req.GameID = r.FormValue("game_id")
	}

	variant, ok := session.ParseVariant(strings.TrimSpace(req.Variant))
	if !ok {
		http.Error(w, "unknown variant", http.StatusBadRequest)
		return
	}
	c, err := h.store.Create(r.Context(), variant, strings.TrimSpace(req.GameID))
	if errors.Is(err, content.ErrMalformedContent) {
		logger.Warn("rejected malformed content", "variant", variant, "game_id", req.GameID, "error", err)
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	if err != nil {
		logger.Error("create session failed", "variant", variant, "error", err)
		http.Error(w, "could not create session", http.StatusInternalServerError)
		return
	}

	if err := setTicketCookie(w, h.tickets, c.ID()); err != nil {
		logger.Error("issue ticket failed", "session_id", c.ID(), "error", err)
		http.Error(w, "could not create session", http.StatusInternalServerError)
		return
	}

	location := sessionPath(c.ID())
	if wantsJSON(r) {
		w.Header().Set("Location", location)
		writeJSON(w, http.StatusCreated, map[string]string{"id": c.ID(), "url": location})
		return
	}
	http.Redirect(w, r, location, http.StatusSeeOther)
}
