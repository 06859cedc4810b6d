package handlers

import (
	"net/http"
	"time"

	"matchplay/internal/auth"
)

func ticketCookieName(sessionID string) string {
	return "matchplay_session_" + sessionID
}

func setTicketCookie(w http.ResponseWriter, tickets *auth.Tickets, sessionID string) error {
	now := time.Now().UTC()
	raw, err := tickets.Issue(sessionID, now)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     ticketCookieName(sessionID),
		Value:    raw,
		Path:     "/session/" + sessionID,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Expires:  now.Add(tickets.TTL()),
	})
	return nil
}

// canPlay reports whether the request carries the ticket for sessionID.
func canPlay(r *http.Request, tickets *auth.Tickets, sessionID string) bool {
	cookie, err := r.Cookie(ticketCookieName(sessionID))
	if err != nil {
		return false
	}
	return tickets.Allows(cookie.Value, sessionID)
}
