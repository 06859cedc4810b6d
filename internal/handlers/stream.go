package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"matchplay/internal/logger"
	"matchplay/internal/session"
	"matchplay/views/components"
)

const keepAliveEvery = 25 * time.Second

func (h *SessionHandler) stream(w http.ResponseWriter, r *http.Request) {
	c, ok := h.lookup(w, r)
	if !ok {
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	hub, ok := h.store.Broadcaster(c.ID())
	if !ok {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	play := canPlay(r, h.tickets, c.ID())
	sub := hub.Subscribe()
	defer hub.Unsubscribe(sub)

	send := func() {
		board := renderToString(r, components.Board(toBoard(c.View(time.Now().UTC()), play)))
		writeSSE(w, session.EventState, board)
		flusher.Flush()
	}
	send()

	keepAlive := time.NewTicker(keepAliveEvery)
	defer keepAlive.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case _, open := <-sub:
			if !open {
				return
			}
			send()
		case <-keepAlive.C:
			_, _ = w.Write([]byte(": keepalive\n\n"))
			flusher.Flush()
		}
	}
}

type wsMessage struct {
	Type   string        `json:"type"`
	Claims string        `json:"claims,omitempty"`
	ID     string        `json:"id,omitempty"`
	View   *session.View `json:"view,omitempty"`
	Error  string        `json:"error,omitempty"`
}

// socket pushes a JSON view on every change and accepts intents as
// {"type": "answer", "claims": "pair"} messages.
func (h *SessionHandler) socket(w http.ResponseWriter, r *http.Request) {
	c, ok := h.lookup(w, r)
	if !ok {
		return
	}
	hub, ok := h.store.Broadcaster(c.ID())
	if !ok {
		http.NotFound(w, r)
		return
	}
	play := canPlay(r, h.tickets, c.ID())

	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		logger.Warn("websocket accept failed", "session_id", c.ID(), "error", err)
		return
	}
	defer conn.Close(websocket.StatusGoingAway, "server closing")

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	sub := hub.Subscribe()
	defer hub.Unsubscribe(sub)

	sendView := func() error {
		view := c.View(time.Now().UTC())
		return wsjson.Write(ctx, conn, wsMessage{Type: session.EventState, View: &view})
	}
	if err := sendView(); err != nil {
		return
	}

	go func() {
		defer cancel()
		for {
			var msg wsMessage
			if err := wsjson.Read(ctx, conn, &msg); err != nil {
				if websocket.CloseStatus(err) == -1 && !errors.Is(err, context.Canceled) {
					logger.Debug("websocket read failed", "session_id", c.ID(), "error", err)
				}
				return
			}
			if reply := h.wsIntent(c, play, msg); reply != "" {
				_ = wsjson.Write(ctx, conn, wsMessage{Type: "error", Error: reply})
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case _, open := <-sub:
			if !open {
				conn.Close(websocket.StatusNormalClosure, "session closed")
				return
			}
			if err := sendView(); err != nil {
				return
			}
		}
	}
}

func (h *SessionHandler) wsIntent(c session.Controller, play bool, msg wsMessage) string {
	if !play {
		return "not your session"
	}
	_, err := h.apply(c, session.Intent{Type: msg.Type, Claims: msg.Claims, ID: msg.ID}, time.Now().UTC())
	if err != nil {
		return err.Error()
	}
	return ""
}
