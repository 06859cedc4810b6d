package handlers

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"matchplay/internal/auth"
	"matchplay/internal/content"
	"matchplay/internal/round"
	"matchplay/internal/session"
)

type fixture struct {
	router  chi.Router
	store   *session.Store
	tickets *auth.Tickets
}

func newFixture(t *testing.T, f session.Factory) *fixture {
	t.Helper()
	if f.Pairs.Timings == (round.Timings{}) {
		f.Pairs = session.PairsOptions{Timings: round.Instant(), Seed: 7}
	}
	store := session.NewStore(f)
	t.Cleanup(store.Close)
	tickets, err := auth.NewTickets("test-secret", time.Hour)
	require.NoError(t, err)

	r := chi.NewRouter()
	NewHomeHandler(store, tickets).RegisterRoutes(r)
	NewSessionHandler(store, tickets, "").RegisterRoutes(r)
	return &fixture{router: r, store: store, tickets: tickets}
}

func (fx *fixture) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	fx.router.ServeHTTP(rec, req)
	return rec
}

// create posts the form and returns the session id and its ticket cookie.
func (fx *fixture) create(t *testing.T, variant string) (string, *http.Cookie) {
	t.Helper()
	form := url.Values{"variant": {variant}, "game_id": {"g-1"}}
	req := httptest.NewRequest(http.MethodPost, "/sessions", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := fx.do(req)
	require.Equal(t, http.StatusSeeOther, rec.Code)

	loc := rec.Header().Get("Location")
	require.True(t, strings.HasPrefix(loc, "/session/"), loc)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	return strings.TrimPrefix(loc, "/session/"), cookies[0]
}

func (fx *fixture) intent(id, intent string, cookie *http.Cookie, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/session/"+id+"/"+intent, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Hx-Request", "true")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	return fx.do(req)
}

func (fx *fixture) view(t *testing.T, id string) session.View {
	t.Helper()
	rec := fx.do(httptest.NewRequest(http.MethodGet, "/session/"+id+"/state", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var v session.View
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func TestHomePageListsGames(t *testing.T) {
	fx := newFixture(t, session.Factory{})
	rec := fx.do(httptest.NewRequest(http.MethodGet, "/?game_id=abc", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Pair or No Pair")
	assert.Contains(t, body, "Watch and Memorize")
	assert.Contains(t, body, `value="abc"`)
}

func TestCreateSession(t *testing.T) {
	fx := newFixture(t, session.Factory{})
	id, cookie := fx.create(t, "pairs")

	assert.Equal(t, "matchplay_session_"+id, cookie.Name)
	assert.True(t, fx.tickets.Allows(cookie.Value, id))
	v := fx.view(t, id)
	assert.Equal(t, session.VariantPairs, v.Variant)
	assert.Equal(t, session.LifecycleIntro, v.Session.Lifecycle)
	assert.Equal(t, "g-1", v.GameID)
}

func TestCreateSessionJSON(t *testing.T) {
	fx := newFixture(t, session.Factory{})
	req := httptest.NewRequest(http.MethodPost, "/sessions", strings.NewReader(`{"variant":"watch-and-memorize"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := fx.do(req)

	require.Equal(t, http.StatusCreated, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "/session/"+body["id"], body["url"])
	_, ok := fx.store.Get(body["id"])
	assert.True(t, ok)
}

func TestCreateSessionRejects(t *testing.T) {
	fx := newFixture(t, session.Factory{
		Content: content.Static{{ID: "1", FrontContent: "a", BackContent: ""}},
	})

	form := url.Values{"variant": {"chess"}}
	req := httptest.NewRequest(http.MethodPost, "/sessions", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	assert.Equal(t, http.StatusBadRequest, fx.do(req).Code)

	form = url.Values{"variant": {"pairs"}}
	req = httptest.NewRequest(http.MethodPost, "/sessions", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	assert.Equal(t, http.StatusUnprocessableEntity, fx.do(req).Code)
	assert.Zero(t, fx.store.Len())
}

func TestIntentsRequireTicket(t *testing.T) {
	fx := newFixture(t, session.Factory{})
	id, _ := fx.create(t, "pairs")
	otherID, otherCookie := fx.create(t, "pairs")
	require.NotEqual(t, id, otherID)

	assert.Equal(t, http.StatusForbidden, fx.intent(id, "start", nil, nil).Code)
	forged := &http.Cookie{Name: "matchplay_session_" + id, Value: otherCookie.Value}
	assert.Equal(t, http.StatusForbidden, fx.intent(id, "start", forged, nil).Code)
	assert.Equal(t, session.LifecycleIntro, fx.view(t, id).Session.Lifecycle)
}

func TestPairsIntentFlow(t *testing.T) {
	fx := newFixture(t, session.Factory{})
	id, cookie := fx.create(t, "pairs")

	assert.Equal(t, http.StatusNoContent, fx.intent(id, "start", cookie, nil).Code)
	assert.Equal(t, http.StatusNoContent, fx.intent(id, "start", cookie, nil).Code, "repeat start is a no-op")
	v := fx.view(t, id)
	require.Equal(t, session.LifecyclePlaying, v.Session.Lifecycle)
	require.True(t, v.Pairs.CanAnswer)

	claims := "nopair"
	if v.Pairs.Left[0].ID == v.Pairs.Right[0].ID {
		claims = "pair"
	}
	req := httptest.NewRequest(http.MethodPost, "/session/"+id+"/answer", strings.NewReader(url.Values{"claims": {claims}}.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	req.AddCookie(cookie)
	rec := fx.do(req)
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Changed bool         `json:"changed"`
		View    session.View `json:"view"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Changed)

	assert.Equal(t, http.StatusBadRequest, fx.intent(id, "answer", cookie, url.Values{"claims": {"maybe"}}).Code)
	assert.Equal(t, http.StatusBadRequest, fx.intent(id, "select", cookie, url.Values{"id": {"x"}}).Code)
	assert.Equal(t, http.StatusNotFound, fx.intent(id, "dance", cookie, nil).Code)

	assert.Equal(t, http.StatusNoContent, fx.intent(id, "exit", cookie, nil).Code)
	assert.True(t, fx.view(t, id).Session.Ended)
}

func TestIntentRedirectsWithoutHTMX(t *testing.T) {
	fx := newFixture(t, session.Factory{})
	id, cookie := fx.create(t, "memorize")

	req := httptest.NewRequest(http.MethodPost, "/session/"+id+"/start", nil)
	req.AddCookie(cookie)
	rec := fx.do(req)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/session/"+id, rec.Header().Get("Location"))
}

func TestSessionPageAndBoard(t *testing.T) {
	fx := newFixture(t, session.Factory{})
	id, cookie := fx.create(t, "pairs")

	rec := fx.do(httptest.NewRequest(http.MethodGet, "/session/"+id, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `sse-connect="/session/`+id+`/stream"`)
	assert.NotContains(t, rec.Body.String(), `data-intent="start"`, "spectators get no controls")

	req := httptest.NewRequest(http.MethodGet, "/session/"+id+"/board", nil)
	req.AddCookie(cookie)
	rec = fx.do(req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `data-intent="start"`)

	assert.Equal(t, http.StatusNotFound, fx.do(httptest.NewRequest(http.MethodGet, "/session/missing/state", nil)).Code)
}

func TestStreamSendsState(t *testing.T) {
	fx := newFixture(t, session.Factory{})
	id, _ := fx.create(t, "pairs")
	srv := httptest.NewServer(fx.router)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/session/"+id+"/stream", nil)
	require.NoError(t, err)
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	line, err := reader.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "event: state\n", line)
	line, err = reader.ReadString('\n')
	require.NoError(t, err)
	assert.Contains(t, line, `id="board"`)

	fx.store.Publish(id)
	line, err = reader.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "\n", line)
	line, err = reader.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "event: state\n", line)
}

func TestWebsocketIntents(t *testing.T) {
	fx := newFixture(t, session.Factory{})
	id, cookie := fx.create(t, "memorize")
	srv := httptest.NewServer(fx.router)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	header := http.Header{}
	header.Set("Cookie", cookie.Name+"="+cookie.Value)
	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http")+"/session/"+id+"/ws",
		&websocket.DialOptions{HTTPHeader: header})
	require.NoError(t, err)
	defer conn.Close(websocket.StatusNormalClosure, "")

	var msg wsMessage
	require.NoError(t, wsjson.Read(ctx, conn, &msg))
	require.Equal(t, session.EventState, msg.Type)
	assert.Equal(t, session.LifecycleIntro, msg.View.Session.Lifecycle)

	require.NoError(t, wsjson.Write(ctx, conn, wsMessage{Type: "start"}))
	for {
		msg = wsMessage{}
		require.NoError(t, wsjson.Read(ctx, conn, &msg))
		require.Empty(t, msg.Error)
		if msg.View != nil && msg.View.Session.Lifecycle == session.LifecyclePlaying {
			break
		}
	}
	assert.Equal(t, 60, msg.View.Session.Clock)

	require.NoError(t, wsjson.Write(ctx, conn, wsMessage{Type: "answer", Claims: "pair"}))
	for {
		msg = wsMessage{}
		require.NoError(t, wsjson.Read(ctx, conn, &msg))
		if msg.Type == "error" {
			break
		}
	}
	assert.Contains(t, msg.Error, "not supported")
}
