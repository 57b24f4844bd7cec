package server

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grovetools/searchcore/config"
	"github.com/grovetools/searchcore/internal/app"
	"github.com/grovetools/searchcore/pkg/memsearch"
	"github.com/grovetools/searchcore/pkg/search"
)

func newServer(t *testing.T, cfg *config.ServerConfig) *Server {
	t.Helper()
	e := memsearch.New()
	e.AddIndex("products", []search.Hit{
		{"objectID": "1", "name": "Espresso", "brand": "Apple"},
		{"objectID": "2", "name": "Green tea", "brand": "Samsung"},
		{"objectID": "3", "name": "Samsonite bag", "brand": "Samsonite"},
	})
	a, err := app.New(app.Options{
		Executor: e,
		Config: &config.Config{
			Index: "products",
			Widgets: []config.WidgetConfig{
				{Type: "searchBox"},
				{Type: "hits"},
				{Type: "menu", Props: map[string]interface{}{"attribute": "brand", "searchable": true}},
			},
		},
	})
	require.NoError(t, err)
	t.Cleanup(a.Close)

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return New(logrus.NewEntry(logger), a, cfg)
}

func do(t *testing.T, h http.Handler, method, target, body string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var out map[string]interface{}
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		_ = json.Unmarshal(rec.Body.Bytes(), &out)
	}
	return rec, out
}

func nbHits(t *testing.T, snap map[string]interface{}) float64 {
	t.Helper()
	results, ok := snap["results"].(map[string]interface{})
	require.True(t, ok, "snapshot has no results")
	return results["nbHits"].(float64)
}

func TestHealth(t *testing.T) {
	rec, _ := do(t, newServer(t, nil).Handler(), http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestState(t *testing.T) {
	h := newServer(t, nil).Handler()

	rec, snap := do(t, h, http.MethodGet, "/api/state", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 3.0, nbHits(t, snap))

	rec, snap = do(t, h, http.MethodPost, "/api/state", `{"menu":{"brand":"Apple"}}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1.0, nbHits(t, snap))
	assert.Contains(t, snap["href"], "state=")

	rec, _ = do(t, h, http.MethodPost, "/api/state", `[1,2]`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = do(t, h, http.MethodPut, "/api/state", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestQuery(t *testing.T) {
	h := newServer(t, nil).Handler()

	rec, snap := do(t, h, http.MethodPost, "/api/query", `{"query":"tea"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1.0, nbHits(t, snap))
	assert.Equal(t, "tea", snap["widgets"].(map[string]interface{})["query"])
}

func TestWidgetsAndRefinements(t *testing.T) {
	h := newServer(t, nil).Handler()

	req := httptest.NewRequest(http.MethodGet, "/api/widgets", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	var widgets []map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &widgets))
	require.Len(t, widgets, 3)
	assert.Equal(t, "menu:brand", widgets[2]["key"])
	assert.Equal(t, "Menu", widgets[2]["displayName"])

	rec, _ = do(t, h, http.MethodPost, "/api/widgets", `{"widget":"brand","value":"Samsung"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, body := do(t, h, http.MethodGet, "/api/refinements", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, body["items"], 1)

	rec, snap := do(t, h, http.MethodDelete, "/api/refinements", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 3.0, nbHits(t, snap))

	rec, body = do(t, h, http.MethodPost, "/api/widgets", `{"widget":"nope","value":"x"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "UNKNOWN_WIDGET", body["error"].(map[string]interface{})["code"])
}

func TestFacets(t *testing.T) {
	h := newServer(t, nil).Handler()

	rec, body := do(t, h, http.MethodGet, "/api/facets?widget=brand&query=sam", "")
	require.Equal(t, http.StatusOK, rec.Code)
	hits := body["hits"].([]interface{})
	require.Len(t, hits, 2)
	assert.Equal(t, "Samsonite", hits[0].(map[string]interface{})["value"])
}

func TestStream(t *testing.T) {
	srv := httptest.NewServer(newServer(t, nil).Handler())
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/stream", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	for {
		line, err := reader.ReadString('\n')
		require.NoError(t, err)
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		var u map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &u))
		assert.Equal(t, "initial", u["update_type"])
		assert.NotNil(t, u["state"])
		return
	}
}

func TestWebSocket(t *testing.T) {
	s := newServer(t, nil)
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var initial map[string]interface{}
	require.NoError(t, conn.ReadJSON(&initial))
	assert.Equal(t, "initial", initial["update_type"])

	require.NoError(t, conn.WriteJSON(wsMessage{Type: "refine", Widget: "brand", Value: "Apple"}))
	for {
		var u map[string]interface{}
		require.NoError(t, conn.ReadJSON(&u))
		st, ok := u["state"].(map[string]interface{})
		if !ok {
			continue
		}
		widgets, _ := st["widgets"].(map[string]interface{})
		menu, _ := widgets["menu"].(map[string]interface{})
		if menu["brand"] == "Apple" {
			break
		}
	}

	require.NoError(t, conn.WriteJSON(wsMessage{Type: "bogus"}))
	for {
		var u map[string]interface{}
		require.NoError(t, conn.ReadJSON(&u))
		if u["update_type"] == "error" {
			assert.Equal(t, "INVALID_INPUT", u["error"].(map[string]interface{})["code"])
			break
		}
	}
}

func TestCheckOrigin(t *testing.T) {
	s := newServer(t, &config.ServerConfig{AllowedOrigins: []string{"http://allowed.test"}})

	req := httptest.NewRequest(http.MethodGet, "/api/ws", nil)
	assert.True(t, s.checkOrigin(req))

	req.Header.Set("Origin", "http://allowed.test")
	assert.True(t, s.checkOrigin(req))

	req.Header.Set("Origin", "http://evil.test")
	assert.False(t, s.checkOrigin(req))
}
