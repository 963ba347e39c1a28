package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/everforgeworks/galaxies-resource-alerts/internal/catalog"
	"github.com/everforgeworks/galaxies-resource-alerts/internal/game"
)

var testNow = time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)

func testSession(t *testing.T) *game.Session {
	t.Helper()
	cfg := game.Config{
		DataDir:       filepath.Join("..", "game", "testdata"),
		SpawningFile:  "spawning.yaml",
		InventoryFile: "inventory.yaml",
	}
	s, err := game.NewSession(cfg, nil, nil, nil)
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	s.Clock = func() time.Time { return testNow }
	return s
}

func do(t *testing.T, h http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}

func tracked(t *testing.T, h http.Handler) {
	t.Helper()
	if rec := do(t, h, "POST", "/api/assignees", NameRequest{Name: "Crafter"}); rec.Code != http.StatusCreated {
		t.Fatalf("add assignee status=%d body=%s", rec.Code, rec.Body)
	}
	for _, id := range []int{1, 2} {
		if rec := do(t, h, "POST", "/api/favorites", FavoriteRequest{Name: "Crafter", Schematic: id}); rec.Code != http.StatusOK {
			t.Fatalf("add favorite %d status=%d body=%s", id, rec.Code, rec.Body)
		}
	}
}

func TestAssigneeErrors(t *testing.T) {
	h := NewServer(testSession(t), nil, nil, nil).Routes()
	tracked(t, h)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		want   int
	}{
		{"duplicate", "POST", "/api/assignees", NameRequest{Name: "crafter"}, http.StatusConflict},
		{"empty", "POST", "/api/assignees", NameRequest{Name: " "}, http.StatusBadRequest},
		{"unknown schematic", "POST", "/api/favorites", FavoriteRequest{Name: "Crafter", Schematic: 77}, http.StatusNotFound},
		{"unknown assignee", "POST", "/api/favorites/remove", FavoriteRequest{Name: "Nobody", Schematic: 1}, http.StatusNotFound},
		{"wrong method", "DELETE", "/api/assignees", nil, http.StatusMethodNotAllowed},
	}
	for _, tc := range tests {
		if rec := do(t, h, tc.method, tc.path, tc.body); rec.Code != tc.want {
			t.Fatalf("%s: status=%d want=%d body=%s", tc.name, rec.Code, tc.want, rec.Body)
		}
	}

	rec := do(t, h, "GET", "/api/assignees", nil)
	list := decode[[]struct {
		Name      string `json:"name"`
		Favorites []int  `json:"favorites"`
	}](t, rec)
	if len(list) != 1 || len(list[0].Favorites) != 2 {
		t.Fatalf("assignees=%+v", list)
	}
}

func TestAlertsEndpoint(t *testing.T) {
	h := NewServer(testSession(t), nil, nil, nil).Routes()
	tracked(t, h)

	rec := do(t, h, "GET", "/api/alerts?hq=1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body)
	}
	hq := decode[[]game.AlertView](t, rec)
	if len(hq) != 1 || hq[0].Better == nil || *hq[0].Better < 0.2499 || *hq[0].Better > 0.2501 {
		t.Fatalf("hq=%+v", hq)
	}

	rec = do(t, h, "GET", "/api/alerts", nil)
	lq := decode[[]game.AlertView](t, rec)
	if len(lq) != 1 || !lq[0].NoBaseline || lq[0].Better != nil {
		t.Fatalf("lq=%+v", lq)
	}
	if !strings.Contains(rec.Body.String(), `"better":null`) {
		t.Fatalf("no-baseline better should encode as null: %s", rec.Body)
	}
}

func TestPairsAndExperiments(t *testing.T) {
	h := NewServer(testSession(t), nil, nil, nil).Routes()
	tracked(t, h)

	pairs := decode[[]PairView](t, do(t, h, "GET", "/api/pairs?hq=true", nil))
	if len(pairs) != 1 || pairs[0].Class != "Steel" || pairs[0].Weights["SR"] != 50 {
		t.Fatalf("pairs=%+v", pairs)
	}
	anyPairs := decode[[]PairView](t, do(t, h, "GET", "/api/pairs", nil))
	if len(anyPairs) != 1 || anyPairs[0].Filter != "Any quality" {
		t.Fatalf("any pairs=%+v", anyPairs)
	}

	ws := decode[[]WrapperView](t, do(t, h, "GET", "/api/experiments?schematic=1", nil))
	if len(ws) != 1 || ws[0].Name != "Hit Points" || !ws[0].Primary {
		t.Fatalf("experiments=%+v", ws)
	}
	if rec := do(t, h, "GET", "/api/experiments?schematic=abc", nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad id status=%d", rec.Code)
	}
	if rec := do(t, h, "GET", "/api/experiments?schematic=404", nil); rec.Code != http.StatusNotFound {
		t.Fatalf("unknown id status=%d", rec.Code)
	}
}

func TestRateAndBest(t *testing.T) {
	h := NewServer(testSession(t), nil, nil, nil).Routes()

	rec := do(t, h, "POST", "/api/rate", RateRequest{
		Resource: catalog.ResourceDoc{Name: "x", Class: "Steel", Stats: map[string]int{"SR": 980, "UT": 980}},
		Class:    "Steel",
		Weights:  map[string]int{"SR": 50, "UT": 50},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("rate status=%d body=%s", rec.Code, rec.Body)
	}
	got := decode[RateResponse](t, rec)
	if got.Rate < 979.99 || got.Rate > 980.01 || got.Grade != "Excellent" {
		t.Fatalf("rate=%+v", got)
	}

	bad := []RateRequest{
		{Resource: catalog.ResourceDoc{Name: "x", Class: "Steel"}, Class: "Stele"},
		{Resource: catalog.ResourceDoc{Name: "x", Class: "Steel"}, Class: "Steel", Weights: map[string]int{"XX": 1}},
		{Resource: catalog.ResourceDoc{Name: "x", Class: "Steel", Stats: map[string]int{"SR": 5000}}, Class: "Steel", Weights: map[string]int{"SR": 1}},
		{Resource: catalog.ResourceDoc{Name: "x", Class: "Steel"}, Class: "Steel", Weights: map[string]int{"DR": 1}},
	}
	wants := []int{http.StatusNotFound, http.StatusBadRequest, http.StatusBadRequest, http.StatusBadRequest}
	for i, req := range bad {
		if rec := do(t, h, "POST", "/api/rate", req); rec.Code != wants[i] {
			t.Fatalf("bad[%d] status=%d want=%d body=%s", i, rec.Code, wants[i], rec.Body)
		}
	}

	ranked := decode[[]game.RankedView](t, do(t, h, "GET", "/api/best?class=Steel&weights=SR:50,UT:50", nil))
	if len(ranked) != 1 || ranked[0].Entry.Resource.Name != "Oldsteel" {
		t.Fatalf("ranked=%+v", ranked)
	}
	if rec := do(t, h, "GET", "/api/best?class=Steel&weights=SR", nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("malformed weights status=%d", rec.Code)
	}
}

func TestInventoryAndSpawningFeeds(t *testing.T) {
	h := NewServer(testSession(t), nil, nil, nil).Routes()

	rec := do(t, h, "PUT", "/api/inventory", map[string]any{
		"inventory": []map[string]any{
			{"resource": map[string]any{"id": 8, "name": "Betterplate", "class": "Steel", "stats": map[string]int{"SR": 900}}, "quantity": 50},
			{"resource": map[string]any{"id": 9, "name": "Ghost", "class": "Nowhere"}, "quantity": 1},
		},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("put inventory status=%d body=%s", rec.Code, rec.Body)
	}
	res := decode[ProblemsResponse](t, rec)
	if res.Accepted != 1 || len(res.Problems) != 1 {
		t.Fatalf("put inventory=%+v", res)
	}

	inv := decode[struct {
		Galaxy    string `json:"galaxy"`
		Inventory []struct {
			Quantity int `json:"quantity"`
		} `json:"inventory"`
	}](t, do(t, h, "GET", "/api/inventory", nil))
	if inv.Galaxy != "Bloodfin" || len(inv.Inventory) != 1 || inv.Inventory[0].Quantity != 50 {
		t.Fatalf("inventory=%+v", inv)
	}

	rec = do(t, h, "PUT", "/api/spawning", map[string]any{
		"galaxy":    "Bloodfin",
		"resources": []map[string]any{{"id": 1, "name": "Fresh", "class": "Steel"}},
	})
	if res := decode[ProblemsResponse](t, rec); res.Accepted != 1 || len(res.Problems) != 0 {
		t.Fatalf("put spawning=%+v", res)
	}
}

func TestIncompleteCatalogAnswers503(t *testing.T) {
	dir := t.TempDir()
	classes, err := filepath.Abs(filepath.Join("..", "game", "testdata", "classes.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	schems := filepath.Join(dir, "schematics.yaml")
	body := "schematics:\n  - id: 1\n    name: Broken\n    slots:\n      - {class: Unobtainium, units: 1}\n"
	if err := os.WriteFile(schems, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	s, err := game.NewSession(game.Config{DataDir: dir, ClassesFile: classes, SchematicsFile: "schematics.yaml"}, nil, nil, nil)
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	h := NewServer(s, nil, nil, nil).Routes()

	for _, path := range []string{"/api/alerts?hq=1", "/api/pairs"} {
		rec := do(t, h, "GET", path, nil)
		if rec.Code != http.StatusServiceUnavailable || !strings.Contains(rec.Body.String(), "data not fully available") {
			t.Fatalf("%s status=%d body=%s", path, rec.Code, rec.Body)
		}
	}
	status := decode[StatusResponse](t, do(t, h, "GET", "/api/status", nil))
	if status.Complete || len(status.Problems) != 1 {
		t.Fatalf("status=%+v", status)
	}
}

func TestRateLimitAndCORS(t *testing.T) {
	h := NewServer(testSession(t), nil, NewLimiter(1, 1), nil).Routes()

	if rec := do(t, h, "GET", "/api/status", nil); rec.Code != http.StatusOK {
		t.Fatalf("first status=%d", rec.Code)
	}
	if rec := do(t, h, "GET", "/api/status", nil); rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second status=%d want 429", rec.Code)
	}

	rec := do(t, h, "OPTIONS", "/api/inventory", nil)
	if rec.Code != http.StatusOK || rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Fatalf("preflight status=%d headers=%v", rec.Code, rec.Header())
	}
}

func TestHubBroadcastsPulse(t *testing.T) {
	session := testSession(t)
	hub := NewHub(nil)
	go hub.Run()

	srv := httptest.NewServer(NewServer(session, hub, nil, nil).Routes())
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for hub.Clients() == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("client never registered")
		}
		time.Sleep(10 * time.Millisecond)
	}

	report, changed, err := session.Pulse()
	if err != nil || !changed {
		t.Fatalf("pulse changed=%v err=%v", changed, err)
	}
	if err := hub.Publish(MsgResourceAlert, report); err != nil {
		t.Fatal(err)
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg struct {
		Type    string           `json:"type"`
		Payload game.PulseReport `json:"payload"`
	}
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read: %v", err)
	}
	if msg.Type != MsgResourceAlert || msg.Payload.Galaxy != "Bloodfin" || msg.Payload.Fingerprint != report.Fingerprint {
		t.Fatalf("msg=%+v", msg)
	}
}
