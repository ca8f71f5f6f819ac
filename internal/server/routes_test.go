package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/songloop-games/songloop/internal/cache"
	"github.com/songloop-games/songloop/internal/database"
	statDb "github.com/songloop-games/songloop/internal/database/gamestat/database"
	"github.com/songloop-games/songloop/internal/database/gamestat/model"
	"github.com/songloop-games/songloop/internal/songloop"
	"github.com/songloop-games/songloop/internal/songloop/room"
	"github.com/songloop-games/songloop/internal/songloop/transport"
)

func testRouter(t *testing.T) (*httptest.Server, *songloop.Registry, *statDb.DB) {
	t.Helper()

	db, err := database.NewFromEnv(context.Background(), &database.Config{
		FilePath: filepath.Join(t.TempDir(), "test.db"),
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close(context.Background()) })

	lru, err := cache.NewLRU(16)
	if err != nil {
		t.Fatalf("new lru: %v", err)
	}
	stats := statDb.New(db, lru)

	registry := songloop.NewRegistry(songloop.RegistryConfig{})
	hub := transport.NewHub(nil)
	ws := http.NotFoundHandler()

	srv := httptest.NewServer(NewRouter(context.Background(), ws, registry, hub, stats))
	t.Cleanup(srv.Close)
	return srv, registry, stats
}

func getJSON(t *testing.T, url string, v interface{}) int {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("get %s: %v", url, err)
	}
	defer resp.Body.Close()
	if v != nil {
		if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
			t.Fatalf("decode %s: %v", url, err)
		}
	}
	return resp.StatusCode
}

func TestHealth(t *testing.T) {
	t.Parallel()

	srv, registry, _ := testRouter(t)
	if _, err := registry.CreateRoom("a", "Alice", songloop.CreateParams{Settings: room.DefaultSettings()}); err != nil {
		t.Fatalf("create room: %v", err)
	}

	var body struct {
		Status string `json:"status"`
		Rooms  int    `json:"rooms"`
	}
	if code := getJSON(t, srv.URL+"/health", &body); code != http.StatusOK {
		t.Fatalf("unexpected status %d", code)
	}
	if body.Status != "ok" || body.Rooms != 1 {
		t.Fatalf("unexpected body %+v", body)
	}
}

func TestRoomsListing(t *testing.T) {
	t.Parallel()

	srv, registry, _ := testRouter(t)
	if _, err := registry.CreateRoom("a", "Alice", songloop.CreateParams{
		Name: "open mic", Settings: room.DefaultSettings(),
	}); err != nil {
		t.Fatalf("create room: %v", err)
	}
	if _, err := registry.CreateRoom("b", "Bob", songloop.CreateParams{
		Private: true, Password: "x", Settings: room.DefaultSettings(),
	}); err != nil {
		t.Fatalf("create room: %v", err)
	}

	var listings []songloop.RoomListing
	if code := getJSON(t, srv.URL+"/rooms", &listings); code != http.StatusOK {
		t.Fatalf("unexpected status %d", code)
	}
	if len(listings) != 1 || listings[0].Name != "open mic" {
		t.Fatalf("unexpected listings %+v", listings)
	}
}

func TestStatsEndpoints(t *testing.T) {
	t.Parallel()

	srv, _, stats := testRouter(t)

	// empty store still answers
	var empty []model.Stat
	if code := getJSON(t, srv.URL+"/stats", &empty); code != http.StatusOK {
		t.Fatalf("unexpected status %d", code)
	}
	if len(empty) != 0 {
		t.Fatalf("expected an empty leaderboard, got %+v", empty)
	}

	if err := stats.Apply(model.GameResult{PlayerName: "Alice", Points: 200, Conclusion: model.ConclusionWinner}); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if err := stats.Apply(model.GameResult{PlayerName: "Bob", Points: 50}); err != nil {
		t.Fatalf("apply: %v", err)
	}

	var board []model.Stat
	if code := getJSON(t, srv.URL+"/stats", &board); code != http.StatusOK {
		t.Fatalf("unexpected status %d", code)
	}
	if len(board) != 2 || board[0].PlayerName != "Alice" {
		t.Fatalf("expected Alice on top, got %+v", board)
	}

	var one model.Stat
	if code := getJSON(t, srv.URL+"/stats/alice", &one); code != http.StatusOK {
		t.Fatalf("unexpected status %d", code)
	}
	if one.Wins != 1 || one.SumPoints != 200 {
		t.Fatalf("unexpected stat %+v", one)
	}

	if code := getJSON(t, srv.URL+"/stats/nobody", nil); code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", code)
	}
}
