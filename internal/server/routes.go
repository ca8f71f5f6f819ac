package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sort"

	"github.com/gorilla/mux"
	statDb "github.com/songloop-games/songloop/internal/database/gamestat/database"
	"github.com/songloop-games/songloop/internal/database/gamestat/model"
	"github.com/songloop-games/songloop/internal/logging"
	"github.com/songloop-games/songloop/internal/songloop"
	"github.com/songloop-games/songloop/internal/songloop/transport"
)

// NewRouter assembles the HTTP surface: the websocket endpoint plus the
// read-only JSON views of the running service.
func NewRouter(ctx context.Context, ws http.Handler, registry *songloop.Registry, hub *transport.Hub, stats *statDb.DB) *mux.Router {
	r := mux.NewRouter()
	r.Handle("/ws", ws)
	r.Handle("/health", HandleHealth(ctx, registry, hub)).Methods(http.MethodGet)
	r.Handle("/rooms", handleRooms(ctx, registry)).Methods(http.MethodGet)
	r.Handle("/stats", handleLeaderboard(ctx, stats)).Methods(http.MethodGet)
	r.Handle("/stats/{player}", handlePlayerStat(ctx, stats)).Methods(http.MethodGet)
	return r
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.FromContext(ctx).Errorf("write json response: %v", err)
	}
}

func HandleHealth(ctx context.Context, registry *songloop.Registry, hub *transport.Hub) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(ctx, w, http.StatusOK, map[string]interface{}{
			"status":      "ok",
			"rooms":       registry.RoomCount(),
			"connections": hub.Count(),
		})
	})
}

func handleRooms(ctx context.Context, registry *songloop.Registry) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(ctx, w, http.StatusOK, registry.ListPublic())
	})
}

func handleLeaderboard(ctx context.Context, stats *statDb.DB) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		all, err := stats.FetchAll()
		if err != nil && !errors.Is(err, statDb.BucketNotFoundErr) {
			logging.FromContext(ctx).Errorf("fetch all stats: %v", err)
			writeJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "stats unavailable"})
			return
		}
		sort.Slice(all, func(i, j int) bool { return all[i].SumPoints > all[j].SumPoints })
		if all == nil {
			all = []model.Stat{}
		}
		writeJSON(ctx, w, http.StatusOK, all)
	})
}

func handlePlayerStat(ctx context.Context, stats *statDb.DB) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		player := mux.Vars(r)["player"]
		stat, err := stats.Fetch(player)
		if err != nil {
			if errors.Is(err, statDb.NotFoundErr) {
				writeJSON(ctx, w, http.StatusNotFound, map[string]string{"error": "no such player"})
				return
			}
			logging.FromContext(ctx).Errorf("fetch stat for %s: %v", player, err)
			writeJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "stats unavailable"})
			return
		}
		writeJSON(ctx, w, http.StatusOK, stat)
	})
}
