package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) Routes() http.Handler {
	mux := chi.NewRouter()

	mux.Use(cors.AllowAll().Handler)

	mux.Get("/ws", s.Gateway.Handler(s.Coord))
	mux.Get("/health", s.handleHealth)
	mux.Get("/rooms", s.handleListRooms)
	mux.Handle("/metrics", promhttp.Handler())

	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"status": "ok",
		"rooms":  s.Rooms.Count(),
	})
}

// handleListRooms is a read-only debug view. Room codes are not secrets, any
// player needs one to join, so listing them here is fine.
func (s *Server) handleListRooms(w http.ResponseWriter, r *http.Request) {
	type roomView struct {
		ID      string `json:"id"`
		Code    string `json:"code"`
		Status  string `json:"status"`
		Players int    `json:"players"`
	}

	rs := s.Rooms.List()
	out := make([]roomView, 0, len(rs))
	for _, rm := range rs {
		out = append(out, roomView{
			ID:      rm.ID,
			Code:    rm.Code,
			Status:  string(rm.Status),
			Players: rm.Players.Count(),
		})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(out)
}
