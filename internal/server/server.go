package server

import (
	"log/slog"
	"net/http"

	"github.com/soohoonc/jprty/internal/config"
	"github.com/soohoonc/jprty/internal/conns"
	"github.com/soohoonc/jprty/internal/content"
	"github.com/soohoonc/jprty/internal/db"
	"github.com/soohoonc/jprty/internal/game"
	"github.com/soohoonc/jprty/internal/gateway"
	"github.com/soohoonc/jprty/internal/rooms"
)

// Run wires the service together and serves until the listener fails.
func Run(cfg config.Config, log *slog.Logger) error {
	if log == nil {
		log = slog.Default()
	}

	// Optional database connection: the game runs fine without one, rounds
	// just go unrecorded.
	var rec db.Recorder = db.NopRecorder{}
	if cfg.DatabaseURL != "" {
		database, err := db.Connect(cfg.DatabaseURL)
		if err != nil {
			log.Warn("database unavailable, running without persistence", "error", err)
		} else {
			if err := database.Migrate(); err != nil {
				return err
			}
			defer database.Close()
			rec = database
			log.Info("database connected, migrations applied")
		}
	} else {
		log.Info("DATABASE_URL not set, running without persistence")
	}

	registry := rooms.NewRegistry(cfg.RoomConfig(), log)
	connReg := conns.NewRegistry()
	gw := gateway.New(connReg, log)
	coord := game.NewCoordinator(registry, connReg, content.NewStatic(), rec, gw, log)

	srv := &Server{
		Rooms:   registry,
		Gateway: gw,
		Coord:   coord,
		DB:      rec,
		Log:     log,
	}

	addr := "0.0.0.0:" + cfg.Port
	log.Info("server listening", "addr", addr)
	return http.ListenAndServe(addr, srv.Routes())
}

type Server struct {
	Rooms   *rooms.Registry
	Gateway *gateway.Gateway
	Coord   *game.Coordinator
	DB      db.Recorder
	Log     *slog.Logger
}
