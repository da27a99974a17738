// Package metrics exposes the server's Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RoomsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "jprty_rooms_active",
		Help: "Number of rooms currently registered.",
	})

	GamesStarted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "jprty_games_started_total",
		Help: "Game sessions started.",
	})

	GamesEnded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "jprty_games_ended_total",
		Help: "Game sessions that reached GAME_END.",
	})

	Claims = promauto.NewCounter(prometheus.CounterOpts{
		Name: "jprty_claims_total",
		Help: "Buzz claims accepted into a queue.",
	})

	AnswersJudged = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "jprty_answers_judged_total",
		Help: "Submitted answers by adjudication result.",
	}, []string{"result"})

	TimerFires = promauto.NewCounter(prometheus.CounterOpts{
		Name: "jprty_timer_fires_total",
		Help: "Server-driven phase transitions from timer expiry.",
	})
)
