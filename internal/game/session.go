package game

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/soohoonc/jprty/internal/board"
	"github.com/soohoonc/jprty/internal/buzzer"
	"github.com/soohoonc/jprty/internal/content"
	"github.com/soohoonc/jprty/internal/db"
	"github.com/soohoonc/jprty/internal/events"
	"github.com/soohoonc/jprty/internal/judge"
	"github.com/soohoonc/jprty/internal/metrics"
	"github.com/soohoonc/jprty/internal/players"
	"github.com/soohoonc/jprty/internal/rooms"
	"github.com/soohoonc/jprty/internal/timers"
)

type Phase string

const (
	PhaseLobby     = Phase("LOBBY")
	PhaseSelecting = Phase("SELECTING")
	PhaseReading   = Phase("READING")
	PhaseBuzzing   = Phase("BUZZING")
	PhaseAnswering = Phase("ANSWERING")
	PhaseRevealing = Phase("REVEALING")
	PhaseRoundEnd  = Phase("ROUND_END")
	PhaseGameEnd   = Phase("GAME_END")
)

// Notifier is the outbound side of the transport.
type Notifier interface {
	Broadcast(roomID string, n events.Notification)
	Send(connID string, n events.Notification)
}

const recordTimeout = 5 * time.Second

// SessionParams carries everything a new session needs. The board and the
// persistence ids come from the coordinator, which already blocked on the
// content source and the recorder during game start.
type SessionParams struct {
	RoomID    string
	Code      string
	Config    rooms.Config
	Roster    *players.Store
	Board     *board.Board
	Filter    content.Filter
	SessionID string
	RoundID   string

	Notifier Notifier
	Timers   *timers.Orchestrator
	Recorder db.Recorder
	Source   content.Source
	Log      *slog.Logger

	// OnEnd runs after the session reaches GAME_END, outside the actor.
	OnEnd func(roomID string)
}

type op struct {
	fn    func() error
	reply chan error
}

// Session is one room's live game. All mutation happens on a single actor
// goroutine draining ops: player actions and timer expirations share the
// stream, so no two transitions of the same room ever interleave. Different
// rooms run independent actors.
type Session struct {
	roomID string
	code   string
	cfg    rooms.Config
	roster *players.Store
	notif  Notifier
	timers *timers.Orchestrator
	rec    db.Recorder
	source content.Source
	log    *slog.Logger
	onEnd  func(string)

	ops  chan op
	done chan struct{}

	// Owned by the actor goroutine past this point.
	phase     Phase
	round     int
	filter    content.Filter
	board     *board.Board
	current   *board.Prompt
	queue     []string
	epoch     int // bumped on every (re)arm and cancel; stale fires no-op
	deadline  time.Time
	sessionID string
	roundID   string
}

// NewSession starts the actor in SELECTING with round 1 under way.
func NewSession(p SessionParams) *Session {
	log := p.Log
	if log == nil {
		log = slog.Default()
	}
	s := &Session{
		roomID:    p.RoomID,
		code:      p.Code,
		cfg:       p.Config,
		roster:    p.Roster,
		notif:     p.Notifier,
		timers:    p.Timers,
		rec:       p.Recorder,
		source:    p.Source,
		log:       log,
		onEnd:     p.OnEnd,
		ops:       make(chan op, 16),
		done:      make(chan struct{}),
		phase:     PhaseSelecting,
		round:     1,
		filter:    p.Filter,
		board:     p.Board,
		sessionID: p.SessionID,
		roundID:   p.RoundID,
	}
	go s.run()
	return s
}

func (s *Session) run() {
	for {
		select {
		case o := <-s.ops:
			o.reply <- o.fn()
		case <-s.done:
			return
		}
	}
}

// do applies fn on the actor goroutine and returns its result. A stopped
// session rejects everything with InvalidPhase.
func (s *Session) do(fn func() error) error {
	o := op{fn: fn, reply: make(chan error, 1)}
	select {
	case s.ops <- o:
	case <-s.done:
		return ErrInvalidPhase
	}
	select {
	case err := <-o.reply:
		return err
	case <-s.done:
		return ErrInvalidPhase
	}
}

// Stop kills the actor and its pending timer. Used when the room is
// destroyed or the retention window closes.
func (s *Session) Stop() {
	select {
	case <-s.done:
		return
	default:
	}
	close(s.done)
	s.timers.Cancel(s.roomID)
}

// arm schedules the next server-driven transition, replacing any pending
// one. The callback re-enters the actor and checks the epoch so a fire that
// lost the race against a player action is a no-op.
func (s *Session) arm(d time.Duration, fn func() error) {
	s.epoch++
	epoch := s.epoch
	s.deadline = time.Now().Add(d)
	s.timers.Arm(s.roomID, d, func() {
		metrics.TimerFires.Inc()
		go func() {
			_ = s.do(func() error {
				if s.epoch != epoch {
					return nil
				}
				return fn()
			})
		}()
	})
}

func (s *Session) cancelTimer() {
	s.epoch++
	s.deadline = time.Time{}
	s.timers.Cancel(s.roomID)
}

// SelectPrompt is valid only in SELECTING and only for an unanswered prompt.
func (s *Session) SelectPrompt(playerID, promptID string) error {
	return s.do(func() error {
		if s.phase != PhaseSelecting {
			return ErrInvalidPhase
		}
		p, err := s.board.Select(promptID)
		if err != nil {
			return err
		}

		s.current = p
		s.queue = nil
		s.phase = PhaseReading
		s.log.Info("prompt selected", "room", s.roomID, "prompt", p.ID, "player", playerID)

		s.notif.Broadcast(s.roomID, events.Notification{
			Type: events.PromptSelected,
			Payload: events.PromptSelectedPayload{
				Prompt: promptView(p),
				Phase:  string(s.phase),
			},
		})

		// Reading time before anyone may claim
		s.arm(s.cfg.ReadingDelay, s.openWindow)
		return nil
	})
}

// openWindow runs on reading-delay expiry: READING -> BUZZING.
func (s *Session) openWindow() error {
	if s.phase != PhaseReading {
		return nil
	}
	s.phase = PhaseBuzzing
	s.notif.Broadcast(s.roomID, events.Notification{
		Type: events.WindowOpened,
		Payload: events.WindowOpenedPayload{
			PromptID: s.current.ID,
			WindowMs: s.cfg.BuzzWindow.Milliseconds(),
		},
	})
	s.arm(s.cfg.BuzzWindow, s.windowExpired)
	return nil
}

// windowExpired runs when the buzz window lapses with nobody claiming.
func (s *Session) windowExpired() error {
	if s.phase != PhaseBuzzing {
		return nil
	}
	return s.reveal()
}

// Claim records a buzz. The first claim in BUZZING takes the buzzer and
// opens the response window; claims arriving while someone is answering
// queue up as fallback. A repeat claim from the same player is a silent
// no-op. Ordering is by arrival on the actor stream, never by any
// client-supplied timestamp.
func (s *Session) Claim(playerID string) error {
	return s.do(func() error {
		switch s.phase {
		case PhaseBuzzing, PhaseAnswering:
		default:
			return ErrInvalidPhase
		}

		before := len(s.queue)
		s.queue = buzzer.Claim(s.queue, playerID)
		if len(s.queue) == before {
			return nil // duplicate, idempotent
		}
		metrics.Claims.Inc()

		answering := false
		if s.phase == PhaseBuzzing {
			// First claim wins the buzzer
			answering = true
			s.phase = PhaseAnswering
			s.arm(s.cfg.ResponseWindow, s.responseTimeout)
		}

		s.notif.Broadcast(s.roomID, events.Notification{
			Type: events.PlayerClaimed,
			Payload: events.PlayerClaimedPayload{
				PlayerID:    playerID,
				Position:    buzzer.Position(s.queue, playerID),
				IsAnswering: answering,
			},
		})
		return nil
	})
}

// Submit adjudicates an answer from the current responder.
func (s *Session) Submit(playerID, text string) error {
	return s.do(func() error {
		if s.phase != PhaseAnswering {
			return ErrInvalidPhase
		}
		if buzzer.Head(s.queue) != playerID {
			return ErrNotYourTurn
		}

		correct := judge.Judge(s.current.Answer, text)
		s.recordAnswer(playerID, text, correct)
		if correct {
			metrics.AnswersJudged.WithLabelValues("correct").Inc()
			return s.applyCorrect(playerID)
		}
		metrics.AnswersJudged.WithLabelValues("incorrect").Inc()
		return s.applyIncorrect(playerID, s.current.Value)
	})
}

func (s *Session) applyCorrect(playerID string) error {
	delta := s.current.Value
	s.roster.UpdateScore(playerID, delta)
	s.log.Info("answer correct", "room", s.roomID, "player", playerID, "delta", delta)

	s.notif.Broadcast(s.roomID, events.Notification{
		Type: events.AnswerResult,
		Payload: events.AnswerResultPayload{
			PlayerID: playerID,
			Correct:  true,
			Delta:    delta,
			Scores:   s.roster.Scores(),
		},
	})
	return s.reveal()
}

// applyIncorrect covers both a wrong answer (penalty = prompt value) and a
// response timeout (penalty = 0): pop the responder, hand off to the next
// claimant with a fresh full-length window, or reveal when nobody is left.
func (s *Session) applyIncorrect(playerID string, penalty int) error {
	delta := -penalty
	if penalty != 0 {
		s.roster.UpdateScore(playerID, delta)
	}
	s.queue = buzzer.Advance(s.queue)

	next := buzzer.Head(s.queue)
	s.notif.Broadcast(s.roomID, events.Notification{
		Type: events.AnswerResult,
		Payload: events.AnswerResultPayload{
			PlayerID:     playerID,
			Correct:      false,
			Delta:        delta,
			Scores:       s.roster.Scores(),
			NextPlayerID: next,
		},
	})

	if next != "" {
		s.arm(s.cfg.ResponseWindow, s.responseTimeout)
		return nil
	}
	return s.reveal()
}

// responseTimeout runs when the responder's window lapses. Same path as an
// incorrect submission, with no score penalty. Never caller-facing.
func (s *Session) responseTimeout() error {
	if s.phase != PhaseAnswering {
		return nil
	}
	playerID := buzzer.Head(s.queue)
	if playerID == "" {
		return s.reveal()
	}
	s.log.Info("response timeout", "room", s.roomID, "player", playerID)
	return s.applyIncorrect(playerID, 0)
}

// reveal discloses the expected answer to the room. The prompt is spent once
// its answer is public, so it is marked answered here if a correct response
// didn't already do so.
func (s *Session) reveal() error {
	s.phase = PhaseRevealing
	if s.current != nil && !s.current.Answered {
		if err := s.board.MarkAnswered(s.current.ID); err != nil {
			s.log.Error("marking prompt answered", "room", s.roomID, "prompt", s.current.ID, "error", err)
		}
	}
	s.notif.Broadcast(s.roomID, events.Notification{
		Type: events.Revealed,
		Payload: events.RevealedPayload{
			PromptID: s.current.ID,
			Answer:   s.current.Answer,
		},
	})
	s.arm(s.cfg.RevealDelay, s.finishReveal)
	return nil
}

// finishReveal runs when the reveal delay lapses: back to SELECTING, or on
// an exhausted board through ROUND_END to the next round or GAME_END.
func (s *Session) finishReveal() error {
	if s.phase != PhaseRevealing {
		return nil
	}
	s.current = nil
	s.queue = nil

	if !s.board.Exhausted() {
		s.phase = PhaseSelecting
		// Announce the phase change; clients must not have to infer it
		// from the configured reveal delay.
		s.notif.Broadcast(s.roomID, events.Notification{
			Type: events.SelectionOpened,
			Payload: events.SelectionOpenedPayload{
				Round: s.round,
				Board: boardView(s.board),
			},
		})
		return nil
	}

	s.phase = PhaseRoundEnd
	s.notif.Broadcast(s.roomID, events.Notification{
		Type:    events.RoundEnded,
		Payload: events.RoundEndedPayload{Round: s.round},
	})

	if s.round >= s.cfg.Rounds {
		return s.endGame()
	}
	return s.nextRound()
}

// nextRound pulls a fresh board. The fetch blocks the actor like game start
// does; on failure the game ends with whatever scores stand.
func (s *Session) nextRound() error {
	ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
	defer cancel()

	b, err := s.source.SelectBoard(ctx, s.filter)
	if err != nil {
		s.log.Error("selecting next-round board", "room", s.roomID, "error", err)
		return s.endGame()
	}
	s.round++
	roundID, err := s.rec.CreateRound(ctx, s.sessionID, s.round)
	if err != nil {
		s.log.Warn("recording round", "room", s.roomID, "round", s.round, "error", err)
	} else {
		s.roundID = roundID
	}

	s.board = b
	s.phase = PhaseSelecting
	s.notif.Broadcast(s.roomID, events.Notification{
		Type: events.RoomStarted,
		Payload: events.RoomStartedPayload{
			Round: s.round,
			Phase: string(s.phase),
			Board: boardView(b),
		},
	})
	return nil
}

// End is the explicit end-of-game request.
func (s *Session) End() error {
	return s.do(func() error {
		if s.phase == PhaseGameEnd {
			return ErrInvalidPhase
		}
		return s.endGame()
	})
}

func (s *Session) endGame() error {
	s.cancelTimer()
	s.phase = PhaseGameEnd
	s.current = nil
	s.queue = nil

	rankings := s.rankings()
	s.log.Info("game ended", "room", s.roomID, "code", s.code, "players", len(rankings))
	metrics.GamesEnded.Inc()

	s.notif.Broadcast(s.roomID, events.Notification{
		Type:    events.GameEnded,
		Payload: events.GameEndedPayload{Rankings: rankings},
	})

	if s.sessionID != "" {
		scores := make([]db.PlayerScore, len(rankings))
		for i, r := range rankings {
			scores[i] = db.PlayerScore{PlayerID: r.PlayerID, Name: r.Name, Score: r.Score, Rank: r.Rank}
		}
		sessionID := s.sessionID
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
			defer cancel()
			if err := s.rec.FinishSession(ctx, sessionID, scores); err != nil {
				s.log.Warn("recording final scores", "room", s.roomID, "error", err)
			}
		}()
	}

	if s.onEnd != nil {
		go s.onEnd(s.roomID)
	}
	return nil
}

// rankings orders players by score descending; ties keep join order.
func (s *Session) rankings() []events.RankedScore {
	list := s.roster.List()
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].Score > list[j].Score
	})
	ranked := make([]events.RankedScore, len(list))
	for i, p := range list {
		ranked[i] = events.RankedScore{PlayerID: p.ID, Name: p.Name, Score: p.Score, Rank: i + 1}
	}
	return ranked
}

// recordAnswer appends the adjudicated answer to the round log without ever
// blocking phase progression. A failure is a warning, nothing more.
func (s *Session) recordAnswer(playerID, answer string, correct bool) {
	if s.roundID == "" {
		return
	}
	roundID, promptID := s.roundID, s.current.ID
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
		defer cancel()
		if err := s.rec.RecordAnswer(ctx, roundID, promptID, playerID, answer, correct); err != nil {
			s.log.Warn("recording answer", "room", s.roomID, "player", playerID, "error", err)
		}
	}()
}

// Phase reports the current phase through the actor stream.
func (s *Session) Phase() Phase {
	var phase Phase
	err := s.do(func() error {
		phase = s.phase
		return nil
	})
	if err != nil {
		return PhaseGameEnd
	}
	return phase
}

// Snapshot captures the session for a single reconnecting client. It is a
// read: no state changes.
func (s *Session) Snapshot() events.SnapshotPayload {
	var snap events.SnapshotPayload
	_ = s.do(func() error {
		snap = events.SnapshotPayload{
			Phase:       string(s.phase),
			Round:       s.round,
			Queue:       append([]string(nil), s.queue...),
			ResponderID: buzzer.Head(s.queue),
			Scores:      s.roster.Scores(),
			Board:       boardView(s.board),
		}
		if s.current != nil {
			v := promptView(s.current)
			snap.Prompt = &v
		}
		if s.timers.Pending(s.roomID) {
			if left := time.Until(s.deadline); left > 0 {
				snap.TimeLeftMs = left.Milliseconds()
			}
		}
		return nil
	})
	return snap
}

func promptView(p *board.Prompt) events.PromptView {
	return events.PromptView{
		ID:       p.ID,
		Category: p.Category,
		Value:    p.Value,
		Question: p.Question,
		Answered: p.Answered,
	}
}

func boardView(b *board.Board) []events.CategoryView {
	if b == nil {
		return nil
	}
	view := make([]events.CategoryView, 0, len(b.Categories))
	for _, cat := range b.Categories {
		cv := events.CategoryView{Name: cat.Name}
		for _, p := range cat.Prompts {
			cv.Prompts = append(cv.Prompts, promptView(p))
		}
		view = append(view, cv)
	}
	return view
}
