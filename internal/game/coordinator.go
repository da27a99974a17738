package game

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/soohoonc/jprty/internal/conns"
	"github.com/soohoonc/jprty/internal/content"
	"github.com/soohoonc/jprty/internal/db"
	"github.com/soohoonc/jprty/internal/events"
	"github.com/soohoonc/jprty/internal/metrics"
	"github.com/soohoonc/jprty/internal/players"
	"github.com/soohoonc/jprty/internal/rooms"
	"github.com/soohoonc/jprty/internal/timers"
)

// Coordinator is the single entry point for inbound actions. It resolves the
// connection, runs room-registry operations inline, and forwards
// session-mutating actions into the room's actor. There is no lock shared
// across rooms: each session serializes itself.
type Coordinator struct {
	log    *slog.Logger
	rooms  *rooms.Registry
	conns  *conns.Registry
	source content.Source
	rec    db.Recorder
	notif  Notifier
	timers *timers.Orchestrator

	mu       sync.Mutex
	sessions map[string]*Session // room id -> session
}

func NewCoordinator(reg *rooms.Registry, cr *conns.Registry, source content.Source, rec db.Recorder, notif Notifier, log *slog.Logger) *Coordinator {
	if log == nil {
		log = slog.Default()
	}
	return &Coordinator{
		log:      log,
		rooms:    reg,
		conns:    cr,
		source:   source,
		rec:      rec,
		notif:    notif,
		timers:   timers.New(),
		sessions: make(map[string]*Session),
	}
}

// HandleMessage dispatches one inbound client message. Failures go back to
// the originating connection only; the room never sees them.
func (c *Coordinator) HandleMessage(ctx context.Context, connID string, msg events.ClientMessage) {
	var err error
	switch msg.Type {
	case events.RoomCreate:
		err = c.CreateRoom(connID, msg.Name)
	case events.RoomJoin:
		err = c.JoinRoom(connID, msg.Code, msg.Name)
	case events.RoomLeave:
		err = c.LeaveRoom(connID)
	case events.RoomStart:
		err = c.StartGame(ctx, connID, filterOf(msg.Filter))
	case events.SelectPrompt:
		err = c.SelectPrompt(connID, msg.PromptID)
	case events.Claim:
		err = c.ClaimBuzz(connID)
	case events.Submit:
		err = c.SubmitAnswer(connID, msg.Text)
	case events.End:
		err = c.EndGame(connID)
	case events.Reconnect:
		err = c.Reconnect(connID, msg.PlayerID)
	default:
		err = fmt.Errorf("%w: unknown message type %q", ErrInvalidPhase, msg.Type)
	}
	if err != nil {
		c.log.Debug("action rejected", "conn", connID, "type", msg.Type, "kind", KindOf(err), "error", err)
		c.notif.Send(connID, events.Notification{
			Type: events.Error,
			Payload: events.ErrorPayload{
				Kind:    KindOf(err),
				Message: err.Error(),
			},
		})
	}
}

func filterOf(f *events.Filter) content.Filter {
	if f == nil {
		return content.Filter{}
	}
	return content.Filter{Difficulty: f.Difficulty, Categories: f.Categories}
}

// CreateRoom makes a room with the caller as host and confirms to the
// caller only.
func (c *Coordinator) CreateRoom(connID, hostName string) error {
	room, host, err := c.rooms.Create(hostName)
	if err != nil {
		return err
	}
	c.conns.Bind(connID, host.ID, room.ID)

	c.notif.Send(connID, events.Notification{
		Type: events.RoomCreated,
		Payload: events.RoomCreatedPayload{
			Room:   roomInfo(room),
			Player: playerInfo(host),
		},
	})
	return nil
}

// JoinRoom adds the caller to a WAITING room and announces the new roster.
func (c *Coordinator) JoinRoom(connID, code, name string) error {
	room, p, err := c.rooms.Join(code, name)
	if err != nil {
		return err
	}
	c.conns.Bind(connID, p.ID, room.ID)

	c.notif.Broadcast(room.ID, events.Notification{
		Type: events.RoomJoined,
		Payload: events.RoomJoinedPayload{
			Room:   roomInfo(room),
			Player: playerInfo(p),
		},
	})
	return nil
}

// LeaveRoom handles an explicit departure.
func (c *Coordinator) LeaveRoom(connID string) error {
	b, ok := c.conns.Unbind(connID)
	if !ok {
		return ErrNotInRoom
	}
	return c.playerGone(b)
}

// Disconnect handles a dropped transport connection. Identical roster
// consequences to leaving; the player record stays for reconnection either
// way, and an in-flight answer window is left to expire on its own.
func (c *Coordinator) Disconnect(connID string) {
	b, ok := c.conns.Unbind(connID)
	if !ok {
		return
	}
	if err := c.playerGone(b); err != nil {
		c.log.Debug("disconnect cleanup", "conn", connID, "error", err)
	}
}

func (c *Coordinator) playerGone(b conns.Binding) error {
	room, res, err := c.rooms.Leave(b.RoomID, b.PlayerID)
	if err != nil {
		return err
	}

	if res.Closed {
		// Room destroyed: kill the session and its timer so no callback
		// touches a deleted record.
		c.dropSession(b.RoomID)
		c.conns.DropRoom(b.RoomID)
		return nil
	}

	payload := events.RoomLeftPayload{PlayerID: b.PlayerID}
	if res.NewHost != nil {
		payload.NewHostID = res.NewHost.ID
	}
	c.notif.Broadcast(room.ID, events.Notification{
		Type:    events.RoomLeft,
		Payload: payload,
	})
	return nil
}

// StartGame creates the session. Host only. The room is claimed IN_GAME up
// front and released again if board selection or session/round creation
// fails, so a failed start leaves the room joinable and startable.
func (c *Coordinator) StartGame(ctx context.Context, connID string, filter content.Filter) error {
	b, ok := c.conns.Resolve(connID)
	if !ok {
		return ErrNotInRoom
	}
	room := c.rooms.Get(b.RoomID)
	if room == nil {
		return rooms.ErrRoomNotFound
	}
	if p := room.Players.Get(b.PlayerID); p == nil || !p.Host {
		return ErrNotHost
	}
	if filter.Difficulty == "" {
		filter.Difficulty = room.Config.Difficulty
	}

	// Claim the room before the blocking fetches. A concurrent starter
	// loses here instead of racing past a status check, so at most one
	// session is ever constructed per room.
	if err := c.rooms.BeginGame(room.ID); err != nil {
		return err
	}

	brd, err := c.source.SelectBoard(ctx, filter)
	if err != nil {
		c.rooms.SetStatus(room.ID, rooms.StatusWaiting)
		return fmt.Errorf("%w: selecting board: %v", ErrInvalidPhase, err)
	}
	sessionID, err := c.rec.CreateSession(ctx, room.ID, room.Code)
	if err != nil {
		c.rooms.SetStatus(room.ID, rooms.StatusWaiting)
		return fmt.Errorf("%w: creating session record: %v", ErrInvalidPhase, err)
	}
	roundID, err := c.rec.CreateRound(ctx, sessionID, 1)
	if err != nil {
		c.rooms.SetStatus(room.ID, rooms.StatusWaiting)
		return fmt.Errorf("%w: creating round record: %v", ErrInvalidPhase, err)
	}

	session := NewSession(SessionParams{
		RoomID:    room.ID,
		Code:      room.Code,
		Config:    room.Config,
		Roster:    room.Players,
		Board:     brd,
		Filter:    filter,
		SessionID: sessionID,
		RoundID:   roundID,
		Notifier:  c.notif,
		Timers:    c.timers,
		Recorder:  c.rec,
		Source:    c.source,
		Log:       c.log,
		OnEnd:     c.sessionEnded,
	})

	c.mu.Lock()
	c.sessions[room.ID] = session
	c.mu.Unlock()

	metrics.GamesStarted.Inc()
	c.log.Info("game started", "room", room.ID, "code", room.Code, "session", sessionID)

	c.notif.Broadcast(room.ID, events.Notification{
		Type: events.RoomStarted,
		Payload: events.RoomStartedPayload{
			Round: 1,
			Phase: string(PhaseSelecting),
			Board: boardView(brd),
		},
	})
	return nil
}

func (c *Coordinator) SelectPrompt(connID, promptID string) error {
	b, session, err := c.resolveSession(connID)
	if err != nil {
		return err
	}
	return session.SelectPrompt(b.PlayerID, promptID)
}

func (c *Coordinator) ClaimBuzz(connID string) error {
	b, session, err := c.resolveSession(connID)
	if err != nil {
		return err
	}
	return session.Claim(b.PlayerID)
}

func (c *Coordinator) SubmitAnswer(connID, text string) error {
	b, session, err := c.resolveSession(connID)
	if err != nil {
		return err
	}
	return session.Submit(b.PlayerID, text)
}

func (c *Coordinator) EndGame(connID string) error {
	b, session, err := c.resolveSession(connID)
	if err != nil {
		return err
	}
	if err := c.requireHost(b.RoomID, b.PlayerID); err != nil {
		return err
	}
	return session.End()
}

// requireHost verifies the acting player currently holds the host role.
// Host succession means the answer can change mid-game.
func (c *Coordinator) requireHost(roomID, playerID string) error {
	room := c.rooms.Get(roomID)
	if room == nil {
		return rooms.ErrRoomNotFound
	}
	if p := room.Players.Get(playerID); p == nil || !p.Host {
		return ErrNotHost
	}
	return nil
}

// Reconnect re-links a connection to an existing player and replays the
// current state to that one client. It never mutates the session.
func (c *Coordinator) Reconnect(connID, playerID string) error {
	room, p, err := c.rooms.Reconnect(playerID)
	if err != nil {
		return err
	}
	// A lingering old connection is superseded, not closed, by this layer.
	c.conns.Bind(connID, p.ID, room.ID)

	phase := PhaseLobby
	if room.Status == rooms.StatusFinished {
		phase = PhaseGameEnd
	}
	snap := events.SnapshotPayload{
		Room:   roomInfo(room),
		Phase:  string(phase),
		Scores: room.Players.Scores(),
	}
	if session := c.session(room.ID); session != nil {
		s := session.Snapshot()
		s.Room = snap.Room
		snap = s
	}
	c.notif.Send(connID, events.Notification{
		Type:    events.Snapshot,
		Payload: snap,
	})
	return nil
}

// sessionEnded runs once a session reaches GAME_END. The room is FINISHED
// but the session object lingers for a retention window so late score
// queries don't race the deletion.
func (c *Coordinator) sessionEnded(roomID string) {
	c.rooms.SetStatus(roomID, rooms.StatusFinished)
	room := c.rooms.Get(roomID)
	retention := rooms.DefaultConfig().Retention
	if room != nil {
		retention = room.Config.Retention
	}
	c.timers.Arm(roomID, retention, func() {
		c.dropSession(roomID)
	})
}

func (c *Coordinator) resolveSession(connID string) (conns.Binding, *Session, error) {
	b, ok := c.conns.Resolve(connID)
	if !ok {
		return conns.Binding{}, nil, ErrNotInRoom
	}
	session := c.session(b.RoomID)
	if session == nil {
		return b, nil, fmt.Errorf("%w: no game in progress", ErrInvalidPhase)
	}
	return b, session, nil
}

// Session returns the live session for a room, or nil.
func (c *Coordinator) session(roomID string) *Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessions[roomID]
}

func (c *Coordinator) dropSession(roomID string) {
	c.mu.Lock()
	session := c.sessions[roomID]
	delete(c.sessions, roomID)
	c.mu.Unlock()
	if session != nil {
		session.Stop()
	}
}

func roomInfo(r *rooms.Room) events.RoomInfo {
	info := events.RoomInfo{
		ID:     r.ID,
		Code:   r.Code,
		Status: string(r.Status),
	}
	for _, p := range r.Players.List() {
		info.Players = append(info.Players, playerInfo(p))
	}
	return info
}

func playerInfo(p *players.Player) events.PlayerInfo {
	return events.PlayerInfo{
		ID:     p.ID,
		Name:   p.Name,
		Score:  p.Score,
		Active: p.Active,
		Host:   p.Host,
	}
}
