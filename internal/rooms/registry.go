package rooms

import (
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/soohoonc/jprty/internal/metrics"
	"github.com/soohoonc/jprty/internal/players"
)

var (
	ErrRoomNotFound   = errors.New("room not found")
	ErrRoomFull       = errors.New("room is full")
	ErrRoomNotWaiting = errors.New("game already started")
	ErrUnknownPlayer  = errors.New("unknown player")
	ErrCodesExhausted = errors.New("failed to generate unique room code")
)

const codeRetries = 10

const staleTTL = 1 * time.Hour

// Registry owns every live room. Codes are unique among non-closed rooms and
// looked up case-insensitively.
type Registry struct {
	mu         sync.Mutex
	rooms      map[string]*Room  // room id -> room
	byCode     map[string]string // join code -> room id
	playerRoom map[string]string // player id -> room id, survives disconnects
	defaults   Config
	log        *slog.Logger
}

func NewRegistry(defaults Config, log *slog.Logger) *Registry {
	if log == nil {
		log = slog.Default()
	}
	r := &Registry{
		rooms:      make(map[string]*Room),
		byCode:     make(map[string]string),
		playerRoom: make(map[string]string),
		defaults:   defaults,
		log:        log,
	}
	go r.sweepStale()
	return r
}

// Create makes a WAITING room with hostName as its only (host) player.
func (r *Registry) Create(hostName string) (*Room, *players.Player, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Try a bounded number of times to generate a unique code
	var code string
	for i := 0; ; i++ {
		if i == codeRetries {
			return nil, nil, ErrCodesExhausted
		}
		c, err := GenerateCode()
		if err != nil {
			return nil, nil, err
		}
		if _, taken := r.byCode[c]; !taken {
			code = c
			break
		}
	}

	room := &Room{
		ID:        uuid.New().String(),
		Code:      code,
		Status:    StatusWaiting,
		Config:    r.defaults,
		Players:   players.NewStore(),
		CreatedAt: time.Now(),
	}
	host := room.Players.Add(uuid.New().String(), hostName, true)

	r.rooms[room.ID] = room
	r.byCode[code] = room.ID
	r.playerRoom[host.ID] = room.ID
	metrics.RoomsActive.Set(float64(len(r.rooms)))

	r.log.Info("room created", "room", room.ID, "code", code, "host", host.ID)
	return room, host, nil
}

// Join adds a player to the room with the given code. The lookup is
// case-insensitive.
func (r *Registry) Join(code, name string) (*Room, *players.Player, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, ok := r.byCode[strings.ToUpper(strings.TrimSpace(code))]
	if !ok {
		return nil, nil, ErrRoomNotFound
	}
	room := r.rooms[id]
	if room.Status != StatusWaiting {
		return nil, nil, ErrRoomNotWaiting
	}
	if room.Players.Count() >= room.Config.MaxPlayers {
		return nil, nil, ErrRoomFull
	}

	p := room.Players.Add(uuid.New().String(), name, false)
	r.playerRoom[p.ID] = room.ID

	r.log.Info("player joined", "room", room.ID, "player", p.ID, "name", name)
	return room, p, nil
}

// LeaveResult describes the roster fallout of a departure.
type LeaveResult struct {
	Player  *players.Player
	NewHost *players.Player // non-nil when the host role moved
	Closed  bool            // last active player left, room destroyed
}

// Leave marks the player inactive. The player record stays (reconnection);
// the host role moves to the earliest-joined remaining active player; the
// room closes when nobody active remains.
func (r *Registry) Leave(roomID, playerID string) (*Room, LeaveResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[roomID]
	if !ok {
		return nil, LeaveResult{}, ErrRoomNotFound
	}
	p := room.Players.SetActive(playerID, false)
	if p == nil {
		return nil, LeaveResult{}, ErrUnknownPlayer
	}

	res := LeaveResult{Player: p}
	if room.Players.ActiveCount() == 0 {
		r.closeLocked(room)
		res.Closed = true
		return room, res, nil
	}
	if p.Host {
		res.NewHost = room.Players.PromoteSuccessor()
		r.log.Info("host transferred", "room", room.ID, "host", res.NewHost.ID)
	}
	return room, res, nil
}

// Reconnect re-activates a disconnected player. It never touches game state;
// the caller re-synchronizes the client from a session snapshot.
func (r *Registry) Reconnect(playerID string) (*Room, *players.Player, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	roomID, ok := r.playerRoom[playerID]
	if !ok {
		return nil, nil, ErrUnknownPlayer
	}
	room := r.rooms[roomID]
	p := room.Players.SetActive(playerID, true)
	if p == nil {
		return nil, nil, ErrUnknownPlayer
	}
	return room, p, nil
}

func (r *Registry) Get(roomID string) *Room {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rooms[roomID]
}

func (r *Registry) GetByCode(code string) *Room {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.byCode[strings.ToUpper(strings.TrimSpace(code))]
	if !ok {
		return nil
	}
	return r.rooms[id]
}

// BeginGame atomically moves a WAITING room to IN_GAME. Exactly one of any
// number of concurrent starters wins the claim; the rest get
// ErrRoomNotWaiting.
func (r *Registry) BeginGame(roomID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	room, ok := r.rooms[roomID]
	if !ok {
		return ErrRoomNotFound
	}
	if room.Status != StatusWaiting {
		return ErrRoomNotWaiting
	}
	room.Status = StatusInGame
	return nil
}

func (r *Registry) SetStatus(roomID string, status Status) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if room, ok := r.rooms[roomID]; ok {
		room.Status = status
	}
}

func (r *Registry) List() []*Room {
	r.mu.Lock()
	defer r.mu.Unlock()
	list := make([]*Room, 0, len(r.rooms))
	for _, room := range r.rooms {
		list = append(list, room)
	}
	return list
}

func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rooms)
}

// Close evicts a room regardless of roster state.
func (r *Registry) Close(roomID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if room, ok := r.rooms[roomID]; ok {
		r.closeLocked(room)
	}
}

func (r *Registry) closeLocked(room *Room) {
	room.Status = StatusClosed
	delete(r.byCode, room.Code)
	for _, p := range room.Players.List() {
		delete(r.playerRoom, p.ID)
	}
	delete(r.rooms, room.ID)
	metrics.RoomsActive.Set(float64(len(r.rooms)))
	r.log.Info("room closed", "room", room.ID, "code", room.Code)
}

func (r *Registry) sweepStale() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		r.sweepOnce(time.Now())
	}
}

// sweepOnce closes WAITING rooms older than staleTTL.
func (r *Registry) sweepOnce(now time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, room := range r.rooms {
		// Never sweep a live game out from under its players
		if room.Status == StatusWaiting && now.Sub(room.CreatedAt) > staleTTL {
			r.closeLocked(room)
		}
	}
}
