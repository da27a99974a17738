// Package conns maps transport-level connection ids to (player, room). It
// carries no game semantics; the coordinator resolves every inbound action
// through it.
package conns

import "sync"

type Binding struct {
	ConnID   string
	PlayerID string
	RoomID   string
}

type Registry struct {
	mu sync.Mutex

	// byConn is the source of truth; byPlayer and byRoom are indexes over it.
	byConn   map[string]Binding
	byPlayer map[string]string
	byRoom   map[string]map[string]struct{}
}

func NewRegistry() *Registry {
	return &Registry{
		byConn:   make(map[string]Binding),
		byPlayer: make(map[string]string),
		byRoom:   make(map[string]map[string]struct{}),
	}
}

// Bind links connID to (playerID, roomID). A player has at most one live
// connection: a new binding supersedes the old one, whose connection id is
// returned so the transport can drop it.
func (r *Registry) Bind(connID, playerID, roomID string) (stale string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if old, ok := r.byPlayer[playerID]; ok && old != connID {
		stale = old
		r.removeLocked(old)
	}

	r.byConn[connID] = Binding{ConnID: connID, PlayerID: playerID, RoomID: roomID}
	r.byPlayer[playerID] = connID
	if _, ok := r.byRoom[roomID]; !ok {
		r.byRoom[roomID] = make(map[string]struct{})
	}
	r.byRoom[roomID][connID] = struct{}{}
	return stale
}

// Unbind drops connID's binding, returning what it pointed at.
func (r *Registry) Unbind(connID string) (Binding, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.byConn[connID]
	if ok {
		r.removeLocked(connID)
	}
	return b, ok
}

// Resolve returns the binding for connID.
func (r *Registry) Resolve(connID string) (Binding, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.byConn[connID]
	return b, ok
}

// RoomConns lists the live connection ids in a room.
func (r *Registry) RoomConns(roomID string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	set := r.byRoom[roomID]
	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	return ids
}

// DropRoom removes every binding for a destroyed room.
func (r *Registry) DropRoom(roomID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for connID := range r.byRoom[roomID] {
		r.removeLocked(connID)
	}
}

func (r *Registry) removeLocked(connID string) {
	b, ok := r.byConn[connID]
	if !ok {
		return
	}
	delete(r.byConn, connID)
	if r.byPlayer[b.PlayerID] == connID {
		delete(r.byPlayer, b.PlayerID)
	}
	if set, ok := r.byRoom[b.RoomID]; ok {
		delete(set, connID)
		if len(set) == 0 {
			delete(r.byRoom, b.RoomID)
		}
	}
}
