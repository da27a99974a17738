package players

import "sync"

type Player struct {
	ID     string
	Name   string
	Score  int
	Active bool
	Host   bool
}

// Store is one room's roster. Players are never deleted while the room
// exists, so scores and identities survive disconnects; the roster only goes
// away with the room itself.
type Store struct {
	mu      sync.Mutex
	players map[string]*Player
	order   []string // join order, drives host succession
}

func NewStore() *Store {
	return &Store{
		players: make(map[string]*Player),
	}
}

func (s *Store) Add(id, name string, host bool) *Player {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := &Player{ID: id, Name: name, Active: true, Host: host}
	s.players[id] = p
	s.order = append(s.order, id)
	return p
}

func (s *Store) Get(id string) *Player {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.players[id]
}

// List returns players in join order.
func (s *Store) List() []*Player {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := make([]*Player, 0, len(s.order))
	for _, id := range s.order {
		list = append(list, s.players[id])
	}
	return list
}

// Active returns the connected players in join order.
func (s *Store) Active() []*Player {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := make([]*Player, 0, len(s.order))
	for _, id := range s.order {
		if p := s.players[id]; p.Active {
			list = append(list, p)
		}
	}
	return list
}

func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.players)
}

func (s *Store) ActiveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, p := range s.players {
		if p.Active {
			n++
		}
	}
	return n
}

func (s *Store) UpdateScore(id string, delta int) *Player {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.players[id]; ok {
		p.Score += delta
		return p
	}
	return nil
}

func (s *Store) SetActive(id string, active bool) *Player {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.players[id]; ok {
		p.Active = active
		return p
	}
	return nil
}

// Host returns the current host, or nil mid-handoff.
func (s *Store) Host() *Player {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range s.order {
		if p := s.players[id]; p.Host {
			return p
		}
	}
	return nil
}

// PromoteSuccessor clears the host flag everywhere and grants it to the
// earliest-joined player that is still active. Returns the new host, or nil
// when nobody is left to promote.
func (s *Store) PromoteSuccessor() *Player {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.players {
		p.Host = false
	}
	for _, id := range s.order {
		if p := s.players[id]; p.Active {
			p.Host = true
			return p
		}
	}
	return nil
}

// Scores snapshots every player's score, keyed by player id.
func (s *Store) Scores() map[string]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	scores := make(map[string]int, len(s.players))
	for id, p := range s.players {
		scores[id] = p.Score
	}
	return scores
}
