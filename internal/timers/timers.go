// Package timers schedules at most one delayed callback per room. Arming a
// room always replaces whatever was pending, so a stale timer can never fire
// after a manual phase change already replaced it.
package timers

import (
	"sync"
	"time"
)

type slot struct {
	timer *time.Timer
	gen   uint64
}

type Orchestrator struct {
	mu    sync.Mutex
	slots map[string]*slot
	gen   uint64
}

func New() *Orchestrator {
	return &Orchestrator{
		slots: make(map[string]*slot),
	}
}

// Arm schedules fn to run after delay, cancelling any timer already pending
// for roomID. The callback must not assume the state it was armed against
// still exists; it should re-resolve by room id.
func (o *Orchestrator) Arm(roomID string, delay time.Duration, fn func()) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if s, ok := o.slots[roomID]; ok {
		s.timer.Stop()
	}

	o.gen++
	gen := o.gen
	s := &slot{gen: gen}
	s.timer = time.AfterFunc(delay, func() {
		if !o.claim(roomID, gen) {
			return
		}
		fn()
	})
	o.slots[roomID] = s
}

// claim removes the slot iff it still belongs to generation gen. A false
// return means the timer was replaced or cancelled between firing and now.
func (o *Orchestrator) claim(roomID string, gen uint64) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	s, ok := o.slots[roomID]
	if !ok || s.gen != gen {
		return false
	}
	delete(o.slots, roomID)
	return true
}

// Cancel drops any pending timer for roomID.
func (o *Orchestrator) Cancel(roomID string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if s, ok := o.slots[roomID]; ok {
		s.timer.Stop()
		delete(o.slots, roomID)
	}
}

// Pending reports whether roomID has a timer outstanding.
func (o *Orchestrator) Pending(roomID string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	_, ok := o.slots[roomID]
	return ok
}
