package rooms

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/soohoonc/jprty/internal/metrics"
)

func testRegistry() *Registry {
	cfg := DefaultConfig()
	cfg.MaxPlayers = 3
	return NewRegistry(cfg, nil)
}

func TestRegistry_Create(t *testing.T) {
	r := testRegistry()

	room, host, err := r.Create("Alice")
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if room.Status != StatusWaiting {
		t.Errorf("Status = %q, want WAITING", room.Status)
	}
	if len(room.Code) != codeLength {
		t.Errorf("code length = %d, want %d", len(room.Code), codeLength)
	}
	if !host.Host {
		t.Error("creator should be host")
	}
	if !host.Active {
		t.Error("creator should be active")
	}
	if r.Count() != 1 {
		t.Errorf("Count = %d, want 1", r.Count())
	}
}

func TestRegistry_Join(t *testing.T) {
	r := testRegistry()
	room, _, _ := r.Create("Alice")

	got, p, err := r.Join(room.Code, "Bob")
	if err != nil {
		t.Fatalf("Join() error: %v", err)
	}
	if got.ID != room.ID {
		t.Error("Join resolved a different room")
	}
	if p.Host {
		t.Error("joiner should not be host")
	}
	if room.Players.Count() != 2 {
		t.Errorf("roster size = %d, want 2", room.Players.Count())
	}
}

func TestRegistry_Join_CaseInsensitive(t *testing.T) {
	r := testRegistry()
	room, _, _ := r.Create("Alice")

	if _, _, err := r.Join(strings.ToLower(room.Code), "Bob"); err != nil {
		t.Errorf("lower-cased code should resolve, got error: %v", err)
	}
	if got := r.GetByCode(" " + strings.ToLower(room.Code) + " "); got == nil {
		t.Error("GetByCode should trim and upper-case")
	}
}

func TestRegistry_Join_Errors(t *testing.T) {
	r := testRegistry()
	room, _, _ := r.Create("Alice")

	if _, _, err := r.Join("ZZZZZZ", "Bob"); !errors.Is(err, ErrRoomNotFound) {
		t.Errorf("unknown code error = %v, want ErrRoomNotFound", err)
	}

	// Fill the room (max 3 in test config)
	r.Join(room.Code, "Bob")
	r.Join(room.Code, "Carol")
	if _, _, err := r.Join(room.Code, "Dave"); !errors.Is(err, ErrRoomFull) {
		t.Errorf("full room error = %v, want ErrRoomFull", err)
	}

	r.SetStatus(room.ID, StatusInGame)
	if _, _, err := r.Join(room.Code, "Eve"); !errors.Is(err, ErrRoomNotWaiting) {
		t.Errorf("in-game join error = %v, want ErrRoomNotWaiting", err)
	}
}

func TestRegistry_Leave_HostSuccession(t *testing.T) {
	r := testRegistry()
	room, host, _ := r.Create("Alice")
	_, bob, _ := r.Join(room.Code, "Bob")
	r.Join(room.Code, "Carol")

	_, res, err := r.Leave(room.ID, host.ID)
	if err != nil {
		t.Fatalf("Leave() error: %v", err)
	}
	if res.Closed {
		t.Error("room should stay open with active players left")
	}
	if res.NewHost == nil || res.NewHost.ID != bob.ID {
		t.Errorf("NewHost = %v, want earliest remaining joiner (Bob)", res.NewHost)
	}
	if host.Active {
		t.Error("leaver should be inactive")
	}
	if room.Players.Count() != 3 {
		t.Error("player records must survive departure for reconnection")
	}
}

func TestRegistry_Leave_LastPlayerClosesRoom(t *testing.T) {
	r := testRegistry()
	room, host, _ := r.Create("Alice")

	_, res, err := r.Leave(room.ID, host.ID)
	if err != nil {
		t.Fatalf("Leave() error: %v", err)
	}
	if !res.Closed {
		t.Error("room should close when the last active player leaves")
	}
	if r.Get(room.ID) != nil {
		t.Error("closed room should be evicted from the registry")
	}
	if r.GetByCode(room.Code) != nil {
		t.Error("closed room's code should be released")
	}
}

func TestRegistry_Reconnect(t *testing.T) {
	r := testRegistry()
	room, _, _ := r.Create("Alice")
	_, bob, _ := r.Join(room.Code, "Bob")

	r.Leave(room.ID, bob.ID)
	if bob.Active {
		t.Fatal("Bob should be inactive after leaving")
	}

	got, p, err := r.Reconnect(bob.ID)
	if err != nil {
		t.Fatalf("Reconnect() error: %v", err)
	}
	if got.ID != room.ID {
		t.Error("Reconnect resolved a different room")
	}
	if !p.Active {
		t.Error("reconnected player should be active")
	}

	if _, _, err := r.Reconnect("nonexistent"); !errors.Is(err, ErrUnknownPlayer) {
		t.Errorf("Reconnect(unknown) error = %v, want ErrUnknownPlayer", err)
	}
}

func TestRegistry_CodeReleasedAfterClose(t *testing.T) {
	r := testRegistry()
	room, host, _ := r.Create("Alice")
	code := room.Code

	r.Leave(room.ID, host.ID)

	// The code is free again; a new room may claim it
	if r.GetByCode(code) != nil {
		t.Error("code should be released after room close")
	}
}

func TestRegistry_AtMostOneHost(t *testing.T) {
	r := testRegistry()
	room, host, _ := r.Create("Alice")
	r.Join(room.Code, "Bob")
	r.Join(room.Code, "Carol")
	r.Leave(room.ID, host.ID)

	hosts := 0
	for _, p := range room.Players.List() {
		if p.Host {
			hosts++
		}
	}
	if hosts != 1 {
		t.Errorf("host count = %d, want exactly 1", hosts)
	}
}

func TestRegistry_BeginGame(t *testing.T) {
	r := testRegistry()
	room, _, err := r.Create("Alice")
	if err != nil {
		t.Fatal(err)
	}

	if err := r.BeginGame(room.ID); err != nil {
		t.Fatalf("BeginGame() error: %v", err)
	}
	if room.Status != StatusInGame {
		t.Errorf("Status = %q, want IN_GAME", room.Status)
	}

	// The claim is exclusive: a second starter loses.
	if err := r.BeginGame(room.ID); !errors.Is(err, ErrRoomNotWaiting) {
		t.Errorf("second BeginGame() error = %v, want ErrRoomNotWaiting", err)
	}
	if err := r.BeginGame("no-such-room"); !errors.Is(err, ErrRoomNotFound) {
		t.Errorf("BeginGame(unknown) error = %v, want ErrRoomNotFound", err)
	}

	// Released with SetStatus, the room is claimable again.
	r.SetStatus(room.ID, StatusWaiting)
	if err := r.BeginGame(room.ID); err != nil {
		t.Errorf("BeginGame() after release error: %v", err)
	}
}

func TestRegistry_SweepClosesStaleAndTracksGauge(t *testing.T) {
	r := testRegistry()

	stale, _, err := r.Create("Alice")
	if err != nil {
		t.Fatal(err)
	}
	live, _, err := r.Create("Bob")
	if err != nil {
		t.Fatal(err)
	}
	if got := testutil.ToFloat64(metrics.RoomsActive); got != 2 {
		t.Fatalf("rooms gauge = %v, want 2", got)
	}

	stale.CreatedAt = time.Now().Add(-2 * staleTTL)
	live.CreatedAt = time.Now().Add(-2 * staleTTL)
	if err := r.BeginGame(live.ID); err != nil {
		t.Fatal(err)
	}

	r.sweepOnce(time.Now())

	if r.Get(stale.ID) != nil {
		t.Error("stale WAITING room survived sweep")
	}
	if r.Get(live.ID) == nil {
		t.Error("IN_GAME room must never be swept")
	}
	if got := testutil.ToFloat64(metrics.RoomsActive); got != 1 {
		t.Errorf("rooms gauge after sweep = %v, want 1", got)
	}
}
