package players

import "testing"

func TestNewStore(t *testing.T) {
	s := NewStore()
	if s == nil {
		t.Fatal("NewStore() returned nil")
	}
	if len(s.List()) != 0 {
		t.Errorf("new store should be empty, got %d players", len(s.List()))
	}
}

func TestStore_Add(t *testing.T) {
	s := NewStore()
	p := s.Add("id1", "Alice", true)

	if p.ID != "id1" {
		t.Errorf("player ID = %q, want %q", p.ID, "id1")
	}
	if p.Name != "Alice" {
		t.Errorf("player Name = %q, want %q", p.Name, "Alice")
	}
	if p.Score != 0 {
		t.Errorf("player Score = %d, want 0", p.Score)
	}
	if !p.Active {
		t.Error("new player should be active")
	}
	if !p.Host {
		t.Error("host flag not set")
	}
}

func TestStore_ListJoinOrder(t *testing.T) {
	s := NewStore()
	s.Add("id1", "Alice", true)
	s.Add("id2", "Bob", false)
	s.Add("id3", "Carol", false)

	list := s.List()
	if len(list) != 3 {
		t.Fatalf("List() returned %d players, want 3", len(list))
	}
	for i, want := range []string{"id1", "id2", "id3"} {
		if list[i].ID != want {
			t.Errorf("List()[%d] = %q, want %q", i, list[i].ID, want)
		}
	}
}

func TestStore_UpdateScore(t *testing.T) {
	s := NewStore()
	s.Add("id1", "Alice", false)

	p := s.UpdateScore("id1", 200)
	if p.Score != 200 {
		t.Errorf("Score = %d, want 200", p.Score)
	}

	// Scores may go negative
	p = s.UpdateScore("id1", -500)
	if p.Score != -300 {
		t.Errorf("Score = %d, want -300", p.Score)
	}

	if s.UpdateScore("nonexistent", 5) != nil {
		t.Error("UpdateScore should return nil for nonexistent player")
	}
}

func TestStore_SetActive(t *testing.T) {
	s := NewStore()
	s.Add("id1", "Alice", false)
	s.Add("id2", "Bob", false)

	s.SetActive("id1", false)
	if s.ActiveCount() != 1 {
		t.Errorf("ActiveCount = %d, want 1", s.ActiveCount())
	}

	active := s.Active()
	if len(active) != 1 || active[0].ID != "id2" {
		t.Errorf("Active() = %v, want [id2]", active)
	}

	s.SetActive("id1", true)
	if s.ActiveCount() != 2 {
		t.Errorf("ActiveCount after reconnect = %d, want 2", s.ActiveCount())
	}
}

func TestStore_Host(t *testing.T) {
	s := NewStore()
	s.Add("id1", "Alice", true)
	s.Add("id2", "Bob", false)

	h := s.Host()
	if h == nil || h.ID != "id1" {
		t.Fatalf("Host() = %v, want id1", h)
	}
}

func TestStore_PromoteSuccessor(t *testing.T) {
	s := NewStore()
	s.Add("id1", "Alice", true)
	s.Add("id2", "Bob", false)
	s.Add("id3", "Carol", false)

	// Host leaves; earliest-joined remaining active player takes over
	s.SetActive("id1", false)
	h := s.PromoteSuccessor()
	if h == nil || h.ID != "id2" {
		t.Fatalf("PromoteSuccessor() = %v, want id2", h)
	}

	// Exactly one host flagged at any time
	hosts := 0
	for _, p := range s.List() {
		if p.Host {
			hosts++
		}
	}
	if hosts != 1 {
		t.Errorf("host count = %d, want 1", hosts)
	}

	// Nobody active left
	s.SetActive("id2", false)
	s.SetActive("id3", false)
	if s.PromoteSuccessor() != nil {
		t.Error("PromoteSuccessor with no active players should return nil")
	}
}

func TestStore_Scores(t *testing.T) {
	s := NewStore()
	s.Add("id1", "Alice", true)
	s.Add("id2", "Bob", false)
	s.UpdateScore("id1", 400)

	scores := s.Scores()
	if scores["id1"] != 400 {
		t.Errorf("scores[id1] = %d, want 400", scores["id1"])
	}
	if scores["id2"] != 0 {
		t.Errorf("scores[id2] = %d, want 0", scores["id2"])
	}
}
