package board

import (
	"errors"
	"testing"
)

func testBoard(t *testing.T) *Board {
	t.Helper()
	b, err := New([]Category{
		{Name: "Science", Prompts: []*Prompt{
			{ID: "sci-200", Category: "Science", Value: 200, Question: "q1", Answer: "a1"},
			{ID: "sci-400", Category: "Science", Value: 400, Question: "q2", Answer: "a2"},
		}},
		{Name: "History", Prompts: []*Prompt{
			{ID: "his-200", Category: "History", Value: 200, Question: "q3", Answer: "a3"},
		}},
	})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	return b
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name string
		cats []Category
	}{
		{"empty board", nil},
		{"empty category name", []Category{
			{Name: "", Prompts: []*Prompt{{ID: "x", Value: 100, Answer: "a"}}},
		}},
		{"category without prompts", []Category{{Name: "Science"}}},
		{"prompt without id", []Category{
			{Name: "Science", Prompts: []*Prompt{{Category: "Science", Value: 100, Answer: "a"}}},
		}},
		{"category mismatch", []Category{
			{Name: "Science", Prompts: []*Prompt{{ID: "x", Category: "History", Value: 100, Answer: "a"}}},
		}},
		{"non-positive value", []Category{
			{Name: "Science", Prompts: []*Prompt{{ID: "x", Category: "Science", Value: 0, Answer: "a"}}},
		}},
		{"missing answer", []Category{
			{Name: "Science", Prompts: []*Prompt{{ID: "x", Category: "Science", Value: 100}}},
		}},
		{"duplicate id", []Category{
			{Name: "Science", Prompts: []*Prompt{
				{ID: "x", Category: "Science", Value: 100, Answer: "a"},
				{ID: "x", Category: "Science", Value: 200, Answer: "b"},
			}},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.cats); err == nil {
				t.Error("New() should reject invalid board")
			}
		})
	}
}

func TestBoard_Select(t *testing.T) {
	b := testBoard(t)

	p, err := b.Select("sci-200")
	if err != nil {
		t.Fatalf("Select() error: %v", err)
	}
	if p.Value != 200 {
		t.Errorf("Value = %d, want 200", p.Value)
	}

	if _, err := b.Select("nope"); !errors.Is(err, ErrPromptNotFound) {
		t.Errorf("Select(unknown) error = %v, want ErrPromptNotFound", err)
	}
}

func TestBoard_MarkAnswered(t *testing.T) {
	b := testBoard(t)

	if err := b.MarkAnswered("sci-200"); err != nil {
		t.Fatalf("MarkAnswered() error: %v", err)
	}

	// Selecting an answered prompt must always fail
	if _, err := b.Select("sci-200"); !errors.Is(err, ErrAlreadyAnswered) {
		t.Errorf("Select(answered) error = %v, want ErrAlreadyAnswered", err)
	}
	// And so must marking it twice
	if err := b.MarkAnswered("sci-200"); !errors.Is(err, ErrAlreadyAnswered) {
		t.Errorf("second MarkAnswered error = %v, want ErrAlreadyAnswered", err)
	}
}

func TestBoard_Exhausted(t *testing.T) {
	b := testBoard(t)

	if b.Exhausted() {
		t.Error("fresh board should not be exhausted")
	}
	if got := b.Remaining(); got != 3 {
		t.Errorf("Remaining = %d, want 3", got)
	}

	for _, id := range []string{"sci-200", "sci-400", "his-200"} {
		if err := b.MarkAnswered(id); err != nil {
			t.Fatal(err)
		}
	}
	if !b.Exhausted() {
		t.Error("board with all prompts answered should be exhausted")
	}
	if got := b.Remaining(); got != 0 {
		t.Errorf("Remaining = %d, want 0", got)
	}
}

func TestGenerate(t *testing.T) {
	b, err := Generate(nil, nil)
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	if len(b.Categories) != 6 {
		t.Errorf("categories = %d, want 6", len(b.Categories))
	}
	for _, cat := range b.Categories {
		if len(cat.Prompts) != 5 {
			t.Errorf("category %q has %d prompts, want 5", cat.Name, len(cat.Prompts))
		}
	}
	if b.Remaining() != 30 {
		t.Errorf("Remaining = %d, want 30", b.Remaining())
	}
}
