// Package board holds the tagged prompt/board model for one round. Boards
// are validated once at the content boundary; past that point the session
// can trust every prompt to carry an id, category, value and answer.
package board

import (
	"errors"
	"fmt"
)

var (
	ErrPromptNotFound  = errors.New("prompt not found")
	ErrAlreadyAnswered = errors.New("prompt already answered")
)

type Prompt struct {
	ID       string
	Category string
	Value    int
	Question string
	Answer   string
	Answered bool
}

type Category struct {
	Name    string
	Prompts []*Prompt
}

type Board struct {
	Categories []Category
	byID       map[string]*Prompt
}

// New validates cats and indexes the prompts. Every prompt needs a unique
// non-empty id, a positive value, an answer, and a category name matching
// the category it sits in.
func New(cats []Category) (*Board, error) {
	if len(cats) == 0 {
		return nil, errors.New("board has no categories")
	}

	byID := make(map[string]*Prompt)
	for _, cat := range cats {
		if cat.Name == "" {
			return nil, errors.New("category with empty name")
		}
		if len(cat.Prompts) == 0 {
			return nil, fmt.Errorf("category %q has no prompts", cat.Name)
		}
		for _, p := range cat.Prompts {
			switch {
			case p.ID == "":
				return nil, fmt.Errorf("category %q contains a prompt without an id", cat.Name)
			case p.Category != cat.Name:
				return nil, fmt.Errorf("prompt %s tagged %q but filed under %q", p.ID, p.Category, cat.Name)
			case p.Value <= 0:
				return nil, fmt.Errorf("prompt %s has non-positive value %d", p.ID, p.Value)
			case p.Answer == "":
				return nil, fmt.Errorf("prompt %s has no expected answer", p.ID)
			}
			if _, dup := byID[p.ID]; dup {
				return nil, fmt.Errorf("duplicate prompt id %s", p.ID)
			}
			byID[p.ID] = p
		}
	}

	return &Board{Categories: cats, byID: byID}, nil
}

// Prompt looks a prompt up by id.
func (b *Board) Prompt(id string) (*Prompt, error) {
	p, ok := b.byID[id]
	if !ok {
		return nil, ErrPromptNotFound
	}
	return p, nil
}

// Select returns the prompt iff it exists and has not been answered yet.
func (b *Board) Select(id string) (*Prompt, error) {
	p, err := b.Prompt(id)
	if err != nil {
		return nil, err
	}
	if p.Answered {
		return nil, ErrAlreadyAnswered
	}
	return p, nil
}

// MarkAnswered sets the answered flag. The flag is monotonic: it is never
// reset within a session.
func (b *Board) MarkAnswered(id string) error {
	p, err := b.Prompt(id)
	if err != nil {
		return err
	}
	if p.Answered {
		return ErrAlreadyAnswered
	}
	p.Answered = true
	return nil
}

// Exhausted reports whether every prompt on the board has been answered.
func (b *Board) Exhausted() bool {
	for _, p := range b.byID {
		if !p.Answered {
			return false
		}
	}
	return true
}

// Remaining counts unanswered prompts.
func (b *Board) Remaining() int {
	n := 0
	for _, p := range b.byID {
		if !p.Answered {
			n++
		}
	}
	return n
}
