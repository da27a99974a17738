// Package content is the boundary to the question bank. The core receives a
// validated board and treats prompt text, values and answers as opaque.
package content

import (
	"context"

	"github.com/soohoonc/jprty/internal/board"
)

// Filter narrows what SelectBoard may pick.
type Filter struct {
	Difficulty string
	Categories []string
}

// Source selects a board for one round. Implementations must return a board
// that passed board.New validation.
type Source interface {
	SelectBoard(ctx context.Context, filter Filter) (*board.Board, error)
}

// Static serves generated placeholder boards. It is the default source when
// no question bank is wired up.
type Static struct {
	Values []int
}

func NewStatic() *Static {
	return &Static{}
}

func (s *Static) SelectBoard(_ context.Context, filter Filter) (*board.Board, error) {
	return board.Generate(filter.Categories, s.Values)
}
