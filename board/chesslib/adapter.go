// Package chesslib adapts github.com/notnil/chess — a standalone,
// independently maintained chess rules engine — to the board.Position
// and board.Move contracts declared in package board.
//
// This adapter exists only so that the sampler's tests and the
// verifier's default scenarios have a concrete, legally-correct board
// collaborator to run against. Production integrations of PIS are
// expected to supply their own board.Position/board.Move
// implementations backed by the host engine's own rules module.
package chesslib

import (
	"fmt"

	"github.com/notnil/chess"

	"github.com/BatuhanAcikgoz/lc0-path-integral-method/board"
)

// Position wraps a *chess.Position so it satisfies board.Position.
type Position struct {
	pos *chess.Position
}

// NewPosition parses a FEN string into a board.Position backed by
// notnil/chess.
func NewPosition(fen string) (board.Position, error) {
	fn, err := chess.FEN(fen)
	if err != nil {
		return nil, fmt.Errorf("chesslib: invalid FEN %q: %w", fen, err)
	}
	game := chess.NewGame(fn)
	return &Position{pos: game.Position()}, nil
}

// StartingPosition returns the standard chess starting position.
func StartingPosition() board.Position {
	game := chess.NewGame()
	return &Position{pos: game.Position()}
}

// FEN implements board.Position.
func (p *Position) FEN() string {
	return p.pos.String()
}

// SideToMove implements board.Position.
func (p *Position) SideToMove() board.Side {
	if p.pos.Turn() == chess.White {
		return board.White
	}
	return board.Black
}

// LegalMoves implements board.Position.
func (p *Position) LegalMoves() []board.Move {
	valid := p.pos.ValidMoves()
	moves := make([]board.Move, 0, len(valid))
	for _, m := range valid {
		moves = append(moves, &Move{m: m, pos: p.pos})
	}
	return moves
}

// MakeMove implements board.Position.
func (p *Position) MakeMove(m board.Move) (board.Position, error) {
	cm, ok := m.(*Move)
	if !ok {
		return nil, fmt.Errorf("chesslib: move %v was not produced by this adapter", m)
	}

	fn, err := chess.FEN(p.FEN())
	if err != nil {
		return nil, fmt.Errorf("chesslib: re-parsing FEN: %w", err)
	}
	game := chess.NewGame(fn)

	if err := game.Move(cm.m); err != nil {
		return nil, fmt.Errorf("chesslib: illegal move %s: %w", cm.UCI(), err)
	}

	return &Position{pos: game.Position()}, nil
}

// Move wraps a *chess.Move so it satisfies board.Move.
type Move struct {
	m   *chess.Move
	pos *chess.Position
}

// UCI implements board.Move.
func (m *Move) UCI() string {
	return chess.UCINotation{}.Encode(m.pos, m.m)
}

// IsCapture implements board.Move.
func (m *Move) IsCapture() bool {
	return m.m.HasTag(chess.Capture) || m.m.HasTag(chess.EnPassant)
}

// IsEnPassant implements board.Move.
func (m *Move) IsEnPassant() bool {
	return m.m.HasTag(chess.EnPassant)
}

// ToSquare implements board.Move.
func (m *Move) ToSquare() int {
	return int(m.m.S2())
}
