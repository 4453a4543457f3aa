package domain

import (
	"errors"
	"slices"
)

// ErrNoMoveToUndo is returned by UndoMove on a board with no history.
var ErrNoMoveToUndo = errors.New("no move to undo")

// PlayedMove is one entry of a game record.
type PlayedMove struct {
	Player PlayerState `json:"player"`
	Move   Move        `json:"move"`
}

type turn struct {
	move    Move
	player  PlayerState
	applied bool
}

// LargeBoard is the 3x3 grid of sub-boards plus the meta-board tracking who
// owns each of them. The zero value is an empty game.
type LargeBoard struct {
	boards  [Size][Size]SubBoard
	state   StateBoard
	history []turn
}

// NewLargeBoard returns an empty game.
func NewLargeBoard() *LargeBoard {
	return &LargeBoard{history: make([]turn, 0, Size*Size*Size*Size)}
}

// MakeMove plays m for player. Legality is the caller's business: a move into a
// finished sub-board or onto an occupied cell is recorded but changes nothing.
func (lb *LargeBoard) MakeMove(player PlayerState, m Move) {
	sub := &lb.boards[m.Board.Row][m.Board.Col]
	applied := sub.MakeMove(player, m.Cell)
	if applied && sub.IsFinished() {
		w, _ := sub.Winner()
		lb.state.MakeMove(w, m.Board)
	}
	lb.history = append(lb.history, turn{move: m, player: player, applied: applied})
}

// UndoMove reverts the most recent MakeMove.
func (lb *LargeBoard) UndoMove() error {
	if len(lb.history) == 0 {
		return ErrNoMoveToUndo
	}
	last := lb.history[len(lb.history)-1]
	lb.history = lb.history[:len(lb.history)-1]
	if !last.applied {
		return nil
	}
	sub := &lb.boards[last.move.Board.Row][last.move.Board.Col]
	wasFinished := sub.IsFinished()
	sub.UndoMove(last.move.Cell)
	if wasFinished && !sub.IsFinished() {
		lb.state.UndoMove(last.move.Board)
	}
	return nil
}

// NextBoard is the sub-board addressed by the last move's cell.
func (lb *LargeBoard) NextBoard() (Coord, bool) {
	if len(lb.history) == 0 {
		return Coord{}, false
	}
	return lb.history[len(lb.history)-1].move.Cell, true
}

// ValidBoards lists the sub-boards the next move may go to: the forced board
// when it is still open, otherwise every open board. A decided game has none.
func (lb *LargeBoard) ValidBoards() []Coord {
	if lb.state.IsFinished() {
		return nil
	}
	if next, ok := lb.NextBoard(); ok && lb.state.At(next) == Undecided {
		return []Coord{next}
	}
	out := make([]Coord, 0, Size*Size)
	for i := 0; i < Size*Size; i++ {
		c := CoordAt(i)
		if lb.state.At(c) == Undecided {
			out = append(out, c)
		}
	}
	return out
}

// ValidMoves pairs every valid board with its empty cells, board-major.
func (lb *LargeBoard) ValidMoves() []Move {
	var out []Move
	for _, b := range lb.ValidBoards() {
		for _, c := range lb.boards[b.Row][b.Col].ValidMoves() {
			out = append(out, Move{Board: b, Cell: c})
		}
	}
	return out
}

// IsValidMove reports whether m is one of ValidMoves.
func (lb *LargeBoard) IsValidMove(m Move) bool {
	if !m.Valid() {
		return false
	}
	if !slices.Contains(lb.ValidBoards(), m.Board) {
		return false
	}
	return lb.boards[m.Board.Row][m.Board.Col].At(m.Cell) == Empty
}

// IsFinished reports whether the meta-board is won or tied.
func (lb *LargeBoard) IsFinished() bool { return lb.state.IsFinished() }

// Winner is the meta-board result.
func (lb *LargeBoard) Winner() (BoardState, bool) { return lb.state.Winner() }

// Over reports whether no further move can be played.
func (lb *LargeBoard) Over() bool { return len(lb.ValidMoves()) == 0 }

// Sub returns a copy of the sub-board at c.
func (lb *LargeBoard) Sub(c Coord) SubBoard { return lb.boards[c.Row][c.Col] }

// SubBoards returns copies of all sub-boards, row-major.
func (lb *LargeBoard) SubBoards() [Size * Size]SubBoard {
	var out [Size * Size]SubBoard
	for i := range out {
		c := CoordAt(i)
		out[i] = lb.boards[c.Row][c.Col]
	}
	return out
}

// State returns a copy of the meta-board.
func (lb *LargeBoard) State() StateBoard { return lb.state }

// History returns the played moves, oldest first.
func (lb *LargeBoard) History() []Move {
	out := make([]Move, len(lb.history))
	for i, t := range lb.history {
		out[i] = t.move
	}
	return out
}

// Played returns the game record, oldest first.
func (lb *LargeBoard) Played() []PlayedMove {
	out := make([]PlayedMove, len(lb.history))
	for i, t := range lb.history {
		out[i] = PlayedMove{Player: t.player, Move: t.move}
	}
	return out
}

// LastPlayed is the most recent record entry.
func (lb *LargeBoard) LastPlayed() (PlayedMove, bool) {
	if len(lb.history) == 0 {
		return PlayedMove{}, false
	}
	t := lb.history[len(lb.history)-1]
	return PlayedMove{Player: t.player, Move: t.move}, true
}

// Len is the number of recorded moves.
func (lb *LargeBoard) Len() int { return len(lb.history) }

// Clone returns an independent copy.
func (lb *LargeBoard) Clone() *LargeBoard {
	cp := *lb
	cp.history = slices.Clone(lb.history)
	return &cp
}

// Equal compares every cell, the meta-board and the history.
func (lb *LargeBoard) Equal(o *LargeBoard) bool {
	return lb.boards == o.boards && lb.state == o.state && slices.Equal(lb.history, o.history)
}
