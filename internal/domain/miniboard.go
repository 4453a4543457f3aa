package domain

import (
	"strconv"
	"strings"
)

// Occupant is what a MiniBoard cell can hold: a player on a sub-board or a
// finished-board result on the meta-board. The zero value means empty.
type Occupant interface {
	PlayerState | BoardState
	Identity() int
	lineOwner() (BoardState, bool)
}

// MiniBoard is a single 3x3 tic-tac-toe board. The zero value is an empty board.
//
// Undo is not tracked here: UndoMove trusts the caller to revert only the most
// recently applied move. LargeBoard keeps the history.
type MiniBoard[T Occupant] struct {
	cells  [Size][Size]T
	winner BoardState
	moves  int
}

// SubBoard is one of the nine playing boards.
type SubBoard = MiniBoard[PlayerState]

// StateBoard is the meta-board recording who owns each sub-board.
type StateBoard = MiniBoard[BoardState]

// MakeMove places occ at cell and reports whether anything changed. Moves on a
// finished board, onto an occupied cell, or of the empty occupant are ignored.
func (b *MiniBoard[T]) MakeMove(occ T, cell Coord) bool {
	var empty T
	if b.IsFinished() || occ == empty || b.cells[cell.Row][cell.Col] != empty {
		return false
	}
	b.cells[cell.Row][cell.Col] = occ
	b.moves++

	b.checkLine(b.row(cell.Row))
	if !b.IsFinished() {
		b.checkLine(b.col(cell.Col))
	}
	if !b.IsFinished() {
		b.checkLine(b.diagonal())
	}
	if !b.IsFinished() {
		b.checkLine(b.antiDiagonal())
	}
	if !b.IsFinished() && b.moves == Size*Size {
		b.winner = Tie
	}
	return true
}

// UndoMove clears cell and forgets the winner. cell must be the last cell
// MakeMove accepted; undoing an empty cell is ignored.
func (b *MiniBoard[T]) UndoMove(cell Coord) {
	var empty T
	if b.cells[cell.Row][cell.Col] == empty {
		return
	}
	b.cells[cell.Row][cell.Col] = empty
	b.moves--
	b.winner = Undecided
}

// IsFinished reports whether a winner or a tie has been recorded.
func (b MiniBoard[T]) IsFinished() bool { return b.winner != Undecided }

// Winner returns the recorded result, ok is false while the board is open.
func (b MiniBoard[T]) Winner() (BoardState, bool) {
	return b.winner, b.IsFinished()
}

// At returns the occupant of cell.
func (b MiniBoard[T]) At(cell Coord) T { return b.cells[cell.Row][cell.Col] }

// Moves is the number of occupied cells.
func (b MiniBoard[T]) Moves() int { return b.moves }

// Cells returns the occupants in row-major order.
func (b MiniBoard[T]) Cells() [Size * Size]T {
	var out [Size * Size]T
	for i := range out {
		c := CoordAt(i)
		out[i] = b.cells[c.Row][c.Col]
	}
	return out
}

// ValidMoves lists every empty cell in row-major order, finished or not.
func (b MiniBoard[T]) ValidMoves() []Coord {
	var empty T
	out := make([]Coord, 0, Size*Size-b.moves)
	for i := 0; i < Size; i++ {
		for j := 0; j < Size; j++ {
			if b.cells[i][j] == empty {
				out = append(out, Coord{Row: i, Col: j})
			}
		}
	}
	return out
}

// Encode is the score-table key: nine comma-joined identities, row-major.
func (b MiniBoard[T]) Encode() string {
	var sb strings.Builder
	sb.Grow(2 * Size * Size * 2)
	for i := 0; i < Size; i++ {
		for j := 0; j < Size; j++ {
			if i+j > 0 {
				sb.WriteByte(',')
			}
			sb.WriteString(strconv.Itoa(b.cells[i][j].Identity()))
		}
	}
	return sb.String()
}

func (b MiniBoard[T]) String() string { return b.Encode() }

func (b MiniBoard[T]) row(r int) [Size]T { return b.cells[r] }

func (b MiniBoard[T]) col(c int) [Size]T {
	var out [Size]T
	for i := 0; i < Size; i++ {
		out[i] = b.cells[i][c]
	}
	return out
}

func (b MiniBoard[T]) diagonal() [Size]T {
	var out [Size]T
	for i := 0; i < Size; i++ {
		out[i] = b.cells[i][i]
	}
	return out
}

func (b MiniBoard[T]) antiDiagonal() [Size]T {
	var out [Size]T
	for i := 0; i < Size; i++ {
		out[i] = b.cells[i][Size-1-i]
	}
	return out
}

func (b *MiniBoard[T]) checkLine(line [Size]T) {
	owner, ok := line[0].lineOwner()
	if !ok {
		return
	}
	for i := 1; i < Size; i++ {
		if line[i] != line[0] {
			return
		}
	}
	b.winner = owner
}
