package domain

import (
	"errors"
	"fmt"
)

// Size is the width of every board: sub-boards, the meta-board and the grid of sub-boards.
const Size = 3

// ErrBadMove is returned by ParseMove for malformed input.
var ErrBadMove = errors.New("bad move")

// Coord addresses a sub-board within the large board or a cell within a sub-board.
type Coord struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Valid reports whether both components are in [0,3).
func (c Coord) Valid() bool {
	return c.Row >= 0 && c.Row < Size && c.Col >= 0 && c.Col < Size
}

// Index is the row-major position of c.
func (c Coord) Index() int { return c.Row*Size + c.Col }

// CoordAt is the inverse of Index.
func CoordAt(i int) Coord { return Coord{Row: i / Size, Col: i % Size} }

// Move is a full move: the sub-board and the cell inside it.
type Move struct {
	Board Coord `json:"board"`
	Cell  Coord `json:"cell"`
}

// Valid reports whether both coordinates are on the board.
func (m Move) Valid() bool { return m.Board.Valid() && m.Cell.Valid() }

func (m Move) String() string {
	return fmt.Sprintf("b(%d,%d)/c(%d,%d)", m.Board.Row, m.Board.Col, m.Cell.Row, m.Cell.Col)
}

// ParseMove reads the compact form used by forms and logs: four digits
// board-row, board-col, cell-row, cell-col ("1111" is the centre of the centre).
func ParseMove(s string) (Move, error) {
	if len(s) != 4 {
		return Move{}, fmt.Errorf("%w: %q", ErrBadMove, s)
	}
	var d [4]int
	for i := 0; i < 4; i++ {
		if s[i] < '0' || s[i] > '2' {
			return Move{}, fmt.Errorf("%w: %q", ErrBadMove, s)
		}
		d[i] = int(s[i] - '0')
	}
	return Move{Board: Coord{d[0], d[1]}, Cell: Coord{d[2], d[3]}}, nil
}

// Compact is the four-digit form accepted by ParseMove.
func (m Move) Compact() string {
	return fmt.Sprintf("%d%d%d%d", m.Board.Row, m.Board.Col, m.Cell.Row, m.Cell.Col)
}
