package web

import (
	"github.com/jaminalder/codex-ultimate-tic-tac-toe/internal/app"
	"github.com/jaminalder/codex-ultimate-tic-tac-toe/internal/domain"
)

// cellView is one playable square.
type cellView struct {
	Move     string `json:"move"`
	Owner    int    `json:"owner"`
	Playable bool   `json:"playable"`
}

// subView is one sub-board.
type subView struct {
	Index  int        `json:"index"`
	Result string     `json:"result"`
	Active bool       `json:"active"`
	Cells  []cellView `json:"cells"`
}

// boardView is the state sent to templates and WebSocket clients.
type boardView struct {
	ID       string    `json:"id"`
	Boards   []subView `json:"boards"`
	Meta     string    `json:"meta"`
	LastMove string    `json:"last_move,omitempty"`
	History  []string  `json:"history"`
	Moves    int       `json:"moves"`
	Over     bool      `json:"over"`
	Result   string    `json:"result"`
	Error    string    `json:"error,omitempty"`
}

func newBoardView(gs app.GameState, errMsg string) boardView {
	lb := gs.Board
	valid := make(map[domain.Move]bool)
	active := make(map[domain.Coord]bool)
	for _, m := range lb.ValidMoves() {
		valid[m] = true
		active[m.Board] = true
	}
	state := lb.State()

	v := boardView{
		ID:     gs.ID,
		Meta:   state.Encode(),
		Moves:  lb.Len(),
		Over:   gs.Over,
		Result: gs.Result.String(),
		Error:  errMsg,
		Boards: make([]subView, 0, domain.Size*domain.Size),
	}
	if last, ok := gs.LastMove(); ok {
		v.LastMove = last.Move.Compact()
	}
	v.History = make([]string, 0, lb.Len())
	for _, m := range lb.History() {
		v.History = append(v.History, m.Compact())
	}
	for i, sub := range lb.SubBoards() {
		b := domain.CoordAt(i)
		sv := subView{
			Index:  b.Index(),
			Result: state.At(b).String(),
			Active: active[b],
			Cells:  make([]cellView, 0, domain.Size*domain.Size),
		}
		for j, occ := range sub.Cells() {
			m := domain.Move{Board: b, Cell: domain.CoordAt(j)}
			sv.Cells = append(sv.Cells, cellView{
				Move:     m.Compact(),
				Owner:    occ.Identity(),
				Playable: valid[m],
			})
		}
		v.Boards = append(v.Boards, sv)
	}
	return v
}
