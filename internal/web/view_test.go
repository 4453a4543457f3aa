package web

import (
	"testing"

	"github.com/jaminalder/codex-ultimate-tic-tac-toe/internal/app"
	"github.com/jaminalder/codex-ultimate-tic-tac-toe/internal/domain"
)

func TestBoardViewListsHistoryAndPlayableCells(t *testing.T) {
	lb := domain.NewLargeBoard()
	lb.MakeMove(domain.Agent, domain.Move{Board: domain.Coord{Row: 1, Col: 1}, Cell: domain.Coord{Row: 0, Col: 2}})
	lb.MakeMove(domain.Opponent, domain.Move{Board: domain.Coord{Row: 0, Col: 2}, Cell: domain.Coord{Row: 2, Col: 0}})

	v := newBoardView(app.GameState{ID: "g1", Board: lb}, "")
	if len(v.History) != 2 || v.History[0] != "1102" || v.History[1] != "0220" {
		t.Fatalf("unexpected history %v", v.History)
	}
	if v.LastMove != "0220" || v.Moves != 2 {
		t.Fatalf("unexpected last move %q moves=%d", v.LastMove, v.Moves)
	}
	playable := 0
	for i, sub := range v.Boards {
		if sub.Index != i {
			t.Fatalf("board %d has index %d", i, sub.Index)
		}
		for _, c := range sub.Cells {
			if c.Playable {
				playable++
			}
		}
	}
	// forced into board (2,0), which is empty
	if playable != 9 || !v.Boards[6].Active || v.Boards[4].Active {
		t.Fatalf("expected only board 6 active with 9 cells, got %d playable", playable)
	}
	if v.Boards[4].Cells[2].Owner != 1 || v.Boards[2].Cells[6].Owner != -1 {
		t.Fatalf("cell owners not rendered")
	}
}
