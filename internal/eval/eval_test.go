package eval

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jaminalder/codex-ultimate-tic-tac-toe/internal/domain"
)

func constScore(v int) ScoreFunc { return func([9]int) int { return v } }

func TestGenerateIsExhaustive(t *testing.T) {
	tb := Generate(constScore(1), constScore(2))
	if len(tb.Sub) != Layouts || len(tb.Large) != Layouts {
		t.Fatalf("expected %d entries, got %d and %d", Layouts, len(tb.Sub), len(tb.Large))
	}
	if err := tb.Validate(); err != nil {
		t.Fatalf("generated tables invalid: %v", err)
	}
	if _, ok := tb.Sub["0,0,0,0,0,0,0,0,0"]; !ok {
		t.Fatalf("empty layout missing")
	}
	if _, ok := tb.Sub["1,-1,1,-1,1,-1,1,-1,1"]; !ok {
		t.Fatalf("mixed layout missing")
	}
}

func TestDecodeRejectsBadKeys(t *testing.T) {
	for _, k := range []string{"", "0,0,0", "0,0,0,0,0,0,0,0,2", "+1,0,0,0,0,0,0,0,0", "0,0,0,0,0,0,0,0,x", " 0,0,0,0,0,0,0,0,0"} {
		if _, err := Decode(k); !errors.Is(err, ErrBadEncoding) {
			t.Fatalf("expected ErrBadEncoding for %q, got %v", k, err)
		}
	}
	cells, err := Decode("1,0,-1,0,1,0,0,0,-1")
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if Encode(cells) != "1,0,-1,0,1,0,0,0,-1" {
		t.Fatalf("decode/encode mismatch: %v", cells)
	}
}

func TestSaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	sub, large := filepath.Join(dir, "small_board_map.json"), filepath.Join(dir, "large_board_map.json")
	want := DefaultTables()
	if err := Save(want, sub, large); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := Load(sub, large)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	key := "1,1,0,0,-1,0,0,0,0"
	if got.Sub[key] != want.Sub[key] || got.Large[key] != want.Large[key] {
		t.Fatalf("loaded tables differ at %q", key)
	}
}

func TestLoadMissingFile(t *testing.T) {
	dir := t.TempDir()
	_, err := Load(filepath.Join(dir, "nope.json"), filepath.Join(dir, "nope2.json"))
	if err == nil || !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
	if !strings.Contains(err.Error(), "nope.json") {
		t.Fatalf("error should name the file: %v", err)
	}
}

func TestLoadMalformedFile(t *testing.T) {
	dir := t.TempDir()
	sub, large := filepath.Join(dir, "sub.json"), filepath.Join(dir, "large.json")
	if err := os.WriteFile(sub, []byte(`{"0,0,0,0,0,0,0,0,0": 1}`), 0o644); err != nil {
		t.Fatal(err)
	}
	cases := []string{`not json`, `{}`, `{"0,0,0": 1}`, `{"0,0,0,0,0,0,0,0,0": "x"}`}
	for _, body := range cases {
		if err := os.WriteFile(large, []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
		if _, err := Load(sub, large); !errors.Is(err, ErrMalformedTable) {
			t.Fatalf("expected ErrMalformedTable for %q, got %v", body, err)
		}
	}
}

func TestScoreSumsTables(t *testing.T) {
	tb := Generate(LinePotential(1, 100), LinePotential(10, 10000))
	e := NewEvaluator(tb)
	lb := domain.NewLargeBoard()

	got, err := e.Score(lb)
	if err != nil {
		t.Fatalf("score: %v", err)
	}
	if got != 0 {
		t.Fatalf("expected empty board to score 0, got %d", got)
	}

	lb.MakeMove(domain.Agent, domain.Move{Board: domain.Coord{Row: 1, Col: 1}, Cell: domain.Coord{Row: 1, Col: 1}})
	got, err = e.Score(lb)
	if err != nil {
		t.Fatalf("score: %v", err)
	}
	// centre cell sits on four lines, each worth 1
	if got != 4 {
		t.Fatalf("expected 4, got %d", got)
	}
}

func TestScoreUnknownEncoding(t *testing.T) {
	tb := &Tables{
		Sub:   map[string]int{"0,0,0,0,0,0,0,0,0": 1},
		Large: map[string]int{"0,0,0,0,0,0,0,0,0": 5},
	}
	e := NewEvaluator(tb)
	lb := domain.NewLargeBoard()
	if got, err := e.Score(lb); err != nil || got != 14 {
		t.Fatalf("expected 14, got %d err=%v", got, err)
	}
	lb.MakeMove(domain.Opponent, domain.Move{Board: domain.Coord{Row: 2, Col: 0}, Cell: domain.Coord{Row: 0, Col: 1}})
	_, err := e.Score(lb)
	if !errors.Is(err, ErrUnknownEncoding) {
		t.Fatalf("expected ErrUnknownEncoding, got %v", err)
	}
	if !strings.Contains(err.Error(), "0,-1,0,0,0,0,0,0,0") {
		t.Fatalf("error should name the encoding: %v", err)
	}
}
