package game

import (
	"errors"
	"math/rand/v2"
	"testing"
)

func TestNewGame(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	g, err := New(4, rng)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if g.Board.Size() != 4 {
		t.Errorf("size = %d, want 4", g.Board.Size())
	}
	if n := g.Board.Tiles(); n != 2 {
		t.Errorf("starting tiles = %d, want 2", n)
	}
	if g.Score != 0 || g.Won || g.GameOver {
		t.Errorf("unexpected initial state %+v", g)
	}
	if g.Status() != StatusInProgress {
		t.Errorf("status = %s", g.Status())
	}

	for _, n := range []int{0, -1} {
		if _, err := New(n, rng); !errors.Is(err, ErrInvalidBoardSize) {
			t.Errorf("New(%d) err = %v, want ErrInvalidBoardSize", n, err)
		}
	}
}

func TestGameMoveEffective(t *testing.T) {
	g := &Game{Board: Board{
		{2, 2, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
	}}
	before := g.Board.Tiles()

	out, err := g.Move(Left, rand.New(rand.NewPCG(1, 1)))
	if err != nil {
		t.Fatal(err)
	}
	if !out.Changed {
		t.Fatal("expected an effective move")
	}
	if g.Score != 4 {
		t.Errorf("score = %d, want 4", g.Score)
	}
	// each merge removes a tile, the spawn adds one
	if want := before - out.Merges + 1; g.Board.Tiles() != want {
		t.Errorf("tiles = %d, want %d", g.Board.Tiles(), want)
	}
	if g.Board[0][0] != 4 {
		t.Errorf("merged tile missing: %v", g.Board)
	}
}

func TestGameMoveIneffective(t *testing.T) {
	g := &Game{Board: Board{
		{2, 4},
		{0, 0},
	}, Score: 10}
	snapshot := g.Clone()

	out, err := g.Move(Left, rand.New(rand.NewPCG(1, 1)))
	if err != nil {
		t.Fatal(err)
	}
	if out.Changed {
		t.Fatal("move should not change the board")
	}
	if !g.Board.Equal(snapshot.Board) || g.Score != snapshot.Score || g.Won || g.GameOver {
		t.Errorf("ineffective move mutated the game: %+v", g)
	}
}

func TestGameMoveReachesTerminalState(t *testing.T) {
	// Moving LEFT merges the two 2s at the end of row 3 and the spawn must
	// land in the freed cell, leaving a checkerboard-like full board.
	g := &Game{Board: Board{
		{2, 4, 2, 4},
		{4, 2, 4, 2},
		{2, 4, 2, 4},
		{8, 16, 2, 2},
	}}
	// (3,3) is the only empty cell after the move; 5 → value 2.
	out, err := g.Move(Left, &seqRand{vals: []int{0, 5}})
	if err != nil {
		t.Fatal(err)
	}
	if !out.Changed {
		t.Fatal("expected effective move")
	}
	want := Board{
		{2, 4, 2, 4},
		{4, 2, 4, 2},
		{2, 4, 2, 4},
		{8, 16, 4, 2},
	}
	if !g.Board.Equal(want) {
		t.Fatalf("board = %v, want %v", g.Board, want)
	}
	if !g.GameOver {
		t.Error("expected GameOver after the last possible move")
	}
	if g.Status() != StatusOver {
		t.Errorf("status = %s", g.Status())
	}

	// Further moves are accepted no-ops.
	score := g.Score
	for _, d := range Directions {
		out, err := g.Move(d, &seqRand{vals: []int{0}})
		if err != nil {
			t.Fatal(err)
		}
		if out.Changed || g.Score != score || !g.Board.Equal(want) {
			t.Fatalf("move %s changed a finished game", d)
		}
	}
}

func TestGameWonLatches(t *testing.T) {
	g := &Game{Board: Board{
		{1024, 1024, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
	}}
	rng := rand.New(rand.NewPCG(5, 5))
	if _, err := g.Move(Left, rng); err != nil {
		t.Fatal(err)
	}
	if !g.Won {
		t.Fatal("expected Won after making 2048")
	}
	if g.Status() != StatusWon {
		t.Errorf("status = %s, want won", g.Status())
	}

	// Drop the winning tile by hand: the flag must not be recomputed.
	g.Board[0][0] = 2
	for i := 0; i < 4; i++ {
		if _, err := g.Move(Directions[i], rng); err != nil {
			t.Fatal(err)
		}
		if !g.Won {
			t.Fatal("Won reverted to false")
		}
	}
}

func TestGameMoveInvalidDirection(t *testing.T) {
	g := &Game{Board: Board{{2, 0}, {0, 0}}}
	if _, err := g.Move(Direction("north"), DefaultRand); !errors.Is(err, ErrInvalidDirection) {
		t.Errorf("err = %v, want ErrInvalidDirection", err)
	}
}

func TestGameScoreNeverDecreases(t *testing.T) {
	rng := rand.New(rand.NewPCG(99, 1))
	g, err := New(4, rng)
	if err != nil {
		t.Fatal(err)
	}
	last := 0
	for i := 0; i < 2000 && !g.GameOver; i++ {
		before := g.Board.Tiles()
		out, err := g.Move(Directions[rng.IntN(4)], rng)
		if err != nil {
			t.Fatal(err)
		}
		if g.Score < last {
			t.Fatalf("score decreased from %d to %d", last, g.Score)
		}
		if out.Changed && g.Board.Tiles() != before-out.Merges+1 {
			t.Fatalf("tile count %d, want %d", g.Board.Tiles(), before-out.Merges+1)
		}
		if err := g.Board.Validate(); err != nil {
			t.Fatalf("board invalid after move: %v", err)
		}
		last = g.Score
	}
}
