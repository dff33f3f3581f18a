package game

import (
	"encoding/json"
	"errors"
	"math/rand/v2"
	"testing"
)

func TestEncode(t *testing.T) {
	b := Board{{2, 0}, {0, 2048}}
	if got, want := Encode(b), "2,0;0,2048"; got != want {
		t.Errorf("Encode = %q, want %q", got, want)
	}
}

func TestDecodeRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewPCG(4, 4))
	for n := 1; n <= 8; n++ {
		b := randomBoard(rng, n)
		got, err := Decode(Encode(b))
		if err != nil {
			t.Fatalf("Decode(Encode(%v)): %v", b, err)
		}
		if !got.Equal(b) {
			t.Errorf("round trip: got %v, want %v", got, b)
		}
	}
}

func TestDecodeRejectsMalformed(t *testing.T) {
	cases := map[string]string{
		"empty":       "",
		"blank":       "   ",
		"ragged":      "2,0;0",
		"non-square":  "2,0,0;0,0,0",
		"non-numeric": "2,x;0,0",
		"trailing":    "2,0;0,0;",
		"not a tile":  "3,0;0,0",
		"negative":    "-2,0;0,0",
		"padded cell": "2, 0;0,4",
		"leading ws":  " 2,0;0,4",
		"newline":     "2,0;0,4\n",
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			b, err := Decode(in)
			if !errors.Is(err, ErrCorruptBoard) {
				t.Errorf("Decode(%q) err = %v, want ErrCorruptBoard", in, err)
			}
			if b != nil {
				t.Errorf("Decode(%q) returned partial board %v", in, b)
			}
		})
	}
}

func TestBoardScanValue(t *testing.T) {
	b := Board{{4, 2}, {0, 0}}
	v, err := b.Value()
	if err != nil {
		t.Fatal(err)
	}
	var got Board
	if err := got.Scan([]byte(v.(string))); err != nil {
		t.Fatal(err)
	}
	if !got.Equal(b) {
		t.Errorf("got %v, want %v", got, b)
	}
	if err := got.Scan(nil); !errors.Is(err, ErrCorruptBoard) {
		t.Errorf("Scan(nil) err = %v", err)
	}
	if err := got.Scan(int64(4)); !errors.Is(err, ErrCorruptBoard) {
		t.Errorf("Scan(int64) err = %v", err)
	}
}

func TestBoardUnmarshalJSON(t *testing.T) {
	var g Game
	if err := json.Unmarshal([]byte(`{"id":"x","board":[[2,0],[0,4]],"score":4}`), &g); err != nil {
		t.Fatal(err)
	}
	if !g.Board.Equal(Board{{2, 0}, {0, 4}}) || g.Score != 4 {
		t.Errorf("unexpected game %+v", g)
	}
	if err := json.Unmarshal([]byte(`{"board":[[2,0],[0]]}`), &g); !errors.Is(err, ErrCorruptBoard) {
		t.Errorf("ragged board err = %v", err)
	}
}
