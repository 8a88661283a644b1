package rules

import (
	"testing"

	"github.com/bgoatlas/bgoatlas/internal/coord"
)

func mustCart(t *testing.T, alpha string) coord.Cart {
	t.Helper()
	a := coord.ParseAlpha(alpha)
	if !a.IsValid() {
		t.Fatalf("invalid alpha %q", alpha)
	}
	return a.ToCart()
}

func TestColorToPlayAlternates(t *testing.T) {
	b := NewBoard()
	if b.ColorToPlay() != Black {
		t.Fatalf("empty board should play Black first")
	}
	b.PlayMove(mustCart(t, "jj"))
	if b.ColorToPlay() != White {
		t.Fatalf("after one move should play White")
	}
}

func TestSuicideRejected(t *testing.T) {
	center := mustCart(t, "jj")
	// Stack White stones directly (bypassing PlayMove's turn alternation)
	// so the only open question the engine has to answer is whether
	// Black's move at the center is legal.
	b2 := NewBoard()
	b2.cells[mustCart(t, "ji").Index()] = White
	b2.occupied[mustCart(t, "ji")] = struct{}{}
	b2.cells[mustCart(t, "jk").Index()] = White
	b2.occupied[mustCart(t, "jk")] = struct{}{}
	b2.cells[mustCart(t, "ij").Index()] = White
	b2.occupied[mustCart(t, "ij")] = struct{}{}
	b2.cells[mustCart(t, "kj").Index()] = White
	b2.occupied[mustCart(t, "kj")] = struct{}{}
	b2.moves = append(b2.moves, mustCart(t, "aa"), mustCart(t, "ss")) // even move count: Black to play next
	if ok := b2.PlayMove(center); ok {
		t.Fatalf("self-capture move should be rejected")
	}
	if b2.WhyInvalid() != "self capture" {
		t.Fatalf("WhyInvalid() = %q, want %q", b2.WhyInvalid(), "self capture")
	}
	if b2.At(center) != None {
		t.Fatalf("board must be unchanged after rejection")
	}
}

func TestKoStockSequence(t *testing.T) {
	// Black captures the White stone at ll by playing ml; White's immediate
	// recapture at ll would restore the previous board and is the ko.
	moves := []string{"lk", "mk", "kl", "ll", "lm", "nl", "dd", "mm", "ml", "ll"}
	b := NewBoard()
	rejections := 0
	for i, alpha := range moves {
		if !b.PlayMove(mustCart(t, alpha)) {
			rejections++
			t.Logf("move %d (%s) rejected: %s", i, alpha, b.WhyInvalid())
		}
	}
	if rejections != 1 {
		t.Fatalf("expected exactly one illegal-move rejection in the ko sequence, got %d", rejections)
	}
}

func TestLoadMovesResetsBoard(t *testing.T) {
	b := NewBoard()
	b.PlayMove(mustCart(t, "jj"))
	ok := b.LoadMoves([]coord.Cart{mustCart(t, "aa"), mustCart(t, "ss")})
	if !ok {
		t.Fatalf("LoadMoves should succeed on two legal moves")
	}
	if len(b.MoveList()) != 2 {
		t.Fatalf("board should have replayed exactly 2 moves, got %d", len(b.MoveList()))
	}
}

func TestOccupiedCellRejected(t *testing.T) {
	b := NewBoard()
	p := mustCart(t, "jj")
	if !b.PlayMove(p) {
		t.Fatalf("first move should succeed")
	}
	if b.PlayMove(p) {
		t.Fatalf("playing an occupied cell should be rejected")
	}
	if b.WhyInvalid() != "occupied" {
		t.Fatalf("WhyInvalid() = %q, want %q", b.WhyInvalid(), "occupied")
	}
}
