package ingest

import (
	"context"
	"fmt"
	"io"
	"log"
	"testing"

	"github.com/bgoatlas/bgoatlas/internal/coord"
	"github.com/bgoatlas/bgoatlas/internal/hasher"
	"github.com/bgoatlas/bgoatlas/internal/query"
	"github.com/bgoatlas/bgoatlas/internal/store/sqlstore"
)

// isolatedMoves returns n alpha tokens on a spread-out grid (step 2 in both
// axes) so that no stone is ever adjacent to another: every move is
// trivially legal, with no captures or suicide to reason about.
func isolatedMoves(n int) []string {
	var out []string
	for y := 0; y < coord.BoardSize && len(out) < n; y += 2 {
		for x := 0; x < coord.BoardSize && len(out) < n; x += 2 {
			out = append(out, string([]byte{byte('a' + x), byte('a' + y)}))
		}
	}
	return out
}

func sgfText(black, white string, moves []string) string {
	body := fmt.Sprintf("(;GM[1]SZ[19]PB[%s]PW[%s]BR[5d]WR[5d]DT[2021-03-04]KM[6.5]RE[B+R]", black, white)
	for i, m := range moves {
		color := "B"
		if i%2 == 1 {
			color = "W"
		}
		body += fmt.Sprintf(";%s[%s]", color, m)
	}
	body += ")"
	return body
}

func newTestSession(t *testing.T) (*Session, func()) {
	t.Helper()
	s, err := sqlstore.Open(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("sqlstore.Open: %v", err)
	}
	sess, err := NewSession(context.Background(), s, DefaultConfig(), log.New(io.Discard, "", 0))
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	return sess, func() { s.Close() }
}

func TestIngestEmptyCorpusEmptyQuery(t *testing.T) {
	sess, cleanup := newTestSession(t)
	defer cleanup()
	if err := sess.Commit(context.Background()); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	res, err := query.NextMove(context.Background(), sess.store, hasher.Stones{}, nil, nil)
	if err != nil {
		t.Fatalf("NextMove: %v", err)
	}
	if len(res.NextMove) != 0 || res.TotalGames != 0 {
		t.Fatalf("expected empty result on empty corpus, got %+v", res)
	}
}

func TestIngestSingleGameAndQuery(t *testing.T) {
	sess, cleanup := newTestSession(t)
	defer cleanup()
	moves := isolatedMoves(31)
	text := sgfText("Bob", "Alice", moves)

	if err := sess.IngestTexts(context.Background(), []string{text}); err != nil {
		t.Fatalf("IngestTexts: %v", err)
	}
	if sess.Stats().Added != 1 {
		t.Fatalf("Stats = %+v, want Added=1", sess.Stats())
	}
	if err := sess.Commit(context.Background()); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	res, err := query.NextMove(context.Background(), sess.store, hasher.Stones{}, nil, nil)
	if err != nil {
		t.Fatalf("NextMove: %v", err)
	}
	if len(res.NextMove) != 1 || res.NextMove[0].Count != 1 {
		t.Fatalf("next_move([]) = %+v, want exactly one move with count 1", res.NextMove)
	}
}

func TestIngestDuplicateRejected(t *testing.T) {
	sess, cleanup := newTestSession(t)
	defer cleanup()
	moves := isolatedMoves(31)
	text := sgfText("Carol", "Dave", moves)

	if err := sess.IngestTexts(context.Background(), []string{text, text}); err != nil {
		t.Fatalf("IngestTexts: %v", err)
	}
	if sess.Stats().Added != 1 || sess.Stats().Duplicates != 1 {
		t.Fatalf("Stats = %+v, want Added=1 Duplicates=1", sess.Stats())
	}
}

func TestIngestRejectsShortGame(t *testing.T) {
	sess, cleanup := newTestSession(t)
	defer cleanup()
	moves := isolatedMoves(5)
	text := sgfText("E", "F", moves)

	if err := sess.IngestTexts(context.Background(), []string{text}); err != nil {
		t.Fatalf("IngestTexts: %v", err)
	}
	if sess.Stats().Rejected != 1 || sess.Stats().Added != 0 {
		t.Fatalf("Stats = %+v, want Rejected=1 Added=0", sess.Stats())
	}
}

func TestIngestDivergentGamesRanked(t *testing.T) {
	sess, cleanup := newTestSession(t)
	defer cleanup()
	prefix := []string{"pd", "dp", "pp"}
	g1 := append(append([]string{}, prefix...), "dd")
	g2 := append(append([]string{}, prefix...), "cd")
	g1 = append(g1, isolatedMoves(30)...)
	g2 = append(g2, isolatedMoves(30)...)

	t1 := sgfText("A1", "A2", g1)
	t2 := sgfText("B1", "B2", g2)

	if err := sess.IngestTexts(context.Background(), []string{t1, t2}); err != nil {
		t.Fatalf("IngestTexts: %v", err)
	}
	if sess.Stats().Added != 2 {
		t.Fatalf("Stats = %+v, want Added=2", sess.Stats())
	}
	if err := sess.Commit(context.Background()); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	var stones []coord.Cart
	for _, a := range prefix {
		stones = append(stones, coord.ParseAlpha(a).ToCart())
	}
	var black, white []coord.Cart
	for i, c := range stones {
		if i%2 == 0 {
			black = append(black, c)
		} else {
			white = append(white, c)
		}
	}
	res, err := query.NextMove(context.Background(), sess.store, hasher.Stones{Black: black, White: white}, nil, nil)
	if err != nil {
		t.Fatalf("NextMove: %v", err)
	}
	if res.TotalGames != 2 || len(res.NextMove) != 2 {
		t.Fatalf("next_move(prefix) = %+v, want 2 distinct moves totaling 2 games", res.NextMove)
	}
}
