package query

import (
	"context"
	"errors"
	"testing"

	"github.com/bgoatlas/bgoatlas/internal/bgoerr"
	"github.com/bgoatlas/bgoatlas/internal/coord"
	"github.com/bgoatlas/bgoatlas/internal/hasher"
	"github.com/bgoatlas/bgoatlas/internal/store"
)

// fakeStore is a minimal in-memory store.Store sufficient to exercise the
// query package's fold/merge/rank logic in isolation from any backend.
type fakeStore struct {
	positions map[int64][]store.NextMoveRow
	games     []store.GameRow
}

func newFakeStore() *fakeStore {
	return &fakeStore{positions: make(map[int64][]store.NextMoveRow)}
}

func (f *fakeStore) put(hash int64, move string, count int) {
	f.positions[hash] = append(f.positions[hash], store.NextMoveRow{BoardHash: hash, NextMove: move, Count: count})
}

func (f *fakeStore) PlayerByName(ctx context.Context, name string) (int64, error) { return 0, bgoerr.ErrNotFound }
func (f *fakeStore) PlayerByID(ctx context.Context, id int64) (string, error)     { return "", bgoerr.ErrNotFound }
func (f *fakeStore) InsertPlayer(ctx context.Context, name string) (int64, error) { return 0, nil }
func (f *fakeStore) InsertGame(ctx context.Context, g store.Game) (int64, error)  { return 0, nil }
func (f *fakeStore) GameByID(ctx context.Context, id int64) (store.Game, error)   { return store.Game{}, bgoerr.ErrNotFound }
func (f *fakeStore) FinalPositions(ctx context.Context) (map[int64]int64, error)  { return nil, nil }
func (f *fakeStore) ReplaceFinalPositions(ctx context.Context, entries map[int64]int64) error {
	return nil
}
func (f *fakeStore) AppendPositionRows(ctx context.Context, rows []store.PositionRow) error {
	return nil
}

func (f *fakeStore) LookupPositions(ctx context.Context, hashes []int64, yearMin, yearMax *int) ([]store.NextMoveRow, error) {
	var out []store.NextMoveRow
	for _, h := range hashes {
		for _, row := range f.positions[h] {
			out = append(out, row)
		}
	}
	return out, nil
}

func (f *fakeStore) GamesForHashes(ctx context.Context, hashes []int64, limit int) ([]store.GameRow, error) {
	return f.games, nil
}

func TestNextMoveEmptyCorpusEmptyQuery(t *testing.T) {
	s := newFakeStore()
	res, err := NextMove(context.Background(), s, hasher.Stones{}, nil, nil)
	if err != nil {
		t.Fatalf("NextMove: %v", err)
	}
	if len(res.NextMove) != 0 || res.TotalGames != 0 {
		t.Fatalf("empty corpus should yield empty result, got %+v", res)
	}
}

func TestNextMoveEmptyBoardFoldsToUpperRight(t *testing.T) {
	s := newFakeStore()
	pd := coord.ParseAlpha("pd").ToCart() // x>9,y<9: already upper-right, transform 0
	s.put(0, "pd", 1)

	res, err := NextMove(context.Background(), s, hasher.Stones{}, nil, nil)
	if err != nil {
		t.Fatalf("NextMove: %v", err)
	}
	if len(res.NextMove) != 1 {
		t.Fatalf("expected exactly 1 aggregated move, got %d: %+v", len(res.NextMove), res.NextMove)
	}
	if res.NextMove[0].Move != "pd" || res.NextMove[0].Count != 1 {
		t.Fatalf("got %+v, want pd:1", res.NextMove[0])
	}
	_ = pd
}

func TestNextMoveAfterSingleMoveQuery(t *testing.T) {
	s := newFakeStore()
	// board with a single black stone at pd, identity hash h0. pd lies on
	// the anti-diagonal, so h[7] == h[0]; dp is fixed under anti-transpose
	// as well, so the residual merge leaves it unchanged.
	b := coord.ParseAlpha("pd").ToCart()
	stones := hasher.Stones{Black: []coord.Cart{b}}
	h := hasher.FanOut(stones)
	s.put(h[0], "dp", 1)

	res, err := NextMove(context.Background(), s, stones, nil, nil)
	if err != nil {
		t.Fatalf("NextMove: %v", err)
	}
	if len(res.NextMove) != 1 || res.NextMove[0].Move != "dp" {
		t.Fatalf("got %+v, want dp:1", res.NextMove)
	}
}

func TestNextMoveYearFilter(t *testing.T) {
	s := newFakeStore()
	yMin, yMax := 2020, 2020
	res, err := NextMove(context.Background(), s, hasher.Stones{}, &yMin, &yMax)
	if err != nil {
		t.Fatalf("NextMove: %v", err)
	}
	if len(res.NextMove) != 0 {
		t.Fatalf("expected empty result with no matching year, got %+v", res)
	}
}

func TestMergeResidualRejectsTransform3(t *testing.T) {
	agg := map[coord.Cart]int{{X: 1, Y: 2}: 1}
	if _, err := mergeResidual(agg, coord.Rotate90CCW); !errors.Is(err, bgoerr.ErrInvariant) {
		t.Fatalf("expected ErrInvariant, got %v", err)
	}
}

func TestGamesForHashesAssignsRotation(t *testing.T) {
	s := newFakeStore()
	s.games = []store.GameRow{{BoardHash: 42, GameID: 1}}
	var hashes [8]int64
	hashes[3] = 42
	out, err := GamesForHashes(context.Background(), s, hashes, 10)
	if err != nil {
		t.Fatalf("GamesForHashes: %v", err)
	}
	if len(out) != 1 || out[0].Rotation != 3 {
		t.Fatalf("got %+v, want rotation 3", out)
	}
}
