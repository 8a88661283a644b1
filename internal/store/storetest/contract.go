// Package storetest holds a shared contract test suite exercised against
// every store.Store backend, so sqlstore and badgerstore are held to
// exactly the same behavior.
package storetest

import (
	"context"
	"errors"
	"testing"

	"github.com/bgoatlas/bgoatlas/internal/bgoerr"
	"github.com/bgoatlas/bgoatlas/internal/store"
)

// Run exercises s against the full store.Store contract. s must be freshly
// created (empty) when passed in.
func Run(t *testing.T, s store.Store) {
	t.Helper()
	ctx := context.Background()

	t.Run("PlayerLifecycle", func(t *testing.T) {
		if _, err := s.PlayerByName(ctx, "nobody"); !errors.Is(err, bgoerr.ErrNotFound) {
			t.Fatalf("PlayerByName on empty store: err = %v, want ErrNotFound", err)
		}
		id, err := s.InsertPlayer(ctx, "Alice")
		if err != nil {
			t.Fatalf("InsertPlayer: %v", err)
		}
		if _, err := s.InsertPlayer(ctx, "Alice"); !errors.Is(err, bgoerr.ErrDuplicate) {
			t.Fatalf("InsertPlayer duplicate: err = %v, want ErrDuplicate", err)
		}
		gotID, err := s.PlayerByName(ctx, "Alice")
		if err != nil || gotID != id {
			t.Fatalf("PlayerByName = %d, %v, want %d, nil", gotID, err, id)
		}
		gotName, err := s.PlayerByID(ctx, id)
		if err != nil || gotName != "Alice" {
			t.Fatalf("PlayerByID = %q, %v, want Alice, nil", gotName, err)
		}
	})

	t.Run("GameLifecycle", func(t *testing.T) {
		white, _ := s.InsertPlayer(ctx, "White Player")
		black, _ := s.InsertPlayer(ctx, "Black Player")
		g := store.Game{
			SourceName: "test.sgf", WhiteID: white, BlackID: black,
			WhiteRank: 3, BlackRank: -2, Event: "Test Cup", Round: "1",
			Place: "Tokyo", Komi: "6.5", Result: "B+R", GameDate: "2020-01-01",
			Winner: "BLACK", MoveList: "pddppp",
		}
		id, err := s.InsertGame(ctx, g)
		if err != nil {
			t.Fatalf("InsertGame: %v", err)
		}
		got, err := s.GameByID(ctx, id)
		if err != nil {
			t.Fatalf("GameByID: %v", err)
		}
		if got.SourceName != g.SourceName || got.WhiteID != white || got.BlackID != black || got.MoveList != g.MoveList {
			t.Fatalf("GameByID = %+v, want fields matching %+v", got, g)
		}
		if _, err := s.GameByID(ctx, id+9999); !errors.Is(err, bgoerr.ErrNotFound) {
			t.Fatalf("GameByID missing: err = %v, want ErrNotFound", err)
		}
	})

	t.Run("FinalPositions", func(t *testing.T) {
		entries := map[int64]int64{100: 1, -200: 2, 0: 3}
		if err := s.ReplaceFinalPositions(ctx, entries); err != nil {
			t.Fatalf("ReplaceFinalPositions: %v", err)
		}
		got, err := s.FinalPositions(ctx)
		if err != nil {
			t.Fatalf("FinalPositions: %v", err)
		}
		if len(got) != len(entries) {
			t.Fatalf("FinalPositions returned %d entries, want %d", len(got), len(entries))
		}
		for hash, gameID := range entries {
			if got[hash] != gameID {
				t.Fatalf("FinalPositions[%d] = %d, want %d", hash, got[hash], gameID)
			}
		}
		// Replacing again must fully truncate the old set.
		if err := s.ReplaceFinalPositions(ctx, map[int64]int64{7: 7}); err != nil {
			t.Fatalf("ReplaceFinalPositions (2nd): %v", err)
		}
		got2, err := s.FinalPositions(ctx)
		if err != nil {
			t.Fatalf("FinalPositions (2nd): %v", err)
		}
		if len(got2) != 1 || got2[7] != 7 {
			t.Fatalf("FinalPositions after replace = %v, want {7:7}", got2)
		}
	})

	t.Run("PositionRowsAndLookup", func(t *testing.T) {
		white, _ := s.InsertPlayer(ctx, "W2")
		black, _ := s.InsertPlayer(ctx, "B2")
		gameID, err := s.InsertGame(ctx, store.Game{WhiteID: white, BlackID: black, GameDate: "2019-06-01"})
		if err != nil {
			t.Fatalf("InsertGame: %v", err)
		}
		rows := []store.PositionRow{
			{BoardHash: 555, GameID: gameID, MoveNumber: 0, NextMove: "pd", GameYear: 2019},
			{BoardHash: 555, GameID: gameID, MoveNumber: 0, NextMove: "dp", GameYear: 2019},
		}
		if err := s.AppendPositionRows(ctx, rows); err != nil {
			t.Fatalf("AppendPositionRows: %v", err)
		}

		got, err := s.LookupPositions(ctx, []int64{555}, nil, nil)
		if err != nil {
			t.Fatalf("LookupPositions: %v", err)
		}
		counts := map[string]int{}
		for _, r := range got {
			counts[r.NextMove] += r.Count
		}
		if counts["pd"] != 1 || counts["dp"] != 1 {
			t.Fatalf("LookupPositions counts = %v, want pd:1 dp:1", counts)
		}

		yMin, yMax := 2025, 2030
		none, err := s.LookupPositions(ctx, []int64{555}, &yMin, &yMax)
		if err != nil {
			t.Fatalf("LookupPositions year-filtered: %v", err)
		}
		if len(none) != 0 {
			t.Fatalf("LookupPositions outside year range = %v, want empty", none)
		}
	})

	t.Run("GamesForHashes", func(t *testing.T) {
		white, _ := s.InsertPlayer(ctx, "W3")
		black, _ := s.InsertPlayer(ctx, "B3")
		gameID, err := s.InsertGame(ctx, store.Game{WhiteID: white, BlackID: black, GameDate: "2021-02-02"})
		if err != nil {
			t.Fatalf("InsertGame: %v", err)
		}
		if err := s.AppendPositionRows(ctx, []store.PositionRow{
			{BoardHash: 777, GameID: gameID, MoveNumber: 1, NextMove: "jj", GameYear: 2021},
		}); err != nil {
			t.Fatalf("AppendPositionRows: %v", err)
		}
		rows, err := s.GamesForHashes(ctx, []int64{777}, 10)
		if err != nil {
			t.Fatalf("GamesForHashes: %v", err)
		}
		if len(rows) != 1 {
			t.Fatalf("GamesForHashes returned %d rows, want 1", len(rows))
		}
		if rows[0].WhiteName != "W3" || rows[0].BlackName != "B3" {
			t.Fatalf("GamesForHashes row = %+v, want names W3/B3", rows[0])
		}
	})
}
