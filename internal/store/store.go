// Package store defines the persistence contract shared by the ingestor and
// the query engine, plus two concrete backends (sqlstore, badgerstore).
package store

import "context"

// Player is a corpus participant, created once on first encounter during
// ingestion and never mutated afterward.
type Player struct {
	ID   int64
	Name string
}

// Game is one imported game record, created once and never mutated.
type Game struct {
	ID         int64
	SourceName string
	WhiteID    int64
	BlackID    int64
	WhiteRank  int
	BlackRank  int
	Event      string
	Round      string
	Place      string
	Komi       string
	Result     string
	GameDate   string // YYYY-MM-DD
	Winner     string // "BLACK", "WHITE", or "NONE"
	MoveList   string // concatenation of Alpha tokens, e.g. "pddppp..."
}

// PositionRow is one (game, ply) fingerprint entry.
type PositionRow struct {
	BoardHash  int64
	GameID     int64
	MoveNumber int
	NextMove   string // two-character Alpha token
	GameYear   int
}

// FinalPositionEntry maps the hash of a game's last recorded position to
// the game that produced it; the sole dedup key for corpus membership.
type FinalPositionEntry struct {
	BoardHash int64
	GameID    int64
}

// NextMoveRow is one aggregated lookup result before the query-layer fold
// and merge stages: a (board_hash, next_move) pair with its count. Neither
// backend fills in FromTransform; the query layer recovers the transform
// from BoardHash.
type NextMoveRow struct {
	BoardHash     int64
	NextMove      string
	Count         int
	FromTransform int
}

// GameRow is one row of a games-for-hashes result.
type GameRow struct {
	BoardHash  int64
	GameID     int64
	MoveNumber int
	NextMove   string
	WhiteID    int64
	WhiteRank  int
	BlackID    int64
	BlackRank  int
	WhiteName  string
	BlackName  string
	GameDate   string
}

// Store is the persistence contract the Ingestor and Query depend on.
// Implementations must make insert_player/insert_game effectively
// single-writer safe for the Ingestor's sequential combine step; queries
// are read-only and may run concurrently with each other.
type Store interface {
	// PlayerByName returns the id of the player with the given name, or
	// wraps bgoerr.ErrNotFound if no such player exists.
	PlayerByName(ctx context.Context, name string) (int64, error)
	// PlayerByID returns the name of the player with the given id, or
	// wraps bgoerr.ErrNotFound.
	PlayerByID(ctx context.Context, id int64) (string, error)
	// InsertPlayer creates a new player and returns its id. Wraps
	// bgoerr.ErrDuplicate if the name already exists.
	InsertPlayer(ctx context.Context, name string) (int64, error)

	// InsertGame creates a new game row and returns its id.
	InsertGame(ctx context.Context, g Game) (int64, error)
	// GameByID returns the game with the given id, or wraps
	// bgoerr.ErrNotFound.
	GameByID(ctx context.Context, id int64) (Game, error)

	// FinalPositions returns the whole final-position dedup table.
	FinalPositions(ctx context.Context) (map[int64]int64, error)
	// ReplaceFinalPositions atomically truncates and reloads the
	// final-position table.
	ReplaceFinalPositions(ctx context.Context, entries map[int64]int64) error

	// AppendPositionRows bulk-appends fingerprint rows.
	AppendPositionRows(ctx context.Context, rows []PositionRow) error

	// LookupPositions returns (board_hash, next_move, count) tuples for
	// each requested hash, optionally restricted to [yearMin, yearMax]
	// inclusive on both ends. A nil yearMin/yearMax disables that bound;
	// a non-nil pointer, even to 0, is applied as a bound.
	LookupPositions(ctx context.Context, hashes []int64, yearMin, yearMax *int) ([]NextMoveRow, error)

	// GamesForHashes returns up to limit rows across the given hashes,
	// ordered by game_date descending.
	GamesForHashes(ctx context.Context, hashes []int64, limit int) ([]GameRow, error)
}
