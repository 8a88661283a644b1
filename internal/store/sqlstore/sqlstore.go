// Package sqlstore implements store.Store over a relational database via
// database/sql, using the pure-Go modernc.org/sqlite driver so the binary
// needs no cgo toolchain. This is the default backend: it gives the
// fingerprint table real secondary indexes and lets the year filter and
// hash filter combine in a single indexed query.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/bgoatlas/bgoatlas/internal/bgoerr"
	"github.com/bgoatlas/bgoatlas/internal/store"
)

const schema = `
CREATE TABLE IF NOT EXISTS player_list (
	player_id   INTEGER PRIMARY KEY AUTOINCREMENT,
	player_name TEXT UNIQUE NOT NULL
);
CREATE TABLE IF NOT EXISTS game_list (
	game_id     INTEGER PRIMARY KEY AUTOINCREMENT,
	source_name TEXT,
	white_id    INTEGER NOT NULL,
	black_id    INTEGER NOT NULL,
	white_rank  INTEGER,
	black_rank  INTEGER,
	event       TEXT,
	round       TEXT,
	place       TEXT,
	komi        TEXT,
	result      TEXT,
	game_date   TEXT,
	winner      TEXT,
	move_list   TEXT
);
CREATE TABLE IF NOT EXISTS hash_list (
	board_hash  INTEGER NOT NULL,
	game_id     INTEGER NOT NULL,
	move_number INTEGER NOT NULL,
	next_move   TEXT NOT NULL,
	game_year   INTEGER
);
CREATE INDEX IF NOT EXISTS idx_hash_list_board_hash  ON hash_list(board_hash);
CREATE INDEX IF NOT EXISTS idx_hash_list_move_number ON hash_list(move_number);
CREATE INDEX IF NOT EXISTS idx_hash_list_game_year   ON hash_list(game_year);
CREATE TABLE IF NOT EXISTS final_board_hash_list (
	board_hash INTEGER PRIMARY KEY,
	game_id    INTEGER NOT NULL
);
`

// Store wraps a *sql.DB implementing store.Store.
type Store struct {
	db *sql.DB
}

// Open creates (if absent) the schema at dsn and returns a ready Store.
// dsn is a modernc.org/sqlite data source, e.g. a file path or ":memory:".
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w: %w", bgoerr.ErrStoreFailure, err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w: %w", bgoerr.ErrStoreFailure, err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

var _ store.Store = (*Store)(nil)

func (s *Store) PlayerByName(ctx context.Context, name string) (int64, error) {
	var id int64
	row := s.db.QueryRowContext(ctx, `SELECT player_id FROM player_list WHERE player_name = ?`, name)
	if err := row.Scan(&id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, fmt.Errorf("player %q: %w", name, bgoerr.ErrNotFound)
		}
		return 0, fmt.Errorf("player by name: %w: %w", bgoerr.ErrStoreFailure, err)
	}
	return id, nil
}

func (s *Store) PlayerByID(ctx context.Context, id int64) (string, error) {
	var name string
	row := s.db.QueryRowContext(ctx, `SELECT player_name FROM player_list WHERE player_id = ?`, id)
	if err := row.Scan(&name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("player %d: %w", id, bgoerr.ErrNotFound)
		}
		return "", fmt.Errorf("player by id: %w: %w", bgoerr.ErrStoreFailure, err)
	}
	return name, nil
}

func (s *Store) InsertPlayer(ctx context.Context, name string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `INSERT INTO player_list (player_name) VALUES (?)`, name)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("player %q: %w", name, bgoerr.ErrDuplicate)
		}
		return 0, fmt.Errorf("insert player: %w: %w", bgoerr.ErrStoreFailure, err)
	}
	return res.LastInsertId()
}

func (s *Store) InsertGame(ctx context.Context, g store.Game) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO game_list
			(source_name, white_id, black_id, white_rank, black_rank,
			 event, round, place, komi, result, game_date, winner, move_list)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		g.SourceName, g.WhiteID, g.BlackID, g.WhiteRank, g.BlackRank,
		g.Event, g.Round, g.Place, g.Komi, g.Result, g.GameDate, g.Winner, g.MoveList)
	if err != nil {
		return 0, fmt.Errorf("insert game: %w: %w", bgoerr.ErrStoreFailure, err)
	}
	return res.LastInsertId()
}

func (s *Store) GameByID(ctx context.Context, id int64) (store.Game, error) {
	var g store.Game
	g.ID = id
	row := s.db.QueryRowContext(ctx, `
		SELECT source_name, white_id, black_id, white_rank, black_rank,
		       event, round, place, komi, result, game_date, winner, move_list
		FROM game_list WHERE game_id = ?`, id)
	err := row.Scan(&g.SourceName, &g.WhiteID, &g.BlackID, &g.WhiteRank, &g.BlackRank,
		&g.Event, &g.Round, &g.Place, &g.Komi, &g.Result, &g.GameDate, &g.Winner, &g.MoveList)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return store.Game{}, fmt.Errorf("game %d: %w", id, bgoerr.ErrNotFound)
		}
		return store.Game{}, fmt.Errorf("game by id: %w: %w", bgoerr.ErrStoreFailure, err)
	}
	return g, nil
}

func (s *Store) FinalPositions(ctx context.Context) (map[int64]int64, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT board_hash, game_id FROM final_board_hash_list`)
	if err != nil {
		return nil, fmt.Errorf("final positions: %w: %w", bgoerr.ErrStoreFailure, err)
	}
	defer rows.Close()
	out := make(map[int64]int64)
	for rows.Next() {
		var hash, gameID int64
		if err := rows.Scan(&hash, &gameID); err != nil {
			return nil, fmt.Errorf("scan final position: %w: %w", bgoerr.ErrStoreFailure, err)
		}
		out[hash] = gameID
	}
	return out, rows.Err()
}

func (s *Store) ReplaceFinalPositions(ctx context.Context, entries map[int64]int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w: %w", bgoerr.ErrStoreFailure, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM final_board_hash_list`); err != nil {
		return fmt.Errorf("truncate final positions: %w: %w", bgoerr.ErrStoreFailure, err)
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO final_board_hash_list (board_hash, game_id) VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w: %w", bgoerr.ErrStoreFailure, err)
	}
	defer stmt.Close()
	for hash, gameID := range entries {
		if _, err := stmt.ExecContext(ctx, hash, gameID); err != nil {
			return fmt.Errorf("bulk insert final positions: %w: %w", bgoerr.ErrStoreFailure, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit final positions: %w: %w", bgoerr.ErrStoreFailure, err)
	}
	return nil
}

func (s *Store) AppendPositionRows(ctx context.Context, rows []store.PositionRow) error {
	if len(rows) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w: %w", bgoerr.ErrStoreFailure, err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO hash_list (board_hash, game_id, move_number, next_move, game_year)
		VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w: %w", bgoerr.ErrStoreFailure, err)
	}
	defer stmt.Close()
	for _, r := range rows {
		if _, err := stmt.ExecContext(ctx, r.BoardHash, r.GameID, r.MoveNumber, r.NextMove, r.GameYear); err != nil {
			return fmt.Errorf("bulk insert position rows: %w: %w", bgoerr.ErrStoreFailure, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit position rows: %w: %w", bgoerr.ErrStoreFailure, err)
	}
	return nil
}

func (s *Store) LookupPositions(ctx context.Context, hashes []int64, yearMin, yearMax *int) ([]store.NextMoveRow, error) {
	if len(hashes) == 0 {
		return nil, nil
	}
	placeholders := make([]string, len(hashes))
	args := make([]any, 0, len(hashes)+2)
	for i, h := range hashes {
		placeholders[i] = "?"
		args = append(args, h)
	}
	query := fmt.Sprintf(`
		SELECT board_hash, next_move, COUNT(DISTINCT game_id)
		FROM hash_list
		WHERE board_hash IN (%s)`, strings.Join(placeholders, ","))
	if yearMin != nil {
		query += " AND game_year >= ?"
		args = append(args, *yearMin)
	}
	if yearMax != nil {
		query += " AND game_year <= ?"
		args = append(args, *yearMax)
	}
	query += " GROUP BY board_hash, next_move"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("lookup positions: %w: %w", bgoerr.ErrStoreFailure, err)
	}
	defer rows.Close()

	var out []store.NextMoveRow
	for rows.Next() {
		var r store.NextMoveRow
		if err := rows.Scan(&r.BoardHash, &r.NextMove, &r.Count); err != nil {
			return nil, fmt.Errorf("scan lookup row: %w: %w", bgoerr.ErrStoreFailure, err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) GamesForHashes(ctx context.Context, hashes []int64, limit int) ([]store.GameRow, error) {
	if len(hashes) == 0 {
		return nil, nil
	}
	placeholders := make([]string, len(hashes))
	args := make([]any, 0, len(hashes)+1)
	for i, h := range hashes {
		placeholders[i] = "?"
		args = append(args, h)
	}
	query := fmt.Sprintf(`
		SELECT h.board_hash, h.game_id, h.move_number, h.next_move,
		       g.white_id, g.white_rank, g.black_id, g.black_rank,
		       wp.player_name, bp.player_name, g.game_date
		FROM hash_list h
		JOIN game_list g ON g.game_id = h.game_id
		JOIN player_list wp ON wp.player_id = g.white_id
		JOIN player_list bp ON bp.player_id = g.black_id
		WHERE h.board_hash IN (%s)
		ORDER BY g.game_date DESC
		LIMIT ?`, strings.Join(placeholders, ","))
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("games for hashes: %w: %w", bgoerr.ErrStoreFailure, err)
	}
	defer rows.Close()

	var out []store.GameRow
	for rows.Next() {
		var r store.GameRow
		if err := rows.Scan(&r.BoardHash, &r.GameID, &r.MoveNumber, &r.NextMove,
			&r.WhiteID, &r.WhiteRank, &r.BlackID, &r.BlackRank,
			&r.WhiteName, &r.BlackName, &r.GameDate); err != nil {
			return nil, fmt.Errorf("scan games row: %w: %w", bgoerr.ErrStoreFailure, err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func isUniqueViolation(err error) bool {
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
