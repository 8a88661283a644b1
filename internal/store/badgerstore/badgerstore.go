// Package badgerstore implements store.Store over an embedded
// github.com/dgraph-io/badger/v4 key-value database, demonstrating that the
// Store contract is storage-agnostic. Composite, lexicographically ordered
// keys stand in for the SQL backend's secondary indexes; Badger's iterator
// gives an efficient board_hash prefix scan, but this backend has no native
// equivalent of a "year BETWEEN" range joined against that same scan, so a
// year filter here is applied query-side after the prefix scan rather than
// pushed into the key layout. Prefer sqlstore when year-filtered lookups
// against a large corpus are the common case.
package badgerstore

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/dgraph-io/badger/v4"

	"github.com/bgoatlas/bgoatlas/internal/bgoerr"
	"github.com/bgoatlas/bgoatlas/internal/store"
)

// Store wraps a *badger.DB implementing store.Store.
type Store struct {
	db *badger.DB
}

// Open opens (creating if absent) a Badger database rooted at dir.
func Open(dir string) (*Store, error) {
	opts := badger.DefaultOptions(dir)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w: %w", bgoerr.ErrStoreFailure, err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

var _ store.Store = (*Store)(nil)

func playerByNameKey(name string) []byte { return []byte("player/byname/" + name) }
func playerByIDKey(id int64) []byte      { return []byte("player/byid/" + strconv.FormatInt(id, 10)) }
func gameKey(id int64) []byte            { return []byte("game/" + strconv.FormatInt(id, 10)) }
func finalKey(hash int64) []byte         { return []byte("final/" + hashKeyPart(hash)) }

// hashKeyPart renders a signed hash as a fixed-width, order-preserving hex
// string by biasing it into the unsigned range, so prefix scans on the
// board_hash portion of a key stay well-formed regardless of sign.
func hashKeyPart(hash int64) string {
	biased := uint64(hash) ^ (1 << 63)
	return fmt.Sprintf("%016x", biased)
}

// positionKeyPrefix returns the scan prefix for all rows with the given
// board hash.
func positionKeyPrefix(hash int64) []byte {
	return []byte("hash/" + hashKeyPart(hash) + "/")
}

func positionKey(hash int64, gameID int64, moveNumber int) []byte {
	return []byte(fmt.Sprintf("%s%020d/%010d", positionKeyPrefix(hash), gameID, moveNumber))
}

type positionValue struct {
	NextMove string `json:"next_move"`
	GameYear int    `json:"game_year"`
}

func (s *Store) PlayerByName(ctx context.Context, name string) (int64, error) {
	var id int64
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(playerByNameKey(name))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return fmt.Errorf("player %q: %w", name, bgoerr.ErrNotFound)
			}
			return fmt.Errorf("player by name: %w: %w", bgoerr.ErrStoreFailure, err)
		}
		return item.Value(func(val []byte) error {
			id = int64(binary.BigEndian.Uint64(val))
			return nil
		})
	})
	return id, err
}

func (s *Store) PlayerByID(ctx context.Context, id int64) (string, error) {
	var name string
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(playerByIDKey(id))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return fmt.Errorf("player %d: %w", id, bgoerr.ErrNotFound)
			}
			return fmt.Errorf("player by id: %w: %w", bgoerr.ErrStoreFailure, err)
		}
		return item.Value(func(val []byte) error {
			name = string(val)
			return nil
		})
	})
	return name, err
}

func (s *Store) InsertPlayer(ctx context.Context, name string) (int64, error) {
	var id int64
	err := s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(playerByNameKey(name)); err == nil {
			return fmt.Errorf("player %q: %w", name, bgoerr.ErrDuplicate)
		} else if err != badger.ErrKeyNotFound {
			return fmt.Errorf("check player exists: %w: %w", bgoerr.ErrStoreFailure, err)
		}
		seq, err := s.db.GetSequence([]byte("player/seq"), 1)
		if err != nil {
			return fmt.Errorf("player sequence: %w: %w", bgoerr.ErrStoreFailure, err)
		}
		defer seq.Release()
		next, err := seq.Next()
		if err != nil {
			return fmt.Errorf("player sequence next: %w: %w", bgoerr.ErrStoreFailure, err)
		}
		id = int64(next) + 1
		buf := make([]byte, 8)
		binary.BigEndian.PutUint64(buf, uint64(id))
		if err := txn.Set(playerByNameKey(name), buf); err != nil {
			return fmt.Errorf("set player by name: %w: %w", bgoerr.ErrStoreFailure, err)
		}
		return txn.Set(playerByIDKey(id), []byte(name))
	})
	return id, err
}

func (s *Store) InsertGame(ctx context.Context, g store.Game) (int64, error) {
	var id int64
	err := s.db.Update(func(txn *badger.Txn) error {
		seq, err := s.db.GetSequence([]byte("game/seq"), 1)
		if err != nil {
			return fmt.Errorf("game sequence: %w: %w", bgoerr.ErrStoreFailure, err)
		}
		defer seq.Release()
		next, err := seq.Next()
		if err != nil {
			return fmt.Errorf("game sequence next: %w: %w", bgoerr.ErrStoreFailure, err)
		}
		id = int64(next) + 1
		g.ID = id
		buf, err := json.Marshal(g)
		if err != nil {
			return fmt.Errorf("marshal game: %w: %w", bgoerr.ErrStoreFailure, err)
		}
		return txn.Set(gameKey(id), buf)
	})
	return id, err
}

func (s *Store) GameByID(ctx context.Context, id int64) (store.Game, error) {
	var g store.Game
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(gameKey(id))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return fmt.Errorf("game %d: %w", id, bgoerr.ErrNotFound)
			}
			return fmt.Errorf("game by id: %w: %w", bgoerr.ErrStoreFailure, err)
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &g)
		})
	})
	return g, err
}

func (s *Store) FinalPositions(ctx context.Context) (map[int64]int64, error) {
	out := make(map[int64]int64)
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte("final/")
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Seek(opts.Prefix); it.ValidForPrefix(opts.Prefix); it.Next() {
			item := it.Item()
			key := string(item.Key())
			hexHash := strings.TrimPrefix(key, "final/")
			hash, err := unbiasHashHex(hexHash)
			if err != nil {
				return fmt.Errorf("parse final hash key: %w: %w", bgoerr.ErrInvariant, err)
			}
			err = item.Value(func(val []byte) error {
				out[hash] = int64(binary.BigEndian.Uint64(val))
				return nil
			})
			if err != nil {
				return fmt.Errorf("read final position: %w: %w", bgoerr.ErrStoreFailure, err)
			}
		}
		return nil
	})
	return out, err
}

func (s *Store) ReplaceFinalPositions(ctx context.Context, entries map[int64]int64) error {
	return s.db.Update(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte("final/")
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		var toDelete [][]byte
		for it.Seek(opts.Prefix); it.ValidForPrefix(opts.Prefix); it.Next() {
			k := append([]byte(nil), it.Item().Key()...)
			toDelete = append(toDelete, k)
		}
		it.Close()
		for _, k := range toDelete {
			if err := txn.Delete(k); err != nil {
				return fmt.Errorf("truncate final positions: %w: %w", bgoerr.ErrStoreFailure, err)
			}
		}
		for hash, gameID := range entries {
			buf := make([]byte, 8)
			binary.BigEndian.PutUint64(buf, uint64(gameID))
			if err := txn.Set(finalKey(hash), buf); err != nil {
				return fmt.Errorf("set final position: %w: %w", bgoerr.ErrStoreFailure, err)
			}
		}
		return nil
	})
}

func (s *Store) AppendPositionRows(ctx context.Context, rows []store.PositionRow) error {
	if len(rows) == 0 {
		return nil
	}
	wb := s.db.NewWriteBatch()
	defer wb.Cancel()
	for _, r := range rows {
		val, err := json.Marshal(positionValue{NextMove: r.NextMove, GameYear: r.GameYear})
		if err != nil {
			return fmt.Errorf("marshal position row: %w: %w", bgoerr.ErrStoreFailure, err)
		}
		key := positionKey(r.BoardHash, r.GameID, r.MoveNumber)
		if err := wb.Set(key, val); err != nil {
			return fmt.Errorf("append position row: %w: %w", bgoerr.ErrStoreFailure, err)
		}
	}
	if err := wb.Flush(); err != nil {
		return fmt.Errorf("flush position rows: %w: %w", bgoerr.ErrStoreFailure, err)
	}
	return nil
}

func (s *Store) LookupPositions(ctx context.Context, hashes []int64, yearMin, yearMax *int) ([]store.NextMoveRow, error) {
	type key struct {
		hash int64
		move string
	}
	counts := make(map[key]int)
	var order []key

	err := s.db.View(func(txn *badger.Txn) error {
		for _, hash := range hashes {
			prefix := positionKeyPrefix(hash)
			opts := badger.DefaultIteratorOptions
			opts.Prefix = prefix
			it := txn.NewIterator(opts)
			for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
				item := it.Item()
				var pv positionValue
				if err := item.Value(func(val []byte) error { return json.Unmarshal(val, &pv) }); err != nil {
					it.Close()
					return fmt.Errorf("read position row: %w: %w", bgoerr.ErrStoreFailure, err)
				}
				if yearMin != nil && pv.GameYear < *yearMin {
					continue
				}
				if yearMax != nil && pv.GameYear > *yearMax {
					continue
				}
				k := key{hash: hash, move: pv.NextMove}
				if _, seen := counts[k]; !seen {
					order = append(order, k)
				}
				counts[k]++
			}
			it.Close()
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	out := make([]store.NextMoveRow, 0, len(order))
	for _, k := range order {
		out = append(out, store.NextMoveRow{BoardHash: k.hash, NextMove: k.move, Count: counts[k]})
	}
	return out, nil
}

func (s *Store) GamesForHashes(ctx context.Context, hashes []int64, limit int) ([]store.GameRow, error) {
	type rawRow struct {
		hash       int64
		gameID     int64
		moveNumber int
		nextMove   string
	}
	var raws []rawRow

	err := s.db.View(func(txn *badger.Txn) error {
		for _, hash := range hashes {
			prefix := positionKeyPrefix(hash)
			opts := badger.DefaultIteratorOptions
			opts.Prefix = prefix
			it := txn.NewIterator(opts)
			for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
				item := it.Item()
				key := string(item.Key())
				parts := strings.Split(strings.TrimPrefix(key, string(prefix)), "/")
				if len(parts) != 2 {
					it.Close()
					return fmt.Errorf("malformed position key %q: %w", key, bgoerr.ErrInvariant)
				}
				gameID, err1 := strconv.ParseInt(parts[0], 10, 64)
				moveNumber, err2 := strconv.Atoi(parts[1])
				if err1 != nil || err2 != nil {
					it.Close()
					return fmt.Errorf("malformed position key %q: %w", key, bgoerr.ErrInvariant)
				}
				var pv positionValue
				if err := item.Value(func(val []byte) error { return json.Unmarshal(val, &pv) }); err != nil {
					it.Close()
					return fmt.Errorf("read position row: %w: %w", bgoerr.ErrStoreFailure, err)
				}
				raws = append(raws, rawRow{hash: hash, gameID: gameID, moveNumber: moveNumber, nextMove: pv.NextMove})
			}
			it.Close()
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	var out []store.GameRow
	for _, r := range raws {
		g, err := s.GameByID(ctx, r.gameID)
		if err != nil {
			return nil, err
		}
		whiteName, err := s.PlayerByID(ctx, g.WhiteID)
		if err != nil {
			return nil, err
		}
		blackName, err := s.PlayerByID(ctx, g.BlackID)
		if err != nil {
			return nil, err
		}
		out = append(out, store.GameRow{
			BoardHash: r.hash, GameID: r.gameID, MoveNumber: r.moveNumber, NextMove: r.nextMove,
			WhiteID: g.WhiteID, WhiteRank: g.WhiteRank, BlackID: g.BlackID, BlackRank: g.BlackRank,
			WhiteName: whiteName, BlackName: blackName, GameDate: g.GameDate,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].GameDate > out[j].GameDate })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func unbiasHashHex(hex string) (int64, error) {
	var biased uint64
	_, err := fmt.Sscanf(hex, "%016x", &biased)
	if err != nil {
		return 0, err
	}
	return int64(biased ^ (1 << 63)), nil
}
