package ingest

import (
	"context"
	"fmt"
	"log"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/bgoatlas/bgoatlas/internal/record"
	"github.com/bgoatlas/bgoatlas/internal/store"
)

// Session drives one ingestion run: a bounded worker pool replays records
// in batches, and the session itself is the single writer that talks to
// the Store, preserving player/game id monotonicity and the dedup oracle's
// linearizability across batches.
type Session struct {
	store  store.Store
	cfg    Config
	logger *log.Logger

	final          map[int64]int64 // the in-memory dedup oracle F, staged this session
	stats          Stats
	seen           int
	playerIDByName map[string]int64
}

// NewSession opens a session against s, loading the dedup oracle F from
// the store's current final-position table.
func NewSession(ctx context.Context, s store.Store, cfg Config, logger *log.Logger) (*Session, error) {
	f, err := s.FinalPositions(ctx)
	if err != nil {
		return nil, fmt.Errorf("load final positions: %w", err)
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Session{
		store:          s,
		cfg:            cfg,
		logger:         logger,
		final:          f,
		playerIDByName: make(map[string]int64),
	}, nil
}

// Stats returns the running tally of record outcomes so far this session.
func (s *Session) Stats() Stats { return s.stats }

// IngestTexts processes the given raw record texts in batches of cfg.BatchSize,
// each batch replayed by a bounded worker pool and combined on the session's
// single writer goroutine.
func (s *Session) IngestTexts(ctx context.Context, texts []string) error {
	for start := 0; start < len(texts); start += s.cfg.BatchSize {
		end := start + s.cfg.BatchSize
		if end > len(texts) {
			end = len(texts)
		}
		batch := texts[start:end]
		results, err := s.runBatch(ctx, batch)
		if err != nil {
			return err
		}
		if err := s.combineBatch(ctx, results); err != nil {
			return err
		}
		s.seen += len(batch)
		if s.cfg.ProgressInterval > 0 && s.seen%s.cfg.ProgressInterval < len(batch) {
			s.logger.Printf("ingest progress: %d records processed (%+v)", s.seen, s.stats)
		}
	}
	return nil
}

// runBatch replays every record in batch concurrently, bounded by
// cfg.WorkerPoolSize, and returns results in the same order as batch (the
// order workers finish in is unspecified, but result slots are fixed so
// combineBatch sees a stable, reproducible ordering).
func (s *Session) runBatch(ctx context.Context, batch []string) ([]workerResult, error) {
	results := make([]workerResult, len(batch))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.WorkerPoolSize)
	for i, text := range batch {
		i, text := i, text
		g.Go(func() error {
			results[i] = processRecord(text, s.cfg)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// combineBatch runs the main-thread combine step for one batch's results,
// under a single conceptual Store transaction: non-success records are
// counted and logged, successes are deduplicated against F and written.
func (s *Session) combineBatch(ctx context.Context, results []workerResult) error {
	var pendingRows []store.PositionRow

	for _, r := range results {
		switch r.kind {
		case kindParseError:
			s.stats.ParseErrors++
			s.logger.Printf("parse error: %s", r.reason)
			continue
		case kindImportRejected:
			s.stats.Rejected++
			s.logger.Printf("rejected: %s", r.reason)
			continue
		case kindInvalidMove:
			s.stats.InvalidMoves++
			s.logger.Printf("invalid move: %s", r.reason)
			continue
		}

		if _, dup := s.final[r.final]; dup {
			s.stats.Duplicates++
			continue
		}

		whiteID, err := s.resolvePlayer(ctx, r.admitted.WhiteName)
		if err != nil {
			return fmt.Errorf("resolve white player: %w", err)
		}
		blackID, err := s.resolvePlayer(ctx, r.admitted.BlackName)
		if err != nil {
			return fmt.Errorf("resolve black player: %w", err)
		}

		moveList := ""
		for _, m := range r.admitted.Moves {
			moveList += m
		}

		gameID, err := s.store.InsertGame(ctx, store.Game{
			WhiteID:   whiteID,
			BlackID:   blackID,
			WhiteRank: r.admitted.WhiteRank,
			BlackRank: r.admitted.BlackRank,
			Event:     r.admitted.Event,
			Round:     r.admitted.Round,
			Place:     r.admitted.Place,
			Komi:      r.admitted.Komi,
			Result:    r.admitted.Result,
			GameDate:  r.admitted.Date,
			Winner:    winnerString(r.admitted.Winner),
			MoveList:  moveList,
		})
		if err != nil {
			return fmt.Errorf("insert game: %w", err)
		}

		year, err := gameYear(r.admitted.Date)
		if err != nil {
			// Accepted drift: the Game and any newly created Players stay,
			// but this game contributes no fingerprint rows.
			s.stats.Exceptional++
			s.final[r.final] = gameID
			continue
		}

		if len(r.admitted.Moves) > 0 {
			pendingRows = append(pendingRows, store.PositionRow{
				BoardHash: 0, GameID: gameID, MoveNumber: 0,
				NextMove: r.admitted.Moves[0], GameYear: year,
			})
		}
		for idx := 1; idx <= len(r.perPly); idx++ {
			if idx >= len(r.admitted.Moves) {
				break // final position has no next move; nothing to record
			}
			pendingRows = append(pendingRows, store.PositionRow{
				BoardHash: r.perPly[idx-1], GameID: gameID, MoveNumber: idx,
				NextMove: r.admitted.Moves[idx], GameYear: year,
			})
		}

		s.stats.Added++
		s.final[r.final] = gameID
	}

	if len(pendingRows) > 0 {
		if err := s.store.AppendPositionRows(ctx, pendingRows); err != nil {
			return fmt.Errorf("append position rows: %w", err)
		}
	}
	return nil
}

// resolvePlayer looks up name, inserting a new Player on first sight. Name
// resolution happens only on the session's single writer goroutine, so id
// allocation stays monotonic.
func (s *Session) resolvePlayer(ctx context.Context, name string) (int64, error) {
	if id, ok := s.playerIDByName[name]; ok {
		return id, nil
	}
	id, err := s.store.PlayerByName(ctx, name)
	if err == nil {
		s.playerIDByName[name] = id
		return id, nil
	}
	id, err = s.store.InsertPlayer(ctx, name)
	if err != nil {
		return 0, err
	}
	s.playerIDByName[name] = id
	return id, nil
}

// Commit writes the staged final-position set back to the store (atomic
// truncate-and-load), ending the session.
func (s *Session) Commit(ctx context.Context) error {
	return s.store.ReplaceFinalPositions(ctx, s.final)
}

func winnerString(w record.Winner) string {
	switch w {
	case record.WinnerBlack:
		return "BLACK"
	case record.WinnerWhite:
		return "WHITE"
	default:
		return "NONE"
	}
}

func gameYear(date string) (int, error) {
	if len(date) < 4 {
		return 0, fmt.Errorf("date %q too short to derive a year", date)
	}
	return strconv.Atoi(date[:4])
}
