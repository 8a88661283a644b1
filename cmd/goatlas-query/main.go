// Command goatlas-query runs one-shot next-move, games, and game lookups
// against a store backend.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/bgoatlas/bgoatlas/internal/coord"
	"github.com/bgoatlas/bgoatlas/internal/hasher"
	"github.com/bgoatlas/bgoatlas/internal/query"
	"github.com/bgoatlas/bgoatlas/internal/rules"
	"github.com/bgoatlas/bgoatlas/internal/store"
	"github.com/bgoatlas/bgoatlas/internal/store/badgerstore"
	"github.com/bgoatlas/bgoatlas/internal/store/sqlstore"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	sub := os.Args[1]
	fs := flag.NewFlagSet(sub, flag.ExitOnError)
	storeKind := fs.String("store", "sqlite", "store backend: sqlite or badger")
	dataDir := fs.String("data", "./goatlas-data", "database file (sqlite) or directory (badger)")
	movesFlag := fs.String("moves", "", "comma-separated Alpha-pair move list, e.g. pd,dp,pp (empty = empty board)")
	yearMinFlag := fs.Int("year-min", 0, "inclusive lower year bound (0 = unset)")
	yearMaxFlag := fs.Int("year-max", 0, "inclusive upper year bound (0 = unset)")
	limitFlag := fs.Int("limit", 20, "max rows for the games subcommand")
	gameIDFlag := fs.Int64("id", 0, "game id for the game subcommand")
	fs.Parse(os.Args[2:])

	ctx := context.Background()
	s, closeStore, err := openStore(ctx, *storeKind, *dataDir)
	if err != nil {
		log.Fatalf("open store: %v", err)
	}
	defer closeStore()

	switch sub {
	case "next-move":
		runNextMove(ctx, s, *movesFlag, *yearMinFlag, *yearMaxFlag)
	case "games":
		runGames(ctx, s, *movesFlag, *limitFlag)
	case "game":
		runGame(ctx, s, *gameIDFlag)
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: goatlas-query <next-move|games|game> [flags]")
}

func parseMoves(spec string) ([]coord.Cart, error) {
	if spec == "" {
		return nil, nil
	}
	tokens := strings.Split(spec, ",")
	out := make([]coord.Cart, len(tokens))
	for i, tok := range tokens {
		a := coord.ParseAlpha(strings.TrimSpace(tok))
		if !a.IsValid() {
			return nil, fmt.Errorf("invalid move token %q", tok)
		}
		out[i] = a.ToCart()
	}
	return out, nil
}

func runNextMove(ctx context.Context, s store.Store, movesFlag string, yearMin, yearMax int) {
	moves, err := parseMoves(movesFlag)
	if err != nil {
		log.Fatalf("parse moves: %v", err)
	}
	board := rules.NewBoard()
	if !board.LoadMoves(moves) {
		log.Fatalf("illegal move sequence: %s", board.WhyInvalid())
	}
	black, white := board.Stones()

	var yMinPtr, yMaxPtr *int
	if yearMin != 0 {
		yMinPtr = &yearMin
	}
	if yearMax != 0 {
		yMaxPtr = &yearMax
	}

	res, err := query.NextMove(ctx, s, hasher.Stones{Black: black, White: white}, yMinPtr, yMaxPtr)
	if err != nil {
		log.Fatalf("next-move: %v", err)
	}
	fmt.Printf("total=%d\n", res.TotalGames)
	for _, mc := range res.NextMove {
		fmt.Printf("%s %d\n", mc.Move, mc.Count)
	}
}

func runGames(ctx context.Context, s store.Store, movesFlag string, limit int) {
	moves, err := parseMoves(movesFlag)
	if err != nil {
		log.Fatalf("parse moves: %v", err)
	}
	board := rules.NewBoard()
	if !board.LoadMoves(moves) {
		log.Fatalf("illegal move sequence: %s", board.WhyInvalid())
	}
	black, white := board.Stones()
	h := hasher.FanOut(hasher.Stones{Black: black, White: white})

	rows, err := query.GamesForHashes(ctx, s, h, limit)
	if err != nil {
		log.Fatalf("games: %v", err)
	}
	for _, r := range rows {
		fmt.Printf("game=%d rotation=%d white=%s black=%s date=%s move=%d next=%s\n",
			r.GameID, r.Rotation, r.WhiteName, r.BlackName, r.GameDate, r.MoveNumber, r.NextMove)
	}
}

func runGame(ctx context.Context, s store.Store, id int64) {
	g, err := s.GameByID(ctx, id)
	if err != nil {
		log.Fatalf("game: %v", err)
	}
	fmt.Printf("game_id=%d white_id=%d black_id=%d date=%s winner=%s moves=%s\n",
		g.ID, g.WhiteID, g.BlackID, g.GameDate, g.Winner, g.MoveList)
}

func openStore(ctx context.Context, kind, path string) (store.Store, func() error, error) {
	switch kind {
	case "sqlite":
		s, err := sqlstore.Open(ctx, path)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	case "badger":
		s, err := badgerstore.Open(path)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", kind)
	}
}
