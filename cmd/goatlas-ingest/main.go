// Command goatlas-ingest imports one archive of recorded games into a
// store backend, printing progress and a final tally.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/bgoatlas/bgoatlas/internal/ingest"
	"github.com/bgoatlas/bgoatlas/internal/store"
	"github.com/bgoatlas/bgoatlas/internal/store/badgerstore"
	"github.com/bgoatlas/bgoatlas/internal/store/sqlstore"
)

func main() {
	archivePath := flag.String("archive", "", "path to a .tar.gz archive of game records (required)")
	storeKind := flag.String("store", "sqlite", "store backend: sqlite or badger")
	dataDir := flag.String("data", "./goatlas-data", "database file (sqlite) or directory (badger)")
	batchSize := flag.Int("batch", ingest.DefaultConfig().BatchSize, "records dispatched to the worker pool at once")
	plyDepth := flag.Int("ply-depth", ingest.DefaultConfig().PlyDepth, "per-ply fingerprint depth")
	workers := flag.Int("workers", ingest.DefaultConfig().WorkerPoolSize, "worker pool size")
	flag.Parse()

	if *archivePath == "" {
		fmt.Fprintln(os.Stderr, "usage: goatlas-ingest -archive path/to/games.tar.gz [-store sqlite|badger] [-data path]")
		os.Exit(2)
	}

	ctx := context.Background()
	s, closeStore, err := openStore(ctx, *storeKind, *dataDir)
	if err != nil {
		log.Fatalf("open store: %v", err)
	}
	defer closeStore()

	f, err := os.Open(*archivePath)
	if err != nil {
		log.Fatalf("open archive: %v", err)
	}
	defer f.Close()

	texts, err := ingest.ReadTarGz(f)
	if err != nil {
		log.Fatalf("read archive: %v", err)
	}
	log.Printf("found %d candidate records in %s", len(texts), *archivePath)

	cfg := ingest.Config{
		ProgressInterval: ingest.DefaultConfig().ProgressInterval,
		PlyDepth:         *plyDepth,
		BatchSize:        *batchSize,
		WorkerPoolSize:   *workers,
	}
	session, err := ingest.NewSession(ctx, s, cfg, log.Default())
	if err != nil {
		log.Fatalf("open session: %v", err)
	}

	if err := session.IngestTexts(ctx, texts); err != nil {
		log.Fatalf("ingest session aborted: %v", err)
	}
	if err := session.Commit(ctx); err != nil {
		log.Fatalf("commit session: %v", err)
	}

	st := session.Stats()
	log.Printf("done: parse_errors=%d rejected=%d duplicates=%d invalid_moves=%d added=%d exceptional=%d",
		st.ParseErrors, st.Rejected, st.Duplicates, st.InvalidMoves, st.Added, st.Exceptional)
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
