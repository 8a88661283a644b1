package ingest

// Config holds the tunable constants of one ingestion session.
type Config struct {
	ProgressInterval int // records between progress log lines
	PlyDepth         int // K: per-ply fingerprint depth
	BatchSize        int // B: records dispatched to the worker pool at once
	WorkerPoolSize   int // bounded worker concurrency
}

// DefaultConfig returns the session defaults named in the component
// design: progress interval 1000, ply depth 30, batch size 1000.
func DefaultConfig() Config {
	return Config{
		ProgressInterval: 1000,
		PlyDepth:         30,
		BatchSize:        1000,
		WorkerPoolSize:   8,
	}
}

// Stats is the running tally of one session's record outcomes.
type Stats struct {
	ParseErrors  int
	Rejected     int
	Duplicates   int
	InvalidMoves int
	Added        int
	Exceptional  int
}
