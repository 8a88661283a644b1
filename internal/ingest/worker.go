package ingest

import (
	"errors"
	"fmt"

	"github.com/bgoatlas/bgoatlas/internal/bgoerr"
	"github.com/bgoatlas/bgoatlas/internal/coord"
	"github.com/bgoatlas/bgoatlas/internal/hasher"
	"github.com/bgoatlas/bgoatlas/internal/record"
	"github.com/bgoatlas/bgoatlas/internal/rules"
)

type resultKind int

const (
	kindSuccess resultKind = iota
	kindParseError
	kindImportRejected
	kindInvalidMove
)

// workerResult is the value one worker returns for one record: exactly one
// of the four variants named in the component design.
type workerResult struct {
	kind     resultKind
	reason   string
	admitted record.Admitted
	perPly   []int64 // identity-transform hashes after moves 0..min(K,len)-1
	final    int64
}

// processRecord runs one record through parse, admission, and replay in
// complete isolation: no shared mutable state, pure inputs to a pure
// result. Safe to call concurrently from many goroutines.
func processRecord(text string, cfg Config) workerResult {
	raw := record.ParseSGF(text)
	if len(raw.Fields) == 0 && len(raw.Moves) == 0 {
		return workerResult{kind: kindParseError, reason: "no recognizable record content"}
	}

	admitted, err := record.Admit(raw)
	if err != nil {
		var re *bgoerr.RecordError
		if errors.As(err, &re) {
			return workerResult{kind: kindImportRejected, reason: re.Reason}
		}
		return workerResult{kind: kindParseError, reason: err.Error()}
	}

	moves := make([]coord.Cart, len(admitted.Moves))
	for i, m := range admitted.Moves {
		c := coord.ParseAlpha(m).ToCart()
		if !c.IsValid() {
			return workerResult{kind: kindInvalidMove, reason: fmt.Sprintf("unparseable move token %q", m)}
		}
		moves[i] = c
	}

	board := rules.NewBoard()
	var perPly []int64
	for i, c := range moves {
		if !board.PlayMove(c) {
			return workerResult{kind: kindInvalidMove, reason: fmt.Sprintf("move %d (%s): %s", i, admitted.Moves[i], board.WhyInvalid())}
		}
		if i < cfg.PlyDepth {
			black, white := board.Stones()
			perPly = append(perPly, hasher.Fingerprint(hasher.Stones{Black: black, White: white}, coord.Identity))
		}
	}

	black, white := board.Stones()
	final := hasher.Fingerprint(hasher.Stones{Black: black, White: white}, coord.Identity)

	return workerResult{kind: kindSuccess, admitted: admitted, perPly: perPly, final: final}
}
