// Package query implements the symmetry-aware position lookup: fingerprint
// fan-out across the eight dihedral transforms, fold to the identity frame,
// residual-symmetry merge, and ranking; plus game retrieval by position.
package query

import (
	"context"
	"fmt"
	"sort"

	"github.com/bgoatlas/bgoatlas/internal/bgoerr"
	"github.com/bgoatlas/bgoatlas/internal/coord"
	"github.com/bgoatlas/bgoatlas/internal/hasher"
	"github.com/bgoatlas/bgoatlas/internal/store"
)

// MoveCount is one ranked entry in a NextMove result.
type MoveCount struct {
	Move  string
	Count int
}

// Result is the outcome of a NextMove query.
type Result struct {
	NextMove   []MoveCount
	TotalGames int
}

// NextMove looks up the distribution of moves played next from the given
// stone configuration, across all eight symmetries, folded to the identity
// frame and merged by the position's residual self-symmetry.
func NextMove(ctx context.Context, s store.Store, stones hasher.Stones, yearMin, yearMax *int) (Result, error) {
	h := hasher.FanOut(stones)

	// repTransform holds exactly one transform per distinct hash value: the
	// first n that produced it. A hash shared by several transforms (a
	// symmetry-degenerate position) is queried once, and folded once,
	// through that single representative — residual self-symmetry is
	// handled entirely by the Step-4 merge below, not by folding through
	// every transform that shares the hash.
	repTransform := make(map[int64]coord.Transform)
	var distinct []int64
	for n := coord.Transform(0); n < 8; n++ {
		if _, seen := repTransform[h[n]]; !seen {
			repTransform[h[n]] = n
			distinct = append(distinct, h[n])
		}
	}

	rows, err := s.LookupPositions(ctx, distinct, yearMin, yearMax)
	if err != nil {
		return Result{}, err
	}

	aggregate := make(map[coord.Cart]int)
	for _, row := range rows {
		n, ok := repTransform[row.BoardHash]
		if !ok {
			continue
		}
		move := coord.ParseAlpha(row.NextMove).ToCart()
		if !move.IsValid() {
			return Result{}, fmt.Errorf("store returned invalid move %q: %w", row.NextMove, bgoerr.ErrInvariant)
		}
		identityMove := coord.Apply(move, n, true)
		aggregate[identityMove] += row.Count
	}

	selfSym := residualSymmetryGroup(h)

	switch {
	case len(selfSym) == 0:
		// no merge needed
	case len(selfSym) == 7:
		folded := make(map[coord.Cart]int)
		for m, count := range aggregate {
			t := coord.WhichTransformToUpperRight(m)
			um := coord.Apply(m, t, false)
			folded[um] += count
		}
		aggregate = folded
		aggregate, err = mergeResidual(aggregate, coord.AntiTranspose)
		if err != nil {
			return Result{}, err
		}
	default:
		for _, n := range selfSym {
			aggregate, err = mergeResidual(aggregate, n)
			if err != nil {
				return Result{}, err
			}
		}
	}

	result := Result{TotalGames: 0}
	for m, count := range aggregate {
		result.NextMove = append(result.NextMove, MoveCount{Move: m.ToAlpha().String(), Count: count})
		result.TotalGames += count
	}
	sort.Slice(result.NextMove, func(i, j int) bool {
		if result.NextMove[i].Count != result.NextMove[j].Count {
			return result.NextMove[i].Count > result.NextMove[j].Count
		}
		return result.NextMove[i].Move < result.NextMove[j].Move
	})
	return result, nil
}

// residualSymmetryGroup returns S = { n > 0 : H[n] == H[0] }, in ascending
// order.
func residualSymmetryGroup(h [8]int64) []coord.Transform {
	var s []coord.Transform
	for n := coord.Transform(1); n < 8; n++ {
		if h[n] == h[0] {
			s = append(s, n)
		}
	}
	return s
}

// mergeResidual folds aggregate by the residual symmetry transform n,
// combining moves that coincide under it. n must not be Identity or
// Rotate90CCW: those appearing in a self-symmetry group signal a
// corrupted or malformed position and are treated as an invariant
// violation rather than silently mis-merged.
func mergeResidual(aggregate map[coord.Cart]int, n coord.Transform) (map[coord.Cart]int, error) {
	if n == coord.Identity || n == coord.Rotate90CCW {
		return nil, fmt.Errorf("transform %d in self-symmetry group has no merge-bias rule: %w", n, bgoerr.ErrInvariant)
	}

	out := make(map[coord.Cart]int, len(aggregate))
	paired := make(map[coord.Cart]bool)

	var moves []coord.Cart
	for m := range aggregate {
		moves = append(moves, m)
	}
	sort.Slice(moves, func(i, j int) bool {
		if moves[i].X != moves[j].X {
			return moves[i].X < moves[j].X
		}
		return moves[i].Y < moves[j].Y
	})

	for _, m := range moves {
		if paired[m] {
			continue
		}
		mPrime := coord.Apply(m, n, true)
		if m == mPrime {
			out[m] += aggregate[m]
			paired[m] = true
			continue
		}
		countPrime, hasPrime := aggregate[mPrime]
		if !hasPrime {
			countPrime = 0
		}
		winner := coord.BiasCoordForMerge(m, mPrime, n)
		out[winner] += aggregate[m] + countPrime
		paired[m] = true
		if hasPrime {
			paired[mPrime] = true
		}
	}
	return out, nil
}

// GameResult is one row of a GamesForHashes result, with the rotation index
// identifying which of the caller's 8 hashes this row matched.
type GameResult struct {
	store.GameRow
	Rotation int
}

// GamesForHashes looks up games reaching any of the 8 caller-supplied
// hashes, tagging each returned row with the index into hashes that it
// matched so a renderer can unrotate stones for display.
func GamesForHashes(ctx context.Context, s store.Store, hashes [8]int64, limit int) ([]GameResult, error) {
	rows, err := s.GamesForHashes(ctx, hashes[:], limit)
	if err != nil {
		return nil, err
	}
	out := make([]GameResult, 0, len(rows))
	for _, r := range rows {
		rotation := -1
		for i, h := range hashes {
			if h == r.BoardHash {
				rotation = i
				break
			}
		}
		out = append(out, GameResult{GameRow: r, Rotation: rotation})
	}
	return out, nil
}
