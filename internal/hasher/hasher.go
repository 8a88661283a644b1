// Package hasher computes the Zobrist-style per-ply position fingerprint
// used to identify a board position across games and across the eight
// dihedral symmetries.
package hasher

import "github.com/bgoatlas/bgoatlas/internal/coord"

// Z holds one fixed 64-bit value per board cell, filled once at package
// init by a deterministic PRNG. It is a build-time constant: changing the
// seed invalidates every fingerprint ever stored.
var Z [361]uint64

// zobristSeed fixes the table's PRNG start state. A committed seed plays the
// same role as committing 361 literal numbers: both are fixed at build
// time and reproducible across every build of this program.
const zobristSeed uint64 = 0x9e3779b97f4a7c15

// xorshift64star is a small, fast, deterministic PRNG used only to fill Z.
type xorshift64star struct {
	state uint64
}

func (p *xorshift64star) next() uint64 {
	x := p.state
	x ^= x >> 12
	x ^= x << 25
	x ^= x >> 27
	p.state = x
	return x * 0x2545F4914F6CDD1D
}

func init() {
	p := &xorshift64star{state: zobristSeed}
	for i := range Z {
		Z[i] = p.next()
	}
}

// Stones is the minimal board view the Hasher needs: the set of occupied
// points per color, in identity-frame coordinates.
type Stones struct {
	Black []coord.Cart
	White []coord.Cart
}

// Fingerprint computes h(n): the signed 64-bit sum of Z[Tn(c)] over black
// stones minus the sum over white stones, using two's-complement wrap
// arithmetic throughout (Go's unsigned overflow semantics already do this;
// the result is reinterpreted as int64 at the boundary).
func Fingerprint(s Stones, n coord.Transform) int64 {
	var acc uint64
	for _, c := range s.Black {
		acc += Z[coord.Apply(c, n, false).Index()]
	}
	for _, c := range s.White {
		acc -= Z[coord.Apply(c, n, false).Index()]
	}
	return int64(acc)
}

// FanOut computes h(0)..h(7) for s, one per dihedral transform, in
// transform-index order.
func FanOut(s Stones) [8]int64 {
	var out [8]int64
	for n := coord.Transform(0); n < 8; n++ {
		out[n] = Fingerprint(s, n)
	}
	return out
}
