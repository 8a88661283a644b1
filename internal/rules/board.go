// Package rules implements the Go move legality engine: board state, group
// and liberty discovery, occupation/suicide/simple-ko legality, and replay
// of a move list from the empty board.
package rules

import "github.com/bgoatlas/bgoatlas/internal/coord"

// Color is the content of one board cell.
type Color int

const (
	None Color = iota
	Black
	White
)

// Opponent returns the other playing color. Calling it on None is a
// programming error and returns None.
func (c Color) Opponent() Color {
	switch c {
	case Black:
		return White
	case White:
		return Black
	default:
		return None
	}
}

// Board is a 19x19 Go position together with enough history to enforce
// simple ko. Zero value is a ready-to-use empty board.
type Board struct {
	cells      [361]Color
	occupied   map[coord.Cart]struct{}
	prevCells  *[361]Color
	moves      []coord.Cart
	whyInvalid string
}

// NewBoard returns an empty board ready for play.
func NewBoard() *Board {
	return &Board{occupied: make(map[coord.Cart]struct{})}
}

// ColorToPlay returns the color to move: Black if an even number of moves
// have been played so far, else White.
func (b *Board) ColorToPlay() Color {
	if len(b.moves)%2 == 0 {
		return Black
	}
	return White
}

// At returns the color at c. c must be a valid Cart.
func (b *Board) At(c coord.Cart) Color {
	return b.cells[c.Index()]
}

// MoveList returns the moves successfully played so far, in order.
func (b *Board) MoveList() []coord.Cart {
	return b.moves
}

// WhyInvalid returns the reason the most recent PlayMove call was rejected,
// or "" if the last call succeeded (or none has been made yet).
func (b *Board) WhyInvalid() string {
	return b.whyInvalid
}

// Stones returns the identity-frame black and white stone lists, suitable
// for passing to the hasher.
func (b *Board) Stones() (black, white []coord.Cart) {
	for y := 0; y < coord.BoardSize; y++ {
		for x := 0; x < coord.BoardSize; x++ {
			c := coord.Cart{X: x, Y: y}
			switch b.cells[c.Index()] {
			case Black:
				black = append(black, c)
			case White:
				white = append(white, c)
			}
		}
	}
	return black, white
}

func (b *Board) snapshot() [361]Color {
	return b.cells
}

func (b *Board) reject(reason string) bool {
	b.whyInvalid = reason
	return false
}

// group is one connected same-color chain of stones and its liberties.
type group struct {
	color     Color
	stones    []coord.Cart
	liberties int
}

// findGroups performs one BFS pass over the occupied set, returning a group
// per connected component.
func (b *Board) findGroups() []group {
	visited := make(map[coord.Cart]bool, len(b.occupied))
	var groups []group
	for c := range b.occupied {
		if visited[c] {
			continue
		}
		color := b.cells[c.Index()]
		stones := []coord.Cart{c}
		visited[c] = true
		libSeen := make(map[coord.Cart]bool)
		queue := []coord.Cart{c}
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			for _, nb := range coord.Neighbors(cur) {
				switch b.cells[nb.Index()] {
				case None:
					libSeen[nb] = true
				case color:
					if !visited[nb] {
						visited[nb] = true
						stones = append(stones, nb)
						queue = append(queue, nb)
					}
				}
			}
		}
		groups = append(groups, group{color: color, stones: stones, liberties: len(libSeen)})
	}
	return groups
}

// PlayMove attempts to play a stone of the current color at c, following
// the occupation/suicide/simple-ko legality procedure. On rejection the
// board is left exactly as it was beforehand and WhyInvalid reports why.
func (b *Board) PlayMove(c coord.Cart) bool {
	b.whyInvalid = ""
	if !c.IsValid() {
		return b.reject("invalid coordinate")
	}
	if b.cells[c.Index()] != None {
		return b.reject("occupied")
	}

	if b.occupied == nil {
		b.occupied = make(map[coord.Cart]struct{})
	}

	before := b.snapshot()
	current := b.ColorToPlay()

	b.cells[c.Index()] = current
	b.occupied[c] = struct{}{}

	groups := b.findGroups()

	var capturedSame, capturedOpp []group
	for _, g := range groups {
		if g.liberties > 0 {
			continue
		}
		if g.color == current {
			capturedSame = append(capturedSame, g)
		} else {
			capturedOpp = append(capturedOpp, g)
		}
	}

	if len(capturedSame) > 0 && len(capturedOpp) == 0 {
		b.cells = before
		delete(b.occupied, c)
		return b.reject("self capture")
	}

	var removed []coord.Cart
	for _, g := range capturedOpp {
		for _, s := range g.stones {
			b.cells[s.Index()] = None
			delete(b.occupied, s)
			removed = append(removed, s)
		}
	}

	if b.prevCells != nil && b.cells == *b.prevCells {
		b.cells = before
		delete(b.occupied, c)
		for _, s := range removed {
			b.occupied[s] = struct{}{}
		}
		return b.reject("ko")
	}

	prev := before
	b.prevCells = &prev
	b.moves = append(b.moves, c)
	return true
}

// LoadMoves resets the board to empty and replays seq in order. It returns
// false on the first illegal move, with WhyInvalid describing the reason;
// the board state after a failed replay holds exactly the moves played
// before the failure and must be treated as invalid by the caller.
func (b *Board) LoadMoves(seq []coord.Cart) bool {
	*b = *NewBoard()
	for _, c := range seq {
		if !b.PlayMove(c) {
			return false
		}
	}
	return true
}
