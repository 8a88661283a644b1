// Package coord implements the two coordinate spellings used for 19x19 board
// points (Alpha and Cart), their neighbor table, and the eight-element
// dihedral symmetry group that acts on them.
package coord

import "fmt"

// BoardSize is the fixed edge length of the board this package operates on.
const BoardSize = 19

// center is the board's center point, (9,9), the fixed point of every
// symmetry transform.
const center = 9

// Cart is a coordinate expressed as two integers in 0..18. A Cart with
// either field outside that range is invalid and must not be dereferenced
// for board access.
type Cart struct {
	X, Y int
}

// InvalidCart is the explicit "invalid" sentinel returned by conversions
// that fail, rather than a panic or error value.
var InvalidCart = Cart{X: -1, Y: -1}

// IsValid reports whether c's fields are both in 0..18.
func (c Cart) IsValid() bool {
	return c.X >= 0 && c.X <= 18 && c.Y >= 0 && c.Y <= 18
}

// Index returns the flat 0..360 index of c, used to key the Zobrist table.
// Only valid for a valid Cart.
func (c Cart) Index() int {
	return c.Y*BoardSize + c.X
}

// Alpha is a coordinate expressed as two characters, each in 'a'..'s'. The
// pair "tt" is used by some game records as a pass sentinel and is not a
// valid coordinate.
type Alpha struct {
	X, Y byte
}

// InvalidAlpha is the explicit "invalid" sentinel for Alpha conversions.
var InvalidAlpha = Alpha{}

// IsValid reports whether a's fields are both in 'a'..'s'.
func (a Alpha) IsValid() bool {
	return a.X >= 'a' && a.X <= 's' && a.Y >= 'a' && a.Y <= 's'
}

// IsPass reports whether a is the "tt" pass sentinel.
func (a Alpha) IsPass() bool {
	return a.X == 't' && a.Y == 't'
}

// String returns the two-character lowercase spelling of a.
func (a Alpha) String() string {
	if a.X == 0 || a.Y == 0 {
		return ""
	}
	return string([]byte{a.X, a.Y})
}

// ParseAlpha decodes a two-character token (case-insensitive) into an Alpha.
// Tokens that aren't exactly two ASCII letters yield InvalidAlpha.
func ParseAlpha(token string) Alpha {
	if len(token) != 2 {
		return InvalidAlpha
	}
	x := lower(token[0])
	y := lower(token[1])
	if x < 'a' || x > 'z' || y < 'a' || y > 'z' {
		return InvalidAlpha
	}
	return Alpha{X: x, Y: y}
}

func lower(b byte) byte {
	if b >= 'A' && b <= 'Z' {
		return b - 'A' + 'a'
	}
	return b
}

// ToCart converts a to its Cart equivalent. Invalid input (including the
// "tt" pass sentinel) yields InvalidCart.
func (a Alpha) ToCart() Cart {
	if !a.IsValid() {
		return InvalidCart
	}
	return Cart{X: int(a.X) - 97, Y: int(a.Y) - 97}
}

// ToAlpha converts c to its Alpha equivalent. Invalid input yields
// InvalidAlpha.
func (c Cart) ToAlpha() Alpha {
	if !c.IsValid() {
		return InvalidAlpha
	}
	return Alpha{X: byte(c.X) + 97, Y: byte(c.Y) + 97}
}

// String returns the Cart as "(x,y)", or "-" if invalid.
func (c Cart) String() string {
	if !c.IsValid() {
		return "-"
	}
	return fmt.Sprintf("(%d,%d)", c.X, c.Y)
}
