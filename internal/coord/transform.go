package coord

// Transform is one of the eight elements of the dihedral symmetry group
// acting on a 19x19 board centered at (9,9).
type Transform int

// The eight transforms, indexed exactly as the symmetry table requires.
const (
	Identity Transform = iota
	FlipLR
	FlipTB
	Rotate90CCW
	Rotate180
	Rotate270CCW
	Transpose
	AntiTranspose
	numTransforms
)

// Inverse maps each transform to its inverse.
var Inverse = [8]Transform{0, 1, 2, 5, 4, 3, 6, 7}

// transformFuncs holds one function per transform, applied to a valid Cart.
var transformFuncs = [8]func(Cart) Cart{
	func(c Cart) Cart { return c },                                // identity
	func(c Cart) Cart { return Cart{X: 18 - c.X, Y: c.Y} },         // flip LR
	func(c Cart) Cart { return Cart{X: c.X, Y: 18 - c.Y} },         // flip TB
	func(c Cart) Cart { return Cart{X: c.Y, Y: 18 - c.X} },         // rotate 90 CCW
	func(c Cart) Cart { return Cart{X: 18 - c.X, Y: 18 - c.Y} },    // rotate 180
	func(c Cart) Cart { return Cart{X: 18 - c.Y, Y: c.X} },         // rotate 270 CCW
	func(c Cart) Cart { return Cart{X: c.Y, Y: c.X} },              // transpose
	func(c Cart) Cart { return Cart{X: 18 - c.Y, Y: 18 - c.X} },    // anti-transpose
}

// Apply returns Tn(c) if invert is false, or T_inv[n](c) if invert is true.
// Invalid input is returned unchanged (callers must validate beforehand).
func Apply(c Cart, n Transform, invert bool) Cart {
	if !c.IsValid() {
		return c
	}
	t := n
	if invert {
		t = Inverse[n]
	}
	return transformFuncs[t](c)
}

// WhichTransformToUpperRight returns the transform that maps c into the
// quadrant x >= 9, y <= 9, per the fixed edge/center rules.
func WhichTransformToUpperRight(c Cart) Transform {
	switch {
	case c.X == 9 && c.Y == 9:
		return Identity
	case c.X == 9 && c.Y < 9:
		return Rotate270CCW
	case c.X == 9 && c.Y > 9:
		return Rotate90CCW
	case c.X < 9 && c.Y == 9:
		return FlipLR
	case c.X > 9 && c.Y == 9:
		return Identity
	case c.X < 9 && c.Y < 9:
		return FlipLR
	case c.X < 9 && c.Y > 9:
		return Rotate180
	case c.X > 9 && c.Y < 9:
		return Identity
	default: // x>9, y>9
		return FlipTB
	}
}

// BiasCoordForMerge picks the preferred representative between two
// identity-frame coordinates known to be equivalent under residual
// transform n. n must be in {1,2,4,5,6,7}; n 0 and 3 are not valid residual
// merge transforms and the caller must reject them before calling this.
func BiasCoordForMerge(a, b Cart, n Transform) Cart {
	switch n {
	case FlipLR, Rotate180, Transpose:
		if a.X >= b.X {
			return a
		}
		return b
	case FlipTB, Rotate270CCW, AntiTranspose:
		if a.Y >= b.Y {
			return a
		}
		return b
	default:
		// Identity (0) and Rotate90CCW (3) are invariant-error transforms
		// for residual merge; never reached when callers validate first.
		return a
	}
}
