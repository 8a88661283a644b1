package coord

// neighborTable holds the 4-connected neighbors of every board point,
// clipped to the board edge, computed once at package init.
var neighborTable [361][]Cart

func init() {
	for y := 0; y < BoardSize; y++ {
		for x := 0; x < BoardSize; x++ {
			c := Cart{X: x, Y: y}
			var ns []Cart
			if x > 0 {
				ns = append(ns, Cart{X: x - 1, Y: y})
			}
			if x < BoardSize-1 {
				ns = append(ns, Cart{X: x + 1, Y: y})
			}
			if y > 0 {
				ns = append(ns, Cart{X: x, Y: y - 1})
			}
			if y < BoardSize-1 {
				ns = append(ns, Cart{X: x, Y: y + 1})
			}
			neighborTable[c.Index()] = ns
		}
	}
}

// Neighbors returns the precomputed 4-connected neighbors of c, clipped to
// the board. c must be a valid Cart: an invalid one either panics or
// returns the entry of whichever point shares its flat index.
func Neighbors(c Cart) []Cart {
	return neighborTable[c.Index()]
}
