package coord

import "testing"

func TestAlphaCartRoundTrip(t *testing.T) {
	cases := []struct {
		alpha string
		cart  Cart
	}{
		{"aa", Cart{0, 0}},
		{"ss", Cart{18, 18}},
		{"jj", Cart{9, 9}},
		{"pd", Cart{15, 3}},
	}
	for _, tc := range cases {
		t.Run(tc.alpha, func(t *testing.T) {
			a := ParseAlpha(tc.alpha)
			if !a.IsValid() {
				t.Fatalf("ParseAlpha(%q) invalid", tc.alpha)
			}
			c := a.ToCart()
			if c != tc.cart {
				t.Fatalf("ToCart() = %+v, want %+v", c, tc.cart)
			}
			back := c.ToAlpha()
			if back.String() != tc.alpha {
				t.Fatalf("round trip = %q, want %q", back.String(), tc.alpha)
			}
		})
	}
}

func TestParseAlphaInvalid(t *testing.T) {
	for _, s := range []string{"", "a", "abc", "t!", "AA"} {
		a := ParseAlpha(s)
		if s == "AA" {
			if !a.IsValid() {
				t.Fatalf("ParseAlpha(%q) should be valid (case-insensitive)", s)
			}
			continue
		}
		if a.IsValid() {
			t.Fatalf("ParseAlpha(%q) should be invalid", s)
		}
	}
}

func TestPassSentinel(t *testing.T) {
	a := ParseAlpha("tt")
	if !a.IsPass() {
		t.Fatalf("tt should be pass sentinel")
	}
	if a.ToCart().IsValid() {
		t.Fatalf("tt should not convert to a valid Cart")
	}
}

func TestTransformInverse(t *testing.T) {
	for x := 0; x < BoardSize; x += 3 {
		for y := 0; y < BoardSize; y += 3 {
			c := Cart{X: x, Y: y}
			for n := Transform(0); n < numTransforms; n++ {
				got := Apply(Apply(c, n, false), n, true)
				if got != c {
					t.Fatalf("n=%d: T_inv(T(%v)) = %v, want %v", n, c, got, c)
				}
			}
		}
	}
}

func TestIdentityIsNoop(t *testing.T) {
	c := Cart{X: 3, Y: 14}
	if Apply(c, Identity, false) != c {
		t.Fatalf("identity transform must be a no-op")
	}
}

func TestTengenFixedPoint(t *testing.T) {
	tengen := Cart{X: 9, Y: 9}
	for n := Transform(0); n < numTransforms; n++ {
		if got := Apply(tengen, n, false); got != tengen {
			t.Fatalf("n=%d: tengen should be a fixed point, got %v", n, got)
		}
	}
}

func TestWhichTransformToUpperRight(t *testing.T) {
	cases := []struct {
		c    Cart
		want Transform
	}{
		{Cart{9, 9}, Identity},
		{Cart{15, 3}, Identity},  // x>9,y<9
		{Cart{15, 15}, FlipTB},   // x>9,y>9
		{Cart{3, 3}, FlipLR},     // x<9,y<9
		{Cart{3, 15}, Rotate180}, // x<9,y>9
		{Cart{3, 9}, FlipLR},     // left edge
		{Cart{15, 9}, Identity},  // right edge
		{Cart{9, 3}, Rotate270CCW},
		{Cart{9, 15}, Rotate90CCW},
	}
	for _, tc := range cases {
		got := WhichTransformToUpperRight(tc.c)
		if got != tc.want {
			t.Errorf("WhichTransformToUpperRight(%v) = %d, want %d", tc.c, got, tc.want)
		}
		moved := Apply(tc.c, got, false)
		if moved.X < 9 || moved.Y > 9 {
			t.Errorf("WhichTransformToUpperRight(%v) -> %v not in upper-right quadrant", tc.c, moved)
		}
	}
}

func TestNeighborsClippedAtEdges(t *testing.T) {
	corner := Cart{0, 0}
	if len(Neighbors(corner)) != 2 {
		t.Fatalf("corner should have 2 neighbors, got %d", len(Neighbors(corner)))
	}
	edge := Cart{0, 5}
	if len(Neighbors(edge)) != 3 {
		t.Fatalf("edge should have 3 neighbors, got %d", len(Neighbors(edge)))
	}
	middle := Cart{9, 9}
	if len(Neighbors(middle)) != 4 {
		t.Fatalf("middle should have 4 neighbors, got %d", len(Neighbors(middle)))
	}
}

func TestBiasCoordForMerge(t *testing.T) {
	a := Cart{X: 3, Y: 5}
	b := Cart{X: 10, Y: 2}
	if got := BiasCoordForMerge(a, b, FlipLR); got != b {
		t.Fatalf("FlipLR should prefer larger x, got %v", got)
	}
	if got := BiasCoordForMerge(a, b, FlipTB); got != a {
		t.Fatalf("FlipTB should prefer larger y, got %v", got)
	}
}
