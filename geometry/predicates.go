// Package geometry holds the planar predicates and polygon relations used to
// validate site trees and to build constrained meshes.
//
// All the classification here is exact. Orientation and in-circle tests are
// first evaluated in floating point and only fall back to exact rational
// arithmetic when the floating result is too close to zero to be trusted, so
// boundary cases (a point exactly on a ring, two segments exactly collinear)
// are never decided by an epsilon.
package geometry

import (
	"math"
	"math/big"

	"github.com/paulmach/orb"
)

// Error bounds for the floating point filters, after Shewchuk's "Adaptive
// Precision Floating-Point Arithmetic and Fast Robust Geometric Predicates".
const (
	machineEpsilon   = 1.1102230246251565e-16 // 2^-53
	orientErrBound   = (3 + 16*machineEpsilon) * machineEpsilon
	inCircleErrBound = (10 + 96*machineEpsilon) * machineEpsilon
)

// Orient returns 1 if c lies to the left of the directed line a→b, -1 if it
// lies to the right, and 0 if the three points are collinear.
func Orient(a, b, c orb.Point) int {
	detLeft := (a[0] - c[0]) * (b[1] - c[1])
	detRight := (a[1] - c[1]) * (b[0] - c[0])
	det := detLeft - detRight

	var detSum float64
	switch {
	case detLeft > 0:
		if detRight <= 0 {
			return sign(det)
		}
		detSum = detLeft + detRight
	case detLeft < 0:
		if detRight >= 0 {
			return sign(det)
		}
		detSum = -detLeft - detRight
	default:
		return sign(det)
	}

	if math.Abs(det) >= orientErrBound*detSum {
		return sign(det)
	}
	return orientExact(a, b, c)
}

func orientExact(a, b, c orb.Point) int {
	ax, ay := rat(a[0]), rat(a[1])
	bx, by := rat(b[0]), rat(b[1])
	cx, cy := rat(c[0]), rat(c[1])

	acx := new(big.Rat).Sub(ax, cx)
	bcy := new(big.Rat).Sub(by, cy)
	acy := new(big.Rat).Sub(ay, cy)
	bcx := new(big.Rat).Sub(bx, cx)

	left := new(big.Rat).Mul(acx, bcy)
	right := new(big.Rat).Mul(acy, bcx)
	return left.Cmp(right)
}

// InCircle returns 1 if d lies strictly inside the circle through a, b and c,
// -1 if it lies strictly outside and 0 if the four points are cocircular. The
// triangle a, b, c must be counterclockwise.
func InCircle(a, b, c, d orb.Point) int {
	adx, ady := a[0]-d[0], a[1]-d[1]
	bdx, bdy := b[0]-d[0], b[1]-d[1]
	cdx, cdy := c[0]-d[0], c[1]-d[1]

	bdxcdy := bdx * cdy
	cdxbdy := cdx * bdy
	alift := adx*adx + ady*ady

	cdxady := cdx * ady
	adxcdy := adx * cdy
	blift := bdx*bdx + bdy*bdy

	adxbdy := adx * bdy
	bdxady := bdx * ady
	clift := cdx*cdx + cdy*cdy

	det := alift*(bdxcdy-cdxbdy) + blift*(cdxady-adxcdy) + clift*(adxbdy-bdxady)
	permanent := (math.Abs(bdxcdy)+math.Abs(cdxbdy))*alift +
		(math.Abs(cdxady)+math.Abs(adxcdy))*blift +
		(math.Abs(adxbdy)+math.Abs(bdxady))*clift

	if math.Abs(det) > inCircleErrBound*permanent {
		return sign(det)
	}
	return inCircleExact(a, b, c, d)
}

func inCircleExact(a, b, c, d orb.Point) int {
	dx, dy := rat(d[0]), rat(d[1])
	sub := func(p orb.Point) (*big.Rat, *big.Rat) {
		return new(big.Rat).Sub(rat(p[0]), dx), new(big.Rat).Sub(rat(p[1]), dy)
	}
	adx, ady := sub(a)
	bdx, bdy := sub(b)
	cdx, cdy := sub(c)

	lift := func(x, y *big.Rat) *big.Rat {
		return new(big.Rat).Add(new(big.Rat).Mul(x, x), new(big.Rat).Mul(y, y))
	}
	cross := func(x1, y1, x2, y2 *big.Rat) *big.Rat {
		return new(big.Rat).Sub(new(big.Rat).Mul(x1, y2), new(big.Rat).Mul(x2, y1))
	}

	det := new(big.Rat).Mul(lift(adx, ady), cross(bdx, bdy, cdx, cdy))
	det.Add(det, new(big.Rat).Mul(lift(bdx, bdy), cross(cdx, cdy, adx, ady)))
	det.Add(det, new(big.Rat).Mul(lift(cdx, cdy), cross(adx, ady, bdx, bdy)))
	return det.Sign()
}

func rat(f float64) *big.Rat {
	return new(big.Rat).SetFloat64(f)
}

func sign(f float64) int {
	switch {
	case f > 0:
		return 1
	case f < 0:
		return -1
	}
	return 0
}

// Often we want to treat a ring as a circular buffer. This gives the modular
// index given length n, but unlike the raw modulo operator, it only gives
// positive values.
func CircularIndex(i, n int) int {
	return (i%n + n) % n
}
