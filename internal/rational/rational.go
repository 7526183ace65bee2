// Package rational provides exact rational-number value math.
//
// Values are immutable and always normalized under the storage rules:
//  1. The denominator is never zero.
//  2. The denominator carries the sign.
//  3. The numerator is never negative.
//  4. gcd(numerator, |denominator|) == 1 unless the numerator is zero.
package rational

import (
	"errors"
	"fmt"
)

var (
	// ErrZeroDenominator is returned when constructing with denominator 0.
	ErrZeroDenominator = errors.New("rational: zero denominator")

	// ErrDivideByZero is returned when dividing by a zero value.
	ErrDivideByZero = errors.New("rational: divide by zero")
)

// Rational is an immutable rational number. The zero value is 0/1.
type Rational struct {
	num int64 // never negative
	den int64 // carries the sign, never zero
}

// Zero returns the canonical zero value.
func Zero() Rational {
	return Rational{num: 0, den: 1}
}

// New creates a normalized rational from any numerator and nonzero
// denominator.
func New(numerator, denominator int64) (Rational, error) {
	if denominator == 0 {
		return Rational{}, ErrZeroDenominator
	}
	return reduce(numerator, denominator), nil
}

// reduce normalizes a fraction with a nonzero denominator into storage form.
func reduce(numerator, denominator int64) Rational {
	if numerator == 0 {
		return Zero()
	}
	sign := int64(1)
	if (numerator < 0) != (denominator < 0) {
		sign = -1
	}
	n := abs(numerator)
	d := abs(denominator)
	g := gcd(n, d)
	return Rational{num: n / g, den: sign * (d / g)}
}

// Num returns the numerator (always nonnegative).
func (r Rational) Num() int64 { return r.normalized().num }

// Den returns the signed denominator.
func (r Rational) Den() int64 { return r.normalized().den }

// normalized maps the uninitialized zero struct onto the canonical zero.
func (r Rational) normalized() Rational {
	if r.den == 0 {
		return Zero()
	}
	return r
}

// Add returns r + o.
func (r Rational) Add(o Rational) Rational {
	r, o = r.normalized(), o.normalized()
	return reduce(r.num*o.den+o.num*r.den, r.den*o.den)
}

// Sub returns r - o.
func (r Rational) Sub(o Rational) Rational {
	r, o = r.normalized(), o.normalized()
	return reduce(r.num*o.den-o.num*r.den, r.den*o.den)
}

// Mul returns r * o.
func (r Rational) Mul(o Rational) Rational {
	r, o = r.normalized(), o.normalized()
	return reduce(r.num*o.num, r.den*o.den)
}

// Div returns r / o, or ErrDivideByZero when o is zero.
func (r Rational) Div(o Rational) (Rational, error) {
	r, o = r.normalized(), o.normalized()
	if o.num == 0 {
		return Rational{}, ErrDivideByZero
	}
	return reduce(r.num*o.den, r.den*o.num), nil
}

// Cmp compares r and o, returning -1, 0, or +1.
func (r Rational) Cmp(o Rational) int {
	r, o = r.normalized(), o.normalized()
	if r == o {
		return 0
	}
	rs, os := signum(r), signum(o)
	if rs != os {
		if rs < os {
			return -1
		}
		return +1
	}
	// Same sign: cross-multiply on absolute denominators; the shared sign
	// decides the direction.
	v1 := r.num * abs(o.den) * int64(rs)
	v2 := o.num * abs(r.den) * int64(os)
	if v1 < v2 {
		return -1
	}
	return +1
}

// Integer returns the integer part of r as a rational.
func (r Rational) Integer() Rational {
	r = r.normalized()
	return reduce(r.num/r.den, 1)
}

// Fraction returns the fractional part of r, carrying r's sign.
func (r Rational) Fraction() Rational {
	r = r.normalized()
	return reduce(r.num%abs(r.den), r.den)
}

// String formats r as an explicitly signed fraction, e.g. "[+3/4]", "[-2]".
func (r Rational) String() string {
	r = r.normalized()
	if abs(r.den) == 1 {
		return fmt.Sprintf("[%c%d]", signChar(r), r.num)
	}
	return fmt.Sprintf("[%c%d/%d]", signChar(r), r.num, abs(r.den))
}

// Proper formats r as a signed integer-and-fraction, e.g. "[-2 1/3]".
func (r Rational) Proper() string {
	r = r.normalized()
	in := r.Integer()
	fr := r.Fraction()
	switch {
	case in.num != 0 && fr.num != 0:
		return fmt.Sprintf("[%c%d %d/%d]", signChar(r), in.num, fr.num, abs(fr.den))
	case in.num != 0:
		return fmt.Sprintf("[%c%d]", signChar(r), in.num)
	case fr.num != 0:
		return fmt.Sprintf("[%c%d/%d]", signChar(r), r.num, abs(r.den))
	default:
		return "[0]"
	}
}

func signChar(r Rational) byte {
	if r.den < 0 {
		return '-'
	}
	return '+'
}

func signum(r Rational) int {
	if r.num == 0 {
		return 0
	}
	if r.den < 0 {
		return -1
	}
	return +1
}

func abs(x int64) int64 {
	if x < 0 {
		return -x
	}
	return x
}

func gcd(x, y int64) int64 {
	for y != 0 {
		x, y = y, x%y
	}
	return x
}
