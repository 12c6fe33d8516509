package vmvalue

import (
	"math"
	"strconv"
)

// Complex is a heap value object holding a pair of reals. Arithmetic
// uses value semantics; only the arena boundary allocates.
type Complex struct {
	A, B float64 // real, imaginary
}

// Add is componentwise.
func (c Complex) Add(o Complex) Complex {
	return Complex{A: c.A + o.A, B: c.B + o.B}
}

// Sub is componentwise.
func (c Complex) Sub(o Complex) Complex {
	return Complex{A: c.A - o.A, B: c.B - o.B}
}

// Mul follows (a+bi)(c+di) = (ac-bd) + (ad+bc)i.
func (c Complex) Mul(o Complex) Complex {
	return Complex{
		A: c.A*o.A - c.B*o.B,
		B: c.A*o.B + c.B*o.A,
	}
}

// Div multiplies numerator and denominator by the conjugate of the
// denominator. Division by a zero-normalised complex follows standard
// IEEE-754 behaviour (components become +/-Inf or NaN).
func (c Complex) Div(o Complex) Complex {
	denom := o.A*o.A + o.B*o.B
	return Complex{
		A: (c.A*o.A + c.B*o.B) / denom,
		B: (c.B*o.A - c.A*o.B) / denom,
	}
}

// Conjugate flips the sign of the imaginary component.
func (c Complex) Conjugate() Complex {
	return Complex{A: c.A, B: -c.B}
}

// String prints as "a + bi" / "a - bi" using the real/imaginary
// formatting rules of FormatReal/FormatImaginary.
func (c Complex) String() string {
	b := c.B
	sign := "+"
	if math.Signbit(b) && !math.IsNaN(b) {
		sign = "-"
		b = -b
	}
	return FormatReal(c.A) + " " + sign + " " + formatImaginaryMagnitude(b) + "i"
}

// FormatReal renders a double per the sign-separated decimal rule: +Inf
// prints as "infinity", -Inf as "- infinity", NaN as "undefined".
func FormatReal(r float64) string {
	switch {
	case math.IsNaN(r):
		return "undefined"
	case math.IsInf(r, 1):
		return "infinity"
	case math.IsInf(r, -1):
		return "- infinity"
	default:
		return strconv.FormatFloat(r, 'g', -1, 64)
	}
}

// FormatImaginary renders an imaginary component, appending "i" and
// using an explicit "- " prefix for negatives, matching FormatReal's
// sentinel handling.
func FormatImaginary(r float64) string {
	switch {
	case math.IsNaN(r):
		return "undefined"
	case math.IsInf(r, 1):
		return "infinity" + "i"
	case math.IsInf(r, -1):
		return "- " + "infinity" + "i"
	default:
		if math.Signbit(r) {
			return "- " + strconv.FormatFloat(-r, 'g', -1, 64) + "i"
		}
		return strconv.FormatFloat(r, 'g', -1, 64) + "i"
	}
}

// formatImaginaryMagnitude renders the non-negative magnitude used
// inside Complex.String, where the sign is already factored into the
// infix operator.
func formatImaginaryMagnitude(mag float64) string {
	switch {
	case math.IsNaN(mag):
		return "undefined"
	case math.IsInf(mag, 1):
		return "infinity"
	default:
		return strconv.FormatFloat(mag, 'g', -1, 64)
	}
}
