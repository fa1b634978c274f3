package quiz

import (
	"fmt"

	"telegram-economy-bot/internal/game/outcome"
)

// Problem is a generated arithmetic expression and its value.
type Problem struct {
	Expression string
	Answer     int64
}

// Level thresholds of the generator tiers.
const (
	MediumLevel = 10
	HardLevel   = 30
)

// Generate returns a problem whose difficulty follows level. Every answer
// is a non-negative integer.
func Generate(src outcome.Source, level int) Problem {
	switch {
	case level < MediumLevel:
		return easy(src)
	case level < HardLevel:
		return medium(src)
	default:
		return hard(src)
	}
}

func between(src outcome.Source, lo, hi int64) int64 {
	return lo + int64(src.Intn(int(hi-lo+1)))
}

func easy(src outcome.Source) Problem {
	a := between(src, 1, 20)
	b := between(src, 1, 20)
	if src.Intn(2) == 0 {
		return Problem{fmt.Sprintf("%d + %d", a, b), a + b}
	}
	x, y := max(a, b), min(a, b)
	return Problem{fmt.Sprintf("%d - %d", x, y), x - y}
}

func medium(src outcome.Source) Problem {
	switch src.Intn(3) {
	case 0:
		a := between(src, 2, 11)
		b := between(src, 2, 11)
		c := between(src, 1, 20)
		return Problem{fmt.Sprintf("%d × %d + %d", a, b, c), a*b + c}
	case 1:
		a := between(src, 1, 20)
		b := between(src, 2, 11)
		c := between(src, 2, 6)
		return Problem{fmt.Sprintf("%d + %d × %d", a, b, c), a + b*c}
	default:
		a := between(src, 5, 34)
		b := between(src, 1, 20)
		c := between(src, 1, 15)
		if c > a+b {
			c = (a + b) / 2
		}
		return Problem{fmt.Sprintf("(%d + %d) - %d", a, b, c), a + b - c}
	}
}

func hard(src outcome.Source) Problem {
	switch src.Intn(4) {
	case 0:
		a := between(src, 2, 11)
		b := between(src, 2, 11)
		c := between(src, 2, 11)
		d := between(src, 2, 11)
		return Problem{fmt.Sprintf("(%d × %d) + (%d × %d)", a, b, c, d), a*b + c*d}
	case 1:
		a := between(src, 1, 20)
		b := between(src, 1, 20)
		c := between(src, 2, 11)
		return Problem{fmt.Sprintf("(%d + %d) × %d", a, b, c), (a + b) * c}
	case 2:
		a := between(src, 3, 12)
		b := between(src, 3, 12)
		c := between(src, 1, 10)
		d := between(src, 1, 10)
		if c+d > a*b-1 {
			c = 1
			d = min(5, a*b-2)
		}
		return Problem{fmt.Sprintf("(%d × %d) - (%d + %d)", a, b, c, d), a*b - (c + d)}
	default:
		c := between(src, 2, 10)
		q := between(src, 2, 11)
		d := between(src, 1, 20)
		return Problem{fmt.Sprintf("(%d ÷ %d) + %d", c*q, c, d), q + d}
	}
}
