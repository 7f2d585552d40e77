package rxbuild

import (
	"strconv"
)

// Unbounded is a Quantifier.Max value that means "no upper limit".
const Unbounded = -1

// Strategy selects how a repeated node consumes input.
type Strategy uint8

const (
	Greedy Strategy = iota
	Lazy
	Possessive
)

func (s Strategy) valid() bool { return s <= Possessive }

func (s Strategy) String() string {
	switch s {
	case Greedy:
		return "Greedy"
	case Lazy:
		return "Lazy"
	case Possessive:
		return "Possessive"
	default:
		return "Strategy(" + strconv.Itoa(int(s)) + ")"
	}
}

// Quantifier describes how many times a node repeats and how it matches.
//
// The zero value is {0,0,Greedy}, which has no textual form;
// use One() to get the default "exactly once" quantifier.
type Quantifier struct {
	Min      int
	Max      int
	Strategy Strategy
}

// One returns the default quantifier: exactly one, greedy.
func One() Quantifier {
	return Quantifier{Min: 1, Max: 1, Strategy: Greedy}
}

// IsOne reports whether q renders to an empty suffix.
func (q Quantifier) IsOne() bool { return q.Min == 1 && q.Max == 1 }

func (q *Quantifier) SetMin(n int) error {
	if n < 0 {
		return newError(KindInvalidBound, "min should not be less than zero, got %d", n)
	}
	q.Min = n
	return nil
}

func (q *Quantifier) SetMax(n int) error {
	if n < 0 && n != Unbounded {
		return newError(KindInvalidBound, "max should not be less than zero, got %d", n)
	}
	q.Max = n
	return nil
}

// SetLeast sets min to n and removes the upper bound.
func (q *Quantifier) SetLeast(n int) error {
	if err := q.SetMin(n); err != nil {
		return err
	}
	q.Max = Unbounded
	return nil
}

// SetMost sets max to n and min to zero.
func (q *Quantifier) SetMost(n int) error {
	if err := q.SetMax(n); err != nil {
		return err
	}
	q.Min = 0
	return nil
}

func (q *Quantifier) SetStrategy(s Strategy) error {
	if !s.valid() {
		return newError(KindInvalidArgument, "unknown strategy %v", s)
	}
	q.Strategy = s
	return nil
}

// setRange validates both bounds before assigning any of them.
func (q *Quantifier) setRange(min, max int) error {
	if min < 0 {
		return newError(KindInvalidBound, "min should not be less than zero, got %d", min)
	}
	if max < 0 && max != Unbounded {
		return newError(KindInvalidBound, "max should not be less than zero, got %d", max)
	}
	if max != Unbounded && min > max {
		return newError(KindInvalidBound, "min %d is greater than max %d", min, max)
	}
	q.Min = min
	q.Max = max
	return nil
}

// Render returns the quantifier suffix, e.g. "", "?", "+", "{2,5}?".
func (q Quantifier) Render() (string, error) {
	var s string
	min, max := q.Min, q.Max
	switch {
	case min == 1 && max == 1:
		return "", nil
	case min == 0 && max == 1:
		s = "?"
	case min == 1 && max == Unbounded:
		s = "+"
	case min == 0 && max == Unbounded:
		s = "*"
	case min > 1 && max == min:
		s = "{" + strconv.Itoa(min) + "}"
	case min >= 1 && max > min: // {1,m} included
		s = "{" + strconv.Itoa(min) + "," + strconv.Itoa(max) + "}"
	case min == 0 && max > 1:
		s = "{0," + strconv.Itoa(max) + "}"
	case min > 1 && max == Unbounded:
		s = "{" + strconv.Itoa(min) + ",}"
	default:
		return "", newError(KindUnsupportedQuantifier, "min=%d, max=%s", min, q.maxString())
	}

	switch q.Strategy {
	case Lazy:
		s += "?"
	case Possessive:
		s += "+"
	case Greedy:
	default:
		return "", newError(KindUnsupportedQuantifier, "unknown strategy %v", q.Strategy)
	}
	return s, nil
}

func (q Quantifier) String() string {
	return "[strategy=" + q.Strategy.String() + ", min=" + strconv.Itoa(q.Min) + ", max=" + q.maxString() + "]"
}

func (q Quantifier) maxString() string {
	if q.Max == Unbounded {
		return "unbounded"
	}
	return strconv.Itoa(q.Max)
}
