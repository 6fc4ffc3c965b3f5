package forecast

import (
	"fmt"
	"math"
	"time"
)

// Point is one daily close.
type Point struct {
	Date  time.Time
	Close float64
}

// Series is a chronologically ascending daily close series.
type Series []Point

// Validate checks that dates strictly ascend and every close is a finite
// positive number. Gaps reported by the source as missing closes fail here
// rather than being interpolated.
func (s Series) Validate() error {
	for i, p := range s {
		if math.IsNaN(p.Close) || math.IsInf(p.Close, 0) || p.Close <= 0 {
			return fmt.Errorf("%w: missing or invalid close at %s", ErrInsufficientData, p.Date.Format(time.DateOnly))
		}
		if i > 0 && !p.Date.After(s[i-1].Date) {
			return fmt.Errorf("%w: dates not ascending at %s", ErrInsufficientData, p.Date.Format(time.DateOnly))
		}
	}
	return nil
}

// Closes returns the close values.
func (s Series) Closes() []float64 {
	out := make([]float64, len(s))
	for i, p := range s {
		out[i] = p.Close
	}
	return out
}

// LastValid returns the most recent point with a usable close.
func (s Series) LastValid() (Point, bool) {
	for i := len(s) - 1; i >= 0; i-- {
		c := s[i].Close
		if c > 0 && !math.IsInf(c, 0) && !math.IsNaN(c) {
			return s[i], true
		}
	}
	return Point{}, false
}

// Tail returns at most the last n points.
func (s Series) Tail(n int) Series {
	if n <= 0 || n >= len(s) {
		return s
	}
	return s[len(s)-n:]
}

func isConstant(xs []float64) bool {
	for _, x := range xs[1:] {
		if x != xs[0] {
			return false
		}
	}
	return true
}
