package forecast

import (
	"math"
	"math/rand/v2"
	"time"
)

var day0 = time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC) // a Monday

// calendarSeries builds one point per calendar day.
func calendarSeries(values []float64) Series {
	s := make(Series, len(values))
	for i, v := range values {
		s[i] = Point{Date: day0.AddDate(0, 0, i), Close: v}
	}
	return s
}

// weekdaySeries builds one point per weekday.
func weekdaySeries(values []float64) Series {
	s := make(Series, 0, len(values))
	d := day0
	for _, v := range values {
		for isWeekend(d) {
			d = d.AddDate(0, 0, 1)
		}
		s = append(s, Point{Date: d, Close: v})
		d = d.AddDate(0, 0, 1)
	}
	return s
}

func randomWalk(n int, start, vol float64, seed uint64) []float64 {
	r := rand.New(rand.NewPCG(seed, seed+1))
	out := make([]float64, n)
	v := start
	for i := range out {
		v *= math.Exp(vol * r.NormFloat64())
		out[i] = v
	}
	return out
}
