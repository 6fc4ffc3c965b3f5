package forecast

import (
	"fmt"
	"math"
	"time"
)

// AdditiveTrend decomposes a series into a piecewise-linear trend plus
// Fourier seasonal terms and extrapolates the sum. Yearly seasonality is not
// modelled; the history windows used here are too short to estimate it.
type AdditiveTrend struct {
	ChangepointPriorScale float64
	SeasonalityPriorScale float64
	Changepoints          int
	ChangepointRange      float64 // share of history where changepoints may sit
	WeeklyOrder           int
	DailyOrder            int
}

// DefaultAdditiveTrend returns the model with weekly and daily seasonality and
// a changepoint prior scale of 0.05.
func DefaultAdditiveTrend() AdditiveTrend {
	return AdditiveTrend{
		ChangepointPriorScale: 0.05,
		SeasonalityPriorScale: 10,
		Changepoints:          25,
		ChangepointRange:      0.8,
		WeeklyOrder:           3,
		DailyOrder:            4,
	}
}

var _ Model = AdditiveTrend{}

// trendMinPoints is the shortest series the trend model accepts: two weeks.
const trendMinPoints = 14

// Name implements Model.
func (m AdditiveTrend) Name() string { return "trend" }

type trendFit struct {
	model        AdditiveTrend
	coef         []float64
	changepoints []float64 // in scaled time
	start        time.Time
	spanDays     float64
	scale        float64
	last         time.Time
	skipWeekends bool
}

// Fit implements Model.
func (m AdditiveTrend) Fit(s Series) (Fitted, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if len(s) < trendMinPoints {
		return nil, fmt.Errorf("%w: trend model needs %d points, got %d", ErrInsufficientData, trendMinPoints, len(s))
	}
	if m.ChangepointPriorScale <= 0 || m.SeasonalityPriorScale <= 0 {
		return nil, fmt.Errorf("%w: prior scales must be positive", ErrModelTraining)
	}

	f := &trendFit{
		model:        m,
		start:        s[0].Date,
		spanDays:     s[len(s)-1].Date.Sub(s[0].Date).Hours() / 24,
		last:         s[len(s)-1].Date,
		skipWeekends: tradingDaysOnly(s),
	}
	for _, p := range s {
		f.scale = max(f.scale, math.Abs(p.Close))
	}
	f.changepoints = f.placeChangepoints(s)

	y := make([]float64, len(s))
	rows := make([][]float64, len(s))
	for i, p := range s {
		y[i] = p.Close / f.scale
		rows[i] = f.features(p.Date)
	}

	sigma, err := f.noiseScale(rows, y)
	if err != nil {
		return nil, err
	}
	coef, err := leastSquares(rows, y, f.penalties(sigma))
	if err != nil {
		return nil, err
	}
	f.coef = coef
	return f, nil
}

// placeChangepoints spreads changepoints uniformly over the first part of the
// history, skipping the first point.
func (f *trendFit) placeChangepoints(s Series) []float64 {
	hist := int(math.Floor(float64(len(s)) * f.model.ChangepointRange))
	k := min(f.model.Changepoints, hist-1)
	if k <= 0 {
		return nil
	}
	out := make([]float64, 0, k)
	for i := 1; i <= k; i++ {
		idx := int(math.Round(float64(i) * float64(hist-1) / float64(k)))
		out = append(out, f.scaledTime(s[idx].Date))
	}
	return out
}

func (f *trendFit) scaledTime(d time.Time) float64 {
	return d.Sub(f.start).Hours() / 24 / f.spanDays
}

// features returns [1, t, changepoint hinges..., weekly..., daily...].
func (f *trendFit) features(d time.Time) []float64 {
	t := f.scaledTime(d)
	row := make([]float64, 0, 2+len(f.changepoints)+2*(f.model.WeeklyOrder+f.model.DailyOrder))
	row = append(row, 1, t)
	for _, c := range f.changepoints {
		row = append(row, max(t-c, 0))
	}
	days := float64(d.Unix()) / 86400
	row = appendFourier(row, days, 7, f.model.WeeklyOrder)
	row = appendFourier(row, days, 1, f.model.DailyOrder)
	return row
}

func appendFourier(row []float64, days, period float64, order int) []float64 {
	for k := 1; k <= order; k++ {
		x := 2 * math.Pi * float64(k) * days / period
		row = append(row, math.Sin(x), math.Cos(x))
	}
	return row
}

// noiseScale estimates the residual standard deviation of a plain linear fit,
// used to turn the prior scales into ridge penalties.
func (f *trendFit) noiseScale(rows [][]float64, y []float64) (float64, error) {
	lin := make([][]float64, len(rows))
	for i, r := range rows {
		lin[i] = r[:2]
	}
	coef, err := leastSquares(lin, y, nil)
	if err != nil {
		return 0, err
	}
	rss := 0.0
	for i, r := range lin {
		e := y[i] - coef[0]*r[0] - coef[1]*r[1]
		rss += e * e
	}
	return max(math.Sqrt(rss/float64(len(y)-2)), 1e-4), nil
}

// penalties maps the priors onto ridge weights: normal(0, 5) on offset and
// slope, a Laplace(0, cps) approximated by its variance on changepoint
// deltas, normal(0, sps) on seasonal terms.
func (f *trendFit) penalties(sigma float64) []float64 {
	s2 := sigma * sigma
	cps := f.model.ChangepointPriorScale
	sps := f.model.SeasonalityPriorScale
	out := []float64{s2 / 25, s2 / 25}
	for range f.changepoints {
		out = append(out, s2/(2*cps*cps))
	}
	for range 2 * (f.model.WeeklyOrder + f.model.DailyOrder) {
		out = append(out, s2/(sps*sps))
	}
	return out
}

// Forecast implements Fitted.
func (f *trendFit) Forecast(horizon int) ([]float64, error) {
	if horizon < 1 {
		return nil, fmt.Errorf("%w: horizon must be positive", ErrModelTraining)
	}
	dates := futureDates(f.last, f.skipWeekends, horizon)
	out := make([]float64, horizon)
	for i, d := range dates {
		v := 0.0
		for j, x := range f.features(d) {
			v += f.coef[j] * x
		}
		out[i] = v * f.scale
	}
	if err := checkFinite("trend", out); err != nil {
		return nil, err
	}
	return out, nil
}
