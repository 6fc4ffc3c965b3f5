package forecast

import (
	"fmt"
	"math"
)

// ARIMA is a classical autoregressive integrated moving-average model fitted
// by conditional least squares. MA terms are estimated with the
// Hannan–Rissanen two-step regression.
type ARIMA struct {
	P, D, Q int
}

// DefaultARIMA returns an ARIMA(5,1,0).
func DefaultARIMA() ARIMA {
	return ARIMA{P: 5, D: 1}
}

var _ Model = ARIMA{}

// Name implements Model.
func (m ARIMA) Name() string { return "arima" }

// MinPoints is the shortest series Fit accepts.
func (m ARIMA) MinPoints() int {
	return max(2*(m.P+m.Q)+m.D+1, 10)
}

// arimaFit holds the estimated model on the differenced scale.
type arimaFit struct {
	order ARIMA
	mean  float64   // constant, only estimated when D == 0
	ar    []float64 // phi_1..phi_p
	ma    []float64 // theta_1..theta_q
	x     []float64 // demeaned differenced history
	resid []float64 // residuals aligned with x, zero before warm
	warm  int       // first index with a long-AR residual
	tails []float64 // last value at each differencing level, for integration
}

// Fit implements Model.
func (m ARIMA) Fit(s Series) (Fitted, error) {
	if m.P < 0 || m.D < 0 || m.Q < 0 || (m.P+m.Q == 0 && m.D == 0) {
		return nil, fmt.Errorf("%w: invalid order (%d,%d,%d)", ErrModelTraining, m.P, m.D, m.Q)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if len(s) < m.MinPoints() {
		return nil, fmt.Errorf("%w: arima(%d,%d,%d) needs %d points, got %d",
			ErrInsufficientData, m.P, m.D, m.Q, m.MinPoints(), len(s))
	}
	y := s.Closes()
	if isConstant(y) {
		return nil, fmt.Errorf("%w: constant series", ErrInsufficientData)
	}

	w := y
	tails := make([]float64, m.D)
	for k := 0; k < m.D; k++ {
		tails[k] = w[len(w)-1]
		w = diff(w)
	}

	f := &arimaFit{order: m, tails: tails}
	if m.D == 0 {
		f.mean = mean(w)
	}
	f.x = make([]float64, len(w))
	for i, v := range w {
		f.x[i] = v - f.mean
	}
	f.resid = make([]float64, len(f.x))

	if m.Q > 0 {
		if err := f.longARResiduals(); err != nil {
			return nil, err
		}
	}
	if err := f.regress(); err != nil {
		return nil, err
	}
	return f, nil
}

// longARResiduals fills resid with the residuals of a long AR fit, the first
// step of Hannan–Rissanen.
func (f *arimaFit) longARResiduals() error {
	n := len(f.x)
	order := max(f.order.P+f.order.Q, int(math.Ceil(math.Log(float64(n))*2)))
	order = min(order, n/3)
	if order < 1 {
		return fmt.Errorf("%w: series too short for ma terms", ErrInsufficientData)
	}
	rows := make([][]float64, 0, n-order)
	ys := make([]float64, 0, n-order)
	for t := order; t < n; t++ {
		row := make([]float64, order)
		for j := range row {
			row[j] = f.x[t-1-j]
		}
		rows = append(rows, row)
		ys = append(ys, f.x[t])
	}
	phi, err := leastSquares(rows, ys, ridgeFor(rows))
	if err != nil {
		return err
	}
	f.warm = order
	for t := order; t < n; t++ {
		pred := 0.0
		for j, c := range phi {
			pred += c * f.x[t-1-j]
		}
		f.resid[t] = f.x[t] - pred
	}
	return nil
}

// regress estimates AR and MA coefficients jointly by least squares on
// lagged values and lagged residuals.
func (f *arimaFit) regress() error {
	p, q := f.order.P, f.order.Q
	start := p
	if q > 0 {
		start = max(start, f.warm+q)
	}
	n := len(f.x)
	if n-start < p+q+1 {
		return fmt.Errorf("%w: %d usable observations for %d coefficients", ErrInsufficientData, n-start, p+q)
	}

	rows := make([][]float64, 0, n-start)
	ys := make([]float64, 0, n-start)
	for t := start; t < n; t++ {
		row := make([]float64, 0, p+q)
		for j := 1; j <= p; j++ {
			row = append(row, f.x[t-j])
		}
		for j := 1; j <= q; j++ {
			row = append(row, f.resid[t-j])
		}
		rows = append(rows, row)
		ys = append(ys, f.x[t])
	}
	coef, err := leastSquares(rows, ys, ridgeFor(rows))
	if err != nil {
		return err
	}
	f.ar = coef[:p]
	f.ma = coef[p:]

	if q > 0 {
		// refresh residuals with the final coefficients for forecasting
		for t := start; t < n; t++ {
			f.resid[t] = f.x[t] - f.predict(f.x, f.resid, t)
		}
	}
	return nil
}

func (f *arimaFit) predict(x, e []float64, t int) float64 {
	v := 0.0
	for j, c := range f.ar {
		if t-1-j >= 0 {
			v += c * x[t-1-j]
		}
	}
	for j, c := range f.ma {
		if t-1-j >= 0 {
			v += c * e[t-1-j]
		}
	}
	return v
}

// Forecast implements Fitted.
func (f *arimaFit) Forecast(horizon int) ([]float64, error) {
	if horizon < 1 {
		return nil, fmt.Errorf("%w: horizon must be positive", ErrModelTraining)
	}
	n := len(f.x)
	x := append(append(make([]float64, 0, n+horizon), f.x...), make([]float64, horizon)...)
	e := append(append(make([]float64, 0, n+horizon), f.resid...), make([]float64, horizon)...)
	for t := n; t < n+horizon; t++ {
		x[t] = f.predict(x, e, t)
	}

	out := make([]float64, horizon)
	for i := range out {
		out[i] = x[n+i] + f.mean
	}
	for k := len(f.tails) - 1; k >= 0; k-- {
		last := f.tails[k]
		for i := range out {
			last += out[i]
			out[i] = last
		}
	}
	if err := checkFinite("arima", out); err != nil {
		return nil, err
	}
	return out, nil
}

// ridgeFor returns a tiny uniform penalty scaled to the regressors so that
// collinear lags still solve.
func ridgeFor(rows [][]float64) []float64 {
	cols := len(rows[0])
	ss := 0.0
	for _, r := range rows {
		for _, v := range r {
			ss += v * v
		}
	}
	lambda := 1e-8 * max(ss/float64(cols), 1e-12)
	out := make([]float64, cols)
	for j := range out {
		out[j] = lambda
	}
	return out
}

func diff(xs []float64) []float64 {
	out := make([]float64, len(xs)-1)
	for i := 1; i < len(xs); i++ {
		out[i-1] = xs[i] - xs[i-1]
	}
	return out
}

func mean(xs []float64) float64 {
	s := 0.0
	for _, x := range xs {
		s += x
	}
	return s / float64(len(xs))
}
