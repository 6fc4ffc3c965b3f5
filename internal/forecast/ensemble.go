package forecast

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"smartrate/internal/metrics"
)

// Confidence labels.
const (
	ConfidenceHigh   = "high"
	ConfidenceMedium = "medium"
	ConfidenceLow    = "low"
)

// NaiveModelName is reported in ModelsUsed when neither model succeeded.
const NaiveModelName = "naive"

// DefaultHorizon is the forecast length used when the caller does not ask for one.
const DefaultHorizon = 7

// Result is an ensemble forecast. All slices have the horizon's length.
type Result struct {
	Dates        []time.Time
	ModelA       []float64
	ModelB       []float64
	EnsembleMean []float64
	Confidence   string
	ModelsUsed   []string
	LastClose    float64
	LastDate     time.Time
}

// Ensemble fits two models on the same series and blends their forecasts.
type Ensemble struct {
	a, b    Model
	logger  *zap.SugaredLogger
	metrics *metrics.Recorder
}

// NewEnsemble creates an Ensemble over models a and b.
func NewEnsemble(a, b Model, logger *zap.SugaredLogger, rec *metrics.Recorder) *Ensemble {
	return &Ensemble{a: a, b: b, logger: logger, metrics: rec}
}

type modelRun struct {
	values []float64
	err    error
}

// Forecast fits both models concurrently and merges their output. A model
// failure only removes that model's contribution; when both fail the result
// is a naive ramp from the last close to 1% above it with low confidence.
// An error is returned only when the series holds no usable close at all.
func (e *Ensemble) Forecast(ctx context.Context, s Series, horizon int) (Result, error) {
	if horizon < 1 {
		return Result{}, fmt.Errorf("%w: horizon must be positive, got %d", ErrInsufficientData, horizon)
	}
	last, ok := s.LastValid()
	if !ok {
		return Result{}, fmt.Errorf("%w: no usable close in series", ErrInsufficientData)
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	runs := make([]modelRun, 2)
	var g errgroup.Group
	for i, m := range []Model{e.a, e.b} {
		g.Go(func() error {
			runs[i] = e.run(m, s, horizon)
			return nil
		})
	}
	_ = g.Wait()

	res := Result{
		Dates:     FutureDates(s, horizon),
		LastClose: last.Close,
		LastDate:  last.Date,
	}
	a, b := runs[0], runs[1]
	switch {
	case a.err == nil && b.err == nil:
		res.EnsembleMean = make([]float64, horizon)
		for i := range res.EnsembleMean {
			res.EnsembleMean[i] = (a.values[i] + b.values[i]) / 2
		}
		res.ModelA, res.ModelB = a.values, b.values
		res.Confidence = ConfidenceHigh
		res.ModelsUsed = []string{e.a.Name(), e.b.Name()}
	case a.err == nil:
		res.EnsembleMean = a.values
		res.ModelA, res.ModelB = a.values, clone(a.values)
		res.Confidence = ConfidenceMedium
		res.ModelsUsed = []string{e.a.Name()}
	case b.err == nil:
		res.EnsembleMean = b.values
		res.ModelA, res.ModelB = clone(b.values), b.values
		res.Confidence = ConfidenceMedium
		res.ModelsUsed = []string{e.b.Name()}
	default:
		res.EnsembleMean = naiveRamp(last.Close, horizon)
		res.ModelA, res.ModelB = clone(res.EnsembleMean), clone(res.EnsembleMean)
		res.Confidence = ConfidenceLow
		res.ModelsUsed = []string{NaiveModelName}
	}
	return res, nil
}

func (e *Ensemble) run(m Model, s Series, horizon int) (r modelRun) {
	defer func() {
		if p := recover(); p != nil {
			r = modelRun{err: fmt.Errorf("%w: %s panicked: %v", ErrModelTraining, m.Name(), p)}
		}
		e.metrics.RecordModel(m.Name(), r.err)
		if r.err != nil {
			e.logger.Warnw("forecast model unavailable", "model", m.Name(), "error", r.err)
		}
	}()

	fitted, err := m.Fit(s)
	if err != nil {
		return modelRun{err: fmt.Errorf("fit %s: %w", m.Name(), err)}
	}
	values, err := fitted.Forecast(horizon)
	if err != nil {
		return modelRun{err: fmt.Errorf("forecast %s: %w", m.Name(), err)}
	}
	if len(values) != horizon {
		return modelRun{err: fmt.Errorf("%w: %s returned %d values for horizon %d", ErrModelTraining, m.Name(), len(values), horizon)}
	}
	if err := checkFinite(m.Name(), values); err != nil {
		return modelRun{err: err}
	}
	return modelRun{values: values}
}

// naiveRamp spaces horizon values evenly from last to last*1.01 inclusive.
func naiveRamp(last float64, horizon int) []float64 {
	out := make([]float64, horizon)
	if horizon == 1 {
		out[0] = last
		return out
	}
	step := last * 0.01 / float64(horizon-1)
	for i := range out {
		out[i] = last + step*float64(i)
	}
	out[horizon-1] = last * 1.01
	return out
}

func clone(xs []float64) []float64 {
	return append([]float64(nil), xs...)
}
