// Package forecast fits short-horizon exchange-rate models over daily closes
// and blends them into an ensemble forecast.
package forecast

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrInsufficientData is returned when a series is too short or degenerate to fit.
	ErrInsufficientData = errors.New("insufficient data")
	// ErrModelTraining is returned on numerical failure while fitting or forecasting.
	ErrModelTraining = errors.New("model training failed")
)

// Model is a trainable time-series predictor.
type Model interface {
	Name() string
	Fit(s Series) (Fitted, error)
}

// Fitted is a trained model able to forecast the steps following its training series.
type Fitted interface {
	Forecast(horizon int) ([]float64, error)
}

func checkFinite(model string, xs []float64) error {
	for i, x := range xs {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return fmt.Errorf("%w: %s produced non-finite value at step %d", ErrModelTraining, model, i+1)
		}
	}
	return nil
}
