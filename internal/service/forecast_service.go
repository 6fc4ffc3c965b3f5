package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"smartrate/internal/forecast"
	"smartrate/internal/provider"
)

// ForecastServiceInterface defines the forecasting operations.
type ForecastServiceInterface interface {
	Predict(ctx context.Context, pair string, days int) (*Prediction, error)
}

// Forecaster produces ensemble forecasts.
type Forecaster interface {
	Forecast(ctx context.Context, s forecast.Series, horizon int) (forecast.Result, error)
}

// ForecastOptions configures the ForecastService.
type ForecastOptions struct {
	DefaultHorizon int
	MaxHorizon     int
	HistoryRange   string // e.g. "1y"
	HistoryPoints  int    // recent closes returned with a prediction
	Timeout        time.Duration
}

// Prediction is a forecast together with the recent history it continues.
type Prediction struct {
	Base     string
	Target   string
	Forecast forecast.Result
	History  forecast.Series
}

// ForecastService fetches daily closes and runs the ensemble over them.
type ForecastService struct {
	history    provider.HistoryProvider
	forecaster Forecaster
	validator  Validator
	opts       ForecastOptions
	log        *zap.SugaredLogger
}

// NewForecastService creates a new ForecastService.
func NewForecastService(history provider.HistoryProvider, forecaster Forecaster, validator Validator,
	opts ForecastOptions, logger *zap.SugaredLogger) *ForecastService {
	if opts.DefaultHorizon <= 0 {
		opts.DefaultHorizon = forecast.DefaultHorizon
	}
	if opts.MaxHorizon < opts.DefaultHorizon {
		opts.MaxHorizon = opts.DefaultHorizon
	}
	if opts.HistoryRange == "" {
		opts.HistoryRange = "1y"
	}
	return &ForecastService{
		history:    history,
		forecaster: forecaster,
		validator:  validator,
		opts:       opts,
		log:        logger,
	}
}

// Predict forecasts the next days closes of pair. days == 0 selects the
// default horizon. It fails with ErrNoHistory only when no usable history
// exists at all; model failures degrade the result instead.
func (s *ForecastService) Predict(ctx context.Context, pair string, days int) (*Prediction, error) {
	base, target, err := ParsePair(pair)
	if err != nil {
		return nil, err
	}
	if base == target {
		return nil, ErrSamePair
	}
	if err := s.validator.Validate(base); err != nil {
		return nil, err
	}
	if err := s.validator.Validate(target); err != nil {
		return nil, err
	}
	if days == 0 {
		days = s.opts.DefaultHorizon
	}
	if days < 1 || days > s.opts.MaxHorizon {
		return nil, fmt.Errorf("%w: days must be between 1 and %d", ErrInvalidHorizon, s.opts.MaxHorizon)
	}

	series, err := s.fetchSeries(ctx, base, target)
	if err != nil {
		return nil, err
	}

	res, err := s.forecaster.Forecast(ctx, series, days)
	if err != nil {
		if errors.Is(err, forecast.ErrInsufficientData) {
			return nil, fmt.Errorf("%w: %w", ErrNoHistory, err)
		}
		s.log.Errorw("Forecast failed", "pair", base+target, "error", err)
		return nil, err
	}

	s.log.Infow("Forecast computed", "pair", base+target, "days", days,
		"models", res.ModelsUsed, "confidence", res.Confidence)
	return &Prediction{
		Base:     base,
		Target:   target,
		Forecast: res,
		History:  series.Tail(s.opts.HistoryPoints),
	}, nil
}

func (s *ForecastService) fetchSeries(ctx context.Context, base, target string) (forecast.Series, error) {
	if s.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.Timeout)
		defer cancel()
	}

	closes, err := s.history.DailyCloses(ctx, base, target, s.opts.HistoryRange)
	if err != nil {
		s.log.Warnw("History fetch failed", "base", base, "target", target, "error", err)
		return nil, fmt.Errorf("%w: %w", ErrNoHistory, err)
	}
	if len(closes) == 0 {
		return nil, ErrNoHistory
	}

	series := make(forecast.Series, len(closes))
	for i, c := range closes {
		series[i] = forecast.Point{Date: c.Date, Close: c.Close}
	}
	return series, nil
}
