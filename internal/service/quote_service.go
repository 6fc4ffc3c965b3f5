// Package service orchestrates quotes, forecasts and cache administration.
package service

import (
	"context"
	"math"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"smartrate/internal/arbitrage"
	"smartrate/internal/ratecache"
	"smartrate/internal/repository"
	"smartrate/internal/signal"
	"smartrate/internal/worker"
)

// QuoteServiceInterface defines the operations available for smart-rate quotes.
type QuoteServiceInterface interface {
	SmartRate(ctx context.Context, base, target string, amount float64) (*SmartRateResult, error)
	QuoteHistory(ctx context.Context, base, target string, limit int) ([]repository.ArchivedQuote, error)
	ClearCache(ctx context.Context) error
	CacheStats(ctx context.Context) (ratecache.Stats, error)
}

// Quoter computes arbitrage quotes.
type Quoter interface {
	Quote(ctx context.Context, base, target string, amount float64) arbitrage.Quote
}

// Advisor computes trading signals.
type Advisor interface {
	Advise(ctx context.Context, base, target string) signal.Signal
}

// SmartRateResult is a quote with the advice computed alongside it.
type SmartRateResult struct {
	Quote  arbitrage.Quote
	Signal signal.Signal
}

// QuoteService defines business logic for smart-rate quotes.
type QuoteService struct {
	quoter    Quoter
	advisor   Advisor
	sink      worker.ArchiveSink
	archive   repository.QuoteArchive
	cache     ratecache.Cache
	validator Validator
	log       *zap.SugaredLogger
}

// NewQuoteService creates a new QuoteService. archive may be nil when
// archiving is disabled.
func NewQuoteService(quoter Quoter, advisor Advisor, sink worker.ArchiveSink, archive repository.QuoteArchive,
	cache ratecache.Cache, validator Validator, logger *zap.SugaredLogger) *QuoteService {
	return &QuoteService{
		quoter:    quoter,
		advisor:   advisor,
		sink:      sink,
		archive:   archive,
		cache:     cache,
		validator: validator,
		log:       logger,
	}
}

// SmartRate computes the quote and the signal concurrently and hands an
// available quote to the archive sink without waiting for it.
func (s *QuoteService) SmartRate(ctx context.Context, base, target string, amount float64) (*SmartRateResult, error) {
	base, target, err := s.checkPair(base, target)
	if err != nil {
		return nil, err
	}
	if amount < 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return nil, ErrInvalidAmount
	}

	var res SmartRateResult
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		res.Quote = s.quoter.Quote(gctx, base, target, amount)
		return nil
	})
	g.Go(func() error {
		res.Signal = s.advisor.Advise(gctx, base, target)
		return nil
	})
	_ = g.Wait()

	if res.Quote.Available {
		s.sink.Submit(res.Quote, res.Signal)
	} else {
		s.log.Warnw("Quote unavailable", "base", base, "target", target)
	}
	return &res, nil
}

// QuoteHistory returns archived quotes for the pair, newest first.
func (s *QuoteService) QuoteHistory(ctx context.Context, base, target string, limit int) ([]repository.ArchivedQuote, error) {
	base, target, err := s.checkPair(base, target)
	if err != nil {
		return nil, err
	}
	if s.archive == nil {
		return nil, ErrArchiveDisabled
	}
	quotes, err := s.archive.ListRecent(ctx, base, target, limit)
	if err != nil {
		s.log.Errorw("DB error listing archived quotes", "base", base, "target", target, "error", err)
		return nil, ErrInternal
	}
	return quotes, nil
}

// ClearCache drops every cached spot rate.
func (s *QuoteService) ClearCache(ctx context.Context) error {
	if err := s.cache.Clear(ctx); err != nil {
		s.log.Errorw("Cache clear failed", "error", err)
		return ErrInternal
	}
	s.log.Infow("Rate cache cleared")
	return nil
}

// CacheStats reports the cache content without modifying it.
func (s *QuoteService) CacheStats(ctx context.Context) (ratecache.Stats, error) {
	st, err := s.cache.Stats(ctx)
	if err != nil {
		s.log.Errorw("Cache stats failed", "error", err)
		return ratecache.Stats{}, ErrInternal
	}
	return st, nil
}

func (s *QuoteService) checkPair(base, target string) (string, string, error) {
	base, target, err := normalizePair(base, target)
	if err != nil {
		return "", "", err
	}
	if err := s.validatePair(base, target); err != nil {
		return "", "", err
	}
	return base, target, nil
}

func (s *QuoteService) validatePair(base, target string) error {
	if base == target {
		return ErrSamePair
	}
	if err := s.validator.Validate(base); err != nil {
		return err
	}
	return s.validator.Validate(target)
}
