package api

// Quote status values.
const (
	StatusOK          = "ok"
	StatusUnavailable = "unavailable"
)

// SmartRateMeta identifies the quoted pair.
type SmartRateMeta struct {
	Pair      string  `json:"pair" example:"EUR/MAD"`
	Amount    float64 `json:"amount" example:"1000"`
	Timestamp string  `json:"timestamp" example:"2025-03-10T12:00:00Z"`
}

// OfferView is the rate we offer.
type OfferView struct {
	Rate        float64 `json:"rate" example:"10.90719"`
	FinalAmount float64 `json:"final_amount" example:"10907.19"`
	Fees        float64 `json:"fees" example:"54.81"`
}

// MarketView compares the offer against the market.
type MarketView struct {
	BankRate            float64 `json:"bank_rate" example:"10.53"`
	MarketRate          float64 `json:"market_rate" example:"10.8"`
	CryptoRate          float64 `json:"crypto_rate" example:"10.962"`
	BestLiquiditySource string  `json:"best_liquidity_source" example:"crypto"`
	Savings             float64 `json:"savings" example:"377.19"`
}

// AdvisorView is the trading signal.
type AdvisorView struct {
	Signal     string `json:"signal" example:"BUY"`
	Confidence string `json:"confidence" example:"high"`
}

// SmartRateResponse represents the response of a smart-rate quote.
// Status is "unavailable" when no source produced a rate; all rates are zero then.
type SmartRateResponse struct {
	Status             string        `json:"status" example:"ok"`
	Meta               SmartRateMeta `json:"meta"`
	Offer              OfferView     `json:"sarfx_offer"`
	MarketIntelligence MarketView    `json:"market_intelligence"`
	Advisor            AdvisorView   `json:"ai_advisor"`
}

// ArchivedQuoteView is one archived quote.
type ArchivedQuoteView struct {
	ID         string `json:"id" example:"123e4567-e89b-12d3-a456-426614174000"`
	BankRate   string `json:"bank_rate" example:"10.53"`
	MarketRate string `json:"market_rate" example:"10.8"`
	CryptoRate string `json:"crypto_rate" example:"10.962"`
	OfferRate  string `json:"offer_rate" example:"10.90719"`
	BestSource string `json:"best_source" example:"crypto"`
	Amount     string `json:"amount" example:"1000"`
	Savings    string `json:"savings" example:"377.19"`
	Signal     string `json:"signal" example:"BUY"`
	QuotedAt   string `json:"quoted_at" example:"2025-03-10T12:00:00Z"`
}

// QuoteHistoryResponse represents archived quotes of a pair, newest first.
type QuoteHistoryResponse struct {
	Pair   string              `json:"pair" example:"EUR/MAD"`
	Quotes []ArchivedQuoteView `json:"quotes"`
}

// PredictMeta describes a prediction.
type PredictMeta struct {
	Pair           string   `json:"pair" example:"EURMAD"`
	CurrentRate    float64  `json:"current_rate" example:"10.8"`
	PredictionDays int      `json:"prediction_days" example:"7"`
	ModelsUsed     []string `json:"models_used" example:"arima,trend"`
	Timestamp      string   `json:"timestamp" example:"2025-03-10T12:00:00Z"`
}

// PredictionsView holds parallel forecast arrays.
type PredictionsView struct {
	Dates        []string  `json:"dates" example:"2025-03-11,2025-03-12"`
	EnsembleMean []float64 `json:"Ensemble_Mean"`
	ModelA       []float64 `json:"ModelA"`
	ModelB       []float64 `json:"ModelB"`
}

// HistoryPoint is one recent daily close.
type HistoryPoint struct {
	Date  string  `json:"Date" example:"2025-03-10"`
	Close float64 `json:"Close" example:"10.8"`
}

// PredictResponse represents an ensemble forecast with recent history.
type PredictResponse struct {
	Meta        PredictMeta     `json:"meta"`
	Predictions PredictionsView `json:"predictions"`
	History     []HistoryPoint  `json:"history"`
	Confidence  string          `json:"confidence" example:"high"`
}

// CacheClearResponse represents the result of a cache clear.
type CacheClearResponse struct {
	Success   bool   `json:"success" example:"true"`
	Message   string `json:"message" example:"Rate cache cleared"`
	Timestamp string `json:"timestamp" example:"2025-03-10T12:00:00Z"`
}

// CacheEntryView is one cache entry.
type CacheEntryView struct {
	Key        string  `json:"key" example:"fiat_EUR_MAD"`
	Rate       float64 `json:"rate" example:"10.8"`
	AgeSeconds float64 `json:"age_seconds" example:"12.5"`
	ExpiresIn  float64 `json:"expires_in" example:"47.5"`
	IsValid    bool    `json:"is_valid" example:"true"`
}

// CacheStatsResponse represents cache statistics.
type CacheStatsResponse struct {
	TotalEntries int              `json:"total_entries" example:"2"`
	TTLSeconds   float64          `json:"ttl_seconds" example:"60"`
	Entries      []CacheEntryView `json:"entries"`
	Timestamp    string           `json:"timestamp" example:"2025-03-10T12:00:00Z"`
}
