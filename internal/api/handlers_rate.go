package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"smartrate/internal/service"
)

// DefaultAmount is quoted when the request carries no amount.
const DefaultAmount = 1000

type smartRateQuery struct {
	Amount float64 `query:"amount" validate:"gte=0,lte=1000000000"`
}

type historyQuery struct {
	Limit int `query:"limit" validate:"gte=1,lte=100"`
}

// HandleSmartRate godoc
// @Summary Smart-rate quote for a currency pair
// @Description Computes bank, interbank, crypto-implied and offered rates for the amount, the savings against a bank, and a trend signal. When every rate source fails the response is still 200 with status "unavailable" and zero rates.
// @Tags rates
// @Produce json
// @Param base path string true "Base currency code (3 letters)" minlength(3) maxlength(3)
// @Param target path string true "Target currency code (3 letters)" minlength(3) maxlength(3)
// @Param amount query number false "Amount in base currency" minimum(0) default(1000)
// @Success 200 {object} SmartRateResponse "Quote computed (check status)"
// @Failure 400 {object} ErrorResponse "Invalid pair or amount"
// @Failure 500 {object} ErrorResponse "Internal error"
// @Router /smart-rate/{base}/{target} [get]
func HandleSmartRate(svc service.QuoteServiceInterface) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := smartRateQuery{Amount: DefaultAmount}
		if raw := r.URL.Query().Get("amount"); raw != "" {
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "amount must be a number"})
				return
			}
			q.Amount = v
		}
		if err := validate.Struct(q); err != nil {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: validationMessage(err)})
			return
		}

		res, err := svc.SmartRate(r.Context(), chi.URLParam(r, "base"), chi.URLParam(r, "target"), q.Amount)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		quote := res.Quote
		status := StatusOK
		if !quote.Available {
			status = StatusUnavailable
		}
		writeJSON(w, http.StatusOK, SmartRateResponse{
			Status: status,
			Meta: SmartRateMeta{
				Pair:      quote.Base + "/" + quote.Target,
				Amount:    money(quote.Amount),
				Timestamp: timestamp(quote.QuotedAt),
			},
			Offer: OfferView{
				Rate:        rate(quote.OfferRate),
				FinalAmount: money(quote.FinalAmount),
				Fees:        money(quote.Fees),
			},
			MarketIntelligence: MarketView{
				BankRate:            rate(quote.BankRate),
				MarketRate:          rate(quote.MarketRate),
				CryptoRate:          rate(quote.CryptoRate),
				BestLiquiditySource: quote.BestSource,
				Savings:             money(quote.Savings),
			},
			Advisor: AdvisorView{
				Signal:     string(res.Signal.Kind),
				Confidence: res.Signal.Confidence,
			},
		})
	}
}

// HandleQuoteHistory godoc
// @Summary Archived quotes for a currency pair
// @Description Lists the most recent archived smart-rate quotes of the pair, newest first.
// @Tags rates
// @Produce json
// @Param base path string true "Base currency code (3 letters)" minlength(3) maxlength(3)
// @Param target path string true "Target currency code (3 letters)" minlength(3) maxlength(3)
// @Param limit query int false "Maximum number of quotes" minimum(1) maximum(100) default(20)
// @Success 200 {object} QuoteHistoryResponse "Archived quotes"
// @Failure 400 {object} ErrorResponse "Invalid pair or limit"
// @Failure 503 {object} ErrorResponse "Archive disabled"
// @Failure 500 {object} ErrorResponse "Internal error"
// @Router /smart-rate/{base}/{target}/history [get]
func HandleQuoteHistory(svc service.QuoteServiceInterface) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := historyQuery{Limit: 20}
		if raw := r.URL.Query().Get("limit"); raw != "" {
			v, err := strconv.Atoi(raw)
			if err != nil {
				writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "limit must be an integer"})
				return
			}
			q.Limit = v
		}
		if err := validate.Struct(q); err != nil {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: validationMessage(err)})
			return
		}

		quotes, err := svc.QuoteHistory(r.Context(), chi.URLParam(r, "base"), chi.URLParam(r, "target"), q.Limit)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		resp := QuoteHistoryResponse{Quotes: make([]ArchivedQuoteView, 0, len(quotes))}
		for _, aq := range quotes {
			if resp.Pair == "" {
				resp.Pair = aq.Base + "/" + aq.Target
			}
			resp.Quotes = append(resp.Quotes, ArchivedQuoteView{
				ID:         aq.ID,
				BankRate:   aq.BankRate.String(),
				MarketRate: aq.MarketRate.String(),
				CryptoRate: aq.CryptoRate.String(),
				OfferRate:  aq.OfferRate.String(),
				BestSource: aq.BestSource,
				Amount:     aq.Amount.StringFixed(2),
				Savings:    aq.Savings.StringFixed(2),
				Signal:     aq.Signal,
				QuotedAt:   timestamp(aq.QuotedAt),
			})
		}
		writeJSON(w, http.StatusOK, resp)
	}
}
