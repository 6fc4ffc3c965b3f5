package api

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"smartrate/internal/service"
)

type predictQuery struct {
	Days int `query:"days" validate:"gte=0,lte=365"`
}

// HandlePredict godoc
// @Summary Ensemble exchange-rate forecast
// @Description Fits an ARIMA model and an additive trend model on up to a year of daily closes and returns both forecasts and their mean. Confidence is high when both models succeed, medium with one and low for the naive fallback.
// @Tags forecast
// @Produce json
// @Param pair path string true "Currency pair, e.g. EURMAD, EUR-MAD or EURMAD=X"
// @Param days query int false "Forecast horizon in days" minimum(1) default(7)
// @Success 200 {object} PredictResponse "Forecast computed"
// @Failure 400 {object} ErrorResponse "Invalid pair or horizon"
// @Failure 502 {object} ErrorResponse "No price history available"
// @Failure 500 {object} ErrorResponse "Internal error"
// @Router /predict/{pair} [get]
func HandlePredict(svc service.ForecastServiceInterface) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var q predictQuery
		if raw := r.URL.Query().Get("days"); raw != "" {
			v, err := strconv.Atoi(raw)
			if err != nil {
				writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "days must be an integer"})
				return
			}
			q.Days = v
		}
		if err := validate.Struct(q); err != nil {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: validationMessage(err)})
			return
		}

		p, err := svc.Predict(r.Context(), chi.URLParam(r, "pair"), q.Days)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		f := p.Forecast
		resp := PredictResponse{
			Meta: PredictMeta{
				Pair:           p.Base + p.Target,
				CurrentRate:    rate(f.LastClose),
				PredictionDays: len(f.EnsembleMean),
				ModelsUsed:     f.ModelsUsed,
				Timestamp:      timestamp(time.Now()),
			},
			Predictions: PredictionsView{
				Dates:        make([]string, len(f.Dates)),
				EnsembleMean: roundAll(f.EnsembleMean),
				ModelA:       roundAll(f.ModelA),
				ModelB:       roundAll(f.ModelB),
			},
			History:    make([]HistoryPoint, 0, len(p.History)),
			Confidence: f.Confidence,
		}
		for i, d := range f.Dates {
			resp.Predictions.Dates[i] = d.Format(time.DateOnly)
		}
		for _, pt := range p.History {
			if math.IsNaN(pt.Close) {
				continue
			}
			resp.History = append(resp.History, HistoryPoint{Date: pt.Date.Format(time.DateOnly), Close: rate(pt.Close)})
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func roundAll(xs []float64) []float64 {
	out := make([]float64, len(xs))
	for i, x := range xs {
		out[i] = rate(x)
	}
	return out
}
