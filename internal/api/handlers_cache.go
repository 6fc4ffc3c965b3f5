package api

import (
	"net/http"
	"time"

	"smartrate/internal/service"
)

// HandleCacheClear godoc
// @Summary Clear the spot rate cache
// @Description Drops every cached fiat and crypto rate; the next quote fetches from the sources.
// @Tags cache
// @Produce json
// @Success 200 {object} CacheClearResponse "Cache cleared"
// @Failure 500 {object} ErrorResponse "Internal error"
// @Router /cache/clear [post]
func HandleCacheClear(svc service.QuoteServiceInterface) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.ClearCache(r.Context()); err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, CacheClearResponse{
			Success:   true,
			Message:   "Rate cache cleared",
			Timestamp: timestamp(time.Now()),
		})
	}
}

// HandleCacheStats godoc
// @Summary Spot rate cache statistics
// @Description Lists cached rates with their age and remaining lifetime. Reading stats does not modify the cache.
// @Tags cache
// @Produce json
// @Success 200 {object} CacheStatsResponse "Cache statistics"
// @Failure 500 {object} ErrorResponse "Internal error"
// @Router /cache/stats [get]
func HandleCacheStats(svc service.QuoteServiceInterface) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st, err := svc.CacheStats(r.Context())
		if err != nil {
			writeServiceError(w, err)
			return
		}
		resp := CacheStatsResponse{
			TotalEntries: st.TotalEntries,
			TTLSeconds:   st.TTL.Seconds(),
			Entries:      make([]CacheEntryView, 0, len(st.Entries)),
			Timestamp:    timestamp(time.Now()),
		}
		for _, e := range st.Entries {
			resp.Entries = append(resp.Entries, CacheEntryView{
				Key:        e.Key,
				Rate:       e.Rate,
				AgeSeconds: round(e.Age.Seconds(), 3),
				ExpiresIn:  round(e.ExpiresIn.Seconds(), 3),
				IsValid:    e.Valid,
			})
		}
		writeJSON(w, http.StatusOK, resp)
	}
}
