package weather

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/agrolytics/maize-advisor/internal/model"
	"github.com/agrolytics/maize-advisor/internal/model/entities"
)

// FarmStore resolves farm references for the HTTP surface.
type FarmStore interface {
	FarmByID(ctx context.Context, id uint) (*entities.Farm, error)
}

// NewHTTPMux exposes the acquirer read paths plus health and metrics.
func NewHTTPMux(acq *Acquirer, farms FarmStore) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) { _, _ = w.Write([]byte("ok")) })
	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("GET /farms/{id}/weather/latest", func(w http.ResponseWriter, r *http.Request) {
		farm, ok := resolveFarm(w, r, farms)
		if !ok {
			return
		}
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Minute)
		defer cancel()

		obs, _ := acq.FetchCurrent(ctx, *farm)
		w.Header().Set("Content-Type", "application/json")
		if obs == nil {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		_ = json.NewEncoder(w).Encode(obs)
	})

	mux.HandleFunc("GET /farms/{id}/weather/forecast", func(w http.ResponseWriter, r *http.Request) {
		farm, ok := resolveFarm(w, r, farms)
		if !ok {
			return
		}
		days := 7
		if s := r.URL.Query().Get("days"); s != "" {
			if n, err := strconv.Atoi(s); err == nil && n > 0 && n <= 16 {
				days = n
			}
		}
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Minute)
		defer cancel()

		items, _ := acq.FetchForecast(ctx, *farm, days)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(items)
	})

	mux.HandleFunc("GET /farms/{id}/weather/alerts", func(w http.ResponseWriter, r *http.Request) {
		farm, ok := resolveFarm(w, r, farms)
		if !ok {
			return
		}
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Minute)
		defer cancel()

		alerts, _ := acq.FetchAlerts(ctx, *farm)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(alerts)
	})

	return mux
}

func resolveFarm(w http.ResponseWriter, r *http.Request, farms FarmStore) (*entities.Farm, bool) {
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 32)
	if err != nil {
		http.Error(w, "invalid farm id", http.StatusBadRequest)
		return nil, false
	}
	farm, err := farms.FarmByID(r.Context(), uint(id))
	if err != nil {
		var nf *model.NotFoundError
		if errors.As(err, &nf) {
			http.Error(w, nf.Error(), http.StatusNotFound)
			return nil, false
		}
		http.Error(w, "farm lookup failed", http.StatusInternalServerError)
		return nil, false
	}
	return farm, true
}
