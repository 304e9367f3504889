package handler

import (
	"context"
	"net/http"

	"github.com/Gouliath1/portfolio-tracker-sub001/src/brokers"
	"github.com/Gouliath1/portfolio-tracker-sub001/src/currency"

	"github.com/go-chi/chi/v5"
)

func ListBrokersHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, brokers.All())
	}
}

// BrokerHandler resolves {name}; unknown names get the fallback entry.
func BrokerHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, brokers.Lookup(chi.URLParam(r, "name")))
	}
}

func CurrencyHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, currency.Lookup(chi.URLParam(r, "code")))
	}
}

type healthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

// HealthHandler reports 503 while the database is unreachable.
func HealthHandler(ready func(ctx context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := ready(r.Context()); err != nil {
			requestLog(r, "Health").WithError(err).Warn("database not ready")
			writeJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "unavailable", Database: err.Error()})
			return
		}

		writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Database: "ready"})
	}
}
