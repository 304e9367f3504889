package handler

import (
	"context"
	"net/http"

	"github.com/Gouliath1/portfolio-tracker-sub001/src/portfolio"
	"github.com/Gouliath1/portfolio-tracker-sub001/src/prices"
)

type historyStatusReader interface {
	Status(ctx context.Context) (portfolio.HistoricalDataStatus, error)
}

type priceRefresher interface {
	Refresh(ctx context.Context) (prices.Result, error)
}

// HistoricalPricesHandler is reserved; the series endpoint does not exist yet.
func HistoricalPricesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotImplemented, "Not implemented", portfolio.ErrNotImplemented.Error())
	}
}

func HistoricalDataStatusHandler(eval historyStatusReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status, err := eval.Status(r.Context())
		if err != nil {
			requestLog(r, "HistoricalDataStatus").WithError(err).Error("failed to evaluate historical data status")
			writeError(w, http.StatusInternalServerError, "Failed to check historical data status", "")
			return
		}

		writeJSON(w, http.StatusOK, status)
	}
}

// RefreshHistoricalDataHandler runs a price refresh synchronously.
func RefreshHistoricalDataHandler(refresher priceRefresher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, err := refresher.Refresh(r.Context())
		if err != nil {
			requestLog(r, "RefreshHistoricalData").WithError(err).Error("failed to refresh historical prices")
			writeError(w, http.StatusInternalServerError, "Failed to refresh historical data", err.Error())
			return
		}

		writeJSON(w, http.StatusOK, result)
	}
}
