package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/Gouliath1/portfolio-tracker-sub001/src/model"
	"github.com/Gouliath1/portfolio-tracker-sub001/src/portfolio"
)

const maxPositionsBytes = 10 << 20

type positionsWriter interface {
	WritePositions(ctx context.Context, positions []model.RawPosition) error
}

type demoStatusReader interface {
	DemoStatus(ctx context.Context) (portfolio.DemoStatus, error)
}

type updatePositionsRequest struct {
	Positions json.RawMessage `json:"positions"`
}

// UpdatePositionsHandler replaces the active set's positions. The body must be
// {"positions": [...]}; anything else is rejected before the store is touched.
func UpdatePositionsHandler(svc positionsWriter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req updatePositionsRequest
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxPositionsBytes)).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid positions data", err.Error())
			return
		}

		positions, err := decodePositionsArray(req.Positions)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid positions data", err.Error())
			return
		}

		if err := svc.WritePositions(r.Context(), positions); err != nil {
			if portfolio.IsValidation(err) {
				writeError(w, http.StatusBadRequest, "Invalid positions data", err.Error())
				return
			}
			requestLog(r, "UpdatePositions").WithError(err).Error("failed to write positions")
			writeError(w, http.StatusInternalServerError, "Failed to update positions", err.Error())
			return
		}

		writeJSON(w, http.StatusOK, map[string]bool{"success": true})
	}
}

func decodePositionsArray(raw json.RawMessage) ([]model.RawPosition, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil || items == nil {
		return nil, &portfolio.ValidationError{Field: "positions", Reason: "must be an array"}
	}

	positions := make([]model.RawPosition, 0, len(items))
	for _, item := range items {
		var p model.RawPosition
		if err := json.Unmarshal(item, &p); err != nil {
			return nil, &portfolio.ValidationError{Field: "positions", Reason: err.Error()}
		}
		positions = append(positions, p)
	}
	return positions, nil
}

// DemoStatusHandler reports whether the active set is demo data.
func DemoStatusHandler(svc demoStatusReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status, err := svc.DemoStatus(r.Context())
		if err != nil {
			requestLog(r, "DemoStatus").WithError(err).Error("failed to read demo status")
			writeError(w, http.StatusInternalServerError, "Failed to check demo status", "")
			return
		}

		writeJSON(w, http.StatusOK, status)
	}
}
