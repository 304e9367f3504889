package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Gouliath1/portfolio-tracker-sub001/src/model"
	"github.com/Gouliath1/portfolio-tracker-sub001/src/portfolio"

	"github.com/go-chi/chi/v5"
)

const maxImportBytes = 10 << 20

type positionSetLister interface {
	ListOverview(ctx context.Context) (portfolio.Overview, error)
}

type positionSetActivator interface {
	Activate(ctx context.Context, rawID string) error
}

type positionSetDeleter interface {
	Delete(ctx context.Context, rawID string) error
}

type positionSetExporter interface {
	Export(ctx context.Context, rawID string) (*portfolio.Export, error)
}

type positionSetImporter interface {
	Import(ctx context.Context, doc portfolio.ImportDocument) (*model.PositionSet, error)
}

// ListPositionSetsHandler returns every set plus the active one.
func ListPositionSetsHandler(svc positionSetLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		overview, err := svc.ListOverview(r.Context())
		if err != nil {
			requestLog(r, "ListPositionSets").WithError(err).Error("failed to list position sets")
			writeError(w, http.StatusInternalServerError, "Failed to fetch position sets", "")
			return
		}

		writeJSON(w, http.StatusOK, overview)
	}
}

// ActivatePositionSetHandler makes {id} the active set. A missing set is
// reported as 500 with details, like any other store failure.
func ActivatePositionSetHandler(svc positionSetActivator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := svc.Activate(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			if portfolio.IsValidation(err) {
				writeError(w, http.StatusBadRequest, "Invalid position set ID", err.Error())
				return
			}
			requestLog(r, "ActivatePositionSet").WithError(err).Error("failed to activate position set")
			writeError(w, http.StatusInternalServerError, "Failed to activate position set", err.Error())
			return
		}

		writeJSON(w, http.StatusOK, messageResponse{Message: "Position set activated successfully"})
	}
}

// DeletePositionSetHandler removes {id} and its positions.
func DeletePositionSetHandler(svc positionSetDeleter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := svc.Delete(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			if portfolio.IsValidation(err) {
				writeError(w, http.StatusBadRequest, "Invalid position set ID", err.Error())
				return
			}
			requestLog(r, "DeletePositionSet").WithError(err).Error("failed to delete position set")
			writeError(w, http.StatusInternalServerError, "Failed to delete position set", err.Error())
			return
		}

		writeJSON(w, http.StatusOK, messageResponse{Message: "Position set deleted successfully"})
	}
}

// ExportPositionSetHandler streams {id} as a JSON attachment.
func ExportPositionSetHandler(svc positionSetExporter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		export, err := svc.Export(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			switch {
			case portfolio.IsValidation(err):
				writeError(w, http.StatusBadRequest, "Invalid position set ID", err.Error())
			case portfolio.IsNotFound(err):
				writeError(w, http.StatusNotFound, "Position set not found", "")
			default:
				requestLog(r, "ExportPositionSet").WithError(err).Error("failed to export position set")
				writeError(w, http.StatusInternalServerError, "Failed to export position set", err.Error())
			}
			return
		}

		body, err := export.Marshal()
		if err != nil {
			requestLog(r, "ExportPositionSet").WithError(err).Error("failed to encode export")
			writeError(w, http.StatusInternalServerError, "Failed to export position set", err.Error())
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Content-Disposition", `attachment; filename="`+export.Filename+`"`)
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write(body); err != nil {
			requestLog(r, "ExportPositionSet").WithError(err).Warn("failed to write export body")
		}
	}
}

type importResponse struct {
	Message     string             `json:"message"`
	PositionSet *model.PositionSet `json:"positionSet"`
}

// ImportPositionSetHandler creates a new, inactive set from an export document.
func ImportPositionSetHandler(svc positionSetImporter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var doc portfolio.ImportDocument
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxImportBytes)).Decode(&doc); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid import document", err.Error())
			return
		}

		set, err := svc.Import(r.Context(), doc)
		if err != nil {
			switch {
			case portfolio.IsValidation(err):
				writeError(w, http.StatusBadRequest, "Invalid import document", err.Error())
			case errors.Is(err, portfolio.ErrConflict):
				writeError(w, http.StatusConflict, "Position set already exists", doc.PositionSet.Name)
			default:
				requestLog(r, "ImportPositionSet").WithError(err).Error("failed to import position set")
				writeError(w, http.StatusInternalServerError, "Failed to import position set", err.Error())
			}
			return
		}

		writeJSON(w, http.StatusCreated, importResponse{
			Message:     "Position set imported successfully",
			PositionSet: set,
		})
	}
}
