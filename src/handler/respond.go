package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	logger "github.com/sirupsen/logrus"
)

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.WithError(err).Error("failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, message, details string) {
	writeJSON(w, status, errorResponse{Error: message, Details: details})
}

// requestLog tags entries with the handler name and request id. Error-level
// entries carrying the handler field are persisted by ExceptionHook.
func requestLog(r *http.Request, handler string) *logger.Entry {
	return logger.WithFields(logger.Fields{
		FieldHandler: handler,
		FieldMethod:  r.Method + " " + r.URL.Path,
		FieldRequest: middleware.GetReqID(r.Context()),
	})
}
