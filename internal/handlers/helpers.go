package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/sowhat1234/yazamutforum/internal/apperr"
)

type errorBody struct {
	Code    apperr.Kind `json:"code"`
	Message string      `json:"message"`
}

func writeJSON(w http.ResponseWriter, log *log.Logger, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

func writeData(w http.ResponseWriter, log *log.Logger, data any) {
	writeJSON(w, log, http.StatusOK, map[string]any{"data": data})
}

// handleError writes err as an error envelope. Internal failures are logged
// and their details withheld from the client.
func handleError(w http.ResponseWriter, log *log.Logger, procedure string, err error) {
	kind := apperr.KindOf(err)
	message := "internal server error"
	var e *apperr.Error
	if kind != apperr.Internal && errors.As(err, &e) {
		message = e.Message
	} else {
		log.Printf("%s: %v", procedure, err)
	}
	writeJSON(w, log, kind.Status(), map[string]any{"error": errorBody{Code: kind, Message: message}})
}
