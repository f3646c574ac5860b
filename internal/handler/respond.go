package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/AlexZinkM/yield-agent/internal/model"
	"github.com/AlexZinkM/yield-agent/internal/registry"

	log "github.com/sirupsen/logrus"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithError(err).Warn("failed to write response")
	}
}

// statusClientClosedRequest reports a request abandoned by the client
const statusClientClosedRequest = 499

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, model.ErrorResponse{Error: msg, Code: code})
}

// writeRegistryError maps a wallet error kind to its HTTP status
func writeRegistryError(w http.ResponseWriter, err error) {
	var status int
	var code string
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		status, code = http.StatusGatewayTimeout, model.CodeTimeout
	case errors.Is(err, context.Canceled):
		status, code = statusClientClosedRequest, model.CodeCanceled
	case registry.IsValidationError(err):
		status, code = http.StatusBadRequest, model.CodeValidation
	case registry.IsNotFoundError(err):
		status, code = http.StatusNotFound, model.CodeNotFound
	case registry.IsDuplicateCreateError(err):
		status, code = http.StatusConflict, model.CodeConflict
	case registry.IsCustodyError(err):
		status, code = http.StatusBadGateway, model.CodeCustody
	case registry.IsPersistenceError(err):
		status, code = http.StatusInternalServerError, model.CodePersistence
	default:
		status, code = http.StatusInternalServerError, model.CodeInternal
	}
	if status >= http.StatusInternalServerError {
		log.WithError(err).WithField("code", code).Error("wallet request failed")
	}
	writeError(w, status, code, err.Error())
}

func methodNotAllowed(w http.ResponseWriter, allowed string) {
	w.Header().Set("Allow", allowed)
	http.Error(w, "Method not allowed. Should be "+allowed, http.StatusMethodNotAllowed)
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, model.CodeValidation, "invalid request body: "+err.Error())
		return false
	}
	return true
}
