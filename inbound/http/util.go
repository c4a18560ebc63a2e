package http

import (
	"encoding/json"
	"errors"
	"event-ticket/common/auth"
	"event-ticket/common/errs"
	"event-ticket/common/roster"
	"event-ticket/model"
	"github.com/go-playground/validator/v10"
	"net/http"
)

func writeJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if data == nil {
		return
	}

	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

func writeErrorResponse(w http.ResponseWriter, err error) {
	if err == nil {
		return
	}

	w.Header().Set("Content-Type", "application/json")

	var message string
	var data any

	var httpErr *errs.HttpError
	var rosterErr *roster.ValidationError
	var validationErr validator.ValidationErrors

	switch {
	case errors.As(err, &httpErr):
		message = httpErr.Message
		data = httpErr.Data
		w.WriteHeader(httpErr.Code)
	case errors.As(err, &rosterErr):
		message = rosterErr.Message
		if len(rosterErr.Fields) > 0 {
			data = rosterErr.Fields
		}
		w.WriteHeader(http.StatusBadRequest)
	case errors.As(err, &validationErr):
		message = "Validation failed"
		w.WriteHeader(http.StatusBadRequest)

		validationErrors := make(map[string]string)
		for _, fieldErr := range validationErr {
			validationErrors[fieldErr.Field()] = fieldErr.Tag()
		}

		data = validationErrors
	default:
		message = "Internal Server Error"
		w.WriteHeader(http.StatusInternalServerError)
	}

	errorResponse := model.ErrorResponse{Error: message, Data: data}
	if err := json.NewEncoder(w).Encode(errorResponse); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

var (
	errInvalidRequest = &errs.HttpError{Code: http.StatusBadRequest, Message: "Invalid request"}
	errUnauthorized   = &errs.HttpError{Code: http.StatusUnauthorized, Message: "Unauthorized"}
	errForbidden      = &errs.HttpError{Code: http.StatusForbidden, Message: "Forbidden"}
	errEventNotFound  = &errs.HttpError{Code: http.StatusNotFound, Message: "Event not found"}
	errAlreadyExists  = &errs.HttpError{Code: http.StatusConflict, Message: "Already registered"}
	errLimitReached   = &errs.HttpError{Code: http.StatusConflict, Message: "Registration limit reached"}
	errWindowClosed   = &errs.HttpError{Code: http.StatusBadRequest, Message: "Registration is closed for this event"}
)

// identityOf returns the caller attached by Authenticator. Handlers mounted without it answer 401.
func identityOf(w http.ResponseWriter, r *http.Request) (auth.Identity, bool) {
	id, ok := auth.FromContext(r.Context())
	if !ok {
		writeErrorResponse(w, errUnauthorized)
		return auth.Identity{}, false
	}
	return id, true
}
