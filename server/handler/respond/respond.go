// Package respond holds the JSON plumbing shared by the API handlers.
package respond

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/go-playground/validator/v10"

	"go.lepak.sg/metro-planner/auth"
	"go.lepak.sg/metro-planner/data"
	"go.lepak.sg/metro-planner/store"
	"go.lepak.sg/metro-planner/ticket"
)

const maxBody = 1 << 16

var validate = validator.New()

// JSON writes v with the given status code.
func JSON(w http.ResponseWriter, code int, v interface{}) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Printf("error: marshal of response: %v", err)
		Error(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("content-type", "application/json")
	w.WriteHeader(code)
	if _, err := w.Write(b); err != nil {
		log.Printf("error: writing response: %v", err)
	}
}

// Bytes writes a body that is already encoded.
func Bytes(w http.ResponseWriter, contentType string, b []byte) {
	w.Header().Set("content-type", contentType)
	if _, err := w.Write(b); err != nil {
		log.Printf("error: writing response: %v", err)
	}
}

func Error(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("content-type", "application/json")
	w.WriteHeader(code)
	if _, err := fmt.Fprintf(w, "{\"error\":%q}", msg); err != nil {
		log.Printf("error: double fault writing error response: %v", err)
	}
}

// Err writes err with the status StatusOf picks for it. Server errors are
// logged and their text is not sent to the client.
func Err(w http.ResponseWriter, err error) {
	code := StatusOf(err)
	if code >= http.StatusInternalServerError {
		log.Printf("error: %v", err)
		Error(w, code, http.StatusText(code))
		return
	}
	Error(w, code, err.Error())
}

func StatusOf(err error) int {
	var ve data.ValidationError
	var vErrs validator.ValidationErrors
	var tooBig *http.MaxBytesError

	switch {
	case errors.As(err, &ve), errors.As(err, &vErrs), errors.Is(err, data.ErrUnknownStation):
		return http.StatusBadRequest
	case errors.As(err, &tooBig):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, auth.ErrInvalidCredentials), errors.Is(err, auth.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrExists), errors.Is(err, auth.ErrUserExists),
		errors.Is(err, data.ErrDuplicateStation), errors.Is(err, ticket.ErrNotCancellable):
		return http.StatusConflict
	case errors.Is(err, ticket.ErrUnreachable), errors.Is(err, ticket.ErrNoFare):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// Decode reads a JSON request body into v and validates it.
func Decode(w http.ResponseWriter, r *http.Request, v interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return err
		}
		return data.ValidationError(fmt.Sprintf("invalid request body: %v", err))
	}
	return validate.Struct(v)
}
