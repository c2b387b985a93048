package common

import (
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/bytedance/sonic"
)

type Encoder interface {
	Encode(v any) error
}

// HttpError carries the status code a handler wants written.
type HttpError struct {
	Status int
	Err    error
}

func (e *HttpError) Error() string {
	return fmt.Sprintf("%d: %v", e.Status, e.Err)
}

func (e *HttpError) Unwrap() error {
	return e.Err
}

func BadRequest(err error) error {
	return &HttpError{Status: http.StatusBadRequest, Err: err}
}

func NotFound(err error) error {
	return &HttpError{Status: http.StatusNotFound, Err: err}
}

// JsonHandler sets up CORS and JSON headers, answers preflight requests and
// turns a returned error into a status code. A handler that already wrote a
// body must return nil.
func JsonHandler(fn func(w http.ResponseWriter, r *http.Request, enc Encoder) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			RespondToOptions(w, r)
			return
		}
		if origin := r.Header.Get("Origin"); origin != "" {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
		}
		w.Header().Set("Content-Type", "application/json")

		err := fn(w, r, sonic.ConfigDefault.NewEncoder(w))
		if err == nil {
			return
		}
		status := http.StatusInternalServerError
		var httpErr *HttpError
		if errors.As(err, &httpErr) {
			status = httpErr.Status
		}
		log.Printf("Error handling %s %s: %v", r.Method, r.URL.Path, err)
		http.Error(w, http.StatusText(status), status)
	}
}

func RespondToOptions(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "public, max-age=3600")
	origin := r.Header.Get("Origin")
	if origin != "" {
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Max-Age", "86400")
		w.Header().Set("Access-Control-Allow-Methods", "GET, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "*")
		w.Header().Set("Access-Control-Allow-Credentials", "true")
	}
	w.Header().Set("Age", "0")
	w.WriteHeader(http.StatusAccepted)
}
