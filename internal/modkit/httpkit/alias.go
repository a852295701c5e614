// Package httpkit provides handler and routing helpers that alias the platform http package
// use these from modules so they do not import internal/platform/net/http directly
package httpkit

import (
	"net/http"

	phttp "shamewizard/internal/platform/net/http"
)

type (
	// Envelope is the transport envelope type
	Envelope = phttp.Envelope

	// Handler is the platform handler type
	Handler = phttp.Handler

	// Router is a re-export of the platform router seam
	Router = phttp.Router
)

// Call adapts a handler that returns a value or an error
func Call(fn func(*http.Request) (any, error)) Handler { return phttp.JSONHandler(fn) }

// GetJSON mounts a pure JSON handler for GET
func GetJSON(r Router, path string, fn func(*http.Request) (any, error)) {
	phttp.GetJSON(r, path, fn)
}

// OK writes a 200 envelope carrying data
func OK(w http.ResponseWriter, r *http.Request, data any) { phttp.RespondOK(w, r, data) }

// Error writes an error envelope with the mapped status
func Error(w http.ResponseWriter, r *http.Request, err error) { phttp.RespondError(w, r, err) }
