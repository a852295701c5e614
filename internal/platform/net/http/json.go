package http

import "net/http"

// JSONHandler adapts a pure JSON handler to a platform Handler
func JSONHandler(fn func(*http.Request) (any, error)) Handler {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := fn(r)
		if err != nil {
			RespondError(w, r, err)
			return
		}
		RespondOK(w, r, out)
	}
}

// GetJSON mounts a pure JSON handler for GET
func GetJSON(r Router, path string, h func(*http.Request) (any, error)) {
	r.Get(path, JSONHandler(h))
}
