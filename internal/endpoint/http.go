package endpoint

import (
	"io"
	"net/http"
)

const maxBodyBytes = 1 << 20

// HTTPHandler adapts e to net/http.
func HTTPHandler(e *Endpoint) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
		if err != nil {
			body = nil
		}
		resp := e.Handle(r.Context(), Request{Method: r.Method, Body: body})
		if resp.StatusCode == http.StatusMethodNotAllowed {
			w.Header().Set("Allow", http.MethodPost)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(resp.StatusCode)
		_, _ = w.Write(resp.Body)
	})
}
