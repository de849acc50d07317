package middleware

import (
	"mime"
	"net/http"
)

// RequireJSON rejects request bodies that are not declared as JSON.
// Requests without a body pass through, so POST actions like
// /leases/{id}/activate need no Content-Type.
func RequireJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch:
		default:
			next.ServeHTTP(w, r)
			return
		}

		if r.ContentLength == 0 {
			next.ServeHTTP(w, r)
			return
		}

		mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
		if err != nil || mediaType != "application/json" {
			writeErrorJSON(w, http.StatusUnsupportedMediaType, "UNSUPPORTED_MEDIA_TYPE",
				"Content-Type must be application/json")
			return
		}

		next.ServeHTTP(w, r)
	})
}
