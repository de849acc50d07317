package handler

import (
	"net/http"
	"strconv"

	"github.com/rentdesk/rentdesk/internal/auth"
	"github.com/rentdesk/rentdesk/internal/handler/dto"
	"github.com/rentdesk/rentdesk/internal/model"
)

// actor returns the authenticated caller, answering 401 when there is none.
func actor(w http.ResponseWriter, r *http.Request) (*model.AuthContext, bool) {
	a := auth.AuthFromContext(r.Context())
	if a == nil {
		writeUnauthorized(w)
		return nil, false
	}
	return a, true
}

// decode reads the request body into dst, answering 400/422 on failure.
func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := dto.Decode(r.Body, dst); err != nil {
		writeDecodeError(w, err)
		return false
	}
	return true
}

// page reads the cursor and limit query parameters.
// A malformed limit falls back to the service default.
func page(r *http.Request) (string, int) {
	query := r.URL.Query()
	limit := 0
	if l := query.Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	return query.Get("cursor"), limit
}

// queryBool parses a boolean query parameter; anything unparsable is false.
func queryBool(r *http.Request, name string) bool {
	v, err := strconv.ParseBool(r.URL.Query().Get(name))
	return err == nil && v
}
