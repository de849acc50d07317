// Package handler holds the HTTP handlers of the Rentdesk API.
// Handlers decode and validate input, call the service layer and map
// service errors onto the JSON error envelope.
package handler

import (
	"encoding/json"
	"net/http"
)

// Version is stamped at build time with -ldflags "-X ...handler.Version=...".
var Version = "dev"

// serviceInfo is the body of GET /.
type serviceInfo struct {
	Service string `json:"service"`
	Version string `json:"version"`
	APIBase string `json:"api_base"`
}

// Handler serves the routes that belong to no resource.
type Handler struct {
	info serviceInfo
}

// New builds the root handler.
func New() *Handler {
	return &Handler{info: serviceInfo{Service: "rentdesk", Version: Version, APIBase: "/api/v1"}}
}

// Root reports what is running. GET /
func (h *Handler) Root(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.info)
}

// NotFound answers unknown paths with the error envelope.
func (h *Handler) NotFound(w http.ResponseWriter, _ *http.Request) {
	writeError(w, http.StatusNotFound, "NOT_FOUND", "Resource not found")
}

// MethodNotAllowed answers known paths hit with the wrong verb.
func (h *Handler) MethodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed")
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
