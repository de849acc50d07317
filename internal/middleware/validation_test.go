package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRequireJSON(t *testing.T) {
	tests := []struct {
		name        string
		method      string
		body        string
		contentType string
		wantStatus  int
	}{
		{"json body", http.MethodPost, `{"a":1}`, "application/json", http.StatusOK},
		{"json with charset", http.MethodPatch, `{"a":1}`, "application/json; charset=utf-8", http.StatusOK},
		{"form body", http.MethodPost, "a=1", "application/x-www-form-urlencoded", http.StatusUnsupportedMediaType},
		{"missing content type", http.MethodPut, `{"a":1}`, "", http.StatusUnsupportedMediaType},
		{"empty action post", http.MethodPost, "", "", http.StatusOK},
		{"get ignores content type", http.MethodGet, "", "text/plain", http.StatusOK},
		{"delete ignores content type", http.MethodDelete, "", "", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req *http.Request
			if tt.body != "" {
				req = httptest.NewRequest(tt.method, "/api/v1/leases", strings.NewReader(tt.body))
			} else {
				req = httptest.NewRequest(tt.method, "/api/v1/leases", nil)
			}
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}

			rec := httptest.NewRecorder()
			RequireJSON(okHandler).ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantStatus == http.StatusUnsupportedMediaType && errorCode(t, rec) != "UNSUPPORTED_MEDIA_TYPE" {
				t.Error("expected UNSUPPORTED_MEDIA_TYPE error code")
			}
		})
	}
}
