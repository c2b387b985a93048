package common

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestJsonHandlerStatus(t *testing.T) {
	h := JsonHandler(func(w http.ResponseWriter, r *http.Request, enc Encoder) error {
		if r.URL.Query().Get("fail") != "" {
			return BadRequest(errors.New("bad"))
		}
		return enc.Encode(map[string]string{"ok": "yes"})
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/?fail=1", nil)
	h(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://example.com")
	h(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "https://example.com" {
		t.Errorf("Expected CORS origin header")
	}

	rec = httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodOptions, "/", nil))
	if rec.Code != http.StatusAccepted {
		t.Errorf("Expected 202 for preflight, got %d", rec.Code)
	}
}
