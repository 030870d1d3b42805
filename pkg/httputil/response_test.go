package httputil

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestError(t *testing.T) {
	rec := httptest.NewRecorder()
	Error(rec, http.StatusNotFound, "NOT_FOUND", "event not found")

	if rec.Code != http.StatusNotFound {
		t.Errorf("want 404, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("want application/json, got %s", ct)
	}
	var body ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if body.Code != "NOT_FOUND" || body.Message != "event not found" {
		t.Errorf("unexpected body: %+v", body)
	}
}

func TestDecodeJSON(t *testing.T) {
	var dst struct {
		Name string `json:"name"`
	}

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"Alex"}`))
	if err := DecodeJSON(req, &dst); err != nil || dst.Name != "Alex" {
		t.Errorf("unexpected result: %+v %v", dst, err)
	}

	for _, body := range []string{`{"name":`, `{"nickname":"A"}`, ``} {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		if err := DecodeJSON(req, &dst); !errors.Is(err, ErrInvalidBody) {
			t.Errorf("%q: want ErrInvalidBody, got %v", body, err)
		}
	}
}
