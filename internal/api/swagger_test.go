package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	_ "smartrate/internal/api/docs"
)

func TestOpenAPISpecHandler(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/openapi.json", nil)
	w := httptest.NewRecorder()

	OpenAPISpecHandler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var doc struct {
		Swagger string                     `json:"swagger"`
		Paths   map[string]json.RawMessage `json:"paths"`
	}
	if err := json.NewDecoder(w.Body).Decode(&doc); err != nil {
		t.Fatalf("Failed to decode document: %v", err)
	}
	if doc.Swagger != "2.0" {
		t.Errorf("Expected swagger 2.0, got %s", doc.Swagger)
	}
	for _, path := range []string{"/smart-rate/{base}/{target}", "/predict/{pair}", "/cache/stats"} {
		if _, ok := doc.Paths[path]; !ok {
			t.Errorf("Expected path %s in document", path)
		}
	}
}
