package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/ayusman/mudra/internal/analyze"
	"github.com/ayusman/mudra/internal/classify"
	"github.com/ayusman/mudra/internal/detector"
)

type fakeController struct {
	mu      sync.Mutex
	enabled bool
}

func (c *fakeController) SetEnabled(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.enabled = enabled
}

func (c *fakeController) IsEnabled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.enabled
}

func newTestAnalyzer(t *testing.T) *analyze.Analyzer {
	t.Helper()

	vocab, err := analyze.LoadVocabulary(strings.NewReader("0,_background\n1,hello\n2,goodbye\n"))
	if err != nil {
		t.Fatalf("LoadVocabulary() error = %v", err)
	}

	a, err := analyze.New(analyze.Config{
		Vocabulary:    vocab,
		Normalization: analyze.IdentityNormalization(),
		Extractor:     detector.NewMock(),
		Classifier:    classify.NewMock(),
	})
	if err != nil {
		t.Fatalf("analyze.New() error = %v", err)
	}
	return a
}

func TestHandleHealth(t *testing.T) {
	srv := New(Config{Analyzer: newTestAnalyzer(t)})

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var response map[string]interface{}
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if response["status"] != "ok" {
		t.Errorf("status = %v, want %q", response["status"], "ok")
	}
	if response["state"] != "idle" {
		t.Errorf("state = %v, want %q", response["state"], "idle")
	}
}

func TestHandleHealth_MethodNotAllowed(t *testing.T) {
	srv := New(Config{})

	req := httptest.NewRequest(http.MethodPost, "/api/health", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusMethodNotAllowed)
	}
}

func TestHandleVocabulary(t *testing.T) {
	srv := New(Config{Analyzer: newTestAnalyzer(t)})

	req := httptest.NewRequest(http.MethodGet, "/api/vocabulary", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var response struct {
		Classes []struct {
			Index int    `json:"index"`
			Label string `json:"label"`
		} `json:"classes"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	if len(response.Classes) != 3 {
		t.Fatalf("len(classes) = %d, want 3", len(response.Classes))
	}
	if response.Classes[0].Index != 0 || response.Classes[0].Label != "_background" {
		t.Errorf("classes[0] = %+v, want index 0 / _background", response.Classes[0])
	}
	if response.Classes[1].Label != "hello" {
		t.Errorf("classes[1].Label = %q, want %q", response.Classes[1].Label, "hello")
	}
}

func TestHandleControl(t *testing.T) {
	ctrl := &fakeController{}
	srv := New(Config{Controller: ctrl})

	// Initially disabled.
	req := httptest.NewRequest(http.MethodGet, "/api/control", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	var response map[string]bool
	json.NewDecoder(rec.Body).Decode(&response)
	if response["enabled"] {
		t.Error("enabled = true initially, want false")
	}

	// Enable via POST.
	body := bytes.NewReader([]byte(`{"enabled": true}`))
	req = httptest.NewRequest(http.MethodPost, "/api/control", body)
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if !ctrl.IsEnabled() {
		t.Error("controller should be enabled after POST")
	}

	// Bad body.
	req = httptest.NewRequest(http.MethodPost, "/api/control", strings.NewReader("nope"))
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d for bad body, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestRoutes_DisabledWithoutDependencies(t *testing.T) {
	srv := New(Config{})

	paths := []string{"/api/vocabulary", "/api/control", "/api/sessions", "/api/output", "/api/stream"}
	for _, path := range paths {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Errorf("GET %s = %d without dependencies, want %d", path, rec.Code, http.StatusNotFound)
		}
	}
}
