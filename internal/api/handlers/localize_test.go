package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/brandops/backend/internal/db"
	"github.com/brandops/backend/internal/job"
	"github.com/brandops/backend/internal/quality"
	"github.com/brandops/backend/internal/render"
	"github.com/brandops/backend/internal/segment"
)

func testRouter(t *testing.T) (http.Handler, string) {
	t.Helper()
	dir := t.TempDir()

	store, err := db.NewJobStore(filepath.Join(dir, "jobs.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	stages := job.Stages{
		Analyze: func(ctx context.Context, videoPath, workDir string) ([]segment.Segment, error) {
			return []segment.Segment{{Text: "SALE", Start: 0, End: 1, Position: "bottom"}}, nil
		},
		Translate: func(ctx context.Context, texts, langs []string) ([]map[string]string, error) {
			out := make([]map[string]string, len(texts))
			for i, txt := range texts {
				out[i] = map[string]string{}
				for _, l := range langs {
					out[i][l] = txt
				}
			}
			return out, nil
		},
		Render: func(ctx context.Context, input, output string, cues []render.LocalizedCue, fontSize int, scratchDir string) error {
			os.MkdirAll(filepath.Dir(output), 0755)
			return os.WriteFile(output, []byte("mp4"), 0644)
		},
		Check: func(ctx context.Context, lang string, texts []string) quality.Check {
			return quality.Check{Passed: true}
		},
	}
	coord := job.NewCoordinator(store, stages, filepath.Join(dir, "out"), filepath.Join(dir, "work"))

	h := NewLocalizeHandler(coord)
	r := chi.NewRouter()
	r.Post("/api/localize", h.Submit)
	r.Get("/api/localize/jobs", h.ListJobs)
	r.Get("/api/localize/jobs/{id}", h.GetJob)
	r.Delete("/api/localize/jobs/{id}", h.DeleteJob)
	return r, dir
}

func postJSON(t *testing.T, router http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestSubmit_MissingName(t *testing.T) {
	router, _ := testRouter(t)
	w := postJSON(t, router, "/api/localize", `{"author":"mika","video":"clip.mp4"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "name") {
		t.Fatalf("error should name the missing field: %s", w.Body.String())
	}
}

func TestSubmit_UnknownLanguage(t *testing.T) {
	router, dir := testRouter(t)
	video := filepath.Join(dir, "clip.mp4")
	os.WriteFile(video, []byte("x"), 0644)

	w := postJSON(t, router, "/api/localize",
		`{"name":"drop","author":"mika","video":"`+video+`","languages":["zz-not-a-code-!!"]}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d: %s", w.Code, w.Body.String())
	}
}

func TestSubmit_MissingVideoFile(t *testing.T) {
	router, _ := testRouter(t)
	w := postJSON(t, router, "/api/localize",
		`{"name":"drop","author":"mika","video":"/nope/missing.mp4"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d: %s", w.Code, w.Body.String())
	}
}

func TestSubmit_Accepted(t *testing.T) {
	router, dir := testRouter(t)
	video := filepath.Join(dir, "clip.mp4")
	os.WriteFile(video, []byte("x"), 0644)

	w := postJSON(t, router, "/api/localize",
		`{"name":"drop","author":"mika","video":"`+video+`","languages":["FR"]}`)
	if w.Code != http.StatusAccepted {
		t.Fatalf("expected 202 got %d: %s", w.Code, w.Body.String())
	}

	var j job.Job
	if err := json.Unmarshal(w.Body.Bytes(), &j); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if j.ID == "" || j.Status != job.StatusQueued {
		t.Fatalf("unexpected job record: %+v", j)
	}
}

func TestGetJob_NotFound(t *testing.T) {
	router, _ := testRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/api/localize/jobs/nope", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", w.Code)
	}
}

func TestListJobs_EmptyIsArray(t *testing.T) {
	router, _ := testRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/api/localize/jobs", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", w.Code)
	}
	if strings.TrimSpace(w.Body.String()) != "[]" {
		t.Fatalf("empty list must encode as [], got %s", w.Body.String())
	}
}

func TestDeleteJob_RequiresAuthor(t *testing.T) {
	router, _ := testRouter(t)
	req := httptest.NewRequest(http.MethodDelete, "/api/localize/jobs/whatever", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d: %s", w.Code, w.Body.String())
	}
}
