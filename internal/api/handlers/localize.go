package handlers

import (
	"archive/zip"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"golang.org/x/text/language"

	"github.com/brandops/backend/internal/job"
)

// LocalizeHandler exposes the job coordinator over HTTP.
type LocalizeHandler struct {
	coordinator *job.Coordinator
	validate    *validator.Validate
}

func NewLocalizeHandler(coordinator *job.Coordinator) *LocalizeHandler {
	return &LocalizeHandler{
		coordinator: coordinator,
		validate:    validator.New(),
	}
}

// Submit accepts a localization request and returns the queued job.
func (h *LocalizeHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req job.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		jsonError(w, http.StatusBadRequest, validationMessage(err))
		return
	}
	if err := checkLanguages(req.Languages); err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}
	if _, err := os.Stat(req.VideoPath); err != nil {
		jsonError(w, http.StatusBadRequest, "video not found: "+req.VideoPath)
		return
	}

	j, err := h.coordinator.Submit(r.Context(), req)
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}
	jsonResponse(w, http.StatusAccepted, j)
}

// ListJobs returns all jobs, newest first.
func (h *LocalizeHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.coordinator.List(r.Context())
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list jobs")
		return
	}
	if jobs == nil {
		jobs = []*job.Job{}
	}
	jsonResponse(w, http.StatusOK, jobs)
}

// GetJob returns one job record.
func (h *LocalizeHandler) GetJob(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	j, err := h.coordinator.Get(r.Context(), id)
	if errors.Is(err, job.ErrNotFound) {
		jsonError(w, http.StatusNotFound, "job not found")
		return
	}
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to load job")
		return
	}
	jsonResponse(w, http.StatusOK, j)
}

// CancelJob requests cooperative cancellation of a running job.
func (h *LocalizeHandler) CancelJob(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	err := h.coordinator.Cancel(r.Context(), id)
	if errors.Is(err, job.ErrNotFound) {
		jsonError(w, http.StatusNotFound, "job not found")
		return
	}
	if err != nil {
		jsonError(w, http.StatusConflict, err.Error())
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"status": "cancelling"})
}

// DeleteJob removes a finished job and its rendered outputs. The caller
// identifies itself with the author query parameter.
func (h *LocalizeHandler) DeleteJob(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	author := r.URL.Query().Get("author")
	if author == "" {
		jsonError(w, http.StatusBadRequest, "author query parameter required")
		return
	}

	err := h.coordinator.Delete(r.Context(), id, author)
	if errors.Is(err, job.ErrNotFound) {
		jsonError(w, http.StatusNotFound, "job not found")
		return
	}
	if err != nil {
		jsonError(w, http.StatusConflict, err.Error())
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// DownloadOutput serves one language's rendered video.
func (h *LocalizeHandler) DownloadOutput(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	lang := chi.URLParam(r, "lang")

	path, err := h.coordinator.OutputPath(r.Context(), id, lang)
	if errors.Is(err, job.ErrNotFound) {
		jsonError(w, http.StatusNotFound, "job not found")
		return
	}
	if err != nil {
		jsonError(w, http.StatusNotFound, err.Error())
		return
	}

	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", filepath.Base(path)))
	http.ServeFile(w, r, path)
}

// DownloadArchive streams a zip of every rendered language for a job.
func (h *LocalizeHandler) DownloadArchive(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	j, err := h.coordinator.Get(r.Context(), id)
	if errors.Is(err, job.ErrNotFound) {
		jsonError(w, http.StatusNotFound, "job not found")
		return
	}
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to load job")
		return
	}
	if len(j.Outputs) == 0 {
		jsonError(w, http.StatusNotFound, "no rendered outputs yet")
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", id+".zip"))

	zw := zip.NewWriter(w)
	for lang, path := range j.Outputs {
		f, err := os.Open(path)
		if err != nil {
			log.Error().Err(err).Str("job", id).Str("lang", lang).Msg("missing output file for archive")
			continue
		}
		entry, err := zw.Create(strings.ToLower(lang) + ".mp4")
		if err != nil {
			f.Close()
			break
		}
		if _, err := io.Copy(entry, f); err != nil {
			f.Close()
			// Headers are already sent, nothing useful to report to the client.
			log.Error().Err(err).Str("job", id).Str("lang", lang).Msg("archive stream interrupted")
			break
		}
		f.Close()
	}
	if err := zw.Close(); err != nil {
		log.Error().Err(err).Str("job", id).Msg("failed to finalize archive")
	}
}

// checkLanguages rejects codes the BCP 47 parser cannot make sense of
// before they reach the translation prompt.
func checkLanguages(langs []string) error {
	for _, l := range langs {
		if _, err := language.Parse(l); err != nil {
			return fmt.Errorf("unknown language code %q", l)
		}
	}
	return nil
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		f := verrs[0]
		return fmt.Sprintf("field %s failed %s validation", strings.ToLower(f.Field()), f.Tag())
	}
	return "invalid request"
}
