package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/dgallion1/bookseg/internal/book"
	"github.com/dgallion1/bookseg/internal/parser"
	"github.com/dgallion1/bookseg/internal/pipeline"
	"github.com/dgallion1/bookseg/internal/render"
	"github.com/go-chi/chi/v5"
)

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	// Limit total request size.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024) // extra 1MB for form overhead

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	filename := sanitizeFilename(header.Filename)
	if !parser.IsSupportedExtension(filename) {
		jsonError(w, fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)), http.StatusBadRequest)
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
	if err != nil {
		jsonError(w, "failed to read file", http.StatusInternalServerError)
		return
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		jsonError(w, fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
		return
	}
	if len(bytes.TrimSpace(data)) == 0 {
		jsonError(w, "file is empty", http.StatusBadRequest)
		return
	}

	now := time.Now()
	job := &pipeline.Job{
		ID:        pipeline.NewJobID(filename, now),
		Status:    pipeline.StatusQueued,
		Phase:     "queued",
		Filename:  filename,
		Title:     strings.TrimSpace(r.FormValue("title")),
		CreatedAt: now,
		UpdatedAt: now,
	}
	job.SetFileData(data)

	if err := s.orchestrator.Submit(job); err != nil {
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]any{
		"job_id":   job.ID,
		"status":   pipeline.StatusQueued,
		"poll_url": fmt.Sprintf("/api/books/%s/status", job.ID),
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	job := s.orchestrator.GetJob(chi.URLParam(r, "jobID"))
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(job.Snapshot())
}

func (s *Server) handleBook(w http.ResponseWriter, r *http.Request) {
	b, ok := s.completedBook(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(bookPayload(b))
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	b, ok := s.completedBook(w, r)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := render.Book(&buf, b); err != nil {
		jsonError(w, "render failed: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	buf.WriteTo(w)
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	b, ok := s.completedBook(w, r)
	if !ok {
		return
	}
	n, err := strconv.Atoi(chi.URLParam(r, "n"))
	if err != nil || n < 1 || n > len(b.Pages) {
		jsonError(w, fmt.Sprintf("page must be between 1 and %d", len(b.Pages)), http.StatusNotFound)
		return
	}
	var buf bytes.Buffer
	if err := render.Page(&buf, b, n); err != nil {
		jsonError(w, "render failed: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	buf.WriteTo(w)
}

func (s *Server) handleTOCWorkbook(w http.ResponseWriter, r *http.Request) {
	b, ok := s.completedBook(w, r)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := render.WriteTOCWorkbook(&buf, b); err != nil {
		jsonError(w, "workbook failed: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s-toc.xlsx"`, b.ID))
	buf.WriteTo(w)
}

// completedBook writes the error response itself when the job is missing
// or still running.
func (s *Server) completedBook(w http.ResponseWriter, r *http.Request) (*book.Book, bool) {
	job := s.orchestrator.GetJob(chi.URLParam(r, "jobID"))
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return nil, false
	}
	b := job.Book()
	if b == nil {
		snap := job.Snapshot()
		jsonError(w, fmt.Sprintf("book not ready (status %s)", snap.Status), http.StatusConflict)
		return nil, false
	}
	return b, true
}

// bookPayload is the JSON view of a book. Pages are left out; they are
// served one at a time.
func bookPayload(b *book.Book) map[string]any {
	return map[string]any{
		"id":         b.ID,
		"title":      b.Title,
		"blocks":     b.Blocks,
		"discarded":  b.Discarded,
		"annotated":  b.Annotated,
		"pages":      len(b.Pages),
		"toc":        render.TOC(b),
		"chapters":   b.Chapters,
		"created_at": b.CreatedAt,
	}
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "unnamed"
	}
	return name
}
