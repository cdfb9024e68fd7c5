package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"

	"github.com/dgallion1/bookseg/internal/render"
	"github.com/dgallion1/bookseg/internal/segment"
)

type segmentRequest struct {
	HTML  string `json:"html"`
	Title string `json:"title"`
}

// handleSegment segments pasted markup synchronously. The body is either
// JSON {"html", "title"} or the raw markup, with the title in ?title=.
// ?format=html returns the reader page instead of JSON.
func (s *Server) handleSegment(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)

	var req segmentRequest
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				jsonError(w, fmt.Sprintf("body exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
				return
			}
			jsonError(w, "invalid json body: "+err.Error(), http.StatusBadRequest)
			return
		}
	} else {
		data, err := io.ReadAll(r.Body)
		if err != nil {
			jsonError(w, fmt.Sprintf("body exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
			return
		}
		req.HTML = string(data)
		req.Title = r.URL.Query().Get("title")
	}

	job, err := s.orchestrator.SegmentNow(req.Title, req.HTML)
	if errors.Is(err, segment.ErrEmptyInput) {
		jsonError(w, "html is required", http.StatusBadRequest)
		return
	}
	if err != nil {
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	b := job.Book()
	if r.URL.Query().Get("format") == "html" {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := render.Book(w, b); err != nil {
			s.log.Error("render book", "job_id", job.ID, "error", err)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"job":  job.Snapshot(),
		"book": bookPayload(b),
		"view": fmt.Sprintf("/api/books/%s/view", job.ID),
	})
}
