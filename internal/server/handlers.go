package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"

	"github.com/go-chi/chi/v5"

	"notes-go/internal/notes"
)

const maxBodyBytes = 10 << 20

// fileResponse is a record as served by the API, with the icon the client
// should show for its type.
type fileResponse struct {
	*notes.FileRecord
	Icon string `json:"icon"`
}

func toResponse(rec *notes.FileRecord) fileResponse {
	return fileResponse{FileRecord: rec, Icon: notes.IconFor(rec.Type)}
}

func toResponses(recs []*notes.FileRecord) []fileResponse {
	out := make([]fileResponse, 0, len(recs))
	for _, rec := range recs {
		out = append(out, toResponse(rec))
	}
	return out
}

func (s *Server) scope(r *http.Request) string {
	if q := r.URL.Query().Get("scope"); q != "" {
		return q
	}
	return s.opts.Scope
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"backend": s.repo.Backend(),
	})
}

// listFiles handles GET /api/files. With ?q= it searches by name.
func (s *Server) listFiles(w http.ResponseWriter, r *http.Request) {
	recs, err := s.repo.Search(r.Context(), s.scope(r), r.URL.Query().Get("q"))
	if err != nil {
		s.writeRepoError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toResponses(recs))
}

func (s *Server) createFile(w http.ResponseWriter, r *http.Request) {
	rec, err := s.repo.CreateEmpty(r.Context(), s.scope(r))
	if err != nil {
		s.writeRepoError(w, r, err)
		return
	}
	w.Header().Set("Location", "/api/files/"+rec.ID)
	writeJSON(w, http.StatusCreated, toResponse(rec))
}

func (s *Server) clearFiles(w http.ResponseWriter, r *http.Request) {
	n, err := s.repo.Clear(r.Context(), s.scope(r))
	if err != nil {
		s.writeRepoError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"removed": n})
}

func (s *Server) getFile(w http.ResponseWriter, r *http.Request) {
	rec, err := s.repo.Read(r.Context(), s.scope(r), chi.URLParam(r, "id"))
	if err != nil {
		s.writeRepoError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toResponse(rec))
}

// putFile handles PUT /api/files/{id}: a full replace. The server stamps
// modifiedAt. createdAt is kept from the stored record; a body value that
// disagrees with it is rejected. For a new record a missing createdAt
// means now.
func (s *Server) putFile(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	scope := s.scope(r)

	var rec notes.FileRecord
	if !decodeBody(w, r, &rec) {
		return
	}
	if rec.ID == "" {
		rec.ID = id
	}
	if rec.ID != id {
		writeError(w, http.StatusBadRequest, CodeValidationError,
			fmt.Sprintf("body id %q does not match path id %q", rec.ID, id))
		return
	}

	now := s.repo.Now()
	existing, err := s.repo.Read(r.Context(), scope, id)
	switch {
	case err == nil:
		if !rec.CreatedAt.IsZero() && !rec.CreatedAt.Equal(existing.CreatedAt) {
			writeError(w, http.StatusUnprocessableEntity, CodeValidationError,
				fmt.Sprintf("createdAt of %q cannot be changed", id))
			return
		}
		rec.CreatedAt = existing.CreatedAt
		if now.Before(rec.CreatedAt) {
			// Clock behind the stored createdAt.
			now = rec.CreatedAt
		}
	case errors.Is(err, notes.ErrNotFound):
	default:
		s.writeRepoError(w, r, err)
		return
	}

	rec.ModifiedAt = now
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	rec.Size = nil

	if err := s.repo.Write(r.Context(), scope, &rec); err != nil {
		s.writeRepoError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toResponse(&rec))
}

func (s *Server) patchFile(w http.ResponseWriter, r *http.Request) {
	var edit notes.Edit
	if !decodeBody(w, r, &edit) {
		return
	}
	if edit.Empty() {
		writeError(w, http.StatusBadRequest, CodeValidationError, "nothing to update: set name, content or type")
		return
	}

	rec, err := s.repo.Update(r.Context(), s.scope(r), chi.URLParam(r, "id"), edit)
	if err != nil {
		s.writeRepoError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toResponse(rec))
}

func (s *Server) deleteFile(w http.ResponseWriter, r *http.Request) {
	if err := s.repo.Remove(r.Context(), s.scope(r), chi.URLParam(r, "id")); err != nil {
		s.writeRepoError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// downloadExporter writes exported content as an attachment response.
type downloadExporter struct {
	w       http.ResponseWriter
	started bool
}

func (d *downloadExporter) Export(_ context.Context, filename, content string) (string, error) {
	d.w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	d.w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	d.w.WriteHeader(http.StatusOK)
	d.started = true
	if _, err := io.WriteString(d.w, content); err != nil {
		return "", err
	}
	return filename, nil
}

func (s *Server) exportFile(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	d := &downloadExporter{w: w}
	if _, err := s.repo.Export(r.Context(), s.scope(r), id, d); err != nil {
		if d.started {
			s.logger.Warn("export download interrupted", "id", id, "error", err)
			return
		}
		s.writeRepoError(w, r, err)
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, CodeValidationError, "invalid JSON body: "+err.Error())
		return false
	}
	return true
}
