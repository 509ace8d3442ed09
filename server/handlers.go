package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/poiesic/conformit/core"
	"github.com/poiesic/conformit/ecl"
	"github.com/poiesic/conformit/logical"
	"github.com/poiesic/conformit/search"
	"github.com/poiesic/conformit/storage"
)

// maxTemplateBody bounds the size of a template upload.
const maxTemplateBody = 1 << 20

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListTemplates(w http.ResponseWriter, r *http.Request) {
	all, err := s.templates.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if all == nil {
		all = []*core.ConceptTemplate{}
	}
	writeJSON(w, http.StatusOK, all)
}

func (s *Server) handleGetTemplate(w http.ResponseWriter, r *http.Request) {
	name, err := templateName(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	template, err := s.templates.LoadTemplate(r.Context(), name)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, template)
}

func (s *Server) handleSaveTemplate(w http.ResponseWriter, r *http.Request) {
	name, err := templateName(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var template core.ConceptTemplate
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxTemplateBody)).Decode(&template); err != nil {
		s.writeError(w, r, fmt.Errorf("%w: decoding template: %w", core.ErrInvalidArgument, err))
		return
	}
	template.Name = name

	saved, err := s.templates.Save(r.Context(), &template)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

func (s *Server) handleDeleteTemplate(w http.ResponseWriter, r *http.Request) {
	name, err := templateName(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.templates.Delete(r.Context(), name); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleTemplateECL(w http.ResponseWriter, r *http.Request) {
	name, err := templateName(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	template, err := s.templates.LoadTemplate(r.Context(), name)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	lt, err := logical.Parse(template.LogicalTemplate)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	queries, err := ecl.CompileQueries(lt)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, queries)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	name, err := templateName(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	q := r.URL.Query()

	req := search.Request{
		TemplateName: name,
		Branch:       q.Get("branch"),
	}
	if req.Branch == "" {
		s.writeError(w, r, fmt.Errorf("%w: branch is required", core.ErrInvalidArgument))
		return
	}
	if req.LogicalMatch, err = optionalBool(q, "logicalMatch"); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.LexicalMatch, err = optionalBool(q, "lexicalMatch"); err != nil {
		s.writeError(w, r, err)
		return
	}
	stated, err := optionalBool(q, "stated")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	req.Stated = stated == nil || *stated

	result, err := s.searcher.Search(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// templateName returns the unescaped {name} path parameter.
func templateName(r *http.Request) (string, error) {
	name, err := url.PathUnescape(chi.URLParam(r, "name"))
	if err != nil {
		return "", fmt.Errorf("%w: template name: %w", core.ErrInvalidArgument, err)
	}
	if name == "" {
		return "", fmt.Errorf("%w: template name is required", core.ErrInvalidArgument)
	}
	return name, nil
}

func optionalBool(q url.Values, key string) (*bool, error) {
	raw := q.Get(key)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be a boolean, got %q", core.ErrInvalidArgument, key, raw)
	}
	return &v, nil
}

// statusOf maps an error to its HTTP status.
func statusOf(err error) int {
	switch {
	case errors.Is(err, core.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrNotFound), errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrParse), errors.Is(err, core.ErrInvalidTemplate):
		return http.StatusBadRequest
	case errors.Is(err, search.ErrService):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusOf(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "status", status, "err", err)
	} else {
		s.logger.Debug("request rejected", "method", r.Method, "path", r.URL.Path, "status", status, "err", err)
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
