package server

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/stateflow/pkg/buildinfo"
	"github.com/matzehuels/stateflow/pkg/errors"
	"github.com/matzehuels/stateflow/pkg/focus"
	sfio "github.com/matzehuels/stateflow/pkg/io"
	"github.com/matzehuels/stateflow/pkg/lint"
	"github.com/matzehuels/stateflow/pkg/model"
	"github.com/matzehuels/stateflow/pkg/pipeline"
	"github.com/matzehuels/stateflow/pkg/render/sink"
)

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, struct {
		Status string `json:"status"`
		buildinfo.Info
	}{"ok", buildinfo.Get()})
}

func (s *Server) listDiagrams(w http.ResponseWriter, r *http.Request) {
	list, err := s.store.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

type createRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (s *Server) createDiagram(w http.ResponseWriter, r *http.Request) {
	var body createRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&body); err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid request body"))
		return
	}
	if err := errors.ValidateName(body.Name); err != nil {
		s.writeError(w, r, err)
		return
	}

	d := model.New(strings.TrimSpace(body.Name), s.now())
	d.Description = body.Description
	if err := s.store.Put(r.Context(), d); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.logger.Info("created diagram", "id", d.ID, "name", d.Name)
	writeJSON(w, http.StatusCreated, sfio.ToRecord(d))
}

// load fetches the diagram named by the {id} path parameter.
func (s *Server) load(r *http.Request) (*model.Diagram, error) {
	id := chi.URLParam(r, "id")
	if err := errors.ValidateID(id); err != nil {
		return nil, err
	}
	return s.store.Get(r.Context(), id)
}

func (s *Server) getDiagram(w http.ResponseWriter, r *http.Request) {
	d, err := s.load(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sfio.ToRecord(d))
}

// putDiagram replaces a diagram with an uploaded document. The document
// goes through the import rules; its id is forced to the path id.
func (s *Server) putDiagram(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := errors.ValidateID(id); err != nil {
		s.writeError(w, r, err)
		return
	}
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "read request body"))
		return
	}

	format := sfio.FormatJSON
	if strings.Contains(r.Header.Get("Content-Type"), "yaml") {
		format = sfio.FormatYAML
	}
	now := s.now()
	d, err := sfio.Import(data, format, now)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	d.ID = id
	d.UpdatedAt = now.UTC().Truncate(time.Millisecond)

	if err := s.store.Put(r.Context(), d); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.logger.Info("saved diagram", "id", d.ID, "actors", len(d.Actors), "flows", len(d.Flows))
	writeJSON(w, http.StatusOK, sfio.ToRecord(d))
}

func (s *Server) deleteDiagram(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := errors.ValidateID(id); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.store.Delete(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.logger.Info("deleted diagram", "id", id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) getLayout(w http.ResponseWriter, r *http.Request) {
	d, err := s.load(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	l, _, err := s.runner.Layout(r.Context(), d, s.layout)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	data, err := sink.RenderJSON(l, sink.WithJSONDiagram(d.ID, d.Name))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeRaw(w, "application/json", data)
}

// render serves one artifact. Query parameters: legend, focus, scale,
// detailed and refresh.
func (s *Server) render(w http.ResponseWriter, r *http.Request) {
	format := chi.URLParam(r, "format")
	if err := pipeline.ValidateFormat(format); err != nil {
		s.writeError(w, r, err)
		return
	}
	d, err := s.load(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	q := r.URL.Query()
	opts := pipeline.Options{
		Layout:   s.layout,
		Formats:  []string{format},
		Legend:   queryBool(q.Get("legend")),
		Focus:    q.Get("focus"),
		Detailed: queryBool(q.Get("detailed")),
		Refresh:  queryBool(q.Get("refresh")),
		Logger:   s.logger,
	}
	if v := q.Get("scale"); v != "" {
		scale, err := strconv.ParseFloat(v, 64)
		if err != nil || scale <= 0 || scale > 8 {
			s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "scale must be a number in (0, 8]"))
			return
		}
		opts.Scale = scale
	}

	res, err := s.runner.Render(r.Context(), d, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if res.CacheInfo.RenderHit {
		w.Header().Set("X-Cache", "HIT")
	} else {
		w.Header().Set("X-Cache", "MISS")
	}
	writeRaw(w, pipeline.ContentType(format), res.Artifacts[format])
}

func (s *Server) getFocus(w http.ResponseWriter, r *http.Request) {
	d, err := s.load(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	flowID := chi.URLParam(r, "flowID")
	l, _, err := s.runner.Layout(r.Context(), d, s.layout)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	t, ok := focus.Resolve(l, flowID)
	if !ok {
		s.writeError(w, r, errors.New(errors.ErrCodeNotFound, "flow %q has nothing to focus", flowID))
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) check(w http.ResponseWriter, r *http.Request) {
	d, err := s.load(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, lint.Check(d))
}

func queryBool(v string) bool {
	b, _ := strconv.ParseBool(v)
	return b
}
