package server

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/vfxgraph/pkg/buildinfo"
	"github.com/matzehuels/vfxgraph/pkg/errors"
	"github.com/matzehuels/vfxgraph/pkg/graph"
	"github.com/matzehuels/vfxgraph/pkg/model"
	"github.com/matzehuels/vfxgraph/pkg/schema"
	"github.com/matzehuels/vfxgraph/pkg/serial"
	"github.com/matzehuels/vfxgraph/pkg/store"
)

type statsJSON struct {
	Nodes    int `json:"nodes"`
	Systems  int `json:"systems"`
	Ports    int `json:"ports"`
	Links    int `json:"links"`
	Spawns   int `json:"spawns"`
	Triggers int `json:"triggers"`
}

func statsOf(st model.Stats) statsJSON {
	return statsJSON(st)
}

type inspectResponse struct {
	Version int            `json:"version"`
	Hash    string         `json:"hash"`
	Stats   statsJSON      `json:"stats"`
	Issues  []serial.Issue `json:"issues"`
	Graph   graph.Graph    `json:"graph"`
}

type assetResponse struct {
	Revision store.Revision `json:"revision"`
	Issues   []serial.Issue `json:"issues"`
}

type assetViewResponse struct {
	Revision store.Revision `json:"revision"`
	inspectResponse
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, struct {
		Status string `json:"status"`
		buildinfo.Info
	}{"ok", buildinfo.Get()})
}

func (s *Server) handleSchema(w http.ResponseWriter, r *http.Request) {
	type rule struct {
		Field       string `json:"field"`
		Since       int    `json:"since"`
		Description string `json:"description"`
	}
	rules := schema.Rules()
	out := make([]rule, len(rules))
	for i, ru := range rules {
		out[i] = rule{Field: ru.Field.String(), Since: ru.Since, Description: ru.Description}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"current": schema.Current,
		"rules":   out,
	})
}

func (s *Server) handleInspect(w http.ResponseWriter, r *http.Request) {
	data, err := s.readBody(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	resp, cached, err := s.inspectDocument(data)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if cached {
		w.Header().Set("X-Cache", "hit")
	} else {
		w.Header().Set("X-Cache", "miss")
	}
	writeJSON(w, http.StatusOK, resp)
}

// inspectDocument decodes data, reusing a cached result for identical
// bytes. Failed decodes are not cached.
func (s *Server) inspectDocument(data []byte) (*inspectResponse, bool, error) {
	key := store.ContentHash(data)
	if resp, ok := s.inspect.Get(key); ok {
		return resp, true, nil
	}
	res, err := s.ser.Unmarshal(data)
	if err != nil {
		return nil, false, err
	}
	view := graph.FromModel(res.Graph)
	view.Version = res.Version
	issues := res.Issues
	if issues == nil {
		issues = []serial.Issue{}
	}
	resp := &inspectResponse{
		Version: res.Version,
		Hash:    key,
		Stats:   statsOf(res.Graph.Stats()),
		Issues:  issues,
		Graph:   view,
	}
	s.inspect.Add(key, resp)
	return resp, false, nil
}

func (s *Server) handleUpgrade(w http.ResponseWriter, r *http.Request) {
	data, err := s.readBody(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out, res, err := s.ser.Upgrade(data)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/xml")
	w.Header().Set("X-Source-Version", strconv.Itoa(res.Version))
	w.Header().Set("X-Issue-Count", strconv.Itoa(len(res.Issues)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out)
}

// assetName extracts and validates the wildcard part of an asset route.
func (s *Server) assetName(r *http.Request) (string, error) {
	if s.store == nil {
		return "", errors.New(errors.ErrCodeUnsupported, "no asset store configured")
	}
	name := chi.URLParam(r, "*")
	if err := store.ValidateName(name); err != nil {
		return "", err
	}
	return name, nil
}

func (s *Server) handleListAssets(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.writeError(w, r, errors.New(errors.ErrCodeUnsupported, "no asset store configured"))
		return
	}
	revs, err := s.store.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if revs == nil {
		revs = []store.Revision{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"assets": revs})
}

func (s *Server) handleGetAsset(w http.ResponseWriter, r *http.Request) {
	name, err := s.assetName(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	doc, err := s.store.Get(r.Context(), name)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if r.URL.Query().Get("format") == "json" {
		resp, _, err := s.inspectDocument(doc.Data)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, assetViewResponse{Revision: doc.Revision, inspectResponse: *resp})
		return
	}

	w.Header().Set("Content-Type", "application/xml")
	w.Header().Set("X-Revision-Id", doc.ID)
	w.Header().Set("X-Content-Hash", doc.Hash)
	w.Header().Set("ETag", strconv.Quote(doc.Hash))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(doc.Data)
}

// handlePutAsset decodes the body before storing it, so documents that
// cannot be read are rejected and the stored revision is kept.
func (s *Server) handlePutAsset(w http.ResponseWriter, r *http.Request) {
	name, err := s.assetName(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	data, err := s.readBody(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	resp, _, err := s.inspectDocument(data)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	rev, err := s.store.Put(r.Context(), name, data)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.logger.Info("asset stored", "name", name, "revision", rev.ID, "size", rev.Size, "issues", len(resp.Issues))
	writeJSON(w, http.StatusOK, assetResponse{Revision: rev, Issues: resp.Issues})
}

func (s *Server) handleDeleteAsset(w http.ResponseWriter, r *http.Request) {
	name, err := s.assetName(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.store.Delete(r.Context(), name); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
