package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"go-parish-platform/internal/content"
	"go-parish-platform/internal/data"
	"go-parish-platform/internal/logger"
	"go-parish-platform/internal/middleware"
	"go-parish-platform/internal/service"
)

// maxContentBytes bounds the accepted size of a builder payload.
const maxContentBytes = 1 << 20

// BuilderHandler exposes the JSON API the page builder frontend talks
// to: whole-tree load and save, plus the four node mutations.
type BuilderHandler struct {
	pages *service.PageService
	log   logger.Logger
}

// NewBuilderHandler creates a new BuilderHandler.
func NewBuilderHandler(ps *service.PageService, log logger.Logger) *BuilderHandler {
	return &BuilderHandler{pages: ps, log: log}
}

// getContentHandler returns a page's content tree in its normalized
// serialization. Legacy double-encoded blobs come out healed.
func (h *BuilderHandler) getContentHandler(w http.ResponseWriter, r *http.Request) {
	page, err := h.resolvePage(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	pc, err := h.pages.GetContent(r.Context(), page.ID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	blob, err := content.Serialize(pc)
	if err != nil {
		h.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(blob)
}

// putContentHandler replaces a page's whole content tree.
func (h *BuilderHandler) putContentHandler(w http.ResponseWriter, r *http.Request) {
	page, err := h.resolvePage(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	blob, err := io.ReadAll(io.LimitReader(r.Body, maxContentBytes))
	if err != nil {
		h.writeError(w, err)
		return
	}
	if err := h.pages.SaveContent(r.Context(), page.ID, blob); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// insertNodeRequest is the payload for adding a block to the tree.
type insertNodeRequest struct {
	ParentID content.NodeID `json:"parentId"`
	Index    int            `json:"index"`
	Node     struct {
		ID    content.NodeID `json:"id"`
		Type  string         `json:"type"`
		Props map[string]any `json:"props"`
	} `json:"node"`
}

func (h *BuilderHandler) insertNodeHandler(w http.ResponseWriter, r *http.Request) {
	var req insertNodeRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxContentBytes)).Decode(&req); err != nil {
		h.writeError(w, errBadJSON(err))
		return
	}
	h.mutate(w, r, func(pc *content.PageContent) error {
		return pc.InsertNode(req.ParentID, content.Node{
			ID:    req.Node.ID,
			Type:  req.Node.Type,
			Props: req.Node.Props,
		}, req.Index)
	})
}

func (h *BuilderHandler) removeNodeHandler(w http.ResponseWriter, r *http.Request) {
	nodeID := content.NodeID(chi.URLParam(r, "nodeID"))
	h.mutate(w, r, func(pc *content.PageContent) error {
		return pc.RemoveNode(nodeID)
	})
}

// moveNodeRequest is the payload for reparenting or reordering a block.
type moveNodeRequest struct {
	ParentID content.NodeID `json:"parentId"`
	Index    int            `json:"index"`
}

func (h *BuilderHandler) moveNodeHandler(w http.ResponseWriter, r *http.Request) {
	var req moveNodeRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxContentBytes)).Decode(&req); err != nil {
		h.writeError(w, errBadJSON(err))
		return
	}
	nodeID := content.NodeID(chi.URLParam(r, "nodeID"))
	h.mutate(w, r, func(pc *content.PageContent) error {
		return pc.MoveNode(nodeID, req.ParentID, req.Index)
	})
}

func (h *BuilderHandler) updatePropsHandler(w http.ResponseWriter, r *http.Request) {
	var patch map[string]any
	if err := json.NewDecoder(io.LimitReader(r.Body, maxContentBytes)).Decode(&patch); err != nil {
		h.writeError(w, errBadJSON(err))
		return
	}
	nodeID := content.NodeID(chi.URLParam(r, "nodeID"))
	h.mutate(w, r, func(pc *content.PageContent) error {
		return pc.UpdateNodeProps(nodeID, patch)
	})
}

// mutate runs one tree mutation against the page and responds with the
// updated serialization so the frontend can reconcile its state.
func (h *BuilderHandler) mutate(w http.ResponseWriter, r *http.Request, fn func(*content.PageContent) error) {
	page, err := h.resolvePage(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	pc, err := h.pages.MutateContent(r.Context(), page.ID, fn)
	if err != nil {
		h.writeError(w, err)
		return
	}
	blob, err := content.Serialize(pc)
	if err != nil {
		h.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(blob)
}

// resolvePage loads the addressed page and confirms it belongs to the
// parish resolved from the URL. Pages of other parishes are reported as
// missing, so the API reveals nothing across tenants.
func (h *BuilderHandler) resolvePage(r *http.Request) (*data.Page, error) {
	page, err := h.pages.GetPage(r.Context(), chi.URLParam(r, "pageID"))
	if err != nil {
		return nil, err
	}
	parish := middleware.GetParish(r.Context())
	if parish == nil || page.ParishID != parish.ID {
		return nil, fmt.Errorf("%w: page belongs to another parish", data.ErrNotFound)
	}
	return page, nil
}

// writeError maps domain errors onto API status codes: malformed
// content is the client's fault, a rejected mutation is unprocessable,
// and a missing page is a 404.
func (h *BuilderHandler) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, data.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, content.ErrInvalidFormat):
		status = http.StatusBadRequest
	case errors.Is(err, content.ErrInvalidMutation):
		status = http.StatusUnprocessableEntity
	}
	if status == http.StatusInternalServerError {
		h.log.Error(err, "Builder API request failed")
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}

func errBadJSON(err error) error {
	return fmt.Errorf("%w: decoding request body: %v", content.ErrInvalidFormat, err)
}
