package project

import (
	"net/http"

	"github.com/frahmantamala/wbs-tracker/internal/core/common/search"
	"github.com/frahmantamala/wbs-tracker/internal/transport"
	"github.com/go-chi/chi"
)

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(base *transport.BaseHandler, svc ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: base,
		Service:     svc,
	}
}

func projectKeys(p *Project) []string {
	return []string{p.Name}
}

func (h *Handler) writeList(w http.ResponseWriter, r *http.Request, projects []*Project) {
	if r.URL.Query().Has("q") {
		res := search.Filter(projects, r.URL.Query().Get("q"), projectKeys)
		h.SetFilterNotice(w, res.Notice)
		projects = res.Items
	}
	h.WriteJSON(w, http.StatusOK, projects)
}

// GetProjects handles GET /api/projects and GET /api/project; the body is a
// bare array.
func (h *Handler) GetProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := h.Service.List(r.Context())
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.writeList(w, r, projects)
}

// GetMyProjects handles GET /api/me/projects
func (h *Handler) GetMyProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := h.Service.ListVisible(r.Context())
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.writeList(w, r, projects)
}

func (h *Handler) GetProject(w http.ResponseWriter, r *http.Request) {
	p, err := h.Service.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, p)
}

func (h *Handler) CreateProject(w http.ResponseWriter, r *http.Request) {
	var dto CreateProjectDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	p, err := h.Service.Create(r.Context(), dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, p)
}

func (h *Handler) UpdateProject(w http.ResponseWriter, r *http.Request) {
	var dto UpdateProjectDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	p, err := h.Service.Update(r.Context(), chi.URLParam(r, "id"), dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, p)
}
