package task

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

func taskKeys(t *Task) []string {
	return []string{t.Name}
}

// GetTasks handles GET /api/tasks?projectID=<id>&q=<term>
func (h *Handler) GetTasks(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	tasks, err := h.Service.List(r.Context(), query.Get("projectID"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	if query.Has("q") {
		res := search.Filter(tasks, query.Get("q"), taskKeys)
		h.SetFilterNotice(w, res.Notice)
		tasks = res.Items
	}
	h.WriteJSON(w, http.StatusOK, TasksResponse{Tasks: tasks})
}

func (h *Handler) GetTask(w http.ResponseWriter, r *http.Request) {
	t, err := h.Service.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, t)
}

func (h *Handler) CreateTask(w http.ResponseWriter, r *http.Request) {
	var dto CreateTaskDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	t, err := h.Service.Create(r.Context(), dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, t)
}

func (h *Handler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	var dto UpdateTaskDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	t, err := h.Service.Update(r.Context(), chi.URLParam(r, "id"), dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, t)
}

// ApplyProgress handles POST /api/tasks/{id}/progress
func (h *Handler) ApplyProgress(w http.ResponseWriter, r *http.Request) {
	var dto ProgressDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	res, err := h.Service.ApplyProgress(r.Context(), chi.URLParam(r, "id"), dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, res)
}
