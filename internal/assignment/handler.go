package assignment

import (
	"net/http"

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

func changeFromPath(r *http.Request) ChangeDTO {
	return ChangeDTO{
		UserID: chi.URLParam(r, "id"),
		List:   chi.URLParam(r, "list"),
		ItemID: chi.URLParam(r, "itemID"),
	}
}

// Assign handles PUT /api/user/{id}/{list}/{itemID}
func (h *Handler) Assign(w http.ResponseWriter, r *http.Request) {
	res, err := h.Service.Assign(r.Context(), changeFromPath(r))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, res)
}

// Unassign handles DELETE /api/user/{id}/{list}/{itemID}
func (h *Handler) Unassign(w http.ResponseWriter, r *http.Request) {
	res, err := h.Service.Unassign(r.Context(), changeFromPath(r))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, res)
}
