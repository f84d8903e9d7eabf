package auditlog

import (
	"net/http"

	"github.com/frahmantamala/wbs-tracker/internal/core/common/search"
	"github.com/frahmantamala/wbs-tracker/internal/transport"
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

func logKeys(e *LogEntry) []string {
	return []string{e.Action, e.Details}
}

// GetLogs implements GET /api/logs; ?q= filters on action and details.
func (h *Handler) GetLogs(w http.ResponseWriter, r *http.Request) {
	entries, err := h.Service.List(r.Context())
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	if r.URL.Query().Has("q") {
		res := search.Filter(entries, r.URL.Query().Get("q"), logKeys)
		h.SetFilterNotice(w, res.Notice)
		entries = res.Items
	}

	h.WriteJSON(w, http.StatusOK, LogsResponse{Logs: entries})
}
