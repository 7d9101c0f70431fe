package synclog

import (
	"context"
	"net/http"

	"github.com/frahmantamala/grafana-sync/internal/transport"
)

type ServiceAPI interface {
	List(ctx context.Context, limit int) ([]*Log, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, svc ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     svc,
	}
}

// ListLogs handles GET /sync/logs?limit=
func (h *Handler) ListLogs(w http.ResponseWriter, r *http.Request) {
	limit, err := h.QueryInt(r, "limit", DefaultListLimit)
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	logs, err := h.Service.List(r.Context(), limit)
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, logs)
}
