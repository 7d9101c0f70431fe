package setting

import (
	"context"
	"net/http"

	"github.com/frahmantamala/grafana-sync/internal/transport"
)

type ServiceAPI interface {
	GroupValues(ctx context.Context, group string) (map[string]string, error)
	UpdateGroup(ctx context.Context, group string, values map[string]string) (map[string]string, error)
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

// GetGroup serves GET /settings/{group}, e.g. /settings/grafana.
func (h *Handler) GetGroup(group string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		values, err := h.Service.GroupValues(r.Context(), group)
		if err != nil {
			h.WriteAppError(w, r, err)
			return
		}
		h.WriteJSON(w, http.StatusOK, values)
	}
}

// UpdateGroup serves PUT /settings/{group} with a flat object of short names.
func (h *Handler) UpdateGroup(group string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var values map[string]string
		if err := h.DecodeJSON(r, &values); err != nil {
			h.WriteAppError(w, r, err)
			return
		}
		updated, err := h.Service.UpdateGroup(r.Context(), group, values)
		if err != nil {
			h.WriteAppError(w, r, err)
			return
		}
		h.WriteJSON(w, http.StatusOK, updated)
	}
}
