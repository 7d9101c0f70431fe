package directory

import (
	"net/http"

	"github.com/frahmantamala/grafana-sync/internal"
	"github.com/frahmantamala/grafana-sync/internal/transport"
	"github.com/go-chi/chi"
)

type Handler struct {
	*transport.BaseHandler
	Client Client
}

func NewHandler(baseHandler *transport.BaseHandler, client Client) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Client:      client,
	}
}

func (h *Handler) unavailable(w http.ResponseWriter, r *http.Request, err error) {
	h.WriteAppError(w, r, internal.NewExternalError("directory unavailable", internal.ErrCodeDirectoryUnavailable, err))
}

func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.Client.ListEmployees(r.Context())
	if err != nil {
		h.unavailable(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, employees)
}

func (h *Handler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	employee, err := h.Client.GetEmployee(r.Context(), id)
	if err != nil {
		h.unavailable(w, r, err)
		return
	}
	if employee == nil {
		h.WriteError(w, http.StatusNotFound, "employee not found")
		return
	}
	h.WriteJSON(w, http.StatusOK, employee)
}

func (h *Handler) ListCompanies(w http.ResponseWriter, r *http.Request) {
	companies, err := h.Client.ListCompanies(r.Context())
	if err != nil {
		h.unavailable(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, companies)
}

func (h *Handler) ListOrgUnits(w http.ResponseWriter, r *http.Request) {
	units, err := h.Client.ListOrgUnits(r.Context())
	if err != nil {
		h.unavailable(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, units)
}

func (h *Handler) ListPositions(w http.ResponseWriter, r *http.Request) {
	positions, err := h.Client.ListPositions(r.Context())
	if err != nil {
		h.unavailable(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, positions)
}
