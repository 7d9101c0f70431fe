package organization

import (
	"context"
	"net/http"

	"github.com/frahmantamala/grafana-sync/internal/transport"
)

type ServiceAPI interface {
	List(ctx context.Context) ([]*Organization, error)
	GetByID(ctx context.Context, id int64) (*Organization, error)
	Create(ctx context.Context, req CreateOrganizationRequest) (*Organization, error)
	Update(ctx context.Context, id int64, req UpdateOrganizationRequest) (*Organization, error)
	Delete(ctx context.Context, id int64) error
	ListMembers(ctx context.Context, orgID int64) ([]*Membership, error)
	ListUserMemberships(ctx context.Context, userID int64) ([]*Membership, error)
	AddMember(ctx context.Context, orgID int64, req AddMemberRequest) (*Membership, error)
	UpdateMemberRole(ctx context.Context, orgID, userID int64, req UpdateMemberRequest) (*Membership, error)
	RemoveMember(ctx context.Context, orgID, userID int64) error
	SetDefault(ctx context.Context, orgID, userID int64) (*Membership, error)
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

func (h *Handler) ListOrganizations(w http.ResponseWriter, r *http.Request) {
	orgs, err := h.Service.List(r.Context())
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, orgs)
}

func (h *Handler) GetOrganization(w http.ResponseWriter, r *http.Request) {
	id, err := h.IDParam(r, "id")
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	org, err := h.Service.GetByID(r.Context(), id)
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, org)
}

func (h *Handler) CreateOrganization(w http.ResponseWriter, r *http.Request) {
	var req CreateOrganizationRequest
	if err := h.DecodeJSON(r, &req); err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	org, err := h.Service.Create(r.Context(), req)
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, org)
}

func (h *Handler) UpdateOrganization(w http.ResponseWriter, r *http.Request) {
	id, err := h.IDParam(r, "id")
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	var req UpdateOrganizationRequest
	if err := h.DecodeJSON(r, &req); err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	org, err := h.Service.Update(r.Context(), id, req)
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, org)
}

func (h *Handler) DeleteOrganization(w http.ResponseWriter, r *http.Request) {
	id, err := h.IDParam(r, "id")
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	if err := h.Service.Delete(r.Context(), id); err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListMembers handles GET /grafana/organizations/{id}/members
func (h *Handler) ListMembers(w http.ResponseWriter, r *http.Request) {
	id, err := h.IDParam(r, "id")
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	members, err := h.Service.ListMembers(r.Context(), id)
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, members)
}

// ListUserOrganizations handles GET /grafana/users/{id}/organizations
func (h *Handler) ListUserOrganizations(w http.ResponseWriter, r *http.Request) {
	id, err := h.IDParam(r, "id")
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	members, err := h.Service.ListUserMemberships(r.Context(), id)
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, members)
}

func (h *Handler) AddMember(w http.ResponseWriter, r *http.Request) {
	id, err := h.IDParam(r, "id")
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	var req AddMemberRequest
	if err := h.DecodeJSON(r, &req); err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	m, err := h.Service.AddMember(r.Context(), id, req)
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, m)
}

func (h *Handler) UpdateMember(w http.ResponseWriter, r *http.Request) {
	orgID, userID, ok := h.memberParams(w, r)
	if !ok {
		return
	}
	var req UpdateMemberRequest
	if err := h.DecodeJSON(r, &req); err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	m, err := h.Service.UpdateMemberRole(r.Context(), orgID, userID, req)
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, m)
}

func (h *Handler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	orgID, userID, ok := h.memberParams(w, r)
	if !ok {
		return
	}
	if err := h.Service.RemoveMember(r.Context(), orgID, userID); err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) SetDefaultMember(w http.ResponseWriter, r *http.Request) {
	orgID, userID, ok := h.memberParams(w, r)
	if !ok {
		return
	}
	m, err := h.Service.SetDefault(r.Context(), orgID, userID)
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, m)
}

func (h *Handler) memberParams(w http.ResponseWriter, r *http.Request) (int64, int64, bool) {
	orgID, err := h.IDParam(r, "id")
	if err != nil {
		h.WriteAppError(w, r, err)
		return 0, 0, false
	}
	userID, err := h.IDParam(r, "userID")
	if err != nil {
		h.WriteAppError(w, r, err)
		return 0, 0, false
	}
	return orgID, userID, true
}
