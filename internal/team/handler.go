package team

import (
	"context"
	"net/http"

	"github.com/frahmantamala/grafana-sync/internal/transport"
)

type ServiceAPI interface {
	List(ctx context.Context, orgID int64) ([]*Team, error)
	GetByID(ctx context.Context, id int64) (*Team, error)
	Create(ctx context.Context, req CreateTeamRequest) (*Team, error)
	Update(ctx context.Context, id int64, req UpdateTeamRequest) (*Team, error)
	Delete(ctx context.Context, id int64) error
	ListMembers(ctx context.Context, teamID int64) ([]*Membership, error)
	ListUserMemberships(ctx context.Context, userID int64) ([]*Membership, error)
	AddMember(ctx context.Context, teamID int64, req AddMemberRequest) (*Membership, error)
	RemoveMember(ctx context.Context, teamID, userID int64) error
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

// ListTeams handles GET /grafana/teams?org_id=
func (h *Handler) ListTeams(w http.ResponseWriter, r *http.Request) {
	orgID, err := h.QueryInt(r, "org_id", 0)
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	teams, err := h.Service.List(r.Context(), int64(orgID))
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, teams)
}

func (h *Handler) GetTeam(w http.ResponseWriter, r *http.Request) {
	id, err := h.IDParam(r, "id")
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	t, err := h.Service.GetByID(r.Context(), id)
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, t)
}

func (h *Handler) CreateTeam(w http.ResponseWriter, r *http.Request) {
	var req CreateTeamRequest
	if err := h.DecodeJSON(r, &req); err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	t, err := h.Service.Create(r.Context(), req)
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, t)
}

func (h *Handler) UpdateTeam(w http.ResponseWriter, r *http.Request) {
	id, err := h.IDParam(r, "id")
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	var req UpdateTeamRequest
	if err := h.DecodeJSON(r, &req); err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	t, err := h.Service.Update(r.Context(), id, req)
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, t)
}

func (h *Handler) DeleteTeam(w http.ResponseWriter, r *http.Request) {
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

// ListUserTeams handles GET /grafana/users/{id}/teams
func (h *Handler) ListUserTeams(w http.ResponseWriter, r *http.Request) {
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

func (h *Handler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	teamID, err := h.IDParam(r, "id")
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	userID, err := h.IDParam(r, "userID")
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	if err := h.Service.RemoveMember(r.Context(), teamID, userID); err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
