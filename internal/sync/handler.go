package sync

import (
	"context"
	"net/http"

	"github.com/frahmantamala/grafana-sync/internal/transport"
)

type PipelineAPI interface {
	Directory(ctx context.Context) (*DirectoryResult, error)
	Organizations(ctx context.Context) (int, error)
	Users(ctx context.Context) (int, error)
	Teams(ctx context.Context) (int, error)
	Full(ctx context.Context) (*FullSyncResult, error)
	Bidirectional(ctx context.Context) (*BidirectionalResult, error)
}

type StatsAPI interface {
	Get(ctx context.Context) (*Stats, error)
}

type Handler struct {
	*transport.BaseHandler
	Pipeline PipelineAPI
	Stats    StatsAPI
}

func NewHandler(baseHandler *transport.BaseHandler, pipeline PipelineAPI, stats StatsAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Pipeline:    pipeline,
		Stats:       stats,
	}
}

type createdResponse struct {
	CreatedCount int `json:"created_count"`
}

// SyncDirectory handles POST /sync/opoppo
func (h *Handler) SyncDirectory(w http.ResponseWriter, r *http.Request) {
	res, err := h.Pipeline.Directory(r.Context())
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, res)
}

// SyncPlatform handles POST /sync/grafana
func (h *Handler) SyncPlatform(w http.ResponseWriter, r *http.Request) {
	res, err := h.Pipeline.Full(r.Context())
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, res)
}

// SyncOrganizations handles POST /sync/grafana/orgs
func (h *Handler) SyncOrganizations(w http.ResponseWriter, r *http.Request) {
	h.writeCount(w, r, h.Pipeline.Organizations)
}

// SyncUsers handles POST /sync/grafana/users
func (h *Handler) SyncUsers(w http.ResponseWriter, r *http.Request) {
	h.writeCount(w, r, h.Pipeline.Users)
}

// SyncTeams handles POST /sync/grafana/teams
func (h *Handler) SyncTeams(w http.ResponseWriter, r *http.Request) {
	h.writeCount(w, r, h.Pipeline.Teams)
}

// SyncAll handles POST /sync/all
func (h *Handler) SyncAll(w http.ResponseWriter, r *http.Request) {
	res, err := h.Pipeline.Bidirectional(r.Context())
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, res)
}

// GetStats handles GET /stats
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Stats.Get(r.Context())
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, stats)
}

func (h *Handler) writeCount(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context) (int, error)) {
	n, err := fn(r.Context())
	if err != nil {
		h.WriteAppError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, createdResponse{CreatedCount: n})
}
