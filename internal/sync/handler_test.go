package sync_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"

	"github.com/frahmantamala/grafana-sync/internal"
	syncpkg "github.com/frahmantamala/grafana-sync/internal/sync"
	"github.com/frahmantamala/grafana-sync/internal/transport"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type fakePipeline struct {
	err error
}

func (p *fakePipeline) Directory(ctx context.Context) (*syncpkg.DirectoryResult, error) {
	if p.err != nil {
		return nil, p.err
	}
	return &syncpkg.DirectoryResult{CreatedCount: 2, TotalCount: 5}, nil
}

func (p *fakePipeline) Organizations(ctx context.Context) (int, error) { return 3, p.err }
func (p *fakePipeline) Users(ctx context.Context) (int, error) { return 4, p.err }
func (p *fakePipeline) Teams(ctx context.Context) (int, error) { return 1, p.err }

func (p *fakePipeline) Full(ctx context.Context) (*syncpkg.FullSyncResult, error) {
	if p.err != nil {
		return nil, p.err
	}
	return &syncpkg.FullSyncResult{OrgsCreated: 1, UsersCreated: 2, TeamsCreated: 3}, nil
}

func (p *fakePipeline) Bidirectional(ctx context.Context) (*syncpkg.BidirectionalResult, error) {
	if p.err != nil {
		return nil, p.err
	}
	return &syncpkg.BidirectionalResult{Directory: &syncpkg.DirectoryResult{}, Platform: &syncpkg.FullSyncResult{}}, nil
}

type fakeStats struct{}

func (fakeStats) Get(ctx context.Context) (*syncpkg.Stats, error) {
	return &syncpkg.Stats{Users: map[string]int64{"pending": 2, "active": 3}, TotalUsers: 5, Organizations: 1}, nil
}

var _ = Describe("Handler", func() {
	var (
		pipeline *fakePipeline
		router   *chi.Mux
	)

	BeforeEach(func() {
		pipeline = &fakePipeline{}
		h := syncpkg.NewHandler(transport.NewBaseHandler(slog.New(slog.NewTextHandler(io.Discard, nil))), pipeline, fakeStats{})
		router = chi.NewRouter()
		router.Post("/sync/opoppo", h.SyncDirectory)
		router.Post("/sync/grafana", h.SyncPlatform)
		router.Post("/sync/grafana/orgs", h.SyncOrganizations)
		router.Post("/sync/all", h.SyncAll)
		router.Get("/stats", h.GetStats)
	})

	do := func(method, path string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
		return rec
	}

	It("returns the directory counts", func() {
		rec := do(http.MethodPost, "/sync/opoppo")
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(MatchJSON(`{"created_count":2,"total_count":5}`))
	})

	It("returns the created count of a single entity sync", func() {
		rec := do(http.MethodPost, "/sync/grafana/orgs")
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(MatchJSON(`{"created_count":3}`))
	})

	It("returns the full sync summary", func() {
		rec := do(http.MethodPost, "/sync/grafana")
		Expect(rec.Body.String()).To(MatchJSON(`{"orgs_created":1,"users_created":2,"teams_created":3}`))
	})

	It("answers 409 while another sync runs", func() {
		pipeline.err = internal.ErrSyncInProgress
		rec := do(http.MethodPost, "/sync/all")
		Expect(rec.Code).To(Equal(http.StatusConflict))

		var body map[string]map[string]interface{}
		Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(Succeed())
		Expect(body["error"]["code"]).To(Equal(string(internal.ErrCodeSyncInProgress)))
	})

	It("answers 502 with the cause when a sync fails", func() {
		pipeline.err = internal.NewExternalError("grafana_full_sync sync failed", internal.ErrCodeSyncFailed, io.ErrUnexpectedEOF)
		rec := do(http.MethodPost, "/sync/grafana")
		Expect(rec.Code).To(Equal(http.StatusBadGateway))
		Expect(rec.Body.String()).To(ContainSubstring("unexpected EOF"))
	})

	It("serves the dashboard stats", func() {
		rec := do(http.MethodGet, "/stats")
		Expect(rec.Code).To(Equal(http.StatusOK))
		var stats syncpkg.Stats
		Expect(json.Unmarshal(rec.Body.Bytes(), &stats)).To(Succeed())
		Expect(stats.TotalUsers).To(Equal(int64(5)))
		Expect(stats.LastSync).To(BeNil())
	})
})
