package platform_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/frahmantamala/grafana-sync/internal/platform"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestPlatform(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Platform Suite")
}

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

// fakeGrafana is a tiny stateful stand-in for the admin API. Team search
// answers for whichever organization the session last switched to.
type fakeGrafana struct {
	mu        sync.Mutex
	activeOrg int64
	requests  []string
	teams     map[int64][]platform.Team
	failPaths map[string]int
}

func newFakeGrafana() *fakeGrafana {
	return &fakeGrafana{
		activeOrg: 1,
		teams: map[int64][]platform.Team{
			1: {{ID: 11, OrgID: 1, Name: "Sales"}},
			2: {{ID: 21, OrgID: 2, Name: "Ops"}, {ID: 22, OrgID: 2, Name: "Dev"}},
		},
		failPaths: map[string]int{},
	}
}

func (f *fakeGrafana) record(r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, r.Method+" "+r.URL.Path)
}

func (f *fakeGrafana) Requests() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.requests...)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (f *fakeGrafana) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.record(r)

	user, pass, ok := r.BasicAuth()
	if !ok || user != "admin" || pass != "secret" {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Invalid username or password"})
		return
	}

	f.mu.Lock()
	status, failing := f.failPaths[r.URL.Path]
	f.mu.Unlock()
	if failing {
		writeJSON(w, status, map[string]string{"message": "injected failure"})
		return
	}

	switch {
	case strings.HasPrefix(r.URL.Path, "/api/user/using/"):
		var orgID int64
		fmt.Sscanf(strings.TrimPrefix(r.URL.Path, "/api/user/using/"), "%d", &orgID)
		// Widen the window in which an unguarded client would interleave.
		time.Sleep(5 * time.Millisecond)
		f.mu.Lock()
		f.activeOrg = orgID
		f.mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]string{"message": "Active organization changed"})
	case r.URL.Path == "/api/teams/search":
		time.Sleep(5 * time.Millisecond)
		f.mu.Lock()
		teams := f.teams[f.activeOrg]
		f.mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]interface{}{"totalCount": len(teams), "teams": teams})
	case r.URL.Path == "/api/teams" && r.Method == http.MethodPost:
		writeJSON(w, http.StatusOK, map[string]interface{}{"teamId": 99, "message": "Team created"})
	case r.URL.Path == "/api/orgs" && r.Method == http.MethodGet:
		writeJSON(w, http.StatusOK, []platform.Org{{ID: 1, Name: "Main Org."}, {ID: 7, Name: "R&D"}})
	case r.URL.Path == "/api/orgs" && r.Method == http.MethodPost:
		writeJSON(w, http.StatusOK, map[string]interface{}{"orgId": 8, "message": "Organization created"})
	case r.URL.Path == "/api/orgs/404":
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Organization not found"})
	case r.URL.Path == "/api/orgs/2/users" && r.Method == http.MethodPost:
		writeJSON(w, http.StatusConflict, map[string]string{"message": "User is already member of this organization"})
	case r.URL.Path == "/api/users":
		writeJSON(w, http.StatusOK, []map[string]interface{}{
			{"id": 1, "login": "admin", "email": "admin@localhost", "name": "", "isAdmin": true, "lastSeenAt": "2023-05-01T09:00:00Z"},
		})
	case r.URL.Path == "/api/admin/users" && r.Method == http.MethodPost:
		writeJSON(w, http.StatusOK, map[string]interface{}{"id": 42, "message": "User created"})
	default:
		writeJSON(w, http.StatusOK, map[string]string{"message": "ok"})
	}
}

var _ = Describe("HTTPClient", func() {
	var (
		fake   *fakeGrafana
		server *httptest.Server
		client *platform.HTTPClient
		ctx    context.Context
	)

	BeforeEach(func() {
		fake = newFakeGrafana()
		server = httptest.NewServer(fake)
		client = platform.NewHTTPClient(platform.Config{
			URL:           server.URL + "/",
			AdminUser:     "admin",
			AdminPassword: "secret",
			Timeout:       2 * time.Second,
		}, discard)
		ctx = context.Background()
	})

	AfterEach(func() {
		server.Close()
	})

	Describe("organizations", func() {
		It("lists organizations", func() {
			orgs, err := client.ListOrgs(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(orgs).To(HaveLen(2))
			Expect(orgs[1]).To(Equal(platform.Org{ID: 7, Name: "R&D"}))
		})

		It("propagates list failures instead of returning an empty list", func() {
			fake.failPaths["/api/orgs"] = http.StatusInternalServerError
			orgs, err := client.ListOrgs(ctx)
			Expect(err).To(HaveOccurred())
			Expect(orgs).To(BeNil())

			var apiErr *platform.APIError
			Expect(errors.As(err, &apiErr)).To(BeTrue())
			Expect(apiErr.Status).To(Equal(http.StatusInternalServerError))
			Expect(apiErr.Message).To(Equal("injected failure"))
		})

		It("returns nil for a missing organization", func() {
			org, err := client.GetOrg(ctx, 404)
			Expect(err).NotTo(HaveOccurred())
			Expect(org).To(BeNil())
		})

		It("returns the id of a created organization", func() {
			id, err := client.CreateOrg(ctx, "New Org")
			Expect(err).NotTo(HaveOccurred())
			Expect(id).To(Equal(int64(8)))
		})
	})

	Describe("users", func() {
		It("decodes users with their last seen time", func() {
			users, err := client.ListUsers(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(users).To(HaveLen(1))
			Expect(users[0].Login).To(Equal("admin"))
			Expect(users[0].LastSeenAt).NotTo(BeNil())
			Expect(users[0].LastSeenAt.Year()).To(Equal(2023))
		})

		It("rejects an incomplete create request before calling out", func() {
			_, err := client.CreateUser(ctx, platform.CreateUserRequest{Login: "u1"})
			Expect(errors.Is(err, platform.ErrValidation)).To(BeTrue())
			Expect(fake.Requests()).To(BeEmpty())
		})

		It("returns the id of a created user", func() {
			id, err := client.CreateUser(ctx, platform.CreateUserRequest{Login: "u1", Password: "pw"})
			Expect(err).NotTo(HaveOccurred())
			Expect(id).To(Equal(int64(42)))
		})
	})

	It("classifies duplicate org membership as a conflict", func() {
		err := client.AddOrgUser(ctx, 2, "u1", "Viewer")
		Expect(errors.Is(err, platform.ErrConflict)).To(BeTrue())
		Expect(errors.Is(err, platform.ErrNotFound)).To(BeFalse())
	})

	It("classifies bad credentials", func() {
		bad := platform.NewHTTPClient(platform.Config{URL: server.URL, AdminUser: "admin", AdminPassword: "wrong"}, discard)
		_, err := bad.ListOrgs(ctx)
		Expect(errors.Is(err, platform.ErrAuth)).To(BeTrue())
	})

	Describe("team calls", func() {
		It("switches organization before each team request", func() {
			teams, err := client.ListTeams(ctx, 2)
			Expect(err).NotTo(HaveOccurred())
			Expect(teams).To(HaveLen(2))

			_, err = client.CreateTeam(ctx, 1, platform.TeamRequest{Name: "Support"})
			Expect(err).NotTo(HaveOccurred())

			Expect(fake.Requests()).To(Equal([]string{
				"POST /api/user/using/2",
				"GET /api/teams/search",
				"POST /api/user/using/1",
				"POST /api/teams",
			}))
		})

		It("does not issue the team request when the switch fails", func() {
			fake.failPaths["/api/user/using/3"] = http.StatusNotFound
			_, err := client.ListTeams(ctx, 3)
			Expect(errors.Is(err, platform.ErrNotFound)).To(BeTrue())
			Expect(fake.Requests()).To(Equal([]string{"POST /api/user/using/3"}))
		})

		It("keeps concurrent team calls scoped to their own organization", func() {
			var wg sync.WaitGroup
			results := make([][]platform.Team, 10)
			errs := make([]error, 10)
			for i := 0; i < 10; i++ {
				wg.Add(1)
				go func(i int) {
					defer GinkgoRecover()
					defer wg.Done()
					orgID := int64(i%2 + 1)
					results[i], errs[i] = client.ListTeams(ctx, orgID)
				}(i)
			}
			wg.Wait()

			for i := 0; i < 10; i++ {
				Expect(errs[i]).NotTo(HaveOccurred())
				orgID := int64(i%2 + 1)
				for _, team := range results[i] {
					Expect(team.OrgID).To(Equal(orgID))
				}
			}

			requests := fake.Requests()
			for i := 0; i < len(requests); i += 2 {
				Expect(requests[i]).To(HavePrefix("POST /api/user/using/"))
				Expect(requests[i+1]).To(Equal("GET /api/teams/search"))
			}
		})

		It("rejects a nameless team before switching", func() {
			_, err := client.CreateTeam(ctx, 1, platform.TeamRequest{})
			Expect(errors.Is(err, platform.ErrValidation)).To(BeTrue())
			Expect(fake.Requests()).To(BeEmpty())
		})
	})
})
