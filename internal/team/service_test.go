package team_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/frahmantamala/grafana-sync/internal"
	orgDatamodel "github.com/frahmantamala/grafana-sync/internal/core/datamodel/organization"
	teamDatamodel "github.com/frahmantamala/grafana-sync/internal/core/datamodel/team"
	userDatamodel "github.com/frahmantamala/grafana-sync/internal/core/datamodel/user"
	"github.com/frahmantamala/grafana-sync/internal/organization"
	orgPostgres "github.com/frahmantamala/grafana-sync/internal/organization/postgres"
	"github.com/frahmantamala/grafana-sync/internal/platform"
	"github.com/frahmantamala/grafana-sync/internal/team"
	teamPostgres "github.com/frahmantamala/grafana-sync/internal/team/postgres"
	"github.com/frahmantamala/grafana-sync/internal/user"
	userPostgres "github.com/frahmantamala/grafana-sync/internal/user/postgres"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestTeam(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Team Suite")
}

func int64Ptr(v int64) *int64 { return &v }
func strPtr(s string) *string { return &s }

var _ = Describe("Team Service", func() {
	var (
		ctx          context.Context
		teamRepo     team.RepositoryAPI
		orgRepo      organization.RepositoryAPI
		userRepo     user.RepositoryAPI
		mockPlatform *platform.MockClient
		service      *team.Service
	)

	BeforeEach(func() {
		db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		sqlDB.SetMaxOpenConns(1)
		Expect(db.AutoMigrate(
			&userDatamodel.User{},
			&orgDatamodel.Organization{},
			&teamDatamodel.Team{},
			&teamDatamodel.Membership{},
		)).To(Succeed())

		ctx = context.Background()
		teamRepo = teamPostgres.NewTeamRepository(db)
		orgRepo = orgPostgres.NewOrganizationRepository(db)
		userRepo = userPostgres.NewUserRepository(db)
		mockPlatform = platform.NewMockClient()
		service = team.NewService(teamRepo, orgRepo, userRepo, mockPlatform, slog.New(slog.NewTextHandler(io.Discard, nil)))

		Expect(orgRepo.Create(ctx, &orgDatamodel.Organization{ID: 1, Name: "本社", GrafanaID: int64Ptr(1)})).To(Succeed())
		Expect(orgRepo.Create(ctx, &orgDatamodel.Organization{ID: 2, Name: "Local"})).To(Succeed())
		Expect(teamRepo.Create(ctx, &teamDatamodel.Team{ID: 10, Name: "技術チーム", OrgID: 1, GrafanaID: int64Ptr(2)})).To(Succeed())
		Expect(teamRepo.Create(ctx, &teamDatamodel.Team{ID: 11, Name: "Local team", OrgID: 2})).To(Succeed())
		Expect(userRepo.Create(ctx, &userDatamodel.User{ID: 1, UserID: "yamada.taro", GrafanaID: int64Ptr(1), Status: "active"})).To(Succeed())
		Expect(userRepo.Create(ctx, &userDatamodel.User{ID: 2, UserID: "0002", Status: "pending"})).To(Succeed())
	})

	Describe("listing", func() {
		It("filters by organization", func() {
			teams, err := service.List(ctx, 2)
			Expect(err).NotTo(HaveOccurred())
			Expect(teams).To(HaveLen(1))
			Expect(teams[0].ID).To(Equal(int64(11)))

			all, err := service.List(ctx, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(all).To(HaveLen(2))
		})

		It("finds platform teams only inside their organization", func() {
			found, err := teamRepo.GetByGrafanaIDInOrg(ctx, 1, 2)
			Expect(err).NotTo(HaveOccurred())
			Expect(found.ID).To(Equal(int64(10)))

			other, err := teamRepo.GetByGrafanaIDInOrg(ctx, 2, 2)
			Expect(err).NotTo(HaveOccurred())
			Expect(other).To(BeNil())
		})
	})

	Describe("Create", func() {
		It("requires an existing organization", func() {
			_, err := service.Create(ctx, team.CreateTeamRequest{Name: "x", OrgID: 99})
			Expect(errors.Is(err, internal.ErrOrganizationNotFound)).To(BeTrue())
		})

		It("refuses platform creation under an unlinked organization", func() {
			_, err := service.Create(ctx, team.CreateTeamRequest{Name: "x", OrgID: 2, CreateOnPlatform: true})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.StatusCode).To(Equal(400))
			Expect(mockPlatform.Calls()).To(BeEmpty())
		})

		It("creates the platform team in the organization's scope", func() {
			t, err := service.Create(ctx, team.CreateTeamRequest{Name: "SRE", OrgID: 1, Email: strPtr("sre@example.com"), CreateOnPlatform: true})
			Expect(err).NotTo(HaveOccurred())
			Expect(t.GrafanaID).NotTo(BeNil())
			Expect(mockPlatform.Calls()).To(Equal([]string{"CreateTeam:1"}))

			remote, err := mockPlatform.GetTeam(ctx, 1, *t.GrafanaID)
			Expect(err).NotTo(HaveOccurred())
			Expect(remote.Email).To(Equal("sre@example.com"))
		})
	})

	It("pushes renames of linked teams", func() {
		t, err := service.Update(ctx, 10, team.UpdateTeamRequest{Name: strPtr("Engineering")})
		Expect(err).NotTo(HaveOccurred())
		Expect(t.Name).To(Equal("Engineering"))

		remote, err := mockPlatform.GetTeam(ctx, 1, 2)
		Expect(err).NotTo(HaveOccurred())
		Expect(remote.Name).To(Equal("Engineering"))
	})

	Describe("memberships", func() {
		It("adds on the platform then locally, and rejects duplicates", func() {
			_, err := service.AddMember(ctx, 10, team.AddMemberRequest{UserID: 1})
			Expect(err).NotTo(HaveOccurred())
			Expect(mockPlatform.IsTeamMember(2, 1)).To(BeTrue())
			Expect(mockPlatform.Calls()).To(ContainElement("AddTeamMember:1"))

			_, err = service.AddMember(ctx, 10, team.AddMemberRequest{UserID: 1})
			Expect(errors.Is(err, internal.ErrTeamMembershipExists)).To(BeTrue())

			members, err := service.ListMembers(ctx, 10)
			Expect(err).NotTo(HaveOccurred())
			Expect(members).To(HaveLen(1))
		})

		It("keeps unprovisioned users local", func() {
			_, err := service.AddMember(ctx, 10, team.AddMemberRequest{UserID: 2})
			Expect(err).NotTo(HaveOccurred())
			Expect(mockPlatform.Calls()).To(BeEmpty())
		})

		It("does not write locally when the platform rejects the member", func() {
			mockPlatform.SetShouldFail("AddTeamMember", errors.New("forbidden"))
			_, err := service.AddMember(ctx, 10, team.AddMemberRequest{UserID: 1})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodePlatformRequestFailed))

			m, err := teamRepo.GetMembership(ctx, 1, 10)
			Expect(err).NotTo(HaveOccurred())
			Expect(m).To(BeNil())
		})

		It("removes on both sides", func() {
			_, err := service.AddMember(ctx, 10, team.AddMemberRequest{UserID: 1})
			Expect(err).NotTo(HaveOccurred())

			Expect(service.RemoveMember(ctx, 10, 1)).To(Succeed())
			Expect(mockPlatform.IsTeamMember(2, 1)).To(BeFalse())

			memberships, err := service.ListUserMemberships(ctx, 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(memberships).To(BeEmpty())

			Expect(errors.Is(service.RemoveMember(ctx, 10, 1), internal.ErrMembershipNotFound)).To(BeTrue())
		})
	})

	It("deletes a team together with its memberships", func() {
		_, err := service.AddMember(ctx, 11, team.AddMemberRequest{UserID: 2})
		Expect(err).NotTo(HaveOccurred())

		Expect(service.Delete(ctx, 11)).To(Succeed())
		_, err = service.GetByID(ctx, 11)
		Expect(errors.Is(err, internal.ErrTeamNotFound)).To(BeTrue())

		ms, err := teamRepo.ListMembershipsByUser(ctx, 2)
		Expect(err).NotTo(HaveOccurred())
		Expect(ms).To(BeEmpty())
	})
})
