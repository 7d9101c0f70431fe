package organization_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/frahmantamala/grafana-sync/internal"
	orgDatamodel "github.com/frahmantamala/grafana-sync/internal/core/datamodel/organization"
	userDatamodel "github.com/frahmantamala/grafana-sync/internal/core/datamodel/user"
	"github.com/frahmantamala/grafana-sync/internal/organization"
	orgPostgres "github.com/frahmantamala/grafana-sync/internal/organization/postgres"
	"github.com/frahmantamala/grafana-sync/internal/platform"
	"github.com/frahmantamala/grafana-sync/internal/user"
	userPostgres "github.com/frahmantamala/grafana-sync/internal/user/postgres"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestOrganizationService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Organization Service Suite")
}

func int64Ptr(v int64) *int64 { return &v }
func strPtr(s string) *string { return &s }

type fixture struct {
	ctx          context.Context
	orgRepo      organization.RepositoryAPI
	userRepo     user.RepositoryAPI
	mockPlatform *platform.MockClient
	service      *organization.Service
}

func newFixture() *fixture {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	Expect(err).NotTo(HaveOccurred())
	sqlDB, err := db.DB()
	Expect(err).NotTo(HaveOccurred())
	sqlDB.SetMaxOpenConns(1)
	Expect(db.AutoMigrate(&userDatamodel.User{}, &orgDatamodel.Organization{}, &orgDatamodel.Membership{})).To(Succeed())

	f := &fixture{
		ctx:          context.Background(),
		orgRepo:      orgPostgres.NewOrganizationRepository(db),
		userRepo:     userPostgres.NewUserRepository(db),
		mockPlatform: platform.NewMockClient(),
	}
	f.service = organization.NewService(f.orgRepo, f.userRepo, f.mockPlatform, slog.New(slog.NewTextHandler(io.Discard, nil)))
	return f
}

var _ = Describe("Organization Service", func() {
	var f *fixture

	BeforeEach(func() {
		f = newFixture()
	})

	Describe("Create", func() {
		It("creates a local-only organization", func() {
			org, err := f.service.Create(f.ctx, organization.CreateOrganizationRequest{Name: "  Local  "})
			Expect(err).NotTo(HaveOccurred())
			Expect(org.Name).To(Equal("Local"))
			Expect(org.IsLinked()).To(BeFalse())
			Expect(f.mockPlatform.Calls()).To(BeEmpty())
		})

		It("creates on the platform first when asked", func() {
			org, err := f.service.Create(f.ctx, organization.CreateOrganizationRequest{Name: "Ops", CreateOnPlatform: true})
			Expect(err).NotTo(HaveOccurred())
			Expect(org.GrafanaID).NotTo(BeNil())

			remote, err := f.mockPlatform.GetOrg(f.ctx, *org.GrafanaID)
			Expect(err).NotTo(HaveOccurred())
			Expect(remote.Name).To(Equal("Ops"))
		})

		It("writes nothing locally when the platform fails", func() {
			f.mockPlatform.SetShouldFail("CreateOrg", errors.New("unreachable"))
			_, err := f.service.Create(f.ctx, organization.CreateOrganizationRequest{Name: "Ops", CreateOnPlatform: true})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodePlatformRequestFailed))

			n, err := f.orgRepo.Count(f.ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(n).To(BeZero())
		})
	})

	It("renames linked organizations on the platform", func() {
		Expect(f.orgRepo.Create(f.ctx, &orgDatamodel.Organization{ID: 3, Name: "支社", GrafanaID: int64Ptr(2)})).To(Succeed())

		org, err := f.service.Update(f.ctx, 3, organization.UpdateOrganizationRequest{Name: "Branch"})
		Expect(err).NotTo(HaveOccurred())
		Expect(org.Name).To(Equal("Branch"))

		remote, err := f.mockPlatform.GetOrg(f.ctx, 2)
		Expect(err).NotTo(HaveOccurred())
		Expect(remote.Name).To(Equal("Branch"))
	})

	Describe("memberships", func() {
		BeforeEach(func() {
			Expect(f.orgRepo.Create(f.ctx, &orgDatamodel.Organization{ID: 1, Name: "本社", GrafanaID: int64Ptr(1)})).To(Succeed())
			Expect(f.orgRepo.Create(f.ctx, &orgDatamodel.Organization{ID: 2, Name: "Local only"})).To(Succeed())
			Expect(f.userRepo.Create(f.ctx, &userDatamodel.User{ID: 5, UserID: "takahashi.akira", Login: strPtr("takahashi.akira"), GrafanaID: int64Ptr(5), Status: "active"})).To(Succeed())
			Expect(f.userRepo.Create(f.ctx, &userDatamodel.User{ID: 6, UserID: "0006", Status: "pending"})).To(Succeed())
		})

		It("refuses to add user 5 to org 2 twice", func() {
			_, err := f.service.AddMember(f.ctx, 2, organization.AddMemberRequest{UserID: 5})
			Expect(err).NotTo(HaveOccurred())

			_, err = f.service.AddMember(f.ctx, 2, organization.AddMemberRequest{UserID: 5, Role: organization.RoleAdmin})
			Expect(errors.Is(err, internal.ErrMembershipExists)).To(BeTrue())
			appErr, _ := internal.IsAppError(err)
			Expect(appErr.StatusCode).To(Equal(409))

			members, err := f.service.ListMembers(f.ctx, 2)
			Expect(err).NotTo(HaveOccurred())
			Expect(members).To(HaveLen(1))
			Expect(members[0].Role).To(Equal(organization.RoleViewer))
		})

		It("pushes to the platform when both sides are linked", func() {
			_, err := f.service.AddMember(f.ctx, 1, organization.AddMemberRequest{UserID: 5, Role: organization.RoleEditor})
			Expect(err).NotTo(HaveOccurred())

			role, ok := f.mockPlatform.OrgRole(1, 5)
			Expect(ok).To(BeTrue())
			Expect(role).To(Equal(organization.RoleEditor))
		})

		It("stays local when the user has no platform account", func() {
			_, err := f.service.AddMember(f.ctx, 1, organization.AddMemberRequest{UserID: 6})
			Expect(err).NotTo(HaveOccurred())
			Expect(f.mockPlatform.Calls()).NotTo(ContainElement("AddOrgUser"))
		})

		It("propagates platform failures without writing locally", func() {
			f.mockPlatform.SetShouldFail("AddOrgUser", errors.New("boom"))
			_, err := f.service.AddMember(f.ctx, 1, organization.AddMemberRequest{UserID: 5})
			Expect(err).To(HaveOccurred())

			m, err := f.orgRepo.GetMembership(f.ctx, 5, 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(m).To(BeNil())
		})

		It("validates roles and referenced rows", func() {
			_, err := f.service.AddMember(f.ctx, 1, organization.AddMemberRequest{UserID: 5, Role: "Owner"})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeValidationFailed))
			details, ok := appErr.Details.(internal.ValidationErrors)
			Expect(ok).To(BeTrue())
			Expect(details.Errors[0].Code).To(Equal(string(internal.ErrCodeInvalidRole)))

			_, err = f.service.AddMember(f.ctx, 99, organization.AddMemberRequest{UserID: 5})
			Expect(errors.Is(err, internal.ErrOrganizationNotFound)).To(BeTrue())

			_, err = f.service.AddMember(f.ctx, 1, organization.AddMemberRequest{UserID: 99})
			Expect(errors.Is(err, internal.ErrUserNotFound)).To(BeTrue())
		})

		It("updates roles and removes members on both sides", func() {
			_, err := f.service.AddMember(f.ctx, 1, organization.AddMemberRequest{UserID: 5})
			Expect(err).NotTo(HaveOccurred())

			m, err := f.service.UpdateMemberRole(f.ctx, 1, 5, organization.UpdateMemberRequest{Role: organization.RoleAdmin})
			Expect(err).NotTo(HaveOccurred())
			Expect(m.Role).To(Equal(organization.RoleAdmin))
			role, _ := f.mockPlatform.OrgRole(1, 5)
			Expect(role).To(Equal(organization.RoleAdmin))

			Expect(f.service.RemoveMember(f.ctx, 1, 5)).To(Succeed())
			_, ok := f.mockPlatform.OrgRole(1, 5)
			Expect(ok).To(BeFalse())

			Expect(errors.Is(f.service.RemoveMember(f.ctx, 1, 5), internal.ErrMembershipNotFound)).To(BeTrue())
		})

		It("keeps one default organization per user", func() {
			_, err := f.service.AddMember(f.ctx, 1, organization.AddMemberRequest{UserID: 6, IsDefault: true})
			Expect(err).NotTo(HaveOccurred())
			_, err = f.service.AddMember(f.ctx, 2, organization.AddMemberRequest{UserID: 6})
			Expect(err).NotTo(HaveOccurred())

			m, err := f.service.SetDefault(f.ctx, 2, 6)
			Expect(err).NotTo(HaveOccurred())
			Expect(m.IsDefault).To(BeTrue())

			memberships, err := f.service.ListUserMemberships(f.ctx, 6)
			Expect(err).NotTo(HaveOccurred())
			Expect(memberships).To(HaveLen(2))
			for _, ms := range memberships {
				Expect(ms.IsDefault).To(Equal(ms.OrgID == 2))
			}
		})
	})
})
