package postgres_test

import (
	"context"
	"testing"

	orgDatamodel "github.com/frahmantamala/grafana-sync/internal/core/datamodel/organization"
	"github.com/frahmantamala/grafana-sync/internal/organization"
	orgPostgres "github.com/frahmantamala/grafana-sync/internal/organization/postgres"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestOrganizationPostgres(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Organization Postgres Suite")
}

func int64Ptr(v int64) *int64 { return &v }

var _ = Describe("Organization Repository", func() {
	var (
		db   *gorm.DB
		repo organization.RepositoryAPI
		ctx  context.Context
	)

	BeforeEach(func() {
		var err error
		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		sqlDB.SetMaxOpenConns(1)

		Expect(db.AutoMigrate(&orgDatamodel.Organization{}, &orgDatamodel.Membership{})).To(Succeed())
		repo = orgPostgres.NewOrganizationRepository(db)
		ctx = context.Background()
	})

	Describe("organizations", func() {
		It("finds by platform id and returns nil on a miss", func() {
			org := &orgDatamodel.Organization{Name: "R&D", GrafanaID: int64Ptr(7)}
			Expect(repo.Create(ctx, org)).To(Succeed())

			found, err := repo.GetByGrafanaID(ctx, 7)
			Expect(err).NotTo(HaveOccurred())
			Expect(found.ID).To(Equal(org.ID))

			missing, err := repo.GetByGrafanaID(ctx, 8)
			Expect(err).NotTo(HaveOccurred())
			Expect(missing).To(BeNil())
		})

		It("lists in id order and counts", func() {
			Expect(repo.Create(ctx, &orgDatamodel.Organization{Name: "b"})).To(Succeed())
			Expect(repo.Create(ctx, &orgDatamodel.Organization{Name: "a"})).To(Succeed())

			orgs, err := repo.ListAll(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(orgs).To(HaveLen(2))
			Expect(orgs[0].Name).To(Equal("b"))

			n, err := repo.Count(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(n).To(Equal(int64(2)))
		})

		It("drops memberships together with the organization", func() {
			org := &orgDatamodel.Organization{Name: "gone"}
			Expect(repo.Create(ctx, org)).To(Succeed())
			Expect(repo.CreateMembership(ctx, &orgDatamodel.Membership{UserID: 1, OrgID: org.ID, Role: "Viewer"})).To(Succeed())

			Expect(repo.Delete(ctx, org.ID)).To(Succeed())
			ms, err := repo.ListMembershipsByUser(ctx, 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(ms).To(BeEmpty())
		})
	})

	Describe("memberships", func() {
		It("rejects a duplicate (user, org) pair", func() {
			Expect(repo.CreateMembership(ctx, &orgDatamodel.Membership{UserID: 5, OrgID: 2, Role: "Viewer"})).To(Succeed())
			Expect(repo.CreateMembership(ctx, &orgDatamodel.Membership{UserID: 5, OrgID: 2, Role: "Admin"})).NotTo(Succeed())

			ms, err := repo.ListMembershipsByOrg(ctx, 2)
			Expect(err).NotTo(HaveOccurred())
			Expect(ms).To(HaveLen(1))
			Expect(ms[0].Role).To(Equal("Viewer"))
		})

		It("keeps a single default per user", func() {
			for _, orgID := range []int64{1, 2, 3} {
				Expect(repo.CreateMembership(ctx, &orgDatamodel.Membership{UserID: 5, OrgID: orgID, Role: "Viewer"})).To(Succeed())
			}
			Expect(repo.CreateMembership(ctx, &orgDatamodel.Membership{UserID: 6, OrgID: 1, Role: "Viewer"})).To(Succeed())

			Expect(repo.SetDefaultMembership(ctx, 5, 1)).To(Succeed())
			Expect(repo.SetDefaultMembership(ctx, 6, 1)).To(Succeed())
			Expect(repo.SetDefaultMembership(ctx, 5, 3)).To(Succeed())

			ms, err := repo.ListMembershipsByUser(ctx, 5)
			Expect(err).NotTo(HaveOccurred())
			defaults := 0
			for _, m := range ms {
				if m.IsDefault {
					defaults++
					Expect(m.OrgID).To(Equal(int64(3)))
				}
			}
			Expect(defaults).To(Equal(1))

			other, err := repo.GetMembership(ctx, 6, 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(other.IsDefault).To(BeTrue())
		})

		It("fails to set a default for a missing membership and leaves others untouched", func() {
			Expect(repo.CreateMembership(ctx, &orgDatamodel.Membership{UserID: 5, OrgID: 1, Role: "Viewer"})).To(Succeed())
			Expect(repo.SetDefaultMembership(ctx, 5, 1)).To(Succeed())

			Expect(repo.SetDefaultMembership(ctx, 5, 9)).To(MatchError(gorm.ErrRecordNotFound))

			m, err := repo.GetMembership(ctx, 5, 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(m.IsDefault).To(BeTrue())
		})

		It("updates the role and deletes", func() {
			Expect(repo.CreateMembership(ctx, &orgDatamodel.Membership{UserID: 5, OrgID: 1, Role: "Viewer"})).To(Succeed())
			Expect(repo.UpdateMembershipRole(ctx, 5, 1, "Editor")).To(Succeed())

			m, err := repo.GetMembership(ctx, 5, 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(m.Role).To(Equal("Editor"))

			Expect(repo.DeleteMembership(ctx, 5, 1)).To(Succeed())
			m, err = repo.GetMembership(ctx, 5, 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(m).To(BeNil())
		})
	})
})
