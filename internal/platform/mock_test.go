package platform_test

import (
	"context"
	"errors"

	"github.com/frahmantamala/grafana-sync/internal/platform"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("MockClient", func() {
	var (
		client *platform.MockClient
		ctx    context.Context
	)

	BeforeEach(func() {
		client = platform.NewMockClient()
		ctx = context.Background()
	})

	It("serves the development fixtures", func() {
		orgs, err := client.ListOrgs(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(orgs).To(HaveLen(3))

		users, err := client.ListUsers(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(users).To(HaveLen(5))
		Expect(users[4].IsDisabled).To(BeTrue())
	})

	It("scopes team calls to the switched organization", func() {
		teams, err := client.ListTeams(ctx, 1)
		Expect(err).NotTo(HaveOccurred())
		Expect(teams).To(HaveLen(2))
		Expect(client.ActiveOrg()).To(Equal(int64(1)))

		_, err = client.ListTeamMembers(ctx, 2, teams[0].ID)
		Expect(errors.Is(err, platform.ErrNotFound)).To(BeTrue())
		Expect(client.ActiveOrg()).To(Equal(int64(2)))
	})

	It("records calls with the org they were scoped to", func() {
		_, _ = client.ListOrgs(ctx)
		_, _ = client.ListTeams(ctx, 2)
		Expect(client.Calls()).To(Equal([]string{"ListOrgs", "ListTeams:2"}))
	})

	It("rejects duplicate org membership with a conflict", func() {
		err := client.AddOrgUser(ctx, 1, "yamada.taro", "Viewer")
		Expect(errors.Is(err, platform.ErrConflict)).To(BeTrue())

		Expect(client.AddOrgUser(ctx, 3, "yamada.taro", "")).To(Succeed())
		role, ok := client.OrgRole(3, 1)
		Expect(ok).To(BeTrue())
		Expect(role).To(Equal("Viewer"))
	})

	It("manages team members", func() {
		Expect(client.AddTeamMember(ctx, 1, 1, 3)).To(Succeed())
		Expect(client.IsTeamMember(1, 3)).To(BeTrue())
		Expect(errors.Is(client.AddTeamMember(ctx, 1, 1, 3), platform.ErrConflict)).To(BeTrue())
		Expect(client.RemoveTeamMember(ctx, 1, 1, 3)).To(Succeed())
		Expect(client.IsTeamMember(1, 3)).To(BeFalse())
	})

	It("returns injected failures", func() {
		client.SetShouldFail("ListUsers", errors.New("platform down"))
		_, err := client.ListUsers(ctx)
		Expect(err).To(MatchError("platform down"))

		client.SetShouldFail("ListUsers", nil)
		_, err = client.ListUsers(ctx)
		Expect(err).NotTo(HaveOccurred())
	})

	It("creates users into the default organization", func() {
		id, err := client.CreateUser(ctx, platform.CreateUserRequest{Login: "0001", Email: "0001@example.com", Password: "pw"})
		Expect(err).NotTo(HaveOccurred())

		user, err := client.GetUser(ctx, id)
		Expect(err).NotTo(HaveOccurred())
		Expect(user.Login).To(Equal("0001"))
		_, ok := client.OrgRole(1, id)
		Expect(ok).To(BeTrue())
	})
})
