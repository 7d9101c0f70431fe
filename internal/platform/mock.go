package platform

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"sync"
	"time"
)

// MockClient is an in-memory platform used for offline development and
// tests. It keeps the org switch contract of the real API: team calls act on
// the organization the session was last switched to.
type MockClient struct {
	mu sync.Mutex

	orgs        map[int64]*Org
	users       map[int64]*User
	teams       map[int64]*Team
	orgUsers    map[int64]map[int64]string
	teamMembers map[int64]map[int64]bool
	nextID      int64

	activeOrg int64
	calls     []string
	failures  map[string]error
}

func NewEmptyMockClient() *MockClient {
	return &MockClient{
		orgs:        make(map[int64]*Org),
		users:       make(map[int64]*User),
		teams:       make(map[int64]*Team),
		orgUsers:    make(map[int64]map[int64]string),
		teamMembers: make(map[int64]map[int64]bool),
		nextID:      100,
		activeOrg:   1,
		failures:    make(map[string]error),
	}
}

// NewMockClient returns a platform seeded with the development fixtures.
func NewMockClient() *MockClient {
	m := NewEmptyMockClient()
	m.AddOrg(Org{ID: 1, Name: "本社"})
	m.AddOrg(Org{ID: 2, Name: "支社"})
	m.AddOrg(Org{ID: 3, Name: "子会社"})

	seen := func(s string) *time.Time {
		t, _ := time.Parse(time.RFC3339, s)
		return &t
	}
	m.AddUser(User{ID: 1, Name: "山田 太郎", Login: "yamada.taro", Email: "yamada.taro@example.com", IsAdmin: true, LastSeenAt: seen("2023-05-01T09:00:00Z")})
	m.AddUser(User{ID: 2, Name: "佐藤 花子", Login: "sato.hanako", Email: "sato.hanako@example.com", LastSeenAt: seen("2023-05-02T10:30:00Z")})
	m.AddUser(User{ID: 3, Name: "鈴木 一郎", Login: "suzuki.ichiro", Email: "suzuki.ichiro@example.com", LastSeenAt: seen("2023-04-28T15:45:00Z")})
	m.AddUser(User{ID: 4, Name: "田中 浩", Login: "tanaka.hiroshi", Email: "tanaka.hiroshi@example.com", IsAdmin: true, LastSeenAt: seen("2023-05-03T08:15:00Z")})
	m.AddUser(User{ID: 5, Name: "高橋 明", Login: "takahashi.akira", Email: "takahashi.akira@example.com", IsDisabled: true, LastSeenAt: seen("2023-03-15T11:20:00Z")})

	m.AddTeam(Team{ID: 1, OrgID: 1, Name: "営業チーム", Email: "sales@example.com"})
	m.AddTeam(Team{ID: 2, OrgID: 1, Name: "技術チーム", Email: "tech@example.com"})
	m.AddTeam(Team{ID: 3, OrgID: 2, Name: "管理チーム", Email: "admin@example.com"})

	m.orgUsers[1] = map[int64]string{1: "Admin", 2: "Editor", 3: "Viewer", 4: "Admin"}
	m.orgUsers[2] = map[int64]string{4: "Viewer", 5: "Admin"}
	m.teamMembers[1] = map[int64]bool{1: true, 2: true}
	m.teamMembers[2] = map[int64]bool{3: true, 4: true}
	m.teamMembers[3] = map[int64]bool{5: true}
	return m
}

func (m *MockClient) AddOrg(org Org) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o := org
	m.orgs[o.ID] = &o
}

func (m *MockClient) AddUser(user User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := user
	m.users[u.ID] = &u
}

func (m *MockClient) AddTeam(team Team) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := team
	m.teams[t.ID] = &t
}

// SetShouldFail makes the named method (e.g. "ListTeams") return err. A nil
// err clears the failure.
func (m *MockClient) SetShouldFail(method string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.failures, method)
		return
	}
	m.failures[method] = err
}

// Calls returns the methods invoked so far, team calls suffixed with the org id.
func (m *MockClient) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

func (m *MockClient) ResetCalls() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = nil
}

func (m *MockClient) ActiveOrg() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.activeOrg
}

func (m *MockClient) OrgRole(orgID, userID int64) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	role, ok := m.orgUsers[orgID][userID]
	return role, ok
}

func (m *MockClient) IsTeamMember(teamID, userID int64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.teamMembers[teamID][userID]
}

// enter records the call and returns the injected failure. Callers hold mu.
func (m *MockClient) enter(method string) error {
	m.calls = append(m.calls, method)
	return m.failures[method]
}

// switchOrg mirrors POST /api/user/using/{orgId}. Callers hold mu.
func (m *MockClient) switchOrg(method string, orgID int64) error {
	m.calls = append(m.calls, fmt.Sprintf("%s:%d", method, orgID))
	if err := m.failures[method]; err != nil {
		return err
	}
	if _, ok := m.orgs[orgID]; !ok {
		return mockError(http.MethodPost, fmt.Sprintf("/api/user/using/%d", orgID), http.StatusNotFound, "organization not found")
	}
	m.activeOrg = orgID
	return nil
}

func (m *MockClient) allocID() int64 {
	m.nextID++
	return m.nextID
}

func mockError(method, path string, status int, msg string) error {
	return &APIError{Status: status, Method: method, Path: path, Message: msg}
}

// ----------------- ORGANIZATIONS -----------------

func (m *MockClient) ListOrgs(ctx context.Context) ([]Org, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("ListOrgs"); err != nil {
		return nil, err
	}
	out := make([]Org, 0, len(m.orgs))
	for _, o := range m.orgs {
		out = append(out, *o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MockClient) GetOrg(ctx context.Context, id int64) (*Org, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("GetOrg"); err != nil {
		return nil, err
	}
	o, ok := m.orgs[id]
	if !ok {
		return nil, nil
	}
	cp := *o
	return &cp, nil
}

func (m *MockClient) CreateOrg(ctx context.Context, name string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("CreateOrg"); err != nil {
		return 0, err
	}
	for _, o := range m.orgs {
		if o.Name == name {
			return 0, mockError(http.MethodPost, "/api/orgs", http.StatusConflict, "Organization name taken")
		}
	}
	id := m.allocID()
	m.orgs[id] = &Org{ID: id, Name: name}
	return id, nil
}

func (m *MockClient) UpdateOrg(ctx context.Context, id int64, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("UpdateOrg"); err != nil {
		return err
	}
	o, ok := m.orgs[id]
	if !ok {
		return mockError(http.MethodPut, fmt.Sprintf("/api/orgs/%d", id), http.StatusNotFound, "Organization not found")
	}
	o.Name = name
	return nil
}

func (m *MockClient) DeleteOrg(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("DeleteOrg"); err != nil {
		return err
	}
	if _, ok := m.orgs[id]; !ok {
		return mockError(http.MethodDelete, fmt.Sprintf("/api/orgs/%d", id), http.StatusNotFound, "Organization not found")
	}
	delete(m.orgs, id)
	delete(m.orgUsers, id)
	for teamID, t := range m.teams {
		if t.OrgID == id {
			delete(m.teams, teamID)
			delete(m.teamMembers, teamID)
		}
	}
	return nil
}

// ----------------- USERS -----------------

func (m *MockClient) ListUsers(ctx context.Context) ([]User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("ListUsers"); err != nil {
		return nil, err
	}
	out := make([]User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MockClient) GetUser(ctx context.Context, id int64) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("GetUser"); err != nil {
		return nil, err
	}
	u, ok := m.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (m *MockClient) CreateUser(ctx context.Context, req CreateUserRequest) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("CreateUser"); err != nil {
		return 0, err
	}
	if err := req.Validate(); err != nil {
		return 0, mockError(http.MethodPost, "/api/admin/users", http.StatusBadRequest, err.Error())
	}
	for _, u := range m.users {
		if (req.Login != "" && u.Login == req.Login) || (req.Email != "" && u.Email == req.Email) {
			return 0, mockError(http.MethodPost, "/api/admin/users", http.StatusPreconditionFailed, "User with same email or login already exists")
		}
	}
	id := m.allocID()
	m.users[id] = &User{ID: id, Name: req.Name, Login: req.Login, Email: req.Email}
	orgID := req.OrgID
	if orgID == 0 {
		orgID = 1
	}
	if _, ok := m.orgs[orgID]; ok {
		if m.orgUsers[orgID] == nil {
			m.orgUsers[orgID] = map[int64]string{}
		}
		m.orgUsers[orgID][id] = "Viewer"
	}
	return id, nil
}

func (m *MockClient) UpdateUser(ctx context.Context, id int64, req UpdateUserRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("UpdateUser"); err != nil {
		return err
	}
	u, ok := m.users[id]
	if !ok {
		return mockError(http.MethodPut, fmt.Sprintf("/api/users/%d", id), http.StatusNotFound, "User not found")
	}
	if req.Name != "" {
		u.Name = req.Name
	}
	if req.Email != "" {
		u.Email = req.Email
	}
	if req.Login != "" {
		u.Login = req.Login
	}
	return nil
}

func (m *MockClient) DeleteUser(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("DeleteUser"); err != nil {
		return err
	}
	if _, ok := m.users[id]; !ok {
		return mockError(http.MethodDelete, fmt.Sprintf("/api/admin/users/%d", id), http.StatusNotFound, "User not found")
	}
	delete(m.users, id)
	for _, members := range m.orgUsers {
		delete(members, id)
	}
	for _, members := range m.teamMembers {
		delete(members, id)
	}
	return nil
}

// ----------------- ORG MEMBERSHIP -----------------

func (m *MockClient) AddOrgUser(ctx context.Context, orgID int64, loginOrEmail, role string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("AddOrgUser"); err != nil {
		return err
	}
	path := fmt.Sprintf("/api/orgs/%d/users", orgID)
	if _, ok := m.orgs[orgID]; !ok {
		return mockError(http.MethodPost, path, http.StatusNotFound, "Organization not found")
	}
	var userID int64
	for _, u := range m.users {
		if u.Login == loginOrEmail || u.Email == loginOrEmail {
			userID = u.ID
			break
		}
	}
	if userID == 0 {
		return mockError(http.MethodPost, path, http.StatusNotFound, "User not found")
	}
	if _, exists := m.orgUsers[orgID][userID]; exists {
		return mockError(http.MethodPost, path, http.StatusConflict, "User is already member of this organization")
	}
	if role == "" {
		role = "Viewer"
	}
	if m.orgUsers[orgID] == nil {
		m.orgUsers[orgID] = map[int64]string{}
	}
	m.orgUsers[orgID][userID] = role
	return nil
}

func (m *MockClient) UpdateOrgUserRole(ctx context.Context, orgID, userID int64, role string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("UpdateOrgUserRole"); err != nil {
		return err
	}
	if _, ok := m.orgUsers[orgID][userID]; !ok {
		return mockError(http.MethodPatch, fmt.Sprintf("/api/orgs/%d/users/%d", orgID, userID), http.StatusNotFound, "User not found in organization")
	}
	m.orgUsers[orgID][userID] = role
	return nil
}

func (m *MockClient) RemoveOrgUser(ctx context.Context, orgID, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("RemoveOrgUser"); err != nil {
		return err
	}
	if _, ok := m.orgUsers[orgID][userID]; !ok {
		return mockError(http.MethodDelete, fmt.Sprintf("/api/orgs/%d/users/%d", orgID, userID), http.StatusNotFound, "User not found in organization")
	}
	delete(m.orgUsers[orgID], userID)
	return nil
}

// ----------------- TEAMS -----------------

// activeTeam returns the team when it belongs to the active organization.
// Callers hold mu.
func (m *MockClient) activeTeam(method string, teamID int64) (*Team, error) {
	t, ok := m.teams[teamID]
	if !ok || t.OrgID != m.activeOrg {
		return nil, mockError(method, fmt.Sprintf("/api/teams/%d", teamID), http.StatusNotFound, "Team not found")
	}
	return t, nil
}

func (m *MockClient) ListTeams(ctx context.Context, orgID int64) ([]Team, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.switchOrg("ListTeams", orgID); err != nil {
		return nil, err
	}
	var out []Team
	for _, t := range m.teams {
		if t.OrgID == m.activeOrg {
			cp := *t
			cp.MemberCount = len(m.teamMembers[t.ID])
			out = append(out, cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MockClient) GetTeam(ctx context.Context, orgID, teamID int64) (*Team, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.switchOrg("GetTeam", orgID); err != nil {
		return nil, err
	}
	t, err := m.activeTeam(http.MethodGet, teamID)
	if err != nil {
		return nil, nil
	}
	cp := *t
	cp.MemberCount = len(m.teamMembers[t.ID])
	return &cp, nil
}

func (m *MockClient) CreateTeam(ctx context.Context, orgID int64, req TeamRequest) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.switchOrg("CreateTeam", orgID); err != nil {
		return 0, err
	}
	if err := req.Validate(); err != nil {
		return 0, mockError(http.MethodPost, "/api/teams", http.StatusBadRequest, err.Error())
	}
	for _, t := range m.teams {
		if t.OrgID == m.activeOrg && t.Name == req.Name {
			return 0, mockError(http.MethodPost, "/api/teams", http.StatusConflict, "Team name taken")
		}
	}
	id := m.allocID()
	m.teams[id] = &Team{ID: id, OrgID: m.activeOrg, Name: req.Name, Email: req.Email}
	return id, nil
}

func (m *MockClient) UpdateTeam(ctx context.Context, orgID, teamID int64, req TeamRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.switchOrg("UpdateTeam", orgID); err != nil {
		return err
	}
	t, err := m.activeTeam(http.MethodPut, teamID)
	if err != nil {
		return err
	}
	if req.Name != "" {
		t.Name = req.Name
	}
	t.Email = req.Email
	return nil
}

func (m *MockClient) DeleteTeam(ctx context.Context, orgID, teamID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.switchOrg("DeleteTeam", orgID); err != nil {
		return err
	}
	if _, err := m.activeTeam(http.MethodDelete, teamID); err != nil {
		return err
	}
	delete(m.teams, teamID)
	delete(m.teamMembers, teamID)
	return nil
}

// ----------------- TEAM MEMBERSHIP -----------------

func (m *MockClient) ListTeamMembers(ctx context.Context, orgID, teamID int64) ([]TeamMember, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.switchOrg("ListTeamMembers", orgID); err != nil {
		return nil, err
	}
	if _, err := m.activeTeam(http.MethodGet, teamID); err != nil {
		return nil, err
	}
	var out []TeamMember
	for userID := range m.teamMembers[teamID] {
		u := m.users[userID]
		if u == nil {
			continue
		}
		out = append(out, TeamMember{OrgID: orgID, TeamID: teamID, UserID: userID, Login: u.Login, Email: u.Email, Name: u.Name})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

func (m *MockClient) AddTeamMember(ctx context.Context, orgID, teamID, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.switchOrg("AddTeamMember", orgID); err != nil {
		return err
	}
	if _, err := m.activeTeam(http.MethodPost, teamID); err != nil {
		return err
	}
	path := fmt.Sprintf("/api/teams/%d/members", teamID)
	if _, ok := m.users[userID]; !ok {
		return mockError(http.MethodPost, path, http.StatusNotFound, "User not found")
	}
	if m.teamMembers[teamID][userID] {
		return mockError(http.MethodPost, path, http.StatusConflict, "User is already added to this team")
	}
	if m.teamMembers[teamID] == nil {
		m.teamMembers[teamID] = map[int64]bool{}
	}
	m.teamMembers[teamID][userID] = true
	return nil
}

func (m *MockClient) RemoveTeamMember(ctx context.Context, orgID, teamID, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.switchOrg("RemoveTeamMember", orgID); err != nil {
		return err
	}
	if _, err := m.activeTeam(http.MethodDelete, teamID); err != nil {
		return err
	}
	if !m.teamMembers[teamID][userID] {
		return mockError(http.MethodDelete, fmt.Sprintf("/api/teams/%d/members/%d", teamID, userID), http.StatusNotFound, "Team member not found")
	}
	delete(m.teamMembers[teamID], userID)
	return nil
}
