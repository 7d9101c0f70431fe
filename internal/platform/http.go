package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	platformDatamodel "github.com/frahmantamala/grafana-sync/internal/core/datamodel/platform"
)

const pageSize = 1000

type Config struct {
	URL           string
	AdminUser     string
	AdminPassword string
	Timeout       time.Duration
}

type HTTPClient struct {
	baseURL    string
	user       string
	password   string
	timeout    time.Duration
	httpClient *http.Client
	logger     *slog.Logger

	// orgMu serializes the org switch with the call that depends on it.
	orgMu sync.Mutex
}

func NewHTTPClient(config Config, logger *slog.Logger) *HTTPClient {
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPClient{
		baseURL:    strings.TrimRight(config.URL, "/"),
		user:       config.AdminUser,
		password:   config.AdminPassword,
		timeout:    timeout,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

func (c *HTTPClient) do(ctx context.Context, method, path string, body, out interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal %s %s request: %w", method, path, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create HTTP request: %w", err)
	}
	req.SetBasicAuth(c.user, c.password)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("platform request failed", "method", method, "path", path, "error", err)
		return fmt.Errorf("platform %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("platform request",
		"method", method,
		"path", path,
		"status_code", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds())

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode, Method: method, Path: path}
		var msg platformDatamodel.MessageResponse
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		if json.Unmarshal(raw, &msg) == nil && msg.Message != "" {
			apiErr.Message = msg.Message
		} else {
			apiErr.Message = strings.TrimSpace(string(raw))
		}
		c.logger.Warn("platform returned error", "method", method, "path", path, "status_code", resp.StatusCode, "message", apiErr.Message)
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s %s response: %w", method, path, err)
	}
	return nil
}

// get decodes into out and reports false when the object does not exist.
func (c *HTTPClient) get(ctx context.Context, path string, out interface{}) (bool, error) {
	err := c.do(ctx, http.MethodGet, path, nil, out)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// inOrg switches the admin session to orgID and runs fn while still holding
// the switch lock.
func (c *HTTPClient) inOrg(ctx context.Context, orgID int64, fn func() error) error {
	c.orgMu.Lock()
	defer c.orgMu.Unlock()

	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/api/user/using/%d", orgID), nil, nil); err != nil {
		return fmt.Errorf("switch to org %d: %w", orgID, err)
	}
	return fn()
}

// ----------------- ORGANIZATIONS -----------------

func (c *HTTPClient) ListOrgs(ctx context.Context) ([]Org, error) {
	var orgs []Org
	for page := 1; ; page++ {
		var batch []Org
		path := fmt.Sprintf("/api/orgs?perpage=%d&page=%d", pageSize, page)
		if err := c.do(ctx, http.MethodGet, path, nil, &batch); err != nil {
			return nil, err
		}
		orgs = append(orgs, batch...)
		if len(batch) < pageSize {
			return orgs, nil
		}
	}
}

func (c *HTTPClient) GetOrg(ctx context.Context, id int64) (*Org, error) {
	var org Org
	found, err := c.get(ctx, fmt.Sprintf("/api/orgs/%d", id), &org)
	if err != nil || !found {
		return nil, err
	}
	return &org, nil
}

func (c *HTTPClient) CreateOrg(ctx context.Context, name string) (int64, error) {
	var resp platformDatamodel.CreatedResponse
	if err := c.do(ctx, http.MethodPost, "/api/orgs", map[string]string{"name": name}, &resp); err != nil {
		return 0, err
	}
	c.logger.Info("platform org created", "org_id", resp.OrgID, "name", name)
	return resp.OrgID, nil
}

func (c *HTTPClient) UpdateOrg(ctx context.Context, id int64, name string) error {
	return c.do(ctx, http.MethodPut, fmt.Sprintf("/api/orgs/%d", id), map[string]string{"name": name}, nil)
}

func (c *HTTPClient) DeleteOrg(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/orgs/%d", id), nil, nil)
}

// ----------------- USERS -----------------

func (c *HTTPClient) ListUsers(ctx context.Context) ([]User, error) {
	var users []User
	for page := 1; ; page++ {
		var batch []User
		path := fmt.Sprintf("/api/users?perpage=%d&page=%d", pageSize, page)
		if err := c.do(ctx, http.MethodGet, path, nil, &batch); err != nil {
			return nil, err
		}
		users = append(users, batch...)
		if len(batch) < pageSize {
			return users, nil
		}
	}
}

func (c *HTTPClient) GetUser(ctx context.Context, id int64) (*User, error) {
	var user User
	found, err := c.get(ctx, fmt.Sprintf("/api/users/%d", id), &user)
	if err != nil || !found {
		return nil, err
	}
	return &user, nil
}

func (c *HTTPClient) CreateUser(ctx context.Context, req CreateUserRequest) (int64, error) {
	if err := req.Validate(); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	var resp platformDatamodel.CreatedResponse
	if err := c.do(ctx, http.MethodPost, "/api/admin/users", req, &resp); err != nil {
		return 0, err
	}
	c.logger.Info("platform user created", "platform_id", resp.ID, "login", req.Login)
	return resp.ID, nil
}

func (c *HTTPClient) UpdateUser(ctx context.Context, id int64, req UpdateUserRequest) error {
	return c.do(ctx, http.MethodPut, fmt.Sprintf("/api/users/%d", id), req, nil)
}

func (c *HTTPClient) DeleteUser(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/admin/users/%d", id), nil, nil)
}

// ----------------- ORG MEMBERSHIP -----------------

func (c *HTTPClient) AddOrgUser(ctx context.Context, orgID int64, loginOrEmail, role string) error {
	if role == "" {
		role = "Viewer"
	}
	body := map[string]string{"loginOrEmail": loginOrEmail, "role": role}
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/api/orgs/%d/users", orgID), body, nil)
}

func (c *HTTPClient) UpdateOrgUserRole(ctx context.Context, orgID, userID int64, role string) error {
	body := map[string]string{"role": role}
	return c.do(ctx, http.MethodPatch, fmt.Sprintf("/api/orgs/%d/users/%d", orgID, userID), body, nil)
}

func (c *HTTPClient) RemoveOrgUser(ctx context.Context, orgID, userID int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/orgs/%d/users/%d", orgID, userID), nil, nil)
}

// ----------------- TEAMS -----------------

func (c *HTTPClient) ListTeams(ctx context.Context, orgID int64) ([]Team, error) {
	var teams []Team
	err := c.inOrg(ctx, orgID, func() error {
		for page := 1; ; page++ {
			var resp platformDatamodel.TeamSearchResponse
			q := url.Values{"perpage": {fmt.Sprint(pageSize)}, "page": {fmt.Sprint(page)}}
			if err := c.do(ctx, http.MethodGet, "/api/teams/search?"+q.Encode(), nil, &resp); err != nil {
				return err
			}
			teams = append(teams, resp.Teams...)
			if len(resp.Teams) < pageSize || len(teams) >= resp.TotalCount {
				return nil
			}
		}
	})
	if err != nil {
		return nil, err
	}
	return teams, nil
}

func (c *HTTPClient) GetTeam(ctx context.Context, orgID, teamID int64) (*Team, error) {
	var (
		team  Team
		found bool
	)
	err := c.inOrg(ctx, orgID, func() error {
		var err error
		found, err = c.get(ctx, fmt.Sprintf("/api/teams/%d", teamID), &team)
		return err
	})
	if err != nil || !found {
		return nil, err
	}
	return &team, nil
}

func (c *HTTPClient) CreateTeam(ctx context.Context, orgID int64, req TeamRequest) (int64, error) {
	if err := req.Validate(); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	var resp platformDatamodel.CreatedResponse
	err := c.inOrg(ctx, orgID, func() error {
		return c.do(ctx, http.MethodPost, "/api/teams", req, &resp)
	})
	if err != nil {
		return 0, err
	}
	c.logger.Info("platform team created", "org_id", orgID, "team_id", resp.TeamID, "name", req.Name)
	return resp.TeamID, nil
}

func (c *HTTPClient) UpdateTeam(ctx context.Context, orgID, teamID int64, req TeamRequest) error {
	return c.inOrg(ctx, orgID, func() error {
		return c.do(ctx, http.MethodPut, fmt.Sprintf("/api/teams/%d", teamID), req, nil)
	})
}

func (c *HTTPClient) DeleteTeam(ctx context.Context, orgID, teamID int64) error {
	return c.inOrg(ctx, orgID, func() error {
		return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/teams/%d", teamID), nil, nil)
	})
}

// ----------------- TEAM MEMBERSHIP -----------------

func (c *HTTPClient) ListTeamMembers(ctx context.Context, orgID, teamID int64) ([]TeamMember, error) {
	var members []TeamMember
	err := c.inOrg(ctx, orgID, func() error {
		return c.do(ctx, http.MethodGet, fmt.Sprintf("/api/teams/%d/members", teamID), nil, &members)
	})
	if err != nil {
		return nil, err
	}
	return members, nil
}

func (c *HTTPClient) AddTeamMember(ctx context.Context, orgID, teamID, userID int64) error {
	return c.inOrg(ctx, orgID, func() error {
		body := map[string]int64{"userId": userID}
		return c.do(ctx, http.MethodPost, fmt.Sprintf("/api/teams/%d/members", teamID), body, nil)
	})
}

func (c *HTTPClient) RemoveTeamMember(ctx context.Context, orgID, teamID, userID int64) error {
	return c.inOrg(ctx, orgID, func() error {
		return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/teams/%d/members/%d", teamID, userID), nil, nil)
	})
}
