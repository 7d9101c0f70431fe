package platform

import (
	"errors"
	"time"
)

type Org struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type User struct {
	ID         int64      `json:"id"`
	Name       string     `json:"name"`
	Login      string     `json:"login"`
	Email      string     `json:"email"`
	IsAdmin    bool       `json:"isAdmin,omitempty"`
	IsDisabled bool       `json:"isDisabled"`
	LastSeenAt *time.Time `json:"lastSeenAt,omitempty"`
}

type CreateUserRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Login    string `json:"login"`
	Password string `json:"password"`
	OrgID    int64  `json:"OrgId,omitempty"`
}

func (r *CreateUserRequest) Validate() error {
	if r.Login == "" && r.Email == "" {
		return errors.New("login or email is required")
	}
	if r.Password == "" {
		return errors.New("password is required")
	}
	return nil
}

type UpdateUserRequest struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Login string `json:"login,omitempty"`
}

type Team struct {
	ID          int64  `json:"id"`
	OrgID       int64  `json:"orgId"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	MemberCount int    `json:"memberCount"`
}

type TeamRequest struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

func (r *TeamRequest) Validate() error {
	if r.Name == "" {
		return errors.New("name is required")
	}
	return nil
}

type TeamMember struct {
	OrgID  int64  `json:"orgId"`
	TeamID int64  `json:"teamId"`
	UserID int64  `json:"userId"`
	Login  string `json:"login"`
	Email  string `json:"email"`
	Name   string `json:"name"`
}

type TeamSearchResponse struct {
	TotalCount int    `json:"totalCount"`
	Teams      []Team `json:"teams"`
}

// CreatedResponse covers the create endpoints, which report the new id under
// different keys.
type CreatedResponse struct {
	ID      int64  `json:"id"`
	OrgID   int64  `json:"orgId"`
	TeamID  int64  `json:"teamId"`
	Message string `json:"message"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
