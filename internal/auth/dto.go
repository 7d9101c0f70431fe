package auth

import (
	"strings"

	"github.com/frahmantamala/grafana-sync/internal"
)

// LoginDTO is the transport shape used by the HTTP handler to accept login requests.
type LoginDTO struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (d *LoginDTO) Validate() error {
	d.Username = strings.TrimSpace(d.Username)
	if d.Username == "" {
		return internal.NewValidationFieldError("username", "username is required", "REQUIRED")
	}
	if d.Password == "" {
		return internal.NewValidationFieldError("password", "password is required", "REQUIRED")
	}
	return nil
}
