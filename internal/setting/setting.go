package setting

import (
	"strings"
	"time"

	"github.com/frahmantamala/grafana-sync/internal"
	settingDatamodel "github.com/frahmantamala/grafana-sync/internal/core/datamodel/setting"
)

// Mask replaces secret values in responses.
const Mask = "********"

const (
	GroupPlatform  = "grafana"
	GroupDirectory = "opoppo"
)

// groupKeys lists the keys a group accepts, fully qualified.
var groupKeys = map[string][]string{
	GroupPlatform: {
		internal.SettingPlatformURL,
		internal.SettingPlatformAdminUser,
		internal.SettingPlatformAdminPassword,
	},
	GroupDirectory: {
		internal.SettingDirectoryDSN,
	},
}

type Setting struct {
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsSecretKey reports whether the value of key is sealed at rest and masked
// in responses.
func IsSecretKey(key string) bool {
	k := strings.ToLower(key)
	return strings.Contains(k, "password") || strings.Contains(k, "secret")
}

func FromDataModel(s *settingDatamodel.Setting) *Setting {
	return &Setting{
		Key:       s.Key,
		Value:     s.Value,
		UpdatedAt: s.UpdatedAt,
	}
}
