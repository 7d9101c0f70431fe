package synclog

import (
	"encoding/json"
	"time"

	synclogDatamodel "github.com/frahmantamala/grafana-sync/internal/core/datamodel/synclog"
	"gorm.io/datatypes"
)

// Log types are stored as-is and must stay stable so old rows remain groupable.
const (
	TypeDirectoryToLocal = "opoppo_to_db"
	TypeOrganizations    = "grafana_orgs"
	TypeUsers            = "grafana_users"
	TypeTeams            = "grafana_teams"
	TypeFullSync         = "grafana_full_sync"
)

const (
	StatusSuccess = synclogDatamodel.StatusSuccess
	StatusError   = synclogDatamodel.StatusError
)

type Log struct {
	ID        int64                  `json:"id"`
	Type      string                 `json:"type"`
	Status    string                 `json:"status"`
	Details   map[string]interface{} `json:"details"`
	CreatedAt time.Time              `json:"created_at"`
}

func (l *Log) Succeeded() bool {
	return l.Status == StatusSuccess
}

func ToDataModel(l *Log) *synclogDatamodel.Log {
	return &synclogDatamodel.Log{
		ID:        l.ID,
		Type:      l.Type,
		Status:    l.Status,
		Details:   datatypes.JSONMap(l.Details),
		CreatedAt: l.CreatedAt,
	}
}

func FromDataModel(l *synclogDatamodel.Log) *Log {
	return &Log{
		ID:        l.ID,
		Type:      l.Type,
		Status:    l.Status,
		Details:   normalizeDetails(map[string]interface{}(l.Details)),
		CreatedAt: l.CreatedAt,
	}
}

// normalizeDetails turns the json.Number values a JSONMap column decodes into
// int64, or float64 when the number is not integral.
func normalizeDetails(details map[string]interface{}) map[string]interface{} {
	if details == nil {
		return nil
	}
	out := make(map[string]interface{}, len(details))
	for k, v := range details {
		out[k] = normalizeValue(v)
	}
	return out
}

func normalizeValue(v interface{}) interface{} {
	switch t := v.(type) {
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return n
		}
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()
	case map[string]interface{}:
		return normalizeDetails(t)
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, e := range t {
			out[i] = normalizeValue(e)
		}
		return out
	}
	return v
}
