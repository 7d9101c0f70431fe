package synclog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/frahmantamala/grafana-sync/internal"
	synclogDatamodel "github.com/frahmantamala/grafana-sync/internal/core/datamodel/synclog"
)

const (
	DefaultListLimit = 50
	maxListLimit     = 500
)

// RepositoryAPI is append-only: there is no update or delete.
type RepositoryAPI interface {
	Create(ctx context.Context, l *synclogDatamodel.Log) error
	List(ctx context.Context, limit int) ([]*synclogDatamodel.Log, error)
	Latest(ctx context.Context, logType string) (*synclogDatamodel.Log, error)
}

type Recorder struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewRecorder(repo RepositoryAPI, logger *slog.Logger) *Recorder {
	return &Recorder{
		repo:   repo,
		logger: logger,
	}
}

// Record appends one row. details must be JSON serializable.
func (r *Recorder) Record(ctx context.Context, logType, status string, details map[string]interface{}) (*Log, error) {
	if logType == "" {
		return nil, errors.New("sync log type is required")
	}
	if status != StatusSuccess && status != StatusError {
		return nil, fmt.Errorf("invalid sync log status %q", status)
	}
	if details == nil {
		details = map[string]interface{}{}
	}

	row := ToDataModel(&Log{Type: logType, Status: status, Details: details})
	if err := r.repo.Create(ctx, row); err != nil {
		r.logger.Error("failed to record sync log", "type", logType, "status", status, "error", err)
		return nil, fmt.Errorf("record sync log: %w", err)
	}
	r.logger.Debug("sync log recorded", "id", row.ID, "type", logType, "status", status)
	return FromDataModel(row), nil
}

// List returns the newest logs first.
func (r *Recorder) List(ctx context.Context, limit int) ([]*Log, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	rows, err := r.repo.List(ctx, limit)
	if err != nil {
		return nil, internal.NewInternalError("failed to list sync logs", err)
	}
	logs := make([]*Log, 0, len(rows))
	for _, row := range rows {
		logs = append(logs, FromDataModel(row))
	}
	return logs, nil
}

// Latest returns the newest log of a type, or of any type when logType is
// empty. It returns nil when there is none.
func (r *Recorder) Latest(ctx context.Context, logType string) (*Log, error) {
	row, err := r.repo.Latest(ctx, logType)
	if err != nil {
		return nil, internal.NewInternalError("failed to get latest sync log", err)
	}
	if row == nil {
		return nil, nil
	}
	return FromDataModel(row), nil
}
