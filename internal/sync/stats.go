package sync

import (
	"context"

	"github.com/frahmantamala/grafana-sync/internal"
	"github.com/frahmantamala/grafana-sync/internal/synclog"
)

type UserCounter interface {
	CountByStatus(ctx context.Context) (map[string]int64, error)
}

type Counter interface {
	Count(ctx context.Context) (int64, error)
}

type LatestLogFinder interface {
	Latest(ctx context.Context, logType string) (*synclog.Log, error)
}

type Stats struct {
	Users         map[string]int64 `json:"users"`
	TotalUsers    int64            `json:"total_users"`
	Organizations int64            `json:"organizations"`
	Teams         int64            `json:"teams"`
	LastSync      *synclog.Log     `json:"last_sync"`
}

type StatsService struct {
	users UserCounter
	orgs  Counter
	teams Counter
	logs  LatestLogFinder
}

func NewStatsService(users UserCounter, orgs, teams Counter, logs LatestLogFinder) *StatsService {
	return &StatsService{users: users, orgs: orgs, teams: teams, logs: logs}
}

// Get summarizes the mirror for the dashboard. LastSync is nil before the
// first run.
func (s *StatsService) Get(ctx context.Context) (*Stats, error) {
	byStatus, err := s.users.CountByStatus(ctx)
	if err != nil {
		return nil, internal.NewInternalError("failed to count users", err)
	}
	orgs, err := s.orgs.Count(ctx)
	if err != nil {
		return nil, internal.NewInternalError("failed to count organizations", err)
	}
	teams, err := s.teams.Count(ctx)
	if err != nil {
		return nil, internal.NewInternalError("failed to count teams", err)
	}
	last, err := s.logs.Latest(ctx, "")
	if err != nil {
		return nil, internal.NewInternalError("failed to load latest sync log", err)
	}

	stats := &Stats{Users: byStatus, Organizations: orgs, Teams: teams, LastSync: last}
	for _, n := range byStatus {
		stats.TotalUsers += n
	}
	return stats, nil
}
