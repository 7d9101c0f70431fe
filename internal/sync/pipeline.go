package sync

import (
	"context"
	"sync/atomic"

	"github.com/frahmantamala/grafana-sync/internal"
)

// Runner is the engine surface the pipeline drives.
type Runner interface {
	SyncDirectoryUsers(ctx context.Context) (*DirectoryResult, error)
	SyncOrganizations(ctx context.Context) (int, error)
	SyncUsers(ctx context.Context) (int, error)
	SyncTeams(ctx context.Context) (int, error)
	RunFullSync(ctx context.Context) (*FullSyncResult, error)
}

// Pipeline lets one sync run at a time per process. A second caller is
// rejected with ErrSyncInProgress instead of waiting.
type Pipeline struct {
	runner  Runner
	running atomic.Bool
}

func NewPipeline(runner Runner) *Pipeline {
	return &Pipeline{runner: runner}
}

type BidirectionalResult struct {
	Directory *DirectoryResult `json:"directory"`
	Platform  *FullSyncResult  `json:"platform"`
}

// TryRun runs fn unless another run is in flight.
func (p *Pipeline) TryRun(ctx context.Context, fn func(ctx context.Context) error) error {
	if !p.running.CompareAndSwap(false, true) {
		return internal.ErrSyncInProgress
	}
	defer p.running.Store(false)
	return fn(ctx)
}

func (p *Pipeline) Running() bool {
	return p.running.Load()
}

func (p *Pipeline) Directory(ctx context.Context) (*DirectoryResult, error) {
	var res *DirectoryResult
	err := p.TryRun(ctx, func(ctx context.Context) error {
		var err error
		res, err = p.runner.SyncDirectoryUsers(ctx)
		return err
	})
	return res, err
}

func (p *Pipeline) Organizations(ctx context.Context) (int, error) {
	return p.count(ctx, p.runner.SyncOrganizations)
}

func (p *Pipeline) Users(ctx context.Context) (int, error) {
	return p.count(ctx, p.runner.SyncUsers)
}

func (p *Pipeline) Teams(ctx context.Context) (int, error) {
	return p.count(ctx, p.runner.SyncTeams)
}

func (p *Pipeline) Full(ctx context.Context) (*FullSyncResult, error) {
	var res *FullSyncResult
	err := p.TryRun(ctx, func(ctx context.Context) error {
		var err error
		res, err = p.runner.RunFullSync(ctx)
		return err
	})
	return res, err
}

// Bidirectional pulls the directory into the mirror and then reconciles the
// mirror with the platform. The platform half does not run when the
// directory half fails.
func (p *Pipeline) Bidirectional(ctx context.Context) (*BidirectionalResult, error) {
	var res BidirectionalResult
	err := p.TryRun(ctx, func(ctx context.Context) error {
		var err error
		if res.Directory, err = p.runner.SyncDirectoryUsers(ctx); err != nil {
			return err
		}
		res.Platform, err = p.runner.RunFullSync(ctx)
		return err
	})
	return &res, err
}

func (p *Pipeline) count(ctx context.Context, fn func(ctx context.Context) (int, error)) (int, error) {
	var n int
	err := p.TryRun(ctx, func(ctx context.Context) error {
		var err error
		n, err = fn(ctx)
		return err
	})
	return n, err
}
