package cmd

import (
	"context"
	"log/slog"

	"github.com/frahmantamala/grafana-sync/internal/core/events"
)

// subscribeSyncEvents logs sync outcomes published by the engine.
func subscribeSyncEvents(bus *events.EventBus, lg *slog.Logger) {
	bus.Subscribe(events.EventTypeSyncCompleted, func(ctx context.Context, event events.Event) error {
		if e, ok := event.(*events.SyncCompletedEvent); ok {
			lg.Info("sync completed event", "event_id", e.EventID(), "sync_type", e.SyncType, "details", e.Details)
		}
		return nil
	})
	bus.Subscribe(events.EventTypeSyncFailed, func(ctx context.Context, event events.Event) error {
		if e, ok := event.(*events.SyncFailedEvent); ok {
			lg.Warn("sync failed event", "event_id", e.EventID(), "sync_type", e.SyncType, "reason", e.FailureReason)
		}
		return nil
	})
}
