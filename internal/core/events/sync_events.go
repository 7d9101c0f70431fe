package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeSyncCompleted = "sync.completed"
	EventTypeSyncFailed    = "sync.failed"
)

type SyncCompletedEvent struct {
	BaseEvent
	SyncType string                 `json:"sync_type"`
	Details  map[string]interface{} `json:"details"`
}

func NewSyncCompletedEvent(syncType string, details map[string]interface{}) *SyncCompletedEvent {
	return &SyncCompletedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeSyncCompleted,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"sync_type": syncType,
				"details":   details,
			},
		},
		SyncType: syncType,
		Details:  details,
	}
}

type SyncFailedEvent struct {
	BaseEvent
	SyncType      string `json:"sync_type"`
	FailureReason string `json:"failure_reason"`
}

func NewSyncFailedEvent(syncType, failureReason string) *SyncFailedEvent {
	return &SyncFailedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeSyncFailed,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"sync_type":      syncType,
				"failure_reason": failureReason,
			},
		},
		SyncType:      syncType,
		FailureReason: failureReason,
	}
}
