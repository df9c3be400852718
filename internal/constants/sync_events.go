package constants

// Sync event types for sync_history table
const (
	SyncEventScheduled = "SCHEDULED_SYNC"
	SyncEventManual    = "MANUAL_SYNC"
	SyncEventQueued    = "QUEUED_SYNC"
	SyncEventExport    = "CALENDAR_EXPORT"
)

// Redis stream used for queued sync requests
const (
	SyncQueueStream = "notionflow:sync_queue"
	SyncQueueGroup  = "sync-workers"
)
