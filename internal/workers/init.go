package workers

import (
	"context"
	"time"

	"notionflow/server/internal/common"
	"notionflow/server/internal/metrics"
	"notionflow/server/internal/services"
)

type WorkersContainer struct {
	QueueWorker  *SyncQueueWorker
	QueueMonitor *SyncQueueMonitor
}

func InitWorkers(
	redQ *common.RedisQueueService,
	syncService *services.CalendarSyncService,
	metricsReg *metrics.MetricsRegistry,
) *WorkersContainer {
	qWorker := NewSyncQueueWorker("sync_queue", redQ, syncService)
	monitor := NewSyncQueueMonitor(redQ, metricsReg)

	go qWorker.Start(context.Background(), 3)
	go monitor.Start(context.Background(), 30*time.Second)
	go monitor.StartAutoTrim(context.Background(), 10*time.Minute, 10000)

	return &WorkersContainer{
		QueueWorker:  qWorker,
		QueueMonitor: monitor,
	}
}
