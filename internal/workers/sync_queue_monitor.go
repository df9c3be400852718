package workers

import (
	"context"
	"log"
	"time"

	"notionflow/server/internal/common"
	"notionflow/server/internal/constants"
	"notionflow/server/internal/metrics"
)

// SyncQueueMonitor watches queue depth and trims processed messages
type SyncQueueMonitor struct {
	redisQueue *common.RedisQueueService
	metricsReg *metrics.MetricsRegistry
}

func NewSyncQueueMonitor(redisQueue *common.RedisQueueService, metricsReg *metrics.MetricsRegistry) *SyncQueueMonitor {
	return &SyncQueueMonitor{
		redisQueue: redisQueue,
		metricsReg: metricsReg,
	}
}

// Start polls the stream on an interval and exports its depth as a gauge
func (m *SyncQueueMonitor) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			length, err := m.redisQueue.GetQueueLength(ctx, constants.SyncQueueStream)
			if err != nil {
				log.Printf("[SyncQueueMonitor] Failed to read queue length: %v", err)
				continue
			}

			if m.metricsReg != nil {
				m.metricsReg.SyncQueueDepth.Set(float64(length))
			}

			pending, err := m.redisQueue.GetPendingCount(ctx, constants.SyncQueueStream, constants.SyncQueueGroup)
			if err == nil && pending > 0 {
				log.Printf("[SyncQueueMonitor] Queue depth=%d, pending=%d", length, pending)
			}
		}
	}
}

// StartAutoTrim keeps the stream bounded by trimming old entries
func (m *SyncQueueMonitor) StartAutoTrim(ctx context.Context, interval time.Duration, maxLen int64) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := m.redisQueue.TrimStream(ctx, constants.SyncQueueStream, maxLen); err != nil {
				log.Printf("[SyncQueueMonitor] Failed to trim stream: %v", err)
			}
		}
	}
}
