package workers

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"notionflow/server/internal/common"
	"notionflow/server/internal/constants"
	"notionflow/server/internal/models/dtos"
	"notionflow/server/internal/services"
)

// SyncQueueWorker processes queued sync requests from the Redis stream
type SyncQueueWorker struct {
	workerID    string
	redisQueue  *common.RedisQueueService
	syncService *services.CalendarSyncService
}

// NewSyncQueueWorker creates a new sync queue worker
func NewSyncQueueWorker(
	workerID string,
	redisQueue *common.RedisQueueService,
	syncService *services.CalendarSyncService,
) *SyncQueueWorker {
	return &SyncQueueWorker{
		workerID:    workerID,
		redisQueue:  redisQueue,
		syncService: syncService,
	}
}

// Start spawns numWorkers consumers on the sync stream plus a stale claimer
func (w *SyncQueueWorker) Start(ctx context.Context, numWorkers int) error {
	log.Printf("[SyncQueueWorker] Starting %d workers with ID prefix: %s", numWorkers, w.workerID)

	if err := w.redisQueue.CreateConsumerGroup(ctx, constants.SyncQueueStream, constants.SyncQueueGroup); err != nil {
		log.Printf("[SyncQueueWorker] Warning - failed to create consumer group: %v", err)
	}

	var wg sync.WaitGroup

	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		workerName := fmt.Sprintf("%s-worker-%d", w.workerID, i)

		go func(workerName string) {
			defer wg.Done()
			w.processQueue(ctx, workerName)
		}(workerName)
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		w.claimStaleMessages(ctx)
	}()

	wg.Wait()
	log.Printf("[SyncQueueWorker] All workers stopped")
	return nil
}

// processQueue continuously consumes sync requests
func (w *SyncQueueWorker) processQueue(ctx context.Context, workerName string) {
	log.Printf("[%s] Started processing queue: %s", workerName, constants.SyncQueueStream)

	processedCount := 0
	errorCount := 0

	for {
		select {
		case <-ctx.Done():
			log.Printf("[%s] Stopping. Processed: %d, Errors: %d", workerName, processedCount, errorCount)
			return
		default:
		}

		item, messageID, err := w.redisQueue.DequeueSync(ctx, constants.SyncQueueStream, constants.SyncQueueGroup, workerName, 5*time.Second)
		if err != nil {
			log.Printf("[%s] Dequeue error: %v", workerName, err)
			errorCount++
			time.Sleep(time.Second)
			continue
		}

		if item == nil {
			// Timeout, nothing queued
			continue
		}

		if w.processItem(ctx, workerName, item) {
			if err := w.redisQueue.AckSync(ctx, constants.SyncQueueStream, constants.SyncQueueGroup, messageID); err != nil {
				log.Printf("[%s] Failed to ack message %s: %v", workerName, messageID, err)
			}
			processedCount++
		} else {
			// Leave unacked so the stale claimer retries it
			errorCount++
		}
	}
}

// processItem runs one queued sync. Returns true when the message should be
// acknowledged. Validation rejections count as processed: re-running them
// would hit the same rejection.
func (w *SyncQueueWorker) processItem(ctx context.Context, workerName string, item *common.SyncQueueItem) bool {
	resp, err := w.syncService.SyncCalendar(ctx, item.UserID, &dtos.SyncRequest{
		EventIDs:       []string{item.EventID},
		TargetPlatform: item.TargetPlatform,
	}, constants.SyncEventQueued)

	if err != nil {
		log.Printf("[%s] Sync failed for event %s: %v", workerName, item.EventID, err)
		return false
	}

	if !resp.Success {
		log.Printf("[%s] Sync not run for event %s: %s", workerName, item.EventID, resp.ErrorMessage)
	}

	return true
}

// claimStaleMessages periodically reclaims messages stuck with dead consumers
func (w *SyncQueueWorker) claimStaleMessages(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	claimerName := w.workerID + "-claimer"

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			items, messageIDs, err := w.redisQueue.ClaimStaleSyncs(ctx, constants.SyncQueueStream, constants.SyncQueueGroup, claimerName, 5*time.Minute)
			if err != nil {
				log.Printf("[SyncQueueWorker] Failed to claim stale messages: %v", err)
				continue
			}

			for i, item := range items {
				if w.processItem(ctx, claimerName, item) {
					if err := w.redisQueue.AckSync(ctx, constants.SyncQueueStream, constants.SyncQueueGroup, messageIDs[i]); err != nil {
						log.Printf("[SyncQueueWorker] Failed to ack claimed message %s: %v", messageIDs[i], err)
					}
				}
			}
		}
	}
}
