package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/careerlens/careerlens/pkg/logx"
	"github.com/careerlens/careerlens/talent/ingestion"
	"github.com/careerlens/careerlens/talent/ingestion/ingestionsrv"
)

// ImportWorker drains the import queue with a fixed pool of goroutines
// and periodically promotes delayed retries back onto the ready queue
type ImportWorker struct {
	service *ingestionsrv.Service
	queue   ingestion.ImportQueue
	workers int
}

func NewImportWorker(service *ingestionsrv.Service, queue ingestion.ImportQueue, workers int) *ImportWorker {
	return &ImportWorker{
		service: service,
		queue:   queue,
		workers: workers,
	}
}

func (w *ImportWorker) Start(ctx context.Context) {
	logx.Infof("Starting %d import workers", w.workers)

	go w.moveDelayedImports(ctx)

	for i := 0; i < w.workers; i++ {
		go w.processImports(ctx, i)
	}
}

func (w *ImportWorker) processImports(ctx context.Context, workerID int) {
	logx.Infof("Import worker %d started", workerID)

	for {
		select {
		case <-ctx.Done():
			logx.Infof("Import worker %d stopping", workerID)
			return
		default:
			data, err := w.queue.Dequeue(ctx, 5*time.Second)
			if err != nil {
				if ctx.Err() == nil {
					logx.Errorf("Import worker %d dequeue error: %v", workerID, err)
				}
				continue
			}

			// Timeout with nothing queued
			if len(data) == 0 {
				continue
			}

			var job ingestion.ImportJob
			if err := json.Unmarshal(data, &job); err != nil {
				logx.Errorf("Import worker %d unmarshal error: %v (data: %s)", workerID, err, string(data))
				continue
			}

			logx.Infof("Import worker %d processing: %s", workerID, job.ID)
			if err := w.service.ProcessImportJob(ctx, &job); err != nil {
				logx.Errorf("Import worker %d job failed: %v", workerID, err)
			}
		}
	}
}

func (w *ImportWorker) moveDelayedImports(ctx context.Context) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			count, err := w.queue.MoveDelayedToReady(ctx)
			if err != nil {
				logx.Errorf("Failed to move delayed imports: %v", err)
			} else if count > 0 {
				logx.Infof("Moved %d delayed imports to ready queue", count)
			}
		}
	}
}
