package engine

import (
	"context"

	"github.com/colops/console/internal/domain/reconcile"
	"github.com/colops/console/internal/gateway"
	"github.com/colops/console/internal/messaging/kafka"
	"github.com/colops/console/internal/monitoring/logging"
	"github.com/colops/console/pkg/errors"
)

// ProcessUpload submits a batch of receipt images for OCR extraction and
// matching, records the outcome in the session history, and refreshes the
// queue whatever the result.  An empty batch is rejected locally.
func (e *Engine) ProcessUpload(ctx context.Context, files []gateway.UploadFile) (reconcile.ManualUploadRecord, error) {
	if len(files) == 0 {
		return reconcile.ManualUploadRecord{}, errors.New(errors.ErrCodeEmptyUpload, "no files to process")
	}

	e.mu.Lock()
	e.uploading = true
	e.mu.Unlock()

	start := e.now()
	res, err := e.gw.Upload(ctx, files)
	e.metrics.GatewayLatency.WithLabelValues("upload").Observe(e.now().Sub(start).Seconds())

	e.mu.Lock()
	e.uploading = false
	e.mu.Unlock()

	if err != nil {
		e.metrics.Uploads.WithLabelValues("error").Inc()
		e.audit.Publish(ctx, kafka.ActionUpload, false, map[string]interface{}{"images": len(files)})
		e.logger.Warn("upload processing failed", logging.Int("images", len(files)), logging.Err(err))
		if refreshErr := e.RefreshQueue(ctx); refreshErr != nil {
			e.logger.Warn("queue refresh after upload failed", logging.Err(refreshErr))
		}
		return reconcile.ManualUploadRecord{}, errors.Wrap(err, errors.ErrCodeInternal, "processing images")
	}

	rec := reconcile.NewManualUploadRecord(len(files), res, e.now())

	e.mu.Lock()
	if res.Meta.Subject != "" {
		e.latestSubject = res.Meta.Subject
	}
	e.uploadHistory = append([]reconcile.ManualUploadRecord{rec}, e.uploadHistory...)
	e.mu.Unlock()

	e.metrics.Uploads.WithLabelValues("ok").Inc()
	e.audit.Publish(ctx, kafka.ActionUpload, true, map[string]interface{}{
		"images":  len(files),
		"ops":     rec.OpsCount,
		"total":   rec.TotalAmount,
		"batch":   rec.ID,
	})
	e.logger.Info("upload processed",
		logging.String("batch", rec.ID),
		logging.Int("images", rec.ImagesCount),
		logging.Int("matched_ops", rec.OpsCount),
		logging.Float64("total", rec.TotalAmount),
	)

	if refreshErr := e.RefreshQueue(ctx); refreshErr != nil {
		e.logger.Warn("queue refresh after upload failed", logging.Err(refreshErr))
	}
	return rec, nil
}

// UploadHistory returns the session's manual upload records, newest first.
func (e *Engine) UploadHistory() []reconcile.ManualUploadRecord {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]reconcile.ManualUploadRecord, len(e.uploadHistory))
	copy(out, e.uploadHistory)
	return out
}
