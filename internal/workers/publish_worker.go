package workers

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/JaxylViernes/wp-seo-autopilot/internal/models"
	"github.com/JaxylViernes/wp-seo-autopilot/internal/wordpress"
	"github.com/JaxylViernes/wp-seo-autopilot/pkg/logger"
	"github.com/JaxylViernes/wp-seo-autopilot/pkg/metrics"
)

const claimBatchSize = 25

// PublishQueue is the queue slice the publish worker needs
type PublishQueue interface {
	ClaimDue(ctx context.Context, nowUTC time.Time, limit int) ([]*models.ContentSchedule, error)
	MarkPublished(ctx context.Context, id uuid.UUID) error
	MarkFailed(ctx context.Context, id uuid.UUID, message string) error
}

// PublishContentStore resolves and stamps the content behind a queue entry
type PublishContentStore interface {
	GetByID(ctx context.Context, userID, id uuid.UUID) (*models.Content, error)
	MarkPublished(ctx context.Context, id uuid.UUID, remotePostID int64, remoteURL string, publishedAt time.Time) error
	MarkPublishError(ctx context.Context, id uuid.UUID, message string) error
}

// PublishSiteSource resolves site credentials
type PublishSiteSource interface {
	GetByID(ctx context.Context, userID, id uuid.UUID) (*models.Site, error)
}

// SitePublisher publishes a post to a WordPress site
type SitePublisher interface {
	Publish(ctx context.Context, site *models.Site, post *wordpress.Post) (*wordpress.PublishResult, error)
}

// PublishActivityRecorder records publish outcomes
type PublishActivityRecorder interface {
	Record(ctx context.Context, userID uuid.UUID, event string, metadata models.JSONB)
}

// PublishWorker periodically drains due queue entries and publishes them.
// A failed entry ends in the failed status and is retried only by explicit
// operator action.
type PublishWorker struct {
	queue     PublishQueue
	contents  PublishContentStore
	sites     PublishSiteSource
	publisher SitePublisher
	activity  PublishActivityRecorder
	logger    *logger.Logger
	interval  time.Duration
	metrics   *metrics.Metrics
	stopCh    chan struct{}
	doneCh    chan struct{}
}

// SetMetrics enables Prometheus instrumentation of publish outcomes.
func (w *PublishWorker) SetMetrics(m *metrics.Metrics) {
	w.metrics = m
}

// NewPublishWorker creates a new publish worker
func NewPublishWorker(
	queue PublishQueue,
	contents PublishContentStore,
	sites PublishSiteSource,
	publisher SitePublisher,
	activity PublishActivityRecorder,
	log *logger.Logger,
	interval time.Duration,
) *PublishWorker {
	if interval <= 0 {
		interval = 1 * time.Minute
	}

	return &PublishWorker{
		queue:     queue,
		contents:  contents,
		sites:     sites,
		publisher: publisher,
		activity:  activity,
		logger:    log,
		interval:  interval,
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
	}
}

// Start starts the publish worker in the background
func (w *PublishWorker) Start(ctx context.Context) {
	w.logger.Info("Starting publish worker",
		logger.String("interval", w.interval.String()),
	)

	go w.run(ctx)
}

// Stop stops the publish worker gracefully
func (w *PublishWorker) Stop() {
	w.logger.Info("Stopping publish worker")
	close(w.stopCh)
	<-w.doneCh
	w.logger.Info("Publish worker stopped")
}

func (w *PublishWorker) run(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.processDue(ctx)

	for {
		select {
		case <-ticker.C:
			w.processDue(ctx)
		case <-w.stopCh:
			return
		case <-ctx.Done():
			return
		}
	}
}

// processDue claims and publishes every due entry. Entries are independent;
// one failure never aborts the rest of the batch.
func (w *PublishWorker) processDue(ctx context.Context) {
	entries, err := w.queue.ClaimDue(ctx, time.Now().UTC(), claimBatchSize)
	if err != nil {
		w.logger.Errorf("Failed to claim due queue entries: %v", err)
		return
	}
	if len(entries) == 0 {
		w.logger.Debug("No due queue entries")
		return
	}

	w.logger.Infof("Publishing %d due queue entries", len(entries))

	published := 0
	failed := 0
	for _, entry := range entries {
		if err := w.publishOne(ctx, entry); err != nil {
			failed++
			continue
		}
		published++
	}

	w.logger.Infof("Queue batch done: published=%d, failed=%d", published, failed)
	if w.metrics != nil {
		w.metrics.PublicationsTotal.WithLabelValues("published").Add(float64(published))
		w.metrics.PublicationsTotal.WithLabelValues("failed").Add(float64(failed))
	}
}

func (w *PublishWorker) publishOne(ctx context.Context, entry *models.ContentSchedule) error {
	log := w.logger.With(
		logger.String("schedule_id", entry.ID.String()),
		logger.String("content_id", entry.ContentID.String()),
	)

	content, err := w.contents.GetByID(ctx, entry.UserID, entry.ContentID)
	if err != nil {
		return w.fail(ctx, entry, log, "content unavailable: "+err.Error())
	}

	site, err := w.sites.GetByID(ctx, entry.UserID, entry.SiteID)
	if err != nil {
		return w.fail(ctx, entry, log, "site unavailable: "+err.Error())
	}

	result, err := w.publisher.Publish(ctx, site, &wordpress.Post{
		Title:   content.Title,
		Content: content.Body,
		Excerpt: content.Excerpt,
	})
	if err != nil {
		if markErr := w.contents.MarkPublishError(ctx, content.ID, err.Error()); markErr != nil {
			log.Errorf("Failed to record publish error on content: %v", markErr)
		}
		return w.fail(ctx, entry, log, err.Error())
	}

	if err := w.contents.MarkPublished(ctx, content.ID, result.PostID, result.URL, time.Now().UTC()); err != nil {
		log.Errorf("Failed to stamp published content: %v", err)
	}
	if err := w.queue.MarkPublished(ctx, entry.ID); err != nil {
		log.Errorf("Failed to mark queue entry published: %v", err)
		return err
	}

	w.activity.Record(ctx, entry.UserID, models.ActivityPublishSucceeded, models.JSONB{
		"schedule_id":       entry.ID.String(),
		"content_id":        entry.ContentID.String(),
		"wordpress_post_id": result.PostID,
		"wordpress_url":     result.URL,
	})
	log.Info("Queue entry published",
		logger.String("wordpress_url", result.URL),
	)

	return nil
}

// fail moves the entry to the failed status with the error recorded
func (w *PublishWorker) fail(ctx context.Context, entry *models.ContentSchedule, log *logger.Logger, message string) error {
	log.Error("Publish failed", logger.String("reason", message))

	if err := w.queue.MarkFailed(ctx, entry.ID, message); err != nil {
		log.Errorf("Failed to mark queue entry failed: %v", err)
	}
	w.activity.Record(ctx, entry.UserID, models.ActivityPublishFailed, models.JSONB{
		"schedule_id": entry.ID.String(),
		"content_id":  entry.ContentID.String(),
		"error":       message,
	})

	return models.ErrPublishFailed
}
