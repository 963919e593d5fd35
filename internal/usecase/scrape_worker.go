package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/user/advisory-service/internal/entity"
	"github.com/user/advisory-service/internal/repository"
	"github.com/user/advisory-service/pkg/metrics"
)

const requeueTimeout = 5 * time.Second

// ScrapeWorker defines the interface for the queued scraping process.
type ScrapeWorker interface {
	// ProcessFromQueue scrapes a single queued country. It returns repository.ErrQueueEmpty
	// when there is nothing to do.
	ProcessFromQueue(ctx context.Context) error
}

type scrapeWorkerUseCase struct {
	queueRepo         repository.QueueRepository
	fetcher           SectionFetcher
	advisoryRepo      repository.AdvisoryRepository
	failedSectionRepo repository.FailedSectionRepository
	logger            *zap.Logger
	now               func() time.Time
}

// NewScrapeWorker creates a new instance of the scrape worker use case.
func NewScrapeWorker(
	queueRepo repository.QueueRepository,
	fetcher SectionFetcher,
	advisoryRepo repository.AdvisoryRepository,
	failedSectionRepo repository.FailedSectionRepository,
	logger *zap.Logger,
) ScrapeWorker {
	metrics.Init()
	return &scrapeWorkerUseCase{
		queueRepo:         queueRepo,
		fetcher:           fetcher,
		advisoryRepo:      advisoryRepo,
		failedSectionRepo: failedSectionRepo,
		logger:            logger,
		now:               time.Now,
	}
}

func (uc *scrapeWorkerUseCase) ProcessFromQueue(ctx context.Context) error {
	country, err := uc.queueRepo.Pop(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrQueueEmpty) {
			return err
		}
		return fmt.Errorf("failed to pop country from queue: %w", err)
	}

	if size, err := uc.queueRepo.Size(ctx); err == nil {
		metrics.EntitiesInQueue.Set(float64(size))
	}

	uc.logger.Info("processing country from queue", zap.String("country", country))

	start := time.Now()
	metrics.EntitiesInFlight.Inc()
	sections := uc.fetcher.FetchEntity(ctx, country)
	metrics.EntitiesInFlight.Dec()

	// Sections fetched under a cancelled context are cancellation errors, not advisory data.
	if err := ctx.Err(); err != nil {
		uc.requeue(ctx, country)
		return err
	}

	advisory := &entity.Advisory{
		Country:   country,
		Sections:  sections,
		ScrapedAt: uc.now(),
	}
	if err := uc.advisoryRepo.Save(ctx, advisory); err != nil {
		uc.requeue(ctx, country)
		return fmt.Errorf("failed to save advisory for %s: %w", country, err)
	}

	uc.recordFailures(ctx, advisory)

	uc.logger.Info("country scraped",
		zap.String("country", country),
		zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		zap.Strings("failed_sections", sections.Failures()),
	)
	return nil
}

// requeue puts a popped country back so a shutdown or a storage outage does not lose it.
func (uc *scrapeWorkerUseCase) requeue(ctx context.Context, country string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), requeueTimeout)
	defer cancel()

	if err := uc.queueRepo.Push(ctx, country); err != nil {
		uc.logger.Error("failed to requeue country", zap.String("country", country), zap.Error(err))
		return
	}
	uc.logger.Warn("country requeued", zap.String("country", country))
}

// recordFailures upserts a failed_sections row per degraded section and clears the rest.
func (uc *scrapeWorkerUseCase) recordFailures(ctx context.Context, advisory *entity.Advisory) {
	for _, section := range advisory.Sections.Sections() {
		result, _ := advisory.Sections.Get(section)

		if result.Status != entity.SectionError {
			if err := uc.failedSectionRepo.Delete(ctx, advisory.Country, section); err != nil {
				uc.logger.Warn("failed to clear failed section",
					zap.String("country", advisory.Country), zap.String("section", section), zap.Error(err))
			}
			continue
		}

		failed := &entity.FailedSection{
			Country:              advisory.Country,
			Section:              section,
			FailureReason:        result.Detail,
			LastAttemptTimestamp: advisory.ScrapedAt,
		}
		if err := uc.failedSectionRepo.SaveOrUpdate(ctx, failed); err != nil {
			uc.logger.Error("failed to record failed section",
				zap.String("country", advisory.Country), zap.String("section", section), zap.Error(err))
		}
	}
}
