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
	"github.com/user/advisory-service/pkg/utils"
)

var (
	ErrRecentlyScraped = errors.New("country has been submitted recently and force is false")
)

const defaultDeduplicationTTL = 48 * time.Hour

// ScrapeManager defines the interface for submitting countries and checking their state.
type ScrapeManager interface {
	Submit(ctx context.Context, country string, force bool) (string, error)
	GetStatus(ctx context.Context, country string) (*entity.ScrapeStatus, error)
	GetAdvisory(ctx context.Context, country string) (*entity.Advisory, error)
}

type scrapeManagerUseCase struct {
	visitedRepo       repository.VisitedRepository
	queueRepo         repository.QueueRepository
	advisoryRepo      repository.AdvisoryRepository
	failedSectionRepo repository.FailedSectionRepository
	ttl               time.Duration
	logger            *zap.Logger
	now               func() time.Time
}

// NewScrapeManager creates a new ScrapeManager use case. A zero ttl falls back to 48 hours.
func NewScrapeManager(
	visitedRepo repository.VisitedRepository,
	queueRepo repository.QueueRepository,
	advisoryRepo repository.AdvisoryRepository,
	failedSectionRepo repository.FailedSectionRepository,
	ttl time.Duration,
	logger *zap.Logger,
) ScrapeManager {
	metrics.Init()
	if ttl <= 0 {
		ttl = defaultDeduplicationTTL
	}
	return &scrapeManagerUseCase{
		visitedRepo:       visitedRepo,
		queueRepo:         queueRepo,
		advisoryRepo:      advisoryRepo,
		failedSectionRepo: failedSectionRepo,
		ttl:               ttl,
		logger:            logger,
		now:               time.Now,
	}
}

func (uc *scrapeManagerUseCase) Submit(ctx context.Context, country string, force bool) (string, error) {
	jobID := utils.HashKey(country)

	if force {
		if err := uc.visitedRepo.RemoveVisited(ctx, country); err != nil {
			uc.logger.Warn("failed to remove visited key for forced scrape", zap.String("country", country), zap.Error(err))
		}
	} else {
		visited, err := uc.visitedRepo.IsVisited(ctx, country)
		if err != nil {
			return "", fmt.Errorf("check visited %s: %w", country, err)
		}
		if visited {
			return jobID, ErrRecentlyScraped
		}
	}

	if err := uc.queueRepo.Push(ctx, country); err != nil {
		return "", fmt.Errorf("queue %s: %w", country, err)
	}

	if err := uc.visitedRepo.MarkVisited(ctx, country, uc.now(), uc.ttl); err != nil {
		// The country is queued; at worst a second request queues it again.
		uc.logger.Error("failed to mark country as visited after queueing", zap.String("country", country), zap.Error(err))
	}

	if size, err := uc.queueRepo.Size(ctx); err == nil {
		metrics.EntitiesInQueue.Set(float64(size))
	}

	return jobID, nil
}

// GetStatus reports pending while a submission newer than the stored advisory is outstanding,
// completed when an advisory is stored, and not_found otherwise.
func (uc *scrapeManagerUseCase) GetStatus(ctx context.Context, country string) (*entity.ScrapeStatus, error) {
	advisory, err := uc.advisoryRepo.FindByCountry(ctx, country)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("find advisory %s: %w", country, err)
	}

	submittedAt, submitted, err := uc.visitedRepo.SubmittedAt(ctx, country)
	if err != nil {
		return nil, fmt.Errorf("check visited %s: %w", country, err)
	}
	if submitted && (advisory == nil || submittedAt.After(advisory.ScrapedAt)) {
		return &entity.ScrapeStatus{Country: country, CurrentStatus: entity.StatusPending}, nil
	}

	if advisory == nil {
		return &entity.ScrapeStatus{Country: country, CurrentStatus: entity.StatusNotFound}, nil
	}

	status := &entity.ScrapeStatus{
		Country:       country,
		CurrentStatus: entity.StatusCompleted,
		LastScrapedAt: &advisory.ScrapedAt,
	}
	failed, err := uc.failedSectionRepo.FindByCountry(ctx, country)
	if err != nil {
		uc.logger.Warn("failed to list failed sections", zap.String("country", country), zap.Error(err))
	}
	for _, f := range failed {
		status.FailedSections = append(status.FailedSections, f.Section)
	}
	return status, nil
}

func (uc *scrapeManagerUseCase) GetAdvisory(ctx context.Context, country string) (*entity.Advisory, error) {
	return uc.advisoryRepo.FindByCountry(ctx, country)
}
