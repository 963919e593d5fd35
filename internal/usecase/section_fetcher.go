package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/user/advisory-service/internal/entity"
	"github.com/user/advisory-service/internal/extractor"
	"github.com/user/advisory-service/internal/repository"
	"github.com/user/advisory-service/pkg/metrics"
	"github.com/user/advisory-service/pkg/utils"
)

const defaultWorkers = 5

// SectionFetcher scrapes the advice sections of a set of countries.
type SectionFetcher interface {
	// Fetch returns one section of one country. It never fails: errors come back as data.
	Fetch(ctx context.Context, country, section string) entity.SectionResult
	// FetchEntity fetches every configured section of a country, one after the other.
	FetchEntity(ctx context.Context, country string) entity.EntityResult
	// FetchAll runs FetchEntity for each country on a bounded worker pool.
	FetchAll(ctx context.Context, countries []string) entity.AggregateResult
}

// FetcherConfig is passed in explicitly at construction; nothing is read from globals.
type FetcherConfig struct {
	BaseURL  string
	Sections []string
	Workers  int
	// OnComplete runs on the aggregating goroutine after each country finishes.
	OnComplete func(country string, result entity.EntityResult)
}

type sectionFetcherUseCase struct {
	cfg       FetcherConfig
	pages     repository.PageFetcher
	extractor *extractor.Extractor
	logger    *zap.Logger
}

// NewSectionFetcher creates a new instance of the section fetcher use case.
func NewSectionFetcher(pages repository.PageFetcher, ex *extractor.Extractor, cfg FetcherConfig, logger *zap.Logger) SectionFetcher {
	metrics.Init()
	if cfg.Workers <= 0 {
		cfg.Workers = defaultWorkers
	}
	if ex == nil {
		ex = extractor.New()
	}
	return &sectionFetcherUseCase{
		cfg:       cfg,
		pages:     pages,
		extractor: ex,
		logger:    logger,
	}
}

func (uc *sectionFetcherUseCase) Fetch(ctx context.Context, country, section string) entity.SectionResult {
	url := utils.SectionURL(uc.cfg.BaseURL, country, section)

	start := time.Now()
	result := uc.fetchSection(ctx, url)
	metrics.SectionFetchDuration.WithLabelValues(section).Observe(time.Since(start).Seconds())
	metrics.SectionsFetchedTotal.WithLabelValues(string(result.Status)).Inc()

	if result.Status == entity.SectionError {
		uc.logger.Warn("section fetch failed",
			zap.String("country", country),
			zap.String("section", section),
			zap.String("reason", result.Detail),
		)
	}
	return result
}

func (uc *sectionFetcherUseCase) fetchSection(ctx context.Context, url string) (result entity.SectionResult) {
	defer func() {
		if r := recover(); r != nil {
			result = entity.Failed(fmt.Errorf("panic while fetching %s: %v", url, r))
		}
	}()

	body, err := uc.pages.Fetch(ctx, url)
	if err != nil {
		return entity.Failed(err)
	}

	text, err := uc.extractor.ExtractSection(body)
	if err != nil {
		return entity.Failed(fmt.Errorf("parse %s: %w", url, err))
	}
	if text == "" {
		return entity.Unavailable()
	}
	return entity.Found(text)
}

func (uc *sectionFetcherUseCase) FetchEntity(ctx context.Context, country string) entity.EntityResult {
	var result entity.EntityResult
	for _, section := range uc.cfg.Sections {
		result.Set(section, uc.Fetch(ctx, country, section))
	}
	return result
}

type completion struct {
	country string
	result  entity.EntityResult
}

func (uc *sectionFetcherUseCase) FetchAll(ctx context.Context, countries []string) entity.AggregateResult {
	var aggregate entity.AggregateResult
	if len(countries) == 0 {
		return aggregate
	}

	workers := min(uc.cfg.Workers, len(countries))
	tasks := make(chan string)
	done := make(chan completion, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for country := range tasks {
				metrics.EntitiesInFlight.Inc()
				result := uc.FetchEntity(ctx, country)
				metrics.EntitiesInFlight.Dec()
				done <- completion{country: country, result: result}
			}
		}()
	}

	go func() {
		for _, country := range countries {
			tasks <- country
		}
		close(tasks)
		wg.Wait()
		close(done)
	}()

	// Single writer: only this loop touches the aggregate.
	for c := range done {
		aggregate.Set(c.country, c.result)
		uc.logger.Info("country completed",
			zap.String("country", c.country),
			zap.Strings("failed_sections", c.result.Failures()),
		)
		if uc.cfg.OnComplete != nil {
			uc.cfg.OnComplete(c.country, c.result)
		}
	}

	return aggregate
}
