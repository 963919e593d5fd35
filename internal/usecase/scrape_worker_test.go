package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/user/advisory-service/internal/entity"
	"github.com/user/advisory-service/internal/repository"
)

func TestProcessFromQueueEmpty(t *testing.T) {
	w := NewScrapeWorker(&memQueue{}, newTestFetcher(&stubPages{}, 1, nil), newMemAdvisories(), newMemFailed(), zap.NewNop())

	err := w.ProcessFromQueue(context.Background())
	assert.ErrorIs(t, err, repository.ErrQueueEmpty)
}

func TestProcessFromQueueSavesAndRecordsFailures(t *testing.T) {
	pages := &stubPages{
		pages: map[string]string{
			testBase + "Togo/#derniere": `<div class="js-tabs">Vigilance renforcée</div>`,
		},
		fails: map[string]error{
			testBase + "Togo/#sante": errors.New("503 Server Error: Service Unavailable for url: x"),
		},
	}
	queue := &memQueue{items: []string{"Togo"}}
	advisories := newMemAdvisories()
	failed := newMemFailed()
	failed.rows[failedKey("Togo", "entree")] = &entity.FailedSection{Country: "Togo", Section: "entree", AttemptCount: 1}

	w := NewScrapeWorker(queue, newTestFetcher(pages, 1, nil), advisories, failed, zap.NewNop())
	require.NoError(t, w.ProcessFromQueue(context.Background()))

	saved, ok := advisories.byCountry["Togo"]
	require.True(t, ok)
	assert.Equal(t, testSections, saved.Sections.Sections())
	derniere, _ := saved.Sections.Get("derniere")
	assert.Equal(t, "Vigilance renforcée\n", derniere.String())

	// entree succeeded this time, so only sante is still failing.
	require.Len(t, failed.rows, 1)
	sante := failed.rows[failedKey("Togo", "sante")]
	require.NotNil(t, sante)
	assert.Contains(t, sante.FailureReason, "503")
	assert.Equal(t, saved.ScrapedAt, sante.LastAttemptTimestamp)
}

func TestProcessFromQueueSaveError(t *testing.T) {
	advisories := newMemAdvisories()
	advisories.saveErr = errBackendDown
	w := NewScrapeWorker(&memQueue{items: []string{"Chili"}}, newTestFetcher(&stubPages{}, 1, nil), advisories, newMemFailed(), zap.NewNop())

	err := w.ProcessFromQueue(context.Background())
	assert.ErrorIs(t, err, errBackendDown)
}

func TestProcessFromQueueSaveErrorRequeues(t *testing.T) {
	queue := &memQueue{items: []string{"Chili"}}
	advisories := newMemAdvisories()
	advisories.saveErr = errBackendDown
	w := NewScrapeWorker(queue, newTestFetcher(&stubPages{}, 1, nil), advisories, newMemFailed(), zap.NewNop())

	require.Error(t, w.ProcessFromQueue(context.Background()))
	assert.Equal(t, []string{"Chili"}, queue.items)
}

func TestProcessFromQueueCancelledRequeuesWithoutSaving(t *testing.T) {
	queue := &memQueue{items: []string{"Togo"}}
	advisories := newMemAdvisories()
	failed := newMemFailed()
	w := NewScrapeWorker(queue, newTestFetcher(&stubPages{}, 1, nil), advisories, failed, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := w.ProcessFromQueue(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, []string{"Togo"}, queue.items)
	assert.Empty(t, advisories.byCountry)
	assert.Empty(t, failed.rows)
}
