package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/user/advisory-service/internal/entity"
)

const testBase = "https://example.test/conseils/"

var testSections = []string{"derniere", "securite", "entree", "sante", "complements"}

// stubPages answers from a url → page table and tracks how many fetches overlap.
type stubPages struct {
	mu      sync.Mutex
	pages   map[string]string
	fails   map[string]error
	calls   []string
	delay   time.Duration
	active  int32
	maxSeen int32
}

func (s *stubPages) Fetch(_ context.Context, url string) (string, error) {
	n := atomic.AddInt32(&s.active, 1)
	defer atomic.AddInt32(&s.active, -1)
	for {
		seen := atomic.LoadInt32(&s.maxSeen)
		if n <= seen || atomic.CompareAndSwapInt32(&s.maxSeen, seen, n) {
			break
		}
	}

	s.mu.Lock()
	s.calls = append(s.calls, url)
	page, hasPage := s.pages[url]
	err := s.fails[url]
	s.mu.Unlock()

	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	if err != nil {
		return "", err
	}
	if hasPage {
		return page, nil
	}
	return "<html><body></body></html>", nil
}

func (s *stubPages) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

func newTestFetcher(pages *stubPages, workers int, onComplete func(string, entity.EntityResult)) SectionFetcher {
	return NewSectionFetcher(pages, nil, FetcherConfig{
		BaseURL:    testBase,
		Sections:   testSections,
		Workers:    workers,
		OnComplete: onComplete,
	}, zap.NewNop())
}

func TestFetchBothRegions(t *testing.T) {
	pages := &stubPages{pages: map[string]string{
		testBase + "Autriche/#securite": `<div class="js-tabs"><p>Alpha</p></div><div class="representation_infos"><p>Beta</p></div>`,
	}}
	uc := newTestFetcher(pages, 1, nil)

	got := uc.Fetch(context.Background(), "Autriche", "securite")

	assert.Equal(t, entity.SectionOK, got.Status)
	assert.Equal(t, "Alpha\nBeta", got.String())
}

func TestFetchNoRegionsIsUnavailable(t *testing.T) {
	pages := &stubPages{}
	uc := newTestFetcher(pages, 1, nil)

	got := uc.Fetch(context.Background(), "Autriche", "sante")

	assert.Equal(t, entity.SectionUnavailable, got.Status)
	assert.Equal(t, "Informations non disponibles", got.String())
}

func TestFetchErrorBecomesData(t *testing.T) {
	pages := &stubPages{fails: map[string]error{
		testBase + "Nulle-part/#derniere": errors.New("404 Client Error: Not Found for url: x"),
	}}
	uc := newTestFetcher(pages, 1, nil)

	got := uc.Fetch(context.Background(), "Nulle-part", "derniere")

	assert.Equal(t, entity.SectionError, got.Status)
	assert.True(t, strings.HasPrefix(got.String(), "Erreur lors du scraping : "))
	assert.Contains(t, got.String(), "404")
}

type panicPages struct{}

func (panicPages) Fetch(context.Context, string) (string, error) { panic("boom") }

func TestFetchPanicBecomesData(t *testing.T) {
	uc := NewSectionFetcher(panicPages{}, nil, FetcherConfig{BaseURL: testBase, Sections: testSections}, zap.NewNop())

	got := uc.Fetch(context.Background(), "X", "entree")

	assert.Equal(t, entity.SectionError, got.Status)
	assert.Contains(t, got.Detail, "boom")
}

func TestFetchEntityIsolatesSectionErrors(t *testing.T) {
	pages := &stubPages{
		pages: map[string]string{
			testBase + "X/#entree": `<div class="representation_infos">Visa requis</div>`,
		},
		fails: map[string]error{
			testBase + "X/#securite": errors.New("connection reset"),
		},
	}
	uc := newTestFetcher(pages, 1, nil)

	got := uc.FetchEntity(context.Background(), "X")

	assert.Equal(t, testSections, got.Sections())
	sec, _ := got.Get("securite")
	assert.Equal(t, "Erreur lors du scraping : connection reset", sec.String())
	entree, _ := got.Get("entree")
	assert.Equal(t, "Visa requis", entree.String())
	assert.Equal(t, []string{"securite"}, got.Failures())
}

func TestFetchAllEmptyInputPerformsNoFetches(t *testing.T) {
	pages := &stubPages{}
	uc := newTestFetcher(pages, 5, nil)

	got := uc.FetchAll(context.Background(), nil)

	assert.Zero(t, got.Len())
	assert.Zero(t, pages.callCount())
}

func TestFetchAllEverySectionPresent(t *testing.T) {
	pages := &stubPages{}
	uc := newTestFetcher(pages, 3, nil)
	countries := []string{"Autriche", "Togo", "Bénin", "Chili"}

	got := uc.FetchAll(context.Background(), countries)

	assert.ElementsMatch(t, countries, got.Entities())
	for _, c := range countries {
		res, ok := got.Get(c)
		require.True(t, ok, c)
		assert.Equal(t, testSections, res.Sections())
	}
	assert.Equal(t, len(countries)*len(testSections), pages.callCount())
}

func TestFetchAllRespectsWorkerCeiling(t *testing.T) {
	pages := &stubPages{delay: 5 * time.Millisecond}
	uc := newTestFetcher(pages, 2, nil)

	countries := make([]string, 8)
	for i := range countries {
		countries[i] = fmt.Sprintf("Pays%d", i)
	}
	uc.FetchAll(context.Background(), countries)

	// Sections of one country are fetched in sequence, so overlap equals busy workers.
	assert.Equal(t, int32(2), atomic.LoadInt32(&pages.maxSeen))
}

func TestFetchAllDefaultsToFiveWorkers(t *testing.T) {
	pages := &stubPages{delay: 5 * time.Millisecond}
	uc := newTestFetcher(pages, 0, nil)

	countries := make([]string, 12)
	for i := range countries {
		countries[i] = fmt.Sprintf("Pays%d", i)
	}
	uc.FetchAll(context.Background(), countries)

	assert.Equal(t, int32(defaultWorkers), atomic.LoadInt32(&pages.maxSeen))
}

func TestFetchAllDuplicateEntityKeepsOneKey(t *testing.T) {
	pages := &stubPages{}
	uc := newTestFetcher(pages, 2, nil)

	got := uc.FetchAll(context.Background(), []string{"Togo", "Togo"})

	assert.Equal(t, []string{"Togo"}, got.Entities())
	assert.Equal(t, 2*len(testSections), pages.callCount())
}

func TestFetchAllNotifiesOncePerEntity(t *testing.T) {
	var notified []string
	pages := &stubPages{}
	uc := newTestFetcher(pages, 3, func(country string, r entity.EntityResult) {
		notified = append(notified, country)
		assert.Equal(t, len(testSections), r.Len())
	})

	got := uc.FetchAll(context.Background(), []string{"Autriche", "Togo", "Chili"})

	assert.ElementsMatch(t, []string{"Autriche", "Togo", "Chili"}, notified)
	// Completion order drives both the notifications and the aggregate order.
	assert.Equal(t, notified, got.Entities())
}

func TestFetchAllErrorInOneEntityDoesNotLeak(t *testing.T) {
	pages := &stubPages{
		pages: map[string]string{
			testBase + "Y/#derniere": `<div class="js-tabs">Calme</div>`,
		},
		fails: map[string]error{
			testBase + "X/#derniere": errors.New("timeout"),
		},
	}
	uc := newTestFetcher(pages, 2, nil)

	got := uc.FetchAll(context.Background(), []string{"X", "Y"})

	x, _ := got.Get("X")
	y, _ := got.Get("Y")
	xs, _ := x.Get("derniere")
	ys, _ := y.Get("derniere")
	assert.Equal(t, entity.SectionError, xs.Status)
	assert.Equal(t, "Calme\n", ys.String())
}

func TestSectionURLEscapesEntity(t *testing.T) {
	pages := &stubPages{}
	uc := newTestFetcher(pages, 1, nil)

	uc.Fetch(context.Background(), "Côte d'Ivoire", "sante")

	require.Equal(t, 1, pages.callCount())
	assert.True(t, strings.HasSuffix(pages.calls[0], "/#sante"))
	assert.NotContains(t, pages.calls[0], " ")
}
