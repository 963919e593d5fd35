package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/user/advisory-service/internal/entity"
	"github.com/user/advisory-service/internal/repository"
)

type visitedEntry struct {
	at     time.Time
	expiry time.Duration
}

type memVisited struct {
	keys map[string]visitedEntry
	err  error
}

func newMemVisited() *memVisited { return &memVisited{keys: map[string]visitedEntry{}} }

func (m *memVisited) MarkVisited(_ context.Context, country string, at time.Time, expiry time.Duration) error {
	m.keys[country] = visitedEntry{at: at, expiry: expiry}
	return nil
}

func (m *memVisited) SubmittedAt(_ context.Context, country string) (time.Time, bool, error) {
	if m.err != nil {
		return time.Time{}, false, m.err
	}
	e, ok := m.keys[country]
	return e.at, ok, nil
}

func (m *memVisited) IsVisited(_ context.Context, country string) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	_, ok := m.keys[country]
	return ok, nil
}

func (m *memVisited) RemoveVisited(_ context.Context, country string) error {
	delete(m.keys, country)
	return nil
}

type memQueue struct {
	items   []string
	pushErr error
}

func (m *memQueue) Push(_ context.Context, country string) error {
	if m.pushErr != nil {
		return m.pushErr
	}
	m.items = append(m.items, country)
	return nil
}

func (m *memQueue) Pop(context.Context) (string, error) {
	if len(m.items) == 0 {
		return "", repository.ErrQueueEmpty
	}
	head := m.items[0]
	m.items = m.items[1:]
	return head, nil
}

func (m *memQueue) Size(context.Context) (int64, error) { return int64(len(m.items)), nil }

type memAdvisories struct {
	byCountry map[string]*entity.Advisory
	saveErr   error
}

func newMemAdvisories() *memAdvisories {
	return &memAdvisories{byCountry: map[string]*entity.Advisory{}}
}

func (m *memAdvisories) Save(_ context.Context, a *entity.Advisory) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.byCountry[a.Country] = a
	return nil
}

func (m *memAdvisories) FindByCountry(_ context.Context, country string) (*entity.Advisory, error) {
	a, ok := m.byCountry[country]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return a, nil
}

type memFailed struct {
	rows map[string]*entity.FailedSection
}

func newMemFailed() *memFailed { return &memFailed{rows: map[string]*entity.FailedSection{}} }

func failedKey(country, section string) string { return country + "/" + section }

func (m *memFailed) SaveOrUpdate(_ context.Context, f *entity.FailedSection) error {
	key := failedKey(f.Country, f.Section)
	if prev, ok := m.rows[key]; ok {
		f.AttemptCount = prev.AttemptCount + 1
	} else {
		f.AttemptCount = 1
	}
	m.rows[key] = f
	return nil
}

func (m *memFailed) FindByCountry(_ context.Context, country string) ([]*entity.FailedSection, error) {
	var out []*entity.FailedSection
	for _, f := range m.rows {
		if f.Country == country {
			out = append(out, f)
		}
	}
	return out, nil
}

func (m *memFailed) Delete(_ context.Context, country, section string) error {
	delete(m.rows, failedKey(country, section))
	return nil
}

var errBackendDown = errors.New("backend down")
