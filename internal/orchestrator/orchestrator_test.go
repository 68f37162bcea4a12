package orchestrator

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/deniskrds/tixplore-app/internal/config"
	"github.com/deniskrds/tixplore-app/internal/models/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeScraper struct {
	mu      sync.Mutex
	vendors []string
	reports chan domain.ScrapeReport
	added   []string
	reject  map[string]bool
}

func (f *fakeScraper) AddJob(requestID uuid.UUID, vendor string) (chan struct{}, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.reject[vendor] {
		return nil, errors.New("job buffer is full")
	}
	f.added = append(f.added, vendor)

	done := make(chan struct{})
	go func() {
		f.reports <- domain.ScrapeReport{RequestID: requestID, Vendor: vendor, Created: 1}
		close(done)
	}()
	return done, nil
}

func (f *fakeScraper) Vendors() []string { return f.vendors }

func (f *fakeScraper) addedJobs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.added...)
}

type fakeNotifier struct {
	mu      sync.Mutex
	reports []domain.ScrapeReport
}

func (n *fakeNotifier) SendReport(_ context.Context, report domain.ScrapeReport) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.reports = append(n.reports, report)
	return nil
}

func (n *fakeNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.reports)
}

func newTestOrchestrator(cfg *config.Config, s *fakeScraper, n Notifier) *Orchestrator {
	return New(slog.New(slog.NewTextHandler(io.Discard, nil)), cfg, s, n, s.reports)
}

func TestRunAllAndWait(t *testing.T) {
	s := &fakeScraper{vendors: []string{"bubilet", "passo"}, reports: make(chan domain.ScrapeReport, 10)}
	n := &fakeNotifier{}
	o := newTestOrchestrator(&config.Config{}, s, n)
	o.Start()

	require.NoError(t, o.RunAll())
	o.WaitAll()
	assert.ElementsMatch(t, []string{"bubilet", "passo"}, s.addedJobs())

	require.NoError(t, o.Shutdown(context.Background()))
	assert.Equal(t, 2, n.count(), "reports queued before shutdown are delivered")
}

func TestRunAllCollectsErrors(t *testing.T) {
	s := &fakeScraper{
		vendors: []string{"bubilet", "passo"},
		reports: make(chan domain.ScrapeReport, 10),
		reject:  map[string]bool{"passo": true},
	}
	o := newTestOrchestrator(&config.Config{}, s, nil)
	o.Start()

	err := o.RunAll()
	require.Error(t, err)
	o.WaitAll()
	assert.Equal(t, []string{"bubilet"}, s.addedJobs())

	require.NoError(t, o.Shutdown(context.Background()))
}

func TestScheduledRuns(t *testing.T) {
	s := &fakeScraper{vendors: []string{"passo"}, reports: make(chan domain.ScrapeReport, 100)}
	n := &fakeNotifier{}
	cfg := &config.Config{ScraperConfig: config.ScraperConfig{Interval: 20 * time.Millisecond}}
	o := newTestOrchestrator(cfg, s, n)
	o.Start()

	assert.Eventually(t, func() bool { return n.count() >= 2 }, 2*time.Second, 10*time.Millisecond)
	require.NoError(t, o.Shutdown(context.Background()))
}

func TestShutdownWithoutStart(t *testing.T) {
	s := &fakeScraper{reports: make(chan domain.ScrapeReport)}
	o := newTestOrchestrator(&config.Config{}, s, nil)

	require.NoError(t, o.Shutdown(context.Background()))
	require.NoError(t, o.Shutdown(context.Background()))
}
