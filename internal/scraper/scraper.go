package scraper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/deniskrds/tixplore-app/internal/config"
	"github.com/deniskrds/tixplore-app/internal/metrics"
	"github.com/deniskrds/tixplore-app/internal/models/domain"
	"github.com/deniskrds/tixplore-app/internal/scraper/sites"
	"github.com/deniskrds/tixplore-app/internal/utils/logger/sl"

	"github.com/google/uuid"
)

var (
	ErrUnknownVendor = errors.New("unknown vendor")
	ErrShuttingDown  = errors.New("service is shutting down")
	ErrJobBufferFull = errors.New("job buffer is full")
)

const reportsBufferSize = 100

type Repository interface {
	CreateEvent(ctx context.Context, event domain.Event) (domain.Event, error)
	UpdateEvent(ctx context.Context, event domain.Event) (domain.Event, error)
	FindEventByName(ctx context.Context, name string) (domain.Event, error)
	FindEventByKey(ctx context.Context, name, location, date string) (domain.Event, error)
	CreateTicketSource(ctx context.Context, source domain.TicketSource) (domain.TicketSource, error)
	UpsertTicketSource(ctx context.Context, source domain.TicketSource) (domain.TicketSource, bool, error)
}

// Job представляет задачу, передаваемую в воркер.
type Job struct {
	requestID uuid.UUID
	vendor    string
	Done      chan struct{}
}

// Scraper — пул воркеров, которые запускают скраперы продавцов и сохраняют результат.
type Scraper struct {
	logger               *slog.Logger
	cfg                  *config.Config
	repository           Repository
	metrics              *metrics.Metrics
	sites                map[string]sites.Site
	vendorLocks          map[string]*sync.Mutex
	jobs                 chan Job
	CompletedReportsChan chan domain.ScrapeReport
	shutdownChannel      chan struct{}
	wg                   *sync.WaitGroup
	mu                   sync.RWMutex
	closed               bool
}

func New(
	logger *slog.Logger,
	cfg *config.Config,
	repository Repository,
	m *metrics.Metrics,
	registered ...sites.Site,
) *Scraper {
	op := "Scraper.New()"
	log := logger.With(
		slog.String("op", op),
	)

	s := &Scraper{
		logger:               logger,
		cfg:                  cfg,
		repository:           repository,
		metrics:              m,
		sites:                make(map[string]sites.Site, len(registered)),
		vendorLocks:          make(map[string]*sync.Mutex, len(registered)),
		jobs:                 make(chan Job, max(cfg.ScraperConfig.JobBufferSize, 1)),
		CompletedReportsChan: make(chan domain.ScrapeReport, reportsBufferSize),
		shutdownChannel:      make(chan struct{}),
		wg:                   &sync.WaitGroup{},
	}

	for _, site := range registered {
		s.sites[site.Name()] = site
		s.vendorLocks[site.Name()] = &sync.Mutex{}
	}

	log.Info("scraper created", slog.Any("vendors", s.Vendors()))

	return s
}

// Vendors — имена зарегистрированных продавцов в алфавитном порядке.
func (s *Scraper) Vendors() []string {
	names := make([]string, 0, len(s.sites))
	for name := range s.sites {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Start запускает воркеры и блокируется до их завершения.
func (s *Scraper) Start() {
	op := "Scraper.Start()"
	log := s.logger.With(
		slog.String("op", op),
	)

	workers := max(s.cfg.ScraperConfig.WorkersCount, 1)
	for i := 0; i < workers; i++ {
		s.wg.Add(1)
		go s.handleJob(i)
	}
	log.Info("scraper service started", slog.Int("workers", workers))

	s.wg.Wait()
}

// AddJob ставит прогон продавца в очередь. Done закрывается, когда прогон завершён.
func (s *Scraper) AddJob(requestID uuid.UUID, vendor string) (chan struct{}, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrShuttingDown
	}

	newJob := Job{
		requestID: requestID,
		vendor:    vendor,
		Done:      make(chan struct{}),
	}

	select {
	case s.jobs <- newJob:
		return newJob.Done, nil
	default:
		return nil, ErrJobBufferFull
	}
}

func (s *Scraper) handleJob(id int) {
	defer s.wg.Done()
	op := "Scraper.handleJob()"
	log := s.logger.With(
		slog.String("op", op),
		slog.Int("workerId", id),
	)

	log.Debug("start scraper job handler")

	for {
		select {
		case <-s.shutdownChannel:
			return
		case job, ok := <-s.jobs:
			if !ok {
				return
			}

			ctx, cancel := context.WithTimeout(context.Background(), s.cfg.ScraperConfig.GetTimeout())
			report := s.Run(ctx, job.requestID, job.vendor)
			cancel()

			select {
			case s.CompletedReportsChan <- report:
			default:
				log.Warn("CompletedReportsChan is full, report dropped",
					slog.String("requestID", job.requestID.String()),
				)
			}

			close(job.Done)
		}
	}
}

// Run выполняет один прогон продавца синхронно и возвращает отчёт.
// Ошибки по отдельным событиям попадают в счётчик Failed, в Err только ошибка всего прогона.
// Прогоны одного продавца не пересекаются, записи внутри прогона сохраняются по одной:
// поиск события и его создание должны идти без конкурентов.
func (s *Scraper) Run(ctx context.Context, requestID uuid.UUID, vendor string) domain.ScrapeReport {
	op := "Scraper.Run()"
	log := s.logger.With(
		slog.String("op", op),
		slog.String("requestID", requestID.String()),
		slog.String("vendor", vendor),
	)

	report := domain.ScrapeReport{
		RequestID: requestID,
		Vendor:    vendor,
		StartedAt: time.Now(),
	}

	site, exists := s.sites[vendor]
	if !exists {
		report.Err = fmt.Errorf("%w: %s", ErrUnknownVendor, vendor)
		log.Error("scraper not found for vendor")
		return report
	}

	vendorLock := s.vendorLocks[vendor]
	if !vendorLock.TryLock() {
		log.Info("previous run of the vendor is still in progress, waiting")
		vendorLock.Lock()
	}
	defer vendorLock.Unlock()
	report.StartedAt = time.Now()

	var mu sync.Mutex
	handle := func(ctx context.Context, rec sites.Record) {
		mu.Lock()
		defer mu.Unlock()

		created, err := s.ingest(ctx, site.Policy(), rec)

		switch {
		case err != nil:
			report.Failed++
			log.Error("failed to save event", sl.Err(err))
		case created:
			report.Created++
		default:
			report.Updated++
		}
	}

	stats, err := site.Scrape(ctx, handle)

	mu.Lock()
	report.Seen = stats.Seen
	report.Failed += stats.Failed
	report.Duration = time.Since(report.StartedAt)
	if err != nil {
		report.Err = fmt.Errorf("%s: %w", op, err)
		log.Error("scraping failed", sl.Err(err))
	}
	mu.Unlock()

	s.metrics.ObserveScrape(report)

	log.Info("scraping completed",
		slog.Int("seen", report.Seen),
		slog.Int("created", report.Created),
		slog.Int("updated", report.Updated),
		slog.Int("failed", report.Failed),
		slog.Duration("duration", report.Duration),
	)

	return report
}

// ingest сохраняет запись по политике продавца. Возвращает true, если событие создано.
func (s *Scraper) ingest(ctx context.Context, policy domain.UpsertPolicy, rec sites.Record) (bool, error) {
	event, sources := rec.Normalize()

	switch policy {
	case domain.PolicyAppendSources:
		return s.appendSources(ctx, event, sources)
	case domain.PolicyGetOrCreate:
		return s.getOrCreate(ctx, event, sources)
	default:
		return false, fmt.Errorf("unsupported upsert policy %s", policy)
	}
}

// appendSources ищет событие по имени и не обновляет найденное. Варианты покупки добавляются всегда.
func (s *Scraper) appendSources(ctx context.Context, event domain.Event, sources []domain.TicketSource) (bool, error) {
	op := "Scraper.appendSources()"

	created := false
	existing, err := s.repository.FindEventByName(ctx, event.Name)
	if errors.Is(err, domain.ErrEventNotFound) {
		existing, err = s.repository.CreateEvent(ctx, event)
		created = true
	}
	if err != nil {
		return false, fmt.Errorf("%s: event %q: %w", op, event.Name, err)
	}

	for _, src := range sources {
		src.EventID = existing.ID
		if _, err := s.repository.CreateTicketSource(ctx, src); err != nil {
			return created, fmt.Errorf("%s: ticket source %q of %q: %w", op, src.Name, event.Name, err)
		}
	}

	return created, nil
}

// getOrCreate ищет событие по (name, location, time), найденное обновляет целиком.
// Варианты покупки ищутся по (event, name), так что повторный прогон ничего не дублирует.
func (s *Scraper) getOrCreate(ctx context.Context, event domain.Event, sources []domain.TicketSource) (bool, error) {
	op := "Scraper.getOrCreate()"

	created := false
	existing, err := s.repository.FindEventByKey(ctx, event.Name, event.Location, event.Time)
	switch {
	case errors.Is(err, domain.ErrEventNotFound):
		existing, err = s.repository.CreateEvent(ctx, event)
		created = true
	case err == nil:
		event.ID = existing.ID
		existing, err = s.repository.UpdateEvent(ctx, event)
	}
	if err != nil {
		return false, fmt.Errorf("%s: event %q: %w", op, event.Name, err)
	}

	for _, src := range sources {
		src.EventID = existing.ID
		if _, _, err := s.repository.UpsertTicketSource(ctx, src); err != nil {
			return created, fmt.Errorf("%s: ticket source %q of %q: %w", op, src.Name, event.Name, err)
		}
	}

	return created, nil
}

// Shutdown корректно завершает работу сервиса.
func (s *Scraper) Shutdown(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("force exit scraper: %w", ctx.Err())
	default:
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	close(s.shutdownChannel)
	close(s.jobs)

	return nil
}
