package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/deniskrds/tixplore-app/internal/config"
	"github.com/deniskrds/tixplore-app/internal/models/domain"
	"github.com/deniskrds/tixplore-app/internal/utils/logger/sl"

	"github.com/google/uuid"
)

// Scraper определяет интерфейс для взаимодействия со скрапером.
type Scraper interface {
	AddJob(requestID uuid.UUID, vendor string) (chan struct{}, error)
	Vendors() []string
}

// Notifier получает отчёт о каждом завершённом прогоне.
type Notifier interface {
	SendReport(ctx context.Context, report domain.ScrapeReport) error
}

const notifyTimeout = 10 * time.Second

// Orchestrator ставит прогоны в очередь скрапера и разбирает их отчёты.
type Orchestrator struct {
	logger               *slog.Logger
	cfg                  *config.Config
	scraper              Scraper
	notifier             Notifier
	completedReportsChan <-chan domain.ScrapeReport
	doneChans            []chan struct{}
	mu                   sync.Mutex
	shutdownChan         chan struct{}
	stopped              chan struct{}
	shutdownOnce         sync.Once
	startOnce            sync.Once
}

func New(
	logger *slog.Logger,
	cfg *config.Config,
	scraper Scraper,
	notifier Notifier,
	completedReportsChan <-chan domain.ScrapeReport,
) *Orchestrator {
	op := "Orchestrator.New()"
	log := logger.With(slog.String("op", op))
	log.Info("Creating orchestrator")

	return &Orchestrator{
		logger:               logger,
		cfg:                  cfg,
		scraper:              scraper,
		notifier:             notifier,
		completedReportsChan: completedReportsChan,
		doneChans:            make([]chan struct{}, 0),
		shutdownChan:         make(chan struct{}),
		stopped:              make(chan struct{}),
	}
}

// Start запускает обработку отчётов и, если задан интервал, периодический запуск всех продавцов.
func (o *Orchestrator) Start() {
	op := "Orchestrator.Start()"
	log := o.logger.With(slog.String("op", op))

	o.startOnce.Do(func() {
		go o.processReports()

		if interval := o.cfg.ScraperConfig.Interval; interval > 0 {
			go o.schedule(interval)
			log.Info("orchestrator started", slog.Duration("interval", interval))
			return
		}

		log.Info("orchestrator started")
	})
}

func (o *Orchestrator) schedule(interval time.Duration) {
	op := "Orchestrator.schedule()"
	log := o.logger.With(slog.String("op", op))

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-o.shutdownChan:
			return
		case <-ticker.C:
			if err := o.RunAll(); err != nil {
				log.Error("scheduled run failed", sl.Err(err))
			}
		}
	}
}

func (o *Orchestrator) processReports() {
	defer close(o.stopped)

	op := "Orchestrator.processReports()"
	log := o.logger.With(slog.String("op", op))

	for {
		select {
		case <-o.shutdownChan:
			// отчёты, уже лежащие в канале, всё равно отправляем
			for {
				select {
				case report, ok := <-o.completedReportsChan:
					if !ok {
						return
					}
					o.handleReport(log, report)
				default:
					return
				}
			}
		case report, ok := <-o.completedReportsChan:
			if !ok {
				log.Info("completedReportsChan closed")
				return
			}
			o.handleReport(log, report)
		}
	}
}

func (o *Orchestrator) handleReport(log *slog.Logger, report domain.ScrapeReport) {
	attrs := []any{
		slog.String("requestID", report.RequestID.String()),
		slog.String("vendor", report.Vendor),
		slog.Int("seen", report.Seen),
		slog.Int("created", report.Created),
		slog.Int("updated", report.Updated),
		slog.Int("failed", report.Failed),
	}
	if report.Err != nil {
		log.Error("scrape run finished with error", append(attrs, sl.Err(report.Err))...)
	} else {
		log.Info("scrape run finished", attrs...)
	}

	if o.notifier == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
	defer cancel()

	if err := o.notifier.SendReport(ctx, report); err != nil {
		log.Error("failed to send report", sl.Err(err))
	}
}

// AddJob добавляет джобу в скрапер и сохраняет канал Done для ожидания.
func (o *Orchestrator) AddJob(vendor string) error {
	op := "Orchestrator.AddJob()"
	log := o.logger.With(slog.String("op", op))

	requestID := uuid.New()
	doneChan, err := o.scraper.AddJob(requestID, vendor)
	if err != nil {
		log.Error("failed to add job",
			slog.String("vendor", vendor),
			sl.Err(err),
		)
		return fmt.Errorf("%s: %w", op, err)
	}

	o.mu.Lock()
	o.doneChans = append(o.doneChans, doneChan)
	o.mu.Unlock()

	log.Debug("job added",
		slog.String("requestID", requestID.String()),
		slog.String("vendor", vendor),
	)

	return nil
}

// RunAll ставит в очередь прогон каждого зарегистрированного продавца.
func (o *Orchestrator) RunAll() error {
	var errs []error
	for _, vendor := range o.scraper.Vendors() {
		if err := o.AddJob(vendor); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// WaitAll ожидает завершения всех добавленных джоб скрапера.
func (o *Orchestrator) WaitAll() {
	op := "Orchestrator.WaitAll()"
	log := o.logger.With(slog.String("op", op))

	o.mu.Lock()
	chans := make([]chan struct{}, len(o.doneChans))
	copy(chans, o.doneChans)
	o.doneChans = make([]chan struct{}, 0)
	o.mu.Unlock()

	log.Info("waiting for all scraper jobs", slog.Int("count", len(chans)))

	for _, doneChan := range chans {
		<-doneChan
	}

	log.Info("all scraper jobs completed")
}

// Shutdown останавливает расписание и ждёт, пока будут разобраны оставшиеся отчёты.
func (o *Orchestrator) Shutdown(ctx context.Context) error {
	o.shutdownOnce.Do(func() {
		close(o.shutdownChan)
	})

	o.startOnce.Do(func() {
		close(o.stopped)
	})

	select {
	case <-o.stopped:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("force exit orchestrator: %w", ctx.Err())
	}
}
