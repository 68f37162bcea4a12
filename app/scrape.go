package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/deniskrds/tixplore-app/internal/metrics"
	"github.com/deniskrds/tixplore-app/internal/orchestrator"
	"github.com/deniskrds/tixplore-app/internal/repositories"
	"github.com/deniskrds/tixplore-app/internal/scraper"
	telegramBot "github.com/deniskrds/tixplore-app/internal/telegram"
	"github.com/deniskrds/tixplore-app/internal/utils/logger/sl"

	"github.com/spf13/cobra"
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape [vendor...]",
	Short: "Один раз собирает афишу указанных продавцов (по умолчанию всех) и завершается.",
	RunE:  runScrape,
}

func runScrape(cmd *cobra.Command, args []string) error {
	cfg, log, err := bootstrap()
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	repositoryService, err := repositories.New(ctx, log, cfg)
	if err != nil {
		return err
	}

	scraperService := scraper.New(log, cfg, repositoryService, metrics.New(), buildSites(log, cfg)...)
	if err := validateVendors(args, scraperService.Vendors()); err != nil {
		_ = repositoryService.Shutdown(ctx)
		return err
	}

	tgBot, err := telegramBot.New(log, cfg)
	if err != nil {
		_ = repositoryService.Shutdown(ctx)
		return err
	}
	orchestratorService := orchestrator.New(log, cfg, scraperService, tgBot, scraperService.CompletedReportsChan)

	go scraperService.Start()
	orchestratorService.Start()

	var runErr error
	if len(args) == 0 {
		runErr = orchestratorService.RunAll()
	} else {
		var errs []error
		for _, vendor := range args {
			errs = append(errs, orchestratorService.AddJob(vendor))
		}
		runErr = errors.Join(errs...)
	}

	orchestratorService.WaitAll()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	// оркестратор останавливается первым, чтобы отчёты успели уйти в telegram
	for step, shutdown := range []func(context.Context) error{
		orchestratorService.Shutdown,
		scraperService.Shutdown,
		tgBot.Shutdown,
		repositoryService.Shutdown,
	} {
		if err := shutdown(shutdownCtx); err != nil {
			log.Error("clean up failed", slog.Int("step", step), sl.Err(err))
		}
	}

	return runErr
}

// validateVendors проверяет, что все переданные продавцы зарегистрированы.
func validateVendors(requested, known []string) error {
	var unknown []string
	for _, vendor := range requested {
		if !slices.Contains(known, vendor) {
			unknown = append(unknown, vendor)
		}
	}
	if len(unknown) > 0 {
		return fmt.Errorf("%w: %s (known: %s)",
			scraper.ErrUnknownVendor,
			strings.Join(unknown, ", "),
			strings.Join(known, ", "),
		)
	}
	return nil
}
