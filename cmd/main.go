package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/asaskevich/EventBus"
	"github.com/pkg/errors"
	"github.com/playwright-community/playwright-go"
	log "github.com/sirupsen/logrus"

	"internscout/internal/browser"
	"internscout/internal/config"
	"internscout/internal/domain/events"
	"internscout/internal/domain/models"
	"internscout/internal/export"
	"internscout/internal/limits"
	"internscout/internal/logger"
	"internscout/internal/metrics"
	"internscout/internal/repositories"
	"internscout/internal/services"
)

const (
	defaultSearchLimit = 50
	detailEnrichLimit  = 20
)

func main() {

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.Get()

	logger.Setup(cfg.Logger)
	defer logger.Cleanup()

	metrics.StartMetricsServer()

	traceID := logger.NewTraceID()
	runLog := logger.WithTrace(traceID)
	runLog.Info("starting extraction run")

	if err := playwright.Install(&playwright.RunOptions{Browsers: []string{"chromium"}}); err != nil {
		log.Fatalf("can't install playwright: %v", err)
	}

	dbContext, err := repositories.NewDbContext(cfg.DB.ConnectionString)
	if err != nil {
		log.Fatalf("can't create db context: %v", err)
	}
	defer dbContext.Close()

	if err = dbContext.Migrate(); err != nil {
		log.Fatalf("can't migrate db context: %v", err)
	}

	listings := repositories.NewListingsRepository(dbContext.DB)
	runs := repositories.NewRunsRepository(dbContext.DB)

	bus := EventBus.New()

	if _, err = services.NewArchiveRecorder(bus, listings); err != nil {
		log.Fatalf("can't create archive recorder: %v", err)
	}
	if _, err = services.NewRunRecorder(bus, runs); err != nil {
		log.Fatalf("can't create run recorder: %v", err)
	}

	cleaner, err := services.NewArchiveCleaner(listings, cfg.DB.ArchiveExpirationDays)
	if err != nil {
		log.Fatalf("can't create archive cleaner: %v", err)
	}
	defer cleaner.Stop()

	gate, err := buildGate(cfg.Limits)
	if err != nil {
		log.Fatalf("can't create request gate: %v", err)
	}

	sessions, closeSessions, err := startSessions(ctx, cfg, gate, traceID)
	if err != nil {
		log.Fatalf("can't start browser sessions: %v", err)
	}
	defer closeSessions()

	jobs := buildJobs(cfg, bus, traceID)
	if len(jobs) == 0 {
		runLog.Warn("nothing to do: messages and search are both disabled")
		return
	}

	runner := services.NewRunner(sessions, traceID)
	if err = runner.RunAll(ctx, jobs); err != nil {
		runLog.WithField(logger.ErrorTypeField, logger.ErrorTypeBrowser).
			Errorf("extraction run failed: %v", err)
		return
	}

	runLog.Info("extraction run complete")
}

func buildGate(cfg config.LimitsConfig) (*limits.Gate, error) {

	rate, err := limits.NewRateLimiter(cfg.RequestsPerMinute, limits.SystemClock())
	if err != nil {
		return nil, err
	}

	conc, err := limits.NewConcurrencyLimiter(cfg.MaxConcurrent)
	if err != nil {
		return nil, err
	}

	return limits.NewGate(rate, conc), nil
}

// startSessions launches and authenticates the configured number of browser
// sessions. Stored session state is tried first; a fresh login only happens
// when restoration does not hold up.
func startSessions(ctx context.Context, cfg *config.Config, gate *limits.Gate,
	traceID string) ([]*browser.Session, func(), error) {

	var sessions []*browser.Session
	var auths []*browser.Authenticator

	closeAll := func() {
		for i, session := range sessions {
			if cfg.Scraper.LogoutOnExit {
				auths[i].Logout(context.Background())
			}
			session.Close()
		}
	}

	for i := 0; i < cfg.Scraper.Sessions; i++ {
		session := browser.NewSession(cfg.Browser, gate, traceID)
		if err := session.Start(); err != nil {
			closeAll()
			return nil, nil, err
		}
		sessions = append(sessions, session)

		auth := browser.NewAuthenticator(session, cfg.Browser.BaseURL,
			cfg.Scraper.Email, cfg.Scraper.Password, traceID)
		auths = append(auths, auth)

		if auth.IsLoggedIn(ctx) {
			continue
		}

		ok, reason := auth.Login(ctx)
		if !ok {
			closeAll()
			return nil, nil, errors.Errorf("login failed: %s", reason)
		}
	}

	return sessions, closeAll, nil
}

func buildJobs(cfg *config.Config, bus EventBus.Bus, traceID string) []services.Job {

	var jobs []services.Job

	if cfg.Scraper.Messages.Enabled {
		jobs = append(jobs, services.Job{Kind: "messages", Run: func(ctx context.Context, session *browser.Session) error {
			return runMessagesJob(ctx, cfg, bus, session, traceID)
		}})
	}

	if cfg.Scraper.Search.Enabled {
		jobs = append(jobs, services.Job{Kind: "search", Run: func(ctx context.Context, session *browser.Session) error {
			return runSearchJob(ctx, cfg, bus, session, traceID)
		}})
	}

	return jobs
}

// runMessagesJob extracts chat messages and exports whatever was collected,
// even when the run ends early. The run ledger records every attempt.
func runMessagesJob(ctx context.Context, cfg *config.Config, bus EventBus.Bus,
	session *browser.Session, traceID string) error {

	startedAt := time.Now()

	extractor := services.NewMessageExtractor(session, cfg.Browser.BaseURL, traceID)
	opts := services.MessageExtractionOptions{
		ConversationLimit:    cfg.Scraper.Messages.ConversationLimit,
		PerConversationLimit: cfg.Scraper.Messages.PerConversation,
		IncludeSent:          cfg.Scraper.Messages.IncludeSent,
		IncludeReceived:      cfg.Scraper.Messages.IncludeReceived,
		SinceDays:            cfg.Scraper.Messages.SinceDays,
	}

	messages, report, err := extractor.ExtractAll(ctx, opts)

	bus.Publish(events.RunFinishedTopic, events.RunFinished{
		Kind:       "messages",
		Extracted:  len(messages),
		Skipped:    report.Skipped,
		StartedAt:  startedAt,
		FinishedAt: time.Now(),
		TraceID:    traceID,
	})

	if len(messages) > 0 {
		if exportErr := exportMessages(cfg.Export, messages); exportErr != nil {
			log.WithField(logger.ErrorTypeField, logger.ErrorTypeExport).
				Errorf("failed to export messages: %v", exportErr)
		}
	}

	return err
}

func runSearchJob(ctx context.Context, cfg *config.Config, bus EventBus.Bus,
	session *browser.Session, traceID string) error {

	startedAt := time.Now()

	scraper := services.NewListingScraper(session, bus, cfg.Browser.BaseURL, traceID)
	found, report, err := scraper.Search(ctx, searchFilter(cfg.Scraper.Search))

	if err == nil && cfg.Scraper.Search.EnrichDetails && len(found) > 0 {
		enricher := services.NewCachedDetails(services.NewDetailEnricher(session, traceID))
		err = services.EnrichAll(ctx, enricher, found, detailEnrichLimit)
	}

	bus.Publish(events.RunFinishedTopic, events.RunFinished{
		Kind:       "search",
		Extracted:  len(found),
		Skipped:    report.Skipped,
		StartedAt:  startedAt,
		FinishedAt: time.Now(),
		TraceID:    traceID,
	})

	if len(found) > 0 {
		if exportErr := exportListings(cfg.Export, found); exportErr != nil {
			log.WithField(logger.ErrorTypeField, logger.ErrorTypeExport).
				Errorf("failed to export listings: %v", exportErr)
		}
	}

	return err
}

func searchFilter(cfg config.SearchConfig) models.SearchFilter {

	filter := models.SearchFilter{
		Keywords:         cfg.Keywords,
		Locations:        cfg.Locations,
		Mode:             models.WorkMode(cfg.Mode),
		Categories:       cfg.Categories,
		CompanyTypes:     cfg.CompanyTypes,
		ExcludeUnpaid:    cfg.ExcludeUnpaid,
		PostedWithinDays: cfg.PostedWithinDays,
		DurationWeeks:    cfg.DurationWeeks,
		PartTime:         cfg.PartTime,
		WithJobOffer:     cfg.WithJobOffer,
		Limit:            cfg.Limit,
	}

	if cfg.StipendMin > 0 {
		filter.StipendMin = &cfg.StipendMin
	}
	if filter.Limit == 0 {
		filter.Limit = defaultSearchLimit
	}

	return filter
}

func exportMessages(cfg config.ExportConfig, messages []models.Message) error {

	now := time.Now()

	if cfg.Format == "csv" || cfg.Format == "both" {
		path := export.TimestampedPath(cfg.OutputDir, "messages", "csv", now)
		if err := export.WriteMessagesCSV(path, messages); err != nil {
			return err
		}
		log.Infof("exported %d messages to %s", len(messages), path)
	}

	if cfg.Format == "json" || cfg.Format == "both" {
		path := export.TimestampedPath(cfg.OutputDir, "messages", "json", now)
		if err := export.WriteMessagesJSON(path, messages); err != nil {
			return err
		}
		log.Infof("exported %d messages to %s", len(messages), path)
	}

	return nil
}

func exportListings(cfg config.ExportConfig, listings []models.ListingSummary) error {

	now := time.Now()

	if cfg.Format == "csv" || cfg.Format == "both" {
		path := export.TimestampedPath(cfg.OutputDir, "listings", "csv", now)
		if err := export.WriteListingsCSV(path, listings); err != nil {
			return err
		}
		log.Infof("exported %d listings to %s", len(listings), path)
	}

	if cfg.Format == "json" || cfg.Format == "both" {
		path := export.TimestampedPath(cfg.OutputDir, "listings", "json", now)
		if err := export.WriteListingsJSON(path, listings); err != nil {
			return err
		}
		log.Infof("exported %d listings to %s", len(listings), path)
	}

	return nil
}
