package app

import (
	"net/http"

	"github.com/LordZeuss/goroms/internal/archive"
	"github.com/LordZeuss/goroms/internal/catalog"
	"github.com/LordZeuss/goroms/internal/config"
	"github.com/LordZeuss/goroms/internal/domain"
	"github.com/LordZeuss/goroms/internal/events"
	"github.com/LordZeuss/goroms/internal/fetch"
	"github.com/LordZeuss/goroms/internal/job"
	"github.com/LordZeuss/goroms/internal/logger"
	"github.com/LordZeuss/goroms/internal/store"
)

// Context holds the core environment and shared resources for goroms.
// It acts as the single source of truth for the application state.
type Context struct {
	Config    *config.Config
	Logger    *logger.Logger
	Store     *store.PersistentStore
	Bus       *events.Bus
	Fetcher   *fetch.Fetcher
	Extractor archive.Extractor
	Scraper   *catalog.Scraper
	Jobs      *job.Orchestrator
}

// NewContext wires the full application from configuration.
func NewContext(cfg *config.Config) (*Context, error) {
	log, err := logger.New(cfg.Log.Path, logger.ParseLevel(cfg.Log.Level), cfg.Log.IncludeStdout)
	if err != nil {
		return nil, err
	}

	st, err := store.NewPersistentStore(cfg.Store.SQLitePath)
	if err != nil {
		return nil, err
	}

	bus := events.NewBus()

	fetcher := fetch.New(http.DefaultClient, bus, log, fetch.Options{
		Workers:      cfg.Download.Workers,
		PollInterval: cfg.Download.PollInterval(),
	})

	extractor := archive.NewZipExtractor()

	return &Context{
		Config:    cfg,
		Logger:    log,
		Store:     st,
		Bus:       bus,
		Fetcher:   fetcher,
		Extractor: extractor,
		Scraper:   catalog.NewScraper(http.DefaultClient, st, log),
		Jobs: job.NewOrchestrator(
			fetcher, extractor, st, job.CatalogRecorder{Store: st}, bus, log, cfg.Download.Dir),
	}, nil
}

// Consoles returns the configured catalog sources as domain consoles.
func (c *Context) Consoles() []domain.Console {
	consoles := make([]domain.Console, 0, len(c.Config.Catalog.Sources))
	for _, s := range c.Config.Catalog.Sources {
		consoles = append(consoles, domain.Console{Console: s.Console, URL: s.URL})
	}
	return consoles
}

func (c *Context) Close() error {
	return c.Store.Close()
}
