package catalog

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/LordZeuss/goroms/internal/domain"
	"github.com/LordZeuss/goroms/internal/logger"
)

// catalogStore is the slice of the persistent store the scraper needs.
type catalogStore interface {
	ReplaceConsoles(ctx context.Context, consoles []domain.Console) error
	ListConsoles(ctx context.Context) ([]domain.Console, error)
	ClearGames(ctx context.Context) error
	SaveGames(ctx context.Context, games []domain.Game) error
	CleanupDuplicateGames(ctx context.Context) error
	RemoveBadGameRows(ctx context.Context) error
}

// ProgressFunc receives refresh progress as a percent plus a message.
type ProgressFunc func(percent int, message string)

// Scraper walks console index pages (directory-listing style HTML
// tables) and fills the catalog store with downloadable entries.
type Scraper struct {
	client *http.Client
	store  catalogStore
	log    *logger.Logger
}

func NewScraper(client *http.Client, store catalogStore, log *logger.Logger) *Scraper {
	if client == nil {
		client = http.DefaultClient
	}
	return &Scraper{client: client, store: store, log: log}
}

// Refresh rebuilds the whole catalog: stale rows are dropped, the console
// list is reseeded from configuration, and every console page is scraped
// in order. Progress runs 0 → 100 with the scrape itself spanning 30 → 100.
func (s *Scraper) Refresh(ctx context.Context, consoles []domain.Console, progress ProgressFunc) error {
	if progress == nil {
		progress = func(int, string) {}
	}

	progress(0, "Starting…")

	progress(5, "Clearing stale catalog…")
	if err := s.store.ClearGames(ctx); err != nil {
		return fmt.Errorf("failed to clear catalog: %w", err)
	}

	progress(25, "Populating consoles…")
	if err := s.store.ReplaceConsoles(ctx, consoles); err != nil {
		return fmt.Errorf("failed to seed consoles: %w", err)
	}

	seeded, err := s.store.ListConsoles(ctx)
	if err != nil {
		return err
	}

	if len(seeded) == 0 {
		s.log.Warn("no consoles configured, catalog will be empty")
		progress(100, "Done!")
		return nil
	}

	progress(30, "Scraping…")

	for i, c := range seeded {
		pct := 30 + (i*70)/len(seeded)
		progress(pct, fmt.Sprintf("Scraping %s…", c.Console))
		s.log.Info("Scraping console: %s (%s)", c.Console, c.URL)

		games, err := s.scrapeConsole(ctx, c)
		if err != nil {
			return fmt.Errorf("scrape of %s failed: %w", c.Console, err)
		}

		if err := s.store.SaveGames(ctx, games); err != nil {
			return err
		}

		if err := s.store.CleanupDuplicateGames(ctx); err != nil {
			return err
		}
		if err := s.store.RemoveBadGameRows(ctx); err != nil {
			return err
		}

		s.log.Info("Finished scraping console: %s (%d rows)", c.Console, len(games))
	}

	progress(100, "Done!")
	return nil
}

// scrapeConsole parses one index page. Rows look like
//
//	<tr><td class="link"><a href="Game.zip">Game.zip</a></td>
//	    <td>12.3 MiB</td><td>2024-01-02</td></tr>
//
// Relative links are resolved against the page URL. Rows without usable
// cells still produce "Unknown" entries; RemoveBadGameRows prunes them.
func (s *Scraper) scrapeConsole(ctx context.Context, c domain.Console) ([]domain.Game, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("index page returned status: %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse index page: %w", err)
	}

	var games []domain.Game

	doc.Find("tr").Each(func(_ int, row *goquery.Selection) {
		link := row.Find(".link a").First()
		if link.Length() == 0 {
			return
		}

		name := strings.TrimSpace(link.Text())
		if name == "" {
			name = "Unknown"
		}

		href, _ := link.Attr("href")
		if href == "" {
			href = "Unknown"
		}

		games = append(games, domain.Game{
			Name:         name,
			Console:      c.Console,
			Date:         textOr(row.Find("td:nth-child(3)").First(), "Unknown"),
			Size:         textOr(row.Find("td:nth-child(2)").First(), "Unknown"),
			DownloadLink: c.URL + href,
		})
	})

	return games, nil
}

func textOr(sel *goquery.Selection, fallback string) string {
	t := strings.TrimSpace(sel.Text())
	if t == "" {
		return fallback
	}
	return t
}
