package catalog

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LordZeuss/goroms/internal/domain"
	"github.com/LordZeuss/goroms/internal/logger"
)

// fakeCatalogStore records calls in order and captures saved rows.
type fakeCatalogStore struct {
	calls    []string
	consoles []domain.Console
	games    []domain.Game
}

func (f *fakeCatalogStore) ReplaceConsoles(_ context.Context, consoles []domain.Console) error {
	f.calls = append(f.calls, "ReplaceConsoles")
	f.consoles = consoles
	return nil
}

func (f *fakeCatalogStore) ListConsoles(_ context.Context) ([]domain.Console, error) {
	f.calls = append(f.calls, "ListConsoles")
	return f.consoles, nil
}

func (f *fakeCatalogStore) ClearGames(_ context.Context) error {
	f.calls = append(f.calls, "ClearGames")
	f.games = nil
	return nil
}

func (f *fakeCatalogStore) SaveGames(_ context.Context, games []domain.Game) error {
	f.calls = append(f.calls, "SaveGames")
	f.games = append(f.games, games...)
	return nil
}

func (f *fakeCatalogStore) CleanupDuplicateGames(_ context.Context) error {
	f.calls = append(f.calls, "CleanupDuplicateGames")
	return nil
}

func (f *fakeCatalogStore) RemoveBadGameRows(_ context.Context) error {
	f.calls = append(f.calls, "RemoveBadGameRows")
	return nil
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New(filepath.Join(t.TempDir(), "test.log"), logger.LevelDebug, false)
	require.NoError(t, err)
	return log
}

const indexPage = `<!DOCTYPE html>
<html><body><table>
<tr><th>Name</th><th>Size</th><th>Date</th></tr>
<tr><td class="link"><a href="Mario%20Kart.zip">Mario Kart.zip</a></td><td>12.3 MiB</td><td>2024-01-02</td></tr>
<tr><td class="link"><a href="Starfox.zip">Starfox.zip</a></td><td>8.1 MiB</td><td>2024-02-10</td></tr>
<tr><td class="link"><a href="../">Parent directory/</a></td><td>-</td><td>-</td></tr>
<tr><td>no link cell here</td><td>1 KiB</td><td>2024-03-01</td></tr>
</table></body></html>`

func TestScrapeConsole(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, indexPage)
	}))
	defer srv.Close()

	s := NewScraper(srv.Client(), &fakeCatalogStore{}, testLogger(t))

	games, err := s.scrapeConsole(context.Background(), domain.Console{
		Console: "n64",
		URL:     srv.URL + "/",
	})
	require.NoError(t, err)

	// The header row and the link-less row are skipped; the parent
	// directory row survives scraping and is pruned later in the store.
	require.Len(t, games, 3)

	assert.Equal(t, "Mario Kart.zip", games[0].Name)
	assert.Equal(t, "n64", games[0].Console)
	assert.Equal(t, "12.3 MiB", games[0].Size)
	assert.Equal(t, "2024-01-02", games[0].Date)
	assert.Equal(t, srv.URL+"/Mario%20Kart.zip", games[0].DownloadLink)

	assert.Equal(t, "Starfox.zip", games[1].Name)
	assert.Equal(t, "Parent directory/", games[2].Name)
}

func TestScrapeConsoleHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	s := NewScraper(srv.Client(), &fakeCatalogStore{}, testLogger(t))

	_, err := s.scrapeConsole(context.Background(), domain.Console{Console: "n64", URL: srv.URL})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestRefresh(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, indexPage)
	}))
	defer srv.Close()

	store := &fakeCatalogStore{}
	s := NewScraper(srv.Client(), store, testLogger(t))

	var percents []int
	var messages []string
	progress := func(pct int, msg string) {
		percents = append(percents, pct)
		messages = append(messages, msg)
	}

	consoles := []domain.Console{
		{Console: "n64", URL: srv.URL + "/n64/"},
		{Console: "snes", URL: srv.URL + "/snes/"},
	}

	require.NoError(t, s.Refresh(context.Background(), consoles, progress))

	// One batch of rows per console, cleanup after each.
	assert.Equal(t, []string{
		"ClearGames", "ReplaceConsoles", "ListConsoles",
		"SaveGames", "CleanupDuplicateGames", "RemoveBadGameRows",
		"SaveGames", "CleanupDuplicateGames", "RemoveBadGameRows",
	}, store.calls)
	assert.Len(t, store.games, 6)

	// Progress starts at 0, the scrape spans 30 onward, and 100 is last.
	require.NotEmpty(t, percents)
	assert.Equal(t, 0, percents[0])
	assert.Equal(t, 100, percents[len(percents)-1])
	for i := 1; i < len(percents); i++ {
		assert.GreaterOrEqual(t, percents[i], percents[i-1], "progress went backwards")
	}
	assert.Contains(t, messages, "Scraping n64…")
	assert.Contains(t, messages, "Scraping snes…")
	assert.Equal(t, "Done!", messages[len(messages)-1])
}

func TestRefreshNoConsoles(t *testing.T) {
	store := &fakeCatalogStore{}
	s := NewScraper(http.DefaultClient, store, testLogger(t))

	var last int
	require.NoError(t, s.Refresh(context.Background(), nil, func(pct int, _ string) { last = pct }))

	assert.Equal(t, 100, last)
	assert.Empty(t, store.games)
}

func TestRefreshScrapeFailureAborts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	store := &fakeCatalogStore{}
	s := NewScraper(srv.Client(), store, testLogger(t))

	err := s.Refresh(context.Background(), []domain.Console{
		{Console: "n64", URL: srv.URL},
	}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "n64")
	assert.NotContains(t, store.calls, "SaveGames")
}

func TestCheckNetwork(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	ok, err := CheckNetwork(srv.URL)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCheckNetworkNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	// The host answered, but not with success.
	ok, err := CheckNetwork(srv.URL)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCheckNetworkUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	ok, err := CheckNetwork(srv.URL)
	require.Error(t, err)
	assert.False(t, ok)
}
