package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/LordZeuss/goroms/internal/domain"
)

const searchLimit = 200

// SaveGames inserts a batch of scraped entries for one console.
func (s *PersistentStore) SaveGames(ctx context.Context, games []domain.Game) error {
	if len(games) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, g := range games {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO games (name, console, date, size, dl_link, is_downloaded)
			VALUES (?, ?, ?, ?, ?, ?)`,
			g.Name, g.Console, g.Date, g.Size, g.DownloadLink, g.IsDownloaded,
		)
		if err != nil {
			return fmt.Errorf("failed to insert game %s: %w", g.Name, err)
		}
	}

	return tx.Commit()
}

// normalizeQuery matches the SQL-side normalization: lowercase with
// spaces and common separators stripped, so "Mario-Kart" finds
// "Mario Kart" and vice versa.
func normalizeQuery(q string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(q) {
		switch r {
		case ' ', '\t', '\n', '-', '_', ':':
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// SearchGames returns catalog entries whose normalized name contains the
// normalized query, capped at 200 rows.
func (s *PersistentStore) SearchGames(ctx context.Context, query string) ([]domain.Game, error) {
	pattern := "%" + normalizeQuery(query) + "%"

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, console, date, size, dl_link, is_downloaded
		FROM games
		WHERE LOWER(REPLACE(REPLACE(REPLACE(REPLACE(name, ' ', ''), '-', ''), '_', ''), ':', '')) LIKE ?
		LIMIT ?`, pattern, searchLimit)
	if err != nil {
		return nil, fmt.Errorf("search query failed: %w", err)
	}
	defer rows.Close()

	var results []domain.Game
	for rows.Next() {
		var g domain.Game
		var downloaded int64
		if err := rows.Scan(&g.ID, &g.Name, &g.Console, &g.Date, &g.Size, &g.DownloadLink, &downloaded); err != nil {
			return nil, err
		}
		g.IsDownloaded = downloaded != 0
		results = append(results, g)
	}

	return results, rows.Err()
}

// GetGame fetches a single catalog entry. Returns nil when not found.
func (s *PersistentStore) GetGame(ctx context.Context, id int64) (*domain.Game, error) {
	var g domain.Game
	var downloaded int64

	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, console, date, size, dl_link, is_downloaded
		FROM games WHERE id = ? LIMIT 1`, id).
		Scan(&g.ID, &g.Name, &g.Console, &g.Date, &g.Size, &g.DownloadLink, &downloaded)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	g.IsDownloaded = downloaded != 0
	return &g, nil
}

// MarkDownloaded flips the downloaded flag for one entry. Called only
// after a fetch-and-extract job fully succeeds.
func (s *PersistentStore) MarkDownloaded(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, "UPDATE games SET is_downloaded = 1 WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to update is_downloaded: %w", err)
	}
	return nil
}

// ClearGames drops every catalog row, used by the refresh pipeline
// before a rescrape.
func (s *PersistentStore) ClearGames(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM games")
	return err
}

// CleanupDuplicateGames keeps the earliest row per name and deletes the
// rest. Index pages occasionally repeat entries.
func (s *PersistentStore) CleanupDuplicateGames(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		WITH duplicates AS (
		  SELECT MIN(rowid) AS keep_id
		  FROM games
		  GROUP BY name
		)
		DELETE FROM games
		WHERE rowid NOT IN (SELECT keep_id FROM duplicates)`)
	return err
}

// RemoveBadGameRows deletes navigation artifacts the scraper picks up
// from directory listings and strips the archive extension from names.
func (s *PersistentStore) RemoveBadGameRows(ctx context.Context) error {
	badNames := []string{"Unknown", "Parent directory/", "./", "../"}
	for _, name := range badNames {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM games WHERE name = ?", name); err != nil {
			return err
		}
	}

	_, err := s.db.ExecContext(ctx, `
		UPDATE games SET name = REPLACE(name, '.zip', '')
		WHERE name LIKE '%.zip'`)
	return err
}
