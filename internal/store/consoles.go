package store

import (
	"context"
	"fmt"

	"github.com/LordZeuss/goroms/internal/domain"
)

// ReplaceConsoles reseeds the consoles table from configuration.
func (s *PersistentStore) ReplaceConsoles(ctx context.Context, consoles []domain.Console) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM consoles"); err != nil {
		return err
	}

	for _, c := range consoles {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO consoles (console, url) VALUES (?, ?)", c.Console, c.URL)
		if err != nil {
			return fmt.Errorf("failed to insert console %s: %w", c.Console, err)
		}
	}

	return tx.Commit()
}

// ListConsoles returns the seeded consoles in insertion order.
func (s *PersistentStore) ListConsoles(ctx context.Context) ([]domain.Console, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, console, url FROM consoles ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var consoles []domain.Console
	for rows.Next() {
		var c domain.Console
		if err := rows.Scan(&c.ID, &c.Console, &c.URL); err != nil {
			return nil, err
		}
		consoles = append(consoles, c)
	}

	return consoles, rows.Err()
}
