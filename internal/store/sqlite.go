package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/Gluthoric/QR-Code-Project-Work-SB/internal/cardlist"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS card_lists (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS card_list_items (
	list_id          TEXT NOT NULL REFERENCES card_lists(id) ON DELETE CASCADE,
	position         INTEGER NOT NULL,
	card_id          TEXT NOT NULL,
	name             TEXT NOT NULL,
	set_code         TEXT NOT NULL DEFAULT '',
	set_name         TEXT NOT NULL DEFAULT '',
	collector_number TEXT NOT NULL DEFAULT '',
	image_uris       TEXT,
	price            REAL NOT NULL DEFAULT 0,
	foil_price       REAL NOT NULL DEFAULT 0,
	PRIMARY KEY (list_id, position)
);
`

// SQLite is the embedded relational Store adapter.
type SQLite struct {
	db *sql.DB
}

func openSQLite(path string) (*SQLite, error) {
	if path == "" {
		return nil, errors.New("sqlite store requires a database path")
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &SQLite{db: db}, nil
}

func (s *SQLite) Create(ctx context.Context, list *cardlist.List) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	createdAt := list.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO card_lists (id, name, created_at) VALUES (?, ?, ?)`,
		list.ID, list.Name, createdAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		if isSQLiteConstraint(err) {
			return ErrDuplicateID
		}
		return fmt.Errorf("insert card list: %w", err)
	}

	for i, card := range list.Cards {
		var imageJSON any
		if card.ImageURIs != nil {
			data, err := json.Marshal(card.ImageURIs)
			if err != nil {
				return fmt.Errorf("marshal image uris: %w", err)
			}
			imageJSON = string(data)
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO card_list_items
				(list_id, position, card_id, name, set_code, set_name, collector_number, image_uris, price, foil_price)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			list.ID, i, card.ID, card.Name, card.SetCode, card.SetName,
			card.CollectorNumber, imageJSON, card.Price, card.FoilPrice,
		)
		if err != nil {
			return fmt.Errorf("insert card list item %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit card list: %w", err)
	}
	return nil
}

func (s *SQLite) Get(ctx context.Context, id string) (*cardlist.List, error) {
	list := &cardlist.List{}
	var createdAt string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, created_at FROM card_lists WHERE id = ?`, id,
	).Scan(&list.ID, &list.Name, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query card list: %w", err)
	}
	if ts, parseErr := time.Parse(time.RFC3339Nano, createdAt); parseErr == nil {
		list.CreatedAt = ts
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT card_id, name, set_code, set_name, collector_number, image_uris, price, foil_price
		 FROM card_list_items WHERE list_id = ? ORDER BY position`, id,
	)
	if err != nil {
		return nil, fmt.Errorf("query card list items: %w", err)
	}
	defer rows.Close()

	list.Cards = []cardlist.Card{}
	for rows.Next() {
		var card cardlist.Card
		var imageJSON sql.NullString
		if err := rows.Scan(&card.ID, &card.Name, &card.SetCode, &card.SetName,
			&card.CollectorNumber, &imageJSON, &card.Price, &card.FoilPrice); err != nil {
			return nil, fmt.Errorf("scan card list item: %w", err)
		}
		if imageJSON.Valid && imageJSON.String != "" {
			uris := &cardlist.ImageURIs{}
			if err := json.Unmarshal([]byte(imageJSON.String), uris); err != nil {
				return nil, fmt.Errorf("unmarshal image uris: %w", err)
			}
			card.ImageURIs = uris
		}
		list.Cards = append(list.Cards, card)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate card list items: %w", err)
	}

	return list, nil
}

func (s *SQLite) Rename(ctx context.Context, id, name string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE card_lists SET name = ? WHERE id = ?`, name, id,
	)
	if err != nil {
		return fmt.Errorf("rename card list: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLite) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

// isSQLiteConstraint reports whether err is a primary key / unique
// constraint violation. modernc.org/sqlite does not export typed errors for
// this, so the check matches the driver's error text.
func isSQLiteConstraint(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint") ||
		strings.Contains(msg, "constraint failed")
}
