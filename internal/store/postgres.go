package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Gluthoric/QR-Code-Project-Work-SB/internal/cardlist"
)

// pgUniqueViolation is the Postgres error code for unique constraint hits.
const pgUniqueViolation = "23505"

const pgSchema = `
CREATE TABLE IF NOT EXISTS card_lists (
	id         CHAR(36) PRIMARY KEY,
	name       VARCHAR(255) NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS card_list_items (
	list_id          CHAR(36) NOT NULL REFERENCES card_lists(id) ON DELETE CASCADE,
	position         INTEGER NOT NULL,
	card_id          TEXT NOT NULL,
	name             VARCHAR(255) NOT NULL,
	set_code         VARCHAR(10) NOT NULL DEFAULT '',
	set_name         VARCHAR(255) NOT NULL DEFAULT '',
	collector_number VARCHAR(20) NOT NULL DEFAULT '',
	image_uris       JSONB,
	price            DOUBLE PRECISION NOT NULL DEFAULT 0,
	foil_price       DOUBLE PRECISION NOT NULL DEFAULT 0,
	PRIMARY KEY (list_id, position)
);
`

// Postgres is the relational Store adapter backed by a pgx connection pool.
type Postgres struct {
	pool *pgxpool.Pool
}

func openPostgres(ctx context.Context, opts Options) (*Postgres, error) {
	poolConfig, err := pgxpool.ParseConfig(opts.PostgresURL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}
	if opts.MaxConns > 0 {
		poolConfig.MaxConns = int32(opts.MaxConns)
	}
	if opts.MinConns > 0 {
		poolConfig.MinConns = int32(opts.MinConns)
	}
	if opts.MaxConnLifetime > 0 {
		poolConfig.MaxConnLifetime = opts.MaxConnLifetime
	}
	if opts.MaxConnIdleTime > 0 {
		poolConfig.MaxConnIdleTime = opts.MaxConnIdleTime
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if _, err := pool.Exec(ctx, pgSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Postgres{pool: pool}, nil
}

// Create persists the list row and its items in one transaction so the list
// is never visible half-written.
func (p *Postgres) Create(ctx context.Context, list *cardlist.List) error {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	createdAt := list.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO card_lists (id, name, created_at) VALUES ($1, $2, $3)`,
		list.ID, list.Name, createdAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return ErrDuplicateID
		}
		return fmt.Errorf("insert card list: %w", err)
	}

	for i, card := range list.Cards {
		_, err = tx.Exec(ctx,
			`INSERT INTO card_list_items
				(list_id, position, card_id, name, set_code, set_name, collector_number, image_uris, price, foil_price)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			list.ID, i, card.ID, card.Name, card.SetCode, card.SetName,
			card.CollectorNumber, card.ImageURIs, card.Price, card.FoilPrice,
		)
		if err != nil {
			return fmt.Errorf("insert card list item %d: %w", i, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit card list: %w", err)
	}
	return nil
}

func (p *Postgres) Get(ctx context.Context, id string) (*cardlist.List, error) {
	list := &cardlist.List{}
	err := p.pool.QueryRow(ctx,
		`SELECT id, name, created_at FROM card_lists WHERE id = $1`, id,
	).Scan(&list.ID, &list.Name, &list.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query card list: %w", err)
	}

	rows, err := p.pool.Query(ctx,
		`SELECT card_id, name, set_code, set_name, collector_number, image_uris, price, foil_price
		 FROM card_list_items WHERE list_id = $1 ORDER BY position`, id,
	)
	if err != nil {
		return nil, fmt.Errorf("query card list items: %w", err)
	}
	defer rows.Close()

	list.Cards = []cardlist.Card{}
	for rows.Next() {
		var card cardlist.Card
		if err := rows.Scan(&card.ID, &card.Name, &card.SetCode, &card.SetName,
			&card.CollectorNumber, &card.ImageURIs, &card.Price, &card.FoilPrice); err != nil {
			return nil, fmt.Errorf("scan card list item: %w", err)
		}
		list.Cards = append(list.Cards, card)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate card list items: %w", err)
	}

	return list, nil
}

func (p *Postgres) Rename(ctx context.Context, id, name string) error {
	tag, err := p.pool.Exec(ctx,
		`UPDATE card_lists SET name = $1 WHERE id = $2`, name, id,
	)
	if err != nil {
		return fmt.Errorf("rename card list: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}
