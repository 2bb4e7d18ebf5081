// Package core provides the business logic for the card list service:
// the upload pipeline (parse, enrich, persist), list retrieval and rename,
// and the concurrency limiter that keeps simultaneous uploads bounded.
package core

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/Gluthoric/QR-Code-Project-Work-SB/internal/cardlist"
	"github.com/Gluthoric/QR-Code-Project-Work-SB/internal/csvparse"
	"github.com/Gluthoric/QR-Code-Project-Work-SB/internal/enrich"
	"github.com/Gluthoric/QR-Code-Project-Work-SB/internal/logging"
	"github.com/Gluthoric/QR-Code-Project-Work-SB/internal/store"
)

// Enricher resolves raw upload rows against the catalog. Satisfied by
// *enrich.Enricher; a fake stands in for tests.
type Enricher interface {
	Enrich(ctx context.Context, cards []cardlist.Card) []cardlist.Card
}

var _ Enricher = (*enrich.Enricher)(nil)

// Service wires the upload pipeline to a list store.
type Service struct {
	store    store.Store
	enricher Enricher
	limiter  *UploadLimiter
}

// NewService creates a Service. maxConcurrent/maxWait configure the upload
// limiter; zero values select its defaults.
func NewService(st store.Store, enricher Enricher, maxConcurrent int, maxWait time.Duration) *Service {
	return &Service{
		store:    st,
		enricher: enricher,
		limiter:  NewUploadLimiter(maxConcurrent, maxWait),
	}
}

// Upload runs the full ingestion pipeline: parse the file, enrich every
// valid row against the catalog, and persist the result as a new list under
// a fresh identifier. Rows that fail enrichment are dropped, never fatal;
// a list where every row failed is still persisted (the caller decides how
// to surface an empty list).
func (s *Service) Upload(ctx context.Context, file io.Reader) (*cardlist.List, error) {
	if err := s.limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	defer s.limiter.Release()

	logger := logging.FromContext(ctx)

	cards, err := csvparse.Parse(file)
	if err != nil {
		return nil, err
	}
	logger.Info("upload parsed", "rows", len(cards))

	enriched := s.enricher.Enrich(ctx, cards)
	if enriched == nil {
		enriched = []cardlist.Card{}
	}

	id := uuid.NewString()
	list := &cardlist.List{
		ID:        id,
		Name:      "Card List " + id[:8],
		Cards:     enriched,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.store.Create(ctx, list); err != nil {
		return nil, fmt.Errorf("persisting card list: %w", err)
	}

	logger.Info("card list created",
		"list_id", list.ID,
		"name", list.Name,
		"cards", len(list.Cards),
	)
	return list, nil
}

// Get fetches a list by id. Returns store.ErrNotFound for unknown ids.
func (s *Service) Get(ctx context.Context, id string) (*cardlist.List, error) {
	return s.store.Get(ctx, id)
}

// Rename updates a list's name. Returns store.ErrNotFound for unknown ids;
// renaming to the current name is a no-op.
func (s *Service) Rename(ctx context.Context, id, name string) error {
	if err := s.store.Rename(ctx, id, name); err != nil {
		return err
	}
	logging.FromContext(ctx).Info("card list renamed", "list_id", id, "name", name)
	return nil
}

// Ping reports backing store health.
func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// UploadLimiterStatus exposes the limiter state for shutdown coordination.
func (s *Service) UploadLimiterStatus() UploadLimiterStatus {
	return s.limiter.Status()
}

// WaitForUploads blocks until in-flight uploads drain or ctx expires.
func (s *Service) WaitForUploads(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}
