// Package enrich resolves raw upload rows against the external card catalog.
//
// Enrichment is the only fan-out in the system and the only place partial
// failure is tolerated by design: each row gets an independent lookup, a
// failed lookup costs exactly that row and nothing else, and the output
// preserves input order no matter what order the lookups complete in.
package enrich

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/Gluthoric/QR-Code-Project-Work-SB/internal/cardlist"
	"github.com/Gluthoric/QR-Code-Project-Work-SB/internal/scryfall"
)

// DefaultConcurrency bounds how many catalog lookups run at once. Unbounded
// fan-out would hammer the catalog on large uploads.
const DefaultConcurrency = 8

// Catalog is the single lookup the enricher needs from the catalog service.
type Catalog interface {
	Card(ctx context.Context, id string) (*scryfall.Card, error)
}

// Enricher fans upload rows out to the catalog and fans the results back in.
type Enricher struct {
	catalog     Catalog
	concurrency int64
}

// New creates an Enricher. concurrency <= 0 selects DefaultConcurrency.
func New(catalog Catalog, concurrency int) *Enricher {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &Enricher{catalog: catalog, concurrency: int64(concurrency)}
}

// Enrich looks up every row with a non-empty ID and returns the successfully
// resolved cards in input order. Rows with an empty ID are skipped and rows
// whose lookup fails are dropped; neither aborts the rest of the batch.
//
// Each lookup writes into its own index slot, so no result slice position is
// shared between goroutines; the slots are compacted only after the full
// join.
func (e *Enricher) Enrich(ctx context.Context, cards []cardlist.Card) []cardlist.Card {
	logger := slog.Default()

	slots := make([]*cardlist.Card, len(cards))
	sem := semaphore.NewWeighted(e.concurrency)
	var wg sync.WaitGroup

	for i, card := range cards {
		if card.ID == "" {
			logger.Warn("skipping card with missing id", "name", card.Name)
			continue
		}

		if err := sem.Acquire(ctx, 1); err != nil {
			// Context cancelled while waiting for a slot. Remaining rows
			// are dropped the same way a failed lookup would be.
			logger.Warn("enrichment cancelled", "error", err, "remaining", len(cards)-i)
			break
		}

		wg.Add(1)
		go func(i int, raw cardlist.Card) {
			defer wg.Done()
			defer sem.Release(1)

			data, err := e.catalog.Card(ctx, raw.ID)
			if err != nil {
				logger.Warn("catalog lookup failed",
					"card_id", raw.ID,
					"name", raw.Name,
					"error", err,
				)
				return
			}
			enriched := fromCatalog(data)
			slots[i] = &enriched
		}(i, card)
	}

	wg.Wait()

	result := make([]cardlist.Card, 0, len(cards))
	for _, slot := range slots {
		if slot != nil {
			result = append(result, *slot)
		}
	}

	logger.Info("enrichment complete",
		"rows", len(cards),
		"resolved", len(result),
		"dropped", len(cards)-len(result),
	)
	return result
}

// fromCatalog maps a catalog response into a list card. The catalog is
// authoritative for pricing: whatever price came in with the upload is
// superseded here. A missing foil price means no foil offering and maps
// to 0.
func fromCatalog(data *scryfall.Card) cardlist.Card {
	card := cardlist.Card{
		ID:              data.ID,
		Name:            data.Name,
		SetCode:         data.Set,
		SetName:         data.SetName,
		Price:           scryfall.ParsePrice(data.Prices.USD),
		FoilPrice:       scryfall.ParsePrice(data.Prices.USDFoil),
		CollectorNumber: data.CollectorNumber,
	}
	if data.ImageURIs != nil {
		card.ImageURIs = &cardlist.ImageURIs{
			Small:  data.ImageURIs.Small,
			Normal: data.ImageURIs.Normal,
			Large:  data.ImageURIs.Large,
		}
	}
	return card
}
