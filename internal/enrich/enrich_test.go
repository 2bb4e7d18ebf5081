package enrich

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/Gluthoric/QR-Code-Project-Work-SB/internal/cardlist"
	"github.com/Gluthoric/QR-Code-Project-Work-SB/internal/scryfall"
)

// fakeCatalog resolves cards from a fixed map, optionally with a random
// per-call delay so completion order differs from input order.
type fakeCatalog struct {
	cards    map[string]*scryfall.Card
	failIDs  map[string]bool
	maxDelay time.Duration
}

func (f *fakeCatalog) Card(ctx context.Context, id string) (*scryfall.Card, error) {
	if f.maxDelay > 0 {
		delay := time.Duration(rand.Int63n(int64(f.maxDelay)))
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.failIDs[id] {
		return nil, errors.New("simulated lookup failure")
	}
	card, ok := f.cards[id]
	if !ok {
		return nil, scryfall.ErrNotFound
	}
	return card, nil
}

func catalogCard(id string) *scryfall.Card {
	usd := "1.00"
	c := &scryfall.Card{
		ID:              id,
		Name:            "Card " + id,
		Set:             "tst",
		SetName:         "Test Set",
		CollectorNumber: "1",
	}
	c.Prices.USD = &usd
	return c
}

func rawCards(ids ...string) []cardlist.Card {
	cards := make([]cardlist.Card, len(ids))
	for i, id := range ids {
		cards[i] = cardlist.Card{ID: id, Name: "Card " + id}
	}
	return cards
}

func TestEnrich_PreservesOrderUnderConcurrency(t *testing.T) {
	const n = 50
	catalog := &fakeCatalog{
		cards:    map[string]*scryfall.Card{},
		maxDelay: 10 * time.Millisecond,
	}
	ids := make([]string, n)
	for i := range ids {
		ids[i] = fmt.Sprintf("id-%03d", i)
		catalog.cards[ids[i]] = catalogCard(ids[i])
	}

	result := New(catalog, 8).Enrich(context.Background(), rawCards(ids...))

	if len(result) != n {
		t.Fatalf("Enrich() returned %d cards, want %d", len(result), n)
	}
	for i, card := range result {
		if card.ID != ids[i] {
			t.Fatalf("result[%d].ID = %q, want %q (order not preserved)", i, card.ID, ids[i])
		}
	}
}

func TestEnrich_FailedLookupsDropOnlyTheirRow(t *testing.T) {
	catalog := &fakeCatalog{
		cards: map[string]*scryfall.Card{
			"a": catalogCard("a"),
			"c": catalogCard("c"),
			"e": catalogCard("e"),
		},
		failIDs:  map[string]bool{"b": true, "d": true},
		maxDelay: 5 * time.Millisecond,
	}

	result := New(catalog, 4).Enrich(context.Background(), rawCards("a", "b", "c", "d", "e"))

	if len(result) != 3 {
		t.Fatalf("Enrich() returned %d cards, want 3", len(result))
	}
	want := []string{"a", "c", "e"}
	for i, card := range result {
		if card.ID != want[i] {
			t.Errorf("result[%d].ID = %q, want %q", i, card.ID, want[i])
		}
	}
}

func TestEnrich_SkipsEmptyID(t *testing.T) {
	catalog := &fakeCatalog{cards: map[string]*scryfall.Card{
		"a": catalogCard("a"),
		"c": catalogCard("c"),
	}}

	cards := []cardlist.Card{
		{ID: "a", Name: "A"},
		{ID: "", Name: "No ID"},
		{ID: "c", Name: "C"},
	}
	result := New(catalog, 2).Enrich(context.Background(), cards)

	if len(result) != 2 {
		t.Fatalf("Enrich() returned %d cards, want 2", len(result))
	}
	if result[0].ID != "a" || result[1].ID != "c" {
		t.Errorf("result ids = [%s %s], want [a c]", result[0].ID, result[1].ID)
	}
}

func TestEnrich_CatalogPriceSupersedesUpload(t *testing.T) {
	usd := "9.99"
	foil := "19.99"
	card := catalogCard("a")
	card.Prices.USD = &usd
	card.Prices.USDFoil = &foil
	catalog := &fakeCatalog{cards: map[string]*scryfall.Card{"a": card}}

	input := []cardlist.Card{{ID: "a", Name: "A", Price: 0.10}}
	result := New(catalog, 1).Enrich(context.Background(), input)

	if len(result) != 1 {
		t.Fatalf("Enrich() returned %d cards, want 1", len(result))
	}
	if result[0].Price != 9.99 {
		t.Errorf("Price = %v, want catalog price 9.99", result[0].Price)
	}
	if result[0].FoilPrice != 19.99 {
		t.Errorf("FoilPrice = %v, want 19.99", result[0].FoilPrice)
	}
}

func TestEnrich_MissingFoilPriceIsZero(t *testing.T) {
	card := catalogCard("a") // no usd_foil set
	catalog := &fakeCatalog{cards: map[string]*scryfall.Card{"a": card}}

	result := New(catalog, 1).Enrich(context.Background(), rawCards("a"))

	if len(result) != 1 {
		t.Fatalf("Enrich() returned %d cards, want 1", len(result))
	}
	if result[0].FoilPrice != 0 {
		t.Errorf("FoilPrice = %v, want 0 for missing foil offering", result[0].FoilPrice)
	}
}

func TestEnrich_EmptyBatch(t *testing.T) {
	catalog := &fakeCatalog{cards: map[string]*scryfall.Card{}}
	result := New(catalog, 4).Enrich(context.Background(), nil)
	if len(result) != 0 {
		t.Fatalf("Enrich(nil) returned %d cards, want 0", len(result))
	}
}

func TestEnrich_AllLookupsFail(t *testing.T) {
	catalog := &fakeCatalog{
		cards:   map[string]*scryfall.Card{},
		failIDs: map[string]bool{"a": true, "b": true},
	}
	result := New(catalog, 2).Enrich(context.Background(), rawCards("a", "b"))
	if len(result) != 0 {
		t.Fatalf("Enrich() returned %d cards, want 0 when every lookup fails", len(result))
	}
}
