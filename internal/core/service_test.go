package core

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/Gluthoric/QR-Code-Project-Work-SB/internal/cardlist"
	"github.com/Gluthoric/QR-Code-Project-Work-SB/internal/csvparse"
	"github.com/Gluthoric/QR-Code-Project-Work-SB/internal/store"
)

// fakeEnricher resolves every row whose ID is in resolved, dropping the
// rest, mimicking partial enrichment failure.
type fakeEnricher struct {
	resolved map[string]bool
}

func (f *fakeEnricher) Enrich(_ context.Context, cards []cardlist.Card) []cardlist.Card {
	var out []cardlist.Card
	for _, card := range cards {
		if f.resolved[card.ID] {
			card.SetName = "Test Set"
			card.Price = 1.00
			out = append(out, card)
		}
	}
	return out
}

func newTestService(resolved ...string) (*Service, *store.Memory) {
	m := store.NewMemory()
	res := make(map[string]bool, len(resolved))
	for _, id := range resolved {
		res[id] = true
	}
	return NewService(m, &fakeEnricher{resolved: res}, 2, time.Second), m
}

func TestUpload_PersistsEnrichedSubset(t *testing.T) {
	// Row 2 has no identifier (parser drops it); row 3 fails enrichment.
	// Exactly row 1's card must be persisted.
	svc, _ := newTestService("id-1")
	file := "Scryfall ID,Name,Set Code,Price\n" +
		"id-1,First,aaa,1\n" +
		",Missing ID,bbb,2\n" +
		"id-3,Third,ccc,3\n"

	list, err := svc.Upload(context.Background(), strings.NewReader(file))
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}

	if len(list.Cards) != 1 || list.Cards[0].ID != "id-1" {
		t.Fatalf("Upload() cards = %+v, want exactly id-1", list.Cards)
	}
	if list.ID == "" {
		t.Error("Upload() assigned empty list id")
	}
	if want := "Card List " + list.ID[:8]; list.Name != want {
		t.Errorf("Name = %q, want %q", list.Name, want)
	}

	got, err := svc.Get(context.Background(), list.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if len(got.Cards) != 1 || got.Cards[0].ID != "id-1" {
		t.Errorf("persisted cards = %+v, want exactly id-1", got.Cards)
	}
}

func TestUpload_NoValidRows(t *testing.T) {
	svc, _ := newTestService()
	file := "Scryfall ID,Name\n,no id\n"

	_, err := svc.Upload(context.Background(), strings.NewReader(file))
	if !errors.Is(err, csvparse.ErrNoValidRows) {
		t.Fatalf("Upload() error = %v, want ErrNoValidRows", err)
	}
}

func TestUpload_AllEnrichmentFailsStillPersists(t *testing.T) {
	svc, _ := newTestService() // nothing resolves
	file := "Scryfall ID,Name\nid-1,Bolt\n"

	list, err := svc.Upload(context.Background(), strings.NewReader(file))
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if list.Cards == nil || len(list.Cards) != 0 {
		t.Errorf("Cards = %v, want empty non-nil slice", list.Cards)
	}

	got, err := svc.Get(context.Background(), list.ID)
	if err != nil {
		t.Fatalf("Get() error = %v (empty list must still persist)", err)
	}
	if len(got.Cards) != 0 {
		t.Errorf("persisted cards = %v, want none", got.Cards)
	}
}

func TestUpload_UniqueIDs(t *testing.T) {
	svc, _ := newTestService("id-1")
	file := "Scryfall ID,Name\nid-1,Bolt\n"

	a, err := svc.Upload(context.Background(), strings.NewReader(file))
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	b, err := svc.Upload(context.Background(), strings.NewReader(file))
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if a.ID == b.ID {
		t.Errorf("two uploads got the same id %q", a.ID)
	}
}

func TestRename_RoundTrip(t *testing.T) {
	svc, m := newTestService()
	ctx := context.Background()

	list := &cardlist.List{
		ID:        "abc-123",
		Name:      "My List",
		CreatedAt: time.Now().UTC(),
		Cards: []cardlist.Card{
			{ID: "c1", Name: "One"},
			{ID: "c2", Name: "Two"},
		},
	}
	if err := m.Create(ctx, list); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if err := svc.Rename(ctx, "abc-123", "Renamed"); err != nil {
		t.Fatalf("Rename() error = %v", err)
	}
	got, err := svc.Get(ctx, "abc-123")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Name != "Renamed" {
		t.Errorf("Name = %q, want Renamed", got.Name)
	}
	if len(got.Cards) != 2 {
		t.Errorf("Rename changed cards: %d, want 2", len(got.Cards))
	}
}

func TestGet_UnknownID(t *testing.T) {
	svc, _ := newTestService()
	_, err := svc.Get(context.Background(), "ghost")
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("Get() error = %v, want store.ErrNotFound", err)
	}
}

func TestMapError(t *testing.T) {
	cases := []struct {
		err  error
		code string
	}{
		{csvparse.ErrNoValidRows, "CSV001"},
		{store.ErrNotFound, "LIST001"},
		{ErrTooManyUploads, "UPL001"},
		{context.Canceled, "UPL002"},
		{errors.New("connection refused"), "DB001"},
	}
	for _, c := range cases {
		if got := MapError(c.err); got.Code != c.code {
			t.Errorf("MapError(%v).Code = %q, want %q", c.err, got.Code, c.code)
		}
	}
}
