package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/Gluthoric/QR-Code-Project-Work-SB/internal/cardlist"
)

// The same contract suite runs against every embedded backend. Postgres is
// excluded here because it needs a running server; it shares the SQL shape
// with the sqlite adapter.
func backends(t *testing.T) map[string]func(t *testing.T) Store {
	return map[string]func(t *testing.T) Store{
		"memory": func(t *testing.T) Store {
			return NewMemory()
		},
		"sqlite": func(t *testing.T) Store {
			s, err := openSQLite(filepath.Join(t.TempDir(), "lists.db"))
			if err != nil {
				t.Fatalf("openSQLite() error = %v", err)
			}
			return s
		},
		"pebble": func(t *testing.T) Store {
			s, err := openPebble(filepath.Join(t.TempDir(), "pebble"))
			if err != nil {
				t.Fatalf("openPebble() error = %v", err)
			}
			return s
		},
	}
}

func sampleList(id string) *cardlist.List {
	return &cardlist.List{
		ID:        id,
		Name:      "My List",
		CreatedAt: time.Date(2026, 5, 1, 12, 30, 0, 0, time.UTC),
		Cards: []cardlist.Card{
			{
				ID:              "card-1",
				Name:            "Lightning Bolt",
				SetCode:         "lea",
				SetName:         "Limited Edition Alpha",
				ImageURIs:       &cardlist.ImageURIs{Small: "s", Normal: "n", Large: "l"},
				Price:           1.50,
				FoilPrice:       0,
				CollectorNumber: "161",
			},
			{
				ID:              "card-2",
				Name:            "Counterspell",
				SetCode:         "lea",
				SetName:         "Limited Edition Alpha",
				Price:           0.75,
				FoilPrice:       3.10,
				CollectorNumber: "54",
			},
		},
	}
}

func TestStoreContract(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			t.Run("CreateGetRoundTrip", func(t *testing.T) {
				s := open(t)
				defer s.Close()

				want := sampleList("abc-123")
				if err := s.Create(ctx, want); err != nil {
					t.Fatalf("Create() error = %v", err)
				}

				got, err := s.Get(ctx, "abc-123")
				if err != nil {
					t.Fatalf("Get() error = %v", err)
				}
				if got.ID != want.ID || got.Name != want.Name {
					t.Errorf("Get() = %s/%s, want %s/%s", got.ID, got.Name, want.ID, want.Name)
				}
				if len(got.Cards) != 2 {
					t.Fatalf("Get() returned %d cards, want 2", len(got.Cards))
				}
				if got.Cards[0].ID != "card-1" || got.Cards[1].ID != "card-2" {
					t.Errorf("card order = [%s %s], want [card-1 card-2]",
						got.Cards[0].ID, got.Cards[1].ID)
				}
				if got.Cards[0].ImageURIs == nil || got.Cards[0].ImageURIs.Normal != "n" {
					t.Errorf("cards[0].ImageURIs = %+v, want normal=n", got.Cards[0].ImageURIs)
				}
				if got.Cards[1].ImageURIs != nil {
					t.Errorf("cards[1].ImageURIs = %+v, want nil", got.Cards[1].ImageURIs)
				}
				if got.Cards[1].FoilPrice != 3.10 {
					t.Errorf("cards[1].FoilPrice = %v, want 3.10", got.Cards[1].FoilPrice)
				}
				if !got.CreatedAt.Equal(want.CreatedAt) {
					t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, want.CreatedAt)
				}
			})

			t.Run("DuplicateCreate", func(t *testing.T) {
				s := open(t)
				defer s.Close()

				if err := s.Create(ctx, sampleList("dup-1")); err != nil {
					t.Fatalf("Create() error = %v", err)
				}
				err := s.Create(ctx, sampleList("dup-1"))
				if !errors.Is(err, ErrDuplicateID) {
					t.Fatalf("second Create() error = %v, want ErrDuplicateID", err)
				}
			})

			t.Run("GetUnknownID", func(t *testing.T) {
				s := open(t)
				defer s.Close()

				_, err := s.Get(ctx, "no-such-list")
				if !errors.Is(err, ErrNotFound) {
					t.Fatalf("Get() error = %v, want ErrNotFound", err)
				}
			})

			t.Run("RenameChangesNameOnly", func(t *testing.T) {
				s := open(t)
				defer s.Close()

				orig := sampleList("ren-1")
				if err := s.Create(ctx, orig); err != nil {
					t.Fatalf("Create() error = %v", err)
				}

				if err := s.Rename(ctx, "ren-1", "Renamed"); err != nil {
					t.Fatalf("Rename() error = %v", err)
				}

				got, err := s.Get(ctx, "ren-1")
				if err != nil {
					t.Fatalf("Get() error = %v", err)
				}
				if got.Name != "Renamed" {
					t.Errorf("Name = %q, want Renamed", got.Name)
				}
				if len(got.Cards) != len(orig.Cards) {
					t.Errorf("Rename changed cards: %d, want %d", len(got.Cards), len(orig.Cards))
				}
				if !got.CreatedAt.Equal(orig.CreatedAt) {
					t.Errorf("Rename changed CreatedAt: %v, want %v", got.CreatedAt, orig.CreatedAt)
				}
			})

			t.Run("RenameIdempotent", func(t *testing.T) {
				s := open(t)
				defer s.Close()

				if err := s.Create(ctx, sampleList("ren-2")); err != nil {
					t.Fatalf("Create() error = %v", err)
				}
				if err := s.Rename(ctx, "ren-2", "Same Name"); err != nil {
					t.Fatalf("first Rename() error = %v", err)
				}
				if err := s.Rename(ctx, "ren-2", "Same Name"); err != nil {
					t.Fatalf("repeat Rename() error = %v", err)
				}
				got, err := s.Get(ctx, "ren-2")
				if err != nil {
					t.Fatalf("Get() error = %v", err)
				}
				if got.Name != "Same Name" {
					t.Errorf("Name = %q, want Same Name", got.Name)
				}
			})

			t.Run("RenameUnknownID", func(t *testing.T) {
				s := open(t)
				defer s.Close()

				err := s.Rename(ctx, "ghost", "X")
				if !errors.Is(err, ErrNotFound) {
					t.Fatalf("Rename() error = %v, want ErrNotFound", err)
				}
			})

			t.Run("EmptyListIsValid", func(t *testing.T) {
				s := open(t)
				defer s.Close()

				empty := &cardlist.List{
					ID:        "empty-1",
					Name:      "Nothing Resolved",
					Cards:     []cardlist.Card{},
					CreatedAt: time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC),
				}
				if err := s.Create(ctx, empty); err != nil {
					t.Fatalf("Create() error = %v", err)
				}
				got, err := s.Get(ctx, "empty-1")
				if err != nil {
					t.Fatalf("Get() error = %v", err)
				}
				if got.Cards == nil || len(got.Cards) != 0 {
					t.Errorf("Cards = %v, want empty non-nil slice", got.Cards)
				}
			})

			t.Run("Ping", func(t *testing.T) {
				s := open(t)
				defer s.Close()

				if err := s.Ping(ctx); err != nil {
					t.Errorf("Ping() error = %v", err)
				}
			})
		})
	}
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), Options{Driver: "cassandra"})
	if err == nil {
		t.Fatal("Open() expected error for unknown driver")
	}
}

func TestOpen_Memory(t *testing.T) {
	s, err := Open(context.Background(), Options{Driver: "memory"})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer s.Close()
	if _, ok := s.(*Memory); !ok {
		t.Errorf("Open(memory) = %T, want *Memory", s)
	}
}
