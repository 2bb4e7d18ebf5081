// Package cardlist defines the domain model shared by the parser, the
// enricher, and the list stores: a Card row and the named List that holds
// an ordered collection of them.
package cardlist

import "time"

// ImageURIs holds the catalog's rendered card images at the three sizes
// the frontend consumes. A card may have none (e.g. multi-faced cards).
type ImageURIs struct {
	Small  string `json:"small,omitempty"`
	Normal string `json:"normal,omitempty"`
	Large  string `json:"large,omitempty"`
}

// Card is a single list entry. Immediately after parsing only ID, Name,
// SetCode, and Price are populated (straight from the upload); enrichment
// fills the remaining fields and overwrites Price with the catalog's
// current value.
type Card struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	SetCode         string     `json:"set"`
	SetName         string     `json:"set_name"`
	ImageURIs       *ImageURIs `json:"image_uris,omitempty"`
	Price           float64    `json:"price"`
	FoilPrice       float64    `json:"foil_price"`
	CollectorNumber string     `json:"collector_number"`
}

// List is a named, ordered, persisted collection of cards.
//
// ID is assigned exactly once at creation and never changes. Name is the
// only mutable field. Cards are set once at creation and preserve the order
// of the valid rows in the original upload; a list with zero cards is a
// valid, persistable state.
type List struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Cards     []Card    `json:"cards"`
	CreatedAt time.Time `json:"created_at"`
}
