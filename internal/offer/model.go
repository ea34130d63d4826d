package offer

import (
	"time"

	"github.com/redmonkez12/marketplace-api/internal/imagestore"
	"github.com/redmonkez12/marketplace-api/internal/user"
)

// Attribute keys of product_details, named after the existing dataset
const (
	KeyBrand     = "MARQUE"
	KeySize      = "TAILLE"
	KeyCondition = "ÉTAT"
	KeyColor     = "COULEUR"
	KeyLocation  = "EMPLACEMENT"
)

type Offer struct {
	ID          string               `json:"_id"`
	Name        string               `json:"product_name"`
	Description string               `json:"product_description"`
	Price       float64              `json:"product_price"`
	Details     Details              `json:"product_details"`
	Image       *imagestore.ImageRef `json:"product_image"`
	OwnerID     string               `json:"-"`
	Owner       *Owner               `json:"owner"`
	CreatedAt   time.Time            `json:"created_at"`
	UpdatedAt   time.Time            `json:"updated_at"`
}

// Owner is the restricted view of the user who published an offer
type Owner struct {
	ID      string        `json:"_id"`
	Account *user.Account `json:"account,omitempty"`
}

// Detail is one attribute record. Records written by this service hold a
// single key; anything else read from storage is kept as is.
type Detail map[string]any

// Details is the ordered attribute list of an offer
type Details []Detail

// Key returns the only key of the record, or "" when it holds zero or
// several keys
func (d Detail) Key() string {
	if len(d) != 1 {
		return ""
	}
	for k := range d {
		return k
	}
	return ""
}

// SearchResult is the body of GET /offers
type SearchResult struct {
	Count  int64    `json:"count"`
	Offers []*Offer `json:"offers"`
}
