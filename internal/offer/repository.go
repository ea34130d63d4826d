package offer

import (
	"context"
	"errors"

	"github.com/redmonkez12/marketplace-api/internal/user"
)

var ErrNotFound = errors.New("offer not found")

// Repository handles offer persistence
type Repository interface {
	// NewID reserves an identifier so the picture folder can be named
	// before the offer is stored
	NewID() string
	Create(ctx context.Context, o *Offer) error
	GetByID(ctx context.Context, id string) (*Offer, error)
	// Update persists name, description, price, details and image
	Update(ctx context.Context, o *Offer) error
	Delete(ctx context.Context, id string) error
	// Search returns one page of matching offers and the number of offers
	// matching the filters across all pages
	Search(ctx context.Context, p SearchParams) ([]*Offer, int64, error)
}

// OwnerFinder loads the users referenced by offers
type OwnerFinder interface {
	GetByIDs(ctx context.Context, ids []string) (map[string]*user.User, error)
}
