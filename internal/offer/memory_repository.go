package offer

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryRepository keeps offers in process memory, in insertion order
type MemoryRepository struct {
	mu     sync.RWMutex
	order  []string
	offers map[string]Offer
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{offers: make(map[string]Offer)}
}

func (r *MemoryRepository) NewID() string {
	return uuid.NewString()
}

func (r *MemoryRepository) Create(ctx context.Context, o *Offer) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	o.CreatedAt, o.UpdatedAt = now, now

	r.offers[o.ID] = cloneOffer(o)
	r.order = append(r.order, o.ID)
	return nil
}

func (r *MemoryRepository) GetByID(ctx context.Context, id string) (*Offer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	o, ok := r.offers[id]
	if !ok {
		return nil, ErrNotFound
	}
	c := cloneOffer(&o)
	return &c, nil
}

func (r *MemoryRepository) Update(ctx context.Context, o *Offer) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.offers[o.ID]
	if !ok {
		return ErrNotFound
	}

	o.UpdatedAt = time.Now().UTC()
	updated := cloneOffer(o)
	updated.OwnerID = current.OwnerID
	updated.CreatedAt = current.CreatedAt
	r.offers[o.ID] = updated
	return nil
}

func (r *MemoryRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.offers[id]; !ok {
		return ErrNotFound
	}
	delete(r.offers, id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

func (r *MemoryRepository) Search(ctx context.Context, p SearchParams) ([]*Offer, int64, error) {
	r.mu.RLock()
	matched := make([]*Offer, 0)
	for _, id := range r.order {
		o := r.offers[id]
		if p.matches(&o) {
			c := cloneOffer(&o)
			matched = append(matched, &c)
		}
	}
	r.mu.RUnlock()

	switch p.Sort {
	case SortPriceAsc:
		sort.SliceStable(matched, func(i, j int) bool { return matched[i].Price < matched[j].Price })
	case SortPriceDesc:
		sort.SliceStable(matched, func(i, j int) bool { return matched[i].Price > matched[j].Price })
	}

	total := int64(len(matched))
	start := max(0, min(p.Skip(), len(matched)))
	end := max(start, min(start+p.Limit, len(matched)))

	return matched[start:end], total, nil
}

// cloneOffer copies the details so callers cannot mutate stored records
func cloneOffer(o *Offer) Offer {
	c := *o
	c.Owner = nil
	if o.Details != nil {
		c.Details = make(Details, len(o.Details))
		for i, d := range o.Details {
			rec := make(Detail, len(d))
			for k, v := range d {
				rec[k] = v
			}
			c.Details[i] = rec
		}
	}
	return c
}
