package offer

import (
	"context"
	"errors"
	"fmt"

	"github.com/redmonkez12/marketplace-api/internal/imagestore"
	"github.com/redmonkez12/marketplace-api/internal/logging"
)

var (
	ErrPictureRequired = errors.New("picture is required")
	ErrInvalidPrice    = errors.New("invalid price")
	ErrForbidden       = errors.New("offer belongs to another user")
)

// PublishInput is the data accepted by Publish
type PublishInput struct {
	Title       string
	Description string
	Price       float64
	Details     DetailsInput
	Picture     *imagestore.File
}

// UpdateInput holds the fields to overwrite. Nil fields are left unchanged.
type UpdateInput struct {
	Title       *string
	Description *string
	Price       *float64
	Details     DetailsInput
	Picture     *imagestore.File
}

// Service handles listing business logic
type Service struct {
	repo             Repository
	owners           OwnerFinder
	images           imagestore.Store
	layout           imagestore.Layout
	logger           *logging.Logger
	enforceOwnership bool
}

func NewService(repo Repository, owners OwnerFinder, images imagestore.Store, layout imagestore.Layout, logger *logging.Logger, enforceOwnership bool) *Service {
	return &Service{
		repo:             repo,
		owners:           owners,
		images:           images,
		layout:           layout,
		logger:           logger,
		enforceOwnership: enforceOwnership,
	}
}

// Publish uploads the picture into the offer folder and stores the offer
func (s *Service) Publish(ctx context.Context, ownerID string, in PublishInput) (*Offer, error) {
	if in.Picture == nil {
		return nil, ErrPictureRequired
	}

	o := &Offer{
		ID:          s.repo.NewID(),
		Name:        in.Title,
		Description: in.Description,
		Price:       in.Price,
		Details:     NewDetails(in.Details),
		OwnerID:     ownerID,
	}

	folder := s.layout.OfferFolder(o.ID)
	image, err := s.images.Upload(ctx, *in.Picture, imagestore.UploadOptions{Folder: folder})
	if err != nil {
		return nil, fmt.Errorf("failed to upload picture: %w", err)
	}
	o.Image = image

	if err := s.repo.Create(ctx, o); err != nil {
		if cleanupErr := s.images.DeleteByPrefix(ctx, folder); cleanupErr != nil {
			s.logger.Warn("failed to clean up orphaned images", "folder", folder, "error", cleanupErr.Error())
		}
		return nil, err
	}

	o.Owner = &Owner{ID: ownerID}
	s.logger.Info("offer published", "offer_id", o.ID, "owner_id", ownerID)
	return o, nil
}

// Get returns the offer with its owner, or nil when it does not exist
func (s *Service) Get(ctx context.Context, id string) (*Offer, error) {
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	if err := s.attachOwners(ctx, []*Offer{o}); err != nil {
		return nil, err
	}
	return o, nil
}

// Update overwrites the provided fields. Attribute records are patched in
// place and a new picture replaces the offer preview. A request carrying
// no field leaves the stored record untouched.
func (s *Service) Update(ctx context.Context, callerID, id string, in UpdateInput) error {
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if s.enforceOwnership && o.OwnerID != callerID {
		return ErrForbidden
	}

	changed := o.Details.Patch(in.Details)
	if in.Title != nil {
		o.Name = *in.Title
		changed = true
	}
	if in.Description != nil {
		o.Description = *in.Description
		changed = true
	}
	if in.Price != nil {
		o.Price = *in.Price
		changed = true
	}

	if in.Picture == nil && !changed {
		s.logger.Debug("offer update without fields, nothing stored", "offer_id", id)
		return nil
	}

	if in.Picture != nil {
		image, err := s.images.Upload(ctx, *in.Picture, imagestore.UploadOptions{
			PublicID: s.layout.OfferPreview(o.ID),
		})
		if err != nil {
			return fmt.Errorf("failed to upload picture: %w", err)
		}
		o.Image = image
	}

	return s.repo.Update(ctx, o)
}

// Delete purges the offer images, removes the emptied folder and then the
// record. The purge runs even when no record exists for id.
func (s *Service) Delete(ctx context.Context, callerID, id string) error {
	if s.enforceOwnership {
		o, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if o.OwnerID != callerID {
			return ErrForbidden
		}
	}

	folder := s.layout.OfferFolder(id)
	if err := s.images.DeleteByPrefix(ctx, folder); err != nil {
		return fmt.Errorf("failed to delete offer images: %w", err)
	}
	if err := s.images.DeleteFolder(ctx, folder); err != nil {
		return fmt.Errorf("failed to delete offer folder: %w", err)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("offer deleted", "offer_id", id, "caller_id", callerID)
	return nil
}

// Search returns one page of offers and the number of offers matching the
// filters
func (s *Service) Search(ctx context.Context, p SearchParams) (*SearchResult, error) {
	offers, count, err := s.repo.Search(ctx, p)
	if err != nil {
		return nil, err
	}

	if err := s.attachOwners(ctx, offers); err != nil {
		return nil, err
	}
	return &SearchResult{Count: count, Offers: offers}, nil
}

// attachOwners resolves the owner account of each offer in one lookup.
// Offers whose owner no longer exists keep a nil owner.
func (s *Service) attachOwners(ctx context.Context, offers []*Offer) error {
	ids := make([]string, 0, len(offers))
	seen := make(map[string]struct{}, len(offers))
	for _, o := range offers {
		if o.OwnerID == "" {
			continue
		}
		if _, ok := seen[o.OwnerID]; !ok {
			seen[o.OwnerID] = struct{}{}
			ids = append(ids, o.OwnerID)
		}
	}
	if len(ids) == 0 {
		return nil
	}

	users, err := s.owners.GetByIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("failed to load offer owners: %w", err)
	}

	for _, o := range offers {
		if u, ok := users[o.OwnerID]; ok {
			account := u.Account
			o.Owner = &Owner{ID: u.ID, Account: &account}
		}
	}
	return nil
}
