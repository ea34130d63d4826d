package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/redmonkez12/marketplace-api/internal/auth"
	"github.com/redmonkez12/marketplace-api/internal/imagestore"
	"github.com/redmonkez12/marketplace-api/internal/logging"
)

var (
	ErrMissingParams      = errors.New("missing parameters")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// SignupInput is the data accepted by Signup
type SignupInput struct {
	Email    string `validate:"required"`
	Username string `validate:"required"`
	Password string `validate:"required"`
	Phone    string
	Avatar   *imagestore.File
}

// UpdateInput holds the fields to overwrite. Nil fields are left unchanged.
type UpdateInput struct {
	Username *string
	Phone    *string
	Email    *string
	Avatar   *imagestore.File
}

// Service handles account business logic
type Service struct {
	repo     Repository
	images   imagestore.Store
	layout   imagestore.Layout
	validate *validator.Validate
	logger   *logging.Logger
}

func NewService(repo Repository, images imagestore.Store, layout imagestore.Layout, logger *logging.Logger) *Service {
	return &Service{
		repo:     repo,
		images:   images,
		layout:   layout,
		validate: validator.New(),
		logger:   logger,
	}
}

// Signup creates an account, uploads the optional avatar and returns the
// stored user with its bearer token. A registered email is reported as a
// duplicate even when other fields are missing.
func (s *Service) Signup(ctx context.Context, in SignupInput) (*User, error) {
	if in.Email != "" {
		if _, err := s.repo.GetByEmail(ctx, in.Email); err == nil {
			return nil, ErrDuplicateEmail
		} else if !errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("failed to check email: %w", err)
		}
	}

	if err := s.validate.StructCtx(ctx, in); err != nil {
		return nil, ErrMissingParams
	}

	salt, err := auth.GenerateSalt()
	if err != nil {
		return nil, err
	}
	token, err := auth.GenerateToken()
	if err != nil {
		return nil, err
	}

	u := &User{
		ID:    s.repo.NewID(),
		Email: in.Email,
		Account: Account{
			Username: in.Username,
			Phone:    in.Phone,
		},
		Token: token,
		Hash:  auth.HashPassword(in.Password, salt),
		Salt:  salt,
	}

	if in.Avatar != nil {
		avatar, err := s.images.Upload(ctx, *in.Avatar, imagestore.UploadOptions{
			PublicID: s.layout.UserAvatar(u.ID),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to upload avatar: %w", err)
		}
		u.Account.Avatar = avatar
	}

	if err := s.repo.Create(ctx, u); err != nil {
		if u.Account.Avatar != nil {
			s.discardFolder(ctx, s.layout.UserFolder(u.ID))
		}
		return nil, err
	}

	s.logger.Info("user signed up", "user_id", u.ID)
	return u, nil
}

// Login checks the password against the stored salted hash
func (s *Service) Login(ctx context.Context, email, password string) (*User, error) {
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if !auth.VerifyPassword(password, u.Salt, u.Hash) {
		return nil, ErrInvalidCredentials
	}

	return u, nil
}

// Update overwrites the provided profile fields. A new avatar replaces the
// previous one under the same public id.
func (s *Service) Update(ctx context.Context, id string, in UpdateInput) error {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if in.Username != nil {
		u.Account.Username = *in.Username
	}
	if in.Phone != nil {
		u.Account.Phone = *in.Phone
	}
	if in.Email != nil && *in.Email != u.Email {
		existing, err := s.repo.GetByEmail(ctx, *in.Email)
		switch {
		case err == nil && existing.ID != u.ID:
			return ErrDuplicateEmail
		case err != nil && !errors.Is(err, ErrNotFound):
			return fmt.Errorf("failed to check email: %w", err)
		}
		u.Email = *in.Email
	}

	if in.Avatar != nil {
		avatar, err := s.images.Upload(ctx, *in.Avatar, imagestore.UploadOptions{
			PublicID: s.layout.UserAvatar(u.ID),
		})
		if err != nil {
			return fmt.Errorf("failed to upload avatar: %w", err)
		}
		u.Account.Avatar = avatar
	}

	return s.repo.Update(ctx, u)
}

// Delete removes the account. Deleting an unknown id is not an error.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	return nil
}

// FindIdentityByToken resolves a bearer token for the auth middleware
func (s *Service) FindIdentityByToken(ctx context.Context, token string) (*auth.Identity, error) {
	u, err := s.repo.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, auth.ErrIdentityNotFound
		}
		return nil, err
	}

	return &auth.Identity{ID: u.ID, Email: u.Email, Token: u.Token}, nil
}

// discardFolder removes images uploaded for a record that could not be saved
func (s *Service) discardFolder(ctx context.Context, folder string) {
	if err := s.images.DeleteByPrefix(ctx, folder); err != nil {
		s.logger.Warn("failed to clean up orphaned images", "folder", folder, "error", err.Error())
	}
}
