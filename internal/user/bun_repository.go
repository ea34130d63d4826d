package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/uptrace/bun"

	"github.com/redmonkez12/marketplace-api/internal/database"
)

// pqUniqueViolation is the PostgreSQL error code for unique constraint violations
const pqUniqueViolation = "23505"

// BunRepository stores users in PostgreSQL
type BunRepository struct {
	db *bun.DB
}

func NewBunRepository(db *bun.DB) *BunRepository {
	return &BunRepository{db: db}
}

func (r *BunRepository) NewID() string {
	return uuid.NewString()
}

// Create inserts a new user into the database
func (r *BunRepository) Create(ctx context.Context, u *User) error {
	uid, err := database.ParseUUID(u.ID)
	if err != nil {
		return err
	}

	dbUser := &database.User{
		ID:       uid,
		Email:    u.Email,
		Username: u.Account.Username,
		Phone:    u.Account.Phone,
		Avatar:   u.Account.Avatar,
		Token:    u.Token,
		Hash:     u.Hash,
		Salt:     u.Salt,
	}

	_, err = r.db.NewInsert().
		Model(dbUser).
		Returning("*").
		Exec(ctx)

	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	u.CreatedAt, u.UpdatedAt = dbUser.CreatedAt, dbUser.UpdatedAt
	return nil
}

// GetByID retrieves a user by ID
func (r *BunRepository) GetByID(ctx context.Context, id string) (*User, error) {
	uid, err := database.ParseUUID(id)
	if err != nil {
		return nil, err
	}
	return r.getBy(ctx, "id", uid)
}

// GetByEmail retrieves a user by email
func (r *BunRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	return r.getBy(ctx, "email", email)
}

// GetByToken retrieves the owner of a bearer token
func (r *BunRepository) GetByToken(ctx context.Context, token string) (*User, error) {
	return r.getBy(ctx, "token", token)
}

func (r *BunRepository) getBy(ctx context.Context, column string, value any) (*User, error) {
	dbUser := new(database.User)
	err := r.db.NewSelect().
		Model(dbUser).
		Where("? = ?", bun.Ident(column), value).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by %s: %w", column, err)
	}

	return mapDBUserToModel(dbUser), nil
}

func (r *BunRepository) GetByIDs(ctx context.Context, ids []string) (map[string]*User, error) {
	uids := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if uid, err := database.ParseUUID(id); err == nil {
			uids = append(uids, uid)
		}
	}

	users := make(map[string]*User, len(uids))
	if len(uids) == 0 {
		return users, nil
	}

	var rows []database.User
	err := r.db.NewSelect().
		Model(&rows).
		Where("id IN (?)", bun.In(uids)).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get users: %w", err)
	}

	for i := range rows {
		u := mapDBUserToModel(&rows[i])
		users[u.ID] = u
	}
	return users, nil
}

// Update writes email and account of the user
func (r *BunRepository) Update(ctx context.Context, u *User) error {
	uid, err := database.ParseUUID(u.ID)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	result, err := r.db.NewUpdate().
		Model((*database.User)(nil)).
		Set("email = ?", u.Email).
		Set("username = ?", u.Account.Username).
		Set("phone = ?", u.Account.Phone).
		Set("avatar = ?", u.Account.Avatar).
		Set("updated_at = ?", now).
		Where("id = ?", uid).
		Exec(ctx)

	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("failed to update user: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	u.UpdatedAt = now
	return nil
}

func (r *BunRepository) Delete(ctx context.Context, id string) error {
	uid, err := database.ParseUUID(id)
	if err != nil {
		return err
	}

	result, err := r.db.NewDelete().
		Model((*database.User)(nil)).
		Where("id = ?", uid).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation
}

// mapDBUserToModel converts database model to domain model
func mapDBUserToModel(dbu *database.User) *User {
	return &User{
		ID:    dbu.ID.String(),
		Email: dbu.Email,
		Account: Account{
			Username: dbu.Username,
			Phone:    dbu.Phone,
			Avatar:   dbu.Avatar,
		},
		Token:     dbu.Token,
		Hash:      dbu.Hash,
		Salt:      dbu.Salt,
		CreatedAt: dbu.CreatedAt,
		UpdatedAt: dbu.UpdatedAt,
	}
}
