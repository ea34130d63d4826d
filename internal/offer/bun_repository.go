package offer

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/redmonkez12/marketplace-api/internal/database"
)

// BunRepository stores offers in PostgreSQL
type BunRepository struct {
	db *bun.DB
}

func NewBunRepository(db *bun.DB) *BunRepository {
	return &BunRepository{db: db}
}

func (r *BunRepository) NewID() string {
	return uuid.NewString()
}

func (r *BunRepository) Create(ctx context.Context, o *Offer) error {
	row, err := toRow(o)
	if err != nil {
		return err
	}

	if _, err := r.db.NewInsert().Model(row).Returning("*").Exec(ctx); err != nil {
		return fmt.Errorf("failed to create offer: %w", err)
	}

	o.CreatedAt, o.UpdatedAt = row.CreatedAt, row.UpdatedAt
	return nil
}

func (r *BunRepository) GetByID(ctx context.Context, id string) (*Offer, error) {
	uid, err := database.ParseUUID(id)
	if err != nil {
		return nil, err
	}

	row := new(database.Offer)
	err = r.db.NewSelect().
		Model(row).
		Where("id = ?", uid).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get offer: %w", err)
	}

	return fromRow(row), nil
}

func (r *BunRepository) Update(ctx context.Context, o *Offer) error {
	row, err := toRow(o)
	if err != nil {
		return err
	}
	row.UpdatedAt = time.Now().UTC()

	result, err := r.db.NewUpdate().
		Model(row).
		Column("product_name", "product_description", "product_price", "product_details", "product_image", "updated_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update offer: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	o.UpdatedAt = row.UpdatedAt
	return nil
}

func (r *BunRepository) Delete(ctx context.Context, id string) error {
	uid, err := database.ParseUUID(id)
	if err != nil {
		return err
	}

	result, err := r.db.NewDelete().
		Model((*database.Offer)(nil)).
		Where("id = ?", uid).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete offer: %w", err)
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

func (r *BunRepository) Search(ctx context.Context, p SearchParams) ([]*Offer, int64, error) {
	var rows []database.Offer

	q := r.db.NewSelect().Model(&rows)
	if p.Title != "" {
		q = q.Where("product_name ILIKE ? ESCAPE '\\'", "%"+escapeLike(p.Title)+"%")
	}
	if p.PriceMin != nil {
		q = q.Where("product_price >= ?", *p.PriceMin)
	}
	if p.PriceMax != nil {
		q = q.Where("product_price <= ?", *p.PriceMax)
	}

	switch p.Sort {
	case SortPriceAsc:
		q = q.Order("product_price ASC")
	case SortPriceDesc:
		q = q.Order("product_price DESC")
	}
	q = q.Order("created_at ASC", "id ASC")

	count, err := q.Limit(p.Limit).Offset(p.Skip()).ScanAndCount(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to search offers: %w", err)
	}

	offers := make([]*Offer, 0, len(rows))
	for i := range rows {
		offers = append(offers, fromRow(&rows[i]))
	}
	return offers, int64(count), nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes user input match literally inside a LIKE pattern
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func toRow(o *Offer) (*database.Offer, error) {
	uid, err := database.ParseUUID(o.ID)
	if err != nil {
		return nil, err
	}

	row := &database.Offer{
		ID:          uid,
		Name:        o.Name,
		Description: o.Description,
		Price:       o.Price,
		Details:     make([]map[string]any, 0, len(o.Details)),
		Image:       o.Image,
	}
	for _, d := range o.Details {
		row.Details = append(row.Details, map[string]any(d))
	}

	if o.OwnerID != "" {
		owner, err := database.ParseUUID(o.OwnerID)
		if err != nil {
			return nil, err
		}
		row.OwnerID = &owner
	}

	return row, nil
}

func fromRow(row *database.Offer) *Offer {
	o := &Offer{
		ID:          row.ID.String(),
		Name:        row.Name,
		Description: row.Description,
		Price:       row.Price,
		Details:     make(Details, 0, len(row.Details)),
		Image:       row.Image,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
	for _, d := range row.Details {
		o.Details = append(o.Details, Detail(d))
	}
	if row.OwnerID != nil {
		o.OwnerID = row.OwnerID.String()
	}
	return o
}
