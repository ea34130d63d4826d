package database

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/redmonkez12/marketplace-api/internal/imagestore"
)

// User is the bun model of the users table
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID        uuid.UUID            `bun:"id,pk,type:uuid"`
	Email     string               `bun:"email,notnull,unique"`
	Username  string               `bun:"username,notnull"`
	Phone     string               `bun:"phone,notnull"`
	Avatar    *imagestore.ImageRef `bun:"avatar,type:jsonb"`
	Token     string               `bun:"token,notnull,unique"`
	Hash      string               `bun:"hash,notnull"`
	Salt      string               `bun:"salt,notnull"`
	CreatedAt time.Time            `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt time.Time            `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

// Offer is the bun model of the offers table
type Offer struct {
	bun.BaseModel `bun:"table:offers,alias:o"`

	ID          uuid.UUID            `bun:"id,pk,type:uuid"`
	Name        string               `bun:"product_name,notnull"`
	Description string               `bun:"product_description,notnull"`
	Price       float64              `bun:"product_price,notnull"`
	Details     []map[string]any     `bun:"product_details,type:jsonb,notnull"`
	Image       *imagestore.ImageRef `bun:"product_image,type:jsonb"`
	OwnerID     *uuid.UUID           `bun:"owner_id,type:uuid"`
	CreatedAt   time.Time            `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt   time.Time            `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}
