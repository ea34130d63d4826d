//go:build integration

package offer

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "github.com/lib/pq"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"

	"github.com/redmonkez12/marketplace-api/internal/database"
	"github.com/redmonkez12/marketplace-api/internal/user"
)

// BunRepositoryIntegrationSuite runs the postgres repositories against a
// throwaway container. Run with: go test -tags integration ./internal/offer
type BunRepositoryIntegrationSuite struct {
	suite.Suite
	ctx    context.Context
	pgc    *postgres.PostgresContainer
	db     *bun.DB
	users  *user.BunRepository
	offers *BunRepository
	owner  *user.User
}

func TestBunRepositoryIntegration(t *testing.T) {
	suite.Run(t, new(BunRepositoryIntegrationSuite))
}

func (s *BunRepositoryIntegrationSuite) SetupSuite() {
	s.ctx = context.Background()

	pgc, err := postgres.Run(s.ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("marketplace"),
		postgres.WithUsername("user"),
		postgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	s.Require().NoError(err)
	s.pgc = pgc

	connStr, err := pgc.ConnectionString(s.ctx, "sslmode=disable")
	s.Require().NoError(err)

	sqlDB, err := sql.Open("postgres", connStr)
	s.Require().NoError(err)
	s.Require().NoError(database.Migrate(sqlDB))

	s.db = database.NewBunDB(sqlDB)
	s.users = user.NewBunRepository(s.db)
	s.offers = NewBunRepository(s.db)
}

func (s *BunRepositoryIntegrationSuite) TearDownSuite() {
	if s.db != nil {
		s.db.Close()
	}
	if s.pgc != nil {
		s.NoError(s.pgc.Terminate(s.ctx))
	}
}

func (s *BunRepositoryIntegrationSuite) SetupTest() {
	_, err := s.db.ExecContext(s.ctx, "TRUNCATE offers, users")
	s.Require().NoError(err)

	s.owner = &user.User{
		ID:      s.users.NewID(),
		Email:   "owner@x.com",
		Account: user.Account{Username: "owner", Phone: "0600"},
		Token:   "tok",
		Hash:    "h",
		Salt:    "s",
	}
	s.Require().NoError(s.users.Create(s.ctx, s.owner))
}

func (s *BunRepositoryIntegrationSuite) create(title string, price float64) *Offer {
	o := &Offer{
		ID:      s.offers.NewID(),
		Name:    title,
		Price:   price,
		Details: NewDetails(DetailsInput{}),
		OwnerID: s.owner.ID,
	}
	s.Require().NoError(s.offers.Create(s.ctx, o))
	return o
}

func (s *BunRepositoryIntegrationSuite) TestDuplicateEmail() {
	err := s.users.Create(s.ctx, &user.User{ID: s.users.NewID(), Email: "owner@x.com", Token: "other"})
	s.ErrorIs(err, user.ErrDuplicateEmail)
}

func (s *BunRepositoryIntegrationSuite) TestCreateGetUpdateDelete() {
	o := s.create("Jean", 20)

	got, err := s.offers.GetByID(s.ctx, o.ID)
	s.Require().NoError(err)
	s.Equal("Jean", got.Name)
	s.Equal(s.owner.ID, got.OwnerID)
	s.Len(got.Details, 5)

	got.Name = "Jean slim"
	got.Details.Patch(DetailsInput{Brand: ptr("Levi's")})
	s.Require().NoError(s.offers.Update(s.ctx, got))

	again, err := s.offers.GetByID(s.ctx, o.ID)
	s.Require().NoError(err)
	s.Equal("Jean slim", again.Name)
	s.Equal(Detail{KeyBrand: "Levi's"}, again.Details[0])

	s.Require().NoError(s.offers.Delete(s.ctx, o.ID))
	_, err = s.offers.GetByID(s.ctx, o.ID)
	s.ErrorIs(err, ErrNotFound)
}

func (s *BunRepositoryIntegrationSuite) TestSearch() {
	s.create("Jean bleu", 20)
	s.create("Robe", 5)
	s.create("jean 100%_coton", 45)

	lo := 10.0
	offers, count, err := s.offers.Search(s.ctx, SearchParams{Title: "JEAN", PriceMin: &lo, Sort: SortPriceDesc, Page: 1, Limit: 1})
	s.Require().NoError(err)
	s.EqualValues(2, count)
	s.Require().Len(offers, 1)
	s.Equal(45.0, offers[0].Price)

	offers, _, err = s.offers.Search(s.ctx, SearchParams{Title: "100%_", Page: 1, Limit: 10})
	s.Require().NoError(err)
	s.Len(offers, 1, "wildcards in title are literal")
}

func (s *BunRepositoryIntegrationSuite) TestOwnerRemovalKeepsOffer() {
	o := s.create("Jean", 20)
	s.Require().NoError(s.users.Delete(s.ctx, s.owner.ID))

	got, err := s.offers.GetByID(s.ctx, o.ID)
	s.Require().NoError(err)
	s.Empty(got.OwnerID)
}
