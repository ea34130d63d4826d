package offer

import (
	"context"
	"errors"
	"io"
	"math"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redmonkez12/marketplace-api/internal/imagestore"
	"github.com/redmonkez12/marketplace-api/internal/logging"
	"github.com/redmonkez12/marketplace-api/internal/user"
)

type failingCreateRepository struct {
	*MemoryRepository
}

func (r *failingCreateRepository) Create(ctx context.Context, o *Offer) error {
	return errors.New("disk full")
}

type fixture struct {
	svc    *Service
	repo   *MemoryRepository
	users  *user.MemoryRepository
	images *imagestore.MemoryStore
	owner  *user.User
}

func newFixture(t *testing.T, enforceOwnership bool) *fixture {
	t.Helper()
	f := &fixture{
		repo:   NewMemoryRepository(),
		users:  user.NewMemoryRepository(),
		images: imagestore.NewMemoryStore("http://img.test"),
	}
	f.owner = f.addUser(t, "owner@x.com", "owner")
	f.svc = NewService(f.repo, f.users, f.images, imagestore.NewLayout("vinted"),
		logging.NewLoggerWithWriter(io.Discard, true), enforceOwnership)
	return f
}

func (f *fixture) addUser(t *testing.T, email, username string) *user.User {
	t.Helper()
	u := &user.User{
		ID:      f.users.NewID(),
		Email:   email,
		Account: user.Account{Username: username, Phone: "0600"},
		Token:   "token-" + username,
	}
	require.NoError(t, f.users.Create(context.Background(), u))
	return u
}

func picture(content string) *imagestore.File {
	return &imagestore.File{Filename: "pic.jpg", Size: int64(len(content)), Body: strings.NewReader(content)}
}

func (f *fixture) publish(t *testing.T, title string, price float64) *Offer {
	t.Helper()
	o, err := f.svc.Publish(context.Background(), f.owner.ID, PublishInput{
		Title:   title,
		Price:   price,
		Details: DetailsInput{Brand: ptr("Nike"), Size: ptr("M"), Location: ptr("Paris")},
		Picture: picture("jpg"),
	})
	require.NoError(t, err)
	return o
}

func TestPublish(t *testing.T) {
	f := newFixture(t, false)

	o := f.publish(t, "Jean", 20)

	require.NotNil(t, o.Image)
	assert.True(t, strings.HasPrefix(o.Image.PublicID, "vinted/offers/"+o.ID+"/"))
	assert.Equal(t, &Owner{ID: f.owner.ID}, o.Owner)
	assert.Equal(t, Details{{KeyBrand: "Nike"}, {KeySize: "M"}, {KeyCondition: ""}, {KeyColor: ""}, {KeyLocation: "Paris"}}, o.Details)

	stored, err := f.repo.GetByID(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, f.owner.ID, stored.OwnerID)
}

func TestPublish_RequiresPicture(t *testing.T) {
	f := newFixture(t, false)

	_, err := f.svc.Publish(context.Background(), f.owner.ID, PublishInput{Title: "x", Price: 1})
	assert.ErrorIs(t, err, ErrPictureRequired)
}

func TestPublish_RemovesPictureWhenSaveFails(t *testing.T) {
	f := newFixture(t, false)
	f.svc.repo = &failingCreateRepository{MemoryRepository: f.repo}

	_, err := f.svc.Publish(context.Background(), f.owner.ID, PublishInput{Title: "x", Price: 1, Picture: picture("a")})
	require.ErrorContains(t, err, "disk full")

	assert.Empty(t, f.images.List("vinted/offers"))
}

func TestGet(t *testing.T) {
	f := newFixture(t, false)
	o := f.publish(t, "Jean", 20)

	got, err := f.svc.Get(context.Background(), o.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Owner)
	require.NotNil(t, got.Owner.Account)
	assert.Equal(t, f.owner.ID, got.Owner.ID)
	assert.Equal(t, "owner", got.Owner.Account.Username)
	assert.Equal(t, "0600", got.Owner.Account.Phone)

	missing, err := f.svc.Get(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestGet_OwnerDeleted(t *testing.T) {
	f := newFixture(t, false)
	o := f.publish(t, "Jean", 20)
	require.NoError(t, f.users.Delete(context.Background(), f.owner.ID))

	got, err := f.svc.Get(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Owner)
}

func TestUpdate(t *testing.T) {
	f := newFixture(t, false)
	o := f.publish(t, "Jean", 20)
	ctx := context.Background()

	price := 35.5
	require.NoError(t, f.svc.Update(ctx, f.owner.ID, o.ID, UpdateInput{
		Title:   ptr("Jean slim"),
		Price:   &price,
		Details: DetailsInput{Brand: ptr("Levi's")},
		Picture: picture("preview"),
	}))

	stored, err := f.repo.GetByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, "Jean slim", stored.Name)
	assert.Equal(t, 35.5, stored.Price)
	assert.Equal(t, Details{{KeyBrand: "Levi's"}, {KeySize: "M"}, {KeyCondition: ""}, {KeyColor: ""}, {KeyLocation: "Paris"}}, stored.Details)
	require.NotNil(t, stored.Image)
	assert.Equal(t, "vinted/offers/"+o.ID+"/preview", stored.Image.PublicID)

	assert.ErrorIs(t, f.svc.Update(ctx, f.owner.ID, "missing", UpdateInput{}), ErrNotFound)
}

func TestUpdate_NoFieldsKeepsRecord(t *testing.T) {
	f := newFixture(t, false)
	o := f.publish(t, "Jean", 20)
	ctx := context.Background()

	before, err := f.repo.GetByID(ctx, o.ID)
	require.NoError(t, err)

	require.NoError(t, f.svc.Update(ctx, f.owner.ID, o.ID, UpdateInput{
		Details: DetailsInput{Brand: nil},
	}))

	after, err := f.repo.GetByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, before.UpdatedAt, after.UpdatedAt, "nothing persisted")
	assert.Equal(t, before.Details, after.Details)
}

func TestDelete_PurgesImagesBeforeRecord(t *testing.T) {
	f := newFixture(t, false)
	o := f.publish(t, "Jean", 20)
	ctx := context.Background()
	require.NoError(t, f.svc.Update(ctx, f.owner.ID, o.ID, UpdateInput{Picture: picture("preview")}))
	require.Len(t, f.images.List(f.svc.layout.OfferFolder(o.ID)), 2)

	other := f.addUser(t, "other@x.com", "other")
	require.NoError(t, f.svc.Delete(ctx, other.ID, o.ID))

	assert.Empty(t, f.images.List(f.svc.layout.OfferFolder(o.ID)))
	assert.False(t, f.images.HasFolder(f.svc.layout.OfferFolder(o.ID)))
	_, err := f.repo.GetByID(ctx, o.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDelete_MissingOfferStillPurges(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	_, err := f.images.Upload(ctx, *picture("stale"), imagestore.UploadOptions{Folder: "vinted/offers/ghost"})
	require.NoError(t, err)

	err = f.svc.Delete(ctx, f.owner.ID, "ghost")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Empty(t, f.images.List("vinted/offers/ghost"))
}

func TestOwnershipEnforced(t *testing.T) {
	f := newFixture(t, true)
	o := f.publish(t, "Jean", 20)
	other := f.addUser(t, "other@x.com", "other")
	ctx := context.Background()

	assert.ErrorIs(t, f.svc.Update(ctx, other.ID, o.ID, UpdateInput{Title: ptr("stolen")}), ErrForbidden)
	assert.ErrorIs(t, f.svc.Delete(ctx, other.ID, o.ID), ErrForbidden)
	assert.NotEmpty(t, f.images.List(f.svc.layout.OfferFolder(o.ID)), "images kept on rejected delete")

	require.NoError(t, f.svc.Update(ctx, f.owner.ID, o.ID, UpdateInput{Title: ptr("mine")}))
	require.NoError(t, f.svc.Delete(ctx, f.owner.ID, o.ID))
}

func TestSearch(t *testing.T) {
	f := newFixture(t, false)
	for _, tc := range []struct {
		title string
		price float64
	}{
		{"Jean bleu", 20}, {"Robe", 5}, {"jean noir", 45}, {"Veste", 60}, {"Pull", 12},
	} {
		f.publish(t, tc.title, tc.price)
	}
	ctx := context.Background()
	lo, hi := 10.0, 50.0

	res, err := f.svc.Search(ctx, SearchParams{PriceMin: &lo, PriceMax: &hi, Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 3, res.Count)
	for _, o := range res.Offers {
		assert.True(t, o.Price >= 10 && o.Price <= 50, o.Price)
		require.NotNil(t, o.Owner)
		assert.Equal(t, "owner", o.Owner.Account.Username)
	}

	res, err = f.svc.Search(ctx, SearchParams{Title: "JEAN", Sort: SortPriceDesc, Page: 1, Limit: 10})
	require.NoError(t, err)
	require.Len(t, res.Offers, 2)
	assert.Equal(t, 45.0, res.Offers[0].Price)
	assert.Equal(t, 20.0, res.Offers[1].Price)

	res, err = f.svc.Search(ctx, SearchParams{Sort: SortPriceAsc, Page: 2, Limit: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 5, res.Count, "count ignores pagination")
	require.Len(t, res.Offers, 2)
	assert.Equal(t, 20.0, res.Offers[0].Price)
	assert.Equal(t, 45.0, res.Offers[1].Price)

	q := url.Values{"page": {strconv.Itoa(math.MaxInt)}, "limit": {"2"}}
	p, err := ParseSearchParams(q, 10, 100)
	require.NoError(t, err)
	res, err = f.svc.Search(ctx, p)
	require.NoError(t, err)
	assert.EqualValues(t, 5, res.Count)
	assert.Empty(t, res.Offers, "page past the end")

	res, err = f.svc.Search(ctx, SearchParams{Page: math.MaxInt, Limit: 3})
	require.NoError(t, err)
	assert.Empty(t, res.Offers)
}
