package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"

	"github.com/redmonkez12/marketplace-api/internal/app"
	"github.com/redmonkez12/marketplace-api/internal/imagestore"
	"github.com/redmonkez12/marketplace-api/internal/offer"
	"github.com/redmonkez12/marketplace-api/internal/user"
)

var seedItems = []struct {
	title, brand, size, condition, color string
	price                                float64
}{
	{"Jean slim", "Levi's", "M", "Très bon état", "bleu", 25},
	{"Veste en jean", "Lee", "L", "Bon état", "bleu", 40},
	{"Robe d'été", "Zara", "S", "Neuf avec étiquette", "jaune", 18},
	{"Baskets", "Nike", "42", "Satisfaisant", "blanc", 35},
	{"Pull en laine", "Uniqlo", "M", "Très bon état", "gris", 15},
	{"Manteau", "Mango", "M", "Bon état", "noir", 60},
}

var seedCities = []string{"Paris", "Lyon", "Nantes", "Lille"}

type seedReport struct {
	Users  []*user.User
	Offers []*offer.Offer
}

// seed creates demo accounts each owning a few offers. Accounts that
// already exist are logged in instead of recreated.
func seed(ctx context.Context, a *app.App, users, offersPerUser int, password string) (*seedReport, error) {
	report := &seedReport{}

	for i := range users {
		email := fmt.Sprintf("demo%d@example.com", i+1)
		u, err := a.UserService.Signup(ctx, user.SignupInput{
			Email:    email,
			Username: fmt.Sprintf("demo%d", i+1),
			Phone:    fmt.Sprintf("06000000%02d", i+1),
			Password: password,
		})
		if errors.Is(err, user.ErrDuplicateEmail) {
			u, err = a.UserService.Login(ctx, email, password)
		}
		if err != nil {
			return report, fmt.Errorf("seed %s: %w", email, err)
		}
		report.Users = append(report.Users, u)

		for j := range offersPerUser {
			item := seedItems[(i+j)%len(seedItems)]
			city := seedCities[(i+j)%len(seedCities)]
			pic, err := placeholderPicture(uint8(40 * (i + j)))
			if err != nil {
				return report, err
			}

			o, err := a.OfferService.Publish(ctx, u.ID, offer.PublishInput{
				Title:       item.title,
				Description: fmt.Sprintf("%s %s, taille %s", item.title, item.color, item.size),
				Price:       item.price,
				Details: offer.DetailsInput{
					Brand:     &item.brand,
					Size:      &item.size,
					Condition: &item.condition,
					Color:     &item.color,
					Location:  &city,
				},
				Picture: pic,
			})
			if err != nil {
				return report, fmt.Errorf("seed offer %q for %s: %w", item.title, email, err)
			}
			report.Offers = append(report.Offers, o)
		}
	}

	return report, nil
}

// placeholderPicture renders a small solid PNG tinted by shade.
func placeholderPicture(shade uint8) (*imagestore.File, error) {
	img := image.NewRGBA(image.Rect(0, 0, 64, 64))
	fill := color.RGBA{R: shade, G: 120, B: 255 - shade, A: 255}
	for y := range 64 {
		for x := range 64 {
			img.Set(x, y, fill)
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode placeholder: %w", err)
	}

	return &imagestore.File{
		Filename:    "placeholder.png",
		ContentType: "image/png",
		Size:        int64(buf.Len()),
		Body:        &buf,
	}, nil
}
