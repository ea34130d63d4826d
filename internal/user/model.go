package user

import (
	"time"

	"github.com/redmonkez12/marketplace-api/internal/imagestore"
)

type User struct {
	ID        string    `json:"_id"`
	Email     string    `json:"email"`
	Account   Account   `json:"account"`
	Token     string    `json:"-"` // bearer credential, only returned by signup and login
	Hash      string    `json:"-"` // Never expose password hash in JSON
	Salt      string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Account is the public profile of a user
type Account struct {
	Username string               `json:"username" bson:"username"`
	Phone    string               `json:"phone" bson:"phone"`
	Avatar   *imagestore.ImageRef `json:"avatar" bson:"avatar"`
}

// SignupAccount is the account summary returned after signup
type SignupAccount struct {
	Username  string  `json:"username"`
	Phone     string  `json:"phone"`
	Email     string  `json:"email"`
	AvatarURL *string `json:"avatar_url"`
}

type SignupResponse struct {
	ID      string        `json:"_id"`
	Token   string        `json:"token"`
	Account SignupAccount `json:"account"`
}

type LoginResponse struct {
	ID      string  `json:"_id"`
	Token   string  `json:"token"`
	Account Account `json:"account"`
}

func newSignupResponse(u *User) SignupResponse {
	resp := SignupResponse{
		ID:    u.ID,
		Token: u.Token,
		Account: SignupAccount{
			Username: u.Account.Username,
			Phone:    u.Account.Phone,
			Email:    u.Email,
		},
	}
	if u.Account.Avatar != nil {
		url := u.Account.Avatar.SecureURL
		resp.Account.AvatarURL = &url
	}
	return resp
}

func newLoginResponse(u *User) LoginResponse {
	return LoginResponse{
		ID:      u.ID,
		Token:   u.Token,
		Account: u.Account,
	}
}
