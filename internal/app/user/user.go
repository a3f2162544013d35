/*
Package user contains the account model and the credential rules shared by the
register, login, and demo-session handlers.
*/
package user

import (
	"errors"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"

	dbc "trailmeet/internal/app/db/sqlc"
)

const (
	// DemoEmail and DemoName identify the shared account behind POST /api/auth/session.
	DemoEmail = "demo@trailmeet.app"
	DemoName  = "Demo User"

	MinPasswordLength = 6
	MaxPasswordLength = 50
	MaxNameLength     = 80
)

var (
	ErrInvalidEmail    = errors.New("invalid email address")
	ErrInvalidPassword = errors.New("password must be 6 to 50 characters")
	ErrInvalidName     = errors.New("name must be 1 to 80 characters")
)

// User is the public shape of an account. It never carries the password hash.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Picture   string    `json:"picture,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// FromRow maps a users row onto User. The picture is the stored object key or URL.
func FromRow(row dbc.User) User {
	return User{
		ID:        row.ID.String(),
		Name:      row.Name,
		Email:     row.Email,
		Picture:   row.Picture.String,
		CreatedAt: row.CreatedAt.Time,
	}
}

// NormalizeEmail lower-cases and trims an address, then checks it parses as a bare address.
func NormalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || !strings.Contains(email[strings.LastIndex(email, "@")+1:], ".") {
		return "", ErrInvalidEmail
	}
	return email, nil
}

func ValidatePassword(password string) error {
	n := utf8.RuneCountInString(password)
	if n < MinPasswordLength || n > MaxPasswordLength {
		return ErrInvalidPassword
	}
	return nil
}

// NormalizeName trims a display name and checks its length.
func NormalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || utf8.RuneCountInString(name) > MaxNameLength {
		return "", ErrInvalidName
	}
	return name, nil
}

func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// CheckPassword reports whether password matches hash. An empty hash (demo or
// passwordless account) never matches.
func CheckPassword(hash, password string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
