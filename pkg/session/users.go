package session

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// User is a configured account. PasswordHash is a bcrypt hash.
type User struct {
	Username     string `json:"username" yaml:"username"`
	Name         string `json:"name,omitempty" yaml:"name,omitempty"`
	PasswordHash string `json:"password_hash" yaml:"password_hash"`
}

// HashPassword returns the bcrypt hash stored in configuration.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", errors.New("session: password is empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("session: hash password: %w", err)
	}
	return string(hash), nil
}

// Authenticator checks credentials against a fixed user list.
type Authenticator struct {
	users map[string]User
}

func NewAuthenticator(users []User) *Authenticator {
	a := &Authenticator{users: make(map[string]User, len(users))}
	for _, u := range users {
		name := strings.TrimSpace(u.Username)
		if name == "" {
			continue
		}
		u.Username = name
		a.users[strings.ToLower(name)] = u
	}
	return a
}

// Authenticate returns the user when password matches. Unknown users and
// wrong passwords both yield ErrBadCredentials.
func (a *Authenticator) Authenticate(username, password string) (User, error) {
	u, ok := a.users[strings.ToLower(strings.TrimSpace(username))]
	if !ok {
		return User{}, ErrBadCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return User{}, ErrBadCredentials
		}
		return User{}, fmt.Errorf("session: compare password: %w", err)
	}
	return u, nil
}

func (a *Authenticator) Len() int { return len(a.users) }
