package auth

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"hookbuilder/pkg/schema"
	"hookbuilder/pkg/utils"
)

// StaticUser is one entry of a users file.
type StaticUser struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	PasswordHash string `json:"passwordHash"`
}

// StaticProvider checks credentials against a fixed set of bcrypt-hashed users.
type StaticProvider struct {
	users map[string]StaticUser
}

func NewStaticProvider(users ...StaticUser) *StaticProvider {
	p := &StaticProvider{users: make(map[string]StaticUser, len(users))}
	for _, u := range users {
		p.users[strings.ToLower(u.Email)] = u
	}
	return p
}

// LoadStaticProvider reads a JSON array of StaticUser from path.
func LoadStaticProvider(path string) (*StaticProvider, error) {
	users, err := utils.Load[[]StaticUser](path)
	if err != nil {
		return nil, fmt.Errorf("load users file %s: %w", path, err)
	}
	return NewStaticProvider(users...), nil
}

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (p *StaticProvider) Name() string { return "static" }

func (p *StaticProvider) SignIn(ctx context.Context, email, password string) (schema.User, error) {
	u, ok := p.users[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return schema.User{}, fmt.Errorf("%w: unknown email", ErrRejected)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return schema.User{}, fmt.Errorf("%w: %v", ErrRejected, err)
	}
	return schema.User{ID: u.ID, Email: u.Email}, nil
}

func (p *StaticProvider) SignOut(ctx context.Context, user schema.User) error {
	return nil
}
