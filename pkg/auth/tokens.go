package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"hookbuilder/pkg/apperr"
	"hookbuilder/pkg/config"
	"hookbuilder/pkg/schema"
)

const issuer = "hookbuilder"

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
)

// Claims carries the signed-in user in a session token.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Tokens issues and verifies HS256 session tokens.
type Tokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokens(secret string, ttl time.Duration) *Tokens {
	return &Tokens{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue signs a session token for user and returns it with its expiry.
func (m *Tokens) Issue(user schema.User) (string, time.Time, error) {
	if config.IsPlaceholder(string(m.secret)) {
		return "", time.Time{}, apperr.Configuration("The session secret is not configured", nil)
	}
	now := m.now()
	expires := now.Add(m.ttl)
	claims := Claims{
		Email: user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			ExpiresAt: jwt.NewNumericDate(expires),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    issuer,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expires, nil
}

// Parse verifies a session token and returns its user.
func (m *Tokens) Parse(tokenString string) (schema.User, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.secret, nil
	},
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return schema.User{}, ErrExpiredToken
		}
		return schema.User{}, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Subject == "" {
		return schema.User{}, ErrInvalidToken
	}
	return schema.User{ID: claims.Subject, Email: claims.Email}, nil
}
