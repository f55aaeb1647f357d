// Package auth signs users in through an identity provider and gates them with
// an allow-list policy.
package auth

import (
	"context"
	"errors"

	"github.com/charmbracelet/log"

	"hookbuilder/pkg/apperr"
	"hookbuilder/pkg/metrics"
	"hookbuilder/pkg/schema"
)

// Provider is the external identity boundary.
type Provider interface {
	Name() string
	SignIn(ctx context.Context, email, password string) (schema.User, error)
	SignOut(ctx context.Context, user schema.User) error
}

// ErrRejected is wrapped by providers when the credentials themselves were refused.
var ErrRejected = errors.New("credentials rejected")

// Policy decides which signed-in identities may use the application.
type Policy interface {
	Allowed(user schema.User) bool
}

// AllowList permits the listed user ids.
type AllowList map[string]struct{}

func NewAllowList(ids ...string) AllowList {
	l := make(AllowList, len(ids))
	for _, id := range ids {
		l[id] = struct{}{}
	}
	return l
}

func (l AllowList) Allowed(user schema.User) bool {
	_, ok := l[user.ID]
	return ok
}

type PolicyFunc func(schema.User) bool

func (f PolicyFunc) Allowed(user schema.User) bool {
	return f(user)
}

type Authenticator struct {
	provider Provider
	policy   Policy
}

func NewAuthenticator(provider Provider, policy Policy) *Authenticator {
	return &Authenticator{provider: provider, policy: policy}
}

func (a *Authenticator) Policy() Policy {
	return a.policy
}

// SignIn authenticates with the provider and then applies the policy. A user
// outside the policy is signed back out and rejected as unauthorized.
func (a *Authenticator) SignIn(ctx context.Context, email, password string) (schema.User, error) {
	user, err := a.provider.SignIn(ctx, email, password)
	if err != nil {
		metrics.AuthAttempts.WithLabelValues(a.provider.Name(), "invalid").Inc()
		switch apperr.KindOf(err) {
		case apperr.KindConfiguration, apperr.KindUpstream:
			return schema.User{}, err
		}
		log.Info("sign-in rejected", "provider", a.provider.Name(), "email", email, "err", err)
		return schema.User{}, apperr.InvalidCredentials(err)
	}

	if !a.policy.Allowed(user) {
		metrics.AuthAttempts.WithLabelValues(a.provider.Name(), "unauthorized").Inc()
		log.Warn("unauthorized user signed in", "id", user.ID, "email", user.Email)
		if err := a.provider.SignOut(ctx, user); err != nil {
			log.Error("could not sign out unauthorized user", "id", user.ID, "err", err)
		}
		return schema.User{}, apperr.Unauthorized()
	}

	metrics.AuthAttempts.WithLabelValues(a.provider.Name(), "success").Inc()
	log.Info("signed in", "id", user.ID, "email", user.Email)
	return user, nil
}

func (a *Authenticator) SignOut(ctx context.Context, user schema.User) error {
	return a.provider.SignOut(ctx, user)
}

type userKey struct{}

func WithUser(ctx context.Context, user schema.User) context.Context {
	return context.WithValue(ctx, userKey{}, user)
}

// UserFrom returns the signed-in user carried by ctx.
func UserFrom(ctx context.Context) (schema.User, bool) {
	u, ok := ctx.Value(userKey{}).(schema.User)
	return u, ok && u.ID != ""
}
