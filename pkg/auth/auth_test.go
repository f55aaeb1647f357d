package auth

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"hookbuilder/pkg/apperr"
	"hookbuilder/pkg/schema"
)

func staticUsers(t *testing.T) *StaticProvider {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	return NewStaticProvider(
		StaticUser{ID: "u1", Email: "owner@example.com", PasswordHash: string(hash)},
		StaticUser{ID: "u2", Email: "guest@example.com", PasswordHash: string(hash)},
	)
}

// recording wraps a provider and counts sign-outs.
type recording struct {
	Provider
	signedOut []string
}

func (r *recording) SignOut(ctx context.Context, user schema.User) error {
	r.signedOut = append(r.signedOut, user.ID)
	return nil
}

func TestAuthenticatorSignIn(t *testing.T) {
	ctx := context.Background()
	p := &recording{Provider: staticUsers(t)}
	a := NewAuthenticator(p, NewAllowList("u1"))

	user, err := a.SignIn(ctx, "Owner@example.com", "s3cret")
	if err != nil || user.ID != "u1" {
		t.Fatalf("expected owner to sign in, got %+v %v", user, err)
	}

	if _, err := a.SignIn(ctx, "owner@example.com", "wrong"); !errors.Is(err, apperr.ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
	if _, err := a.SignIn(ctx, "nobody@example.com", "s3cret"); !errors.Is(err, apperr.ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}

	_, err = a.SignIn(ctx, "guest@example.com", "s3cret")
	if !errors.Is(err, apperr.ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if len(p.signedOut) != 1 || p.signedOut[0] != "u2" {
		t.Fatalf("expected the unauthorized user to be signed out, got %v", p.signedOut)
	}
	if apperr.UserMessage(err) == apperr.UserMessage(apperr.InvalidCredentials(nil)) {
		t.Fatal("expected distinct messages for unauthorized and invalid credentials")
	}
}

func TestPolicyFunc(t *testing.T) {
	p := PolicyFunc(func(u schema.User) bool { return strings.HasSuffix(u.Email, "@example.com") })
	if !p.Allowed(schema.User{ID: "x", Email: "a@example.com"}) || p.Allowed(schema.User{ID: "y", Email: "a@other.com"}) {
		t.Fatal("unexpected policy result")
	}
}

func TestFirebaseProvider(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/accounts:signInWithPassword" || r.URL.Query().Get("key") != "api-key" {
			t.Errorf("unexpected request %s", r.URL)
		}
		body, _ := io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		if strings.Contains(string(body), `"password":"right"`) {
			_, _ = io.WriteString(w, `{"localId":"fb-1","email":"owner@example.com","idToken":"t"}`)
			return
		}
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"error":{"code":400,"message":"INVALID_PASSWORD"}}`)
	}))
	defer srv.Close()

	p := NewFirebaseProvider("api-key")
	p.Endpoint = srv.URL
	a := NewAuthenticator(p, NewAllowList("fb-1"))

	user, err := a.SignIn(context.Background(), "owner@example.com", "right")
	if err != nil || user.ID != "fb-1" {
		t.Fatalf("expected sign in, got %+v %v", user, err)
	}
	if _, err := a.SignIn(context.Background(), "owner@example.com", "wrong"); !errors.Is(err, apperr.ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}

	unset := NewAuthenticator(NewFirebaseProvider("YOUR_API_KEY"), NewAllowList("fb-1"))
	if _, err := unset.SignIn(context.Background(), "a", "b"); !errors.Is(err, apperr.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestTokens(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	tokens := NewTokens("test-secret", time.Hour)
	tokens.now = func() time.Time { return now }

	user := schema.User{ID: "u1", Email: "owner@example.com"}
	signed, expires, err := tokens.Issue(user)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if !expires.Equal(now.Add(time.Hour)) {
		t.Fatalf("unexpected expiry %v", expires)
	}
	got, err := tokens.Parse(signed)
	if err != nil || got != user {
		t.Fatalf("expected %+v, got %+v %v", user, got, err)
	}

	if _, err := NewTokens("other-secret", time.Hour).Parse(signed); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected invalid token for wrong secret, got %v", err)
	}

	now = now.Add(2 * time.Hour)
	if _, err := tokens.Parse(signed); !errors.Is(err, ErrExpiredToken) {
		t.Fatalf("expected expired token, got %v", err)
	}

	if _, _, err := NewTokens("YOUR_SESSION_SECRET", time.Hour).Issue(user); !errors.Is(err, apperr.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestMiddleware(t *testing.T) {
	tokens := NewTokens("test-secret", time.Hour)
	owner, _, _ := tokens.Issue(schema.User{ID: "u1", Email: "owner@example.com"})
	guest, _, _ := tokens.Issue(schema.User{ID: "u2", Email: "guest@example.com"})

	e := echo.New()
	h := Middleware(tokens, NewAllowList("u1"))(func(c echo.Context) error {
		u, ok := UserFrom(c.Request().Context())
		if !ok {
			t.Error("expected user in request context")
		}
		return c.String(http.StatusOK, u.ID)
	})

	tests := []struct {
		name   string
		header string
		kind   apperr.Kind
	}{
		{"no header", "", apperr.KindAuthRequired},
		{"garbage", "Bearer nope", apperr.KindAuthRequired},
		{"not allowed", "Bearer " + guest, apperr.KindAuth},
		{"owner", "Bearer " + owner, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set(echo.HeaderAuthorization, tt.header)
			}
			rec := httptest.NewRecorder()
			err := h(e.NewContext(req, rec))
			if apperr.KindOf(err) != tt.kind {
				t.Fatalf("expected kind %q, got %v", tt.kind, err)
			}
			if tt.kind == "" && rec.Body.String() != "u1" {
				t.Fatalf("expected u1, got %q", rec.Body.String())
			}
		})
	}
}

func TestHashPasswordSignsIn(t *testing.T) {
	hash, err := HashPassword("correct horse")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	p := NewStaticProvider(StaticUser{ID: "u9", Email: "Nine@Example.com", PasswordHash: hash})
	user, err := p.SignIn(context.Background(), " nine@example.com", "correct horse")
	if err != nil || user.ID != "u9" {
		t.Fatalf("expected u9, got %+v, %v", user, err)
	}
	if _, err := p.SignIn(context.Background(), "nine@example.com", "wrong"); !errors.Is(err, ErrRejected) {
		t.Fatalf("expected rejection, got %v", err)
	}
}
