package auth

import (
	"bytes"
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/charmbracelet/log"

	"hookbuilder/pkg/apperr"
	"hookbuilder/pkg/config"
	"hookbuilder/pkg/schema"
)

const identityToolkitURL = "https://identitytoolkit.googleapis.com"

// FirebaseProvider signs in with email and password through the Identity Toolkit REST API.
type FirebaseProvider struct {
	APIKey   string
	Endpoint string
	Client   *http.Client
}

func NewFirebaseProvider(apiKey string) *FirebaseProvider {
	return &FirebaseProvider{APIKey: apiKey, Endpoint: identityToolkitURL, Client: http.DefaultClient}
}

func (p *FirebaseProvider) Name() string { return "firebase" }

type signInRequest struct {
	Email             string `json:"email"`
	Password          string `json:"password"`
	ReturnSecureToken bool   `json:"returnSecureToken"`
}

type signInResponse struct {
	LocalID string `json:"localId"`
	Email   string `json:"email"`
	Error   *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (p *FirebaseProvider) SignIn(ctx context.Context, email, password string) (schema.User, error) {
	if config.IsPlaceholder(p.APIKey) {
		return schema.User{}, apperr.Configuration("The Firebase API key is not configured", nil)
	}

	body, err := json.Marshal(signInRequest{Email: email, Password: password, ReturnSecureToken: true})
	if err != nil {
		return schema.User{}, err
	}
	endpoint := cmp.Or(p.Endpoint, identityToolkitURL) + "/v1/accounts:signInWithPassword?key=" + url.QueryEscape(p.APIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return schema.User{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	client := cmp.Or(p.Client, http.DefaultClient)
	resp, err := client.Do(req)
	if err != nil {
		return schema.User{}, apperr.Upstream("The sign-in service is unreachable", 0, "", err)
	}
	defer resp.Body.Close()

	var out signInResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return schema.User{}, apperr.Upstream("The sign-in service sent an unreadable reply", resp.StatusCode, "", err)
	}
	switch {
	case resp.StatusCode >= http.StatusInternalServerError:
		return schema.User{}, apperr.Upstream("The sign-in service failed", resp.StatusCode, errorMessage(out), nil)
	case resp.StatusCode != http.StatusOK || out.Error != nil:
		return schema.User{}, fmt.Errorf("%w: %s", ErrRejected, errorMessage(out))
	case out.LocalID == "":
		return schema.User{}, apperr.Protocol("The sign-in service returned no user id")
	}
	return schema.User{ID: out.LocalID, Email: cmp.Or(out.Email, email)}, nil
}

// SignOut has nothing to revoke: sessions are our own tokens, and the
// provider's ID token is discarded at sign-in.
func (p *FirebaseProvider) SignOut(ctx context.Context, user schema.User) error {
	log.Debug("firebase sign-out", "id", user.ID)
	return nil
}

func errorMessage(r signInResponse) string {
	if r.Error == nil {
		return ""
	}
	return r.Error.Message
}
