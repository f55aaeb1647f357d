package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestIsMatchesKindThroughWrapping(t *testing.T) {
	err := fmt.Errorf("save script: %w", AuthRequired("User must be signed in to save scripts"))
	if !errors.Is(err, ErrAuthRequired) {
		t.Fatalf("expected wrapped error to match ErrAuthRequired")
	}
	if errors.Is(err, ErrValidation) {
		t.Fatalf("expected auth-required error not to match ErrValidation")
	}
	if KindOf(err) != KindAuthRequired {
		t.Fatalf("expected kind %q, got %q", KindAuthRequired, KindOf(err))
	}
}

func TestAuthErrorsAreDistinct(t *testing.T) {
	bad := InvalidCredentials(errors.New("INVALID_PASSWORD"))
	denied := Unauthorized()

	if !errors.Is(bad, ErrInvalidCredentials) || errors.Is(bad, ErrUnauthorized) {
		t.Fatalf("expected invalid credentials to match only its own sentinel")
	}
	if !errors.Is(denied, ErrUnauthorized) || errors.Is(denied, ErrInvalidCredentials) {
		t.Fatalf("expected unauthorized to match only its own sentinel")
	}
	if !errors.Is(bad, ErrAuth) || !errors.Is(denied, ErrAuth) {
		t.Fatalf("expected both to match the generic auth sentinel")
	}
	if HTTPStatus(bad) != http.StatusUnauthorized {
		t.Fatalf("expected 401 for bad credentials, got %d", HTTPStatus(bad))
	}
	if HTTPStatus(denied) != http.StatusForbidden {
		t.Fatalf("expected 403 for unauthorized user, got %d", HTTPStatus(denied))
	}
}

func TestUpstreamMessageCarriesStatus(t *testing.T) {
	err := Upstream("LLM request failed", 429, "rate limited", nil)
	want := "LLM request failed (status 429): rate limited"
	if err.Error() != want {
		t.Fatalf("expected %q, got %q", want, err.Error())
	}
	if HTTPStatus(err) != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", HTTPStatus(err))
	}
	if got := UserMessage(err); got != want+". Please try again." {
		t.Fatalf("unexpected user message %q", got)
	}
}

func TestPlainErrorsMapToInternal(t *testing.T) {
	if HTTPStatus(errors.New("boom")) != http.StatusInternalServerError {
		t.Fatalf("expected plain errors to map to 500")
	}
	if KindOf(errors.New("boom")) != "" {
		t.Fatalf("expected empty kind for plain errors")
	}
}
