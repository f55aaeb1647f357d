package config

import (
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// Placeholders stand in for credentials that were never configured. They are
// accepted at startup and rejected by the first call that needs the real value.
const (
	PlaceholderOpenAIKey   = "YOUR_OPENAI_API_KEY"
	PlaceholderFirebaseKey = "YOUR_API_KEY"
	PlaceholderAuthDomain  = "YOUR_AUTH_DOMAIN"
	PlaceholderProjectID   = "YOUR_PROJECT_ID"
	PlaceholderGeminiKey   = "YOUR_GEMINI_API_KEY"
	PlaceholderSecret      = "YOUR_SESSION_SECRET"
)

const DefaultOpenAIModel = "gpt-4-turbo-preview"

type Config struct {
	Provider      string
	OpenAIAPIKey  string
	OpenAIModel   string
	OpenAIBaseURL string
	GeminiAPIKey  string
	GeminiModel   string

	AuthProvider     string
	FirebaseAPIKey   string
	FirebaseDomain   string
	FirebaseProject  string
	UsersFile        string
	AuthorizedUserID []string
	SessionSecret    string
	SessionTTL       time.Duration

	StoreDriver string
	StorePath   string

	RulesFile    string
	HookCacheTTL time.Duration

	Port     string
	LogLevel string
}

// Load reads the environment. A .env file is picked up by godotenv/autoload in main.
func Load() Config {
	return Config{
		Provider:      strings.ToLower(env("INFERENCE_PROVIDER", "openai")),
		OpenAIAPIKey:  env("OPENAI_API_KEY", PlaceholderOpenAIKey),
		OpenAIModel:   env("OPENAI_MODEL", DefaultOpenAIModel),
		OpenAIBaseURL: env("OPENAI_BASE_URL", ""),
		GeminiAPIKey:  env("GEMINI_API_KEY", PlaceholderGeminiKey),
		GeminiModel:   env("GEMINI_MODEL", "gemini-2.5-flash"),

		AuthProvider:     strings.ToLower(env("AUTH_PROVIDER", "firebase")),
		FirebaseAPIKey:   env("FIREBASE_API_KEY", PlaceholderFirebaseKey),
		FirebaseDomain:   env("FIREBASE_AUTH_DOMAIN", PlaceholderAuthDomain),
		FirebaseProject:  env("FIREBASE_PROJECT_ID", PlaceholderProjectID),
		UsersFile:        env("AUTH_USERS_FILE", "users.json"),
		AuthorizedUserID: splitList(os.Getenv("AUTHORIZED_USER_UID")),
		SessionSecret:    env("SESSION_SECRET", PlaceholderSecret),
		SessionTTL:       duration("SESSION_TTL", 12*time.Hour),

		StoreDriver: strings.ToLower(env("STORE_DRIVER", "file")),
		StorePath:   env("STORE_PATH", "hookbuilder.json"),

		RulesFile:    env("SCRIPT_RULES_FILE", ""),
		HookCacheTTL: duration("HOOK_CACHE_TTL", 10*time.Minute),

		Port:     env("PORT", "8080"),
		LogLevel: env("LOG_LEVEL", "info"),
	}
}

// IsPlaceholder reports whether v is unset or still one of the placeholder values.
func IsPlaceholder(v string) bool {
	switch strings.TrimSpace(v) {
	case "", PlaceholderOpenAIKey, PlaceholderFirebaseKey, PlaceholderAuthDomain,
		PlaceholderProjectID, PlaceholderGeminiKey, PlaceholderSecret:
		return true
	}
	return false
}

func env(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func duration(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Warn("invalid duration, using default", "key", key, "value", v, "default", fallback)
		return fallback
	}
	return d
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
