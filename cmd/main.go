package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	charm "github.com/charmbracelet/log"
	_ "github.com/joho/godotenv/autoload"
	"github.com/labstack/gommon/log"

	"hookbuilder/pkg/auth"
	"hookbuilder/pkg/config"
	"hookbuilder/pkg/inference"
	"hookbuilder/pkg/library"
	"hookbuilder/pkg/script"
	"hookbuilder/pkg/server"
	"hookbuilder/pkg/store"
	"hookbuilder/pkg/studio"
)

func main() {
	hashPassword := flag.String("hash-password", "", "print the bcrypt hash of a password for the users file and exit")
	flag.Parse()
	if *hashPassword != "" {
		hash, err := auth.HashPassword(*hashPassword)
		if err != nil {
			charm.Fatal("could not hash password", "err", err)
		}
		fmt.Println(hash)
		return
	}

	ctx, done := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	cfg := config.Load()
	level, err := charm.ParseLevel(cfg.LogLevel)
	if err != nil {
		charm.Warn("unknown log level, using info", "level", cfg.LogLevel)
		level = charm.InfoLevel
	}
	charm.SetLevel(level)

	st, err := store.Open(cfg.StoreDriver, cfg.StorePath)
	if err != nil {
		charm.Fatal("could not open store", "driver", cfg.StoreDriver, "path", cfg.StorePath, "err", err)
	}

	inf, err := inference.New(cfg)
	if err != nil {
		charm.Fatal("could not configure inference", "provider", cfg.Provider, "err", err)
	}

	processor := script.NewDefault()
	if cfg.RulesFile != "" {
		processor = loadProcessor(cfg.RulesFile)
	}

	authn := auth.NewAuthenticator(authProvider(cfg), auth.NewAllowList(cfg.AuthorizedUserID...))
	if len(cfg.AuthorizedUserID) == 0 {
		charm.Warn("AUTHORIZED_USER_UID is empty; nobody will be able to sign in")
	}
	if config.IsPlaceholder(cfg.SessionSecret) {
		charm.Warn("SESSION_SECRET is not configured; sign-in will fail")
	}

	srv := server.NewServer(
		studio.New(inf, processor, cfg.HookCacheTTL),
		library.New(st),
		authn,
		auth.NewTokens(cfg.SessionSecret, cfg.SessionTTL),
	)
	if level <= charm.DebugLevel {
		srv.Echo.Logger.SetLevel(log.DEBUG)
	} else {
		srv.Echo.Logger.SetLevel(log.INFO)
	}

	charm.Info("starting", "provider", cfg.Provider, "auth", cfg.AuthProvider, "store", cfg.StoreDriver, "hookCacheTTL", cfg.HookCacheTTL)

	finishedShutDown := make(chan struct{})
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			charm.Error("server shutdown", "err", err)
		}
		if err := st.Close(); err != nil {
			charm.Error("closing store", "err", err)
		}
		done()
		close(finishedShutDown)
	}()

	if err := srv.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
		charm.Error("server stopped", "err", err)
		done()
	}
	<-finishedShutDown
}

func loadProcessor(path string) *script.Processor {
	rules, err := script.LoadRules(path)
	if err != nil {
		charm.Warn("could not load script rules, using defaults", "path", path, "err", err)
		return script.NewDefault()
	}
	p, err := script.New(rules, nil)
	if err != nil {
		charm.Warn("invalid script rules, using defaults", "path", path, "err", err)
		return script.NewDefault()
	}
	charm.Info("loaded script rules", "path", path)
	return p
}

func authProvider(cfg config.Config) auth.Provider {
	switch cfg.AuthProvider {
	case "static":
		p, err := auth.LoadStaticProvider(cfg.UsersFile)
		if err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				charm.Fatal("could not load users", "path", cfg.UsersFile, "err", err)
			}
			charm.Warn("users file not found; nobody will be able to sign in", "path", cfg.UsersFile)
			return auth.NewStaticProvider()
		}
		return p
	default:
		if config.IsPlaceholder(cfg.FirebaseAPIKey) {
			charm.Warn("FIREBASE_API_KEY is not configured; sign-in will fail")
		}
		charm.Debug("using firebase auth", "project", cfg.FirebaseProject, "domain", cfg.FirebaseDomain)
		return auth.NewFirebaseProvider(cfg.FirebaseAPIKey)
	}
}
