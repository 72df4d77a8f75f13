package main

import (
	"fmt"
	"log"
	"strings"

	"loginprobe/internal/attempt"
	"loginprobe/internal/config"
	"loginprobe/internal/endpoint"
	"loginprobe/internal/session"
	"loginprobe/internal/tokenstore"
)

type app struct {
	catalog  *endpoint.Catalog
	sessions *session.Manager
	store    *attempt.Store
	attempts *attempt.Controller
	tokens   tokenstore.Store
	tokenKey string
	live     *liveFeed
	listen   string
}

func newApp(settings *config.SettingsType) (*app, func(), error) {
	extra, err := endpoint.ParseExtra(settings.Get(config.EXTRA_ENDPOINTS))
	if err != nil {
		return nil, nil, err
	}
	catalog, err := endpoint.NewCatalog(strings.TrimRight(strings.TrimSpace(settings.Get(config.DEFAULT_ENDPOINT)), "/"), extra...)
	if err != nil {
		return nil, nil, err
	}
	policy, err := attempt.ParsePolicy(settings.Get(config.ATTEMPT_POLICY))
	if err != nil {
		return nil, nil, err
	}
	timeout, err := settings.Duration(config.HTTP_TIMEOUT)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid %s: %w", config.HTTP_TIMEOUT, err)
	}

	tokens, closeTokens, err := openTokenStore(settings)
	if err != nil {
		return nil, nil, err
	}

	tokenKey := strings.TrimSpace(settings.Get(config.TOKEN_KEY))
	if tokenKey == "" {
		tokenKey = "auth_token"
	}

	var origin string
	if settings.Has(config.PROBE_ORIGIN) {
		origin = strings.TrimSpace(settings.Get(config.PROBE_ORIGIN))
		log.Printf("CORS check enabled: origin=%s", origin)
	}

	store := attempt.NewStore()
	a := &app{
		catalog:  catalog,
		sessions: session.NewManager(catalog, settings.IsTrue(config.SESSION_SECURE_COOKIE)),
		store:    store,
		attempts: attempt.NewController(store, attempt.Config{
			Timeout:  timeout,
			Tokens:   tokens,
			TokenKey: tokenKey,
			Policy:   policy,
			Origin:   origin,
		}),
		tokens:   tokens,
		tokenKey: tokenKey,
		live:     newLiveFeed(store),
		listen:   settings.Get(config.LISTEN_ADDR),
	}
	log.Printf("loginprobe configured: endpoints=%d default=%s policy=%s timeout=%s token_store=%s",
		len(catalog.All()), catalog.Default().Value, policy, timeout, settings.Get(config.TOKEN_STORE))
	return a, closeTokens, nil
}

func openTokenStore(settings *config.SettingsType) (tokenstore.Store, func(), error) {
	noop := func() {}
	switch backend := strings.ToLower(strings.TrimSpace(settings.Get(config.TOKEN_STORE))); backend {
	case "", "file":
		s, err := tokenstore.OpenFile(settings.Get(config.TOKEN_FILE))
		if err != nil {
			return nil, nil, err
		}
		return s, noop, nil
	case "memory":
		return tokenstore.NewMemory(), noop, nil
	case "redis":
		db, err := settings.Int(config.REDIS_DB)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid %s: %w", config.REDIS_DB, err)
		}
		s, err := tokenstore.NewRedis(tokenstore.RedisConfig{
			Addr:     settings.Get(config.REDIS_ADDR),
			Password: settings.Get(config.REDIS_PASSWORD),
			DB:       db,
		})
		if err != nil {
			return nil, nil, err
		}
		return s, func() {
			if err := s.Close(); err != nil {
				log.Printf("redis close failed: %v", err)
			}
		}, nil
	default:
		return nil, nil, fmt.Errorf("unknown token store %q", backend)
	}
}
