package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/aussiebroadwan/spoutbreeze/internal/frontend/store"
	"github.com/aussiebroadwan/spoutbreeze/internal/frontend/store/drivers/sqlite"
	"github.com/aussiebroadwan/spoutbreeze/pkg/authflow"
	"github.com/aussiebroadwan/spoutbreeze/pkg/cryptox"
	"github.com/aussiebroadwan/spoutbreeze/pkg/spoutbreeze"
)

// Info strings for the sealers derived from the master key.
const (
	credentialsSealInfo = "spoutbreeze/credentials"
	cookiesSealInfo     = "spoutbreeze/cookies"
)

const memoryDatabase = ":memory:"

// Session is one credential context: the persisted state plus the clients
// built on top of it. The web front-end and every CLI command open one.
type Session struct {
	Store *sqlite.Store
	Auth  *authflow.Client
	API   *spoutbreeze.Client

	cfg   Config
	jar   *store.PersistentJar // nil in token mode
	creds authflow.CredentialStore
}

// OpenSession opens the database, applies migrations, and builds the auth
// and API clients. Extra options are applied after the defaults, so callers
// choose the navigator.
func OpenSession(ctx context.Context, cfg Config, logger *slog.Logger, opts ...authflow.Option) (*Session, error) {
	st, err := openStore(cfg.DatabaseFile)
	if err != nil {
		return nil, err
	}

	s, err := newSession(ctx, cfg, st, logger, opts...)
	if err != nil {
		_ = st.Close()
		return nil, err
	}
	return s, nil
}

func openStore(file string) (*sqlite.Store, error) {
	dsn := memoryDatabase
	if file != memoryDatabase {
		dsn = fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", file)
	}

	st, err := sqlite.NewStore(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	if err := st.ApplyMigrations(); err != nil {
		_ = st.Close()
		return nil, fmt.Errorf("failed to apply database migrations: %w", err)
	}
	return st, nil
}

func newSession(ctx context.Context, cfg Config, st *sqlite.Store, logger *slog.Logger, opts ...authflow.Option) (*Session, error) {
	master, err := masterKey(cfg)
	if err != nil {
		return nil, err
	}

	s := &Session{Store: st, cfg: cfg}
	hc := &http.Client{Timeout: cfg.HTTPTimeout}

	authCfg := cfg.AuthConfig()
	switch authCfg.Mode {
	case authflow.ModeToken:
		sealer, err := cryptox.NewSealer(master, credentialsSealInfo)
		if err != nil {
			return nil, err
		}
		s.creds = store.NewSealedCredentialStore(st, sealer, cfg.Profile)
	default:
		sealer, err := cryptox.NewSealer(master, cookiesSealInfo)
		if err != nil {
			return nil, err
		}
		jar, err := store.NewPersistentJar(ctx, st, sealer, logger)
		if err != nil {
			return nil, err
		}
		hc.Jar = jar
		s.jar = jar
		s.creds = authflow.JarCredentials{Jar: jar}
	}

	base := []authflow.Option{
		authflow.WithHTTPClient(hc),
		authflow.WithCredentialStore(s.creds),
		authflow.WithVerifierStore(store.NewVerifierStore(st, cfg.VerifierTTL)),
		authflow.WithLogger(logger),
	}
	ac, err := authflow.New(authCfg, append(base, opts...)...)
	if err != nil {
		return nil, err
	}
	s.Auth = ac

	s.API = spoutbreeze.NewFromAuth(ac,
		spoutbreeze.WithPublicClient(&http.Client{Timeout: cfg.HTTPTimeout}),
		spoutbreeze.WithLogger(logger),
	)
	return s, nil
}

// masterKey resolves the sealing secret. An in-memory database without an
// explicit key gets a random one, since nothing outlives the process.
func masterKey(cfg Config) ([]byte, error) {
	if cfg.DatabaseFile == memoryDatabase && cfg.MasterKey == "" {
		key, err := cryptox.GenerateToken(cryptox.TokenSize512)
		if err != nil {
			return nil, err
		}
		return []byte(key), nil
	}

	key, err := cryptox.LoadMasterKey(cfg.MasterKey, cfg.MasterKeyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load master key: %w", err)
	}
	return key, nil
}

// AccessToken returns the current access token: the stored credential in
// token mode, the access cookie in cookie mode.
func (s *Session) AccessToken(ctx context.Context) (string, bool) {
	if s.jar == nil {
		creds, err := s.creds.Get(ctx)
		if err != nil || creds.AccessToken == "" {
			return "", false
		}
		return creds.AccessToken, true
	}

	u, err := url.Parse(s.cfg.APIURL)
	if err != nil {
		return "", false
	}
	for _, c := range s.jar.Cookies(u) {
		if c.Name == authflow.AccessCookie && c.Value != "" {
			return c.Value, true
		}
	}
	return "", false
}

// Close releases the database.
func (s *Session) Close() error {
	return s.Store.Close()
}
