// Package app wires configuration, the API client and the session stores.
package app

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bobmcallan/folio/internal/clients/folioapi"
	"github.com/bobmcallan/folio/internal/common"
	"github.com/bobmcallan/folio/internal/services/dashboard"
	"github.com/bobmcallan/folio/internal/services/market"
	"github.com/bobmcallan/folio/internal/services/portfolio"
	"github.com/bobmcallan/folio/internal/services/watchlist"
)

// App holds the initialized client, stores and services shared by the CLI commands.
type App struct {
	Config      *common.Config
	Logger      *common.Logger
	Session     *common.Session
	Client      *folioapi.Client
	Portfolios  *portfolio.Store
	Watchlists  *watchlist.Store
	Stocks      *market.Directory
	Dashboard   *dashboard.Service
	StartupTime time.Time
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// resolveConfigPath returns the config file to load: the given path, then
// FOLIO_CONFIG, then folio.toml next to the binary, then config/folio.toml.
func resolveConfigPath(configPath string) string {
	if configPath != "" {
		return configPath
	}
	if env := os.Getenv("FOLIO_CONFIG"); env != "" {
		return env
	}
	configPath = filepath.Join(getBinaryDir(), "folio.toml")
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return "config/folio.toml" // fallback for development
	}
	return configPath
}

// NewApp loads configuration and builds the client and stores.
// configPath may be empty, in which case the default resolution logic is used.
// A missing config file is not an error; defaults and environment apply.
func NewApp(configPath string) (*App, error) {
	config, err := LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	return New(config, common.NewLoggerFromConfig(config.Logging)), nil
}

// LoadConfig resolves and loads the configuration without building the App,
// so callers can apply flag overrides first.
func LoadConfig(configPath string) (*common.Config, error) {
	config, err := common.LoadConfig(resolveConfigPath(configPath))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return config, nil
}

// New builds an App from an already loaded configuration.
func New(config *common.Config, logger *common.Logger) *App {
	session := common.NewSession(config.Session.Token)
	if session.Authenticated() && session.Expired(time.Now()) {
		logger.Warn().Str("user", session.UserID).Msg("Session token has expired")
	}

	client := folioapi.NewClient(session,
		folioapi.WithBaseURL(config.API.BaseURL),
		folioapi.WithTimeout(config.API.GetTimeout()),
		folioapi.WithRateLimit(config.API.RateLimit),
		folioapi.WithLogger(logger),
	)

	portfolios := portfolio.NewStore(client, logger)
	watchlists := watchlist.NewStore(client, logger)

	a := &App{
		Config:      config,
		Logger:      logger,
		Session:     session,
		Client:      client,
		Portfolios:  portfolios,
		Watchlists:  watchlists,
		Stocks:      market.NewDirectory(client, logger, config.Cache.GetTTL(), config.Cache.GetCleanup()),
		Dashboard:   dashboard.NewService(client, portfolios, watchlists, logger, config.Dashboard.RecentTransactions),
		StartupTime: time.Now(),
	}

	logger.Debug().
		Str("api", config.API.BaseURL).
		Str("environment", config.Environment).
		Bool("authenticated", session.Authenticated()).
		Msg("Folio initialized")

	return a
}
