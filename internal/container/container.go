package container

import (
	"fmt"
	"log/slog"

	"github.com/joshua-takyi/eventmap/internal/assets"
	"github.com/joshua-takyi/eventmap/internal/config"
	"github.com/joshua-takyi/eventmap/internal/connect"
	"github.com/joshua-takyi/eventmap/internal/mapsync"
	"github.com/joshua-takyi/eventmap/internal/metrics"
	"github.com/joshua-takyi/eventmap/internal/services"
)

// Container holds all application dependencies
type Container struct {
	Config  *config.Config
	Logger  *slog.Logger
	Metrics *metrics.Metrics
	Rules   *config.Rules

	EventsClient   *connect.EventsClient
	AssetLoader    *assets.Loader
	SearchService  *services.SearchService
	SessionService *services.SessionService
}

// NewContainer creates a new dependency injection container
func NewContainer(cfg *config.Config, logger *slog.Logger) (*Container, error) {
	rules, err := config.LoadRules(cfg.RulesFile)
	if err != nil {
		return nil, fmt.Errorf("load filter rules: %w", err)
	}
	m := metrics.New()

	events := connect.NewEventsClient(cfg.EventsAPIURL, cfg.EventsAPIKey, cfg.EventsAPITimeout)
	loader := assets.NewLoader(
		connect.NewAssetsClient(cfg.EventsAPITimeout),
		cfg.MapScriptURL, cfg.MapStyleURL, cfg.EventsAPITimeout,
		logger, m,
	)

	return &Container{
		Config:         cfg,
		Logger:         logger,
		Metrics:        m,
		Rules:          rules,
		EventsClient:   events,
		AssetLoader:    loader,
		SearchService:  services.NewSearchService(events, rules, cfg.DefaultRegion, logger, m),
		SessionService: services.NewSessionService(loader, mapsync.HighlightDelay, logger, m),
	}, nil
}
