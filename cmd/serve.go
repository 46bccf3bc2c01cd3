package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Zachkp/crtfolio/internal/catalog"
	"github.com/Zachkp/crtfolio/internal/chat"
	"github.com/Zachkp/crtfolio/internal/config"
	"github.com/Zachkp/crtfolio/internal/geo"
	"github.com/Zachkp/crtfolio/internal/log"
	"github.com/Zachkp/crtfolio/internal/persona"
	"github.com/Zachkp/crtfolio/internal/server"
	"github.com/Zachkp/crtfolio/internal/storage"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	logger, err := log.New(cfg.Log.Debug)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	gin.SetMode(cfg.Server.Mode)

	p, err := persona.Load(cfg.Persona.Path, logger)
	if err != nil {
		return err
	}
	if cfg.Persona.Watch {
		if err := p.Watch(ctx); err != nil {
			logger.Warn("persona watch disabled", zap.Error(err))
		}
	}

	provider, err := newProvider(cfg)
	if err != nil {
		return err
	}
	twin := chat.NewTwin(provider, p,
		chat.WithHistoryTurns(cfg.Chat.HistoryTurns),
		chat.WithTimeout(cfg.Chat.Timeout),
		chat.WithLogger(logger.Named("chat")))

	db, err := storage.Open(cfg.Storage.Path)
	if err != nil {
		return err
	}
	defer db.Close()

	opts := server.Options{
		Twin:          twin,
		Locator:       geo.NewLocator(cfg.Geo.Endpoint, cfg.Geo.CacheTTL, logger.Named("geo")),
		Visitors:      db,
		Catalog:       catalog.Default(),
		AdminToken:    cfg.Admin.Token,
		RatePerMinute: cfg.Chat.RatePerMinute,
		Logger:        logger,
	}
	if cfg.Contact.Enabled() {
		opts.Mailer = server.SMTPMailer{
			Host: cfg.Contact.SMTPHost,
			Port: cfg.Contact.SMTPPort,
			User: cfg.Contact.SMTPUser,
			Pass: cfg.Contact.SMTPPass,
			To:   cfg.Contact.To,
		}
	}

	logger.Info("starting crtfolio server",
		zap.String("provider", provider.Name()),
		zap.String("model", cfg.Model()),
		zap.String("mode", cfg.Server.Mode))
	return server.New(opts).Run(ctx, cfg.Server.Addr())
}

func newProvider(cfg config.Config) (chat.Provider, error) {
	switch cfg.Chat.Provider {
	case "gemini":
		return chat.NewGemini(cfg.Gemini.APIKey, cfg.Model()), nil
	case "openrouter":
		return chat.NewOpenRouter(cfg.OpenRouter.APIKey, cfg.Model()).
			WithBaseURL(cfg.OpenRouter.BaseURL).
			WithTimeout(cfg.Chat.Timeout).
			WithSite(cfg.Server.SiteURL, "crtfolio"), nil
	}
	return nil, fmt.Errorf("unknown chat provider %q", cfg.Chat.Provider)
}
