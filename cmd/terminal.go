package cmd

import (
	"context"
	"fmt"
	"net/http"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Zachkp/crtfolio/internal/chat"
	"github.com/Zachkp/crtfolio/internal/geo"
	"github.com/Zachkp/crtfolio/internal/log"
	"github.com/Zachkp/crtfolio/internal/session"
	"github.com/Zachkp/crtfolio/internal/storage"
	"github.com/Zachkp/crtfolio/internal/tui"
)

var terminalCmd = &cobra.Command{
	Use:     "terminal",
	Aliases: []string{"term", "t"},
	Short:   "Open the terminal portfolio",
	RunE:    runTerminal,
}

func init() {
	terminalCmd.Flags().String("server", "", "crtfolio server URL (overrides terminal.server_url)")
	terminalCmd.Flags().String("restore", "", "previous session handling: prompt, auto or never")
}

func runTerminal(cmd *cobra.Command, args []string) error {
	if s, _ := cmd.Flags().GetString("server"); s != "" {
		cfg.Terminal.ServerURL = s
	}
	if r, _ := cmd.Flags().GetString("restore"); r != "" {
		cfg.Terminal.Restore = r
	}
	policy, err := session.ParsePolicy(cfg.Terminal.Restore)
	if err != nil {
		return err
	}

	logger, err := log.NewFile(cfg.Terminal.LogFile, cfg.Log.Debug)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	db, err := storage.Open(cfg.Storage.Path)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	city := geo.WhereAmI(ctx, &http.Client{Timeout: 3 * time.Second}, cfg.Terminal.ServerURL)
	cancel()
	logger.Debug("visitor city", zap.String("city", city))

	model := tui.New(tui.Config{
		Controller: session.New(session.Options{
			City:         city,
			Restore:      policy,
			HistoryTurns: cfg.Chat.HistoryTurns,
		}),
		Chat:         chat.NewClient(cfg.Terminal.ServerURL),
		Store:        db,
		StorageKey:   cfg.Terminal.StorageKey,
		TypeDelay:    cfg.Terminal.TypeDelay,
		SaveDebounce: cfg.Terminal.SaveDebounce,
		Logger:       logger,
	})
	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running program: %w", err)
	}
	return nil
}
