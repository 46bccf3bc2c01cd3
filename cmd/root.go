// Package cmd holds the crtfolio command line.
package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Zachkp/crtfolio/internal/config"
)

func init() {
	// Query the terminal background before any bubbletea program starts so
	// the OSC 11 reply does not land in the input line.
	_ = lipgloss.HasDarkBackground()
}

var (
	version = "dev"
	cfgFile string
	cfg     config.Config
)

var rootCmd = &cobra.Command{
	Use:   "crtfolio",
	Short: "A retro terminal portfolio with a digital twin you can talk to",
	Long: `crtfolio serves a portfolio as a CRT-style terminal. "crtfolio serve" runs the
HTTP side (chat, resume, visitor stats); "crtfolio terminal" is the interactive
client.`,
	Version:           version,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: ./crtfolio.yaml or ~/.config/crtfolio/config.yaml)")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	_ = viper.BindPFlag("log.debug", rootCmd.PersistentFlags().Lookup("debug"))

	rootCmd.AddCommand(serveCmd, terminalCmd)
}

func initConfig() {
	config.Bind(viper.GetViper())

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		// Config lookup order:
		// 1. ./crtfolio.yaml
		// 2. ~/.config/crtfolio/config.yaml
		if _, err := os.Stat("crtfolio.yaml"); err == nil {
			viper.SetConfigFile("crtfolio.yaml")
		} else {
			home, _ := os.UserHomeDir()
			viper.AddConfigPath(filepath.Join(home, ".config", "crtfolio"))
			viper.SetConfigName("config")
			viper.SetConfigType("yaml")
		}
	}
}

func loadConfig(cmd *cobra.Command, args []string) error {
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("reading config: %w", err)
		}
	}
	var err error
	cfg, err = config.Load(viper.GetViper())
	return err
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version string (called from main with ldflags)
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}
