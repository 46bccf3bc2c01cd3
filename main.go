package main

import (
	"os"

	_ "github.com/joho/godotenv/autoload"

	"github.com/Zachkp/crtfolio/cmd"
)

var version = "dev"

func main() {
	cmd.SetVersion(version)
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
