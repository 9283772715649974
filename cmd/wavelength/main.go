package main

import (
	"log"

	"github.com/spf13/cobra"

	"wavelength/internal/config"
)

const releaseVersion = "0.1.0"

func main() {
	log.SetFlags(0)
	if err := config.LoadDotEnv(".env"); err != nil {
		log.Printf("failed to load .env: %v", err)
	}
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	cobra.CheckErr(newRootCmd(&cfg).Execute())
}
