// Package cmd implements the photo-declutter CLI.
package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "photo-declutter",
	Short: "Find and clean up near-duplicate photos",
	Long: `Photo Declutter analyzes batches of photos with a CLIP embedding model,
groups visually similar shots, scores their quality, and helps you pick
the keepers. Run the web server for the interactive workflow or use the
analyze command for a one-shot report on a directory.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
}

func initConfig() {
	// .env file is optional, don't fail if not found
	_ = godotenv.Load()
}
