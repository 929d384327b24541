// Package main is the pmstd command-line client for the standards API.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

const defaultBaseURL = "http://localhost:8080"

var (
	apiBaseURL string
	tokenPath  string
)

var rootCmd = &cobra.Command{
	Use:           "pmstd",
	Short:         "Browse and compare project-management standards",
	Long:          "pmstd queries a running pmstandards API: list excerpts, compare a topic across PMBOK 7, PRINCE2, ISO 21500 and ISO 21502, search, and trigger re-ingestion.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiBaseURL, "api", envOr("PMSTD_API_URL", defaultBaseURL), "API base URL")
	rootCmd.PersistentFlags().StringVar(&tokenPath, "token-file", defaultTokenPath(), "admin token file path")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newClient() *apiClient {
	return &apiClient{
		BaseURL: apiBaseURL,
		HTTP:    &http.Client{Timeout: 15 * time.Second},
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
