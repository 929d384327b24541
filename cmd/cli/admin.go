package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"pmstandards/internal/auth"
	"pmstandards/internal/catalog"
	"pmstandards/pkg/utils"
)

var (
	tokenSubject string
	reloadToken  string
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Sign an admin token with PMSTD_ADMIN_SECRET and save it",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg := utils.LoadAuthConfig()
		ts := auth.TokenService{
			Secret:   []byte(cfg.JWTSecret),
			Issuer:   cfg.JWTIssuer,
			Duration: cfg.JWTDuration,
		}
		raw, exp, err := ts.Sign(tokenSubject)
		if err != nil {
			return err
		}
		if err := saveToken(tokenPath, raw); err != nil {
			return fmt.Errorf("save token: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✅ token saved to %s (expires %s)\n", tokenPath, exp.Format(time.RFC3339))
		return nil
	},
}

var reloadCmd = &cobra.Command{
	Use:   "reload",
	Short: "Re-ingest both CSV sources on the server",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		tok := reloadToken
		if tok == "" {
			var err error
			if tok, err = readToken(tokenPath); err != nil {
				return fmt.Errorf("no token (run `pmstd token` first): %w", err)
			}
		}
		return runReload(cmd.Context(), newClient(), cmd.OutOrStdout(), tok)
	},
}

func init() {
	tokenCmd.Flags().StringVar(&tokenSubject, "subject", "cli", "token subject")
	reloadCmd.Flags().StringVar(&reloadToken, "token", "", "admin bearer token (default: token file)")
	rootCmd.AddCommand(tokenCmd, reloadCmd)
}

func runReload(ctx context.Context, c *apiClient, out io.Writer, token string) error {
	var report catalog.ReloadReport
	if err := c.doJSON(ctx, http.MethodPost, "/api/reload", token, &report); err != nil {
		return err
	}
	for _, src := range []catalog.SourceReport{report.Standards, report.Comparisons} {
		fmt.Fprintf(out, "%-12s %-10s %5d records\n", src.Kind, src.Status, src.Records)
	}
	if report.Standards.Rejected > 0 {
		fmt.Fprintf(out, "%d standards rows skipped\n", report.Standards.Rejected)
	}
	return nil
}
