package main

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"pmstandards/internal/compare"
	"pmstandards/internal/dashboard"
	"pmstandards/internal/search"
	"pmstandards/pkg/models"
)

var (
	browseJSON   bool
	searchLimit  int
	searchRemote bool
)

var standardsCmd = &cobra.Command{
	Use:   "standards [topic]",
	Short: "List excerpts, optionally only those of one topic",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		topic := ""
		if len(args) == 1 {
			topic = args[0]
		}
		return runStandards(cmd.Context(), newClient(), cmd.OutOrStdout(), topic)
	},
}

var topicsCmd = &cobra.Command{
	Use:   "topics",
	Short: "List the distinct topics",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		var topics []string
		if err := newClient().getJSON(cmd.Context(), "/api/topics", &topics); err != nil {
			return err
		}
		if browseJSON {
			return printJSON(cmd.OutOrStdout(), topics)
		}
		for _, t := range topics {
			fmt.Fprintln(cmd.OutOrStdout(), t)
		}
		return nil
	},
}

var compareCmd = &cobra.Command{
	Use:   "compare <topic>",
	Short: "Compare one topic across the four standards",
	Long:  "Resolves a loose topic keyword (e.g. risk-uncertainty) against the known topics, then lays its excerpts out per standard.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCompare(cmd.Context(), newClient(), cmd.OutOrStdout(), strings.Join(args, " "))
	},
}

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Keyword search over all excerpts",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSearch(cmd.Context(), newClient(), cmd.OutOrStdout(), strings.Join(args, " "), searchLimit)
	},
}

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Show totals and per-framework counts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		var s dashboard.Stats
		if err := newClient().getJSON(cmd.Context(), "/api/dashboard", &s); err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if browseJSON {
			return printJSON(out, s)
		}
		fmt.Fprintf(out, "excerpts: %d  topics: %d  comparisons: %d\n", s.TotalStandards, s.TotalTopics, s.TotalComparisons)
		for _, f := range s.Frameworks {
			fmt.Fprintf(out, "  %-12s %d\n", f.Framework, f.Excerpts)
		}
		fmt.Fprintf(out, "excerpt length: mean %.1f, median %.1f, max %.0f\n",
			s.ExcerptLength.Mean, s.ExcerptLength.Median, s.ExcerptLength.Max)
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{standardsCmd, topicsCmd, compareCmd, searchCmd, dashboardCmd} {
		c.Flags().BoolVar(&browseJSON, "json", false, "print raw JSON")
		rootCmd.AddCommand(c)
	}
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", search.DefaultLimit, "maximum results")
	searchCmd.Flags().BoolVar(&searchRemote, "remote", false, "query /api/search instead of indexing locally")
}

func runStandards(ctx context.Context, c *apiClient, out io.Writer, topic string) error {
	path := "/api/standards"
	if topic != "" {
		path = "/api/comparison/" + url.PathEscape(topic)
	}
	var items []models.StandardExcerpt
	if err := c.getJSON(ctx, path, &items); err != nil {
		return err
	}
	if browseJSON {
		return printJSON(out, items)
	}
	for _, it := range items {
		fmt.Fprintf(out, "[%s] %s (p. %s)\n  %s\n", it.Standard, it.Topic, pageOrDash(it.Page), it.Excerpt)
	}
	return nil
}

func runCompare(ctx context.Context, c *apiClient, out io.Writer, keyword string) error {
	var topics []string
	if err := c.getJSON(ctx, "/api/topics", &topics); err != nil {
		return err
	}
	topic, ok := compare.ResolveTopic(keyword, topics)
	if !ok {
		return fmt.Errorf("no topic matches %q", keyword)
	}

	var rows []models.StandardExcerpt
	if err := c.getJSON(ctx, "/api/comparison/"+url.PathEscape(topic), &rows); err != nil {
		return err
	}
	v := compare.Build(topic, rows)
	if browseJSON {
		return printJSON(out, v)
	}

	fmt.Fprintf(out, "%s\n%d standards, %d excerpts, %d page references\n\n",
		v.Topic, v.Stats.Standards, v.Stats.Excerpts, v.Stats.PageReferences)
	for _, card := range v.Cards {
		fmt.Fprintf(out, "== %s (%s)\n", card.Standard, card.Badge)
		if card.NoData {
			fmt.Fprintf(out, "  %s\n\n", card.Placeholder)
			continue
		}
		for _, e := range card.Entries {
			fmt.Fprintf(out, "  %s\n", e.Excerpt)
			if e.Page != "" {
				fmt.Fprintf(out, "    p. %s  %s\n", e.Page, e.PageLink)
			}
		}
		fmt.Fprintln(out)
	}
	fmt.Fprintf(out, "Similarities: %s\nDifferences: %s\n", v.Similarities, v.Differences)
	return nil
}

// runSearch indexes /api/standards locally, or asks the server with --remote.
func runSearch(ctx context.Context, c *apiClient, out io.Writer, query string, limit int) error {
	var results []search.Result
	if searchRemote {
		path := "/api/search?q=" + url.QueryEscape(query) + "&limit=" + strconv.Itoa(limit)
		if err := c.getJSON(ctx, path, &results); err != nil {
			return err
		}
	} else {
		var items []models.StandardExcerpt
		if err := c.getJSON(ctx, "/api/standards", &items); err != nil {
			return err
		}
		results = search.Build(items).Search(query, limit)
	}

	if browseJSON {
		return printJSON(out, results)
	}
	if len(results) == 0 {
		fmt.Fprintf(out, "no results for %q\n", query)
		return nil
	}
	for _, r := range results {
		fmt.Fprintf(out, "%3d  [%s] %s (p. %s)\n     %s\n",
			r.Score, r.Record.Standard, r.Record.Topic, pageOrDash(r.Record.Page), r.Snippet)
	}
	return nil
}

func pageOrDash(p string) string {
	if compare.HasPage(p) {
		return p
	}
	return "-"
}
