package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"newsbrief/internal/app"
	"newsbrief/internal/config"
	"newsbrief/internal/logger"
	"newsbrief/internal/metrics"
	"newsbrief/internal/summarize"
)

var (
	flagLimit       int
	flagDigestTitle string
	flagDigestLink  string
)

var rootCmd = &cobra.Command{
	Use:           "newsbrief",
	Short:         "Fetch news feeds and summarize articles with Claude",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var fetchCmd = &cobra.Command{
	Use:   "fetch <category>",
	Short: "List the current articles of a category",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}

		articles, err := a.FetchCategory(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		for i, article := range articles {
			fmt.Printf("%3d. [%s] %s\n", i+1, article.Source, article.Title)
			fmt.Printf("     %s\n", article.Date)
			if article.Description != "" {
				fmt.Printf("     %s\n", article.Description)
			}
			fmt.Printf("     %s\n", article.Link)
		}
		fmt.Printf("\n%d article(s)\n", len(articles))
		logger.Debug("run metrics", "stats", metrics.Global.GetStats())
		return nil
	},
}

var summarizeCmd = &cobra.Command{
	Use:   "summarize <category> <number>",
	Short: "Summarize the n-th article of a category (cached when possible)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}

		n, err := strconv.Atoi(args[1])
		if err != nil || n < 1 {
			return fmt.Errorf("article number must be a positive integer, got %q", args[1])
		}

		articles, err := a.FetchCategory(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if n > len(articles) {
			return fmt.Errorf("category %q has only %d article(s)", args[0], len(articles))
		}
		article := articles[n-1]

		summarized, err := a.SummarizeAndCache(cmd.Context(), article)
		if err != nil {
			// Failures are shown to the user but never persisted.
			if errors.Is(err, summarize.ErrAPIKeyNotSet) {
				fmt.Println(summarize.MsgAPIKeyNotSet)
				return nil
			}
			fmt.Printf("Error generating summary: %v\n", err)
			return nil
		}

		printSummary(summarized.Title, summarized.Source, summarized.Date, summarized.Link, summarized.Summary)
		logger.Debug("run metrics", "stats", metrics.Global.GetStats())
		return nil
	},
}

var recentCmd = &cobra.Command{
	Use:   "recent",
	Short: "Show recently cached summaries",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}

		records := a.Recent(flagLimit)
		if len(records) == 0 {
			fmt.Println("No cached summaries yet.")
			return nil
		}
		for _, record := range records {
			printSummary(record.Title, record.Source, record.Date, record.Link, record.Summary)
			fmt.Println()
		}
		return nil
	},
}

var digestCmd = &cobra.Command{
	Use:   "digest",
	Short: "Write cached summaries to stdout as an RSS feed",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}

		xml, err := a.Digest(flagDigestTitle, flagDigestLink, "Recent article summaries", flagLimit)
		if err != nil {
			return err
		}
		fmt.Println(string(xml))
		return nil
	},
}

var setKeyCmd = &cobra.Command{
	Use:   "set-key <api-key>",
	Short: "Store the Claude API key in .env for later runs",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if err := cfg.SaveAPIKey(args[0]); err != nil {
			return err
		}
		fmt.Println("API key saved to .env")
		return nil
	},
}

func init() {
	recentCmd.Flags().IntVar(&flagLimit, "limit", 10, "maximum number of summaries to show")
	digestCmd.Flags().IntVar(&flagLimit, "limit", 10, "maximum number of summaries to publish")
	digestCmd.Flags().StringVar(&flagDigestTitle, "title", "newsbrief summaries", "digest feed title")
	digestCmd.Flags().StringVar(&flagDigestLink, "link", "", "digest feed link")

	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(summarizeCmd)
	rootCmd.AddCommand(recentCmd)
	rootCmd.AddCommand(digestCmd)
	rootCmd.AddCommand(setKeyCmd)
}

func newApp() (*app.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger.Init(cfg.Debug)
	return app.New(cfg)
}

func printSummary(title, source, date, link, summary string) {
	fmt.Printf("Title: %s\n", title)
	fmt.Printf("Source: %s\n", source)
	fmt.Printf("Date: %s\n", date)
	fmt.Printf("URL: %s\n", link)
	fmt.Println()
	fmt.Println(strings.TrimSpace(summary))
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
