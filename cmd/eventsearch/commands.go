package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/joshua-takyi/eventmap/internal/config"
	"github.com/joshua-takyi/eventmap/internal/connect"
	"github.com/joshua-takyi/eventmap/internal/models"
	"github.com/joshua-takyi/eventmap/internal/services"
	"github.com/spf13/cobra"
)

type searchOptions struct {
	Keyword     string
	StartDate   string
	EndDate     string
	Prefectures []string
	JSON        bool
	Verbose     bool
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "eventsearch",
		Short:        "Search upcoming in-person tech events",
		SilenceUsage: true,
	}
	addSearch(root)
	addRegions(root)
	return root
}

func addSearch(topLevel *cobra.Command) {
	o := &searchOptions{}

	cmd := &cobra.Command{
		Use:   "search [keyword...]",
		Short: "Fetch, filter and list events",
		Example: `
eventsearch search -p tokyo -p kanagawa go -beginner
eventsearch search --start 2024-06-01 --end 2024-06-07 --json
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				o.Keyword = strings.TrimSpace(o.Keyword + " " + strings.Join(args, " "))
			}
			return runSearch(cmd, o)
		},
	}
	// everything after the first keyword is a keyword, so "-term" exclusions
	// are not read as flags
	cmd.Flags().SetInterspersed(false)

	cmd.Flags().StringVarP(&o.Keyword, "keyword", "k", "", "keywords; prefix a term with - to exclude it")
	cmd.Flags().StringVar(&o.StartDate, "start", "", "first day (YYYY-MM-DD)")
	cmd.Flags().StringVar(&o.EndDate, "end", "", "last day (YYYY-MM-DD)")
	cmd.Flags().StringSliceVarP(&o.Prefectures, "prefecture", "p", nil, "region code, repeatable")
	cmd.Flags().BoolVar(&o.JSON, "json", false, "print the render payload as JSON")
	cmd.Flags().BoolVarP(&o.Verbose, "verbose", "v", false, "log pipeline details to stderr")

	topLevel.AddCommand(cmd)
}

func runSearch(cmd *cobra.Command, o *searchOptions) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	rules, err := config.LoadRules(cfg.RulesFile)
	if err != nil {
		return err
	}

	level := slog.LevelWarn
	if o.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	client := connect.NewEventsClient(cfg.EventsAPIURL, cfg.EventsAPIKey, cfg.EventsAPITimeout)
	ss := services.NewSearchService(client, rules, cfg.DefaultRegion, logger, nil)

	criteria := ss.Criteria(models.SearchForm{
		Keyword:     o.Keyword,
		StartDate:   o.StartDate,
		EndDate:     o.EndDate,
		Prefectures: o.Prefectures,
	})
	result := ss.Search(cmd.Context(), criteria)
	resp := models.NewSearchResponse(result)

	out := cmd.OutOrStdout()
	if o.JSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	}

	if result.Failed() {
		return fmt.Errorf("%s", result.ErrorMessage)
	}
	printEvents(out, resp)
	return nil
}

func addRegions(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "regions",
		Short: "List the selectable region codes",
		RunE: func(cmd *cobra.Command, args []string) error {
			rules, err := config.LoadRules(os.Getenv("RULES_FILE"))
			if err != nil {
				return err
			}
			for _, r := range rules.Regions {
				fmt.Fprintln(cmd.OutOrStdout(), r)
			}
			return nil
		},
	}
	topLevel.AddCommand(cmd)
}
