package commands

import (
	"log/slog"
	"time"

	"catalogsync/lib/scrapers/storefront/core"
	"catalogsync/lib/serviceutil"
	"catalogsync/lib/sheetsync"
	"catalogsync/services/pipeline"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var runCategories *[]string

func init() {
	runCategories = runCmd.Flags().StringSlice(
		"categories", nil,
		"Names of categories to crawl, everything discovered when empty.",
	)
	rootCmd.AddCommand(runCmd)
}

var runCmd = &cobra.Command{
	Use:   "run [--categories A,B,...]",
	Short: "Crawls the catalog and upserts every product into the sync spreadsheet.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		config, err := readConfig()
		if err != nil {
			serviceutil.Fatal("failed to read config", err)
		}

		client, err := core.NewClient(ctx, core.ClientOptions{BaseUrl: config.Site})
		if err != nil {
			serviceutil.Fatal("failed to initialize storefront client", err)
		}

		sheet, err := sheetsync.NewGoogleSheet(ctx, sheetsync.GoogleSheetOptions{
			SpreadsheetId:   config.SpreadsheetId,
			Worksheet:       config.Worksheet,
			CredentialsFile: config.ServiceAccountFile,
		})
		if err != nil {
			serviceutil.Fatal("failed to open spreadsheet", err)
		}
		store, err := sheetsync.Open(ctx, sheet)
		if err != nil {
			serviceutil.Fatal("failed to initialize sync store", err)
		}

		service := pipeline.NewService(client, store, pipeline.Options{
			Site:            config.Site,
			LoginUrl:        config.LoginUrl,
			Username:        config.Username,
			Password:        config.Password,
			MaxListingPages: config.MaxListingPages,
			BackupDir:       config.BackupDir,
		})

		t1 := time.Now()
		summary, err := service.Run(ctx, *runCategories)
		printSummary(summary)
		if err != nil {
			serviceutil.Fatal("pipeline failed", err)
		}
		slog.Info("crawl time", "seconds", time.Since(t1).Seconds())
	},
}

func printSummary(summary pipeline.Summary) {
	t := newTable()
	t.AppendHeader(table.Row{"category", "products", "inserted", "updated", "skipped", "failed"})
	for _, tally := range summary.Tallies {
		t.AppendRow(table.Row{
			tally.Category, tally.Products,
			tally.Inserted, tally.Updated, tally.Skipped, tally.Failed,
		})
	}
	t.Render()

	slog.Info(
		"run complete",
		"records", summary.Records,
		"authenticated", summary.Authenticated,
		"backup", summary.BackupPath,
	)
}
