package commands

import (
	"log/slog"
	"os"
	"sort"

	"catalogsync/lib/scrapers/storefront/catalog"
	"catalogsync/lib/scrapers/storefront/core"
	"catalogsync/lib/serviceutil"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(categoriesCmd)
}

func newTable() table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(os.Stdout)
	return t
}

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "Logs in and prints the storefront's category taxonomy.",
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
		// best effort: the taxonomy usually renders unauthenticated too
		if ok, err := client.Login(ctx, config.LoginUrl, config.Username, config.Password); err != nil || !ok {
			slog.Warn("login did not establish a session, taxonomy may be partial", "err", err)
		}

		categories, err := catalog.DiscoverCategories(ctx, client, config.Site)
		if err != nil {
			serviceutil.Fatal("failed to discover categories", err)
		}

		names := make([]string, 0, len(categories))
		for name := range categories {
			names = append(names, name)
		}
		sort.Strings(names)

		t := newTable()
		t.AppendHeader(table.Row{"category", "url"})
		for _, name := range names {
			t.AppendRow(table.Row{name, categories[name]})
		}
		t.Render()
	},
}
