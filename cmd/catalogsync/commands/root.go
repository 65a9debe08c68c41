package commands

import (
	"context"
	"fmt"
	"os"

	"catalogsync/lib/configutil"

	"github.com/spf13/cobra"
)

// Config carries everything the pipeline needs, constructed once here
// and passed into components explicitly.
type Config struct {
	Site               string `json:"site"`
	LoginUrl           string `json:"login_url"`
	Username           string `json:"username"`
	Password           string `json:"password"`
	SpreadsheetId      string `json:"spreadsheet_id"`
	Worksheet          string `json:"worksheet"`
	ServiceAccountFile string `json:"service_account_file"`
	MaxListingPages    int    `json:"max_listing_pages"`
	BackupDir          string `json:"backup_dir"`
}

var configFile *string

func readConfig() (Config, error) {
	config, err := configutil.ReadConfig[Config](*configFile)
	if err != nil {
		return Config{}, err
	}
	if config.BackupDir == "" {
		config.BackupDir = "backup_scrape"
	}
	return config, nil
}

var rootCmd = &cobra.Command{
	Use:   "catalogsync",
	Short: "catalogsync crawls a gated storefront catalog and syncs it into a spreadsheet.",
}

func init() {
	configFile = rootCmd.PersistentFlags().String("config", "config.json5", "Path to the configuration file.")
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
