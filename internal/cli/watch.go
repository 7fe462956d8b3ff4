package cli

import (
	"github.com/spf13/cobra"

	"pricewatch/internal/app"
)

var (
	notifyFlags criteriaFlags

	importTo     string
	importDryRun bool
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Reload the dataset daily and push digests",
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().Watch(cmd.Context())
	},
}

var notifyCmd = &cobra.Command{
	Use:   "notify",
	Short: "Push one digest of the qualifying ASINs now",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := app.NotifyOptions{}
		if anyChanged(cmd, "group", "volatility", "category", "subtype") {
			c, err := notifyFlags.criteria()
			if err != nil {
				return err
			}
			opts.Criteria = &c
		}
		return getApp().Notify(cmd.Context(), opts)
	},
}

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Copy the dataset file into a SQLite file or PostgreSQL table",
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().Import(cmd.Context(), app.ImportOptions{To: importTo, DryRun: importDryRun})
	},
}

func anyChanged(cmd *cobra.Command, names ...string) bool {
	for _, name := range names {
		if cmd.Flags().Changed(name) {
			return true
		}
	}
	return false
}

func init() {
	notifyFlags.register(notifyCmd)

	importCmd.Flags().StringVar(&importTo, "to", "", "SQLite file path, or \"postgres\" to use database.dsn")
	importCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "Load and count rows without writing")
}
