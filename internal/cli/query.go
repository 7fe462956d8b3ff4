package cli

import (
	"github.com/spf13/cobra"

	"pricewatch/internal/app"
	"pricewatch/internal/volatility"
)

// criteriaFlags holds the four filter selections shared by several commands.
type criteriaFlags struct {
	group    string
	mode     string
	category string
	subtype  string
}

func (f *criteriaFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.group, "group", volatility.All, "Product group: All, Lighting, Electrical")
	cmd.Flags().StringVar(&f.mode, "volatility", volatility.All, "Volatility type: All, 3-day-5pct, 5-day-10pct, Both")
	cmd.Flags().StringVar(&f.category, "category", volatility.All, "Tertiary category")
	cmd.Flags().StringVar(&f.subtype, "subtype", volatility.All, "Item subtype")
}

func (f *criteriaFlags) criteria() (volatility.Criteria, error) {
	return app.ParseCriteria(f.group, f.mode, f.category, f.subtype)
}

var queryFlags criteriaFlags

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Print the volatility report for the latest date",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := queryFlags.criteria()
		if err != nil {
			return err
		}
		return getApp().Query(cmd.Context(), app.QueryOptions{Criteria: c})
	},
}

var optionsFlags criteriaFlags

var optionsCmd = &cobra.Command{
	Use:   "options",
	Short: "List the filter choices available for the current selection",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := optionsFlags.criteria()
		if err != nil {
			return err
		}
		return getApp().Options(cmd.Context(), app.OptionsOptions{Criteria: c})
	},
}

func init() {
	queryFlags.register(queryCmd)
	optionsFlags.register(optionsCmd)
}
