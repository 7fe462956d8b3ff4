package cli

import (
	"github.com/spf13/cobra"

	"pricewatch/internal/app"
)

var (
	exportFlags    criteriaFlags
	exportCSVPath  string
	exportXLSXPath string

	chartASIN    string
	chartPNGPath string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the volatility report as CSV and/or XLSX",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := exportFlags.criteria()
		if err != nil {
			return err
		}
		return getApp().Export(cmd.Context(), app.ExportOptions{
			Criteria: c,
			CSVPath:  exportCSVPath,
			XLSXPath: exportXLSXPath,
		})
	},
}

var chartCmd = &cobra.Command{
	Use:   "chart",
	Short: "Render one ASIN's settled price history as PNG",
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().Chart(cmd.Context(), app.ChartOptions{ASIN: chartASIN, PNGPath: chartPNGPath})
	},
}

func init() {
	exportFlags.register(exportCmd)
	exportCmd.Flags().StringVar(&exportCSVPath, "csv", "", "Path to write CSV")
	exportCmd.Flags().StringVar(&exportXLSXPath, "xlsx", "", "Path to write XLSX")

	chartCmd.Flags().StringVar(&chartASIN, "asin", "", "ASIN to chart")
	chartCmd.Flags().StringVar(&chartPNGPath, "png", "", "Path to write PNG (default <ASIN>.png)")
}
