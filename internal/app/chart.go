package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"pricewatch/internal/dataset"
)

// Chart renders one ASIN's settled price history as a PNG.
func (a *App) Chart(ctx context.Context, opts ChartOptions) error {
	asin := strings.TrimSpace(opts.ASIN)
	if asin == "" {
		return errors.New("--asin must be provided")
	}
	if opts.PNGPath == "" {
		opts.PNGPath = asin + ".png"
	}

	svc, err := a.loadService(ctx)
	if err != nil {
		return err
	}

	history, err := svc.History(ctx, asin)
	if err != nil {
		return err
	}
	if len(history) == 0 {
		return fmt.Errorf("no observations for ASIN %s", asin)
	}

	a.Logger.Info().Str("asin", asin).Int("points", len(history)).Str("path", opts.PNGPath).Msg("rendering chart")
	return writeHistoryPNG(opts.PNGPath, asin, history, a.Config.Export.ChartWidth, a.Config.Export.ChartHeight)
}

func writeHistoryPNG(path, asin string, history []dataset.Observation, width, height int) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	x := make([]time.Time, 0, len(history))
	y := make([]float64, 0, len(history))
	var flagX []time.Time
	var flagY []float64
	for _, o := range history {
		price := o.SettledPrice.InexactFloat64()
		// History is date ordered; a repeated date keeps its later row.
		if n := len(x); n > 0 && x[n-1].Equal(o.Date) {
			y[n-1] = price
		} else {
			x = append(x, o.Date)
			y = append(y, price)
		}
		if o.Flag3Day5Pct || o.Flag5Day10Pct {
			flagX = append(flagX, o.Date)
			flagY = append(flagY, price)
		}
	}

	// go-chart cannot draw a zero-width range.
	if len(x) == 1 {
		x = append([]time.Time{x[0].AddDate(0, 0, -1)}, x...)
		y = append([]float64{y[0]}, y...)
	}
	low, high := y[0], y[0]
	for _, v := range y {
		low = min(low, v)
		high = max(high, v)
	}
	pad := (high - low) * 0.1
	if pad == 0 {
		pad = max(high*0.1, 1)
	}

	priceFormatter := func(v interface{}) string {
		return chart.FloatValueFormatterWithFormat(v, "%.2f")
	}
	graph := chart.Chart{
		Title:  asin + " settled price",
		Width:  width,
		Height: height,
		Background: chart.Style{
			Padding: chart.Box{Top: 40},
		},
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeDateValueFormatter,
		},
		YAxis: chart.YAxis{
			Name:           "Settled price",
			ValueFormatter: priceFormatter,
			Range:          &chart.ContinuousRange{Min: max(low-pad, 0), Max: high + pad},
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Name:    "Settled price",
				XValues: x,
				YValues: y,
			},
		},
	}
	if len(flagX) > 0 {
		graph.Series = append(graph.Series, chart.TimeSeries{
			Name: "Volatility flag",
			Style: chart.Style{
				StrokeWidth: chart.Disabled,
				DotWidth:    5,
				DotColor:    drawing.ColorRed,
			},
			XValues: flagX,
			YValues: flagY,
		})
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return graph.Render(chart.PNG, file)
}
