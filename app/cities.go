package main

import (
	"fmt"
	"io"
	"slices"

	"github.com/deniskrds/tixplore-app/internal/scraper/sites"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var citiesCmd = &cobra.Command{
	Use:   "cities",
	Short: "Показывает список городов bubilet, например чтобы выбрать regionId для конфига.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, log, err := bootstrap()
		if err != nil {
			return err
		}

		cities, err := sites.NewBubilet(log, cfg.ScraperConfig).ListCities(cmd.Context())
		if err != nil {
			return err
		}

		renderCities(cmd.OutOrStdout(), cities)
		return nil
	},
}

// renderCities печатает города таблицей. Формат ответа bubilet не зафиксирован,
// поэтому в колонках объединение ключей всех записей в алфавитном порядке.
func renderCities(out io.Writer, cities []map[string]any) {
	var columns []string
	for _, city := range cities {
		for key := range city {
			if !slices.Contains(columns, key) {
				columns = append(columns, key)
			}
		}
	}
	slices.Sort(columns)

	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(out)

	header := make(table.Row, len(columns))
	for i, col := range columns {
		header[i] = col
	}
	t.AppendHeader(header)

	for _, city := range cities {
		row := make(table.Row, len(columns))
		for i, col := range columns {
			if v, ok := city[col]; ok && v != nil {
				row[i] = fmt.Sprint(v)
			}
		}
		t.AppendRow(row)
	}

	t.Render()
}
