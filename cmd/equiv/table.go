package main

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

// tableSpec describes one rendered table. The title is printed on its own
// line above the table. Colours apply per cell and are only honoured when
// colorize is set.
type tableSpec struct {
	title    string
	headers  []string
	rows     [][]string
	aligns   []columnAlignment
	colors   map[int]func(cell string) text.Colors
	colorize bool
}

func renderTable(spec tableSpec) string {
	columns := len(spec.headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for i, h := range spec.headers {
		header[i] = h
	}
	tw.AppendHeader(header)

	for _, row := range spec.rows {
		r := make(table.Row, columns)
		for i := range columns {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	configs := make([]table.ColumnConfig, 0, columns)
	for i := range columns {
		cfg := table.ColumnConfig{Number: i + 1, Align: text.AlignLeft, AlignHeader: text.AlignLeft}
		if i < len(spec.aligns) && spec.aligns[i] == alignRight {
			cfg.Align = text.AlignRight
		}
		if pick, ok := spec.colors[i]; ok && spec.colorize {
			cfg.Transformer = func(val any) string {
				cell, _ := val.(string)
				return pick(cell).Sprint(cell)
			}
		}
		configs = append(configs, cfg)
	}
	tw.SetColumnConfigs(configs)

	if spec.title != "" {
		return spec.title + "\n" + tw.Render()
	}
	return tw.Render()
}
