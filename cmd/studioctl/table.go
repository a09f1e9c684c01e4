package main

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"studio/internal/domain"
)

func renderTable(headers []string, rows [][]string) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.Style().Format.Header = text.FormatDefault

	header := make(table.Row, columns)
	for i := range headers {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := 0; i < columns; i++ {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	configs := make([]table.ColumnConfig, 0, columns)
	for i := 0; i < columns; i++ {
		configs = append(configs, table.ColumnConfig{Number: i + 1, Align: text.AlignLeft, AlignHeader: text.AlignLeft})
	}
	tw.SetColumnConfigs(configs)

	return tw.Render()
}

// videoRows lists the set video fields of a form.
func videoRows(v domain.VideoFields) [][]string {
	fields := []struct {
		name  string
		value *string
	}{
		{"status", v.MuxStatus},
		{"video type", v.VideoType},
		{"video path", v.VideoPath},
		{"upload id", v.MuxUploadID},
		{"asset id", v.MuxAssetID},
		{"playback id", v.MuxPlaybackID},
		{"video url", v.VideoURL},
		{"thumbnail url", v.ThumbnailURL},
	}
	rows := make([][]string, 0, len(fields))
	for _, f := range fields {
		if f.value == nil || *f.value == "" {
			continue
		}
		rows = append(rows, []string{f.name, *f.value})
	}
	return rows
}

func classRows(c domain.Class) [][]string {
	id := c.ID
	if id == "" {
		id = "(unsaved)"
	}
	rows := [][]string{
		{"class id", id},
		{"title", c.Title},
	}
	if c.Kind != "" {
		rows = append(rows, []string{"kind", string(c.Kind)})
	}
	if c.Difficulty != "" {
		rows = append(rows, []string{"difficulty", string(c.Difficulty)})
	}
	if c.Language != "" {
		rows = append(rows, []string{"language", c.Language})
	}
	return append(rows, videoRows(c.VideoFields)...)
}
