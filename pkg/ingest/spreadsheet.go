package ingest

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"

	"legal-assistant-be/internal/constant"
)

var zipMagic = []byte("PK\x03\x04")

// extractFirstSheet converts the first worksheet to CSV. The container is
// sniffed rather than trusted from the extension since .xls files saved by
// newer tools are often OOXML underneath.
func extractFirstSheet(data []byte) (string, error) {
	var (
		rows [][]string
		err  error
	)
	if bytes.HasPrefix(data, zipMagic) {
		rows, err = openXMLRows(data)
	} else {
		rows, err = biffRows(data)
	}
	if err != nil {
		return "", err
	}

	return rowsToCSV(rows)
}

func openXMLRows(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("xlsx: open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, &Error{Kind: KindEmptyWorkbook, Message: constant.IngestEmptyWorkbook}
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("xlsx: read sheet %q: %w", sheets[0], err)
	}
	return rows, nil
}

func biffRows(data []byte) ([][]string, error) {
	wb, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, fmt.Errorf("xls: open workbook: %w", err)
	}
	if wb.NumSheets() == 0 {
		return nil, &Error{Kind: KindEmptyWorkbook, Message: constant.IngestEmptyWorkbook}
	}

	sheet := wb.GetSheet(0)
	if sheet == nil {
		return nil, &Error{Kind: KindEmptyWorkbook, Message: constant.IngestEmptyWorkbook}
	}

	rows := make([][]string, 0, int(sheet.MaxRow)+1)
	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := sheet.Row(i)
		if row == nil {
			rows = append(rows, nil)
			continue
		}
		cells := make([]string, 0, row.LastCol())
		for j := 0; j < row.LastCol(); j++ {
			cells = append(cells, row.Col(j))
		}
		rows = append(rows, cells)
	}
	return rows, nil
}

// rowsToCSV pads every row to the widest one so the column count is stable.
func rowsToCSV(rows [][]string) (string, error) {
	width := 0
	for _, r := range rows {
		width = max(width, len(r))
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	for _, r := range rows {
		record := make([]string, width)
		copy(record, r)
		if err := w.Write(record); err != nil {
			return "", fmt.Errorf("csv: write row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("csv: flush: %w", err)
	}

	return strings.TrimRight(buf.String(), "\n"), nil
}
