// Package xlsx writes dataset tables into a single Excel workbook, one sheet
// per table.
package xlsx

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/couchcryptid/streetlight-datagen/internal/domain"
	"github.com/xuri/excelize/v2"
)

// FileName is the workbook written under the output directory.
const FileName = "streetlights.xlsx"

const defaultSheet = "Sheet1"

// Workbook writes tables to <dir>/streetlights.xlsx. Sheets of tables not in
// a run are kept, so staged runs build up one workbook.
// It implements pipeline.Sink.
type Workbook struct {
	path   string
	logger *slog.Logger
}

// New creates a Workbook sink under dir.
func New(dir string, logger *slog.Logger) *Workbook {
	return &Workbook{path: filepath.Join(dir, FileName), logger: logger}
}

// Path is the workbook location.
func (w *Workbook) Path() string { return w.path }

// WriteTables replaces the sheet of every table in the run and saves the
// workbook.
func (w *Workbook) WriteTables(ctx context.Context, run domain.RunInfo, tables []domain.Table) error {
	if len(tables) == 0 {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(w.path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	f, fresh, err := w.open()
	if err != nil {
		return err
	}
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	for _, t := range tables {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := writeSheet(f, t, headerStyle); err != nil {
			return fmt.Errorf("sheet %s: %w", t.Name, err)
		}
		w.logger.Info("sheet written", "table", t.Name, "rows", len(t.Rows), "run_id", run.ID)
	}

	if fresh {
		if err := f.DeleteSheet(defaultSheet); err != nil {
			return fmt.Errorf("delete default sheet: %w", err)
		}
	}
	if idx, err := f.GetSheetIndex(tables[0].Name); err == nil && idx >= 0 {
		f.SetActiveSheet(idx)
	}

	if err := f.SaveAs(w.path); err != nil {
		return fmt.Errorf("save %s: %w", w.path, err)
	}
	return nil
}

// open loads the existing workbook or starts a new one.
func (w *Workbook) open() (*excelize.File, bool, error) {
	f, err := excelize.OpenFile(w.path)
	if err == nil {
		return f, false, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return excelize.NewFile(), true, nil
	}
	return nil, false, fmt.Errorf("open %s: %w", w.path, err)
}

// writeSheet recreates the sheet for t: header row styled and frozen, then
// one row per record.
func writeSheet(f *excelize.File, t domain.Table, headerStyle int) error {
	if err := resetSheet(f, t.Name); err != nil {
		return err
	}

	header := make([]any, len(t.Header))
	for i, h := range t.Header {
		header[i] = h
	}
	if err := f.SetSheetRow(t.Name, "A1", &header); err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(t.Header), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(t.Name, "A1", last, headerStyle); err != nil {
		return err
	}

	for i, r := range t.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := r.Values()
		row := make([]any, len(values))
		for j, v := range values {
			row[j] = v
		}
		if err := f.SetSheetRow(t.Name, cell, &row); err != nil {
			return fmt.Errorf("row %d: %w", i+2, err)
		}
	}

	return f.SetPanes(t.Name, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

// resetSheet leaves an empty sheet named name. An existing sheet is renamed
// aside before deletion because a workbook must keep at least one sheet.
func resetSheet(f *excelize.File, name string) error {
	idx, err := f.GetSheetIndex(name)
	if err != nil {
		return err
	}
	if idx >= 0 {
		const aside = "~replaced"
		if err := f.SetSheetName(name, aside); err != nil {
			return err
		}
		if _, err := f.NewSheet(name); err != nil {
			return err
		}
		return f.DeleteSheet(aside)
	}
	_, err = f.NewSheet(name)
	return err
}
