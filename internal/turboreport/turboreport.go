// SPDX-License-Identifier: BSD-3-Clause

// Package turboreport writes a spreadsheet comparing every eligible
// strategy's measured vs. estimated throughput for one input: bold
// header row, one sheet per run, fixed column widths.
package turboreport

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"turbomin/internal/turboresult"
)

// StrategyRun is one row of the benchmark comparison.
type StrategyRun struct {
	Strategy            turboresult.StrategyName
	EstimatedThroughput float64 // MB/s
	MeasuredThroughput  float64 // MB/s
	DurationMicros      int64
	OutputSize          int
}

const sheetName = "Strategies"

// WriteXLSX writes runs to path as a single-sheet workbook, one row per
// strategy, sorted by the order runs was given in (callers typically sort
// by measured throughput before calling this).
func WriteXLSX(path string, inputSize int, runs []StrategyRun) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return err
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})

	headers := []string{"Strategy", "Estimated MB/s", "Measured MB/s", "Duration (us)", "Output bytes"}
	for col, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		_ = f.SetCellValue(sheetName, cell, h)
	}
	headerRange, _ := excelize.CoordinatesToCellName(1, 1)
	headerRangeEnd, _ := excelize.CoordinatesToCellName(len(headers), 1)
	_ = f.SetCellStyle(sheetName, headerRange, headerRangeEnd, headerStyle)

	for i, run := range runs {
		row := i + 2
		values := []interface{}{
			string(run.Strategy),
			run.EstimatedThroughput,
			run.MeasuredThroughput,
			run.DurationMicros,
			run.OutputSize,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			_ = f.SetCellValue(sheetName, cell, v)
		}
	}

	titleCell, _ := excelize.CoordinatesToCellName(1, len(runs)+3)
	_ = f.SetCellValue(sheetName, titleCell, fmt.Sprintf("input_size=%d bytes", inputSize))

	for col := 1; col <= len(headers); col++ {
		name, _ := excelize.ColumnNumberToName(col)
		_ = f.SetColWidth(sheetName, name, name, 18)
	}

	return f.SaveAs(path)
}
