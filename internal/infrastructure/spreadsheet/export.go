package spreadsheet

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"stocktake/internal/core/types"
	"stocktake/internal/domain/counting"
)

const exportSheet = "Inventaire"

// exportHeaders are the fixed columns followed by three per-session
// columns for every counting round.
var exportHeaders = []string{
	"Emplacement",
	"Code Article",
	"Description",
	"Référence",
	"Unité Mesure",
	"Prix Unitaire",
	"Stock Initial",
	"Stock Actuel",
}

var frPrinter = message.NewPrinter(language.French)

// formatAmount renders a monetary value for the export: French digit
// grouping with the local currency suffix, e.g. "1 234,5 DA".
func formatAmount(m types.Money) string {
	f, _ := m.Float64()
	return frPrinter.Sprintf("%v DA", f)
}

// WriteItems renders the full inventory state as an xlsx workbook.
// Uncounted sessions stay blank, matching the files operators are used
// to receiving from the previous manual process.
func WriteItems(w io.Writer, items []*counting.Item) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(exportSheet)
	if err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	_ = f.DeleteSheet("Sheet1")

	headers := make([]string, 0, len(exportHeaders)+counting.MaxSessions*3+1)
	headers = append(headers, exportHeaders...)
	for s := 1; s <= counting.MaxSessions; s++ {
		headers = append(headers,
			fmt.Sprintf("Comptage %d", s),
			fmt.Sprintf("Écart Qté %d", s),
			fmt.Sprintf("Écart Val %d", s),
		)
	}
	headers = append(headers, "Dernière MAJ")

	for col, h := range headers {
		cellRef, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return fmt.Errorf("header cell: %w", err)
		}
		if err := f.SetCellValue(exportSheet, cellRef, h); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}

	for rowN, item := range items {
		values := make([]any, 0, len(headers))
		values = append(values,
			item.Emplacement,
			item.ArticleCode,
			item.Description,
			item.Reference,
			item.Unit,
			priceValue(item),
			item.InitialStock.Compact(),
			item.CurrentStock.Compact(),
		)
		for s := 1; s <= counting.MaxSessions; s++ {
			r := item.Result(s)
			if r.Counting == nil {
				values = append(values, "", "", "")
				continue
			}
			valueVariance := ""
			if r.ValueVariance != nil && !r.ValueVariance.IsZero() {
				valueVariance = formatAmount(*r.ValueVariance)
			}
			values = append(values, r.Counting.Compact(), r.Variance.Compact(), valueVariance)
		}
		values = append(values, item.LastUpdated.Format("02/01/2006 15:04:05"))

		for col, v := range values {
			cellRef, err := excelize.CoordinatesToCellName(col+1, rowN+2)
			if err != nil {
				return fmt.Errorf("data cell: %w", err)
			}
			if err := f.SetCellValue(exportSheet, cellRef, v); err != nil {
				return fmt.Errorf("write row %d: %w", rowN+1, err)
			}
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func priceValue(item *counting.Item) string {
	if item.Price == nil {
		return ""
	}
	return item.Price.String()
}

// ExportFileName builds the download name, e.g. "inventaire_2026-03-15.xlsx".
func ExportFileName(date string) string {
	return fmt.Sprintf("inventaire_%s.xlsx", date)
}
