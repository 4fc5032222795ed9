package spreadsheet

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"stocktake/internal/core/apperror"
	"stocktake/internal/core/types"
)

var importTime = time.Date(2026, 3, 15, 8, 0, 0, 0, time.UTC)

// buildWorkbook writes rows into an in-memory xlsx file.
func buildWorkbook(t *testing.T, rows [][]any) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	for rowN, row := range rows {
		for col, v := range row {
			cellRef, err := excelize.CoordinatesToCellName(col+1, rowN+1)
			if err != nil {
				t.Fatalf("cell name: %v", err)
			}
			if err := f.SetCellValue("Sheet1", cellRef, v); err != nil {
				t.Fatalf("set cell: %v", err)
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	return &buf
}

func TestParseItems(t *testing.T) {
	buf := buildWorkbook(t, [][]any{
		{"EMPLACEMENT", "N° PIECE", "DESIGNATION", "REFERENCE", "UM", "PRIX", "Quantite theorique"},
		{"A1", "FLT-100", "Filtre à huile", "REF-9", "PCE", "1250,50", "12"},
		{"B2", "BRK-200", "Plaquette de frein", "", "", "", "3,5"},
	})

	items, err := ParseItems(buf, importTime)
	if err != nil {
		t.Fatalf("ParseItems failed: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("want 2 items, got %d", len(items))
	}

	a := items[0]
	if a.ArticleCode != "FLT-100" || a.Emplacement != "A1" || a.Reference != "REF-9" || a.Unit != "PCE" {
		t.Errorf("unexpected item fields: %+v", a)
	}
	if a.InitialStock != types.NewQuantityFromInt(12) || a.CurrentStock != a.InitialStock {
		t.Errorf("stock: want 12/12, got %s/%s", a.InitialStock, a.CurrentStock)
	}
	if a.Price == nil || !a.Price.Equal(types.MustMoney("1250.5")) {
		t.Errorf("price with comma decimal: want 1250.5, got %v", a.Price)
	}

	b := items[1]
	if b.Price != nil {
		t.Errorf("missing price should stay nil, got %v", b.Price)
	}
	if b.InitialStock != types.NewQuantityFromFloat64(3.5) {
		t.Errorf("fractional quantity: want 3.5, got %s", b.InitialStock)
	}
}

func TestParseItems_SynonymHeaders(t *testing.T) {
	buf := buildWorkbook(t, [][]any{
		{"Emplacement", "Code", "Libellé", "Stock"},
		{"C3", "HSE-300", "Durite", "7"},
	})

	items, err := ParseItems(buf, importTime)
	if err != nil {
		t.Fatalf("ParseItems failed: %v", err)
	}
	if items[0].ArticleCode != "HSE-300" || items[0].Description != "Durite" {
		t.Errorf("synonym headers not matched: %+v", items[0])
	}
}

func TestParseItems_Fallbacks(t *testing.T) {
	buf := buildWorkbook(t, [][]any{
		{"EMPLACEMENT", "N° PIECE", "DESIGNATION", "Quantite theorique"},
		{"A1", "", "", "not-a-number"},
	})

	items, err := ParseItems(buf, importTime)
	if err != nil {
		t.Fatalf("ParseItems failed: %v", err)
	}

	item := items[0]
	if item.ArticleCode != "ITEM-1" {
		t.Errorf("article fallback: want ITEM-1, got %s", item.ArticleCode)
	}
	if item.Description != "Article 1" {
		t.Errorf("description fallback: want Article 1, got %s", item.Description)
	}
	if !item.InitialStock.IsZero() {
		t.Errorf("malformed quantity must default to zero, got %s", item.InitialStock)
	}
}

func TestParseItems_NotASpreadsheet(t *testing.T) {
	_, err := ParseItems(strings.NewReader("definitely not xlsx"), importTime)
	appErr, ok := apperror.AsAppError(err)
	if !ok {
		t.Fatalf("want AppError, got %v", err)
	}
	if appErr.Code != apperror.CodeImportFormat {
		t.Errorf("want %s, got %s", apperror.CodeImportFormat, appErr.Code)
	}
}

func TestParseQuantityRows(t *testing.T) {
	buf := buildWorkbook(t, [][]any{
		{"EMPLACEMENT", "N° PIECE", "Quantite theorique"},
		{"A1", "FLT-100", "42"},
		{"", "BRK-200", "oops"},
	})

	rows, err := ParseQuantityRows(buf)
	if err != nil {
		t.Fatalf("ParseQuantityRows failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("want 2 rows, got %d", len(rows))
	}
	if rows[0].Key() != "FLT-100_A1" {
		t.Errorf("key: want FLT-100_A1, got %s", rows[0].Key())
	}
	if rows[0].Quantity != types.NewQuantityFromInt(42) {
		t.Errorf("quantity: want 42, got %s", rows[0].Quantity)
	}
	if !rows[1].Quantity.IsZero() {
		t.Errorf("malformed quantity must default to zero, got %s", rows[1].Quantity)
	}
}
