package spreadsheet

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"stocktake/internal/core/apperror"
	"stocktake/internal/core/types"
	"stocktake/internal/domain/counting"
)

// readRows opens an xlsx stream and returns the rows of its first sheet.
func readRows(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, apperror.NewImportFormat("unable to open spreadsheet", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, apperror.NewImportFormat("spreadsheet has no sheets", nil)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, apperror.NewImportFormat("unable to read sheet", err)
	}
	if len(rows) == 0 {
		return nil, apperror.NewImportFormat("spreadsheet is empty", nil)
	}
	return rows, nil
}

// parseQuantityOrZero is lenient on purpose: upstream extracts routinely
// contain blank or junk quantity cells, which count as zero stock rather
// than failing the whole import.
func parseQuantityOrZero(s string) types.Quantity {
	if s == "" {
		return 0
	}
	q, err := types.ParseQuantity(s)
	if err != nil {
		return 0
	}
	return q
}

func parsePrice(s string) *types.Money {
	if s == "" {
		return nil
	}
	// Same normalization quirks as quantities: comma decimals and
	// grouping spaces from French spreadsheets.
	q, err := types.ParseQuantity(s)
	if err != nil || q.IsZero() {
		return nil
	}
	p := q.Decimal()
	return &p
}

// ParseItems decodes an initial inventory file into fresh items. Rows
// keep their file order. Missing article codes and descriptions get
// positional fallbacks so a sparse extract still imports completely.
func ParseItems(r io.Reader, now time.Time) ([]*counting.Item, error) {
	rows, err := readRows(r)
	if err != nil {
		return nil, err
	}

	idx := buildHeaderIndex(rows[0])
	colEmplacement := idx.find(emplacementCols)
	colArticle := idx.find(articleCodeCols)
	colDescription := idx.find(descriptionCols)
	colReference := idx.find(referenceCols)
	colUnit := idx.find(unitCols)
	colPrice := idx.find(priceCols)
	colQuantity := idx.find(quantityCols)

	items := make([]*counting.Item, 0, len(rows)-1)
	for n, row := range rows[1:] {
		articleCode := cell(row, colArticle)
		if articleCode == "" {
			articleCode = fmt.Sprintf("ITEM-%d", n+1)
		}
		description := cell(row, colDescription)
		if description == "" {
			description = fmt.Sprintf("Article %d", n+1)
		}

		item := counting.NewItem(
			articleCode,
			cell(row, colEmplacement),
			description,
			parseQuantityOrZero(cell(row, colQuantity)),
			now,
		)
		item.Reference = cell(row, colReference)
		item.Unit = cell(row, colUnit)
		item.Price = parsePrice(cell(row, colPrice))
		items = append(items, item)
	}
	return items, nil
}

// ParseQuantityRows decodes a reconciliation file into key/quantity rows.
// Only the key columns and the quantity matter; everything else in the
// file is ignored.
func ParseQuantityRows(r io.Reader) ([]counting.QuantityRow, error) {
	rows, err := readRows(r)
	if err != nil {
		return nil, err
	}

	idx := buildHeaderIndex(rows[0])
	colEmplacement := idx.find(emplacementCols)
	colArticle := idx.find(articleCodeCols)
	colQuantity := idx.find(quantityCols)

	out := make([]counting.QuantityRow, 0, len(rows)-1)
	for n, row := range rows[1:] {
		articleCode := cell(row, colArticle)
		if articleCode == "" {
			articleCode = fmt.Sprintf("ITEM-%d", n+1)
		}
		out = append(out, counting.QuantityRow{
			ArticleCode: articleCode,
			Emplacement: cell(row, colEmplacement),
			Quantity:    parseQuantityOrZero(cell(row, colQuantity)),
		})
	}
	return out, nil
}
