// Package spreadsheet implements the xlsx codecs: the initial inventory
// import, the bulk reconciliation import and the full results export.
// Files come from several upstream extract tools with inconsistent
// headers, so each logical column accepts an ordered list of synonyms.
package spreadsheet

import "strings"

// Column synonyms in priority order. Matching is case-insensitive; the
// first header present in the file wins.
var (
	emplacementCols = []string{"EMPLACEMENT"}
	articleCodeCols = []string{"N° PIECE", "Code", "Article", "SKU", "Référence"}
	descriptionCols = []string{"DESIGNATION", "Description", "Libellé", "Nom", "Name"}
	referenceCols   = []string{"REFERENCE", "Référence", "Ref"}
	unitCols        = []string{"UM", "Unité", "Unit"}
	priceCols       = []string{"PRIX", "Prix", "Price"}
	quantityCols    = []string{"Quantite theorique", "Quantité", "Stock", "Qty", "Quantity"}
)

func normalizeHeader(h string) string {
	return strings.ToLower(strings.TrimSpace(h))
}

// headerIndex maps normalized header names to their column position.
type headerIndex map[string]int

func buildHeaderIndex(header []string) headerIndex {
	idx := make(headerIndex, len(header))
	for col, h := range header {
		key := normalizeHeader(h)
		if key == "" {
			continue
		}
		if _, taken := idx[key]; !taken {
			idx[key] = col
		}
	}
	return idx
}

// find returns the column position of the first matching synonym, or -1.
func (idx headerIndex) find(synonyms []string) int {
	for _, s := range synonyms {
		if col, ok := idx[normalizeHeader(s)]; ok {
			return col
		}
	}
	return -1
}

// cell returns the trimmed value of row[col], tolerating short rows.
func cell(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[col])
}
