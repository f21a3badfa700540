package catalog

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/meridian-crm/meridian/internal/shared"
)

// Column-name variants seen in customer spreadsheets, normalised to the
// canonical field names used by itemFromImportRow.
var headerAliases = map[string]string{
	"description":      "description",
	"item":             "description",
	"name":             "description",
	"long description": "long_description",
	"long_description": "long_description",
	"details":          "long_description",
	"rate":             "rate",
	"price":            "rate",
	"unit price":       "rate",
	"tax1":             "tax1_rate",
	"tax 1":            "tax1_rate",
	"tax1_rate":        "tax1_rate",
	"tax2":             "tax2_rate",
	"tax 2":            "tax2_rate",
	"tax2_rate":        "tax2_rate",
	"unit":             "unit",
	"uom":              "unit",
	"group":            "group_name",
	"group name":       "group_name",
	"group_name":       "group_name",
}

// NormalizeHeader maps a raw column header onto its canonical field name.
// Unknown headers pass through lower-cased so extra columns are ignored
// rather than fatal.
func NormalizeHeader(raw string) string {
	key := strings.ToLower(strings.TrimSpace(raw))
	if canonical, ok := headerAliases[key]; ok {
		return canonical
	}
	return key
}

// RowsFromXLSX reads the first sheet of a workbook into import rows. The
// first row is the header. Empty rows are skipped.
func RowsFromXLSX(r io.Reader) ([]ImportRow, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("catalog: open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("catalog: workbook has no sheets")
	}
	raw, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("catalog: read sheet %q: %w", sheets[0], err)
	}
	if len(raw) == 0 {
		return nil, nil
	}

	headers := make([]string, len(raw[0]))
	for i, h := range raw[0] {
		headers[i] = NormalizeHeader(h)
	}

	var rows []ImportRow
	for _, cells := range raw[1:] {
		row := ImportRow{}
		empty := true
		for i, cell := range cells {
			if i >= len(headers) || headers[i] == "" {
				continue
			}
			value := strings.TrimSpace(cell)
			if value != "" {
				empty = false
			}
			row[headers[i]] = value
		}
		if !empty {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

// WriteXLSX exports items as a workbook with the canonical header row.
func WriteXLSX(w io.Writer, items []Item) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	header := []any{"description", "long_description", "rate", "tax1_rate", "tax2_rate", "unit", "group_name"}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	for i, item := range items {
		row := []any{
			item.Description,
			deref(item.LongDescription),
			item.Rate.String(),
			item.Tax1Rate.String(),
			item.Tax2Rate.String(),
			deref(item.Unit),
			deref(item.GroupName),
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return f.Write(w)
}

func itemFromImportRow(row ImportRow) (Item, error) {
	normalized := ImportRow{}
	for k, v := range row {
		normalized[NormalizeHeader(k)] = v
	}
	if strings.TrimSpace(normalized["description"]) == "" {
		return Item{}, shared.Validation("description", "is missing")
	}
	req := CreateItemRequest{
		Description: normalized["description"],
		Rate:        normalized["rate"],
		Tax1Rate:    normalized["tax1_rate"],
		Tax2Rate:    normalized["tax2_rate"],
	}
	if v := normalized["long_description"]; v != "" {
		req.LongDescription = &v
	}
	if v := normalized["unit"]; v != "" {
		req.Unit = &v
	}
	if v := normalized["group_name"]; v != "" {
		req.GroupName = &v
	}
	if strings.TrimSpace(req.Rate) == "" {
		return Item{}, shared.Validation("rate", "is missing")
	}
	return itemFromRequest(req)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
