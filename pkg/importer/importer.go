// Package importer decodes spreadsheet uploads into inventory items and
// persists them all-or-nothing.
package importer

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"strings"

	"github.com/tealeg/xlsx/v3"
)

// requiredColumns must all be present in the header row after
// case-normalization. description is optional and defaults to empty.
var requiredColumns = []string{"name", "price", "quantity"}

// Row is one coerced spreadsheet row ready for insertion.
type Row struct {
	Name        string
	Description string
	Price       float64
	Quantity    int
}

// MissingColumnsError reports required header columns absent from the sheet.
type MissingColumnsError struct {
	Missing []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("missing required columns: %s (required: %s)",
		strings.Join(e.Missing, ", "), strings.Join(requiredColumns, ", "))
}

// RowError reports a coercion failure on a single data row. Any row error
// aborts the entire import.
type RowError struct {
	Row   int // 1-based spreadsheet row number, including the header
	Cause error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Row, e.Cause)
}

func (e *RowError) Unwrap() error { return e.Cause }

// Parse decodes the first sheet of an xlsx workbook into rows. Header names
// are lower-cased and trimmed before matching. Rows with no content at all
// are skipped; a coercion failure on any other row fails the whole parse.
func Parse(r io.Reader) ([]Row, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read spreadsheet: %w", err)
	}

	wb, err := xlsx.OpenBinary(data)
	if err != nil {
		return nil, fmt.Errorf("open spreadsheet: %w", err)
	}
	if len(wb.Sheets) == 0 {
		return nil, fmt.Errorf("spreadsheet has no sheets")
	}
	sheet := wb.Sheets[0]

	if sheet.MaxRow == 0 {
		return nil, &MissingColumnsError{Missing: requiredColumns}
	}

	// Map normalized header names to column indexes. First occurrence wins.
	cols := make(map[string]int)
	for c := 0; c < sheet.MaxCol; c++ {
		cell, err := sheet.Cell(0, c)
		if err != nil {
			return nil, fmt.Errorf("read header cell %d: %w", c, err)
		}
		name := strings.ToLower(strings.TrimSpace(cell.String()))
		if name == "" {
			continue
		}
		if _, ok := cols[name]; !ok {
			cols[name] = c
		}
	}

	var missing []string
	for _, req := range requiredColumns {
		if _, ok := cols[req]; !ok {
			missing = append(missing, req)
		}
	}
	if len(missing) > 0 {
		return nil, &MissingColumnsError{Missing: missing}
	}

	descCol, hasDesc := cols["description"]

	rows := make([]Row, 0, sheet.MaxRow-1)
	for i := 1; i < sheet.MaxRow; i++ {
		nameCell, err := sheet.Cell(i, cols["name"])
		if err != nil {
			return nil, &RowError{Row: i + 1, Cause: err}
		}
		priceCell, err := sheet.Cell(i, cols["price"])
		if err != nil {
			return nil, &RowError{Row: i + 1, Cause: err}
		}
		qtyCell, err := sheet.Cell(i, cols["quantity"])
		if err != nil {
			return nil, &RowError{Row: i + 1, Cause: err}
		}

		name := strings.TrimSpace(nameCell.String())
		desc := ""
		if hasDesc {
			descCell, err := sheet.Cell(i, descCol)
			if err != nil {
				return nil, &RowError{Row: i + 1, Cause: err}
			}
			desc = strings.TrimSpace(descCell.String())
		}

		// Fully empty rows (trailing blank lines in most workbooks) are
		// skipped, not treated as coercion failures.
		if name == "" && desc == "" && priceCell.String() == "" && qtyCell.String() == "" {
			continue
		}

		price, err := priceCell.Float()
		if err != nil {
			return nil, &RowError{Row: i + 1, Cause: fmt.Errorf("invalid price %q: %w", priceCell.String(), err)}
		}
		quantity, err := qtyCell.Int()
		if err != nil {
			return nil, &RowError{Row: i + 1, Cause: fmt.Errorf("invalid quantity %q: %w", qtyCell.String(), err)}
		}

		rows = append(rows, Row{
			Name:        name,
			Description: desc,
			Price:       price,
			Quantity:    quantity,
		})
	}

	return rows, nil
}

// Import parses the spreadsheet and persists every row as a new item inside
// one transaction. On any failure the transaction is rolled back before the
// error propagates, so either every row is committed or none is. Returns the
// number of rows added.
func Import(ctx context.Context, db *sql.DB, r io.Reader) (int, error) {
	rows, err := Parse(r)
	if err != nil {
		return 0, err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin import transaction: %w", err)
	}

	for _, row := range rows {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO items (name, description, price, quantity) VALUES (?, ?, ?, ?)",
			row.Name, row.Description, row.Price, row.Quantity); err != nil {
			tx.Rollback()
			return 0, fmt.Errorf("insert item %q: %w", row.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit import: %w", err)
	}
	return len(rows), nil
}
