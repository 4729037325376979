package cohort

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
)

// Canonical column names every raw table must provide, possibly under
// different casing or surrounding whitespace.
const (
	colCustomerEmail = "customer_email"
	colOrderID       = "order_id"
	colDay           = "day"
	colProductTitle  = "product_title"
	colTotalSales    = "total_sales"
)

var requiredColumns = []string{colCustomerEmail, colOrderID, colDay, colProductTitle, colTotalSales}

// dayLayouts are tried in order when coercing the day column. The first is
// the format brand uploads use; the rest cover exports from other storefront
// tools seen in practice.
var dayLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"01/02/2006",
	"2006/01/02",
}

const utf8BOM = "\uFEFF"

// Normalize parses and cleans one raw table into canonical transactions.
// It is a pure transform: decoding failures surface as *DecodeError, a
// missing required column as *SchemaError, and unparseable cell values are
// marked missing rather than failing the table.
func Normalize(table RawTable) ([]Transaction, error) {
	rows, err := readRows(table)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return []Transaction{}, nil
	}

	columns, err := mapColumns(table.Name, rows[0])
	if err != nil {
		return nil, err
	}

	out := make([]Transaction, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if emptyRow(row) {
			continue
		}
		out = append(out, coerceRow(row, columns))
	}
	return out, nil
}

// readRows extracts the cell grid from the table bytes, dispatching on the
// container format.
func readRows(table RawTable) ([][]string, error) {
	switch table.Format {
	case FormatXLSX:
		return readXLSXRows(table)
	default:
		return readCSVRows(table)
	}
}

// readCSVRows decodes the byte content (UTF-8 first, ISO-8859-1 as the
// fallback) and parses it as CSV. Tables are tolerant of ragged rows; width
// is enforced per cell during coercion.
func readCSVRows(table RawTable) ([][]string, error) {
	text, err := decodeText(table)
	if err != nil {
		return nil, err
	}

	r := csv.NewReader(strings.NewReader(text))
	r.LazyQuotes = true
	r.TrimLeadingSpace = true
	r.FieldsPerRecord = -1

	var rows [][]string
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &DecodeError{Table: table.Name, Err: fmt.Errorf("csv parse: %w", err)}
		}
		rows = append(rows, rec)
	}
	return rows, nil
}

// readXLSXRows reads the first sheet of an XLSX workbook into a cell grid.
func readXLSXRows(table RawTable) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(table.Data))
	if err != nil {
		return nil, &DecodeError{Table: table.Name, Err: err}
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, &DecodeError{Table: table.Name, Err: fmt.Errorf("workbook has no sheets")}
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, &DecodeError{Table: table.Name, Err: err}
	}
	return rows, nil
}

// decodeText tries the primary encoding (UTF-8) and falls back to ISO-8859-1,
// matching the upload contract. Content that still looks binary after the
// fallback (embedded NUL bytes) is rejected.
func decodeText(table RawTable) (string, error) {
	if bytes.IndexByte(table.Data, 0x00) >= 0 {
		return "", &DecodeError{Table: table.Name, Err: fmt.Errorf("binary content")}
	}
	if utf8.Valid(table.Data) {
		return strings.TrimPrefix(string(table.Data), utf8BOM), nil
	}
	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(table.Data)
	if err != nil {
		return "", &DecodeError{Table: table.Name, Err: err}
	}
	return string(decoded), nil
}

// mapColumns resolves the header row to canonical column indexes. Matching is
// case-insensitive and ignores surrounding whitespace and a UTF-8 BOM on the
// first cell.
func mapColumns(tableName string, header []string) (map[string]int, error) {
	columns := make(map[string]int, len(requiredColumns))
	for i, cell := range header {
		name := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(cell, utf8BOM)))
		for _, want := range requiredColumns {
			if name == want {
				columns[want] = i
				break
			}
		}
	}
	for _, want := range requiredColumns {
		if _, ok := columns[want]; !ok {
			return nil, &SchemaError{Table: tableName, Column: want}
		}
	}
	return columns, nil
}

// coerceRow converts one cell row into a canonical transaction. Rows are
// never rejected here; invalid day or total_sales values are flagged and
// handled by the filter stage downstream.
func coerceRow(row []string, columns map[string]int) Transaction {
	t := Transaction{
		CustomerEmail: cellAt(row, columns[colCustomerEmail]),
		OrderID:       cellAt(row, columns[colOrderID]),
	}

	if title := cellAt(row, columns[colProductTitle]); title != "" {
		t.ProductTitle = title
		t.HasProduct = true
	}

	if raw := cellAt(row, columns[colDay]); raw != "" {
		for _, layout := range dayLayouts {
			if day, err := time.Parse(layout, raw); err == nil {
				t.Day = day
				t.DayValid = true
				break
			}
		}
	}

	if raw := cellAt(row, columns[colTotalSales]); raw != "" {
		cleaned := strings.ReplaceAll(raw, ",", "")
		if v, err := strconv.ParseFloat(cleaned, 64); err == nil {
			t.TotalSales = v
			t.HasSales = true
		}
	}

	return t
}

func cellAt(row []string, idx int) string {
	if idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func emptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
