package cohort

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func csvTable(name, content string) RawTable {
	return RawTable{Name: name, Format: FormatCSV, Data: []byte(content)}
}

func TestNormalize_CanonicalCSV(t *testing.T) {
	table := csvTable("uploads/orders.csv",
		"customer_email,order_id,day,product_title,total_sales\n"+
			"a@x.com,1,2024-01-05,Widget,10.00\n"+
			"b@x.com,2,2024-02-10,Gadget,20.50\n")

	rows, err := Normalize(table)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "a@x.com", rows[0].CustomerEmail)
	assert.Equal(t, "1", rows[0].OrderID)
	assert.Equal(t, time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), rows[0].Day)
	assert.True(t, rows[0].DayValid)
	assert.Equal(t, "Widget", rows[0].ProductTitle)
	assert.True(t, rows[0].HasProduct)
	assert.Equal(t, 10.00, rows[0].TotalSales)
	assert.True(t, rows[0].HasSales)

	assert.Equal(t, 20.50, rows[1].TotalSales)
}

func TestNormalize_HeaderMapping(t *testing.T) {
	tests := []struct {
		name   string
		header string
	}{
		{name: "uppercase", header: "CUSTOMER_EMAIL,ORDER_ID,DAY,PRODUCT_TITLE,TOTAL_SALES"},
		{name: "mixed case with padding", header: " Customer_Email , order_id ,Day,product_title, Total_Sales "},
		{name: "bom prefix", header: "\uFEFFcustomer_email,order_id,day,product_title,total_sales"},
		{name: "reordered columns", header: "total_sales,day,order_id,product_title,customer_email"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table := csvTable("t.csv", tt.header+"\n")
			if tt.name == "reordered columns" {
				table.Data = append(table.Data, []byte("5.00,2024-03-01,9,Thing,c@x.com\n")...)
			}
			rows, err := Normalize(table)
			require.NoError(t, err)
			if tt.name == "reordered columns" {
				require.Len(t, rows, 1)
				assert.Equal(t, "c@x.com", rows[0].CustomerEmail)
				assert.Equal(t, "9", rows[0].OrderID)
				assert.Equal(t, 5.00, rows[0].TotalSales)
			}
		})
	}
}

func TestNormalize_MissingColumnIsSchemaError(t *testing.T) {
	table := csvTable("uploads/broken.csv",
		"customer_email,order_id,day,product_title\n"+
			"a@x.com,1,2024-01-05,Widget\n")

	_, err := Normalize(table)
	require.Error(t, err)

	var schemaErr *SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.Equal(t, "uploads/broken.csv", schemaErr.Table)
	assert.Equal(t, "total_sales", schemaErr.Column)
}

func TestNormalize_Coercion(t *testing.T) {
	tests := []struct {
		name        string
		row         string
		wantSales   float64
		wantHas     bool
		wantDayOK   bool
		wantProduct bool
	}{
		{name: "valid row", row: "a@x.com,1,2024-01-05,Widget,10.00", wantSales: 10, wantHas: true, wantDayOK: true, wantProduct: true},
		{name: "unparseable sales becomes missing", row: "a@x.com,1,2024-01-05,Widget,N/A", wantHas: false, wantDayOK: true, wantProduct: true},
		{name: "thousands separator", row: "a@x.com,1,2024-01-05,Widget,\"1,250.75\"", wantSales: 1250.75, wantHas: true, wantDayOK: true, wantProduct: true},
		{name: "empty product is missing", row: "a@x.com,1,2024-01-05,,10.00", wantSales: 10, wantHas: true, wantDayOK: true, wantProduct: false},
		{name: "invalid day flagged", row: "a@x.com,1,not-a-date,Widget,10.00", wantSales: 10, wantHas: true, wantDayOK: false, wantProduct: true},
		{name: "datetime day", row: "a@x.com,1,2024-01-05 13:45:00,Widget,10.00", wantSales: 10, wantHas: true, wantDayOK: true, wantProduct: true},
		{name: "slash date", row: "a@x.com,1,01/05/2024,Widget,10.00", wantSales: 10, wantHas: true, wantDayOK: true, wantProduct: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table := csvTable("t.csv",
				"customer_email,order_id,day,product_title,total_sales\n"+tt.row+"\n")
			rows, err := Normalize(table)
			require.NoError(t, err)
			require.Len(t, rows, 1)

			assert.Equal(t, tt.wantHas, rows[0].HasSales)
			if tt.wantHas {
				assert.Equal(t, tt.wantSales, rows[0].TotalSales)
			}
			assert.Equal(t, tt.wantDayOK, rows[0].DayValid)
			assert.Equal(t, tt.wantProduct, rows[0].HasProduct)
		})
	}
}

func TestNormalize_EncodingFallback(t *testing.T) {
	// "Café Brûlée" in ISO-8859-1: the accented bytes are invalid UTF-8 and
	// must round through the fallback decoder.
	data := []byte("customer_email,order_id,day,product_title,total_sales\n" +
		"a@x.com,1,2024-01-05,Caf\xe9 Br\xfbl\xe9e,10.00\n")

	rows, err := Normalize(RawTable{Name: "latin1.csv", Format: FormatCSV, Data: data})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Café Brûlée", rows[0].ProductTitle)
}

func TestNormalize_BinaryContentIsDecodeError(t *testing.T) {
	data := []byte{0x50, 0x4B, 0x00, 0x01, 0x02, 0x00}

	_, err := Normalize(RawTable{Name: "junk.csv", Format: FormatCSV, Data: data})
	require.Error(t, err)

	var decodeErr *DecodeError
	require.ErrorAs(t, err, &decodeErr)
	assert.Equal(t, "junk.csv", decodeErr.Table)
}

func TestNormalize_XLSX(t *testing.T) {
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1",
		&[]interface{}{"customer_email", "order_id", "day", "product_title", "total_sales"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2",
		&[]interface{}{"a@x.com", "1", "2024-01-05", "Widget", "10.00"}))

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	rows, err := Normalize(RawTable{Name: "orders.xlsx", Format: FormatXLSX, Data: buf.Bytes()})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "a@x.com", rows[0].CustomerEmail)
	assert.True(t, rows[0].DayValid)
	assert.Equal(t, 10.00, rows[0].TotalSales)
}

func TestNormalize_CorruptXLSXIsDecodeError(t *testing.T) {
	_, err := Normalize(RawTable{Name: "bad.xlsx", Format: FormatXLSX, Data: []byte("not a workbook")})

	var decodeErr *DecodeError
	require.ErrorAs(t, err, &decodeErr)
	assert.Equal(t, "bad.xlsx", decodeErr.Table)
}

func TestNormalize_EmptyAndBlankRows(t *testing.T) {
	table := csvTable("t.csv",
		"customer_email,order_id,day,product_title,total_sales\n"+
			",,,,\n"+
			"a@x.com,1,2024-01-05,Widget,10.00\n")

	rows, err := Normalize(table)
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	empty, err := Normalize(csvTable("empty.csv", ""))
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestMerge(t *testing.T) {
	a := []Transaction{{OrderID: "1"}, {OrderID: "2"}}
	b := []Transaction{}
	c := []Transaction{{OrderID: "2"}} // duplicate preserved

	merged := Merge(a, b, c)
	require.Len(t, merged, 3)
	assert.Equal(t, "1", merged[0].OrderID)
	assert.Equal(t, "2", merged[2].OrderID)

	assert.Empty(t, Merge())
}
