package extractor

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestParseCSV(t *testing.T) {
	data := []byte("date,revenue,region\n2024-01-01,100,north\n2024-01-02,250,\n2024-01-03,75,south\n")

	ds, err := Parse(data, ".csv")
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}

	if got, want := ds.Columns, []string{"date", "revenue", "region"}; !reflect.DeepEqual(got, want) {
		t.Errorf("columns = %v, want %v", got, want)
	}
	if ds.TotalRows() != 3 {
		t.Fatalf("TotalRows = %d, want 3", ds.TotalRows())
	}
	if got := ds.Rows[1].Keys(); !reflect.DeepEqual(got, ds.Columns) {
		t.Errorf("row keys = %v, want %v", got, ds.Columns)
	}
	if v, ok := ds.Rows[1].Get("region"); !ok || v != "" {
		t.Errorf("empty cell = %q (present %v), want empty string", v, ok)
	}
	if v, _ := ds.Rows[0].Get("revenue"); v != "100" {
		t.Errorf("revenue = %q, want %q (no coercion)", v, "100")
	}
}

func TestParseDelimiterDetection(t *testing.T) {
	tests := []struct {
		name string
		ext  string
		data string
	}{
		{"tab", ".txt", "name\tscore\nann\t1\nbob\t2\n"},
		{"semicolon", ".csv", "name;score\nann;1,5\nbob;2,25\n"},
		{"pipe", ".txt", "name|score\nann|1\nbob|2\n"},
		{"crlf comma", ".csv", "name,score\r\nann,1\r\nbob,2\r\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds, err := Parse([]byte(tt.data), tt.ext)
			if err != nil {
				t.Fatalf("Parse returned error: %v", err)
			}
			if got, want := ds.Columns, []string{"name", "score"}; !reflect.DeepEqual(got, want) {
				t.Fatalf("columns = %v, want %v", got, want)
			}
			if ds.TotalRows() != 2 {
				t.Errorf("TotalRows = %d, want 2", ds.TotalRows())
			}
			if v, _ := ds.Rows[1].Get("name"); v != "bob" {
				t.Errorf("name = %q, want bob", v)
			}
		})
	}
}

func TestParseEmptyInputs(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"fully empty", ""},
		{"whitespace", "\n\n  \n"},
		{"header only", "date,revenue\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds, err := Parse([]byte(tt.data), ".csv")
			if err != nil {
				t.Fatalf("Parse returned error: %v", err)
			}
			if ds.TotalRows() != 0 {
				t.Errorf("TotalRows = %d, want 0", ds.TotalRows())
			}
		})
	}
}

func TestParseUnsupportedFormat(t *testing.T) {
	for _, ext := range []string{".pdf", ".json", ""} {
		if _, err := Parse([]byte("a,b\n1,2\n"), ext); !errors.Is(err, ErrUnsupportedFormat) {
			t.Errorf("Parse(%q) error = %v, want ErrUnsupportedFormat", ext, err)
		}
	}
}

func TestParseExtensionCase(t *testing.T) {
	ds, err := Parse([]byte("a,b\n1,2\n"), "CSV")
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if ds.TotalRows() != 1 {
		t.Errorf("TotalRows = %d, want 1", ds.TotalRows())
	}
}

// testdata/table.xls is a BIFF8 workbook with a Code/Name/Description header and
// eleven rows code1..code11.
func TestParseXLS(t *testing.T) {
	data, err := os.ReadFile(filepath.Join("testdata", "table.xls"))
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}

	ds, err := Parse(data, ".XLS")
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}

	if got, want := ds.Columns, []string{"Code", "Name", "Description"}; !reflect.DeepEqual(got, want) {
		t.Errorf("columns = %v, want %v", got, want)
	}
	if ds.TotalRows() != 11 {
		t.Fatalf("TotalRows = %d, want 11", ds.TotalRows())
	}

	first := ds.Rows[0]
	if got := first.Keys(); !reflect.DeepEqual(got, ds.Columns) {
		t.Errorf("row keys = %v, want %v", got, ds.Columns)
	}
	if v, _ := first.Get("Name"); v != "name1" {
		t.Errorf("rows[0].Name = %q, want name1", v)
	}
	if v, _ := ds.Rows[10].Get("Description"); v != "description11" {
		t.Errorf("rows[10].Description = %q, want description11", v)
	}
}

func TestParseCorruptWorkbooks(t *testing.T) {
	for _, ext := range []string{".xlsx", ".xls"} {
		_, err := Parse([]byte("definitely not a workbook"), ext)
		if !errors.Is(err, ErrParseFailure) {
			t.Errorf("Parse(%s) error = %v, want ErrParseFailure", ext, err)
		}
	}
}

func TestHeaderNormalization(t *testing.T) {
	data := []byte(" id ,name,,name,name\n1,a,x,b,c\n")

	ds, err := Parse(data, ".csv")
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}

	want := []string{"id", "name", "column_3", "name_1", "name_2"}
	if !reflect.DeepEqual(ds.Columns, want) {
		t.Errorf("columns = %v, want %v", ds.Columns, want)
	}
}

func TestRaggedRows(t *testing.T) {
	data := []byte("a,b\n1\n2,3,4\n\n5,6\n")

	ds, err := Parse(data, ".csv")
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}

	if ds.TotalRows() != 3 {
		t.Fatalf("TotalRows = %d, want 3 (blank line skipped)", ds.TotalRows())
	}
	if v, ok := ds.Rows[0].Get("b"); !ok || v != "" {
		t.Errorf("short row b = %q (present %v), want padded empty", v, ok)
	}
	if v, _ := ds.Rows[1].Get("column_3"); v != "4" {
		t.Errorf("extra cell = %q, want 4", v)
	}
	if want := []string{"a", "b", "column_3"}; !reflect.DeepEqual(ds.Columns, want) {
		t.Errorf("columns = %v, want %v", ds.Columns, want)
	}
	if got := ds.Rows[2].Keys(); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("later row keys = %v, want [a b]", got)
	}
}

func TestDecodeTextBOM(t *testing.T) {
	data := append([]byte{0xEF, 0xBB, 0xBF}, []byte("col\nv\n")...)

	ds, err := Parse(data, ".csv")
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if ds.Columns[0] != "col" {
		t.Errorf("first column = %q, want BOM stripped", ds.Columns[0])
	}
}

func TestDecodeTextUTF16(t *testing.T) {
	le := []byte{0xFF, 0xFE}
	be := []byte{0xFE, 0xFF}
	for _, r := range "city\nOslo\n" {
		le = append(le, byte(r), 0)
		be = append(be, 0, byte(r))
	}

	for name, data := range map[string][]byte{"little endian": le, "big endian": be} {
		ds, err := Parse(data, ".txt")
		if err != nil {
			t.Fatalf("%s: Parse returned error: %v", name, err)
		}
		if v, _ := ds.Rows[0].Get("city"); v != "Oslo" {
			t.Errorf("%s: city = %q, want Oslo", name, v)
		}
	}
}

func TestDecodeTextWindows1252(t *testing.T) {
	// 0xE9 is "é" in Windows-1252 and invalid as a lone UTF-8 byte.
	data := []byte("city\nCaf\xe9\n")

	ds, err := Parse(data, ".txt")
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if v, _ := ds.Rows[0].Get("city"); v != "Café" {
		t.Errorf("city = %q, want Café", v)
	}
}

func TestParseXLSXFirstSheetOnly(t *testing.T) {
	data := buildWorkbook(t)

	ds, err := Parse(data, ".xlsx")
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}

	if want := []string{"date", "revenue"}; !reflect.DeepEqual(ds.Columns, want) {
		t.Errorf("columns = %v, want %v", ds.Columns, want)
	}
	if ds.TotalRows() != 2 {
		t.Fatalf("TotalRows = %d, want 2", ds.TotalRows())
	}
	if v, _ := ds.Rows[1].Get("date"); v != "2024-01-02" {
		t.Errorf("date = %q, want 2024-01-02", v)
	}
	if v, ok := ds.Rows[1].Get("revenue"); !ok || v != "" {
		t.Errorf("trailing empty cell = %q (present %v), want padded empty", v, ok)
	}
}

func buildWorkbook(t *testing.T) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	rows := [][]interface{}{
		{"date", "revenue"},
		{"2024-01-01", "100"},
		{"2024-01-02"},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		if err := f.SetSheetRow("Sheet1", cell, &row); err != nil {
			t.Fatalf("set row: %v", err)
		}
	}

	if _, err := f.NewSheet("Ignored"); err != nil {
		t.Fatalf("new sheet: %v", err)
	}
	if err := f.SetCellValue("Ignored", "A1", "other"); err != nil {
		t.Fatalf("set cell: %v", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	return buf.Bytes()
}
