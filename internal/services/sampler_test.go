package services

import (
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/BerylCAtieno/sheet-insights-api/internal/models"
)

func testDataset(n int) *models.Dataset {
	ds := &models.Dataset{Columns: []string{"date", "revenue"}}
	for i := 0; i < n; i++ {
		ds.Rows = append(ds.Rows, models.NewRow(
			models.Field{Key: "date", Value: fmt.Sprintf("d%d", i)},
			models.Field{Key: "revenue", Value: fmt.Sprint(i)},
		))
	}
	return ds
}

func TestSamplePrefix(t *testing.T) {
	ds := testDataset(10)

	rows, cols, err := Sample(ds, 4)
	if err != nil {
		t.Fatalf("Sample returned error: %v", err)
	}

	if len(rows) != 4 {
		t.Fatalf("len(rows) = %d, want 4", len(rows))
	}
	for i, r := range rows {
		if v, _ := r.Get("date"); v != fmt.Sprintf("d%d", i) {
			t.Errorf("row %d date = %q, want prefix order", i, v)
		}
	}
	if !reflect.DeepEqual(cols, []string{"date", "revenue"}) {
		t.Errorf("columns = %v", cols)
	}
	if ds.TotalRows() != 10 {
		t.Errorf("Sample mutated the dataset: %d rows", ds.TotalRows())
	}
}

func TestSampleSmallDatasetUnchanged(t *testing.T) {
	ds := testDataset(3)

	rows, _, err := Sample(ds, 1000)
	if err != nil {
		t.Fatalf("Sample returned error: %v", err)
	}
	if !reflect.DeepEqual(rows, ds.Rows) {
		t.Error("sample of a small dataset should equal the dataset")
	}

	uncapped, _, _ := Sample(ds, 0)
	if len(uncapped) != 3 {
		t.Errorf("maxRows 0 returned %d rows, want all", len(uncapped))
	}
}

func TestSampleDeterministic(t *testing.T) {
	ds := testDataset(50)

	a, ac, _ := Sample(ds, 20)
	b, bc, _ := Sample(ds, 20)
	if !reflect.DeepEqual(a, b) || !reflect.DeepEqual(ac, bc) {
		t.Error("Sample is not deterministic")
	}
}

func TestSampleColumnsFromFirstRow(t *testing.T) {
	ds := &models.Dataset{
		Columns: []string{"a", "b", "column_3"},
		Rows: []models.Row{
			models.NewRow(models.Field{Key: "a", Value: "1"}, models.Field{Key: "b", Value: "2"}),
			models.NewRow(models.Field{Key: "a", Value: "3"}, models.Field{Key: "b", Value: "4"}, models.Field{Key: "column_3", Value: "5"}),
		},
	}

	_, cols, err := Sample(ds, 10)
	if err != nil {
		t.Fatalf("Sample returned error: %v", err)
	}
	if !reflect.DeepEqual(cols, []string{"a", "b"}) {
		t.Errorf("columns = %v, want keys of the first row only", cols)
	}
}

func TestSampleEmptyDataset(t *testing.T) {
	for _, ds := range []*models.Dataset{nil, {}, {Columns: []string{"a"}}} {
		if _, _, err := Sample(ds, 10); !errors.Is(err, ErrEmptyDataset) {
			t.Errorf("Sample(%+v) error = %v, want ErrEmptyDataset", ds, err)
		}
	}
}
