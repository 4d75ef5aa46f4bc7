package services

import (
	"errors"

	"github.com/BerylCAtieno/sheet-insights-api/internal/models"
)

var ErrEmptyDataset = errors.New("dataset has no data rows")

// Sample returns the first maxRows rows of ds and the column list taken from the
// dataset's first row. Keys that only appear in later rows are not included.
// maxRows <= 0 disables the cap.
func Sample(ds *models.Dataset, maxRows int) ([]models.Row, []string, error) {
	if ds.TotalRows() == 0 {
		return nil, nil, ErrEmptyDataset
	}

	columns := ds.Rows[0].Keys()

	rows := ds.Rows
	if maxRows > 0 && len(rows) > maxRows {
		rows = rows[:maxRows:maxRows]
	}

	return rows, columns, nil
}
