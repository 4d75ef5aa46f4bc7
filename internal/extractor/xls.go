package extractor

import (
	"bytes"
	"fmt"

	"github.com/extrame/xls"
)

// ExtractXLS reads the first sheet of a legacy BIFF workbook. The decoder panics on
// some malformed files, so panics are turned into errors here.
func ExtractXLS(data []byte) (records [][]string, err error) {
	defer func() {
		if r := recover(); r != nil {
			records = nil
			err = fmt.Errorf("corrupt xls: %v", r)
		}
	}()

	wb, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, fmt.Errorf("open xls: %w", err)
	}
	if wb == nil || wb.NumSheets() == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	sheet := wb.GetSheet(0)
	if sheet == nil {
		return nil, fmt.Errorf("first sheet is unreadable")
	}

	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := sheet.Row(i)
		if row == nil {
			records = append(records, nil)
			continue
		}
		last := row.LastCol()
		rec := make([]string, 0, last)
		for c := 0; c < last; c++ {
			rec = append(rec, row.Col(c))
		}
		records = append(records, rec)
	}

	return records, nil
}
